package indexer

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/Dianel555/DSkills/pkg/ace"
	"github.com/Dianel555/DSkills/pkg/httpclient"
	"github.com/Dianel555/DSkills/pkg/logger"
)

// Uploader sends blob batches to the ACE batch-upload endpoint.
type Uploader struct {
	baseURL string
	token   string
	http    *httpclient.Client
}

// NewUploader creates an Uploader. 5xx and network failures retry with
// backoff, 429 waits out the server's Retry-After, and auth failures
// abort the run without retry.
func NewUploader(baseURL, token string) *Uploader {
	return &Uploader{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http: httpclient.New(
			httpclient.WithTimeout(60 * time.Second),
		),
	}
}

func (u *Uploader) headers() http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("User-Agent", ace.UserAgent)
	h.Set("Authorization", "Bearer "+u.token)
	h.Set("x-request-session-id", ace.SessionID())
	return h
}

type uploadBlob struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Upload sends all pending blobs in batches and returns the aggregated
// error when any batch failed. Remaining batches are still attempted
// after a failure so a transient error loses as little work as
// possible, unless the failure was an auth error.
func (u *Uploader) Upload(ctx context.Context, blobs []Blob) error {
	if len(blobs) == 0 || u.baseURL == "" {
		return nil
	}

	var result *multierror.Error
	batches := MakeBatches(blobs)
	for i, batch := range batches {
		payload := map[string]any{"blobs": toUploadBlobs(batch)}
		err := u.http.PostJSON(ctx, u.baseURL+"/batch-upload", u.headers(), payload, nil)
		if err == nil {
			continue
		}
		result = multierror.Append(result, errors.Wrapf(err, "batch %d/%d", i+1, len(batches)))
		if httpclient.IsAuthError(err) {
			logger.G(ctx).WithError(err).Error("authentication failed, aborting upload")
			break
		}
	}
	return result.ErrorOrNil()
}

func toUploadBlobs(batch []Blob) []uploadBlob {
	out := make([]uploadBlob, 0, len(batch))
	for _, blob := range batch {
		out = append(out, uploadBlob{Path: blob.Path, Content: blob.Content})
	}
	return out
}

// MakeBatches splits blobs into batches of at most BatchBlobCount blobs
// and MaxBatchBytes of content. A single oversized blob still ships
// alone rather than being dropped.
func MakeBatches(blobs []Blob) [][]Blob {
	var batches [][]Blob
	var current []Blob
	currentSize := 0

	for _, blob := range blobs {
		itemSize := len(blob.Content)
		if len(current) > 0 && (len(current) >= BatchBlobCount || currentSize+itemSize > MaxBatchBytes) {
			batches = append(batches, current)
			current = nil
			currentSize = 0
		}
		current = append(current, blob)
		currentSize += itemSize
	}
	if len(current) > 0 {
		batches = append(batches, current)
	}
	return batches
}
