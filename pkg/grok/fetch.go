package grok

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/pkg/errors"

	"github.com/Dianel555/DSkills/pkg/logger"
)

// DirectFetch retrieves a URL without going through the model and
// converts HTML responses to Markdown. HTTPS is required for external
// hosts; HTTP is allowed only for localhost and loopback addresses.
// Redirects are followed only within the same domain, max 10.
func DirectFetch(ctx context.Context, rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", errors.Wrap(err, "invalid URL")
	}
	if parsed.Scheme != "https" && (parsed.Scheme != "http" || !isLocalHost(parsed.Hostname())) {
		return "", errors.New("only HTTPS scheme is supported for external domains, HTTP is allowed for localhost")
	}

	originalDomain := parsed.Hostname()
	client := &http.Client{
		Timeout: 60 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if req.URL.Hostname() != originalDomain {
				return errors.Errorf("redirect to different domain not allowed: %s -> %s",
					originalDomain, req.URL.Hostname())
			}
			if len(via) >= 10 {
				return errors.New("stopped after 10 redirects")
			}
			return nil
		},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", errors.Wrap(err, "failed to build request")
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "fetch failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", errors.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	for _, binary := range []string{"application/octet-stream", "application/zip", "application/pdf", "image/", "audio/", "video/"} {
		if strings.Contains(contentType, binary) {
			return "", errors.Errorf("unsupported content type: %s", contentType)
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "failed to read response body")
	}

	if strings.Contains(contentType, "text/html") {
		return htmlToMarkdown(ctx, string(body)), nil
	}
	return string(body), nil
}

func isLocalHost(hostname string) bool {
	if hostname == "localhost" || hostname == "127.0.0.1" || hostname == "::1" || hostname == "0.0.0.0" {
		return true
	}
	if ip := net.ParseIP(hostname); ip != nil {
		return ip.IsLoopback()
	}
	return false
}

func htmlToMarkdown(ctx context.Context, htmlContent string) string {
	converter := md.NewConverter("", true, nil)
	markdown, err := converter.ConvertString(htmlContent)
	if err != nil {
		logger.G(ctx).WithError(err).Warn("failed to convert HTML to Markdown, returning raw HTML")
		return htmlContent
	}
	return markdown
}
