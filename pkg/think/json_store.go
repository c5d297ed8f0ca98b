package think

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// JSONStore persists the journal as a single JSON document, matching the
// on-disk format of the original skill so histories survive upgrades.
type JSONStore struct {
	path string
}

type journalDocument struct {
	History  []Thought            `json:"history"`
	Branches map[string][]Thought `json:"branches"`
}

// NewJSONStore creates a JSON-file backed store at the given path.
func NewJSONStore(path string) (*JSONStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create history directory")
	}
	return &JSONStore{path: path}, nil
}

func (s *JSONStore) load() journalDocument {
	doc := journalDocument{Branches: map[string][]Thought{}}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return doc
	}
	// A corrupt history file starts a fresh journal rather than
	// blocking every future invocation.
	if err := json.Unmarshal(data, &doc); err != nil {
		return journalDocument{Branches: map[string][]Thought{}}
	}
	if doc.Branches == nil {
		doc.Branches = map[string][]Thought{}
	}
	return doc
}

func (s *JSONStore) save(doc journalDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal thought history")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write thought history")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return errors.Wrap(err, "failed to replace thought history")
	}
	return nil
}

// Append adds a thought to the journal and returns the updated status.
func (s *JSONStore) Append(thought Thought) (Status, error) {
	thought = normalize(thought)
	doc := s.load()

	doc.History = append(doc.History, thought)
	if thought.BranchFrom > 0 && thought.BranchID != "" {
		doc.Branches[thought.BranchID] = append(doc.Branches[thought.BranchID], thought)
	}

	if err := s.save(doc); err != nil {
		return Status{}, err
	}
	return statusFor(thought, doc.History, doc.Branches), nil
}

// History returns all recorded thoughts in insertion order.
func (s *JSONStore) History() (History, error) {
	doc := s.load()
	return History{
		History:       doc.History,
		Branches:      doc.Branches,
		TotalThoughts: len(doc.History),
	}, nil
}

// Clear removes the journal file.
func (s *JSONStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to clear thought history")
	}
	return nil
}

// Close implements Store; the JSON store holds no resources.
func (s *JSONStore) Close() error {
	return nil
}
