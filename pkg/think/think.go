// Package think implements the sequential-thinking skill: an
// append-only journal of thought records with optional revision and
// branching metadata, persisted across invocations.
package think

import (
	"sort"
	"time"
)

// Thought is a single step in a thinking chain.
type Thought struct {
	Thought        string `json:"thought"`
	Number         int    `json:"thought_number"`
	Total          int    `json:"total_thoughts"`
	NextNeeded     bool   `json:"next_thought_needed"`
	IsRevision     bool   `json:"is_revision,omitempty"`
	RevisesThought int    `json:"revises_thought,omitempty"`
	BranchFrom     int    `json:"branch_from_thought,omitempty"`
	BranchID       string `json:"branch_id,omitempty"`
	NeedsMore      bool   `json:"needs_more_thoughts,omitempty"`
	Timestamp      string `json:"timestamp"`
}

// Status summarizes the journal after an append. Field names follow the
// wire format the assistant-side skill expects.
type Status struct {
	ThoughtNumber     int      `json:"thoughtNumber"`
	TotalThoughts     int      `json:"totalThoughts"`
	NextThoughtNeeded bool     `json:"nextThoughtNeeded"`
	Branches          []string `json:"branches"`
	HistoryLength     int      `json:"thoughtHistoryLength"`
}

// History is the full journal in insertion order plus per-branch views.
type History struct {
	History       []Thought            `json:"history"`
	Branches      map[string][]Thought `json:"branches"`
	TotalThoughts int                  `json:"totalThoughts"`
}

// Store persists thought records. Append preserves insertion order;
// History reads records back in that order.
type Store interface {
	Append(thought Thought) (Status, error)
	History() (History, error)
	Clear() error
	Close() error
}

// normalize fills derived fields before a thought is persisted: the
// estimated total is raised when the thought number exceeds it, and a
// missing timestamp is stamped.
func normalize(thought Thought) Thought {
	if thought.Number > thought.Total {
		thought.Total = thought.Number
	}
	if thought.Timestamp == "" {
		thought.Timestamp = time.Now().Format(time.RFC3339)
	}
	return thought
}

func branchNames(branches map[string][]Thought) []string {
	names := make([]string, 0, len(branches))
	for name := range branches {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func statusFor(thought Thought, history []Thought, branches map[string][]Thought) Status {
	return Status{
		ThoughtNumber:     thought.Number,
		TotalThoughts:     thought.Total,
		NextThoughtNeeded: thought.NextNeeded,
		Branches:          branchNames(branches),
		HistoryLength:     len(history),
	}
}
