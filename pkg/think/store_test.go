package think

import (
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStores(t *testing.T) map[string]Store {
	t.Helper()

	jsonStore, err := NewJSONStore(filepath.Join(t.TempDir(), "thought_history.json"))
	require.NoError(t, err)

	bboltStore, err := NewBBoltStore(filepath.Join(t.TempDir(), "thought_history.db"))
	require.NoError(t, err)

	return map[string]Store{"json": jsonStore, "bbolt": bboltStore}
}

func TestAppendPreservesInsertionOrder(t *testing.T) {
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			defer store.Close()

			for i := 1; i <= 5; i++ {
				status, err := store.Append(Thought{
					Thought:    "step",
					Number:     i,
					Total:      5,
					NextNeeded: i < 5,
				})
				require.NoError(t, err)
				assert.Equal(t, i, status.HistoryLength)
			}

			history, err := store.History()
			require.NoError(t, err)
			require.Len(t, history.History, 5)
			for i, thought := range history.History {
				assert.Equal(t, i+1, thought.Number)
			}
			assert.Equal(t, 5, history.TotalThoughts)
		})
	}
}

func TestAppendRaisesTotalWhenExceeded(t *testing.T) {
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			defer store.Close()

			status, err := store.Append(Thought{Thought: "overflow", Number: 7, Total: 5})
			require.NoError(t, err)
			assert.Equal(t, 7, status.TotalThoughts)
		})
	}
}

func TestBranchTracking(t *testing.T) {
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			defer store.Close()

			_, err := store.Append(Thought{Thought: "main", Number: 1, Total: 3})
			require.NoError(t, err)

			status, err := store.Append(Thought{
				Thought:    "alternative",
				Number:     2,
				Total:      3,
				BranchFrom: 1,
				BranchID:   "alt-approach",
			})
			require.NoError(t, err)
			assert.Equal(t, []string{"alt-approach"}, status.Branches)

			history, err := store.History()
			require.NoError(t, err)
			require.Contains(t, history.Branches, "alt-approach")
			assert.Len(t, history.Branches["alt-approach"], 1)
			assert.Equal(t, "alternative", history.Branches["alt-approach"][0].Thought)
		})
	}
}

func TestClear(t *testing.T) {
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			defer store.Close()

			_, err := store.Append(Thought{Thought: "ephemeral", Number: 1, Total: 1})
			require.NoError(t, err)
			require.NoError(t, store.Clear())

			history, err := store.History()
			require.NoError(t, err)
			assert.Empty(t, history.History)

			// Appending after a clear starts a fresh journal.
			status, err := store.Append(Thought{Thought: "fresh", Number: 1, Total: 1})
			require.NoError(t, err)
			assert.Equal(t, 1, status.HistoryLength)
		})
	}
}

func TestTimestampIsStamped(t *testing.T) {
	store, err := NewJSONStore(filepath.Join(t.TempDir(), "thought_history.json"))
	require.NoError(t, err)

	_, err = store.Append(Thought{Thought: "when", Number: 1, Total: 1})
	require.NoError(t, err)

	history, err := store.History()
	require.NoError(t, err)
	assert.NotEmpty(t, history.History[0].Timestamp)
}

func TestFormatThought(t *testing.T) {
	t.Run("plain", func(t *testing.T) {
		out := FormatThought(Thought{Thought: "plan the work", Number: 1, Total: 3})
		assert.Contains(t, out, "💭 Thought 1/3")
		assert.Contains(t, out, "plan the work")
	})

	t.Run("revision", func(t *testing.T) {
		out := FormatThought(Thought{Thought: "rethink", Number: 2, Total: 3, IsRevision: true, RevisesThought: 1})
		assert.Contains(t, out, "🔄 Revision 2/3 (revising thought 1)")
	})

	t.Run("branch", func(t *testing.T) {
		out := FormatThought(Thought{Thought: "fork", Number: 2, Total: 3, BranchFrom: 1, BranchID: "alt"})
		assert.Contains(t, out, "🌿 Branch 2/3 (from thought 1, ID: alt)")
	})

	t.Run("long cjk text truncates on rune boundaries", func(t *testing.T) {
		text := strings.Repeat("思考内容分析这个问题的根本原因", 5)
		out := FormatThought(Thought{Thought: text, Number: 1, Total: 1})
		assert.True(t, utf8.ValidString(out))
		assert.Contains(t, out, "思考内容分析")
	})

	t.Run("cjk box lines align by rune count", func(t *testing.T) {
		out := FormatThought(Thought{Thought: "全部中文思考内容", Number: 1, Total: 2})
		boxLines := strings.Split(strings.TrimPrefix(out, "\n"), "\n")
		require.Len(t, boxLines, 5)
		width := utf8.RuneCountInString(boxLines[0])
		for _, line := range boxLines[1:] {
			assert.Equal(t, width, utf8.RuneCountInString(line), line)
		}
	})
}

func TestFormatHistory(t *testing.T) {
	assert.Equal(t, "No thoughts recorded yet.", FormatHistory(History{}))

	history := History{
		History: []Thought{{Thought: "first", Number: 1, Total: 2}},
		Branches: map[string][]Thought{
			"alt": {{Thought: "branched", Number: 2, Total: 2, BranchFrom: 1, BranchID: "alt"}},
		},
		TotalThoughts: 1,
	}
	out := FormatHistory(history)
	assert.Contains(t, out, "THOUGHT HISTORY")
	assert.Contains(t, out, "first")
	assert.Contains(t, out, "[alt]")
	assert.Contains(t, out, "Thought 2: branched...")

	// Branch summaries over 50 runes are cut without severing a rune.
	long := strings.Repeat("分析这个问题的根本原因", 8)
	cjk := History{
		History: []Thought{{Thought: long, Number: 1, Total: 1}},
		Branches: map[string][]Thought{
			"deep": {{Thought: long, Number: 2, Total: 2, BranchFrom: 1, BranchID: "deep"}},
		},
	}
	out = FormatHistory(cjk)
	assert.True(t, utf8.ValidString(out))
}
