package think

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// FormatThought renders a single thought as a boxed block for stderr
// display alongside the machine-readable JSON on stdout. Widths are
// counted in runes so multi-byte text is never split mid-character.
func FormatThought(thought Thought) string {
	var prefix, context string
	switch {
	case thought.IsRevision:
		prefix = "🔄 Revision"
		context = fmt.Sprintf(" (revising thought %d)", thought.RevisesThought)
	case thought.BranchFrom > 0:
		prefix = "🌿 Branch"
		context = fmt.Sprintf(" (from thought %d, ID: %s)", thought.BranchFrom, thought.BranchID)
	default:
		prefix = "💭 Thought"
	}

	header := fmt.Sprintf("%s %d/%d%s", prefix, thought.Number, thought.Total, context)

	bodyWidth := utf8.RuneCountInString(thought.Thought)
	if bodyWidth > 60 {
		bodyWidth = 60
	}
	width := utf8.RuneCountInString(header)
	if bodyWidth > width {
		width = bodyWidth
	}
	width += 4

	border := strings.Repeat("─", width)
	body := truncateRunes(thought.Thought, width-2)

	return fmt.Sprintf("\n┌%s┐\n│ %s │\n├%s┤\n│ %s │\n└%s┘",
		border, padRunes(header, width-2), border, padRunes(body, width-2), border)
}

// truncateRunes cuts a string to at most limit runes.
func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// padRunes right-pads with spaces to the given rune width. fmt's %-*s
// pads by byte count, which misaligns multi-byte text.
func padRunes(s string, width int) string {
	if gap := width - utf8.RuneCountInString(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

// FormatHistory renders the full journal as readable text.
func FormatHistory(history History) string {
	if len(history.History) == 0 {
		return "No thoughts recorded yet."
	}

	lines := []string{strings.Repeat("=", 60), "THOUGHT HISTORY", strings.Repeat("=", 60), ""}
	for _, thought := range history.History {
		lines = append(lines, FormatThought(thought))
	}

	if len(history.Branches) > 0 {
		lines = append(lines, "", strings.Repeat("-", 60), "BRANCHES:", strings.Repeat("-", 60))
		for _, branchID := range branchNames(history.Branches) {
			lines = append(lines, fmt.Sprintf("\n[%s]", branchID))
			for _, thought := range history.Branches[branchID] {
				summary := truncateRunes(thought.Thought, 50)
				lines = append(lines, fmt.Sprintf("  Thought %d: %s...", thought.Number, summary))
			}
		}
	}

	return strings.Join(lines, "\n")
}
