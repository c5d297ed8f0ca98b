package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Dianel555/DSkills/pkg/presenter"
	"github.com/Dianel555/DSkills/pkg/think"
)

type ThinkNewConfig struct {
	Thought    string
	Number     int
	Total      int
	NoNext     bool
	Revision   bool
	Revises    int
	BranchFrom int
	BranchID   string
	NeedsMore  bool
	Quiet      bool
}

func NewThinkNewConfig() *ThinkNewConfig {
	return &ThinkNewConfig{
		Number: 1,
		Total:  1,
	}
}

var thinkCmd = &cobra.Command{
	Use:   "think",
	Short: "Sequential thinking journal",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

func thinkStore(cmd *cobra.Command) think.Store {
	backend, _ := cmd.Flags().GetString("backend")
	store, err := think.NewStore(backend)
	if err != nil {
		fail(err)
	}
	return store
}

var thinkNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Append a thought to the journal",
	Long: `Append one thought record. The estimated total is raised automatically
when the thought number exceeds it. Branching thoughts carry a branch ID
and the thought number they fork from.

Examples:
  dskills think new --thought "Check the API contract first" --number 1 --total 3
  dskills think new --thought "Alternative: cache locally" --number 3 --total 3 --branch-from 2 --branch-id caching`,
	Run: func(cmd *cobra.Command, _ []string) {
		config := getThinkNewConfigFromFlags(cmd)
		store := thinkStore(cmd)
		defer store.Close()

		thought := think.Thought{
			Thought:        config.Thought,
			Number:         config.Number,
			Total:          config.Total,
			NextNeeded:     !config.NoNext,
			IsRevision:     config.Revision,
			RevisesThought: config.Revises,
			BranchFrom:     config.BranchFrom,
			BranchID:       config.BranchID,
			NeedsMore:      config.NeedsMore,
		}

		status, err := store.Append(thought)
		if err != nil {
			fail(err)
		}

		if !config.Quiet && !presenter.IsQuiet() {
			fmt.Fprintln(os.Stderr, think.FormatThought(thought))
		}
		printJSON(status)
	},
}

var thinkHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Print the full journal",
	Run: func(cmd *cobra.Command, _ []string) {
		store := thinkStore(cmd)
		defer store.Close()

		history, err := store.History()
		if err != nil {
			fail(err)
		}

		format, _ := cmd.Flags().GetString("format")
		if format == "text" {
			fmt.Println(think.FormatHistory(history))
			return
		}
		printJSON(history)
	},
}

var thinkClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the journal",
	Run: func(cmd *cobra.Command, _ []string) {
		store := thinkStore(cmd)
		defer store.Close()

		if err := store.Clear(); err != nil {
			fail(err)
		}
		presenter.Success("Thought history cleared")
		printJSON(map[string]string{"status": "cleared"})
	},
}

func init() {
	defaults := NewThinkNewConfig()
	thinkNewCmd.Flags().StringP("thought", "t", "", "Thought text (required)")
	thinkNewCmd.Flags().IntP("number", "n", defaults.Number, "Thought number")
	thinkNewCmd.Flags().Int("total", defaults.Total, "Estimated total thoughts")
	thinkNewCmd.Flags().Bool("no-next", false, "Mark the sequence as complete")
	thinkNewCmd.Flags().Bool("revision", false, "Mark this thought as a revision")
	thinkNewCmd.Flags().Int("revises", 0, "Thought number being revised")
	thinkNewCmd.Flags().Int("branch-from", 0, "Thought number this branch forks from")
	thinkNewCmd.Flags().String("branch-id", "", "Branch identifier")
	thinkNewCmd.Flags().Bool("needs-more", false, "Signal that more thoughts are needed than estimated")
	thinkNewCmd.Flags().BoolP("thought-quiet", "Q", false, "Skip the boxed rendering on stderr")
	thinkNewCmd.MarkFlagRequired("thought")

	thinkHistoryCmd.Flags().String("format", "json", "Output format (json, text)")

	for _, cmd := range []*cobra.Command{thinkNewCmd, thinkHistoryCmd, thinkClearCmd} {
		cmd.Flags().String("backend", think.BackendJSON, "Journal backend (json, bbolt)")
	}

	thinkCmd.AddCommand(thinkNewCmd)
	thinkCmd.AddCommand(thinkHistoryCmd)
	thinkCmd.AddCommand(thinkClearCmd)
	rootCmd.AddCommand(thinkCmd)
}

func getThinkNewConfigFromFlags(cmd *cobra.Command) *ThinkNewConfig {
	config := NewThinkNewConfig()
	config.Thought, _ = cmd.Flags().GetString("thought")
	config.Number, _ = cmd.Flags().GetInt("number")
	config.Total, _ = cmd.Flags().GetInt("total")
	config.NoNext, _ = cmd.Flags().GetBool("no-next")
	config.Revision, _ = cmd.Flags().GetBool("revision")
	config.Revises, _ = cmd.Flags().GetInt("revises")
	config.BranchFrom, _ = cmd.Flags().GetInt("branch-from")
	config.BranchID, _ = cmd.Flags().GetString("branch-id")
	config.NeedsMore, _ = cmd.Flags().GetBool("needs-more")
	config.Quiet, _ = cmd.Flags().GetBool("thought-quiet")
	return config
}
