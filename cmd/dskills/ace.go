package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Dianel555/DSkills/pkg/ace"
	"github.com/Dianel555/DSkills/pkg/ace/indexer"
	"github.com/Dianel555/DSkills/pkg/presenter"
)

type AceEnhanceConfig struct {
	BaseURL     string
	Token       string
	Endpoint    string
	Prompt      string
	History     string
	HistoryFile string
}

var aceCmd = &cobra.Command{
	Use:   "ace",
	Short: "Prompt enhancement and semantic code indexing",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

func aceConfigFromFlags(cmd *cobra.Command) ace.Config {
	baseURL, _ := cmd.Flags().GetString("api-url")
	token, _ := cmd.Flags().GetString("token")
	endpoint, _ := cmd.Flags().GetString("endpoint")
	return ace.LoadConfig(baseURL, token, endpoint)
}

// transcriptFromFlags resolves --history / --history-file into one
// transcript string.
func transcriptFromFlags(cmd *cobra.Command) string {
	if history, _ := cmd.Flags().GetString("history"); history != "" {
		return history
	}
	if path, _ := cmd.Flags().GetString("history-file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			fail(err)
		}
		return string(data)
	}
	return ""
}

var aceEnhanceCmd = &cobra.Command{
	Use:   "enhance",
	Short: "Enhance a prompt with conversation history",
	Long: `Enhance a prompt through the ACE API or a third-party model endpoint.
Without any API configured the original prompt is returned with a note.

Examples:
  dskills ace enhance --prompt "fix the login bug"
  dskills ace enhance --prompt "fix the login bug" --history-file chat.txt --endpoint claude`,
	Run: func(cmd *cobra.Command, _ []string) {
		prompt, _ := cmd.Flags().GetString("prompt")
		cfg := aceConfigFromFlags(cmd)

		enhancement, err := ace.NewClient(cfg).Enhance(commandContext(cmd), prompt, transcriptFromFlags(cmd))
		if err != nil {
			fail(err)
		}
		printJSON(enhancement)
	},
}

var aceIterateCmd = &cobra.Command{
	Use:   "iterate",
	Short: "Re-enhance a prompt while preserving user edits",
	Run: func(cmd *cobra.Command, _ []string) {
		original, _ := cmd.Flags().GetString("original")
		previous, _ := cmd.Flags().GetString("previous")
		current, _ := cmd.Flags().GetString("current")
		cfg := aceConfigFromFlags(cmd)

		enhancement, err := ace.NewClient(cfg).Iterate(commandContext(cmd), original, previous, current, transcriptFromFlags(cmd))
		if err != nil {
			fail(err)
		}
		printJSON(enhancement)
	},
}

var aceSearchContextCmd = &cobra.Command{
	Use:   "search-context",
	Short: "Keyword fallback search over a project tree",
	Run: func(cmd *cobra.Command, _ []string) {
		project, _ := cmd.Flags().GetString("project")
		query, _ := cmd.Flags().GetString("query")

		response, err := ace.SearchContext(project, query)
		if err != nil {
			fail(err)
		}
		printJSON(response)
	},
}

var aceIndexCmd = &cobra.Command{
	Use:   "index",
	Short: "Incrementally index a project for semantic retrieval",
	Long: `Walk the project tree, chunk and hash text files, and upload changed
blobs in batches. Unchanged files are skipped using the cached manifest
under <project>/.ace-tool/. Without API credentials the tree is scanned
but nothing is uploaded.`,
	Run: func(cmd *cobra.Command, _ []string) {
		project, _ := cmd.Flags().GetString("project")
		cfg := aceConfigFromFlags(cmd)

		var uploader *indexer.Uploader
		if cfg.BaseURL != "" && cfg.Token != "" {
			uploader = indexer.NewUploader(cfg.BaseURL, cfg.Token)
		} else {
			presenter.Warning("ACE API not configured, scanning without upload")
		}

		idx, err := indexer.New(project, uploader)
		if err != nil {
			fail(err)
		}
		result, err := idx.Run(commandContext(cmd))
		if err != nil {
			fail(err)
		}
		presenter.Success(fmt.Sprintf("Indexed %d files (%d uploaded, %d unchanged)",
			result.Total, result.Uploaded, result.Skipped))
		printJSON(result)
	},
}

var aceConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective ACE configuration",
	Run: func(cmd *cobra.Command, _ []string) {
		printJSON(aceConfigFromFlags(cmd).GetInfo())
	},
}

func init() {
	aceEnhanceCmd.Flags().StringP("prompt", "p", "", "Prompt to enhance (required)")
	aceEnhanceCmd.MarkFlagRequired("prompt")

	aceIterateCmd.Flags().String("original", "", "Original user prompt (required)")
	aceIterateCmd.Flags().String("previous", "", "Previously enhanced prompt (required)")
	aceIterateCmd.Flags().String("current", "", "Current, possibly edited prompt (required)")
	aceIterateCmd.MarkFlagRequired("original")
	aceIterateCmd.MarkFlagRequired("previous")
	aceIterateCmd.MarkFlagRequired("current")

	for _, cmd := range []*cobra.Command{aceEnhanceCmd, aceIterateCmd} {
		cmd.Flags().String("history", "", "Conversation transcript (User:/AI: prefixed lines)")
		cmd.Flags().String("history-file", "", "File containing the conversation transcript")
	}

	aceSearchContextCmd.Flags().String("project", ".", "Project root")
	aceSearchContextCmd.Flags().StringP("query", "q", "", "Search query (required)")
	aceSearchContextCmd.MarkFlagRequired("query")

	aceIndexCmd.Flags().String("project", ".", "Project root")

	for _, cmd := range []*cobra.Command{aceEnhanceCmd, aceIterateCmd, aceIndexCmd, aceConfigCmd} {
		cmd.Flags().String("api-url", "", "ACE API base URL (overrides ACE_API_URL)")
		cmd.Flags().String("token", "", "ACE API token (overrides ACE_API_TOKEN)")
		cmd.Flags().String("endpoint", "", "Enhancer endpoint (new, old, claude, openai, gemini)")
	}

	aceCmd.AddCommand(aceEnhanceCmd)
	aceCmd.AddCommand(aceIterateCmd)
	aceCmd.AddCommand(aceSearchContextCmd)
	aceCmd.AddCommand(aceIndexCmd)
	aceCmd.AddCommand(aceConfigCmd)
	rootCmd.AddCommand(aceCmd)
}
