package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Dianel555/DSkills/pkg/grok"
	"github.com/Dianel555/DSkills/pkg/presenter"
)

type GrokSearchConfig struct {
	APIURL     string
	APIKey     string
	Query      string
	Platform   string
	MinResults int
	MaxResults int
	Raw        bool
}

func NewGrokSearchConfig() *GrokSearchConfig {
	return &GrokSearchConfig{
		MinResults: 3,
		MaxResults: 10,
	}
}

type GrokFetchConfig struct {
	APIURL string
	APIKey string
	URL    string
	Out    string
	Direct bool
}

var grokCmd = &cobra.Command{
	Use:   "grok",
	Short: "Web search through an OpenAI-compatible Grok endpoint",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

var grokSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search the web and print normalized JSON results",
	Long: `Search the web through the configured Grok endpoint. The model reply
is normalized into a JSON array of {title, url, description} objects.

Examples:
  dskills grok search --query "golang 1.25 release notes"
  dskills grok search --query "kubernetes CVE" --platform "github.com" --max-results 5`,
	Run: func(cmd *cobra.Command, _ []string) {
		config := getGrokSearchConfigFromFlags(cmd)
		cfg, err := grok.LoadConfig(config.APIURL, config.APIKey)
		if err != nil {
			fail(err)
		}

		client := grok.NewClient(cfg)
		reply, err := client.Search(commandContext(cmd), config.Query, grok.SearchOptions{
			Platform:   config.Platform,
			MinResults: config.MinResults,
			MaxResults: config.MaxResults,
		})
		if err != nil {
			fail(err)
		}

		if config.Raw {
			printJSON(map[string]string{"raw": reply})
			return
		}
		printRawJSON([]byte(grok.ExtractJSON(reply)))
	},
}

var grokFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch a webpage as structured Markdown",
	Long: `Fetch a webpage through the model, or directly with --direct. Direct
fetches follow same-domain redirects only and require HTTPS for
non-local hosts.`,
	Run: func(cmd *cobra.Command, _ []string) {
		config := getGrokFetchConfigFromFlags(cmd)
		ctx := commandContext(cmd)

		var markdown string
		if config.Direct {
			content, err := grok.DirectFetch(ctx, config.URL)
			if err != nil {
				fail(err)
			}
			markdown = content
		} else {
			cfg, err := grok.LoadConfig(config.APIURL, config.APIKey)
			if err != nil {
				fail(err)
			}
			content, err := grok.NewClient(cfg).Fetch(ctx, config.URL)
			if err != nil {
				fail(err)
			}
			markdown = content
		}

		if config.Out != "" {
			writeOut(config.Out, []byte(markdown))
			return
		}
		printJSON(map[string]string{"url": config.URL, "content": markdown})
	},
}

var grokConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective Grok configuration",
	Run: func(cmd *cobra.Command, _ []string) {
		apiURL, _ := cmd.Flags().GetString("api-url")
		apiKey, _ := cmd.Flags().GetString("api-key")
		noTest, _ := cmd.Flags().GetBool("no-test")

		info := grok.GetConfigInfo(commandContext(cmd), apiURL, apiKey, !noTest)
		printJSON(info)
	},
}

var grokToggleToolsCmd = &cobra.Command{
	Use:   "toggle-tools [on|off|status]",
	Short: "Block or unblock the assistant's built-in web tools",
	Long: `Toggle WebFetch/WebSearch in the project's .claude/settings.json deny
list so web access goes through this skill instead. Without an action
the current state is reported. The project root is found by walking up
to the nearest .git directory unless --root is given.

Examples:
  dskills grok toggle-tools on
  dskills grok toggle-tools off --root /path/to/repo
  dskills grok toggle-tools`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		root, _ := cmd.Flags().GetString("root")
		if root == "" {
			found, err := grok.FindProjectRoot(".")
			if err != nil {
				fail(err)
			}
			root = found
		} else if _, err := os.Stat(root); err != nil {
			fail(errors.Errorf("specified root does not exist: %s", root))
		}

		action := ""
		if len(args) > 0 {
			action = args[0]
		}

		result, err := grok.ToggleBuiltinTools(root, action)
		if err != nil {
			fail(err)
		}
		printJSON(result)
	},
}

var grokModelCmd = &cobra.Command{
	Use:   "model",
	Short: "Show or persist the Grok model selection",
	Long: `Without --set, print the current model. With --set, persist the model
in the grok-search config file and report the previous selection.`,
	Run: func(cmd *cobra.Command, _ []string) {
		model, _ := cmd.Flags().GetString("set")
		if model == "" {
			printJSON(map[string]string{"model": grok.CurrentModel()})
			return
		}

		previous, configFile, err := grok.SetModel(model)
		if err != nil {
			fail(err)
		}
		presenter.Success("Model updated")
		printJSON(map[string]string{
			"previous_model": previous,
			"current_model":  model,
			"config_file":    configFile,
		})
	},
}

func init() {
	defaults := NewGrokSearchConfig()
	grokSearchCmd.Flags().StringP("query", "q", "", "Search query (required)")
	grokSearchCmd.Flags().String("platform", "", "Comma-separated platforms to focus on")
	grokSearchCmd.Flags().Int("min-results", defaults.MinResults, "Minimum number of results to request")
	grokSearchCmd.Flags().Int("max-results", defaults.MaxResults, "Maximum number of results to request")
	grokSearchCmd.Flags().Bool("raw", false, "Print the raw model reply without normalization")
	grokSearchCmd.MarkFlagRequired("query")

	grokFetchCmd.Flags().StringP("url", "u", "", "URL to fetch (required)")
	grokFetchCmd.Flags().StringP("out", "o", "", "Write the Markdown to a file instead of stdout")
	grokFetchCmd.Flags().Bool("direct", false, "Fetch the URL locally instead of through the model")
	grokFetchCmd.MarkFlagRequired("url")

	grokConfigCmd.Flags().Bool("no-test", false, "Skip the GET /models connection probe")

	grokModelCmd.Flags().String("set", "", "Model to persist")

	grokToggleToolsCmd.Flags().String("root", "", "Project root (defaults to the nearest git repository)")

	for _, cmd := range []*cobra.Command{grokSearchCmd, grokFetchCmd, grokConfigCmd} {
		addAPIFlags(cmd.Flags(), "GROK")
	}

	grokCmd.AddCommand(grokSearchCmd)
	grokCmd.AddCommand(grokFetchCmd)
	grokCmd.AddCommand(grokConfigCmd)
	grokCmd.AddCommand(grokModelCmd)
	grokCmd.AddCommand(grokToggleToolsCmd)
	rootCmd.AddCommand(grokCmd)
}

func getGrokSearchConfigFromFlags(cmd *cobra.Command) *GrokSearchConfig {
	config := NewGrokSearchConfig()
	if query, err := cmd.Flags().GetString("query"); err == nil {
		config.Query = query
	}
	if platform, err := cmd.Flags().GetString("platform"); err == nil {
		config.Platform = platform
	}
	if min, err := cmd.Flags().GetInt("min-results"); err == nil {
		config.MinResults = min
	}
	if max, err := cmd.Flags().GetInt("max-results"); err == nil {
		config.MaxResults = max
	}
	if raw, err := cmd.Flags().GetBool("raw"); err == nil {
		config.Raw = raw
	}
	config.APIURL, _ = cmd.Flags().GetString("api-url")
	config.APIKey, _ = cmd.Flags().GetString("api-key")
	return config
}

func getGrokFetchConfigFromFlags(cmd *cobra.Command) *GrokFetchConfig {
	config := &GrokFetchConfig{}
	config.URL, _ = cmd.Flags().GetString("url")
	config.Out, _ = cmd.Flags().GetString("out")
	config.Direct, _ = cmd.Flags().GetBool("direct")
	config.APIURL, _ = cmd.Flags().GetString("api-url")
	config.APIKey, _ = cmd.Flags().GetString("api-key")
	return config
}
