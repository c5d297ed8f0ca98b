package main

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Dianel555/DSkills/pkg/exa"
)

var exaCmd = &cobra.Command{
	Use:   "exa",
	Short: "Semantic search through the Exa API",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

func exaClient(cmd *cobra.Command) *exa.Client {
	apiURL, _ := cmd.Flags().GetString("api-url")
	apiKey, _ := cmd.Flags().GetString("api-key")
	cfg, err := exa.LoadConfig(apiURL, apiKey)
	if err != nil {
		fail(err)
	}
	return exa.NewClient(cfg)
}

// emit prints or writes the upstream payload depending on --out.
func emit(cmd *cobra.Command, payload json.RawMessage) {
	if out, _ := cmd.Flags().GetString("out"); out != "" {
		writeOut(out, payload)
		return
	}
	printRawJSON(payload)
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var parts []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

var exaSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Basic semantic search",
	Run: func(cmd *cobra.Command, _ []string) {
		query, _ := cmd.Flags().GetString("query")
		numResults, _ := cmd.Flags().GetInt("num-results")

		result, err := exaClient(cmd).Search(commandContext(cmd), exa.SearchRequest{
			Query:      query,
			NumResults: numResults,
			Contents:   map[string]any{"text": true},
		})
		if err != nil {
			fail(err)
		}
		emit(cmd, result)
	},
}

var exaSearchAdvancedCmd = &cobra.Command{
	Use:   "search-advanced",
	Short: "Search with domain, date, category and content filters",
	Run: func(cmd *cobra.Command, _ []string) {
		req := exa.SearchRequest{Contents: map[string]any{"text": true}}
		req.Query, _ = cmd.Flags().GetString("query")
		req.NumResults, _ = cmd.Flags().GetInt("num-results")
		req.Type, _ = cmd.Flags().GetString("type")
		req.Category, _ = cmd.Flags().GetString("category")
		req.Livecrawl, _ = cmd.Flags().GetString("livecrawl")
		req.StartPublished, _ = cmd.Flags().GetString("start-published")
		req.EndPublished, _ = cmd.Flags().GetString("end-published")
		include, _ := cmd.Flags().GetString("include-domains")
		exclude, _ := cmd.Flags().GetString("exclude-domains")
		req.IncludeDomains = splitList(include)
		req.ExcludeDomains = splitList(exclude)

		result, err := exaClient(cmd).Search(commandContext(cmd), req)
		if err != nil {
			fail(err)
		}
		emit(cmd, result)
	},
}

var exaDeepSearchCmd = &cobra.Command{
	Use:   "deep-search",
	Short: "Deep search with additional reformulated queries",
	Run: func(cmd *cobra.Command, _ []string) {
		req := exa.SearchRequest{Type: "deep", Contents: map[string]any{"text": true}}
		req.Query, _ = cmd.Flags().GetString("query")
		req.NumResults, _ = cmd.Flags().GetInt("num-results")
		additional, _ := cmd.Flags().GetString("additional-queries")
		req.AdditionalQueries = splitList(additional)

		result, err := exaClient(cmd).Search(commandContext(cmd), req)
		if err != nil {
			fail(err)
		}
		emit(cmd, result)
	},
}

var exaCompanyCmd = &cobra.Command{
	Use:   "company",
	Short: "Company research search",
	Run: func(cmd *cobra.Command, _ []string) {
		query, _ := cmd.Flags().GetString("query")
		numResults, _ := cmd.Flags().GetInt("num-results")

		result, err := exaClient(cmd).Search(commandContext(cmd), exa.SearchRequest{
			Query:      query,
			NumResults: numResults,
			Type:       "keyword",
			Category:   "company",
			Contents:   map[string]any{"text": true},
		})
		if err != nil {
			fail(err)
		}
		emit(cmd, result)
	},
}

var exaLinkedinCmd = &cobra.Command{
	Use:   "linkedin",
	Short: "Search restricted to linkedin.com",
	Run: func(cmd *cobra.Command, _ []string) {
		query, _ := cmd.Flags().GetString("query")
		numResults, _ := cmd.Flags().GetInt("num-results")

		result, err := exaClient(cmd).Search(commandContext(cmd), exa.SearchRequest{
			Query:          query,
			NumResults:     numResults,
			IncludeDomains: []string{"linkedin.com"},
			Contents:       map[string]any{"text": true},
		})
		if err != nil {
			fail(err)
		}
		emit(cmd, result)
	},
}

var exaCrawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Extract the content of specific URLs",
	Run: func(cmd *cobra.Command, _ []string) {
		rawURL, _ := cmd.Flags().GetString("url")
		livecrawl, _ := cmd.Flags().GetString("livecrawl")

		result, err := exaClient(cmd).GetContents(commandContext(cmd), exa.ContentsRequest{
			URLs:      []string{rawURL},
			Text:      true,
			Livecrawl: livecrawl,
		})
		if err != nil {
			fail(err)
		}
		emit(cmd, result)
	},
}

var exaCodeContextCmd = &cobra.Command{
	Use:   "code-context",
	Short: "Retrieve code context for a programming question",
	Run: func(cmd *cobra.Command, _ []string) {
		query, _ := cmd.Flags().GetString("query")
		tokens, _ := cmd.Flags().GetInt("tokens")

		result, err := exaClient(cmd).CodeContext(commandContext(cmd), query, tokens)
		if err != nil {
			fail(err)
		}
		emit(cmd, result)
	},
}

var exaResearchCmd = &cobra.Command{
	Use:   "research",
	Short: "Asynchronous research tasks",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

var exaResearchStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a research task",
	Run: func(cmd *cobra.Command, _ []string) {
		instructions, _ := cmd.Flags().GetString("instructions")
		model, _ := cmd.Flags().GetString("model")

		result, err := exaClient(cmd).StartResearch(commandContext(cmd), instructions, model)
		if err != nil {
			fail(err)
		}
		emit(cmd, result)
	},
}

var exaResearchCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the status of a research task",
	Run: func(cmd *cobra.Command, _ []string) {
		taskID, _ := cmd.Flags().GetString("task-id")

		result, err := exaClient(cmd).CheckResearch(commandContext(cmd), taskID)
		if err != nil {
			fail(err)
		}
		emit(cmd, result)
	},
}

var exaConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective Exa configuration",
	Run: func(cmd *cobra.Command, _ []string) {
		apiURL, _ := cmd.Flags().GetString("api-url")
		apiKey, _ := cmd.Flags().GetString("api-key")
		noTest, _ := cmd.Flags().GetBool("no-test")

		printJSON(exa.GetConfigInfo(commandContext(cmd), apiURL, apiKey, !noTest))
	},
}

func init() {
	searchCmds := []*cobra.Command{
		exaSearchCmd, exaSearchAdvancedCmd, exaDeepSearchCmd, exaCompanyCmd, exaLinkedinCmd,
	}
	for _, cmd := range searchCmds {
		cmd.Flags().StringP("query", "q", "", "Search query (required)")
		cmd.Flags().IntP("num-results", "n", 10, "Number of results")
		cmd.MarkFlagRequired("query")
	}

	exaSearchAdvancedCmd.Flags().String("type", "", "Search type (auto, neural, keyword, deep)")
	exaSearchAdvancedCmd.Flags().String("category", "", "Result category (company, news, pdf, ...)")
	exaSearchAdvancedCmd.Flags().String("livecrawl", "", "Livecrawl mode (always, fallback, never)")
	exaSearchAdvancedCmd.Flags().String("include-domains", "", "Comma-separated domains to include")
	exaSearchAdvancedCmd.Flags().String("exclude-domains", "", "Comma-separated domains to exclude")
	exaSearchAdvancedCmd.Flags().String("start-published", "", "Earliest publish date (ISO 8601)")
	exaSearchAdvancedCmd.Flags().String("end-published", "", "Latest publish date (ISO 8601)")

	exaDeepSearchCmd.Flags().String("additional-queries", "", "Comma-separated reformulations of the query")

	exaCrawlCmd.Flags().StringP("url", "u", "", "URL to extract (required)")
	exaCrawlCmd.Flags().String("livecrawl", "", "Livecrawl mode (always, fallback, never)")
	exaCrawlCmd.MarkFlagRequired("url")

	exaCodeContextCmd.Flags().StringP("query", "q", "", "Programming question (required)")
	exaCodeContextCmd.Flags().Int("tokens", 0, "Token budget for the context (clamped to 1000..50000)")
	exaCodeContextCmd.MarkFlagRequired("query")

	exaResearchStartCmd.Flags().String("instructions", "", "Research instructions (required)")
	exaResearchStartCmd.Flags().String("model", "", "Research model")
	exaResearchStartCmd.MarkFlagRequired("instructions")

	exaResearchCheckCmd.Flags().String("task-id", "", "Research task ID (required)")
	exaResearchCheckCmd.MarkFlagRequired("task-id")

	exaConfigCmd.Flags().Bool("no-test", false, "Skip the connection probe search")

	apiCmds := append(searchCmds,
		exaCrawlCmd, exaCodeContextCmd, exaResearchStartCmd, exaResearchCheckCmd, exaConfigCmd)
	for _, cmd := range apiCmds {
		addAPIFlags(cmd.Flags(), "EXA")
		if cmd != exaConfigCmd {
			cmd.Flags().StringP("out", "o", "", "Write the payload to a file instead of stdout")
		}
	}

	exaResearchCmd.AddCommand(exaResearchStartCmd)
	exaResearchCmd.AddCommand(exaResearchCheckCmd)

	exaCmd.AddCommand(exaSearchCmd)
	exaCmd.AddCommand(exaSearchAdvancedCmd)
	exaCmd.AddCommand(exaDeepSearchCmd)
	exaCmd.AddCommand(exaCompanyCmd)
	exaCmd.AddCommand(exaLinkedinCmd)
	exaCmd.AddCommand(exaCrawlCmd)
	exaCmd.AddCommand(exaCodeContextCmd)
	exaCmd.AddCommand(exaResearchCmd)
	exaCmd.AddCommand(exaConfigCmd)
	rootCmd.AddCommand(exaCmd)
}
