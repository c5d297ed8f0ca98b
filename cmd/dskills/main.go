package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Dianel555/DSkills/pkg/config"
	"github.com/Dianel555/DSkills/pkg/logger"
	"github.com/Dianel555/DSkills/pkg/presenter"
)

func init() {
	// Environment variables
	viper.SetEnvPrefix("DSKILLS")
	viper.AutomaticEnv()

	// Config file support
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.dskills")
	viper.AddConfigPath(".")

	// Load config file if it exists (ignore errors if it doesn't)
	_ = viper.ReadInConfig()
}

var rootCmd = &cobra.Command{
	Use:   "dskills",
	Short: "Skills CLI suite for AI coding assistants",
	Long: `DSkills packages assistant skills as one binary: Grok web search,
Exa semantic search, a sequential thinking journal, timezone utilities,
the ACE prompt enhancer and code indexer, local project tools and
marketplace manifest tooling.`,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		config.LoadDotenv()

		if level, err := cmd.Flags().GetString("log-level"); err == nil && level != "" {
			if err := logger.SetLogLevel(level); err != nil {
				presenter.Warning(fmt.Sprintf("Invalid log level %q, using default", level))
			}
		}
		if format, err := cmd.Flags().GetString("log-format"); err == nil && format != "" {
			logger.SetLogFormat(format)
		}
		if quiet, err := cmd.Flags().GetBool("quiet"); err == nil {
			presenter.SetQuiet(quiet)
		}
	},
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
		os.Exit(1)
	},
}

// printJSON writes the command payload to stdout. Human-facing chatter
// goes through the presenter on stderr so stdout stays machine-parseable.
func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fail(err)
	}
	fmt.Println(string(data))
}

// printRawJSON re-indents an upstream JSON payload, passing it through
// unchanged when it does not parse.
func printRawJSON(raw []byte) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		fmt.Println(string(raw))
		return
	}
	printJSON(v)
}

// fail prints an {"error": ...} payload to stdout and exits non-zero.
func fail(err error) {
	payload, _ := json.Marshal(map[string]string{"error": err.Error()})
	fmt.Println(string(payload))
	os.Exit(1)
}

// writeOut writes a payload to a file when --out is set, printing a
// small confirmation document instead of the payload itself.
func writeOut(path string, payload []byte) {
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		fail(err)
	}
	printJSON(map[string]string{"status": "ok", "file": path})
}

// addAPIFlags registers the remote-API override flags shared by the
// search command groups.
func addAPIFlags(flags *pflag.FlagSet, envPrefix string) {
	flags.String("api-url", "", fmt.Sprintf("API base URL (overrides %s_API_URL)", envPrefix))
	flags.String("api-key", "", fmt.Sprintf("API key (overrides %s_API_KEY)", envPrefix))
}

func commandContext(cmd *cobra.Command) context.Context {
	return logger.WithLogger(cmd.Context(), logger.L)
}

func main() {
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "fmt", "Log format (fmt, json, text)")
	rootCmd.PersistentFlags().Bool("quiet", false, "Suppress informational output on stderr")

	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
