package main

import (
	"github.com/spf13/cobra"

	"github.com/Dianel555/DSkills/pkg/presenter"
	"github.com/Dianel555/DSkills/pkg/project"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Local project navigation and memories",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

func projectMemories(cmd *cobra.Command) *project.Memories {
	root, _ := cmd.Flags().GetString("project")
	store, err := project.NewMemories(root)
	if err != nil {
		fail(err)
	}
	return store
}

var memoryCmd = &cobra.Command{
	Use:   "memory",
	Short: "Named Markdown notes stored with the project",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

var memoryWriteCmd = &cobra.Command{
	Use:   "write <name> <content>",
	Short: "Create or replace a memory",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		if err := projectMemories(cmd).Write(args[0], args[1]); err != nil {
			fail(err)
		}
		printJSON(map[string]string{"status": "written", "name": args[0]})
	},
}

var memoryReadCmd = &cobra.Command{
	Use:   "read <name>",
	Short: "Print a memory",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		content, err := projectMemories(cmd).Read(args[0])
		if err != nil {
			fail(err)
		}
		printJSON(map[string]string{"name": args[0], "content": content})
	},
}

var memoryEditCmd = &cobra.Command{
	Use:   "edit <name> <content>",
	Short: "Replace an existing memory",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		if err := projectMemories(cmd).Edit(args[0], args[1]); err != nil {
			fail(err)
		}
		printJSON(map[string]string{"status": "edited", "name": args[0]})
	},
}

var memoryDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a memory",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := projectMemories(cmd).Delete(args[0]); err != nil {
			fail(err)
		}
		printJSON(map[string]string{"status": "deleted", "name": args[0]})
	},
}

var memoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List memory names",
	Run: func(cmd *cobra.Command, _ []string) {
		names, err := projectMemories(cmd).List()
		if err != nil {
			fail(err)
		}
		printJSON(map[string]any{"memories": names})
	},
}

var projectLsCmd = &cobra.Command{
	Use:   "ls [path]",
	Short: "List directory contents",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		root, _ := cmd.Flags().GetString("project")
		recursive, _ := cmd.Flags().GetBool("recursive")
		maxDepth, _ := cmd.Flags().GetInt("max-depth")

		rel := "."
		if len(args) > 0 {
			rel = args[0]
		}

		entries, err := project.ListDir(root, rel, recursive, maxDepth)
		if err != nil {
			fail(err)
		}
		printJSON(map[string]any{"entries": entries})
	},
}

var projectFindCmd = &cobra.Command{
	Use:   "find <glob>",
	Short: "Find files matching a glob pattern",
	Long: `Find files by doublestar glob, relative to the project root.

Examples:
  dskills project find "**/*.go"
  dskills project find "*_test.go"`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		root, _ := cmd.Flags().GetString("project")

		matches, err := project.FindFiles(root, args[0])
		if err != nil {
			fail(err)
		}
		printJSON(map[string]any{"files": matches})
	},
}

var projectGrepCmd = &cobra.Command{
	Use:   "grep <regex>",
	Short: "Search file contents with a regex",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		root, _ := cmd.Flags().GetString("project")
		filePattern, _ := cmd.Flags().GetString("file-pattern")
		ignoreCase, _ := cmd.Flags().GetBool("ignore-case")

		matches, err := project.Grep(root, args[0], project.GrepOptions{
			FilePattern: filePattern,
			IgnoreCase:  ignoreCase,
		})
		if err != nil {
			fail(err)
		}
		printJSON(map[string]any{"matches": matches})
	},
}

var projectConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Read and edit JSON/YAML configuration files",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

var projectConfigReadCmd = &cobra.Command{
	Use:   "read <path>",
	Short: "Print a configuration file as JSON",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		format, _ := cmd.Flags().GetString("format")

		config, err := project.ReadConfig(args[0], format)
		if err != nil {
			fail(err)
		}
		printJSON(config)
	},
}

var projectConfigSetCmd = &cobra.Command{
	Use:   "set <path> <dot.key> <value>",
	Short: "Set one dot-notation key in a configuration file",
	Long: `Set a key in a JSON or YAML file, creating intermediate maps as
needed. The value is parsed as JSON when possible, so numbers and
booleans keep their type.

Example:
  dskills project config set config.yaml server.port 9090`,
	Args: cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		value, err := project.SetConfig(args[0], args[1], args[2])
		if err != nil {
			fail(err)
		}
		presenter.Success("Configuration updated")
		printJSON(map[string]any{"file": args[0], "key": args[1], "value": value})
	},
}

func init() {
	memoryCmd.AddCommand(memoryWriteCmd)
	memoryCmd.AddCommand(memoryReadCmd)
	memoryCmd.AddCommand(memoryEditCmd)
	memoryCmd.AddCommand(memoryDeleteCmd)
	memoryCmd.AddCommand(memoryListCmd)

	projectLsCmd.Flags().BoolP("recursive", "r", false, "Descend into subdirectories")
	projectLsCmd.Flags().Int("max-depth", 0, "Maximum recursion depth (0 = unlimited)")

	projectGrepCmd.Flags().String("file-pattern", "", "Restrict the search to files matching a glob")
	projectGrepCmd.Flags().BoolP("ignore-case", "i", false, "Case-insensitive matching")

	projectConfigReadCmd.Flags().String("format", "", "File format (json, yaml); inferred from the extension by default")

	projectConfigCmd.AddCommand(projectConfigReadCmd)
	projectConfigCmd.AddCommand(projectConfigSetCmd)

	for _, cmd := range []*cobra.Command{
		memoryWriteCmd, memoryReadCmd, memoryEditCmd, memoryDeleteCmd, memoryListCmd,
		projectLsCmd, projectFindCmd, projectGrepCmd,
	} {
		cmd.Flags().String("project", ".", "Project root")
	}

	projectCmd.AddCommand(memoryCmd)
	projectCmd.AddCommand(projectLsCmd)
	projectCmd.AddCommand(projectFindCmd)
	projectCmd.AddCommand(projectGrepCmd)
	projectCmd.AddCommand(projectConfigCmd)
	rootCmd.AddCommand(projectCmd)
}
