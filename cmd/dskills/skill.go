package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Dianel555/DSkills/pkg/marketplace"
	"github.com/Dianel555/DSkills/pkg/presenter"
)

var skillCmd = &cobra.Command{
	Use:   "skill",
	Short: "Manage the skills tree and marketplace manifest",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

var skillNewCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Scaffold a new skill and register it in the manifest",
	Long: `Create skills/<name>/SKILL.md from a template and register the plugin
in .claude-plugin/marketplace.json. Names are lowercase letters, digits
and hyphens, up to 64 characters, with no consecutive hyphens.

Example:
  dskills skill new web-search --description "Search the web"`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		root, _ := cmd.Flags().GetString("root")
		description, _ := cmd.Flags().GetString("description")

		dir, err := marketplace.CreateSkill(root, args[0], description)
		if err != nil {
			fail(err)
		}
		presenter.Success(fmt.Sprintf("Created skill: %s", dir))
		presenter.Info(fmt.Sprintf("Next: edit %s/SKILL.md", dir))
		printJSON(map[string]string{"status": "created", "name": args[0], "dir": dir})
	},
}

var skillListCmd = &cobra.Command{
	Use:   "list",
	Short: "List skills with their descriptions",
	Run: func(cmd *cobra.Command, _ []string) {
		root, _ := cmd.Flags().GetString("root")
		asJSON, _ := cmd.Flags().GetBool("json")

		skills, err := marketplace.ListSkills(root)
		if err != nil {
			fail(err)
		}

		if asJSON {
			printJSON(map[string]any{"skills": skills})
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tDESCRIPTION\tDIRECTORY")
		for _, skill := range skills {
			fmt.Fprintf(w, "%s\t%s\t%s\n", skill.Name, skill.Description, skill.Dir)
		}
		w.Flush()
	},
}

var skillValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check skills and manifest for consistency",
	Run: func(cmd *cobra.Command, _ []string) {
		root, _ := cmd.Flags().GetString("root")

		issues, err := marketplace.Validate(root)
		if err != nil {
			fail(err)
		}
		if len(issues) > 0 {
			for _, issue := range issues {
				presenter.Warning(issue)
			}
			printJSON(map[string]any{"valid": false, "issues": issues})
			os.Exit(1)
		}
		presenter.Success("Marketplace is consistent")
		printJSON(map[string]any{"valid": true, "issues": []string{}})
	},
}

var skillSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Mirror skills/ into the legacy .claude/skills directory",
	Run: func(cmd *cobra.Command, _ []string) {
		root, _ := cmd.Flags().GetString("root")

		synced, err := marketplace.Sync(root)
		if err != nil {
			fail(err)
		}
		presenter.Success(fmt.Sprintf("Synced %d skill(s) into %s", len(synced), marketplace.LegacyDir))
		printJSON(map[string]any{"status": "synced", "skills": synced})
	},
}

func init() {
	skillNewCmd.Flags().StringP("description", "d", "", "Skill description for the frontmatter and manifest")

	skillListCmd.Flags().Bool("json", false, "Print JSON instead of a table")

	for _, cmd := range []*cobra.Command{skillNewCmd, skillListCmd, skillValidateCmd, skillSyncCmd} {
		cmd.Flags().String("root", ".", "Marketplace repository root")
	}

	skillCmd.AddCommand(skillNewCmd)
	skillCmd.AddCommand(skillListCmd)
	skillCmd.AddCommand(skillValidateCmd)
	skillCmd.AddCommand(skillSyncCmd)
	rootCmd.AddCommand(skillCmd)
}
