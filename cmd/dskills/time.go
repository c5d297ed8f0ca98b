package main

import (
	"github.com/spf13/cobra"

	"github.com/Dianel555/DSkills/pkg/timezone"
)

var timeCmd = &cobra.Command{
	Use:   "time",
	Short: "Time and timezone utilities",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

var timeNowCmd = &cobra.Command{
	Use:   "now",
	Short: "Current time in an IANA timezone",
	Run: func(cmd *cobra.Command, _ []string) {
		zone, _ := cmd.Flags().GetString("timezone")

		now, err := timezone.Now(zone)
		if err != nil {
			fail(err)
		}
		printJSON(now)
	},
}

var timeConvertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert today's wall time between timezones",
	Long: `Convert an HH:MM wall time from one IANA zone to another, reporting
both sides and the signed hour difference.

Example:
  dskills time convert --time 09:30 --from Europe/London --to Asia/Tokyo`,
	Run: func(cmd *cobra.Command, _ []string) {
		clock, _ := cmd.Flags().GetString("time")
		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")

		conversion, err := timezone.Convert(from, clock, to)
		if err != nil {
			fail(err)
		}
		printJSON(conversion)
	},
}

var timeZonesCmd = &cobra.Command{
	Use:   "zones",
	Short: "List IANA timezone names",
	Run: func(cmd *cobra.Command, _ []string) {
		filter, _ := cmd.Flags().GetString("filter")
		printJSON(map[string]any{"zones": timezone.List(filter)})
	},
}

func init() {
	timeNowCmd.Flags().String("timezone", "UTC", "IANA timezone name")

	timeConvertCmd.Flags().String("time", "", "Wall time as HH:MM (required)")
	timeConvertCmd.Flags().String("from", "", "Source IANA timezone (required)")
	timeConvertCmd.Flags().String("to", "", "Target IANA timezone (required)")
	timeConvertCmd.MarkFlagRequired("time")
	timeConvertCmd.MarkFlagRequired("from")
	timeConvertCmd.MarkFlagRequired("to")

	timeZonesCmd.Flags().String("filter", "", "Case-insensitive substring filter")

	timeCmd.AddCommand(timeNowCmd)
	timeCmd.AddCommand(timeConvertCmd)
	timeCmd.AddCommand(timeZonesCmd)
	rootCmd.AddCommand(timeCmd)
}
