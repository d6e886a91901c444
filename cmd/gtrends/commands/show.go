package commands

import (
	"gtrends/lib/persist"
	"gtrends/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show <series.csv>",
	Short: "Prints a series saved by collect as a table.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		table, err := persist.ReadCSV(args[0])
		if err != nil {
			serviceutil.Fatal("failed to read series", err)
		}
		renderSeries(table)
	},
}
