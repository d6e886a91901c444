package commands

import (
	"fmt"

	"gtrends/lib/trends"
	"gtrends/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

var rawFlags struct {
	terms *[]string
	start *string
	end   *string
	out   *string
	geo   *string
}

func init() {
	flags := rawCmd.Flags()
	rawFlags.terms = flags.StringSlice("terms", nil, "Comma separated search terms, at most 5.")
	rawFlags.start = flags.String("start", "2004-01", "The first month, YYYY-MM.")
	rawFlags.end = flags.String("end", "", "The month to stop before, YYYY-MM. Defaults to the current month.")
	rawFlags.out = flags.StringP("out", "o", "", "Where to save the export, it is printed when unset.")
	rawFlags.geo = flags.String("geo", "", "Region code, ex. US.")
	rawCmd.MarkFlagRequired("terms")

	rootCmd.AddCommand(rawCmd)
}

var rawCmd = &cobra.Command{
	Use:   "raw --terms <a,b,...> [--start YYYY-MM] [--end YYYY-MM] [-o out.csv]",
	Short: "Downloads a single export covering the whole range without any processing.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(*configPath)
		if err != nil {
			serviceutil.Fatal("failed to load config", err)
		}
		start, end, err := dateRange(*rawFlags.start, *rawFlags.end)
		if err != nil {
			serviceutil.Fatal("invalid date range", err)
		}

		collector, cleanup, err := newCollector(cmd.Context(), cfg)
		defer cleanup()
		if err != nil {
			serviceutil.Fatal("failed to create collector", err)
		}

		raw, err := collector.CollectRaw(cmd.Context(), cfg.Credentials, trends.RawRequest{
			Terms:    *rawFlags.terms,
			Geo:      firstNonEmpty(*rawFlags.geo, cfg.Geo),
			Category: cfg.Category,
			Property: cfg.Property,
			Timezone: cfg.Timezone,
			Start:    start,
			End:      end,
			SavePath: *rawFlags.out,
		})
		if err != nil {
			serviceutil.Fatal("failed to download export", err)
		}
		if *rawFlags.out == "" {
			fmt.Print(raw)
		}
	},
}
