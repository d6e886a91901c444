package commands

import (
	"fmt"
	"log/slog"
	"time"

	"gtrends/lib/trends"
	"gtrends/lib/trends/series"
	"gtrends/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

var collectFlags struct {
	terms       *[]string
	granularity *string
	start       *string
	end         *string
	sum         *bool
	out         *string
	print       *bool
	geo         *string
	category    *string
	property    *string
	timezone    *string
}

func init() {
	flags := collectCmd.Flags()
	collectFlags.terms = flags.StringSlice("terms", nil, "Comma separated search terms, the first one is used to scale every batch.")
	collectFlags.granularity = flags.StringP("granularity", "g", "d", "Either 'd' (daily) or 'w' (weekly).")
	collectFlags.start = flags.String("start", "2004-01", "The first month, YYYY-MM.")
	collectFlags.end = flags.String("end", "", "The month to stop before, YYYY-MM. Defaults to the current month.")
	collectFlags.sum = flags.Bool("sum", false, "Sum every term into a single column.")
	collectFlags.out = flags.StringP("out", "o", "", "Where to save the series, .xlsx files are written as spreadsheets.")
	collectFlags.print = flags.Bool("print", false, "Print the series as a table.")
	collectFlags.geo = flags.String("geo", "", "Region code, ex. US.")
	collectFlags.category = flags.String("cat", "", "Category id.")
	collectFlags.property = flags.String("gprop", "", "Search property, ex. news.")
	collectFlags.timezone = flags.String("tz", "", "Timezone name.")
	collectCmd.MarkFlagRequired("terms")

	rootCmd.AddCommand(collectCmd)
}

var collectCmd = &cobra.Command{
	Use:   "collect --terms <a,b,...> [--start YYYY-MM] [--end YYYY-MM] [-o out.csv]",
	Short: "Downloads and stitches a continuous, normalized series for any number of terms.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(*configPath)
		if err != nil {
			serviceutil.Fatal("failed to load config", err)
		}

		gran, err := series.ParseGranularity(*collectFlags.granularity)
		if err != nil {
			serviceutil.Fatal("invalid granularity", err)
		}
		start, end, err := dateRange(*collectFlags.start, *collectFlags.end)
		if err != nil {
			serviceutil.Fatal("invalid date range", err)
		}

		collector, cleanup, err := newCollector(cmd.Context(), cfg)
		defer cleanup()
		if err != nil {
			serviceutil.Fatal("failed to create collector", err)
		}

		req := trends.Request{
			Terms:       *collectFlags.terms,
			Granularity: gran,
			Geo:         firstNonEmpty(*collectFlags.geo, cfg.Geo),
			Category:    firstNonEmpty(*collectFlags.category, cfg.Category),
			Property:    firstNonEmpty(*collectFlags.property, cfg.Property),
			Timezone:    firstNonEmpty(*collectFlags.timezone, cfg.Timezone),
			Start:       start,
			End:         end,
			Sum:         *collectFlags.sum,
			SavePath:    *collectFlags.out,
		}

		t1 := time.Now()
		table, err := collector.Collect(cmd.Context(), cfg.Credentials, req)
		if err != nil {
			serviceutil.Fatal("failed to collect series", err)
		}
		slog.Info(
			"collected series",
			"rows", len(table.Rows),
			"seconds", time.Since(t1).Seconds(),
		)

		if *collectFlags.print || req.SavePath == "" {
			renderSeries(table)
		}
		if req.SavePath != "" {
			fmt.Println("saved to", req.SavePath)
		}
	},
}
