package commands

import (
	"os"
	"strconv"

	"gtrends/lib/trends/series"

	"github.com/jedib0t/go-pretty/v6/table"
)

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

func renderSeries(s series.Table) {
	t := newTable()

	header := table.Row{}
	for _, name := range s.Header {
		header = append(header, name)
	}
	t.AppendHeader(header)

	for _, row := range s.Rows {
		out := table.Row{row.Date.Format("2006-01-02")}
		for _, v := range row.Values {
			out = append(out, strconv.FormatFloat(v, 'f', 3, 64))
		}
		t.AppendRow(out)
	}
	t.Render()
}
