// Package persist writes finished series and raw exports to disk, and reads
// saved series back.
package persist

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gtrends/lib/trends/series"
)

const dateLayout = "2006-01-02"

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func createFile(path string) (*os.File, error) {
	err := os.MkdirAll(filepath.Dir(path), 0755)
	if err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}
	return os.Create(path)
}

// Records is the table as csv records, header first.
func Records(table series.Table) [][]string {
	records := make([][]string, 0, len(table.Rows)+1)
	records = append(records, table.Header)
	for _, row := range table.Rows {
		record := make([]string, 0, len(row.Values)+1)
		record = append(record, row.Date.Format(dateLayout))
		for _, v := range row.Values {
			record = append(record, formatValue(v))
		}
		records = append(records, record)
	}
	return records
}

func SaveCSV(path string, table series.Table) error {
	slog.Debug("writing csv", "path", path, "rows", len(table.Rows))

	file, err := createFile(path)
	if err != nil {
		return fmt.Errorf("save csv: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	err = writer.WriteAll(Records(table))
	if err != nil {
		return fmt.Errorf("save csv: %w", err)
	}
	return file.Close()
}

// ReadCSV reads a table written by SaveCSV.
func ReadCSV(path string) (series.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return series.Table{}, fmt.Errorf("read csv: %w", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return series.Table{}, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return series.Table{}, fmt.Errorf("read csv: %s has no header", path)
	}

	header := records[0]
	if header[0] != "date" {
		return series.Table{}, fmt.Errorf("read csv: first column is %q, expected \"date\"", header[0])
	}

	table := series.Table{Header: header}
	for i, record := range records[1:] {
		date, err := time.Parse(dateLayout, record[0])
		if err != nil {
			return series.Table{}, fmt.Errorf("read csv: line %d: %w", i+2, err)
		}
		row := series.Row{Date: date, Values: make([]float64, len(record)-1)}
		for k, field := range record[1:] {
			row.Values[k], err = strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return series.Table{}, fmt.Errorf("read csv: line %d: %w", i+2, err)
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// SaveRaw writes an export exactly as it was downloaded.
func SaveRaw(path string, raw string) error {
	file, err := createFile(path)
	if err != nil {
		return fmt.Errorf("save raw: %w", err)
	}
	defer file.Close()

	_, err = file.WriteString(raw)
	if err != nil {
		return fmt.Errorf("save raw: %w", err)
	}
	return file.Close()
}

// Save picks the output format from the file extension, .xlsx files are
// written as spreadsheets and everything else as csv.
func Save(path string, table series.Table) error {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return SaveXLSX(path, table)
	}
	return SaveCSV(path, table)
}
