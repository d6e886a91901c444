package persist

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gtrends/lib/trends/series"

	"github.com/xuri/excelize/v2"
)

const sheetName = "trends"

func SaveXLSX(path string, table series.Table) error {
	slog.Debug("writing xlsx", "path", path, "rows", len(table.Rows))

	f := excelize.NewFile()
	defer f.Close()

	err := f.SetSheetName(f.GetSheetName(0), sheetName)
	if err != nil {
		return fmt.Errorf("save xlsx: %w", err)
	}

	for col, name := range table.Header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("save xlsx: %w", err)
		}
		err = f.SetCellValue(sheetName, cell, name)
		if err != nil {
			return fmt.Errorf("save xlsx: %w", err)
		}
	}

	for i, row := range table.Rows {
		values := make([]any, 0, len(row.Values)+1)
		values = append(values, row.Date.Format(dateLayout))
		for _, v := range row.Values {
			values = append(values, v)
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("save xlsx: %w", err)
		}
		err = f.SetSheetRow(sheetName, cell, &values)
		if err != nil {
			return fmt.Errorf("save xlsx: %w", err)
		}
	}

	err = os.MkdirAll(filepath.Dir(path), 0755)
	if err != nil {
		return fmt.Errorf("save xlsx: %w", err)
	}
	err = f.SaveAs(path)
	if err != nil {
		return fmt.Errorf("save xlsx: %w", err)
	}
	return nil
}
