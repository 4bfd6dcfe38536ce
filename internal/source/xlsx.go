package source

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/xuri/excelize/v2"

	"github.com/dbsmedya/cleanaudit/internal/dataset"
)

func (l *Loader) loadXLSX(role, path string) (*dataset.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return nil, &dataset.MalformedInputError{Table: role, Reason: fmt.Sprintf("cannot open workbook: %v", err)}
	}
	defer f.Close()

	sheet := l.inputs.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, &dataset.MalformedInputError{Table: role, Reason: "workbook has no sheets"}
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &dataset.MalformedInputError{Table: role, Reason: fmt.Sprintf("sheet %q: %v", sheet, err)}
	}
	if len(rows) == 0 {
		return nil, &dataset.MalformedInputError{Table: role, Reason: fmt.Sprintf("sheet %q has no header row", sheet)}
	}

	header := rows[0]
	records := rows[1:]
	// Trailing empty cells are not stored in the sheet.
	for i, rec := range records {
		if len(rec) < len(header) {
			padded := make([]string, len(header))
			copy(padded, rec)
			records[i] = padded
		}
	}
	return l.rowsToTable(role, header, records)
}
