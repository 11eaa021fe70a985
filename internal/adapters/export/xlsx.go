// Package export writes result tables as spreadsheets.
package export

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/okian/courtside/internal/domain/types"
)

// ContentType is the media type of XLSX output.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ErrWrite reports a failure while producing the workbook.
var ErrWrite = errors.New("write spreadsheet")

// maxSheetName is the sheet name length limit imposed by Excel.
const maxSheetName = 31

// XLSX writes t to w as a single-sheet workbook. The first row holds the
// column names; an empty table yields a header-only sheet.
func XLSX(w io.Writer, sheet string, t *types.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	name := sheetName(sheet)
	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), name); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	var columns []string
	if t != nil {
		columns = t.Columns
	}
	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := setRow(f, name, 1, header); err != nil {
		return err
	}

	for i := 0; i < t.Len(); i++ {
		if err := setRow(f, name, i+2, t.Rows[i]); err != nil {
			return err
		}
	}

	if len(columns) > 0 {
		if err := f.SetPanes(name, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return fmt.Errorf("%w: %w", ErrWrite, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	if len(values) == 0 {
		return nil
	}
	axis, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	cells := make([]any, len(values))
	copy(cells, values)
	if err := f.SetSheetRow(sheet, axis, &cells); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}

func sheetName(s string) string {
	if s == "" {
		return "Sheet1"
	}
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			r = '_'
		}
		out = append(out, r)
	}
	if len(out) > maxSheetName {
		out = out[:maxSheetName]
	}
	return string(out)
}
