package xlsxrender

import (
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/diliima/markdown-to-pdf-api/pkg/logger"
)

// ErrEncode indicates the workbook could not be serialized.
var ErrEncode = errors.New("encode workbook")

const (
	maxSheetNameLen = 31
	minColWidth     = 10
	maxColWidth     = 50
)

// Options control sheet naming and cosmetic formatting.
type Options struct {
	SheetName       string
	ApplyFormatting bool
}

// DefaultOptions returns the options used when the caller sends none.
func DefaultOptions() Options {
	return Options{SheetName: "Data", ApplyFormatting: true}
}

// Renderer converts validated records into workbook bytes.
type Renderer struct{}

// New builds a Renderer.
func New() *Renderer {
	return &Renderer{}
}

// Render writes one sheet with a header row followed by one row per
// record. Formatting failures never fail the conversion; the data is
// worth more than the styling, so those errors are logged and skipped.
func (r *Renderer) Render(ctx context.Context, records []map[string]any, columns []string, opts Options) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("render workbook: %w", err)
	}
	if err := Validate(records); err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: no columns", ErrRecordShape)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(opts.SheetName)
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			logger.Warn("sheet rename failed, keeping default",
				logger.F("name", sheet), logger.F("error", err.Error()))
			sheet = "Sheet1"
		}
	}

	for j, col := range columns {
		cell, err := excelize.CoordinatesToCellName(j+1, 1)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEncode, err)
		}
		if err := f.SetCellValue(sheet, cell, col); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEncode, err)
		}
	}

	for i, rec := range records {
		for j, col := range columns {
			v, ok := rec[col]
			if !ok || v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrEncode, err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrEncode, err)
			}
		}
	}

	setColumnWidths(f, sheet, records, columns)
	if opts.ApplyFormatting {
		if err := applyFormatting(f, sheet, len(records), len(columns)); err != nil {
			logger.Warn("workbook formatting skipped", logger.F("error", err.Error()))
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return buf.Bytes(), nil
}

// sheetName applies the default and the workbook format's 31-character
// limit.
func sheetName(name string) string {
	if name == "" {
		name = DefaultOptions().SheetName
	}
	if runes := []rune(name); len(runes) > maxSheetNameLen {
		name = string(runes[:maxSheetNameLen])
	}
	return name
}

// setColumnWidths sizes each column to its longest stringified value,
// clamped so a single huge cell cannot blow up the layout.
func setColumnWidths(f *excelize.File, sheet string, records []map[string]any, columns []string) {
	for j, col := range columns {
		longest := len(col)
		for _, rec := range records {
			if v, ok := rec[col]; ok && v != nil {
				if n := len(fmt.Sprint(v)); n > longest {
					longest = n
				}
			}
		}
		width := float64(longest + 2)
		if width < minColWidth {
			width = minColWidth
		}
		if width > maxColWidth {
			width = maxColWidth
		}
		name, err := excelize.ColumnNumberToName(j + 1)
		if err != nil {
			continue
		}
		if err := f.SetColWidth(sheet, name, name, width); err != nil {
			logger.Warn("column width skipped", logger.F("column", name), logger.F("error", err.Error()))
		}
	}
}

func applyFormatting(f *excelize.File, sheet string, rows, cols int) error {
	border := []excelize.Border{
		{Type: "left", Color: "7F7F7F", Style: 1},
		{Type: "right", Color: "7F7F7F", Style: 1},
		{Type: "top", Color: "7F7F7F", Style: 1},
		{Type: "bottom", Color: "7F7F7F", Style: 1},
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
		Border:    border,
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	bodyStyle, err := f.NewStyle(&excelize.Style{Border: border})
	if err != nil {
		return err
	}
	altStyle, err := f.NewStyle(&excelize.Style{
		Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"F2F2F2"}},
		Border: border,
	})
	if err != nil {
		return err
	}

	lastCol, err := excelize.ColumnNumberToName(cols)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return err
	}
	// Even worksheet rows get the gray fill, so the first data row
	// (row 2) opens the alternation.
	for i := 0; i < rows; i++ {
		row := i + 2
		style := bodyStyle
		if row%2 == 0 {
			style = altStyle
		}
		first := fmt.Sprintf("A%d", row)
		last := fmt.Sprintf("%s%d", lastCol, row)
		if err := f.SetCellStyle(sheet, first, last, style); err != nil {
			return err
		}
	}
	return nil
}
