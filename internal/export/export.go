package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

// Table is a report flattened into rows. Summary rows are written after a
// blank line below the data.
type Table struct {
	Name    string
	Header  []string
	Rows    [][]any
	Summary [][]any
}

func ContentType(format string) string {
	switch format {
	case FormatCSV:
		return "text/csv"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/octet-stream"
}

func Write(w io.Writer, format string, t Table) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, t)
	case FormatXLSX:
		return WriteXLSX(w, t)
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
}

func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := cw.Write(cells(row)); err != nil {
			return err
		}
	}
	if len(t.Summary) > 0 {
		if err := cw.Write(nil); err != nil {
			return err
		}
		for _, row := range t.Summary {
			if err := cw.Write(cells(row)); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteXLSX(w io.Writer, t Table) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if t.Name != "" {
		if err := f.SetSheetName(sheet, t.Name); err != nil {
			return fmt.Errorf("failed to name sheet: %w", err)
		}
		sheet = t.Name
	}

	header := make([]interface{}, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	row := 2
	put := func(values []any) error {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		excelRow := make([]interface{}, len(values))
		copy(excelRow, values)
		if err := f.SetSheetRow(sheet, cell, &excelRow); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row, err)
		}
		row++
		return nil
	}
	for _, r := range t.Rows {
		if err := put(r); err != nil {
			return err
		}
	}
	if len(t.Summary) > 0 {
		row++
		for _, r := range t.Summary {
			if err := put(r); err != nil {
				return err
			}
		}
	}

	return f.Write(w)
}

func cells(row []any) []string {
	out := make([]string, len(row))
	for i, v := range row {
		switch x := v.(type) {
		case nil:
			out[i] = ""
		case string:
			out[i] = x
		case float64:
			out[i] = strconv.FormatFloat(x, 'f', 2, 64)
		case int:
			out[i] = strconv.Itoa(x)
		default:
			out[i] = fmt.Sprint(x)
		}
	}
	return out
}
