// Package report renders tabular exports as CSV, Excel or PDF.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/xuri/excelize/v2"
)

// Supported output formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

// Table is a titled grid of string cells.
type Table struct {
	Title       string
	Headers     []string
	Rows        [][]string
	GeneratedAt time.Time
}

// IsSupported reports whether format can be rendered.
func IsSupported(format string) bool {
	switch format {
	case FormatCSV, FormatXLSX, FormatPDF:
		return true
	default:
		return false
	}
}

// ContentType returns the MIME type of a rendered format.
func ContentType(format string) string {
	switch format {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/csv; charset=utf-8"
	}
}

// FileExtension returns the file extension, including the dot, for a format.
func FileExtension(format string) string {
	if !IsSupported(format) {
		return ".csv"
	}
	return "." + format
}

// Write renders table to w in the requested format.
func Write(w io.Writer, table Table, format string) error {
	switch format {
	case FormatCSV:
		return writeCSV(w, table)
	case FormatXLSX:
		return writeXLSX(w, table)
	case FormatPDF:
		return writePDF(w, table)
	default:
		return fmt.Errorf("unsupported report format %q", format)
	}
}

func writeCSV(w io.Writer, table Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(table.Headers); err != nil {
		return err
	}
	if err := writer.WriteAll(table.Rows); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

func writeXLSX(w io.Writer, table Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(table.Title)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	header := make([]interface{}, len(table.Headers))
	for i, h := range table.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, row := range table.Rows {
		cells := make([]interface{}, len(row))
		for j, value := range row {
			cells[j] = value
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return err
		}
	}

	if len(table.Headers) > 0 {
		style, err := f.NewStyle(&excelize.Style{
			Font: &excelize.Font{Bold: true},
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#E5E7EB"}},
		})
		if err != nil {
			return err
		}
		last, err := excelize.CoordinatesToCellName(len(table.Headers), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
			return err
		}
		if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
			return err
		}
	}

	return f.Write(w)
}

func writePDF(w io.Writer, table Table) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(table.Title, true)
	pdf.SetMargins(10, 12, 10)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, table.Title, "", 1, "L", false, 0, "")
	if !table.GeneratedAt.IsZero() {
		pdf.SetFont("Helvetica", "", 8)
		pdf.CellFormat(0, 5, "Generated "+table.GeneratedAt.Format(time.RFC1123), "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)

	if len(table.Headers) == 0 {
		return pdf.Output(w)
	}

	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colWidth := (pageWidth - left - right) / float64(len(table.Headers))

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(229, 231, 235)
	for _, h := range table.Headers {
		pdf.CellFormat(colWidth, 7, tr(h), "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	for _, row := range table.Rows {
		for i := range table.Headers {
			value := ""
			if i < len(row) {
				value = truncate(row[i], colWidth)
			}
			pdf.CellFormat(colWidth, 6, tr(value), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	return pdf.Output(w)
}

// truncate keeps roughly as many characters as fit in width millimetres at 8pt.
func truncate(value string, width float64) string {
	limit := int(width / 1.6)
	runes := []rune(value)
	if limit <= 3 || len(runes) <= limit {
		return value
	}
	return string(runes[:limit-3]) + "..."
}

func sheetName(title string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '-'
		}
		return r
	}, strings.TrimSpace(title))
	if name == "" {
		name = "Report"
	}
	if len([]rune(name)) > 31 {
		name = string([]rune(name)[:31])
	}
	return name
}
