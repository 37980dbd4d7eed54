package report

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleTable() Table {
	return Table{
		Title:       "Payments: March/April",
		Headers:     []string{"Reference", "Student", "Amount", "Status"},
		Rows:        [][]string{{"PAY-1", "Ayu", "150000.00", "completed"}, {"PAY-2", "Budi, Jr.", "90000.00", "pending"}},
		GeneratedAt: time.Date(2024, 4, 1, 8, 0, 0, 0, time.UTC),
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleTable(), FormatCSV))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, "Budi, Jr.", records[2][1])
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleTable(), FormatXLSX))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	sheet := "Payments- March-April"
	require.Equal(t, sheet, f.GetSheetName(0))
	value, err := f.GetCellValue(sheet, "A1")
	require.NoError(t, err)
	require.Equal(t, "Reference", value)
	value, err = f.GetCellValue(sheet, "B3")
	require.NoError(t, err)
	require.Equal(t, "Budi, Jr.", value)
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleTable(), FormatPDF))
	require.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestWriteRejectsUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	require.Error(t, Write(&buf, sampleTable(), "docx"))
	require.False(t, IsSupported("docx"))
	require.Equal(t, ".csv", FileExtension("docx"))
	require.Equal(t, ".xlsx", FileExtension(FormatXLSX))
	require.Equal(t, "application/pdf", ContentType(FormatPDF))
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "short", truncate("short", 60))
	require.Equal(t, "abcdefg...", truncate("abcdefghijklmnopqrstuvwxyz", 17))
}
