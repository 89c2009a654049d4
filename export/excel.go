// Package export assembles the accumulated normalized records into the
// two downloadable artifacts: an XLSX spreadsheet of message metadata
// and a flat ZIP bundle of every extracted attachment. Both builders are
// read-only over the record collection and return in-memory byte
// buffers; writing them anywhere is the caller's concern.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/lochlan-colman/Disquisitionis-MSG-repository/resolve"
)

// Export preconditions, surfaced as distinguishable sentinels so the
// caller can tell "nothing to do" apart from a real failure.
var (
	ErrNoMessages    = errors.New("no messages to export")
	ErrNoAttachments = errors.New("no attachments found in the processed messages")
)

// maxBodyCell is the per-cell body ceiling. XLSX caps cells at 32,767
// characters; 32,000 is the conservative contract and is applied
// unconditionally.
const (
	maxBodyCell      = 32000
	truncationMarker = "...[TRUNCATED]"
	dateLayout       = "2006-01-02 15:04:05"
	sheetName        = "Emails"
)

// columns is the fixed export schema, with initial display widths.
var columns = []struct {
	name  string
	width float64
}{
	{"Sender Name", 20},
	{"Sender Email", 25},
	{"Sender Phone", 15},
	{"To", 30},
	{"Sent Date", 20},
	{"Subject", 30},
	{"Body", 50},
}

// Workbook builds the XLSX spreadsheet for the given records. Returns
// ErrNoMessages when there is nothing to export.
func Workbook(records []resolve.Message) ([]byte, error) {
	if len(records) == 0 {
		return nil, ErrNoMessages
	}

	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName("Sheet1", sheetName)

	// Header row, bold.
	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, col.name)
	}
	style, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	first, _ := excelize.CoordinatesToCellName(1, 1)
	last, _ := excelize.CoordinatesToCellName(len(columns), 1)
	f.SetCellStyle(sheetName, first, last, style)

	for rowIdx, rec := range records {
		for colIdx, value := range rowValues(rec) {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	for i, col := range columns {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, col.width)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

// rowValues renders one record as a row matching the column schema.
func rowValues(rec resolve.Message) []string {
	return []string{
		rec.SenderName,
		rec.SenderEmail,
		rec.SenderPhone,
		joinRecipients(rec.Recipients),
		formatDate(rec.SentDate),
		rec.Subject,
		safeBody(rec.Body),
	}
}

// joinRecipients renders the To cell: each recipient's resolved email,
// falling back to its name when no address was recovered.
func joinRecipients(recipients []resolve.Identity) string {
	parts := make([]string, 0, len(recipients))
	for _, r := range recipients {
		if r.Email != "" {
			parts = append(parts, r.Email)
		} else {
			parts = append(parts, r.Name)
		}
	}
	return strings.Join(parts, "; ")
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// safeBody truncates over-long bodies to the cell ceiling and appends
// the truncation marker. The ceiling counts characters, not bytes, and
// the cut lands on a rune boundary so the cell stays valid UTF-8.
func safeBody(body string) string {
	if utf8.RuneCountInString(body) <= maxBodyCell {
		return body
	}
	runes := []rune(body)
	return string(runes[:maxBodyCell]) + truncationMarker
}
