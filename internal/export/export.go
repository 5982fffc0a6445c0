// Package export turns a fetched attendance report into downloadable
// artifacts. Both formats are pure projections of the record list: no
// network calls, no re-derivation.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/prithwish249/qr-attendence/internal/models"
)

var Columns = []string{"Username", "Role", "Check-in Time", "Status"}

// Placeholders for fields the backend may leave empty.
const (
	placeholderUsername = "Unknown"
	placeholderNA       = "N/A"
	placeholderNoTime   = "Not checked in"
)

const sheetName = "Attendance"

// Filename returns the download name for the given date and extension,
// e.g. attendance_report_2024-01-01.csv.
func Filename(date, ext string) string {
	return fmt.Sprintf("attendance_report_%s.%s", date, ext)
}

func row(record models.AttendanceRecord) []string {
	username := record.Username
	if username == "" {
		username = placeholderUsername
	}
	role := record.Role
	if role == "" {
		role = placeholderNA
	}
	checkIn := placeholderNoTime
	if record.CheckInTime != nil && *record.CheckInTime != "" {
		checkIn = *record.CheckInTime
	}
	status := record.Status
	if status == "" {
		status = placeholderNA
	}
	return []string{username, role, checkIn, status}
}

// CSV renders the report as CSV text with a header row.
func CSV(records []models.AttendanceRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(Columns); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, record := range records {
		if err := w.Write(row(record)); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// XLSX renders the report as a single-sheet workbook.
func XLSX(records []models.AttendanceRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	for col, header := range Columns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("header cell name: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	for i, record := range records {
		for col, value := range row(record) {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, fmt.Errorf("cell name: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return nil, fmt.Errorf("write cell: %w", err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
