// Package export renders resident rosters and medication administration
// records as xlsx workbooks.
package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/careconnect/careconnect-api/internal/model"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	rosterSheet = "Residents"
	marSheet    = "MAR"
)

var rosterHeader = []string{
	"Room", "Last Name", "First Name", "Date of Birth", "Gender", "Status",
	"Admission Date", "Barcode", "Emergency Contact", "Emergency Phone",
}

var rosterWidths = []float64{8, 18, 18, 14, 10, 14, 14, 18, 24, 18}

var marHeader = []string{
	"Administered At", "Medication", "Dosage", "Status", "Dose Given", "Administered By", "Scan Verified", "Notes",
}

var marWidths = []float64{20, 24, 14, 10, 14, 22, 12, 40}

// Roster writes one row per resident.
func Roster(residents []*model.Resident) ([]byte, error) {
	rows := make([][]interface{}, 0, len(residents))
	for _, r := range residents {
		rows = append(rows, []interface{}{
			r.RoomNumber,
			r.LastName,
			r.FirstName,
			formatDate(r.DateOfBirth),
			r.Gender,
			r.Status,
			formatDate(r.AdmissionDate),
			r.Barcode,
			r.EmergencyContactName,
			r.EmergencyContactPhone,
		})
	}
	return render(rosterSheet, rosterHeader, rosterWidths, rows)
}

// MAR writes the administration record of one resident. Times are rendered in loc.
func MAR(resident *model.Resident, records []*model.Administration, loc *time.Location) ([]byte, error) {
	if loc == nil {
		loc = time.UTC
	}
	rows := make([][]interface{}, 0, len(records)+2)
	rows = append(rows,
		[]interface{}{"Resident", resident.FullName(), "Room", resident.RoomNumber},
		nil,
	)
	for _, a := range records {
		verified := "No"
		if a.ScanVerified {
			verified = "Yes"
		}
		rows = append(rows, []interface{}{
			a.AdministeredAt.In(loc).Format("2006-01-02 15:04"),
			a.MedicationName,
			a.MedicationDosage,
			a.Status,
			a.DoseGiven,
			a.AdministeredByName,
			verified,
			a.Notes,
		})
	}
	return render(marSheet, marHeader, marWidths, rows)
}

// FileName builds an attachment name such as residents-2026-04-10.xlsx.
func FileName(prefix string, day time.Time) string {
	return fmt.Sprintf("%s-%s.xlsx", prefix, day.Format(model.DateLayout))
}

func render(sheet string, header []string, widths []float64, rows [][]interface{}) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	headerRow := 1
	if sheet == marSheet {
		// the resident banner occupies the first two rows
		headerRow = 3
	}

	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	row := 1
	for _, values := range rows {
		if row == headerRow {
			row++
		}
		if err := setRow(f, sheet, row, values); err != nil {
			return nil, err
		}
		row++
	}

	if err := setRow(f, sheet, headerRow, toInterfaces(header)); err != nil {
		return nil, err
	}
	last, err := excelize.CoordinatesToCellName(len(header), headerRow)
	if err != nil {
		return nil, err
	}
	first, _ := excelize.CoordinatesToCellName(1, headerRow)
	if err := f.SetCellStyle(sheet, first, last, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}

	topLeft, _ := excelize.CoordinatesToCellName(1, headerRow+1)
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      headerRow,
		TopLeftCell: topLeft,
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze header: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	if len(values) == 0 {
		return nil
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

func formatDate(d model.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.Format(model.DateLayout)
}

func toInterfaces(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
