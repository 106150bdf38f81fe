package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/careconnect/careconnect-api/internal/model"
)

func TestRoster(t *testing.T) {
	dob := model.NewDate(time.Date(1940, 5, 2, 0, 0, 0, 0, time.UTC))
	data, err := Roster([]*model.Resident{
		{FirstName: "Ann", LastName: "Lee", RoomNumber: "12A", DateOfBirth: dob, Status: model.ResidentStatusActive, Barcode: "RES-0123456789"},
		{FirstName: "Bo", LastName: "Kim", RoomNumber: "14", Status: model.ResidentStatusHospitalized},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{rosterSheet}, f.GetSheetList())
	rows, err := f.GetRows(rosterSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Room", rows[0][0])
	assert.Equal(t, []string{"12A", "Lee", "Ann", "1940-05-02"}, rows[1][:4])
	assert.Equal(t, "RES-0123456789", rows[1][7])
	assert.Equal(t, "", rows[2][3])
}

func TestMAR(t *testing.T) {
	resident := &model.Resident{FirstName: "Ann", LastName: "Lee", RoomNumber: "12A"}
	at := time.Date(2026, 4, 10, 8, 30, 0, 0, time.UTC)
	data, err := MAR(resident, []*model.Administration{
		{ID: uuid.New(), AdministeredAt: at, MedicationName: "Metformin", MedicationDosage: "500mg",
			Status: model.AdministrationGiven, ScanVerified: true},
	}, nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	banner, err := f.GetCellValue(marSheet, "B1")
	require.NoError(t, err)
	assert.Equal(t, "Ann Lee", banner)

	header, err := f.GetCellValue(marSheet, "A3")
	require.NoError(t, err)
	assert.Equal(t, "Administered At", header)

	rows, err := f.GetRows(marSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"2026-04-10 08:30", "Metformin", "500mg", "given"}, rows[3][:4])
	assert.Equal(t, "Yes", rows[3][6])
}

func TestFileName(t *testing.T) {
	day := time.Date(2026, 4, 10, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "residents-2026-04-10.xlsx", FileName("residents", day))
}
