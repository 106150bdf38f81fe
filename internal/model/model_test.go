package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateJSON(t *testing.T) {
	var v struct {
		D Date  `json:"d"`
		P *Date `json:"p"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"d":"1941-03-09","p":"2024-01-02T15:04:05Z"}`), &v))
	assert.Equal(t, "1941-03-09", v.D.String())
	assert.Equal(t, "2024-01-02", v.P.String())

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"1941-03-09","p":"2024-01-02"}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"d":"09/03/1941"}`), &v))
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2020, 5, 6, 13, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2020-05-06", d.String())

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())
}

func TestMinDoseInterval(t *testing.T) {
	tests := []struct {
		frequency string
		want      time.Duration
		limited   bool
	}{
		{FrequencyOnceDaily, 20 * time.Hour, true},
		{FrequencyTwiceDaily, 10 * time.Hour, true},
		{FrequencyThreeTimesDaily, 6 * time.Hour, true},
		{FrequencyFourTimesDaily, 4 * time.Hour, true},
		{FrequencyEvery4Hours, 3 * time.Hour, true},
		{FrequencyEvery12Hours, 11 * time.Hour, true},
		{FrequencyWeekly, 144 * time.Hour, true},
		{FrequencyAsNeeded, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.frequency, func(t *testing.T) {
			got, ok := MinDoseInterval(tt.frequency)
			assert.Equal(t, tt.limited, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMedicationActiveOn(t *testing.T) {
	start, _ := ParseDate("2024-01-10")
	end, _ := ParseDate("2024-01-20")
	m := &Medication{StartDate: start, EndDate: &end}

	before, _ := ParseDate("2024-01-09")
	during, _ := ParseDate("2024-01-20")
	after, _ := ParseDate("2024-01-21")

	assert.False(t, m.ActiveOn(before))
	assert.True(t, m.ActiveOn(during))
	assert.False(t, m.ActiveOn(after))
}

func TestTaskTransitions(t *testing.T) {
	assert.True(t, CanTransitionTask(TaskStatusPending, TaskStatusInProgress))
	assert.True(t, CanTransitionTask(TaskStatusInProgress, TaskStatusPending))
	assert.True(t, CanTransitionTask(TaskStatusInProgress, TaskStatusCompleted))
	assert.False(t, CanTransitionTask(TaskStatusCompleted, TaskStatusPending))
	assert.False(t, CanTransitionTask(TaskStatusCancelled, TaskStatusInProgress))
	assert.False(t, CanTransitionTask(TaskStatusPending, TaskStatusPending))
}

func TestReportTransitions(t *testing.T) {
	assert.True(t, CanTransitionReport(ReportStatusSubmitted, ReportStatusUnderReview))
	assert.True(t, CanTransitionReport(ReportStatusSubmitted, ReportStatusClosed))
	assert.True(t, CanTransitionReport(ReportStatusUnderReview, ReportStatusClosed))
	assert.False(t, CanTransitionReport(ReportStatusClosed, ReportStatusSubmitted))
	assert.False(t, CanTransitionReport(ReportStatusUnderReview, ReportStatusSubmitted))
}

func TestRolePermissions(t *testing.T) {
	assert.True(t, HasPermission(RoleAdmin, PermUserManage))
	assert.True(t, HasPermission(RoleNurse, PermMedicationAdminister))
	assert.False(t, HasPermission(RoleCaregiver, PermMedicationAdminister))
	assert.False(t, HasPermission(RoleStaff, PermMedicationWrite))
	assert.False(t, HasPermission("visitor", PermActivityWrite))
	assert.True(t, ValidRole(RoleCaregiver))
}

func TestFormFieldsValueScan(t *testing.T) {
	fields := FormFields{{Key: "location", Label: "Location", Type: FieldTypeText, Required: true}}
	v, err := fields.Value()
	require.NoError(t, err)

	var back FormFields
	require.NoError(t, back.Scan(v))
	assert.Equal(t, fields, back)
}

func TestPaginationNormalize(t *testing.T) {
	p := Pagination{Page: 0, PageSize: 1000}
	p.Normalize()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, MaxPageSize, p.PageSize)
	assert.Equal(t, 0, p.Offset())

	p = Pagination{Page: 3, PageSize: 10}
	assert.Equal(t, 20, p.Offset())
}
