package deviation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestDeviation_DecisionsAreMutuallyExclusive(t *testing.T) {
	now := time.Date(2025, 7, 7, 10, 0, 0, 0, time.UTC)
	d := Deviation{ID: 1, EmployeeID: "E001", Status: StatusPending}

	d.Reject("M001", now, strPtr("wrong code"))
	assert.Equal(t, StatusRejected, d.Status)
	assert.False(t, d.HasConflictingDecision())

	d.Approve("M001", now, nil)
	assert.Equal(t, StatusApproved, d.Status)
	assert.Nil(t, d.RejectedBy)
	assert.Nil(t, d.RejectedAt)
	assert.False(t, d.HasConflictingDecision())

	d.Return(strPtr("add comment"))
	assert.Equal(t, StatusReturned, d.Status)
	assert.Nil(t, d.ApprovedBy)
	assert.True(t, d.IsEditable())
}

func TestDeviation_HasConflictingDecision(t *testing.T) {
	now := time.Now()
	d := Deviation{ApprovedBy: strPtr("M1"), RejectedAt: &now}
	assert.True(t, d.HasConflictingDecision())
}

func TestCreateDeviationRequest_Validate(t *testing.T) {
	ok := CreateDeviationRequest{Date: strPtr("2025-07-07"), StartTime: strPtr("08:00"), EndTime: strPtr("17:00"), TimeCode: strPtr("210"), Submit: true}
	require.NoError(t, ok.Validate())

	draft := CreateDeviationRequest{Date: strPtr("2025-07-07")}
	require.NoError(t, draft.Validate(), "incomplete drafts are allowed")

	incomplete := CreateDeviationRequest{Date: strPtr("2025-07-07"), Submit: true}
	err := incomplete.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "submit")

	bad := CreateDeviationRequest{Date: strPtr("07/07/2025"), StartTime: strPtr("17:00"), EndTime: strPtr("08:00")}
	err = bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "date")
	assert.Contains(t, err.Error(), "end_time must be after start_time")
}

func TestDecisionRequest_Validate(t *testing.T) {
	req := DecisionRequest{ID: 4}
	assert.NoError(t, req.Validate(false))
	assert.Error(t, req.Validate(true))
}

func TestDeviationFilter_Validate_Defaults(t *testing.T) {
	f := DeviationFilter{Limit: 1000}
	require.NoError(t, f.Validate())
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 50, f.Limit)

	bad := DeviationFilter{Status: strPtr("done")}
	assert.Error(t, bad.Validate())
}
