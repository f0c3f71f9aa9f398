package caserecord

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeJSON(t *testing.T, s string) map[string]json.RawMessage {
	t.Helper()
	var obj map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(s), &obj))
	return obj
}

func TestDefault(t *testing.T) {
	rec := Default("C1")
	assert.Equal(t, "C1", rec.CaseID)
	assert.Equal(t, StatusPending, rec.Status)
	assert.Empty(t, rec.Description)
	assert.Empty(t, rec.Remarks)
	assert.True(t, rec.LastModified.IsZero())
}

func TestDecode(t *testing.T) {
	obj := decodeJSON(t, `{
		"status": "Complete",
		"description": "d",
		"remarks": "r",
		"lastModified": "2024-03-01T10:00:00Z",
		"fileName": "scan.dcm"
	}`)

	rec := Decode("C1", obj)
	assert.Equal(t, StatusComplete, rec.Status)
	assert.Equal(t, "d", rec.Description)
	assert.Equal(t, "r", rec.Remarks)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), rec.LastModified.UTC())
}

func TestDecode_WrongTypesFallBack(t *testing.T) {
	obj := decodeJSON(t, `{"status": 3, "description": ["x"], "remarks": "kept", "lastModified": "yesterday"}`)

	rec := Decode("C1", obj)
	assert.Equal(t, StatusPending, rec.Status)
	assert.Empty(t, rec.Description)
	assert.Equal(t, "kept", rec.Remarks)
	assert.True(t, rec.LastModified.IsZero())
}

func TestDecode_SliceCount(t *testing.T) {
	tests := []struct {
		name string
		json string
		want int
	}{
		{name: "number", json: `{"technicalParams":{"numberOfSlices":12}}`, want: 12},
		{name: "string", json: `{"technicalParams":{"numberOfSlices":"9"}}`, want: 9},
		{name: "garbage", json: `{"technicalParams":{"numberOfSlices":"many"}}`, want: 0},
		{name: "zero", json: `{"technicalParams":{"numberOfSlices":0}}`, want: 0},
		{name: "missing", json: `{"technicalParams":{}}`, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decode("C1", decodeJSON(t, tt.json)).NumberOfSlices)
		})
	}
}

func TestFields(t *testing.T) {
	var f Fields
	assert.True(t, f.IsEmpty())
	require.NoError(t, f.Validate())

	f = f.WithStatus(StatusComplete).WithRemarks("ok")
	assert.False(t, f.IsEmpty())
	require.NoError(t, f.Validate())
	assert.Equal(t, StatusComplete, *f.Status)
	assert.Equal(t, "ok", *f.Remarks)
	assert.Nil(t, f.Description)

	bad := Fields{}.WithStatus(Status("Archived"))
	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, bad.Validate(), &fieldErrs)
	require.Len(t, fieldErrs, 1)
	assert.Equal(t, "status", fieldErrs[0].Field)
	assert.ErrorIs(t, fieldErrs[0].Err, ErrInvalidStatus)
}

func TestValidateCaseID(t *testing.T) {
	require.NoError(t, ValidateCaseID("C1"))

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, ValidateCaseID("   "), &fieldErrs)
	require.Len(t, fieldErrs, 1)
	assert.Equal(t, "case_id", fieldErrs[0].Field)
	assert.ErrorIs(t, fieldErrs[0].Err, ErrEmptyCaseID)
}

func TestSelectionHandoff_Validate(t *testing.T) {
	require.NoError(t, SelectionHandoff{CaseID: "C1"}.Validate())
	require.NoError(t, SelectionHandoff{CaseID: "C1", RequestedSlice: 4}.Validate())

	require.Error(t, SelectionHandoff{}.Validate())
	require.Error(t, SelectionHandoff{CaseID: "C1", RequestedSlice: -1}.Validate())

	assert.True(t, SelectionHandoff{CaseID: "C1", RequestedSlice: 4}.HasSlice())
	assert.False(t, SelectionHandoff{CaseID: "C1"}.HasSlice())
}
