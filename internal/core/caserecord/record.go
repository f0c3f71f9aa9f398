// Package caserecord defines the per-case review record, the partial field
// set used to mutate it, and the one-shot selection handoff between screens.
package caserecord

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/hay-kot/criterio"
)

// ErrEmptyCaseID is returned when an operation is given a blank case id.
var ErrEmptyCaseID = errors.New("case id is required")

// JSON keys of the persisted record object. Other keys in the stored object
// belong to other screens and are preserved on write.
const (
	KeyStatus          = "status"
	KeyDescription     = "description"
	KeyRemarks         = "remarks"
	KeyLastModified    = "lastModified"
	KeyTechnicalParams = "technicalParams"
)

// Record is the persisted status/description/remarks bundle for one study.
type Record struct {
	CaseID       string    `json:"-"`
	Status       Status    `json:"status"`
	Description  string    `json:"description"`
	Remarks      string    `json:"remarks"`
	LastModified time.Time `json:"lastModified"`

	// NumberOfSlices is read from technicalParams.numberOfSlices when another
	// screen recorded it. Zero means unknown.
	NumberOfSlices int `json:"-"`
}

// Default returns the record used when nothing is stored for caseID.
func Default(caseID string) Record {
	return Record{CaseID: caseID, Status: StatusPending}
}

// Decode builds a Record from a stored JSON object. Fields with the wrong
// type are ignored rather than failing the whole record.
func Decode(caseID string, obj map[string]json.RawMessage) Record {
	rec := Default(caseID)
	if raw, ok := obj[KeyStatus]; ok {
		_ = json.Unmarshal(raw, &rec.Status)
	}
	if raw, ok := obj[KeyDescription]; ok {
		_ = json.Unmarshal(raw, &rec.Description)
	}
	if raw, ok := obj[KeyRemarks]; ok {
		_ = json.Unmarshal(raw, &rec.Remarks)
	}
	if raw, ok := obj[KeyLastModified]; ok {
		var ts time.Time
		if err := json.Unmarshal(raw, &ts); err == nil {
			rec.LastModified = ts
		}
	}
	if raw, ok := obj[KeyTechnicalParams]; ok {
		rec.NumberOfSlices = decodeSliceCount(raw)
	}
	return rec
}

// decodeSliceCount accepts numberOfSlices as either a JSON number or a
// numeric string, since the imaging metadata screen writes both.
func decodeSliceCount(raw json.RawMessage) int {
	var params struct {
		NumberOfSlices json.RawMessage `json:"numberOfSlices"`
	}
	if err := json.Unmarshal(raw, &params); err != nil || len(params.NumberOfSlices) == 0 {
		return 0
	}

	var n float64
	if err := json.Unmarshal(params.NumberOfSlices, &n); err == nil {
		return positive(int(n))
	}

	var s string
	if err := json.Unmarshal(params.NumberOfSlices, &s); err == nil {
		if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return positive(v)
		}
	}
	return 0
}

func positive(n int) int {
	if n < 1 {
		return 0
	}
	return n
}

// Fields is a partial update. Nil fields are left untouched by a merge.
type Fields struct {
	Status      *Status
	Description *string
	Remarks     *string
}

// WithStatus returns a copy of f that sets the status.
func (f Fields) WithStatus(s Status) Fields {
	f.Status = &s
	return f
}

// WithDescription returns a copy of f that sets the description.
func (f Fields) WithDescription(d string) Fields {
	f.Description = &d
	return f
}

// WithRemarks returns a copy of f that sets the remarks.
func (f Fields) WithRemarks(r string) Fields {
	f.Remarks = &r
	return f
}

// IsEmpty reports whether f carries no changes.
func (f Fields) IsEmpty() bool {
	return f.Status == nil && f.Description == nil && f.Remarks == nil
}

// Validate rejects statuses outside the enum.
func (f Fields) Validate() error {
	if f.Status != nil && !f.Status.IsValid() {
		return criterio.NewFieldErrors("status", ErrInvalidStatus)
	}
	return nil
}

// ValidateCaseID checks that id is non-blank.
func ValidateCaseID(id string) error {
	return criterio.Run("case_id", id, func(v string) error {
		if strings.TrimSpace(v) == "" {
			return ErrEmptyCaseID
		}
		return nil
	})
}
