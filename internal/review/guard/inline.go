package guard

import (
	"context"

	"github.com/colonyops/casereview/internal/core/caserecord"
)

// RecordStore is the slice of the record store the guard needs.
type RecordStore interface {
	Get(ctx context.Context, caseID string) caserecord.Record
	Put(ctx context.Context, caseID string, fields caserecord.Fields) (caserecord.Record, error)
}

// StatusEditor is the in-place status picker. It holds a tentative choice
// until Confirm persists it.
type StatusEditor struct {
	store  RecordStore
	caseID string

	open   bool
	choice caserecord.Status
}

// NewStatusEditor returns a closed editor for caseID.
func NewStatusEditor(store RecordStore, caseID string) *StatusEditor {
	return &StatusEditor{store: store, caseID: caseID}
}

// Open starts editing with the record's current status preselected.
func (e *StatusEditor) Open(ctx context.Context) caserecord.Status {
	e.choice = e.store.Get(ctx, e.caseID).Status
	e.open = true
	return e.choice
}

// IsOpen reports whether the picker is showing.
func (e *StatusEditor) IsOpen() bool { return e.open }

// Choice returns the tentative status.
func (e *StatusEditor) Choice() caserecord.Status { return e.choice }

// Choose changes the tentative status.
func (e *StatusEditor) Choose(s caserecord.Status) error {
	if !e.open {
		return ErrInvalidTransition
	}
	if !s.IsValid() {
		return caserecord.ErrInvalidStatus
	}
	e.choice = s
	return nil
}

// Confirm persists the tentative status and closes the picker.
func (e *StatusEditor) Confirm(ctx context.Context) (caserecord.Record, error) {
	if !e.open {
		return caserecord.Record{}, ErrInvalidTransition
	}
	rec, err := e.store.Put(ctx, e.caseID, caserecord.Fields{}.WithStatus(e.choice))
	if err != nil {
		return caserecord.Record{}, err
	}
	e.Cancel()
	return rec, nil
}

// Cancel closes the picker without persisting.
func (e *StatusEditor) Cancel() {
	e.open = false
	e.choice = ""
}
