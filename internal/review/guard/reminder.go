package guard

import (
	"context"
	"fmt"

	"github.com/colonyops/casereview/internal/core/caserecord"
)

// Reminder is the "status update required" prompt, independent of leaving.
// RemindLater shares the Pending reset with LeaveAnyway but never navigates.
type Reminder struct {
	store  RecordStore
	caseID string
	editor *StatusEditor
	open   bool
}

// NewReminder returns a closed reminder for caseID.
func NewReminder(store RecordStore, caseID string) *Reminder {
	return &Reminder{
		store:  store,
		caseID: caseID,
		editor: NewStatusEditor(store, caseID),
	}
}

// Show opens the prompt when the case status still needs attention and
// reports whether it did.
func (r *Reminder) Show(ctx context.Context) bool {
	r.open = RequestLeave(r.store.Get(ctx, r.caseID)) == Block
	return r.open
}

// IsOpen reports whether the prompt is showing.
func (r *Reminder) IsOpen() bool { return r.open }

// Editor returns the status picker opened by UpdateStatus.
func (r *Reminder) Editor() *StatusEditor { return r.editor }

// Dismiss closes the prompt without changing the record.
func (r *Reminder) Dismiss() { r.open = false }

// RemindLater resets the case to Pending and closes the prompt.
func (r *Reminder) RemindLater(ctx context.Context) (caserecord.Record, error) {
	if !r.open {
		return caserecord.Record{}, ErrInvalidTransition
	}
	rec, err := r.store.Put(ctx, r.caseID, caserecord.Fields{}.WithStatus(caserecord.StatusPending))
	if err != nil {
		return caserecord.Record{}, fmt.Errorf("reset status: %w", err)
	}
	r.open = false
	return rec, nil
}

// UpdateStatus closes the prompt and opens the status picker.
func (r *Reminder) UpdateStatus(ctx context.Context) (caserecord.Status, error) {
	if !r.open {
		return "", ErrInvalidTransition
	}
	r.open = false
	return r.editor.Open(ctx), nil
}
