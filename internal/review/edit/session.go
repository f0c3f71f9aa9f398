// Package edit implements the transactional edit buffer over one case
// record's editable fields.
package edit

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/colonyops/casereview/internal/core/caserecord"
	"github.com/colonyops/casereview/internal/core/eventbus"
	"github.com/colonyops/casereview/internal/core/host"
	"github.com/colonyops/casereview/internal/core/logging"
)

var (
	ErrNotEditing     = errors.New("no edit in progress")
	ErrAlreadyEditing = errors.New("edit already in progress")
)

// Prompts shown to the reviewer.
const (
	DiscardMessage = "You have unsaved changes. Are you sure you want to cancel?"
	LeaveMessage   = "You have unsaved changes. Are you sure you want to leave?"
)

// Writer persists record fields.
type Writer interface {
	Put(ctx context.Context, caseID string, fields caserecord.Fields) (caserecord.Record, error)
}

// Buffer is the working copy of the editable fields.
type Buffer struct {
	Status      caserecord.Status
	Description string
	Remarks     string
	Dirty       bool
}

func (b Buffer) fields() caserecord.Fields {
	return caserecord.Fields{}.
		WithStatus(b.Status).
		WithDescription(b.Description).
		WithRemarks(b.Remarks)
}

// Session is an edit buffer over one record. A Session is driven from a
// single goroutine, like the screen that owns it.
type Session struct {
	store Writer
	exits *eventbus.EventBus
	log   zerolog.Logger

	caseID    string
	state     State
	buf       Buffer
	committed *Buffer
	release   eventbus.Unsubscribe
}

// Option configures a Session.
type Option func(*Session)

// WithExitGuard registers an exit interceptor on bus while the buffer has
// unsaved changes.
func WithExitGuard(bus *eventbus.EventBus) Option {
	return func(s *Session) { s.exits = bus }
}

// New creates a Session in the Viewing state.
func New(store Writer, opts ...Option) *Session {
	s := &Session{
		store: store,
		log:   logging.Component("edit"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current edit mode.
func (s *Session) State() State { return s.state }

// Dirty reports whether the open buffer has unsaved changes.
func (s *Session) Dirty() bool { return s.state == EditingDirty }

// Buffer returns the open buffer. ok is false in the Viewing state.
func (s *Session) Buffer() (buf Buffer, ok bool) {
	if s.state == Viewing {
		return Buffer{}, false
	}
	return s.buf, true
}

// CaseID returns the case of the most recent Begin.
func (s *Session) CaseID() string { return s.caseID }

// Begin snapshots the editable fields of rec and opens the buffer.
func (s *Session) Begin(rec caserecord.Record) (Buffer, error) {
	if err := s.transition(Editing); err != nil {
		return Buffer{}, ErrAlreadyEditing
	}

	s.committed = nil
	s.caseID = rec.CaseID
	s.buf = Buffer{
		Status:      caserecord.NormalizeStatus(rec.Status.String()),
		Description: rec.Description,
		Remarks:     rec.Remarks,
	}

	if s.exits != nil && s.release == nil {
		s.release = s.exits.InterceptExit(LeaveMessage, s.Dirty)
	}

	s.log.Debug().Str("case_id", s.caseID).Msg("edit started")
	return s.buf, nil
}

// Update sets one field of the buffer and marks it dirty. A status outside
// the four review states is rejected with ErrInvalidStatus and the buffer is
// left unchanged.
func (s *Session) Update(field Field, value string) error {
	if s.state == Viewing {
		return ErrNotEditing
	}

	switch field {
	case FieldStatus:
		st, err := caserecord.ParseStatus(value)
		if err != nil {
			return err
		}
		s.buf.Status = st
	case FieldDescription:
		s.buf.Description = value
	case FieldRemarks:
		s.buf.Remarks = value
	default:
		return fmt.Errorf("unknown field %q", field)
	}

	s.buf.Dirty = true
	return s.transition(EditingDirty)
}

// Save commits the buffer through the store and returns to Viewing. Calling
// Save again right after a save re-persists the same fields; once a new
// Begin or a Cancel intervenes there is nothing to re-persist. On a storage
// error the buffer stays open.
func (s *Session) Save(ctx context.Context) (caserecord.Record, error) {
	ctx = logging.WithCaseID(ctx, s.caseID)

	buf := s.buf
	if s.state == Viewing {
		if s.committed == nil {
			return caserecord.Record{}, ErrNotEditing
		}
		buf = *s.committed
	}

	rec, err := s.store.Put(ctx, s.caseID, buf.fields())
	if err != nil {
		s.log.Error().Ctx(ctx).Err(err).Msg("save failed, edit kept open")
		return caserecord.Record{}, fmt.Errorf("save record: %w", err)
	}

	buf.Dirty = false
	s.committed = &buf
	if s.state != Viewing {
		s.close()
	}
	return rec, nil
}

// Cancel discards the buffer. With unsaved changes the reviewer is asked to
// confirm first; a declined confirmation keeps the buffer open and Cancel
// returns false.
func (s *Session) Cancel(ctx context.Context, confirm host.Confirmer) bool {
	switch s.state {
	case Viewing:
		return true
	case EditingDirty:
		if !confirm.Confirm(ctx, DiscardMessage) {
			return false
		}
	}

	s.close()
	s.committed = nil
	s.log.Debug().Str("case_id", s.caseID).Msg("edit discarded")
	return true
}

// Close releases the exit interceptor. The buffer is dropped without
// confirmation; it is meant for screen teardown.
func (s *Session) Close() {
	if s.state != Viewing {
		s.close()
	}
	s.releaseExit()
}

func (s *Session) close() {
	_ = s.transition(Viewing)
	s.buf = Buffer{}
	s.releaseExit()
}

func (s *Session) releaseExit() {
	if s.release != nil {
		s.release()
		s.release = nil
	}
}

func (s *Session) transition(to State) error {
	if !canTransition(s.state, to) {
		return fmt.Errorf("edit: %s -> %s not allowed", s.state, to)
	}
	s.state = to
	return nil
}
