// Package review composes the case review screen: the record, its edit
// session, the navigation guard and the slice viewport, wired to the shared
// record store and event bus for the lifetime of one visit.
package review

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog"

	"github.com/colonyops/casereview/internal/core/caserecord"
	"github.com/colonyops/casereview/internal/core/config"
	"github.com/colonyops/casereview/internal/core/eventbus"
	"github.com/colonyops/casereview/internal/core/host"
	"github.com/colonyops/casereview/internal/core/logging"
	"github.com/colonyops/casereview/internal/records"
	"github.com/colonyops/casereview/internal/review/edit"
	"github.com/colonyops/casereview/internal/review/guard"
	"github.com/colonyops/casereview/internal/review/viewport"
)

// ErrNoCase is returned by Open when neither the entry nor a pending
// handoff names a case.
var ErrNoCase = errors.New("no case selected")

// Deps are the services shared by every screen.
type Deps struct {
	Records *records.Store
	Bus     *eventbus.EventBus
	Nav     host.Navigator
	Config  *config.Config
}

// Entry describes how the screen was opened.
type Entry struct {
	CaseID    string
	PatientID string
	// Slice is an explicit 1-based slice request; zero defers to the handoff.
	Slice int
	Files []viewport.StudyFile
}

// Screen is one open visit of the review screen.
type Screen struct {
	deps Deps
	ctx  context.Context
	log  zerolog.Logger

	caseID    string
	patientID string
	record    caserecord.Record

	edit     *edit.Session
	guard    *guard.Guard
	reminder *guard.Reminder
	view     *viewport.Viewport

	onChange []func(caserecord.Record)
	unsubs   []eventbus.Unsubscribe
}

// Open mounts the screen: it resolves the case and entry slice, reads the
// record, and subscribes to record changes until Close.
func Open(ctx context.Context, deps Deps, entry Entry, surface viewport.Surface) (*Screen, error) {
	caseID := entry.CaseID
	log := logging.Component("review")

	// A handoff is consumed only by the screen that uses it: one that names
	// another case, or arrives alongside an explicit slice, stays for its
	// intended reader.
	var handoff *caserecord.SelectionHandoff
	if entry.Slice <= 0 || caseID == "" {
		if h, ok := deps.Records.PeekSelectionHandoff(ctx); ok {
			if caseID == "" || h.CaseID == caseID {
				handoff = takeHandoff(ctx, deps.Records, h.CaseID)
				if handoff != nil && caseID == "" {
					caseID = handoff.CaseID
				}
			} else {
				log.Debug().Str("case_id", caseID).Str("handoff_case_id", h.CaseID).Msg("handoff for another case left in place")
			}
		}
	}
	if caseID == "" {
		return nil, ErrNoCase
	}
	ctx = logging.WithCaseID(logging.WithScreen(ctx, "review"), caseID)

	dest, err := deps.Config.LeaveDestination(entry.PatientID)
	if err != nil {
		return nil, err
	}

	s := &Screen{
		deps:      deps,
		ctx:       ctx,
		log:       log,
		caseID:    caseID,
		patientID: entry.PatientID,
		record:    deps.Records.Get(ctx, caseID),
	}

	total := viewport.TotalSlices(s.record, entry.Files, deps.Config.SliceCountOptions())
	start := viewport.EntrySlice(entry.Slice, handoff, total)

	s.view = viewport.New(total, start, deps.Config.ViewportOptions(), surface)
	s.edit = edit.New(deps.Records, edit.WithExitGuard(deps.Bus))
	s.guard = guard.New(deps.Records, deps.Nav, caseID, dest)
	s.reminder = guard.NewReminder(deps.Records, caseID)

	s.unsubs = append(s.unsubs,
		deps.Bus.SubscribeRecordChanged(func(p eventbus.RecordChangedPayload) {
			if p.CaseID == s.caseID {
				s.Reload()
			}
		}),
		deps.Bus.SubscribeRecordsBulkChanged(func(p eventbus.RecordsBulkChangedPayload) {
			if slices.Contains(p.CaseIDs, s.caseID) {
				s.Reload()
			}
		}),
	)

	s.log.Info().Ctx(ctx).Int("slices", total).Int("slice", start).Msg("review screen opened")
	return s, nil
}


// takeHandoff consumes the pending handoff if it still names caseID. A
// handoff replaced between the peek and the take is put back.
func takeHandoff(ctx context.Context, store *records.Store, caseID string) *caserecord.SelectionHandoff {
	h, ok := store.TakeSelectionHandoff(ctx)
	if !ok {
		return nil
	}
	if h.CaseID != caseID {
		_ = store.PutSelectionHandoff(ctx, h)
		return nil
	}
	return &h
}
// Close releases subscriptions and the exit interceptor. It is safe to call
// more than once.
func (s *Screen) Close() {
	for _, unsub := range s.unsubs {
		unsub()
	}
	s.unsubs = nil
	s.edit.Close()
	s.log.Debug().Ctx(s.ctx).Msg("review screen closed")
}

func (s *Screen) Context() context.Context { return s.ctx }
func (s *Screen) CaseID() string { return s.caseID }
func (s *Screen) PatientID() string { return s.patientID }
func (s *Screen) Record() caserecord.Record { return s.record }
func (s *Screen) Edit() *edit.Session { return s.edit }
func (s *Screen) Guard() *guard.Guard { return s.guard }
func (s *Screen) Reminder() *guard.Reminder { return s.reminder }
func (s *Screen) Viewport() *viewport.Viewport { return s.view }

// OnRecordChange registers fn to run after the screen re-reads its record.
func (s *Screen) OnRecordChange(fn func(caserecord.Record)) {
	s.onChange = append(s.onChange, fn)
}

// Reload re-reads the record from the store.
func (s *Screen) Reload() {
	s.record = s.deps.Records.Get(s.ctx, s.caseID)
	for _, fn := range s.onChange {
		fn(s.record)
	}
}

// RequestExit asks the exit interceptors whether closing should be held.
func (s *Screen) RequestExit() eventbus.ExitVerdict {
	return s.deps.Bus.RequestExit()
}

// Leave starts a guarded leave. See guard.Guard.Leave.
func (s *Screen) Leave() (guard.Decision, error) {
	d, err := s.guard.Leave(s.ctx)
	if err != nil {
		return d, fmt.Errorf("leave %s: %w", s.caseID, err)
	}
	return d, nil
}
