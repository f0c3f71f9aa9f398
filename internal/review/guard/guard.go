package guard

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/colonyops/casereview/internal/core/caserecord"
	"github.com/colonyops/casereview/internal/core/host"
	"github.com/colonyops/casereview/internal/core/logging"
)

// ErrInvalidTransition is returned when an operation is not valid in the
// guard's current state.
var ErrInvalidTransition = errors.New("guard: invalid transition")

// State is the guard's position in a single leave attempt.
type State int

const (
	Idle State = iota
	Blocked
	ResolvingInline
	Resolved
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Blocked:
		return "Blocked"
	case ResolvingInline:
		return "ResolvingInline"
	case Resolved:
		return "Resolved"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type event int

const (
	evLeaveAllowed event = iota
	evLeaveBlocked
	evLeaveAnyway
	evUpdateNow
	evConfirmAccepted
	evConfirmRejected
	evCancelInline
	evDismiss
)

// transitions is keyed by current state, then event.
var transitions = map[State]map[event]State{
	Idle: {
		evLeaveAllowed: Resolved,
		evLeaveBlocked: Blocked,
	},
	Blocked: {
		evLeaveAnyway: Resolved,
		evUpdateNow:   ResolvingInline,
		evDismiss:     Idle,
	},
	ResolvingInline: {
		evConfirmAccepted: Resolved,
		evConfirmRejected: ResolvingInline,
		evCancelInline:    Idle,
	},
	Resolved: {
		evLeaveAllowed: Resolved,
		evLeaveBlocked: Blocked,
	},
}

// Guard gates leaving one case. It is driven from the screen's goroutine.
type Guard struct {
	store  RecordStore
	nav    host.Navigator
	caseID string
	dest   string
	editor *StatusEditor
	log    zerolog.Logger

	state State
}

// New returns an Idle guard that navigates to dest once leaving is resolved.
func New(store RecordStore, nav host.Navigator, caseID, dest string) *Guard {
	return &Guard{
		store:  store,
		nav:    nav,
		caseID: caseID,
		dest:   dest,
		editor: NewStatusEditor(store, caseID),
		log:    logging.Component("guard"),
		state:  Idle,
	}
}

// State returns the current guard state.
func (g *Guard) State() State { return g.state }

// Editor returns the inline status picker used by UpdateStatusNow.
func (g *Guard) Editor() *StatusEditor { return g.editor }

// Destination is where the reviewer goes once leaving is resolved.
func (g *Guard) Destination() string { return g.dest }

// Leave re-reads the record and either navigates away or moves to Blocked.
func (g *Guard) Leave(ctx context.Context) (Decision, error) {
	ctx = logging.WithCaseID(ctx, g.caseID)

	d := RequestLeave(g.store.Get(ctx, g.caseID))
	if d == Block {
		if err := g.fire(evLeaveBlocked); err != nil {
			return d, err
		}
		g.log.Info().Ctx(ctx).Msg("leave blocked, status needs attention")
		return d, nil
	}

	if err := g.fire(evLeaveAllowed); err != nil {
		return d, err
	}
	return d, g.navigate(ctx)
}

// LeaveAnyway resets the case to Pending and navigates. An override never
// keeps In Progress.
func (g *Guard) LeaveAnyway(ctx context.Context) (caserecord.Record, error) {
	ctx = logging.WithCaseID(ctx, g.caseID)
	if !g.can(evLeaveAnyway) {
		return caserecord.Record{}, g.invalid(evLeaveAnyway)
	}

	rec, err := g.store.Put(ctx, g.caseID, caserecord.Fields{}.WithStatus(caserecord.StatusPending))
	if err != nil {
		return caserecord.Record{}, fmt.Errorf("reset status: %w", err)
	}

	_ = g.fire(evLeaveAnyway)
	g.log.Info().Ctx(ctx).Msg("left without resolving status")
	return rec, g.navigate(ctx)
}

// UpdateStatusNow opens the inline status picker and defers navigation.
func (g *Guard) UpdateStatusNow(ctx context.Context) (caserecord.Status, error) {
	if err := g.fire(evUpdateNow); err != nil {
		return "", err
	}
	return g.editor.Open(ctx), nil
}

// Choose changes the picker's tentative status.
func (g *Guard) Choose(s caserecord.Status) error {
	if g.state != ResolvingInline {
		return ErrInvalidTransition
	}
	return g.editor.Choose(s)
}

// ConfirmStatus persists the picked status. A status that allows leaving
// resolves the guard and navigates; otherwise the picker reopens with the
// saved value and the screen stays put.
func (g *Guard) ConfirmStatus(ctx context.Context) (Decision, error) {
	ctx = logging.WithCaseID(ctx, g.caseID)
	if g.state != ResolvingInline {
		return Block, ErrInvalidTransition
	}

	rec, err := g.editor.Confirm(ctx)
	if err != nil {
		return Block, fmt.Errorf("update status: %w", err)
	}

	d := RequestLeave(rec)
	if d == Block {
		_ = g.fire(evConfirmRejected)
		g.editor.Open(ctx)
		return d, nil
	}

	_ = g.fire(evConfirmAccepted)
	return d, g.navigate(ctx)
}

// CancelInline closes the picker without persisting and stays on the case.
func (g *Guard) CancelInline() error {
	if err := g.fire(evCancelInline); err != nil {
		return err
	}
	g.editor.Cancel()
	return nil
}

// Dismiss closes the block prompt without choosing either path.
func (g *Guard) Dismiss() error {
	return g.fire(evDismiss)
}

func (g *Guard) navigate(ctx context.Context) error {
	if err := g.nav.GoTo(ctx, g.dest); err != nil {
		g.log.Error().Ctx(ctx).Err(err).Str("dest", g.dest).Msg("navigation failed")
		return fmt.Errorf("navigate to %s: %w", g.dest, err)
	}
	return nil
}

func (g *Guard) can(ev event) bool {
	_, ok := transitions[g.state][ev]
	return ok
}

func (g *Guard) fire(ev event) error {
	next, ok := transitions[g.state][ev]
	if !ok {
		return g.invalid(ev)
	}
	g.state = next
	return nil
}

func (g *Guard) invalid(ev event) error {
	return fmt.Errorf("%w: event %d in state %s", ErrInvalidTransition, ev, g.state)
}
