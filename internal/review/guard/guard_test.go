package guard_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/casereview/internal/core/caserecord"
	"github.com/colonyops/casereview/internal/core/eventbus"
	"github.com/colonyops/casereview/internal/core/eventbus/testbus"
	"github.com/colonyops/casereview/internal/data/stores"
	"github.com/colonyops/casereview/internal/records"
	"github.com/colonyops/casereview/internal/review/guard"
)

type recordingNav struct {
	paths []string
	err   error
}

func (n *recordingNav) GoTo(_ context.Context, path string) error {
	n.paths = append(n.paths, path)
	return n.err
}

const dest = "/file-folder/P1/images"

func setup(t *testing.T, status caserecord.Status) (*guard.Guard, *records.Store, *recordingNav, *testbus.Bus) {
	t.Helper()
	mem := stores.NewMemStore()
	bus := testbus.New(t)
	store := records.New(mem, mem, bus.EventBus)
	_, err := store.Put(context.Background(), "C1", caserecord.Fields{}.WithStatus(status))
	require.NoError(t, err)
	bus.Reset()

	nav := &recordingNav{}
	return guard.New(store, nav, "C1", dest), store, nav, bus
}

func TestRequestLeave(t *testing.T) {
	want := map[caserecord.Status]guard.Decision{
		caserecord.StatusPending:    guard.Block,
		caserecord.StatusInProgress: guard.Block,
		caserecord.StatusComplete:   guard.Allow,
		caserecord.StatusFollowUp:   guard.Allow,
	}
	for _, s := range caserecord.Statuses() {
		rec := caserecord.Record{CaseID: "C1", Status: s}
		assert.Equal(t, want[s], guard.RequestLeave(rec), s.String())
		assert.Equal(t, want[s], guard.RequestLeave(rec), "repeat %s", s)
	}
}

func TestGuard_AllowedNavigatesImmediately(t *testing.T) {
	g, _, nav, bus := setup(t, caserecord.StatusComplete)

	d, err := g.Leave(context.Background())
	require.NoError(t, err)
	assert.Equal(t, guard.Allow, d)
	assert.Equal(t, guard.Resolved, g.State())
	assert.Equal(t, []string{dest}, nav.paths)
	bus.AssertNotPublished(t, eventbus.TopicRecordChanged)
}

func TestGuard_InProgressLeaveAnywayResetsToPending(t *testing.T) {
	g, store, nav, bus := setup(t, caserecord.StatusInProgress)
	ctx := context.Background()

	d, err := g.Leave(ctx)
	require.NoError(t, err)
	assert.Equal(t, guard.Block, d)
	assert.Equal(t, guard.Blocked, g.State())
	assert.Empty(t, nav.paths)

	rec, err := g.LeaveAnyway(ctx)
	require.NoError(t, err)
	assert.Equal(t, caserecord.StatusPending, rec.Status)
	assert.Equal(t, caserecord.StatusPending, store.Get(ctx, "C1").Status)
	assert.Equal(t, guard.Resolved, g.State())
	assert.Equal(t, []string{dest}, nav.paths)

	events := bus.Of(eventbus.TopicRecordChanged)
	require.Len(t, events, 1)
	assert.Equal(t, caserecord.StatusPending, events[0].(eventbus.RecordChangedPayload).Status)
}

func TestGuard_LeaveAnywayRequiresBlock(t *testing.T) {
	g, _, nav, _ := setup(t, caserecord.StatusPending)

	_, err := g.LeaveAnyway(context.Background())
	require.ErrorIs(t, err, guard.ErrInvalidTransition)
	assert.Empty(t, nav.paths)
}

func TestGuard_UpdateStatusNowAccepted(t *testing.T) {
	g, store, nav, _ := setup(t, caserecord.StatusInProgress)
	ctx := context.Background()

	_, err := g.Leave(ctx)
	require.NoError(t, err)

	current, err := g.UpdateStatusNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, caserecord.StatusInProgress, current)
	assert.Equal(t, guard.ResolvingInline, g.State())
	assert.Empty(t, nav.paths)

	require.NoError(t, g.Choose(caserecord.StatusFollowUp))
	d, err := g.ConfirmStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, guard.Allow, d)
	assert.Equal(t, guard.Resolved, g.State())
	assert.Equal(t, caserecord.StatusFollowUp, store.Get(ctx, "C1").Status)
	assert.Equal(t, []string{dest}, nav.paths)
}

func TestGuard_UpdateStatusNowStillBlocked(t *testing.T) {
	g, store, nav, _ := setup(t, caserecord.StatusPending)
	ctx := context.Background()

	_, err := g.Leave(ctx)
	require.NoError(t, err)
	_, err = g.UpdateStatusNow(ctx)
	require.NoError(t, err)

	require.NoError(t, g.Choose(caserecord.StatusInProgress))
	d, err := g.ConfirmStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, guard.Block, d)
	assert.Equal(t, guard.ResolvingInline, g.State())
	assert.True(t, g.Editor().IsOpen())
	assert.Equal(t, caserecord.StatusInProgress, g.Editor().Choice())
	assert.Equal(t, caserecord.StatusInProgress, store.Get(ctx, "C1").Status)
	assert.Empty(t, nav.paths)
}

func TestGuard_ChooseRejectsInvalidStatus(t *testing.T) {
	g, _, _, _ := setup(t, caserecord.StatusPending)
	ctx := context.Background()

	_, err := g.Leave(ctx)
	require.NoError(t, err)
	_, err = g.UpdateStatusNow(ctx)
	require.NoError(t, err)

	require.ErrorIs(t, g.Choose(caserecord.Status("Done")), caserecord.ErrInvalidStatus)
	assert.Equal(t, caserecord.StatusPending, g.Editor().Choice())
}

func TestGuard_CancelInlineReturnsToIdle(t *testing.T) {
	g, store, nav, bus := setup(t, caserecord.StatusPending)
	ctx := context.Background()

	_, err := g.Leave(ctx)
	require.NoError(t, err)
	_, err = g.UpdateStatusNow(ctx)
	require.NoError(t, err)
	require.NoError(t, g.Choose(caserecord.StatusComplete))

	require.NoError(t, g.CancelInline())
	assert.Equal(t, guard.Idle, g.State())
	assert.False(t, g.Editor().IsOpen())
	assert.Equal(t, caserecord.StatusPending, store.Get(ctx, "C1").Status)
	assert.Empty(t, nav.paths)
	bus.AssertNotPublished(t, eventbus.TopicRecordChanged)
}

func TestGuard_DismissAndRetry(t *testing.T) {
	g, store, nav, _ := setup(t, caserecord.StatusPending)
	ctx := context.Background()

	_, err := g.Leave(ctx)
	require.NoError(t, err)
	require.NoError(t, g.Dismiss())
	assert.Equal(t, guard.Idle, g.State())

	_, err = store.Put(ctx, "C1", caserecord.Fields{}.WithStatus(caserecord.StatusComplete))
	require.NoError(t, err)

	d, err := g.Leave(ctx)
	require.NoError(t, err)
	assert.Equal(t, guard.Allow, d)
	assert.Equal(t, []string{dest}, nav.paths)
}

func TestGuard_InvalidTransitions(t *testing.T) {
	g, _, _, _ := setup(t, caserecord.StatusPending)
	ctx := context.Background()

	_, err := g.UpdateStatusNow(ctx)
	require.ErrorIs(t, err, guard.ErrInvalidTransition)

	_, err = g.ConfirmStatus(ctx)
	require.ErrorIs(t, err, guard.ErrInvalidTransition)

	require.ErrorIs(t, g.CancelInline(), guard.ErrInvalidTransition)
	require.ErrorIs(t, g.Choose(caserecord.StatusComplete), guard.ErrInvalidTransition)
	require.ErrorIs(t, g.Dismiss(), guard.ErrInvalidTransition)
}

func TestGuard_NavigationFailureIsReturned(t *testing.T) {
	g, _, nav, _ := setup(t, caserecord.StatusComplete)
	nav.err = errors.New("no route")

	_, err := g.Leave(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), dest)
}
