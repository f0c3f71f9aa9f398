package edit_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/casereview/internal/core/caserecord"
	"github.com/colonyops/casereview/internal/core/eventbus"
	"github.com/colonyops/casereview/internal/core/eventbus/testbus"
	"github.com/colonyops/casereview/internal/core/host"
	"github.com/colonyops/casereview/internal/data/stores"
	"github.com/colonyops/casereview/internal/records"
	"github.com/colonyops/casereview/internal/review/edit"
)

func newStore(t *testing.T) (*records.Store, *testbus.Bus) {
	t.Helper()
	mem := stores.NewMemStore()
	bus := testbus.New(t)
	return records.New(mem, mem, bus.EventBus), bus
}

type failingWriter struct{}

func (failingWriter) Put(context.Context, string, caserecord.Fields) (caserecord.Record, error) {
	return caserecord.Record{}, errors.New("disk full")
}

// countingConfirmer records every prompt and answers with answer.
type countingConfirmer struct {
	answer  bool
	prompts []string
}

func (c *countingConfirmer) Confirm(_ context.Context, msg string) bool {
	c.prompts = append(c.prompts, msg)
	return c.answer
}

func TestSession_BeginSnapshotsRecord(t *testing.T) {
	store, _ := newStore(t)
	s := edit.New(store)

	rec := caserecord.Record{CaseID: "C1", Status: caserecord.StatusInProgress, Description: "d", Remarks: "r"}
	buf, err := s.Begin(rec)
	require.NoError(t, err)

	assert.Equal(t, edit.Buffer{Status: caserecord.StatusInProgress, Description: "d", Remarks: "r"}, buf)
	assert.Equal(t, edit.Editing, s.State())
	assert.False(t, s.Dirty())
}

func TestSession_BeginTwiceFails(t *testing.T) {
	store, _ := newStore(t)
	s := edit.New(store)

	_, err := s.Begin(caserecord.Default("C1"))
	require.NoError(t, err)
	_, err = s.Begin(caserecord.Default("C1"))
	require.ErrorIs(t, err, edit.ErrAlreadyEditing)
}

func TestSession_UpdateMarksDirty(t *testing.T) {
	store, _ := newStore(t)
	s := edit.New(store)
	_, err := s.Begin(caserecord.Default("C1"))
	require.NoError(t, err)

	require.NoError(t, s.Update(edit.FieldRemarks, "check again"))
	assert.Equal(t, edit.EditingDirty, s.State())

	require.NoError(t, s.Update(edit.FieldDescription, ""))
	assert.Equal(t, edit.EditingDirty, s.State())

	buf, ok := s.Buffer()
	require.True(t, ok)
	assert.Equal(t, "check again", buf.Remarks)
	assert.True(t, buf.Dirty)
}

func TestSession_UpdateRejectsInvalidStatus(t *testing.T) {
	store, _ := newStore(t)
	s := edit.New(store)
	_, err := s.Begin(caserecord.Record{CaseID: "C1", Status: caserecord.StatusComplete})
	require.NoError(t, err)

	err = s.Update(edit.FieldStatus, "Archived")
	require.ErrorIs(t, err, caserecord.ErrInvalidStatus)

	buf, _ := s.Buffer()
	assert.Equal(t, caserecord.StatusComplete, buf.Status)
	assert.Equal(t, edit.Editing, s.State())

	require.NoError(t, s.Update(edit.FieldStatus, "FollowUp"))
	buf, _ = s.Buffer()
	assert.Equal(t, caserecord.StatusFollowUp, buf.Status)
}

func TestSession_UpdateWhileViewing(t *testing.T) {
	store, _ := newStore(t)
	s := edit.New(store)
	require.ErrorIs(t, s.Update(edit.FieldRemarks, "x"), edit.ErrNotEditing)
}

func TestSession_SaveCommitsAndIsIdempotent(t *testing.T) {
	store, bus := newStore(t)
	ctx := context.Background()
	s := edit.New(store)

	_, err := s.Begin(store.Get(ctx, "C1"))
	require.NoError(t, err)
	require.NoError(t, s.Update(edit.FieldStatus, "In Progress"))
	require.NoError(t, s.Update(edit.FieldRemarks, "check again"))

	first, err := s.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, edit.Viewing, s.State())
	assert.Equal(t, caserecord.StatusInProgress, first.Status)
	assert.Equal(t, "check again", first.Remarks)

	second, err := s.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.Remarks, second.Remarks)
	assert.Equal(t, first.Description, second.Description)
	assert.True(t, second.LastModified.After(first.LastModified))

	assert.Len(t, bus.Of(eventbus.TopicRecordChanged), 2)
}

func TestSession_SaveAfterCancelDoesNotResurrectOldBuffer(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()
	s := edit.New(store)

	_, err := s.Begin(store.Get(ctx, "C1"))
	require.NoError(t, err)
	require.NoError(t, s.Update(edit.FieldRemarks, "A"))
	_, err = s.Save(ctx)
	require.NoError(t, err)

	// Another screen finishes the case.
	_, err = store.Put(ctx, "C1", caserecord.Fields{}.WithStatus(caserecord.StatusComplete).WithRemarks("B"))
	require.NoError(t, err)

	_, err = s.Begin(store.Get(ctx, "C1"))
	require.NoError(t, err)
	require.NoError(t, s.Update(edit.FieldRemarks, "draft"))
	require.True(t, s.Cancel(ctx, host.Always(true)))

	_, err = s.Save(ctx)
	require.ErrorIs(t, err, edit.ErrNotEditing)

	rec := store.Get(ctx, "C1")
	assert.Equal(t, caserecord.StatusComplete, rec.Status)
	assert.Equal(t, "B", rec.Remarks)
}

func TestSession_BeginForgetsPreviousSave(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()
	s := edit.New(store)

	_, err := s.Begin(store.Get(ctx, "C1"))
	require.NoError(t, err)
	_, err = s.Save(ctx)
	require.NoError(t, err)

	_, err = s.Begin(store.Get(ctx, "C1"))
	require.NoError(t, err)
	s.Close()

	_, err = s.Save(ctx)
	require.ErrorIs(t, err, edit.ErrNotEditing)
}

func TestSession_SaveWithoutBegin(t *testing.T) {
	store, _ := newStore(t)
	_, err := edit.New(store).Save(context.Background())
	require.ErrorIs(t, err, edit.ErrNotEditing)
}

func TestSession_SaveFailureKeepsBuffer(t *testing.T) {
	s := edit.New(failingWriter{})
	_, err := s.Begin(caserecord.Default("C1"))
	require.NoError(t, err)
	require.NoError(t, s.Update(edit.FieldRemarks, "x"))

	_, err = s.Save(context.Background())
	require.Error(t, err)
	assert.Equal(t, edit.EditingDirty, s.State())

	buf, ok := s.Buffer()
	require.True(t, ok)
	assert.Equal(t, "x", buf.Remarks)
}

func TestSession_CancelClean(t *testing.T) {
	store, _ := newStore(t)
	s := edit.New(store)
	_, err := s.Begin(caserecord.Default("C1"))
	require.NoError(t, err)

	confirm := &countingConfirmer{answer: false}
	assert.True(t, s.Cancel(context.Background(), confirm))
	assert.Empty(t, confirm.prompts)
	assert.Equal(t, edit.Viewing, s.State())
}

func TestSession_CancelDirtyDeclined(t *testing.T) {
	store, _ := newStore(t)
	s := edit.New(store)
	_, err := s.Begin(caserecord.Default("C1"))
	require.NoError(t, err)
	require.NoError(t, s.Update(edit.FieldRemarks, "x"))

	confirm := &countingConfirmer{answer: false}
	assert.False(t, s.Cancel(context.Background(), confirm))
	assert.Equal(t, []string{edit.DiscardMessage}, confirm.prompts)
	assert.Equal(t, edit.EditingDirty, s.State())

	buf, _ := s.Buffer()
	assert.Equal(t, "x", buf.Remarks)
}

func TestSession_CancelThenBeginReproducesRecord(t *testing.T) {
	store, bus := newStore(t)
	ctx := context.Background()
	_, err := store.Put(ctx, "C1", caserecord.Fields{}.
		WithStatus(caserecord.StatusInProgress).
		WithDescription("chest CT").
		WithRemarks("nodule"))
	require.NoError(t, err)
	bus.Reset()

	s := edit.New(store)
	original, err := s.Begin(store.Get(ctx, "C1"))
	require.NoError(t, err)

	require.NoError(t, s.Update(edit.FieldRemarks, "scratch"))
	require.NoError(t, s.Update(edit.FieldStatus, "Complete"))
	require.True(t, s.Cancel(ctx, host.Always(true)))

	again, err := s.Begin(store.Get(ctx, "C1"))
	require.NoError(t, err)
	assert.Equal(t, original, again)
	bus.AssertNotPublished(t, eventbus.TopicRecordChanged)
}

func TestSession_ExitGuardFollowsDirtyState(t *testing.T) {
	store, bus := newStore(t)
	s := edit.New(store, edit.WithExitGuard(bus.EventBus))

	assert.False(t, bus.RequestExit().Blocked)

	_, err := s.Begin(caserecord.Default("C1"))
	require.NoError(t, err)
	assert.False(t, bus.RequestExit().Blocked)

	require.NoError(t, s.Update(edit.FieldRemarks, "x"))
	verdict := bus.RequestExit()
	assert.True(t, verdict.Blocked)
	assert.Equal(t, edit.LeaveMessage, verdict.Warning)

	_, err = s.Save(context.Background())
	require.NoError(t, err)
	assert.False(t, bus.RequestExit().Blocked)
}

func TestSession_CloseReleasesExitGuard(t *testing.T) {
	store, bus := newStore(t)
	s := edit.New(store, edit.WithExitGuard(bus.EventBus))

	_, err := s.Begin(caserecord.Default("C1"))
	require.NoError(t, err)
	require.NoError(t, s.Update(edit.FieldRemarks, "x"))

	s.Close()
	assert.Equal(t, edit.Viewing, s.State())
	assert.False(t, bus.RequestExit().Blocked)
}

func TestParseField(t *testing.T) {
	f, err := edit.ParseField("remarks")
	require.NoError(t, err)
	assert.Equal(t, edit.FieldRemarks, f)

	_, err = edit.ParseField("lastModified")
	require.Error(t, err)
}
