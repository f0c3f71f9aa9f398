package commands

import (
	"context"
	"errors"
	"testing"

	"github.com/charmbracelet/huh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/casereview/internal/core/caserecord"
	"github.com/colonyops/casereview/internal/core/host"
	"github.com/colonyops/casereview/internal/review/edit"
)

// scriptedForm answers each form showing with the next step.
type scriptedForm struct {
	steps []func(edit.Buffer) (edit.Buffer, error)
	shown int
}

func (f *scriptedForm) run(buf edit.Buffer) (edit.Buffer, error) {
	step := f.steps[f.shown]
	f.shown++
	return step(buf)
}

func submit(mutate func(*edit.Buffer)) func(edit.Buffer) (edit.Buffer, error) {
	return func(b edit.Buffer) (edit.Buffer, error) {
		mutate(&b)
		return b, nil
	}
}

func abort(mutate func(*edit.Buffer)) func(edit.Buffer) (edit.Buffer, error) {
	return func(b edit.Buffer) (edit.Buffer, error) {
		mutate(&b)
		return b, huh.ErrUserAborted
	}
}

func TestEditLoop_SubmitSaves(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	s := edit.New(app.Records, edit.WithExitGuard(app.Bus))
	defer s.Close()

	form := &scriptedForm{steps: []func(edit.Buffer) (edit.Buffer, error){
		submit(func(b *edit.Buffer) {
			b.Status = caserecord.StatusComplete
			b.Remarks = "no findings"
		}),
	}}

	saved, err := editLoop(ctx, s, app.Records.Get(ctx, "C1"), form.run, host.Always(false))
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, caserecord.StatusComplete, saved.Status)

	rec := app.Records.Get(ctx, "C1")
	assert.Equal(t, "no findings", rec.Remarks)
	assert.False(t, app.Bus.RequestExit().Blocked, "exit guard released after save")
}

func TestEditLoop_AbortDirtyDeclinedReturnsToForm(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	s := edit.New(app.Records)
	defer s.Close()

	var secondSaw edit.Buffer
	form := &scriptedForm{steps: []func(edit.Buffer) (edit.Buffer, error){
		abort(func(b *edit.Buffer) { b.Description = "draft" }),
		func(b edit.Buffer) (edit.Buffer, error) {
			secondSaw = b
			return b, nil
		},
	}}

	saved, err := editLoop(ctx, s, app.Records.Get(ctx, "C1"), form.run, host.Always(false))
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, 2, form.shown)
	assert.Equal(t, "draft", secondSaw.Description, "form reopens with the unsaved edit")
	assert.Equal(t, "draft", app.Records.Get(ctx, "C1").Description)
}

func TestEditLoop_AbortDirtyConfirmedDiscards(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	s := edit.New(app.Records)
	defer s.Close()

	form := &scriptedForm{steps: []func(edit.Buffer) (edit.Buffer, error){
		abort(func(b *edit.Buffer) { b.Remarks = "throwaway" }),
	}}

	saved, err := editLoop(ctx, s, app.Records.Get(ctx, "C1"), form.run, host.Always(true))
	require.NoError(t, err)
	assert.Nil(t, saved)
	assert.Empty(t, app.Records.Get(ctx, "C1").Remarks)
	assert.Equal(t, edit.Viewing, s.State())
}

func TestEditLoop_AbortCleanDoesNotAsk(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	s := edit.New(app.Records)
	defer s.Close()

	asked := false
	confirm := host.ConfirmFunc(func(context.Context, string) bool {
		asked = true
		return false
	})
	form := &scriptedForm{steps: []func(edit.Buffer) (edit.Buffer, error){
		abort(func(*edit.Buffer) {}),
	}}

	saved, err := editLoop(ctx, s, app.Records.Get(ctx, "C1"), form.run, confirm)
	require.NoError(t, err)
	assert.Nil(t, saved)
	assert.False(t, asked)
}

func TestEditLoop_FormErrorStops(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	s := edit.New(app.Records)
	defer s.Close()

	boom := errors.New("tty gone")
	form := &scriptedForm{steps: []func(edit.Buffer) (edit.Buffer, error){
		func(b edit.Buffer) (edit.Buffer, error) { return b, boom },
	}}

	_, err := editLoop(ctx, s, app.Records.Get(ctx, "C1"), form.run, host.Always(true))
	assert.ErrorIs(t, err, boom)
}
