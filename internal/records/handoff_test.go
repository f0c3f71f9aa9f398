package records_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/casereview/internal/core/caserecord"
	"github.com/colonyops/casereview/internal/records"
)

func TestSelectionHandoff_ConsumedOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.PutSelectionHandoff(ctx, caserecord.SelectionHandoff{CaseID: "C1", RequestedSlice: 4}))

	h, ok := f.store.TakeSelectionHandoff(ctx)
	require.True(t, ok)
	assert.Equal(t, "C1", h.CaseID)
	assert.Equal(t, 4, h.RequestedSlice)

	_, ok = f.store.TakeSelectionHandoff(ctx)
	assert.False(t, ok)
}

func TestSelectionHandoff_PeekDoesNotConsume(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, ok := f.store.PeekSelectionHandoff(ctx)
	assert.False(t, ok)

	require.NoError(t, f.store.PutSelectionHandoff(ctx, caserecord.SelectionHandoff{CaseID: "C1", RequestedSlice: 2}))

	h, ok := f.store.PeekSelectionHandoff(ctx)
	require.True(t, ok)
	assert.Equal(t, "C1", h.CaseID)

	h, ok = f.store.TakeSelectionHandoff(ctx)
	require.True(t, ok)
	assert.Equal(t, 2, h.RequestedSlice)
}

func TestSelectionHandoff_LatestWins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.PutSelectionHandoff(ctx, caserecord.SelectionHandoff{CaseID: "C1"}))
	require.NoError(t, f.store.PutSelectionHandoff(ctx, caserecord.SelectionHandoff{CaseID: "C2", RequestedSlice: 2}))

	h, ok := f.store.TakeSelectionHandoff(ctx)
	require.True(t, ok)
	assert.Equal(t, "C2", h.CaseID)
}

func TestSelectionHandoff_InvalidRejected(t *testing.T) {
	f := newFixture(t)
	require.Error(t, f.store.PutSelectionHandoff(context.Background(), caserecord.SelectionHandoff{}))
}

func TestSelectionHandoff_UnreadableIsCleared(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.kv.Set(ctx, records.HandoffKey, "{oops"))

	_, ok := f.store.TakeSelectionHandoff(ctx)
	assert.False(t, ok)

	_, err := f.kv.Get(ctx, records.HandoffKey)
	assert.Error(t, err)
}
