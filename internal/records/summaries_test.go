package records_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/casereview/internal/core/caserecord"
	"github.com/colonyops/casereview/internal/records"
)

func TestSummaries_EmptyWhenMissing(t *testing.T) {
	f := newFixture(t)
	assert.Empty(t, f.store.Summaries(context.Background()))
}

func TestRegisterSummary_AddsAndUpdates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.RegisterSummary(ctx, caserecord.Summary{ID: "C1", Name: "Ada"}))
	require.NoError(t, f.store.RegisterSummary(ctx, caserecord.Summary{ID: "C2", Name: "Grace"}))
	require.NoError(t, f.store.RegisterSummary(ctx, caserecord.Summary{ID: "C1", Name: "Ada L."}))

	sums := f.store.Summaries(ctx)
	require.Len(t, sums, 2)
	assert.Equal(t, "Ada L.", sums[0].Name)
	assert.Equal(t, caserecord.StatusPending, sums[0].Status)
	assert.Equal(t, "Grace", sums[1].Name)
}

func TestPut_SyncsSummaryRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.kv.Set(ctx, records.SummariesKey,
		`[{"id":"C1","name":"Ada","status":"Pending","remarks":"","age":41},{"id":"C2","name":"Grace","status":"Pending"}]`))

	_, err := f.store.Put(ctx, "C1", caserecord.Fields{}.WithStatus(caserecord.StatusComplete).WithRemarks("done"))
	require.NoError(t, err)

	sums := f.store.Summaries(ctx)
	require.Len(t, sums, 2)
	assert.Equal(t, caserecord.StatusComplete, sums[0].Status)
	assert.Equal(t, "done", sums[0].Remarks)
	assert.Equal(t, caserecord.StatusPending, sums[1].Status)

	raw, err := f.kv.Get(ctx, records.SummariesKey)
	require.NoError(t, err)
	assert.Contains(t, raw, `"age":41`)
}

func TestPut_DescriptionOnlyLeavesSummaryAlone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const list = `[{"id":"C1","name":"Ada","status":"Pending","remarks":""}]`
	require.NoError(t, f.kv.Set(ctx, records.SummariesKey, list))

	_, err := f.store.Put(ctx, "C1", caserecord.Fields{}.WithDescription("d"))
	require.NoError(t, err)

	raw, err := f.kv.Get(ctx, records.SummariesKey)
	require.NoError(t, err)
	assert.Equal(t, list, raw)
}

func TestPut_UnknownCaseDoesNotCreateSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.store.Put(ctx, "C1", caserecord.Fields{}.WithStatus(caserecord.StatusComplete))
	require.NoError(t, err)
	assert.Empty(t, f.store.Summaries(ctx))
}
