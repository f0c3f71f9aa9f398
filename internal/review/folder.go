package review

import (
	"context"
	"sync"

	"github.com/colonyops/casereview/internal/core/caserecord"
	"github.com/colonyops/casereview/internal/core/eventbus"
	"github.com/colonyops/casereview/internal/records"
)

// Folder is the case list view. It keeps its rows current by re-reading the
// summary list whenever any record changes.
type Folder struct {
	records *records.Store
	ctx     context.Context

	mu       sync.Mutex
	rows     []caserecord.Summary
	onChange []func([]caserecord.Summary)
	unsubs   []eventbus.Unsubscribe
}

// OpenFolder loads the summary list and subscribes to record changes until
// Close.
func OpenFolder(ctx context.Context, store *records.Store, bus *eventbus.EventBus) *Folder {
	f := &Folder{records: store, ctx: ctx}
	f.rows = store.Summaries(ctx)
	f.unsubs = append(f.unsubs,
		bus.SubscribeRecordChanged(func(eventbus.RecordChangedPayload) { f.Reload() }),
		bus.SubscribeRecordsBulkChanged(func(eventbus.RecordsBulkChangedPayload) { f.Reload() }),
	)
	return f
}

// Rows returns a copy of the current rows.
func (f *Folder) Rows() []caserecord.Summary {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]caserecord.Summary(nil), f.rows...)
}

// OnChange registers fn to run with the rows after each reload.
func (f *Folder) OnChange(fn func([]caserecord.Summary)) {
	f.mu.Lock()
	f.onChange = append(f.onChange, fn)
	f.mu.Unlock()
}

// Reload re-reads the summary list.
func (f *Folder) Reload() {
	rows := f.records.Summaries(f.ctx)

	f.mu.Lock()
	f.rows = rows
	fns := append([]func([]caserecord.Summary)(nil), f.onChange...)
	f.mu.Unlock()

	for _, fn := range fns {
		fn(rows)
	}
}

// Close stops listening for changes.
func (f *Folder) Close() {
	f.mu.Lock()
	unsubs := f.unsubs
	f.unsubs = nil
	f.mu.Unlock()
	for _, unsub := range unsubs {
		unsub()
	}
}
