// Package records is the single source of truth for case records. Every
// successful write is published on the event bus so other open screens can
// re-read.
package records

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/casereview/internal/core/caserecord"
	"github.com/colonyops/casereview/internal/core/eventbus"
	"github.com/colonyops/casereview/internal/core/kv"
	"github.com/colonyops/casereview/internal/core/logging"
)

// Storage keys shared with the other screens.
const (
	RecordKeyPrefix = "metadata_"
	SummariesKey    = "patientRecords"
	HandoffKey      = "selectedCase"
)

// DefaultHandoffTTL bounds how long an unconsumed handoff survives.
const DefaultHandoffTTL = 10 * time.Minute

type object = map[string]json.RawMessage

// Store reads and writes case records, the case summary list, and the
// selection handoff.
type Store struct {
	records   *kv.TypedKV[object]
	summaries *kv.TypedKV[[]object]
	handoffs  *kv.TypedKV[caserecord.SelectionHandoff]
	bus       *eventbus.EventBus

	now        func() time.Time
	handoffTTL time.Duration
	log        zerolog.Logger

	// mu serializes read-merge-write within this process. Writers in other
	// processes still race with last-write-wins.
	mu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithHandoffTTL sets how long a stored handoff stays readable.
func WithHandoffTTL(ttl time.Duration) Option {
	return func(s *Store) { s.handoffTTL = ttl }
}

// New creates a Store. durable holds records and summaries; ephemeral holds
// the per-visit handoff and may be the same store.
func New(durable, ephemeral kv.KV, bus *eventbus.EventBus, opts ...Option) *Store {
	s := &Store{
		records:    kv.Scoped[object](durable, RecordKeyPrefix),
		summaries:  kv.Scoped[[]object](durable, ""),
		handoffs:   kv.Scoped[caserecord.SelectionHandoff](ephemeral, ""),
		bus:        bus,
		now:        time.Now,
		handoffTTL: DefaultHandoffTTL,
		log:        logging.Component("records"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the stored record, or the default Pending record when nothing
// is stored or the stored payload cannot be read.
func (s *Store) Get(ctx context.Context, caseID string) caserecord.Record {
	ctx = logging.WithCaseID(ctx, caseID)
	if err := caserecord.ValidateCaseID(caseID); err != nil {
		s.log.Warn().Ctx(ctx).Err(err).Msg("get with invalid case id")
		return caserecord.Default(caseID)
	}
	return caserecord.Decode(caseID, s.load(ctx, caseID))
}

// load returns the stored JSON object, or an empty one. Unreadable payloads
// are logged and treated as absent.
func (s *Store) load(ctx context.Context, caseID string) object {
	obj, err := s.records.Get(ctx, caseID)
	switch {
	case err == nil && obj != nil:
		return obj
	case err == nil, kv.IsNotFound(err):
		return object{}
	default:
		s.log.Warn().Ctx(ctx).Err(err).Msg("stored record unreadable, using default")
		return object{}
	}
}

// Put merges fields into the stored record, stamps lastModified, persists,
// and then publishes recordChanged. Fields left nil keep their stored value.
func (s *Store) Put(ctx context.Context, caseID string, fields caserecord.Fields) (caserecord.Record, error) {
	rec, err := s.put(ctx, caseID, fields)
	if err != nil {
		return rec, err
	}

	s.bus.PublishRecordChanged(eventbus.RecordChangedPayload{CaseID: rec.CaseID, Status: rec.Status})
	return rec, nil
}

// PutMany applies the same fields to several cases and publishes a single
// recordsBulkChanged listing the cases that were written. On failure the
// event still lists the writes that succeeded before it.
func (s *Store) PutMany(ctx context.Context, caseIDs []string, fields caserecord.Fields) ([]caserecord.Record, error) {
	out := make([]caserecord.Record, 0, len(caseIDs))
	written := make([]string, 0, len(caseIDs))

	var firstErr error
	for _, id := range caseIDs {
		rec, err := s.put(ctx, id, fields)
		if err != nil {
			firstErr = fmt.Errorf("put %q: %w", id, err)
			break
		}
		out = append(out, rec)
		written = append(written, id)
	}

	if len(written) > 0 {
		s.bus.PublishRecordsBulkChanged(eventbus.RecordsBulkChangedPayload{CaseIDs: written})
	}
	return out, firstErr
}

func (s *Store) put(ctx context.Context, caseID string, fields caserecord.Fields) (caserecord.Record, error) {
	ctx = logging.WithCaseID(ctx, caseID)
	if err := caserecord.ValidateCaseID(caseID); err != nil {
		return caserecord.Record{}, err
	}
	if err := fields.Validate(); err != nil {
		return caserecord.Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	obj := s.load(ctx, caseID)
	prev := caserecord.Decode(caseID, obj)

	if err := merge(obj, fields, s.stamp(prev.LastModified)); err != nil {
		return caserecord.Record{}, err
	}
	if err := s.records.Set(ctx, caseID, obj); err != nil {
		return caserecord.Record{}, fmt.Errorf("persist record: %w", err)
	}

	if fields.Status != nil || fields.Remarks != nil {
		if err := s.syncSummary(ctx, caseID, fields); err != nil {
			s.log.Warn().Ctx(ctx).Err(err).Msg("case summary not updated")
		}
	}

	rec := caserecord.Decode(caseID, obj)
	s.log.Debug().Ctx(ctx).Str("status", rec.Status.String()).Msg("record saved")
	return rec, nil
}

// stamp returns the current time, nudged forward when the clock has not
// moved past the previous stamp so lastModified strictly increases.
func (s *Store) stamp(prev time.Time) time.Time {
	now := s.now().UTC()
	if !now.After(prev) {
		now = prev.Add(time.Millisecond)
	}
	return now
}

func merge(obj object, fields caserecord.Fields, stamp time.Time) error {
	set := func(key string, v any) error {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		obj[key] = raw
		return nil
	}

	if fields.Status != nil {
		if err := set(caserecord.KeyStatus, *fields.Status); err != nil {
			return err
		}
	}
	if fields.Description != nil {
		if err := set(caserecord.KeyDescription, *fields.Description); err != nil {
			return err
		}
	}
	if fields.Remarks != nil {
		if err := set(caserecord.KeyRemarks, *fields.Remarks); err != nil {
			return err
		}
	}
	return set(caserecord.KeyLastModified, stamp)
}
