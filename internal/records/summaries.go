package records

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/colonyops/casereview/internal/core/caserecord"
	"github.com/colonyops/casereview/internal/core/kv"
)

// Summaries returns the case list shown by the folder screen. A missing or
// unreadable list yields nil.
func (s *Store) Summaries(ctx context.Context) []caserecord.Summary {
	rows, err := s.summaries.Get(ctx, SummariesKey)
	if err != nil {
		if !kv.IsNotFound(err) {
			s.log.Warn().Err(err).Msg("case summary list unreadable")
		}
		return nil
	}

	out := make([]caserecord.Summary, 0, len(rows))
	for _, row := range rows {
		raw, err := json.Marshal(row)
		if err != nil {
			continue
		}
		var sum caserecord.Summary
		if err := json.Unmarshal(raw, &sum); err != nil || sum.ID == "" {
			continue
		}
		out = append(out, sum)
	}
	return out
}

// RegisterSummary adds a row for sum.ID, or updates the name, status, and
// remarks of an existing one. Keys on the row owned by other screens are kept.
func (s *Store) RegisterSummary(ctx context.Context, sum caserecord.Summary) error {
	if err := caserecord.ValidateCaseID(sum.ID); err != nil {
		return err
	}
	if sum.Status == "" {
		sum.Status = caserecord.StatusPending
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.loadSummaries(ctx)
	idx := indexOf(rows, sum.ID)
	if idx < 0 {
		rows = append(rows, object{})
		idx = len(rows) - 1
	}

	fields := map[string]any{
		"id":      sum.ID,
		"name":    sum.Name,
		"status":  sum.Status,
		"remarks": sum.Remarks,
	}
	for k, v := range fields {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode summary %s: %w", k, err)
		}
		rows[idx][k] = raw
	}

	if err := s.summaries.Set(ctx, SummariesKey, rows); err != nil {
		return fmt.Errorf("persist case summaries: %w", err)
	}
	return nil
}

// syncSummary mirrors status and remarks onto the matching summary row.
// Only existing rows are touched. Caller holds s.mu.
func (s *Store) syncSummary(ctx context.Context, caseID string, fields caserecord.Fields) error {
	rows, err := s.summaries.Get(ctx, SummariesKey)
	if err != nil {
		if kv.IsNotFound(err) {
			return nil
		}
		return err
	}

	idx := indexOf(rows, caseID)
	if idx < 0 {
		return nil
	}

	if fields.Status != nil {
		raw, _ := json.Marshal(*fields.Status)
		rows[idx]["status"] = raw
	}
	if fields.Remarks != nil {
		raw, _ := json.Marshal(*fields.Remarks)
		rows[idx]["remarks"] = raw
	}

	return s.summaries.Set(ctx, SummariesKey, rows)
}

func (s *Store) loadSummaries(ctx context.Context) []object {
	rows, err := s.summaries.Get(ctx, SummariesKey)
	if err != nil {
		if !kv.IsNotFound(err) {
			s.log.Warn().Err(err).Msg("case summary list unreadable, starting a new one")
		}
		return nil
	}
	return rows
}

func indexOf(rows []object, caseID string) int {
	for i, row := range rows {
		if row == nil {
			continue
		}
		var id string
		if err := json.Unmarshal(row["id"], &id); err == nil && id == caseID {
			return i
		}
	}
	return -1
}
