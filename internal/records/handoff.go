package records

import (
	"context"
	"fmt"

	"github.com/colonyops/casereview/internal/core/caserecord"
	"github.com/colonyops/casereview/internal/core/kv"
)

// PutSelectionHandoff stores h for the next screen, replacing any handoff
// that was never consumed.
func (s *Store) PutSelectionHandoff(ctx context.Context, h caserecord.SelectionHandoff) error {
	if err := h.Validate(); err != nil {
		return err
	}
	if err := s.handoffs.SetTTL(ctx, HandoffKey, h, s.handoffTTL); err != nil {
		return fmt.Errorf("store selection handoff: %w", err)
	}
	return nil
}

// TakeSelectionHandoff returns the pending handoff and clears it in the same
// read, so a second call in the same visit reports none.
func (s *Store) TakeSelectionHandoff(ctx context.Context) (caserecord.SelectionHandoff, bool) {
	h, err := s.handoffs.Take(ctx, HandoffKey)
	if err != nil {
		if kv.IsNotFound(err) {
			s.log.Debug().Msg("no selection handoff present")
		} else {
			s.log.Warn().Err(err).Msg("selection handoff unreadable, ignoring")
		}
		return caserecord.SelectionHandoff{}, false
	}
	if h.Validate() != nil {
		s.log.Warn().Str("case_id", h.CaseID).Msg("selection handoff invalid, ignoring")
		return caserecord.SelectionHandoff{}, false
	}
	return h, true
}

// PeekSelectionHandoff returns the pending handoff without consuming it.
func (s *Store) PeekSelectionHandoff(ctx context.Context) (caserecord.SelectionHandoff, bool) {
	h, err := s.handoffs.Get(ctx, HandoffKey)
	if err != nil || h.Validate() != nil {
		return caserecord.SelectionHandoff{}, false
	}
	return h, true
}

// CaseIDs lists every case that has a stored record.
func (s *Store) CaseIDs(ctx context.Context) ([]string, error) {
	ids, err := s.records.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list case ids: %w", err)
	}
	return ids, nil
}
