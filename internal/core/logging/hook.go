package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// ContextHook extracts case_id and screen from context and adds them to log events.
type ContextHook struct{}

// Run adds contextual fields to the zerolog event.
func (h ContextHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == context.Background() || ctx == nil {
		return
	}

	if caseID := GetCaseID(ctx); caseID != "" {
		e.Str("case_id", caseID)
	}

	if screen := GetScreen(ctx); screen != "" {
		e.Str("screen", screen)
	}
}
