// Package sweep removes expired selection handoffs in the background.
package sweep

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/colonyops/casereview/internal/core/kv"
)

// Start periodically sweeps expired entries from store. It sweeps once
// immediately and then blocks until ctx is cancelled.
func Start(ctx context.Context, store kv.Sweeper, interval time.Duration) {
	sweepOnce(ctx, store)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweepOnce(ctx, store)
		}
	}
}

func sweepOnce(ctx context.Context, store kv.Sweeper) {
	if err := store.SweepExpired(ctx); err != nil && ctx.Err() == nil {
		log.Debug().Err(err).Msg("kv sweep failed")
	}
}
