package security

import (
	"context"
	"log/slog"
	"time"
)

// SweepInterval is how often rate-limit and token state is pruned
const SweepInterval = 5 * time.Minute

// Sweepable is state that can be pruned periodically
type Sweepable interface {
	Sweep() int
}

// RunSweeper prunes each target every interval until ctx is cancelled
func RunSweeper(ctx context.Context, interval time.Duration, targets ...Sweepable) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := 0
			for _, t := range targets {
				removed += t.Sweep()
			}
			if removed > 0 {
				slog.Debug("swept stale security state", "removed", removed)
			}
		}
	}
}
