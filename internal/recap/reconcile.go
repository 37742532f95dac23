package recap

import (
	"context"
	"fmt"
	"time"

	"accomplish/internal/api"
	"accomplish/internal/logging"
)

// reconcileAttempts bounds the metadata reconciliation loop. The push channel
// can report completion before the backend has finished materializing entry
// counts, so a stream-reported completion gets a short window of re-fetches
// rather than being trusted or distrusted outright.
const reconcileAttempts = 3

// reconcile fetches the authoritative snapshot after a stream-reported
// completion. A snapshot is sufficient when its metadata shows at least one
// entry, or when attempts are exhausted and whatever was fetched last has to
// do. Fetch errors only surface from the final attempt.
func (c *Coordinator) reconcile(ctx context.Context) (*api.RecapStatus, error) {
	for attempt := 1; attempt <= reconcileAttempts; attempt++ {
		if attempt > 1 {
			if err := c.wait(ctx, c.opts.ReconcileDelay); err != nil {
				return nil, err
			}
		}
		snapshot, err := c.transport.FetchRecapStatus(ctx, c.job.RecapID)
		if err != nil {
			if attempt == reconcileAttempts {
				return nil, err
			}
			c.logger.Debug("reconcile fetch failed, retrying", logging.Int("attempt", attempt), logging.Error(err))
			continue
		}
		sufficient := attempt == reconcileAttempts ||
			(snapshot.Metadata != nil && snapshot.Metadata.EntryCount > 0)
		if !sufficient {
			c.logger.Debug("reconcile snapshot still stale, retrying", logging.Int("attempt", attempt))
			continue
		}
		if snapshot.Content == nil {
			return nil, fmt.Errorf("%w: recap completed but no content was returned", ErrProtocol)
		}
		return snapshot, nil
	}
	// Unreachable: the final attempt always returns.
	return nil, fmt.Errorf("%w: reconciliation exhausted without a snapshot", ErrProtocol)
}

// wait sleeps for d while keeping the liveness indicator moving.
func (c *Coordinator) wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	ticker := time.NewTicker(c.opts.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.indicator.Tick()
		case <-timer.C:
			return nil
		}
	}
}
