package pipeline

import (
	"context"
	"time"
)

// Watch re-runs the pipeline every interval until the context is cancelled.
// A failed run does not stop the loop; instead the next attempt is delayed
// by an exponential backoff (capped at the interval) so a flaky upstream is
// not hammered. The first run starts immediately.
func (p *Pipeline) Watch(ctx context.Context, interval time.Duration) error {
	p.logger.Info("watch mode started", "interval", interval)

	backoff := 30 * time.Second
	if backoff > interval {
		backoff = interval
	}
	delay := time.Duration(0)

	for {
		if !sleepWithContext(ctx, delay) {
			p.logger.Info("watch mode stopping", "reason", ctx.Err())
			return nil
		}

		if err := p.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			p.logger.Error("run failed", "error", err, "retry_in", backoff)
			delay = backoff
			backoff = nextBackoff(backoff, interval)
			continue
		}

		backoff = 30 * time.Second
		if backoff > interval {
			backoff = interval
		}
		delay = interval
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
