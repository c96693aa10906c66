package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const maxBackoff = time.Hour

// calculateBackoff doubles base for every consecutive failed round, capped at
// maxBackoff (or base itself when base is larger).
func calculateBackoff(failures int, base time.Duration) time.Duration {
	limit := max(maxBackoff, base)
	if failures <= 0 {
		return base
	}
	d := base
	for i := 0; i < failures; i++ {
		d *= 2
		if d >= limit {
			return limit
		}
	}
	return d
}

// repeat runs round immediately and then again every interval until ctx is
// cancelled. A failed round stretches the wait with exponential backoff; the
// next successful one resets it.
func repeat(ctx context.Context, every time.Duration, round func(context.Context) error, log zerolog.Logger) error {
	failures := 0
	for {
		if err := round(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			failures++
			log.Warn().Err(err).Int("failures", failures).Msg("refresh round failed")
		} else {
			failures = 0
		}

		wait := calculateBackoff(failures, every)
		log.Debug().Dur("next_in", wait).Msg("waiting for next round")

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}
