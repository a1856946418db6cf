package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"pasteapi/internal/logging"
)

// RunReaper purges expired pastes every interval until ctx is cancelled.
// A non-positive interval returns immediately.
func RunReaper(ctx context.Context, svc PasteService, interval time.Duration, logger zerolog.Logger) {
	if interval <= 0 {
		return
	}

	log := logging.Component(logger, "reaper").With().
		Str("run_id", uuid.NewString()).
		Logger()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info().Dur("interval", interval).Msg("reaper started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("reaper shutting down")
			return
		case <-ticker.C:
			n, err := svc.PurgeExpired(ctx)
			if err != nil {
				if ctx.Err() != nil {
					continue
				}
				log.Error().Err(err).Msg("purge expired pastes failed")
			} else if n > 0 {
				log.Info().Int("deleted", n).Msg("purged expired pastes")
			}
		}
	}
}
