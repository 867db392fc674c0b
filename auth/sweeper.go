package auth

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

const DefaultSweepInterval = 30 * time.Second

// Sweeper is something that can purge expired sessions.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// RunSweeper calls s.Sweep every interval until ctx is done.
func RunSweeper(ctx context.Context, s Sweeper, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info().Dur("interval", interval).Msg("Session sweeper started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Session sweeper stopped")
			return
		case <-ticker.C:
			n, err := s.Sweep(ctx)
			if err != nil {
				log.Error().Err(err).Msg("Session sweep failed")
				continue
			}
			if n > 0 {
				log.Info().Int("cleared", n).Msg("Expired sessions cleared")
			}
		}
	}
}
