package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Sweeper is the periodic presence scan. Each tick collects clients whose
// alive flag was never re-armed since the previous tick and evicts them,
// so the effective heartbeat timeout is two sweep intervals.
type Sweeper struct {
	hub      *Hub
	interval time.Duration
	log      *zerolog.Logger
}

// NewSweeper constructs a sweeper over the hub's registry.
func NewSweeper(hub *Hub, interval time.Duration, logger *zerolog.Logger) *Sweeper {
	return &Sweeper{hub: hub, interval: interval, log: logger}
}

// Run ticks until the context is cancelled. It communicates with the
// registry only through its atomic operations and never holds any lock
// while waiting.
func (s *Sweeper) Run(ctx context.Context) {
	s.log.Info().Dur("interval", s.interval).Msg("presence sweeper running")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("presence sweeper stopped")
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

// sweep runs one eviction pass. Eviction is unconditional once a client has
// missed two windows; a heartbeat arriving mid-pass cannot cancel it.
func (s *Sweeper) sweep() {
	dead := s.hub.Registry().SweepDead()
	if len(dead) == 0 {
		return
	}

	s.log.Warn().Int("count", len(dead)).Msg("evicting unresponsive clients")
	for _, clientID := range dead {
		if err := s.hub.Disconnect(clientID); err != nil {
			s.log.Warn().Err(err).Str("client_id", clientID.String()).Msg("eviction failed")
		}
	}
}
