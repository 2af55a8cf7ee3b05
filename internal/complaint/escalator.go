package complaint

import (
	"context"
	"log/slog"
	"time"
)

// Escalator runs the escalation sweep on a fixed interval until its context
// is cancelled. The sweep itself is transactional, so overlapping runs from
// other processes are harmless.
type Escalator struct {
	service  *Service
	interval time.Duration
	logger   *slog.Logger
}

func NewEscalator(service *Service, interval time.Duration, logger *slog.Logger) *Escalator {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Escalator{
		service:  service,
		interval: interval,
		logger:   logger,
	}
}

// Run blocks until ctx is cancelled. One sweep fires immediately so stale
// complaints are not left waiting out the first interval after a restart.
func (e *Escalator) Run(ctx context.Context) {
	e.logger.Info("escalation sweeper started", "interval", e.interval.String())

	e.sweep()

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("escalation sweeper stopped")
			return
		case <-ticker.C:
			e.sweep()
		}
	}
}

func (e *Escalator) sweep() {
	if _, err := e.service.EscalateStale(); err != nil {
		e.logger.Error("escalation sweep failed", "error", err)
	}
}
