package application

import (
	"context"
	"time"

	"github.com/bnema/orca/internal/logging"
	"go.uber.org/zap"
)

const defaultReapInterval = 5 * time.Minute

// Reaper periodically removes idle hosts.
type Reaper struct {
	hosts    *HostService
	interval time.Duration
	logger   *zap.Logger
}

func NewReaper(hosts *HostService, interval time.Duration, logger *zap.Logger) *Reaper {
	if interval <= 0 {
		interval = defaultReapInterval
	}
	return &Reaper{hosts: hosts, interval: interval, logger: logging.OrNop(logger).Named("reaper")}
}

// Run sweeps until ctx is done. Sweep failures are logged and retried on the
// next tick.
func (r *Reaper) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

func (r *Reaper) sweep(ctx context.Context) {
	reaped, err := r.hosts.Reap(ctx)
	if err != nil && ctx.Err() == nil {
		r.logger.Warn("idle host sweep failed", zap.Error(err))
	}
	if len(reaped) > 0 {
		r.logger.Info("idle hosts reaped", zap.Int("count", len(reaped)))
	}
}
