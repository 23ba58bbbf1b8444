package workspace

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper evicts idle workspaces on a cron schedule.
type Sweeper struct {
	cron     *cron.Cron
	registry *Registry
	logger   *zap.Logger
}

// NewSweeper schedules registry sweeps. schedule accepts standard cron
// expressions and descriptors such as "@every 1m".
func NewSweeper(registry *Registry, schedule string, logger *zap.Logger) (*Sweeper, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Sweeper{
		cron:     cron.New(),
		registry: registry,
		logger:   logger.With(zap.String("component", "workspace_sweeper")),
	}
	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return nil, fmt.Errorf("failed to schedule workspace sweep %q: %w", schedule, err)
	}
	return s, nil
}

func (s *Sweeper) Start() {
	s.cron.Start()
	s.logger.Info("workspace sweeper started")
}

// Stop waits for a running sweep to finish or ctx to end.
func (s *Sweeper) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

func (s *Sweeper) run() {
	if n := s.registry.Sweep(); n > 0 {
		s.logger.Info("evicted idle workspaces", zap.Int("count", n), zap.Int("remaining", s.registry.Len()))
	}
}
