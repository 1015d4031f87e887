// Package monitor re-evaluates compliance state on a cron schedule.
package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/ersonp/compliance-core/internal/domain/services"
)

// Engine is the part of the compliance service the monitor drives.
type Engine interface {
	Load(ctx context.Context) *services.View
	Insights(ctx context.Context, view *services.View) services.InsightResult
}

// Scheduler runs a full load and insight pass on a cron schedule.
type Scheduler struct {
	engine   Engine
	schedule string
	cron     *cron.Cron
	logger   *zap.Logger

	mu      sync.Mutex
	running bool
}

// NewScheduler creates a scheduler for a standard five-field cron expression.
func NewScheduler(engine Engine, schedule string, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		engine:   engine,
		schedule: schedule,
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:   logger.Named("monitor"),
	}
}

// Start schedules the evaluation and returns. The scheduler stops when ctx
// is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	if _, err := s.cron.AddFunc(s.schedule, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("scheduling evaluation: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("monitor started", zap.String("schedule", s.schedule))

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// RunOnce performs one evaluation and returns the loaded view.
func (s *Scheduler) RunOnce(ctx context.Context) *services.View {
	view := s.engine.Load(ctx)
	insights := s.engine.Insights(ctx, view)

	fields := []zap.Field{
		zap.Int("score", view.Stats.OverallScore),
		zap.Int("trend", view.Stats.Trend),
		zap.Int("pending_cases", view.Stats.PendingCases),
		zap.Int("expiring_docs", view.Stats.ExpiringDocs),
		zap.Int("actions", len(view.Actions)),
		zap.Int("insights", len(insights.Insights)),
		zap.String("insight_source", string(insights.Source)),
	}
	if len(view.LoadErrors) > 0 {
		fields = append(fields, zap.Int("load_errors", len(view.LoadErrors)))
		s.logger.Warn("evaluation finished with load errors", fields...)
		return view
	}
	s.logger.Info("evaluation finished", fields...)
	return view
}

// Stop stops the scheduler and waits for a running evaluation to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
	s.logger.Info("monitor stopped")
}

// IsRunning reports whether the scheduler is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled evaluation time, or nil when nothing
// is scheduled.
func (s *Scheduler) NextRun() *time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
