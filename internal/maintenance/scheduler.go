// Package maintenance runs periodic housekeeping jobs.
package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rpggio/storyforge/internal/compiler"
	"github.com/rpggio/storyforge/internal/config"
	"github.com/rpggio/storyforge/internal/domain/project"
)

const jobTimeout = 5 * time.Minute

// SessionCleaner deletes stale sessions.
type SessionCleaner interface {
	Cleanup(ctx context.Context, maxAge time.Duration) (int64, error)
}

// StatisticsSource reports aggregate project counts.
type StatisticsSource interface {
	Statistics(ctx context.Context) (*project.Statistics, error)
}

// Scheduler owns the cron runner and the jobs registered on it.
type Scheduler struct {
	cfg      config.MaintenanceConfig
	sessions SessionCleaner
	stats    StatisticsSource
	logger   *slog.Logger

	// BuildRoot is where compiler scratch directories live.
	BuildRoot string
	now       func() time.Time

	cron *cron.Cron
}

func NewScheduler(cfg config.MaintenanceConfig, sessions SessionCleaner, stats StatisticsSource, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cfg:       cfg,
		sessions:  sessions,
		stats:     stats,
		logger:    logger,
		BuildRoot: os.TempDir(),
		now:       time.Now,
		cron:      cron.New(cron.WithSeconds()),
	}
}

// Start registers the configured jobs and starts the runner. Jobs with an
// empty schedule are skipped.
func (s *Scheduler) Start() error {
	if !s.cfg.Enabled {
		s.logger.Info("maintenance disabled")
		return nil
	}

	jobs := []struct {
		name     string
		schedule string
		run      func(context.Context) error
	}{
		{"cleanup_sessions", s.cfg.SessionSchedule, s.CleanupSessions},
		{"sweep_build_dirs", s.cfg.SweepSchedule, s.SweepBuildDirs},
		{"log_statistics", s.cfg.StatsSchedule, s.LogStatistics},
	}

	for _, job := range jobs {
		if job.schedule == "" {
			continue
		}
		name, run := job.name, job.run
		if _, err := s.cron.AddFunc(job.schedule, func() { s.runJob(name, run) }); err != nil {
			return fmt.Errorf("schedule %s: %w", name, err)
		}
		s.logger.Info("maintenance job scheduled", "job", name, "schedule", job.schedule)
	}

	s.cron.Start()
	return nil
}

// Stop halts the runner and waits for running jobs, bounded by ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop().Done()
	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("maintenance jobs still running at shutdown")
	}
}

func (s *Scheduler) runJob(name string, run func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	if err := run(ctx); err != nil {
		s.logger.Error("maintenance job failed", "job", name, "error", err)
		return
	}
	s.logger.Debug("maintenance job finished", "job", name, "duration", time.Since(start))
}

// CleanupSessions removes sessions idle for longer than SessionMaxAge.
func (s *Scheduler) CleanupSessions(ctx context.Context) error {
	if s.sessions == nil || s.cfg.SessionMaxAge <= 0 {
		return nil
	}
	n, err := s.sessions.Cleanup(ctx, s.cfg.SessionMaxAge)
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Info("stale sessions removed", "count", n)
	}
	return nil
}

// SweepBuildDirs deletes compiler scratch directories left behind by
// crashed or killed compiles.
func (s *Scheduler) SweepBuildDirs(ctx context.Context) error {
	if s.cfg.BuildDirMaxAge <= 0 {
		return nil
	}
	matches, err := filepath.Glob(filepath.Join(s.BuildRoot, compiler.BuildDirPattern))
	if err != nil {
		return err
	}

	cutoff := s.now().Add(-s.cfg.BuildDirMaxAge)
	removed := 0
	for _, dir := range matches {
		if err := ctx.Err(); err != nil {
			return err
		}
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.RemoveAll(dir); err != nil {
			s.logger.Warn("build dir not removed", "path", dir, "error", err)
			continue
		}
		removed++
	}
	if removed > 0 {
		s.logger.Info("build dirs swept", "count", removed)
	}
	return nil
}

// LogStatistics writes the current project counts to the log.
func (s *Scheduler) LogStatistics(ctx context.Context) error {
	if s.stats == nil {
		return nil
	}
	stats, err := s.stats.Statistics(ctx)
	if err != nil {
		return err
	}
	s.logger.Info("statistics",
		"total_projects", stats.TotalProjects,
		"total_content", stats.TotalContent,
		"projects_by_type", stats.ProjectsByType,
	)
	return nil
}
