// Package housekeeping runs periodic maintenance on the notification inbox.
package housekeeping

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Archiver moves acknowledged notifications out of the inbox.
// *notify.Service implements it.
type Archiver interface {
	ArchiveRead(ctx context.Context, olderThan time.Duration) (int, error)
}

// Scheduler archives READ notifications on a cron schedule.
type Scheduler struct {
	cron         *cron.Cron
	archiver     Archiver
	archiveAfter time.Duration
	logger       *slog.Logger
}

// New creates a scheduler that runs the archive job on spec, a standard
// five-field cron expression or a descriptor such as "@daily".
func New(spec string, archiveAfter time.Duration, archiver Archiver, logger *slog.Logger) (*Scheduler, error) {
	if archiveAfter <= 0 {
		return nil, fmt.Errorf("archive_after must be positive, got %s", archiveAfter)
	}
	s := &Scheduler{
		cron:         cron.New(cron.WithLocation(time.UTC)),
		archiver:     archiver,
		archiveAfter: archiveAfter,
		logger:       logger,
	}
	if _, err := s.cron.AddFunc(spec, s.RunOnce); err != nil {
		return nil, fmt.Errorf("add archive job %q: %w", spec, err)
	}
	return s, nil
}

// Start runs the scheduler in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("housekeeping scheduler started", "archive_after", s.archiveAfter.String())
}

// Stop halts the scheduler and waits for a running job to finish or ctx to
// be done.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

// RunOnce archives READ notifications older than the configured age.
func (s *Scheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := s.archiver.ArchiveRead(ctx, s.archiveAfter)
	if err != nil {
		s.logger.Error("archive read notifications", "error", err)
		return
	}
	s.logger.Info("archived read notifications", "count", n)
}
