// Package scheduler drives the periodic simulation work: the hourly macro
// tick, investment returns, loan enforcement, the shock lottery, election
// resolution and the nightly archive export.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/hazelvale/economica/internal/archive"
	"github.com/hazelvale/economica/internal/economy"
	"github.com/hazelvale/economica/internal/logger"
)

type Scheduler struct {
	cron    *cron.Cron
	engine  *economy.Engine
	archive *archive.Service
}

// New builds the scheduler. archive may be nil when exports are disabled.
func New(engine *economy.Engine, archiveSvc *archive.Service) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		engine:  engine,
		archive: archiveSvc,
	}
}

// Start registers every job and begins the cron loop. Jobs run until Stop.
func (s *Scheduler) Start(ctx context.Context) error {
	type job struct {
		spec string
		name string
		run  func(context.Context) error
	}
	jobs := []job{
		{"@hourly", "tick", s.engine.TickAll},
		{"0 */6 * * *", "loans", s.engine.EnforceLoans},
		{"0 */12 * * *", "returns", s.engine.ApplyReturns},
		{"30 0 * * *", "shocks", s.rollShocks},
		{"*/10 * * * *", "elections", s.engine.ResolveElections},
	}
	if s.archive != nil {
		jobs = append(jobs, job{"15 1 * * *", "archive", s.exportArchives})
	}

	for _, job := range jobs {
		job := job
		_, err := s.cron.AddFunc(job.spec, func() {
			start := time.Now()
			err := job.run(ctx)
			if err != nil {
				logger.LogError("Scheduled job failed", err,
					"job", job.name, "took", time.Since(start))
				return
			}
			logger.LogSystem("Scheduled job completed",
				"job", job.name, "took", time.Since(start))
		})
		if err != nil {
			return err
		}
	}

	s.cron.Start()
	logger.LogSystem("Scheduler started", "jobs", len(jobs))
	return nil
}

// Stop halts the cron loop and waits for running jobs to drain.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	logger.LogSystem("Scheduler stopped")
}

func (s *Scheduler) rollShocks(ctx context.Context) error {
	landed, err := s.engine.RollShocks(ctx)
	for serverID, shock := range landed {
		logger.LogSystem("Economic shock landed",
			"server_id", serverID.String(), "kind", shock.Kind, "ends_at", shock.EndsAt)
	}
	return err
}

// exportArchives uploads yesterday's snapshots per server.
func (s *Scheduler) exportArchives(ctx context.Context) error {
	servers, err := s.engine.Servers(ctx)
	if err != nil {
		return err
	}

	day := time.Now().AddDate(0, 0, -1)
	since := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	for _, serverID := range servers {
		snapshots, err := s.engine.History(ctx, serverID, since)
		if err != nil {
			return err
		}
		if err := s.archive.Export(ctx, serverID, since, snapshots); err != nil {
			return err
		}
	}
	return nil
}
