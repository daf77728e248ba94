package scheduler

import (
	"context"
	"medhistory/internal/providers"
	"medhistory/internal/scheduler/interfaces"
	"medhistory/internal/services"
	"medhistory/internal/structures"
	"sync"
	"time"

	"github.com/roylee0704/gron"
	"golang.org/x/sync/errgroup"
)

const defaultWorkers = 4

// Scheduler periodically runs cleanup (deduplication and retention) for
// every user with a storage area.
type Scheduler struct {
	config  *structures.Config
	logger  providers.Logger
	service services.HistoryServiceInterface
	cron    *gron.Cron
	sweepMu sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
}

func (s *Scheduler) Init() {
	if !s.config.Scheduler.Enabled {
		s.logger.Infof(providers.TypeApp, "Retention scheduler disabled")
		return
	}

	s.cron = gron.New()
	interval := s.config.Scheduler.Interval

	s.cron.AddFunc(gron.Every(interval), func() {
		s.logger.Infof(providers.TypeApp, "Retention sweep...")
		if err := s.Sweep(s.ctx); err != nil {
			s.logger.Errorf(providers.TypeApp, "Retention sweep failed: %s", err)
			return
		}
		s.logger.Infof(providers.TypeApp, "Retention sweep finished")
	})

	s.cron.Start()
	s.logger.Infof(providers.TypeApp, "Retention scheduler started, interval %s", interval)
}

func (s *Scheduler) Stop() {
	s.cancel()
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Sweep cleans up all users, a bounded number at a time. Sweeps never
// overlap. A failure for one user does not stop the others; the first
// error is returned.
func (s *Scheduler) Sweep(ctx context.Context) error {
	s.sweepMu.Lock()
	defer s.sweepMu.Unlock()

	users, err := s.service.ListUsers(ctx)
	if err != nil {
		return err
	}

	workers := s.config.Scheduler.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for _, userID := range users {
		g.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			start := time.Now()
			summary, err := s.service.Cleanup(ctx, userID)
			if err != nil {
				s.logger.Errorf(providers.TypeApp, "Cleanup of %s failed: %s", userID, err)
				return err
			}
			if summary.RemovedRecords > 0 || summary.RemovedFiles > 0 {
				s.logger.Infof(providers.TypeApp, "Cleanup of %s removed %d records and %d files in %s",
					userID, summary.RemovedRecords, summary.RemovedFiles, time.Since(start))
			}
			return nil
		})
	}
	return g.Wait()
}

func NewScheduler(config *structures.Config, logger providers.Logger, service services.HistoryServiceInterface) interfaces.SchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		config:  config,
		logger:  logger,
		service: service,
		ctx:     ctx,
		cancel:  cancel,
	}
}
