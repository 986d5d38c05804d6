package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/ecopay/ecoledger/internal/usecase"
)

// Config holds the cron schedules and job dependencies.
type Config struct {
	SettlementSvc       *usecase.SettlementService
	ReconciliationSvc   *usecase.ReconciliationService
	Logger              zerolog.Logger
	SweepSchedule       string
	ConsistencySchedule string
	SweepBatchSize      int
	JobTimeout          time.Duration
}

// Scheduler runs periodic maintenance jobs: expiring stale order
// reservations and checking ledger consistency.
type Scheduler struct {
	cron              *cron.Cron
	settlementSvc     *usecase.SettlementService
	reconciliationSvc *usecase.ReconciliationService
	logger            zerolog.Logger
	sweepBatchSize    int
	jobTimeout        time.Duration
}

// New creates a Scheduler and registers its jobs.
func New(cfg Config) (*Scheduler, error) {
	if cfg.SweepBatchSize == 0 {
		cfg.SweepBatchSize = 100
	}
	if cfg.JobTimeout == 0 {
		cfg.JobTimeout = time.Minute
	}

	s := &Scheduler{
		cron:              cron.New(),
		settlementSvc:     cfg.SettlementSvc,
		reconciliationSvc: cfg.ReconciliationSvc,
		logger:            cfg.Logger,
		sweepBatchSize:    cfg.SweepBatchSize,
		jobTimeout:        cfg.JobTimeout,
	}

	if cfg.SweepSchedule != "" {
		if _, err := s.cron.AddFunc(cfg.SweepSchedule, s.runSweep); err != nil {
			return nil, err
		}
	}

	if cfg.ConsistencySchedule != "" {
		if _, err := s.cron.AddFunc(cfg.ConsistencySchedule, s.runConsistencyCheck); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Start begins running scheduled jobs in the background.
func (s *Scheduler) Start() {
	s.logger.Info().Msg("scheduler started")
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info().Msg("scheduler stopped")
}

func (s *Scheduler) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
	defer cancel()

	expired, err := s.settlementSvc.ExpireStale(ctx, s.sweepBatchSize)
	if err != nil {
		s.logger.Error().Err(err).Msg("reservation sweep failed")
		return
	}

	if expired > 0 {
		s.logger.Info().Int("expired", expired).Msg("reservation sweep completed")
	}
}

func (s *Scheduler) runConsistencyCheck() {
	ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
	defer cancel()

	report, err := s.reconciliationSvc.CheckConsistency(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("consistency check failed")
		return
	}

	if !report.Consistent() {
		s.logger.Warn().
			Int("account_mismatches", len(report.AccountMismatches)).
			Int("point_mismatches", len(report.PointMismatches)).
			Msg("ledger consistency check found discrepancies")
		return
	}

	s.logger.Debug().
		Int("checked_accounts", report.CheckedAccounts).
		Msg("ledger consistency check passed")
}
