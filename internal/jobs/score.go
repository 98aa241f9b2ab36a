// Package jobs holds the scheduled background work owned by the API server.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"workbooster/internal/logger"
	"workbooster/internal/metrics"
	"workbooster/internal/models"
)

// AccountScores is the slice of the account store the score job needs.
type AccountScores interface {
	ListIDs(ctx context.Context) ([]int64, error)
	FindByID(ctx context.Context, id int64) (*models.Account, error)
	UpdateScore(ctx context.Context, id int64, score int) error
}

// ScoreJob recomputes every account's data completion score.
type ScoreJob struct {
	accounts AccountScores
	metrics  *metrics.Metrics
	log      logger.Logger
	timeout  time.Duration
}

func NewScoreJob(accounts AccountScores, m *metrics.Metrics, log logger.Logger) *ScoreJob {
	if log == nil {
		log = logger.Default()
	}
	return &ScoreJob{accounts: accounts, metrics: m, log: log.With("job", "completion_score"), timeout: 30 * time.Minute}
}

// Run rescores all accounts and returns how many changed. Accounts deleted while the job
// runs are skipped.
func (j *ScoreJob) Run(ctx context.Context) (int, error) {
	ids, err := j.accounts.ListIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list accounts: %w", err)
	}
	changed := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return changed, err
		}
		a, err := j.accounts.FindByID(ctx, id)
		if err != nil {
			return changed, fmt.Errorf("load account %d: %w", id, err)
		}
		if a == nil {
			continue
		}
		score := a.CompletionScore()
		if score == a.DataCompletionScore {
			continue
		}
		if err := j.accounts.UpdateScore(ctx, id, score); err != nil {
			return changed, fmt.Errorf("update score of account %d: %w", id, err)
		}
		changed++
	}
	j.metrics.ScoresUpdated(changed)
	return changed, nil
}

// Scheduler runs jobs on cron specs until stopped.
type Scheduler struct {
	cron *cron.Cron
	log  logger.Logger
}

func NewScheduler(log logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Default()
	}
	return &Scheduler{cron: cron.New(), log: log}
}

// AddScoreJob schedules j on spec, a standard five-field cron expression.
func (s *Scheduler) AddScoreJob(spec string, j *ScoreJob) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
		defer cancel()

		start := time.Now()
		changed, err := j.Run(ctx)
		if err != nil {
			j.log.Error("score job failed", "error", err, "changed", changed)
			return
		}
		j.log.Info("score job finished", "changed", changed, "duration", time.Since(start).String())
	})
	if err != nil {
		return fmt.Errorf("schedule score job %q: %w", spec, err)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.log.Info("scheduler started", "jobs", len(s.cron.Entries()))
	s.cron.Start()
}

// Stop waits for running jobs to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out")
	}
}
