package jobs

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"workbooster/internal/logger"
	"workbooster/internal/metrics"
	"workbooster/internal/models"
)

// the scheduler owns a cron goroutine that must be gone after Stop
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeScores struct {
	accounts map[int64]*models.Account
	updated  map[int64]int
	listErr  error
}

func (f *fakeScores) ListIDs(ctx context.Context) ([]int64, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	// include an id that vanished between listing and loading
	return []int64{1, 2, 3, 99}, nil
}

func (f *fakeScores) FindByID(ctx context.Context, id int64) (*models.Account, error) {
	return f.accounts[id], nil
}

func (f *fakeScores) UpdateScore(ctx context.Context, id int64, score int) error {
	f.updated[id] = score
	return nil
}

func strPtr(s string) *string { return &s }

func TestScoreJobRun(t *testing.T) {
	industry := int64(4)
	store := &fakeScores{
		accounts: map[int64]*models.Account{
			1: {ID: 1, AccountName: "Acme", DataCompletionScore: 10},
			2: {ID: 2, AccountName: "Globex", IndustryID: &industry, Phone: strPtr("+911234"), DataCompletionScore: 10},
			3: {ID: 3, AccountName: "Initech", HeadOffice: strPtr(" "), DataCompletionScore: 0},
		},
		updated: map[int64]int{},
	}
	m := metrics.New()
	job := NewScoreJob(store, m, logger.New("error", io.Discard))

	changed, err := job.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, changed)
	assert.Equal(t, map[int64]int{2: 30, 3: 10}, store.updated)
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	var recorded float64
	for _, mf := range families {
		if mf.GetName() == "workbooster_score_recomputed_accounts_total" {
			recorded = mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	assert.Equal(t, 2.0, recorded)
}

func TestScoreJobListError(t *testing.T) {
	store := &fakeScores{listErr: errors.New("boom"), updated: map[int64]int{}}
	job := NewScoreJob(store, nil, logger.New("error", io.Discard))

	_, err := job.Run(context.Background())
	assert.ErrorContains(t, err, "boom")
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	s := NewScheduler(logger.New("error", io.Discard))
	err := s.AddScoreJob("not a cron", NewScoreJob(&fakeScores{}, nil, nil))
	assert.Error(t, err)

	require.NoError(t, s.AddScoreJob("0 2 * * *", NewScoreJob(&fakeScores{}, nil, nil)))
	s.Start()
	s.Stop(context.Background())
}
