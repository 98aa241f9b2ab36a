package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"workbooster/internal/models"
)

type TelecallRepository struct {
	pool *pgxpool.Pool
}

func NewTelecallRepository(pool *pgxpool.Pool) *TelecallRepository {
	return &TelecallRepository{pool: pool}
}

// Create appends the call log. A follow-up time is copied onto the lead in the same
// transaction.
func (r *TelecallRepository) Create(ctx context.Context, log *models.TelecallLog) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO telecall_logs (lead_id, user_id, outcome, notes, duration_seconds, follow_up_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, called_at
		`, log.LeadID, log.UserID, log.Outcome, log.Notes, log.DurationSeconds, log.FollowUpAt,
		).Scan(&log.ID, &log.CalledAt)
		if err != nil {
			return err
		}
		if log.FollowUpAt == nil {
			return nil
		}
		_, err = tx.Exec(ctx, `UPDATE leads SET follow_up_at = $2, updated_at = now() WHERE id = $1`,
			log.LeadID, log.FollowUpAt)
		return err
	})
	return constraintError(err, "")
}

func (r *TelecallRepository) ListByLead(ctx context.Context, leadID int64) ([]models.TelecallLog, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT t.id, t.lead_id, t.user_id, u.name, t.outcome, t.notes, t.duration_seconds,
		       t.follow_up_at, t.called_at
		FROM telecall_logs t
		LEFT JOIN users u ON u.id = t.user_id
		WHERE t.lead_id = $1
		ORDER BY t.called_at DESC, t.id DESC
	`, leadID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.TelecallLog, error) {
		var t models.TelecallLog
		err := row.Scan(&t.ID, &t.LeadID, &t.UserID, &t.UserName, &t.Outcome, &t.Notes,
			&t.DurationSeconds, &t.FollowUpAt, &t.CalledAt)
		return t, err
	})
}

// FollowUps lists leads whose follow-up time falls in [from, to), with the latest call
// that scheduled it when there is one.
func (r *TelecallRepository) FollowUps(ctx context.Context, from, to time.Time) ([]models.FollowUp, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT COALESCE(lc.id, 0), l.id, a.account_name, COALESCE(lc.outcome, ''), l.follow_up_at, u.name
		FROM leads l
		JOIN accounts a ON a.id = l.account_id
		LEFT JOIN users u ON u.id = l.telecaller_id
		LEFT JOIN LATERAL (
		  SELECT id, outcome FROM telecall_logs
		  WHERE lead_id = l.id AND follow_up_at IS NOT NULL
		  ORDER BY called_at DESC, id DESC
		  LIMIT 1
		) lc ON TRUE
		WHERE l.follow_up_at >= $1 AND l.follow_up_at < $2
		ORDER BY l.follow_up_at, l.id
	`, from, to)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.FollowUp, error) {
		var f models.FollowUp
		err := row.Scan(&f.CallID, &f.LeadID, &f.AccountName, &f.Outcome, &f.FollowUpAt, &f.TelecallerName)
		return f, err
	})
}
