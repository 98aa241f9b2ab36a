package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"workbooster/internal/models"
)

type MeetingRepository struct {
	pool *pgxpool.Pool
}

func NewMeetingRepository(pool *pgxpool.Pool) *MeetingRepository {
	return &MeetingRepository{pool: pool}
}

func (r *MeetingRepository) Create(ctx context.Context, m *models.AccountMeeting) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO account_meetings (account_id, lead_id, user_id, meeting_type, scheduled_at, notes, outcome)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, m.AccountID, m.LeadID, m.UserID, m.MeetingType, m.ScheduledAt, m.Notes, m.Outcome,
	).Scan(&m.ID, &m.CreatedAt)
	return constraintError(err, "")
}

func (r *MeetingRepository) ListByAccount(ctx context.Context, accountID int64) ([]models.AccountMeeting, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT m.id, m.account_id, m.lead_id, m.user_id, u.name, m.meeting_type, m.scheduled_at,
		       m.notes, m.outcome, m.created_at
		FROM account_meetings m
		LEFT JOIN users u ON u.id = m.user_id
		WHERE m.account_id = $1
		ORDER BY m.scheduled_at DESC, m.id DESC
	`, accountID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.AccountMeeting, error) {
		var m models.AccountMeeting
		err := row.Scan(&m.ID, &m.AccountID, &m.LeadID, &m.UserID, &m.UserName, &m.MeetingType,
			&m.ScheduledAt, &m.Notes, &m.Outcome, &m.CreatedAt)
		return m, err
	})
}
