package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"workbooster/internal/models"
)

// DashboardRepository runs the read-only aggregates behind the dashboard.
type DashboardRepository struct {
	pool *pgxpool.Pool
}

func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{pool: pool}
}

// StageCounts includes stages with no leads.
func (r *DashboardRepository) StageCounts(ctx context.Context) ([]models.StageCount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT s.id, s.name, count(l.id)
		FROM stages s
		LEFT JOIN leads l ON l.stage_id = s.id
		GROUP BY s.id, s.name, s.sort_order
		ORDER BY s.sort_order
	`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.StageCount, error) {
		var c models.StageCount
		err := row.Scan(&c.StageID, &c.StageName, &c.Count)
		return c, err
	})
}

func (r *DashboardRepository) AccountsByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, count(*) FROM accounts GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{
		models.AccountStatusProspect: 0,
		models.AccountStatusActive:   0,
		models.AccountStatusDormant:  0,
	}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}

// UserStats counts, per active user, the leads they are assigned to in any role, calls
// logged since dayStart and meetings scheduled in [weekStart, weekEnd).
func (r *DashboardRepository) UserStats(ctx context.Context, dayStart, weekStart, weekEnd time.Time) ([]models.UserStat, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT u.id, u.name, u.role,
		  (SELECT count(*) FROM leads l
		   WHERE u.id IN (l.generated_by, l.telecaller_id, l.bd_id, l.data_enrichment_id)),
		  (SELECT count(*) FROM telecall_logs t WHERE t.user_id = u.id AND t.called_at >= $1),
		  (SELECT count(*) FROM account_meetings m WHERE m.user_id = u.id
		     AND m.scheduled_at >= $2 AND m.scheduled_at < $3)
		FROM users u
		WHERE u.is_active
		ORDER BY u.name, u.id
	`, dayStart, weekStart, weekEnd)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.UserStat, error) {
		var s models.UserStat
		err := row.Scan(&s.UserID, &s.UserName, &s.Role, &s.LeadsOwned, &s.CallsToday, &s.MeetingsThisWeek)
		return s, err
	})
}
