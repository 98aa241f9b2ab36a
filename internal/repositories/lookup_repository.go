package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"workbooster/internal/models"
)

// LookupRepository serves the pipeline (stages, statuses) and the master tables.
type LookupRepository struct {
	pool *pgxpool.Pool
}

func NewLookupRepository(pool *pgxpool.Pool) *LookupRepository {
	return &LookupRepository{pool: pool}
}

func (r *LookupRepository) Stages(ctx context.Context) ([]models.Stage, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, sort_order FROM stages ORDER BY sort_order, id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[models.Stage])
}

func (r *LookupRepository) StageByID(ctx context.Context, id int64) (*models.Stage, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, sort_order FROM stages WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	stage, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[models.Stage])
	if noRows(err) {
		return nil, nil
	}
	return stage, err
}

func (r *LookupRepository) StageByName(ctx context.Context, name string) (*models.Stage, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, sort_order FROM stages WHERE lower(name) = lower(btrim($1))`, name)
	if err != nil {
		return nil, err
	}
	stage, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[models.Stage])
	if noRows(err) {
		return nil, nil
	}
	return stage, err
}

// Statuses lists all statuses, or only those of stageID when it is set.
func (r *LookupRepository) Statuses(ctx context.Context, stageID *int64) ([]models.Status, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT st.id, st.stage_id, st.name, st.sort_order
		FROM statuses st
		JOIN stages s ON s.id = st.stage_id
		WHERE $1::bigint IS NULL OR st.stage_id = $1
		ORDER BY s.sort_order, st.sort_order, st.id
	`, stageID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[models.Status])
}

func (r *LookupRepository) StatusByID(ctx context.Context, id int64) (*models.Status, error) {
	return r.oneStatus(ctx, `SELECT id, stage_id, name, sort_order FROM statuses WHERE id = $1`, id)
}

func (r *LookupRepository) StatusByName(ctx context.Context, stageID int64, name string) (*models.Status, error) {
	return r.oneStatus(ctx, `
		SELECT id, stage_id, name, sort_order FROM statuses
		WHERE stage_id = $1 AND lower(name) = lower(btrim($2))
	`, stageID, name)
}

// FirstStatus is the lowest sort order status of a stage.
func (r *LookupRepository) FirstStatus(ctx context.Context, stageID int64) (*models.Status, error) {
	return r.oneStatus(ctx, `
		SELECT id, stage_id, name, sort_order FROM statuses
		WHERE stage_id = $1
		ORDER BY sort_order, id
		LIMIT 1
	`, stageID)
}

func (r *LookupRepository) oneStatus(ctx context.Context, query string, args ...any) (*models.Status, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	status, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[models.Status])
	if noRows(err) {
		return nil, nil
	}
	return status, err
}

// Table names below come from models.MasterTables only, never from request input.

func masterColumns(t models.MasterTable) string {
	if t.HasIndustry {
		return "id, name, industry_id, created_at"
	}
	return "id, name, NULL::bigint AS industry_id, created_at"
}

func scanMaster(row pgx.Row) (*models.MasterItem, error) {
	var item models.MasterItem
	if err := row.Scan(&item.ID, &item.Name, &item.IndustryID, &item.CreatedAt); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *LookupRepository) ListMaster(ctx context.Context, t models.MasterTable, industryID *int64) ([]models.MasterItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s`, masterColumns(t), pgx.Identifier{t.Name}.Sanitize())
	args := []any{}
	if t.HasIndustry && industryID != nil {
		query += ` WHERE industry_id = $1`
		args = append(args, *industryID)
	}
	query += ` ORDER BY name, id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.MasterItem{}
	for rows.Next() {
		item, err := scanMaster(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (r *LookupRepository) FindMaster(ctx context.Context, t models.MasterTable, id int64) (*models.MasterItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, masterColumns(t), pgx.Identifier{t.Name}.Sanitize())
	item, err := scanMaster(r.pool.QueryRow(ctx, query, id))
	if noRows(err) {
		return nil, nil
	}
	return item, err
}

// FindMasterByName matches case-insensitively on the trimmed name.
func (r *LookupRepository) FindMasterByName(ctx context.Context, t models.MasterTable, name string) (*models.MasterItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE lower(name) = lower(btrim($1))`, masterColumns(t), pgx.Identifier{t.Name}.Sanitize())
	item, err := scanMaster(r.pool.QueryRow(ctx, query, name))
	if noRows(err) {
		return nil, nil
	}
	return item, err
}

func (r *LookupRepository) CreateMaster(ctx context.Context, t models.MasterTable, item *models.MasterItem) error {
	var row pgx.Row
	table := pgx.Identifier{t.Name}.Sanitize()
	if t.HasIndustry {
		row = r.pool.QueryRow(ctx,
			fmt.Sprintf(`INSERT INTO %s (name, industry_id) VALUES ($1, $2) RETURNING id, created_at`, table),
			item.Name, item.IndustryID)
	} else {
		row = r.pool.QueryRow(ctx,
			fmt.Sprintf(`INSERT INTO %s (name) VALUES ($1) RETURNING id, created_at`, table),
			item.Name)
	}
	err := row.Scan(&item.ID, &item.CreatedAt)
	return constraintError(err, fmt.Sprintf("%s %q already exists", t.Name, item.Name))
}

func (r *LookupRepository) UpdateMaster(ctx context.Context, t models.MasterTable, item *models.MasterItem) (bool, error) {
	var row pgx.Row
	table := pgx.Identifier{t.Name}.Sanitize()
	if t.HasIndustry {
		row = r.pool.QueryRow(ctx,
			fmt.Sprintf(`UPDATE %s SET name = $2, industry_id = $3 WHERE id = $1 RETURNING created_at`, table),
			item.ID, item.Name, item.IndustryID)
	} else {
		row = r.pool.QueryRow(ctx,
			fmt.Sprintf(`UPDATE %s SET name = $2 WHERE id = $1 RETURNING created_at`, table),
			item.ID, item.Name)
	}
	err := row.Scan(&item.CreatedAt)
	if noRows(err) {
		return false, nil
	}
	if err != nil {
		return false, constraintError(err, fmt.Sprintf("%s %q already exists", t.Name, item.Name))
	}
	return true, nil
}

func (r *LookupRepository) DeleteMaster(ctx context.Context, t models.MasterTable, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, pgx.Identifier{t.Name}.Sanitize()), id)
	if err != nil {
		return false, constraintError(err, "")
	}
	return tag.RowsAffected() > 0, nil
}
