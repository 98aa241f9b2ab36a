package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"workbooster/internal/models"
)

type LeadRepository struct {
	pool *pgxpool.Pool
}

func NewLeadRepository(pool *pgxpool.Pool) *LeadRepository {
	return &LeadRepository{pool: pool}
}

// LeadFilter narrows the rows loaded from the database. Finer filtering happens in
// stageview.
type LeadFilter struct {
	StageNames []string
	AccountID  *int64
}

const leadRowSelect = `
	SELECT l.id, l.account_id, l.stage_id, l.status_id, l.source_id, l.product_id, l.lob_id,
	       l.generated_by, l.telecaller_id, l.bd_id, l.data_enrichment_id,
	       l.expected_value::float8, l.follow_up_at, l.notes, l.created_at, l.updated_at,
	       a.account_name, a.industry_id, i.name, a.city_id, c.name, s.name, st.name,
	       src.name, p.name, lob.name, ct.name, ct.phone,
	       ug.name, ut.name, ub.name, ud.name, lc.outcome, lc.called_at
	FROM leads l
	JOIN accounts a ON a.id = l.account_id
	JOIN stages s ON s.id = l.stage_id
	JOIN statuses st ON st.id = l.status_id
	LEFT JOIN industries i ON i.id = a.industry_id
	LEFT JOIN cities c ON c.id = a.city_id
	LEFT JOIN lead_sources src ON src.id = l.source_id
	LEFT JOIN products_master p ON p.id = l.product_id
	LEFT JOIN industry_lobs lob ON lob.id = l.lob_id
	LEFT JOIN users ug ON ug.id = l.generated_by
	LEFT JOIN users ut ON ut.id = l.telecaller_id
	LEFT JOIN users ub ON ub.id = l.bd_id
	LEFT JOIN users ud ON ud.id = l.data_enrichment_id
	LEFT JOIN LATERAL (
	  SELECT name, phone FROM account_contacts
	  WHERE account_id = a.id
	  ORDER BY is_primary DESC, id
	  LIMIT 1
	) ct ON TRUE
	LEFT JOIN LATERAL (
	  SELECT outcome, called_at FROM telecall_logs
	  WHERE lead_id = l.id
	  ORDER BY called_at DESC, id DESC
	  LIMIT 1
	) lc ON TRUE
`

func scanLeadRow(row pgx.Row) (*models.LeadRow, error) {
	var r models.LeadRow
	err := row.Scan(
		&r.ID, &r.AccountID, &r.StageID, &r.StatusID, &r.SourceID, &r.ProductID, &r.LOBID,
		&r.GeneratedBy, &r.TelecallerID, &r.BDID, &r.DataEnrichmentID,
		&r.ExpectedValue, &r.FollowUpAt, &r.Notes, &r.CreatedAt, &r.UpdatedAt,
		&r.AccountName, &r.IndustryID, &r.IndustryName, &r.CityID, &r.CityName, &r.StageName, &r.StatusName,
		&r.SourceName, &r.ProductName, &r.LOBName, &r.ContactName, &r.ContactPhone,
		&r.GeneratorName, &r.TelecallerName, &r.BDName, &r.DataEnrichmentName, &r.LastCallOutcome, &r.LastCallAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *LeadRepository) List(ctx context.Context, f LeadFilter) ([]models.LeadRow, error) {
	var stageNames []string
	if len(f.StageNames) > 0 {
		stageNames = f.StageNames
	}

	rows, err := r.pool.Query(ctx, leadRowSelect+`
		WHERE ($1::text[] IS NULL OR s.name = ANY($1))
		  AND ($2::bigint IS NULL OR l.account_id = $2)
		ORDER BY l.created_at DESC, l.id DESC
	`, stageNames, f.AccountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := []models.LeadRow{}
	for rows.Next() {
		lead, err := scanLeadRow(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *lead)
	}
	return leads, rows.Err()
}

func (r *LeadRepository) FindByID(ctx context.Context, id int64) (*models.LeadRow, error) {
	lead, err := scanLeadRow(r.pool.QueryRow(ctx, leadRowSelect+` WHERE l.id = $1`, id))
	if noRows(err) {
		return nil, nil
	}
	return lead, err
}

func (r *LeadRepository) Create(ctx context.Context, l *models.Lead) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO leads (account_id, stage_id, status_id, source_id, product_id, lob_id,
		                   generated_by, telecaller_id, bd_id, data_enrichment_id,
		                   expected_value, follow_up_at, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at
	`, l.AccountID, l.StageID, l.StatusID, l.SourceID, l.ProductID, l.LOBID,
		l.GeneratedBy, l.TelecallerID, l.BDID, l.DataEnrichmentID,
		l.ExpectedValue, l.FollowUpAt, l.Notes,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	return constraintError(err, "")
}

func (r *LeadRepository) Update(ctx context.Context, l *models.Lead) (bool, error) {
	err := r.pool.QueryRow(ctx, `
		UPDATE leads
		SET account_id = $2, stage_id = $3, status_id = $4, source_id = $5, product_id = $6,
		    lob_id = $7, generated_by = $8, telecaller_id = $9, bd_id = $10,
		    data_enrichment_id = $11, expected_value = $12, follow_up_at = $13, notes = $14,
		    updated_at = now()
		WHERE id = $1
		RETURNING created_at, updated_at
	`, l.ID, l.AccountID, l.StageID, l.StatusID, l.SourceID, l.ProductID,
		l.LOBID, l.GeneratedBy, l.TelecallerID, l.BDID,
		l.DataEnrichmentID, l.ExpectedValue, l.FollowUpAt, l.Notes,
	).Scan(&l.CreatedAt, &l.UpdatedAt)
	if noRows(err) {
		return false, nil
	}
	if err != nil {
		return false, constraintError(err, "")
	}
	return true, nil
}

func (r *LeadRepository) UpdateStage(ctx context.Context, id, stageID, statusID int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads SET stage_id = $2, status_id = $3, updated_at = now() WHERE id = $1
	`, id, stageID, statusID)
	if err != nil {
		return false, constraintError(err, "")
	}
	return tag.RowsAffected() > 0, nil
}

func (r *LeadRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
