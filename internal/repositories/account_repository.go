package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"workbooster/internal/models"
)

type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

type AccountFilter struct {
	Search  string
	OwnerID *int64
	Status  string
}

const accountSelect = `
	SELECT a.id, a.account_name, a.industry_id, i.name, a.head_office, a.city_id, c.name,
	       a.country_id, a.company_website, a.phone, a.email, a.status, a.owner_id, u.name,
	       a.data_completion_score, a.created_at, a.updated_at
	FROM accounts a
	LEFT JOIN industries i ON i.id = a.industry_id
	LEFT JOIN cities c ON c.id = a.city_id
	LEFT JOIN users u ON u.id = a.owner_id
`

// normalizedWebsiteSQL mirrors models.NormalizeWebsite.
const normalizedWebsiteSQL = `rtrim(regexp_replace(lower(btrim(company_website)), '^(https?://)?(www\.)?', ''), '/')`

func scanAccount(row pgx.Row) (*models.Account, error) {
	var a models.Account
	err := row.Scan(
		&a.ID, &a.AccountName, &a.IndustryID, &a.IndustryName, &a.HeadOffice, &a.CityID, &a.CityName,
		&a.CountryID, &a.CompanyWebsite, &a.Phone, &a.Email, &a.Status, &a.OwnerID, &a.OwnerName,
		&a.DataCompletionScore, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AccountRepository) List(ctx context.Context, f AccountFilter) ([]models.Account, error) {
	rows, err := r.pool.Query(ctx, accountSelect+`
		WHERE ($1::text = '' OR a.account_name ILIKE '%' || $1 || '%' OR a.company_website ILIKE '%' || $1 || '%')
		  AND ($2::bigint IS NULL OR a.owner_id = $2)
		  AND ($3::text = '' OR a.status = $3)
		ORDER BY a.account_name, a.id
	`, f.Search, f.OwnerID, f.Status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := []models.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *a)
	}
	return accounts, rows.Err()
}

// FindByID loads the account with its child collections and active lead.
func (r *AccountRepository) FindByID(ctx context.Context, id int64) (*models.Account, error) {
	a, err := scanAccount(r.pool.QueryRow(ctx, accountSelect+` WHERE a.id = $1`, id))
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadChildren(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// FindByName matches the trimmed, case-folded name. Children are not loaded.
func (r *AccountRepository) FindByName(ctx context.Context, name string) (*models.Account, error) {
	a, err := scanAccount(r.pool.QueryRow(ctx, accountSelect+` WHERE lower(btrim(a.account_name)) = lower(btrim($1))`, name))
	if noRows(err) {
		return nil, nil
	}
	return a, err
}

func (r *AccountRepository) loadChildren(ctx context.Context, a *models.Account) error {
	rows, err := r.pool.Query(ctx, `
		SELECT id, account_id, name, designation, phone, email, is_primary
		FROM account_contacts WHERE account_id = $1
		ORDER BY is_primary DESC, id
	`, a.ID)
	if err != nil {
		return err
	}
	a.Contacts, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Contact, error) {
		var c models.Contact
		err := row.Scan(&c.ID, &c.AccountID, &c.Name, &c.Designation, &c.Phone, &c.Email, &c.IsPrimary)
		return c, err
	})
	if err != nil {
		return err
	}

	rows, err = r.pool.Query(ctx, `
		SELECT al.lob_id, l.name
		FROM account_lobs al JOIN industry_lobs l ON l.id = al.lob_id
		WHERE al.account_id = $1 ORDER BY l.name
	`, a.ID)
	if err != nil {
		return err
	}
	a.LOBs, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.AccountLOB, error) {
		var l models.AccountLOB
		err := row.Scan(&l.LOBID, &l.Name)
		return l, err
	})
	if err != nil {
		return err
	}

	rows, err = r.pool.Query(ctx, `
		SELECT ad.id, ad.department_id, d.name
		FROM account_departments ad JOIN departments_master d ON d.id = ad.department_id
		WHERE ad.account_id = $1 ORDER BY d.name
	`, a.ID)
	if err != nil {
		return err
	}
	a.Departments, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.AccountDepartment, error) {
		d := models.AccountDepartment{PainPoints: []models.PainPoint{}}
		err := row.Scan(&d.ID, &d.DepartmentID, &d.Name)
		return d, err
	})
	if err != nil {
		return err
	}
	for i := range a.Departments {
		rows, err := r.pool.Query(ctx, `
			SELECT id, description FROM account_pain_points
			WHERE account_department_id = $1 ORDER BY id
		`, a.Departments[i].ID)
		if err != nil {
			return err
		}
		a.Departments[i].PainPoints, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.PainPoint, error) {
			var p models.PainPoint
			err := row.Scan(&p.ID, &p.Description)
			return p, err
		})
		if err != nil {
			return err
		}
	}

	rows, err = r.pool.Query(ctx, `
		SELECT au.use_case_id, u.name
		FROM account_use_cases au JOIN use_cases_master u ON u.id = au.use_case_id
		WHERE au.account_id = $1 ORDER BY u.name
	`, a.ID)
	if err != nil {
		return err
	}
	a.UseCases, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.AccountUseCase, error) {
		var u models.AccountUseCase
		err := row.Scan(&u.UseCaseID, &u.Name)
		return u, err
	})
	if err != nil {
		return err
	}

	// the active lead is the most recently created one
	var lead models.LeadSummary
	err = r.pool.QueryRow(ctx, `
		SELECT l.id, s.name, st.name, l.created_at
		FROM leads l
		JOIN stages s ON s.id = l.stage_id
		JOIN statuses st ON st.id = l.status_id
		WHERE l.account_id = $1
		ORDER BY l.created_at DESC, l.id DESC
		LIMIT 1
	`, a.ID).Scan(&lead.ID, &lead.StageName, &lead.StatusName, &lead.CreatedAt)
	switch {
	case noRows(err):
		a.ActiveLead = nil
	case err != nil:
		return err
	default:
		a.ActiveLead = &lead
	}
	return nil
}

// Create inserts the account and its child collections in one transaction.
func (r *AccountRepository) Create(ctx context.Context, a *models.Account) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO accounts (account_name, industry_id, head_office, city_id, country_id,
			                      company_website, phone, email, status, owner_id, data_completion_score)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING id, created_at, updated_at
		`, a.AccountName, a.IndustryID, a.HeadOffice, a.CityID, a.CountryID,
			a.CompanyWebsite, a.Phone, a.Email, a.Status, a.OwnerID, a.DataCompletionScore,
		).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
		if err != nil {
			return err
		}
		return replaceChildren(ctx, tx, a)
	})
	return constraintError(err, "account name already exists")
}

// Update rewrites the account row and replaces its child collections in one transaction.
// It reports whether the account existed.
func (r *AccountRepository) Update(ctx context.Context, a *models.Account) (bool, error) {
	found := true
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			UPDATE accounts
			SET account_name = $2, industry_id = $3, head_office = $4, city_id = $5, country_id = $6,
			    company_website = $7, phone = $8, email = $9, status = $10, owner_id = $11,
			    data_completion_score = $12, updated_at = now()
			WHERE id = $1
			RETURNING created_at, updated_at
		`, a.ID, a.AccountName, a.IndustryID, a.HeadOffice, a.CityID, a.CountryID,
			a.CompanyWebsite, a.Phone, a.Email, a.Status, a.OwnerID, a.DataCompletionScore,
		).Scan(&a.CreatedAt, &a.UpdatedAt)
		if noRows(err) {
			found = false
			return nil
		}
		if err != nil {
			return err
		}
		return replaceChildren(ctx, tx, a)
	})
	if err != nil {
		return false, constraintError(err, "account name already exists")
	}
	return found, nil
}

func replaceChildren(ctx context.Context, tx pgx.Tx, a *models.Account) error {
	for _, table := range []string{"account_contacts", "account_lobs", "account_departments", "account_use_cases"} {
		if _, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE account_id = $1`, a.ID); err != nil {
			return err
		}
	}

	for i := range a.Contacts {
		c := &a.Contacts[i]
		c.AccountID = a.ID
		err := tx.QueryRow(ctx, `
			INSERT INTO account_contacts (account_id, name, designation, phone, email, is_primary)
			VALUES ($1, $2, $3, $4, $5, $6) RETURNING id
		`, a.ID, c.Name, c.Designation, c.Phone, c.Email, c.IsPrimary).Scan(&c.ID)
		if err != nil {
			return err
		}
	}

	for _, l := range a.LOBs {
		if _, err := tx.Exec(ctx, `INSERT INTO account_lobs (account_id, lob_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, a.ID, l.LOBID); err != nil {
			return err
		}
	}

	for i := range a.Departments {
		d := &a.Departments[i]
		err := tx.QueryRow(ctx, `
			INSERT INTO account_departments (account_id, department_id) VALUES ($1, $2) RETURNING id
		`, a.ID, d.DepartmentID).Scan(&d.ID)
		if err != nil {
			return err
		}
		for j := range d.PainPoints {
			p := &d.PainPoints[j]
			err := tx.QueryRow(ctx, `
				INSERT INTO account_pain_points (account_department_id, description) VALUES ($1, $2) RETURNING id
			`, d.ID, p.Description).Scan(&p.ID)
			if err != nil {
				return err
			}
		}
	}

	for _, u := range a.UseCases {
		if _, err := tx.Exec(ctx, `INSERT INTO account_use_cases (account_id, use_case_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, a.ID, u.UseCaseID); err != nil {
			return err
		}
	}
	return nil
}

func (r *AccountRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return false, constraintError(err, "")
	}
	return tag.RowsAffected() > 0, nil
}

func (r *AccountRepository) CountLeads(ctx context.Context, accountID int64) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM leads WHERE account_id = $1`, accountID).Scan(&n)
	return n, err
}

// FindDuplicates checks the trimmed case-folded name and the normalized website against
// every account except excludeID. website must already be normalized.
func (r *AccountRepository) FindDuplicates(ctx context.Context, name, website string, excludeID *int64) (models.DuplicateFlags, error) {
	var flags models.DuplicateFlags
	err := r.pool.QueryRow(ctx, `
		SELECT
		  btrim($1) <> '' AND EXISTS (
		    SELECT 1 FROM accounts
		    WHERE lower(btrim(account_name)) = lower(btrim($1))
		      AND ($3::bigint IS NULL OR id <> $3)
		  ),
		  $2 <> '' AND EXISTS (
		    SELECT 1 FROM accounts
		    WHERE company_website IS NOT NULL
		      AND `+normalizedWebsiteSQL+` = $2
		      AND ($3::bigint IS NULL OR id <> $3)
		  )
	`, name, website, excludeID).Scan(&flags.AccountNameExists, &flags.CompanyWebsiteExists)
	return flags, err
}

func (r *AccountRepository) ListIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM accounts ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}

func (r *AccountRepository) UpdateScore(ctx context.Context, id int64, score int) error {
	_, err := r.pool.Exec(ctx, `UPDATE accounts SET data_completion_score = $2 WHERE id = $1`, id, score)
	return err
}
