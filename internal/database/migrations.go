package database

// Migration is one versioned schema change. Versions are applied in order and never edited
// once released; append a new entry instead.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

var migrations = []Migration{
	{Version: 1, Name: "create_users", SQL: createUsersTable},
	{Version: 2, Name: "create_master_tables", SQL: createMasterTables},
	{Version: 3, Name: "create_pipeline", SQL: createPipelineTables},
	{Version: 4, Name: "seed_pipeline", SQL: seedPipeline},
	{Version: 5, Name: "create_accounts", SQL: createAccountTables},
	{Version: 6, Name: "create_leads", SQL: createLeadsTable},
	{Version: 7, Name: "create_activity", SQL: createActivityTables},
}

// Migrations returns the registered migrations in version order.
func Migrations() []Migration {
	out := make([]Migration, len(migrations))
	copy(out, migrations)
	return out
}

// LatestVersion is the version the schema must be at for the server to start.
func LatestVersion() int {
	return migrations[len(migrations)-1].Version
}

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
  id BIGSERIAL PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'sales'
    CHECK (role IN ('admin', 'sales', 'bd', 'telecaller', 'data_enrichment')),
  is_active BOOLEAN NOT NULL DEFAULT TRUE,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  last_login_at TIMESTAMPTZ
);

CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (lower(email));
`

const createMasterTables = `
CREATE TABLE IF NOT EXISTS industries (
  id BIGSERIAL PRIMARY KEY,
  name TEXT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS industries_name_key ON industries (lower(name));

CREATE TABLE IF NOT EXISTS lead_sources (
  id BIGSERIAL PRIMARY KEY,
  name TEXT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS lead_sources_name_key ON lead_sources (lower(name));

CREATE TABLE IF NOT EXISTS cities (
  id BIGSERIAL PRIMARY KEY,
  name TEXT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS cities_name_key ON cities (lower(name));

CREATE TABLE IF NOT EXISTS countries (
  id BIGSERIAL PRIMARY KEY,
  name TEXT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS countries_name_key ON countries (lower(name));

CREATE TABLE IF NOT EXISTS departments_master (
  id BIGSERIAL PRIMARY KEY,
  name TEXT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS departments_master_name_key ON departments_master (lower(name));

CREATE TABLE IF NOT EXISTS products_master (
  id BIGSERIAL PRIMARY KEY,
  name TEXT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS products_master_name_key ON products_master (lower(name));

CREATE TABLE IF NOT EXISTS use_cases_master (
  id BIGSERIAL PRIMARY KEY,
  name TEXT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS use_cases_master_name_key ON use_cases_master (lower(name));

CREATE TABLE IF NOT EXISTS industry_lobs (
  id BIGSERIAL PRIMARY KEY,
  industry_id BIGINT REFERENCES industries(id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS industry_lobs_name_key ON industry_lobs (lower(name));
`

const createPipelineTables = `
CREATE TABLE IF NOT EXISTS stages (
  id BIGSERIAL PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  sort_order INT NOT NULL
);

CREATE TABLE IF NOT EXISTS statuses (
  id BIGSERIAL PRIMARY KEY,
  stage_id BIGINT NOT NULL REFERENCES stages(id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  sort_order INT NOT NULL,
  UNIQUE (stage_id, name)
);
`

const seedPipeline = `
INSERT INTO stages (name, sort_order) VALUES
  ('Sourcing', 1),
  ('Telecalling', 2),
  ('Demo', 3),
  ('POC', 4),
  ('Proposal', 5),
  ('Negotiation', 6),
  ('Won', 7),
  ('Lost', 8)
ON CONFLICT (name) DO NOTHING;

INSERT INTO statuses (stage_id, name, sort_order)
SELECT s.id, v.name, v.sort_order
FROM (VALUES
  ('Sourcing', 'New', 1),
  ('Sourcing', 'Enriched', 2),
  ('Sourcing', 'Qualified', 3),
  ('Telecalling', 'Not Called', 1),
  ('Telecalling', 'In Progress', 2),
  ('Telecalling', 'Call Back', 3),
  ('Telecalling', 'Interested', 4),
  ('Demo', 'Scheduled', 1),
  ('Demo', 'Completed', 2),
  ('Demo', 'No Show', 3),
  ('POC', 'Planned', 1),
  ('POC', 'In Progress', 2),
  ('POC', 'Completed', 3),
  ('Proposal', 'Drafting', 1),
  ('Proposal', 'Sent', 2),
  ('Proposal', 'Revised', 3),
  ('Negotiation', 'In Discussion', 1),
  ('Negotiation', 'Verbal Commit', 2),
  ('Won', 'Closed Won', 1),
  ('Lost', 'Closed Lost', 1)
) AS v(stage, name, sort_order)
JOIN stages s ON s.name = v.stage
ON CONFLICT (stage_id, name) DO NOTHING;
`

const createAccountTables = `
CREATE TABLE IF NOT EXISTS accounts (
  id BIGSERIAL PRIMARY KEY,
  account_name TEXT NOT NULL,
  industry_id BIGINT REFERENCES industries(id) ON DELETE SET NULL,
  head_office TEXT,
  city_id BIGINT REFERENCES cities(id) ON DELETE SET NULL,
  country_id BIGINT REFERENCES countries(id) ON DELETE SET NULL,
  company_website TEXT,
  phone TEXT,
  email TEXT,
  status TEXT NOT NULL DEFAULT 'Prospect' CHECK (status IN ('Prospect', 'Active', 'Dormant')),
  owner_id BIGINT REFERENCES users(id) ON DELETE SET NULL,
  data_completion_score INT NOT NULL DEFAULT 0,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE UNIQUE INDEX IF NOT EXISTS accounts_name_key ON accounts (lower(btrim(account_name)));

CREATE TABLE IF NOT EXISTS account_contacts (
  id BIGSERIAL PRIMARY KEY,
  account_id BIGINT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  designation TEXT,
  phone TEXT,
  email TEXT,
  is_primary BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE INDEX IF NOT EXISTS idx_account_contacts_account ON account_contacts (account_id);

CREATE TABLE IF NOT EXISTS account_lobs (
  account_id BIGINT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
  lob_id BIGINT NOT NULL REFERENCES industry_lobs(id) ON DELETE CASCADE,
  PRIMARY KEY (account_id, lob_id)
);

CREATE TABLE IF NOT EXISTS account_departments (
  id BIGSERIAL PRIMARY KEY,
  account_id BIGINT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
  department_id BIGINT NOT NULL REFERENCES departments_master(id) ON DELETE CASCADE,
  UNIQUE (account_id, department_id)
);

CREATE TABLE IF NOT EXISTS account_pain_points (
  id BIGSERIAL PRIMARY KEY,
  account_department_id BIGINT NOT NULL REFERENCES account_departments(id) ON DELETE CASCADE,
  description TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS account_use_cases (
  account_id BIGINT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
  use_case_id BIGINT NOT NULL REFERENCES use_cases_master(id) ON DELETE CASCADE,
  PRIMARY KEY (account_id, use_case_id)
);
`

const createLeadsTable = `
CREATE TABLE IF NOT EXISTS leads (
  id BIGSERIAL PRIMARY KEY,
  account_id BIGINT NOT NULL REFERENCES accounts(id),
  stage_id BIGINT NOT NULL REFERENCES stages(id),
  status_id BIGINT NOT NULL REFERENCES statuses(id),
  source_id BIGINT REFERENCES lead_sources(id) ON DELETE SET NULL,
  product_id BIGINT REFERENCES products_master(id) ON DELETE SET NULL,
  lob_id BIGINT REFERENCES industry_lobs(id) ON DELETE SET NULL,
  generated_by BIGINT REFERENCES users(id) ON DELETE SET NULL,
  telecaller_id BIGINT REFERENCES users(id) ON DELETE SET NULL,
  bd_id BIGINT REFERENCES users(id) ON DELETE SET NULL,
  data_enrichment_id BIGINT REFERENCES users(id) ON DELETE SET NULL,
  expected_value NUMERIC(14, 2),
  follow_up_at TIMESTAMPTZ,
  notes TEXT,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_leads_account ON leads (account_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_leads_stage ON leads (stage_id);
`

const createActivityTables = `
CREATE TABLE IF NOT EXISTS telecall_logs (
  id BIGSERIAL PRIMARY KEY,
  lead_id BIGINT NOT NULL REFERENCES leads(id) ON DELETE CASCADE,
  user_id BIGINT REFERENCES users(id) ON DELETE SET NULL,
  outcome TEXT NOT NULL,
  notes TEXT,
  duration_seconds INT NOT NULL DEFAULT 0 CHECK (duration_seconds >= 0),
  follow_up_at TIMESTAMPTZ,
  called_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_telecall_logs_lead ON telecall_logs (lead_id, called_at DESC);
CREATE INDEX IF NOT EXISTS idx_telecall_logs_follow_up ON telecall_logs (follow_up_at) WHERE follow_up_at IS NOT NULL;

CREATE TABLE IF NOT EXISTS account_meetings (
  id BIGSERIAL PRIMARY KEY,
  account_id BIGINT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
  lead_id BIGINT REFERENCES leads(id) ON DELETE SET NULL,
  user_id BIGINT REFERENCES users(id) ON DELETE SET NULL,
  meeting_type TEXT NOT NULL CHECK (meeting_type IN ('demo', 'poc', 'follow_up', 'review')),
  scheduled_at TIMESTAMPTZ NOT NULL,
  notes TEXT,
  outcome TEXT,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_account_meetings_account ON account_meetings (account_id, scheduled_at DESC);
`
