package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-ingest/internal/db"
	"github.com/sells-group/lead-ingest/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS companies (
	id              TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name            TEXT NOT NULL DEFAULT '',
	domain          TEXT,
	website         TEXT NOT NULL DEFAULT '',
	linkedin_url    TEXT NOT NULL DEFAULT '',
	industry        TEXT NOT NULL DEFAULT '',
	size            INTEGER,
	phone           TEXT NOT NULL DEFAULT '',
	technologies    TEXT[] NOT NULL DEFAULT '{}',
	country         TEXT NOT NULL DEFAULT '',
	state           TEXT NOT NULL DEFAULT '',
	city            TEXT NOT NULL DEFAULT '',
	full_enrichment BOOLEAN NOT NULL DEFAULT false,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT companies_domain_key UNIQUE (domain)
);

CREATE INDEX IF NOT EXISTS idx_companies_name_lower ON companies(lower(name));

CREATE TABLE IF NOT EXISTS leads (
	id              TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	email           TEXT NOT NULL,
	company_id      TEXT REFERENCES companies(id),
	first_name      TEXT NOT NULL DEFAULT '',
	last_name       TEXT NOT NULL DEFAULT '',
	phone           TEXT NOT NULL DEFAULT '',
	job_title       TEXT NOT NULL DEFAULT '',
	seniority       TEXT NOT NULL DEFAULT '',
	linkedin_url    TEXT NOT NULL DEFAULT '',
	country         TEXT NOT NULL DEFAULT '',
	state           TEXT NOT NULL DEFAULT '',
	city            TEXT NOT NULL DEFAULT '',
	source_type     TEXT NOT NULL DEFAULT '',
	is_active       BOOLEAN NOT NULL DEFAULT true,
	added_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	last_updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT leads_email_key UNIQUE (email)
);

CREATE INDEX IF NOT EXISTS idx_leads_linkedin_url ON leads(linkedin_url) WHERE linkedin_url <> '';
CREATE INDEX IF NOT EXISTS idx_leads_company_id ON leads(company_id);
`

// Ping checks connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

const pgCompanyColumns = `id, name, COALESCE(domain, ''), website, linkedin_url, industry, COALESCE(size, 0), phone,
	technologies, country, state, city, full_enrichment, created_at, updated_at`

func (s *PostgresStore) FindCompanyByDomain(ctx context.Context, domain string) (*model.Company, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+pgCompanyColumns+` FROM companies WHERE domain = $1`, domain)
	c, err := scanPgCompany(row)
	return c, eris.Wrapf(err, "postgres: find company by domain %s", domain)
}

func (s *PostgresStore) FindCompanyByName(ctx context.Context, name string) (*model.Company, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+pgCompanyColumns+` FROM companies
		WHERE lower(name) = lower($1) ORDER BY created_at LIMIT 1`, name)
	c, err := scanPgCompany(row)
	return c, eris.Wrapf(err, "postgres: find company by name %s", name)
}

func (s *PostgresStore) CreateCompany(ctx context.Context, c *model.Company) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now

	_, err := s.pool.Exec(ctx, `INSERT INTO companies (id, name, domain, website, linkedin_url, industry, size,
		phone, technologies, country, state, city, full_enrichment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		c.ID, c.Name, nullIfEmpty(c.Domain), c.Website, c.LinkedInURL, c.Industry, c.Size,
		c.Phone, nonNilStrings(c.Technologies), c.Country, c.State, c.City, c.FullEnrichment, c.CreatedAt, c.UpdatedAt,
	)
	if db.IsUniqueViolation(err, "companies_domain_key") {
		return eris.Wrapf(ErrDuplicate, "postgres: company domain %s", c.Domain)
	}
	return eris.Wrap(err, "postgres: insert company")
}

const pgLeadColumns = `l.id, l.email, COALESCE(l.company_id, ''), l.first_name, l.last_name, l.phone, l.job_title,
	l.seniority, l.linkedin_url, l.country, l.state, l.city, l.source_type, l.is_active,
	l.added_at, l.last_updated_at`

func (s *PostgresStore) FindLeadByEmail(ctx context.Context, email string) (*model.Lead, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+pgLeadColumns+` FROM leads l WHERE l.email = $1`, email)
	l, err := scanPgLead(row)
	return l, eris.Wrap(err, "postgres: find lead by email")
}

func (s *PostgresStore) FindLeadByLinkedIn(ctx context.Context, url string) (*model.Lead, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+pgLeadColumns+` FROM leads l
		WHERE l.linkedin_url = $1 AND l.linkedin_url <> '' LIMIT 1`, url)
	l, err := scanPgLead(row)
	return l, eris.Wrap(err, "postgres: find lead by linkedin")
}

func (s *PostgresStore) FindLeadByNameAndCompanyDomain(ctx context.Context, firstName, lastName, domain string) (*model.Lead, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+pgLeadColumns+` FROM leads l
		JOIN companies c ON c.id = l.company_id
		WHERE lower(l.first_name) = lower($1) AND lower(l.last_name) = lower($2) AND c.domain = $3
		LIMIT 1`, firstName, lastName, domain)
	l, err := scanPgLead(row)
	return l, eris.Wrap(err, "postgres: find lead by name and company")
}

func (s *PostgresStore) InsertLead(ctx context.Context, l *model.Lead) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	_, err := s.pool.Exec(ctx, `INSERT INTO leads (id, email, company_id, first_name, last_name, phone, job_title,
		seniority, linkedin_url, country, state, city, source_type, is_active, added_at, last_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		l.ID, l.Email, l.CompanyID, l.FirstName, l.LastName, l.Phone, l.JobTitle,
		l.Seniority, l.LinkedInURL, l.Country, l.State, l.City, l.SourceType, l.IsActive, l.AddedAt, l.LastUpdatedAt,
	)
	if db.IsUniqueViolation(err, "leads_email_key") {
		return eris.Wrapf(ErrDuplicate, "postgres: lead email %s", l.Email)
	}
	return eris.Wrap(err, "postgres: insert lead")
}

func (s *PostgresStore) UpdateLead(ctx context.Context, l *model.Lead) error {
	tag, err := s.pool.Exec(ctx, `UPDATE leads SET company_id = $1, first_name = $2, last_name = $3, phone = $4,
		job_title = $5, seniority = $6, linkedin_url = $7, country = $8, state = $9, city = $10,
		source_type = $11, is_active = $12, last_updated_at = $13
		WHERE id = $14`,
		l.CompanyID, l.FirstName, l.LastName, l.Phone,
		l.JobTitle, l.Seniority, l.LinkedInURL, l.Country, l.State, l.City,
		l.SourceType, l.IsActive, l.LastUpdatedAt, l.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update lead %s", l.ID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: lead not found: %s", l.ID)
	}
	return nil
}

func scanPgCompany(row pgx.Row) (*model.Company, error) {
	var (
		c    model.Company
		size int
	)
	err := row.Scan(&c.ID, &c.Name, &c.Domain, &c.Website, &c.LinkedInURL, &c.Industry, &size, &c.Phone,
		&c.Technologies, &c.Country, &c.State, &c.City, &c.FullEnrichment, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if size > 0 {
		c.Size = &size
	}
	if len(c.Technologies) == 0 {
		c.Technologies = nil
	}
	return &c, nil
}

func scanPgLead(row pgx.Row) (*model.Lead, error) {
	var (
		l         model.Lead
		companyID string
	)
	err := row.Scan(&l.ID, &l.Email, &companyID, &l.FirstName, &l.LastName, &l.Phone, &l.JobTitle,
		&l.Seniority, &l.LinkedInURL, &l.Country, &l.State, &l.City, &l.SourceType, &l.IsActive,
		&l.AddedAt, &l.LastUpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	l.CompanyID = nullIfEmpty(companyID)
	return &l, nil
}
