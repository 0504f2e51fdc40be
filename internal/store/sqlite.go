package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sells-group/lead-ingest/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS companies (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL DEFAULT '',
	domain          TEXT UNIQUE,
	website         TEXT NOT NULL DEFAULT '',
	linkedin_url    TEXT NOT NULL DEFAULT '',
	industry        TEXT NOT NULL DEFAULT '',
	size            INTEGER,
	phone           TEXT NOT NULL DEFAULT '',
	technologies    TEXT NOT NULL DEFAULT '[]',
	country         TEXT NOT NULL DEFAULT '',
	state           TEXT NOT NULL DEFAULT '',
	city            TEXT NOT NULL DEFAULT '',
	full_enrichment INTEGER NOT NULL DEFAULT 0,
	created_at      DATETIME NOT NULL,
	updated_at      DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS leads (
	id              TEXT PRIMARY KEY,
	email           TEXT NOT NULL UNIQUE,
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
	is_active       INTEGER NOT NULL DEFAULT 1,
	added_at        DATETIME NOT NULL,
	last_updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_companies_name ON companies(name COLLATE NOCASE);
CREATE INDEX IF NOT EXISTS idx_leads_linkedin_url ON leads(linkedin_url);
CREATE INDEX IF NOT EXISTS idx_leads_company_id ON leads(company_id);
`

// Migrate creates the schema if it does not exist.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const sqliteCompanyColumns = `id, name, domain, website, linkedin_url, industry, size, phone,
	technologies, country, state, city, full_enrichment, created_at, updated_at`

func (s *SQLiteStore) FindCompanyByDomain(ctx context.Context, domain string) (*model.Company, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sqliteCompanyColumns+` FROM companies WHERE domain = ?`, domain)
	c, err := scanSQLiteCompany(row)
	return c, eris.Wrapf(err, "sqlite: find company by domain %s", domain)
}

func (s *SQLiteStore) FindCompanyByName(ctx context.Context, name string) (*model.Company, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sqliteCompanyColumns+` FROM companies WHERE name = ? COLLATE NOCASE ORDER BY created_at LIMIT 1`, name)
	c, err := scanSQLiteCompany(row)
	return c, eris.Wrapf(err, "sqlite: find company by name %s", name)
}

func (s *SQLiteStore) CreateCompany(ctx context.Context, c *model.Company) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now

	tech, err := json.Marshal(nonNilStrings(c.Technologies))
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal technologies")
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO companies (`+sqliteCompanyColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, nullIfEmpty(c.Domain), c.Website, c.LinkedInURL, c.Industry, c.Size, c.Phone,
		string(tech), c.Country, c.State, c.City, c.FullEnrichment, c.CreatedAt, c.UpdatedAt,
	)
	if isSQLiteUnique(err) {
		return eris.Wrapf(ErrDuplicate, "sqlite: company domain %s", c.Domain)
	}
	return eris.Wrap(err, "sqlite: insert company")
}

const sqliteLeadColumns = `l.id, l.email, l.company_id, l.first_name, l.last_name, l.phone, l.job_title,
	l.seniority, l.linkedin_url, l.country, l.state, l.city, l.source_type, l.is_active,
	l.added_at, l.last_updated_at`

func (s *SQLiteStore) FindLeadByEmail(ctx context.Context, email string) (*model.Lead, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sqliteLeadColumns+` FROM leads l WHERE l.email = ?`, email)
	l, err := scanSQLiteLead(row)
	return l, eris.Wrap(err, "sqlite: find lead by email")
}

func (s *SQLiteStore) FindLeadByLinkedIn(ctx context.Context, url string) (*model.Lead, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sqliteLeadColumns+` FROM leads l WHERE l.linkedin_url = ? AND l.linkedin_url <> '' LIMIT 1`, url)
	l, err := scanSQLiteLead(row)
	return l, eris.Wrap(err, "sqlite: find lead by linkedin")
}

func (s *SQLiteStore) FindLeadByNameAndCompanyDomain(ctx context.Context, firstName, lastName, domain string) (*model.Lead, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sqliteLeadColumns+`
		FROM leads l JOIN companies c ON c.id = l.company_id
		WHERE l.first_name = ? COLLATE NOCASE AND l.last_name = ? COLLATE NOCASE AND c.domain = ?
		LIMIT 1`, firstName, lastName, domain)
	l, err := scanSQLiteLead(row)
	return l, eris.Wrap(err, "sqlite: find lead by name and company")
}

func (s *SQLiteStore) InsertLead(ctx context.Context, l *model.Lead) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO leads (id, email, company_id, first_name, last_name, phone,
		job_title, seniority, linkedin_url, country, state, city, source_type, is_active, added_at, last_updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.Email, l.CompanyID, l.FirstName, l.LastName, l.Phone,
		l.JobTitle, l.Seniority, l.LinkedInURL, l.Country, l.State, l.City, l.SourceType, l.IsActive,
		l.AddedAt.UTC(), l.LastUpdatedAt.UTC(),
	)
	if isSQLiteUnique(err) {
		return eris.Wrapf(ErrDuplicate, "sqlite: lead email %s", l.Email)
	}
	return eris.Wrap(err, "sqlite: insert lead")
}

func (s *SQLiteStore) UpdateLead(ctx context.Context, l *model.Lead) error {
	res, err := s.db.ExecContext(ctx, `UPDATE leads SET company_id = ?, first_name = ?, last_name = ?, phone = ?,
		job_title = ?, seniority = ?, linkedin_url = ?, country = ?, state = ?, city = ?, source_type = ?,
		is_active = ?, last_updated_at = ?
		WHERE id = ?`,
		l.CompanyID, l.FirstName, l.LastName, l.Phone,
		l.JobTitle, l.Seniority, l.LinkedInURL, l.Country, l.State, l.City, l.SourceType,
		l.IsActive, l.LastUpdatedAt.UTC(), l.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update lead %s", l.ID)
	}
	return checkRowsAffected(res, "lead", l.ID)
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

func isSQLiteUnique(err error) bool {
	if err == nil {
		return false
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE || se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

type scannable interface {
	Scan(dest ...any) error
}

func scanSQLiteCompany(row scannable) (*model.Company, error) {
	var (
		c      model.Company
		domain sql.NullString
		size   sql.NullInt64
		tech   string
	)
	err := row.Scan(&c.ID, &c.Name, &domain, &c.Website, &c.LinkedInURL, &c.Industry, &size, &c.Phone,
		&tech, &c.Country, &c.State, &c.City, &c.FullEnrichment, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c.Domain = domain.String
	if size.Valid {
		n := int(size.Int64)
		c.Size = &n
	}
	if err := json.Unmarshal([]byte(tech), &c.Technologies); err != nil {
		return nil, eris.Wrap(err, "unmarshal technologies")
	}
	if len(c.Technologies) == 0 {
		c.Technologies = nil
	}
	return &c, nil
}

func scanSQLiteLead(row scannable) (*model.Lead, error) {
	var (
		l         model.Lead
		companyID sql.NullString
	)
	err := row.Scan(&l.ID, &l.Email, &companyID, &l.FirstName, &l.LastName, &l.Phone, &l.JobTitle,
		&l.Seniority, &l.LinkedInURL, &l.Country, &l.State, &l.City, &l.SourceType, &l.IsActive,
		&l.AddedAt, &l.LastUpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if companyID.Valid {
		l.CompanyID = &companyID.String
	}
	return &l, nil
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
