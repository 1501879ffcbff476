// Package store writes companies, jobs, the search index and agent sessions.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Lokesh1028/agentjobs/internal/db"
	"github.com/Lokesh1028/agentjobs/internal/models"
)

// Store handles database writes for job data.
type Store struct {
	db      *sqlx.DB
	dialect db.Dialect
	index   indexSQL
	now     func() time.Time
}

// NewStore creates a new Store instance.
func NewStore(conn *sqlx.DB) *Store {
	dialect := db.DialectOf(conn)
	return &Store{
		db:      conn,
		dialect: dialect,
		index:   indexStatements(dialect),
		now:     time.Now,
	}
}

// DB returns the underlying database connection.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// CountJobs returns the number of stored jobs, active or not.
func (s *Store) CountJobs(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM jobs"); err != nil {
		return 0, fmt.Errorf("failed to count jobs: %w", err)
	}
	return n, nil
}

// UpsertCompany inserts a company or refreshes the details of the existing
// company with the same name. It returns the company ID.
func (s *Store) UpsertCompany(ctx context.Context, company *models.Company) (string, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	id, err := s.upsertCompany(ctx, tx, company)
	if err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}
	return id, nil
}

func (s *Store) upsertCompany(ctx context.Context, tx *sqlx.Tx, company *models.Company) (string, error) {
	name := strings.TrimSpace(company.Name)
	if name == "" {
		return "", fmt.Errorf("company name is required")
	}
	id := company.ID
	if id == "" {
		id = uuid.NewString()
	}

	var out string
	err := tx.GetContext(ctx, &out, tx.Rebind(`
		INSERT INTO companies (id, name, website, careers_url, industry, size, location, description, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			website = COALESCE(EXCLUDED.website, companies.website),
			careers_url = COALESCE(EXCLUDED.careers_url, companies.careers_url),
			industry = COALESCE(EXCLUDED.industry, companies.industry),
			size = COALESCE(EXCLUDED.size, companies.size),
			location = COALESCE(EXCLUDED.location, companies.location),
			description = COALESCE(EXCLUDED.description, companies.description),
			updated_at = EXCLUDED.updated_at
		RETURNING id`),
		id, name,
		nullString(company.Website),
		nullString(company.CareersURL),
		nullString(company.Industry),
		nullString(company.Size),
		nullString(company.Location),
		nullString(company.Description),
		models.FormatTimestamp(s.now()),
	)
	if err != nil {
		return "", fmt.Errorf("failed to upsert company: %w", err)
	}
	return out, nil
}

// UpsertJob inserts or updates a job and refreshes its search index entry in
// one transaction. When CompanyID is empty the company is resolved by name.
// An empty ID is filled with a new UUID.
func (s *Store) UpsertJob(ctx context.Context, job *models.Job) error {
	if strings.TrimSpace(job.Title) == "" {
		return fmt.Errorf("job title is required")
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}

	skills, err := json.Marshal(nonNil(job.Skills))
	if err != nil {
		return fmt.Errorf("failed to marshal skills: %w", err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if job.CompanyID == "" && strings.TrimSpace(job.Company.Name) != "" {
		job.CompanyID, err = s.upsertCompany(ctx, tx, &models.Company{
			Name:     job.Company.Name,
			Industry: job.Company.Industry,
			Size:     job.Company.Size,
		})
		if err != nil {
			return err
		}
	}

	now := models.FormatTimestamp(s.now())
	_, err = tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO jobs (
			id, company_id, title, description, description_short, location, location_type,
			salary_min, salary_max, salary_text, experience_min, experience_max, skills,
			category, employment_type, apply_url, source, source_id, posted_at,
			scraped_at, updated_at, is_active
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			company_id = EXCLUDED.company_id,
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			description_short = EXCLUDED.description_short,
			location = EXCLUDED.location,
			location_type = EXCLUDED.location_type,
			salary_min = EXCLUDED.salary_min,
			salary_max = EXCLUDED.salary_max,
			salary_text = EXCLUDED.salary_text,
			experience_min = EXCLUDED.experience_min,
			experience_max = EXCLUDED.experience_max,
			skills = EXCLUDED.skills,
			category = EXCLUDED.category,
			employment_type = EXCLUDED.employment_type,
			apply_url = EXCLUDED.apply_url,
			source = EXCLUDED.source,
			source_id = EXCLUDED.source_id,
			posted_at = EXCLUDED.posted_at,
			scraped_at = EXCLUDED.scraped_at,
			updated_at = EXCLUDED.updated_at,
			is_active = EXCLUDED.is_active`),
		job.ID,
		nullString(job.CompanyID),
		strings.TrimSpace(job.Title),
		nullString(job.Description),
		nullString(job.DescriptionShort),
		nullString(job.Location),
		nullString(string(models.LocationType(job.LocationType).Normalize())),
		job.SalaryMin,
		job.SalaryMax,
		nullString(job.SalaryText),
		job.ExperienceMin,
		job.ExperienceMax,
		string(skills),
		nullString(job.Category),
		nullString(strings.ToLower(job.EmploymentType)),
		nullString(job.ApplyURL),
		nullString(job.Source),
		nullString(job.SourceID),
		normalizeTimestamp(job.PostedAt),
		now,
		now,
		job.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert job: %w", err)
	}

	if err := s.refreshIndex(ctx, tx, job.ID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Deactivate marks a job inactive and drops it from the search index. It
// reports whether the job existed.
func (s *Store) Deactivate(ctx context.Context, id string) (bool, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, tx.Rebind("UPDATE jobs SET is_active = FALSE, updated_at = ? WHERE id = ?"),
		models.FormatTimestamp(s.now()), id)
	if err != nil {
		return false, fmt.Errorf("failed to deactivate job: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to deactivate job: %w", err)
	}
	if n == 0 {
		return false, nil
	}
	if err := s.refreshIndex(ctx, tx, id); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return true, nil
}

// RebuildIndex repopulates the full-text index from all active jobs and
// returns the number of indexed rows.
func (s *Store) RebuildIndex(ctx context.Context) (int, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.index.clearAll); err != nil {
		return 0, fmt.Errorf("failed to clear search index: %w", err)
	}
	res, err := tx.ExecContext(ctx, s.index.fillAll)
	if err != nil {
		return 0, fmt.Errorf("failed to fill search index: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count indexed rows: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return int(n), nil
}

// refreshIndex replaces the index entry of one job. Inactive jobs end up
// without an entry.
func (s *Store) refreshIndex(ctx context.Context, tx *sqlx.Tx, id string) error {
	if _, err := tx.ExecContext(ctx, tx.Rebind(s.index.clearOne), id); err != nil {
		return fmt.Errorf("failed to clear index entry: %w", err)
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(s.index.fillAll+" AND j.id = ?"), id); err != nil {
		return fmt.Errorf("failed to index job: %w", err)
	}
	return nil
}

type indexSQL struct {
	clearAll string
	clearOne string
	fillAll  string // ends in a WHERE clause so callers may add conditions
}

func indexStatements(dialect db.Dialect) indexSQL {
	if dialect == db.DialectPostgres {
		return indexSQL{
			clearAll: "DELETE FROM jobs_search",
			clearOne: "DELETE FROM jobs_search WHERE job_id = ?",
			fillAll: `INSERT INTO jobs_search (job_id, document)
				SELECT j.id, to_tsvector('simple', concat_ws(' ', j.title, j.description, j.skills, j.location, c.name))
				FROM jobs j
				LEFT JOIN companies c ON j.company_id = c.id
				WHERE j.is_active = TRUE`,
		}
	}
	return indexSQL{
		clearAll: "DELETE FROM jobs_fts",
		clearOne: "DELETE FROM jobs_fts WHERE job_id = ?",
		fillAll: `INSERT INTO jobs_fts (job_id, title, description, skills, location, company_name)
			SELECT j.id, j.title, COALESCE(j.description, ''), COALESCE(j.skills, ''),
				COALESCE(j.location, ''), COALESCE(c.name, '')
			FROM jobs j
			LEFT JOIN companies c ON j.company_id = c.id
			WHERE j.is_active = TRUE`,
	}
}

// normalizeTimestamp stores parsable timestamps in the fixed layout and
// drops anything else, so a bad source value reads back as unknown.
func normalizeTimestamp(s string) any {
	t, ok := models.ParseTime(s)
	if !ok {
		return nil
	}
	return models.FormatTimestamp(t)
}

func nullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
