// Package search retrieves jobs from the store through structured filters
// or the full-text index.
package search

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Lokesh1028/agentjobs/internal/db"
	"github.com/Lokesh1028/agentjobs/internal/logger"
	"github.com/Lokesh1028/agentjobs/internal/models"
)

// QueryExpander suggests additional search terms for a free-text query.
type QueryExpander interface {
	ExpandQuery(ctx context.Context, query string) (*models.AIQueryResult, error)
}

// Options tune a Service.
type Options struct {
	CurrencySymbol string
	DefaultLimit   int
	MaxLimit       int
	Expander       QueryExpander // optional
	Logger         *logger.Logger
}

// Service handles job search operations.
type Service struct {
	db       *sqlx.DB
	dialect  db.Dialect
	expander QueryExpander
	currency string
	defLimit int
	maxLimit int
	log      *logger.Logger
}

// NewService creates a new search service.
func NewService(conn *sqlx.DB, opts Options) *Service {
	if opts.CurrencySymbol == "" {
		opts.CurrencySymbol = "₹"
	}
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 20
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = 100
	}
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	return &Service{
		db:       conn,
		dialect:  db.DialectOf(conn),
		expander: opts.Expander,
		currency: opts.CurrencySymbol,
		defLimit: opts.DefaultLimit,
		maxLimit: opts.MaxLimit,
		log:      opts.Logger.WithComponent("search"),
	}
}

// Search runs a filtered, optionally full-text, search over active jobs and
// returns one page of results with the total match count.
func (s *Service) Search(ctx context.Context, req *models.SearchRequest) (*models.SearchResponse, error) {
	start := time.Now()

	limit := req.Limit
	if limit <= 0 {
		limit = s.defLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}
	offset := max(req.Offset, 0)

	b := &queryBuilder{}
	b.where("j.is_active = TRUE")

	var (
		rank       string
		rankArgs   []any
		aiEnhanced bool
	)
	alternatives := s.alternatives(ctx, req, &aiEnhanced)
	fullText := len(alternatives) > 0
	if fullText {
		rank, rankArgs = textMatch(b, s.dialect, alternatives)
	}
	addFilters(b, &req.Filters)

	from := b.fromClause()
	where := b.whereClause()

	var total int
	countSQL := s.db.Rebind("SELECT COUNT(*) " + from + " " + where)
	if err := s.db.GetContext(ctx, &total, countSQL, b.args...); err != nil {
		return nil, fmt.Errorf("count query failed: %w", err)
	}

	order := orderBy(req.Sort, rank)
	args := append([]any{}, b.args...)
	if rank != "" && strings.HasPrefix(order, rank) {
		args = append(args, rankArgs...)
	}
	args = append(args, limit, offset)

	selectSQL := s.db.Rebind(fmt.Sprintf("SELECT %s %s %s ORDER BY %s LIMIT ? OFFSET ?",
		jobColumns, from, where, order))

	var rows []jobRow
	if err := s.db.SelectContext(ctx, &rows, selectSQL, args...); err != nil {
		return nil, fmt.Errorf("search query failed: %w", err)
	}

	jobs := make([]models.Job, len(rows))
	for i := range rows {
		jobs[i] = rows[i].toJob(s.currency)
	}

	elapsed := time.Since(start)
	s.log.SearchCompleted(req.Query, total, len(jobs), fullText, elapsed)

	return &models.SearchResponse{
		Count:       len(jobs),
		Total:       total,
		QueryTimeMS: Millis(elapsed),
		Jobs:        jobs,
		Query:       req.Query,
		AIEnhanced:  aiEnhanced,
	}, nil
}

// alternatives returns the sanitized term groups to match, the original
// query first. Nil means the structured path is used.
func (s *Service) alternatives(ctx context.Context, req *models.SearchRequest, aiEnhanced *bool) [][]string {
	base := queryTerms(SanitizeQuery(req.Query))
	if len(base) == 0 {
		return nil
	}
	alts := [][]string{base}
	if !req.UseAI || s.expander == nil {
		return alts
	}

	expansion, err := s.expander.ExpandQuery(ctx, req.Query)
	if err != nil {
		s.log.Warn("query expansion failed, using plain query", "error", err)
		return alts
	}

	seen := map[string]bool{strings.ToLower(strings.Join(base, " ")): true}
	for _, group := range [][]string{expansion.Keywords, expansion.Skills, expansion.JobTitles} {
		for _, term := range group {
			terms := queryTerms(SanitizeQuery(term))
			key := strings.ToLower(strings.Join(terms, " "))
			if len(terms) == 0 || seen[key] {
				continue
			}
			seen[key] = true
			alts = append(alts, terms)
		}
	}
	*aiEnhanced = len(alts) > 1
	return alts
}

// GetJob retrieves a single job by ID, active or not. It returns nil, nil
// when the job does not exist.
func (s *Service) GetJob(ctx context.Context, id string) (*models.Job, error) {
	var row jobRow
	query := s.db.Rebind("SELECT " + jobColumns + jobFrom + " WHERE j.id = ?")
	if err := s.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	job := row.toJob(s.currency)
	return &job, nil
}

// ActiveJobs returns every active job, most recent first. This is the
// candidate pool for matching and is not paginated.
func (s *Service) ActiveJobs(ctx context.Context) ([]models.Job, error) {
	var rows []jobRow
	query := "SELECT " + jobColumns + jobFrom + " WHERE j.is_active = TRUE ORDER BY j.posted_at DESC NULLS LAST, j.id"
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to load active jobs: %w", err)
	}
	jobs := make([]models.Job, len(rows))
	for i := range rows {
		jobs[i] = rows[i].toJob(s.currency)
	}
	return jobs, nil
}

// PoolVersion fingerprints the active job pool. It changes whenever a job is
// inserted, updated or deactivated.
func (s *Service) PoolVersion(ctx context.Context) (string, error) {
	var v struct {
		Count   int            `db:"n"`
		Updated sql.NullString `db:"updated"`
	}
	err := s.db.GetContext(ctx, &v, "SELECT COUNT(*) AS n, MAX(updated_at) AS updated FROM jobs WHERE is_active = TRUE")
	if err != nil {
		return "", fmt.Errorf("failed to read pool version: %w", err)
	}
	return fmt.Sprintf("%d:%s", v.Count, v.Updated.String), nil
}

// Millis converts a duration to milliseconds rounded to two decimals.
func Millis(d time.Duration) float64 {
	return math.Round(float64(d.Microseconds())/10) / 100
}

// jobRow scans one job joined with its company.
type jobRow struct {
	ID               string         `db:"id"`
	CompanyID        sql.NullString `db:"company_id"`
	Title            string         `db:"title"`
	Description      sql.NullString `db:"description"`
	DescriptionShort sql.NullString `db:"description_short"`
	Location         sql.NullString `db:"location"`
	LocationType     sql.NullString `db:"location_type"`
	SalaryMin        sql.NullInt64  `db:"salary_min"`
	SalaryMax        sql.NullInt64  `db:"salary_max"`
	SalaryText       sql.NullString `db:"salary_text"`
	ExperienceMin    sql.NullInt64  `db:"experience_min"`
	ExperienceMax    sql.NullInt64  `db:"experience_max"`
	Skills           sql.NullString `db:"skills"`
	Category         sql.NullString `db:"category"`
	EmploymentType   sql.NullString `db:"employment_type"`
	ApplyURL         sql.NullString `db:"apply_url"`
	Source           sql.NullString `db:"source"`
	SourceID         sql.NullString `db:"source_id"`
	PostedAt         sql.NullString `db:"posted_at"`
	ScrapedAt        sql.NullString `db:"scraped_at"`
	IsActive         bool           `db:"is_active"`
	CompanyName      sql.NullString `db:"company_name"`
	CompanyIndustry  sql.NullString `db:"company_industry"`
	CompanySize      sql.NullString `db:"company_size"`
}

func (r *jobRow) toJob(currency string) models.Job {
	salaryMin, salaryMax := intPtr(r.SalaryMin), intPtr(r.SalaryMax)
	expMin, expMax := intPtr(r.ExperienceMin), intPtr(r.ExperienceMax)

	company := models.CompanySummary{
		Name:     r.CompanyName.String,
		Industry: r.CompanyIndustry.String,
		Size:     r.CompanySize.String,
	}
	if company.Name == "" {
		company.Name = "Unknown"
	}

	return models.Job{
		ID:               r.ID,
		CompanyID:        r.CompanyID.String,
		Title:            r.Title,
		Company:          company,
		Location:         r.Location.String,
		LocationType:     r.LocationType.String,
		SalaryRange:      SalaryRange(currency, salaryMin, salaryMax),
		SalaryMin:        salaryMin,
		SalaryMax:        salaryMax,
		SalaryText:       r.SalaryText.String,
		Experience:       ExperienceRange(expMin, expMax),
		ExperienceMin:    expMin,
		ExperienceMax:    expMax,
		Skills:           DecodeSkills(r.Skills.String),
		Category:         r.Category.String,
		EmploymentType:   r.EmploymentType.String,
		Description:      r.Description.String,
		DescriptionShort: r.DescriptionShort.String,
		PostedAt:         r.PostedAt.String,
		ApplyURL:         r.ApplyURL.String,
		Source:           r.Source.String,
		SourceID:         r.SourceID.String,
		ScrapedAt:        r.ScrapedAt.String,
		IsActive:         r.IsActive,
	}
}

// DecodeSkills parses a stored JSON skill list. Malformed data yields an
// empty list so one bad row never fails a whole request.
func DecodeSkills(raw string) []string {
	out := []string{}
	if strings.TrimSpace(raw) == "" {
		return out
	}
	var skills []string
	if err := json.Unmarshal([]byte(raw), &skills); err != nil {
		return out
	}
	return append(out, skills...)
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}
