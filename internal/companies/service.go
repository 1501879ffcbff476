// Package companies serves the employer directory with active job counts.
package companies

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Lokesh1028/agentjobs/internal/logger"
	"github.com/Lokesh1028/agentjobs/internal/models"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

const companyColumns = `
	c.id, c.name, c.website, c.careers_url, c.industry, c.size, c.location, c.description`

// activeJoin counts only active jobs; companies without any still appear.
const activeJoin = `
	FROM companies c
	LEFT JOIN jobs j ON j.company_id = c.id AND j.is_active = TRUE`

// Service handles company directory queries.
type Service struct {
	db  *sqlx.DB
	log *logger.Logger
}

// NewService creates a new companies service.
func NewService(db *sqlx.DB, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	return &Service{db: db, log: log.WithComponent("companies")}
}

type companyRow struct {
	ID             string         `db:"id"`
	Name           string         `db:"name"`
	Website        sql.NullString `db:"website"`
	CareersURL     sql.NullString `db:"careers_url"`
	Industry       sql.NullString `db:"industry"`
	Size           sql.NullString `db:"size"`
	Location       sql.NullString `db:"location"`
	Description    sql.NullString `db:"description"`
	CreatedAt      sql.NullString `db:"created_at"`
	UpdatedAt      sql.NullString `db:"updated_at"`
	ActiveJobCount int            `db:"active_job_count"`
}

func (r *companyRow) detail() models.CompanyDetail {
	return models.CompanyDetail{
		Company: models.Company{
			ID:          r.ID,
			Name:        r.Name,
			Website:     r.Website.String,
			CareersURL:  r.CareersURL.String,
			Industry:    r.Industry.String,
			Size:        r.Size.String,
			Location:    r.Location.String,
			Description: r.Description.String,
			CreatedAt:   timestamp(r.CreatedAt),
		},
		ActiveJobCount: r.ActiveJobCount,
		UpdatedAt:      timestamp(r.UpdatedAt),
	}
}

func timestamp(ns sql.NullString) string {
	if t, ok := models.ParseTime(ns.String); ok {
		return t.UTC().Format(time.RFC3339)
	}
	return ns.String
}

// List returns one page of companies matching f, the busiest first, together
// with the number of companies matching before paging.
func (s *Service) List(ctx context.Context, f *models.CompanyFilter) (*models.CompanyListResponse, error) {
	if f == nil {
		f = &models.CompanyFilter{}
	}
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	offset := max(f.Offset, 0)

	where, args := filterClause(f)

	resp := &models.CompanyListResponse{Companies: []models.CompanyDetail{}}
	err := s.db.GetContext(ctx, &resp.Total, s.db.Rebind("SELECT COUNT(*) FROM companies c"+where), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count companies: %w", err)
	}

	var rows []companyRow
	err = s.db.SelectContext(ctx, &rows, s.db.Rebind(`
		SELECT`+companyColumns+`, COUNT(j.id) AS active_job_count`+activeJoin+where+`
		GROUP BY c.id
		ORDER BY active_job_count DESC, c.name
		LIMIT ? OFFSET ?`), append(args, limit, offset)...)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}

	for i := range rows {
		resp.Companies = append(resp.Companies, rows[i].detail())
	}
	resp.Count = len(resp.Companies)
	s.log.Debug("companies listed", "count", resp.Count, "total", resp.Total)
	return resp, nil
}

// Get returns the company with its active job count, or nil when it does not
// exist.
func (s *Service) Get(ctx context.Context, id string) (*models.CompanyDetail, error) {
	var row companyRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`
		SELECT`+companyColumns+`, c.created_at, c.updated_at, COUNT(j.id) AS active_job_count`+activeJoin+`
		WHERE c.id = ?
		GROUP BY c.id`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	d := row.detail()
	return &d, nil
}

func filterClause(f *models.CompanyFilter) (string, []any) {
	var conds []string
	var args []any
	if v := strings.TrimSpace(f.Industry); v != "" {
		conds = append(conds, "LOWER(c.industry) = ?")
		args = append(args, strings.ToLower(v))
	}
	if v := strings.TrimSpace(f.Size); v != "" {
		conds = append(conds, "LOWER(c.size) = ?")
		args = append(args, strings.ToLower(v))
	}
	if v := strings.TrimSpace(f.Location); v != "" {
		conds = append(conds, "LOWER(c.location) LIKE ?")
		args = append(args, "%"+strings.ToLower(v)+"%")
	}
	if v := strings.TrimSpace(f.Query); v != "" {
		conds = append(conds, "LOWER(c.name) LIKE ?")
		args = append(args, "%"+strings.ToLower(v)+"%")
	}
	if len(conds) == 0 {
		return "", nil
	}
	return "\n\tWHERE " + strings.Join(conds, " AND "), args
}
