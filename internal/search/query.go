package search

import (
	"strings"

	"github.com/Lokesh1028/agentjobs/internal/db"
	"github.com/Lokesh1028/agentjobs/internal/models"
)

const jobColumns = `
	j.id, j.company_id, j.title, j.description, j.description_short,
	j.location, j.location_type, j.salary_min, j.salary_max, j.salary_text,
	j.experience_min, j.experience_max, j.skills, j.category, j.employment_type,
	j.apply_url, j.source, j.source_id, j.posted_at, j.scraped_at, j.is_active,
	c.name AS company_name, c.industry AS company_industry, c.size AS company_size`

const jobFrom = `
	FROM jobs j
	LEFT JOIN companies c ON j.company_id = c.id`

// queryBuilder accumulates WHERE conditions written with '?' placeholders.
type queryBuilder struct {
	joins []string
	conds []string
	args  []any
}

func (b *queryBuilder) where(cond string, args ...any) {
	b.conds = append(b.conds, cond)
	b.args = append(b.args, args...)
}

func (b *queryBuilder) fromClause() string {
	if len(b.joins) == 0 {
		return jobFrom
	}
	return jobFrom + "\n\t" + strings.Join(b.joins, "\n\t")
}

func (b *queryBuilder) whereClause() string {
	return "WHERE " + strings.Join(b.conds, " AND ")
}

// addFilters appends the structured filters. Range filters tolerate NULL
// bounds: a job with an unknown bound is never excluded by that filter.
func addFilters(b *queryBuilder, f *models.SearchFilters) {
	if f.Title != "" {
		b.where("LOWER(j.title) LIKE ?", likePattern(f.Title))
	}
	if f.Location != "" {
		b.where("LOWER(j.location) LIKE ?", likePattern(f.Location))
	}
	if f.LocationType != "" {
		if t := models.LocationType(f.LocationType).Normalize(); t == "" {
			b.where("j.location_type IS NULL")
		} else {
			b.where("LOWER(j.location_type) = ?", string(t))
		}
	}
	if f.Company != "" {
		b.where("LOWER(c.name) LIKE ?", likePattern(f.Company))
	}
	for _, skill := range f.Skills {
		if skill = strings.TrimSpace(skill); skill != "" {
			b.where("LOWER(j.skills) LIKE ?", likePattern(skill))
		}
	}
	if f.SalaryMin != nil {
		b.where("(j.salary_max >= ? OR j.salary_max IS NULL)", *f.SalaryMin)
	}
	if f.SalaryMax != nil {
		b.where("(j.salary_min <= ? OR j.salary_min IS NULL)", *f.SalaryMax)
	}
	if f.ExperienceMin != nil {
		b.where("(j.experience_max >= ? OR j.experience_max IS NULL)", *f.ExperienceMin)
	}
	if f.ExperienceMax != nil {
		b.where("(j.experience_min <= ? OR j.experience_min IS NULL)", *f.ExperienceMax)
	}
	if f.Category != "" {
		b.where("LOWER(j.category) = ?", strings.ToLower(f.Category))
	}
	if f.EmploymentType != "" {
		b.where("LOWER(j.employment_type) = ?", strings.ToLower(f.EmploymentType))
	}
	if f.PostedAfter != "" {
		b.where("j.posted_at >= ?", f.PostedAfter)
	}
}

func likePattern(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}

// textMatch joins the dialect's search index and constrains it to any of the
// term alternatives. It returns the rank ordering expression and its args.
func textMatch(b *queryBuilder, dialect db.Dialect, alternatives [][]string) (string, []any) {
	switch dialect {
	case db.DialectPostgres:
		parts := make([]string, len(alternatives))
		args := make([]any, len(alternatives))
		for i, terms := range alternatives {
			parts[i] = "plainto_tsquery('simple', ?)"
			args[i] = strings.Join(terms, " ")
		}
		tsquery := "(" + strings.Join(parts, " || ") + ")"
		b.joins = append(b.joins, "INNER JOIN jobs_search js ON js.job_id = j.id")
		b.where("js.document @@ "+tsquery, args...)
		return "ts_rank(js.document, " + tsquery + ") DESC", args
	default:
		b.joins = append(b.joins, "INNER JOIN jobs_fts ON jobs_fts.job_id = j.id")
		b.where("jobs_fts MATCH ?", ftsExpression(alternatives))
		return "jobs_fts.rank", nil
	}
}

// orderBy maps a sort key to an ORDER BY clause. Relevance needs a text
// query; without one it falls back to most recent first.
func orderBy(sort string, rank string) string {
	switch {
	case sort == models.SortSalary:
		return "j.salary_max DESC NULLS LAST, j.id"
	case sort == models.SortPostedAt:
		return "j.posted_at DESC NULLS LAST, j.id"
	case rank != "":
		return rank + ", j.id"
	default:
		return "j.posted_at DESC NULLS LAST, j.id"
	}
}
