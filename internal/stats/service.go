// Package stats aggregates platform statistics over the job store.
package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Lokesh1028/agentjobs/internal/logger"
	"github.com/Lokesh1028/agentjobs/internal/models"
	"github.com/Lokesh1028/agentjobs/internal/skills"
)

const (
	topLocations = 20
	topSkills    = 30
)

// Service handles statistics queries.
type Service struct {
	db  *sqlx.DB
	log *logger.Logger
	now func() time.Time
}

// NewService creates a new stats service.
func NewService(db *sqlx.DB, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	return &Service{db: db, log: log.WithComponent("stats"), now: time.Now}
}

// Stats returns job and company totals with category and location breakdowns
// of the active jobs.
func (s *Service) Stats(ctx context.Context) (*models.StatsResponse, error) {
	start := time.Now()
	resp := &models.StatsResponse{}

	var totals struct {
		Total  int `db:"total"`
		Active int `db:"active"`
	}
	err := s.db.GetContext(ctx, &totals, `
		SELECT COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN is_active = TRUE THEN 1 ELSE 0 END), 0) AS active
		FROM jobs`)
	if err != nil {
		return nil, fmt.Errorf("failed to count jobs: %w", err)
	}
	resp.TotalJobs = totals.Total
	resp.TotalActiveJobs = totals.Active

	if err := s.db.GetContext(ctx, &resp.TotalCompanies, "SELECT COUNT(*) FROM companies"); err != nil {
		return nil, fmt.Errorf("failed to count companies: %w", err)
	}

	if resp.Categories, err = s.Categories(ctx); err != nil {
		return nil, err
	}

	resp.Locations = []models.LocationCount{}
	err = s.db.SelectContext(ctx, &resp.Locations, s.db.Rebind(`
		SELECT COALESCE(location, 'Unknown') AS location, COUNT(*) AS count
		FROM jobs WHERE is_active = TRUE
		GROUP BY COALESCE(location, 'Unknown')
		ORDER BY count DESC, location
		LIMIT ?`), topLocations)
	if err != nil {
		return nil, fmt.Errorf("failed to load locations: %w", err)
	}

	resp.UpdatedAt = s.now().UTC().Format(time.RFC3339)
	s.log.Debug("stats generated", "duration_ms", time.Since(start).Milliseconds())
	return resp, nil
}

// Categories counts active jobs per category, largest first.
func (s *Service) Categories(ctx context.Context) ([]models.CategoryCount, error) {
	out := []models.CategoryCount{}
	err := s.db.SelectContext(ctx, &out, `
		SELECT COALESCE(category, 'uncategorized') AS category, COUNT(*) AS count
		FROM jobs WHERE is_active = TRUE
		GROUP BY COALESCE(category, 'uncategorized')
		ORDER BY count DESC, category`)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	return out, nil
}

// TrendingSkills counts how many active jobs ask for each canonical skill.
// Rows whose skill list cannot be decoded are skipped and not counted as
// analyzed.
func (s *Service) TrendingSkills(ctx context.Context) (*models.TrendingSkillsResponse, error) {
	var rows []string
	err := s.db.SelectContext(ctx, &rows, "SELECT skills FROM jobs WHERE is_active = TRUE AND skills IS NOT NULL")
	if err != nil {
		return nil, fmt.Errorf("failed to load skills: %w", err)
	}

	counts := map[string]int{}
	analyzed := 0
	for _, raw := range rows {
		var list []string
		if err := json.Unmarshal([]byte(raw), &list); err != nil {
			continue
		}
		analyzed++
		for _, skill := range skills.NormalizeAll(list) {
			counts[skill]++
		}
	}

	trending := make([]models.TrendingSkill, 0, len(counts))
	for skill, n := range counts {
		trending = append(trending, models.TrendingSkill{
			Skill:      skill,
			Count:      n,
			Percentage: math.Round(float64(n)/float64(analyzed)*1000) / 10,
		})
	}
	sort.Slice(trending, func(i, j int) bool {
		if trending[i].Count != trending[j].Count {
			return trending[i].Count > trending[j].Count
		}
		return trending[i].Skill < trending[j].Skill
	})
	if len(trending) > topSkills {
		trending = trending[:topSkills]
	}

	return &models.TrendingSkillsResponse{Skills: trending, TotalJobsAnalyzed: analyzed}, nil
}
