// Package matcher scores and ranks active jobs against a candidate profile.
package matcher

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Lokesh1028/agentjobs/internal/logger"
	"github.com/Lokesh1028/agentjobs/internal/models"
	"github.com/Lokesh1028/agentjobs/internal/search"
	"github.com/Lokesh1028/agentjobs/internal/skills"
)

// JobSource supplies the candidate pool and single-job lookups.
type JobSource interface {
	ActiveJobs(ctx context.Context) ([]models.Job, error)
	GetJob(ctx context.Context, id string) (*models.Job, error)
}

// Options tune a Service.
type Options struct {
	Regions      *Regions
	Threshold    int // minimum score counted in MatchCount
	Currency     string
	DefaultLimit int
	MaxLimit     int
	Logger       *logger.Logger
	Now          func() time.Time
}

// Service handles job matching.
type Service struct {
	jobs      JobSource
	regions   *Regions
	threshold int
	currency  string
	defLimit  int
	maxLimit  int
	log       *logger.Logger
	now       func() time.Time
}

// NewService creates a new matching service.
func NewService(jobs JobSource, opts Options) *Service {
	if opts.Regions == nil {
		opts.Regions = DefaultRegions()
	}
	if opts.Threshold <= 0 {
		opts.Threshold = 30
	}
	if opts.Currency == "" {
		opts.Currency = "₹"
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
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		jobs:      jobs,
		regions:   opts.Regions,
		threshold: opts.Threshold,
		currency:  opts.Currency,
		defLimit:  opts.DefaultLimit,
		maxLimit:  opts.MaxLimit,
		log:       opts.Logger.WithComponent("matcher"),
		now:       opts.Now,
	}
}

// CandidateSkills merges explicit skills with skills mined from the resume
// text, normalized and deduplicated in first-seen order.
func CandidateSkills(p *models.MatchProfile) []string {
	all := append([]string{}, p.Skills...)
	if p.ResumeText != "" {
		all = append(all, skills.ExtractFromText(p.ResumeText)...)
	}
	return skills.NormalizeAll(all)
}

func (s *Service) candidate(p *models.MatchProfile) *Candidate {
	return &Candidate{
		Skills:             CandidateSkills(p),
		ExperienceYears:    p.ExperienceYears,
		PreferredLocations: p.PreferredLocations,
		SalaryMin:          p.SalaryMin,
	}
}

func (s *Service) scoreOptions() ScoreOptions {
	return ScoreOptions{Regions: s.regions, Currency: s.currency, Now: s.now()}
}

// Match scores every active job against the profile and returns the top
// Limit jobs by score. MatchCount counts every job at or above the threshold,
// whether or not it was returned.
func (s *Service) Match(ctx context.Context, p *models.MatchProfile) (*models.MatchResult, error) {
	start := time.Now()

	limit := p.Limit
	if limit <= 0 {
		limit = s.defLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}

	c := s.candidate(p)

	pool, err := s.jobs.ActiveJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load job pool: %w", err)
	}

	opts := s.scoreOptions()
	scored := make([]models.MatchedJob, len(pool))
	matchCount := 0
	for i := range pool {
		sc := ScoreJob(c, &pool[i], opts)
		if sc.Total >= s.threshold {
			matchCount++
		}
		scored[i] = matchedJob(&pool[i], sc)
	}

	// Equal scores keep the pool order.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].MatchScore > scored[j].MatchScore
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}

	elapsed := time.Since(start)
	s.log.MatchCompleted(len(pool), matchCount, len(scored), len(c.Skills), elapsed)

	return &models.MatchResult{
		QueryTimeMS:     search.Millis(elapsed),
		MatchCount:      matchCount,
		Jobs:            scored,
		ExtractedSkills: c.Skills,
	}, nil
}

// ScoreJobByID scores a single job, active or not. It returns nil, nil when
// the job does not exist.
func (s *Service) ScoreJobByID(ctx context.Context, p *models.MatchProfile, jobID string) (*models.JobScoreResponse, error) {
	job, err := s.jobs.GetJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	if job == nil {
		return nil, nil
	}

	sc := ScoreJob(s.candidate(p), job, s.scoreOptions())
	return &models.JobScoreResponse{
		JobID:         job.ID,
		JobTitle:      job.Title,
		MatchScore:    sc.Total,
		Breakdown:     sc.Breakdown,
		MatchReasons:  sc.Reasons,
		MatchedSkills: sc.Matched,
		MissingSkills: sc.Missing,
	}, nil
}

func matchedJob(job *models.Job, sc Score) models.MatchedJob {
	company := job.Company.Name
	if company == "" {
		company = "Unknown"
	}
	return models.MatchedJob{
		ID:               job.ID,
		Title:            job.Title,
		Company:          company,
		Location:         job.Location,
		LocationType:     job.LocationType,
		SalaryRange:      job.SalaryRange,
		MatchScore:       sc.Total,
		MatchReasons:     sc.Reasons,
		DescriptionShort: job.DescriptionShort,
		ApplyURL:         job.ApplyURL,
		SkillsMatch:      sc.Matched,
		SkillsMissing:    sc.Missing[:min(len(sc.Missing), 5)],
	}
}
