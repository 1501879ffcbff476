package models

import (
	"strings"
	"time"
)

// LocationType describes where the work happens.
type LocationType string

const (
	LocationOnsite      LocationType = "onsite"
	LocationRemote      LocationType = "remote"
	LocationHybrid      LocationType = "hybrid"
	LocationUnspecified LocationType = "unspecified"
)

// Valid reports whether t is a known location type. The empty value means
// unspecified and is valid.
func (t LocationType) Valid() bool {
	switch LocationType(strings.ToLower(string(t))) {
	case "", LocationOnsite, LocationRemote, LocationHybrid, LocationUnspecified:
		return true
	}
	return false
}

// Normalize lowercases t and folds "unspecified" into the empty value.
func (t LocationType) Normalize() LocationType {
	n := LocationType(strings.ToLower(strings.TrimSpace(string(t))))
	if n == LocationUnspecified {
		return ""
	}
	return n
}

// EmploymentType is the contract form of a job.
type EmploymentType string

const (
	EmploymentFullTime   EmploymentType = "full-time"
	EmploymentPartTime   EmploymentType = "part-time"
	EmploymentContract   EmploymentType = "contract"
	EmploymentInternship EmploymentType = "internship"
)

// Valid reports whether t is a known employment type or empty.
func (t EmploymentType) Valid() bool {
	switch EmploymentType(strings.ToLower(string(t))) {
	case "", EmploymentFullTime, EmploymentPartTime, EmploymentContract, EmploymentInternship:
		return true
	}
	return false
}

// Sort keys accepted by the job search.
const (
	SortRelevance = "relevance"
	SortPostedAt  = "posted_at"
	SortSalary    = "salary"
)

// ValidSort reports whether s is an accepted sort key.
func ValidSort(s string) bool {
	switch s {
	case "", SortRelevance, SortPostedAt, SortSalary:
		return true
	}
	return false
}

// CompanySummary is the denormalized company block attached to a job.
type CompanySummary struct {
	Name     string `json:"name"`
	Industry string `json:"industry,omitempty"`
	Size     string `json:"size,omitempty"`
}

// Company is an employer row.
type Company struct {
	ID          string `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Website     string `json:"website,omitempty" db:"website"`
	CareersURL  string `json:"careers_url,omitempty" db:"careers_url"`
	Industry    string `json:"industry,omitempty" db:"industry"`
	Size        string `json:"size,omitempty" db:"size"`
	Location    string `json:"location,omitempty" db:"location"`
	Description string `json:"description,omitempty" db:"description"`
	CreatedAt   string `json:"created_at,omitempty" db:"created_at"`
}

// CompanyDetail is a company with the number of its active jobs. The list
// endpoint leaves the timestamps empty.
type CompanyDetail struct {
	Company
	ActiveJobCount int    `json:"active_job_count"`
	UpdatedAt      string `json:"updated_at,omitempty"`
}

// CompanyFilter narrows the company directory. Industry and Size match
// exactly, Location and Query (the name) by substring, all ignoring case.
type CompanyFilter struct {
	Industry string
	Size     string
	Location string
	Query    string
	Limit    int
	Offset   int
}

// CompanyListResponse is a page of the company directory.
type CompanyListResponse struct {
	Count     int             `json:"count"`
	Total     int             `json:"total"`
	Companies []CompanyDetail `json:"companies"`
}

// Job is a job posting as returned by search and lookup.
// Empty strings stand for absent values; nil pointers for absent numbers.
type Job struct {
	ID               string         `json:"id"`
	CompanyID        string         `json:"company_id,omitempty"`
	Title            string         `json:"title"`
	Company          CompanySummary `json:"company"`
	Location         string         `json:"location,omitempty"`
	LocationType     string         `json:"location_type,omitempty"`
	SalaryRange      string         `json:"salary_range,omitempty"`
	SalaryMin        *int           `json:"salary_min"`
	SalaryMax        *int           `json:"salary_max"`
	SalaryText       string         `json:"salary_text,omitempty"`
	Experience       string         `json:"experience,omitempty"`
	ExperienceMin    *int           `json:"experience_min"`
	ExperienceMax    *int           `json:"experience_max"`
	Skills           []string       `json:"skills"`
	Category         string         `json:"category,omitempty"`
	EmploymentType   string         `json:"employment_type,omitempty"`
	Description      string         `json:"description,omitempty"`
	DescriptionShort string         `json:"description_short,omitempty"`
	PostedAt         string         `json:"posted_at,omitempty"`
	ApplyURL         string         `json:"apply_url,omitempty"`
	Source           string         `json:"source,omitempty"`
	SourceID         string         `json:"source_id,omitempty"`
	ScrapedAt        string         `json:"scraped_at,omitempty"`
	IsActive         bool           `json:"is_active"`
}

// SearchFilters is the conjunction of structured filters. Zero values and
// nil pointers are ignored.
type SearchFilters struct {
	Title          string   `json:"title,omitempty"`
	Location       string   `json:"location,omitempty"`
	LocationType   string   `json:"location_type,omitempty"`
	Company        string   `json:"company,omitempty"`
	Skills         []string `json:"skills,omitempty"`
	SalaryMin      *int     `json:"salary_min,omitempty"`
	SalaryMax      *int     `json:"salary_max,omitempty"`
	ExperienceMin  *int     `json:"experience_min,omitempty"`
	ExperienceMax  *int     `json:"experience_max,omitempty"`
	Category       string   `json:"category,omitempty"`
	EmploymentType string   `json:"employment_type,omitempty"`
	PostedAfter    string   `json:"posted_after,omitempty"` // ISO date
}

// SearchRequest is the main search request structure.
type SearchRequest struct {
	Query   string        `json:"query"` // free text
	Filters SearchFilters `json:"filters"`
	Sort    string        `json:"sort"` // relevance, posted_at, salary
	Limit   int           `json:"limit"`
	Offset  int           `json:"offset"`
	UseAI   bool          `json:"use_ai"` // expand the query with Gemini
}

// SearchResponse is the search result.
type SearchResponse struct {
	Count       int     `json:"count"`
	Total       int     `json:"total"`
	QueryTimeMS float64 `json:"query_time_ms"`
	Jobs        []Job   `json:"jobs"`
	Query       string  `json:"query,omitempty"`
	AIEnhanced  bool    `json:"ai_enhanced"`
}

// AIQueryResult from Gemini.
type AIQueryResult struct {
	Keywords  []string `json:"keywords"`
	Skills    []string `json:"skills"`
	JobTitles []string `json:"job_titles"`
}

// MatchProfile is a candidate profile submitted for matching.
type MatchProfile struct {
	ResumeText         string   `json:"resume_text,omitempty"`
	Skills             []string `json:"skills,omitempty"`
	ExperienceYears    *int     `json:"experience_years,omitempty"`
	PreferredLocations []string `json:"preferred_locations,omitempty"`
	SalaryMin          *int     `json:"salary_min,omitempty"`
	JobPreferences     string   `json:"job_preferences,omitempty"`
	Limit              int      `json:"limit,omitempty"`
}

// IsEmpty reports whether the profile carries none of resume text, skills or
// job preferences. Such profiles are rejected before matching.
func (p *MatchProfile) IsEmpty() bool {
	if strings.TrimSpace(p.ResumeText) != "" || strings.TrimSpace(p.JobPreferences) != "" {
		return false
	}
	for _, s := range p.Skills {
		if strings.TrimSpace(s) != "" {
			return false
		}
	}
	return true
}

// MatchedJob represents a job with matching score.
type MatchedJob struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Company          string   `json:"company"`
	Location         string   `json:"location,omitempty"`
	LocationType     string   `json:"location_type,omitempty"`
	SalaryRange      string   `json:"salary_range,omitempty"`
	MatchScore       int      `json:"match_score"`
	MatchReasons     []string `json:"match_reasons"`
	DescriptionShort string   `json:"description_short,omitempty"`
	ApplyURL         string   `json:"apply_url,omitempty"`
	SkillsMatch      []string `json:"skills_match"`
	SkillsMissing    []string `json:"skills_missing"`
}

// MatchResult is the outcome of one matching run.
type MatchResult struct {
	QueryTimeMS     float64      `json:"query_time_ms"`
	MatchCount      int          `json:"match_count"`
	Jobs            []MatchedJob `json:"jobs"`
	ExtractedSkills []string     `json:"extracted_skills"`
}

// ScoreBreakdown holds the per-component sub-scores of one job.
type ScoreBreakdown struct {
	Skills     int `json:"skills"`
	Location   int `json:"location"`
	Experience int `json:"experience"`
	Salary     int `json:"salary"`
	Recency    int `json:"recency"`
}

// JobScoreResponse for a specific job score.
type JobScoreResponse struct {
	JobID         string         `json:"job_id"`
	JobTitle      string         `json:"job_title"`
	MatchScore    int            `json:"match_score"`
	Breakdown     ScoreBreakdown `json:"breakdown"`
	MatchReasons  []string       `json:"match_reasons"`
	MatchedSkills []string       `json:"matched_skills"`
	MissingSkills []string       `json:"missing_skills"`
}

// AgentSearchResponse is returned by the agent search endpoints.
type AgentSearchResponse struct {
	SessionID       string       `json:"session_id"`
	QueryTimeMS     float64      `json:"query_time_ms"`
	MatchCount      int          `json:"match_count"`
	Jobs            []MatchedJob `json:"jobs"`
	ExtractedSkills []string     `json:"extracted_skills"`
}

// Session statuses.
const (
	SessionProcessing = "processing"
	SessionCompleted  = "completed"
)

// Session is a persisted agent search, kept for replay.
type Session struct {
	ID                 string       `json:"session_id"`
	UserID             string       `json:"user_id,omitempty"`
	UserEmail          string       `json:"user_email,omitempty"`
	ResumeText         string       `json:"-"`
	ResumeSkills       []string     `json:"resume_skills"`
	ExperienceYears    *int         `json:"experience_years,omitempty"`
	PreferredLocations []string     `json:"preferred_locations,omitempty"`
	SalaryMin          *int         `json:"salary_min,omitempty"`
	JobPreferences     string       `json:"job_preferences,omitempty"`
	Status             string       `json:"status"`
	MatchCount         int          `json:"match_count"`
	Jobs               []MatchedJob `json:"jobs"`
	CreatedAt          time.Time    `json:"created_at"`
	CompletedAt        *time.Time   `json:"completed_at,omitempty"`
}

// CategoryCount is one row of a category breakdown.
type CategoryCount struct {
	Category string `json:"category" db:"category"`
	Count    int    `json:"count" db:"count"`
}

// LocationCount is one row of a location breakdown.
type LocationCount struct {
	Location string `json:"location" db:"location"`
	Count    int    `json:"count" db:"count"`
}

// StatsResponse summarizes the job store.
type StatsResponse struct {
	TotalJobs       int             `json:"total_jobs"`
	TotalCompanies  int             `json:"total_companies"`
	TotalActiveJobs int             `json:"total_active_jobs"`
	Categories      []CategoryCount `json:"categories"`
	Locations       []LocationCount `json:"locations"`
	UpdatedAt       string          `json:"updated_at"`
}

// TrendingSkill is a skill with its demand among active jobs.
type TrendingSkill struct {
	Skill      string  `json:"skill"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// TrendingSkillsResponse lists the most requested skills.
type TrendingSkillsResponse struct {
	Skills            []TrendingSkill `json:"skills"`
	TotalJobsAnalyzed int             `json:"total_jobs_analyzed"`
}

// SkillExtractRequest asks for skills to be mined from text and/or normalized.
type SkillExtractRequest struct {
	Text   string   `json:"text"`
	Skills []string `json:"skills"`
}

// SkillExtractResponse carries the mined and normalized skills.
type SkillExtractResponse struct {
	Extracted  []string `json:"extracted"`
	Normalized []string `json:"normalized"`
	Combined   []string `json:"combined"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }
