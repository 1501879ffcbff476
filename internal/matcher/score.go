package matcher

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Lokesh1028/agentjobs/internal/models"
	"github.com/Lokesh1028/agentjobs/internal/skills"
)

// Component weights. The total of all maxima is 100.
const (
	MaxSkills     = 40
	MaxLocation   = 20
	MaxExperience = 15
	MaxSalary     = 15
	MaxRecency    = 10

	// experienceCeiling stands in for a missing upper experience bound.
	experienceCeiling = 99
)

// Candidate is a normalized candidate profile as seen by the scorer.
type Candidate struct {
	Skills             []string
	ExperienceYears    *int
	PreferredLocations []string
	SalaryMin          *int
}

// Score is the scored fit of one job.
type Score struct {
	Total     int
	Breakdown models.ScoreBreakdown
	Reasons   []string
	Matched   []string
	Missing   []string
}

// ScoreOptions carries the environment the scorer needs.
type ScoreOptions struct {
	Regions  *Regions
	Currency string
	Now      time.Time
}

// ScoreJob combines the five component scores of job for candidate. Reasons
// are emitted in a fixed order: skills (only when both sides list skills),
// location, experience, salary, recency.
func ScoreJob(c *Candidate, job *models.Job, opts ScoreOptions) Score {
	skillScore, matched, missing, required := ScoreSkills(c.Skills, job.Skills)
	locScore, locReason := ScoreLocation(c.PreferredLocations, job.Location, job.LocationType, opts.Regions)
	expScore, expReason := ScoreExperience(c.ExperienceYears, job.ExperienceMin, job.ExperienceMax)
	salScore, salReason := ScoreSalary(opts.Currency, c.SalaryMin, job.SalaryMin, job.SalaryMax)
	recScore, recReason := ScoreRecency(job.PostedAt, opts.Now)

	reasons := make([]string, 0, 5)
	if len(c.Skills) > 0 && required > 0 {
		reasons = append(reasons, skillsReason(matched, required))
	}
	reasons = append(reasons, locReason, expReason, salReason, recReason)

	return Score{
		Total: skillScore + locScore + expScore + salScore + recScore,
		Breakdown: models.ScoreBreakdown{
			Skills:     skillScore,
			Location:   locScore,
			Experience: expScore,
			Salary:     salScore,
			Recency:    recScore,
		},
		Reasons: reasons,
		Matched: matched,
		Missing: missing,
	}
}

// ScoreSkills awards up to 40 points for the share of the job's normalized
// skills the candidate has. A job that lists no skills gets a neutral 20.
// It also returns the sorted matched and missing sets and the number of
// distinct required skills.
func ScoreSkills(candidate, job []string) (score int, matched, missing []string, required int) {
	cmp := skills.Compare(candidate, job)
	if cmp.JobSkills == 0 {
		return MaxSkills / 2, []string{}, []string{}, 0
	}
	score = MaxSkills * len(cmp.Matched) / cmp.JobSkills
	return score, cmp.Matched, cmp.Missing, cmp.JobSkills
}

func skillsReason(matched []string, required int) string {
	shown := "none"
	if len(matched) > 0 {
		shown = strings.Join(matched[:min(len(matched), 5)], ", ")
	}
	return fmt.Sprintf("Skills match: %s (%d/%d required skills)", shown, len(matched), required)
}

// ScoreLocation awards up to 20 points for location fit. Remote jobs always
// score full marks. A mismatch still scores 5; location never excludes a job.
func ScoreLocation(preferred []string, location, locationType string, regions *Regions) (int, string) {
	jobLoc := strings.ToLower(strings.TrimSpace(location))
	jobType := string(models.LocationType(locationType).Normalize())

	if jobLoc == "" && jobType == "" {
		return 10, "Location: Not specified by employer"
	}
	if jobType == string(models.LocationRemote) {
		return MaxLocation, "Location: Remote position - available anywhere"
	}

	prefs := make([]string, 0, len(preferred))
	for _, p := range preferred {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			prefs = append(prefs, p)
		}
	}
	if len(prefs) == 0 {
		return 10, "Location: No preference specified"
	}

	display := strings.TrimSpace(location)
	if display == "" {
		display = jobType
	}

	// An empty job location is not a substring match for every preference:
	// a type-only job falls through to the type checks and scores at most 12,
	// never the exact-match 20.
	if jobLoc != "" {
		for _, p := range prefs {
			if strings.Contains(jobLoc, p) || strings.Contains(p, jobLoc) {
				return MaxLocation, "Location: Exact match - " + display
			}
		}
		if jobRegion := regions.Lookup(jobLoc); jobRegion != "" {
			for _, p := range prefs {
				if regions.Lookup(p) == jobRegion {
					return 15, "Location: Same region - " + display
				}
			}
		}
	}

	if jobType == string(models.LocationHybrid) {
		for _, p := range prefs {
			if p == "remote" {
				return 12, "Location: Hybrid role in " + display
			}
		}
	}
	return 5, "Location: Different - " + display
}

// ScoreExperience awards up to 15 points for how the candidate's years sit
// against the job's range. A missing floor is 0 and a missing ceiling is
// unbounded.
func ScoreExperience(years, jobMin, jobMax *int) (int, string) {
	if years == nil || (jobMin == nil && jobMax == nil) {
		return 8, "Experience: Not enough data to compare"
	}

	lo, hi := 0, experienceCeiling
	if jobMin != nil {
		lo = *jobMin
	}
	if jobMax != nil {
		hi = *jobMax
	}
	y := *years
	req := requirement(lo, jobMax)

	switch {
	case y >= lo && y <= hi:
		return MaxExperience, fmt.Sprintf("Experience: %d years matches %s year requirement", y, req)
	case y >= lo-1 && y <= hi+1:
		return 10, fmt.Sprintf("Experience: Close match - %d years vs %s required", y, req)
	case y > hi:
		return 7, fmt.Sprintf("Experience: Overqualified - %d years vs %s required", y, req)
	default:
		return 3, fmt.Sprintf("Experience: Underqualified - %d years vs %s required", y, req)
	}
}

func requirement(lo int, hi *int) string {
	if hi == nil {
		return fmt.Sprintf("%d+", lo)
	}
	return fmt.Sprintf("%d-%d", lo, *hi)
}

// ScoreSalary awards up to 15 points by comparing the candidate's floor with
// the job's top figure (ceiling, else floor).
func ScoreSalary(currency string, floor, jobMin, jobMax *int) (int, string) {
	if floor == nil || (jobMin == nil && jobMax == nil) {
		return 8, "Salary: Not enough data to compare"
	}

	top := 0
	if jobMax != nil {
		top = *jobMax
	} else if jobMin != nil {
		top = *jobMin
	}
	want := *floor
	topS, wantS := money(currency, top), money(currency, want)

	switch {
	case top >= want:
		return MaxSalary, fmt.Sprintf("Salary: Meets minimum requirement (%s/mo ≥ %s/mo)", topS, wantS)
	case float64(top) >= float64(want)*0.8:
		return 10, fmt.Sprintf("Salary: Close to minimum (%s/mo vs %s/mo desired)", topS, wantS)
	default:
		return 3, fmt.Sprintf("Salary: Below minimum (%s/mo vs %s/mo desired)", topS, wantS)
	}
}

func money(currency string, v int) string {
	return currency + humanize.Comma(int64(v))
}

// ScoreRecency awards up to 10 points for how recently the job was posted,
// counting whole days before now. Missing or unparsable dates score 5.
func ScoreRecency(postedAt string, now time.Time) (int, string) {
	posted, ok := models.ParseTime(postedAt)
	if !ok {
		return 5, "Recency: Unknown posting date"
	}

	days := int(math.Floor(now.Sub(posted).Hours() / 24))
	switch {
	case days <= 1:
		return MaxRecency, "Recency: Posted today"
	case days <= 7:
		return 8, fmt.Sprintf("Recency: Posted %d days ago", days)
	case days <= 30:
		return 5, fmt.Sprintf("Recency: Posted %d days ago", days)
	default:
		return 2, fmt.Sprintf("Recency: Posted %d days ago", days)
	}
}
