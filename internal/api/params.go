package api

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Lokesh1028/agentjobs/internal/companies"
	"github.com/Lokesh1028/agentjobs/internal/models"
)

// paramError is a request parameter that failed validation.
type paramError struct {
	name   string
	reason string
}

func (e *paramError) Error() string {
	return fmt.Sprintf("%s %s", e.name, e.reason)
}

func optionalInt(raw, name string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, &paramError{name, "must be an integer"}
	}
	return &v, nil
}

func queryInt(c *gin.Context, name string) (*int, error) {
	return optionalInt(c.Query(name), name)
}

// splitList splits a comma-separated value, dropping blank items.
func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// searchFromQuery builds a search request from GET /jobs query parameters.
func searchFromQuery(c *gin.Context, maxLimit int) (*models.SearchRequest, error) {
	req := &models.SearchRequest{
		Query: c.Query("q"),
		Sort:  c.Query("sort"),
		Filters: models.SearchFilters{
			Title:          c.Query("title"),
			Location:       c.Query("location"),
			LocationType:   c.Query("location_type"),
			Company:        c.Query("company"),
			Skills:         splitList(c.Query("skills")),
			Category:       c.Query("category"),
			EmploymentType: c.Query("employment_type"),
			PostedAfter:    c.Query("posted_after"),
		},
	}

	ints := []struct {
		name string
		dst  **int
	}{
		{"salary_min", &req.Filters.SalaryMin},
		{"salary_max", &req.Filters.SalaryMax},
		{"experience_min", &req.Filters.ExperienceMin},
		{"experience_max", &req.Filters.ExperienceMax},
	}
	for _, p := range ints {
		v, err := queryInt(c, p.name)
		if err != nil {
			return nil, err
		}
		*p.dst = v
	}

	limit, err := queryInt(c, "limit")
	if err != nil {
		return nil, err
	}
	if limit != nil {
		if *limit < 1 || *limit > maxLimit {
			return nil, &paramError{"limit", fmt.Sprintf("must be between 1 and %d", maxLimit)}
		}
		req.Limit = *limit
	}

	offset, err := queryInt(c, "offset")
	if err != nil {
		return nil, err
	}
	if offset != nil {
		req.Offset = *offset
	}

	if raw := c.Query("use_ai"); raw != "" {
		useAI, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, &paramError{"use_ai", "must be true or false"}
		}
		req.UseAI = useAI
	}

	return req, validateSearch(req, maxLimit)
}

// companyFilterFromQuery builds a directory filter from GET /companies query
// parameters.
func companyFilterFromQuery(c *gin.Context) (*models.CompanyFilter, error) {
	f := &models.CompanyFilter{
		Industry: c.Query("industry"),
		Size:     c.Query("size"),
		Location: c.Query("location"),
		Query:    c.Query("q"),
		Limit:    companies.DefaultLimit,
	}

	limit, err := queryInt(c, "limit")
	if err != nil {
		return nil, err
	}
	if limit != nil {
		if *limit < 1 || *limit > companies.MaxLimit {
			return nil, &paramError{"limit", fmt.Sprintf("must be between 1 and %d", companies.MaxLimit)}
		}
		f.Limit = *limit
	}

	offset, err := queryInt(c, "offset")
	if err != nil {
		return nil, err
	}
	if offset != nil {
		if *offset < 0 {
			return nil, &paramError{"offset", "must not be negative"}
		}
		f.Offset = *offset
	}
	return f, nil
}

// validateSearch checks the enumerated and ranged fields of a search request
// and normalizes their case.
func validateSearch(req *models.SearchRequest, maxLimit int) error {
	if req.Limit < 0 || req.Limit > maxLimit {
		return &paramError{"limit", fmt.Sprintf("must be between 1 and %d", maxLimit)}
	}
	if req.Offset < 0 {
		return &paramError{"offset", "must not be negative"}
	}
	if !models.ValidSort(req.Sort) {
		return &paramError{"sort", "must be one of relevance, posted_at, salary"}
	}

	f := &req.Filters
	f.LocationType = strings.ToLower(strings.TrimSpace(f.LocationType))
	if !models.LocationType(f.LocationType).Valid() {
		return &paramError{"location_type", "must be one of onsite, remote, hybrid, unspecified"}
	}
	f.EmploymentType = strings.ToLower(strings.TrimSpace(f.EmploymentType))
	if !models.EmploymentType(f.EmploymentType).Valid() {
		return &paramError{"employment_type", "must be one of full-time, part-time, contract, internship"}
	}
	if f.PostedAfter != "" {
		t, ok := models.ParseTime(f.PostedAfter)
		if !ok {
			return &paramError{"posted_after", "must be an ISO date"}
		}
		f.PostedAfter = models.FormatTimestamp(t)
	}
	return nil
}

// profileFromQuery builds a match profile from query parameters.
func profileFromQuery(c *gin.Context) (*models.MatchProfile, error) {
	return profileFromValues(c.Query)
}

// profileFromForm builds a match profile from multipart form fields.
func profileFromForm(c *gin.Context) (*models.MatchProfile, error) {
	return profileFromValues(c.PostForm)
}

func profileFromValues(get func(string) string) (*models.MatchProfile, error) {
	p := &models.MatchProfile{
		ResumeText:         get("resume_text"),
		Skills:             splitList(get("skills")),
		PreferredLocations: splitList(get("preferred_locations")),
		JobPreferences:     get("job_preferences"),
	}
	var err error
	if p.ExperienceYears, err = optionalInt(get("experience_years"), "experience_years"); err != nil {
		return nil, err
	}
	if p.SalaryMin, err = optionalInt(get("salary_min"), "salary_min"); err != nil {
		return nil, err
	}
	limit, err := optionalInt(get("limit"), "limit")
	if err != nil {
		return nil, err
	}
	if limit != nil {
		if *limit < 1 {
			return nil, &paramError{"limit", "must be at least 1"}
		}
		p.Limit = *limit
	}
	return p, nil
}

// validateProfile applies the guards every matching endpoint shares.
func validateProfile(p *models.MatchProfile, maxLimit int) error {
	if p.IsEmpty() {
		return &paramError{"profile", "needs at least one of resume_text, skills, or job_preferences"}
	}
	if p.Limit < 0 || p.Limit > maxLimit {
		return &paramError{"limit", fmt.Sprintf("must be between 1 and %d", maxLimit)}
	}
	if p.ExperienceYears != nil && *p.ExperienceYears < 0 {
		return &paramError{"experience_years", "must not be negative"}
	}
	if p.SalaryMin != nil && *p.SalaryMin < 0 {
		return &paramError{"salary_min", "must not be negative"}
	}
	return nil
}
