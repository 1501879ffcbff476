package search_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lokesh1028/agentjobs/internal/db/dbtest"
	"github.com/Lokesh1028/agentjobs/internal/models"
	"github.com/Lokesh1028/agentjobs/internal/search"
	"github.com/Lokesh1028/agentjobs/internal/store"
)

// ── fixtures ──

func seedJobs(t *testing.T) (*search.Service, *store.Store) {
	t.Helper()
	conn := dbtest.New(t)
	st := store.NewStore(conn)
	ctx := context.Background()

	jobs := []*models.Job{
		{
			ID: "go-1", Title: "Senior Go Developer", Company: models.CompanySummary{Name: "Razorpay", Industry: "Fintech"},
			Location: "Bangalore", LocationType: "hybrid", Skills: []string{"go", "kubernetes", "postgresql"},
			SalaryMin: models.IntPtr(150000), SalaryMax: models.IntPtr(250000),
			ExperienceMin: models.IntPtr(4), ExperienceMax: models.IntPtr(8),
			Category: "engineering", EmploymentType: "full-time",
			Description: "Build payment microservices in Go.", PostedAt: "2025-06-01T10:00:00Z", IsActive: true,
		},
		{
			ID: "py-1", Title: "Python Data Engineer", Company: models.CompanySummary{Name: "Swiggy"},
			Location: "Remote", LocationType: "remote", Skills: []string{"python", "apache-spark", "sql"},
			SalaryMin: models.IntPtr(90000),
			Category:  "data", EmploymentType: "full-time",
			Description: "Own data pipelines.", PostedAt: "2025-05-20T10:00:00Z", IsActive: true,
		},
		{
			ID: "fe-1", Title: "Frontend Developer", Company: models.CompanySummary{Name: "Zomato"},
			Location: "Gurgaon", LocationType: "onsite", Skills: []string{"react", "typescript"},
			SalaryMax: models.IntPtr(70000), ExperienceMax: models.IntPtr(3),
			Category: "engineering", EmploymentType: "contract",
			Description: "Spring-boot free zone, React only.", IsActive: true,
		},
		{
			ID: "old-1", Title: "Go Developer (closed)", Company: models.CompanySummary{Name: "Razorpay"},
			Location: "Bangalore", Skills: []string{"go"}, PostedAt: "2025-01-01", IsActive: false,
		},
	}
	for _, j := range jobs {
		require.NoError(t, st.UpsertJob(ctx, j))
	}
	return search.NewService(conn, search.Options{}), st
}

func ids(jobs []models.Job) []string {
	out := make([]string, len(jobs))
	for i, j := range jobs {
		out[i] = j.ID
	}
	return out
}

// ── structured path ──

func TestSearch_StructuredDefaultsToRecentFirst(t *testing.T) {
	svc, _ := seedJobs(t)

	resp, err := svc.Search(context.Background(), &models.SearchRequest{})
	require.NoError(t, err)

	assert.Equal(t, 3, resp.Total, "inactive jobs are excluded")
	assert.Equal(t, 3, resp.Count)
	assert.Equal(t, []string{"go-1", "py-1", "fe-1"}, ids(resp.Jobs), "NULL posting dates sort last")
	assert.GreaterOrEqual(t, resp.QueryTimeMS, 0.0)
}

func TestSearch_Filters(t *testing.T) {
	svc, _ := seedJobs(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		filters models.SearchFilters
		want    []string
	}{
		{"title substring", models.SearchFilters{Title: "developer"}, []string{"go-1", "fe-1"}},
		{"location case-insensitive", models.SearchFilters{Location: "bangalore"}, []string{"go-1"}},
		{"location type", models.SearchFilters{LocationType: "REMOTE"}, []string{"py-1"}},
		{"company", models.SearchFilters{Company: "swig"}, []string{"py-1"}},
		{"all skills must match", models.SearchFilters{Skills: []string{"go", "kubernetes"}}, []string{"go-1"}},
		{"salary floor tolerates missing ceiling", models.SearchFilters{SalaryMin: models.IntPtr(100000)}, []string{"go-1", "py-1"}},
		{"salary ceiling tolerates missing floor", models.SearchFilters{SalaryMax: models.IntPtr(100000)}, []string{"py-1", "fe-1"}},
		{"experience floor", models.SearchFilters{ExperienceMin: models.IntPtr(5)}, []string{"go-1", "py-1"}},
		{"experience ceiling", models.SearchFilters{ExperienceMax: models.IntPtr(2)}, []string{"py-1", "fe-1"}},
		{"category", models.SearchFilters{Category: "Engineering"}, []string{"go-1", "fe-1"}},
		{"employment type", models.SearchFilters{EmploymentType: "contract"}, []string{"fe-1"}},
		{"posted after", models.SearchFilters{PostedAfter: "2025-05-25"}, []string{"go-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.Search(ctx, &models.SearchRequest{Filters: tt.filters})
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(resp.Jobs))
			assert.Equal(t, len(tt.want), resp.Total)
		})
	}
}

func TestSearch_UnspecifiedLocationType(t *testing.T) {
	conn := dbtest.New(t)
	st := store.NewStore(conn)
	ctx := context.Background()

	require.NoError(t, st.UpsertJob(ctx, &models.Job{ID: "any-1", Title: "Office Manager", LocationType: "Unspecified", IsActive: true}))
	require.NoError(t, st.UpsertJob(ctx, &models.Job{ID: "site-1", Title: "Site Engineer", LocationType: "onsite", IsActive: true}))
	svc := search.NewService(conn, search.Options{})

	job, err := svc.GetJob(ctx, "any-1")
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Empty(t, job.LocationType, "unspecified is stored as absent")

	for _, filter := range []string{"unspecified", "UNSPECIFIED"} {
		resp, err := svc.Search(ctx, &models.SearchRequest{Filters: models.SearchFilters{LocationType: filter}})
		require.NoError(t, err)
		assert.Equal(t, []string{"any-1"}, ids(resp.Jobs), filter)
	}
}

func TestSearch_SortBySalaryAndPagination(t *testing.T) {
	svc, _ := seedJobs(t)
	ctx := context.Background()

	resp, err := svc.Search(ctx, &models.SearchRequest{Sort: models.SortSalary})
	require.NoError(t, err)
	assert.Equal(t, []string{"go-1", "fe-1", "py-1"}, ids(resp.Jobs))

	page, err := svc.Search(ctx, &models.SearchRequest{Sort: models.SortSalary, Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 1, page.Count)
	assert.Equal(t, []string{"fe-1"}, ids(page.Jobs))
}

// ── full-text path ──

func TestSearch_FullText(t *testing.T) {
	svc, _ := seedJobs(t)
	ctx := context.Background()

	resp, err := svc.Search(ctx, &models.SearchRequest{Query: "payment microservices"})
	require.NoError(t, err)
	assert.Equal(t, []string{"go-1"}, ids(resp.Jobs))

	resp, err = svc.Search(ctx, &models.SearchRequest{Query: "developer", Filters: models.SearchFilters{LocationType: "onsite"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"fe-1"}, ids(resp.Jobs))

	resp, err = svc.Search(ctx, &models.SearchRequest{Query: "razorpay"})
	require.NoError(t, err)
	assert.Equal(t, []string{"go-1"}, ids(resp.Jobs), "company names are indexed, inactive jobs are not")

	resp, err = svc.Search(ctx, &models.SearchRequest{Query: "spring-boot"})
	require.NoError(t, err)
	assert.Equal(t, []string{"fe-1"}, ids(resp.Jobs), "hyphenated terms must not break the query")
}

func TestSearch_OnlySpecialCharactersFallsBack(t *testing.T) {
	svc, _ := seedJobs(t)

	for _, q := range []string{`"""`, `'*'`, `(^)`, ` - `} {
		resp, err := svc.Search(context.Background(), &models.SearchRequest{Query: q})
		require.NoError(t, err, "query %q", q)
		assert.Equal(t, 3, resp.Total, "query %q should fall back to the structured path", q)
	}
}

type fakeExpander struct {
	result *models.AIQueryResult
	err    error
	calls  int
}

func (f *fakeExpander) ExpandQuery(context.Context, string) (*models.AIQueryResult, error) {
	f.calls++
	return f.result, f.err
}

func TestSearch_AIExpansion(t *testing.T) {
	conn := dbtest.New(t)
	st := store.NewStore(conn)
	ctx := context.Background()
	require.NoError(t, st.UpsertJob(ctx, &models.Job{ID: "a", Title: "Golang Engineer", IsActive: true}))
	require.NoError(t, st.UpsertJob(ctx, &models.Job{ID: "b", Title: "Kubernetes Platform Engineer", IsActive: true}))

	exp := &fakeExpander{result: &models.AIQueryResult{Skills: []string{"kubernetes", "  "}, JobTitles: []string{"golang"}}}
	svc := search.NewService(conn, search.Options{Expander: exp})

	resp, err := svc.Search(ctx, &models.SearchRequest{Query: "golang", UseAI: true})
	require.NoError(t, err)
	assert.True(t, resp.AIEnhanced)
	assert.ElementsMatch(t, []string{"a", "b"}, ids(resp.Jobs))

	resp, err = svc.Search(ctx, &models.SearchRequest{Query: "golang"})
	require.NoError(t, err)
	assert.False(t, resp.AIEnhanced)
	assert.Equal(t, []string{"a"}, ids(resp.Jobs))
	assert.Equal(t, 1, exp.calls, "expansion only runs when requested")

	failing := search.NewService(conn, search.Options{Expander: &fakeExpander{err: errors.New("quota")}})
	resp, err = failing.Search(ctx, &models.SearchRequest{Query: "golang", UseAI: true})
	require.NoError(t, err)
	assert.False(t, resp.AIEnhanced)
	assert.Equal(t, []string{"a"}, ids(resp.Jobs))
}

// ── lookups ──

func TestGetJob(t *testing.T) {
	svc, _ := seedJobs(t)
	ctx := context.Background()

	job, err := svc.GetJob(ctx, "go-1")
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, "Razorpay", job.Company.Name)
	assert.Equal(t, "Fintech", job.Company.Industry)
	assert.Equal(t, "₹150,000 - ₹250,000/month", job.SalaryRange)
	assert.Equal(t, "4-8 years", job.Experience)
	assert.Equal(t, []string{"go", "kubernetes", "postgresql"}, job.Skills)

	closed, err := svc.GetJob(ctx, "old-1")
	require.NoError(t, err)
	require.NotNil(t, closed, "lookup by id includes inactive jobs")
	assert.False(t, closed.IsActive)

	missing, err := svc.GetJob(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestActiveJobs_DegradesCorruptSkills(t *testing.T) {
	svc, st := seedJobs(t)
	ctx := context.Background()

	_, err := st.DB().Exec("UPDATE jobs SET skills = '{not json' WHERE id = 'py-1'")
	require.NoError(t, err)

	jobs, err := svc.ActiveJobs(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 3)
	for _, j := range jobs {
		if j.ID == "py-1" {
			assert.Equal(t, []string{}, j.Skills)
		}
	}
}

func TestPoolVersion_ChangesOnWrite(t *testing.T) {
	svc, st := seedJobs(t)
	ctx := context.Background()

	v1, err := svc.PoolVersion(ctx)
	require.NoError(t, err)

	_, err = st.Deactivate(ctx, "fe-1")
	require.NoError(t, err)

	v2, err := svc.PoolVersion(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, v1, v2)
}
