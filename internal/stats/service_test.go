package stats

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lokesh1028/agentjobs/internal/db/dbtest"
	"github.com/Lokesh1028/agentjobs/internal/models"
	"github.com/Lokesh1028/agentjobs/internal/store"
)

func seeded(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	conn := dbtest.New(t)
	st := store.NewStore(conn)
	ctx := context.Background()

	jobs := []*models.Job{
		{Title: "Go Developer", Company: models.CompanySummary{Name: "Acme"}, Location: "Pune", Category: "engineering", Skills: []string{"golang", "Docker"}, IsActive: true},
		{Title: "Backend Developer", Company: models.CompanySummary{Name: "Acme"}, Location: "Pune", Category: "engineering", Skills: []string{"go", "go", "k8s"}, IsActive: true},
		{Title: "Data Analyst", Company: models.CompanySummary{Name: "Globex"}, Location: "Mumbai", Category: "data", Skills: []string{"SQL"}, IsActive: true},
		{Title: "Office Manager", Skills: []string{}, IsActive: true},
		{Title: "Closed Role", Company: models.CompanySummary{Name: "Initech"}, Location: "Pune", Category: "engineering", Skills: []string{"go"}, IsActive: false},
	}
	for _, j := range jobs {
		require.NoError(t, st.UpsertJob(ctx, j))
	}

	svc := NewService(conn, nil)
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC) }
	return svc, st
}

func TestStats(t *testing.T) {
	svc, _ := seeded(t)

	resp, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, resp.TotalJobs)
	assert.Equal(t, 4, resp.TotalActiveJobs)
	assert.Equal(t, 3, resp.TotalCompanies)
	assert.Equal(t, []models.CategoryCount{
		{Category: "engineering", Count: 2},
		{Category: "data", Count: 1},
		{Category: "uncategorized", Count: 1},
	}, resp.Categories)
	assert.Equal(t, []models.LocationCount{
		{Location: "Pune", Count: 2},
		{Location: "Mumbai", Count: 1},
		{Location: "Unknown", Count: 1},
	}, resp.Locations)
	assert.Equal(t, "2025-06-01T08:00:00Z", resp.UpdatedAt)
}

func TestStats_EmptyStore(t *testing.T) {
	svc := NewService(dbtest.New(t), nil)

	resp, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, resp.TotalJobs)
	assert.Zero(t, resp.TotalActiveJobs)
	assert.Empty(t, resp.Categories)
	assert.NotNil(t, resp.Locations)

	trending, err := svc.TrendingSkills(context.Background())
	require.NoError(t, err)
	assert.Empty(t, trending.Skills)
	assert.Zero(t, trending.TotalJobsAnalyzed)
}

func TestTrendingSkills(t *testing.T) {
	svc, st := seeded(t)
	ctx := context.Background()

	_, err := st.DB().Exec("UPDATE jobs SET skills = 'garbage' WHERE title = 'Data Analyst'")
	require.NoError(t, err)

	resp, err := svc.TrendingSkills(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, resp.TotalJobsAnalyzed, "the undecodable row is skipped")
	assert.Equal(t, []models.TrendingSkill{
		{Skill: "go", Count: 2, Percentage: 66.7},
		{Skill: "docker", Count: 1, Percentage: 33.3},
		{Skill: "kubernetes", Count: 1, Percentage: 33.3},
	}, resp.Skills)
}
