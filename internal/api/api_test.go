package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lokesh1028/agentjobs/internal/companies"
	"github.com/Lokesh1028/agentjobs/internal/config"
	"github.com/Lokesh1028/agentjobs/internal/db/dbtest"
	"github.com/Lokesh1028/agentjobs/internal/logger"
	"github.com/Lokesh1028/agentjobs/internal/matcher"
	"github.com/Lokesh1028/agentjobs/internal/models"
	"github.com/Lokesh1028/agentjobs/internal/resume/resumetest"
	"github.com/Lokesh1028/agentjobs/internal/search"
	"github.com/Lokesh1028/agentjobs/internal/stats"
	"github.com/Lokesh1028/agentjobs/internal/store"
)

type testServer struct {
	router *gin.Engine
	store  *store.Store
}

func newTestServer(t *testing.T, jwtSecret string) *testServer {
	t.Helper()
	conn := dbtest.New(t)
	st := store.NewStore(conn)
	ctx := context.Background()

	jobs := []*models.Job{
		{
			ID: "go-1", Title: "Senior Go Developer", Company: models.CompanySummary{Name: "Razorpay"},
			Location: "Bangalore", LocationType: "hybrid", Skills: []string{"go", "kubernetes"},
			SalaryMin: models.IntPtr(150000), SalaryMax: models.IntPtr(250000),
			Category: "engineering", EmploymentType: "full-time",
			Description: "Build payment services.", PostedAt: "2025-05-30T10:00:00Z", IsActive: true,
		},
		{
			ID: "py-1", Title: "Python Data Engineer", Company: models.CompanySummary{Name: "Swiggy"},
			Location: "Remote", LocationType: "remote", Skills: []string{"python", "apache-spark", "sql"},
			Category: "data", EmploymentType: "full-time",
			Description: "Own data pipelines.", PostedAt: "2025-05-20T10:00:00Z", IsActive: true,
		},
	}
	for _, j := range jobs {
		require.NoError(t, st.UpsertJob(ctx, j))
	}

	cfg := &config.Config{
		DefaultPageSize: 20,
		MaxPageSize:     100,
		MaxUploadMB:     1,
		JWTSecret:       jwtSecret,
	}
	searchSvc := search.NewService(conn, search.Options{})
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	router := SetupRouter(cfg, Services{
		Search:    searchSvc,
		Matcher:   matcher.NewService(searchSvc, matcher.Options{Now: func() time.Time { return now }}),
		Store:     st,
		Stats:     stats.NewService(conn, nil),
		Companies: companies.NewService(conn, nil),
	})
	return &testServer{router: router, store: st}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) get(path string) *httptest.ResponseRecorder {
	return s.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (s *testServer) postJSON(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return s.do(req)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t, "")

	w := s.get("/health")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w = s.do(req)
	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
}

func TestSetupRouter_WarnsOnUnverifiedAuth(t *testing.T) {
	tests := []struct {
		secret string
		warn   bool
	}{
		{"", true},
		{"s3cret", false},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		log := logger.New(&logger.Config{Level: logger.LevelWarn, Format: logger.FormatJSON, Output: &buf})
		SetupRouter(&config.Config{MaxPageSize: 100, JWTSecret: tt.secret}, Services{Logger: log})
		assert.Equal(t, tt.warn, strings.Contains(buf.String(), "parsed unverified"), "secret %q", tt.secret)
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, "")
	w := s.do(httptest.NewRequest(http.MethodOptions, "/api/v1/jobs", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestListJobs(t *testing.T) {
	s := newTestServer(t, "")

	w := s.get("/api/v1/jobs")
	require.Equal(t, http.StatusOK, w.Code)
	all := decode[models.SearchResponse](t, w)
	assert.Equal(t, 2, all.Total)

	w = s.get("/api/v1/jobs?q=python&limit=5")
	require.Equal(t, http.StatusOK, w.Code)
	found := decode[models.SearchResponse](t, w)
	require.Equal(t, 1, found.Total)
	assert.Equal(t, "py-1", found.Jobs[0].ID)

	w = s.get("/api/v1/jobs?location_type=unspecified")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, decode[models.SearchResponse](t, w).Total)

	w = s.get("/api/v1/jobs?location_type=REMOTE")
	require.Equal(t, http.StatusOK, w.Code)
	remote := decode[models.SearchResponse](t, w)
	require.Equal(t, 1, remote.Total)
	assert.Equal(t, "py-1", remote.Jobs[0].ID)
}

func TestListJobs_InvalidParams(t *testing.T) {
	s := newTestServer(t, "")

	tests := []string{
		"limit=0",
		"limit=101",
		"limit=ten",
		"offset=-1",
		"sort=title",
		"location_type=office",
		"employment_type=freelance",
		"salary_min=lots",
		"experience_max=1.5",
		"posted_after=yesterday",
		"use_ai=maybe",
	}
	for _, query := range tests {
		t.Run(query, func(t *testing.T) {
			w := s.get("/api/v1/jobs?" + query)
			require.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "INVALID_REQUEST", decode[models.ErrorResponse](t, w).Code)
		})
	}
}

func TestSearchJobs_JSON(t *testing.T) {
	s := newTestServer(t, "")

	w := s.postJSON("/api/v1/jobs/search", `{"query":"python"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[models.SearchResponse](t, w).Total)

	w = s.postJSON("/api/v1/jobs/search", `{"sort":"title"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.postJSON("/api/v1/jobs/search", `{"query":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetJob(t *testing.T) {
	s := newTestServer(t, "")

	w := s.get("/api/v1/jobs/go-1")
	require.Equal(t, http.StatusOK, w.Code)
	job := decode[models.Job](t, w)
	assert.Equal(t, "Senior Go Developer", job.Title)
	assert.Equal(t, "₹150,000 - ₹250,000/month", job.SalaryRange)

	w = s.get("/api/v1/jobs/missing")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decode[models.ErrorResponse](t, w).Code)
}

func TestScoreJob(t *testing.T) {
	s := newTestServer(t, "")

	w := s.get("/api/v1/jobs/go-1/score?skills=golang,k8s&preferred_locations=Bangalore")
	require.Equal(t, http.StatusOK, w.Code)
	score := decode[models.JobScoreResponse](t, w)
	assert.Equal(t, "go-1", score.JobID)
	assert.Equal(t, []string{"go", "kubernetes"}, score.MatchedSkills)
	assert.Equal(t, matcher.MaxSkills, score.Breakdown.Skills)
	assert.Equal(t, matcher.MaxLocation, score.Breakdown.Location)

	w = s.get("/api/v1/jobs/go-1/score")
	assert.Equal(t, http.StatusBadRequest, w.Code, "empty profile")

	w = s.get("/api/v1/jobs/go-1/score?skills=go&experience_years=x")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.get("/api/v1/jobs/missing/score?skills=go")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAgentSearch_SessionReplay(t *testing.T) {
	s := newTestServer(t, "")

	w := s.postJSON("/api/v1/agent/search", `{"skills":["Python"],"preferred_locations":["Remote"],"limit":5}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[models.AgentSearchResponse](t, w)

	assert.True(t, strings.HasPrefix(resp.SessionID, "sess_"))
	require.Len(t, resp.Jobs, 2)
	assert.Equal(t, "py-1", resp.Jobs[0].ID)
	assert.Equal(t, []string{"python"}, resp.ExtractedSkills)

	w = s.get("/api/v1/agent/session/" + resp.SessionID)
	require.Equal(t, http.StatusOK, w.Code)
	sess := decode[models.Session](t, w)
	assert.Equal(t, models.SessionCompleted, sess.Status)
	assert.Equal(t, resp.MatchCount, sess.MatchCount)
	assert.Equal(t, resp.Jobs, sess.Jobs)
	assert.Equal(t, []string{"python"}, sess.ResumeSkills)
	assert.NotNil(t, sess.CompletedAt)

	w = s.get("/api/v1/agent/session/sess_000000000000")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAgentSearch_Invalid(t *testing.T) {
	s := newTestServer(t, "")

	tests := []struct {
		name string
		body string
	}{
		{"empty profile", `{}`},
		{"only experience", `{"experience_years":3}`},
		{"limit too large", `{"skills":["go"],"limit":101}`},
		{"negative experience", `{"skills":["go"],"experience_years":-1}`},
		{"malformed", `{"skills":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.postJSON("/api/v1/agent/search", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "INVALID_REQUEST", decode[models.ErrorResponse](t, w).Code)
		})
	}
}

func signedToken(t *testing.T, key string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "user-42", Email: "asha@example.com"})
	signed, err := token.SignedString([]byte(key))
	require.NoError(t, err)
	return signed
}

func TestAgentSearch_Identity(t *testing.T) {
	tests := []struct {
		name     string
		secret   string
		key      string
		wantUser string
	}{
		{"unverified without secret", "", "any-key", "user-42"},
		{"verified with secret", "s3cret", "s3cret", "user-42"},
		{"bad signature stays anonymous", "s3cret", "wrong", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, tt.secret)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/agent/search", strings.NewReader(`{"skills":["go"]}`))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+signedToken(t, tt.key))
			w := s.do(req)
			require.Equal(t, http.StatusOK, w.Code)

			resp := decode[models.AgentSearchResponse](t, w)
			sess, err := s.store.GetSession(context.Background(), resp.SessionID)
			require.NoError(t, err)
			require.NotNil(t, sess)
			assert.Equal(t, tt.wantUser, sess.UserID)
		})
	}
}

func uploadRequest(t *testing.T, fields map[string]string, file []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		part, err := mw.CreateFormFile("resume", "resume.pdf")
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/agent/search/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestAgentSearchUpload(t *testing.T) {
	s := newTestServer(t, "")

	req := uploadRequest(t, map[string]string{"preferred_locations": "Remote", "limit": "1"},
		resumetest.PDF("Python engineer with SQL and Docker"))
	w := s.do(req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[models.AgentSearchResponse](t, w)
	assert.Contains(t, resp.ExtractedSkills, "python")
	require.Len(t, resp.Jobs, 1)
	assert.Equal(t, "py-1", resp.Jobs[0].ID)
}

func TestAgentSearchUpload_Rejects(t *testing.T) {
	s := newTestServer(t, "")

	tests := []struct {
		name   string
		fields map[string]string
		file   []byte
		want   int
	}{
		{"missing file", map[string]string{"skills": "go"}, nil, http.StatusBadRequest},
		{"not a pdf", nil, []byte("plain text resume"), http.StatusBadRequest},
		{"bad number", map[string]string{"salary_min": "high"}, resumetest.PDF("Go"), http.StatusBadRequest},
		{"too large", nil, append([]byte("%PDF-1.4\n"), make([]byte, 1<<20)...), http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(uploadRequest(t, tt.fields, tt.file))
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestStatsEndpoints(t *testing.T) {
	s := newTestServer(t, "")

	w := s.get("/api/v1/stats")
	require.Equal(t, http.StatusOK, w.Code)
	st := decode[models.StatsResponse](t, w)
	assert.Equal(t, 2, st.TotalActiveJobs)
	assert.Equal(t, 2, st.TotalCompanies)

	w = s.get("/api/v1/categories")
	require.Equal(t, http.StatusOK, w.Code)
	cats := decode[map[string][]models.CategoryCount](t, w)
	assert.Len(t, cats["categories"], 2)

	w = s.get("/api/v1/skills/trending")
	require.Equal(t, http.StatusOK, w.Code)
	trending := decode[models.TrendingSkillsResponse](t, w)
	assert.Equal(t, 2, trending.TotalJobsAnalyzed)
	assert.Len(t, trending.Skills, 5)
}

func TestCompanies(t *testing.T) {
	s := newTestServer(t, "")

	w := s.get("/api/v1/companies")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[models.CompanyListResponse](t, w)
	assert.Equal(t, 2, list.Total)
	assert.Equal(t, 2, list.Count)

	w = s.get("/api/v1/companies?q=RAZOR&limit=1")
	require.Equal(t, http.StatusOK, w.Code)
	list = decode[models.CompanyListResponse](t, w)
	require.Len(t, list.Companies, 1)
	razorpay := list.Companies[0]
	assert.Equal(t, "Razorpay", razorpay.Name)
	assert.Equal(t, 1, razorpay.ActiveJobCount)

	w = s.get("/api/v1/companies/" + razorpay.ID)
	require.Equal(t, http.StatusOK, w.Code)
	detail := decode[models.CompanyDetail](t, w)
	assert.Equal(t, "Razorpay", detail.Name)
	assert.Equal(t, 1, detail.ActiveJobCount)
	assert.NotEmpty(t, detail.UpdatedAt)

	w = s.get("/api/v1/companies/missing")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decode[models.ErrorResponse](t, w).Code)
}

func TestListCompanies_InvalidParams(t *testing.T) {
	s := newTestServer(t, "")

	for _, query := range []string{"limit=0", "limit=201", "limit=ten", "offset=-1"} {
		t.Run(query, func(t *testing.T) {
			w := s.get("/api/v1/companies?" + query)
			require.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "INVALID_REQUEST", decode[models.ErrorResponse](t, w).Code)
		})
	}

	w := s.get("/api/v1/companies?limit=200")
	assert.Equal(t, http.StatusOK, w.Code, "limits up to 200 are accepted regardless of the job page size")
}

func TestExtractSkills(t *testing.T) {
	s := newTestServer(t, "")

	w := s.postJSON("/api/v1/skills/extract", `{"text":"Built APIs in Python and Docker","skills":["Golang","golang"]}`)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[models.SkillExtractResponse](t, w)
	assert.Equal(t, []string{"docker", "python"}, resp.Extracted)
	assert.Equal(t, []string{"go"}, resp.Normalized)
	assert.Equal(t, []string{"go", "docker", "python"}, resp.Combined)

	w = s.postJSON("/api/v1/skills/extract", `{}`)
	require.Equal(t, http.StatusOK, w.Code)
	empty := decode[models.SkillExtractResponse](t, w)
	assert.Empty(t, empty.Extracted)
	assert.NotNil(t, empty.Combined)
}
