package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Lokesh1028/agentjobs/internal/cache"
	"github.com/Lokesh1028/agentjobs/internal/companies"
	"github.com/Lokesh1028/agentjobs/internal/config"
	"github.com/Lokesh1028/agentjobs/internal/logger"
	"github.com/Lokesh1028/agentjobs/internal/matcher"
	"github.com/Lokesh1028/agentjobs/internal/models"
	"github.com/Lokesh1028/agentjobs/internal/resume"
	"github.com/Lokesh1028/agentjobs/internal/search"
	"github.com/Lokesh1028/agentjobs/internal/skills"
	"github.com/Lokesh1028/agentjobs/internal/stats"
	"github.com/Lokesh1028/agentjobs/internal/store"
)

// Services are the handler dependencies. Cache is optional.
type Services struct {
	Search    *search.Service
	Matcher   *matcher.Service
	Store     *store.Store
	Stats     *stats.Service
	Companies *companies.Service
	Cache     *cache.PoolCache
	Logger    *logger.Logger
}

// Handler holds API handler dependencies.
type Handler struct {
	config    *config.Config
	search    *search.Service
	matcher   *matcher.Service
	store     *store.Store
	stats     *stats.Service
	companies *companies.Service
	cache     *cache.PoolCache
	log       *logger.Logger
}

// NewHandler creates a new Handler.
func NewHandler(cfg *config.Config, svc Services) *Handler {
	log := svc.Logger
	if log == nil {
		log = logger.Discard()
	}
	return &Handler{
		config:    cfg,
		search:    svc.Search,
		matcher:   svc.Matcher,
		store:     svc.Store,
		stats:     svc.Stats,
		companies: svc.Companies,
		cache:     svc.Cache,
		log:       log.WithComponent("api"),
	}
}

func invalidRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "Invalid request",
		Code:    "INVALID_REQUEST",
		Details: err.Error(),
	})
}

func notFound(c *gin.Context, what string) {
	c.JSON(http.StatusNotFound, models.ErrorResponse{
		Error: what + " not found",
		Code:  "NOT_FOUND",
	})
}

func (h *Handler) internalError(c *gin.Context, msg, code string, err error) {
	h.log.WithRequestID(GetRequestID(c)).Error(msg, "error", err)
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   msg,
		Code:    code,
		Details: err.Error(),
	})
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(c *gin.Context) {
	body := gin.H{
		"status":    "ok",
		"service":   "agentjobs",
		"timestamp": time.Now().UTC(),
	}
	if h.cache != nil {
		body["cache"] = h.cache.Stats()
	}
	c.JSON(http.StatusOK, body)
}

// ListJobs handles GET /api/v1/jobs
func (h *Handler) ListJobs(c *gin.Context) {
	req, err := searchFromQuery(c, h.config.MaxPageSize)
	if err != nil {
		invalidRequest(c, err)
		return
	}
	h.runSearch(c, req)
}

// SearchJobs handles POST /api/v1/jobs/search
func (h *Handler) SearchJobs(c *gin.Context) {
	var req models.SearchRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			invalidRequest(c, err)
			return
		}
	}
	if err := validateSearch(&req, h.config.MaxPageSize); err != nil {
		invalidRequest(c, err)
		return
	}
	h.runSearch(c, &req)
}

func (h *Handler) runSearch(c *gin.Context, req *models.SearchRequest) {
	result, err := h.search.Search(c.Request.Context(), req)
	if err != nil {
		h.internalError(c, "Search failed", "SEARCH_ERROR", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetJob handles GET /api/v1/jobs/:id
func (h *Handler) GetJob(c *gin.Context) {
	job, err := h.search.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.internalError(c, "Failed to get job", "DATABASE_ERROR", err)
		return
	}
	if job == nil {
		notFound(c, "Job")
		return
	}
	c.JSON(http.StatusOK, job)
}

// ScoreJob handles GET /api/v1/jobs/:id/score
func (h *Handler) ScoreJob(c *gin.Context) {
	profile, err := profileFromQuery(c)
	if err == nil {
		err = validateProfile(profile, h.config.MaxPageSize)
	}
	if err != nil {
		invalidRequest(c, err)
		return
	}

	result, err := h.matcher.ScoreJobByID(c.Request.Context(), profile, c.Param("id"))
	if err != nil {
		h.internalError(c, "Failed to score job", "MATCHING_ERROR", err)
		return
	}
	if result == nil {
		notFound(c, "Job")
		return
	}
	c.JSON(http.StatusOK, result)
}

// AgentSearch handles POST /api/v1/agent/search
func (h *Handler) AgentSearch(c *gin.Context) {
	var profile models.MatchProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		invalidRequest(c, err)
		return
	}
	h.runAgentSearch(c, &profile)
}

// AgentSearchUpload handles POST /api/v1/agent/search/upload
func (h *Handler) AgentSearchUpload(c *gin.Context) {
	profile, err := profileFromForm(c)
	if err != nil {
		invalidRequest(c, err)
		return
	}

	header, err := c.FormFile("resume")
	if err != nil {
		invalidRequest(c, errors.New("resume file is required"))
		return
	}
	maxBytes := int64(h.config.MaxUploadMB) << 20
	if header.Size > maxBytes {
		c.JSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{
			Error: "Resume file too large",
			Code:  "FILE_TOO_LARGE",
		})
		return
	}

	f, err := header.Open()
	if err != nil {
		invalidRequest(c, err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxBytes))
	if err != nil {
		invalidRequest(c, err)
		return
	}

	text, err := resume.ExtractText(data)
	if err != nil {
		invalidRequest(c, err)
		return
	}
	if profile.ResumeText != "" {
		text = profile.ResumeText + "\n" + text
	}
	profile.ResumeText = text

	h.runAgentSearch(c, profile)
}

func (h *Handler) runAgentSearch(c *gin.Context, profile *models.MatchProfile) {
	if err := validateProfile(profile, h.config.MaxPageSize); err != nil {
		invalidRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	result, err := h.matcher.Match(ctx, profile)
	if err != nil {
		h.internalError(c, "Matching failed", "MATCHING_ERROR", err)
		return
	}

	completed := time.Now().UTC()
	sess := &models.Session{
		ResumeText:         profile.ResumeText,
		ResumeSkills:       result.ExtractedSkills,
		ExperienceYears:    profile.ExperienceYears,
		PreferredLocations: profile.PreferredLocations,
		SalaryMin:          profile.SalaryMin,
		JobPreferences:     profile.JobPreferences,
		Status:             models.SessionCompleted,
		MatchCount:         result.MatchCount,
		Jobs:               result.Jobs,
		CompletedAt:        &completed,
	}
	if id, ok := GetIdentity(c); ok {
		sess.UserID = id.UserID
		sess.UserEmail = id.Email
	}
	if err := h.store.SaveSession(ctx, sess); err != nil {
		h.internalError(c, "Failed to save session", "DATABASE_ERROR", err)
		return
	}
	h.log.WithSession(sess.ID).Debug("agent session saved", "match_count", sess.MatchCount)

	c.JSON(http.StatusOK, models.AgentSearchResponse{
		SessionID:       sess.ID,
		QueryTimeMS:     result.QueryTimeMS,
		MatchCount:      result.MatchCount,
		Jobs:            result.Jobs,
		ExtractedSkills: result.ExtractedSkills,
	})
}

// GetSession handles GET /api/v1/agent/session/:id
func (h *Handler) GetSession(c *gin.Context) {
	sess, err := h.store.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.internalError(c, "Failed to get session", "DATABASE_ERROR", err)
		return
	}
	if sess == nil {
		notFound(c, "Session")
		return
	}
	c.JSON(http.StatusOK, sess)
}

// GetStats handles GET /api/v1/stats
func (h *Handler) GetStats(c *gin.Context) {
	resp, err := h.stats.Stats(c.Request.Context())
	if err != nil {
		h.internalError(c, "Failed to get stats", "DATABASE_ERROR", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetCategories handles GET /api/v1/categories
func (h *Handler) GetCategories(c *gin.Context) {
	categories, err := h.stats.Categories(c.Request.Context())
	if err != nil {
		h.internalError(c, "Failed to get categories", "DATABASE_ERROR", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// TrendingSkills handles GET /api/v1/skills/trending
func (h *Handler) TrendingSkills(c *gin.Context) {
	resp, err := h.stats.TrendingSkills(c.Request.Context())
	if err != nil {
		h.internalError(c, "Failed to get trending skills", "DATABASE_ERROR", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListCompanies handles GET /api/v1/companies
func (h *Handler) ListCompanies(c *gin.Context) {
	filter, err := companyFilterFromQuery(c)
	if err != nil {
		invalidRequest(c, err)
		return
	}
	resp, err := h.companies.List(c.Request.Context(), filter)
	if err != nil {
		h.internalError(c, "Failed to list companies", "DATABASE_ERROR", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetCompany handles GET /api/v1/companies/:id
func (h *Handler) GetCompany(c *gin.Context) {
	company, err := h.companies.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.internalError(c, "Failed to get company", "DATABASE_ERROR", err)
		return
	}
	if company == nil {
		notFound(c, "Company")
		return
	}
	c.JSON(http.StatusOK, company)
}

// ExtractSkills handles POST /api/v1/skills/extract
func (h *Handler) ExtractSkills(c *gin.Context) {
	var req models.SkillExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	extracted := skills.ExtractFromText(req.Text)
	normalized := skills.NormalizeAll(req.Skills)
	resp := models.SkillExtractResponse{
		Extracted:  nonNil(extracted),
		Normalized: nonNil(normalized),
		Combined:   nonNil(skills.NormalizeAll(append(normalized, extracted...))),
	}
	c.JSON(http.StatusOK, resp)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
