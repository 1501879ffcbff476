package api

import (
	"github.com/gin-gonic/gin"

	"github.com/Lokesh1028/agentjobs/internal/config"
)

// SetupRouter configures the Gin router.
func SetupRouter(cfg *config.Config, svc Services) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	h := NewHandler(cfg, svc)
	if cfg.JWTSecret == "" {
		h.log.Warn("JWT_SECRET not set, bearer tokens are parsed unverified and session user_id is caller-asserted")
	}

	router := gin.New()
	router.MaxMultipartMemory = int64(cfg.MaxUploadMB) << 20
	router.Use(gin.Recovery())
	router.Use(RequestLogger(h.log))
	router.Use(CORSMiddleware())
	router.Use(OptionalAuth(cfg.JWTSecret))

	router.GET("/health", h.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		jobs := v1.Group("/jobs")
		{
			jobs.GET("", h.ListJobs)
			jobs.POST("/search", h.SearchJobs)
			jobs.GET("/:id", h.GetJob)
			jobs.GET("/:id/score", h.ScoreJob)
		}

		agent := v1.Group("/agent")
		{
			agent.POST("/search", h.AgentSearch)
			agent.POST("/search/upload", h.AgentSearchUpload)
			agent.GET("/session/:id", h.GetSession)
		}

		v1.GET("/companies", h.ListCompanies)
		v1.GET("/companies/:id", h.GetCompany)

		v1.GET("/stats", h.GetStats)
		v1.GET("/categories", h.GetCategories)
		v1.GET("/skills/trending", h.TrendingSkills)
		v1.POST("/skills/extract", h.ExtractSkills)
	}

	return router
}
