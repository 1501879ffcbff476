// Package app wires the services shared by the server and the operator CLI.
package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Lokesh1028/agentjobs/internal/api"
	"github.com/Lokesh1028/agentjobs/internal/cache"
	"github.com/Lokesh1028/agentjobs/internal/companies"
	"github.com/Lokesh1028/agentjobs/internal/config"
	"github.com/Lokesh1028/agentjobs/internal/db"
	"github.com/Lokesh1028/agentjobs/internal/gemini"
	"github.com/Lokesh1028/agentjobs/internal/logger"
	"github.com/Lokesh1028/agentjobs/internal/matcher"
	"github.com/Lokesh1028/agentjobs/internal/search"
	"github.com/Lokesh1028/agentjobs/internal/stats"
	"github.com/Lokesh1028/agentjobs/internal/store"
)

// App is the set of wired services over one database connection.
type App struct {
	DB        *sqlx.DB
	Store     *store.Store
	Search    *search.Service
	Matcher   *matcher.Service
	Stats     *stats.Service
	Companies *companies.Service
	Cache     *cache.PoolCache // nil unless CACHE_ENABLED
	Gemini    *gemini.Client   // nil unless GEMINI_API_KEY is set
}

// New connects to the database and builds every service from cfg. The schema
// must already be migrated.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	if log == nil {
		log = logger.Discard()
	}

	regions, err := matcher.LoadRegions(cfg.RegionsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load regions: %w", err)
	}

	conn, err := db.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	a := &App{DB: conn, Store: store.NewStore(conn)}

	searchOpts := search.Options{
		CurrencySymbol: cfg.CurrencySymbol,
		DefaultLimit:   cfg.DefaultPageSize,
		MaxLimit:       cfg.MaxPageSize,
		Logger:         log,
	}
	if cfg.GeminiEnabled() {
		a.Gemini, err = gemini.NewClient(ctx, gemini.ClientConfig{
			APIKey:      cfg.GeminiAPIKey,
			Model:       cfg.GeminiModel,
			Temperature: cfg.GeminiTemperature,
		}, log)
		if err != nil {
			log.Warn("Failed to initialize Gemini client, AI search disabled", "error", err)
		} else {
			searchOpts.Expander = a.Gemini
			log.Info("Gemini client initialized (AI search enabled)")
		}
	}
	a.Search = search.NewService(conn, searchOpts)

	var pool matcher.JobSource = a.Search
	if cfg.CacheEnabled {
		a.Cache = cache.New(a.Search, cache.Options{
			TTL:      cfg.CacheTTL,
			RedisURL: cfg.RedisURL,
			Logger:   log,
		})
		pool = a.Cache
	}

	a.Matcher = matcher.NewService(pool, matcher.Options{
		Regions:      regions,
		Threshold:    cfg.MatchThreshold,
		Currency:     cfg.CurrencySymbol,
		DefaultLimit: cfg.DefaultPageSize,
		MaxLimit:     cfg.MaxPageSize,
		Logger:       log,
	})
	a.Stats = stats.NewService(conn, log)
	a.Companies = companies.NewService(conn, log)

	log.Info("Services initialized",
		"dialect", db.DialectOf(conn),
		"regions", regions.Len(),
		"cache", a.Cache != nil,
		"ai_search", a.Gemini != nil,
	)
	return a, nil
}

// Services returns the handler dependencies.
func (a *App) Services(log *logger.Logger) api.Services {
	return api.Services{
		Search:    a.Search,
		Matcher:   a.Matcher,
		Store:     a.Store,
		Stats:     a.Stats,
		Companies: a.Companies,
		Cache:     a.Cache,
		Logger:    log,
	}
}

// Close releases the cache, Gemini client and database.
func (a *App) Close() error {
	if a.Cache != nil {
		a.Cache.Close()
	}
	if a.Gemini != nil {
		a.Gemini.Close()
	}
	return a.DB.Close()
}
