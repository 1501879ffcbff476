// Package scheduler runs periodic search index maintenance.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Lokesh1028/agentjobs/internal/logger"
)

// Indexer rebuilds the full-text search index.
type Indexer interface {
	RebuildIndex(ctx context.Context) (int, error)
}

// Invalidator drops cached job data.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// Scheduler wraps robfig/cron and runs the index rebuild.
type Scheduler struct {
	cron    *cron.Cron
	spec    string // cron spec, e.g. "@every 6h"; empty disables the schedule
	indexer Indexer
	cache   Invalidator // optional
	log     *logger.Logger

	startup sync.WaitGroup // the rebuild launched by Start
}

// New creates a Scheduler. cache may be nil.
func New(spec string, indexer Indexer, cache Invalidator, log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Discard()
	}
	log = log.WithComponent("scheduler")
	cl := cronLogger{log}
	return &Scheduler{
		cron:    cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		spec:    spec,
		indexer: indexer,
		cache:   cache,
		log:     log,
	}
}

// Start registers the rebuild job and starts the scheduler. One rebuild also
// runs immediately in the background so a fresh database is searchable
// without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.spec != "" {
		if _, err := s.cron.AddFunc(s.spec, func() { s.RunOnce(ctx) }); err != nil {
			return fmt.Errorf("cron.AddFunc: %w", err)
		}
		s.cron.Start()
		s.log.Info("cron started", "spec", s.spec)
	}

	s.startup.Add(1)
	go func() {
		defer s.startup.Done()
		s.RunOnce(ctx)
	}()
	return nil
}

// Stop shuts the scheduler down and waits for running rebuilds, including the
// start-up one, to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.startup.Wait()
	s.log.Info("cron stopped")
}

// RunOnce rebuilds the index and invalidates the cache. Errors are logged.
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	start := time.Now()
	n, err := s.indexer.RebuildIndex(ctx)
	if err != nil {
		s.log.Error("index rebuild failed", "error", err)
		return 0, err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	s.log.IndexRebuilt(n, time.Since(start))
	return n, nil
}

// cronLogger adapts the service logger to cron.Logger.
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
