// Package scheduler runs the periodic maintenance jobs of the server.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"nara/internal/http/middleware"
	"nara/internal/service"
)

const jobTimeout = time.Minute

// Scheduler wraps a cron runner with the session purge and limiter cleanup jobs.
type Scheduler struct {
	cron    *cron.Cron
	auth    service.AuthService
	limiter *middleware.RateLimiter
	log     zerolog.Logger
}

// New registers the jobs on spec. limiter may be nil.
func New(spec string, loc *time.Location, auth service.AuthService, limiter *middleware.RateLimiter, log zerolog.Logger) (*Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	cl := cronLogger{log: log}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		auth:    auth,
		limiter: limiter,
		log:     log,
	}
	if _, err := s.cron.AddFunc(spec, s.RunOnce); err != nil {
		return nil, fmt.Errorf("schedule maintenance %q: %w", spec, err)
	}
	return s, nil
}

// Start runs the jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs and waits for a running job up to ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn().Msg("scheduler_stop_timeout")
	}
}

// RunOnce purges expired sessions and drops idle limiter entries.
func (s *Scheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	n, err := s.auth.PurgeExpiredSessions(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("session_purge_failed")
	} else {
		s.log.Info().
			Int64("sessions_purged", n).
			Float64("latency_ms", float64(time.Since(start).Microseconds())/1000).
			Msg("session_purge")
	}

	if s.limiter != nil {
		if dropped := s.limiter.Cleanup(); dropped > 0 {
			s.log.Debug().Int("limiter_entries_dropped", dropped).Msg("rate_limiter_cleanup")
		}
	}
}

// cronLogger adapts zerolog to cron.Logger. Cron's info lines are debug noise.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg("cron_" + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg("cron_" + msg)
}
