package core

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/nonfiler/internal/logging"
	"github.com/JonMunkholm/nonfiler/internal/metrics"
)

// Source produces a freshly loaded table. *Loader is the production source.
type Source interface {
	Load(ctx context.Context) (*Table, LoadReport, error)
	URL() string
}

// ServiceOptions configures a Service.
type ServiceOptions struct {
	Sessions     *SessionStore
	Limiter      *LoadLimiter
	Metrics      *metrics.Metrics // nil disables metrics
	GenderPolicy GenderPolicy
}

// Service is the entry point for the web layer: it loads datasets into
// sessions and answers searches and summaries against them.
type Service struct {
	source   Source
	sessions *SessionStore
	limiter  *LoadLimiter
	metrics  *metrics.Metrics
	policy   GenderPolicy
}

// NewService creates a Service reading from source. Zero options fall back
// to defaults.
func NewService(source Source, opts ServiceOptions) *Service {
	if opts.Sessions == nil {
		opts.Sessions = NewSessionStore(30*time.Minute, 100)
	}
	if opts.Limiter == nil {
		opts.Limiter = NewLoadLimiter(DefaultMaxConcurrentLoads, DefaultLoadWait)
	}
	if opts.GenderPolicy == "" {
		opts.GenderPolicy = GenderTolerate
	}
	return &Service{
		source:   source,
		sessions: opts.Sessions,
		limiter:  opts.Limiter,
		metrics:  opts.Metrics,
		policy:   opts.GenderPolicy,
	}
}

// Sessions returns the session store.
func (s *Service) Sessions() *SessionStore {
	return s.sessions
}

// NewSession creates and registers a new session.
func (s *Service) NewSession() *Session {
	sess := s.sessions.Create()
	s.metrics.SetActiveSessions(s.sessions.Len())
	return sess
}

// EndSession drops sess and its table.
func (s *Service) EndSession(ctx context.Context, sess *Session) {
	s.sessions.Delete(sess.ID)
	s.metrics.SetActiveSessions(s.sessions.Len())
	logging.FromContext(ctx).Info("session ended")
}

// Session returns a live session by id, refreshing its idle timer.
func (s *Service) Session(id uuid.UUID) (*Session, bool) {
	return s.sessions.Get(id)
}

// DatasetURL returns where loads read from.
func (s *Service) DatasetURL() string {
	return s.source.URL()
}

// Load fetches the dataset into sess, replacing any table it held.
//
// If no load slot frees up in time ErrTooManyLoads is returned and the
// session is left as it was. Once the load starts, a failure leaves the
// session unloaded.
func (s *Service) Load(ctx context.Context, sess *Session) (LoadReport, error) {
	logger := logging.FromContext(ctx)

	if err := s.limiter.Acquire(ctx); err != nil {
		if errors.Is(err, ErrTooManyLoads) {
			s.metrics.IncrementLoadFailure("busy")
		}
		return LoadReport{}, err
	}
	defer s.limiter.Release()

	report, err := sess.Load(ctx, s.source.Load)
	if err != nil {
		s.metrics.IncrementLoadFailure(loadOutcome(err))
		logger.Error("dataset load failed", "url", s.source.URL(), "error", err)
		return LoadReport{}, err
	}

	s.metrics.ObserveLoad(report.Elapsed, report.Rows)
	logger.Info("dataset loaded",
		"url", report.Source,
		"rows", report.Rows,
		"columns", report.Columns,
		"bytes", report.Bytes,
		"elapsed", report.Elapsed,
	)

	return report, nil
}

func loadOutcome(err error) string {
	var le *LoadError
	if errors.As(err, &le) {
		return string(le.Op) + "_error"
	}
	return "error"
}

// Search runs a search against the session's table.
func (s *Service) Search(ctx context.Context, sess *Session, mode SearchMode, query string) (SearchResult, error) {
	table, _ := sess.Table()

	result, err := Search(table, mode, query)
	s.metrics.IncrementSearch(string(mode), searchOutcome(result, err))
	if err != nil {
		logging.FromContext(ctx).Debug("search rejected", "mode", mode, "error", err)
		return SearchResult{}, err
	}

	return result, nil
}

func searchOutcome(r SearchResult, err error) string {
	switch {
	case errors.Is(err, ErrNotLoaded):
		return "not_loaded"
	case errors.Is(err, ErrInvalidFormat):
		return "invalid"
	case err != nil:
		return "error"
	case !r.Performed:
		return "skipped"
	case r.Count == 0:
		return "empty"
	default:
		return "found"
	}
}

// Summary returns the count table for the session's data.
func (s *Service) Summary(ctx context.Context, sess *Session) (Summary, error) {
	table, _ := sess.Table()

	sum, err := Summarize(table, s.policy)
	if errors.Is(err, ErrUnexpectedCategory) {
		logging.FromContext(ctx).Warn("summary rejected", "error", err)
	}
	return sum, err
}

// Chart returns the category counts for one dimension of the session's data.
func (s *Service) Chart(ctx context.Context, sess *Session, dim Dimension) ([]CategoryCount, error) {
	table, _ := sess.Table()
	return ChartData(table, dim)
}

// LoadStatus reports the load limiter's state.
func (s *Service) LoadStatus() LoadLimiterStatus {
	return s.limiter.Status()
}

// WaitForLoads blocks until in-flight loads finish or ctx ends.
func (s *Service) WaitForLoads(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// RunJanitor sweeps expired sessions every interval until ctx is cancelled.
func (s *Service) RunJanitor(ctx context.Context, interval time.Duration) error {
	logger := logging.FromContext(ctx)
	return s.sessions.Run(ctx, interval, func(removed, remaining int) {
		s.metrics.SetActiveSessions(remaining)
		if removed > 0 {
			logger.Info("expired sessions removed", "removed", removed, "remaining", remaining)
		}
	})
}
