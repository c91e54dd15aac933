package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/eringen/pulseboard/dashboard"
)

// DefaultVisitEndpoint is the endpoint whose hits count as visits.
const DefaultVisitEndpoint = "/"

// Service handles analytics business logic on top of a Store.
type Service struct {
	store         *Store
	cache         *summaryCache
	metrics       *Metrics
	visitEndpoint string
	now           func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithVisitEndpoint sets the endpoint counted as a visit.
func WithVisitEndpoint(endpoint string) ServiceOption {
	return func(s *Service) {
		if endpoint != "" {
			s.visitEndpoint = endpoint
		}
	}
}

// WithSummaryTTL caches aggregated summaries for ttl. Zero disables caching.
func WithSummaryTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		s.cache.ttl = ttl
	}
}

// WithMetrics attaches Prometheus collectors.
func WithMetrics(m *Metrics) ServiceOption {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService creates a Service backed by store.
func NewService(store *Store, opts ...ServiceOption) *Service {
	s := &Service{
		store:         store,
		visitEndpoint: DefaultVisitEndpoint,
		now:           time.Now,
	}
	s.cache = newSummaryCache(5*time.Second, s.loadSummary)
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics(nil)
	}
	return s
}

// SessionID returns existing when set, otherwise a fresh random session id.
func (s *Service) SessionID(existing string) string {
	if existing != "" {
		return existing
	}
	return uuid.New().String()
}

// RecordPageView records a page view event.
func (s *Service) RecordPageView(ctx context.Context, sessionID, endpoint string) error {
	return s.record(ctx, sessionID, endpoint, KindPageView)
}

// RecordAPICall records an API call event.
func (s *Service) RecordAPICall(ctx context.Context, sessionID, endpoint string) error {
	return s.record(ctx, sessionID, endpoint, KindAPICall)
}

func (s *Service) record(ctx context.Context, sessionID, endpoint string, kind Kind) error {
	err := s.store.RecordEvent(ctx, &Event{
		SessionID: sessionID,
		Endpoint:  endpoint,
		Kind:      kind,
		Timestamp: s.now().UTC(),
	})
	if err != nil {
		s.metrics.EventsFailed.WithLabelValues(string(kind)).Inc()
		return err
	}
	s.metrics.EventsRecorded.WithLabelValues(string(kind)).Inc()
	return nil
}

// Summary returns the aggregated analytics, possibly from the short-lived cache.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	summary, err := s.cache.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get analytics summary: %w", err)
	}
	return summary, nil
}

// InvalidateSummary drops the cached summary so the next read aggregates
// afresh.
func (s *Service) InvalidateSummary() {
	s.cache.Invalidate()
}

// Fetch implements dashboard.Fetcher for a dashboard hosted in the same
// process as the store.
func (s *Service) Fetch(ctx context.Context) (*dashboard.Snapshot, error) {
	summary, err := s.Summary(ctx)
	if err != nil {
		return nil, err
	}
	return summary.Snapshot(), nil
}

func (s *Service) loadSummary(ctx context.Context) (*Summary, error) {
	start := time.Now()
	defer func() {
		s.metrics.SummaryDuration.Observe(time.Since(start).Seconds())
	}()
	return s.store.Summary(ctx, s.visitEndpoint)
}
