package services

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/dealsearch/internal/domain/entities"
	"github.com/zatekoja/dealsearch/internal/domain/repositories"
	"github.com/zatekoja/dealsearch/internal/infrastructure/observability"
)

const defaultAnalyticsTimeout = 5 * time.Second

// SearchAnalyticsService writes search events without blocking the search
type SearchAnalyticsService struct {
	repo    repositories.SearchAnalyticsRepository
	metrics *observability.Metrics
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewSearchAnalyticsService creates the analytics writer
func NewSearchAnalyticsService(repo repositories.SearchAnalyticsRepository, metrics *observability.Metrics, timeout time.Duration) *SearchAnalyticsService {
	if timeout <= 0 {
		timeout = defaultAnalyticsTimeout
	}
	return &SearchAnalyticsService{repo: repo, metrics: metrics, timeout: timeout}
}

// TrackSearch records the event in the background. Failures are logged and
// counted, never returned.
func (s *SearchAnalyticsService) TrackSearch(ctx context.Context, event *entities.SearchEvent) {
	if s == nil || s.repo == nil {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		// Fresh context: the request context is usually gone by the time this runs
		bgCtx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		if err := s.repo.LogEvent(bgCtx, event); err != nil {
			log.Warn().Err(err).Str("search_term", event.SearchTerm).Msg("failed to log search event")
			observability.RecordAnalyticsFailure(bgCtx, s.metrics)
		}
	}()
}

// Wait blocks until every in-flight analytics write has finished
func (s *SearchAnalyticsService) Wait() {
	if s == nil {
		return
	}
	s.wg.Wait()
}
