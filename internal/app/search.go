package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/UW-GAC/pie-sub001/internal/domain"
	"github.com/UW-GAC/pie-sub001/internal/metrics"
)

// Search runs a full-text trait search: cache read-through, singleflight
// collapsed, recorded against the user's saved searches. A zero userID skips
// the per-user bookkeeping (anonymous API use).
func (s *Service) Search(ctx context.Context, userID uuid.UUID, query string, filter domain.SearchFilter) ([]domain.SearchResult, error) {
	query = strings.Join(strings.Fields(query), " ")
	if query == "" {
		return nil, nil
	}

	timer := s.clock.Now()
	results, err := s.searchOnce(ctx, query, filter)
	if err != nil {
		return nil, err
	}
	metrics.SearchDuration.Observe(s.clock.Since(timer).Seconds())

	if userID != uuid.Nil {
		s.recordSearch(ctx, userID, query, filter, len(results))
	}
	return results, nil
}

// searchOnce collapses concurrent identical searches into one database hit.
func (s *Service) searchOnce(ctx context.Context, query string, filter domain.SearchFilter) ([]domain.SearchResult, error) {
	key := fmt.Sprintf("%s|%d|%t|%s",
		strings.ToLower(query), filter.StudyAccession, filter.IncludeDeprecated,
		strings.ToLower(filter.ExactName))

	v, err, _ := s.searchGroup.Do(key, func() (any, error) {
		if cached, ok := s.searchCache.Get(ctx, query, filter); ok {
			metrics.SearchQueriesTotal.WithLabelValues("hit").Inc()
			return cached, nil
		}
		metrics.SearchQueriesTotal.WithLabelValues("miss").Inc()

		results, err := s.repos.Traits.Search(ctx, query, filter, s.opts.SearchLimit)
		if err != nil {
			return nil, err
		}
		s.searchCache.Set(ctx, query, filter, results)
		return results, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.SearchResult), nil
}

// recordSearch persists the search against the user's profile. Failures are
// logged, never surfaced: bookkeeping must not break the search itself.
func (s *Service) recordSearch(ctx context.Context, userID uuid.UUID, query string, filter domain.SearchFilter, hits int) {
	saved := &domain.SavedSearch{
		UserID:         userID,
		Text:           query,
		StudyAccession: filter.StudyAccession,
		HitCount:       hits,
	}
	if err := s.repos.Users.SaveSearch(ctx, saved); err != nil {
		slog.Warn("Failed to record saved search", "user_id", userID, "error", err)
	}
	s.searchCache.PushRecent(ctx, userID, query)
}

// RecentSearches returns the user's most recent search queries, newest first.
func (s *Service) RecentSearches(ctx context.Context, userID uuid.UUID) ([]string, error) {
	return s.searchCache.Recent(ctx, userID)
}
