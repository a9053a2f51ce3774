package app

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UW-GAC/pie-sub001/internal/domain"
)

func TestSearch_CacheMissHitsDatabaseAndPopulates(t *testing.T) {
	svc, m := newTestService()

	dbResults := []domain.SearchResult{{Trait: domain.SourceTrait{Accession: 543}, Rank: 0.8}}
	var dbCalls int
	m.traits.searchFn = func(ctx context.Context, query string, filter domain.SearchFilter, limit int) ([]domain.SearchResult, error) {
		dbCalls++
		assert.Equal(t, "body mass", query)
		assert.Equal(t, 100, limit)
		return dbResults, nil
	}
	var cachedQuery string
	m.cache.setFn = func(ctx context.Context, query string, filter domain.SearchFilter, results []domain.SearchResult) {
		cachedQuery = query
	}

	results, err := svc.Search(context.Background(), uuid.Nil, "  body   mass ", domain.SearchFilter{})
	require.NoError(t, err)
	assert.Equal(t, dbResults, results)
	assert.Equal(t, 1, dbCalls)
	assert.Equal(t, "body mass", cachedQuery)
}

func TestSearch_CacheHitSkipsDatabase(t *testing.T) {
	svc, m := newTestService()

	cached := []domain.SearchResult{{Trait: domain.SourceTrait{Accession: 543}, Rank: 0.8}}
	m.cache.getFn = func(ctx context.Context, query string, filter domain.SearchFilter) ([]domain.SearchResult, bool) {
		return cached, true
	}
	m.traits.searchFn = func(ctx context.Context, query string, filter domain.SearchFilter, limit int) ([]domain.SearchResult, error) {
		t.Fatal("cache hit must not query the database")
		return nil, nil
	}

	results, err := svc.Search(context.Background(), uuid.Nil, "body mass", domain.SearchFilter{})
	require.NoError(t, err)
	assert.Equal(t, cached, results)
}

func TestSearch_EmptyQuery(t *testing.T) {
	svc, _ := newTestService()

	results, err := svc.Search(context.Background(), uuid.Nil, "   ", domain.SearchFilter{})
	require.NoError(t, err)
	assert.Nil(t, results)
}

func TestSearch_RecordsSavedSearchForUser(t *testing.T) {
	svc, m := newTestService()
	userID := uuid.New()

	m.traits.searchFn = func(ctx context.Context, query string, filter domain.SearchFilter, limit int) ([]domain.SearchResult, error) {
		return []domain.SearchResult{{}, {}, {}}, nil
	}
	var saved *domain.SavedSearch
	m.users.saveSearchFn = func(ctx context.Context, search *domain.SavedSearch) error {
		saved = search
		return nil
	}
	var recent string
	m.cache.pushRecentFn = func(ctx context.Context, id uuid.UUID, query string) {
		assert.Equal(t, userID, id)
		recent = query
	}

	_, err := svc.Search(context.Background(), userID, "bmi", domain.SearchFilter{StudyAccession: 7})
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, "bmi", saved.Text)
	assert.Equal(t, int64(7), saved.StudyAccession)
	assert.Equal(t, 3, saved.HitCount)
	assert.Equal(t, "bmi", recent)
}

func TestSearch_AnonymousSkipsBookkeeping(t *testing.T) {
	svc, m := newTestService()

	m.traits.searchFn = func(ctx context.Context, query string, filter domain.SearchFilter, limit int) ([]domain.SearchResult, error) {
		return nil, nil
	}
	m.users.saveSearchFn = func(ctx context.Context, search *domain.SavedSearch) error {
		t.Fatal("anonymous searches must not be saved")
		return nil
	}

	_, err := svc.Search(context.Background(), uuid.Nil, "bmi", domain.SearchFilter{})
	require.NoError(t, err)
}
