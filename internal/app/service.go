package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/UW-GAC/pie-sub001/internal/domain"
)

// SearchCache is the Redis-backed search result cache the service reads
// through. Misses and Redis errors both fall through to the database.
type SearchCache interface {
	Get(ctx context.Context, query string, filter domain.SearchFilter) ([]domain.SearchResult, bool)
	Set(ctx context.Context, query string, filter domain.SearchFilter, results []domain.SearchResult)
	PushRecent(ctx context.Context, userID uuid.UUID, query string)
	Recent(ctx context.Context, userID uuid.UUID) ([]string, error)
}

// Repositories bundles the domain repositories the service orchestrates.
type Repositories struct {
	Studies      domain.StudyRepository
	Datasets     domain.DatasetRepository
	Traits       domain.TraitRepository
	Tags         domain.TagRepository
	TaggedTraits domain.TaggedTraitRepository
	Recipes      domain.RecipeRepository
	Users        domain.UserRepository
	HomeContents domain.HomeContentRepository
}

// Options carry the service-level tunables from config.
type Options struct {
	// SigningKey is the HS256 key for API tokens.
	SigningKey []byte
	// TokenTTL is the lifetime of issued API tokens.
	TokenTTL time.Duration
	// SearchLimit caps the number of results a single search returns.
	SearchLimit int
}

// Service is the application layer. All use cases go through it.
type Service struct {
	repos       Repositories
	searchCache SearchCache
	searchGroup singleflight.Group
	clock       clockwork.Clock
	opts        Options
}

// NewService creates the application layer service.
func NewService(repos Repositories, searchCache SearchCache, clock clockwork.Clock, opts Options) *Service {
	if opts.SearchLimit < 1 {
		opts.SearchLimit = 500
	}
	return &Service{
		repos:       repos,
		searchCache: searchCache,
		clock:       clock,
		opts:        opts,
	}
}
