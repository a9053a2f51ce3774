package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Tag is a controlled-vocabulary phenotype concept. Titles are stored
// lowercase and are unique.
type Tag struct {
	ID           uuid.UUID
	Title        string
	Description  string
	Instructions string
	CreatorID    uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type TagRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Tag, error)
	GetByTitle(ctx context.Context, title string) (*Tag, error)
	List(ctx context.Context) ([]Tag, error)
	Create(ctx context.Context, tag *Tag) error
	// CountTaggedTraits returns per-tag totals of non-archived tagged traits.
	CountTaggedTraits(ctx context.Context, tagID uuid.UUID) (int64, error)
}
