package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// HomeContent is one ordered blurb shown on the landing page.
type HomeContent struct {
	ID        uuid.UUID
	Title     string
	Body      string
	Position  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

type HomeContentRepository interface {
	// ListOrdered returns all blurbs sorted by position, then creation time.
	ListOrdered(ctx context.Context) ([]HomeContent, error)
	Create(ctx context.Context, content *HomeContent) error
	Delete(ctx context.Context, id uuid.UUID) error
}
