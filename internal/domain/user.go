package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User is an account on the inventory. Staff users are DCC analysts; taggers
// are study representatives allowed to tag and respond.
type User struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	IsStaff      bool
	IsTagger     bool
	IsActive     bool
	// TaggableStudies limits which studies a tagger may respond for.
	TaggableStudies []int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// SavedSearch records a search a user ran, for replay from their profile.
type SavedSearch struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	Text           string
	StudyAccession int64
	HitCount       int
	LastRunAt      time.Time
	CreatedAt      time.Time
}

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, user *User) error
	SetTaggableStudies(ctx context.Context, userID uuid.UUID, studies []int64) error

	// SaveSearch upserts on (user, text, study), bumping hit count and last-run.
	SaveSearch(ctx context.Context, search *SavedSearch) error
	ListSavedSearches(ctx context.Context, userID uuid.UUID, limit int) ([]SavedSearch, error)
}
