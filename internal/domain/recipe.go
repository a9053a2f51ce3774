package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UnitRecipe names the source trait groups needed to harmonize one
// study-specific unit of a target variable.
type UnitRecipe struct {
	ID                 uuid.UUID
	Name               string
	Version            int
	Instructions       string
	AgeVariables       []int64 // phv accessions
	BatchVariables     []int64
	PhenotypeVariables []int64
	CreatorID          uuid.UUID
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// HarmonizationRecipe describes how unit recipes combine into a harmonized
// target variable.
type HarmonizationRecipe struct {
	ID                  uuid.UUID
	Name                string
	Version             int
	TargetName          string
	TargetDescription   string
	MeasurementUnit     string
	EncodedValues       string // "value: meaning" lines, one per value
	UnitRecipeIDs       []uuid.UUID
	CreatorID           uuid.UUID
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

type RecipeRepository interface {
	GetUnitRecipe(ctx context.Context, id uuid.UUID) (*UnitRecipe, error)
	ListUnitRecipes(ctx context.Context, creatorID uuid.UUID, params ListParams) ([]UnitRecipe, int64, error)
	CreateUnitRecipe(ctx context.Context, recipe *UnitRecipe) error
	// UpdateUnitRecipe persists changes and increments the stored version.
	UpdateUnitRecipe(ctx context.Context, recipe *UnitRecipe) error

	GetHarmonizationRecipe(ctx context.Context, id uuid.UUID) (*HarmonizationRecipe, error)
	ListHarmonizationRecipes(ctx context.Context, creatorID uuid.UUID, params ListParams) ([]HarmonizationRecipe, int64, error)
	CreateHarmonizationRecipe(ctx context.Context, recipe *HarmonizationRecipe) error
	UpdateHarmonizationRecipe(ctx context.Context, recipe *HarmonizationRecipe) error
}
