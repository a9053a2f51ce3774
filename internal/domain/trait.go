package domain

import (
	"context"
	"fmt"
	"time"
)

// SourceTrait is a phenotype variable as released on dbGaP (phv accession).
type SourceTrait struct {
	Accession       int64 // phv
	Name            string
	Description     string
	DataType        string
	Unit            string
	DatasetAccession int64
	IsDeprecated    bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// PHV returns the zero-padded variable accession string, e.g. "phv00000543".
func (t SourceTrait) PHV() string {
	return fmt.Sprintf("phv%08d", t.Accession)
}

// HarmonizedTrait is a variable combined across studies by the DCC.
// (Name, Version) is unique; FlavorName disambiguates alternate harmonizations.
type HarmonizedTrait struct {
	ID          int64
	Name        string
	FlavorName  string
	Version     int
	Description string
	DataType    string
	Unit        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SearchFilter narrows a full-text trait search.
type SearchFilter struct {
	StudyAccession    int64 // 0 means all studies
	IncludeDeprecated bool
	ExactName         string // boosts/filters on exact trait name match
}

// SearchResult is one full-text match with its relevance rank.
type SearchResult struct {
	Trait SourceTrait
	Rank  float64
}

type TraitRepository interface {
	GetSourceByAccession(ctx context.Context, accession int64) (*SourceTrait, error)
	ListSource(ctx context.Context, datasetAccession int64, params ListParams) ([]SourceTrait, int64, error)
	UpsertSource(ctx context.Context, trait *SourceTrait) error
	GetHarmonized(ctx context.Context, id int64) (*HarmonizedTrait, error)
	ListHarmonized(ctx context.Context, params ListParams) ([]HarmonizedTrait, int64, error)
	UpsertHarmonized(ctx context.Context, trait *HarmonizedTrait) error

	// Search runs a full-text query over source trait names and descriptions.
	Search(ctx context.Context, query string, filter SearchFilter, limit int) ([]SearchResult, error)
}
