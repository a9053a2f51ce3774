package domain

import (
	"context"
	"fmt"
	"time"
)

// Dataset is a dbGaP source dataset (pht accession) within a study version.
type Dataset struct {
	Accession      int64 // pht
	Version        int
	StudyVersionID int64
	Name           string
	Description    string
	IsDeprecated   bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PHT returns the zero-padded dataset accession string, e.g. "pht000371.v2".
func (d Dataset) PHT() string {
	return fmt.Sprintf("pht%06d.v%d", d.Accession, d.Version)
}

type DatasetRepository interface {
	GetByAccession(ctx context.Context, accession int64) (*Dataset, error)
	List(ctx context.Context, params ListParams) ([]Dataset, int64, error)
	ListByStudyVersion(ctx context.Context, studyVersionID int64) ([]Dataset, error)
	Upsert(ctx context.Context, dataset *Dataset) error
}
