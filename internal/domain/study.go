package domain

import (
	"context"
	"fmt"
	"time"
)

// Study is a dbGaP study, identified by its global phs accession.
type Study struct {
	Accession int64 // phs
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PHS returns the zero-padded dbGaP accession string, e.g. "phs000007".
func (s Study) PHS() string {
	return fmt.Sprintf("phs%06d", s.Accession)
}

// StudyVersion is one released version of a study on dbGaP.
type StudyVersion struct {
	ID             int64
	StudyAccession int64
	Version        int
	ParticipantSet int
	IsDeprecated   bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// FullAccession returns the complete dbGaP accession, e.g. "phs000007.v27.p10".
func (sv StudyVersion) FullAccession() string {
	return fmt.Sprintf("phs%06d.v%d.p%d", sv.StudyAccession, sv.Version, sv.ParticipantSet)
}

type StudyRepository interface {
	GetByAccession(ctx context.Context, accession int64) (*Study, error)
	List(ctx context.Context, params ListParams) ([]Study, int64, error)
	ListVersions(ctx context.Context, studyAccession int64) ([]StudyVersion, error)
	GetVersion(ctx context.Context, id int64) (*StudyVersion, error)
	Upsert(ctx context.Context, study *Study) error
	UpsertVersion(ctx context.Context, version *StudyVersion) error
}
