package app

import (
	"context"

	"github.com/UW-GAC/pie-sub001/internal/domain"
)

// GetStudy retrieves a study by its phs accession.
func (s *Service) GetStudy(ctx context.Context, accession int64) (*domain.Study, error) {
	return s.repos.Studies.GetByAccession(ctx, accession)
}

// ListStudies returns a page of studies with the total count.
func (s *Service) ListStudies(ctx context.Context, params domain.ListParams) ([]domain.Study, int64, error) {
	return s.repos.Studies.List(ctx, params)
}

// ListStudyVersions returns all released versions of a study, newest first.
func (s *Service) ListStudyVersions(ctx context.Context, studyAccession int64) ([]domain.StudyVersion, error) {
	if _, err := s.repos.Studies.GetByAccession(ctx, studyAccession); err != nil {
		return nil, err
	}
	return s.repos.Studies.ListVersions(ctx, studyAccession)
}

// GetDataset retrieves a dataset by its pht accession.
func (s *Service) GetDataset(ctx context.Context, accession int64) (*domain.Dataset, error) {
	return s.repos.Datasets.GetByAccession(ctx, accession)
}

// ListDatasets returns a page of datasets with the total count.
func (s *Service) ListDatasets(ctx context.Context, params domain.ListParams) ([]domain.Dataset, int64, error) {
	return s.repos.Datasets.List(ctx, params)
}

// GetSourceTrait retrieves a source trait by its phv accession.
func (s *Service) GetSourceTrait(ctx context.Context, accession int64) (*domain.SourceTrait, error) {
	return s.repos.Traits.GetSourceByAccession(ctx, accession)
}

// ListSourceTraits returns a page of source traits, optionally scoped to one
// dataset (0 means all).
func (s *Service) ListSourceTraits(ctx context.Context, datasetAccession int64, params domain.ListParams) ([]domain.SourceTrait, int64, error) {
	return s.repos.Traits.ListSource(ctx, datasetAccession, params)
}

// GetHarmonizedTrait retrieves a harmonized trait by ID.
func (s *Service) GetHarmonizedTrait(ctx context.Context, id int64) (*domain.HarmonizedTrait, error) {
	return s.repos.Traits.GetHarmonized(ctx, id)
}

// ListHarmonizedTraits returns a page of harmonized traits.
func (s *Service) ListHarmonizedTraits(ctx context.Context, params domain.ListParams) ([]domain.HarmonizedTrait, int64, error) {
	return s.repos.Traits.ListHarmonized(ctx, params)
}

// HomeContents returns the landing page blurbs in display order.
func (s *Service) HomeContents(ctx context.Context) ([]domain.HomeContent, error) {
	return s.repos.HomeContents.ListOrdered(ctx)
}

// traitStudy resolves the study accession a source trait belongs to, walking
// trait → dataset → study version.
func (s *Service) traitStudy(ctx context.Context, traitAccession int64) (int64, error) {
	trait, err := s.repos.Traits.GetSourceByAccession(ctx, traitAccession)
	if err != nil {
		return 0, err
	}
	dataset, err := s.repos.Datasets.GetByAccession(ctx, trait.DatasetAccession)
	if err != nil {
		return 0, err
	}
	version, err := s.repos.Studies.GetVersion(ctx, dataset.StudyVersionID)
	if err != nil {
		return 0, err
	}
	return version.StudyAccession, nil
}
