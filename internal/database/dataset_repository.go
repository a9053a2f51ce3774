package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/UW-GAC/pie-sub001/internal/domain"
)

// datasetColumns must match the Scan order in scanDataset.
const datasetColumns = `accession, version, study_version_id, name, description, is_deprecated, created_at, updated_at`

// DatasetRepo implements domain.DatasetRepository backed by PostgreSQL.
type DatasetRepo struct {
	pool *pgxpool.Pool
}

func NewDatasetRepo(pool *pgxpool.Pool) *DatasetRepo {
	return &DatasetRepo{pool: pool}
}

func scanDataset(row pgx.Row) (*domain.Dataset, error) {
	var d domain.Dataset
	err := row.Scan(&d.Accession, &d.Version, &d.StudyVersionID, &d.Name,
		&d.Description, &d.IsDeprecated, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrDatasetNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DatasetRepo) GetByAccession(ctx context.Context, accession int64) (*domain.Dataset, error) {
	return scanDataset(r.pool.QueryRow(ctx,
		`SELECT `+datasetColumns+` FROM source_datasets WHERE accession = $1`, accession))
}

func (r *DatasetRepo) List(ctx context.Context, params domain.ListParams) ([]domain.Dataset, int64, error) {
	params = params.Normalize()

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM source_datasets`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count datasets: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+datasetColumns+` FROM source_datasets ORDER BY accession LIMIT $1 OFFSET $2`,
		params.PerPage, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list datasets: %w", err)
	}
	defer rows.Close()

	var datasets []domain.Dataset
	for rows.Next() {
		d, err := scanDataset(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan dataset: %w", err)
		}
		datasets = append(datasets, *d)
	}
	return datasets, total, rows.Err()
}

func (r *DatasetRepo) ListByStudyVersion(ctx context.Context, studyVersionID int64) ([]domain.Dataset, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+datasetColumns+` FROM source_datasets WHERE study_version_id = $1 ORDER BY accession`,
		studyVersionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets for study version: %w", err)
	}
	defer rows.Close()

	var datasets []domain.Dataset
	for rows.Next() {
		d, err := scanDataset(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dataset: %w", err)
		}
		datasets = append(datasets, *d)
	}
	return datasets, rows.Err()
}

func (r *DatasetRepo) Upsert(ctx context.Context, dataset *domain.Dataset) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO source_datasets (accession, version, study_version_id, name, description, is_deprecated)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (accession) DO UPDATE SET
			version = EXCLUDED.version,
			study_version_id = EXCLUDED.study_version_id,
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			is_deprecated = EXCLUDED.is_deprecated,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`, dataset.Accession, dataset.Version, dataset.StudyVersionID, dataset.Name,
		dataset.Description, dataset.IsDeprecated).
		Scan(&dataset.CreatedAt, &dataset.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert dataset: %w", err)
	}
	return nil
}
