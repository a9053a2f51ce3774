package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/UW-GAC/pie-sub001/internal/domain"
)

// studyColumns must match the Scan order in scanStudy.
const studyColumns = `accession, name, created_at, updated_at`

// studyVersionColumns must match the Scan order in scanStudyVersion.
const studyVersionColumns = `id, study_accession, version, participant_set, is_deprecated, created_at, updated_at`

// StudyRepo implements domain.StudyRepository backed by PostgreSQL.
type StudyRepo struct {
	pool *pgxpool.Pool
}

func NewStudyRepo(pool *pgxpool.Pool) *StudyRepo {
	return &StudyRepo{pool: pool}
}

func scanStudy(row pgx.Row) (*domain.Study, error) {
	var s domain.Study
	err := row.Scan(&s.Accession, &s.Name, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrStudyNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func scanStudyVersion(row pgx.Row) (*domain.StudyVersion, error) {
	var sv domain.StudyVersion
	err := row.Scan(&sv.ID, &sv.StudyAccession, &sv.Version, &sv.ParticipantSet,
		&sv.IsDeprecated, &sv.CreatedAt, &sv.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrStudyNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sv, nil
}

func (r *StudyRepo) GetByAccession(ctx context.Context, accession int64) (*domain.Study, error) {
	return scanStudy(r.pool.QueryRow(ctx,
		`SELECT `+studyColumns+` FROM studies WHERE accession = $1`, accession))
}

func (r *StudyRepo) List(ctx context.Context, params domain.ListParams) ([]domain.Study, int64, error) {
	params = params.Normalize()

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM studies`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count studies: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+studyColumns+` FROM studies ORDER BY accession LIMIT $1 OFFSET $2`,
		params.PerPage, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list studies: %w", err)
	}
	defer rows.Close()

	var studies []domain.Study
	for rows.Next() {
		s, err := scanStudy(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan study: %w", err)
		}
		studies = append(studies, *s)
	}
	return studies, total, rows.Err()
}

func (r *StudyRepo) ListVersions(ctx context.Context, studyAccession int64) ([]domain.StudyVersion, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+studyVersionColumns+` FROM study_versions WHERE study_accession = $1 ORDER BY version DESC`,
		studyAccession)
	if err != nil {
		return nil, fmt.Errorf("failed to list study versions: %w", err)
	}
	defer rows.Close()

	var versions []domain.StudyVersion
	for rows.Next() {
		sv, err := scanStudyVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan study version: %w", err)
		}
		versions = append(versions, *sv)
	}
	return versions, rows.Err()
}

func (r *StudyRepo) GetVersion(ctx context.Context, id int64) (*domain.StudyVersion, error) {
	return scanStudyVersion(r.pool.QueryRow(ctx,
		`SELECT `+studyVersionColumns+` FROM study_versions WHERE id = $1`, id))
}

func (r *StudyRepo) Upsert(ctx context.Context, study *domain.Study) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO studies (accession, name)
		VALUES ($1, $2)
		ON CONFLICT (accession) DO UPDATE SET name = EXCLUDED.name, updated_at = NOW()
		RETURNING created_at, updated_at
	`, study.Accession, study.Name).Scan(&study.CreatedAt, &study.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert study: %w", err)
	}
	return nil
}

func (r *StudyRepo) UpsertVersion(ctx context.Context, version *domain.StudyVersion) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO study_versions (study_accession, version, participant_set, is_deprecated)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (study_accession, version) DO UPDATE SET
			participant_set = EXCLUDED.participant_set,
			is_deprecated = EXCLUDED.is_deprecated,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`, version.StudyAccession, version.Version, version.ParticipantSet, version.IsDeprecated).
		Scan(&version.ID, &version.CreatedAt, &version.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert study version: %w", err)
	}
	return nil
}
