package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/UW-GAC/pie-sub001/internal/domain"
)

// sourceTraitColumns must match the Scan order in scanSourceTrait.
const sourceTraitColumns = `accession, name, description, data_type, unit, dataset_accession, is_deprecated, created_at, updated_at`

// harmonizedTraitColumns must match the Scan order in scanHarmonizedTrait.
const harmonizedTraitColumns = `id, name, flavor_name, version, description, data_type, unit, created_at, updated_at`

// TraitRepo implements domain.TraitRepository backed by PostgreSQL. Search
// uses the stored tsvector column over source trait names and descriptions.
type TraitRepo struct {
	pool *pgxpool.Pool
}

func NewTraitRepo(pool *pgxpool.Pool) *TraitRepo {
	return &TraitRepo{pool: pool}
}

func scanSourceTrait(row pgx.Row) (*domain.SourceTrait, error) {
	var t domain.SourceTrait
	err := row.Scan(&t.Accession, &t.Name, &t.Description, &t.DataType, &t.Unit,
		&t.DatasetAccession, &t.IsDeprecated, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTraitNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func scanHarmonizedTrait(row pgx.Row) (*domain.HarmonizedTrait, error) {
	var t domain.HarmonizedTrait
	err := row.Scan(&t.ID, &t.Name, &t.FlavorName, &t.Version, &t.Description,
		&t.DataType, &t.Unit, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTraitNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TraitRepo) GetSourceByAccession(ctx context.Context, accession int64) (*domain.SourceTrait, error) {
	return scanSourceTrait(r.pool.QueryRow(ctx,
		`SELECT `+sourceTraitColumns+` FROM source_traits WHERE accession = $1`, accession))
}

func (r *TraitRepo) ListSource(ctx context.Context, datasetAccession int64, params domain.ListParams) ([]domain.SourceTrait, int64, error) {
	params = params.Normalize()

	where := ``
	args := []any{params.PerPage, params.Offset()}
	countArgs := []any{}
	if datasetAccession != 0 {
		where = ` WHERE dataset_accession = $3`
		args = append(args, datasetAccession)
		countArgs = append(countArgs, datasetAccession)
	}

	countSQL := `SELECT COUNT(*) FROM source_traits`
	if datasetAccession != 0 {
		countSQL += ` WHERE dataset_accession = $1`
	}

	var total int64
	if err := r.pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count source traits: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+sourceTraitColumns+` FROM source_traits`+where+` ORDER BY accession LIMIT $1 OFFSET $2`,
		args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list source traits: %w", err)
	}
	defer rows.Close()

	var traits []domain.SourceTrait
	for rows.Next() {
		t, err := scanSourceTrait(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan source trait: %w", err)
		}
		traits = append(traits, *t)
	}
	return traits, total, rows.Err()
}

func (r *TraitRepo) UpsertSource(ctx context.Context, trait *domain.SourceTrait) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO source_traits (accession, name, description, data_type, unit, dataset_accession, is_deprecated)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (accession) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			data_type = EXCLUDED.data_type,
			unit = EXCLUDED.unit,
			dataset_accession = EXCLUDED.dataset_accession,
			is_deprecated = EXCLUDED.is_deprecated,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`, trait.Accession, trait.Name, trait.Description, trait.DataType, trait.Unit,
		trait.DatasetAccession, trait.IsDeprecated).
		Scan(&trait.CreatedAt, &trait.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert source trait: %w", err)
	}
	return nil
}

func (r *TraitRepo) GetHarmonized(ctx context.Context, id int64) (*domain.HarmonizedTrait, error) {
	return scanHarmonizedTrait(r.pool.QueryRow(ctx,
		`SELECT `+harmonizedTraitColumns+` FROM harmonized_traits WHERE id = $1`, id))
}

func (r *TraitRepo) ListHarmonized(ctx context.Context, params domain.ListParams) ([]domain.HarmonizedTrait, int64, error) {
	params = params.Normalize()

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM harmonized_traits`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count harmonized traits: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+harmonizedTraitColumns+` FROM harmonized_traits ORDER BY name, version LIMIT $1 OFFSET $2`,
		params.PerPage, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list harmonized traits: %w", err)
	}
	defer rows.Close()

	var traits []domain.HarmonizedTrait
	for rows.Next() {
		t, err := scanHarmonizedTrait(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan harmonized trait: %w", err)
		}
		traits = append(traits, *t)
	}
	return traits, total, rows.Err()
}

func (r *TraitRepo) UpsertHarmonized(ctx context.Context, trait *domain.HarmonizedTrait) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO harmonized_traits (name, flavor_name, version, description, data_type, unit)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (name, version) DO UPDATE SET
			flavor_name = EXCLUDED.flavor_name,
			description = EXCLUDED.description,
			data_type = EXCLUDED.data_type,
			unit = EXCLUDED.unit,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`, trait.Name, trait.FlavorName, trait.Version, trait.Description, trait.DataType, trait.Unit).
		Scan(&trait.ID, &trait.CreatedAt, &trait.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert harmonized trait: %w", err)
	}
	return nil
}

// Search ranks matches with ts_rank; an exact (case-insensitive) name match
// sorts ahead of everything else. Deprecated traits are excluded unless the
// filter asks for them.
func (r *TraitRepo) Search(ctx context.Context, query string, filter domain.SearchFilter, limit int) ([]domain.SearchResult, error) {
	sql := `
		SELECT ` + prefixColumns("t", sourceTraitColumns) + `,
			ts_rank(t.search_tsv, websearch_to_tsquery('english', $1)) AS rank
		FROM source_traits t
		JOIN source_datasets d ON d.accession = t.dataset_accession
		JOIN study_versions sv ON sv.id = d.study_version_id
		WHERE t.search_tsv @@ websearch_to_tsquery('english', $1)`
	args := []any{query}

	if !filter.IncludeDeprecated {
		sql += ` AND NOT t.is_deprecated`
	}
	if filter.StudyAccession != 0 {
		args = append(args, filter.StudyAccession)
		sql += fmt.Sprintf(` AND sv.study_accession = $%d`, len(args))
	}
	if filter.ExactName != "" {
		args = append(args, filter.ExactName)
		sql += fmt.Sprintf(` AND lower(t.name) = lower($%d)`, len(args))
	}

	args = append(args, limit)
	sql += fmt.Sprintf(` ORDER BY lower(t.name) = lower($1) DESC, rank DESC, t.accession LIMIT $%d`, len(args))

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search source traits: %w", err)
	}
	defer rows.Close()

	var results []domain.SearchResult
	for rows.Next() {
		var res domain.SearchResult
		t := &res.Trait
		err := rows.Scan(&t.Accession, &t.Name, &t.Description, &t.DataType, &t.Unit,
			&t.DatasetAccession, &t.IsDeprecated, &t.CreatedAt, &t.UpdatedAt, &res.Rank)
		if err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		results = append(results, res)
	}
	return results, rows.Err()
}
