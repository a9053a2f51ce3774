package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/UW-GAC/pie-sub001/internal/domain"
)

// unitRecipeColumns must match the Scan order in scanUnitRecipe.
const unitRecipeColumns = `id, name, version, instructions, age_variables, batch_variables, phenotype_variables, creator_id, created_at, updated_at`

// harmonizationRecipeColumns must match the Scan order in scanHarmonizationRecipe.
const harmonizationRecipeColumns = `id, name, version, target_name, target_description, measurement_unit, encoded_values, creator_id, created_at, updated_at`

// RecipeRepo implements domain.RecipeRepository backed by PostgreSQL.
type RecipeRepo struct {
	pool *pgxpool.Pool
}

func NewRecipeRepo(pool *pgxpool.Pool) *RecipeRepo {
	return &RecipeRepo{pool: pool}
}

func scanUnitRecipe(row pgx.Row) (*domain.UnitRecipe, error) {
	var ur domain.UnitRecipe
	err := row.Scan(&ur.ID, &ur.Name, &ur.Version, &ur.Instructions,
		&ur.AgeVariables, &ur.BatchVariables, &ur.PhenotypeVariables,
		&ur.CreatorID, &ur.CreatedAt, &ur.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrRecipeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ur, nil
}

func scanHarmonizationRecipe(row pgx.Row) (*domain.HarmonizationRecipe, error) {
	var hr domain.HarmonizationRecipe
	err := row.Scan(&hr.ID, &hr.Name, &hr.Version, &hr.TargetName, &hr.TargetDescription,
		&hr.MeasurementUnit, &hr.EncodedValues, &hr.CreatorID, &hr.CreatedAt, &hr.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrRecipeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &hr, nil
}

func (r *RecipeRepo) GetUnitRecipe(ctx context.Context, id uuid.UUID) (*domain.UnitRecipe, error) {
	return scanUnitRecipe(r.pool.QueryRow(ctx,
		`SELECT `+unitRecipeColumns+` FROM unit_recipes WHERE id = $1`, id))
}

func (r *RecipeRepo) ListUnitRecipes(ctx context.Context, creatorID uuid.UUID, params domain.ListParams) ([]domain.UnitRecipe, int64, error) {
	params = params.Normalize()

	var total int64
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM unit_recipes WHERE creator_id = $1`, creatorID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count unit recipes: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+unitRecipeColumns+` FROM unit_recipes WHERE creator_id = $1 ORDER BY name LIMIT $2 OFFSET $3`,
		creatorID, params.PerPage, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list unit recipes: %w", err)
	}
	defer rows.Close()

	var recipes []domain.UnitRecipe
	for rows.Next() {
		ur, err := scanUnitRecipe(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan unit recipe: %w", err)
		}
		recipes = append(recipes, *ur)
	}
	return recipes, total, rows.Err()
}

func (r *RecipeRepo) CreateUnitRecipe(ctx context.Context, recipe *domain.UnitRecipe) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO unit_recipes (name, instructions, age_variables, batch_variables, phenotype_variables, creator_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, version, created_at, updated_at
	`, recipe.Name, recipe.Instructions, recipe.AgeVariables, recipe.BatchVariables,
		recipe.PhenotypeVariables, recipe.CreatorID).
		Scan(&recipe.ID, &recipe.Version, &recipe.CreatedAt, &recipe.UpdatedAt)
	if isUniqueViolation(err) {
		return domain.ErrRecipeExists
	}
	if err != nil {
		return fmt.Errorf("failed to create unit recipe: %w", err)
	}
	return nil
}

// UpdateUnitRecipe saves changes and bumps the stored version.
func (r *RecipeRepo) UpdateUnitRecipe(ctx context.Context, recipe *domain.UnitRecipe) error {
	err := r.pool.QueryRow(ctx, `
		UPDATE unit_recipes
		SET name = $1, instructions = $2, age_variables = $3, batch_variables = $4,
			phenotype_variables = $5, version = version + 1, updated_at = NOW()
		WHERE id = $6 AND creator_id = $7
		RETURNING version, updated_at
	`, recipe.Name, recipe.Instructions, recipe.AgeVariables, recipe.BatchVariables,
		recipe.PhenotypeVariables, recipe.ID, recipe.CreatorID).
		Scan(&recipe.Version, &recipe.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrRecipeNotFound
	}
	if isUniqueViolation(err) {
		return domain.ErrRecipeExists
	}
	if err != nil {
		return fmt.Errorf("failed to update unit recipe: %w", err)
	}
	return nil
}

func (r *RecipeRepo) GetHarmonizationRecipe(ctx context.Context, id uuid.UUID) (*domain.HarmonizationRecipe, error) {
	hr, err := scanHarmonizationRecipe(r.pool.QueryRow(ctx,
		`SELECT `+harmonizationRecipeColumns+` FROM harmonization_recipes WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadRecipeUnits(ctx, hr); err != nil {
		return nil, err
	}
	return hr, nil
}

func (r *RecipeRepo) loadRecipeUnits(ctx context.Context, hr *domain.HarmonizationRecipe) error {
	rows, err := r.pool.Query(ctx,
		`SELECT unit_recipe_id FROM harmonization_recipe_units WHERE recipe_id = $1`, hr.ID)
	if err != nil {
		return fmt.Errorf("failed to load recipe units: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("failed to scan recipe unit: %w", err)
		}
		hr.UnitRecipeIDs = append(hr.UnitRecipeIDs, id)
	}
	return rows.Err()
}

func (r *RecipeRepo) ListHarmonizationRecipes(ctx context.Context, creatorID uuid.UUID, params domain.ListParams) ([]domain.HarmonizationRecipe, int64, error) {
	params = params.Normalize()

	var total int64
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM harmonization_recipes WHERE creator_id = $1`, creatorID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count harmonization recipes: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+harmonizationRecipeColumns+` FROM harmonization_recipes WHERE creator_id = $1 ORDER BY name LIMIT $2 OFFSET $3`,
		creatorID, params.PerPage, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list harmonization recipes: %w", err)
	}
	defer rows.Close()

	var recipes []domain.HarmonizationRecipe
	for rows.Next() {
		hr, err := scanHarmonizationRecipe(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan harmonization recipe: %w", err)
		}
		recipes = append(recipes, *hr)
	}
	return recipes, total, rows.Err()
}

func (r *RecipeRepo) CreateHarmonizationRecipe(ctx context.Context, recipe *domain.HarmonizationRecipe) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	err = tx.QueryRow(ctx, `
		INSERT INTO harmonization_recipes (name, target_name, target_description, measurement_unit, encoded_values, creator_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, version, created_at, updated_at
	`, recipe.Name, recipe.TargetName, recipe.TargetDescription, recipe.MeasurementUnit,
		recipe.EncodedValues, recipe.CreatorID).
		Scan(&recipe.ID, &recipe.Version, &recipe.CreatedAt, &recipe.UpdatedAt)
	if isUniqueViolation(err) {
		return domain.ErrRecipeExists
	}
	if err != nil {
		return fmt.Errorf("failed to create harmonization recipe: %w", err)
	}

	for _, unitID := range recipe.UnitRecipeIDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO harmonization_recipe_units (recipe_id, unit_recipe_id) VALUES ($1, $2)
		`, recipe.ID, unitID); err != nil {
			return fmt.Errorf("failed to link unit recipe: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// UpdateHarmonizationRecipe saves changes, replaces the unit set, and bumps
// the stored version.
func (r *RecipeRepo) UpdateHarmonizationRecipe(ctx context.Context, recipe *domain.HarmonizationRecipe) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	err = tx.QueryRow(ctx, `
		UPDATE harmonization_recipes
		SET name = $1, target_name = $2, target_description = $3, measurement_unit = $4,
			encoded_values = $5, version = version + 1, updated_at = NOW()
		WHERE id = $6 AND creator_id = $7
		RETURNING version, updated_at
	`, recipe.Name, recipe.TargetName, recipe.TargetDescription, recipe.MeasurementUnit,
		recipe.EncodedValues, recipe.ID, recipe.CreatorID).
		Scan(&recipe.Version, &recipe.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrRecipeNotFound
	}
	if isUniqueViolation(err) {
		return domain.ErrRecipeExists
	}
	if err != nil {
		return fmt.Errorf("failed to update harmonization recipe: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM harmonization_recipe_units WHERE recipe_id = $1`, recipe.ID); err != nil {
		return fmt.Errorf("failed to clear recipe units: %w", err)
	}
	for _, unitID := range recipe.UnitRecipeIDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO harmonization_recipe_units (recipe_id, unit_recipe_id) VALUES ($1, $2)
		`, recipe.ID, unitID); err != nil {
			return fmt.Errorf("failed to link unit recipe: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
