package app

import (
	"context"

	"github.com/google/uuid"

	"github.com/UW-GAC/pie-sub001/internal/domain"
)

// GetUnitRecipe retrieves a unit recipe. Recipes are visible to their owner
// and to staff.
func (s *Service) GetUnitRecipe(ctx context.Context, user *domain.User, id uuid.UUID) (*domain.UnitRecipe, error) {
	recipe, err := s.repos.Recipes.GetUnitRecipe(ctx, id)
	if err != nil {
		return nil, err
	}
	if recipe.CreatorID != user.ID && !user.IsStaff {
		return nil, domain.ErrNotAuthorized
	}
	return recipe, nil
}

// ListUnitRecipes returns a page of the user's own unit recipes.
func (s *Service) ListUnitRecipes(ctx context.Context, user *domain.User, params domain.ListParams) ([]domain.UnitRecipe, int64, error) {
	return s.repos.Recipes.ListUnitRecipes(ctx, user.ID, params)
}

// CreateUnitRecipe stores a new unit recipe owned by the user.
func (s *Service) CreateUnitRecipe(ctx context.Context, user *domain.User, recipe *domain.UnitRecipe) error {
	recipe.CreatorID = user.ID
	return s.repos.Recipes.CreateUnitRecipe(ctx, recipe)
}

// UpdateUnitRecipe saves changes to the user's own recipe and bumps its
// version.
func (s *Service) UpdateUnitRecipe(ctx context.Context, user *domain.User, recipe *domain.UnitRecipe) error {
	existing, err := s.repos.Recipes.GetUnitRecipe(ctx, recipe.ID)
	if err != nil {
		return err
	}
	if existing.CreatorID != user.ID {
		return domain.ErrNotAuthorized
	}
	recipe.CreatorID = user.ID
	return s.repos.Recipes.UpdateUnitRecipe(ctx, recipe)
}

// GetHarmonizationRecipe retrieves a harmonization recipe for its owner or
// staff.
func (s *Service) GetHarmonizationRecipe(ctx context.Context, user *domain.User, id uuid.UUID) (*domain.HarmonizationRecipe, error) {
	recipe, err := s.repos.Recipes.GetHarmonizationRecipe(ctx, id)
	if err != nil {
		return nil, err
	}
	if recipe.CreatorID != user.ID && !user.IsStaff {
		return nil, domain.ErrNotAuthorized
	}
	return recipe, nil
}

// ListHarmonizationRecipes returns a page of the user's own harmonization
// recipes.
func (s *Service) ListHarmonizationRecipes(ctx context.Context, user *domain.User, params domain.ListParams) ([]domain.HarmonizationRecipe, int64, error) {
	return s.repos.Recipes.ListHarmonizationRecipes(ctx, user.ID, params)
}

// CreateHarmonizationRecipe stores a new harmonization recipe. Every unit
// recipe it references must belong to the same user.
func (s *Service) CreateHarmonizationRecipe(ctx context.Context, user *domain.User, recipe *domain.HarmonizationRecipe) error {
	if err := s.checkUnitOwnership(ctx, user, recipe.UnitRecipeIDs); err != nil {
		return err
	}
	recipe.CreatorID = user.ID
	return s.repos.Recipes.CreateHarmonizationRecipe(ctx, recipe)
}

// UpdateHarmonizationRecipe saves changes to the user's own recipe, replaces
// its unit set, and bumps its version.
func (s *Service) UpdateHarmonizationRecipe(ctx context.Context, user *domain.User, recipe *domain.HarmonizationRecipe) error {
	existing, err := s.repos.Recipes.GetHarmonizationRecipe(ctx, recipe.ID)
	if err != nil {
		return err
	}
	if existing.CreatorID != user.ID {
		return domain.ErrNotAuthorized
	}
	if err := s.checkUnitOwnership(ctx, user, recipe.UnitRecipeIDs); err != nil {
		return err
	}
	recipe.CreatorID = user.ID
	return s.repos.Recipes.UpdateHarmonizationRecipe(ctx, recipe)
}

func (s *Service) checkUnitOwnership(ctx context.Context, user *domain.User, unitIDs []uuid.UUID) error {
	for _, id := range unitIDs {
		unit, err := s.repos.Recipes.GetUnitRecipe(ctx, id)
		if err != nil {
			return err
		}
		if unit.CreatorID != user.ID {
			return domain.ErrNotAuthorized
		}
	}
	return nil
}
