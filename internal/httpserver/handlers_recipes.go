package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/UW-GAC/pie-sub001/internal/domain"
	apperrors "github.com/UW-GAC/pie-sub001/internal/platform/errors"
)

func (s *Server) handleListUnitRecipes(c echo.Context) error {
	params := parseListParams(c)
	recipes, total, err := s.app.ListUnitRecipes(c.Request().Context(), currentUser(c), params)
	if err != nil {
		return serviceError(err)
	}

	results := make([]unitRecipeResponse, 0, len(recipes))
	for _, r := range recipes {
		results = append(results, toUnitRecipeResponse(r))
	}
	return c.JSON(http.StatusOK, newListEnvelope(results, total, params))
}

func (s *Server) handleGetUnitRecipe(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	recipe, err := s.app.GetUnitRecipe(c.Request().Context(), currentUser(c), id)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, toUnitRecipeResponse(*recipe))
}

type unitRecipeRequest struct {
	Name               string  `json:"name"`
	Instructions       string  `json:"instructions"`
	AgeVariables       []int64 `json:"age_variables"`
	BatchVariables     []int64 `json:"batch_variables"`
	PhenotypeVariables []int64 `json:"phenotype_variables"`
}

func (r unitRecipeRequest) validate() error {
	if r.Name == "" || r.Instructions == "" {
		return apperrors.ValidationError("Name and instructions are required")
	}
	if len(r.PhenotypeVariables) == 0 {
		return apperrors.ValidationError("At least one phenotype variable is required")
	}
	return nil
}

func (s *Server) handleCreateUnitRecipe(c echo.Context) error {
	var req unitRecipeRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("Invalid request body")
	}
	if err := req.validate(); err != nil {
		return err
	}

	recipe := &domain.UnitRecipe{
		Name:               req.Name,
		Instructions:       req.Instructions,
		AgeVariables:       req.AgeVariables,
		BatchVariables:     req.BatchVariables,
		PhenotypeVariables: req.PhenotypeVariables,
	}
	if err := s.app.CreateUnitRecipe(c.Request().Context(), currentUser(c), recipe); err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusCreated, toUnitRecipeResponse(*recipe))
}

func (s *Server) handleUpdateUnitRecipe(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req unitRecipeRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("Invalid request body")
	}
	if err := req.validate(); err != nil {
		return err
	}

	recipe := &domain.UnitRecipe{
		ID:                 id,
		Name:               req.Name,
		Instructions:       req.Instructions,
		AgeVariables:       req.AgeVariables,
		BatchVariables:     req.BatchVariables,
		PhenotypeVariables: req.PhenotypeVariables,
	}
	if err := s.app.UpdateUnitRecipe(c.Request().Context(), currentUser(c), recipe); err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, toUnitRecipeResponse(*recipe))
}

func (s *Server) handleListHarmonizationRecipes(c echo.Context) error {
	params := parseListParams(c)
	recipes, total, err := s.app.ListHarmonizationRecipes(c.Request().Context(), currentUser(c), params)
	if err != nil {
		return serviceError(err)
	}

	results := make([]harmonizationRecipeResponse, 0, len(recipes))
	for _, r := range recipes {
		results = append(results, toHarmonizationRecipeResponse(r))
	}
	return c.JSON(http.StatusOK, newListEnvelope(results, total, params))
}

func (s *Server) handleGetHarmonizationRecipe(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	recipe, err := s.app.GetHarmonizationRecipe(c.Request().Context(), currentUser(c), id)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, toHarmonizationRecipeResponse(*recipe))
}

type harmonizationRecipeRequest struct {
	Name              string      `json:"name"`
	TargetName        string      `json:"target_name"`
	TargetDescription string      `json:"target_description"`
	MeasurementUnit   string      `json:"measurement_unit"`
	EncodedValues     string      `json:"encoded_values"`
	UnitRecipeIDs     []uuid.UUID `json:"unit_recipe_ids"`
}

func (r harmonizationRecipeRequest) validate() error {
	if r.Name == "" || r.TargetName == "" || r.TargetDescription == "" {
		return apperrors.ValidationError("Name, target_name and target_description are required")
	}
	if len(r.UnitRecipeIDs) == 0 {
		return apperrors.ValidationError("At least one unit recipe is required")
	}
	return nil
}

func (s *Server) handleCreateHarmonizationRecipe(c echo.Context) error {
	var req harmonizationRecipeRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("Invalid request body")
	}
	if err := req.validate(); err != nil {
		return err
	}

	recipe := &domain.HarmonizationRecipe{
		Name:              req.Name,
		TargetName:        req.TargetName,
		TargetDescription: req.TargetDescription,
		MeasurementUnit:   req.MeasurementUnit,
		EncodedValues:     req.EncodedValues,
		UnitRecipeIDs:     req.UnitRecipeIDs,
	}
	if err := s.app.CreateHarmonizationRecipe(c.Request().Context(), currentUser(c), recipe); err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusCreated, toHarmonizationRecipeResponse(*recipe))
}

func (s *Server) handleUpdateHarmonizationRecipe(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req harmonizationRecipeRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("Invalid request body")
	}
	if err := req.validate(); err != nil {
		return err
	}

	recipe := &domain.HarmonizationRecipe{
		ID:                id,
		Name:              req.Name,
		TargetName:        req.TargetName,
		TargetDescription: req.TargetDescription,
		MeasurementUnit:   req.MeasurementUnit,
		EncodedValues:     req.EncodedValues,
		UnitRecipeIDs:     req.UnitRecipeIDs,
	}
	if err := s.app.UpdateHarmonizationRecipe(c.Request().Context(), currentUser(c), recipe); err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, toHarmonizationRecipeResponse(*recipe))
}
