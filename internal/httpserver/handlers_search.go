package httpserver

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/UW-GAC/pie-sub001/internal/domain"
	apperrors "github.com/UW-GAC/pie-sub001/internal/platform/errors"
)

func (s *Server) handleSearch(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return apperrors.ValidationError("Query parameter 'q' is required")
	}

	filter := domain.SearchFilter{}
	if raw := c.QueryParam("study"); raw != "" {
		accession, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || accession <= 0 {
			return apperrors.ValidationError("Invalid study accession")
		}
		filter.StudyAccession = accession
	}
	if raw := c.QueryParam("include_deprecated"); raw != "" {
		include, err := strconv.ParseBool(raw)
		if err != nil {
			return apperrors.ValidationError("Invalid include_deprecated flag")
		}
		filter.IncludeDeprecated = include
	}

	userID := uuid.Nil
	if user := currentUser(c); user != nil {
		userID = user.ID
	}

	matches, err := s.app.Search(c.Request().Context(), userID, query, filter)
	if err != nil {
		return serviceError(err)
	}

	results := make([]searchResultResponse, 0, len(matches))
	for _, m := range matches {
		results = append(results, searchResultResponse{Trait: toTraitResponse(m.Trait), Rank: m.Rank})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"query":   query,
		"results": results,
		"total":   len(results),
	})
}
