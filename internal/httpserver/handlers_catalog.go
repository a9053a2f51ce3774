package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (s *Server) handleListStudies(c echo.Context) error {
	params := parseListParams(c)
	studies, total, err := s.app.ListStudies(c.Request().Context(), params)
	if err != nil {
		return serviceError(err)
	}

	results := make([]studyResponse, 0, len(studies))
	for _, study := range studies {
		results = append(results, toStudyResponse(study))
	}
	return c.JSON(http.StatusOK, newListEnvelope(results, total, params))
}

func (s *Server) handleGetStudy(c echo.Context) error {
	accession, err := parseAccessionParam(c, "accession")
	if err != nil {
		return err
	}

	study, err := s.app.GetStudy(c.Request().Context(), accession)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, toStudyResponse(*study))
}

func (s *Server) handleListStudyVersions(c echo.Context) error {
	accession, err := parseAccessionParam(c, "accession")
	if err != nil {
		return err
	}

	versions, err := s.app.ListStudyVersions(c.Request().Context(), accession)
	if err != nil {
		return serviceError(err)
	}

	results := make([]studyVersionResponse, 0, len(versions))
	for _, v := range versions {
		results = append(results, toStudyVersionResponse(v))
	}
	return c.JSON(http.StatusOK, map[string]any{"results": results})
}

func (s *Server) handleListDatasets(c echo.Context) error {
	params := parseListParams(c)
	datasets, total, err := s.app.ListDatasets(c.Request().Context(), params)
	if err != nil {
		return serviceError(err)
	}

	results := make([]datasetResponse, 0, len(datasets))
	for _, d := range datasets {
		results = append(results, toDatasetResponse(d))
	}
	return c.JSON(http.StatusOK, newListEnvelope(results, total, params))
}

func (s *Server) handleGetDataset(c echo.Context) error {
	accession, err := parseAccessionParam(c, "accession")
	if err != nil {
		return err
	}

	dataset, err := s.app.GetDataset(c.Request().Context(), accession)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, toDatasetResponse(*dataset))
}

func (s *Server) handleListSourceTraits(c echo.Context) error {
	accession, err := parseAccessionParam(c, "accession")
	if err != nil {
		return err
	}

	params := parseListParams(c)
	traits, total, err := s.app.ListSourceTraits(c.Request().Context(), accession, params)
	if err != nil {
		return serviceError(err)
	}

	results := make([]traitResponse, 0, len(traits))
	for _, t := range traits {
		results = append(results, toTraitResponse(t))
	}
	return c.JSON(http.StatusOK, newListEnvelope(results, total, params))
}

func (s *Server) handleGetSourceTrait(c echo.Context) error {
	accession, err := parseAccessionParam(c, "accession")
	if err != nil {
		return err
	}

	trait, err := s.app.GetSourceTrait(c.Request().Context(), accession)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, toTraitResponse(*trait))
}

func (s *Server) handleListHarmonizedTraits(c echo.Context) error {
	params := parseListParams(c)
	traits, total, err := s.app.ListHarmonizedTraits(c.Request().Context(), params)
	if err != nil {
		return serviceError(err)
	}

	results := make([]harmonizedTraitResponse, 0, len(traits))
	for _, t := range traits {
		results = append(results, toHarmonizedTraitResponse(t))
	}
	return c.JSON(http.StatusOK, newListEnvelope(results, total, params))
}

func (s *Server) handleGetHarmonizedTrait(c echo.Context) error {
	id, err := parseAccessionParam(c, "id")
	if err != nil {
		return err
	}

	trait, err := s.app.GetHarmonizedTrait(c.Request().Context(), id)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, toHarmonizedTraitResponse(*trait))
}
