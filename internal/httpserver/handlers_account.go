package httpserver

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apperrors "github.com/UW-GAC/pie-sub001/internal/platform/errors"
)

type profileResponse struct {
	ID              uuid.UUID             `json:"id"`
	Email           string                `json:"email"`
	Name            string                `json:"name"`
	IsStaff         bool                  `json:"is_staff"`
	IsTagger        bool                  `json:"is_tagger"`
	TaggableStudies []int64               `json:"taggable_studies"`
	TaggedCount     int64                 `json:"tagged_count"`
	SavedSearches   []savedSearchResponse `json:"saved_searches"`
	RecentSearches  []string              `json:"recent_searches"`
}

type savedSearchResponse struct {
	ID             uuid.UUID `json:"id"`
	Text           string    `json:"text"`
	StudyAccession int64     `json:"study_accession,omitempty"`
	HitCount       int       `json:"hit_count"`
	LastRunAt      time.Time `json:"last_run_at"`
}

func (s *Server) handleProfile(c echo.Context) error {
	user := currentUser(c)

	profile, err := s.app.GetProfile(c.Request().Context(), user.ID)
	if err != nil {
		return serviceError(err)
	}

	searches := make([]savedSearchResponse, 0, len(profile.SavedSearches))
	for _, search := range profile.SavedSearches {
		searches = append(searches, savedSearchResponse{
			ID:             search.ID,
			Text:           search.Text,
			StudyAccession: search.StudyAccession,
			HitCount:       search.HitCount,
			LastRunAt:      search.LastRunAt,
		})
	}

	return c.JSON(http.StatusOK, profileResponse{
		ID:              profile.User.ID,
		Email:           profile.User.Email,
		Name:            profile.User.Name,
		IsStaff:         profile.User.IsStaff,
		IsTagger:        profile.User.IsTagger,
		TaggableStudies: profile.User.TaggableStudies,
		TaggedCount:     profile.TaggedCount,
		SavedSearches:   searches,
		RecentSearches:  profile.RecentSearches,
	})
}

func (s *Server) handleIssueToken(c echo.Context) error {
	user := currentUser(c)

	token, err := s.app.IssueAPIToken(c.Request().Context(), user.ID)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"token": token})
}

type registerUserRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	IsTagger bool   `json:"is_tagger"`
}

func (s *Server) handleRegisterUser(c echo.Context) error {
	var req registerUserRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("Invalid request body")
	}
	if req.Email == "" || req.Name == "" || len(req.Password) < 10 {
		return apperrors.ValidationError("Email, name and a password of at least 10 characters are required")
	}

	user, err := s.app.Register(c.Request().Context(), req.Email, req.Name, req.Password, req.IsTagger)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"id":        user.ID,
		"email":     user.Email,
		"name":      user.Name,
		"is_tagger": user.IsTagger,
	})
}

type taggableStudiesRequest struct {
	Studies []int64 `json:"studies"`
}

func (s *Server) handleSetTaggableStudies(c echo.Context) error {
	userID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req taggableStudiesRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("Invalid request body")
	}

	if err := s.app.SetTaggableStudies(c.Request().Context(), currentUser(c), userID, req.Studies); err != nil {
		return serviceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
