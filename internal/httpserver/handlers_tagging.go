package httpserver

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/UW-GAC/pie-sub001/internal/domain"
	apperrors "github.com/UW-GAC/pie-sub001/internal/platform/errors"
)

func (s *Server) handleListTags(c echo.Context) error {
	tags, err := s.app.ListTags(c.Request().Context())
	if err != nil {
		return serviceError(err)
	}

	results := make([]tagResponse, 0, len(tags))
	for _, tag := range tags {
		results = append(results, toTagResponse(tag))
	}
	return c.JSON(http.StatusOK, map[string]any{"results": results})
}

func (s *Server) handleGetTag(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	tag, count, err := s.app.GetTag(c.Request().Context(), id)
	if err != nil {
		return serviceError(err)
	}

	resp := toTagResponse(*tag)
	resp.TaggedTraitCount = &count
	return c.JSON(http.StatusOK, resp)
}

type createTagRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Instructions string `json:"instructions"`
}

func (s *Server) handleCreateTag(c echo.Context) error {
	var req createTagRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("Invalid request body")
	}
	if req.Title == "" || req.Description == "" {
		return apperrors.ValidationError("Title and description are required")
	}

	tag := &domain.Tag{
		Title:        req.Title,
		Description:  req.Description,
		Instructions: req.Instructions,
	}
	if err := s.app.CreateTag(c.Request().Context(), currentUser(c), tag); err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusCreated, toTagResponse(*tag))
}

func (s *Server) handleListTaggedTraits(c echo.Context) error {
	filter := domain.TaggedTraitFilter{}
	if raw := c.QueryParam("tag"); raw != "" {
		tagID, err := uuid.Parse(raw)
		if err != nil {
			return apperrors.ValidationError("Invalid tag filter")
		}
		filter.TagID = tagID
	}
	if raw := c.QueryParam("study"); raw != "" {
		accession, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || accession <= 0 {
			return apperrors.ValidationError("Invalid study filter")
		}
		filter.StudyAccession = accession
	}
	if raw := c.QueryParam("needs_review"); raw != "" {
		needsReview, err := strconv.ParseBool(raw)
		if err != nil {
			return apperrors.ValidationError("Invalid needs_review flag")
		}
		filter.NeedsReview = needsReview
	}
	if raw := c.QueryParam("include_archived"); raw != "" {
		include, err := strconv.ParseBool(raw)
		if err != nil {
			return apperrors.ValidationError("Invalid include_archived flag")
		}
		filter.IncludeArchived = include
	}

	params := parseListParams(c)
	taggedTraits, total, err := s.app.ListTaggedTraits(c.Request().Context(), filter, params)
	if err != nil {
		return serviceError(err)
	}

	results := make([]taggedTraitResponse, 0, len(taggedTraits))
	for _, tt := range taggedTraits {
		results = append(results, toTaggedTraitResponse(tt))
	}
	return c.JSON(http.StatusOK, newListEnvelope(results, total, params))
}

func (s *Server) handleGetTaggedTrait(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	taggedTrait, err := s.app.GetTaggedTrait(c.Request().Context(), id)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, toTaggedTraitResponse(*taggedTrait))
}

type tagTraitRequest struct {
	TagID          uuid.UUID `json:"tag_id"`
	TraitAccession int64     `json:"trait_accession"`
}

func (s *Server) handleTagTrait(c echo.Context) error {
	var req tagTraitRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("Invalid request body")
	}
	if req.TagID == uuid.Nil || req.TraitAccession <= 0 {
		return apperrors.ValidationError("tag_id and trait_accession are required")
	}

	taggedTrait, err := s.app.TagTrait(c.Request().Context(), currentUser(c), req.TagID, req.TraitAccession)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusCreated, toTaggedTraitResponse(*taggedTrait))
}

type tagTraitsBulkRequest struct {
	TagID           uuid.UUID `json:"tag_id"`
	TraitAccessions []int64   `json:"trait_accessions"`
}

func (s *Server) handleTagTraitsBulk(c echo.Context) error {
	var req tagTraitsBulkRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("Invalid request body")
	}
	if req.TagID == uuid.Nil || len(req.TraitAccessions) == 0 {
		return apperrors.ValidationError("tag_id and trait_accessions are required")
	}

	created, err := s.app.TagTraitsBulk(c.Request().Context(), currentUser(c), req.TagID, req.TraitAccessions)
	if err != nil {
		return serviceError(err)
	}

	results := make([]taggedTraitResponse, 0, len(created))
	for _, tt := range created {
		results = append(results, toTaggedTraitResponse(tt))
	}
	return c.JSON(http.StatusCreated, map[string]any{"results": results, "created": len(results)})
}

func (s *Server) handleDeleteTaggedTrait(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := s.app.DeleteTaggedTrait(c.Request().Context(), currentUser(c), id); err != nil {
		return serviceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

type reviewRequest struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
}

func parseReviewStatus(raw string) (domain.ReviewStatus, error) {
	switch raw {
	case "confirmed":
		return domain.ReviewConfirmed, nil
	case "followup":
		return domain.ReviewFollowup, nil
	default:
		return 0, apperrors.ValidationError("Status must be 'confirmed' or 'followup'")
	}
}

func (s *Server) handleSubmitReview(c echo.Context) error {
	taggedTraitID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req reviewRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("Invalid request body")
	}
	status, err := parseReviewStatus(req.Status)
	if err != nil {
		return err
	}
	if status == domain.ReviewFollowup && req.Comment == "" {
		return apperrors.ValidationError("Followup reviews require a comment")
	}

	review, err := s.app.SubmitDCCReview(c.Request().Context(), currentUser(c), taggedTraitID, status, req.Comment)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusCreated, toReviewResponse(review))
}

func (s *Server) handleUpdateReview(c echo.Context) error {
	taggedTraitID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req reviewRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("Invalid request body")
	}
	status, err := parseReviewStatus(req.Status)
	if err != nil {
		return err
	}

	taggedTrait, err := s.app.GetTaggedTrait(c.Request().Context(), taggedTraitID)
	if err != nil {
		return serviceError(err)
	}
	if taggedTrait.Review == nil {
		return serviceError(domain.ErrReviewNotFound)
	}

	review, err := s.app.UpdateDCCReview(c.Request().Context(), currentUser(c), taggedTrait.Review.ID, status, req.Comment)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, toReviewResponse(review))
}

type responseRequest struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
}

func (s *Server) handleSubmitResponse(c echo.Context) error {
	reviewID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req responseRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("Invalid request body")
	}

	var status domain.ResponseStatus
	switch req.Status {
	case "agree":
		status = domain.ResponseAgree
	case "disagree":
		status = domain.ResponseDisagree
	default:
		return apperrors.ValidationError("Status must be 'agree' or 'disagree'")
	}
	if status == domain.ResponseDisagree && req.Comment == "" {
		return apperrors.ValidationError("Disagree responses require a comment")
	}

	response, err := s.app.SubmitStudyResponse(c.Request().Context(), currentUser(c), reviewID, status, req.Comment)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusCreated, studyRespResponse{
		ID:        response.ID,
		Status:    response.Status.String(),
		Comment:   response.Comment,
		CreatedAt: response.CreatedAt,
	})
}

type decisionRequest struct {
	Decision string `json:"decision"`
	Comment  string `json:"comment"`
}

func (s *Server) handleSubmitDecision(c echo.Context) error {
	reviewID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req decisionRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("Invalid request body")
	}

	var decision domain.Decision
	switch req.Decision {
	case "confirm":
		decision = domain.DecisionConfirm
	case "remove":
		decision = domain.DecisionRemove
	default:
		return apperrors.ValidationError("Decision must be 'confirm' or 'remove'")
	}

	dccDecision, err := s.app.SubmitDCCDecision(c.Request().Context(), currentUser(c), reviewID, decision, req.Comment)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusCreated, dccDecisionResponse{
		ID:        dccDecision.ID,
		Decision:  dccDecision.Decision.String(),
		Comment:   dccDecision.Comment,
		CreatedAt: dccDecision.CreatedAt,
	})
}
