package app

import (
	"context"

	"github.com/google/uuid"

	"github.com/UW-GAC/pie-sub001/internal/domain"
	"github.com/UW-GAC/pie-sub001/internal/metrics"
)

// SubmitDCCReview records the DCC's first-pass review of a tagged trait.
// Staff only; at most one review per tagged trait.
func (s *Service) SubmitDCCReview(ctx context.Context, reviewer *domain.User, taggedTraitID uuid.UUID, status domain.ReviewStatus, comment string) (*domain.DCCReview, error) {
	if !reviewer.IsStaff {
		return nil, domain.ErrNotAuthorized
	}

	tt, err := s.repos.TaggedTraits.GetWithWorkflow(ctx, taggedTraitID)
	if err != nil {
		return nil, err
	}
	if tt.Review != nil {
		return nil, domain.ErrAlreadyReviewed
	}

	review := &domain.DCCReview{
		TaggedTraitID: taggedTraitID,
		Status:        status,
		Comment:       comment,
		CreatorID:     reviewer.ID,
	}
	if err := s.repos.TaggedTraits.CreateReview(ctx, review); err != nil {
		return nil, err
	}
	metrics.WorkflowEventsTotal.WithLabelValues("review", status.String()).Inc()
	return review, nil
}

// UpdateDCCReview changes a review's status or comment. Blocked once the
// study has responded or the DCC has decided, so the trail stays consistent.
func (s *Service) UpdateDCCReview(ctx context.Context, reviewer *domain.User, reviewID uuid.UUID, status domain.ReviewStatus, comment string) (*domain.DCCReview, error) {
	if !reviewer.IsStaff {
		return nil, domain.ErrNotAuthorized
	}

	review, err := s.repos.TaggedTraits.GetReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.Response != nil {
		return nil, domain.ErrAlreadyResponded
	}
	if review.Decision != nil {
		return nil, domain.ErrAlreadyDecided
	}

	review.Status = status
	review.Comment = comment
	if err := s.repos.TaggedTraits.UpdateReview(ctx, review); err != nil {
		return nil, err
	}
	metrics.WorkflowEventsTotal.WithLabelValues("review", status.String()).Inc()
	return review, nil
}

// SubmitStudyResponse records a study's agree/disagree answer to a followup
// review. The responder must be allowed to tag the trait's study. Agreeing
// archives the tagged trait; disagreeing leaves it to the DCC decision.
func (s *Service) SubmitStudyResponse(ctx context.Context, responder *domain.User, reviewID uuid.UUID, status domain.ResponseStatus, comment string) (*domain.StudyResponse, error) {
	review, err := s.repos.TaggedTraits.GetReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.Status != domain.ReviewFollowup {
		return nil, domain.ErrReviewNotFollowup
	}
	if review.Response != nil {
		return nil, domain.ErrAlreadyResponded
	}
	if review.Decision != nil {
		return nil, domain.ErrAlreadyDecided
	}

	tt, err := s.repos.TaggedTraits.GetByID(ctx, review.TaggedTraitID)
	if err != nil {
		return nil, err
	}
	study, err := s.traitStudy(ctx, tt.TraitAccession)
	if err != nil {
		return nil, err
	}
	if !canTagStudy(responder, study) {
		return nil, domain.ErrNotAuthorized
	}

	response := &domain.StudyResponse{
		DCCReviewID: reviewID,
		Status:      status,
		Comment:     comment,
		CreatorID:   responder.ID,
	}
	if err := s.repos.TaggedTraits.CreateResponse(ctx, response); err != nil {
		return nil, err
	}
	metrics.WorkflowEventsTotal.WithLabelValues("response", status.String()).Inc()

	// The study conceding the followup ends the workflow: the pairing was
	// wrong, archive it.
	if status == domain.ResponseAgree {
		if err := s.repos.TaggedTraits.Archive(ctx, review.TaggedTraitID); err != nil {
			return nil, err
		}
		metrics.TaggedTraitsArchived.Inc()
	}
	return response, nil
}

// SubmitDCCDecision records the DCC's final ruling on a followup the study
// disputed or never answered. A remove decision archives the tagged trait.
func (s *Service) SubmitDCCDecision(ctx context.Context, decider *domain.User, reviewID uuid.UUID, decision domain.Decision, comment string) (*domain.DCCDecision, error) {
	if !decider.IsStaff {
		return nil, domain.ErrNotAuthorized
	}

	review, err := s.repos.TaggedTraits.GetReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.Status != domain.ReviewFollowup {
		return nil, domain.ErrReviewNotFollowup
	}
	if review.Decision != nil {
		return nil, domain.ErrAlreadyDecided
	}
	if review.Response != nil && review.Response.Status == domain.ResponseAgree {
		return nil, domain.ErrStudyAgreed
	}

	dec := &domain.DCCDecision{
		DCCReviewID: reviewID,
		Decision:    decision,
		Comment:     comment,
		CreatorID:   decider.ID,
	}
	if err := s.repos.TaggedTraits.CreateDecision(ctx, dec); err != nil {
		return nil, err
	}
	metrics.WorkflowEventsTotal.WithLabelValues("decision", decision.String()).Inc()

	if decision == domain.DecisionRemove {
		if err := s.repos.TaggedTraits.Archive(ctx, review.TaggedTraitID); err != nil {
			return nil, err
		}
		metrics.TaggedTraitsArchived.Inc()
	}
	return dec, nil
}
