package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ReviewStatus is the outcome of the DCC's first-pass review of a tagged trait.
type ReviewStatus int

const (
	ReviewFollowup  ReviewStatus = 0
	ReviewConfirmed ReviewStatus = 1
)

func (s ReviewStatus) String() string {
	if s == ReviewConfirmed {
		return "confirmed"
	}
	return "followup"
}

// ResponseStatus is a study's answer to a followup review.
type ResponseStatus int

const (
	ResponseDisagree ResponseStatus = 0
	ResponseAgree    ResponseStatus = 1
)

func (s ResponseStatus) String() string {
	if s == ResponseAgree {
		return "agree"
	}
	return "disagree"
}

// Decision is the DCC's final ruling on a disputed or unanswered followup.
type Decision int

const (
	DecisionRemove  Decision = 0
	DecisionConfirm Decision = 1
)

func (d Decision) String() string {
	if d == DecisionConfirm {
		return "confirm"
	}
	return "remove"
}

// TaggedTrait links a tag to a source trait. The pair is unique. Tagged
// traits that have entered review are archived rather than deleted.
type TaggedTrait struct {
	ID             uuid.UUID
	TagID          uuid.UUID
	TraitAccession int64
	CreatorID      uuid.UUID
	Archived       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Review is populated on detail reads when a review exists.
	Review *DCCReview
}

// DCCReview records the DCC's review of a tagged trait. At most one per
// tagged trait.
type DCCReview struct {
	ID            uuid.UUID
	TaggedTraitID uuid.UUID
	Status        ReviewStatus
	Comment       string
	CreatorID     uuid.UUID
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Response *StudyResponse
	Decision *DCCDecision
}

// StudyResponse records a study's agree/disagree answer to a followup review.
type StudyResponse struct {
	ID          uuid.UUID
	DCCReviewID uuid.UUID
	Status      ResponseStatus
	Comment     string
	CreatorID   uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DCCDecision records the DCC's final confirm/remove ruling.
type DCCDecision struct {
	ID          uuid.UUID
	DCCReviewID uuid.UUID
	Decision    Decision
	Comment     string
	CreatorID   uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NeedsFollowup reports whether the review is still awaiting a study
// response or DCC decision.
func (r *DCCReview) NeedsFollowup() bool {
	return r.Status == ReviewFollowup && r.Decision == nil &&
		(r.Response == nil || r.Response.Status == ResponseDisagree)
}

// TaggedTraitFilter narrows tagged trait listings.
type TaggedTraitFilter struct {
	TagID           uuid.UUID
	StudyAccession  int64
	CreatorID       uuid.UUID
	IncludeArchived bool
	NeedsReview     bool // only tagged traits without a DCC review
}

type TaggedTraitRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*TaggedTrait, error)
	// GetWithWorkflow loads the tagged trait with its review, response and
	// decision populated.
	GetWithWorkflow(ctx context.Context, id uuid.UUID) (*TaggedTrait, error)
	List(ctx context.Context, filter TaggedTraitFilter, params ListParams) ([]TaggedTrait, int64, error)
	Create(ctx context.Context, tt *TaggedTrait) error
	// CreateBulk inserts many tagged traits for one tag atomically, skipping
	// pairs that already exist. Returns the created records.
	CreateBulk(ctx context.Context, tagID, creatorID uuid.UUID, traitAccessions []int64) ([]TaggedTrait, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Archive(ctx context.Context, id uuid.UUID) error

	CreateReview(ctx context.Context, review *DCCReview) error
	UpdateReview(ctx context.Context, review *DCCReview) error
	GetReview(ctx context.Context, id uuid.UUID) (*DCCReview, error)
	CreateResponse(ctx context.Context, response *StudyResponse) error
	CreateDecision(ctx context.Context, decision *DCCDecision) error
}
