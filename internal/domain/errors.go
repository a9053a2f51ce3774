package domain

import "errors"

var (
	ErrStudyNotFound       = errors.New("study not found")
	ErrDatasetNotFound     = errors.New("dataset not found")
	ErrTraitNotFound       = errors.New("trait not found")
	ErrTagNotFound         = errors.New("tag not found")
	ErrTagExists           = errors.New("tag already exists")
	ErrTaggedTraitNotFound = errors.New("tagged trait not found")
	ErrAlreadyTagged       = errors.New("trait is already tagged with this tag")
	ErrReviewNotFound      = errors.New("dcc review not found")
	ErrAlreadyReviewed     = errors.New("tagged trait already has a dcc review")
	ErrAlreadyResponded    = errors.New("dcc review already has a study response")
	ErrAlreadyDecided      = errors.New("dcc review already has a dcc decision")
	ErrReviewNotFollowup   = errors.New("dcc review is not flagged for followup")
	ErrStudyAgreed         = errors.New("study agreed with the review; no decision needed")
	ErrRecipeNotFound      = errors.New("recipe not found")
	ErrRecipeExists        = errors.New("a recipe with this name already exists")
	ErrHomeContentNotFound = errors.New("home content not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailTaken          = errors.New("email is already registered")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrNotAuthorized       = errors.New("user is not authorized for this study")
)
