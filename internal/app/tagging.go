package app

import (
	"context"
	"slices"

	"github.com/google/uuid"

	"github.com/UW-GAC/pie-sub001/internal/domain"
	"github.com/UW-GAC/pie-sub001/internal/metrics"
)

// ListTags returns all tags in the controlled vocabulary.
func (s *Service) ListTags(ctx context.Context) ([]domain.Tag, error) {
	return s.repos.Tags.List(ctx)
}

// GetTag retrieves one tag with its count of active tagged traits.
func (s *Service) GetTag(ctx context.Context, id uuid.UUID) (*domain.Tag, int64, error) {
	tag, err := s.repos.Tags.GetByID(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	count, err := s.repos.Tags.CountTaggedTraits(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	return tag, count, nil
}

// CreateTag adds a tag to the controlled vocabulary. Staff only.
func (s *Service) CreateTag(ctx context.Context, creator *domain.User, tag *domain.Tag) error {
	if !creator.IsStaff {
		return domain.ErrNotAuthorized
	}
	tag.CreatorID = creator.ID
	return s.repos.Tags.Create(ctx, tag)
}

// canTagStudy reports whether the user may tag traits in the given study.
// Staff may tag anything; taggers are limited to their assigned studies.
func canTagStudy(user *domain.User, studyAccession int64) bool {
	if user.IsStaff {
		return true
	}
	return user.IsTagger && slices.Contains(user.TaggableStudies, studyAccession)
}

// TagTrait applies a tag to a single source trait.
func (s *Service) TagTrait(ctx context.Context, tagger *domain.User, tagID uuid.UUID, traitAccession int64) (*domain.TaggedTrait, error) {
	if _, err := s.repos.Tags.GetByID(ctx, tagID); err != nil {
		return nil, err
	}

	study, err := s.traitStudy(ctx, traitAccession)
	if err != nil {
		return nil, err
	}
	if !canTagStudy(tagger, study) {
		return nil, domain.ErrNotAuthorized
	}

	tt := &domain.TaggedTrait{TagID: tagID, TraitAccession: traitAccession, CreatorID: tagger.ID}
	if err := s.repos.TaggedTraits.Create(ctx, tt); err != nil {
		return nil, err
	}
	metrics.TaggedTraitsCreated.Inc()
	return tt, nil
}

// TagTraitsBulk applies one tag to many traits at once, skipping traits that
// already carry it. Every trait must belong to a study the tagger may tag.
func (s *Service) TagTraitsBulk(ctx context.Context, tagger *domain.User, tagID uuid.UUID, traitAccessions []int64) ([]domain.TaggedTrait, error) {
	if _, err := s.repos.Tags.GetByID(ctx, tagID); err != nil {
		return nil, err
	}

	for _, accession := range traitAccessions {
		study, err := s.traitStudy(ctx, accession)
		if err != nil {
			return nil, err
		}
		if !canTagStudy(tagger, study) {
			return nil, domain.ErrNotAuthorized
		}
	}

	created, err := s.repos.TaggedTraits.CreateBulk(ctx, tagID, tagger.ID, traitAccessions)
	if err != nil {
		return nil, err
	}
	metrics.TaggedTraitsCreated.Add(float64(len(created)))
	return created, nil
}

// GetTaggedTrait loads a tagged trait with its full review chain.
func (s *Service) GetTaggedTrait(ctx context.Context, id uuid.UUID) (*domain.TaggedTrait, error) {
	return s.repos.TaggedTraits.GetWithWorkflow(ctx, id)
}

// ListTaggedTraits returns a filtered page of tagged traits.
func (s *Service) ListTaggedTraits(ctx context.Context, filter domain.TaggedTraitFilter, params domain.ListParams) ([]domain.TaggedTrait, int64, error) {
	return s.repos.TaggedTraits.List(ctx, filter, params)
}

// DeleteTaggedTrait removes a tagged trait. Once the DCC has reviewed it, the
// record is archived instead so the review trail survives. Only the creator
// or staff may remove it.
func (s *Service) DeleteTaggedTrait(ctx context.Context, user *domain.User, id uuid.UUID) error {
	tt, err := s.repos.TaggedTraits.GetWithWorkflow(ctx, id)
	if err != nil {
		return err
	}
	if tt.CreatorID != user.ID && !user.IsStaff {
		return domain.ErrNotAuthorized
	}

	if tt.Review != nil {
		if err := s.repos.TaggedTraits.Archive(ctx, id); err != nil {
			return err
		}
		metrics.TaggedTraitsArchived.Inc()
		return nil
	}
	return s.repos.TaggedTraits.Delete(ctx, id)
}
