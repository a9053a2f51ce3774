package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/UW-GAC/pie-sub001/internal/domain"
)

// taggedTraitColumns must match the Scan order in scanTaggedTrait.
const taggedTraitColumns = `id, tag_id, trait_accession, creator_id, archived, created_at, updated_at`

// reviewColumns must match the Scan order in scanReview.
const reviewColumns = `id, tagged_trait_id, status, comment, creator_id, created_at, updated_at`

// responseColumns must match the Scan order in scanResponse.
const responseColumns = `id, dcc_review_id, status, comment, creator_id, created_at, updated_at`

// decisionColumns must match the Scan order in scanDecision.
const decisionColumns = `id, dcc_review_id, decision, comment, creator_id, created_at, updated_at`

// TaggedTraitRepo implements domain.TaggedTraitRepository, including the
// review/response/decision records, backed by PostgreSQL.
type TaggedTraitRepo struct {
	pool *pgxpool.Pool
}

func NewTaggedTraitRepo(pool *pgxpool.Pool) *TaggedTraitRepo {
	return &TaggedTraitRepo{pool: pool}
}

func scanTaggedTrait(row pgx.Row) (*domain.TaggedTrait, error) {
	var tt domain.TaggedTrait
	err := row.Scan(&tt.ID, &tt.TagID, &tt.TraitAccession, &tt.CreatorID,
		&tt.Archived, &tt.CreatedAt, &tt.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTaggedTraitNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tt, nil
}

func scanReview(row pgx.Row) (*domain.DCCReview, error) {
	var rev domain.DCCReview
	err := row.Scan(&rev.ID, &rev.TaggedTraitID, &rev.Status, &rev.Comment,
		&rev.CreatorID, &rev.CreatedAt, &rev.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrReviewNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rev, nil
}

func (r *TaggedTraitRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.TaggedTrait, error) {
	return scanTaggedTrait(r.pool.QueryRow(ctx,
		`SELECT `+taggedTraitColumns+` FROM tagged_traits WHERE id = $1`, id))
}

// GetWithWorkflow loads the tagged trait and, when present, its review with
// the study response and DCC decision attached.
func (r *TaggedTraitRepo) GetWithWorkflow(ctx context.Context, id uuid.UUID) (*domain.TaggedTrait, error) {
	tt, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	review, err := scanReview(r.pool.QueryRow(ctx,
		`SELECT `+reviewColumns+` FROM dcc_reviews WHERE tagged_trait_id = $1`, id))
	if errors.Is(err, domain.ErrReviewNotFound) {
		return tt, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load dcc review: %w", err)
	}

	if err := r.attachReviewChildren(ctx, review); err != nil {
		return nil, err
	}
	tt.Review = review
	return tt, nil
}

func (r *TaggedTraitRepo) attachReviewChildren(ctx context.Context, review *domain.DCCReview) error {
	var resp domain.StudyResponse
	err := r.pool.QueryRow(ctx,
		`SELECT `+responseColumns+` FROM study_responses WHERE dcc_review_id = $1`, review.ID).
		Scan(&resp.ID, &resp.DCCReviewID, &resp.Status, &resp.Comment,
			&resp.CreatorID, &resp.CreatedAt, &resp.UpdatedAt)
	if err == nil {
		review.Response = &resp
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("failed to load study response: %w", err)
	}

	var dec domain.DCCDecision
	err = r.pool.QueryRow(ctx,
		`SELECT `+decisionColumns+` FROM dcc_decisions WHERE dcc_review_id = $1`, review.ID).
		Scan(&dec.ID, &dec.DCCReviewID, &dec.Decision, &dec.Comment,
			&dec.CreatorID, &dec.CreatedAt, &dec.UpdatedAt)
	if err == nil {
		review.Decision = &dec
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("failed to load dcc decision: %w", err)
	}

	return nil
}

func (r *TaggedTraitRepo) List(ctx context.Context, filter domain.TaggedTraitFilter, params domain.ListParams) ([]domain.TaggedTrait, int64, error) {
	params = params.Normalize()

	where := ` WHERE 1=1`
	var args []any
	if !filter.IncludeArchived {
		where += ` AND NOT tt.archived`
	}
	if filter.TagID != uuid.Nil {
		args = append(args, filter.TagID)
		where += fmt.Sprintf(` AND tt.tag_id = $%d`, len(args))
	}
	if filter.CreatorID != uuid.Nil {
		args = append(args, filter.CreatorID)
		where += fmt.Sprintf(` AND tt.creator_id = $%d`, len(args))
	}
	if filter.StudyAccession != 0 {
		args = append(args, filter.StudyAccession)
		where += fmt.Sprintf(` AND tt.trait_accession IN (
			SELECT t.accession FROM source_traits t
			JOIN source_datasets d ON d.accession = t.dataset_accession
			JOIN study_versions sv ON sv.id = d.study_version_id
			WHERE sv.study_accession = $%d)`, len(args))
	}
	if filter.NeedsReview {
		where += ` AND NOT EXISTS (SELECT 1 FROM dcc_reviews rv WHERE rv.tagged_trait_id = tt.id)`
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tagged_traits tt`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count tagged traits: %w", err)
	}

	args = append(args, params.PerPage, params.Offset())
	rows, err := r.pool.Query(ctx,
		`SELECT `+prefixColumns("tt", taggedTraitColumns)+` FROM tagged_traits tt`+where+
			fmt.Sprintf(` ORDER BY tt.created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tagged traits: %w", err)
	}
	defer rows.Close()

	var tagged []domain.TaggedTrait
	for rows.Next() {
		tt, err := scanTaggedTrait(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan tagged trait: %w", err)
		}
		tagged = append(tagged, *tt)
	}
	return tagged, total, rows.Err()
}

func (r *TaggedTraitRepo) Create(ctx context.Context, tt *domain.TaggedTrait) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO tagged_traits (tag_id, trait_accession, creator_id)
		VALUES ($1, $2, $3)
		RETURNING id, archived, created_at, updated_at
	`, tt.TagID, tt.TraitAccession, tt.CreatorID).
		Scan(&tt.ID, &tt.Archived, &tt.CreatedAt, &tt.UpdatedAt)
	if isUniqueViolation(err) {
		return domain.ErrAlreadyTagged
	}
	if err != nil {
		return fmt.Errorf("failed to create tagged trait: %w", err)
	}
	return nil
}

// CreateBulk inserts all pairs in one transaction, skipping traits already
// carrying the tag.
func (r *TaggedTraitRepo) CreateBulk(ctx context.Context, tagID, creatorID uuid.UUID, traitAccessions []int64) ([]domain.TaggedTrait, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	var created []domain.TaggedTrait
	for _, accession := range traitAccessions {
		var tt domain.TaggedTrait
		err := tx.QueryRow(ctx, `
			INSERT INTO tagged_traits (tag_id, trait_accession, creator_id)
			VALUES ($1, $2, $3)
			ON CONFLICT (tag_id, trait_accession) DO NOTHING
			RETURNING `+taggedTraitColumns+`
		`, tagID, accession, creatorID).
			Scan(&tt.ID, &tt.TagID, &tt.TraitAccession, &tt.CreatorID,
				&tt.Archived, &tt.CreatedAt, &tt.UpdatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			continue // pair already exists
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create tagged trait for phv%08d: %w", accession, err)
		}
		created = append(created, tt)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return created, nil
}

func (r *TaggedTraitRepo) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM tagged_traits WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete tagged trait: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrTaggedTraitNotFound
	}
	return nil
}

func (r *TaggedTraitRepo) Archive(ctx context.Context, id uuid.UUID) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE tagged_traits SET archived = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to archive tagged trait: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrTaggedTraitNotFound
	}
	return nil
}

func (r *TaggedTraitRepo) CreateReview(ctx context.Context, review *domain.DCCReview) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO dcc_reviews (tagged_trait_id, status, comment, creator_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, review.TaggedTraitID, review.Status, review.Comment, review.CreatorID).
		Scan(&review.ID, &review.CreatedAt, &review.UpdatedAt)
	if isUniqueViolation(err) {
		return domain.ErrAlreadyReviewed
	}
	if err != nil {
		return fmt.Errorf("failed to create dcc review: %w", err)
	}
	return nil
}

func (r *TaggedTraitRepo) UpdateReview(ctx context.Context, review *domain.DCCReview) error {
	err := r.pool.QueryRow(ctx, `
		UPDATE dcc_reviews
		SET status = $1, comment = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING updated_at
	`, review.Status, review.Comment, review.ID).Scan(&review.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrReviewNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update dcc review: %w", err)
	}
	return nil
}

// GetReview loads a review with its response and decision attached.
func (r *TaggedTraitRepo) GetReview(ctx context.Context, id uuid.UUID) (*domain.DCCReview, error) {
	review, err := scanReview(r.pool.QueryRow(ctx,
		`SELECT `+reviewColumns+` FROM dcc_reviews WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	if err := r.attachReviewChildren(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

func (r *TaggedTraitRepo) CreateResponse(ctx context.Context, response *domain.StudyResponse) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO study_responses (dcc_review_id, status, comment, creator_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, response.DCCReviewID, response.Status, response.Comment, response.CreatorID).
		Scan(&response.ID, &response.CreatedAt, &response.UpdatedAt)
	if isUniqueViolation(err) {
		return domain.ErrAlreadyResponded
	}
	if err != nil {
		return fmt.Errorf("failed to create study response: %w", err)
	}
	return nil
}

func (r *TaggedTraitRepo) CreateDecision(ctx context.Context, decision *domain.DCCDecision) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO dcc_decisions (dcc_review_id, decision, comment, creator_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, decision.DCCReviewID, decision.Decision, decision.Comment, decision.CreatorID).
		Scan(&decision.ID, &decision.CreatedAt, &decision.UpdatedAt)
	if isUniqueViolation(err) {
		return domain.ErrAlreadyDecided
	}
	if err != nil {
		return fmt.Errorf("failed to create dcc decision: %w", err)
	}
	return nil
}
