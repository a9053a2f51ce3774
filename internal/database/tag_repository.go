package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/UW-GAC/pie-sub001/internal/domain"
)

// tagColumns must match the Scan order in scanTag.
const tagColumns = `id, title, description, instructions, creator_id, created_at, updated_at`

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

// TagRepo implements domain.TagRepository backed by PostgreSQL.
type TagRepo struct {
	pool *pgxpool.Pool
}

func NewTagRepo(pool *pgxpool.Pool) *TagRepo {
	return &TagRepo{pool: pool}
}

func scanTag(row pgx.Row) (*domain.Tag, error) {
	var t domain.Tag
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Instructions,
		&t.CreatorID, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTagNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func (r *TagRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tag, error) {
	return scanTag(r.pool.QueryRow(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE id = $1`, id))
}

func (r *TagRepo) GetByTitle(ctx context.Context, title string) (*domain.Tag, error) {
	return scanTag(r.pool.QueryRow(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE title = $1`, strings.ToLower(title)))
}

func (r *TagRepo) List(ctx context.Context) ([]domain.Tag, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+tagColumns+` FROM tags ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	var tags []domain.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, *t)
	}
	return tags, rows.Err()
}

func (r *TagRepo) Create(ctx context.Context, tag *domain.Tag) error {
	// Titles are stored lowercase; the unique index relies on it.
	tag.Title = strings.ToLower(strings.TrimSpace(tag.Title))

	err := r.pool.QueryRow(ctx, `
		INSERT INTO tags (title, description, instructions, creator_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, tag.Title, tag.Description, tag.Instructions, tag.CreatorID).
		Scan(&tag.ID, &tag.CreatedAt, &tag.UpdatedAt)
	if isUniqueViolation(err) {
		return domain.ErrTagExists
	}
	if err != nil {
		return fmt.Errorf("failed to create tag: %w", err)
	}
	return nil
}

func (r *TagRepo) CountTaggedTraits(ctx context.Context, tagID uuid.UUID) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM tagged_traits WHERE tag_id = $1 AND NOT archived`, tagID).
		Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count tagged traits: %w", err)
	}
	return count, nil
}
