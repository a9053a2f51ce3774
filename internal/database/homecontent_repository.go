package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/UW-GAC/pie-sub001/internal/domain"
)

// HomeContentRepo implements domain.HomeContentRepository backed by PostgreSQL.
type HomeContentRepo struct {
	pool *pgxpool.Pool
}

func NewHomeContentRepo(pool *pgxpool.Pool) *HomeContentRepo {
	return &HomeContentRepo{pool: pool}
}

func (r *HomeContentRepo) ListOrdered(ctx context.Context) ([]domain.HomeContent, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, title, body, position, created_at, updated_at
		FROM home_contents
		ORDER BY position, created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list home contents: %w", err)
	}
	defer rows.Close()

	var contents []domain.HomeContent
	for rows.Next() {
		var hc domain.HomeContent
		if err := rows.Scan(&hc.ID, &hc.Title, &hc.Body, &hc.Position, &hc.CreatedAt, &hc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan home content: %w", err)
		}
		contents = append(contents, hc)
	}
	return contents, rows.Err()
}

func (r *HomeContentRepo) Create(ctx context.Context, content *domain.HomeContent) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO home_contents (title, body, position)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, content.Title, content.Body, content.Position).
		Scan(&content.ID, &content.CreatedAt, &content.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create home content: %w", err)
	}
	return nil
}

func (r *HomeContentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM home_contents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete home content: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrHomeContentNotFound
	}
	return nil
}
