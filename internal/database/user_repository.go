package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/UW-GAC/pie-sub001/internal/domain"
)

// userColumns must match the Scan order in scanUser.
const userColumns = `id, email, name, password_hash, is_staff, is_tagger, is_active, created_at, updated_at`

// savedSearchColumns must match the Scan order in scanSavedSearch.
const savedSearchColumns = `id, user_id, search_text, study_accession, hit_count, last_run_at, created_at`

// UserRepo implements domain.UserRepository backed by PostgreSQL.
type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash,
		&u.IsStaff, &u.IsTagger, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) loadTaggableStudies(ctx context.Context, user *domain.User) error {
	rows, err := r.pool.Query(ctx,
		`SELECT study_accession FROM user_taggable_studies WHERE user_id = $1 ORDER BY study_accession`,
		user.ID)
	if err != nil {
		return fmt.Errorf("failed to load taggable studies: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var accession int64
		if err := rows.Scan(&accession); err != nil {
			return fmt.Errorf("failed to scan taggable study: %w", err)
		}
		user.TaggableStudies = append(user.TaggableStudies, accession)
	}
	return rows.Err()
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadTaggableStudies(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, strings.ToLower(email)))
	if err != nil {
		return nil, err
	}
	if err := r.loadTaggableStudies(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepo) Create(ctx context.Context, user *domain.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, name, password_hash, is_staff, is_tagger)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_active, created_at, updated_at
	`, user.Email, user.Name, user.PasswordHash, user.IsStaff, user.IsTagger).
		Scan(&user.ID, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if isUniqueViolation(err) {
		return domain.ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// SetTaggableStudies replaces the user's taggable study set.
func (r *UserRepo) SetTaggableStudies(ctx context.Context, userID uuid.UUID, studies []int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(ctx, `DELETE FROM user_taggable_studies WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear taggable studies: %w", err)
	}

	for _, accession := range studies {
		if _, err := tx.Exec(ctx, `
			INSERT INTO user_taggable_studies (user_id, study_accession) VALUES ($1, $2)
		`, userID, accession); err != nil {
			return fmt.Errorf("failed to add taggable study phs%06d: %w", accession, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *UserRepo) SaveSearch(ctx context.Context, search *domain.SavedSearch) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO saved_searches (user_id, search_text, study_accession, hit_count, last_run_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id, search_text, study_accession) DO UPDATE SET
			hit_count = EXCLUDED.hit_count,
			last_run_at = NOW()
		RETURNING id, last_run_at, created_at
	`, search.UserID, search.Text, search.StudyAccession, search.HitCount).
		Scan(&search.ID, &search.LastRunAt, &search.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save search: %w", err)
	}
	return nil
}

func (r *UserRepo) ListSavedSearches(ctx context.Context, userID uuid.UUID, limit int) ([]domain.SavedSearch, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+savedSearchColumns+` FROM saved_searches WHERE user_id = $1 ORDER BY last_run_at DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved searches: %w", err)
	}
	defer rows.Close()

	var searches []domain.SavedSearch
	for rows.Next() {
		var s domain.SavedSearch
		if err := rows.Scan(&s.ID, &s.UserID, &s.Text, &s.StudyAccession,
			&s.HitCount, &s.LastRunAt, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan saved search: %w", err)
		}
		searches = append(searches, s)
	}
	return searches, rows.Err()
}
