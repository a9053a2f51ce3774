package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/UW-GAC/pie-sub001/internal/domain"
)

// Register creates a new account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, email, name, password string, isTagger bool) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		IsTagger:     isTagger,
	}
	if err := s.repos.Users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate checks email/password and returns the user. Unknown emails,
// wrong passwords and deactivated accounts all map to the same error so the
// login form can't be used to probe for accounts.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.repos.Users.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

// GetUser retrieves a user by ID.
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.repos.Users.GetByID(ctx, id)
}

// SetTaggableStudies replaces a tagger's assigned study set. Staff only.
func (s *Service) SetTaggableStudies(ctx context.Context, actor *domain.User, userID uuid.UUID, studies []int64) error {
	if !actor.IsStaff {
		return domain.ErrNotAuthorized
	}
	if _, err := s.repos.Users.GetByID(ctx, userID); err != nil {
		return err
	}
	return s.repos.Users.SetTaggableStudies(ctx, userID, studies)
}

// Profile is the dashboard view of an account.
type Profile struct {
	User           *domain.User
	SavedSearches  []domain.SavedSearch
	RecentSearches []string
	TaggedCount    int64
}

// GetProfile assembles a user's profile page data.
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	searches, err := s.repos.Users.ListSavedSearches(ctx, userID, 20)
	if err != nil {
		return nil, err
	}

	recent, err := s.RecentSearches(ctx, userID)
	if err != nil {
		// Redis trouble degrades the page, it doesn't break it.
		recent = nil
	}

	_, total, err := s.repos.TaggedTraits.List(ctx, domain.TaggedTraitFilter{CreatorID: userID}, domain.ListParams{Page: 1, PerPage: 1})
	if err != nil {
		return nil, err
	}

	return &Profile{
		User:           user,
		SavedSearches:  searches,
		RecentSearches: recent,
		TaggedCount:    total,
	}, nil
}

// tokenClaims are the registered claims carried by API tokens.
type tokenClaims struct {
	jwt.RegisteredClaims
}

// IssueAPIToken mints a signed bearer token for programmatic API access.
func (s *Service) IssueAPIToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if _, err := s.repos.Users.GetByID(ctx, userID); err != nil {
		return "", err
	}

	now := s.clock.Now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.opts.TokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.opts.SigningKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign API token: %w", err)
	}
	return signed, nil
}

// VerifyAPIToken validates a bearer token and returns the account it belongs
// to. The account must still exist and be active.
func (s *Service) VerifyAPIToken(ctx context.Context, tokenString string) (*domain.User, error) {
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.opts.SigningKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(s.clock.Now))
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repos.Users.GetByID(ctx, userID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}
