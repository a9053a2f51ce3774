package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UW-GAC/pie-sub001/internal/app"
	"github.com/UW-GAC/pie-sub001/internal/domain"
)

func formRequest(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return req
}

func TestHandleLogin_Success(t *testing.T) {
	user := taggerUser(7)
	mock := &mockAppService{
		authenticateFn: func(_ context.Context, email, password string) (*domain.User, error) {
			assert.Equal(t, "tagger@example.org", email)
			assert.Equal(t, "correct horse battery", password)
			return user, nil
		},
	}
	srv := newTestServer(t, mock)

	req := formRequest("/auth/login", url.Values{
		"email":    {"tagger@example.org"},
		"password": {"correct horse battery"},
	})
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)

	err := srv.handleLogin(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
	assert.NotEmpty(t, rec.Header().Get("Set-Cookie"))
}

func TestHandleLogin_WrongPassword(t *testing.T) {
	mock := &mockAppService{
		authenticateFn: func(_ context.Context, _, _ string) (*domain.User, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	srv := newTestServer(t, mock)

	req := formRequest("/auth/login", url.Values{
		"email":    {"tagger@example.org"},
		"password": {"nope"},
	})
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)

	err := srv.handleLogin(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email or password")
}

func TestHandleLogin_MissingFields(t *testing.T) {
	srv := newTestServer(t, &mockAppService{})

	req := formRequest("/auth/login", url.Values{"email": {"tagger@example.org"}})
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)

	err := srv.handleLogin(c)

	require.NoError(t, err)
	assert.Contains(t, rec.Body.String(), "Email and password are required")
}

func TestSessionUser_RoundTrip(t *testing.T) {
	user := taggerUser(7)
	mock := &mockAppService{
		getUserFn: func(_ context.Context, id uuid.UUID) (*domain.User, error) {
			assert.Equal(t, user.ID, id)
			return user, nil
		},
	}
	srv := newTestServer(t, mock)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	setSessionUser(t, srv, req, user.ID)
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)

	got, err := srv.sessionUser(c)

	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestSessionUser_Deactivated(t *testing.T) {
	user := taggerUser(7)
	user.IsActive = false
	mock := &mockAppService{
		getUserFn: func(_ context.Context, _ uuid.UUID) (*domain.User, error) {
			return user, nil
		},
	}
	srv := newTestServer(t, mock)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	setSessionUser(t, srv, req, user.ID)
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)

	_, err := srv.sessionUser(c)

	require.Error(t, err)
}

func TestRequireAPIToken_Bearer(t *testing.T) {
	user := staffUser()
	mock := &mockAppService{
		verifyAPITokenFn: func(_ context.Context, token string) (*domain.User, error) {
			assert.Equal(t, "good-token", token)
			return user, nil
		},
	}
	srv := newTestServer(t, mock)

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)

	handler := srv.requireAPIToken(func(c echo.Context) error {
		assert.Equal(t, user.ID, currentUser(c).ID)
		return c.NoContent(http.StatusOK)
	})

	err := ErrorHandlingMiddleware(handler)(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAPIToken_BadToken(t *testing.T) {
	mock := &mockAppService{
		verifyAPITokenFn: func(_ context.Context, _ string) (*domain.User, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	srv := newTestServer(t, mock)

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.Header.Set("Authorization", "Bearer forged")
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)

	handler := srv.requireAPIToken(func(c echo.Context) error {
		t.Fatal("handler should not run")
		return nil
	})

	err := ErrorHandlingMiddleware(handler)(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAPIToken_NoCredentials(t *testing.T) {
	srv := newTestServer(t, &mockAppService{})

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)

	handler := srv.requireAPIToken(func(c echo.Context) error {
		t.Fatal("handler should not run")
		return nil
	})

	err := ErrorHandlingMiddleware(handler)(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireStaff(t *testing.T) {
	srv := newTestServer(t, &mockAppService{})

	req := httptest.NewRequest(http.MethodPost, "/api/tags", nil)
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)
	c.Set(contextKeyUser, taggerUser(7))

	handler := requireStaff(func(c echo.Context) error {
		t.Fatal("handler should not run")
		return nil
	})

	err := ErrorHandlingMiddleware(handler)(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandleIssueToken(t *testing.T) {
	user := taggerUser(7)
	mock := &mockAppService{
		issueAPITokenFn: func(_ context.Context, userID uuid.UUID) (string, error) {
			assert.Equal(t, user.ID, userID)
			return "signed.jwt.token", nil
		},
	}
	srv := newTestServer(t, mock)

	req := httptest.NewRequest(http.MethodPost, "/api/tokens", nil)
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)
	c.Set(contextKeyUser, user)

	err := callHandler(srv.handleIssueToken, c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"token":"signed.jwt.token"`)
}

func TestHandleProfile(t *testing.T) {
	user := taggerUser(7, 8)
	mock := &mockAppService{
		getProfileFn: func(_ context.Context, userID uuid.UUID) (*app.Profile, error) {
			assert.Equal(t, user.ID, userID)
			return &app.Profile{
				User:           user,
				SavedSearches:  []domain.SavedSearch{{ID: uuid.New(), Text: "bmi", HitCount: 3}},
				RecentSearches: []string{"bmi", "height"},
				TaggedCount:    12,
			}, nil
		},
	}
	srv := newTestServer(t, mock)

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)
	c.Set(contextKeyUser, user)

	err := callHandler(srv.handleProfile, c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"tagged_count":12`)
	assert.Contains(t, body, `"recent_searches":["bmi","height"]`)
	assert.Contains(t, body, `"hit_count":3`)
}
