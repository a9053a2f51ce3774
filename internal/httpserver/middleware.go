package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"

	"github.com/UW-GAC/pie-sub001/internal/domain"
	"github.com/UW-GAC/pie-sub001/internal/metrics"
	"github.com/UW-GAC/pie-sub001/internal/platform/correlation"
	apperrors "github.com/UW-GAC/pie-sub001/internal/platform/errors"
)

const contextKeyUser = "currentUser"

// correlationMiddleware ensures every request carries a correlation ID,
// honoring an incoming X-Correlation-ID header when present.
func correlationMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Request().Header.Get("X-Correlation-ID")
		if id == "" {
			id = correlation.NewID()
		}

		ctx := correlation.WithID(c.Request().Context(), id)
		c.SetRequest(c.Request().WithContext(ctx))
		c.Response().Header().Set("X-Correlation-ID", id)

		return next(c)
	}
}

// ErrorHandlingMiddleware converts structured application errors into JSON
// responses with the appropriate HTTP status code.
func ErrorHandlingMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := next(c)
		if err == nil {
			return nil
		}

		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			return httpErr
		}

		appErr := apperrors.AsStructuredError(err)

		logError(c, appErr)
		metrics.HTTPErrorsTotal.WithLabelValues(string(appErr.Type)).Inc()

		return c.JSON(appErr.HTTPStatus(), appErr.ToResponse())
	}
}

func logError(c echo.Context, appErr *apperrors.Error) {
	args := []any{
		"type", appErr.Type,
		"status", appErr.HTTPStatus(),
		"path", c.Request().URL.Path,
		"method", c.Request().Method,
	}
	if appErr.Cause != nil {
		args = append(args, "cause", appErr.Cause.Error())
	}

	ctx := c.Request().Context()
	switch appErr.Type {
	case apperrors.TypeInternal, apperrors.TypeExternal:
		slog.ErrorContext(ctx, appErr.Message, args...)
	case apperrors.TypeValidation, apperrors.TypeNotFound:
		slog.DebugContext(ctx, appErr.Message, args...)
	default:
		slog.WarnContext(ctx, appErr.Message, args...)
	}
}

// serviceError maps domain sentinel errors onto structured errors so the
// error middleware can pick the right status code.
func serviceError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrStudyNotFound),
		errors.Is(err, domain.ErrDatasetNotFound),
		errors.Is(err, domain.ErrTraitNotFound),
		errors.Is(err, domain.ErrTagNotFound),
		errors.Is(err, domain.ErrTaggedTraitNotFound),
		errors.Is(err, domain.ErrReviewNotFound),
		errors.Is(err, domain.ErrRecipeNotFound),
		errors.Is(err, domain.ErrHomeContentNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		return apperrors.NotFoundError(err.Error())
	case errors.Is(err, domain.ErrTagExists),
		errors.Is(err, domain.ErrAlreadyTagged),
		errors.Is(err, domain.ErrAlreadyReviewed),
		errors.Is(err, domain.ErrAlreadyResponded),
		errors.Is(err, domain.ErrAlreadyDecided),
		errors.Is(err, domain.ErrRecipeExists),
		errors.Is(err, domain.ErrEmailTaken):
		return apperrors.ConflictError(err.Error())
	case errors.Is(err, domain.ErrReviewNotFollowup),
		errors.Is(err, domain.ErrStudyAgreed):
		return apperrors.ValidationError(err.Error())
	case errors.Is(err, domain.ErrNotAuthorized):
		return apperrors.ForbiddenError(err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		return apperrors.UnauthorizedError(err.Error())
	default:
		return apperrors.InternalError("An unexpected error occurred", err)
	}
}

// requireAuth resolves the signed-in user from the session cookie and stores
// it on the request context. Browser routes redirect to the login page,
// everything else gets a 401.
func (s *Server) requireAuth(redirect bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := s.sessionUser(c)
			if err != nil {
				if redirect {
					return c.Redirect(http.StatusSeeOther, "/auth/login")
				}
				return apperrors.UnauthorizedError("Authentication required")
			}
			c.Set(contextKeyUser, user)
			return next(c)
		}
	}
}

// requireAPIToken authenticates JSON API requests via a bearer token, falling
// back to the session cookie so the browser can call the API directly.
func (s *Server) requireAPIToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get("Authorization")
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			user, err := s.app.VerifyAPIToken(c.Request().Context(), token)
			if err != nil {
				return apperrors.UnauthorizedError("Invalid or expired token")
			}
			c.Set(contextKeyUser, user)
			return next(c)
		}

		user, err := s.sessionUser(c)
		if err != nil {
			return apperrors.UnauthorizedError("Authentication required")
		}
		c.Set(contextKeyUser, user)
		return next(c)
	}
}

// requireStaff rejects non-staff users. It must run after requireAuth or
// requireAPIToken.
func requireStaff(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user := currentUser(c)
		if user == nil || !user.IsStaff {
			return apperrors.ForbiddenError("Staff access required")
		}
		return next(c)
	}
}

func (s *Server) sessionUser(c echo.Context) (*domain.User, error) {
	sess, err := s.sessionStore.Get(c.Request(), sessionName)
	if err != nil {
		return nil, err
	}

	raw, ok := sess.Values[sessionKeyUser].(string)
	if !ok {
		return nil, errors.New("no user in session")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}

	user, err := s.app.GetUser(c.Request().Context(), userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, errors.New("user is deactivated")
	}
	return user, nil
}

func currentUser(c echo.Context) *domain.User {
	user, _ := c.Get(contextKeyUser).(*domain.User)
	return user
}

func (s *Server) clearSession(c echo.Context) error {
	sess, err := s.sessionStore.Get(c.Request(), sessionName)
	if err != nil {
		// A corrupt cookie still gets replaced below.
		sess = sessions.NewSession(s.sessionStore, sessionName)
	}
	opts := *s.sessionStore.Options
	opts.MaxAge = -1
	sess.Options = &opts
	return sess.Save(c.Request(), c.Response())
}
