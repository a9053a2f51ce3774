package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func csrfToken(c echo.Context) string {
	token, _ := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string)
	return token
}

func (s *Server) handleLanding(c echo.Context) error {
	contents, err := s.app.HomeContents(c.Request().Context())
	if err != nil {
		// The landing page still renders without its blurbs.
		contents = nil
	}

	user, _ := s.sessionUser(c)
	return s.renderTemplate(c, "landing.html", map[string]any{
		"Contents": contents,
		"User":     user,
	})
}

func (s *Server) handleLoginPage(c echo.Context) error {
	if user, err := s.sessionUser(c); err == nil && user != nil {
		return c.Redirect(http.StatusSeeOther, "/dashboard")
	}
	return s.renderTemplate(c, "login.html", map[string]any{
		"CSRFToken": csrfToken(c),
	})
}

func (s *Server) handleLogin(c echo.Context) error {
	email := c.FormValue("email")
	password := c.FormValue("password")
	if email == "" || password == "" {
		return s.renderLoginError(c, "Email and password are required")
	}

	user, err := s.app.Authenticate(c.Request().Context(), email, password)
	if err != nil {
		return s.renderLoginError(c, "Invalid email or password")
	}

	sess, err := s.sessionStore.Get(c.Request(), sessionName)
	if err != nil {
		// A stale or corrupt cookie is replaced with a fresh session.
		sess.Values = map[any]any{}
	}
	sess.Values[sessionKeyUser] = user.ID.String()
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return err
	}

	return c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (s *Server) renderLoginError(c echo.Context, message string) error {
	return s.renderTemplate(c, "login.html", map[string]any{
		"CSRFToken": csrfToken(c),
		"Error":     message,
	})
}

func (s *Server) handleLogout(c echo.Context) error {
	if err := s.clearSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) handleDashboard(c echo.Context) error {
	user := currentUser(c)

	profile, err := s.app.GetProfile(c.Request().Context(), user.ID)
	if err != nil {
		return serviceError(err)
	}

	return s.renderTemplate(c, "dashboard.html", map[string]any{
		"User":           user,
		"TaggedCount":    profile.TaggedCount,
		"SavedSearches":  profile.SavedSearches,
		"RecentSearches": profile.RecentSearches,
		"CSRFToken":      csrfToken(c),
	})
}
