package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	s.echo.Use(s.requestLogger())
	s.echo.Use(middleware.Recover())
	s.echo.Use(ErrorHandlingMiddleware)
	s.echo.Use(correlationMiddleware)
	s.echo.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		ContentSecurityPolicy: "default-src 'self'; style-src 'self' 'unsafe-inline'",
	}))

	// Operational endpoints stay outside auth.
	s.echo.GET("/health/startup", s.handleHealthStartup)
	s.echo.GET("/health/live", s.handleHealthLive)
	s.echo.GET("/health/ready", s.handleHealthReady)
	s.echo.GET("/version", s.handleVersion)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Browser pages: CSRF-protected forms, session auth.
	pages := s.echo.Group("")
	pages.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
		TokenLookup:    "form:csrf_token,header:X-CSRF-Token",
		CookieName:     "_csrf",
		CookieHTTPOnly: true,
		CookieSecure:   s.config.AppEnv == "production",
		CookieSameSite: http.SameSiteStrictMode,
	}))
	pages.GET("/", s.handleLanding)
	pages.GET("/auth/login", s.handleLoginPage)
	pages.POST("/auth/login", s.handleLogin, newLoginRateLimiter())
	pages.POST("/auth/logout", s.handleLogout, s.requireAuth(true))
	pages.GET("/dashboard", s.handleDashboard, s.requireAuth(true))

	// JSON API: bearer token or session cookie.
	api := s.echo.Group("/api", s.requireAPIToken)

	api.GET("/studies", s.handleListStudies)
	api.GET("/studies/:accession", s.handleGetStudy)
	api.GET("/studies/:accession/versions", s.handleListStudyVersions)
	api.GET("/datasets", s.handleListDatasets)
	api.GET("/datasets/:accession", s.handleGetDataset)
	api.GET("/datasets/:accession/traits", s.handleListSourceTraits)
	api.GET("/traits/:accession", s.handleGetSourceTrait)
	api.GET("/harmonized-traits", s.handleListHarmonizedTraits)
	api.GET("/harmonized-traits/:id", s.handleGetHarmonizedTrait)

	api.GET("/search", s.handleSearch)

	api.GET("/tags", s.handleListTags)
	api.GET("/tags/:id", s.handleGetTag)
	api.POST("/tags", s.handleCreateTag, requireStaff)

	api.GET("/tagged-traits", s.handleListTaggedTraits)
	api.GET("/tagged-traits/:id", s.handleGetTaggedTrait)
	api.POST("/tagged-traits", s.handleTagTrait)
	api.POST("/tagged-traits/bulk", s.handleTagTraitsBulk)
	api.DELETE("/tagged-traits/:id", s.handleDeleteTaggedTrait)

	api.POST("/tagged-traits/:id/review", s.handleSubmitReview, requireStaff)
	api.PUT("/tagged-traits/:id/review", s.handleUpdateReview, requireStaff)
	api.POST("/reviews/:id/response", s.handleSubmitResponse)
	api.POST("/reviews/:id/decision", s.handleSubmitDecision, requireStaff)

	api.GET("/recipes/units", s.handleListUnitRecipes)
	api.GET("/recipes/units/:id", s.handleGetUnitRecipe)
	api.POST("/recipes/units", s.handleCreateUnitRecipe)
	api.PUT("/recipes/units/:id", s.handleUpdateUnitRecipe)
	api.GET("/recipes/harmonizations", s.handleListHarmonizationRecipes)
	api.GET("/recipes/harmonizations/:id", s.handleGetHarmonizationRecipe)
	api.POST("/recipes/harmonizations", s.handleCreateHarmonizationRecipe)
	api.PUT("/recipes/harmonizations/:id", s.handleUpdateHarmonizationRecipe)

	api.GET("/profile", s.handleProfile)
	api.POST("/tokens", s.handleIssueToken)
	api.POST("/users", s.handleRegisterUser, requireStaff)
	api.PUT("/users/:id/taggable-studies", s.handleSetTaggableStudies, requireStaff)
}

func (s *Server) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			slog.InfoContext(c.Request().Context(), "request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			)
			return nil
		},
	})
}
