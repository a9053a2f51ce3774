// Package httpserver exposes the catalog over HTTP: server-rendered pages
// for login and the dashboard, and a JSON API for catalog browsing, search,
// and the curation workflow.
package httpserver

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"

	"github.com/UW-GAC/pie-sub001/internal/app"
	"github.com/UW-GAC/pie-sub001/internal/domain"
	"github.com/UW-GAC/pie-sub001/internal/platform/config"
	"github.com/UW-GAC/pie-sub001/web"
)

// appService is the slice of the application layer the HTTP handlers use.
type appService interface {
	GetStudy(ctx context.Context, accession int64) (*domain.Study, error)
	ListStudies(ctx context.Context, params domain.ListParams) ([]domain.Study, int64, error)
	ListStudyVersions(ctx context.Context, studyAccession int64) ([]domain.StudyVersion, error)
	GetDataset(ctx context.Context, accession int64) (*domain.Dataset, error)
	ListDatasets(ctx context.Context, params domain.ListParams) ([]domain.Dataset, int64, error)
	GetSourceTrait(ctx context.Context, accession int64) (*domain.SourceTrait, error)
	ListSourceTraits(ctx context.Context, datasetAccession int64, params domain.ListParams) ([]domain.SourceTrait, int64, error)
	GetHarmonizedTrait(ctx context.Context, id int64) (*domain.HarmonizedTrait, error)
	ListHarmonizedTraits(ctx context.Context, params domain.ListParams) ([]domain.HarmonizedTrait, int64, error)
	HomeContents(ctx context.Context) ([]domain.HomeContent, error)

	Search(ctx context.Context, userID uuid.UUID, query string, filter domain.SearchFilter) ([]domain.SearchResult, error)

	ListTags(ctx context.Context) ([]domain.Tag, error)
	GetTag(ctx context.Context, id uuid.UUID) (*domain.Tag, int64, error)
	CreateTag(ctx context.Context, creator *domain.User, tag *domain.Tag) error
	TagTrait(ctx context.Context, tagger *domain.User, tagID uuid.UUID, traitAccession int64) (*domain.TaggedTrait, error)
	TagTraitsBulk(ctx context.Context, tagger *domain.User, tagID uuid.UUID, traitAccessions []int64) ([]domain.TaggedTrait, error)
	GetTaggedTrait(ctx context.Context, id uuid.UUID) (*domain.TaggedTrait, error)
	ListTaggedTraits(ctx context.Context, filter domain.TaggedTraitFilter, params domain.ListParams) ([]domain.TaggedTrait, int64, error)
	DeleteTaggedTrait(ctx context.Context, user *domain.User, id uuid.UUID) error

	SubmitDCCReview(ctx context.Context, reviewer *domain.User, taggedTraitID uuid.UUID, status domain.ReviewStatus, comment string) (*domain.DCCReview, error)
	UpdateDCCReview(ctx context.Context, reviewer *domain.User, reviewID uuid.UUID, status domain.ReviewStatus, comment string) (*domain.DCCReview, error)
	SubmitStudyResponse(ctx context.Context, responder *domain.User, reviewID uuid.UUID, status domain.ResponseStatus, comment string) (*domain.StudyResponse, error)
	SubmitDCCDecision(ctx context.Context, decider *domain.User, reviewID uuid.UUID, decision domain.Decision, comment string) (*domain.DCCDecision, error)

	GetUnitRecipe(ctx context.Context, user *domain.User, id uuid.UUID) (*domain.UnitRecipe, error)
	ListUnitRecipes(ctx context.Context, user *domain.User, params domain.ListParams) ([]domain.UnitRecipe, int64, error)
	CreateUnitRecipe(ctx context.Context, user *domain.User, recipe *domain.UnitRecipe) error
	UpdateUnitRecipe(ctx context.Context, user *domain.User, recipe *domain.UnitRecipe) error
	GetHarmonizationRecipe(ctx context.Context, user *domain.User, id uuid.UUID) (*domain.HarmonizationRecipe, error)
	ListHarmonizationRecipes(ctx context.Context, user *domain.User, params domain.ListParams) ([]domain.HarmonizationRecipe, int64, error)
	CreateHarmonizationRecipe(ctx context.Context, user *domain.User, recipe *domain.HarmonizationRecipe) error
	UpdateHarmonizationRecipe(ctx context.Context, user *domain.User, recipe *domain.HarmonizationRecipe) error

	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	Register(ctx context.Context, email, name, password string, isTagger bool) (*domain.User, error)
	SetTaggableStudies(ctx context.Context, actor *domain.User, userID uuid.UUID, studies []int64) error
	GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*app.Profile, error)
	IssueAPIToken(ctx context.Context, userID uuid.UUID) (string, error)
	VerifyAPIToken(ctx context.Context, tokenString string) (*domain.User, error)
}

type Server struct {
	echo   *echo.Echo
	config *config.Config

	app appService

	templates    *template.Template
	sessionStore *sessions.CookieStore
	healthChecks []HealthCheck
	startTime    time.Time
}

func NewServer(cfg *config.Config, app appService, healthChecks []HealthCheck) (*Server, error) {
	templates, err := template.ParseFS(web.TemplateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:         e,
		config:       cfg,
		app:          app,
		templates:    templates,
		sessionStore: setupSessionStore(cfg),
		healthChecks: healthChecks,
		startTime:    time.Now(),
	}

	srv.registerRoutes()

	return srv, nil
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

// Session keys
const (
	sessionName    = "pie-session"
	sessionKeyUser = "user_id"
)

func (s *Server) renderTemplate(c echo.Context, name string, data any) error {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		slog.Error("Template execution failed", "path", c.Request().URL.Path, "error", err)
		if err := c.String(http.StatusInternalServerError, "Failed to render page"); err != nil {
			return fmt.Errorf("failed to send error response: %w", err)
		}
		return nil
	}
	if err := c.HTMLBlob(http.StatusOK, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to send HTML response: %w", err)
	}
	return nil
}

func setupSessionStore(cfg *config.Config) *sessions.CookieStore {
	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.AppEnv == "production",
		SameSite: http.SameSiteLaxMode,
	}
	return sessionStore
}
