package httpserver

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/UW-GAC/pie-sub001/internal/app"
	"github.com/UW-GAC/pie-sub001/internal/domain"
	"github.com/UW-GAC/pie-sub001/internal/platform/config"
)

// --- Mock implementations ---

type mockAppService struct {
	getStudyFn             func(ctx context.Context, accession int64) (*domain.Study, error)
	listStudiesFn          func(ctx context.Context, params domain.ListParams) ([]domain.Study, int64, error)
	listStudyVersionsFn    func(ctx context.Context, studyAccession int64) ([]domain.StudyVersion, error)
	getDatasetFn           func(ctx context.Context, accession int64) (*domain.Dataset, error)
	listDatasetsFn         func(ctx context.Context, params domain.ListParams) ([]domain.Dataset, int64, error)
	getSourceTraitFn       func(ctx context.Context, accession int64) (*domain.SourceTrait, error)
	listSourceTraitsFn     func(ctx context.Context, datasetAccession int64, params domain.ListParams) ([]domain.SourceTrait, int64, error)
	getHarmonizedTraitFn   func(ctx context.Context, id int64) (*domain.HarmonizedTrait, error)
	listHarmonizedTraitsFn func(ctx context.Context, params domain.ListParams) ([]domain.HarmonizedTrait, int64, error)
	homeContentsFn         func(ctx context.Context) ([]domain.HomeContent, error)

	searchFn func(ctx context.Context, userID uuid.UUID, query string, filter domain.SearchFilter) ([]domain.SearchResult, error)

	listTagsFn          func(ctx context.Context) ([]domain.Tag, error)
	getTagFn            func(ctx context.Context, id uuid.UUID) (*domain.Tag, int64, error)
	createTagFn         func(ctx context.Context, creator *domain.User, tag *domain.Tag) error
	tagTraitFn          func(ctx context.Context, tagger *domain.User, tagID uuid.UUID, traitAccession int64) (*domain.TaggedTrait, error)
	tagTraitsBulkFn     func(ctx context.Context, tagger *domain.User, tagID uuid.UUID, traitAccessions []int64) ([]domain.TaggedTrait, error)
	getTaggedTraitFn    func(ctx context.Context, id uuid.UUID) (*domain.TaggedTrait, error)
	listTaggedTraitsFn  func(ctx context.Context, filter domain.TaggedTraitFilter, params domain.ListParams) ([]domain.TaggedTrait, int64, error)
	deleteTaggedTraitFn func(ctx context.Context, user *domain.User, id uuid.UUID) error

	submitDCCReviewFn     func(ctx context.Context, reviewer *domain.User, taggedTraitID uuid.UUID, status domain.ReviewStatus, comment string) (*domain.DCCReview, error)
	updateDCCReviewFn     func(ctx context.Context, reviewer *domain.User, reviewID uuid.UUID, status domain.ReviewStatus, comment string) (*domain.DCCReview, error)
	submitStudyResponseFn func(ctx context.Context, responder *domain.User, reviewID uuid.UUID, status domain.ResponseStatus, comment string) (*domain.StudyResponse, error)
	submitDCCDecisionFn   func(ctx context.Context, decider *domain.User, reviewID uuid.UUID, decision domain.Decision, comment string) (*domain.DCCDecision, error)

	getUnitRecipeFn             func(ctx context.Context, user *domain.User, id uuid.UUID) (*domain.UnitRecipe, error)
	listUnitRecipesFn           func(ctx context.Context, user *domain.User, params domain.ListParams) ([]domain.UnitRecipe, int64, error)
	createUnitRecipeFn          func(ctx context.Context, user *domain.User, recipe *domain.UnitRecipe) error
	updateUnitRecipeFn          func(ctx context.Context, user *domain.User, recipe *domain.UnitRecipe) error
	getHarmonizationRecipeFn    func(ctx context.Context, user *domain.User, id uuid.UUID) (*domain.HarmonizationRecipe, error)
	listHarmonizationRecipesFn  func(ctx context.Context, user *domain.User, params domain.ListParams) ([]domain.HarmonizationRecipe, int64, error)
	createHarmonizationRecipeFn func(ctx context.Context, user *domain.User, recipe *domain.HarmonizationRecipe) error
	updateHarmonizationRecipeFn func(ctx context.Context, user *domain.User, recipe *domain.HarmonizationRecipe) error

	authenticateFn       func(ctx context.Context, email, password string) (*domain.User, error)
	registerFn           func(ctx context.Context, email, name, password string, isTagger bool) (*domain.User, error)
	setTaggableStudiesFn func(ctx context.Context, actor *domain.User, userID uuid.UUID, studies []int64) error
	getUserFn            func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	getProfileFn         func(ctx context.Context, userID uuid.UUID) (*app.Profile, error)
	issueAPITokenFn      func(ctx context.Context, userID uuid.UUID) (string, error)
	verifyAPITokenFn     func(ctx context.Context, tokenString string) (*domain.User, error)
}

var errNotImplemented = errors.New("not implemented")

func (m *mockAppService) GetStudy(ctx context.Context, accession int64) (*domain.Study, error) {
	if m.getStudyFn != nil {
		return m.getStudyFn(ctx, accession)
	}
	return nil, errNotImplemented
}

func (m *mockAppService) ListStudies(ctx context.Context, params domain.ListParams) ([]domain.Study, int64, error) {
	if m.listStudiesFn != nil {
		return m.listStudiesFn(ctx, params)
	}
	return nil, 0, errNotImplemented
}

func (m *mockAppService) ListStudyVersions(ctx context.Context, studyAccession int64) ([]domain.StudyVersion, error) {
	if m.listStudyVersionsFn != nil {
		return m.listStudyVersionsFn(ctx, studyAccession)
	}
	return nil, errNotImplemented
}

func (m *mockAppService) GetDataset(ctx context.Context, accession int64) (*domain.Dataset, error) {
	if m.getDatasetFn != nil {
		return m.getDatasetFn(ctx, accession)
	}
	return nil, errNotImplemented
}

func (m *mockAppService) ListDatasets(ctx context.Context, params domain.ListParams) ([]domain.Dataset, int64, error) {
	if m.listDatasetsFn != nil {
		return m.listDatasetsFn(ctx, params)
	}
	return nil, 0, errNotImplemented
}

func (m *mockAppService) GetSourceTrait(ctx context.Context, accession int64) (*domain.SourceTrait, error) {
	if m.getSourceTraitFn != nil {
		return m.getSourceTraitFn(ctx, accession)
	}
	return nil, errNotImplemented
}

func (m *mockAppService) ListSourceTraits(ctx context.Context, datasetAccession int64, params domain.ListParams) ([]domain.SourceTrait, int64, error) {
	if m.listSourceTraitsFn != nil {
		return m.listSourceTraitsFn(ctx, datasetAccession, params)
	}
	return nil, 0, errNotImplemented
}

func (m *mockAppService) GetHarmonizedTrait(ctx context.Context, id int64) (*domain.HarmonizedTrait, error) {
	if m.getHarmonizedTraitFn != nil {
		return m.getHarmonizedTraitFn(ctx, id)
	}
	return nil, errNotImplemented
}

func (m *mockAppService) ListHarmonizedTraits(ctx context.Context, params domain.ListParams) ([]domain.HarmonizedTrait, int64, error) {
	if m.listHarmonizedTraitsFn != nil {
		return m.listHarmonizedTraitsFn(ctx, params)
	}
	return nil, 0, errNotImplemented
}

func (m *mockAppService) HomeContents(ctx context.Context) ([]domain.HomeContent, error) {
	if m.homeContentsFn != nil {
		return m.homeContentsFn(ctx)
	}
	return nil, nil
}

func (m *mockAppService) Search(ctx context.Context, userID uuid.UUID, query string, filter domain.SearchFilter) ([]domain.SearchResult, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, userID, query, filter)
	}
	return nil, errNotImplemented
}

func (m *mockAppService) ListTags(ctx context.Context) ([]domain.Tag, error) {
	if m.listTagsFn != nil {
		return m.listTagsFn(ctx)
	}
	return nil, errNotImplemented
}

func (m *mockAppService) GetTag(ctx context.Context, id uuid.UUID) (*domain.Tag, int64, error) {
	if m.getTagFn != nil {
		return m.getTagFn(ctx, id)
	}
	return nil, 0, errNotImplemented
}

func (m *mockAppService) CreateTag(ctx context.Context, creator *domain.User, tag *domain.Tag) error {
	if m.createTagFn != nil {
		return m.createTagFn(ctx, creator, tag)
	}
	return errNotImplemented
}

func (m *mockAppService) TagTrait(ctx context.Context, tagger *domain.User, tagID uuid.UUID, traitAccession int64) (*domain.TaggedTrait, error) {
	if m.tagTraitFn != nil {
		return m.tagTraitFn(ctx, tagger, tagID, traitAccession)
	}
	return nil, errNotImplemented
}

func (m *mockAppService) TagTraitsBulk(ctx context.Context, tagger *domain.User, tagID uuid.UUID, traitAccessions []int64) ([]domain.TaggedTrait, error) {
	if m.tagTraitsBulkFn != nil {
		return m.tagTraitsBulkFn(ctx, tagger, tagID, traitAccessions)
	}
	return nil, errNotImplemented
}

func (m *mockAppService) GetTaggedTrait(ctx context.Context, id uuid.UUID) (*domain.TaggedTrait, error) {
	if m.getTaggedTraitFn != nil {
		return m.getTaggedTraitFn(ctx, id)
	}
	return nil, errNotImplemented
}

func (m *mockAppService) ListTaggedTraits(ctx context.Context, filter domain.TaggedTraitFilter, params domain.ListParams) ([]domain.TaggedTrait, int64, error) {
	if m.listTaggedTraitsFn != nil {
		return m.listTaggedTraitsFn(ctx, filter, params)
	}
	return nil, 0, errNotImplemented
}

func (m *mockAppService) DeleteTaggedTrait(ctx context.Context, user *domain.User, id uuid.UUID) error {
	if m.deleteTaggedTraitFn != nil {
		return m.deleteTaggedTraitFn(ctx, user, id)
	}
	return errNotImplemented
}

func (m *mockAppService) SubmitDCCReview(ctx context.Context, reviewer *domain.User, taggedTraitID uuid.UUID, status domain.ReviewStatus, comment string) (*domain.DCCReview, error) {
	if m.submitDCCReviewFn != nil {
		return m.submitDCCReviewFn(ctx, reviewer, taggedTraitID, status, comment)
	}
	return nil, errNotImplemented
}

func (m *mockAppService) UpdateDCCReview(ctx context.Context, reviewer *domain.User, reviewID uuid.UUID, status domain.ReviewStatus, comment string) (*domain.DCCReview, error) {
	if m.updateDCCReviewFn != nil {
		return m.updateDCCReviewFn(ctx, reviewer, reviewID, status, comment)
	}
	return nil, errNotImplemented
}

func (m *mockAppService) SubmitStudyResponse(ctx context.Context, responder *domain.User, reviewID uuid.UUID, status domain.ResponseStatus, comment string) (*domain.StudyResponse, error) {
	if m.submitStudyResponseFn != nil {
		return m.submitStudyResponseFn(ctx, responder, reviewID, status, comment)
	}
	return nil, errNotImplemented
}

func (m *mockAppService) SubmitDCCDecision(ctx context.Context, decider *domain.User, reviewID uuid.UUID, decision domain.Decision, comment string) (*domain.DCCDecision, error) {
	if m.submitDCCDecisionFn != nil {
		return m.submitDCCDecisionFn(ctx, decider, reviewID, decision, comment)
	}
	return nil, errNotImplemented
}

func (m *mockAppService) GetUnitRecipe(ctx context.Context, user *domain.User, id uuid.UUID) (*domain.UnitRecipe, error) {
	if m.getUnitRecipeFn != nil {
		return m.getUnitRecipeFn(ctx, user, id)
	}
	return nil, errNotImplemented
}

func (m *mockAppService) ListUnitRecipes(ctx context.Context, user *domain.User, params domain.ListParams) ([]domain.UnitRecipe, int64, error) {
	if m.listUnitRecipesFn != nil {
		return m.listUnitRecipesFn(ctx, user, params)
	}
	return nil, 0, errNotImplemented
}

func (m *mockAppService) CreateUnitRecipe(ctx context.Context, user *domain.User, recipe *domain.UnitRecipe) error {
	if m.createUnitRecipeFn != nil {
		return m.createUnitRecipeFn(ctx, user, recipe)
	}
	return errNotImplemented
}

func (m *mockAppService) UpdateUnitRecipe(ctx context.Context, user *domain.User, recipe *domain.UnitRecipe) error {
	if m.updateUnitRecipeFn != nil {
		return m.updateUnitRecipeFn(ctx, user, recipe)
	}
	return errNotImplemented
}

func (m *mockAppService) GetHarmonizationRecipe(ctx context.Context, user *domain.User, id uuid.UUID) (*domain.HarmonizationRecipe, error) {
	if m.getHarmonizationRecipeFn != nil {
		return m.getHarmonizationRecipeFn(ctx, user, id)
	}
	return nil, errNotImplemented
}

func (m *mockAppService) ListHarmonizationRecipes(ctx context.Context, user *domain.User, params domain.ListParams) ([]domain.HarmonizationRecipe, int64, error) {
	if m.listHarmonizationRecipesFn != nil {
		return m.listHarmonizationRecipesFn(ctx, user, params)
	}
	return nil, 0, errNotImplemented
}

func (m *mockAppService) CreateHarmonizationRecipe(ctx context.Context, user *domain.User, recipe *domain.HarmonizationRecipe) error {
	if m.createHarmonizationRecipeFn != nil {
		return m.createHarmonizationRecipeFn(ctx, user, recipe)
	}
	return errNotImplemented
}

func (m *mockAppService) UpdateHarmonizationRecipe(ctx context.Context, user *domain.User, recipe *domain.HarmonizationRecipe) error {
	if m.updateHarmonizationRecipeFn != nil {
		return m.updateHarmonizationRecipeFn(ctx, user, recipe)
	}
	return errNotImplemented
}

func (m *mockAppService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	if m.authenticateFn != nil {
		return m.authenticateFn(ctx, email, password)
	}
	return nil, domain.ErrInvalidCredentials
}

func (m *mockAppService) Register(ctx context.Context, email, name, password string, isTagger bool) (*domain.User, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, email, name, password, isTagger)
	}
	return nil, errNotImplemented
}

func (m *mockAppService) SetTaggableStudies(ctx context.Context, actor *domain.User, userID uuid.UUID, studies []int64) error {
	if m.setTaggableStudiesFn != nil {
		return m.setTaggableStudiesFn(ctx, actor, userID, studies)
	}
	return errNotImplemented
}

func (m *mockAppService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.getUserFn != nil {
		return m.getUserFn(ctx, id)
	}
	return nil, domain.ErrUserNotFound
}

func (m *mockAppService) GetProfile(ctx context.Context, userID uuid.UUID) (*app.Profile, error) {
	if m.getProfileFn != nil {
		return m.getProfileFn(ctx, userID)
	}
	return nil, errNotImplemented
}

func (m *mockAppService) IssueAPIToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.issueAPITokenFn != nil {
		return m.issueAPITokenFn(ctx, userID)
	}
	return "", errNotImplemented
}

func (m *mockAppService) VerifyAPIToken(ctx context.Context, tokenString string) (*domain.User, error) {
	if m.verifyAPITokenFn != nil {
		return m.verifyAPITokenFn(ctx, tokenString)
	}
	return nil, domain.ErrInvalidCredentials
}

// --- Test helpers ---

func newTestServer(t *testing.T, app appService, opts ...func(*Server)) *Server {
	t.Helper()

	tmpl := template.Must(template.New("landing.html").Parse(`Landing {{range .Contents}}{{.Title}} {{end}}`))
	template.Must(tmpl.New("login.html").Parse(`Login {{.Error}}`))
	template.Must(tmpl.New("dashboard.html").Parse(`Dashboard {{.User.Name}}`))

	store := sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!!"))
	store.Options = &sessions.Options{
		Path:   "/",
		MaxAge: 3600,
	}

	e := echo.New()
	e.HideBanner = true

	srv := &Server{
		echo:         e,
		config:       &config.Config{AppEnv: "test", Port: "0"},
		app:          app,
		sessionStore: store,
		templates:    tmpl,
		startTime:    time.Now(),
	}

	for _, opt := range opts {
		opt(srv)
	}

	srv.registerRoutes()

	return srv
}

func withHealthChecks(checks ...HealthCheck) func(*Server) {
	return func(s *Server) {
		s.healthChecks = checks
	}
}

// callHandler wraps a handler with the error middleware, matching production behavior.
func callHandler(handler echo.HandlerFunc, c echo.Context) error {
	return ErrorHandlingMiddleware(handler)(c)
}

func setSessionUser(t *testing.T, srv *Server, req *http.Request, userID uuid.UUID) {
	t.Helper()
	rec := httptest.NewRecorder()
	session, err := srv.sessionStore.Get(req, sessionName)
	require.NoError(t, err)
	session.Values[sessionKeyUser] = userID.String()
	require.NoError(t, session.Save(req, rec))
	for _, cookie := range rec.Result().Cookies() {
		req.AddCookie(cookie)
	}
}

func staffUser() *domain.User {
	return &domain.User{
		ID:       uuid.New(),
		Email:    "staff@example.org",
		Name:     "Staff Member",
		IsStaff:  true,
		IsActive: true,
	}
}

func taggerUser(studies ...int64) *domain.User {
	return &domain.User{
		ID:              uuid.New(),
		Email:           "tagger@example.org",
		Name:            "Study Tagger",
		IsTagger:        true,
		IsActive:        true,
		TaggableStudies: studies,
	}
}
