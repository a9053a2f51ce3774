package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/UW-GAC/pie-sub001/internal/domain"
)

// --- Mock implementations ---

type mockStudyRepo struct {
	getByAccessionFn func(ctx context.Context, accession int64) (*domain.Study, error)
	listFn           func(ctx context.Context, params domain.ListParams) ([]domain.Study, int64, error)
	listVersionsFn   func(ctx context.Context, studyAccession int64) ([]domain.StudyVersion, error)
	getVersionFn     func(ctx context.Context, id int64) (*domain.StudyVersion, error)
}

func (m *mockStudyRepo) GetByAccession(ctx context.Context, accession int64) (*domain.Study, error) {
	if m.getByAccessionFn != nil {
		return m.getByAccessionFn(ctx, accession)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockStudyRepo) List(ctx context.Context, params domain.ListParams) ([]domain.Study, int64, error) {
	if m.listFn != nil {
		return m.listFn(ctx, params)
	}
	return nil, 0, fmt.Errorf("not implemented")
}

func (m *mockStudyRepo) ListVersions(ctx context.Context, studyAccession int64) ([]domain.StudyVersion, error) {
	if m.listVersionsFn != nil {
		return m.listVersionsFn(ctx, studyAccession)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockStudyRepo) GetVersion(ctx context.Context, id int64) (*domain.StudyVersion, error) {
	if m.getVersionFn != nil {
		return m.getVersionFn(ctx, id)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockStudyRepo) Upsert(ctx context.Context, study *domain.Study) error { return nil }
func (m *mockStudyRepo) UpsertVersion(ctx context.Context, version *domain.StudyVersion) error {
	return nil
}

type mockDatasetRepo struct {
	getByAccessionFn func(ctx context.Context, accession int64) (*domain.Dataset, error)
}

func (m *mockDatasetRepo) GetByAccession(ctx context.Context, accession int64) (*domain.Dataset, error) {
	if m.getByAccessionFn != nil {
		return m.getByAccessionFn(ctx, accession)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockDatasetRepo) List(ctx context.Context, params domain.ListParams) ([]domain.Dataset, int64, error) {
	return nil, 0, fmt.Errorf("not implemented")
}

func (m *mockDatasetRepo) ListByStudyVersion(ctx context.Context, studyVersionID int64) ([]domain.Dataset, error) {
	return nil, fmt.Errorf("not implemented")
}

func (m *mockDatasetRepo) Upsert(ctx context.Context, dataset *domain.Dataset) error { return nil }

type mockTraitRepo struct {
	getSourceFn func(ctx context.Context, accession int64) (*domain.SourceTrait, error)
	searchFn    func(ctx context.Context, query string, filter domain.SearchFilter, limit int) ([]domain.SearchResult, error)
}

func (m *mockTraitRepo) GetSourceByAccession(ctx context.Context, accession int64) (*domain.SourceTrait, error) {
	if m.getSourceFn != nil {
		return m.getSourceFn(ctx, accession)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockTraitRepo) ListSource(ctx context.Context, datasetAccession int64, params domain.ListParams) ([]domain.SourceTrait, int64, error) {
	return nil, 0, fmt.Errorf("not implemented")
}

func (m *mockTraitRepo) UpsertSource(ctx context.Context, trait *domain.SourceTrait) error {
	return nil
}

func (m *mockTraitRepo) GetHarmonized(ctx context.Context, id int64) (*domain.HarmonizedTrait, error) {
	return nil, fmt.Errorf("not implemented")
}

func (m *mockTraitRepo) ListHarmonized(ctx context.Context, params domain.ListParams) ([]domain.HarmonizedTrait, int64, error) {
	return nil, 0, fmt.Errorf("not implemented")
}

func (m *mockTraitRepo) UpsertHarmonized(ctx context.Context, trait *domain.HarmonizedTrait) error {
	return nil
}

func (m *mockTraitRepo) Search(ctx context.Context, query string, filter domain.SearchFilter, limit int) ([]domain.SearchResult, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, query, filter, limit)
	}
	return nil, fmt.Errorf("not implemented")
}

type mockTagRepo struct {
	getByIDFn func(ctx context.Context, id uuid.UUID) (*domain.Tag, error)
	createFn  func(ctx context.Context, tag *domain.Tag) error
	countFn   func(ctx context.Context, tagID uuid.UUID) (int64, error)
}

func (m *mockTagRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tag, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockTagRepo) GetByTitle(ctx context.Context, title string) (*domain.Tag, error) {
	return nil, fmt.Errorf("not implemented")
}

func (m *mockTagRepo) List(ctx context.Context) ([]domain.Tag, error) {
	return nil, fmt.Errorf("not implemented")
}

func (m *mockTagRepo) Create(ctx context.Context, tag *domain.Tag) error {
	if m.createFn != nil {
		return m.createFn(ctx, tag)
	}
	return fmt.Errorf("not implemented")
}

func (m *mockTagRepo) CountTaggedTraits(ctx context.Context, tagID uuid.UUID) (int64, error) {
	if m.countFn != nil {
		return m.countFn(ctx, tagID)
	}
	return 0, fmt.Errorf("not implemented")
}

type mockTaggedTraitRepo struct {
	getByIDFn         func(ctx context.Context, id uuid.UUID) (*domain.TaggedTrait, error)
	getWithWorkflowFn func(ctx context.Context, id uuid.UUID) (*domain.TaggedTrait, error)
	listFn            func(ctx context.Context, filter domain.TaggedTraitFilter, params domain.ListParams) ([]domain.TaggedTrait, int64, error)
	createFn          func(ctx context.Context, tt *domain.TaggedTrait) error
	createBulkFn      func(ctx context.Context, tagID, creatorID uuid.UUID, traitAccessions []int64) ([]domain.TaggedTrait, error)
	deleteFn          func(ctx context.Context, id uuid.UUID) error
	archiveFn         func(ctx context.Context, id uuid.UUID) error
	createReviewFn    func(ctx context.Context, review *domain.DCCReview) error
	updateReviewFn    func(ctx context.Context, review *domain.DCCReview) error
	getReviewFn       func(ctx context.Context, id uuid.UUID) (*domain.DCCReview, error)
	createResponseFn  func(ctx context.Context, response *domain.StudyResponse) error
	createDecisionFn  func(ctx context.Context, decision *domain.DCCDecision) error
}

func (m *mockTaggedTraitRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.TaggedTrait, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockTaggedTraitRepo) GetWithWorkflow(ctx context.Context, id uuid.UUID) (*domain.TaggedTrait, error) {
	if m.getWithWorkflowFn != nil {
		return m.getWithWorkflowFn(ctx, id)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockTaggedTraitRepo) List(ctx context.Context, filter domain.TaggedTraitFilter, params domain.ListParams) ([]domain.TaggedTrait, int64, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter, params)
	}
	return nil, 0, fmt.Errorf("not implemented")
}

func (m *mockTaggedTraitRepo) Create(ctx context.Context, tt *domain.TaggedTrait) error {
	if m.createFn != nil {
		return m.createFn(ctx, tt)
	}
	return fmt.Errorf("not implemented")
}

func (m *mockTaggedTraitRepo) CreateBulk(ctx context.Context, tagID, creatorID uuid.UUID, traitAccessions []int64) ([]domain.TaggedTrait, error) {
	if m.createBulkFn != nil {
		return m.createBulkFn(ctx, tagID, creatorID, traitAccessions)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockTaggedTraitRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return fmt.Errorf("not implemented")
}

func (m *mockTaggedTraitRepo) Archive(ctx context.Context, id uuid.UUID) error {
	if m.archiveFn != nil {
		return m.archiveFn(ctx, id)
	}
	return fmt.Errorf("not implemented")
}

func (m *mockTaggedTraitRepo) CreateReview(ctx context.Context, review *domain.DCCReview) error {
	if m.createReviewFn != nil {
		return m.createReviewFn(ctx, review)
	}
	return fmt.Errorf("not implemented")
}

func (m *mockTaggedTraitRepo) UpdateReview(ctx context.Context, review *domain.DCCReview) error {
	if m.updateReviewFn != nil {
		return m.updateReviewFn(ctx, review)
	}
	return fmt.Errorf("not implemented")
}

func (m *mockTaggedTraitRepo) GetReview(ctx context.Context, id uuid.UUID) (*domain.DCCReview, error) {
	if m.getReviewFn != nil {
		return m.getReviewFn(ctx, id)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockTaggedTraitRepo) CreateResponse(ctx context.Context, response *domain.StudyResponse) error {
	if m.createResponseFn != nil {
		return m.createResponseFn(ctx, response)
	}
	return fmt.Errorf("not implemented")
}

func (m *mockTaggedTraitRepo) CreateDecision(ctx context.Context, decision *domain.DCCDecision) error {
	if m.createDecisionFn != nil {
		return m.createDecisionFn(ctx, decision)
	}
	return fmt.Errorf("not implemented")
}

type mockRecipeRepo struct {
	getUnitFn            func(ctx context.Context, id uuid.UUID) (*domain.UnitRecipe, error)
	createUnitFn         func(ctx context.Context, recipe *domain.UnitRecipe) error
	updateUnitFn         func(ctx context.Context, recipe *domain.UnitRecipe) error
	getHarmonizationFn   func(ctx context.Context, id uuid.UUID) (*domain.HarmonizationRecipe, error)
	createHarmonizationFn func(ctx context.Context, recipe *domain.HarmonizationRecipe) error
	updateHarmonizationFn func(ctx context.Context, recipe *domain.HarmonizationRecipe) error
}

func (m *mockRecipeRepo) GetUnitRecipe(ctx context.Context, id uuid.UUID) (*domain.UnitRecipe, error) {
	if m.getUnitFn != nil {
		return m.getUnitFn(ctx, id)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockRecipeRepo) ListUnitRecipes(ctx context.Context, creatorID uuid.UUID, params domain.ListParams) ([]domain.UnitRecipe, int64, error) {
	return nil, 0, fmt.Errorf("not implemented")
}

func (m *mockRecipeRepo) CreateUnitRecipe(ctx context.Context, recipe *domain.UnitRecipe) error {
	if m.createUnitFn != nil {
		return m.createUnitFn(ctx, recipe)
	}
	return fmt.Errorf("not implemented")
}

func (m *mockRecipeRepo) UpdateUnitRecipe(ctx context.Context, recipe *domain.UnitRecipe) error {
	if m.updateUnitFn != nil {
		return m.updateUnitFn(ctx, recipe)
	}
	return fmt.Errorf("not implemented")
}

func (m *mockRecipeRepo) GetHarmonizationRecipe(ctx context.Context, id uuid.UUID) (*domain.HarmonizationRecipe, error) {
	if m.getHarmonizationFn != nil {
		return m.getHarmonizationFn(ctx, id)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockRecipeRepo) ListHarmonizationRecipes(ctx context.Context, creatorID uuid.UUID, params domain.ListParams) ([]domain.HarmonizationRecipe, int64, error) {
	return nil, 0, fmt.Errorf("not implemented")
}

func (m *mockRecipeRepo) CreateHarmonizationRecipe(ctx context.Context, recipe *domain.HarmonizationRecipe) error {
	if m.createHarmonizationFn != nil {
		return m.createHarmonizationFn(ctx, recipe)
	}
	return fmt.Errorf("not implemented")
}

func (m *mockRecipeRepo) UpdateHarmonizationRecipe(ctx context.Context, recipe *domain.HarmonizationRecipe) error {
	if m.updateHarmonizationFn != nil {
		return m.updateHarmonizationFn(ctx, recipe)
	}
	return fmt.Errorf("not implemented")
}

type mockUserRepo struct {
	getByIDFn            func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	getByEmailFn         func(ctx context.Context, email string) (*domain.User, error)
	createFn             func(ctx context.Context, user *domain.User) error
	setTaggableStudiesFn func(ctx context.Context, userID uuid.UUID, studies []int64) error
	saveSearchFn         func(ctx context.Context, search *domain.SavedSearch) error
	listSavedSearchesFn  func(ctx context.Context, userID uuid.UUID, limit int) ([]domain.SavedSearch, error)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return fmt.Errorf("not implemented")
}

func (m *mockUserRepo) SetTaggableStudies(ctx context.Context, userID uuid.UUID, studies []int64) error {
	if m.setTaggableStudiesFn != nil {
		return m.setTaggableStudiesFn(ctx, userID, studies)
	}
	return fmt.Errorf("not implemented")
}

func (m *mockUserRepo) SaveSearch(ctx context.Context, search *domain.SavedSearch) error {
	if m.saveSearchFn != nil {
		return m.saveSearchFn(ctx, search)
	}
	return nil
}

func (m *mockUserRepo) ListSavedSearches(ctx context.Context, userID uuid.UUID, limit int) ([]domain.SavedSearch, error) {
	if m.listSavedSearchesFn != nil {
		return m.listSavedSearchesFn(ctx, userID, limit)
	}
	return nil, nil
}

type mockHomeContentRepo struct {
	listOrderedFn func(ctx context.Context) ([]domain.HomeContent, error)
}

func (m *mockHomeContentRepo) ListOrdered(ctx context.Context) ([]domain.HomeContent, error) {
	if m.listOrderedFn != nil {
		return m.listOrderedFn(ctx)
	}
	return nil, nil
}

func (m *mockHomeContentRepo) Create(ctx context.Context, content *domain.HomeContent) error {
	return fmt.Errorf("not implemented")
}

func (m *mockHomeContentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return fmt.Errorf("not implemented")
}

type mockSearchCache struct {
	getFn        func(ctx context.Context, query string, filter domain.SearchFilter) ([]domain.SearchResult, bool)
	setFn        func(ctx context.Context, query string, filter domain.SearchFilter, results []domain.SearchResult)
	pushRecentFn func(ctx context.Context, userID uuid.UUID, query string)
	recentFn     func(ctx context.Context, userID uuid.UUID) ([]string, error)
}

func (m *mockSearchCache) Get(ctx context.Context, query string, filter domain.SearchFilter) ([]domain.SearchResult, bool) {
	if m.getFn != nil {
		return m.getFn(ctx, query, filter)
	}
	return nil, false
}

func (m *mockSearchCache) Set(ctx context.Context, query string, filter domain.SearchFilter, results []domain.SearchResult) {
	if m.setFn != nil {
		m.setFn(ctx, query, filter, results)
	}
}

func (m *mockSearchCache) PushRecent(ctx context.Context, userID uuid.UUID, query string) {
	if m.pushRecentFn != nil {
		m.pushRecentFn(ctx, userID, query)
	}
}

func (m *mockSearchCache) Recent(ctx context.Context, userID uuid.UUID) ([]string, error) {
	if m.recentFn != nil {
		return m.recentFn(ctx, userID)
	}
	return nil, nil
}

// --- Test fixtures ---

type testMocks struct {
	studies      *mockStudyRepo
	datasets     *mockDatasetRepo
	traits       *mockTraitRepo
	tags         *mockTagRepo
	taggedTraits *mockTaggedTraitRepo
	recipes      *mockRecipeRepo
	users        *mockUserRepo
	home         *mockHomeContentRepo
	cache        *mockSearchCache
	clock        *clockwork.FakeClock
}

var testSigningKey = []byte("0123456789abcdef0123456789abcdef")

func newTestService() (*Service, *testMocks) {
	m := &testMocks{
		studies:      &mockStudyRepo{},
		datasets:     &mockDatasetRepo{},
		traits:       &mockTraitRepo{},
		tags:         &mockTagRepo{},
		taggedTraits: &mockTaggedTraitRepo{},
		recipes:      &mockRecipeRepo{},
		users:        &mockUserRepo{},
		home:         &mockHomeContentRepo{},
		cache:        &mockSearchCache{},
		clock:        clockwork.NewFakeClock(),
	}

	svc := NewService(Repositories{
		Studies:      m.studies,
		Datasets:     m.datasets,
		Traits:       m.traits,
		Tags:         m.tags,
		TaggedTraits: m.taggedTraits,
		Recipes:      m.recipes,
		Users:        m.users,
		HomeContents: m.home,
	}, m.cache, m.clock, Options{
		SigningKey:  testSigningKey,
		TokenTTL:    time.Hour,
		SearchLimit: 100,
	})
	return svc, m
}

// wireCatalog points the catalog mocks at a single study/dataset/trait chain
// so traitStudy resolves.
func (m *testMocks) wireCatalog(studyAccession, traitAccession int64) {
	m.traits.getSourceFn = func(ctx context.Context, accession int64) (*domain.SourceTrait, error) {
		if accession != traitAccession {
			return nil, domain.ErrTraitNotFound
		}
		return &domain.SourceTrait{Accession: accession, Name: "bmi_baseline", DatasetAccession: 100}, nil
	}
	m.datasets.getByAccessionFn = func(ctx context.Context, accession int64) (*domain.Dataset, error) {
		return &domain.Dataset{Accession: accession, StudyVersionID: 1}, nil
	}
	m.studies.getVersionFn = func(ctx context.Context, id int64) (*domain.StudyVersion, error) {
		return &domain.StudyVersion{ID: id, StudyAccession: studyAccession, Version: 1}, nil
	}
}

func staffUser() *domain.User {
	return &domain.User{ID: uuid.New(), Email: "dcc@example.org", IsStaff: true, IsActive: true}
}

func taggerUser(studies ...int64) *domain.User {
	return &domain.User{ID: uuid.New(), Email: "tagger@example.org", IsTagger: true, IsActive: true, TaggableStudies: studies}
}
