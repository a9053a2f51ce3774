package httpserver

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/UW-GAC/pie-sub001/internal/domain"
	apperrors "github.com/UW-GAC/pie-sub001/internal/platform/errors"
)

// listEnvelope is the shared shape of paginated list responses.
type listEnvelope struct {
	Results any   `json:"results"`
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
}

func newListEnvelope(results any, total int64, params domain.ListParams) listEnvelope {
	params = params.Normalize()
	return listEnvelope{Results: results, Total: total, Page: params.Page, PerPage: params.PerPage}
}

func parseListParams(c echo.Context) domain.ListParams {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	perPage, _ := strconv.Atoi(c.QueryParam("per_page"))
	return domain.ListParams{Page: page, PerPage: perPage}.Normalize()
}

func parseAccessionParam(c echo.Context, name string) (int64, error) {
	accession, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || accession <= 0 {
		return 0, apperrors.ValidationError("Invalid " + name)
	}
	return accession, nil
}

func parseUUIDParam(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperrors.ValidationError("Invalid " + name)
	}
	return id, nil
}

type studyResponse struct {
	Accession int64     `json:"accession"`
	PHS       string    `json:"phs"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func toStudyResponse(s domain.Study) studyResponse {
	return studyResponse{Accession: s.Accession, PHS: s.PHS(), Name: s.Name, CreatedAt: s.CreatedAt}
}

type studyVersionResponse struct {
	ID             int64  `json:"id"`
	StudyAccession int64  `json:"study_accession"`
	Version        int    `json:"version"`
	ParticipantSet int    `json:"participant_set"`
	FullAccession  string `json:"full_accession"`
	IsDeprecated   bool   `json:"is_deprecated"`
}

func toStudyVersionResponse(v domain.StudyVersion) studyVersionResponse {
	return studyVersionResponse{
		ID:             v.ID,
		StudyAccession: v.StudyAccession,
		Version:        v.Version,
		ParticipantSet: v.ParticipantSet,
		FullAccession:  v.FullAccession(),
		IsDeprecated:   v.IsDeprecated,
	}
}

type datasetResponse struct {
	Accession      int64  `json:"accession"`
	PHT            string `json:"pht"`
	Version        int    `json:"version"`
	StudyVersionID int64  `json:"study_version_id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	IsDeprecated   bool   `json:"is_deprecated"`
}

func toDatasetResponse(d domain.Dataset) datasetResponse {
	return datasetResponse{
		Accession:      d.Accession,
		PHT:            d.PHT(),
		Version:        d.Version,
		StudyVersionID: d.StudyVersionID,
		Name:           d.Name,
		Description:    d.Description,
		IsDeprecated:   d.IsDeprecated,
	}
}

type traitResponse struct {
	Accession        int64  `json:"accession"`
	PHV              string `json:"phv"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	DataType         string `json:"data_type"`
	Unit             string `json:"unit,omitempty"`
	DatasetAccession int64  `json:"dataset_accession"`
	IsDeprecated     bool   `json:"is_deprecated"`
}

func toTraitResponse(t domain.SourceTrait) traitResponse {
	return traitResponse{
		Accession:        t.Accession,
		PHV:              t.PHV(),
		Name:             t.Name,
		Description:      t.Description,
		DataType:         t.DataType,
		Unit:             t.Unit,
		DatasetAccession: t.DatasetAccession,
		IsDeprecated:     t.IsDeprecated,
	}
}

type harmonizedTraitResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	FlavorName  string `json:"flavor_name,omitempty"`
	Version     int    `json:"version"`
	Description string `json:"description"`
	DataType    string `json:"data_type"`
	Unit        string `json:"unit,omitempty"`
}

func toHarmonizedTraitResponse(t domain.HarmonizedTrait) harmonizedTraitResponse {
	return harmonizedTraitResponse{
		ID:          t.ID,
		Name:        t.Name,
		FlavorName:  t.FlavorName,
		Version:     t.Version,
		Description: t.Description,
		DataType:    t.DataType,
		Unit:        t.Unit,
	}
}

type searchResultResponse struct {
	Trait traitResponse `json:"trait"`
	Rank  float64       `json:"rank"`
}

type tagResponse struct {
	ID               uuid.UUID `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Instructions     string    `json:"instructions,omitempty"`
	TaggedTraitCount *int64    `json:"tagged_trait_count,omitempty"`
}

func toTagResponse(t domain.Tag) tagResponse {
	return tagResponse{ID: t.ID, Title: t.Title, Description: t.Description, Instructions: t.Instructions}
}

type reviewResponse struct {
	ID            uuid.UUID            `json:"id"`
	TaggedTraitID uuid.UUID            `json:"tagged_trait_id"`
	Status        string               `json:"status"`
	Comment       string               `json:"comment,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	StudyResponse *studyRespResponse   `json:"study_response,omitempty"`
	Decision      *dccDecisionResponse `json:"decision,omitempty"`
}

type studyRespResponse struct {
	ID        uuid.UUID `json:"id"`
	Status    string    `json:"status"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type dccDecisionResponse struct {
	ID        uuid.UUID `json:"id"`
	Decision  string    `json:"decision"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toReviewResponse(r *domain.DCCReview) *reviewResponse {
	if r == nil {
		return nil
	}
	resp := &reviewResponse{
		ID:            r.ID,
		TaggedTraitID: r.TaggedTraitID,
		Status:        r.Status.String(),
		Comment:       r.Comment,
		CreatedAt:     r.CreatedAt,
	}
	if r.Response != nil {
		resp.StudyResponse = &studyRespResponse{
			ID:        r.Response.ID,
			Status:    r.Response.Status.String(),
			Comment:   r.Response.Comment,
			CreatedAt: r.Response.CreatedAt,
		}
	}
	if r.Decision != nil {
		resp.Decision = &dccDecisionResponse{
			ID:        r.Decision.ID,
			Decision:  r.Decision.Decision.String(),
			Comment:   r.Decision.Comment,
			CreatedAt: r.Decision.CreatedAt,
		}
	}
	return resp
}

type taggedTraitResponse struct {
	ID             uuid.UUID       `json:"id"`
	TagID          uuid.UUID       `json:"tag_id"`
	TraitAccession int64           `json:"trait_accession"`
	CreatorID      uuid.UUID       `json:"creator_id"`
	Archived       bool            `json:"archived"`
	CreatedAt      time.Time       `json:"created_at"`
	Review         *reviewResponse `json:"review,omitempty"`
}

func toTaggedTraitResponse(tt domain.TaggedTrait) taggedTraitResponse {
	return taggedTraitResponse{
		ID:             tt.ID,
		TagID:          tt.TagID,
		TraitAccession: tt.TraitAccession,
		CreatorID:      tt.CreatorID,
		Archived:       tt.Archived,
		CreatedAt:      tt.CreatedAt,
		Review:         toReviewResponse(tt.Review),
	}
}

type unitRecipeResponse struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	Version            int       `json:"version"`
	Instructions       string    `json:"instructions"`
	AgeVariables       []int64   `json:"age_variables"`
	BatchVariables     []int64   `json:"batch_variables"`
	PhenotypeVariables []int64   `json:"phenotype_variables"`
	CreatorID          uuid.UUID `json:"creator_id"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func toUnitRecipeResponse(r domain.UnitRecipe) unitRecipeResponse {
	return unitRecipeResponse{
		ID:                 r.ID,
		Name:               r.Name,
		Version:            r.Version,
		Instructions:       r.Instructions,
		AgeVariables:       r.AgeVariables,
		BatchVariables:     r.BatchVariables,
		PhenotypeVariables: r.PhenotypeVariables,
		CreatorID:          r.CreatorID,
		UpdatedAt:          r.UpdatedAt,
	}
}

type harmonizationRecipeResponse struct {
	ID                uuid.UUID   `json:"id"`
	Name              string      `json:"name"`
	Version           int         `json:"version"`
	TargetName        string      `json:"target_name"`
	TargetDescription string      `json:"target_description"`
	MeasurementUnit   string      `json:"measurement_unit,omitempty"`
	EncodedValues     string      `json:"encoded_values,omitempty"`
	UnitRecipeIDs     []uuid.UUID `json:"unit_recipe_ids"`
	CreatorID         uuid.UUID   `json:"creator_id"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

func toHarmonizationRecipeResponse(r domain.HarmonizationRecipe) harmonizationRecipeResponse {
	return harmonizationRecipeResponse{
		ID:                r.ID,
		Name:              r.Name,
		Version:           r.Version,
		TargetName:        r.TargetName,
		TargetDescription: r.TargetDescription,
		MeasurementUnit:   r.MeasurementUnit,
		EncodedValues:     r.EncodedValues,
		UnitRecipeIDs:     r.UnitRecipeIDs,
		CreatorID:         r.CreatorID,
		UpdatedAt:         r.UpdatedAt,
	}
}
