package firestore

import (
	"time"

	"github.com/incubo-lab/pitchreview/pkg/domain/model"
	"github.com/incubo-lab/pitchreview/pkg/domain/types"
)

type projectDocument struct {
	ID             string    `firestore:"ID"`
	EnterpriseName string    `firestore:"EnterpriseName"`
	ProjectName    string    `firestore:"ProjectName"`
	Description    string    `firestore:"Description"`
	TeamMembers    string    `firestore:"TeamMembers"`
	Status         string    `firestore:"Status"`
	TotalScore     *float64  `firestore:"TotalScore"`
	ReviewResult   string    `firestore:"ReviewResult"`
	CreatedAt      time.Time `firestore:"CreatedAt"`
	UpdatedAt      time.Time `firestore:"UpdatedAt"`
}

func toProjectDocument(p *model.Project) *projectDocument {
	return &projectDocument{
		ID:             p.ID.String(),
		EnterpriseName: p.EnterpriseName,
		ProjectName:    p.ProjectName,
		Description:    p.Description,
		TeamMembers:    p.TeamMembers,
		Status:         p.Status.String(),
		TotalScore:     p.TotalScore,
		ReviewResult:   string(p.ReviewResult),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func (d *projectDocument) toModel() *model.Project {
	return &model.Project{
		ID:             model.ProjectID(d.ID),
		EnterpriseName: d.EnterpriseName,
		ProjectName:    d.ProjectName,
		Description:    d.Description,
		TeamMembers:    d.TeamMembers,
		Status:         types.ProjectStatus(d.Status),
		TotalScore:     d.TotalScore,
		ReviewResult:   types.ReviewResult(d.ReviewResult),
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

type subDimensionDocument struct {
	Name     string  `firestore:"Name"`
	Score    float64 `firestore:"Score"`
	MaxScore float64 `firestore:"MaxScore"`
	Comment  string  `firestore:"Comment"`
}

type dimensionDocument struct {
	ID            string                 `firestore:"ID"`
	Score         float64                `firestore:"Score"`
	MaxScore      float64                `firestore:"MaxScore"`
	Comment       string                 `firestore:"Comment"`
	SubDimensions []subDimensionDocument `firestore:"SubDimensions,omitempty"`
}

func toDimensionDocuments(dims []model.Dimension) []dimensionDocument {
	docs := make([]dimensionDocument, len(dims))
	for i, d := range dims {
		docs[i] = dimensionDocument{
			ID:       d.ID.String(),
			Score:    d.Score,
			MaxScore: d.MaxScore,
			Comment:  d.Comment,
		}
		for _, s := range d.SubDimensions {
			docs[i].SubDimensions = append(docs[i].SubDimensions, subDimensionDocument(s))
		}
	}
	return docs
}

func fromDimensionDocuments(docs []dimensionDocument) []model.Dimension {
	dims := make([]model.Dimension, len(docs))
	for i, d := range docs {
		dims[i] = model.Dimension{
			ID:       types.DimensionID(d.ID),
			Score:    d.Score,
			MaxScore: d.MaxScore,
			Comment:  d.Comment,
		}
		for _, s := range d.SubDimensions {
			dims[i].SubDimensions = append(dims[i].SubDimensions, model.SubDimension(s))
		}
	}
	return dims
}

type scoreSheetDocument struct {
	ProjectID  string              `firestore:"ProjectID"`
	Dimensions []dimensionDocument `firestore:"Dimensions"`
	Version    int64               `firestore:"Version"`
	UpdatedAt  time.Time           `firestore:"UpdatedAt"`
}

func toScoreSheetDocument(s *model.ScoreSheet) *scoreSheetDocument {
	return &scoreSheetDocument{
		ProjectID:  s.ProjectID.String(),
		Dimensions: toDimensionDocuments(s.Dimensions),
		Version:    s.Version,
		UpdatedAt:  s.UpdatedAt,
	}
}

func (d *scoreSheetDocument) toModel() *model.ScoreSheet {
	return &model.ScoreSheet{
		ProjectID:  model.ProjectID(d.ProjectID),
		Dimensions: fromDimensionDocuments(d.Dimensions),
		Version:    d.Version,
		UpdatedAt:  d.UpdatedAt,
	}
}

type historyDocument struct {
	ID         string              `firestore:"ID"`
	ProjectID  string              `firestore:"ProjectID"`
	TotalScore *float64            `firestore:"TotalScore"`
	Dimensions []dimensionDocument `firestore:"Dimensions"`
	ModifiedBy string              `firestore:"ModifiedBy"`
	Note       string              `firestore:"Note"`
	CreatedAt  time.Time           `firestore:"CreatedAt"`
}

func toHistoryDocument(e *model.HistoryEntry) *historyDocument {
	return &historyDocument{
		ID:         e.ID.String(),
		ProjectID:  e.ProjectID.String(),
		TotalScore: e.TotalScore,
		Dimensions: toDimensionDocuments(e.Dimensions),
		ModifiedBy: e.ModifiedBy,
		Note:       e.Note,
		CreatedAt:  e.CreatedAt,
	}
}

func (d *historyDocument) toModel() *model.HistoryEntry {
	return &model.HistoryEntry{
		ID:         model.HistoryEntryID(d.ID),
		ProjectID:  model.ProjectID(d.ProjectID),
		TotalScore: d.TotalScore,
		Dimensions: fromDimensionDocuments(d.Dimensions),
		ModifiedBy: d.ModifiedBy,
		Note:       d.Note,
		CreatedAt:  d.CreatedAt,
	}
}

type missingInfoDocument struct {
	ID              string    `firestore:"ID"`
	ProjectID       string    `firestore:"ProjectID"`
	Dimension       string    `firestore:"Dimension"`
	InformationType string    `firestore:"InformationType"`
	Description     string    `firestore:"Description"`
	Status          string    `firestore:"Status"`
	CreatedAt       time.Time `firestore:"CreatedAt"`
	UpdatedAt       time.Time `firestore:"UpdatedAt"`
}

func toMissingInfoDocument(m *model.MissingInfo) *missingInfoDocument {
	return &missingInfoDocument{
		ID:              m.ID.String(),
		ProjectID:       m.ProjectID.String(),
		Dimension:       m.Dimension.String(),
		InformationType: m.InformationType,
		Description:     m.Description,
		Status:          m.Status.String(),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func (d *missingInfoDocument) toModel() *model.MissingInfo {
	return &model.MissingInfo{
		ID:              model.MissingInfoID(d.ID),
		ProjectID:       model.ProjectID(d.ProjectID),
		Dimension:       types.DimensionID(d.Dimension),
		InformationType: d.InformationType,
		Description:     d.Description,
		Status:          types.MissingInfoStatus(d.Status),
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}
