package model

import (
	"math"
	"time"

	"github.com/incubo-lab/pitchreview/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// SubDimension is an optional breakdown item of a dimension
type SubDimension struct {
	Name     string
	Score    float64
	MaxScore float64
	Comment  string
}

// Dimension is one of the five fixed scoring dimensions of a score sheet
type Dimension struct {
	ID            types.DimensionID
	Score         float64
	MaxScore      float64
	Comment       string
	SubDimensions []SubDimension
}

// ScoreSheet holds the committed scores of a project. Version is incremented
// on every commit and used for compare-and-swap in repositories; zero means
// nothing was committed yet.
type ScoreSheet struct {
	ProjectID  ProjectID
	Dimensions []Dimension
	Version    int64
	UpdatedAt  time.Time
}

// defaultSubDimensions is the breakdown the reviewers use for the team dimension
var defaultSubDimensions = map[types.DimensionID][]SubDimension{
	types.DimensionTeam: {
		{Name: "core team background", MaxScore: 10},
		{Name: "team completeness", MaxScore: 10},
		{Name: "team execution", MaxScore: 10},
	},
}

// NewScoreSheet returns an uncommitted sheet with every dimension at zero
func NewScoreSheet(projectID ProjectID) *ScoreSheet {
	defs := types.AllDimensions()
	sheet := &ScoreSheet{
		ProjectID:  projectID,
		Dimensions: make([]Dimension, 0, len(defs)),
	}
	for _, def := range defs {
		dim := Dimension{ID: def.ID, MaxScore: def.MaxScore}
		if subs, ok := defaultSubDimensions[def.ID]; ok {
			dim.SubDimensions = append([]SubDimension(nil), subs...)
		}
		sheet.Dimensions = append(sheet.Dimensions, dim)
	}
	return sheet
}

// Total returns the sum of all dimension scores
func (s *ScoreSheet) Total() float64 {
	var total float64
	for _, d := range s.Dimensions {
		total += d.Score
	}
	return total
}

// IsCommitted reports whether the sheet has been committed at least once
func (s *ScoreSheet) IsCommitted() bool {
	return s.Version > 0
}

// Dimension returns a pointer to the dimension with the given id
func (s *ScoreSheet) Dimension(id types.DimensionID) (*Dimension, error) {
	for i := range s.Dimensions {
		if s.Dimensions[i].ID == id {
			return &s.Dimensions[i], nil
		}
	}
	return nil, goerr.Wrap(ErrValidation, "unknown dimension", goerr.V(DimensionKey, id))
}

// Validate checks the fixed schema: five dimensions in order with their fixed
// max scores, every score within [0, max] and sub-dimension max scores
// summing to the parent max when present.
func (s *ScoreSheet) Validate() error {
	defs := types.AllDimensions()
	if len(s.Dimensions) != len(defs) {
		return goerr.Wrap(ErrValidation, "score sheet must have exactly five dimensions",
			goerr.V("count", len(s.Dimensions)))
	}

	for i, def := range defs {
		d := s.Dimensions[i]
		if d.ID != def.ID {
			return goerr.Wrap(ErrValidation, "dimension order does not match",
				goerr.V(DimensionKey, d.ID), goerr.V("expected", def.ID))
		}
		if d.MaxScore != def.MaxScore {
			return goerr.Wrap(ErrValidation, "dimension max score is fixed",
				goerr.V(DimensionKey, d.ID), goerr.V("max_score", d.MaxScore))
		}
		if !inRange(d.Score, d.MaxScore) {
			return goerr.Wrap(ErrValidation, "dimension score out of range",
				goerr.V(DimensionKey, d.ID), goerr.V("score", d.Score))
		}
		if len(d.SubDimensions) == 0 {
			continue
		}

		var subMax float64
		for _, sub := range d.SubDimensions {
			if sub.Name == "" {
				return goerr.Wrap(ErrValidation, "sub-dimension name is required", goerr.V(DimensionKey, d.ID))
			}
			if !inRange(sub.Score, sub.MaxScore) {
				return goerr.Wrap(ErrValidation, "sub-dimension score out of range",
					goerr.V(DimensionKey, d.ID), goerr.V("sub_dimension", sub.Name), goerr.V("score", sub.Score))
			}
			subMax += sub.MaxScore
		}
		if subMax != d.MaxScore {
			return goerr.Wrap(ErrValidation, "sub-dimension max scores must sum to the dimension max score",
				goerr.V(DimensionKey, d.ID), goerr.V("sum", subMax))
		}
	}
	return nil
}

// Clone returns a deep copy of the sheet
func (s *ScoreSheet) Clone() *ScoreSheet {
	c := &ScoreSheet{
		ProjectID:  s.ProjectID,
		Version:    s.Version,
		UpdatedAt:  s.UpdatedAt,
		Dimensions: cloneDimensions(s.Dimensions),
	}
	return c
}

func cloneDimensions(dims []Dimension) []Dimension {
	if dims == nil {
		return nil
	}
	out := make([]Dimension, len(dims))
	for i, d := range dims {
		out[i] = d
		if d.SubDimensions != nil {
			out[i].SubDimensions = append([]SubDimension(nil), d.SubDimensions...)
		}
	}
	return out
}

func inRange(v, max float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= max
}

// clamp bounds v to [0, max]. NaN is treated as 0.
func clamp(v, max float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > max:
		return max
	default:
		return v
	}
}
