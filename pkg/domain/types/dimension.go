package types

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// DimensionID identifies one of the fixed scoring dimensions
type DimensionID string

const (
	DimensionTeam              DimensionID = "team"
	DimensionProductTechnology DimensionID = "product_technology"
	DimensionMarket            DimensionID = "market"
	DimensionBusinessModel     DimensionID = "business_model"
	DimensionFinancial         DimensionID = "financial"

	// DimensionOther is accepted only as a missing-info reference
	DimensionOther DimensionID = "other"
)

// DimensionDef holds the fixed definition of a scoring dimension
type DimensionDef struct {
	ID       DimensionID
	Name     string // English label
	Label    string // label used by the original dashboard
	MaxScore float64
}

var dimensionDefs = []DimensionDef{
	{ID: DimensionTeam, Name: "team capability", Label: "团队能力", MaxScore: 30},
	{ID: DimensionProductTechnology, Name: "product & technology", Label: "产品&技术", MaxScore: 20},
	{ID: DimensionMarket, Name: "market outlook", Label: "市场前景", MaxScore: 20},
	{ID: DimensionBusinessModel, Name: "business model", Label: "商业模式", MaxScore: 20},
	{ID: DimensionFinancial, Name: "financial status", Label: "财务情况", MaxScore: 10},
}

// TotalMaxScore is the sum of all dimension max scores
const TotalMaxScore = 100.0

// AllDimensions returns the fixed dimensions in display order
func AllDimensions() []DimensionDef {
	defs := make([]DimensionDef, len(dimensionDefs))
	copy(defs, dimensionDefs)
	return defs
}

// Def returns the definition of the dimension. ok is false for unknown ids and for DimensionOther.
func (d DimensionID) Def() (DimensionDef, bool) {
	for _, def := range dimensionDefs {
		if def.ID == d {
			return def, true
		}
	}
	return DimensionDef{}, false
}

// IsScored reports whether the id names one of the five scored dimensions
func (d DimensionID) IsScored() bool {
	_, ok := d.Def()
	return ok
}

// IsValidReference reports whether a missing-info item may reference the id
func (d DimensionID) IsValidReference() bool {
	return d == DimensionOther || d.IsScored()
}

// String returns the string representation of the dimension id
func (d DimensionID) String() string {
	return string(d)
}

// ParseDimensionID resolves an id, English name or dashboard label to a DimensionID
func ParseDimensionID(s string) (DimensionID, error) {
	v := strings.TrimSpace(s)
	if DimensionID(v) == DimensionOther {
		return DimensionOther, nil
	}
	for _, def := range dimensionDefs {
		if string(def.ID) == v || strings.EqualFold(def.Name, v) || def.Label == v {
			return def.ID, nil
		}
	}
	return "", goerr.New("unknown dimension", goerr.V("dimension", s))
}
