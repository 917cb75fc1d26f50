package types_test

import (
	"testing"

	"github.com/incubo-lab/pitchreview/pkg/domain/types"
	"github.com/m-mizutani/gt"
)

func TestAllDimensions(t *testing.T) {
	defs := types.AllDimensions()
	gt.A(t, defs).Length(5)

	var total float64
	for _, d := range defs {
		total += d.MaxScore
		gt.B(t, d.ID.IsScored()).True()
	}
	gt.V(t, total).Equal(types.TotalMaxScore)

	// callers cannot mutate the fixed table
	defs[0].MaxScore = 1
	again := types.AllDimensions()
	gt.V(t, again[0].MaxScore).Equal(30.0)
}

func TestParseDimensionID(t *testing.T) {
	tests := []struct {
		input   string
		want    types.DimensionID
		wantErr bool
	}{
		{input: "financial", want: types.DimensionFinancial},
		{input: "financial status", want: types.DimensionFinancial},
		{input: "Financial Status", want: types.DimensionFinancial},
		{input: "财务情况", want: types.DimensionFinancial},
		{input: " team ", want: types.DimensionTeam},
		{input: "产品&技术", want: types.DimensionProductTechnology},
		{input: "other", want: types.DimensionOther},
		{input: "legal", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := types.ParseDimensionID(tt.input)
			if tt.wantErr {
				gt.Error(t, err)
				return
			}
			gt.NoError(t, err)
			gt.V(t, got).Equal(tt.want)
		})
	}
}

func TestDimensionID_IsValidReference(t *testing.T) {
	gt.B(t, types.DimensionOther.IsValidReference()).True()
	gt.B(t, types.DimensionOther.IsScored()).False()
	gt.B(t, types.DimensionMarket.IsValidReference()).True()
	gt.B(t, types.DimensionID("legal").IsValidReference()).False()
}

func TestMissingInfoStatus(t *testing.T) {
	gt.A(t, types.AllMissingInfoStatuses()).Length(3)
	gt.V(t, types.MissingInfoStatus("").Normalize()).Equal(types.MissingInfoStatusPending)

	s, err := types.ParseMissingInfoStatus("provided")
	gt.NoError(t, err)
	gt.V(t, s).Equal(types.MissingInfoStatusProvided)

	_, err = types.ParseMissingInfoStatus("closed")
	gt.Error(t, err)
}

func TestTokenID(t *testing.T) {
	id := types.NewTokenID()
	gt.NoError(t, id.Validate())
	gt.Error(t, types.TokenID("").Validate())
	gt.Error(t, types.TokenID("not-a-uuid").Validate())

	s1, err := types.NewTokenSecret()
	gt.NoError(t, err)
	s2, err := types.NewTokenSecret()
	gt.NoError(t, err)
	gt.S(t, string(s1)).NotEqual(string(s2))
	gt.Number(t, len(s1)).Equal(64)
}
