package model_test

import (
	"testing"
	"time"

	"github.com/incubo-lab/pitchreview/pkg/domain/model"
	"github.com/incubo-lab/pitchreview/pkg/domain/types"
	"github.com/m-mizutani/gt"
)

func TestNewScoreSummary(t *testing.T) {
	p := newTestProject(t)
	sheet := model.NewScoreSheet(p.ID)

	summary := model.NewScoreSummary(p, sheet)
	gt.Value(t, summary.TotalScore).Nil()
	gt.V(t, summary.Status).Equal(types.ProjectStatusProcessing)
	gt.S(t, summary.Recommendation).Equal(types.RecommendationAwaiting)
	gt.V(t, summary.TotalPossible).Equal(100.0)

	sheet.Dimensions[0].Score = 15
	sheet.Dimensions[4].Score = 10
	p.RecomputeStatus(sheet, testNow)

	summary = model.NewScoreSummary(p, sheet)
	gt.V(t, *summary.TotalScore).Equal(25.0)
	gt.V(t, summary.OverallPercentage).Equal(25.0)
	gt.V(t, summary.Status).Equal(types.ProjectStatusFailed)
	gt.A(t, summary.Dimensions).Length(5)
	gt.V(t, summary.Dimensions[0].Percentage).Equal(50.0)
	gt.V(t, summary.Dimensions[4].Percentage).Equal(100.0)
	gt.S(t, summary.Dimensions[4].Name).Equal("financial status")
}

func TestNewStatistics(t *testing.T) {
	mk := func(id string, status types.ProjectStatus, age time.Duration) *model.Project {
		return &model.Project{ID: model.ProjectID(id), Status: status, CreatedAt: testNow.Add(-age)}
	}
	projects := []*model.Project{
		mk("a", types.ProjectStatusCompleted, 5*time.Hour),
		mk("b", types.ProjectStatusCompleted, 4*time.Hour),
		mk("c", types.ProjectStatusFailed, 3*time.Hour),
		mk("d", types.ProjectStatusPendingReview, 2*time.Hour),
		mk("e", types.ProjectStatusProcessing, 1*time.Hour),
		mk("f", types.ProjectStatusProcessing, 0),
	}

	stats := model.NewStatistics(projects, 3)
	gt.V(t, stats.Counts[types.ProjectStatusCompleted]).Equal(2)
	gt.V(t, stats.Counts[types.ProjectStatusFailed]).Equal(1)
	gt.V(t, stats.Counts[types.ProjectStatusPendingReview]).Equal(1)
	gt.V(t, stats.Counts[types.ProjectStatusProcessing]).Equal(2)
	gt.A(t, stats.RecentProjects).Length(3)
	gt.V(t, stats.RecentProjects[0].ID).Equal(model.ProjectID("f"))
	gt.V(t, stats.RecentProjects[2].ID).Equal(model.ProjectID("d"))

	empty := model.NewStatistics(nil, 5)
	gt.V(t, empty.Counts[types.ProjectStatusCompleted]).Equal(0)
	gt.A(t, empty.RecentProjects).Length(0)
}
