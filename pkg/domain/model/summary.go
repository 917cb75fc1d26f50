package model

import (
	"sort"
	"time"

	"github.com/incubo-lab/pitchreview/pkg/domain/types"
	"github.com/samber/lo"
)

// DimensionSummary is the per-dimension line of a ScoreSummary
type DimensionSummary struct {
	ID         types.DimensionID
	Name       string
	Score      float64
	MaxScore   float64
	Percentage float64
}

// ScoreSummary is the read model behind the score summary page
type ScoreSummary struct {
	ProjectID         ProjectID
	ProjectName       string
	EnterpriseName    string
	TotalScore        *float64
	TotalPossible     float64
	OverallPercentage float64
	Status            types.ProjectStatus
	Recommendation    string
	Dimensions        []DimensionSummary
	LastUpdated       time.Time
}

// NewScoreSummary builds the summary of a project from its committed sheet
func NewScoreSummary(p *Project, sheet *ScoreSheet) *ScoreSummary {
	class := p.Classification()
	summary := &ScoreSummary{
		ProjectID:      p.ID,
		ProjectName:    p.ProjectName,
		EnterpriseName: p.EnterpriseName,
		TotalPossible:  types.TotalMaxScore,
		Status:         class.Status,
		Recommendation: class.Recommendation,
		LastUpdated:    p.UpdatedAt,
	}
	if p.TotalScore != nil {
		total := *p.TotalScore
		summary.TotalScore = &total
		summary.OverallPercentage = percentage(total, types.TotalMaxScore)
	}

	summary.Dimensions = lo.Map(sheet.Dimensions, func(d Dimension, _ int) DimensionSummary {
		def, _ := d.ID.Def()
		return DimensionSummary{
			ID:         d.ID,
			Name:       def.Name,
			Score:      d.Score,
			MaxScore:   d.MaxScore,
			Percentage: percentage(d.Score, d.MaxScore),
		}
	})
	return summary
}

func percentage(v, max float64) float64 {
	if max == 0 {
		return 0
	}
	return v / max * 100
}

// Statistics is the dashboard read model
type Statistics struct {
	Counts         map[types.ProjectStatus]int
	RecentProjects []*Project
}

// NewStatistics counts projects per status and keeps the most recently created ones
func NewStatistics(projects []*Project, recent int) *Statistics {
	counts := lo.CountValuesBy(projects, func(p *Project) types.ProjectStatus {
		return p.Status
	})
	for _, s := range types.AllProjectStatuses() {
		if _, ok := counts[s]; !ok {
			counts[s] = 0
		}
	}

	sorted := append([]*Project(nil), projects...)
	SortProjectsByCreatedDesc(sorted)
	if len(sorted) > recent {
		sorted = sorted[:recent]
	}

	return &Statistics{
		Counts:         counts,
		RecentProjects: sorted,
	}
}

// SortProjectsByCreatedDesc orders newest first, tie-breaking by id for stable output
func SortProjectsByCreatedDesc(projects []*Project) {
	sort.SliceStable(projects, func(i, j int) bool {
		if projects[i].CreatedAt.Equal(projects[j].CreatedAt) {
			return projects[i].ID < projects[j].ID
		}
		return projects[i].CreatedAt.After(projects[j].CreatedAt)
	})
}

// Report bundles everything shown on the report page
type Report struct {
	Project     *Project
	Sheet       *ScoreSheet
	Summary     *ScoreSummary
	MissingInfo []*MissingInfo
	History     []*HistoryEntry
	GeneratedAt time.Time
}
