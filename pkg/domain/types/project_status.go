package types

import "fmt"

// ProjectStatus represents the lifecycle status of a project. It is always
// derived from the project's total score by Classify.
type ProjectStatus string

const (
	ProjectStatusProcessing    ProjectStatus = "processing"
	ProjectStatusPendingReview ProjectStatus = "pending_review"
	ProjectStatusCompleted     ProjectStatus = "completed"
	ProjectStatusFailed        ProjectStatus = "failed"
)

// Score thresholds. A score equal to a threshold belongs to the upper bracket.
const (
	CompletedThreshold     = 80.0
	PendingReviewThreshold = 60.0
)

// Recommendations returned by Classify
const (
	RecommendationAwaiting  = "awaiting evaluation"
	RecommendationExcellent = "excellent — eligible for preferential onboarding"
	RecommendationAdmitted  = "meets basic admission criteria"
	RecommendationRejected  = "does not meet admission criteria — resubmit after improvement"
)

// AllProjectStatuses returns all valid project statuses
func AllProjectStatuses() []ProjectStatus {
	return []ProjectStatus{
		ProjectStatusProcessing,
		ProjectStatusPendingReview,
		ProjectStatusCompleted,
		ProjectStatusFailed,
	}
}

// IsValid checks if the project status is valid
func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectStatusProcessing,
		ProjectStatusPendingReview,
		ProjectStatusCompleted,
		ProjectStatusFailed:
		return true
	default:
		return false
	}
}

// String returns the string representation of the project status
func (s ProjectStatus) String() string {
	return string(s)
}

// ReviewResult maps the status to the review verdict. Processing has no verdict.
func (s ProjectStatus) ReviewResult() ReviewResult {
	switch s {
	case ProjectStatusCompleted:
		return ReviewResultPass
	case ProjectStatusPendingReview:
		return ReviewResultConditional
	case ProjectStatusFailed:
		return ReviewResultFail
	default:
		return ReviewResultNone
	}
}

// ParseProjectStatus parses a string into a ProjectStatus
func ParseProjectStatus(s string) (ProjectStatus, error) {
	status := ProjectStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid project status: %s", s)
	}
	return status, nil
}

// Classification is the outcome of classifying a total score
type Classification struct {
	Status         ProjectStatus
	Recommendation string
}

// Classify maps a nullable total score to a status and recommendation.
// It is defined for every value, including NaN which falls into failed.
func Classify(score *float64) Classification {
	switch {
	case score == nil:
		return Classification{Status: ProjectStatusProcessing, Recommendation: RecommendationAwaiting}
	case *score >= CompletedThreshold:
		return Classification{Status: ProjectStatusCompleted, Recommendation: RecommendationExcellent}
	case *score >= PendingReviewThreshold:
		return Classification{Status: ProjectStatusPendingReview, Recommendation: RecommendationAdmitted}
	default:
		return Classification{Status: ProjectStatusFailed, Recommendation: RecommendationRejected}
	}
}
