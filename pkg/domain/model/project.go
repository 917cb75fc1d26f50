package model

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/incubo-lab/pitchreview/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// MaxTeamMembersLength is the maximum number of characters of Project.TeamMembers
const MaxTeamMembersLength = 1000

// ProjectID is a UUID-based identifier for Project
type ProjectID string

// NewProjectID generates a new UUID v4 ProjectID
func NewProjectID() ProjectID {
	return ProjectID(uuid.New().String())
}

// String returns the string representation of ProjectID
func (id ProjectID) String() string {
	return string(id)
}

// Project is an investment-pitch project under review. It owns one score
// sheet, its history and its missing-info ledger.
type Project struct {
	ID             ProjectID
	EnterpriseName string
	ProjectName    string
	Description    string
	TeamMembers    string
	Status         types.ProjectStatus
	TotalScore     *float64
	ReviewResult   types.ReviewResult
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ProjectInput holds the caller-editable descriptive fields of a project
type ProjectInput struct {
	EnterpriseName string
	ProjectName    string
	Description    string
	TeamMembers    string
}

func (in ProjectInput) validate() error {
	if strings.TrimSpace(in.EnterpriseName) == "" {
		return goerr.Wrap(ErrValidation, "enterprise name is required", goerr.V(FieldKey, "enterprise_name"))
	}
	if strings.TrimSpace(in.ProjectName) == "" {
		return goerr.Wrap(ErrValidation, "project name is required", goerr.V(FieldKey, "project_name"))
	}
	return validateTeamMembers(in.TeamMembers)
}

func validateTeamMembers(text string) error {
	if n := utf8.RuneCountInString(text); n > MaxTeamMembersLength {
		return goerr.Wrap(ErrValidation, "team members text is too long",
			goerr.V(FieldKey, "team_members"),
			goerr.V(LengthKey, n))
	}
	return nil
}

// NewProject validates the input and returns a project in processing state
// with no total score.
func NewProject(in ProjectInput, now time.Time) (*Project, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	return &Project{
		ID:             NewProjectID(),
		EnterpriseName: strings.TrimSpace(in.EnterpriseName),
		ProjectName:    strings.TrimSpace(in.ProjectName),
		Description:    in.Description,
		TeamMembers:    in.TeamMembers,
		Status:         types.ProjectStatusProcessing,
		ReviewResult:   types.ReviewResultNone,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Update replaces the descriptive fields. Score and status are untouched.
func (p *Project) Update(in ProjectInput, now time.Time) error {
	if err := in.validate(); err != nil {
		return err
	}
	p.EnterpriseName = strings.TrimSpace(in.EnterpriseName)
	p.ProjectName = strings.TrimSpace(in.ProjectName)
	p.Description = in.Description
	p.TeamMembers = in.TeamMembers
	p.UpdatedAt = now
	return nil
}

// UpdateTeamMembers replaces the team members text. Score and status are untouched.
func (p *Project) UpdateTeamMembers(text string, now time.Time) error {
	if err := validateTeamMembers(text); err != nil {
		return goerr.Wrap(err, "failed to update team members", goerr.V(ProjectIDKey, p.ID))
	}
	p.TeamMembers = text
	p.UpdatedAt = now
	return nil
}

// RecomputeStatus sets TotalScore to the sum of the committed sheet and
// re-derives Status and ReviewResult from it. Every path that changes the
// total score must go through here.
func (p *Project) RecomputeStatus(sheet *ScoreSheet, now time.Time) {
	total := sheet.Total()
	p.TotalScore = &total
	p.syncStatus()
	p.UpdatedAt = now
}

func (p *Project) syncStatus() {
	p.Status = types.Classify(p.TotalScore).Status
	p.ReviewResult = p.Status.ReviewResult()
}

// Classification returns the classifier output for the current total score
func (p *Project) Classification() types.Classification {
	return types.Classify(p.TotalScore)
}

// Validate checks the stored invariants of a project record
func (p *Project) Validate() error {
	if p.ID == "" {
		return goerr.Wrap(ErrValidation, "project ID is required")
	}
	if err := (ProjectInput{
		EnterpriseName: p.EnterpriseName,
		ProjectName:    p.ProjectName,
		TeamMembers:    p.TeamMembers,
	}).validate(); err != nil {
		return goerr.Wrap(err, "invalid project", goerr.V(ProjectIDKey, p.ID))
	}
	if want := types.Classify(p.TotalScore).Status; p.Status != want {
		return goerr.Wrap(ErrValidation, "status is inconsistent with total score",
			goerr.V(ProjectIDKey, p.ID),
			goerr.V("status", p.Status),
			goerr.V("expected", want))
	}
	return nil
}

// Clone returns a deep copy of the project
func (p *Project) Clone() *Project {
	c := *p
	if p.TotalScore != nil {
		total := *p.TotalScore
		c.TotalScore = &total
	}
	return &c
}
