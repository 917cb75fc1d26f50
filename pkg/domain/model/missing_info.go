package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/incubo-lab/pitchreview/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// MissingInfoID is a UUID-based identifier for MissingInfo
type MissingInfoID string

// NewMissingInfoID generates a new UUID v4 MissingInfoID
func NewMissingInfoID() MissingInfoID {
	return MissingInfoID(uuid.New().String())
}

// String returns the string representation of MissingInfoID
func (id MissingInfoID) String() string {
	return string(id)
}

// MissingInfo is a gap in the submitted material flagged against a dimension.
// Items are never edited in place; a status change is a remove followed by an add.
type MissingInfo struct {
	ID              MissingInfoID
	ProjectID       ProjectID
	Dimension       types.DimensionID
	InformationType string
	Description     string
	Status          types.MissingInfoStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// MissingInfoInput is the caller-supplied content of a new item
type MissingInfoInput struct {
	Dimension       string
	InformationType string
	Description     string
	Status          string
}

// NewMissingInfo validates the input and returns an item with a fresh id
func NewMissingInfo(projectID ProjectID, in MissingInfoInput, now time.Time) (*MissingInfo, error) {
	if strings.TrimSpace(in.Dimension) == "" {
		return nil, goerr.Wrap(ErrValidation, "dimension is required", goerr.V(FieldKey, "dimension"))
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, goerr.Wrap(ErrValidation, "description is required", goerr.V(FieldKey, "description"))
	}

	dim, err := types.ParseDimensionID(in.Dimension)
	if err != nil {
		return nil, goerr.Wrap(ErrValidation, "dimension must be a scored dimension or other",
			goerr.V(DimensionKey, in.Dimension))
	}

	status := types.MissingInfoStatus(in.Status).Normalize()
	if !status.IsValid() {
		return nil, goerr.Wrap(ErrValidation, "invalid missing info status", goerr.V("status", in.Status))
	}

	return &MissingInfo{
		ID:              NewMissingInfoID(),
		ProjectID:       projectID,
		Dimension:       dim,
		InformationType: strings.TrimSpace(in.InformationType),
		Description:     strings.TrimSpace(in.Description),
		Status:          status,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// ContentKey identifies the (dimension, information type, description) triple.
// Two items with the same key in one project are duplicates.
func (m *MissingInfo) ContentKey() string {
	h := sha256.New()
	for _, part := range []string{string(m.Dimension), m.InformationType, m.Description} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Clone returns a copy of the item
func (m *MissingInfo) Clone() *MissingInfo {
	c := *m
	return &c
}
