package model

import (
	"time"

	"github.com/google/uuid"
)

// HistoryEntryID is a UUID-based identifier for HistoryEntry
type HistoryEntryID string

// NewHistoryEntryID generates a new UUID v7 HistoryEntryID so ids sort by creation time
func NewHistoryEntryID() HistoryEntryID {
	return HistoryEntryID(uuid.Must(uuid.NewV7()).String())
}

func (id HistoryEntryID) String() string {
	return string(id)
}

// HistoryEntry is an immutable snapshot of a score sheet taken right before
// it was replaced by a commit.
type HistoryEntry struct {
	ID         HistoryEntryID
	ProjectID  ProjectID
	TotalScore *float64 // nil when the snapshot predates the first commit
	Dimensions []Dimension
	ModifiedBy string
	Note       string
	CreatedAt  time.Time
}

// NewHistoryEntry snapshots sheet. The total score is only recorded when
// the sheet had been committed before.
func NewHistoryEntry(sheet *ScoreSheet, modifiedBy, note string, now time.Time) *HistoryEntry {
	entry := &HistoryEntry{
		ID:         NewHistoryEntryID(),
		ProjectID:  sheet.ProjectID,
		Dimensions: cloneDimensions(sheet.Dimensions),
		ModifiedBy: modifiedBy,
		Note:       note,
		CreatedAt:  now,
	}
	if sheet.IsCommitted() {
		total := sheet.Total()
		entry.TotalScore = &total
	}
	return entry
}

// Clone returns a deep copy of the entry
func (e *HistoryEntry) Clone() *HistoryEntry {
	c := *e
	c.Dimensions = cloneDimensions(e.Dimensions)
	if e.TotalScore != nil {
		total := *e.TotalScore
		c.TotalScore = &total
	}
	return &c
}
