package types

import "fmt"

// MissingInfoStatus represents the resolution state of a missing-info item
type MissingInfoStatus string

const (
	MissingInfoStatusPending  MissingInfoStatus = "pending"
	MissingInfoStatusProvided MissingInfoStatus = "provided"
	MissingInfoStatusResolved MissingInfoStatus = "resolved"
)

// AllMissingInfoStatuses returns all valid missing-info statuses
func AllMissingInfoStatuses() []MissingInfoStatus {
	return []MissingInfoStatus{
		MissingInfoStatusPending,
		MissingInfoStatusProvided,
		MissingInfoStatusResolved,
	}
}

// IsValid checks if the missing-info status is valid
func (s MissingInfoStatus) IsValid() bool {
	switch s {
	case MissingInfoStatusPending,
		MissingInfoStatusProvided,
		MissingInfoStatusResolved:
		return true
	default:
		return false
	}
}

// Normalize returns the status, treating empty as pending.
func (s MissingInfoStatus) Normalize() MissingInfoStatus {
	if s == "" {
		return MissingInfoStatusPending
	}
	return s
}

// String returns the string representation of the missing-info status
func (s MissingInfoStatus) String() string {
	return string(s)
}

// ParseMissingInfoStatus parses a string into a MissingInfoStatus
func ParseMissingInfoStatus(s string) (MissingInfoStatus, error) {
	status := MissingInfoStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid missing info status: %s", s)
	}
	return status, nil
}
