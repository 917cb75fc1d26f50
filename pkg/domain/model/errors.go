package model

import "github.com/m-mizutani/goerr/v2"

// Error kinds. Every error returned by the domain, repositories and use cases
// wraps exactly one of these so callers can branch with errors.Is.
var (
	// ErrValidation means caller-supplied data violates a stated constraint
	ErrValidation = goerr.New("validation error")
	// ErrConflict means a concurrent commit collided, an edit session is held by
	// someone else, or a duplicate item exists
	ErrConflict = goerr.New("conflict")
	// ErrNotFound means the operation targets a nonexistent id
	ErrNotFound = goerr.New("not found")
	// ErrUnauthenticated means no valid session token was presented
	ErrUnauthenticated = goerr.New("unauthenticated")
)

// Context keys for error values
const (
	ProjectIDKey     = "project_id"
	MissingInfoIDKey = "missing_info_id"
	DimensionKey     = "dimension"
	FieldKey         = "field"
	LengthKey        = "length"
	VersionKey       = "version"
	ActorKey         = "actor"
)
