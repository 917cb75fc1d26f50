package interfaces

import (
	"context"

	"github.com/incubo-lab/pitchreview/pkg/domain/model/auth"
	"github.com/incubo-lab/pitchreview/pkg/domain/types"
)

// Repository defines the interface for data persistence
type Repository interface {
	Project() ProjectRepository
	ScoreSheet() ScoreSheetRepository
	MissingInfo() MissingInfoRepository

	SessionRepository

	Close() error
}

// SessionRepository stores reviewer sessions. The same methods are served by
// Repository and by the standalone redis session store.
type SessionRepository interface {
	PutToken(ctx context.Context, token *auth.Token) error
	GetToken(ctx context.Context, tokenID types.TokenID) (*auth.Token, error)
	DeleteToken(ctx context.Context, tokenID types.TokenID) error
}
