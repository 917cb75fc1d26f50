package usecase

import (
	"context"

	"github.com/incubo-lab/pitchreview/pkg/domain/model/auth"
)

// NoAuthnUseCase accepts every request as the anonymous reviewer (for development/testing)
type NoAuthnUseCase struct {
	token *auth.Token
}

var _ AuthUseCaseInterface = &NoAuthnUseCase{}

func NewNoAuthnUseCase() *NoAuthnUseCase {
	return &NoAuthnUseCase{token: auth.NewAnonymousToken()}
}

// Login returns the anonymous session without checking credentials
func (uc *NoAuthnUseCase) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	return &LoginResult{Token: uc.token}, nil
}

// ValidateToken always returns the anonymous session
func (uc *NoAuthnUseCase) ValidateToken(ctx context.Context, bearer string) (*auth.Token, error) {
	return uc.token, nil
}

// Logout does nothing in no-auth mode
func (uc *NoAuthnUseCase) Logout(ctx context.Context, bearer string) error {
	return nil
}

// IsNoAuthn returns true for NoAuthnUseCase
func (uc *NoAuthnUseCase) IsNoAuthn() bool {
	return true
}
