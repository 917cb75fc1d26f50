package auth

import (
	"context"
	"time"

	"github.com/incubo-lab/pitchreview/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// AnonymousUser is the subject used when authentication is disabled
const AnonymousUser = "anonymous"

// Token is a reviewer session. The bearer token handed to clients is a
// signed JWT whose jti is ID and whose "sec" claim is Secret; the record
// itself lives in a SessionRepository so that logout can revoke it.
type Token struct {
	ID        types.TokenID
	Secret    types.TokenSecret `masq:"secret"`
	Sub       string
	Name      string
	Role      string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// NewToken creates a session for the user that expires after ttl
func NewToken(sub, name, role string, ttl time.Duration, now time.Time) (*Token, error) {
	secret, err := types.NewTokenSecret()
	if err != nil {
		return nil, err
	}
	return &Token{
		ID:        types.NewTokenID(),
		Secret:    secret,
		Sub:       sub,
		Name:      name,
		Role:      role,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}, nil
}

// NewAnonymousToken returns the token used in no-auth mode
func NewAnonymousToken() *Token {
	return &Token{
		ID:   types.NewTokenID(),
		Sub:  AnonymousUser,
		Name: AnonymousUser,
		Role: "reviewer",
	}
}

// Validate checks the required fields
func (t *Token) Validate() error {
	if err := t.ID.Validate(); err != nil {
		return err
	}
	if t.Secret == "" {
		return goerr.New("token secret is empty", goerr.V("token_id", t.ID))
	}
	if t.Sub == "" {
		return goerr.New("token subject is empty", goerr.V("token_id", t.ID))
	}
	return nil
}

// IsExpired reports whether the token has expired at now. Zero ExpiresAt never expires.
func (t *Token) IsExpired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && now.After(t.ExpiresAt)
}

type ctxTokenKey struct{}

// ContextWithToken stores the token in ctx
func ContextWithToken(ctx context.Context, token *Token) context.Context {
	return context.WithValue(ctx, ctxTokenKey{}, token)
}

// TokenFromContext returns the token stored by ContextWithToken
func TokenFromContext(ctx context.Context) (*Token, error) {
	token, ok := ctx.Value(ctxTokenKey{}).(*Token)
	if !ok || token == nil {
		return nil, goerr.New("no token in context")
	}
	return token, nil
}

// ActorFromContext returns the subject of the session token, or AnonymousUser
func ActorFromContext(ctx context.Context) string {
	if token, err := TokenFromContext(ctx); err == nil {
		return token.Sub
	}
	return AnonymousUser
}
