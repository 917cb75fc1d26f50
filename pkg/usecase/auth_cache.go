package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/incubo-lab/pitchreview/pkg/domain/model"
	"github.com/incubo-lab/pitchreview/pkg/domain/model/auth"
	"github.com/incubo-lab/pitchreview/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

const (
	authCacheTTL = 5 * time.Minute
)

type cachedToken struct {
	token     *auth.Token
	expiresAt time.Time
}

type authCache struct {
	cache sync.Map
}

func newAuthCache() *authCache {
	return &authCache{}
}

func (c *authCache) get(tokenID types.TokenID, now time.Time) (*auth.Token, bool) {
	val, ok := c.cache.Load(tokenID)
	if !ok {
		return nil, false
	}

	cached := val.(*cachedToken)
	if now.After(cached.expiresAt) {
		c.cache.Delete(tokenID)
		return nil, false
	}

	return cached.token, true
}

func (c *authCache) set(token *auth.Token, now time.Time) {
	cached := &cachedToken{
		token:     token,
		expiresAt: now.Add(authCacheTTL),
	}
	c.cache.Store(token.ID, cached)
}

func (c *authCache) remove(tokenID types.TokenID) {
	c.cache.Delete(tokenID)
}

// validateTokenWithCache resolves the session, consulting the cache first
func (uc *AuthUseCase) validateTokenWithCache(ctx context.Context, tokenID types.TokenID, tokenSecret types.TokenSecret) (*auth.Token, error) {
	now := uc.now()

	if token, ok := uc.cache.get(tokenID, now); ok {
		if !secretEqual(token.Secret, tokenSecret) {
			return nil, goerr.Wrap(model.ErrUnauthenticated, "invalid token secret")
		}
		if token.IsExpired(now) {
			uc.cache.remove(tokenID)
			return nil, goerr.Wrap(model.ErrUnauthenticated, "token expired")
		}
		return token, nil
	}

	// Cache miss, get from repository
	token, err := uc.sessions.GetToken(ctx, tokenID)
	if errors.Is(err, model.ErrNotFound) {
		return nil, goerr.Wrap(model.ErrUnauthenticated, "session not found", goerr.V("token_id", tokenID))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get token from repository")
	}

	if !secretEqual(token.Secret, tokenSecret) {
		return nil, goerr.Wrap(model.ErrUnauthenticated, "invalid token secret")
	}

	if token.IsExpired(now) {
		if err := uc.sessions.DeleteToken(ctx, tokenID); err != nil && !errors.Is(err, model.ErrNotFound) {
			return nil, goerr.Wrap(err, "failed to delete expired token", goerr.V("tokenID", tokenID))
		}
		return nil, goerr.Wrap(model.ErrUnauthenticated, "token expired")
	}

	uc.cache.set(token, now)
	return token, nil
}
