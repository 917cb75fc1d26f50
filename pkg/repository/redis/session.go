package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/incubo-lab/pitchreview/pkg/domain/interfaces"
	"github.com/incubo-lab/pitchreview/pkg/domain/model"
	"github.com/incubo-lab/pitchreview/pkg/domain/model/auth"
	"github.com/incubo-lab/pitchreview/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"github.com/redis/go-redis/v9"
)

// tokenKeyPrefix + token id -> JSON encoded auth.Token
const tokenKeyPrefix = "pitchreview:token:"

// SessionStore keeps sessions in redis with a TTL equal to the token lifetime
type SessionStore struct {
	client *redis.Client
	prefix string
}

var _ interfaces.SessionRepository = &SessionStore{}

type Option func(*SessionStore)

// WithKeyPrefix namespaces all keys, e.g. per environment
func WithKeyPrefix(prefix string) Option {
	return func(s *SessionStore) {
		s.prefix = prefix
	}
}

func New(client *redis.Client, opts ...Option) *SessionStore {
	s := &SessionStore{client: client}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connect opens a client from a redis URL and checks connectivity
func Connect(ctx context.Context, url string, opts ...Option) (*SessionStore, error) {
	options, err := redis.ParseURL(url)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid redis URL")
	}

	client := redis.NewClient(options)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, goerr.Wrap(err, "failed to connect to redis", goerr.V("addr", options.Addr))
	}

	return New(client, opts...), nil
}

func (s *SessionStore) tokenKey(id types.TokenID) string {
	return s.prefix + tokenKeyPrefix + id.String()
}

func (s *SessionStore) PutToken(ctx context.Context, token *auth.Token) error {
	if err := token.Validate(); err != nil {
		return goerr.Wrap(err, "invalid token")
	}

	data, err := json.Marshal(token)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal token")
	}

	// zero means no expiry
	var ttl time.Duration
	if !token.ExpiresAt.IsZero() {
		ttl = time.Until(token.ExpiresAt)
		if ttl <= 0 {
			return goerr.New("token already expired", goerr.V("token_id", token.ID))
		}
	}

	if err := s.client.Set(ctx, s.tokenKey(token.ID), data, ttl).Err(); err != nil {
		return goerr.Wrap(err, "failed to put token to redis", goerr.V("token_id", token.ID))
	}

	return nil
}

func (s *SessionStore) GetToken(ctx context.Context, tokenID types.TokenID) (*auth.Token, error) {
	if err := tokenID.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid token ID")
	}

	data, err := s.client.Get(ctx, s.tokenKey(tokenID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, goerr.Wrap(model.ErrNotFound, "token not found", goerr.V("token_id", tokenID))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get token from redis", goerr.V("token_id", tokenID))
	}

	var token auth.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal token", goerr.V("token_id", tokenID))
	}

	return &token, nil
}

func (s *SessionStore) DeleteToken(ctx context.Context, tokenID types.TokenID) error {
	if err := tokenID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid token ID")
	}

	n, err := s.client.Del(ctx, s.tokenKey(tokenID)).Result()
	if err != nil {
		return goerr.Wrap(err, "failed to delete token from redis", goerr.V("token_id", tokenID))
	}
	if n == 0 {
		return goerr.Wrap(model.ErrNotFound, "token not found", goerr.V("token_id", tokenID))
	}
	return nil
}

func (s *SessionStore) Close() error {
	return s.client.Close()
}
