package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/incubo-lab/pitchreview/pkg/domain/interfaces"
	"github.com/incubo-lab/pitchreview/pkg/domain/model"
	"github.com/incubo-lab/pitchreview/pkg/domain/model/auth"
	"github.com/incubo-lab/pitchreview/pkg/domain/types"
	"github.com/incubo-lab/pitchreview/pkg/utils/logging"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/crypto/bcrypt"
)

// AuthUseCaseInterface is the session collaborator used by the HTTP layer
type AuthUseCaseInterface interface {
	// Login checks the credentials and opens a session
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	// ValidateToken resolves a bearer token to its session
	ValidateToken(ctx context.Context, bearer string) (*auth.Token, error)
	// Logout revokes the session of a bearer token
	Logout(ctx context.Context, bearer string) error
	// IsNoAuthn reports whether authentication is disabled
	IsNoAuthn() bool
}

// Credential is a reviewer account
type Credential struct {
	Username     string
	Name         string
	Role         string
	PasswordHash string `masq:"secret"`
}

// LoginResult is an opened session and the bearer token that refers to it
type LoginResult struct {
	Token  *auth.Token
	Bearer string `masq:"secret"`
}

// secretClaim carries the session secret inside the signed bearer token
const secretClaim = "sec"

const defaultTokenTTL = 24 * time.Hour

type AuthUseCase struct {
	sessions   interfaces.SessionRepository
	users      map[string]Credential
	signingKey []byte
	ttl        time.Duration
	dummyHash  []byte
	cache      *authCache
	now        func() time.Time
}

var _ AuthUseCaseInterface = &AuthUseCase{}

// AuthOption is a functional option for AuthUseCase
type AuthOption func(*AuthUseCase)

// WithTokenTTL sets the session lifetime
func WithTokenTTL(ttl time.Duration) AuthOption {
	return func(uc *AuthUseCase) {
		uc.ttl = ttl
	}
}

// WithAuthClock replaces time.Now for token issue and expiry checks
func WithAuthClock(now func() time.Time) AuthOption {
	return func(uc *AuthUseCase) {
		uc.now = now
	}
}

func NewAuthUseCase(sessions interfaces.SessionRepository, signingKey []byte, users []Credential, options ...AuthOption) (*AuthUseCase, error) {
	if len(signingKey) < 32 {
		return nil, goerr.New("signing key must be at least 32 bytes", goerr.V("length", len(signingKey)))
	}

	uc := &AuthUseCase{
		sessions:   sessions,
		users:      make(map[string]Credential, len(users)),
		signingKey: signingKey,
		ttl:        defaultTokenTTL,
		cache:      newAuthCache(),
		now:        func() time.Time { return time.Now().UTC() },
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte(types.NewTokenID()), bcrypt.DefaultCost)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to prepare password check")
	}
	uc.dummyHash = dummy

	for _, u := range users {
		if u.Username == "" || u.PasswordHash == "" {
			return nil, goerr.New("credential needs username and password hash", goerr.V("username", u.Username))
		}
		if _, dup := uc.users[u.Username]; dup {
			return nil, goerr.New("duplicate username in credentials", goerr.V("username", u.Username))
		}
		uc.users[u.Username] = u
	}

	for _, opt := range options {
		opt(uc)
	}

	return uc, nil
}

// IsNoAuthn returns false for regular AuthUseCase
func (uc *AuthUseCase) IsNoAuthn() bool {
	return false
}

func (uc *AuthUseCase) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, ok := uc.users[username]
	if !ok {
		// unknown users cost one comparison too
		_ = bcrypt.CompareHashAndPassword(uc.dummyHash, []byte(password))
		return nil, goerr.Wrap(model.ErrUnauthenticated, "invalid username or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, goerr.Wrap(model.ErrUnauthenticated, "invalid username or password")
	}

	name := user.Name
	if name == "" {
		name = user.Username
	}
	token, err := auth.NewToken(user.Username, name, user.Role, uc.ttl, uc.now())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create token")
	}

	if err := uc.sessions.PutToken(ctx, token); err != nil {
		return nil, goerr.Wrap(err, "failed to store token", goerr.V("token_id", token.ID))
	}

	bearer, err := uc.sign(token)
	if err != nil {
		return nil, err
	}

	logging.From(ctx).Info("reviewer logged in", "sub", token.Sub, "token_id", token.ID)
	return &LoginResult{Token: token, Bearer: bearer}, nil
}

func (uc *AuthUseCase) sign(token *auth.Token) (string, error) {
	claims, err := jwt.NewBuilder().
		JwtID(token.ID.String()).
		Subject(token.Sub).
		IssuedAt(token.CreatedAt).
		Expiration(token.ExpiresAt).
		Claim(secretClaim, string(token.Secret)).
		Build()
	if err != nil {
		return "", goerr.Wrap(err, "failed to build jwt")
	}

	signed, err := jwt.Sign(claims, jwt.WithKey(jwa.HS256, uc.signingKey))
	if err != nil {
		return "", goerr.Wrap(err, "failed to sign jwt")
	}
	return string(signed), nil
}

// parse verifies the bearer signature and expiry and returns the session reference
func (uc *AuthUseCase) parse(bearer string) (types.TokenID, types.TokenSecret, error) {
	claims, err := jwt.Parse([]byte(bearer),
		jwt.WithKey(jwa.HS256, uc.signingKey),
		jwt.WithValidate(true),
		jwt.WithClock(jwt.ClockFunc(uc.now)),
	)
	if err != nil {
		return "", "", goerr.Wrap(model.ErrUnauthenticated, "invalid bearer token", goerr.V("reason", err.Error()))
	}

	sec, ok := claims.Get(secretClaim)
	secret, isString := sec.(string)
	if !ok || !isString || secret == "" {
		return "", "", goerr.Wrap(model.ErrUnauthenticated, "bearer token has no session secret")
	}

	tokenID := types.TokenID(claims.JwtID())
	if err := tokenID.Validate(); err != nil {
		return "", "", goerr.Wrap(model.ErrUnauthenticated, "bearer token has invalid session id")
	}
	return tokenID, types.TokenSecret(secret), nil
}

// ValidateToken validates the bearer token and returns the session
func (uc *AuthUseCase) ValidateToken(ctx context.Context, bearer string) (*auth.Token, error) {
	tokenID, secret, err := uc.parse(bearer)
	if err != nil {
		return nil, err
	}
	return uc.validateTokenWithCache(ctx, tokenID, secret)
}

// Logout revokes the session of the bearer token
func (uc *AuthUseCase) Logout(ctx context.Context, bearer string) error {
	token, err := uc.ValidateToken(ctx, bearer)
	if err != nil {
		return err
	}

	// Remove from cache first
	uc.cache.remove(token.ID)

	if err := uc.sessions.DeleteToken(ctx, token.ID); err != nil && !errors.Is(err, model.ErrNotFound) {
		return goerr.Wrap(err, "failed to delete token", goerr.V("token_id", token.ID))
	}

	logging.From(ctx).Info("reviewer logged out", "sub", token.Sub, "token_id", token.ID)
	return nil
}

func secretEqual(a, b types.TokenSecret) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// HashPassword returns the bcrypt hash stored in the credentials file
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", goerr.Wrap(err, "failed to hash password")
	}
	return string(hash), nil
}
