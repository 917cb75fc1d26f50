package types

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// TokenID identifies an authenticated session
type TokenID string

// NewTokenID generates a new UUID v4 TokenID
func NewTokenID() TokenID {
	return TokenID(uuid.New().String())
}

// Validate checks that the TokenID is a UUID
func (t TokenID) Validate() error {
	if t == "" {
		return goerr.New("token ID is empty")
	}
	if _, err := uuid.Parse(string(t)); err != nil {
		return goerr.Wrap(err, "token ID is not a UUID", goerr.V("token_id", t))
	}
	return nil
}

// String returns the string representation of the token id
func (t TokenID) String() string {
	return string(t)
}

// TokenSecret is the per-session secret bound into the bearer token
type TokenSecret string

// NewTokenSecret generates a random 32 byte secret
func NewTokenSecret() (TokenSecret, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", goerr.Wrap(err, "failed to generate token secret")
	}
	return TokenSecret(hex.EncodeToString(b)), nil
}
