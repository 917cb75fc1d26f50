package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/incubo-lab/pitchreview/pkg/domain/interfaces"
	"github.com/incubo-lab/pitchreview/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// Auth holds CLI flags for reviewer authentication
type Auth struct {
	noAuth          bool
	signingKey      string
	tokenTTL        time.Duration
	credentialsFile string
}

// Flags returns CLI flags for authentication configuration
func (a *Auth) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "no-auth",
			Usage:       "Skip authentication and run every request as the anonymous reviewer (development only)",
			Category:    "Authentication",
			Sources:     cli.EnvVars("PITCHREVIEW_NO_AUTH"),
			Destination: &a.noAuth,
		},
		&cli.StringFlag{
			Name:        "jwt-signing-key",
			Usage:       "HS256 key for bearer tokens (at least 32 bytes)",
			Category:    "Authentication",
			Sources:     cli.EnvVars("PITCHREVIEW_JWT_SIGNING_KEY"),
			Destination: &a.signingKey,
		},
		&cli.DurationFlag{
			Name:        "token-ttl",
			Usage:       "Lifetime of a reviewer session",
			Value:       24 * time.Hour,
			Category:    "Authentication",
			Sources:     cli.EnvVars("PITCHREVIEW_TOKEN_TTL"),
			Destination: &a.tokenTTL,
		},
		&cli.StringFlag{
			Name:        "credentials",
			Usage:       "Path to the reviewer credentials TOML file",
			Category:    "Authentication",
			Sources:     cli.EnvVars("PITCHREVIEW_CREDENTIALS"),
			Destination: &a.credentialsFile,
		},
	}
}

// LogValue implements slog.LogValuer
func (a Auth) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("no_auth", a.noAuth),
		slog.Bool("signing_key_set", a.signingKey != ""),
		slog.Duration("token_ttl", a.tokenTTL),
		slog.String("credentials", a.credentialsFile),
	)
}

// IsNoAuthMode returns true when authentication is disabled
func (a *Auth) IsNoAuthMode() bool {
	return a.noAuth
}

// Configure builds the authentication use case
func (a *Auth) Configure(sessions interfaces.SessionRepository) (usecase.AuthUseCaseInterface, error) {
	if a.noAuth {
		return usecase.NewNoAuthnUseCase(), nil
	}

	if a.signingKey == "" {
		return nil, goerr.Wrap(ErrInvalidConfig, "jwt-signing-key is required unless --no-auth is set",
			goerr.V(FlagKey, "jwt-signing-key"))
	}
	if a.credentialsFile == "" {
		return nil, goerr.Wrap(ErrInvalidConfig, "credentials is required unless --no-auth is set",
			goerr.V(FlagKey, "credentials"))
	}

	users, err := LoadCredentials(a.credentialsFile)
	if err != nil {
		return nil, err
	}

	authUC, err := usecase.NewAuthUseCase(sessions, []byte(a.signingKey), users, usecase.WithTokenTTL(a.tokenTTL))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure authentication")
	}
	return authUC, nil
}

type credentialsFile struct {
	Users []struct {
		Username     string `toml:"username"`
		Name         string `toml:"name"`
		Role         string `toml:"role"`
		PasswordHash string `toml:"password_hash"`
	} `toml:"users"`
}

// LoadCredentials reads reviewer accounts from a TOML file
func LoadCredentials(path string) ([]usecase.Credential, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read credentials file", goerr.V(ConfigPathKey, path))
	}

	var file credentialsFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(err, "failed to parse credentials file", goerr.V(ConfigPathKey, path))
	}

	if len(file.Users) == 0 {
		return nil, goerr.Wrap(ErrInvalidConfig, "credentials file has no users", goerr.V(ConfigPathKey, path))
	}

	users := make([]usecase.Credential, 0, len(file.Users))
	for i, u := range file.Users {
		if u.Username == "" {
			return nil, goerr.Wrap(ErrMissingName, "user needs a username",
				goerr.V(ConfigPathKey, path), goerr.V(IndexKey, i))
		}
		if u.PasswordHash == "" {
			return nil, goerr.Wrap(ErrInvalidConfig, "user needs a password_hash",
				goerr.V(ConfigPathKey, path), goerr.V(UsernameKey, u.Username))
		}
		users = append(users, usecase.Credential{
			Username:     u.Username,
			Name:         u.Name,
			Role:         u.Role,
			PasswordHash: u.PasswordHash,
		})
	}
	return users, nil
}
