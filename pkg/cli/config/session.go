package config

import (
	"context"
	"log/slog"

	"github.com/incubo-lab/pitchreview/pkg/domain/interfaces"
	sessionredis "github.com/incubo-lab/pitchreview/pkg/repository/redis"
	"github.com/incubo-lab/pitchreview/pkg/utils/logging"
	"github.com/incubo-lab/pitchreview/pkg/utils/safe"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Session holds CLI flags selecting where reviewer sessions are stored
type Session struct {
	backend   string
	redisURL  string
	keyPrefix string
}

// Flags returns CLI flags for session store configuration
func (s *Session) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "session-backend",
			Usage:       "Session store (repository or redis)",
			Value:       "repository",
			Category:    "Authentication",
			Sources:     cli.EnvVars("PITCHREVIEW_SESSION_BACKEND"),
			Destination: &s.backend,
		},
		&cli.StringFlag{
			Name:        "redis-url",
			Usage:       "Redis URL for the session store (e.g. redis://:password@localhost:6379/0)",
			Category:    "Authentication",
			Sources:     cli.EnvVars("PITCHREVIEW_REDIS_URL"),
			Destination: &s.redisURL,
		},
		&cli.StringFlag{
			Name:        "redis-key-prefix",
			Usage:       "Prefix of every redis key",
			Category:    "Authentication",
			Sources:     cli.EnvVars("PITCHREVIEW_REDIS_KEY_PREFIX"),
			Destination: &s.keyPrefix,
		},
	}
}

// LogValue implements slog.LogValuer. The redis URL may carry a password and is not logged.
func (s Session) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", s.backend),
		slog.Bool("redis_url_set", s.redisURL != ""),
		slog.String("redis_key_prefix", s.keyPrefix),
	)
}

// Configure returns the session store. With the repository backend the
// sessions live next to the projects. The closer releases the redis client.
func (s *Session) Configure(ctx context.Context, repo interfaces.Repository) (interfaces.SessionRepository, func(), error) {
	switch s.backend {
	case "", "repository":
		return repo, func() {}, nil

	case "redis":
		if s.redisURL == "" {
			return nil, nil, goerr.Wrap(ErrInvalidConfig, "redis-url is required when using redis session backend",
				goerr.V(FlagKey, "redis-url"))
		}
		var opts []sessionredis.Option
		if s.keyPrefix != "" {
			opts = append(opts, sessionredis.WithKeyPrefix(s.keyPrefix))
		}
		store, err := sessionredis.Connect(ctx, s.redisURL, opts...)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to connect session store")
		}
		logging.Default().Info("Using redis session store", "session", s)
		closer := func() { safe.Close(ctx, store) }
		return store, closer, nil

	default:
		return nil, nil, goerr.Wrap(ErrInvalidConfig, "invalid session backend", goerr.V(BackendKey, s.backend))
	}
}
