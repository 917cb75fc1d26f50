package config_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/incubo-lab/pitchreview/pkg/cli/config"
	"github.com/incubo-lab/pitchreview/pkg/domain/model/auth"
	"github.com/incubo-lab/pitchreview/pkg/repository/memory"
	"github.com/m-mizutani/gt"
)

func TestRepository_Configure(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		var cfg config.Repository
		parseFlags(t, cfg.Flags(), "--repository-backend", "memory")
		repo, err := cfg.Configure(ctx)
		gt.NoError(t, err).Required()
		gt.NoError(t, repo.Close())
	})

	t.Run("firestore needs project id", func(t *testing.T) {
		var cfg config.Repository
		parseFlags(t, cfg.Flags())
		gt.S(t, cfg.Backend()).Equal("firestore")
		_, err := cfg.Configure(ctx)
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})

	t.Run("unknown backend", func(t *testing.T) {
		var cfg config.Repository
		parseFlags(t, cfg.Flags(), "--repository-backend", "sqlite")
		_, err := cfg.Configure(ctx)
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})
}

func TestSession_Configure(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()

	t.Run("repository", func(t *testing.T) {
		var cfg config.Session
		parseFlags(t, cfg.Flags())
		sessions, closer, err := cfg.Configure(ctx, repo)
		gt.NoError(t, err).Required()
		defer closer()
		gt.V(t, sessions).NotNil()
	})

	t.Run("redis needs url", func(t *testing.T) {
		var cfg config.Session
		parseFlags(t, cfg.Flags(), "--session-backend", "redis")
		_, _, err := cfg.Configure(ctx, repo)
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		var cfg config.Session
		parseFlags(t, cfg.Flags(),
			"--session-backend", "redis",
			"--redis-url", "redis://"+mr.Addr()+"/0",
			"--redis-key-prefix", "cfg:")
		sessions, closer, err := cfg.Configure(ctx, repo)
		gt.NoError(t, err).Required()
		defer closer()

		token, err := auth.NewToken("alice", "Alice", "reviewer", time.Hour, time.Now())
		gt.NoError(t, err).Required()
		gt.NoError(t, sessions.PutToken(ctx, token)).Required()
		gt.B(t, mr.Exists("cfg:pitchreview:token:"+token.ID.String())).True()

		got, err := sessions.GetToken(ctx, token.ID)
		gt.NoError(t, err).Required()
		gt.S(t, got.Sub).Equal("alice")
	})

	t.Run("unknown backend", func(t *testing.T) {
		var cfg config.Session
		parseFlags(t, cfg.Flags(), "--session-backend", "memcached")
		_, _, err := cfg.Configure(ctx, repo)
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})
}
