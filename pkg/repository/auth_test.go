package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/incubo-lab/pitchreview/pkg/domain/interfaces"
	"github.com/incubo-lab/pitchreview/pkg/domain/model"
	"github.com/incubo-lab/pitchreview/pkg/domain/model/auth"
	"github.com/incubo-lab/pitchreview/pkg/domain/types"
	"github.com/m-mizutani/gt"
)

func runAuthRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("PutToken and GetToken", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		token, err := auth.NewToken("user-123", "Test User", "reviewer", time.Hour, time.Now())
		gt.NoError(t, err).Required()
		gt.NoError(t, repo.PutToken(ctx, token)).Required()

		retrieved, err := repo.GetToken(ctx, token.ID)
		gt.NoError(t, err).Required()
		gt.V(t, retrieved.ID).Equal(token.ID)
		gt.V(t, retrieved.Secret).Equal(token.Secret)
		gt.S(t, retrieved.Sub).Equal(token.Sub)
		gt.S(t, retrieved.Name).Equal(token.Name)

		// Compare timestamps with tolerance for Firestore precision
		diff := retrieved.ExpiresAt.Sub(token.ExpiresAt)
		gt.B(t, diff < time.Second && diff > -time.Second).True()
	})

	t.Run("GetToken not found", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.GetToken(context.Background(), types.NewTokenID())
		gt.Error(t, err).Is(model.ErrNotFound)
	})

	t.Run("DeleteToken", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		token, err := auth.NewToken("user-456", "Delete User", "reviewer", time.Hour, time.Now())
		gt.NoError(t, err).Required()
		gt.NoError(t, repo.PutToken(ctx, token)).Required()
		gt.NoError(t, repo.DeleteToken(ctx, token.ID)).Required()

		_, err = repo.GetToken(ctx, token.ID)
		gt.Error(t, err).Is(model.ErrNotFound)
		gt.Error(t, repo.DeleteToken(ctx, token.ID)).Is(model.ErrNotFound)
	})

	t.Run("Token validation on Put", func(t *testing.T) {
		repo := newRepo(t)
		invalid := &auth.Token{
			ID:        types.NewTokenID(),
			Secret:    "secret",
			ExpiresAt: time.Now().Add(time.Hour),
		}
		gt.Error(t, repo.PutToken(context.Background(), invalid))
	})
}

func TestMemoryAuthRepository(t *testing.T) {
	runAuthRepositoryTest(t, newMemoryRepository)
}

func TestFirestoreAuthRepository(t *testing.T) {
	runAuthRepositoryTest(t, newFirestoreRepository)
}
