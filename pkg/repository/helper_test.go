package repository_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/incubo-lab/pitchreview/pkg/domain/interfaces"
	"github.com/incubo-lab/pitchreview/pkg/domain/model"
	"github.com/incubo-lab/pitchreview/pkg/repository/firestore"
	"github.com/incubo-lab/pitchreview/pkg/repository/memory"
	"github.com/m-mizutani/gt"
)

func newMemoryRepository(t *testing.T) interfaces.Repository {
	return memory.New()
}

func newFirestoreRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	projectID := os.Getenv("PITCHREVIEW_TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("PITCHREVIEW_TEST_FIRESTORE_PROJECT_ID not set")
	}

	databaseID := os.Getenv("PITCHREVIEW_TEST_FIRESTORE_DATABASE_ID")
	if databaseID == "" {
		t.Skip("PITCHREVIEW_TEST_FIRESTORE_DATABASE_ID not set")
	}

	ctx := context.Background()
	// random prefix isolates test runs sharing a database
	repo, err := firestore.New(ctx, projectID, databaseID,
		firestore.WithCollectionPrefix("test_"+uuid.NewString()[:8]))
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		gt.NoError(t, repo.Close())
	})
	return repo
}

// createProject stores a fresh project. Firestore keeps timestamps at
// microsecond precision, so times are truncated.
func createProject(t *testing.T, repo interfaces.Repository, name string) *model.Project {
	t.Helper()

	p, err := model.NewProject(model.ProjectInput{
		EnterpriseName: name + " Inc.",
		ProjectName:    name,
		Description:    "test project",
	}, time.Now().UTC().Truncate(time.Millisecond))
	gt.NoError(t, err).Required()
	gt.NoError(t, repo.Project().Create(context.Background(), p)).Required()
	return p
}
