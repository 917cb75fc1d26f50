package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/incubo-lab/pitchreview/pkg/domain/interfaces"
	"github.com/m-mizutani/goerr/v2"
)

const (
	projectsCollection    = "projects"
	scoreSheetCollection  = "score_sheet"
	historyCollection     = "history"
	missingInfoCollection = "missing_info"
	tokensCollection      = "tokens"

	// score sheet is a single document in the project's score_sheet subcollection
	currentSheetDoc = "current"
)

type Firestore struct {
	client           *firestore.Client
	collectionPrefix string
	project          *projectRepository
	scoreSheet       *scoreSheetRepository
	missingInfo      *missingInfoRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID))
	}

	f := &Firestore{client: client}
	for _, opt := range opts {
		opt(f)
	}

	f.project = &projectRepository{Firestore: f}
	f.scoreSheet = &scoreSheetRepository{Firestore: f}
	f.missingInfo = &missingInfoRepository{Firestore: f}

	return f, nil
}

// CollectionName returns the stored name of a collection under prefix
func CollectionName(prefix, name string) string {
	if prefix != "" {
		return prefix + "_" + name
	}
	return name
}

// ProjectsCollectionName is the top-level collection holding projects
func ProjectsCollectionName(prefix string) string {
	return CollectionName(prefix, projectsCollection)
}

func (f *Firestore) collection(name string) *firestore.CollectionRef {
	return f.client.Collection(CollectionName(f.collectionPrefix, name))
}

func (f *Firestore) projectDoc(id string) *firestore.DocumentRef {
	return f.collection(projectsCollection).Doc(id)
}

func (f *Firestore) Project() interfaces.ProjectRepository {
	return f.project
}

func (f *Firestore) ScoreSheet() interfaces.ScoreSheetRepository {
	return f.scoreSheet
}

func (f *Firestore) MissingInfo() interfaces.MissingInfoRepository {
	return f.missingInfo
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
