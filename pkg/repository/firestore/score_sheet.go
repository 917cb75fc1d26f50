package firestore

import (
	"context"
	"sort"

	"cloud.google.com/go/firestore"
	"github.com/incubo-lab/pitchreview/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type scoreSheetRepository struct {
	*Firestore
}

func (r *scoreSheetRepository) sheetDoc(projectID model.ProjectID) *firestore.DocumentRef {
	return r.projectDoc(projectID.String()).Collection(scoreSheetCollection).Doc(currentSheetDoc)
}

func (r *scoreSheetRepository) historyCollection(projectID model.ProjectID) *firestore.CollectionRef {
	return r.projectDoc(projectID.String()).Collection(historyCollection)
}

// Get reads the sheet together with its project, so a sheet left behind by
// an unfinished project sweep is never returned.
func (r *scoreSheetRepository) Get(ctx context.Context, projectID model.ProjectID) (*model.ScoreSheet, error) {
	docs, err := r.client.GetAll(ctx, []*firestore.DocumentRef{
		r.projectDoc(projectID.String()),
		r.sheetDoc(projectID),
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get score sheet", goerr.V(model.ProjectIDKey, projectID))
	}
	if !docs[0].Exists() || !docs[1].Exists() {
		return nil, goerr.Wrap(model.ErrNotFound, "score sheet not found", goerr.V(model.ProjectIDKey, projectID))
	}

	var sheetDoc scoreSheetDocument
	if err := docs[1].DataTo(&sheetDoc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal score sheet", goerr.V(model.ProjectIDKey, projectID))
	}
	return sheetDoc.toModel(), nil
}

func (r *scoreSheetRepository) Commit(ctx context.Context, c *model.ScoreCommit) error {
	projectRef := r.projectDoc(c.ProjectID.String())
	sheetRef := r.sheetDoc(c.ProjectID)
	historyRef := r.historyCollection(c.ProjectID).Doc(c.History.ID.String())

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(projectRef); err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(model.ErrNotFound, "project not found", goerr.V(model.ProjectIDKey, c.ProjectID))
			}
			return goerr.Wrap(err, "failed to get project", goerr.V(model.ProjectIDKey, c.ProjectID))
		}

		var current int64
		doc, err := tx.Get(sheetRef)
		switch {
		case status.Code(err) == codes.NotFound:
		case err != nil:
			return goerr.Wrap(err, "failed to get score sheet", goerr.V(model.ProjectIDKey, c.ProjectID))
		default:
			var sheetDoc scoreSheetDocument
			if err := doc.DataTo(&sheetDoc); err != nil {
				return goerr.Wrap(err, "failed to unmarshal score sheet", goerr.V(model.ProjectIDKey, c.ProjectID))
			}
			current = sheetDoc.Version
		}

		if current != c.ExpectedVersion {
			return goerr.Wrap(model.ErrConflict, "score sheet was committed concurrently",
				goerr.V(model.ProjectIDKey, c.ProjectID),
				goerr.V(model.VersionKey, current),
				goerr.V("expected_version", c.ExpectedVersion))
		}

		if err := tx.Set(sheetRef, toScoreSheetDocument(c.Sheet)); err != nil {
			return err
		}
		if err := tx.Create(historyRef, toHistoryDocument(c.History)); err != nil {
			return err
		}
		return tx.Update(projectRef, []firestore.Update{
			{Path: "TotalScore", Value: c.Project.TotalScore},
			{Path: "Status", Value: c.Project.Status.String()},
			{Path: "ReviewResult", Value: string(c.Project.ReviewResult)},
			{Path: "UpdatedAt", Value: c.Project.UpdatedAt},
		})
	})
	if err != nil {
		return goerr.Wrap(err, "failed to commit score sheet", goerr.V(model.ProjectIDKey, c.ProjectID))
	}
	return nil
}

func (r *scoreSheetRepository) AppendHistory(ctx context.Context, entry *model.HistoryEntry) error {
	projectRef := r.projectDoc(entry.ProjectID.String())
	historyRef := r.historyCollection(entry.ProjectID).Doc(entry.ID.String())

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(projectRef); err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(model.ErrNotFound, "project not found", goerr.V(model.ProjectIDKey, entry.ProjectID))
			}
			return err
		}
		return tx.Create(historyRef, toHistoryDocument(entry))
	})
	if err != nil {
		return goerr.Wrap(err, "failed to append history", goerr.V(model.ProjectIDKey, entry.ProjectID))
	}
	return nil
}

func (r *scoreSheetRepository) ListHistory(ctx context.Context, projectID model.ProjectID) ([]*model.HistoryEntry, error) {
	if _, err := r.projectDoc(projectID.String()).Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrNotFound, "project not found", goerr.V(model.ProjectIDKey, projectID))
		}
		return nil, goerr.Wrap(err, "failed to get project", goerr.V(model.ProjectIDKey, projectID))
	}

	iter := r.historyCollection(projectID).OrderBy("CreatedAt", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	entries := []*model.HistoryEntry{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate history", goerr.V(model.ProjectIDKey, projectID))
		}

		var historyDoc historyDocument
		if err := doc.DataTo(&historyDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal history", goerr.V("docID", doc.Ref.ID))
		}
		entries = append(entries, historyDoc.toModel())
	}

	// entry ids are UUID v7, so they break CreatedAt ties in insertion order
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].ID < entries[j].ID
		}
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	return entries, nil
}
