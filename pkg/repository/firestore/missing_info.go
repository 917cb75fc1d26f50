package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/incubo-lab/pitchreview/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// missingInfoRepository stores items under their content key so that the
// duplicate check and the insert happen in one transaction.
type missingInfoRepository struct {
	*Firestore
}

func (r *missingInfoRepository) itemsCollection(projectID model.ProjectID) *firestore.CollectionRef {
	return r.projectDoc(projectID.String()).Collection(missingInfoCollection)
}

func (r *missingInfoRepository) ensureProject(ctx context.Context, projectID model.ProjectID) error {
	if _, err := r.projectDoc(projectID.String()).Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(model.ErrNotFound, "project not found", goerr.V(model.ProjectIDKey, projectID))
		}
		return goerr.Wrap(err, "failed to get project", goerr.V(model.ProjectIDKey, projectID))
	}
	return nil
}

func (r *missingInfoRepository) List(ctx context.Context, projectID model.ProjectID) ([]*model.MissingInfo, error) {
	if err := r.ensureProject(ctx, projectID); err != nil {
		return nil, err
	}

	iter := r.itemsCollection(projectID).OrderBy("CreatedAt", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	items := []*model.MissingInfo{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate missing info", goerr.V(model.ProjectIDKey, projectID))
		}

		var itemDoc missingInfoDocument
		if err := doc.DataTo(&itemDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal missing info", goerr.V("docID", doc.Ref.ID))
		}
		items = append(items, itemDoc.toModel())
	}
	return items, nil
}

func (r *missingInfoRepository) Get(ctx context.Context, projectID model.ProjectID, id model.MissingInfoID) (*model.MissingInfo, error) {
	if err := r.ensureProject(ctx, projectID); err != nil {
		return nil, err
	}

	// documents are keyed by content, so look the item up by its ID field
	docs, err := r.itemsCollection(projectID).Where("ID", "==", id.String()).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get missing info",
			goerr.V(model.ProjectIDKey, projectID),
			goerr.V(model.MissingInfoIDKey, id))
	}
	if len(docs) == 0 {
		return nil, goerr.Wrap(model.ErrNotFound, "missing info not found",
			goerr.V(model.ProjectIDKey, projectID),
			goerr.V(model.MissingInfoIDKey, id))
	}

	var itemDoc missingInfoDocument
	if err := docs[0].DataTo(&itemDoc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal missing info", goerr.V("docID", docs[0].Ref.ID))
	}
	return itemDoc.toModel(), nil
}

func (r *missingInfoRepository) Add(ctx context.Context, item *model.MissingInfo) error {
	projectRef := r.projectDoc(item.ProjectID.String())
	itemRef := r.itemsCollection(item.ProjectID).Doc(item.ContentKey())

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(projectRef); err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(model.ErrNotFound, "project not found", goerr.V(model.ProjectIDKey, item.ProjectID))
			}
			return err
		}

		_, err := tx.Get(itemRef)
		if err == nil {
			return goerr.Wrap(model.ErrConflict, "duplicate missing info", goerr.V(model.ProjectIDKey, item.ProjectID))
		}
		if status.Code(err) != codes.NotFound {
			return err
		}
		return tx.Create(itemRef, toMissingInfoDocument(item))
	})
	if err != nil {
		return goerr.Wrap(err, "failed to add missing info", goerr.V(model.ProjectIDKey, item.ProjectID))
	}
	return nil
}

// Remove finds and deletes the item in one transaction, so that concurrent
// removals of the same id from different instances let exactly one succeed.
func (r *missingInfoRepository) Remove(ctx context.Context, projectID model.ProjectID, id model.MissingInfoID) error {
	projectRef := r.projectDoc(projectID.String())
	query := r.itemsCollection(projectID).Where("ID", "==", id.String()).Limit(1)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(projectRef); err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(model.ErrNotFound, "project not found", goerr.V(model.ProjectIDKey, projectID))
			}
			return err
		}

		docs, err := tx.Documents(query).GetAll()
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			return goerr.Wrap(model.ErrNotFound, "missing info not found",
				goerr.V(model.ProjectIDKey, projectID),
				goerr.V(model.MissingInfoIDKey, id))
		}

		return tx.Delete(docs[0].Ref, firestore.Exists)
	})
	if status.Code(err) == codes.NotFound {
		return goerr.Wrap(model.ErrNotFound, "missing info not found",
			goerr.V(model.ProjectIDKey, projectID),
			goerr.V(model.MissingInfoIDKey, id))
	}
	if err != nil {
		return goerr.Wrap(err, "failed to remove missing info",
			goerr.V(model.ProjectIDKey, projectID),
			goerr.V(model.MissingInfoIDKey, id))
	}
	return nil
}
