package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/incubo-lab/pitchreview/pkg/domain/interfaces"
	"github.com/incubo-lab/pitchreview/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type projectRepository struct {
	*Firestore
}

func (r *projectRepository) Create(ctx context.Context, project *model.Project) error {
	docRef := r.projectDoc(project.ID.String())
	if _, err := docRef.Create(ctx, toProjectDocument(project)); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return goerr.Wrap(model.ErrConflict, "project already exists", goerr.V(model.ProjectIDKey, project.ID))
		}
		return goerr.Wrap(err, "failed to create project", goerr.V(model.ProjectIDKey, project.ID))
	}
	return nil
}

func (r *projectRepository) Get(ctx context.Context, id model.ProjectID) (*model.Project, error) {
	doc, err := r.projectDoc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrNotFound, "project not found", goerr.V(model.ProjectIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get project", goerr.V(model.ProjectIDKey, id))
	}

	var projectDoc projectDocument
	if err := doc.DataTo(&projectDoc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal project", goerr.V(model.ProjectIDKey, id))
	}

	return projectDoc.toModel(), nil
}

func (r *projectRepository) List(ctx context.Context, filter interfaces.ListProjectFilter) ([]*model.Project, error) {
	query := r.collection(projectsCollection).Query
	if filter.Status != "" {
		query = query.Where("Status", "==", filter.Status.String())
	}
	iter := query.OrderBy("CreatedAt", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	projects := []*model.Project{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate projects")
		}

		var projectDoc projectDocument
		if err := doc.DataTo(&projectDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal project", goerr.V("docID", doc.Ref.ID))
		}
		projects = append(projects, projectDoc.toModel())
	}

	model.SortProjectsByCreatedDesc(projects)
	return projects, nil
}

func (r *projectRepository) Update(ctx context.Context, project *model.Project) error {
	docRef := r.projectDoc(project.ID.String())
	_, err := docRef.Update(ctx, []firestore.Update{
		{Path: "EnterpriseName", Value: project.EnterpriseName},
		{Path: "ProjectName", Value: project.ProjectName},
		{Path: "Description", Value: project.Description},
		{Path: "TeamMembers", Value: project.TeamMembers},
		{Path: "UpdatedAt", Value: project.UpdatedAt},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(model.ErrNotFound, "project not found", goerr.V(model.ProjectIDKey, project.ID))
		}
		return goerr.Wrap(err, "failed to update project", goerr.V(model.ProjectIDKey, project.ID))
	}
	return nil
}

// Delete removes the project document in a transaction, then sweeps its
// subcollections with a BulkWriter. History gains one document per commit
// and may exceed the 500 writes allowed in a transaction. Writers check
// the project document in their own transactions, so the subcollections
// stop growing once it is gone.
func (r *projectRepository) Delete(ctx context.Context, id model.ProjectID) error {
	projectRef := r.projectDoc(id.String())

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(projectRef); err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(model.ErrNotFound, "project not found", goerr.V(model.ProjectIDKey, id))
			}
			return goerr.Wrap(err, "failed to get project", goerr.V(model.ProjectIDKey, id))
		}
		return tx.Delete(projectRef)
	})
	if err != nil {
		return goerr.Wrap(err, "failed to delete project", goerr.V(model.ProjectIDKey, id))
	}

	return r.sweepProject(ctx, projectRef)
}

func (r *projectRepository) sweepProject(ctx context.Context, projectRef *firestore.DocumentRef) error {
	var refs []*firestore.DocumentRef
	for _, name := range []string{scoreSheetCollection, historyCollection, missingInfoCollection} {
		iter := projectRef.Collection(name).Documents(ctx)
		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				iter.Stop()
				return goerr.Wrap(err, "failed to list project documents",
					goerr.V("path", projectRef.Path), goerr.V("collection", name))
			}
			refs = append(refs, doc.Ref)
		}
		iter.Stop()
	}

	if len(refs) == 0 {
		return nil
	}

	bulkWriter := r.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(refs))
	for _, ref := range refs {
		job, err := bulkWriter.Delete(ref)
		if err != nil {
			bulkWriter.End()
			return goerr.Wrap(err, "failed to add Delete operation to bulk writer", goerr.V("path", ref.Path))
		}
		jobs = append(jobs, job)
	}
	bulkWriter.End()

	for i, job := range jobs {
		if _, err := job.Results(); err != nil {
			return goerr.Wrap(err, "failed to delete project document", goerr.V("path", refs[i].Path))
		}
	}
	return nil
}
