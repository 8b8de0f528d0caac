package editor

import (
	"context"

	"lembarkolab/internal/document/model"
)

// DocumentStore is the persistence boundary the editing core talks to. The
// Postgres implementation lives in internal/document/repository; tests swap
// in fakes.
type DocumentStore interface {
	Load(ctx context.Context, documentID string) (*model.Document, error)
	Save(ctx context.Context, doc *model.Document) error
	ListVersions(ctx context.Context, documentID string) ([]model.Version, error)
	CreateVersion(ctx context.Context, input model.CreateVersionInput) (*model.Version, error)
	ListComments(ctx context.Context, documentID string) ([]model.Comment, error)
	CreateComment(ctx context.Context, input model.CreateCommentInput) (*model.Comment, error)
}
