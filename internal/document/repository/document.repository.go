package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"lembarkolab/internal/document/model"
	"lembarkolab/pkg/logger"
)

// DocumentRepository is the Postgres (Supabase) document store. It satisfies
// editor.DocumentStore.
type DocumentRepository struct {
	DB *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{DB: db}
}

// Load fetches a whole document with its page list. Returns (nil, nil) when
// the document does not exist.
func (r *DocumentRepository) Load(ctx context.Context, documentID string) (*model.Document, error) {
	var doc model.Document
	var content []byte
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, title, type, sub_account_id, owner_id, content, updated_at FROM documents WHERE id = $1`,
		documentID,
	).Scan(&doc.ID, &doc.Title, &doc.Type, &doc.SubAccountID, &doc.OwnerID, &content, &doc.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to load document %s: %v", documentID, err)
		return nil, err
	}
	if err := json.Unmarshal(content, &doc.Pages); err != nil {
		logger.Sugar.Errorf("Corrupt content for document %s: %v", documentID, err)
		return nil, err
	}
	return &doc, nil
}

// Save persists the full page list. Last save wins; there is no merge.
func (r *DocumentRepository) Save(ctx context.Context, doc *model.Document) error {
	content, err := json.Marshal(doc.Pages)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		`UPDATE documents SET content = $1, updated_at = NOW() WHERE id = $2`,
		content, doc.ID)
	if err != nil {
		logger.Sugar.Errorf("Failed to save document %s: %v", doc.ID, err)
	}
	return err
}

func (r *DocumentRepository) Create(ctx context.Context, doc *model.Document) error {
	content, err := json.Marshal(doc.Pages)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO documents (id, title, type, sub_account_id, owner_id, content, updated_at) VALUES ($1, $2, $3, $4, $5, $6, NOW())`,
		doc.ID, doc.Title, doc.Type, doc.SubAccountID, doc.OwnerID, content)
	if err != nil {
		logger.Sugar.Errorf("Failed to create document: %v", err)
	}
	return err
}

func (r *DocumentRepository) Delete(ctx context.Context, documentID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, documentID)
	if err != nil {
		logger.Sugar.Errorf("Failed to delete doc %s: %v", documentID, err)
	}
	return err
}

func (r *DocumentRepository) UpdateTitle(ctx context.Context, documentID, title, ownerID string) (int64, error) {
	result, err := r.DB.ExecContext(ctx,
		`UPDATE documents SET title = $1, updated_at = NOW() WHERE id = $2 AND owner_id = $3`,
		title, documentID, ownerID)
	if err != nil {
		logger.Sugar.Errorf("Failed to update title for doc %s: %v", documentID, err)
		return 0, err
	}
	return result.RowsAffected()
}

func (r *DocumentRepository) GetOwnerID(ctx context.Context, documentID string) (string, error) {
	var ownerID string
	err := r.DB.QueryRowContext(ctx, `SELECT owner_id FROM documents WHERE id = $1`, documentID).Scan(&ownerID)
	if err != nil && err != sql.ErrNoRows {
		logger.Sugar.Errorf("Failed to get owner ID for doc %s: %v", documentID, err)
	}
	return ownerID, err
}

func (r *DocumentRepository) GetCollaboratorRole(ctx context.Context, documentID, userID string) (string, error) {
	var role string
	err := r.DB.QueryRowContext(ctx,
		`SELECT role FROM collaborators WHERE document_id = $1 AND user_id = $2`,
		documentID, userID).Scan(&role)
	if err != nil && err != sql.ErrNoRows {
		logger.Sugar.Errorf("Failed to get collaborator role: %v", err)
	}
	return role, err
}

func (r *DocumentRepository) GetUserByEmail(ctx context.Context, email string) (string, error) {
	var userID string
	err := r.DB.QueryRowContext(ctx, `SELECT id FROM auth.users WHERE email = $1`, email).Scan(&userID)
	if err != nil {
		logger.Sugar.Errorf("Failed to get user by email %s: %v", email, err)
	}
	return userID, err
}

func (r *DocumentRepository) AddCollaborator(ctx context.Context, documentID, userID, role string) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO collaborators (document_id, user_id, role) VALUES ($1, $2, $3)
		ON CONFLICT (document_id, user_id) DO UPDATE SET role = $3`,
		documentID, userID, role)
	if err != nil {
		logger.Sugar.Errorf("Failed to add collaborator %s to doc %s: %v", userID, documentID, err)
	}
	return err
}

func (r *DocumentRepository) ListByUser(ctx context.Context, userID string) ([]model.DocumentMetadata, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, title, type, updated_at, owner_id FROM documents WHERE owner_id = $1
		UNION
		SELECT d.id, d.title, d.type, d.updated_at, d.owner_id FROM documents d JOIN collaborators c ON d.id = c.document_id WHERE c.user_id = $1
		ORDER BY updated_at DESC`, userID)
	if err != nil {
		logger.Sugar.Errorf("Failed to list documents for user %s: %v", userID, err)
		return nil, err
	}
	defer rows.Close()

	var docs []model.DocumentMetadata
	for rows.Next() {
		var doc model.DocumentMetadata
		var ownerID string
		if err := rows.Scan(&doc.ID, &doc.Title, &doc.Type, &doc.UpdatedAt, &ownerID); err != nil {
			continue
		}
		doc.IsOwner = ownerID == userID
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// ListVersions returns a document's snapshots newest first. Newest-first is
// load-bearing: listings and the in-memory version list rely on it.
func (r *DocumentRepository) ListVersions(ctx context.Context, documentID string) ([]model.Version, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, document_id, user_id, content, name, created_at FROM versions WHERE document_id = $1 ORDER BY created_at DESC`,
		documentID)
	if err != nil {
		logger.Sugar.Errorf("Failed to list versions for doc %s: %v", documentID, err)
		return nil, err
	}
	defer rows.Close()

	var versions []model.Version
	for rows.Next() {
		var v model.Version
		var content []byte
		if err := rows.Scan(&v.ID, &v.DocumentID, &v.UserID, &content, &v.Name, &v.CreatedAt); err != nil {
			continue
		}
		if len(content) > 0 {
			var vc model.VersionContent
			if json.Unmarshal(content, &vc) == nil {
				v.Content = &vc
			}
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

func (r *DocumentRepository) CreateVersion(ctx context.Context, input model.CreateVersionInput) (*model.Version, error) {
	content, err := json.Marshal(model.VersionContent{Pages: input.Pages})
	if err != nil {
		return nil, err
	}

	version := model.Version{
		ID:         uuid.NewString(),
		DocumentID: input.DocumentID,
		UserID:     input.UserID,
		Content:    &model.VersionContent{Pages: input.Pages},
		Name:       input.Name,
	}
	err = r.DB.QueryRowContext(ctx,
		`INSERT INTO versions (id, document_id, user_id, content, name, created_at) VALUES ($1, $2, $3, $4, $5, NOW()) RETURNING created_at`,
		version.ID, version.DocumentID, version.UserID, content, version.Name,
	).Scan(&version.CreatedAt)
	if err != nil {
		logger.Sugar.Errorf("Failed to create version %q for doc %s: %v", input.Name, input.DocumentID, err)
		return nil, err
	}
	return &version, nil
}

func (r *DocumentRepository) ListComments(ctx context.Context, documentID string) ([]model.Comment, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, document_id, user_id, body, created_at FROM comments WHERE document_id = $1 ORDER BY created_at ASC`,
		documentID)
	if err != nil {
		logger.Sugar.Errorf("Failed to list comments for doc %s: %v", documentID, err)
		return nil, err
	}
	defer rows.Close()

	var comments []model.Comment
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.UserID, &c.Body, &c.CreatedAt); err != nil {
			continue
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (r *DocumentRepository) CreateComment(ctx context.Context, input model.CreateCommentInput) (*model.Comment, error) {
	comment := model.Comment{
		ID:         uuid.NewString(),
		DocumentID: input.DocumentID,
		UserID:     input.UserID,
		Body:       input.Body,
	}
	var createdAt time.Time
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO comments (id, document_id, user_id, body, created_at) VALUES ($1, $2, $3, $4, NOW()) RETURNING created_at`,
		comment.ID, comment.DocumentID, comment.UserID, comment.Body,
	).Scan(&createdAt)
	if err != nil {
		logger.Sugar.Errorf("Failed to add comment to doc %s: %v", input.DocumentID, err)
		return nil, err
	}
	comment.CreatedAt = createdAt
	return &comment, nil
}

func (r *DocumentRepository) CheckAccess(ctx context.Context, documentID, userID string) (bool, error) {
	var hasAccess bool
	err := r.DB.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM documents WHERE id = $1 AND owner_id = $2
			UNION
			SELECT 1 FROM collaborators WHERE document_id = $1 AND user_id = $2
		)`, documentID, userID).Scan(&hasAccess)
	if err != nil {
		logger.Sugar.Errorf("Failed to check access for user %s on doc %s: %v", userID, documentID, err)
	}
	return hasAccess, err
}
