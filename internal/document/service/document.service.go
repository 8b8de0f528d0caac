package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"lembarkolab/internal/document/model"
	"lembarkolab/internal/document/repository"
	"lembarkolab/internal/editor"
	"lembarkolab/pkg/logger"
	"lembarkolab/socket"
)

const (
	RoleWriter   = "writer"
	RoleReviewer = "reviewer"
	RoleReader   = "reader"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("document not found")
)

type DocumentService struct {
	Repo *repository.DocumentRepository
	Hub  *socket.Hub
	// AppURL is the frontend base used to build invite links.
	AppURL string
}

func NewDocumentService(repo *repository.DocumentRepository, hub *socket.Hub, appURL string) *DocumentService {
	return &DocumentService{Repo: repo, Hub: hub, AppURL: appURL}
}

// CreateDocument makes a new document with one empty page owned by userID.
func (s *DocumentService) CreateDocument(ctx context.Context, userID string, req model.CreateDocRequest) (*model.Document, error) {
	title := req.Title
	if title == "" {
		title = "Untitled Document"
	}
	doc := &model.Document{
		ID:           uuid.NewString(),
		Title:        title,
		Type:         req.Type,
		SubAccountID: req.SubAccountID,
		OwnerID:      userID,
	}
	editor.NewPages(doc) // seeds the first page
	if err := s.Repo.Create(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// GetDocument loads a document for a user with access.
func (s *DocumentService) GetDocument(ctx context.Context, documentID, userID string) (*model.Document, error) {
	ok, err := s.Repo.CheckAccess(ctx, documentID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUnauthorized
	}
	doc, err := s.Repo.Load(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrNotFound
	}
	return doc, nil
}

// SaveDocument replaces the full page list. Whole-document, last save wins.
func (s *DocumentService) SaveDocument(ctx context.Context, userID string, req model.SaveDocRequest) error {
	role, err := s.userRole(ctx, req.DocID, userID)
	if err != nil {
		return err
	}
	if role != RoleWriter {
		return ErrUnauthorized
	}

	var pages []model.Page
	if err := json.Unmarshal(req.Pages, &pages); err != nil {
		return fmt.Errorf("invalid content: %w", err)
	}
	if len(pages) == 0 {
		return editor.ErrLastPage
	}

	return s.Repo.Save(ctx, &model.Document{ID: req.DocID, Pages: pages})
}

func (s *DocumentService) DeleteDocument(ctx context.Context, documentID, userID string) error {
	ownerID, err := s.Repo.GetOwnerID(ctx, documentID)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if ownerID != userID {
		return ErrUnauthorized
	}
	return s.Repo.Delete(ctx, documentID)
}

func (s *DocumentService) UpdateTitle(ctx context.Context, userID string, req model.UpdateDocRequest) error {
	rowsAffected, err := s.Repo.UpdateTitle(ctx, req.DocID, req.Title, userID)
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *DocumentService) ListDocuments(ctx context.Context, userID string) ([]model.DocumentMetadata, error) {
	docs, err := s.Repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []model.DocumentMetadata{}
	}
	return docs, nil
}

// CreateVersion snapshots the document's current pages under a name.
func (s *DocumentService) CreateVersion(ctx context.Context, userID string, req model.CreateVersionRequest) (*model.Version, error) {
	doc, err := s.GetDocument(ctx, req.DocID, userID)
	if err != nil {
		return nil, err
	}
	return s.Repo.CreateVersion(ctx, model.CreateVersionInput{
		DocumentID: req.DocID,
		UserID:     userID,
		Pages:      doc.Pages,
		Name:       req.Name,
	})
}

func (s *DocumentService) ListVersions(ctx context.Context, documentID, userID string) ([]model.Version, error) {
	if _, err := s.GetDocument(ctx, documentID, userID); err != nil {
		return nil, err
	}
	versions, err := s.Repo.ListVersions(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if versions == nil {
		versions = []model.Version{}
	}
	return versions, nil
}

// RevertVersion applies a snapshot to the stored document. Mode "page"
// restores only the selected page's content; "document" restores every page.
// A snapshot without content is a no-op preview and persists nothing.
func (s *DocumentService) RevertVersion(ctx context.Context, userID string, req model.RevertVersionRequest) error {
	role, err := s.userRole(ctx, req.DocID, userID)
	if err != nil {
		return err
	}
	if role != RoleWriter {
		return ErrUnauthorized
	}

	doc, err := s.Repo.Load(ctx, req.DocID)
	if err != nil {
		return err
	}
	if doc == nil {
		return ErrNotFound
	}

	versions, err := s.Repo.ListVersions(ctx, req.DocID)
	if err != nil {
		return err
	}
	var version *model.Version
	for i := range versions {
		if versions[i].ID == req.VersionID {
			version = &versions[i]
			break
		}
	}
	if version == nil {
		return errors.New("version not found")
	}
	if version.Content == nil || len(version.Content.Pages) == 0 {
		return nil
	}

	pages := editor.NewPages(doc)
	mode := editor.RevertPage
	if req.Mode == "document" {
		mode = editor.RevertDocument
	}
	if req.PageID != "" {
		if err := pages.SelectPage(req.PageID); err != nil {
			return err
		}
	}
	editor.NewVersions(s.Repo, req.DocID).Revert(*version, pages, mode)

	return s.Repo.Save(ctx, doc)
}

func (s *DocumentService) AddComment(ctx context.Context, userID string, req model.CommentRequest) (*model.Comment, error) {
	role, err := s.userRole(ctx, req.DocID, userID)
	if err != nil {
		return nil, err
	}
	if role != RoleWriter && role != RoleReviewer {
		return nil, ErrUnauthorized
	}
	return s.Repo.CreateComment(ctx, model.CreateCommentInput{
		DocumentID: req.DocID,
		UserID:     userID,
		Body:       req.Body,
	})
}

func (s *DocumentService) ListComments(ctx context.Context, documentID, userID string) ([]model.Comment, error) {
	if _, err := s.GetDocument(ctx, documentID, userID); err != nil {
		return nil, err
	}
	comments, err := s.Repo.ListComments(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []model.Comment{}
	}
	return comments, nil
}

// InviteCollaborator grants a role and pushes a one-shot collab-invite onto
// the receiver's notification topic. The broadcast is fire-and-forget: a
// receiver who is not connected right now simply misses it; the granted role
// row is what lets them in later.
func (s *DocumentService) InviteCollaborator(ctx context.Context, userID, userName string, req model.InviteRequest) error {
	ownerID, err := s.Repo.GetOwnerID(ctx, req.DocID)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if ownerID != userID {
		return ErrUnauthorized
	}

	targetUserID, err := s.Repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return errors.New("user not found with that email")
	}

	role := req.Role
	if role == "" {
		role = RoleReader
	}
	if err := s.Repo.AddCollaborator(ctx, req.DocID, targetUserID, role); err != nil {
		return err
	}

	doc, err := s.Repo.Load(ctx, req.DocID)
	if err != nil || doc == nil {
		// The grant stuck; only the notification is lost.
		logger.Sugar.Warnf("Invite broadcast skipped for doc %s: %v", req.DocID, err)
		return nil
	}

	payload, _ := json.Marshal(socket.InvitePayload{
		DocID:      req.DocID,
		DocTitle:   doc.Title,
		SenderName: userName,
		URL:        fmt.Sprintf("%s/documents/%s", s.AppURL, req.DocID),
	})
	s.Hub.Inbound <- socket.Message{
		Type:    socket.BroadcastType,
		Topic:   socket.NotificationTopic(targetUserID),
		UserID:  userID,
		Event:   socket.EventCollabInvite,
		Payload: payload,
	}
	return nil
}

// userRole resolves a user's effective role on a document. Owners are
// implicit writers; everyone else falls back to reader.
func (s *DocumentService) userRole(ctx context.Context, documentID, userID string) (string, error) {
	ownerID, err := s.Repo.GetOwnerID(ctx, documentID)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if ownerID == userID {
		return RoleWriter, nil
	}
	role, err := s.Repo.GetCollaboratorRole(ctx, documentID, userID)
	if err == nil && role != "" {
		return role, nil
	}
	return RoleReader, nil
}
