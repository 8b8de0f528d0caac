package model

import (
	"encoding/json"
	"time"

	"lembarkolab/internal/blocks"
)

// Document is a multi-page editable document. Content is the ordered page
// list; it is persisted wholesale (last full save wins, there is no merge
// layer).
type Document struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Type         string    `json:"type"`
	SubAccountID string    `json:"sub_account_id"`
	OwnerID      string    `json:"owner_id"`
	Pages        []Page    `json:"content"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Page ids are unique within a document and stable across renames.
type Page struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Content   blocks.Document `json:"content"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Version is an immutable snapshot of every page of a document, created only
// by explicit user action. Listings are newest first.
type Version struct {
	ID         string          `json:"id"`
	DocumentID string          `json:"document_id"`
	UserID     string          `json:"user_id"`
	Content    *VersionContent `json:"content"`
	Name       string          `json:"name"`
	CreatedAt  time.Time       `json:"created_at"`
}

type VersionContent struct {
	Pages []Page `json:"pages"`
}

type Comment struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	UserID     string    `json:"user_id"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

type CreateVersionInput struct {
	DocumentID string `json:"document_id"`
	UserID     string `json:"user_id"`
	Pages      []Page `json:"pages"`
	Name       string `json:"name"`
}

type CreateCommentInput struct {
	DocumentID string `json:"document_id"`
	UserID     string `json:"user_id"`
	Body       string `json:"body"`
}

type CollaboratorInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Avatar string `json:"avatar,omitempty"`
}

type DocumentMetadata struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Type      string    `json:"type"`
	UpdatedAt time.Time `json:"updated_at"`
	IsOwner   bool      `json:"is_owner"`
}

type CreateDocRequest struct {
	Title        string `json:"title"`
	Type         string `json:"type"`
	SubAccountID string `json:"sub_account_id"`
}

type CreateDocResponse struct {
	DocID string `json:"document_id"`
}

type UpdateDocRequest struct {
	DocID string `json:"document_id"`
	Title string `json:"title"`
}

type SaveDocRequest struct {
	DocID string          `json:"document_id"`
	Pages json.RawMessage `json:"content"`
}

type CreateVersionRequest struct {
	DocID string `json:"document_id"`
	Name  string `json:"name"`
}

type RevertVersionRequest struct {
	DocID     string `json:"document_id"`
	VersionID string `json:"version_id"`
	// PageID selects the page a page-scoped revert restores; empty means the
	// document's first page.
	PageID string `json:"page_id,omitempty"`
	// Mode is "page" (default) or "document".
	Mode string `json:"mode,omitempty"`
}

type InviteRequest struct {
	DocID string `json:"document_id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type CommentRequest struct {
	DocID string `json:"document_id"`
	Body  string `json:"body"`
}
