package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"lembarkolab/internal/blocks"
	"lembarkolab/internal/document/model"
	"lembarkolab/internal/document/service"
	"lembarkolab/internal/editor"
	"lembarkolab/middleware"
	"lembarkolab/pkg/logger"
)

type DocumentHandler struct {
	Service *service.DocumentService
}

func NewDocumentHandler(svc *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{Service: svc}
}

func userID(r *http.Request) string {
	return r.Context().Value(middleware.UserIDKey).(string)
}

// writeError maps domain errors onto HTTP statuses. Everything else is a 500
// with the detail kept in the log, not the response.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		http.Error(w, "Unauthorized", http.StatusForbidden)
	case errors.Is(err, service.ErrNotFound), errors.Is(err, editor.ErrPageNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, editor.ErrLastPage):
		http.Error(w, "A document must keep at least one page", http.StatusBadRequest)
	default:
		logger.Sugar.Errorf("Handler error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req model.CreateDocRequest
	_ = json.NewDecoder(r.Body).Decode(&req) // Ignore error, default to empty

	doc, err := h.Service.CreateDocument(r.Context(), userID(r), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, model.CreateDocResponse{DocID: doc.ID})
}

func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	docID := r.URL.Query().Get("document_id")
	if docID == "" {
		http.Error(w, "Missing document_id", http.StatusBadRequest)
		return
	}

	doc, err := h.Service.GetDocument(r.Context(), docID, userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, doc)
}

func (h *DocumentHandler) SaveDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req model.SaveDocRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Pages) == 0 || string(req.Pages) == "null" {
		http.Error(w, "Content cannot be empty", http.StatusBadRequest)
		return
	}

	if err := h.Service.SaveDocument(r.Context(), userID(r), req); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Document saved successfully"))
}

func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	docID := r.URL.Query().Get("document_id")
	if docID == "" {
		http.Error(w, "Missing document_id", http.StatusBadRequest)
		return
	}

	if err := h.Service.DeleteDocument(r.Context(), docID, userID(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *DocumentHandler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req model.UpdateDocRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.Service.UpdateTitle(r.Context(), userID(r), req); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *DocumentHandler) GetDocuments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	docs, err := h.Service.ListDocuments(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, docs)
}

func (h *DocumentHandler) CreateVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req model.CreateVersionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	version, err := h.Service.CreateVersion(r.Context(), userID(r), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, version)
}

func (h *DocumentHandler) GetVersions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	docID := r.URL.Query().Get("document_id")
	if docID == "" {
		http.Error(w, "Missing document_id", http.StatusBadRequest)
		return
	}

	versions, err := h.Service.ListVersions(r.Context(), docID, userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, versions)
}

func (h *DocumentHandler) RevertVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req model.RevertVersionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.Service.RevertVersion(r.Context(), userID(r), req); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *DocumentHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req model.CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	comment, err := h.Service.AddComment(r.Context(), userID(r), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, comment)
}

func (h *DocumentHandler) GetComments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	docID := r.URL.Query().Get("document_id")
	if docID == "" {
		http.Error(w, "Missing document_id", http.StatusBadRequest)
		return
	}

	comments, err := h.Service.ListComments(r.Context(), docID, userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, comments)
}

func (h *DocumentHandler) InviteCollaborator(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req model.InviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	senderName := r.URL.Query().Get("sender_name")
	if err := h.Service.InviteCollaborator(r.Context(), userID(r), senderName, req); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// PreviewPage renders one page's blocks to HTML, for previews and exports.
func (h *DocumentHandler) PreviewPage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	docID := r.URL.Query().Get("document_id")
	pageID := r.URL.Query().Get("page_id")
	if docID == "" {
		http.Error(w, "Missing document_id", http.StatusBadRequest)
		return
	}

	doc, err := h.Service.GetDocument(r.Context(), docID, userID(r))
	if err != nil {
		writeError(w, err)
		return
	}

	var content *blocks.Document
	for i := range doc.Pages {
		if pageID == "" || doc.Pages[i].ID == pageID {
			content = &doc.Pages[i].Content
			break
		}
	}
	if content == nil {
		writeError(w, editor.ErrPageNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(blocks.Serialize(*content)))
}
