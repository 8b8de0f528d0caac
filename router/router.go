package router

import (
	"database/sql"
	"net/http"

	docHandler "lembarkolab/internal/document"
	"lembarkolab/internal/document/repository"
	"lembarkolab/internal/document/service"
	"lembarkolab/middleware"
	"lembarkolab/socket"
)

func Setup(db *sql.DB, hub *socket.Hub, appURL string) http.Handler {
	mux := http.NewServeMux()

	// WebSocket: one connection per topic (document or notification channel).
	wsHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value(middleware.UserIDKey).(string)
		socket.ServeWs(hub, w, r, userID)
	})
	mux.Handle("/ws", middleware.AuthMiddleware(wsHandler))

	// REST API
	docRepo := repository.NewDocumentRepository(db)
	docService := service.NewDocumentService(docRepo, hub, appURL)
	handler := docHandler.NewDocumentHandler(docService)
	auth := middleware.AuthMiddleware

	mux.Handle("/api/documents/create", auth(http.HandlerFunc(handler.CreateDocument)))
	mux.Handle("/api/documents/get", auth(http.HandlerFunc(handler.GetDocument)))
	mux.Handle("/api/documents/delete", auth(http.HandlerFunc(handler.DeleteDocument)))
	mux.Handle("/api/documents/update", auth(http.HandlerFunc(handler.UpdateDocument)))
	mux.Handle("/api/documents", auth(http.HandlerFunc(handler.GetDocuments)))
	mux.Handle("/api/documents/save", auth(http.HandlerFunc(handler.SaveDocument)))
	mux.Handle("/api/documents/invite", auth(http.HandlerFunc(handler.InviteCollaborator)))
	mux.Handle("/api/documents/versions/create", auth(http.HandlerFunc(handler.CreateVersion)))
	mux.Handle("/api/documents/versions/revert", auth(http.HandlerFunc(handler.RevertVersion)))
	mux.Handle("/api/documents/versions", auth(http.HandlerFunc(handler.GetVersions)))
	mux.Handle("/api/documents/comments/add", auth(http.HandlerFunc(handler.AddComment)))
	mux.Handle("/api/documents/comments", auth(http.HandlerFunc(handler.GetComments)))
	mux.Handle("/api/documents/preview", auth(http.HandlerFunc(handler.PreviewPage)))

	return middleware.CORSMiddleware(mux)
}
