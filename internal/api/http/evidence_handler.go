package http

import (
	"io"
	"net/http"
	"net/url"
	"path/filepath"

	"github.com/gorilla/mux"

	"evfleet-ops-backend/internal/storage"
)

// EvidenceHandler serves stored evidence assets when the local storage
// backend is in use. Object storage backends serve their own URLs.
type EvidenceHandler struct {
	store storage.EvidenceStorage
}

func NewEvidenceHandler(store storage.EvidenceStorage) *EvidenceHandler {
	return &EvidenceHandler{store: store}
}

func (h *EvidenceHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	key, err := url.PathUnescape(mux.Vars(r)["key"])
	if err != nil || key == "" {
		http.Error(w, "Missing key", http.StatusBadRequest)
		return
	}

	file, err := h.store.Open(key)
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	defer file.Close()

	contentType := "application/octet-stream"
	switch filepath.Ext(key) {
	case ".jpg", ".jpeg":
		contentType = "image/jpeg"
	case ".png":
		contentType = "image/png"
	case ".pdf":
		contentType = "application/pdf"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	io.Copy(w, file)
}

// RegisterEvidenceRoutes registers the evidence download endpoint.
func RegisterEvidenceRoutes(router *mux.Router, store storage.EvidenceStorage) {
	handler := NewEvidenceHandler(store)
	router.HandleFunc("/api/v1/evidence/{key:.+}", handler.HandleDownload).Methods("GET")
}
