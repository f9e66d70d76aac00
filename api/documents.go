package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/koopa0/canvas/internal/artifact"
	"github.com/koopa0/canvas/internal/log"
)

// Pagination constants for document listing.
const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
	MaxListOffset    = 100000 // Reasonable upper bound for pagination offset
)

// DocumentHandler handles document and version history HTTP endpoints.
type DocumentHandler struct {
	store  *artifact.Store
	logger log.Logger
}

// NewDocumentHandler creates a new document handler.
func NewDocumentHandler(store *artifact.Store, logger log.Logger) *DocumentHandler {
	return &DocumentHandler{store: store, logger: logger}
}

// RegisterRoutes registers document routes on the given mux.
func (h *DocumentHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/documents", h.list)
	mux.HandleFunc("GET /api/documents/{id}", h.get)
	mux.HandleFunc("DELETE /api/documents/{id}", h.delete)
	mux.HandleFunc("GET /api/documents/{id}/versions", h.versions)
	mux.HandleFunc("POST /api/documents/{id}/restore", h.restore)
}

// DocumentJSON is the wire representation of a document.
type DocumentJSON struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Kind      string    `json:"kind"`
	Language  string    `json:"language,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// VersionJSON is the wire representation of a version snapshot.
type VersionJSON struct {
	ID         uuid.UUID `json:"id"`
	DocumentID string    `json:"document_id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

func documentToJSON(d *artifact.Document) DocumentJSON {
	return DocumentJSON{
		ID:        d.ID,
		Title:     d.Title,
		Kind:      string(d.Kind),
		Language:  d.Language,
		Content:   d.Content,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func versionToJSON(v *artifact.Version) VersionJSON {
	return VersionJSON{
		ID:         v.ID,
		DocumentID: v.DocumentID,
		Content:    v.Content,
		CreatedAt:  v.CreatedAt,
	}
}

// list returns persisted documents ordered by recency.
// Query parameters:
//   - limit: maximum number of documents to return (default: 100, max: 1000)
//   - offset: number of documents to skip (default: 0)
func (h *DocumentHandler) list(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		h.logger.Error("document store is nil")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	limit := parseIntParam(r, "limit", DefaultListLimit, 1, MaxListLimit)
	offset := parseIntParam(r, "offset", 0, 0, MaxListOffset)

	// #nosec G115 -- limit and offset are bounded by MaxListLimit and MaxListOffset
	docs, err := h.store.List(r.Context(), int32(limit), int32(offset))
	if err != nil {
		h.logger.Error("failed to list documents", "error", err)
		http.Error(w, "failed to list documents", http.StatusInternalServerError)
		return
	}

	out := make([]DocumentJSON, len(docs))
	for i, d := range docs {
		out[i] = documentToJSON(d)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"documents": out,
		"total":     len(out),
		"limit":     limit,
		"offset":    offset,
	})
}

// get returns a single document by id.
func (h *DocumentHandler) get(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	id := r.PathValue("id")
	doc, err := h.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, artifact.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "document not found")
			return
		}
		h.logger.Error("failed to get document", "error", err, "id", id)
		http.Error(w, "failed to get document", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, documentToJSON(doc))
}

// delete removes a document and its version history.
func (h *DocumentHandler) delete(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	id := r.PathValue("id")
	if err := h.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, artifact.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "document not found")
			return
		}
		h.logger.Error("failed to delete document", "error", err, "id", id)
		http.Error(w, "failed to delete document", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// versions returns the full version history of a document, oldest first.
func (h *DocumentHandler) versions(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	id := r.PathValue("id")
	versions, err := h.store.Versions(r.Context(), id)
	if err != nil {
		if errors.Is(err, artifact.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "document not found")
			return
		}
		h.logger.Error("failed to list versions", "error", err, "id", id)
		http.Error(w, "failed to list versions", http.StatusInternalServerError)
		return
	}

	out := make([]VersionJSON, len(versions))
	for i, v := range versions {
		out[i] = versionToJSON(v)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"versions": out,
		"total":    len(out),
	})
}

// RestoreRequest is the request body for restoring a historical version.
type RestoreRequest struct {
	VersionID uuid.UUID `json:"version_id"`
}

// restore makes a historical version the current content of the document.
// Restoration is append-only: the restored content becomes a NEW latest
// version, the history is never rewritten.
func (h *DocumentHandler) restore(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	id := r.PathValue("id")

	var req RestoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}
	if req.VersionID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "version_id is required")
		return
	}

	target, err := h.store.Version(r.Context(), req.VersionID)
	if err != nil {
		if errors.Is(err, artifact.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "version not found")
			return
		}
		h.logger.Error("failed to load version for restore", "error", err, "id", id)
		http.Error(w, "failed to restore document", http.StatusInternalServerError)
		return
	}
	// A snapshot of another document cannot be restored into this one.
	if target.DocumentID != id {
		writeError(w, http.StatusNotFound, "not_found", "version not found")
		return
	}

	restored, err := h.store.Restore(r.Context(), id, target.Content)
	if err != nil {
		if errors.Is(err, artifact.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "document not found")
			return
		}
		h.logger.Error("failed to restore document", "error", err, "id", id)
		http.Error(w, "failed to restore document", http.StatusInternalServerError)
		return
	}

	h.logger.Info("document restored",
		"id", id,
		"from_version", req.VersionID,
		"new_version", restored.ID)
	writeJSON(w, http.StatusOK, versionToJSON(restored))
}

// parseIntParam parses an integer query parameter with bounds checking.
func parseIntParam(r *http.Request, name string, defaultVal, minVal, maxVal int) int {
	str := r.URL.Query().Get(name)
	if str == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(str)
	if err != nil {
		return defaultVal
	}
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}
