package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/firebase/genkit/go/genkit"

	"github.com/koopa0/canvas/internal/artifact"
	"github.com/koopa0/canvas/internal/canvas"
	"github.com/koopa0/canvas/internal/chat"
	"github.com/koopa0/canvas/internal/log"
)

// ChatHandler handles chat-related HTTP endpoints via Genkit Flow.
//
// Endpoints:
//   - POST /api/chat        - Synchronous chat (JSON request/response)
//   - POST /api/chat/stream - Streaming chat (SSE - Server-Sent Events)
//
// The streaming endpoint multiplexes two kinds of payloads: partial model
// text ("chunk" events) and document authoring events ("document" events).
// Clients route document events into their own canvas projection.
type ChatHandler struct {
	chatFlow *chat.Flow
	store    *artifact.Store // optional: persists finished documents
	logger   log.Logger
}

// NewChatHandler creates a new chat handler with the given Flow.
// The Flow should be obtained from chat.NewFlow(). store may be nil,
// in which case finished documents are not persisted.
func NewChatHandler(flow *chat.Flow, store *artifact.Store, logger log.Logger) *ChatHandler {
	return &ChatHandler{chatFlow: flow, store: store, logger: logger}
}

// RegisterRoutes registers chat routes on the given mux.
func (h *ChatHandler) RegisterRoutes(mux *http.ServeMux) {
	if h.chatFlow != nil {
		// Synchronous endpoint using Genkit's built-in handler
		mux.Handle("POST /api/chat", genkit.Handler(h.chatFlow))

		// SSE streaming endpoint
		mux.HandleFunc("POST /api/chat/stream", h.handleStream)
	} else if h.logger != nil {
		h.logger.Warn("ChatHandler: chatFlow is nil, chat endpoints not registered")
	}
}

// SSEChunkData is the data for "chunk" events.
type SSEChunkData struct {
	Text string `json:"text"`
}

// SSEDoneData is the data for "done" events.
type SSEDoneData struct {
	Response string `json:"response"`
}

// SSEErrorData is the data for "error" events.
type SSEErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// handleStream handles the SSE streaming endpoint.
//
// Request body: {"prompt": "..."}
// Response: Server-Sent Events stream
//
// Event types:
//   - chunk:    Partial text {"text": "..."}
//   - document: Canvas event {"type": "...", "doc_id": "...", "value": "..."}
//   - done:     Final response {"response": "..."}
//   - error:    Error occurred {"code": "...", "message": "..."}
func (h *ChatHandler) handleStream(w http.ResponseWriter, r *http.Request) {
	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.logger.Error("streaming not supported")
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	var input chat.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.writeSSEError(w, flusher, "INVALID_REQUEST", fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	if input.Prompt == "" {
		h.writeSSEError(w, flusher, "MISSING_PROMPT", "prompt is required")
		return
	}

	ctx := r.Context()
	h.logger.Info("SSE stream started", "promptLength", len(input.Prompt))

	// Server-side projection of the document events flowing past. Lets us
	// persist finished documents without a second copy of the content.
	engine := canvas.NewEngine(log.NewNop())

	var finalOutput chat.Output
	var streamErr error
	hasChunks := false

	for streamValue, err := range h.chatFlow.Stream(ctx, input) {
		// Check if client disconnected
		select {
		case <-ctx.Done():
			h.logger.Info("client disconnected")
			return
		default:
		}

		if err != nil {
			streamErr = err
			break
		}

		if streamValue.Done {
			finalOutput = streamValue.Output
			break
		}

		chunk := streamValue.Stream
		if chunk.Text != "" {
			hasChunks = true
			h.writeSSEChunk(w, flusher, chunk.Text)
		}
		if chunk.Document != nil {
			// The event may omit its doc id and rely on the engine's
			// most-recently-started fallback; persist by the id the
			// engine actually settled, not the raw event field.
			touchedID := engine.Apply(*chunk.Document)
			h.writeSSEDocument(w, flusher, *chunk.Document)
			if chunk.Document.Type == canvas.EventFinish && touchedID != "" {
				h.persistDocument(r, engine, touchedID)
			}
		}
	}

	if streamErr != nil {
		h.logger.Error("stream failed", "error", streamErr)
		h.writeSSEError(w, flusher, "STREAM_ERROR", streamErr.Error())
		return
	}

	h.writeSSEDone(w, flusher, finalOutput.Response)
	h.logger.Info("SSE stream completed",
		"hasChunks", hasChunks,
		"responseLen", len(finalOutput.Response))
}

// persistDocument saves a settled document to the store. Best-effort: a
// persistence failure never interrupts the stream.
func (h *ChatHandler) persistDocument(r *http.Request, engine *canvas.Engine, docID string) {
	if h.store == nil {
		return
	}
	doc, ok := engine.Document(docID)
	if !ok {
		return // finished empty, nothing to persist
	}
	if err := h.store.Save(r.Context(), &doc); err != nil {
		h.logger.Warn("persisting finished document", "error", err, "id", docID)
		return
	}
	h.logger.Debug("document persisted", "id", docID)
}

// writeSSEChunk writes a chunk event to the SSE stream.
func (h *ChatHandler) writeSSEChunk(w http.ResponseWriter, flusher http.Flusher, text string) {
	data, _ := json.Marshal(SSEChunkData{Text: text})
	fmt.Fprintf(w, "event: chunk\ndata: %s\n\n", data)
	flusher.Flush()
}

// writeSSEDocument writes a document event to the SSE stream.
func (h *ChatHandler) writeSSEDocument(w http.ResponseWriter, flusher http.Flusher, ev canvas.Event) {
	data, _ := json.Marshal(ev)
	fmt.Fprintf(w, "event: document\ndata: %s\n\n", data)
	flusher.Flush()
}

// writeSSEDone writes a done event to the SSE stream.
func (h *ChatHandler) writeSSEDone(w http.ResponseWriter, flusher http.Flusher, response string) {
	data, _ := json.Marshal(SSEDoneData{Response: response})
	fmt.Fprintf(w, "event: done\ndata: %s\n\n", data)
	flusher.Flush()
}

// writeSSEError writes an error event to the SSE stream.
func (h *ChatHandler) writeSSEError(w http.ResponseWriter, flusher http.Flusher, code, message string) {
	data, _ := json.Marshal(SSEErrorData{Code: code, Message: message})
	fmt.Fprintf(w, "event: error\ndata: %s\n\n", data)
	flusher.Flush()
}
