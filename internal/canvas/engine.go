package canvas

import (
	"log/slog"

	"github.com/koopa0/canvas/internal/artifact"
)

// Engine routes document stream events, tracks concurrent generations in
// a streaming registry, and keeps the settled document set for the life
// of a chat session.
//
// One Engine is constructed per session and owned by a single loop; it is
// not safe for concurrent use.
type Engine struct {
	logger *slog.Logger

	// streaming holds one entry per document id currently generating.
	// Entries are removed when their finish event arrives.
	streaming map[string]*artifact.Document

	// settled holds completed documents for the session, keyed by id.
	settled map[string]*artifact.Document

	// lastActiveID is the fallback target for events without an explicit
	// doc id. Compatibility shim for producers that predate per-event
	// targeting; updated on every start event.
	lastActiveID string

	// turnOrder records document ids in creation order within the current
	// turn, for the open-first-document policy at turn end.
	turnOrder []string

	visible VisibleState
}

// NewEngine creates an engine for one chat session.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		logger:    logger,
		streaming: make(map[string]*artifact.Document),
		settled:   make(map[string]*artifact.Document),
	}
}

// Apply processes one stream event. Events are handled synchronously in
// arrival order; an unrecognized type or an event with no resolvable
// target is dropped without error.
//
// Returns the id of the document the event touched, which may differ
// from ev.DocID when the event relied on the most-recently-started
// fallback. Empty when the event was dropped.
func (e *Engine) Apply(ev Event) string {
	switch ev.Type {
	case EventStart:
		return e.applyStart(ev)
	case EventTitle:
		if doc := e.resolveTarget(ev); doc != nil {
			doc.Title = ev.Value
			e.visible = project(e.visible, doc, nil)
			return doc.ID
		}
	case EventKind:
		if doc := e.resolveTarget(ev); doc != nil {
			if kind := artifact.Kind(ev.Value); kind.Valid() {
				doc.Kind = kind
			}
			e.visible = project(e.visible, doc, nil)
			return doc.ID
		}
	case EventLanguage:
		if doc := e.resolveTarget(ev); doc != nil {
			doc.Language = ev.Value
			e.visible = project(e.visible, doc, nil)
			return doc.ID
		}
	case EventClear:
		if doc := e.resolveTarget(ev); doc != nil {
			doc.Content = ""
			doc.Status = artifact.StatusStreaming
			e.visible = project(e.visible, doc, nil)
			return doc.ID
		}
	case EventDelta:
		if doc := e.resolveTarget(ev); doc != nil {
			// Deltas carry the authoritative full content, so interleaved
			// generations of other documents cannot corrupt this one.
			doc.Content = ev.Value
			doc.Status = artifact.StatusStreaming
			e.visible = project(e.visible, doc, nil)
			return doc.ID
		}
	case EventFinish:
		return e.applyFinish(ev)
	default:
		e.logger.Debug("ignoring unknown stream event", "type", ev.Type)
	}
	return ""
}

func (e *Engine) applyStart(ev Event) string {
	if err := artifact.ValidateID(ev.DocID); err != nil {
		e.logger.Debug("dropping start event with invalid id", "id", ev.DocID)
		return ""
	}
	if _, exists := e.streaming[ev.DocID]; exists {
		return ev.DocID
	}

	doc := &artifact.Document{
		ID:     ev.DocID,
		Kind:   artifact.KindText,
		Status: artifact.StatusStreaming,
	}
	e.streaming[ev.DocID] = doc
	e.lastActiveID = ev.DocID
	e.turnOrder = append(e.turnOrder, ev.DocID)
	e.visible = project(e.visible, doc, nil)

	e.logger.Debug("document started", "id", ev.DocID)
	return ev.DocID
}

func (e *Engine) applyFinish(ev Event) string {
	doc := e.resolveTarget(ev)
	if doc == nil {
		return ""
	}

	doc.Status = artifact.StatusIdle
	if doc.Content != "" {
		settled := *doc
		e.settled[doc.ID] = &settled
	}
	delete(e.streaming, doc.ID)
	if e.lastActiveID == doc.ID {
		e.lastActiveID = ""
	}
	e.visible = project(e.visible, doc, nil)

	e.logger.Debug("document settled", "id", doc.ID, "content_len", len(doc.Content))
	return doc.ID
}

// resolveTarget returns the streaming registry entry an event addresses:
// the explicit doc id when present, otherwise the most recently started
// document. Returns nil when the event is unroutable.
func (e *Engine) resolveTarget(ev Event) *artifact.Document {
	id := ev.DocID
	if id == "" {
		id = e.lastActiveID
	}
	if id == "" {
		e.logger.Debug("dropping unroutable stream event", "type", ev.Type)
		return nil
	}
	doc, ok := e.streaming[id]
	if !ok {
		e.logger.Debug("dropping stream event for unknown document", "type", ev.Type, "id", id)
		return nil
	}
	return doc
}

// Visible returns the current visible artifact state.
func (e *Engine) Visible() VisibleState {
	return e.visible
}

// Document returns a copy of a settled document.
func (e *Engine) Document(id string) (artifact.Document, bool) {
	doc, ok := e.settled[id]
	if !ok {
		return artifact.Document{}, false
	}
	return *doc, true
}

// Streaming reports whether a document is currently generating.
func (e *Engine) Streaming(id string) bool {
	_, ok := e.streaming[id]
	return ok
}

// Show opens the panel on a known document. Returns false if the id is
// neither settled nor streaming.
func (e *Engine) Show(id string) bool {
	doc, ok := e.settled[id]
	if !ok {
		doc, ok = e.streaming[id]
	}
	if !ok {
		return false
	}
	visible := true
	e.visible = project(e.visible, doc, &visible)
	return true
}

// ShowDocument opens the panel on a document fetched from persistence,
// adding it to the session's settled set.
func (e *Engine) ShowDocument(doc *artifact.Document) {
	copied := *doc
	e.settled[doc.ID] = &copied
	visible := true
	e.visible = project(e.visible, &copied, &visible)
}

// Hide closes the panel without discarding the projected content.
func (e *Engine) Hide() {
	e.visible.Visible = false
}

// EndTurn applies the open-first-document policy: when the assistant
// turn's streaming fully ends, the panel opens on the first document
// created during the turn, by creation order, not completion order.
// The turn list is cleared either way. Returns the opened id, if any.
func (e *Engine) EndTurn() (string, bool) {
	order := e.turnOrder
	e.turnOrder = nil

	for _, id := range order {
		if e.Show(id) {
			e.logger.Debug("opened first document of turn", "id", id)
			return id, true
		}
	}
	return "", false
}

// Reset discards all session state. Used when a chat session ends.
func (e *Engine) Reset() {
	e.streaming = make(map[string]*artifact.Document)
	e.settled = make(map[string]*artifact.Document)
	e.lastActiveID = ""
	e.turnOrder = nil
	e.visible = VisibleState{}
}
