package canvas

// EventType identifies a document stream event.
type EventType string

const (
	// EventStart registers a new streaming document.
	EventStart EventType = "start"
	// EventTitle sets the target document's title.
	EventTitle EventType = "title"
	// EventKind sets the target document's content kind.
	EventKind EventType = "kind"
	// EventLanguage sets the target document's language (code kind only).
	EventLanguage EventType = "language"
	// EventClear resets the target document's content for regeneration.
	EventClear EventType = "clear"
	// EventDelta replaces the target document's content with the cumulative
	// text generated so far. Deltas are full snapshots, not append fragments.
	EventDelta EventType = "delta"
	// EventFinish settles the target document and removes it from the
	// streaming registry.
	EventFinish EventType = "finish"
)

// Event is one entry in the multiplexed document stream. DocID is the
// explicit target; when empty, the event resolves to the most recently
// started document. Value carries the payload for title, kind, language
// and delta events.
//
// Events are JSON-encoded on the wire, so the field tags are part of the
// transport schema shared with the HTTP stream.
type Event struct {
	Type  EventType `json:"type"`
	DocID string    `json:"doc_id,omitempty"`
	Value string    `json:"value,omitempty"`
}

// StartEvent registers a new document with the given producer-assigned id.
func StartEvent(docID string) Event {
	return Event{Type: EventStart, DocID: docID}
}

// TitleEvent sets the title of docID, or of the active document when
// docID is empty.
func TitleEvent(title, docID string) Event {
	return Event{Type: EventTitle, DocID: docID, Value: title}
}

// KindEvent sets the content kind of the target document.
func KindEvent(kind, docID string) Event {
	return Event{Type: EventKind, DocID: docID, Value: kind}
}

// LanguageEvent sets the language of the target document.
func LanguageEvent(language, docID string) Event {
	return Event{Type: EventLanguage, DocID: docID, Value: language}
}

// ClearEvent empties the target document's content ahead of regeneration.
func ClearEvent(docID string) Event {
	return Event{Type: EventClear, DocID: docID}
}

// DeltaEvent replaces the target document's content with the full text
// generated so far.
func DeltaEvent(content, docID string) Event {
	return Event{Type: EventDelta, DocID: docID, Value: content}
}

// FinishEvent settles the target document.
func FinishEvent(docID string) Event {
	return Event{Type: EventFinish, DocID: docID}
}
