package artifact

import (
	"time"

	"github.com/google/uuid"
)

// Kind represents the document content category.
type Kind string

// Document content categories. KindText is the default until the producer
// announces a kind.
const (
	KindText     Kind = "text"
	KindCode     Kind = "code"
	KindMarkdown Kind = "markdown"
	KindHTML     Kind = "html"
	KindSheet    Kind = "sheet"
)

// Valid reports whether k is one of the known document kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindText, KindCode, KindMarkdown, KindHTML, KindSheet:
		return true
	}
	return false
}

// Status represents the generation state of a document.
type Status string

const (
	// StatusStreaming means content is still being generated.
	StatusStreaming Status = "streaming"
	// StatusIdle means generation has settled.
	StatusIdle Status = "idle"
)

// Document represents one generated Canvas artifact.
//
// Zero values:
//   - ID: "" (invalid, assigned by the producer)
//   - Title: "" (may arrive after creation and be updated)
//   - Kind: "" (callers should default to KindText)
//   - Language: "" (only meaningful for KindCode)
//   - Content: "" (full current text, not an append log)
//   - Status: "" (invalid, StatusStreaming or StatusIdle)
type Document struct {
	ID        string
	Title     string
	Kind      Kind
	Language  string
	Content   string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Version is one immutable content snapshot of a document.
type Version struct {
	ID         uuid.UUID
	DocumentID string
	Content    string
	CreatedAt  time.Time
}
