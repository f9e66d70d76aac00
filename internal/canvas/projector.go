package canvas

import (
	"github.com/koopa0/canvas/internal/artifact"
)

// VisibleState is the single artifact state the side panel renders.
// Visible is only ever forced true by an explicit open action; content
// updates refresh the fields but never pop the panel open uninvited.
type VisibleState struct {
	DocumentID string
	Title      string
	Kind       artifact.Kind
	Language   string
	Content    string
	Status     artifact.Status
	Visible    bool
}

// project derives the next visible state from the document that was just
// touched. It copies the document fields and preserves the previous
// visibility unless force is non-nil.
//
// project is a pure function; it never mutates its inputs.
func project(prev VisibleState, doc *artifact.Document, force *bool) VisibleState {
	next := VisibleState{
		DocumentID: doc.ID,
		Title:      doc.Title,
		Kind:       doc.Kind,
		Language:   doc.Language,
		Content:    doc.Content,
		Status:     doc.Status,
		Visible:    prev.Visible,
	}
	if force != nil {
		next.Visible = *force
	}
	return next
}
