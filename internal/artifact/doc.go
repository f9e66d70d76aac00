// Package artifact provides the Canvas document model and its persistence.
//
// A document is one generated artifact displayed in the Canvas panel (plain
// text, code, markdown, HTML or sheet content). Its id is assigned by the
// producer when generation starts and is stable for the life of the document.
// Finished documents are persisted together with an append-only sequence of
// content versions; restoring an old version appends a new one, it never
// rewrites history.
//
// Thread Safety: Store is safe for concurrent use.
//
// Lifecycle: a document is created on the first save after its generation
// finishes; every subsequent save or restore appends a version row. Versions
// are deleted only when their parent document is deleted (CASCADE DELETE at
// database level).
package artifact
