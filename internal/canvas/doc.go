// Package canvas implements the artifact stream and version engine behind
// the Canvas side panel.
//
// During an assistant turn the model emits an ordered event stream that may
// interleave the generation of several documents. The Engine routes each
// event to its target document, rebuilds content incrementally under a
// replace-not-append semantic, and projects the single visible artifact
// state the panel renders. Once a document settles, the Controller manages
// its version history: an index cursor over immutable snapshots, a
// view/diff mode toggle, and append-only restore.
//
// The engine is a display-layer cache, not a source of truth. Unroutable
// or malformed events are dropped; canonical content always remains
// recoverable from persistence.
//
// All types in this package are single-goroutine state machines. Callers
// serialize stream events and user actions onto one loop (the TUI program
// or one HTTP stream handler) and run the asynchronous fetch/restore calls
// themselves, feeding results back through the Apply methods.
package canvas
