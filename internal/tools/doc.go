// Package tools provides the document-authoring toolset the model uses to
// drive the Canvas panel.
//
// The model does not write to the panel directly. It calls these tools
// during generation; each call is translated into document stream events
// and handed to a DocumentEmitter bound to the current request (an SSE
// writer, or the TUI's event channel). The canvas engine on the other end
// of that channel reconstructs the documents.
package tools
