package tools

import (
	"context"

	"github.com/koopa0/canvas/internal/canvas"
)

// emitterKey uses empty struct for zero-allocation context key.
type emitterKey struct{}

// DocumentEmitter receives document stream events produced by the
// authoring tools. The interface is minimal so any transport can sit
// behind it: the SSE handler forwards events to the client, the TUI
// forwards them to its program loop.
//
// Usage:
//  1. Handler creates an emitter bound to its output channel
//  2. Handler stores it in context via ContextWithEmitter()
//  3. Tools retrieve it via EmitterFromContext() and call Emit()
type DocumentEmitter interface {
	// Emit delivers one document stream event. Implementations must
	// preserve call order; the canvas engine relies on in-order delivery
	// per document id.
	Emit(event canvas.Event)
}

// EmitterFromContext retrieves the DocumentEmitter from context.
// Returns nil if not set; tools degrade to no-ops so a non-streaming
// invocation does not fail.
func EmitterFromContext(ctx context.Context) DocumentEmitter {
	emitter, _ := ctx.Value(emitterKey{}).(DocumentEmitter)
	return emitter
}

// ContextWithEmitter stores a DocumentEmitter in context for per-request
// binding.
func ContextWithEmitter(ctx context.Context, emitter DocumentEmitter) context.Context {
	return context.WithValue(ctx, emitterKey{}, emitter)
}

// EmitterFunc adapts a function to the DocumentEmitter interface.
type EmitterFunc func(event canvas.Event)

// Emit calls f(event).
func (f EmitterFunc) Emit(event canvas.Event) { f(event) }
