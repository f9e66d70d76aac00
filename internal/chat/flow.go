package chat

import (
	"context"
	"fmt"
	"sync"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/core"
	"github.com/firebase/genkit/go/genkit"

	"github.com/koopa0/canvas/internal/canvas"
	"github.com/koopa0/canvas/internal/tools"
)

// Input defines the request payload for the canvas chat flow.
type Input struct {
	Prompt string `json:"prompt"`
}

// Output defines the response payload from the canvas chat flow.
type Output struct {
	Response string `json:"response"`
}

// StreamChunk is the streaming output type for the canvas chat flow.
// Exactly one of Text or Document is set per chunk: Text carries partial
// model output, Document carries a canvas event produced by a tool call.
type StreamChunk struct {
	Text     string        `json:"text,omitempty"`
	Document *canvas.Event `json:"document,omitempty"`
}

// FlowName is the registered name of the canvas chat flow in Genkit.
const FlowName = "canvas/chat"

// Flow is the type alias for the canvas chat agent's Genkit streaming flow.
// Exported for use in the api package with genkit.Handler().
type Flow = core.Flow[Input, Output, StreamChunk]

// Package-level singleton for Flow to prevent panic on re-registration.
// sync.Once ensures genkit.DefineStreamingFlow is called only once.
var (
	flowOnce sync.Once
	flow     *Flow
)

// NewFlow returns the canvas chat flow singleton, initializing it on first call.
// Subsequent calls return the existing Flow (parameters are ignored).
// This is safe because genkit.DefineStreamingFlow panics on re-registration.
func NewFlow(g *genkit.Genkit, agent *Agent) *Flow {
	flowOnce.Do(func() {
		flow = agent.DefineFlow(g)
	})
	return flow
}

// ResetFlowForTesting resets the Flow singleton for testing.
// WARNING: Only use in tests. Not safe for concurrent use.
func ResetFlowForTesting() {
	flowOnce = sync.Once{}
	flow = nil
}

// DefineFlow defines the Genkit streaming flow for the canvas chat agent.
//
// IMPORTANT: Use NewFlow() instead of calling DefineFlow() directly.
// DefineFlow registers a global Flow; calling it twice causes panic.
//
// The flow bridges the agent's two output channels into a single stream:
// model text arrives through the genkit streaming callback, document events
// arrive through a tools.DocumentEmitter installed in the request context.
// Both are forwarded to the flow's stream callback as StreamChunks.
func (a *Agent) DefineFlow(g *genkit.Genkit) *Flow {
	return genkit.DefineStreamingFlow(g, FlowName,
		func(ctx context.Context, input Input, streamCb func(context.Context, StreamChunk) error) (Output, error) {
			var agentCallback StreamCallback
			if streamCb != nil {
				// Document events are forwarded inline with text chunks.
				// Tool handlers run synchronously inside genkit.Generate,
				// so Emit never races streamCb.
				emitter := tools.EmitterFunc(func(ev canvas.Event) {
					_ = streamCb(ctx, StreamChunk{Document: &ev})
				})
				ctx = tools.ContextWithEmitter(ctx, emitter)

				agentCallback = func(ctx context.Context, chunk *ai.ModelResponseChunk) error {
					if chunk == nil {
						return nil
					}
					for _, part := range chunk.Content {
						if part.Text != "" {
							if streamErr := streamCb(ctx, StreamChunk{Text: part.Text}); streamErr != nil {
								return streamErr
							}
						}
					}
					return nil
				}
			}

			resp, err := a.ExecuteStream(ctx, input.Prompt, nil, agentCallback)
			if err != nil {
				// Genkit will mark this span as failed, enabling proper observability
				return Output{}, fmt.Errorf("%w: %w", ErrExecutionFailed, err)
			}

			return Output{Response: resp.FinalText}, nil
		},
	)
}
