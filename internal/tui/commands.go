package tui

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/koopa0/canvas/internal/artifact"
	"github.com/koopa0/canvas/internal/canvas"
	"github.com/koopa0/canvas/internal/chat"
)

// streamBufferSize is sized for ~1.5s burst at 60 FPS refresh rate.
// This prevents backpressure during UI render delays while keeping
// memory bounded (100 strings ≈ 10KB typical).
const streamBufferSize = 100

// streamEvent is a discriminated union for all stream events.
// Using a single channel with union type simplifies select logic
// and eliminates complex multi-channel closure handling.
type streamEvent struct {
	// Exactly one of these fields is set per event
	text   string        // Text chunk (when non-empty)
	doc    *canvas.Event // Document stream event (when non-nil)
	output chat.Output   // Final output (when done is true)
	err    error         // Error (when non-nil)
	done   bool          // True when stream completed successfully
}

// Stream message types for Bubble Tea
type streamStartedMsg struct {
	eventCh <-chan streamEvent
	cancel  context.CancelFunc
}

type streamTextMsg struct {
	text string
}

type streamDocumentMsg struct {
	event canvas.Event
}

type streamDoneMsg struct {
	output chat.Output
}

type streamErrorMsg struct {
	err error
}

// titleGeneratedMsg delivers the generated conversation title. An empty
// title means generation failed; the conversation stays untitled.
type titleGeneratedMsg struct {
	title string
}

// Version command result messages. Each carries the generation of the
// request that produced it; the controller drops stale generations.
type versionsLoadedMsg struct {
	docID      string
	generation int
	versions   []*artifact.Version
	err        error
}

type versionRestoredMsg struct {
	docID      string
	generation int
	version    *artifact.Version
	err        error
}

// startStream creates a command that initiates streaming.
// Directly uses *chat.Flow - no adapter needed. The flow multiplexes text
// chunks and document events onto the same stream.
//
// Goroutine lifecycle: The spawned goroutine exits when:
//  1. Stream completes normally (Done=true)
//  2. Context is canceled (cancel() called)
//  3. Error occurs
//
// Channel closure signals completion - no WaitGroup needed.
func (t *TUI) startStream(query string) tea.Cmd {
	return func() tea.Msg {
		eventCh := make(chan streamEvent, streamBufferSize)

		// Create context with timeout to prevent indefinite hangs
		ctx, cancel := context.WithTimeout(t.ctx, streamTimeout)

		go func() {
			// Ensure timer resources are released on all exit paths
			defer cancel()
			// Channel closure signals goroutine completion
			defer close(eventCh)

			// Panic recovery to prevent TUI lockup
			defer func() {
				if r := recover(); r != nil {
					t.logger.Error("stream panic recovered", "panic", r)
					select {
					case eventCh <- streamEvent{err: fmt.Errorf("stream panic: %v", r)}:
					default:
					}
				}
			}()

			var chunkCount int

			// Directly use chat.Flow's iterator (Go 1.23+ range-over-func)
			// Genkit's StreamingFlowValue has: {Stream, Output, Done}
			for streamValue, err := range t.chatFlow.Stream(ctx, chat.Input{
				Prompt: query,
			}) {
				if err != nil {
					select {
					case eventCh <- streamEvent{err: fmt.Errorf("chunk %d: %w", chunkCount, err)}:
					case <-ctx.Done():
					}
					return
				}

				if streamValue.Done {
					select {
					case eventCh <- streamEvent{done: true, output: streamValue.Output}:
					case <-ctx.Done():
					}
					return
				}

				if streamValue.Stream.Document != nil {
					select {
					case eventCh <- streamEvent{doc: streamValue.Stream.Document}:
					case <-ctx.Done():
						return
					}
				}

				if streamValue.Stream.Text != "" {
					chunkCount++
					select {
					case eventCh <- streamEvent{text: streamValue.Stream.Text}:
					case <-ctx.Done():
						return
					}
				}
			}

			// CRITICAL: Guarantee completion signal if iterator exits without Done
			// This happens when: context canceled, zero chunks, or early termination
			err := ctx.Err()
			if err == nil {
				err = fmt.Errorf("stream ended unexpectedly without completion")
				t.logger.Warn("stream iterator exited without completion signal")
			}
			select {
			case eventCh <- streamEvent{err: err}:
			default:
			}
		}()

		return streamStartedMsg{
			eventCh: eventCh,
			cancel:  cancel,
		}
	}
}

// listenForStream creates a command to wait for next stream event.
// Uses single union channel - no complex multi-channel select needed.
// Empty events (all fields zero) are skipped via loop instead of recursion
// to prevent stack overflow under pathological conditions.
func listenForStream(eventCh <-chan streamEvent) tea.Cmd {
	return func() tea.Msg {
		if eventCh == nil {
			return nil
		}

		for {
			event, ok := <-eventCh
			if !ok {
				// Channel closed - stream ended
				return streamErrorMsg{err: fmt.Errorf("stream ended without completion signal")}
			}

			// Discriminated union dispatch
			switch {
			case event.err != nil:
				return streamErrorMsg{err: event.err}
			case event.done:
				return streamDoneMsg{output: event.output}
			case event.doc != nil:
				return streamDocumentMsg{event: *event.doc}
			case event.text != "":
				return streamTextMsg{text: event.text}
			default:
				// Empty event - loop instead of recursing
				continue
			}
		}
	}
}

// generateTitle asks the model for a conversation title. Best-effort:
// the titler returns an empty string on failure.
func (t *TUI) generateTitle(prompt string) tea.Cmd {
	return func() tea.Msg {
		return titleGeneratedMsg{title: t.titler.GenerateTitle(t.ctx, prompt)}
	}
}

// fetchVersions loads the version history of a document from persistence.
// The result message carries the generation so stale fetches are dropped.
func (t *TUI) fetchVersions(docID string, generation int) tea.Cmd {
	return func() tea.Msg {
		versions, err := t.store.Versions(t.ctx, docID)
		return versionsLoadedMsg{
			docID:      docID,
			generation: generation,
			versions:   versions,
			err:        err,
		}
	}
}

// restoreVersion persists a historical snapshot as the new latest version.
// History is append-only: the store appends rather than rewriting.
func (t *TUI) restoreVersion(docID, content string, generation int) tea.Cmd {
	return func() tea.Msg {
		version, err := t.store.Restore(t.ctx, docID, content)
		return versionRestoredMsg{
			docID:      docID,
			generation: generation,
			version:    version,
			err:        err,
		}
	}
}
