package tools

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/koopa0/canvas/internal/artifact"
	"github.com/koopa0/canvas/internal/canvas"
	"github.com/koopa0/canvas/internal/log"
)

// Tool name constants.
const (
	ToolCreateDocument = "createDocument"
	ToolUpdateDocument = "updateDocument"
	ToolFinishDocument = "finishDocument"
)

// CreateDocumentInput defines input for the createDocument tool.
type CreateDocumentInput struct {
	ID       string `json:"id" jsonschema_description:"Unique document id you assign, e.g. 'travel-plan'. Reuse the id to regenerate an existing document"`
	Title    string `json:"title,omitempty" jsonschema_description:"Human-readable document title"`
	Kind     string `json:"kind,omitempty" jsonschema_description:"Content kind: text, code, markdown, html or sheet. Defaults to text"`
	Language string `json:"language,omitempty" jsonschema_description:"Programming language, only for kind=code"`
}

// UpdateDocumentInput defines input for the updateDocument tool.
type UpdateDocumentInput struct {
	ID      string `json:"id,omitempty" jsonschema_description:"Target document id. Omit to address the most recently created document"`
	Content string `json:"content" jsonschema_description:"The FULL document content so far, not just the new part. Each call replaces the previous content entirely"`
}

// FinishDocumentInput defines input for the finishDocument tool.
type FinishDocumentInput struct {
	ID string `json:"id,omitempty" jsonschema_description:"Target document id. Omit to address the most recently created document"`
}

// Result is the uniform tool result shape returned to the model.
type Result struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func okResult(format string, args ...any) (Result, error) {
	return Result{Status: "ok", Message: fmt.Sprintf(format, args...)}, nil
}

// Kit provides the document-authoring tools for the canvas.
type Kit struct {
	logger log.Logger
}

// NewKit creates the authoring tool kit.
func NewKit(logger log.Logger) (*Kit, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Kit{logger: logger}, nil
}

// Register registers all authoring tools to Genkit.
func (k *Kit) Register(g *genkit.Genkit) error {
	if g == nil {
		return fmt.Errorf("genkit instance is required (cannot be nil)")
	}

	genkit.DefineTool(g, ToolCreateDocument,
		"Create a new document in the canvas panel. "+
			"Use this whenever the user asks for substantial standalone content: an essay, a plan, source code, a report. "+
			"Assign a short stable id; follow up with updateDocument calls to fill in the content.",
		k.CreateDocument)

	genkit.DefineTool(g, ToolUpdateDocument,
		"Write content into a canvas document. "+
			"IMPORTANT: send the complete document content on every call — each update replaces the whole document, it does not append. "+
			"Call repeatedly as the document grows so the user sees it build up.",
		k.UpdateDocument)

	genkit.DefineTool(g, ToolFinishDocument,
		"Mark a canvas document as complete. "+
			"Call this exactly once per document after its final updateDocument call.",
		k.FinishDocument)

	k.logger.Debug("document authoring tools registered")
	return nil
}

// All returns every tool registered in Genkit, for wiring into the agent.
func (k *Kit) All(_ context.Context, g *genkit.Genkit) []ai.Tool {
	return genkit.ListTools(g)
}

// CreateDocument handles the createDocument tool call. It emits the start
// event followed by title, kind and language events for any fields the
// model supplied.
func (k *Kit) CreateDocument(tc *ai.ToolContext, input CreateDocumentInput) (Result, error) {
	if err := artifact.ValidateID(input.ID); err != nil {
		return Result{}, fmt.Errorf("createDocument: %w", err)
	}
	if input.Kind != "" && !artifact.Kind(input.Kind).Valid() {
		return Result{}, fmt.Errorf("createDocument: %w: %q", artifact.ErrInvalidKind, input.Kind)
	}

	emitter := EmitterFromContext(tc.Context)
	if emitter == nil {
		k.logger.Debug("createDocument called without emitter", "id", input.ID)
		return okResult("document %s created", input.ID)
	}

	emitter.Emit(canvas.StartEvent(input.ID))
	if input.Title != "" {
		emitter.Emit(canvas.TitleEvent(input.Title, input.ID))
	}
	if input.Kind != "" {
		emitter.Emit(canvas.KindEvent(input.Kind, input.ID))
	}
	if input.Language != "" {
		emitter.Emit(canvas.LanguageEvent(input.Language, input.ID))
	}

	k.logger.Debug("document created", "id", input.ID, "kind", input.Kind)
	return okResult("document %s created, now stream its content with updateDocument", input.ID)
}

// UpdateDocument handles the updateDocument tool call, emitting a delta
// event carrying the full replacement content.
func (k *Kit) UpdateDocument(tc *ai.ToolContext, input UpdateDocumentInput) (Result, error) {
	if input.ID != "" {
		if err := artifact.ValidateID(input.ID); err != nil {
			return Result{}, fmt.Errorf("updateDocument: %w", err)
		}
	}

	emitter := EmitterFromContext(tc.Context)
	if emitter == nil {
		k.logger.Debug("updateDocument called without emitter", "id", input.ID)
		return okResult("document updated")
	}

	emitter.Emit(canvas.DeltaEvent(input.Content, input.ID))

	k.logger.Debug("document updated", "id", input.ID, "content_len", len(input.Content))
	return okResult("document updated (%d chars)", len(input.Content))
}

// FinishDocument handles the finishDocument tool call.
func (k *Kit) FinishDocument(tc *ai.ToolContext, input FinishDocumentInput) (Result, error) {
	if input.ID != "" {
		if err := artifact.ValidateID(input.ID); err != nil {
			return Result{}, fmt.Errorf("finishDocument: %w", err)
		}
	}

	emitter := EmitterFromContext(tc.Context)
	if emitter == nil {
		k.logger.Debug("finishDocument called without emitter", "id", input.ID)
		return okResult("document finished")
	}

	emitter.Emit(canvas.FinishEvent(input.ID))

	k.logger.Debug("document finished", "id", input.ID)
	return okResult("document finished")
}
