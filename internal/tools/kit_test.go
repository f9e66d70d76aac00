package tools

import (
	"context"
	"testing"

	"github.com/firebase/genkit/go/ai"

	"github.com/koopa0/canvas/internal/canvas"
	"github.com/koopa0/canvas/internal/log"
)

// recordingEmitter captures emitted events in order.
type recordingEmitter struct {
	events []canvas.Event
}

func (r *recordingEmitter) Emit(event canvas.Event) {
	r.events = append(r.events, event)
}

func newTestKit(t *testing.T) *Kit {
	t.Helper()
	kit, err := NewKit(log.NewNop())
	if err != nil {
		t.Fatalf("NewKit() error = %v", err)
	}
	return kit
}

func toolCtx(emitter DocumentEmitter) *ai.ToolContext {
	ctx := context.Background()
	if emitter != nil {
		ctx = ContextWithEmitter(ctx, emitter)
	}
	return &ai.ToolContext{Context: ctx}
}

func TestNewKit_RequiresLogger(t *testing.T) {
	t.Parallel()
	if _, err := NewKit(nil); err == nil {
		t.Error("NewKit(nil) error = nil, want error")
	}
}

func TestKit_CreateDocument(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		input      CreateDocumentInput
		wantErr    bool
		wantEvents []canvas.Event
	}{
		{
			name:  "full input emits start title kind language",
			input: CreateDocumentInput{ID: "main-go", Title: "Main", Kind: "code", Language: "go"},
			wantEvents: []canvas.Event{
				canvas.StartEvent("main-go"),
				canvas.TitleEvent("Main", "main-go"),
				canvas.KindEvent("code", "main-go"),
				canvas.LanguageEvent("go", "main-go"),
			},
		},
		{
			name:  "minimal input emits start only",
			input: CreateDocumentInput{ID: "notes"},
			wantEvents: []canvas.Event{
				canvas.StartEvent("notes"),
			},
		},
		{
			name:    "invalid id rejected",
			input:   CreateDocumentInput{ID: "has space"},
			wantErr: true,
		},
		{
			name:    "empty id rejected",
			input:   CreateDocumentInput{},
			wantErr: true,
		},
		{
			name:    "unknown kind rejected",
			input:   CreateDocumentInput{ID: "x", Kind: "hologram"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			kit := newTestKit(t)
			rec := &recordingEmitter{}

			result, err := kit.CreateDocument(toolCtx(rec), tt.input)

			if (err != nil) != tt.wantErr {
				t.Fatalf("CreateDocument() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if len(rec.events) != 0 {
					t.Errorf("events emitted despite error: %v", rec.events)
				}
				return
			}
			if result.Status != "ok" {
				t.Errorf("result.Status = %q, want ok", result.Status)
			}
			if len(rec.events) != len(tt.wantEvents) {
				t.Fatalf("emitted %d events, want %d: %v", len(rec.events), len(tt.wantEvents), rec.events)
			}
			for i, want := range tt.wantEvents {
				if rec.events[i] != want {
					t.Errorf("event[%d] = %+v, want %+v", i, rec.events[i], want)
				}
			}
		})
	}
}

func TestKit_UpdateDocument(t *testing.T) {
	t.Parallel()
	kit := newTestKit(t)
	rec := &recordingEmitter{}

	result, err := kit.UpdateDocument(toolCtx(rec), UpdateDocumentInput{
		ID:      "notes",
		Content: "# Notes\n\nFirst section.",
	})
	if err != nil {
		t.Fatalf("UpdateDocument() error = %v", err)
	}
	if result.Status != "ok" {
		t.Errorf("result.Status = %q", result.Status)
	}

	want := canvas.DeltaEvent("# Notes\n\nFirst section.", "notes")
	if len(rec.events) != 1 || rec.events[0] != want {
		t.Errorf("events = %v, want [%+v]", rec.events, want)
	}
}

func TestKit_UpdateDocument_OmittedIDTargetsActiveDocument(t *testing.T) {
	t.Parallel()
	kit := newTestKit(t)
	rec := &recordingEmitter{}

	_, err := kit.UpdateDocument(toolCtx(rec), UpdateDocumentInput{Content: "text"})
	if err != nil {
		t.Fatalf("UpdateDocument() error = %v", err)
	}
	if len(rec.events) != 1 || rec.events[0].DocID != "" {
		t.Errorf("events = %v, want one event with empty doc id", rec.events)
	}
}

func TestKit_FinishDocument(t *testing.T) {
	t.Parallel()
	kit := newTestKit(t)
	rec := &recordingEmitter{}

	if _, err := kit.FinishDocument(toolCtx(rec), FinishDocumentInput{ID: "notes"}); err != nil {
		t.Fatalf("FinishDocument() error = %v", err)
	}

	want := canvas.FinishEvent("notes")
	if len(rec.events) != 1 || rec.events[0] != want {
		t.Errorf("events = %v, want [%+v]", rec.events, want)
	}
}

func TestKit_ToolsDegradeWithoutEmitter(t *testing.T) {
	t.Parallel()
	kit := newTestKit(t)

	if _, err := kit.CreateDocument(toolCtx(nil), CreateDocumentInput{ID: "d"}); err != nil {
		t.Errorf("CreateDocument without emitter error = %v", err)
	}
	if _, err := kit.UpdateDocument(toolCtx(nil), UpdateDocumentInput{Content: "x"}); err != nil {
		t.Errorf("UpdateDocument without emitter error = %v", err)
	}
	if _, err := kit.FinishDocument(toolCtx(nil), FinishDocumentInput{}); err != nil {
		t.Errorf("FinishDocument without emitter error = %v", err)
	}
}

func TestKit_DriveEngineThroughTools(t *testing.T) {
	t.Parallel()
	kit := newTestKit(t)
	engine := canvas.NewEngine(log.NewNop())
	tc := toolCtx(EmitterFunc(func(ev canvas.Event) { engine.Apply(ev) }))

	mustOK := func(result Result, err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("tool call error = %v", err)
		}
		if result.Status != "ok" {
			t.Fatalf("tool result = %+v", result)
		}
	}

	mustOK(kit.CreateDocument(tc, CreateDocumentInput{ID: "plan", Title: "Plan", Kind: "markdown"}))
	mustOK(kit.UpdateDocument(tc, UpdateDocumentInput{Content: "# Week 1"}))
	mustOK(kit.UpdateDocument(tc, UpdateDocumentInput{Content: "# Week 1\n\n# Week 2"}))
	mustOK(kit.FinishDocument(tc, FinishDocumentInput{}))

	doc, ok := engine.Document("plan")
	if !ok {
		t.Fatal("document not settled after finishDocument")
	}
	if doc.Title != "Plan" || doc.Content != "# Week 1\n\n# Week 2" {
		t.Errorf("settled doc = %+v", doc)
	}
}
