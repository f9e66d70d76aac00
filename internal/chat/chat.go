package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"golang.org/x/time/rate"

	"github.com/koopa0/canvas/internal/log"
	"github.com/koopa0/canvas/internal/tools"
)

// Agent name and description constants
const (
	// Name is the unique identifier for the canvas chat agent.
	Name = "canvas"

	// Description describes the agent's capabilities.
	Description = "A conversational agent that writes and revises documents on a side-by-side canvas using document tools."

	// fallbackResponseMessage is the message returned when the model produces an empty response.
	fallbackResponseMessage = "I apologize, but I couldn't generate a response. Please try rephrasing your question."
)

// systemPrompt instructs the model when and how to use the document tools.
// Every updateDocument call must carry the FULL document content: the canvas
// replaces the document wholesale on each update, it never appends.
var systemPrompt = fmt.Sprintf(`You are a writing assistant with access to a document canvas.

For substantial content (essays, code, documents, structured text), use the document tools instead of answering inline:
1. Call %s with a short unique id, a title, and a kind (text, code, markdown, html, or sheet).
2. Call %s with the COMPLETE document content. Each call REPLACES the whole document, so always send the full text, never a fragment or a diff.
3. Call %s when the document is complete.

For short conversational answers, reply directly without tools.
After finishing a document, give a one-sentence summary in your reply.`,
	tools.ToolCreateDocument, tools.ToolUpdateDocument, tools.ToolFinishDocument)

// Sentinel errors for agent operations.
var (
	// ErrEmptyInput indicates the user message was empty or whitespace.
	ErrEmptyInput = errors.New("empty input")

	// ErrExecutionFailed indicates agent execution failed.
	ErrExecutionFailed = errors.New("execution failed")
)

// Response represents the complete result of an agent execution.
type Response struct {
	FinalText    string            // Model's final text output
	ToolRequests []*ai.ToolRequest // Tool requests made during execution
}

// StreamCallback is called for each chunk of streaming response.
// The chunk contains partial content that can be immediately displayed to the user.
// Return an error to abort the stream.
type StreamCallback func(ctx context.Context, chunk *ai.ModelResponseChunk) error

// Config contains all required parameters for the canvas chat agent.
type Config struct {
	Genkit *genkit.Genkit
	Logger log.Logger
	Tools  []ai.Tool // Pre-registered document tools

	// Configuration values
	ModelName string // Provider-qualified model name (e.g., "googleai/gemini-2.5-flash")
	MaxTurns  int    // Maximum agentic loop turns

	// Resilience configuration
	RetryConfig          RetryConfig          // LLM retry settings (zero-value uses defaults)
	CircuitBreakerConfig CircuitBreakerConfig // Circuit breaker settings (zero-value uses defaults)
	RateLimiter          *rate.Limiter        // Optional: proactive rate limiting (nil = use default)
}

// validate checks if all required parameters are present.
func (cfg Config) validate() error {
	if cfg.Genkit == nil {
		return errors.New("genkit instance is required")
	}
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	if len(cfg.Tools) == 0 {
		return errors.New("at least one tool is required")
	}
	return nil
}

// Agent is the canvas conversational agent.
// It runs LLM conversations whose tool calls author documents; the document
// events themselves travel through a tools.DocumentEmitter that the caller
// installs in the request context before calling ExecuteStream.
//
// Agent is stateless. Conversation history is owned by the caller and passed
// into each execution. All configuration is captured immutably at construction
// time for thread-safe concurrent access.
type Agent struct {
	// Immutable configuration (captured at construction)
	modelName string
	maxTurns  int

	// Resilience (captured at construction)
	retryConfig    RetryConfig
	circuitBreaker *CircuitBreaker
	rateLimiter    *rate.Limiter

	// Dependencies (read-only after construction)
	g         *genkit.Genkit
	logger    log.Logger
	tools     []ai.Tool
	toolRefs  []ai.ToolRef // Cached at construction (ai.Tool implements ai.ToolRef)
	toolNames string       // Cached as comma-separated for logging
}

// New creates a new Agent with required configuration.
//
// Example:
//
//	agent, err := chat.New(chat.Config{
//	    Genkit:    g,
//	    Logger:    logger,
//	    Tools:     kit.All(ctx, g),
//	    ModelName: cfg.ModelName,
//	    MaxTurns:  cfg.MaxTurns,
//	})
func New(cfg Config) (*Agent, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	maxTurns := cfg.MaxTurns
	if maxTurns <= 0 {
		maxTurns = 5 // Default fallback
	}

	// Apply resilience defaults if not configured
	retryConfig := cfg.RetryConfig
	if retryConfig.MaxRetries == 0 {
		retryConfig = DefaultRetryConfig()
	}

	cbConfig := cfg.CircuitBreakerConfig
	if cbConfig.FailureThreshold == 0 {
		cbConfig = DefaultCircuitBreakerConfig()
	}

	// Use provided rate limiter or create default
	// Default: 10 requests/sec sustained, burst of 30
	rl := cfg.RateLimiter
	if rl == nil {
		rl = rate.NewLimiter(10, 30)
	}

	// Cache tool refs and names at construction (zero allocation per request)
	toolRefs := make([]ai.ToolRef, len(cfg.Tools))
	names := make([]string, len(cfg.Tools))
	for i, t := range cfg.Tools {
		toolRefs[i] = t
		names[i] = t.Name()
	}

	a := &Agent{
		modelName: cfg.ModelName,
		maxTurns:  maxTurns,

		retryConfig:    retryConfig,
		circuitBreaker: NewCircuitBreaker(cbConfig),
		rateLimiter:    rl,

		g:         cfg.Genkit,
		logger:    cfg.Logger,
		tools:     cfg.Tools,
		toolRefs:  toolRefs,
		toolNames: strings.Join(names, ", "),
	}

	a.logger.Info("canvas agent initialized",
		"totalTools", len(a.tools),
		"maxTurns", a.maxTurns,
	)

	return a, nil
}

// Execute runs the agent with the given input (non-streaming).
// This is a convenience wrapper around ExecuteStream with nil callback.
func (a *Agent) Execute(ctx context.Context, input string, history []*ai.Message) (*Response, error) {
	return a.ExecuteStream(ctx, input, history, nil)
}

// ExecuteStream runs the agent with optional streaming output.
// history holds the prior conversation messages in order; the current
// user input is appended internally. If callback is non-nil, it is called
// for each chunk of the response as it's generated.
//
// Document events from tool calls are delivered out-of-band: install an
// emitter with tools.ContextWithEmitter before calling.
func (a *Agent) ExecuteStream(ctx context.Context, input string, history []*ai.Message, callback StreamCallback) (*Response, error) {
	if strings.TrimSpace(input) == "" {
		return nil, ErrEmptyInput
	}

	streaming := callback != nil
	a.logger.Debug("executing canvas agent",
		"historyLength", len(history),
		"streaming", streaming)

	resp, err := a.generateResponse(ctx, input, history, callback)
	if err != nil {
		return nil, err
	}

	responseText := resp.Text()

	// Only apply fallback when truly empty (no text AND no tool requests)
	// When the LLM returns empty text but has tool requests, this is valid agentic behavior
	if strings.TrimSpace(responseText) == "" && len(resp.ToolRequests()) == 0 {
		a.logger.Warn("model returned empty response with no tool requests")
		responseText = fallbackResponseMessage
	}

	return &Response{
		FinalText:    responseText,
		ToolRequests: resp.ToolRequests(),
	}, nil
}

// generateResponse is the unified response generation logic for both streaming
// and non-streaming modes.
func (a *Agent) generateResponse(ctx context.Context, input string, history []*ai.Message, callback StreamCallback) (*ai.ModelResponse, error) {
	// Build messages: deep copy history and append current user input
	// CRITICAL: Deep copy is required to prevent DATA RACE in Genkit's renderMessages()
	// Genkit modifies msg.Content in-place, so concurrent executions sharing the same
	// message objects will race. We must copy each message, not just the slice.
	messages := deepCopyMessages(history)
	messages = append(messages, ai.NewUserMessage(ai.NewTextPart(input)))

	opts := []ai.GenerateOption{
		ai.WithSystem(systemPrompt),
		ai.WithMessages(messages...),
		ai.WithTools(a.toolRefs...),
		ai.WithMaxTurns(a.maxTurns),
	}

	if a.modelName != "" {
		opts = append(opts, ai.WithModelName(a.modelName))
	}

	if callback != nil {
		opts = append(opts, ai.WithStreaming(ai.ModelStreamCallback(callback)))
	}

	// Diagnostic logging (using cached toolNames - zero allocation)
	a.logger.Debug("generating response",
		"toolCount", len(a.tools),
		"tools", a.toolNames,
		"maxTurns", a.maxTurns,
		"queryLength", len(input),
	)

	// Check circuit breaker before attempting request
	if err := a.circuitBreaker.Allow(); err != nil {
		a.logger.Warn("circuit breaker is open, rejecting request",
			"state", a.circuitBreaker.State().String())
		return nil, fmt.Errorf("service unavailable: %w", err)
	}

	resp, err := a.executeWithRetry(ctx, opts)
	if err != nil {
		a.circuitBreaker.Failure()
		return nil, err
	}

	a.circuitBreaker.Success()
	return resp, nil
}

// deepCopyMessages creates independent copies of Message and Part structs.
//
// WORKAROUND: Genkit's renderMessages() modifies msg.Content in-place,
// causing data races in concurrent executions. This function creates
// independent struct copies to prevent the race.
//
// Tested version: github.com/firebase/genkit/go v1.4.0
// Re-check with `go test -race` after upgrading Genkit; remove when fixed upstream.
func deepCopyMessages(msgs []*ai.Message) []*ai.Message {
	if msgs == nil {
		return nil // Preserve nil vs empty slice semantics
	}
	copied := make([]*ai.Message, len(msgs))
	for i, msg := range msgs {
		parts := make([]*ai.Part, len(msg.Content))
		for j, part := range msg.Content {
			parts[j] = deepCopyPart(part)
		}
		copied[i] = &ai.Message{
			Role:     msg.Role,
			Content:  parts,
			Metadata: shallowCopyMap(msg.Metadata),
		}
	}
	return copied
}

// deepCopyPart creates an independent copy of an ai.Part struct.
//
// ToolRequest.Input and ToolResponse.Output are type `any` and copied by
// reference: Genkit only mutates msg.Content, never tool data.
func deepCopyPart(p *ai.Part) *ai.Part {
	if p == nil {
		return nil
	}
	cp := &ai.Part{
		Kind:        p.Kind,
		ContentType: p.ContentType,
		Text:        p.Text,
		Custom:      shallowCopyMap(p.Custom),
		Metadata:    shallowCopyMap(p.Metadata),
	}
	if p.ToolRequest != nil {
		cp.ToolRequest = &ai.ToolRequest{
			Input: p.ToolRequest.Input,
			Name:  p.ToolRequest.Name,
			Ref:   p.ToolRequest.Ref,
		}
	}
	if p.ToolResponse != nil {
		cp.ToolResponse = &ai.ToolResponse{
			Name:   p.ToolResponse.Name,
			Output: p.ToolResponse.Output,
			Ref:    p.ToolResponse.Ref,
		}
	}
	if p.Resource != nil {
		cp.Resource = &ai.ResourcePart{Uri: p.Resource.Uri}
	}
	return cp
}

// shallowCopyMap copies map keys and values but not nested structures.
// Nested maps, slices, or pointers remain shared with the original.
func shallowCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	cp := make(map[string]any, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

// Title generation constants.
const (
	titleGenerationTimeout = 5 * time.Second
	titleInputMaxRunes     = 500

	// TitleMaxLength caps generated conversation titles.
	TitleMaxLength = 80
)

var titlePrompt = fmt.Sprintf(`Generate a concise title (max %d characters) for a conversation based on this first message.`, TitleMaxLength) + `
The title should capture the main topic or intent.
Return ONLY the title text, no quotes, no explanations, no punctuation at the end.

Message: %s

Title:`

// GenerateTitle generates a concise conversation title from the user's first message.
// Returns empty string on failure (best-effort).
func (a *Agent) GenerateTitle(ctx context.Context, userMessage string) string {
	ctx, cancel := context.WithTimeout(ctx, titleGenerationTimeout)
	defer cancel()

	inputRunes := []rune(userMessage)
	if len(inputRunes) > titleInputMaxRunes {
		userMessage = string(inputRunes[:titleInputMaxRunes]) + "..."
	}

	opts := []ai.GenerateOption{
		ai.WithPrompt(titlePrompt, userMessage),
	}
	if a.modelName != "" {
		opts = append(opts, ai.WithModelName(a.modelName))
	}

	response, err := genkit.Generate(ctx, a.g, opts...)
	if err != nil {
		a.logger.Debug("AI title generation failed", "error", err)
		return ""
	}

	title := strings.TrimSpace(response.Text())
	if title == "" {
		return ""
	}

	titleRunes := []rune(title)
	if len(titleRunes) > TitleMaxLength {
		title = string(titleRunes[:TitleMaxLength-3]) + "..."
	}

	return title
}
