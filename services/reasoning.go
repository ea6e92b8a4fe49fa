package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"
)

// ErrReasoningUnavailable is returned when the reasoning service is not
// configured (no API key) or its client failed to construct. The workflows
// treat it like any other external-service failure.
var ErrReasoningUnavailable = errors.New("reasoning service not configured")

// Prompt is one role-tagged message submitted to the reasoning service.
type Prompt struct {
	Role    string
	Content string
}

// Reasoning is the external LLM completion capability. Given a system
// instruction and a transcript it returns either free text or, when wantJSON
// is set, a single parseable JSON object. Implementations must be treated as
// unreliable: unset credentials, network failures, timeouts and unparseable
// replies are all expected.
type Reasoning interface {
	Complete(ctx context.Context, systemPrompt string, msgs []Prompt, wantJSON bool) (string, error)
}

// GeminiReasoning implements Reasoning on top of the Gemini API. It is
// constructed once at process start; an unconfigured instance reports
// ErrReasoningUnavailable instead of failing lazily.
type GeminiReasoning struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

func NewGeminiReasoning(cfg AIConfig) *GeminiReasoning {
	reasoning := &GeminiReasoning{
		model:   cfg.Model,
		timeout: cfg.Timeout(),
	}
	if cfg.GeminiAPIKey == "" {
		slog.Warn("Gemini API key not configured, reasoning service unavailable")
		return reasoning
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: cfg.GeminiAPIKey,
	})
	if err != nil {
		slog.Error("Failed to create genai client", "error", err)
		return reasoning
	}

	reasoning.client = client
	slog.Info("Gemini reasoning service initialized", "model", cfg.Model)
	return reasoning
}

func (g *GeminiReasoning) Complete(ctx context.Context, systemPrompt string, msgs []Prompt, wantJSON bool) (string, error) {
	if g.client == nil {
		return "", ErrReasoningUnavailable
	}

	// Every call is bounded; a timeout is handled like any other failure.
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	var contents []*genai.Content
	for _, msg := range msgs {
		if msg.Content == "" {
			continue
		}
		if msg.Role == "assistant" {
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		} else {
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}
	if len(contents) == 0 {
		contents = append(contents, genai.NewContentFromText("Olá", genai.RoleUser))
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
	}
	if wantJSON {
		config.ResponseMIMEType = "application/json"
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}

	response := result.Text()
	slog.Info("Reasoning call completed", "model", g.model, "want_json", wantJSON, "response_length", len(response))
	return response, nil
}
