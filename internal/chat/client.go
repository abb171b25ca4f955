// Package chat implements the conversational fallback: free text that
// matches no nutrition record is answered by a hosted chat-completion model
// with a fixed diet-assistant persona.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/hklin/foodbot/internal/config"
)

// Client generates a conversational reply for free-form user text.
type Client interface {
	Reply(ctx context.Context, userText string) (string, error)
}

type sdkClient struct {
	genaiClient   *genai.Client
	log           *slog.Logger
	contentConfig *genai.GenerateContentConfig
	modelName     string
}

// NewClient creates a chat-completion client with the configured model,
// persona, and sampling temperature.
func NewClient(ctx context.Context, cfg config.AIConfig, log *slog.Logger) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("chat API key is required")
	}
	if log == nil {
		log = slog.Default()
	}

	gi, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	temperature := cfg.Temperature
	contentConfig := &genai.GenerateContentConfig{
		Temperature: &temperature,
	}
	if cfg.Instruction != "" {
		contentConfig.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: cfg.Instruction}}}
	}

	logger := log.With("component", "chat_client")
	logger.Info("Chat client initialized", "model", cfg.Model, "temperature", temperature)
	return &sdkClient{
		genaiClient:   gi,
		log:           logger,
		contentConfig: contentConfig,
		modelName:     cfg.Model,
	}, nil
}

// Reply sends the persona plus the user's text to the model and returns the
// trimmed response. Errors propagate to the caller, which applies the
// fail-soft apology; the degraded path lives in one place, the dispatcher.
func (c *sdkClient) Reply(ctx context.Context, userText string) (string, error) {
	c.log.DebugContext(ctx, "Generating chat reply", "text_len", len(userText))

	contents := []*genai.Content{genai.NewContentFromText(userText, genai.RoleUser)}

	resp, err := c.genaiClient.Models.GenerateContent(ctx, c.modelName, contents, c.contentConfig)
	if err != nil {
		c.log.ErrorContext(ctx, "Chat completion failed", "error", err)
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
		reasonMsg := fmt.Sprintf("%v", resp.PromptFeedback.BlockReason)
		if resp.PromptFeedback.BlockReasonMessage != "" {
			reasonMsg = resp.PromptFeedback.BlockReasonMessage
		}
		return "", fmt.Errorf("chat completion blocked by safety filter: %s", reasonMsg)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("chat completion returned no content")
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("chat completion returned empty text")
	}
	return text, nil
}
