package recognizer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/thearijain/digitalink/ink"
)

const transcribeSystemPrompt = `You transcribe handwriting captured as digitized pen strokes.
The user message contains a JSON object with "strokes": each stroke has "points"
with x, y coordinates (y grows downward) and t timestamps in milliseconds.
Reply with JSON only: {"candidates":[{"text":"...","score":0.0}]} where
candidates are ranked best first and score is your confidence in [0,1].`

// OpenAIConfig holds configuration for the OpenAI-backed recognizer.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string // Optional, for OpenAI-compatible endpoints
	Model   string // Default "gpt-4o"
}

// OpenAI recognizes ink by asking a chat model to transcribe the stroke
// geometry. Useful as a cloud fallback when no on-device model bundle exists
// for a language.
type OpenAI struct {
	client openai.Client
	model  string
}

// NewOpenAI creates an OpenAI-backed recognizer.
func NewOpenAI(cfg OpenAIConfig) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o"
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAI{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
	}, nil
}

// Recognize sends the ink geometry to the chat model and parses ranked
// candidates from its JSON reply.
func (o *OpenAI) Recognize(ctx context.Context, k ink.Ink, rc Context) (*Result, error) {
	payload, err := json.Marshal(k)
	if err != nil {
		return nil, fmt.Errorf("marshal ink: %w", err)
	}

	var user strings.Builder
	fmt.Fprintf(&user, "Writing area: %.0fx%.0f.\n", rc.WritingArea.Width, rc.WritingArea.Height)
	if rc.PreContext != "" {
		fmt.Fprintf(&user, "Text preceding the ink: %q.\n", rc.PreContext)
	}
	user.Write(payload)

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(transcribeSystemPrompt),
			openai.UserMessage(user.String()),
		},
		Temperature: openai.Float(0),
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in completion")
	}

	return parseCandidates(resp.Choices[0].Message.Content)
}

// parseCandidates extracts the candidates object from a model reply,
// tolerating markdown fences around the JSON.
func parseCandidates(content string) (*Result, error) {
	trimmed := strings.TrimSpace(content)
	if i := strings.Index(trimmed, "{"); i > 0 {
		trimmed = trimmed[i:]
	}
	if i := strings.LastIndex(trimmed, "}"); i >= 0 {
		trimmed = trimmed[:i+1]
	}

	var res Result
	if err := json.Unmarshal([]byte(trimmed), &res); err != nil {
		return nil, fmt.Errorf("parse candidates: %w", err)
	}
	return &res, nil
}
