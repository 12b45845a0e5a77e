package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"outreach-engine/internal/domain"
	"outreach-engine/internal/qualify"
)

// Client wraps the Gemini API for the two generative jobs the engine
// has: scoring a creator against the outreach profile, and topping up
// the keyword pool.
type Client struct {
	client *genai.Client
	model  string
}

func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = "gemini-3-flash-preview"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Client{client: client, model: model}, nil
}

func (c *Client) generate(ctx context.Context, op, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}
	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", classify(op, err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", &domain.ValidationError{Op: op, Err: errors.New("empty model response")}
	}
	return text, nil
}

// classify maps API failures onto the retry taxonomy. Quota exhaustion
// gets a long cooldown so the worker backs off instead of hammering.
func classify(op string, err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 429:
			return &domain.TransientError{Op: op, Err: err, Cooldown: 60 * time.Second}
		case apiErr.Code >= 500:
			return &domain.TransientError{Op: op, Err: err}
		default:
			return &domain.PermanentError{Op: op, Err: err}
		}
	}
	return &domain.TransientError{Op: op, Err: err}
}

// stripFences removes a markdown code fence the model sometimes wraps
// its JSON in.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// Evaluate scores one creator. Output that is not the expected JSON is
// a ValidationError; the caller leaves the lead untouched rather than
// acting on a guess.
func (c *Client) Evaluate(ctx context.Context, ec qualify.EvalContext) (*qualify.Evaluation, string, error) {
	raw, err := c.generate(ctx, "evaluate", evalPrompt(ec))
	if err != nil {
		return nil, "", err
	}

	var ev qualify.Evaluation
	if err := json.Unmarshal([]byte(stripFences(raw)), &ev); err != nil {
		return nil, "", &domain.ValidationError{
			Op:  "evaluate",
			Err: fmt.Errorf("parse model output: %w", err),
		}
	}
	return &ev, raw, nil
}

// Generate produces a fresh batch of search terms, steering the model
// away from terms already burned.
func (c *Client) Generate(ctx context.Context, avoid []string) (string, error) {
	return c.generate(ctx, "keyword-generate", keywordPrompt(avoid))
}
