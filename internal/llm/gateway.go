// Package llm wraps an OpenAI-compatible chat-completions API behind a
// small gateway with typed failures, used for both the text grading
// model and the multimodal transcription model.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Message is a role-tagged text block for a text-only completion.
type Message struct {
	Role    string
	Content string
}

// Chat message roles accepted by SendText.
const (
	RoleSystem = openai.ChatMessageRoleSystem
	RoleUser   = openai.ChatMessageRoleUser
)

// Config holds gateway settings.
type Config struct {
	// BaseURL is the provider root, without the API path suffix.
	BaseURL string
	// APIKey is the bearer token. Empty means the gateway is not configured.
	APIKey      string
	TextModel   string
	VisionModel string
	// VisionPaths are candidate API path prefixes tried in order for the
	// multimodal endpoint. Different deployments expose it under
	// different prefixes; the first one that answers non-404 wins.
	VisionPaths []string
	// Timeout bounds each provider call. Zero means DefaultTimeout.
	Timeout time.Duration
}

// DefaultTimeout bounds a single model call. Vision transcriptions of a
// full test sheet commonly run tens of seconds.
const DefaultTimeout = 90 * time.Second

// DefaultVisionPaths covers the deployments seen in the wild.
var DefaultVisionPaths = []string{"/v1", "/openai/v1", "/api/v1"}

// Gateway sends chat-style requests to the configured provider.
// The resolved vision client is cached after the first successful probe;
// resolution is guarded so concurrent first callers converge on one client.
type Gateway struct {
	cfg  Config
	text *openai.Client

	mu     sync.Mutex
	vision *openai.Client
}

// New creates a gateway. It performs no network calls: the vision
// endpoint is resolved lazily on first use.
func New(cfg Config) *Gateway {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if len(cfg.VisionPaths) == 0 {
		cfg.VisionPaths = DefaultVisionPaths
	}
	g := &Gateway{cfg: cfg}
	if cfg.APIKey != "" {
		g.text = clientFor(cfg.APIKey, joinURL(cfg.BaseURL, cfg.VisionPaths[0]))
	}
	return g
}

// Configured reports whether a credential is present.
func (g *Gateway) Configured() bool { return g.cfg.APIKey != "" }

// SendText sends a text-only chat completion and returns the raw content.
func (g *Gateway) SendText(ctx context.Context, messages []Message, temperature float32) (string, error) {
	if !g.Configured() {
		return "", ErrNoAPIKey
	}
	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	chatMsgs := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		chatMsgs = append(chatMsgs, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := g.textClient().CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.cfg.TextModel,
		Messages:    chatMsgs,
		Temperature: temperature,
	})
	if err != nil {
		return "", classify(err)
	}
	return firstContent(resp)
}

// SendVision sends a multimodal prompt with one image and returns the
// raw content. The first call probes the candidate endpoint paths in
// order: a 404 moves on to the next candidate, an auth failure aborts
// immediately, anything else wins or loses on the spot.
func (g *Gateway) SendVision(ctx context.Context, imageDataURI, prompt string) (string, error) {
	if !g.Configured() {
		return "", ErrNoAPIKey
	}

	req := openai.ChatCompletionRequest{
		Model: g.cfg.VisionModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: prompt},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    imageDataURI,
							Detail: openai.ImageURLDetailHigh,
						},
					},
				},
			},
		},
	}

	g.mu.Lock()
	resolved := g.vision
	g.mu.Unlock()

	if resolved != nil {
		ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
		resp, err := resolved.CreateChatCompletion(ctx, req)
		if err != nil {
			return "", classify(err)
		}
		return firstContent(resp)
	}

	var lastErr error
	for _, path := range g.cfg.VisionPaths {
		client := clientFor(g.cfg.APIKey, joinURL(g.cfg.BaseURL, path))

		callCtx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
		resp, err := client.CreateChatCompletion(callCtx, req)
		cancel()

		if err == nil {
			g.mu.Lock()
			if g.vision == nil {
				g.vision = client
			}
			g.mu.Unlock()
			return firstContent(resp)
		}

		err = classify(err)
		var ue *UpstreamError
		if errors.As(err, &ue) && ue.AuthFailed() {
			// The endpoint exists and rejected the key; trying other
			// paths would only mask the real problem.
			return "", err
		}
		slog.Debug("vision endpoint candidate failed, trying next", "path", path, "error", err)
		lastErr = err
	}

	if lastErr == nil {
		lastErr = &TransportError{Err: errors.New("no vision endpoint candidates configured")}
	}
	return "", lastErr
}

// textClient prefers the probed vision endpoint once it is resolved:
// both models live under the same API prefix, so a deployment whose
// chat endpoint is not at the first candidate path would otherwise
// keep failing text calls.
func (g *Gateway) textClient() *openai.Client {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.vision != nil {
		return g.vision
	}
	return g.text
}

func clientFor(apiKey, baseURL string) *openai.Client {
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL
	return openai.NewClientWithConfig(config)
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// classify maps go-openai errors onto the gateway's error taxonomy.
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &UpstreamError{
			StatusCode: apiErr.HTTPStatusCode,
			Body:       truncate(apiErr.Message, maxBodyExcerpt),
		}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &UpstreamError{
			StatusCode: reqErr.HTTPStatusCode,
			Body:       truncate(reqErr.Error(), maxBodyExcerpt),
		}
	}
	return &TransportError{Err: err}
}

func firstContent(resp openai.ChatCompletionResponse) (string, error) {
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("model returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
