// Package gemini wraps every external text-understanding collaborator the
// pipeline consumes: batch embeddings, semantic clustering, cross-entity topic
// merging, and title/summary generation. Every call is rate limited and
// retried; every failure has a documented fallback so the pipeline never
// aborts because a collaborator is down.
package gemini

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/ardld/polinews/internal/ratelimit"
	"github.com/ardld/polinews/internal/retry"
)

const (
	generativeModel = "gemini-1.5-flash"
	embeddingModel  = "text-embedding-004"
)

type Client struct {
	client    *genai.Client
	limiter   *ratelimit.Limiter
	retryCfg  retry.Config
	openAIKey string // optional embedding fallback
}

type Option func(*Client)

// WithLimiter attaches a shared call limiter.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithRetry overrides the default retry policy.
func WithRetry(cfg retry.Config) Option {
	return func(c *Client) { c.retryCfg = cfg }
}

// WithOpenAIFallback enables the OpenAI embedding fallback when Gemini
// embedding batches fail.
func WithOpenAIFallback(apiKey string) Option {
	return func(c *Client) { c.openAIKey = apiKey }
}

func NewClient(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := &Client{
		client:   client,
		retryCfg: retry.Config{MaxAttempts: 3, Delay: 2 * time.Second, Backoff: true},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// generate sends one prompt through the limiter and retry policy and returns
// the raw response text.
func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	model := c.client.GenerativeModel(generativeModel)

	var text string
	err := retry.Do(ctx, c.retryCfg, func() error {
		resp, err := model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			return fmt.Errorf("generate content: %w", err)
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
			return fmt.Errorf("empty response from Gemini")
		}
		text = fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])
		return nil
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func logCollaboratorError(stage string, err error) {
	log.Printf("⚠️ %s collaborator failed: %v", stage, err)
}
