package gemini

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	openai "github.com/sashabaranov/go-openai"

	"github.com/ardld/polinews/internal/retry"
)

// EmbedBatch returns one vector per input text, same order. A batch that fails
// on Gemini is retried on OpenAI when a fallback key is configured; if both
// fail the error is returned and the caller degrades that batch to "no
// vector". Other batches are unaffected.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	vectors, err := c.embedGemini(ctx, texts)
	if err == nil {
		return vectors, nil
	}

	if c.openAIKey == "" {
		return nil, err
	}
	logCollaboratorError("embedding (gemini)", err)

	vectors, fallbackErr := c.embedOpenAI(ctx, texts)
	if fallbackErr != nil {
		return nil, fmt.Errorf("gemini: %v; openai fallback: %w", err, fallbackErr)
	}
	return vectors, nil
}

func (c *Client) embedGemini(ctx context.Context, texts []string) ([][]float32, error) {
	em := c.client.EmbeddingModel(embeddingModel)

	var res *genai.BatchEmbedContentsResponse
	err := retry.Do(ctx, c.retryCfg, func() error {
		batch := em.NewBatch()
		for _, t := range texts {
			batch.AddContent(genai.Text(t))
		}
		var callErr error
		res, callErr = em.BatchEmbedContents(ctx, batch)
		if callErr != nil {
			return fmt.Errorf("batch embed: %w", callErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(res.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d texts, got %d vectors", len(texts), len(res.Embeddings))
	}

	vectors := make([][]float32, len(texts))
	for i, e := range res.Embeddings {
		if e == nil || len(e.Values) == 0 {
			return nil, fmt.Errorf("empty embedding at index %d", i)
		}
		vectors[i] = e.Values
	}
	return vectors, nil
}

func (c *Client) embedOpenAI(ctx context.Context, texts []string) ([][]float32, error) {
	client := openai.NewClient(c.openAIKey)

	var resp openai.EmbeddingResponse
	err := retry.Do(ctx, c.retryCfg, func() error {
		var callErr error
		resp, callErr = client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
			Input: texts,
			Model: openai.SmallEmbedding3,
		})
		if callErr != nil {
			return fmt.Errorf("openai embeddings: %w", callErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d texts, got %d vectors", len(texts), len(resp.Data))
	}

	vectors := make([][]float32, len(texts))
	for i, d := range resp.Data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}
