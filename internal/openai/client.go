package openai

import (
	"context"
	"errors"
	"log"
	"math"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultEmbeddingModel is the OpenAI model used for generating embeddings
	DefaultEmbeddingModel = openai.SmallEmbedding3
	// DefaultEmbeddingDimensions is the expected dimension of embeddings from text-embedding-3-small
	DefaultEmbeddingDimensions = 1536
	// DefaultCompletionModel is the chat model used for classification and answers
	DefaultCompletionModel = openai.GPT4oMini

	// maxEmbeddingInputChars bounds the text sent to the embedding service
	maxEmbeddingInputChars = 30000
	// minEmbeddingInputChars is the shortest text worth embedding
	minEmbeddingInputChars = 20
)

// ErrNoAPIKey is returned when the OpenAI API key is not set
var ErrNoAPIKey = errors.New("OPENAI_API_KEY environment variable not set")

// EmbeddingAPI defines the interface for embedding generation
type EmbeddingAPI interface {
	CreateEmbeddings(ctx context.Context, text string) ([]float32, error)
}

// CompletionAPI defines the interface for chat completion
type CompletionAPI interface {
	CreateCompletion(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Client wraps the OpenAI API for embeddings and completions. Service
// failures are reported as absent results, never as errors: callers must
// treat absence as "exclude from this operation" or fall back to
// deterministic output.
type Client struct {
	embeddings  EmbeddingAPI
	completions CompletionAPI
	dimensions  int
}

// OpenAIAdapter implements EmbeddingAPI and CompletionAPI against the real API
type OpenAIAdapter struct {
	client          *openai.Client
	embeddingModel  openai.EmbeddingModel
	completionModel string
}

func NewOpenAIAdapter(apiKey string, embeddingModel openai.EmbeddingModel, completionModel string) *OpenAIAdapter {
	if embeddingModel == "" {
		embeddingModel = DefaultEmbeddingModel
	}
	if completionModel == "" {
		completionModel = DefaultCompletionModel
	}
	return &OpenAIAdapter{
		client:          openai.NewClient(apiKey),
		embeddingModel:  embeddingModel,
		completionModel: completionModel,
	}
}

// CreateEmbeddings calls the OpenAI API to create embeddings
func (a *OpenAIAdapter) CreateEmbeddings(ctx context.Context, text string) ([]float32, error) {
	resp, err := a.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: a.embeddingModel,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding data returned")
	}

	return resp.Data[0].Embedding, nil
}

// CreateCompletion calls the OpenAI chat API with a single user message
func (a *OpenAIAdapter) CreateCompletion(ctx context.Context, prompt string, maxTokens int) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     a.completionModel,
		MaxTokens: maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no completion choices returned")
	}

	return resp.Choices[0].Message.Content, nil
}

type Config struct {
	APIKey              string
	EmbeddingModel      openai.EmbeddingModel
	CompletionModel     string
	EmbeddingDimensions int
}

// NewClient creates a new OpenAI client using defaults.
func NewClient(apiKey string) *Client {
	return NewClientWithConfig(Config{APIKey: apiKey})
}

// NewClientWithConfig creates a new OpenAI client with explicit configuration.
func NewClientWithConfig(cfg Config) *Client {
	dimensions := cfg.EmbeddingDimensions
	if dimensions <= 0 {
		dimensions = DefaultEmbeddingDimensions
	}
	adapter := NewOpenAIAdapter(cfg.APIKey, cfg.EmbeddingModel, cfg.CompletionModel)
	return &Client{
		embeddings:  adapter,
		completions: adapter,
		dimensions:  dimensions,
	}
}

// NewClientFromEnv creates a new OpenAI client using OPENAI_API_KEY environment variable
func NewClientFromEnv() (*Client, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	return NewClient(apiKey), nil
}

// Embed generates an embedding for the given text. The second return value
// is false when no embedding is available: empty or too-short input, a
// failed service call, or a response with unexpected dimensions.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, bool) {
	text = normalizeEmbeddingInput(text)
	if len(text) < minEmbeddingInputChars {
		return nil, false
	}

	embedding, err := c.embeddings.CreateEmbeddings(ctx, text)
	if err != nil {
		log.Printf("embedding call failed: %v", err)
		return nil, false
	}

	if len(embedding) != c.dimensions {
		log.Printf("embedding has %d dimensions, expected %d", len(embedding), c.dimensions)
		return nil, false
	}

	return embedding, true
}

// Complete asks the chat model for a response to prompt. The second return
// value is false when the service call fails; callers fall back to
// deterministic text.
func (c *Client) Complete(ctx context.Context, prompt string, maxTokens int) (string, bool) {
	text, err := c.completions.CreateCompletion(ctx, prompt, maxTokens)
	if err != nil {
		log.Printf("completion call failed: %v", err)
		return "", false
	}
	return text, true
}

func normalizeEmbeddingInput(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) > maxEmbeddingInputChars {
		text = text[:maxEmbeddingInputChars]
	}
	return text
}

// CosineSimilarity returns the cosine similarity of two vectors in [-1, 1].
// A zero-norm vector yields 0 rather than a division by zero.
func CosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
