package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/nindyaadesyana/chatbot/models"
)

// Embedder turns text into an embedding vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Generator produces a completion for a fully composed prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// stopSequences cut generation short when the model drifts into hedging or
// meta commentary.
var stopSequences = []string{"Sebagai AI", "As an AI", "Catatan:", "Note:"}

// OllamaEmbedder calls the Ollama embeddings API directly over HTTP.
type OllamaEmbedder struct {
	httpClient *http.Client
	baseURL    string
	model      string
}

// NewOllamaEmbedder creates an embedder bound to an Ollama server and model.
func NewOllamaEmbedder(httpClient *http.Client, baseURL, model string) *OllamaEmbedder {
	return &OllamaEmbedder{httpClient: httpClient, baseURL: baseURL, model: model}
}

// Embed generates an embedding for the given text.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	reqBody, err := json.Marshal(models.OllamaEmbedRequest{
		Model:  e.model,
		Prompt: text,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ollama request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/api/embeddings", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama http request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call ollama embedding api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama api returned non-200 status: %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var ollamaResp models.OllamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&ollamaResp); err != nil {
		return nil, fmt.Errorf("failed to decode ollama response: %w", err)
	}
	return ollamaResp.Embedding, nil
}

// OllamaGenerator wraps the langchaingo Ollama LLM with the fixed sampling
// parameters this assistant always uses: low temperature, bounded top-k and
// top-p, a mild repetition penalty, and the hedging stop sequences.
type OllamaGenerator struct {
	llm     *ollama.LLM
	timeout time.Duration
}

// NewOllamaGenerator connects to the Ollama server for chat completions.
func NewOllamaGenerator(baseURL, model string, timeout time.Duration) (*OllamaGenerator, error) {
	llm, err := ollama.New(
		ollama.WithServerURL(baseURL),
		ollama.WithModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama llm client: %w", err)
	}
	return &OllamaGenerator{llm: llm, timeout: timeout}, nil
}

// Generate sends the prompt and returns the completion text. The configured
// timeout bounds the call on top of any caller deadline.
func (g *OllamaGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	completion, err := llms.GenerateFromSinglePrompt(ctx, g.llm, prompt,
		llms.WithTemperature(0.3),
		llms.WithTopK(40),
		llms.WithTopP(0.9),
		llms.WithRepetitionPenalty(1.1),
		llms.WithStopWords(stopSequences),
	)
	if err != nil {
		return "", fmt.Errorf("ollama generation failed: %w", err)
	}
	return completion, nil
}
