package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OllamaGenerator sends prompts to a local or remote Ollama server.
type OllamaGenerator struct {
	host   string
	model  string
	topP   float64
	numCtx int
	client *http.Client
}

// --- Chat API types ---

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string         `json:"model"`
	Messages []chatMessage  `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  *ollamaOptions `json:"options,omitempty"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p,omitempty"`
	NumCtx      int     `json:"num_ctx,omitempty"`
}

type ollamaChatResponse struct {
	Message *chatMessage `json:"message"`
	Done    bool         `json:"done"`
}

func NewOllamaGenerator(host, model string, topP float64, numCtx int) *OllamaGenerator {
	return &OllamaGenerator{
		host:   strings.TrimSuffix(host, "/"),
		model:  model,
		topP:   topP,
		numCtx: numCtx,
		client: &http.Client{
			Timeout: 10 * time.Minute, // Large models on CPU are slow
		},
	}
}

func (g *OllamaGenerator) Name() string {
	return fmt.Sprintf("Ollama (%s)", g.model)
}

// IsAvailable returns true if a host and model are configured
func (g *OllamaGenerator) IsAvailable() bool {
	return g.host != "" && g.model != ""
}

// Generate sends the prompt as a single user message to /api/chat
func (g *OllamaGenerator) Generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	reqBody := ollamaChatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		Stream: false,
		Options: &ollamaOptions{
			Temperature: temperature,
			TopP:        g.topP,
			NumCtx:      g.numCtx,
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.host+"/api/chat", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return "", fmt.Errorf("ollama rejected the request (status %d): %w", resp.StatusCode, ErrInvalidCredential)
		default:
			return "", fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		}
	}

	var result ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %v: %w", err, ErrMalformedResponse)
	}
	if result.Message == nil {
		return "", fmt.Errorf("ollama response has no message: %w", ErrMalformedResponse)
	}
	if strings.TrimSpace(result.Message.Content) == "" {
		return "", fmt.Errorf("ollama returned an empty message: %w", ErrMalformedResponse)
	}

	return result.Message.Content, nil
}

// CheckConnection verifies Ollama is running
func (g *OllamaGenerator) CheckConnection(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.host+"/api/tags", nil)
	if err != nil {
		return err
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("cannot connect to Ollama at %s: %w", g.host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}

	return nil
}
