package translator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiGenerator sends prompts to the Gemini API.
// Without an API key it stays unavailable and never touches the network.
type GeminiGenerator struct {
	model  string
	client *genai.Client
}

// NewGeminiGenerator creates a Gemini generator. baseURL may be empty to use
// the public endpoint.
func NewGeminiGenerator(ctx context.Context, apiKey, model, baseURL string) (*GeminiGenerator, error) {
	if model == "" {
		model = DefaultGeminiModel
	}

	g := &GeminiGenerator{model: model}
	if apiKey == "" {
		return g, nil
	}

	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	g.client = client
	return g, nil
}

func (g *GeminiGenerator) Name() string {
	return fmt.Sprintf("Gemini (%s)", g.model)
}

// IsAvailable returns true if an API key was configured
func (g *GeminiGenerator) IsAvailable() bool {
	return g.client != nil
}

// Generate sends the prompt with the given temperature and returns the text of the first candidate
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	if g.client == nil {
		return "", errors.New("gemini API key not configured")
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(temperature)),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	if err != nil {
		return "", classifyGeminiError(err)
	}

	text, ok := extractText(resp)
	if !ok {
		return "", fmt.Errorf("gemini returned no text: %w", ErrMalformedResponse)
	}
	return text, nil
}

// CheckConnection verifies the key is accepted and the model exists
func (g *GeminiGenerator) CheckConnection(ctx context.Context) error {
	if g.client == nil {
		return errors.New("gemini API key not configured")
	}
	if _, err := g.client.Models.Get(ctx, g.model, nil); err != nil {
		return fmt.Errorf("cannot reach gemini model %s: %w", g.model, classifyGeminiError(err))
	}
	return nil
}

// extractText joins the non-thought text parts of the first candidate.
// A candidate without any non-blank text is not a usable translation.
func extractText(resp *genai.GenerateContentResponse) (string, bool) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", false
	}
	content := resp.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 {
		return "", false
	}

	var sb strings.Builder
	for _, part := range content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	text := sb.String()
	return text, strings.TrimSpace(text) != ""
}

func classifyGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && isAuthFailure(&apiErr) {
		return fmt.Errorf("%w: %s", ErrInvalidCredential, apiErr.Message)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && isAuthFailure(apiErrPtr) {
		return fmt.Errorf("%w: %s", ErrInvalidCredential, apiErrPtr.Message)
	}
	return err
}

func isAuthFailure(e *genai.APIError) bool {
	if e.Code == http.StatusUnauthorized || e.Code == http.StatusForbidden {
		return true
	}
	for _, d := range e.Details {
		if reason, _ := d["reason"].(string); reason == "API_KEY_INVALID" {
			return true
		}
	}
	return strings.Contains(e.Message, "API key not valid")
}
