package translator

import (
	"context"

	"dialect-translator/internal/models"
)

// Translator is the interface the views and services translate through
type Translator interface {
	// Translate translates text from the source dialect to the target dialect
	Translate(ctx context.Context, text string, source, target models.Dialect) (string, error)
}

// Generator is a remote generative-language model that answers a single prompt.
type Generator interface {
	// Generate sends one prompt and returns the model's raw text answer
	Generate(ctx context.Context, prompt string, temperature float64) (string, error)

	// IsAvailable returns true if the generator has the credential/configuration it needs
	IsAvailable() bool

	// Name returns the generator name
	Name() string
}

// Checker is implemented by generators that can verify their backend is reachable
type Checker interface {
	CheckConnection(ctx context.Context) error
}
