package translator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dialect-translator/internal/models"
)

const (
	// DefaultTemperature keeps the model close to a literal translation
	DefaultTemperature = 0.3

	msgNotConfigured = "API_KEY is not configured. Cannot perform translation."
	msgMalformed     = "Translation result is empty or not in the expected format."
	msgInvalidKey    = "Translation failed: Invalid API Key. Please check your configuration."
	msgUnknownRemote = "An unknown error occurred with the API."
)

// Client turns a dialect translation request into a single prompt for a
// Generator and normalizes every outcome into a string or a *Error.
// It keeps no state between calls.
type Client struct {
	gen         Generator
	temperature float64
	timeout     time.Duration
}

// NewClient creates a translation client. A timeout <= 0 disables the per-call deadline.
func NewClient(gen Generator, temperature float64, timeout time.Duration) *Client {
	return &Client{
		gen:         gen,
		temperature: temperature,
		timeout:     timeout,
	}
}

// Name returns the name of the underlying generator
func (c *Client) Name() string {
	return c.gen.Name()
}

// Generator returns the remote collaborator used by the client
func (c *Client) Generator() Generator {
	return c.gen
}

// Translate translates text from source to target.
func (c *Client) Translate(ctx context.Context, text string, source, target models.Dialect) (string, error) {
	if !c.gen.IsAvailable() {
		return "", &Error{Kind: KindConfiguration, Message: msgNotConfigured}
	}
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	result, err := c.gen.Generate(ctx, BuildPrompt(text, source, target), c.temperature)
	if err != nil {
		return "", c.classify(err)
	}

	return strings.TrimSpace(result), nil
}

func (c *Client) classify(err error) error {
	switch {
	case errors.Is(err, ErrMalformedResponse):
		return &Error{Kind: KindMalformedResponse, Message: msgMalformed, Err: err}
	case errors.Is(err, ErrInvalidCredential), strings.Contains(err.Error(), "API_KEY_INVALID"):
		return &Error{Kind: KindAuth, Message: msgInvalidKey, Err: err}
	case errors.Is(err, context.DeadlineExceeded) && c.timeout > 0:
		return &Error{
			Kind:    KindRemote,
			Message: fmt.Sprintf("Translation failed: no response from %s within %s.", c.gen.Name(), c.timeout),
			Err:     err,
		}
	}

	msg := err.Error()
	if msg == "" {
		msg = msgUnknownRemote
	}
	return &Error{Kind: KindRemote, Message: "Translation failed: " + msg, Err: err}
}
