package session

import (
	"context"

	"dialect-translator/internal/models"
)

// Call is an in-flight translation. It starts pending and is resolved exactly
// once, with either a result or an error.
type Call struct {
	Input  string
	Source models.Dialect
	Target models.Dialect

	done   chan struct{}
	result string
	err    error
}

func newCall(input string, source, target models.Dialect) *Call {
	return &Call{
		Input:  input,
		Source: source,
		Target: target,
		done:   make(chan struct{}),
	}
}

func (c *Call) resolve(result string, err error) {
	c.result = result
	c.err = err
	close(c.done)
}

// Done is closed once the call is resolved.
func (c *Call) Done() <-chan struct{} {
	return c.done
}

// Resolved reports whether the call has finished
func (c *Call) Resolved() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// Result blocks until the call is resolved and returns its outcome.
func (c *Call) Result() (string, error) {
	<-c.done
	return c.result, c.err
}

// Wait is like Result but gives up when ctx is done. Giving up does not
// cancel the call itself.
func (c *Call) Wait(ctx context.Context) (string, error) {
	select {
	case <-c.done:
		return c.result, c.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
