package session

import (
	"context"
	"strings"
	"sync"

	"dialect-translator/internal/models"
	"dialect-translator/internal/translator"
)

const msgUnexpected = "An unexpected error occurred during translation."

// State is the in-memory record behind one translator view. Target is not
// stored: it is always the other dialect.
type State struct {
	Input   string
	Output  string
	Source  models.Dialect
	Loading bool
	Error   string
}

// Target returns the dialect the input is translated into
func (s State) Target() models.Dialect {
	return s.Source.Other()
}

// Controls tells a view which actions are currently enabled.
type Controls struct {
	EditEnabled      bool `json:"edit_enabled"`
	TranslateEnabled bool `json:"translate_enabled"`
	SwapEnabled      bool `json:"swap_enabled"`
	ClearEnabled     bool `json:"clear_enabled"`
	ShowError        bool `json:"show_error"`
}

// ControlsFor derives the control states from a session state.
func ControlsFor(s State) Controls {
	return Controls{
		EditEnabled:      !s.Loading,
		TranslateEnabled: !s.Loading && strings.TrimSpace(s.Input) != "",
		SwapEnabled:      !s.Loading,
		ClearEnabled:     !s.Loading,
		ShowError:        s.Error != "",
	}
}

// Snapshot is a consistent copy of a session for rendering.
type Snapshot struct {
	Input    string         `json:"input"`
	Output   string         `json:"output"`
	Source   models.Dialect `json:"source"`
	Target   models.Dialect `json:"target"`
	Loading  bool           `json:"loading"`
	Error    string         `json:"error,omitempty"`
	Controls Controls       `json:"controls"`
}

// Controller owns the state of one translator session and applies the
// user's intents to it. It is safe for concurrent use.
type Controller struct {
	translator translator.Translator

	mu      sync.Mutex
	state   State
	pending *Call
}

// New creates a controller with empty text and Sorani as the source dialect.
func New(t translator.Translator) *Controller {
	return &Controller{
		translator: t,
		state:      State{Source: models.Sorani},
	}
}

// State returns a copy of the current state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns the state together with the derived target and controls
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	s := c.state
	c.mu.Unlock()

	return Snapshot{
		Input:    s.Input,
		Output:   s.Output,
		Source:   s.Source,
		Target:   s.Target(),
		Loading:  s.Loading,
		Error:    s.Error,
		Controls: ControlsFor(s),
	}
}

// Edit replaces the input text. It is refused while a translation is running.
func (c *Controller) Edit(text string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Loading {
		return false
	}
	c.state.Input = text
	return true
}

// Begin starts translating the current input and returns the pending call.
//
// With blank input it only clears output and error and returns nil. While
// another call is pending it does nothing and returns nil. ctx is handed to
// the translator and must outlive the call.
func (c *Controller) Begin(ctx context.Context) *Call {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Loading {
		return nil
	}
	if strings.TrimSpace(c.state.Input) == "" {
		c.state.Output = ""
		c.state.Error = ""
		return nil
	}

	c.state.Loading = true
	c.state.Error = ""
	c.state.Output = ""

	call := newCall(c.state.Input, c.state.Source, c.state.Target())
	c.pending = call

	go func() {
		out, err := c.translator.Translate(ctx, call.Input, call.Source, call.Target)
		call.resolve(out, err)
	}()

	return call
}

// Resolve waits for call and applies its outcome. Calls that are not the
// controller's pending call are ignored and false is returned.
func (c *Controller) Resolve(call *Call) bool {
	if call == nil {
		return false
	}
	out, err := call.Result()

	c.mu.Lock()
	defer c.mu.Unlock()

	if call != c.pending {
		return false
	}
	c.pending = nil

	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = msgUnexpected
		}
		c.state.Error = msg
		c.state.Output = ""
	} else {
		c.state.Output = out
	}
	c.state.Loading = false
	return true
}

// Translate runs Begin and Resolve back to back and returns the resulting snapshot.
func (c *Controller) Translate(ctx context.Context) Snapshot {
	if call := c.Begin(ctx); call != nil {
		c.Resolve(call)
	}
	return c.Snapshot()
}

// Swap exchanges the dialects and the two texts. It is refused while loading.
func (c *Controller) Swap() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Loading {
		return false
	}
	prev := c.state
	c.state.Source = prev.Target()
	c.state.Input = prev.Output
	c.state.Output = prev.Input
	c.state.Error = ""
	return true
}

// Clear empties both texts and the error, keeping the dialects. It is refused while loading.
func (c *Controller) Clear() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Loading {
		return false
	}
	c.state.Input = ""
	c.state.Output = ""
	c.state.Error = ""
	return true
}
