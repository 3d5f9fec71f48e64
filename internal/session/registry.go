package session

import (
	"sync"
	"time"

	"github.com/rs/xid"

	"dialect-translator/internal/translator"
)

type entry struct {
	ctrl     *Controller
	lastSeen time.Time
}

// Registry keeps one controller per browser session.
type Registry struct {
	translator translator.Translator
	now        func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

func NewRegistry(t translator.Translator) *Registry {
	return &Registry{
		translator: t,
		now:        time.Now,
		sessions:   make(map[string]*entry),
	}
}

// Get returns the controller for id, creating a new session when id is
// unknown. The returned id is the one the caller should keep using.
func (r *Registry) Get(id string) (string, *Controller) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.sessions[id]; ok {
		e.lastSeen = r.now()
		return id, e.ctrl
	}

	id = xid.New().String()
	e := &entry{ctrl: New(r.translator), lastSeen: r.now()}
	r.sessions[id] = e
	return id, e.ctrl
}

// Len returns the number of live sessions
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops sessions idle for longer than maxIdle, except those still
// waiting on a translation. It returns the number removed.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-maxIdle)
	removed := 0
	for id, e := range r.sessions {
		if e.lastSeen.Before(cutoff) && !e.ctrl.State().Loading {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}
