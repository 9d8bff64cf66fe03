// Package credential selects which upstream account serves a call.
package credential

import (
	"sync"

	"github.com/xiaot623/gogo/governor/internal/adapter/llm"
)

// Handle is one upstream account ready to call.
type Handle struct {
	// Name identifies the slot in logs and metrics ("primary" or "secondary").
	Name   string
	Client llm.Client
}

// Router hands privileged callers alternating accounts. Everyone else always
// gets the primary. There is no health or backoff awareness: a saturated
// secondary is still selected on its turn.
type Router struct {
	primary   Handle
	secondary Handle

	mu        sync.Mutex
	alternate bool
}

// NewRouter creates a router. A zero secondary falls back to the primary.
func NewRouter(primary, secondary Handle) *Router {
	if secondary.Client == nil {
		secondary = Handle{Name: primary.Name, Client: primary.Client}
	}
	return &Router{primary: primary, secondary: secondary}
}

// Select returns the handle for the next call.
func (r *Router) Select(privileged bool) Handle {
	if !privileged {
		return r.primary
	}

	r.mu.Lock()
	r.alternate = !r.alternate
	useSecondary := r.alternate
	r.mu.Unlock()

	if useSecondary {
		return r.secondary
	}
	return r.primary
}
