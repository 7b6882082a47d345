package lndl

import (
	"sync"

	"github.com/hyp3rd/ewrap"
)

// ShutdownHooks keeps flush callbacks that must run once before the process
// exits. Registration is keyed, so registering the same key again replaces the
// callback rather than queueing a second invocation.
type ShutdownHooks struct {
	mu    sync.Mutex
	order []string
	hooks map[string]func() error
}

// NewShutdownHooks creates an empty hook set.
func NewShutdownHooks() *ShutdownHooks {
	return &ShutdownHooks{
		hooks: make(map[string]func() error),
	}
}

//nolint:gochecknoglobals // process wide fallback for sinks built without a Storage.
var processHooks = NewShutdownHooks()

// ProcessShutdownHooks returns the hook set used by sinks that were not given
// one explicitly. Call RunShutdownHooks (or Storage.Shutdown) before exiting.
func ProcessShutdownHooks() *ShutdownHooks {
	return processHooks
}

// RunShutdownHooks runs the process wide hooks.
func RunShutdownHooks() error {
	return processHooks.Run()
}

// Register adds fn under key. It reports whether the key was new.
func (h *ShutdownHooks) Register(key string, fn func() error) bool {
	if fn == nil {
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, exists := h.hooks[key]
	if !exists {
		h.order = append(h.order, key)
	}

	h.hooks[key] = fn

	return !exists
}

// Registered reports whether key currently has a hook.
func (h *ShutdownHooks) Registered(key string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	_, exists := h.hooks[key]

	return exists
}

// Unregister removes the hook for key. Unknown keys are ignored.
func (h *ShutdownHooks) Unregister(key string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.hooks[key]; !exists {
		return
	}

	delete(h.hooks, key)

	for i, k := range h.order {
		if k == key {
			h.order = append(h.order[:i], h.order[i+1:]...)

			break
		}
	}
}

// Len returns the number of registered hooks.
func (h *ShutdownHooks) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.hooks)
}

// Run invokes every hook once in registration order and clears the set. Hooks
// run outside the lock, so they may register or unregister themselves.
func (h *ShutdownHooks) Run() error {
	h.mu.Lock()
	order := h.order
	hooks := h.hooks
	h.order = nil
	h.hooks = make(map[string]func() error)
	h.mu.Unlock()

	errorGroup := ewrap.NewErrorGroup()

	for _, key := range order {
		err := hooks[key]()
		if err != nil {
			errorGroup.Add(ewrap.Wrap(err, "shutdown hook failed").WithMetadata("hook", key))
		}
	}

	if errorGroup.HasErrors() {
		return errorGroup
	}

	return nil
}
