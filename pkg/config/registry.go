package config

import (
	"maps"
	"slices"
	"sync"

	"github.com/hyp3rd/ewrap"

	"github.com/hyp3rd/lndl/pkg/formatter"
	"github.com/hyp3rd/lndl/pkg/outstream"
)

// Registry manages the formatter and output classes that definitions can
// reference through their class key.
type Registry struct {
	mu         sync.RWMutex
	formatters map[string]formatter.Builder
	outputs    map[string]outstream.Builder
}

// NewRegistry creates a registry holding the built-in classes.
func NewRegistry() *Registry {
	return &Registry{
		formatters: formatter.Builtins(),
		outputs:    outstream.Builtins(),
	}
}

// RegisterFormatter adds a formatter class under the provided name.
func (r *Registry) RegisterFormatter(class string, builder formatter.Builder) error {
	if class == "" {
		return ewrap.New("formatter class cannot be empty")
	}

	if builder == nil {
		return ewrap.New("formatter builder cannot be nil").WithMetadata("class", class)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.formatters[class]; exists {
		return ewrap.Wrap(ErrClassRegistered, "registering formatter").WithMetadata("class", class)
	}

	r.formatters[class] = builder

	return nil
}

// RegisterOutput adds an output class under the provided name.
func (r *Registry) RegisterOutput(class string, builder outstream.Builder) error {
	if class == "" {
		return ewrap.New("output class cannot be empty")
	}

	if builder == nil {
		return ewrap.New("output builder cannot be nil").WithMetadata("class", class)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.outputs[class]; exists {
		return ewrap.Wrap(ErrClassRegistered, "registering output").WithMetadata("class", class)
	}

	r.outputs[class] = builder

	return nil
}

// MustRegisterFormatter registers a formatter class and panics if registration fails.
func (r *Registry) MustRegisterFormatter(class string, builder formatter.Builder) {
	err := r.RegisterFormatter(class, builder)
	if err != nil {
		panic(err)
	}
}

// MustRegisterOutput registers an output class and panics if registration fails.
func (r *Registry) MustRegisterOutput(class string, builder outstream.Builder) {
	err := r.RegisterOutput(class, builder)
	if err != nil {
		panic(err)
	}
}

// Formatter retrieves a formatter class by name.
func (r *Registry) Formatter(class string) (formatter.Builder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	builder, ok := r.formatters[class]

	return builder, ok
}

// Output retrieves an output class by name.
func (r *Registry) Output(class string) (outstream.Builder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	builder, ok := r.outputs[class]

	return builder, ok
}

// FormatterClasses returns the registered formatter classes, sorted.
func (r *Registry) FormatterClasses() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Sorted(maps.Keys(r.formatters))
}

// OutputClasses returns the registered output classes, sorted.
func (r *Registry) OutputClasses() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Sorted(maps.Keys(r.outputs))
}
