// Package config resolves configuration documents into live formatters,
// outputs and loggers, and keeps them in a Storage.
//
// A document has three sections that are resolved in order:
//
//	Formatter:
//	  main: {class: MainFormatter}
//	  bare: {class: BaseFormatter, template: "${messages}", sub_formatter: [main]}
//	Outstream:
//	  console: {class: StdioOutputStream, formatter: main, level_name: DEBUG}
//	Logger:
//	  app: {outputs: console, level: 10}
//
// Every definition is resolved on its own. A definition with an unknown class,
// an unexpected parameter, a reference to a missing or failed entity, or a
// place in a sub_formatter cycle is recorded as a Failure and the rest of the
// document still loads. Lookups tell the two cases apart: ErrNotConfigured
// for names that were never defined and ErrUnavailable for failed ones.
//
// Diagnostics are written by the storage's own "loggers-storage" logger to
// stderr.
package config

import (
	"maps"
	"slices"
	"sync"

	"github.com/hyp3rd/ewrap"

	"github.com/hyp3rd/lndl"
	"github.com/hyp3rd/lndl/internal/constants"
	"github.com/hyp3rd/lndl/internal/output"
	"github.com/hyp3rd/lndl/pkg/formatter"
	"github.com/hyp3rd/lndl/pkg/outstream"
)

// DiagnosticsLoggerName is the name of the logger a Storage reports through.
const DiagnosticsLoggerName = "loggers-storage"

// Storage holds resolved entities by name, along with the definitions that
// failed to resolve.
type Storage struct {
	mu         sync.RWMutex
	formatters map[string]*formatter.Formatter
	outputs    map[string]lndl.Sink
	loggers    map[string]*lndl.Logger
	failures   map[constants.Section]map[string]Failure
	// retired holds outputs that were replaced or created implicitly; they are
	// closed at shutdown along with the live ones.
	retired []lndl.Sink
	// closedSinks remembers what Shutdown already closed.
	closedSinks map[lndl.Sink]struct{}

	// readMu serialises ReadConfig calls.
	readMu   sync.Mutex
	registry *Registry
	hooks    *lndl.ShutdownHooks
	diag     *lndl.Logger
}

// Option configures a Storage.
type Option func(*Storage)

// WithRegistry selects the class registry; the default holds the built-ins.
func WithRegistry(registry *Registry) Option {
	return func(s *Storage) {
		if registry != nil {
			s.registry = registry
		}
	}
}

// WithShutdownHooks selects where buffered outputs register their deferred
// flush; the default is lndl.ProcessShutdownHooks.
func WithShutdownHooks(hooks *lndl.ShutdownHooks) Option {
	return func(s *Storage) {
		if hooks != nil {
			s.hooks = hooks
		}
	}
}

// WithDiagnostics replaces the logger used for resolution diagnostics.
func WithDiagnostics(logger *lndl.Logger) Option {
	return func(s *Storage) {
		if logger != nil {
			s.diag = logger
		}
	}
}

// WithRootLogger replaces the root logger that unconfigured names are cloned
// from.
func WithRootLogger(logger *lndl.Logger) Option {
	return func(s *Storage) {
		if logger != nil {
			s.loggers[lndl.DefaultLoggerName] = logger
		}
	}
}

// NewStorage creates a storage whose only entity is a root logger writing to
// the console.
func NewStorage(opts ...Option) *Storage {
	storage := newEmptyStorage()

	for _, opt := range opts {
		opt(storage)
	}

	if storage.registry == nil {
		storage.registry = NewRegistry()
	}

	if storage.hooks == nil {
		storage.hooks = lndl.ProcessShutdownHooks()
	}

	if storage.diag == nil {
		storage.diag = newDiagnosticsLogger()
	}

	if _, ok := storage.loggers[lndl.DefaultLoggerName]; !ok {
		root := outstream.NewStdioOutputStream(outstream.StdioConfig{})
		storage.retired = append(storage.retired, root)
		storage.loggers[lndl.DefaultLoggerName] = lndl.NewLogger(lndl.DefaultLoggerName, lndl.WithOutputs(root))
	}

	return storage
}

func newEmptyStorage() *Storage {
	return &Storage{
		formatters:  make(map[string]*formatter.Formatter),
		outputs:     make(map[string]lndl.Sink),
		loggers:     make(map[string]*lndl.Logger),
		closedSinks: make(map[lndl.Sink]struct{}),
		failures: map[constants.Section]map[string]Failure{
			constants.SectionFormatter: {},
			constants.SectionOutstream: {},
			constants.SectionLogger:    {},
		},
	}
}

func newDiagnosticsLogger() *lndl.Logger {
	sink := outstream.NewStdioOutputStream(outstream.StdioConfig{
		Name:      DiagnosticsLoggerName,
		Level:     lndl.WarnLevel,
		ColorMode: output.ColorModeAuto,
	})

	return lndl.NewLogger(DiagnosticsLoggerName,
		lndl.WithLevel(lndl.WarnLevel),
		lndl.WithOutputs(sink),
		lndl.WithCallerCapture(false),
	)
}

//nolint:gochecknoglobals // process-wide convenience storage.
var defaultStorage = sync.OnceValue(func() *Storage { return NewStorage() })

// Default returns the process-wide storage, created on first use.
func Default() *Storage {
	return defaultStorage()
}

// Registry returns the class registry.
func (s *Storage) Registry() *Registry { return s.registry }

// Hooks returns the shutdown hooks buffered outputs register with.
func (s *Storage) Hooks() *lndl.ShutdownHooks { return s.hooks }

// Diagnostics returns the logger resolution diagnostics go through.
func (s *Storage) Diagnostics() *lndl.Logger { return s.diag }

// GetLogger returns the logger registered under name. An unknown name gets a
// clone of the root logger, registered under name before it is returned.
// Concurrent first calls for the same name return the same logger.
func (s *Storage) GetLogger(name string) *lndl.Logger {
	if name == "" {
		name = lndl.DefaultLoggerName
	}

	s.mu.RLock()
	logger, ok := s.loggers[name]
	s.mu.RUnlock()

	if ok {
		return logger
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if logger, ok = s.loggers[name]; ok {
		return logger
	}

	root, ok := s.loggers[lndl.DefaultLoggerName]
	if !ok {
		root = lndl.NewLogger(lndl.DefaultLoggerName)
		s.loggers[lndl.DefaultLoggerName] = root
	}

	logger = root.Clone(name)
	s.loggers[name] = logger

	return logger
}

// Logger returns a configured logger without creating one.
func (s *Storage) Logger(name string) (*lndl.Logger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if logger, ok := s.loggers[name]; ok {
		return logger, nil
	}

	return nil, s.missing(constants.SectionLogger, name)
}

// Formatter returns a resolved formatter.
func (s *Storage) Formatter(name string) (*formatter.Formatter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if f, ok := s.formatters[name]; ok {
		return f, nil
	}

	return nil, s.missing(constants.SectionFormatter, name)
}

// Output returns a resolved output.
func (s *Storage) Output(name string) (lndl.Sink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if sink, ok := s.outputs[name]; ok {
		return sink, nil
	}

	return nil, s.missing(constants.SectionOutstream, name)
}

// missing builds the lookup error for name. Callers hold mu.
func (s *Storage) missing(section constants.Section, name string) error {
	if failure, ok := s.failures[section][name]; ok {
		return ewrap.Wrap(ErrUnavailable, "lookup failed").
			WithMetadata("section", section.String()).
			WithMetadata("name", name).
			WithMetadata("reason", failure.Reason)
	}

	return ewrap.Wrap(ErrNotConfigured, "lookup failed").
		WithMetadata("section", section.String()).
		WithMetadata("name", name)
}

// HasFormatter reports whether a formatter named name is live.
func (s *Storage) HasFormatter(name string) bool {
	_, err := s.Formatter(name)

	return err == nil
}

// HasOutput reports whether an output named name is live.
func (s *Storage) HasOutput(name string) bool {
	_, err := s.Output(name)

	return err == nil
}

// HasLogger reports whether a logger named name is registered.
func (s *Storage) HasLogger(name string) bool {
	_, err := s.Logger(name)

	return err == nil
}

// Failures returns a copy of the failed definitions of section.
func (s *Storage) Failures(section constants.Section) map[string]Failure {
	s.mu.RLock()
	defer s.mu.RUnlock()

	failures := maps.Clone(s.failures[section])
	if failures == nil {
		failures = map[string]Failure{}
	}

	return failures
}

// Names returns the sorted names of the live entities of section.
func (s *Storage) Names(section constants.Section) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch section {
	case constants.SectionFormatter:
		return slices.Sorted(maps.Keys(s.formatters))
	case constants.SectionOutstream:
		return slices.Sorted(maps.Keys(s.outputs))
	case constants.SectionLogger:
		return slices.Sorted(maps.Keys(s.loggers))
	default:
		return nil
	}
}

// Merge copies every entity and failure of other into s; entries of other win
// on name clashes. A live entity clears an earlier failure of the same name.
// Outputs that get replaced are kept and closed by Shutdown.
func (s *Storage) Merge(other *Storage) {
	if other == nil || other == s {
		return
	}

	other.mu.RLock()
	formatters := maps.Clone(other.formatters)
	outputs := maps.Clone(other.outputs)
	loggers := maps.Clone(other.loggers)
	retired := slices.Clone(other.retired)
	failures := make(map[constants.Section]map[string]Failure, len(other.failures))

	for section, entries := range other.failures {
		failures[section] = maps.Clone(entries)
	}
	other.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	for name, f := range formatters {
		s.formatters[name] = f
		delete(s.failures[constants.SectionFormatter], name)
	}

	for name, sink := range outputs {
		if previous, ok := s.outputs[name]; ok && previous != sink {
			s.retired = append(s.retired, previous)
		}

		s.outputs[name] = sink
		delete(s.failures[constants.SectionOutstream], name)
	}

	for name, logger := range loggers {
		s.loggers[name] = logger
		delete(s.failures[constants.SectionLogger], name)
	}

	for section, entries := range failures {
		if s.failures[section] == nil {
			s.failures[section] = make(map[string]Failure, len(entries))
		}

		for name, failure := range entries {
			s.failures[section][name] = failure
		}
	}

	s.retired = append(s.retired, retired...)
}

// Shutdown runs the deferred flush hooks and closes every output. Outputs
// closed by an earlier call are skipped.
func (s *Storage) Shutdown() error {
	errorGroup := ewrap.NewErrorGroup()

	err := s.hooks.Run()
	if err != nil {
		errorGroup.Add(err)
	}

	s.mu.Lock()
	var sinks []lndl.Sink

	for _, sink := range slices.Concat(slices.Collect(maps.Values(s.outputs)), s.retired) {
		if _, done := s.closedSinks[sink]; done {
			continue
		}

		s.closedSinks[sink] = struct{}{}
		sinks = append(sinks, sink)
	}

	s.retired = nil
	s.mu.Unlock()

	for _, sink := range sinks {
		err = sink.Close()
		if err != nil {
			errorGroup.Add(ewrap.Wrap(err, "closing output").WithMetadata("output", sink.Name()))
		}
	}

	if errorGroup.HasErrors() {
		return errorGroup
	}

	return nil
}

// stage returns an empty storage sharing the collaborators of s, used to
// collect the results of one resolution layer before they are merged.
func (s *Storage) stage() *Storage {
	staged := newEmptyStorage()
	staged.registry = s.registry
	staged.hooks = s.hooks
	staged.diag = s.diag

	return staged
}
