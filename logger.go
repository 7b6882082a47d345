// Package lndl defines a structured logging runtime whose loggers, formatters
// and outputs can be assembled declaratively from configuration.
//
// The runtime is organised in layers:
//   - Levels: a fixed, intentionally non-uniform severity table (NOTSET=0,
//     TRACE=2, FINE=5, DEBUG=7, INFO=10, WARN=30, ERROR=50, FATAL=90)
//   - Messages: immutable records of one log event
//   - Sinks: destinations that render messages through a formatter chain
//     (see the formatter and outstream packages)
//   - Loggers: named gatekeepers that build messages and dispatch them to sinks
//   - Configuration: the config package resolves a declarative document of
//     formatters, outputs and loggers into a live object graph
//
// Messages at WARN and above are routed to the stderr side of every sink, the
// rest to the stdout side. The decision belongs to the logger, so one sink type
// can serve both roles.
//
// Basic usage:
//
//	storage := config.NewStorage()
//	storage.ReadConfig(doc)
//
//	log := storage.GetLogger("app")
//	log.Info("Application started")
//	log.Tagged("db").Warn("slow query", elapsed)
//
// Buffered sinks register a flush hook on first use. Run the hooks before the
// application exits to persist anything still in memory:
//
//	defer storage.Shutdown()
package lndl

import (
	"fmt"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/hyp3rd/ewrap"
)

// callerSkip is the number of frames between captureCaller and user code:
// captureCaller, Logger.log, and the exported logging method.
const callerSkip = 3

// Logger routes leveled messages to a set of sinks.
type Logger struct {
	mu     sync.RWMutex
	name   string
	tag    string
	hasTag bool
	sinks  []Sink

	level         atomic.Int64
	enabled       atomic.Bool
	captureCaller atomic.Bool
}

// LoggerOption configures a Logger at construction.
type LoggerOption func(*Logger)

// WithLevel sets the logger threshold.
func WithLevel(level Level) LoggerOption {
	return func(l *Logger) { l.level.Store(int64(level)) }
}

// WithOutputs attaches sinks without adjusting the threshold.
func WithOutputs(sinks ...Sink) LoggerOption {
	return func(l *Logger) {
		for _, sink := range sinks {
			if sink != nil {
				l.sinks = append(l.sinks, sink)
			}
		}
	}
}

// WithDefaultTag sets the tag used when a call does not supply one.
func WithDefaultTag(tag string) LoggerOption {
	return func(l *Logger) {
		l.tag = tag
		l.hasTag = true
	}
}

// WithEnabled turns the logger on or off.
func WithEnabled(enabled bool) LoggerOption {
	return func(l *Logger) { l.enabled.Store(enabled) }
}

// WithCallerCapture toggles capturing of the call site for every message.
func WithCallerCapture(capture bool) LoggerOption {
	return func(l *Logger) { l.captureCaller.Store(capture) }
}

// NewLogger creates a logger named name. Without options it is enabled, has an
// INFO threshold, captures call sites and has no sinks.
func NewLogger(name string, opts ...LoggerOption) *Logger {
	if name == "" {
		name = DefaultLoggerName
	}

	logger := &Logger{
		name:  name,
		sinks: make([]Sink, 0, 1),
	}

	logger.level.Store(int64(DefaultLevel))
	logger.enabled.Store(true)
	logger.captureCaller.Store(true)

	for _, opt := range opts {
		opt(logger)
	}

	return logger
}

// Name returns the logger name.
func (l *Logger) Name() string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.name
}

// Clone returns a logger with the same threshold, tag, flags and sinks under a
// new name. The sink list is copied, so adding or removing sinks on either
// logger does not affect the other.
func (l *Logger) Clone(name string) *Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()

	clone := &Logger{
		name:   name,
		tag:    l.tag,
		hasTag: l.hasTag,
		sinks:  slices.Clone(l.sinks),
	}

	clone.level.Store(l.level.Load())
	clone.enabled.Store(l.enabled.Load())
	clone.captureCaller.Store(l.captureCaller.Load())

	return clone
}

// LogFor reports whether a message at level would be dispatched.
func (l *Logger) LogFor(level Level) bool {
	return l.enabled.Load() && int64(level) >= l.level.Load()
}

// Level returns the logger threshold.
func (l *Logger) Level() Level {
	return Level(l.level.Load())
}

// SetLevel changes the logger threshold only; sinks keep their own.
func (l *Logger) SetLevel(level Level) {
	l.level.Store(int64(level))
}

// SetGlobalLevel sets the threshold of the logger and of every attached sink.
func (l *Logger) SetGlobalLevel(level Level) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	l.level.Store(int64(level))

	for _, sink := range l.sinks {
		sink.SetLevel(level)
	}
}

// Enable turns the logger on.
func (l *Logger) Enable() { l.enabled.Store(true) }

// Disable turns the logger off.
func (l *Logger) Disable() { l.enabled.Store(false) }

// Enabled reports whether the logger is on.
func (l *Logger) Enabled() bool { return l.enabled.Load() }

// SetCallerCapture toggles call site capture.
func (l *Logger) SetCallerCapture(capture bool) { l.captureCaller.Store(capture) }

// Tag returns the default tag and whether one is set.
func (l *Logger) Tag() (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.tag, l.hasTag
}

// SetTag sets the default tag and returns the logger for chaining.
func (l *Logger) SetTag(tag string) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.tag = tag
	l.hasTag = true

	return l
}

// ClearTag removes the default tag.
func (l *Logger) ClearTag() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.tag = ""
	l.hasTag = false
}

// Outputs returns a snapshot of the attached sinks.
func (l *Logger) Outputs() []Sink {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return slices.Clone(l.sinks)
}

// AddOutput attaches sink and lowers the threshold to the sink's if it is more
// permissive, so the logger never filters out what the sink would accept.
func (l *Logger) AddOutput(sink Sink) error {
	if sink == nil {
		return ewrap.New("cannot add nil output")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if slices.Contains(l.sinks, sink) {
		return ewrap.New("output already attached").WithMetadata("output", sink.Name())
	}

	l.sinks = append(l.sinks, sink)
	l.level.Store(min(l.level.Load(), int64(sink.Level())))

	return nil
}

// RemoveOutput detaches sink and raises the threshold to the highest of its
// current value and the remaining sink thresholds. It reports whether the sink
// was attached.
func (l *Logger) RemoveOutput(sink Sink) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := slices.Index(l.sinks, sink)
	if idx < 0 {
		return false
	}

	l.sinks = slices.Delete(l.sinks, idx, idx+1)

	level := l.level.Load()
	for _, remaining := range l.sinks {
		level = max(level, int64(remaining.Level()))
	}

	l.level.Store(level)

	return true
}

// Flush flushes every attached sink.
func (l *Logger) Flush() error {
	errorGroup := ewrap.NewErrorGroup()

	for _, sink := range l.Outputs() {
		err := sink.Flush()
		if err != nil {
			errorGroup.Add(ewrap.Wrap(err, "flushing output").WithMetadata("output", sink.Name()))
		}
	}

	if errorGroup.HasErrors() {
		return errorGroup
	}

	return nil
}

// Log emits args at an arbitrary level.
func (l *Logger) Log(level Level, args ...any) {
	if !l.LogFor(level) {
		return
	}

	l.log(level, nil, args)
}

// Logf emits a formatted message at an arbitrary level.
func (l *Logger) Logf(level Level, format string, args ...any) {
	if !l.LogFor(level) {
		return
	}

	l.log(level, nil, []any{fmt.Sprintf(format, args...)})
}

// With returns an Entry that applies opts to every message it emits.
func (l *Logger) With(opts ...MessageOption) *Entry {
	return &Entry{logger: l, opts: opts}
}

// Tagged returns an Entry whose messages carry tag.
func (l *Logger) Tagged(tag string) *Entry {
	return l.With(WithTag(tag))
}

// log builds the message and dispatches it. Callers must have checked LogFor.
func (l *Logger) log(level Level, opts []MessageOption, args []any) {
	msgOpts := make([]MessageOption, 0, len(opts)+3)

	l.mu.RLock()
	msgOpts = append(msgOpts, WithLoggerName(l.name))

	if l.hasTag {
		msgOpts = append(msgOpts, WithTag(l.tag))
	}
	l.mu.RUnlock()

	if l.captureCaller.Load() {
		if caller, ok := captureCaller(); ok {
			msgOpts = append(msgOpts, WithCaller(caller))
		}
	}

	msgOpts = append(msgOpts, opts...)

	l.Dispatch(NewMessage(level, stringify(args), msgOpts...))
}

// Dispatch sends an already built message to the sinks, choosing the stderr
// side for WARN and above.
func (l *Logger) Dispatch(msg *Message) {
	sinks := l.Outputs()

	if msg.Level() >= WarnLevel {
		for _, sink := range sinks {
			sink.WriteStderr(msg)
		}

		return
	}

	for _, sink := range sinks {
		sink.WriteStdout(msg)
	}
}

func captureCaller() (Caller, bool) {
	pc, file, line, ok := runtime.Caller(callerSkip)
	if !ok {
		return Caller{}, false
	}

	function := "unknown"
	if fn := runtime.FuncForPC(pc); fn != nil {
		function = fn.Name()
	}

	return Caller{File: file, Line: line, Function: function}, true
}

func stringify(args []any) []string {
	parts := make([]string, len(args))

	for i, arg := range args {
		switch v := arg.(type) {
		case string:
			parts[i] = v
		case fmt.Stringer:
			parts[i] = v.String()
		case error:
			parts[i] = v.Error()
		default:
			parts[i] = fmt.Sprint(v)
		}
	}

	return parts
}
