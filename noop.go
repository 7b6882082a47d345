package lndl

import "sync/atomic"

// NopSink is a sink that accepts and discards everything. It still honours its
// threshold and enabled flag, which makes it useful as a placeholder output.
type NopSink struct {
	name    string
	level   atomic.Int64
	enabled atomic.Bool
}

// NewNopSink creates an enabled NopSink with the default threshold.
func NewNopSink(name string) *NopSink {
	sink := &NopSink{name: name}
	sink.level.Store(int64(DefaultLevel))
	sink.enabled.Store(true)

	return sink
}

// Ensure NopSink implements Sink interface.
var _ Sink = (*NopSink)(nil)

// Name returns the sink name.
func (s *NopSink) Name() string { return s.name }

// WriteStdout discards msg.
func (*NopSink) WriteStdout(_ *Message) {}

// WriteStderr discards msg.
func (*NopSink) WriteStderr(_ *Message) {}

// Flush is a no-op operation.
func (*NopSink) Flush() error { return nil }

// Close disables the sink.
func (s *NopSink) Close() error {
	s.enabled.Store(false)

	return nil
}

// Level returns the threshold.
func (s *NopSink) Level() Level { return Level(s.level.Load()) }

// SetLevel sets the threshold.
func (s *NopSink) SetLevel(level Level) { s.level.Store(int64(level)) }

// Enabled reports whether the sink is open.
func (s *NopSink) Enabled() bool { return s.enabled.Load() }
