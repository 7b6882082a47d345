package lndl

// Sink is a destination for rendered log messages.
//
// Write calls never report errors to the caller: a sink that cannot persist a
// message keeps it for a later attempt or reports the failure through its own
// error handler.
type Sink interface {
	// Name returns the symbolic name of the sink.
	Name() string
	// WriteStdout accepts a message routed to the regular output side.
	WriteStdout(msg *Message)
	// WriteStderr accepts a message routed to the error output side.
	WriteStderr(msg *Message)
	// Flush writes out anything the sink buffered.
	Flush() error
	// Close disables the sink, flushes it and releases its resources.
	Close() error
	// Level returns the sink threshold.
	Level() Level
	// SetLevel changes the sink threshold.
	SetLevel(level Level)
	// Enabled reports whether the sink still accepts messages.
	Enabled() bool
}
