// Package outstream implements the lndl sinks.
//
// StdioOutputStream renders straight to stdout and stderr. FileCacheOutputStream
// accumulates rendered text in memory and appends it to a file when the
// buffered message count reaches its limit, when a message asks for a flush,
// or when the shutdown hooks run. It can rotate to a new file by size, by age
// or by both, optionally compressing the file it leaves behind.
//
// Sinks never return write errors to the logger. Failures go to the sink's
// error handler, which prints to stderr unless SetErrorHandler installed
// another one.
package outstream

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/hyp3rd/ewrap"

	"github.com/hyp3rd/lndl"
	"github.com/hyp3rd/lndl/pkg/formatter"
)

// ErrHandlerAlreadySet is returned when an error handler is assigned twice.
var ErrHandlerAlreadySet = ewrap.New("error handler already set")

// base carries the state every sink shares.
type base struct {
	name      string
	formatter *formatter.Formatter
	level     atomic.Int64
	enabled   atomic.Bool

	handlerMu  sync.Mutex
	handler    func(error)
	handlerSet bool
}

func (b *base) init(name string, level lndl.Level, f *formatter.Formatter) {
	b.name = name
	b.formatter = f
	b.level.Store(int64(level))
	b.enabled.Store(true)
}

// Name returns the sink name.
func (b *base) Name() string { return b.name }

// Level returns the sink threshold.
func (b *base) Level() lndl.Level { return lndl.Level(b.level.Load()) }

// SetLevel changes the sink threshold.
func (b *base) SetLevel(level lndl.Level) { b.level.Store(int64(level)) }

// Enabled reports whether the sink accepts messages.
func (b *base) Enabled() bool { return b.enabled.Load() }

// Formatter returns the formatter the sink renders with.
func (b *base) Formatter() *formatter.Formatter { return b.formatter }

// SetErrorHandler installs the callback that receives write and flush
// failures. It can be set once; later calls return ErrHandlerAlreadySet.
func (b *base) SetErrorHandler(handler func(error)) error {
	if handler == nil {
		return ewrap.New("error handler cannot be nil")
	}

	b.handlerMu.Lock()
	defer b.handlerMu.Unlock()

	if b.handlerSet {
		return ewrap.Wrap(ErrHandlerAlreadySet, "setting error handler").WithMetadata("output", b.name)
	}

	b.handler = handler
	b.handlerSet = true

	return nil
}

func (b *base) accepts(msg *lndl.Message) bool {
	return msg != nil && b.enabled.Load() && int64(msg.Level()) >= b.level.Load()
}

func (b *base) report(err error) {
	b.handlerMu.Lock()
	handler := b.handler
	b.handlerMu.Unlock()

	if handler != nil {
		handler(err)

		return
	}

	fmt.Fprintf(os.Stderr, "lndl: output %q: %v\n", b.name, err)
}
