package outstream

import (
	"io"
	"os"

	"github.com/hyp3rd/ewrap"

	"github.com/hyp3rd/lndl"
	"github.com/hyp3rd/lndl/internal/output"
	"github.com/hyp3rd/lndl/pkg/formatter"
)

// StdioConfig configures a StdioOutputStream.
type StdioConfig struct {
	// Name identifies the sink.
	Name string
	// Level is the sink threshold.
	Level lndl.Level
	// Formatter renders messages; nil selects formatter.Default.
	Formatter *formatter.Formatter
	// Stdout and Stderr default to the process streams. Close closes any
	// other stream given here.
	Stdout io.Writer
	Stderr io.Writer
	// ColorMode decides whether colour sequences reach the streams.
	ColorMode output.ColorMode
}

// StdioOutputStream writes rendered messages to stdout and stderr.
type StdioOutputStream struct {
	base

	stdout *output.ConsoleWriter
	stderr *output.ConsoleWriter
}

// Ensure StdioOutputStream implements the Sink interface.
var _ lndl.Sink = (*StdioOutputStream)(nil)

// NewStdioOutputStream creates a console sink.
func NewStdioOutputStream(config StdioConfig) *StdioOutputStream {
	if config.Name == "" {
		config.Name = ClassStdio
	}

	if config.Formatter == nil {
		config.Formatter = formatter.Default()
	}

	if config.Stdout == nil {
		config.Stdout = os.Stdout
	}

	if config.Stderr == nil {
		config.Stderr = os.Stderr
	}

	sink := &StdioOutputStream{
		stdout: output.NewConsoleWriter(config.Stdout, config.ColorMode),
		stderr: output.NewConsoleWriter(config.Stderr, config.ColorMode),
	}
	sink.init(config.Name, config.Level, config.Formatter)

	return sink
}

// WriteStdout renders msg to stdout.
func (s *StdioOutputStream) WriteStdout(msg *lndl.Message) {
	s.write(s.stdout, msg)
}

// WriteStderr renders msg to stderr.
func (s *StdioOutputStream) WriteStderr(msg *lndl.Message) {
	s.write(s.stderr, msg)
}

func (s *StdioOutputStream) write(w *output.ConsoleWriter, msg *lndl.Message) {
	if !s.accepts(msg) {
		return
	}

	_, err := w.WriteString(s.formatter.Render(msg))
	if err != nil {
		s.report(err)

		return
	}

	if msg.Flush() {
		err = w.Sync()
		if err != nil {
			s.report(err)
		}
	}
}

// Flush syncs both streams.
func (s *StdioOutputStream) Flush() error {
	errorGroup := ewrap.NewErrorGroup()

	for _, w := range []*output.ConsoleWriter{s.stdout, s.stderr} {
		err := w.Sync()
		if err != nil {
			errorGroup.Add(err)
		}
	}

	if errorGroup.HasErrors() {
		return errorGroup
	}

	return nil
}

// Close disables the sink, syncs the streams and closes those that are not
// the process streams.
func (s *StdioOutputStream) Close() error {
	s.enabled.Store(false)

	errorGroup := ewrap.NewErrorGroup()

	err := s.Flush()
	if err != nil {
		errorGroup.Add(err)
	}

	for _, w := range []*output.ConsoleWriter{s.stdout, s.stderr} {
		err = w.Close()
		if err != nil {
			errorGroup.Add(err)
		}
	}

	if errorGroup.HasErrors() {
		return errorGroup
	}

	return nil
}
