// Package output provides the byte-level destinations behind lndl sinks.
//
// ConsoleWriter writes rendered text to a terminal stream. Colour sequences
// produced by the formatter are kept or stripped depending on the ColorMode
// and on whether the stream is a terminal:
//
//	w := output.NewConsoleWriter(os.Stdout, output.ColorModeAuto)
//	w.WriteString("\x1b[0;33mWARN\x1b[0m disk almost full\n")
//
// FileWriter appends to one file at a time and can be retargeted to another
// path, which is how rotation happens: the sink computes the next path and
// reopens the writer there. The previous file stays on disk and can be handed
// to a Compressor.
package output

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/x/ansi"
	"github.com/hyp3rd/ewrap"
	"github.com/mattn/go-isatty"

	"github.com/hyp3rd/lndl/internal/utils"
)

const (
	defaultFileMode os.FileMode = 0o644
	defaultDirMode  os.FileMode = 0o755
	escape                      = "\x1b"
)

// ConsoleWriter is a writer for terminal streams with colour handling.
type ConsoleWriter struct {
	mu         sync.Mutex
	out        io.Writer
	mode       ColorMode
	isTerminal bool
}

// NewConsoleWriter creates a ConsoleWriter. A nil out defaults to os.Stdout.
func NewConsoleWriter(out io.Writer, mode ColorMode) *ConsoleWriter {
	if out == nil {
		out = os.Stdout
	}

	return &ConsoleWriter{
		out:        out,
		mode:       mode,
		isTerminal: IsTerminal(out),
	}
}

// Colored reports whether colour sequences reach the output.
//
//nolint:exhaustive // ColorModeAuto is handled as default.
func (w *ConsoleWriter) Colored() bool {
	switch w.mode {
	case ColorModeAlways:
		return true
	case ColorModeNever:
		return false
	default:
		return w.isTerminal
	}
}

// Write implements io.Writer. Colour sequences are removed when Colored is
// false; the returned count is len(payload) on success either way.
func (w *ConsoleWriter) Write(payload []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	data := payload
	if !w.Colored() && strings.Contains(string(payload), escape) {
		data = []byte(ansi.Strip(string(payload)))
	}

	_, err := w.out.Write(data)
	if err != nil {
		return 0, ewrap.Wrap(err, "failed writing to console output")
	}

	return len(payload), nil
}

// WriteString writes s.
func (w *ConsoleWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

// Sync synchronizes the underlying writer if it supports it. Standard streams
// are skipped.
func (w *ConsoleWriter) Sync() error {
	if f, ok := w.out.(*os.File); ok && isStandardStream(f) {
		return nil
	}

	if syncer, ok := w.out.(interface{ Sync() error }); ok {
		err := syncer.Sync()
		if err != nil {
			return ewrap.Wrap(err, "syncing console writer")
		}
	}

	return nil
}

// Close closes the underlying writer if it is a closer other than a standard
// stream.
func (w *ConsoleWriter) Close() error {
	if f, ok := w.out.(*os.File); ok && isStandardStream(f) {
		return nil
	}

	if closer, ok := w.out.(io.Closer); ok {
		err := closer.Close()
		if err != nil {
			return ewrap.Wrap(err, "closing console writer")
		}
	}

	return nil
}

// FileWriter appends to the file at its current target path.
type FileWriter struct {
	mu       sync.Mutex
	file     *os.File
	path     string
	fileMode os.FileMode
	dirMode  os.FileMode
}

// NewFileWriter creates a FileWriter without a target. A zero mode selects
// 0644.
func NewFileWriter(mode os.FileMode) *FileWriter {
	if mode == 0 {
		mode = defaultFileMode
	}

	return &FileWriter{fileMode: mode, dirMode: defaultDirMode}
}

// Path returns the current target, or "" before the first Open.
func (w *FileWriter) Path() string {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.path
}

// Open makes path the write target, creating it and its directory as needed.
// When the target changes it returns the previous path; reopening the current
// target is a no-op. On failure the previous target stays open.
func (w *FileWriter) Open(path string) (string, error) {
	cleanPath, err := utils.CleanPath(path)
	if err != nil {
		return "", ewrap.Wrap(err, "invalid log file path")
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file != nil && w.path == cleanPath {
		return "", nil
	}

	err = utils.EnsureDir(filepath.Dir(cleanPath), w.dirMode)
	if err != nil {
		return "", err
	}

	//nolint:gosec // G304: the path is cleaned by utils.CleanPath.
	file, err := os.OpenFile(cleanPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, w.fileMode)
	if err != nil {
		return "", ewrap.Wrapf(err, "opening log file").WithMetadata("path", cleanPath)
	}

	previous := ""
	if w.file != nil {
		previous = w.path

		closeErr := w.file.Close()
		if closeErr != nil {
			_ = file.Close()

			return "", ewrap.Wrapf(closeErr, "closing previous log file").WithMetadata("path", w.path)
		}
	}

	w.file = file
	w.path = cleanPath

	return previous, nil
}

// Write appends p to the current target.
func (w *FileWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return 0, ErrNoTarget
	}

	n, err := w.file.Write(p)
	if err != nil {
		return n, ewrap.Wrap(err, "failed writing to log file").WithMetadata("path", w.path)
	}

	return n, nil
}

// WriteString appends s to the current target.
func (w *FileWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

// Sync flushes the current file to stable storage.
func (w *FileWriter) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}

	err := w.file.Sync()
	if err != nil {
		return ewrap.Wrapf(err, "syncing log file")
	}

	return nil
}

// Close closes the current file. The writer can be reopened afterwards.
func (w *FileWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}

	err := w.file.Close()
	w.file = nil

	if err != nil {
		return ewrap.Wrapf(err, "closing log file").WithMetadata("path", w.path)
	}

	return nil
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func isStandardStream(f *os.File) bool {
	return f == os.Stdout || f == os.Stderr
}
