package outstream

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hyp3rd/ewrap"

	"github.com/hyp3rd/lndl"
	"github.com/hyp3rd/lndl/internal/output"
	"github.com/hyp3rd/lndl/internal/utils"
	"github.com/hyp3rd/lndl/pkg/formatter"
)

const bytesPerKiB = 1024

// closeFlushAttempts bounds the flushes Close makes before giving up on the buffer.
const closeFlushAttempts = 2

var (
	// ErrMissingFileName is returned when a file sink is configured without a file name.
	ErrMissingFileName = ewrap.New("file name is required")
	// ErrUnflushed is reported with the text a closing sink could not persist.
	ErrUnflushed = ewrap.New("buffered log text discarded")
)

// FileConfig configures a FileCacheOutputStream.
type FileConfig struct {
	// Name identifies the sink.
	Name string
	// Level is the sink threshold.
	Level lndl.Level
	// Formatter renders messages; nil selects a MainFormatter without colours.
	Formatter *formatter.Formatter
	// FileName is the stem substituted for ${name} in SwapNameTemplate.
	FileName string
	// FilePath is the directory of the log files (default: ./logs).
	FilePath string
	// FlushCountLimit is the number of buffered messages that forces a flush
	// (default: 10).
	FlushCountLimit int
	// FileSwap enables rotation.
	FileSwap bool
	// SwapNameTemplate names the files, see lndl.DefaultSwapNameTemplate.
	SwapNameTemplate string
	// SizeLimitKiB rotates once the current file grows past it. Zero disables.
	SizeLimitKiB int64
	// TimeLimit rotates once the current file was last modified longer ago.
	// Zero disables.
	TimeLimit time.Duration
	// SwapOnBoth requires both limits to be exceeded before rotating.
	SwapOnBoth bool
	// Compress gzips every file the sink rotates away from.
	Compress bool
	// Hooks receives the deferred flush; nil selects the process hooks.
	Hooks *lndl.ShutdownHooks
	// FileMode is the permission of created files (default: 0644).
	FileMode os.FileMode
	// Now is the clock; nil selects time.Now.
	Now func() time.Time
}

// FileCacheOutputStream buffers rendered messages and appends them to a
// rotating file.
type FileCacheOutputStream struct {
	base

	// bufMu guards the accumulator swap only.
	bufMu   sync.Mutex
	buffer  strings.Builder
	pending int
	closed  bool

	// rotMu guards the rotation state and serialises the file I/O.
	rotMu       sync.Mutex
	counter     int
	startTime   time.Time
	currentPath string

	config     FileConfig
	writer     *output.FileWriter
	compressor *output.Compressor
	hooks      *lndl.ShutdownHooks
	hookKey    string
}

// Ensure FileCacheOutputStream implements the Sink interface.
var _ lndl.Sink = (*FileCacheOutputStream)(nil)

// NewFileCacheOutputStream creates a buffered file sink. No file is touched
// until the first flush.
func NewFileCacheOutputStream(config FileConfig) (*FileCacheOutputStream, error) {
	if strings.TrimSpace(config.FileName) == "" {
		return nil, ewrap.Wrap(ErrMissingFileName, "creating file output").WithMetadata("output", config.Name)
	}

	if config.Name == "" {
		config.Name = ClassFileCache
	}

	if config.FilePath == "" {
		config.FilePath = lndl.DefaultLogDir
	}

	_, err := utils.CleanPath(config.FilePath)
	if err != nil {
		return nil, ewrap.Wrap(err, "invalid log directory").WithMetadata("output", config.Name)
	}

	if config.FlushCountLimit <= 0 {
		config.FlushCountLimit = lndl.DefaultFlushCountLimit
	}

	if config.SwapNameTemplate == "" {
		config.SwapNameTemplate = lndl.DefaultSwapNameTemplate
	}

	if config.SizeLimitKiB < 0 || config.TimeLimit < 0 {
		return nil, ewrap.New("rotation limits cannot be negative").WithMetadata("output", config.Name)
	}

	if config.Formatter == nil {
		config.Formatter = plainFormatter()
	}

	if config.Hooks == nil {
		config.Hooks = lndl.ProcessShutdownHooks()
	}

	if config.FileMode == 0 {
		config.FileMode = lndl.LogFilePermissions
	}

	if config.Now == nil {
		config.Now = time.Now
	}

	sink := &FileCacheOutputStream{
		config:    config,
		writer:    output.NewFileWriter(config.FileMode),
		hooks:     config.Hooks,
		startTime: config.Now(),
	}
	sink.init(config.Name, config.Level, config.Formatter)
	sink.hookKey = fmt.Sprintf("outstream/%s/%p", config.Name, sink)
	sink.compressor = output.NewCompressor(output.DefaultCompressionConfig(), sink.report)

	return sink, nil
}

// WriteStdout buffers msg.
func (s *FileCacheOutputStream) WriteStdout(msg *lndl.Message) { s.write(msg) }

// WriteStderr buffers msg. Both sides share the same file.
func (s *FileCacheOutputStream) WriteStderr(msg *lndl.Message) { s.write(msg) }

func (s *FileCacheOutputStream) write(msg *lndl.Message) {
	if !s.accepts(msg) {
		return
	}

	text := s.formatter.Render(msg)

	s.bufMu.Lock()
	if s.closed {
		s.bufMu.Unlock()

		return
	}

	s.buffer.WriteString(text)
	s.pending++
	due := msg.Flush() || s.pending >= s.config.FlushCountLimit
	s.bufMu.Unlock()

	if !due {
		s.hooks.Register(s.hookKey, s.Flush)

		return
	}

	err := s.Flush()
	if err != nil {
		s.report(err)
	}
}

// Pending returns the number of messages buffered since the last flush.
func (s *FileCacheOutputStream) Pending() int {
	s.bufMu.Lock()
	defer s.bufMu.Unlock()

	return s.pending
}

// Flush appends the buffered text to the current file, rotating first when
// the policy asks for it. On failure the text is put back in front of the
// buffer and the error is returned.
func (s *FileCacheOutputStream) Flush() error {
	s.bufMu.Lock()
	text := s.buffer.String()
	count := s.pending
	s.buffer.Reset()
	s.pending = 0
	s.bufMu.Unlock()

	if text == "" {
		return nil
	}

	err := s.persist(text)
	if err != nil {
		s.requeue(text, count)

		return err
	}

	return nil
}

// CurrentPath returns the file the next flush targets without rotating.
func (s *FileCacheOutputStream) CurrentPath() (string, error) {
	s.rotMu.Lock()
	defer s.rotMu.Unlock()

	return s.path()
}

// Close disables the sink, flushes what is left, drops the deferred flush
// and waits for pending compressions. Text that still cannot be written is
// passed to the error handler wrapped in ErrUnflushed.
func (s *FileCacheOutputStream) Close() error {
	s.enabled.Store(false)

	s.bufMu.Lock()
	s.closed = true
	s.bufMu.Unlock()

	errorGroup := ewrap.NewErrorGroup()

	var err error

	for range closeFlushAttempts {
		err = s.Flush()
		if err == nil {
			break
		}
	}

	if err != nil {
		errorGroup.Add(err)
	}

	s.bufMu.Lock()
	dropped := s.buffer.String()
	count := s.pending
	s.buffer = strings.Builder{}
	s.pending = 0
	s.bufMu.Unlock()

	if dropped != "" {
		s.report(ewrap.Wrap(ErrUnflushed, "closing file output").
			WithMetadata("output", s.name).
			WithMetadata("messages", count).
			WithMetadata("text", dropped))
	}

	s.hooks.Unregister(s.hookKey)

	err = s.writer.Close()
	if err != nil {
		errorGroup.Add(err)
	}

	s.compressor.Wait()

	if errorGroup.HasErrors() {
		return errorGroup
	}

	return nil
}

func (s *FileCacheOutputStream) persist(text string) error {
	s.rotMu.Lock()
	defer s.rotMu.Unlock()

	target := s.target()

	previous, err := s.writer.Open(target)
	if err != nil {
		return ewrap.Wrap(err, "opening log file").WithMetadata("output", s.name)
	}

	if previous != "" && s.config.Compress {
		s.compressor.Go(previous)
	}

	_, err = s.writer.WriteString(text)
	if err != nil {
		return ewrap.Wrap(err, "flushing log buffer").WithMetadata("output", s.name)
	}

	return nil
}

func (s *FileCacheOutputStream) requeue(text string, count int) {
	s.bufMu.Lock()
	rest := s.buffer.String()
	s.buffer.Reset()
	s.buffer.WriteString(text)
	s.buffer.WriteString(rest)
	s.pending += count
	s.bufMu.Unlock()

	if s.enabled.Load() {
		s.hooks.Register(s.hookKey, s.Flush)
	}
}

// target returns the path to write to, rotating when the policy says so.
// Errors while evaluating the policy keep the current path. Callers hold rotMu.
func (s *FileCacheOutputStream) target() string {
	current, err := s.path()
	if err != nil {
		s.report(err)

		return s.fallbackPath()
	}

	if !s.config.FileSwap || !s.shouldRotate(current) {
		return current
	}

	s.counter++
	s.currentPath = ""

	next, err := s.path()
	if err != nil {
		s.report(err)
		s.counter--
		s.currentPath = current

		return current
	}

	return next
}

// path returns the memoized current path, computing it from the template when
// unset. Callers hold rotMu.
func (s *FileCacheOutputStream) path() (string, error) {
	if s.currentPath != "" {
		return s.currentPath, nil
	}

	name := formatter.Substitute(s.config.SwapNameTemplate, map[string]string{
		"name":       s.config.FileName,
		"counter":    strconv.Itoa(s.counter),
		"log_time":   strconv.FormatInt(s.config.Now().Unix(), 10),
		"start_time": strconv.FormatInt(s.startTime.Unix(), 10),
	})

	full, err := utils.JoinName(s.config.FilePath, name)
	if err != nil {
		return "", ewrap.Wrap(err, "computing log file path").WithMetadata("output", s.name)
	}

	s.currentPath = full

	return full, nil
}

// fallbackPath is used when the template cannot produce a path: the file the
// writer already has open, or the bare file name inside the log directory.
func (s *FileCacheOutputStream) fallbackPath() string {
	if open := s.writer.Path(); open != "" {
		return open
	}

	full, err := utils.JoinName(s.config.FilePath, s.config.FileName)
	if err != nil {
		return s.config.FileName
	}

	return full
}

func (s *FileCacheOutputStream) shouldRotate(path string) bool {
	sizeLimited := s.config.SizeLimitKiB > 0
	timeLimited := s.config.TimeLimit > 0

	if !sizeLimited && !timeLimited {
		return false
	}

	info, err := os.Stat(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.report(ewrap.Wrap(err, "checking log file").WithMetadata("path", path))
		}

		return false
	}

	sizeExceeded := sizeLimited && info.Size() > s.config.SizeLimitKiB*bytesPerKiB
	timeExceeded := timeLimited && s.config.Now().Sub(info.ModTime()) > s.config.TimeLimit

	if s.config.SwapOnBoth {
		return sizeExceeded && timeExceeded
	}

	return sizeExceeded || timeExceeded
}

func plainFormatter() *formatter.Formatter {
	f, err := formatter.Build(formatter.ClassMain, map[string]any{"enable_color": false})
	if err != nil {
		return formatter.Default()
	}

	return f
}
