package config

import (
	"bytes"
	"sync"
	"testing"

	"github.com/hyp3rd/lndl"
	"github.com/hyp3rd/lndl/internal/output"
	"github.com/hyp3rd/lndl/pkg/formatter"
	"github.com/hyp3rd/lndl/pkg/outstream"
)

const classRecording = "RecordingOutputStream"

// recordingSink keeps every message it accepts.
type recordingSink struct {
	*lndl.NopSink

	mu     sync.Mutex
	stdout []*lndl.Message
	stderr []*lndl.Message
	closed int
}

func newRecordingSink(name string, level lndl.Level) *recordingSink {
	sink := &recordingSink{NopSink: lndl.NewNopSink(name)}
	sink.SetLevel(level)

	return sink
}

func (s *recordingSink) accepts(msg *lndl.Message) bool {
	return s.Enabled() && msg.Level() >= s.Level()
}

func (s *recordingSink) WriteStdout(msg *lndl.Message) {
	if !s.accepts(msg) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stdout = append(s.stdout, msg)
}

func (s *recordingSink) WriteStderr(msg *lndl.Message) {
	if !s.accepts(msg) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stderr = append(s.stderr, msg)
}

func (s *recordingSink) Close() error {
	s.mu.Lock()
	s.closed++
	s.mu.Unlock()

	return s.NopSink.Close()
}

func (s *recordingSink) counts() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.stdout), len(s.stderr)
}

type recordingParams struct {
	Label string `mapstructure:"label"`
}

func buildRecording(name string, params map[string]any, deps outstream.Dependencies) (lndl.Sink, error) {
	var p recordingParams

	err := formatter.DecodeParams(params, &p)
	if err != nil {
		return nil, err
	}

	return newRecordingSink(name, deps.Level), nil
}

type testStorage struct {
	*Storage

	diag  *bytes.Buffer
	root  *recordingSink
	hooks *lndl.ShutdownHooks
}

// newTestStorage builds a storage whose diagnostics go to a buffer, whose root
// logger records, and which knows the recording output class.
func newTestStorage(t *testing.T) *testStorage {
	t.Helper()

	var diag bytes.Buffer

	diagSink := outstream.NewStdioOutputStream(outstream.StdioConfig{
		Name:  "diag",
		Level: lndl.NotSetLevel,
		Formatter: formatter.New(formatter.ClassBase,
			formatter.WithTemplate("${level} ${messages}"),
			formatter.WithStages(formatter.NewLevelStage()),
		),
		Stdout:    &diag,
		Stderr:    &diag,
		ColorMode: output.ColorModeNever,
	})

	registry := NewRegistry()
	registry.MustRegisterOutput(classRecording, buildRecording)

	root := newRecordingSink("root-sink", lndl.InfoLevel)
	hooks := lndl.NewShutdownHooks()

	storage := NewStorage(
		WithRegistry(registry),
		WithShutdownHooks(hooks),
		WithDiagnostics(lndl.NewLogger(DiagnosticsLoggerName,
			lndl.WithLevel(lndl.WarnLevel),
			lndl.WithOutputs(diagSink),
			lndl.WithCallerCapture(false),
		)),
		WithRootLogger(lndl.NewLogger(lndl.DefaultLoggerName, lndl.WithOutputs(root))),
	)

	return &testStorage{Storage: storage, diag: &diag, root: root, hooks: hooks}
}

func (ts *testStorage) recorder(t *testing.T, name string) *recordingSink {
	t.Helper()

	sink, err := ts.Output(name)
	if err != nil {
		t.Fatalf("output %q: %v", name, err)
	}

	rec, ok := sink.(*recordingSink)
	if !ok {
		t.Fatalf("output %q is a %T", name, sink)
	}

	return rec
}
