package configloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyp3rd/lndl"
	"github.com/hyp3rd/lndl/internal/constants"
	"github.com/hyp3rd/lndl/pkg/config"
)

const yamlDocument = `
Formatter:
  bare:
    class: BaseFormatter
    template: "${messages}"
Outstream:
  file:
    class: FileCacheOutputStream
    formatter: bare
    file_name: app
    file_path: %s
    flush_count_limit: 1
    level_name: debug
Logger:
  app:
    level: 7
    outputs: file
    tag: api
`

const tomlDocument = `
[Formatter.bare]
class = "BaseFormatter"
template = "${messages}"

[Outstream.file]
class = "FileCacheOutputStream"
formatter = "bare"
file_name = "app"
file_path = "%s"
flush_count_limit = 1
level_name = "debug"

[Logger.app]
level = 7
outputs = ["file"]
tag = "api"
`

func newStorage(t *testing.T) *config.Storage {
	t.Helper()

	quiet := lndl.NewLogger(config.DiagnosticsLoggerName,
		lndl.WithOutputs(lndl.NewNopSink("diag")),
		lndl.WithCallerCapture(false),
	)

	storage := config.NewStorage(
		config.WithShutdownHooks(lndl.NewShutdownHooks()),
		config.WithDiagnostics(quiet),
		config.WithRootLogger(lndl.NewLogger(lndl.DefaultLoggerName, lndl.WithOutputs(lndl.NewNopSink("root")))),
	)

	t.Cleanup(func() {
		_ = storage.Shutdown()
	})

	return storage
}

func writeDocument(t *testing.T, dir, name, format string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	content := []byte(fmt.Sprintf(format, filepath.ToSlash(filepath.Join(dir, "logs"))))

	require.NoError(t, os.WriteFile(path, content, 0o600))

	return path
}

func TestFromYAMLAndTOMLAgree(t *testing.T) {
	dir := t.TempDir()

	fromYAML, err := FromYAML([]byte(fmt.Sprintf(yamlDocument, dir)))
	require.NoError(t, err)

	fromTOML, err := FromTOML([]byte(fmt.Sprintf(tomlDocument, dir)))
	require.NoError(t, err)

	for _, doc := range []config.Document{fromYAML, fromTOML} {
		assert.Equal(t, "BaseFormatter", doc.Formatters["bare"]["class"])
		assert.Equal(t, "${messages}", doc.Formatters["bare"]["template"])
		assert.Equal(t, dir, doc.Outputs["file"]["file_path"])
		assert.Equal(t, "api", doc.Loggers["app"]["tag"])
	}
}

func TestFromYAMLInvalid(t *testing.T) {
	_, err := FromYAML([]byte("Formatter: [unterminated"))
	require.Error(t, err)

	_, err = FromYAML([]byte("Formatter:\n  - main\n"))
	require.ErrorIs(t, err, config.ErrInvalidDocument)
}

func TestFromTOMLInvalid(t *testing.T) {
	_, err := FromTOML([]byte("[Formatter"))
	require.Error(t, err)
}

func TestFromFile(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		format  string
		wantErr error
	}{
		{name: "yaml", file: "logging.yaml", format: yamlDocument},
		{name: "yml", file: "logging.yml", format: yamlDocument},
		{name: "toml", file: "logging.toml", format: tomlDocument},
		{name: "unsupported", file: "logging.ini", format: "x", wantErr: ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeDocument(t, dir, tt.file, tt.format)

			doc, err := FromFile(path)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Contains(t, doc.Loggers, "app")
		})
	}

	_, err := FromFile(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)

	_, err = FromFile("../outside.yaml")
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	storage := newStorage(t)

	report, err := Load(storage, writeDocument(t, dir, "logging.toml", tomlDocument))
	require.NoError(t, err)
	require.True(t, report.OK(), report.Err())

	app, err := storage.Logger("app")
	require.NoError(t, err)
	assert.Equal(t, lndl.DebugLevel, app.Level())

	app.Info("written")

	data, err := os.ReadFile(filepath.Join(dir, "logs", "app-0.log"))
	require.NoError(t, err)
	assert.Equal(t, "written\n", string(data))
}

func TestLoadSettingsFromEnvironment(t *testing.T) {
	t.Setenv("LNDL_CONFIG", "/etc/lndl/logging.yaml")
	t.Setenv("LNDL_LEVEL", "warning")
	t.Setenv("LNDL_WATCH", "true")
	t.Setenv("LNDL_COLOR_MODE", "never")

	settings, err := LoadSettings("", "")
	require.NoError(t, err)

	assert.Equal(t, "/etc/lndl/logging.yaml", settings.Config)
	assert.True(t, settings.Watch)
	assert.Equal(t, "never", settings.ColorMode)
	assert.Equal(t, constants.NonProductionEnvironment, settings.Environment)
	assert.Equal(t, lndl.DefaultLogDir, settings.LogDir)

	level, ok := settings.ParsedLevel()
	assert.True(t, ok)
	assert.Equal(t, lndl.WarnLevel, level)
}

func TestLoadSettingsFileWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	require.NoError(t, os.WriteFile(path, []byte("level: debug\nenvironment: production\nlog_dir: /var/log/app\n"), 0o600))

	t.Setenv("MY_APP_LEVEL", "error")

	settings, err := LoadSettings(path, "my-app_")
	require.NoError(t, err)

	assert.Equal(t, "error", settings.Level)
	assert.Equal(t, constants.ProductionEnvironment, settings.Environment)
	assert.Equal(t, "/var/log/app", settings.LogDir)
	assert.False(t, settings.Watch)
}

func TestLoadSettingsValidation(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "unknown level", key: "LNDL_LEVEL", val: "loud"},
		{name: "unknown color mode", key: "LNDL_COLOR_MODE", val: "sometimes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)

			_, err := LoadSettings("", "")
			require.Error(t, err)
		})
	}

	_, err := LoadSettings(filepath.Join(t.TempDir(), "absent.yaml"), "")
	require.Error(t, err)
}

func TestNormalizePrefix(t *testing.T) {
	assert.Equal(t, "LNDL", normalizePrefix("  "))
	assert.Equal(t, "MY_APP", normalizePrefix("my-app_"))
	assert.Equal(t, "SVC", normalizePrefix("svc"))
}

func TestSettingsApply(t *testing.T) {
	dir := t.TempDir()
	storage := newStorage(t)

	settings := Settings{
		Config:    writeDocument(t, dir, "logging.yaml", yamlDocument),
		Level:     "ERROR",
		ColorMode: "auto",
	}

	report, err := settings.Apply(storage)
	require.NoError(t, err)
	require.True(t, report.OK(), report.Err())

	app, err := storage.Logger("app")
	require.NoError(t, err)
	assert.Equal(t, lndl.ErrorLevel, app.Level())

	file, err := storage.Output("file")
	require.NoError(t, err)
	assert.Equal(t, lndl.ErrorLevel, file.Level())

	_, err = Settings{Config: filepath.Join(dir, "absent.yaml")}.Apply(storage)
	require.Error(t, err)
}

func TestWatchReloads(t *testing.T) {
	dir := t.TempDir()
	storage := newStorage(t)
	path := filepath.Join(dir, "logging.yaml")

	require.NoError(t, os.WriteFile(path, []byte("Formatter: {}\n"), 0o600))

	ctx, cancel := context.WithCancel(context.Background())

	var (
		mu      sync.Mutex
		reloads []config.Report
		done    = make(chan error, 1)
	)

	go func() {
		done <- watch(ctx, path, storage, func(report config.Report, err error) {
			if err != nil {
				return
			}

			mu.Lock()
			reloads = append(reloads, report)
			mu.Unlock()
		}, 10*time.Millisecond)
	}()

	content := []byte(fmt.Sprintf(yamlDocument, filepath.ToSlash(filepath.Join(dir, "logs"))))

	require.Eventually(t, func() bool {
		require.NoError(t, os.WriteFile(path, content, 0o600))

		mu.Lock()
		defer mu.Unlock()

		return len(reloads) > 0 && storage.HasLogger("app")
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestWatchInvalidPath(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "missing", "logging.yaml"), newStorage(t), nil)
	require.Error(t, err)
}
