package outstream

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyp3rd/lndl"
	"github.com/hyp3rd/lndl/internal/output"
)

func TestBuild_Stdio(t *testing.T) {
	sink, err := Build(ClassStdio, "console", map[string]any{"color_mode": "never"}, Dependencies{Level: lndl.WarnLevel})
	require.NoError(t, err)

	stdio, ok := sink.(*StdioOutputStream)
	require.True(t, ok)
	assert.Equal(t, "console", stdio.Name())
	assert.Equal(t, lndl.WarnLevel, stdio.Level())
	assert.False(t, stdio.stdout.Colored())
	assert.NotNil(t, stdio.Formatter())
}

func TestBuild_StdioRedirectsStreams(t *testing.T) {
	dir := t.TempDir()
	errPath := filepath.Join(dir, "errors.log")

	sink, err := Build(ClassStdio, "console", map[string]any{
		"color_mode": "always",
		"stdout":     "stderr",
		"stderr":     errPath,
	}, Dependencies{Formatter: plainMessages(), Level: lndl.InfoLevel})
	require.NoError(t, err)

	sink.WriteStderr(message(lndl.ErrorLevel, "boom"))
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(errPath)
	require.NoError(t, err)
	assert.Equal(t, "boom\n", string(data))

	_, err = Build(ClassStdio, "console", map[string]any{"stderr": "../escape.log"}, Dependencies{})
	require.Error(t, err)
}

func TestBuild_StdioInvalidColorMode(t *testing.T) {
	_, err := Build(ClassStdio, "console", map[string]any{"color_mode": "sometimes"}, Dependencies{})
	require.ErrorIs(t, err, output.ErrInvalidColorMode)
}

func TestBuild_FileCache(t *testing.T) {
	hooks := lndl.NewShutdownHooks()
	formatterDep := plainMessages()

	sink, err := Build(ClassFileCache, "file", map[string]any{
		"file_name":               "service",
		"file_path":               t.TempDir(),
		"flush_count_limit":       "4",
		"file_swap":               true,
		"file_swap_name_template": "${name}.${counter}",
		"file_size_limit":         512,
		"file_time_limit":         30,
		"file_swap_on_both":       true,
		"compress":                true,
	}, Dependencies{Formatter: formatterDep, Level: lndl.DebugLevel, Hooks: hooks})
	require.NoError(t, err)

	file, ok := sink.(*FileCacheOutputStream)
	require.True(t, ok)

	t.Cleanup(func() { _ = file.Close() })

	assert.Equal(t, "file", file.Name())
	assert.Equal(t, lndl.DebugLevel, file.Level())
	assert.Same(t, formatterDep, file.Formatter())
	assert.Same(t, hooks, file.hooks)
	assert.Equal(t, 4, file.config.FlushCountLimit)
	assert.Equal(t, int64(512), file.config.SizeLimitKiB)
	assert.Equal(t, 30*time.Second, file.config.TimeLimit)
	assert.True(t, file.config.SwapOnBoth)
	assert.True(t, file.config.Compress)
}

func TestBuild_FileCacheErrors(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]any
		target error
	}{
		{name: "missing file name", params: map[string]any{}, target: ErrMissingFileName},
		{name: "unexpected parameter", params: map[string]any{"file_name": "x", "rotate": true}},
		{name: "negative limit", params: map[string]any{"file_name": "x", "file_size_limit": -3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(ClassFileCache, "file", tt.params, Dependencies{Hooks: lndl.NewShutdownHooks()})
			require.Error(t, err)

			if tt.target != nil {
				require.ErrorIs(t, err, tt.target)
			}
		})
	}
}

func TestBuild_UnknownClass(t *testing.T) {
	_, err := Build("SocketOutputStream", "net", nil, Dependencies{})
	require.ErrorIs(t, err, ErrUnknownClass)
}
