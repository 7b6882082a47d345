package output

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closableBuffer struct {
	*bytes.Buffer
	closed bool
}

func (c *closableBuffer) Close() error {
	c.closed = true

	return nil
}

func TestConsoleWriter_ColorModes(t *testing.T) {
	colored := "\x1b[0;33mWARN\x1b[0m|disk\n"

	tests := []struct {
		name string
		mode ColorMode
		want string
	}{
		{"auto on a buffer strips", ColorModeAuto, "WARN|disk\n"},
		{"always keeps", ColorModeAlways, colored},
		{"never strips", ColorModeNever, "WARN|disk\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			writer := NewConsoleWriter(&buf, tt.mode)

			n, err := writer.WriteString(colored)
			require.NoError(t, err)
			assert.Equal(t, len(colored), n)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestConsoleWriter_CloseForwards(t *testing.T) {
	cb := &closableBuffer{Buffer: bytes.NewBuffer(nil)}
	writer := NewConsoleWriter(cb, ColorModeNever)

	require.NoError(t, writer.Sync())
	require.NoError(t, writer.Close())
	assert.True(t, cb.closed)

	std := NewConsoleWriter(nil, ColorModeAuto)
	require.NoError(t, std.Close(), "standard streams are never closed")
}

func TestParseColorMode(t *testing.T) {
	for input, want := range map[string]ColorMode{
		"":       ColorModeAuto,
		"AUTO":   ColorModeAuto,
		"always": ColorModeAlways,
		"never":  ColorModeNever,
		"off":    ColorModeNever,
	} {
		mode, err := ParseColorMode(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, mode, input)
	}

	_, err := ParseColorMode("rainbow")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidColorMode))
	assert.Equal(t, "never", ColorModeNever.String())
}

func TestFileWriter_OpenAndSwitch(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "nested", "a.log")
	second := filepath.Join(dir, "nested", "b.log")

	writer := NewFileWriter(0)

	_, err := writer.WriteString("lost")
	require.ErrorIs(t, err, ErrNoTarget)

	previous, err := writer.Open(first)
	require.NoError(t, err)
	assert.Empty(t, previous)

	_, err = writer.WriteString("one\n")
	require.NoError(t, err)

	previous, err = writer.Open(first)
	require.NoError(t, err)
	assert.Empty(t, previous, "reopening the current target does not switch")

	previous, err = writer.Open(second)
	require.NoError(t, err)
	assert.Equal(t, first, previous)
	assert.Equal(t, second, writer.Path())

	_, err = writer.WriteString("two\n")
	require.NoError(t, err)
	require.NoError(t, writer.Sync())
	require.NoError(t, writer.Close())
	require.NoError(t, writer.Close())

	content, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, "one\n", string(content))

	content, err = os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, "two\n", string(content))
}

func TestFileWriter_AppendsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(path, []byte("existing\n"), 0o600))

	writer := NewFileWriter(0o600)

	_, err := writer.Open(path)
	require.NoError(t, err)

	_, err = writer.WriteString("appended\n")
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "existing\nappended\n", string(content))
}

func TestFileWriter_RejectsTraversal(t *testing.T) {
	writer := NewFileWriter(0)

	_, err := writer.Open("../outside.log")
	require.Error(t, err)
	assert.Empty(t, writer.Path())
}
