package lndl

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage_Defaults(t *testing.T) {
	before := time.Now().UnixNano()
	msg := NewMessage(InfoLevel, nil)

	assert.Empty(t, msg.Parts())
	assert.Equal(t, DefaultEnd, msg.End())
	assert.Equal(t, DefaultSplit, msg.Split())
	assert.Equal(t, InfoLevel, msg.Level())
	assert.Equal(t, DefaultLoggerName, msg.LoggerName())
	assert.GreaterOrEqual(t, msg.UnixNano(), before)
	assert.False(t, msg.Flush())

	_, hasTag := msg.Tag()
	assert.False(t, hasTag)

	_, hasCaller := msg.Caller()
	assert.False(t, hasCaller)

	assert.Equal(t, "\n", msg.Text())
}

func TestMessage_Text(t *testing.T) {
	for _, split := range []string{" ", " | "} {
		for _, end := range []string{"\n", "\r\n", ""} {
			msg := NewMessage(InfoLevel, []string{"test", "test2"}, WithSplit(split), WithEnd(end))
			assert.Equal(t, "test"+split+"test2"+end, msg.Text())
		}
	}
}

func TestMessage_PartsAreCopied(t *testing.T) {
	parts := []string{"a", "b"}
	msg := NewMessage(InfoLevel, parts)

	parts[0] = "changed"
	assert.Equal(t, []string{"a", "b"}, msg.Parts())

	got := msg.Parts()
	got[1] = "changed"
	assert.Equal(t, []string{"a", "b"}, msg.Parts())
}

func TestMessage_BaseFields(t *testing.T) {
	msg := NewMessage(WarnLevel, []string{"hello"}, WithLoggerName("app"))
	fields := msg.BaseFields()

	assert.Equal(t, "hello\n", fields[FieldMessages])
	assert.Equal(t, "app", fields[FieldLoggerName])
	assert.Equal(t, EmptyTag, fields[FieldLoggerTag])
	assert.NotContains(t, fields, FieldLevel)
	assert.NotContains(t, fields, FieldLogTime)

	tagged := NewMessage(WarnLevel, []string{"hello"}, WithTag("db"))
	assert.Equal(t, "db", tagged.BaseFields()[FieldLoggerTag])
}

func TestMessage_Options(t *testing.T) {
	msg := NewMessage(ErrorLevel, []string{"x"},
		WithTime(42),
		WithFlush(true),
		WithTag("tag"),
		WithCaller(Caller{File: "main.go", Line: 7, Function: "main.main"}),
	)

	assert.Equal(t, int64(42), msg.UnixNano())
	assert.True(t, msg.Flush())

	tag, ok := msg.Tag()
	require.True(t, ok)
	assert.Equal(t, "tag", tag)

	caller, ok := msg.Caller()
	require.True(t, ok)
	assert.Equal(t, Caller{File: "main.go", Line: 7, Function: "main.main"}, caller)
}
