package lndl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultLevelColors(t *testing.T) {
	colors := DefaultLevelColors()

	assert.Empty(t, colors[NotSetLevel])
	assert.Equal(t, Blue, colors[TraceLevel])
	assert.Equal(t, Green, colors[FineLevel])
	assert.Equal(t, Cyan, colors[DebugLevel])
	assert.Equal(t, White, colors[InfoLevel])
	assert.Equal(t, Yellow, colors[WarnLevel])
	assert.Equal(t, Red, colors[ErrorLevel])
	assert.Equal(t, RedBackground, colors[FatalLevel])
	assert.Len(t, colors, 8)
}

func TestColorFor(t *testing.T) {
	colors := DefaultLevelColors()

	tests := []struct {
		name  string
		level Level
		want  string
	}{
		{"exact info", InfoLevel, White},
		{"between info and warn", 20, White},
		{"between trace and fine", 3, Blue},
		{"above fatal", 95, RedBackground},
		{"notset", NotSetLevel, ""},
		{"below every entry", -1, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ColorFor(colors, tt.level))
		})
	}
}

func TestColorConstants(t *testing.T) {
	tests := []struct {
		name     string
		color    string
		expected string
	}{
		{"Red", Red, "\x1b[0;31m"},
		{"Yellow", Yellow, "\x1b[0;33m"},
		{"RedBackground", RedBackground, "\x1b[0;41m"},
		{"Reset", Reset, "\x1b[0m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.color)
		})
	}
}
