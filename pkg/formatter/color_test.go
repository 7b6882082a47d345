package formatter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hyp3rd/lndl"
)

func TestColorStages_NoopWhenFieldMissing(t *testing.T) {
	ctx := NewContext(testMessage(lndl.ErrorLevel))
	before := map[string]string{}

	for k, v := range ctx.Fields {
		before[k] = v
	}

	(&LevelColorStage{}).Format(ctx)
	(&TimeColorStage{}).Format(ctx)
	(&TraceColorStage{}).Format(ctx)

	assert.NotContains(t, ctx.Fields, lndl.FieldLevel)
	assert.NotContains(t, ctx.Fields, lndl.FieldLogTime)
	assert.NotContains(t, ctx.Fields, lndl.FieldLogSource)
	assert.Equal(t, before, ctx.Fields)
}

func TestColorStages_NoopOnEmptyColor(t *testing.T) {
	ctx := NewContext(testMessage(lndl.NotSetLevel))
	NewLevelStage().Format(ctx)
	(&LevelColorStage{}).Format(ctx)

	assert.Equal(t, "NOTSET", ctx.Fields[lndl.FieldLevel])
}

func TestColorStages_FloorLookup(t *testing.T) {
	tests := []struct {
		level lndl.Level
		color string
	}{
		{lndl.TraceLevel, lndl.Blue},
		{3, lndl.Blue},
		{lndl.InfoLevel, lndl.White},
		{40, lndl.Yellow},
		{95, lndl.RedBackground},
	}

	for _, tt := range tests {
		ctx := NewContext(testMessage(tt.level))
		ctx.Set(lndl.FieldLevel, "X")

		(&LevelColorStage{}).Format(ctx)
		assert.Equal(t, tt.color+"X"+lndl.Reset, ctx.Fields[lndl.FieldLevel], "level %d", tt.level)
	}
}

func TestColorStages_RefuseDoubleWrap(t *testing.T) {
	ctx := NewContext(testMessage(lndl.WarnLevel))
	NewLevelStage().Format(ctx)

	stage := &LevelColorStage{}
	stage.Format(ctx)
	stage.Format(ctx)

	assert.Equal(t, lndl.Yellow+"WARN"+lndl.Reset, ctx.Fields[lndl.FieldLevel])
}

func TestLoggerColorStage_SkipsPlaceholderTag(t *testing.T) {
	ctx := NewContext(testMessage(lndl.ErrorLevel))
	(&LoggerColorStage{}).Format(ctx)

	assert.Equal(t, lndl.Red+"app"+lndl.Reset, ctx.Fields[lndl.FieldLoggerName])
	assert.Equal(t, lndl.EmptyTag, ctx.Fields[lndl.FieldLoggerTag])

	ctx = NewContext(testMessage(lndl.ErrorLevel, lndl.WithTag("db")))
	(&LoggerColorStage{}).Format(ctx)
	assert.Equal(t, lndl.Red+"db"+lndl.Reset, ctx.Fields[lndl.FieldLoggerTag])
}

func TestMessageColorStage_KeepsTerminatorOutside(t *testing.T) {
	ctx := NewContext(testMessage(lndl.DebugLevel))
	(&MessageColorStage{}).Format(ctx)
	assert.Equal(t, lndl.Cyan+"hello world"+lndl.Reset+"\n", ctx.Fields[lndl.FieldMessages])

	ctx = NewContext(testMessage(lndl.DebugLevel, lndl.WithEnd("")))
	(&MessageColorStage{}).Format(ctx)
	assert.Equal(t, lndl.Cyan+"hello world"+lndl.Reset, ctx.Fields[lndl.FieldMessages])
}

func TestCustomPalette(t *testing.T) {
	palette := Palette{lndl.NotSetLevel: "", lndl.ErrorLevel: lndl.Magenta}

	ctx := NewContext(testMessage(lndl.FatalLevel))
	ctx.Set(lndl.FieldLevel, "FATAL")
	(&LevelColorStage{Colors: palette}).Format(ctx)
	assert.Equal(t, lndl.Magenta+"FATAL"+lndl.Reset, ctx.Fields[lndl.FieldLevel])

	ctx = NewContext(testMessage(lndl.InfoLevel))
	ctx.Set(lndl.FieldLevel, "INFO")
	(&LevelColorStage{Colors: palette}).Format(ctx)
	assert.Equal(t, "INFO", ctx.Fields[lndl.FieldLevel])
}
