package formatter

import (
	"strings"

	"github.com/hyp3rd/lndl"
)

// Palette maps levels to ANSI colour sequences. Lookups use the nearest level
// at or below the message level.
type Palette map[lndl.Level]string

func (p Palette) colorFor(level lndl.Level) string {
	if p == nil {
		return lndl.ColorFor(lndl.DefaultLevelColors(), level)
	}

	return lndl.ColorFor(p, level)
}

// paint wraps field in color. Missing fields, empty colours and values that
// already carry a reset sequence are left alone.
func paint(ctx *Context, field, color string) {
	if color == "" {
		return
	}

	value, ok := ctx.Get(field)
	if !ok || strings.Contains(value, lndl.Reset) {
		return
	}

	ctx.Set(field, color+value+lndl.Reset)
}

// LevelColorStage colours the level field.
type LevelColorStage struct {
	Colors Palette
}

// Name implements Stage.
func (*LevelColorStage) Name() string { return "LevelColorFormatter" }

// Format implements Stage.
func (s *LevelColorStage) Format(ctx *Context) {
	paint(ctx, lndl.FieldLevel, s.Colors.colorFor(ctx.Message.Level()))
}

// Fields implements Describer.
func (*LevelColorStage) Fields() []Field {
	return []Field{{Placeholder: lndl.FieldLevel, Description: "the level name, coloured by level"}}
}

// LoggerColorStage colours the logger name and, when set, the tag.
type LoggerColorStage struct {
	Colors Palette
}

// Name implements Stage.
func (*LoggerColorStage) Name() string { return "LoggerColorFormatter" }

// Format implements Stage.
func (s *LoggerColorStage) Format(ctx *Context) {
	color := s.Colors.colorFor(ctx.Message.Level())

	paint(ctx, lndl.FieldLoggerName, color)

	if tag, ok := ctx.Get(lndl.FieldLoggerTag); ok && tag != lndl.EmptyTag {
		paint(ctx, lndl.FieldLoggerTag, color)
	}
}

// Fields implements Describer.
func (*LoggerColorStage) Fields() []Field {
	return []Field{
		{Placeholder: lndl.FieldLoggerName, Description: "the logger name, coloured by level"},
		{Placeholder: lndl.FieldLoggerTag, Description: "the tag, coloured by level"},
	}
}

// TimeColorStage colours log_time.
type TimeColorStage struct {
	Colors Palette
}

// Name implements Stage.
func (*TimeColorStage) Name() string { return "TimeColorFormatter" }

// Format implements Stage.
func (s *TimeColorStage) Format(ctx *Context) {
	paint(ctx, lndl.FieldLogTime, s.Colors.colorFor(ctx.Message.Level()))
}

// Fields implements Describer.
func (*TimeColorStage) Fields() []Field {
	return []Field{{Placeholder: lndl.FieldLogTime, Description: "the time, coloured by level"}}
}

// TraceColorStage colours the call site fields.
type TraceColorStage struct {
	Colors Palette
}

// Name implements Stage.
func (*TraceColorStage) Name() string { return "TraceColorFormatter" }

// Format implements Stage.
func (s *TraceColorStage) Format(ctx *Context) {
	color := s.Colors.colorFor(ctx.Message.Level())

	paint(ctx, lndl.FieldLogSource, color)
	paint(ctx, lndl.FieldLogLine, color)
	paint(ctx, lndl.FieldLogFunction, color)
}

// Fields implements Describer.
func (*TraceColorStage) Fields() []Field {
	return []Field{
		{Placeholder: lndl.FieldLogSource, Description: "the call site file, coloured by level"},
		{Placeholder: lndl.FieldLogLine, Description: "the call site line, coloured by level"},
		{Placeholder: lndl.FieldLogFunction, Description: "the call site function, coloured by level"},
	}
}

// MessageColorStage colours the message text. The terminator stays outside
// the colour so the reset lands before the newline.
type MessageColorStage struct {
	Colors Palette
}

// Name implements Stage.
func (*MessageColorStage) Name() string { return "MessageColorFormatter" }

// Format implements Stage.
func (s *MessageColorStage) Format(ctx *Context) {
	color := s.Colors.colorFor(ctx.Message.Level())
	if color == "" {
		return
	}

	value, ok := ctx.Get(lndl.FieldMessages)
	if !ok || strings.Contains(value, lndl.Reset) {
		return
	}

	end := ctx.Message.End()
	if end == "" || !strings.HasSuffix(value, end) {
		ctx.Set(lndl.FieldMessages, color+value+lndl.Reset)

		return
	}

	ctx.Set(lndl.FieldMessages, color+strings.TrimSuffix(value, end)+lndl.Reset+end)
}

// Fields implements Describer.
func (*MessageColorStage) Fields() []Field {
	return []Field{{Placeholder: lndl.FieldMessages, Description: "the message text, coloured by level"}}
}

// ColorStages returns the colour stages in the order the main formatter
// applies them.
func ColorStages(colors Palette) []Stage {
	return []Stage{
		&LevelColorStage{Colors: colors},
		&LoggerColorStage{Colors: colors},
		&TimeColorStage{Colors: colors},
		&TraceColorStage{Colors: colors},
		&MessageColorStage{Colors: colors},
	}
}
