package formatter

import (
	"fmt"
	"strconv"
	"time"

	"github.com/hyp3rd/lndl"
)

// TimeStage writes log_time.
type TimeStage struct {
	// Layout is a time.Format layout; empty means lndl.DefaultTimeFormat.
	Layout string
	// Millis appends "-mmm" milliseconds to the formatted time.
	Millis bool
	// UTC renders in UTC instead of local time.
	UTC bool
}

// NewTimeStage returns a stage with the default layout and milliseconds on.
func NewTimeStage() *TimeStage {
	return &TimeStage{Layout: lndl.DefaultTimeFormat, Millis: true}
}

// Name implements Stage.
func (*TimeStage) Name() string { return "TimeFormatter" }

// Format implements Stage.
func (s *TimeStage) Format(ctx *Context) {
	ctx.Set(lndl.FieldLogTime, s.render(ctx.Message.Time()))
}

func (s *TimeStage) render(ts time.Time) string {
	if s.UTC {
		ts = ts.UTC()
	}

	layout := s.Layout
	if layout == "" {
		layout = lndl.DefaultTimeFormat
	}

	formatted := ts.Format(layout)
	if !s.Millis {
		return formatted
	}

	return fmt.Sprintf("%s-%03d", formatted, ts.Nanosecond()/int(time.Millisecond))
}

// Fields implements Describer.
func (*TimeStage) Fields() []Field {
	return []Field{{Placeholder: lndl.FieldLogTime, Description: "the time of the message, see time.Layout"}}
}

// LevelStage writes level using a level table.
type LevelStage struct {
	Table    *lndl.LevelTable
	Rounding lndl.Rounding
}

// NewLevelStage returns a stage over the default table rounding up.
func NewLevelStage() *LevelStage {
	return &LevelStage{Table: lndl.DefaultLevels(), Rounding: lndl.RoundUp}
}

// Name implements Stage.
func (*LevelStage) Name() string { return "LevelFormatter" }

// Format implements Stage.
func (s *LevelStage) Format(ctx *Context) {
	table := s.Table
	if table == nil {
		table = lndl.DefaultLevels()
	}

	ctx.Set(lndl.FieldLevel, table.Name(ctx.Message.Level(), s.Rounding))
}

// Fields implements Describer.
func (*LevelStage) Fields() []Field {
	return []Field{{Placeholder: lndl.FieldLevel, Description: "the level name of the message"}}
}

// TraceStage writes log_source, log_line and log_function from the captured
// call site. Messages without one are left untouched.
type TraceStage struct{}

// Name implements Stage.
func (TraceStage) Name() string { return "TraceFormatter" }

// Format implements Stage.
func (TraceStage) Format(ctx *Context) {
	caller, ok := ctx.Message.Caller()
	if !ok {
		return
	}

	ctx.Set(lndl.FieldLogSource, caller.File)
	ctx.Set(lndl.FieldLogLine, strconv.Itoa(caller.Line))
	ctx.Set(lndl.FieldLogFunction, caller.Function)
}

// Fields implements Describer.
func (TraceStage) Fields() []Field {
	return []Field{
		{Placeholder: lndl.FieldLogSource, Description: "the file of the logging call"},
		{Placeholder: lndl.FieldLogLine, Description: "the line of the logging call"},
		{Placeholder: lndl.FieldLogFunction, Description: "the function of the logging call"},
	}
}
