package lndl

import (
	"strings"
	"time"
)

const (
	// DefaultEnd terminates every rendered message unless overridden.
	DefaultEnd = "\n"
	// DefaultSplit joins the message parts unless overridden.
	DefaultSplit = " "
	// DefaultLoggerName is the name of the root logger.
	DefaultLoggerName = "root"
	// EmptyTag is rendered in place of a missing tag so fixed templates keep
	// their column alignment.
	EmptyTag = "   "
)

// Field names written into the formatting side table.
const (
	FieldMessages    = "messages"
	FieldLoggerName  = "logger_name"
	FieldLoggerTag   = "logger_tag"
	FieldEnd         = "end"
	FieldSplit       = "split"
	FieldLevel       = "level"
	FieldLogTime     = "log_time"
	FieldLogSource   = "log_source"
	FieldLogLine     = "log_line"
	FieldLogFunction = "log_function"
)

// Caller identifies the call site of a log statement.
type Caller struct {
	File     string
	Line     int
	Function string
}

// Message is a single log event. It is built once by NewMessage and never
// modified afterwards.
type Message struct {
	parts      []string
	end        string
	split      string
	level      Level
	time       int64
	loggerName string
	tag        string
	hasTag     bool
	flush      bool
	caller     *Caller
}

// MessageOption customises a Message at construction.
type MessageOption func(*Message)

// WithEnd sets the terminator appended after the joined parts.
func WithEnd(end string) MessageOption {
	return func(m *Message) { m.end = end }
}

// WithSplit sets the separator used to join the parts.
func WithSplit(split string) MessageOption {
	return func(m *Message) { m.split = split }
}

// WithTag attaches a tag to the message.
func WithTag(tag string) MessageOption {
	return func(m *Message) {
		m.tag = tag
		m.hasTag = true
	}
}

// WithFlush asks buffered sinks to flush as soon as the message is accepted.
func WithFlush(flush bool) MessageOption {
	return func(m *Message) { m.flush = flush }
}

// WithTime sets the timestamp in Unix nanoseconds.
func WithTime(unixNano int64) MessageOption {
	return func(m *Message) { m.time = unixNano }
}

// WithLoggerName sets the originating logger name.
func WithLoggerName(name string) MessageOption {
	return func(m *Message) { m.loggerName = name }
}

// WithCaller attaches call site information.
func WithCaller(caller Caller) MessageOption {
	return func(m *Message) {
		c := caller
		m.caller = &c
	}
}

// NewMessage builds a Message. The timestamp defaults to the current time.
func NewMessage(level Level, parts []string, opts ...MessageOption) *Message {
	msg := &Message{
		parts:      append([]string(nil), parts...),
		end:        DefaultEnd,
		split:      DefaultSplit,
		level:      level,
		loggerName: DefaultLoggerName,
	}

	for _, opt := range opts {
		opt(msg)
	}

	if msg.time == 0 {
		msg.time = time.Now().UnixNano()
	}

	return msg
}

// Parts returns a copy of the text fragments.
func (m *Message) Parts() []string { return append([]string(nil), m.parts...) }

// End returns the terminator.
func (m *Message) End() string { return m.end }

// Split returns the separator.
func (m *Message) Split() string { return m.split }

// Level returns the severity.
func (m *Message) Level() Level { return m.level }

// UnixNano returns the timestamp in nanoseconds.
func (m *Message) UnixNano() int64 { return m.time }

// Time returns the timestamp as a time.Time in local time.
func (m *Message) Time() time.Time { return time.Unix(0, m.time) }

// LoggerName returns the originating logger name.
func (m *Message) LoggerName() string { return m.loggerName }

// Tag returns the tag and whether one was set.
func (m *Message) Tag() (string, bool) { return m.tag, m.hasTag }

// Flush reports whether the message requests an immediate flush.
func (m *Message) Flush() bool { return m.flush }

// Caller returns the call site, if it was captured.
func (m *Message) Caller() (Caller, bool) {
	if m.caller == nil {
		return Caller{}, false
	}

	return *m.caller, true
}

// Text joins the parts and appends the terminator.
func (m *Message) Text() string {
	return strings.Join(m.parts, m.split) + m.end
}

// BaseFields returns the fields every formatting pass starts from. The map is
// freshly allocated and owned by the caller.
func (m *Message) BaseFields() map[string]string {
	tag := EmptyTag
	if m.hasTag {
		tag = m.tag
	}

	return map[string]string{
		FieldMessages:   m.Text(),
		FieldLoggerName: m.loggerName,
		FieldLoggerTag:  tag,
		FieldEnd:        m.end,
		FieldSplit:      m.split,
	}
}
