// Package formatter renders lndl messages into text.
//
// A Formatter owns an ordered list of stages and a template. Rendering happens
// in two phases: every stage enriches a field table derived from the message,
// then the table is substituted into the template. Stages run in attachment
// order and later stages observe the output of earlier ones, so a colour stage
// placed after the level stage wraps the rendered level name.
//
// A Formatter is itself a Stage, which is how sub-formatters compose: the
// resolver attaches the configured sub-formatters ahead of the class's own
// stages.
package formatter

import (
	"strings"

	"github.com/hyp3rd/lndl"
)

// DefaultTemplate is the template of formatters built without one.
const DefaultTemplate = lndl.DefaultTemplate

// Context carries the message being rendered and the fields produced so far.
type Context struct {
	Message *lndl.Message
	Fields  map[string]string
}

// NewContext seeds a context with the message base fields.
func NewContext(msg *lndl.Message) *Context {
	return &Context{
		Message: msg,
		Fields:  msg.BaseFields(),
	}
}

// Get returns a field and whether it was written.
func (c *Context) Get(field string) (string, bool) {
	value, ok := c.Fields[field]

	return value, ok
}

// Set writes a field, replacing any previous value.
func (c *Context) Set(field, value string) {
	c.Fields[field] = value
}

// Stage is one step of the formatting pipeline.
type Stage interface {
	// Name identifies the stage in diagnostics and descriptions.
	Name() string
	// Format adds or overwrites the fields the stage owns.
	Format(ctx *Context)
}

// Field documents a placeholder a stage makes available to templates.
type Field struct {
	Placeholder string
	Description string
}

// Describer is implemented by stages that document the fields they write.
type Describer interface {
	Fields() []Field
}

// Formatter is an ordered chain of stages plus a template.
type Formatter struct {
	class    string
	template string
	stages   []Stage
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithTemplate sets the output template.
func WithTemplate(template string) Option {
	return func(f *Formatter) { f.template = template }
}

// WithStages appends stages to the chain.
func WithStages(stages ...Stage) Option {
	return func(f *Formatter) {
		for _, stage := range stages {
			if stage != nil {
				f.stages = append(f.stages, stage)
			}
		}
	}
}

// New creates a formatter of the given class. Without options it has no stages
// and uses DefaultTemplate.
func New(class string, opts ...Option) *Formatter {
	f := &Formatter{
		class:    class,
		template: DefaultTemplate,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Name returns the class name.
func (f *Formatter) Name() string { return f.class }

// Template returns the output template.
func (f *Formatter) Template() string { return f.template }

// Stages returns a copy of the stage list.
func (f *Formatter) Stages() []Stage { return append([]Stage(nil), f.stages...) }

// Format runs every stage against ctx. It lets a Formatter act as a sub-stage
// of another formatter; the template is not applied.
func (f *Formatter) Format(ctx *Context) {
	for _, stage := range f.stages {
		stage.Format(ctx)
	}
}

// Render formats msg with the formatter's own template.
func (f *Formatter) Render(msg *lndl.Message) string {
	return f.RenderTemplate(msg, f.template)
}

// RenderTemplate formats msg and substitutes the fields into template.
func (f *Formatter) RenderTemplate(msg *lndl.Message, template string) string {
	ctx := NewContext(msg)
	f.Format(ctx)

	return Substitute(template, ctx.Fields)
}

// Fields lists the placeholders written by the stages of the chain, in stage
// order, without duplicates.
func (f *Formatter) Fields() []Field {
	return f.collect(nil, make(map[string]struct{}))
}

func (f *Formatter) collect(fields []Field, seen map[string]struct{}) []Field {
	for _, stage := range f.stages {
		describer, ok := stage.(Describer)
		if !ok {
			continue
		}

		for _, field := range describer.Fields() {
			if _, dup := seen[field.Placeholder]; dup {
				continue
			}

			seen[field.Placeholder] = struct{}{}
			fields = append(fields, field)
		}
	}

	return fields
}

// Describe returns a markdown summary of the placeholders available to the
// formatter's template, the base message fields first.
func (f *Formatter) Describe() string {
	base := baseFields()
	seen := make(map[string]struct{}, len(base))

	for _, field := range base {
		seen[field.Placeholder] = struct{}{}
	}

	var sb strings.Builder

	sb.WriteString("## ")
	sb.WriteString(f.class)
	sb.WriteString("\n")

	for _, field := range f.collect(base, seen) {
		sb.WriteString("- ${")
		sb.WriteString(field.Placeholder)
		sb.WriteString("} : ")
		sb.WriteString(field.Description)
		sb.WriteString("\n")
	}

	return sb.String()
}

func baseFields() []Field {
	return []Field{
		{Placeholder: lndl.FieldMessages, Description: "the joined message parts and terminator"},
		{Placeholder: lndl.FieldLoggerName, Description: "the name of the logger"},
		{Placeholder: lndl.FieldLoggerTag, Description: "the tag of the message, blank when unset"},
		{Placeholder: lndl.FieldEnd, Description: "the message terminator"},
		{Placeholder: lndl.FieldSplit, Description: "the separator between message parts"},
	}
}
