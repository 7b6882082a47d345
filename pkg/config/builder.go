package config

import (
	"maps"

	"github.com/hyp3rd/lndl"
	"github.com/hyp3rd/lndl/internal/constants"
)

// DocumentBuilder provides a fluent API for constructing configuration
// documents in code. It allows for more readable and chainable setup than
// nested map literals.
type DocumentBuilder struct {
	doc Document
}

// NewDocumentBuilder creates an empty builder.
func NewDocumentBuilder() *DocumentBuilder {
	return &DocumentBuilder{
		doc: Document{
			Formatters: Section{},
			Outputs:    Section{},
			Loggers:    Section{},
		},
	}
}

// WithFormatter adds a formatter definition.
// Example: builder.WithFormatter("main", formatter.ClassMain, nil).
func (b *DocumentBuilder) WithFormatter(name, class string, params map[string]any, subs ...string) *DocumentBuilder {
	def := definition(params)
	def[constants.KeyClass] = class

	if len(subs) > 0 {
		def[constants.KeySubFormatter] = append([]string(nil), subs...)
	}

	b.doc.Formatters[name] = def

	return b
}

// WithOutput adds an output definition rendering through the named formatter.
// An empty formatter name selects the class default.
// Example: builder.WithOutput("console", outstream.ClassStdio, "main", nil).
func (b *DocumentBuilder) WithOutput(name, class, formatterName string, params map[string]any) *DocumentBuilder {
	def := definition(params)
	def[constants.KeyClass] = class

	if formatterName != "" {
		def[constants.KeyFormatter] = formatterName
	}

	b.doc.Outputs[name] = def

	return b
}

// WithOutputLevel sets the threshold of an output added earlier.
func (b *DocumentBuilder) WithOutputLevel(name string, level lndl.Level) *DocumentBuilder {
	if def, ok := b.doc.Outputs[name]; ok {
		def[constants.KeyLevel] = int(level)
	}

	return b
}

// WithLogger adds a logger definition writing to the named outputs.
// Example: builder.WithLogger("app", lndl.InfoLevel, "console").
func (b *DocumentBuilder) WithLogger(name string, level lndl.Level, outputs ...string) *DocumentBuilder {
	b.doc.Loggers[name] = Definition{
		constants.KeyLevel:   int(level),
		constants.KeyOutputs: append([]string{}, outputs...),
	}

	return b
}

// WithLoggerTag sets the default tag of a logger added earlier.
func (b *DocumentBuilder) WithLoggerTag(name, tag string) *DocumentBuilder {
	if def, ok := b.doc.Loggers[name]; ok {
		def[constants.KeyTag] = tag
	}

	return b
}

// WithLoggerCaller toggles call-site capture of a logger added earlier.
func (b *DocumentBuilder) WithLoggerCaller(name string, capture bool) *DocumentBuilder {
	if def, ok := b.doc.Loggers[name]; ok {
		def[constants.KeyCaptureCaller] = capture
	}

	return b
}

// Build returns a copy of the document built so far.
func (b *DocumentBuilder) Build() Document {
	return b.doc.Clone()
}

func definition(params map[string]any) Definition {
	def := make(Definition, len(params)+1)
	maps.Copy(def, params)

	return def
}
