package config

import (
	"maps"
	"slices"

	"github.com/hyp3rd/ewrap"
	"github.com/spf13/cast"

	"github.com/hyp3rd/lndl/internal/constants"
)

// Definition is the parameter map of one formatter, output or logger.
type Definition map[string]any

// Section maps entity names to their definitions.
type Section map[string]Definition

// Document is a configuration document. Section names are case sensitive.
type Document struct {
	Formatters Section `json:"Formatter" mapstructure:"Formatter" toml:"Formatter" yaml:"Formatter"`
	Outputs    Section `json:"Outstream" mapstructure:"Outstream" toml:"Outstream" yaml:"Outstream"`
	Loggers    Section `json:"Logger"    mapstructure:"Logger"    toml:"Logger"    yaml:"Logger"`
}

// Failure records a definition that could not be resolved.
type Failure struct {
	Definition Definition
	Reason     string
}

// DocumentFromMap converts a decoded document into a Document. Unknown
// top-level keys are ignored; a known section that is not a map of maps is an
// error.
func DocumentFromMap(raw map[string]any) (Document, error) {
	var doc Document

	for _, section := range constants.Sections() {
		value, ok := raw[section.String()]
		if !ok || value == nil {
			continue
		}

		parsed, err := sectionFromValue(section, value)
		if err != nil {
			return Document{}, err
		}

		*doc.section(section) = parsed
	}

	return doc, nil
}

func sectionFromValue(section constants.Section, value any) (Section, error) {
	entries, err := cast.ToStringMapE(value)
	if err != nil {
		return nil, ewrap.Wrap(ErrInvalidDocument, "section is not a map").WithMetadata("section", section.String())
	}

	parsed := make(Section, len(entries))

	for name, entry := range entries {
		if entry == nil {
			parsed[name] = Definition{}

			continue
		}

		def, err := cast.ToStringMapE(entry)
		if err != nil {
			return nil, ewrap.Wrap(ErrInvalidDocument, "definition is not a map").
				WithMetadata("section", section.String()).
				WithMetadata("name", name)
		}

		parsed[name] = def
	}

	return parsed, nil
}

// Section returns the named section, nil for an unknown name.
func (d *Document) Section(section constants.Section) Section {
	ptr := d.section(section)
	if ptr == nil {
		return nil
	}

	return *ptr
}

func (d *Document) section(section constants.Section) *Section {
	switch section {
	case constants.SectionFormatter:
		return &d.Formatters
	case constants.SectionOutstream:
		return &d.Outputs
	case constants.SectionLogger:
		return &d.Loggers
	default:
		return nil
	}
}

// Clone returns a copy whose definitions can be modified without touching d.
func (d Document) Clone() Document {
	return Document{
		Formatters: d.Formatters.Clone(),
		Outputs:    d.Outputs.Clone(),
		Loggers:    d.Loggers.Clone(),
	}
}

// Clone copies the section and every definition map.
func (s Section) Clone() Section {
	if s == nil {
		return nil
	}

	clone := make(Section, len(s))
	for name, def := range s {
		clone[name] = maps.Clone(def)
	}

	return clone
}

// Names returns the entity names in sorted order.
func (s Section) Names() []string {
	return slices.Sorted(maps.Keys(s))
}

// without returns a copy of d minus keys.
func (d Definition) without(keys ...string) map[string]any {
	params := make(map[string]any, len(d))

	for key, value := range d {
		if !slices.Contains(keys, key) {
			params[key] = value
		}
	}

	return params
}

// lookup returns the value of key, treating explicit nulls as absent.
func (d Definition) lookup(key string) (any, bool) {
	value, ok := d[key]
	if !ok || value == nil {
		return nil, false
	}

	return value, true
}
