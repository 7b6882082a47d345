package constants

// Section names a top-level part of a configuration document.
type Section string

const (
	// SectionFormatter holds the formatter definitions.
	SectionFormatter Section = "Formatter"
	// SectionOutstream holds the output definitions.
	SectionOutstream Section = "Outstream"
	// SectionLogger holds the logger definitions.
	SectionLogger Section = "Logger"
)

// Sections returns the document sections in resolution order.
func Sections() []Section {
	return []Section{SectionFormatter, SectionOutstream, SectionLogger}
}

// IsValid returns true if the given Section is a valid document section, and false otherwise.
func (s Section) IsValid() bool {
	switch s {
	case SectionFormatter, SectionOutstream, SectionLogger:
		return true
	default:
		return false
	}
}

// String returns the string representation of the Section.
func (s Section) String() string {
	return string(s)
}
