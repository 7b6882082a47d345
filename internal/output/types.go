package output

import (
	"strings"

	"github.com/hyp3rd/ewrap"
)

// Writer is an interface for log output writers.
type Writer interface {
	// Write writes the given bytes to the underlying output.
	Write(p []byte) (n int, err error)
	// Sync ensures that all data has been written.
	Sync() error
	// Close closes the writer and releases any resources.
	Close() error
}

// ColorMode determines how colors are handled.
type ColorMode int

const (
	// ColorModeAuto keeps colours only when the output is a terminal.
	ColorModeAuto ColorMode = iota
	// ColorModeAlways keeps colours regardless of the output.
	ColorModeAlways
	// ColorModeNever strips every colour sequence.
	ColorModeNever
)

// String returns the configuration name of the mode.
func (m ColorMode) String() string {
	switch m {
	case ColorModeAlways:
		return "always"
	case ColorModeNever:
		return "never"
	default:
		return "auto"
	}
}

// ParseColorMode parses auto, always or never. An empty string is auto.
func ParseColorMode(value string) (ColorMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "auto":
		return ColorModeAuto, nil
	case "always", "force":
		return ColorModeAlways, nil
	case "never", "off", "none":
		return ColorModeNever, nil
	default:
		return ColorModeAuto, ewrap.Wrap(ErrInvalidColorMode, "parsing colour mode").WithMetadata("mode", value)
	}
}
