package output

import (
	"github.com/hyp3rd/ewrap"
)

// Common errors for the output package.
var (
	// ErrNoTarget is returned when a file writer is used before Open.
	ErrNoTarget = ewrap.New("file writer has no target")

	// ErrInvalidColorMode is returned for an unknown colour mode name.
	ErrInvalidColorMode = ewrap.New("invalid colour mode")

	// ErrCompressionFailed is returned when a compression operation fails.
	ErrCompressionFailed = ewrap.New("compression failed")
)
