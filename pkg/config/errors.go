package config

import "github.com/hyp3rd/ewrap"

var (
	// ErrNotConfigured is returned when no definition with the requested name
	// was ever read.
	ErrNotConfigured = ewrap.New("not configured")
	// ErrUnavailable is returned when a definition with the requested name was
	// read but could not be resolved.
	ErrUnavailable = ewrap.New("not available")
	// ErrInvalidDocument is returned when a document section has the wrong shape.
	ErrInvalidDocument = ewrap.New("invalid configuration document")
	// ErrClassRegistered is returned when a class name is registered twice.
	ErrClassRegistered = ewrap.New("class already registered")
)
