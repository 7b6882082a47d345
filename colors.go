package lndl

//nolint:revive // Pointless to comment the colors.
const (
	// ANSI color codes for terminal output.

	// Regular colors.

	Black   = "\x1b[0;30m"
	Red     = "\x1b[0;31m"
	Green   = "\x1b[0;32m"
	Yellow  = "\x1b[0;33m"
	Blue    = "\x1b[0;34m"
	Magenta = "\x1b[0;35m"
	Cyan    = "\x1b[0;36m"
	White   = "\x1b[0;37m"

	// Bold colors.

	BoldRed    = "\x1b[1;31m"
	BoldYellow = "\x1b[1;33m"

	// Backgrounds.

	RedBackground = "\x1b[0;41m"

	// Reset resets the terminal's color settings.
	Reset = "\x1b[0m"
)

// DefaultLevelColors returns a map of log levels to their default ANSI color codes.
// NOTSET maps to an empty color, which colour stages treat as "leave as is".
func DefaultLevelColors() map[Level]string {
	return map[Level]string{
		NotSetLevel: "",
		TraceLevel:  Blue,
		FineLevel:   Green,
		DebugLevel:  Cyan,
		InfoLevel:   White,
		WarnLevel:   Yellow,
		ErrorLevel:  Red,
		FatalLevel:  RedBackground,
	}
}

// ColorFor returns the color for level from colors using the nearest level at
// or below it. It returns an empty string when no entry qualifies.
func ColorFor(colors map[Level]string, level Level) string {
	best, found := Level(0), false

	for candidate := range colors {
		if candidate <= level && (!found || candidate > best) {
			best, found = candidate, true
		}
	}

	if !found {
		return ""
	}

	return colors[best]
}
