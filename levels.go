package lndl

import (
	"slices"
	"strconv"
	"strings"

	"github.com/hyp3rd/ewrap"
)

// Level represents the severity of a log message.
//
// The canonical values are intentionally not evenly spaced; they are part of the
// configuration format and must not be renumbered.
type Level int

const (
	// NotSetLevel is the lowest level, every message passes it.
	NotSetLevel Level = 0
	// TraceLevel represents very verbose tracing information.
	TraceLevel Level = 2
	// FineLevel represents fine grained debugging information.
	FineLevel Level = 5
	// DebugLevel represents debugging information.
	DebugLevel Level = 7
	// InfoLevel represents general operational information.
	InfoLevel Level = 10
	// WarnLevel represents warning messages. Messages at or above it are routed
	// to the stderr side of the sinks.
	WarnLevel Level = 30
	// ErrorLevel represents error messages.
	ErrorLevel Level = 50
	// FatalLevel represents fatal error messages.
	FatalLevel Level = 90
)

// Rounding selects how a LevelTable names a value that has no entry of its own.
type Rounding uint8

const (
	// RoundUp names an undefined value after the nearest higher defined level.
	// Values above the highest entry take the highest name.
	RoundUp Rounding = iota
	// RoundDown names an undefined value after the nearest lower defined level.
	// Values below the lowest entry take the lowest name.
	RoundDown
)

// ErrUnknownLevel is returned when a level name is not part of the table.
var ErrUnknownLevel = ewrap.New("unknown log level")

type levelEntry struct {
	level Level
	name  string
}

// LevelTable maps numeric levels to names and back. The zero value is not
// usable; build one with NewLevelTable or use DefaultLevels.
type LevelTable struct {
	entries []levelEntry // ascending by level
	byName  map[string]Level
}

// NewLevelTable builds a table from the given level/name pairs. Names are
// matched case-insensitively on lookup.
func NewLevelTable(names map[Level]string) (*LevelTable, error) {
	if len(names) == 0 {
		return nil, ewrap.New("level table cannot be empty")
	}

	table := &LevelTable{
		entries: make([]levelEntry, 0, len(names)),
		byName:  make(map[string]Level, len(names)),
	}

	for level, name := range names {
		upper := strings.ToUpper(strings.TrimSpace(name))
		if upper == "" {
			return nil, ewrap.New("level name cannot be empty").WithMetadata("level", int(level))
		}

		if _, exists := table.byName[upper]; exists {
			return nil, ewrap.New("duplicate level name").WithMetadata("name", upper)
		}

		table.entries = append(table.entries, levelEntry{level: level, name: upper})
		table.byName[upper] = level
	}

	slices.SortFunc(table.entries, func(a, b levelEntry) int {
		return int(a.level) - int(b.level)
	})

	return table, nil
}

//nolint:gochecknoglobals // immutable after package initialisation.
var defaultLevels = mustLevelTable(map[Level]string{
	NotSetLevel: "NOTSET",
	TraceLevel:  "TRACE",
	FineLevel:   "FINE",
	DebugLevel:  "DEBUG",
	InfoLevel:   "INFO",
	WarnLevel:   "WARN",
	ErrorLevel:  "ERROR",
	FatalLevel:  "FATAL",
})

func mustLevelTable(names map[Level]string) *LevelTable {
	table, err := NewLevelTable(names)
	if err != nil {
		panic(err)
	}

	return table
}

// DefaultLevels returns the canonical level table.
func DefaultLevels() *LevelTable {
	return defaultLevels
}

// Levels returns the defined levels in ascending order.
func (t *LevelTable) Levels() []Level {
	levels := make([]Level, len(t.entries))
	for i, entry := range t.entries {
		levels[i] = entry.level
	}

	return levels
}

// Name returns the name for level, rounding undefined values as requested.
func (t *LevelTable) Name(level Level, rounding Rounding) string {
	if rounding == RoundDown {
		for i := len(t.entries) - 1; i >= 0; i-- {
			if t.entries[i].level <= level {
				return t.entries[i].name
			}
		}

		return t.entries[0].name
	}

	for _, entry := range t.entries {
		if entry.level >= level {
			return entry.name
		}
	}

	return t.entries[len(t.entries)-1].name
}

// Floor returns the nearest defined level at or below level. Values under the
// lowest entry return the lowest entry.
func (t *LevelTable) Floor(level Level) Level {
	for i := len(t.entries) - 1; i >= 0; i-- {
		if t.entries[i].level <= level {
			return t.entries[i].level
		}
	}

	return t.entries[0].level
}

// Parse resolves a level name. WARNING is accepted as an alias of WARN.
func (t *LevelTable) Parse(name string) (Level, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	if upper == "WARNING" {
		upper = "WARN"
	}

	level, ok := t.byName[upper]
	if !ok {
		return 0, ewrap.Wrap(ErrUnknownLevel, "parsing level name").WithMetadata("name", name)
	}

	return level, nil
}

// ParseLevel resolves a level string against the default table. Plain integers
// are accepted as-is.
func ParseLevel(value string) (Level, error) {
	if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
		return Level(n), nil
	}

	return defaultLevels.Parse(value)
}

// String returns the name of the level, rounding undefined values up.
func (l Level) String() string {
	return defaultLevels.Name(l, RoundUp)
}
