package outstream

import (
	"time"

	"github.com/hyp3rd/ewrap"

	"github.com/hyp3rd/lndl"
	"github.com/hyp3rd/lndl/internal/output"
	"github.com/hyp3rd/lndl/pkg/formatter"
)

// Built-in output classes.
const (
	ClassStdio     = "StdioOutputStream"
	ClassFileCache = "FileCacheOutputStream"
)

// ErrUnknownClass is returned by Build for a class that is not built in.
var ErrUnknownClass = ewrap.New("unknown output class")

// Dependencies are the resolved collaborators of an output definition.
type Dependencies struct {
	// Formatter is the referenced formatter, nil for the class default.
	Formatter *formatter.Formatter
	// Level is the parsed threshold.
	Level lndl.Level
	// Hooks receives deferred flushes of buffered outputs.
	Hooks *lndl.ShutdownHooks
}

// Builder constructs an output of one class from its name, its
// class-specific parameters and its resolved dependencies.
type Builder func(name string, params map[string]any, deps Dependencies) (lndl.Sink, error)

type stdioParams struct {
	ColorMode string `mapstructure:"color_mode"`
	Stdout    string `mapstructure:"stdout"`
	Stderr    string `mapstructure:"stderr"`
}

type fileParams struct {
	FileName             string `mapstructure:"file_name"`
	FilePath             string `mapstructure:"file_path"`
	FlushCountLimit      int    `mapstructure:"flush_count_limit"`
	FileSwap             bool   `mapstructure:"file_swap"`
	FileSwapNameTemplate string `mapstructure:"file_swap_name_template"`
	FileSizeLimit        int64  `mapstructure:"file_size_limit"`
	FileTimeLimit        int64  `mapstructure:"file_time_limit"`
	FileSwapOnBoth       bool   `mapstructure:"file_swap_on_both"`
	Compress             bool   `mapstructure:"compress"`
}

// Builtins returns a fresh map of the built-in classes.
func Builtins() map[string]Builder {
	return map[string]Builder{
		ClassStdio:     buildStdio,
		ClassFileCache: buildFileCache,
	}
}

// Build constructs a built-in class.
func Build(class, name string, params map[string]any, deps Dependencies) (lndl.Sink, error) {
	builder, ok := Builtins()[class]
	if !ok {
		return nil, ewrap.Wrap(ErrUnknownClass, "building output").WithMetadata("class", class)
	}

	return builder(name, params, deps)
}

func buildStdio(name string, params map[string]any, deps Dependencies) (lndl.Sink, error) {
	var p stdioParams

	err := formatter.DecodeParams(params, &p)
	if err != nil {
		return nil, ewrap.Wrap(err, "building output").WithMetadata("class", ClassStdio)
	}

	mode, err := output.ParseColorMode(p.ColorMode)
	if err != nil {
		return nil, ewrap.Wrap(err, "building output").WithMetadata("class", ClassStdio)
	}

	stdout, err := lndl.OpenStream(p.Stdout, nil)
	if err != nil {
		return nil, ewrap.Wrap(err, "building output").WithMetadata("class", ClassStdio)
	}

	stderr, err := lndl.OpenStream(p.Stderr, nil)
	if err != nil {
		_ = output.NewConsoleWriter(stdout, mode).Close()

		return nil, ewrap.Wrap(err, "building output").WithMetadata("class", ClassStdio)
	}

	return NewStdioOutputStream(StdioConfig{
		Name:      name,
		Level:     deps.Level,
		Formatter: deps.Formatter,
		Stdout:    stdout,
		Stderr:    stderr,
		ColorMode: mode,
	}), nil
}

func buildFileCache(name string, params map[string]any, deps Dependencies) (lndl.Sink, error) {
	var p fileParams

	err := formatter.DecodeParams(params, &p)
	if err != nil {
		return nil, ewrap.Wrap(err, "building output").WithMetadata("class", ClassFileCache)
	}

	sink, err := NewFileCacheOutputStream(FileConfig{
		Name:             name,
		Level:            deps.Level,
		Formatter:        deps.Formatter,
		FileName:         p.FileName,
		FilePath:         p.FilePath,
		FlushCountLimit:  p.FlushCountLimit,
		FileSwap:         p.FileSwap,
		SwapNameTemplate: p.FileSwapNameTemplate,
		SizeLimitKiB:     p.FileSizeLimit,
		TimeLimit:        time.Duration(p.FileTimeLimit) * time.Second,
		SwapOnBoth:       p.FileSwapOnBoth,
		Compress:         p.Compress,
		Hooks:            deps.Hooks,
	})
	if err != nil {
		return nil, ewrap.Wrap(err, "building output").WithMetadata("class", ClassFileCache)
	}

	return sink, nil
}
