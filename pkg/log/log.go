// Package log provides ready-made loggers for services.
//
// It assembles a configuration document for the environment and service name
// and reads it into a config.Storage:
//
// - In non-production environments: Debug level with coloured console output
// - In production environments: Info level, plain console output and a
//   buffered file output under the log directory
//
// Usage:
//
//	logger, err := log.NewWithDefaults(ctx, "development", "user-service")
//	if err != nil {
//		panic(err)
//	}
//
//	logger.Info("Service started successfully")
//	logger.Tagged("auth").Debugf("user %s authenticated", userID)
//
// The file output is flushed when ctx is done and by the storage shutdown hooks.
package log

import (
	"context"

	"github.com/hyp3rd/ewrap"

	"github.com/hyp3rd/lndl"
	"github.com/hyp3rd/lndl/internal/constants"
	"github.com/hyp3rd/lndl/internal/output"
	"github.com/hyp3rd/lndl/pkg/config"
	"github.com/hyp3rd/lndl/pkg/formatter"
	"github.com/hyp3rd/lndl/pkg/outstream"
)

// DefaultService names the logger when no service is given.
const DefaultService = "app"

// Options select the preset built by New.
type Options struct {
	Environment string
	Service     string
	// LogDir is where production file output goes. Empty means lndl.DefaultLogDir.
	LogDir string
	// ColorMode is auto, always or never. Production treats auto as never.
	ColorMode string
}

// NewWithDefaults creates a logger for service in the shared default storage.
// Non-production environments log at Debug with colours; anything else is
// treated as production.
func NewWithDefaults(ctx context.Context, environment, service string) (*lndl.Logger, error) {
	return New(ctx, config.Default(), Options{Environment: environment, Service: service})
}

// New reads the preset described by opts into storage and returns its logger.
func New(ctx context.Context, storage *config.Storage, opts Options) (*lndl.Logger, error) {
	err := ctx.Err()
	if err != nil {
		return nil, ewrap.Wrap(err, "failed to create logger")
	}

	name := opts.Service
	if name == "" {
		name = DefaultService
	}

	report := storage.ReadConfig(Preset(opts))

	err = report.Err()
	if err != nil {
		return nil, ewrap.Wrap(err, "failed to create logger").WithMetadata("service", name)
	}

	logger, err := storage.Logger(name)
	if err != nil {
		return nil, ewrap.Wrap(err, "failed to create logger").WithMetadata("service", name)
	}

	context.AfterFunc(ctx, func() {
		_ = logger.Flush()
	})

	return logger, nil
}

// Preset returns the document New reads for opts. Entity names are prefixed
// with the service so presets of several services can share a storage.
func Preset(opts Options) config.Document {
	service := opts.Service
	if service == "" {
		service = DefaultService
	}

	logDir := opts.LogDir
	if logDir == "" {
		logDir = lndl.DefaultLogDir
	}

	console := service + ".console"
	builder := config.NewDocumentBuilder()

	if opts.Environment == constants.NonProductionEnvironment {
		return builder.
			WithFormatter(console, formatter.ClassMain, nil).
			WithOutput(console, outstream.ClassStdio, console, map[string]any{
				"color_mode": opts.ColorMode,
			}).
			WithOutputLevel(console, lndl.DebugLevel).
			WithLogger(service, lndl.DebugLevel, console).
			Build()
	}

	plain := service + ".plain"
	file := service + ".file"

	colorMode := opts.ColorMode
	if mode, err := output.ParseColorMode(colorMode); err == nil && mode == output.ColorModeAuto {
		colorMode = output.ColorModeNever.String()
	}

	return builder.
		WithFormatter(plain, formatter.ClassMain, map[string]any{"enable_color": false, "utc": true}).
		WithOutput(console, outstream.ClassStdio, plain, map[string]any{"color_mode": colorMode}).
		WithOutputLevel(console, lndl.InfoLevel).
		WithOutput(file, outstream.ClassFileCache, plain, map[string]any{
			"file_name": service,
			"file_path": logDir,
		}).
		WithOutputLevel(file, lndl.InfoLevel).
		WithLogger(service, lndl.InfoLevel, console, file).
		WithLoggerCaller(service, false).
		Build()
}
