// Command lndl checks logging configuration documents and emits test messages
// through the loggers they define.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/hyp3rd/ewrap"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/hyp3rd/lndl/internal/constants"
	"github.com/hyp3rd/lndl/pkg/config"
	"github.com/hyp3rd/lndl/pkg/configloader"
)

func main() {
	err := newApp().Run(context.Background(), os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "lndl",
		Usage: "Inspect and exercise declarative logging configuration",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Configuration document (YAML or TOML); overrides " + constants.EnvPrefix + "_CONFIG",
			},
			&cli.StringFlag{
				Name:  "settings",
				Usage: "Optional settings file read before the environment",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Dotenv file loaded into the environment when present",
				Value: ".env",
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, loadDotEnv(c.String("env-file"))
		},
		Commands: []*cli.Command{
			CheckCommand(),
			EmitCommand(),
		},
	}
}

func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}

	if _, err := os.Stat(path); err != nil {
		return nil //nolint:nilerr // a missing dotenv file is not an error
	}

	if err := godotenv.Load(path); err != nil {
		return ewrap.Wrap(err, "loading dotenv file").WithMetadata("path", path)
	}

	return nil
}

// loadStorage resolves the settings and reads the configured document into a
// fresh storage.
func loadStorage(c *cli.Command) (*config.Storage, configloader.Settings, config.Report, error) {
	settings, err := configloader.LoadSettings(c.String("settings"), constants.EnvPrefix)
	if err != nil {
		return nil, settings, config.Report{}, ewrap.Wrap(err, "loading settings")
	}

	if path := c.String("config"); path != "" {
		settings.Config = path
	}

	if settings.Config == "" {
		return nil, settings, config.Report{}, ewrap.Newf("no configuration document: use --config or %s_CONFIG", constants.EnvPrefix)
	}

	storage := config.NewStorage()

	report, err := settings.Apply(storage)
	if err != nil {
		return nil, settings, config.Report{}, ewrap.Wrap(err, "loading configuration")
	}

	return storage, settings, report, nil
}
