package main

import (
	"context"
	"strings"

	"github.com/hyp3rd/ewrap"
	"github.com/urfave/cli/v3"

	"github.com/hyp3rd/lndl"
)

// EmitCommand sends one message through a configured logger and flushes every
// output before exiting.
func EmitCommand() *cli.Command {
	return &cli.Command{
		Name:      "emit",
		Usage:     "Log a message through a configured logger",
		ArgsUsage: "MESSAGE...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "logger",
				Usage: "Logger name; unknown names are cloned from the root logger",
				Value: lndl.DefaultLoggerName,
			},
			&cli.StringFlag{
				Name:  "level",
				Usage: "Level name or number",
				Value: lndl.InfoLevel.String(),
			},
			&cli.StringFlag{
				Name:  "tag",
				Usage: "Tag attached to the message",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			level, err := lndl.ParseLevel(c.String("level"))
			if err != nil {
				return ewrap.Wrap(err, "invalid --level")
			}

			if c.Args().Len() == 0 {
				return ewrap.New("emit needs a message")
			}

			storage, _, report, err := loadStorage(c)
			if err != nil {
				return err
			}

			if !report.OK() {
				storage.Diagnostics().Warnf("configuration loaded with failures: %v", report.Err())
			}

			emit(storage.GetLogger(c.String("logger")), level, c.String("tag"), strings.Join(c.Args().Slice(), " "))

			return storage.Shutdown()
		},
	}
}

func emit(logger *lndl.Logger, level lndl.Level, tag, message string) {
	if tag != "" {
		logger.Tagged(tag).Log(level, message)

		return
	}

	logger.Log(level, message)
}
