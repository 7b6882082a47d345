package main

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/hyp3rd/ewrap"
	"github.com/urfave/cli/v3"

	"github.com/hyp3rd/lndl/internal/constants"
	"github.com/hyp3rd/lndl/pkg/config"
	"github.com/hyp3rd/lndl/pkg/configloader"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			Background(lipgloss.Color("235")).
			Padding(0, 1).
			Margin(0, 0, 1, 0)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("32"))

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	reasonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	summaryStyle = lipgloss.NewStyle().
			Bold(true).
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Margin(1, 0, 0, 0)
)

// errCheckFailed is returned by check when some definition did not resolve.
var errCheckFailed = ewrap.New("configuration has unresolved definitions")

// CheckCommand resolves a configuration document and reports every definition.
func CheckCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Resolve a configuration document and report what was built",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "Re-check whenever the document changes",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			storage, settings, report, err := loadStorage(c)
			if err != nil {
				return err
			}

			defer storage.Shutdown() //nolint:errcheck

			fmt.Fprint(c.Root().Writer, renderReport(settings.Config, report))

			if !c.Bool("watch") && !settings.Watch {
				if !report.OK() {
					return errCheckFailed
				}

				return nil
			}

			return watchDocument(ctx, c.Root().Writer, settings.Config, storage)
		},
	}
}

func watchDocument(ctx context.Context, out io.Writer, path string, storage *config.Storage) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(out, "Watching %s for changes. Press Ctrl+C to stop.\n", path)

	return configloader.Watch(ctx, path, storage, func(report config.Report, err error) {
		if err != nil {
			fmt.Fprintln(out, failStyle.Render("reload failed: "+err.Error()))

			return
		}

		fmt.Fprint(out, renderReport(path, report))
	})
}

func renderReport(path string, report config.Report) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("lndl check " + path))
	b.WriteString("\n")

	resolved, failed := 0, 0

	for _, section := range constants.Sections() {
		names := report.Resolved[section]
		failures := report.Failures[section]

		if len(names) == 0 && len(failures) == 0 {
			continue
		}

		b.WriteString(sectionStyle.Render(section.String()))
		b.WriteString("\n")

		for _, name := range slices.Sorted(slices.Values(names)) {
			b.WriteString("  " + okStyle.Render("✓ "+name) + "\n")
		}

		for _, name := range slices.Sorted(maps.Keys(failures)) {
			b.WriteString("  " + failStyle.Render("✗ "+name) + " " + reasonStyle.Render(failures[name].Reason) + "\n")
		}

		resolved += len(names)
		failed += len(failures)
	}

	summary := fmt.Sprintf("%d resolved, %d failed", resolved, failed)
	if failed > 0 {
		b.WriteString(summaryStyle.BorderForeground(lipgloss.Color("196")).Render(summary))
	} else {
		b.WriteString(summaryStyle.BorderForeground(lipgloss.Color("32")).Render(summary))
	}

	b.WriteString("\n")

	return b.String()
}
