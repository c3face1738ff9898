package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

const AppName = "spectrace"

type App struct {
	logger zerolog.Logger
	cli    *cli.App
}

func New() *App {

	// Set default log level to info
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	logger :=
		log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339Nano,
		})

	app := &App{
		logger: logger,
		cli: &cli.App{
			Name:  AppName,
			Usage: "Decompile binaries with Ghidra's headless analyzer",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "verbose",
					Usage: "Enable verbose (debug) logging",
				},
			},
			Before: func(ctx *cli.Context) error {
				if ctx.Bool("verbose") {
					zerolog.SetGlobalLevel(zerolog.DebugLevel)
				}
				return nil
			},
		},
	}
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:      "analyze",
		Usage:     "Run a full analysis of a binary and print the results",
		ArgsUsage: "BINARY",
		Action:    app.analyze,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "arch",
				Usage: "Processor/language hint passed to the analyzer (e.g. x86:LE:64:default)",
			},
			&cli.IntFlag{
				Name:  "timeout",
				Usage: "Analysis timeout in seconds (default: 300)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Emit the full result as JSON on stdout",
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Write assembly, decompiled code and metadata files into this directory",
			},
		},
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:      "validate",
		Usage:     "Pre-flight check a binary without analyzing it",
		ArgsUsage: "BINARY",
		Action:    app.validateBinary,
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:   "doctor",
		Usage:  "Check the Ghidra installation and Java runtime detection",
		Action: app.doctor,
	})
	return app
}

func (a *App) Run(args []string) error {
	return a.cli.Run(args)
}

// SetVersion sets the version information for the CLI application
func (a *App) SetVersion(version, commit, date string) {
	a.cli.Version = version
	if commit != "none" && commit != "" {
		a.cli.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit[:8], date)
	}
}
