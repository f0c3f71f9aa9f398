package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/casereview/internal/casereview"
	"github.com/colonyops/casereview/internal/commands"
	"github.com/colonyops/casereview/internal/core/config"
	"github.com/colonyops/casereview/internal/core/styles"
	"github.com/colonyops/casereview/internal/printer"
	"github.com/colonyops/casereview/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx := context.Background()

	var (
		logCloser func()
		caseApp   = &casereview.App{}
		opened    bool
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "casereview",
		Usage:     "Review imaging cases and track their review status",
		UsageText: "casereview [global options] command [command options]",
		Description: `casereview keeps a per-case review record (status, description, remarks)
next to a slice viewer for the case's study.

Run 'casereview' with a case id to open the interactive review screen.
Run 'casereview record' to read and update records from scripts.`,
		Version: build(),
		Writer:  os.Stdout,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("CASEREVIEW_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/casereview.log)",
				Sources:     cli.EnvVars("CASEREVIEW_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("CASEREVIEW_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("CASEREVIEW_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
		},
		// Exit codes are applied in main once After has released the store.
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// Always log to a file; use explicit path or default to <datadir>/casereview.log
			logFile := flags.LogFile
			if logFile == "" {
				logFile = filepath.Join(flags.DataDir, "casereview.log")
			}

			logger, closer, err := logutils.New(flags.LogLevel, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			// Apply configured theme (validation ensures name is valid)
			palette, _ := styles.GetPalette(cfg.TUI.Theme)
			styles.SetTheme(palette)

			a, err := casereview.Open(ctx, cfg)
			if err != nil {
				return ctx, fmt.Errorf("open records: %w", err)
			}

			// Populate the pre-allocated App struct (commands already hold a pointer to it)
			*caseApp = *a
			opened = true

			return printer.WithPrinter(ctx, printer.New(c.Root().Writer)), nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if opened {
				if err := caseApp.Close(); err != nil {
					log.Error().Err(err).Msg("failed to close records")
					return err
				}
			}

			// Close log file
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	reviewCmd := commands.NewReviewCmd(flags, caseApp)

	app = reviewCmd.Register(app)
	app = commands.NewRecordCmd(flags, caseApp).Register(app)
	app = commands.NewEditCmd(flags, caseApp).Register(app)
	app = commands.NewGuardCmd(flags, caseApp).Register(app)
	app = commands.NewHandoffCmd(flags, caseApp).Register(app)
	app = commands.NewSliceCmd(flags).Register(app)
	app = commands.NewConfigValidateCmd(flags).Register(app)

	// Register review flags on root command
	app.Flags = append(app.Flags, reviewCmd.Flags()...)

	// Open the review screen when no subcommand is provided
	app.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 1 {
			return fmt.Errorf("unknown command %q. Run 'casereview --help' for usage", c.Args().First())
		}
		return reviewCmd.Run(ctx, c)
	}

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		var coder cli.ExitCoder
		if errors.As(runErr, &coder) {
			exitCode = coder.ExitCode()
			if msg := runErr.Error(); msg != "" {
				fmt.Fprintln(os.Stderr, msg)
			}
		} else {
			fmt.Println()
			fmt.Println(runErr.Error())
			exitCode = 1
		}
	}

	os.Exit(exitCode)
}
