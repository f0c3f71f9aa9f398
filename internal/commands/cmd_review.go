package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/casereview/internal/casereview"
	"github.com/colonyops/casereview/internal/printer"
	"github.com/colonyops/casereview/internal/review"
	"github.com/colonyops/casereview/internal/review/viewport"
	"github.com/colonyops/casereview/internal/tui"
)

type ReviewCmd struct {
	flags *Flags
	app   *casereview.App

	// flags
	slice   int
	patient string
	files   []string
}

// NewReviewCmd creates a new review command.
func NewReviewCmd(flags *Flags, app *casereview.App) *ReviewCmd {
	return &ReviewCmd{flags: flags, app: app}
}

// Flags returns the review flags so the root command can accept them when
// review runs as the default action. They are local so subcommands keep
// their own --slice and --patient.
func (cmd *ReviewCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "slice",
			Usage:       "1-based slice to open at (overrides a pending handoff)",
			Destination: &cmd.slice,
			Local:       true,
		},
		&cli.StringFlag{
			Name:        "patient",
			Aliases:     []string{"p"},
			Usage:       "patient id used for the folder route on leave",
			Destination: &cmd.patient,
			Local:       true,
		},
		&cli.StringSliceFlag{
			Name:        "file",
			Usage:       "study file used to size the slice track (repeatable)",
			Destination: &cmd.files,
			Local:       true,
		},
	}
}

// Register adds the review command to the application.
func (cmd *ReviewCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "review",
		Usage:     "Open the interactive review screen for a case",
		UsageText: "casereview review [case-id] [--slice N] [--patient ID] [--file PATH...]",
		Description: `Opens the case viewer. Without a case id the pending selection handoff
chooses the case and its starting slice. Leaving the case prints the
destination route; a case left In Progress is held by the status guard.`,
		Flags:  cmd.Flags(),
		Action: cmd.Run,
	})

	return app
}

// Run opens the review screen. Exported for use as the default command.
func (cmd *ReviewCmd) Run(ctx context.Context, c *cli.Command) error {
	if !isInteractive() {
		return errors.New("review needs a terminal; use 'casereview record' for scripted access")
	}

	files, err := statFiles(cmd.files)
	if err != nil {
		return err
	}

	deps := review.Deps{
		Records: cmd.app.Records,
		Bus:     cmd.app.Bus,
		Config:  cmd.app.Config,
	}
	entry := review.Entry{
		CaseID:    c.Args().First(),
		PatientID: cmd.patient,
		Slice:     cmd.slice,
		Files:     files,
	}

	m, err := tui.New(ctx, deps, entry)
	if errors.Is(err, review.ErrNoCase) {
		return errors.New("no case given and no pending handoff; pass a case id")
	}
	if err != nil {
		return fmt.Errorf("open review: %w", err)
	}
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}

	if dest := m.Destination(); dest != "" {
		log.Info().Str("case_id", m.Screen().CaseID()).Str("dest", dest).Msg("left case")
		printer.Ctx(ctx).Successf("Navigate to %s", dest)
	}
	return nil
}

// statFiles sizes the named study files from disk.
func statFiles(paths []string) ([]viewport.StudyFile, error) {
	files := make([]viewport.StudyFile, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("study file: %w", err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("study file %s is a directory", p)
		}
		files = append(files, viewport.StudyFile{Name: filepath.Base(p), Size: info.Size()})
	}
	return files, nil
}
