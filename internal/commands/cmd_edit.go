package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/casereview/internal/casereview"
	"github.com/colonyops/casereview/internal/core/caserecord"
	"github.com/colonyops/casereview/internal/core/host"
	"github.com/colonyops/casereview/internal/core/styles"
	"github.com/colonyops/casereview/internal/printer"
	"github.com/colonyops/casereview/internal/review/edit"
)

type EditCmd struct {
	flags *Flags
	app   *casereview.App

	// flags
	yes bool
}

// NewEditCmd creates a new edit command.
func NewEditCmd(flags *Flags, app *casereview.App) *EditCmd {
	return &EditCmd{flags: flags, app: app}
}

// Register adds the edit command to the application.
func (cmd *EditCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "edit",
		Usage:     "Edit a case record in a form",
		UsageText: "casereview edit <case-id> [--yes]",
		Description: `Opens a form with the case's status, description and remarks. Submitting
saves all three; aborting with unsaved changes asks before discarding.

Use 'casereview record set' for non-interactive updates.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "yes",
				Aliases:     []string{"y"},
				Usage:       "discard unsaved changes on abort without asking",
				Destination: &cmd.yes,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *EditCmd) run(ctx context.Context, c *cli.Command) error {
	id, err := caseIDArg(c)
	if err != nil {
		return err
	}
	if !isInteractive() {
		return errors.New("edit needs a terminal; use 'casereview record set' instead")
	}

	session := edit.New(cmd.app.Records, edit.WithExitGuard(cmd.app.Bus))
	defer session.Close()

	saved, err := editLoop(ctx, session, cmd.app.Records.Get(ctx, id), runEditForm, confirmer(cmd.yes))
	if err != nil {
		return err
	}

	p := printer.Ctx(ctx)
	if saved == nil {
		p.Infof("Edit discarded")
		return nil
	}
	p.Successf("Saved %s (%s)", id, saved.Status)
	return nil
}

// formFunc shows the editable buffer and returns the submitted values, or
// huh.ErrUserAborted.
type formFunc func(edit.Buffer) (edit.Buffer, error)

// editLoop drives one edit session: the form is shown until it is
// submitted and saved, or aborted and the discard confirmed. It returns the
// saved record, or nil when the edit was discarded.
func editLoop(ctx context.Context, s *edit.Session, rec caserecord.Record, form formFunc, confirm host.Confirmer) (*caserecord.Record, error) {
	buf, err := s.Begin(rec)
	if err != nil {
		return nil, err
	}

	for {
		next, formErr := form(buf)
		if formErr != nil && !errors.Is(formErr, huh.ErrUserAborted) {
			return nil, fmt.Errorf("form: %w", formErr)
		}

		if err := applyBuffer(s, buf, next); err != nil {
			return nil, err
		}
		buf, _ = s.Buffer()

		if errors.Is(formErr, huh.ErrUserAborted) {
			if s.Cancel(ctx, confirm) {
				return nil, nil
			}
			continue
		}

		saved, err := s.Save(ctx)
		if err != nil {
			return nil, err
		}
		return &saved, nil
	}
}

func applyBuffer(s *edit.Session, prev, next edit.Buffer) error {
	if next.Status != prev.Status {
		if err := s.Update(edit.FieldStatus, next.Status.String()); err != nil {
			return err
		}
	}
	if next.Description != prev.Description {
		if err := s.Update(edit.FieldDescription, next.Description); err != nil {
			return err
		}
	}
	if next.Remarks != prev.Remarks {
		if err := s.Update(edit.FieldRemarks, next.Remarks); err != nil {
			return err
		}
	}
	return nil
}

func runEditForm(buf edit.Buffer) (edit.Buffer, error) {
	out := buf
	err := huh.NewForm(huh.NewGroup(
		statusSelect(&out.Status),
		huh.NewInput().
			Title("Description").
			Value(&out.Description),
		huh.NewText().
			Title("Remarks").
			Description("Notes for the next reviewer").
			Value(&out.Remarks),
	)).WithTheme(styles.FormTheme()).Run()
	return out, err
}
