package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/casereview/internal/casereview"
	"github.com/colonyops/casereview/internal/core/caserecord"
	"github.com/colonyops/casereview/internal/core/styles"
	"github.com/colonyops/casereview/internal/printer"
	"github.com/colonyops/casereview/internal/review/guard"
)

// Exit code for a leave that the status guard held.
const exitBlocked = 2

type GuardCmd struct {
	flags *Flags
	app   *casereview.App

	// flags
	patient string
	anyway  bool
	status  string
}

// NewGuardCmd creates a new guard command.
func NewGuardCmd(flags *Flags, app *casereview.App) *GuardCmd {
	return &GuardCmd{flags: flags, app: app}
}

// Register adds the guard command to the application.
func (cmd *GuardCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "guard",
		Usage: "Check and resolve the leave-case status guard",
		Description: `A case marked In Progress cannot be left silently: the reviewer either
sets a final status or leaves anyway, which resets the case to Pending.`,
		Commands: []*cli.Command{
			{
				Name:      "check",
				Usage:     "Report whether a case may be left",
				UsageText: "casereview guard check <case-id>",
				Description: `Prints the decision. Exits 2 when leaving is blocked.`,
				Action: cmd.runCheck,
			},
			{
				Name:      "leave",
				Usage:     "Leave a case, resolving the guard",
				UsageText: "casereview guard leave <case-id> [--patient ID] [--anyway | --status S]",
				Description: `Leaves the case and prints the destination. When the guard blocks,
--anyway resets the case to Pending and leaves, and --status sets the given
status first. Without either, an interactive prompt offers both paths; with
no terminal the command exits 2.`,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "patient", Aliases: []string{"p"}, Usage: "patient id for the folder route", Destination: &cmd.patient},
					&cli.BoolFlag{Name: "anyway", Usage: "leave without resolving, resetting to Pending", Destination: &cmd.anyway},
					&cli.StringFlag{Name: "status", Aliases: []string{"s"}, Usage: "status to set before leaving", Destination: &cmd.status},
				},
				Action: cmd.runLeave,
			},
		},
	})

	return app
}

func (cmd *GuardCmd) runCheck(ctx context.Context, c *cli.Command) error {
	id, err := caseIDArg(c)
	if err != nil {
		return err
	}

	rec := cmd.app.Records.Get(ctx, id)
	p := printer.Ctx(ctx)
	p.Field("Status", styles.StatusBadge(rec.Status))

	if guard.RequestLeave(rec) == guard.Block {
		p.Warnf("%s: %s", guard.BlockTitle, guard.BlockBody)
		return cli.Exit("", exitBlocked)
	}
	p.Successf("Leaving is allowed")
	return nil
}

type leaveChoice int

const (
	choiceStay leaveChoice = iota
	choiceAnyway
	choiceUpdate
)

func (cmd *GuardCmd) runLeave(ctx context.Context, c *cli.Command) error {
	id, err := caseIDArg(c)
	if err != nil {
		return err
	}
	if cmd.anyway && c.IsSet("status") {
		return errors.New("--anyway and --status are mutually exclusive")
	}

	dest, err := cmd.flags.Config.LeaveDestination(cmd.patient)
	if err != nil {
		return err
	}

	g := guard.New(cmd.app.Records, printNavigator(), id, dest)
	d, err := g.Leave(ctx)
	if err != nil || d == guard.Allow {
		return err
	}

	p := printer.Ctx(ctx)
	choice := choiceStay
	var status caserecord.Status
	switch {
	case cmd.anyway:
		choice = choiceAnyway
	case c.IsSet("status"):
		if status, err = caserecord.ParseStatus(cmd.status); err != nil {
			return err
		}
		choice = choiceUpdate
	case isInteractive():
		if choice, status, err = promptLeave(); err != nil {
			return err
		}
	}

	switch choice {
	case choiceAnyway:
		_, err := g.LeaveAnyway(ctx)
		return err
	case choiceUpdate:
		if _, err := g.UpdateStatusNow(ctx); err != nil {
			return err
		}
		if err := g.Choose(status); err != nil {
			return err
		}
		d, err := g.ConfirmStatus(ctx)
		if err != nil {
			return err
		}
		if d == guard.Block {
			p.Warnf("%s is still %s; staying on the case", id, status)
			return cli.Exit("", exitBlocked)
		}
		return nil
	default:
		_ = g.Dismiss()
		p.Warnf("%s: %s", guard.BlockTitle, guard.BlockBody)
		return cli.Exit("", exitBlocked)
	}
}

func promptLeave() (leaveChoice, caserecord.Status, error) {
	var (
		choice leaveChoice
		status = caserecord.StatusComplete
	)

	err := huh.NewForm(huh.NewGroup(
		huh.NewSelect[leaveChoice]().
			Title(guard.BlockTitle).
			Description(guard.BlockBody).
			Options(
				huh.NewOption("Update Status Now", choiceUpdate),
				huh.NewOption("Leave Anyway (reset to Pending)", choiceAnyway),
				huh.NewOption("Stay on this case", choiceStay),
			).
			Value(&choice),
	)).WithTheme(styles.FormTheme()).Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return choiceStay, "", nil
		}
		return choiceStay, "", fmt.Errorf("prompt: %w", err)
	}
	if choice != choiceUpdate {
		return choice, "", nil
	}

	err = huh.NewForm(huh.NewGroup(statusSelect(&status))).WithTheme(styles.FormTheme()).Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return choiceStay, "", nil
		}
		return choiceStay, "", fmt.Errorf("prompt: %w", err)
	}
	return choiceUpdate, status, nil
}

func statusSelect(value *caserecord.Status) *huh.Select[caserecord.Status] {
	opts := make([]huh.Option[caserecord.Status], 0, len(caserecord.Statuses()))
	for _, s := range caserecord.Statuses() {
		opts = append(opts, huh.NewOption(styles.StatusIcon(s)+" "+s.String(), s))
	}
	return huh.NewSelect[caserecord.Status]().
		Title("Status").
		Options(opts...).
		Value(value)
}
