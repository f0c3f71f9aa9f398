package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/casereview/internal/casereview"
	"github.com/colonyops/casereview/internal/core/caserecord"
	"github.com/colonyops/casereview/internal/printer"
	"github.com/colonyops/casereview/pkg/iojson"
)

type HandoffCmd struct {
	flags *Flags
	app   *casereview.App

	// flags
	slice      int
	jsonOutput bool
}

// NewHandoffCmd creates a new handoff command.
func NewHandoffCmd(flags *Flags, app *casereview.App) *HandoffCmd {
	return &HandoffCmd{flags: flags, app: app}
}

// Register adds the handoff command to the application.
func (cmd *HandoffCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "handoff",
		Usage: "Pass a case selection to the next review screen",
		Description: `A handoff carries a case id and optionally a 1-based slice index to the
next review screen that opens. It is consumed on first read and expires
after handoff.ttl when nobody reads it.`,
		Commands: []*cli.Command{
			{
				Name:      "put",
				Usage:     "Store a selection handoff",
				UsageText: "casereview handoff put <case-id> [--slice N]",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:        "slice",
						Usage:       "1-based slice to open at",
						Destination: &cmd.slice,
					},
				},
				Action: cmd.runPut,
			},
			{
				Name:      "take",
				Usage:     "Read and consume the pending handoff",
				UsageText: "casereview handoff take [--json]",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "output as JSON", Destination: &cmd.jsonOutput},
				},
				Action: cmd.runTake,
			},
		},
	})

	return app
}

func (cmd *HandoffCmd) runPut(ctx context.Context, c *cli.Command) error {
	id, err := caseIDArg(c)
	if err != nil {
		return err
	}

	h := caserecord.SelectionHandoff{CaseID: id, RequestedSlice: cmd.slice}
	if err := cmd.app.Records.PutSelectionHandoff(ctx, h); err != nil {
		return fmt.Errorf("store handoff: %w", err)
	}

	p := printer.Ctx(ctx)
	if h.HasSlice() {
		p.Successf("Handoff stored for %s at slice %d", id, h.RequestedSlice)
	} else {
		p.Successf("Handoff stored for %s", id)
	}
	return nil
}

func (cmd *HandoffCmd) runTake(ctx context.Context, c *cli.Command) error {
	h, ok := cmd.app.Records.TakeSelectionHandoff(ctx)

	if cmd.jsonOutput {
		if !ok {
			return iojson.WriteLine(c.Root().Writer, nil)
		}
		return iojson.WriteLine(c.Root().Writer, h)
	}

	p := printer.Ctx(ctx)
	if !ok {
		p.Infof("No pending handoff")
		return nil
	}
	p.Field("Case", h.CaseID)
	if h.HasSlice() {
		p.Field("Slice", fmt.Sprint(h.RequestedSlice))
	}
	return nil
}
