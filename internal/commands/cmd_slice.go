package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/casereview/internal/review/viewport"
)

type SliceCmd struct {
	flags *Flags

	// flags
	scrollTop float64
	maxScroll float64
	total     int
	slice     int
}

// NewSliceCmd creates a new slice command.
func NewSliceCmd(flags *Flags) *SliceCmd {
	return &SliceCmd{flags: flags}
}

// Register adds the slice command to the application.
func (cmd *SliceCmd) Register(app *cli.Command) *cli.Command {
	totalFlag := &cli.IntFlag{
		Name:        "total",
		Aliases:     []string{"n"},
		Usage:       "number of slices in the study",
		Required:    true,
		Destination: &cmd.total,
	}
	maxScrollFlag := &cli.FloatFlag{
		Name:        "max-scroll",
		Usage:       "scroll range in pixels (defaults to the configured viewport)",
		Destination: &cmd.maxScroll,
	}

	app.Commands = append(app.Commands, &cli.Command{
		Name:  "slice",
		Usage: "Convert between scroll offsets and slice indices",
		Description: `The review viewport maps a scroll offset in [0, max-scroll] linearly onto
slices 1..total, rounding half up. These commands expose the mapping for
surfaces that drive the viewer from outside.`,
		Commands: []*cli.Command{
			{
				Name:      "from-scroll",
				Usage:     "Slice shown at a scroll offset",
				UsageText: "casereview slice from-scroll --scroll-top PX --total N [--max-scroll PX]",
				Flags: []cli.Flag{
					&cli.FloatFlag{Name: "scroll-top", Usage: "scroll offset in pixels", Required: true, Destination: &cmd.scrollTop},
					maxScrollFlag,
					totalFlag,
				},
				Action: cmd.runFromScroll,
			},
			{
				Name:      "to-scroll",
				Usage:     "Scroll offset that shows a slice",
				UsageText: "casereview slice to-scroll --slice N --total N [--max-scroll PX]",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "slice", Aliases: []string{"s"}, Usage: "1-based slice", Required: true, Destination: &cmd.slice},
					maxScrollFlag,
					totalFlag,
				},
				Action: cmd.runToScroll,
			},
		},
	})

	return app
}

func (cmd *SliceCmd) resolveMaxScroll(c *cli.Command) (float64, error) {
	if cmd.total < 1 {
		return 0, errors.New("--total must be at least 1")
	}
	if c.IsSet("max-scroll") {
		if cmd.maxScroll < 0 {
			return 0, errors.New("--max-scroll cannot be negative")
		}
		return cmd.maxScroll, nil
	}
	return cmd.flags.Config.ViewportOptions().MaxScroll(), nil
}

func (cmd *SliceCmd) runFromScroll(_ context.Context, c *cli.Command) error {
	maxScroll, err := cmd.resolveMaxScroll(c)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.Root().Writer, viewport.SliceFromScroll(cmd.scrollTop, maxScroll, cmd.total))
	return err
}

func (cmd *SliceCmd) runToScroll(_ context.Context, c *cli.Command) error {
	maxScroll, err := cmd.resolveMaxScroll(c)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.Root().Writer, "%g\n", viewport.ScrollFromSlice(cmd.slice, maxScroll, cmd.total))
	return err
}
