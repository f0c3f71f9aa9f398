package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/glamour"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/casereview/internal/casereview"
	"github.com/colonyops/casereview/internal/core/caserecord"
	"github.com/colonyops/casereview/internal/core/styles"
	"github.com/colonyops/casereview/internal/printer"
	"github.com/colonyops/casereview/pkg/iojson"
)

type RecordCmd struct {
	flags *Flags
	app   *casereview.App

	// flags
	jsonOutput  bool
	plain       bool
	status      string
	description string
	remarks     string
	match       string
	name        string
	importer    iojson.FileReader[[]caserecord.Summary]
}

// NewRecordCmd creates a new record command.
func NewRecordCmd(flags *Flags, app *casereview.App) *RecordCmd {
	return &RecordCmd{flags: flags, app: app}
}

// Register adds the record command to the application.
func (cmd *RecordCmd) Register(app *cli.Command) *cli.Command {
	jsonFlag := &cli.BoolFlag{
		Name:        "json",
		Usage:       "output as JSON",
		Destination: &cmd.jsonOutput,
	}
	matchFlag := &cli.StringFlag{
		Name:        "match",
		Aliases:     []string{"m"},
		Usage:       "glob over case ids (e.g. 'CT-2024-*')",
		Destination: &cmd.match,
	}

	app.Commands = append(app.Commands, &cli.Command{
		Name:  "record",
		Usage: "Read and write case review records",
		Description: `Record commands read and write the per-case review record: status,
description and remarks. Every write notifies open review screens and keeps
the case list in sync.

Statuses: Pending, In Progress, Complete, Follow Up. The identifier
spelling (InProgress) is accepted too.`,
		Commands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "Show a case record",
				UsageText: "casereview record get <case-id> [--json] [--plain]",
				Flags: []cli.Flag{
					jsonFlag,
					&cli.BoolFlag{
						Name:        "plain",
						Usage:       "print fields without markdown rendering",
						Destination: &cmd.plain,
					},
				},
				Action: cmd.runGet,
			},
			{
				Name:      "set",
				Usage:     "Update fields of a case record",
				UsageText: "casereview record set <case-id> [--status S] [--description D] [--remarks R]",
				Description: `Only the fields given are written; everything else in the stored
record is kept.`,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "status", Aliases: []string{"s"}, Usage: "review status", Destination: &cmd.status},
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "case description", Destination: &cmd.description},
					&cli.StringFlag{Name: "remarks", Aliases: []string{"r"}, Usage: "reviewer remarks", Destination: &cmd.remarks},
					jsonFlag,
				},
				Action: cmd.runSet,
			},
			{
				Name:      "ls",
				Usage:     "List stored case records",
				UsageText: "casereview record ls [--match GLOB] [--json]",
				Flags:     []cli.Flag{matchFlag, jsonFlag},
				Action:    cmd.runLs,
			},
			{
				Name:      "bulk-status",
				Usage:     "Set the status of many cases at once",
				UsageText: "casereview record bulk-status --status S [--match GLOB] [case-id...]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "status", Aliases: []string{"s"}, Usage: "review status", Required: true, Destination: &cmd.status},
					matchFlag,
				},
				Action: cmd.runBulkStatus,
			},
			{
				Name:      "summaries",
				Usage:     "Show the case list",
				UsageText: "casereview record summaries [--match GLOB] [--json]",
				Flags:     []cli.Flag{matchFlag, jsonFlag},
				Action:    cmd.runSummaries,
			},
			{
				Name:      "register",
				Usage:     "Add or rename a case in the case list",
				UsageText: "casereview record register <case-id> [--name NAME]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "display name", Destination: &cmd.name},
				},
				Action: cmd.runRegister,
			},
			{
				Name:      "import",
				Usage:     "Register case list rows from JSON",
				UsageText: "casereview record import [-f rows.json]",
				Description: `Reads a JSON array of {"id", "name", "status", "remarks"} objects from
--file or stdin and registers each row.`,
				Flags:  []cli.Flag{cmd.importer.Flag()},
				Action: cmd.runImport,
			},
		},
	})

	return app
}

func caseIDArg(c *cli.Command) (string, error) {
	id := strings.TrimSpace(c.Args().First())
	if id == "" {
		return "", errors.New("case id is required")
	}
	return id, nil
}

type recordView struct {
	CaseID         string            `json:"caseId"`
	Status         caserecord.Status `json:"status"`
	Description    string            `json:"description"`
	Remarks        string            `json:"remarks"`
	LastModified   *time.Time        `json:"lastModified,omitempty"`
	NumberOfSlices int               `json:"numberOfSlices,omitempty"`
}

func newRecordView(r caserecord.Record) recordView {
	v := recordView{
		CaseID:         r.CaseID,
		Status:         r.Status,
		Description:    r.Description,
		Remarks:        r.Remarks,
		NumberOfSlices: r.NumberOfSlices,
	}
	if !r.LastModified.IsZero() {
		t := r.LastModified
		v.LastModified = &t
	}
	return v
}

func (cmd *RecordCmd) runGet(ctx context.Context, c *cli.Command) error {
	id, err := caseIDArg(c)
	if err != nil {
		return err
	}
	rec := cmd.app.Records.Get(ctx, id)

	if cmd.jsonOutput {
		return iojson.Write(c.Root().Writer, newRecordView(rec))
	}
	if cmd.plain {
		printRecord(printer.Ctx(ctx), rec)
		return nil
	}

	out, err := renderRecordMarkdown(rec)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(c.Root().Writer, out)
	return err
}

func printRecord(p *printer.Printer, rec caserecord.Record) {
	p.Header("Case " + rec.CaseID)
	p.Field("Status", styles.StatusBadge(rec.Status))
	if !rec.LastModified.IsZero() {
		p.Field("Last modified", rec.LastModified.Local().Format(time.DateTime))
	}
	if rec.NumberOfSlices > 0 {
		p.Field("Slices", fmt.Sprint(rec.NumberOfSlices))
	}
	p.Field("Description", orDash(rec.Description))
	p.Field("Remarks", orDash(rec.Remarks))
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func recordMarkdown(rec caserecord.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Case %s\n\n", rec.CaseID)
	fmt.Fprintf(&b, "**Status:** %s %s\n\n", styles.StatusIcon(rec.Status), rec.Status)
	if !rec.LastModified.IsZero() {
		fmt.Fprintf(&b, "**Last modified:** %s\n\n", rec.LastModified.Local().Format(time.DateTime))
	}
	if rec.NumberOfSlices > 0 {
		fmt.Fprintf(&b, "**Slices:** %d\n\n", rec.NumberOfSlices)
	}
	fmt.Fprintf(&b, "## Description\n\n%s\n\n", orDash(rec.Description))
	fmt.Fprintf(&b, "## Remarks\n\n%s\n", orDash(rec.Remarks))
	return b.String()
}

func renderRecordMarkdown(rec caserecord.Record) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(styles.GlamourStyle()),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return "", fmt.Errorf("create renderer: %w", err)
	}
	out, err := r.Render(recordMarkdown(rec))
	if err != nil {
		return "", fmt.Errorf("render record: %w", err)
	}
	return out, nil
}

func (cmd *RecordCmd) runSet(ctx context.Context, c *cli.Command) error {
	id, err := caseIDArg(c)
	if err != nil {
		return err
	}

	var fields caserecord.Fields
	if c.IsSet("status") {
		s, err := caserecord.ParseStatus(cmd.status)
		if err != nil {
			return err
		}
		fields = fields.WithStatus(s)
	}
	if c.IsSet("description") {
		fields = fields.WithDescription(cmd.description)
	}
	if c.IsSet("remarks") {
		fields = fields.WithRemarks(cmd.remarks)
	}
	if fields.IsEmpty() {
		return errors.New("nothing to update; pass --status, --description or --remarks")
	}

	rec, err := cmd.app.Records.Put(ctx, id, fields)
	if err != nil {
		return fmt.Errorf("update %s: %w", id, err)
	}

	if cmd.jsonOutput {
		return iojson.Write(c.Root().Writer, newRecordView(rec))
	}
	printer.Ctx(ctx).Successf("Updated %s (%s)", id, rec.Status)
	return nil
}

// matchingCaseIDs returns the stored case ids matching the --match glob, or
// all of them when no glob is set.
func (cmd *RecordCmd) matchingCaseIDs(ctx context.Context) ([]string, error) {
	ids, err := cmd.app.Records.CaseIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}
	return filterGlob(cmd.match, ids, func(id string) string { return id })
}

func filterGlob[T any](pattern string, items []T, key func(T) string) ([]T, error) {
	if pattern == "" {
		return items, nil
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid --match pattern %q", pattern)
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		if ok, _ := doublestar.Match(pattern, key(it)); ok {
			out = append(out, it)
		}
	}
	return out, nil
}

func (cmd *RecordCmd) runLs(ctx context.Context, c *cli.Command) error {
	ids, err := cmd.matchingCaseIDs(ctx)
	if err != nil {
		return err
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		for _, id := range ids {
			if err := iojson.WriteLine(out, newRecordView(cmd.app.Records.Get(ctx, id))); err != nil {
				return fmt.Errorf("encode record: %w", err)
			}
		}
		return nil
	}

	if len(ids) == 0 {
		printer.Ctx(ctx).Infof("No records found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CASE\tSTATUS\tLAST MODIFIED\tREMARKS")
	for _, id := range ids {
		rec := cmd.app.Records.Get(ctx, id)
		modified := "-"
		if !rec.LastModified.IsZero() {
			modified = rec.LastModified.Local().Format(time.DateTime)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", id, rec.Status, modified, truncate(rec.Remarks, 40))
	}
	return w.Flush()
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func (cmd *RecordCmd) runBulkStatus(ctx context.Context, c *cli.Command) error {
	status, err := caserecord.ParseStatus(cmd.status)
	if err != nil {
		return err
	}

	ids := c.Args().Slice()
	if cmd.match != "" {
		matched, err := cmd.matchingCaseIDs(ctx)
		if err != nil {
			return err
		}
		ids = append(ids, matched...)
	}
	if len(ids) == 0 {
		return errors.New("no cases given; pass case ids or --match")
	}

	recs, err := cmd.app.Records.PutMany(ctx, ids, caserecord.Fields{}.WithStatus(status))
	p := printer.Ctx(ctx)
	if len(recs) > 0 {
		p.Successf("Set %d case(s) to %s", len(recs), status)
	}
	if err != nil {
		return fmt.Errorf("bulk update stopped after %d of %d: %w", len(recs), len(ids), err)
	}
	return nil
}

func (cmd *RecordCmd) runSummaries(ctx context.Context, c *cli.Command) error {
	rows, err := filterGlob(cmd.match, cmd.app.Records.Summaries(ctx), func(s caserecord.Summary) string { return s.ID })
	if err != nil {
		return err
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		return iojson.Write(out, rows)
	}
	if len(rows) == 0 {
		printer.Ctx(ctx).Infof("Case list is empty")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CASE\tNAME\tSTATUS\tREMARKS")
	for _, r := range rows {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, orDash(r.Name), r.Status, truncate(r.Remarks, 40))
	}
	return w.Flush()
}

func (cmd *RecordCmd) runRegister(ctx context.Context, c *cli.Command) error {
	id, err := caseIDArg(c)
	if err != nil {
		return err
	}
	rec := cmd.app.Records.Get(ctx, id)

	sum := caserecord.Summary{ID: id, Name: cmd.name, Status: rec.Status, Remarks: rec.Remarks}
	if !c.IsSet("name") {
		for _, row := range cmd.app.Records.Summaries(ctx) {
			if row.ID == id {
				sum.Name = row.Name
				break
			}
		}
	}
	if err := cmd.app.Records.RegisterSummary(ctx, sum); err != nil {
		return fmt.Errorf("register %s: %w", id, err)
	}
	printer.Ctx(ctx).Successf("Registered %s", id)
	return nil
}

func (cmd *RecordCmd) runImport(ctx context.Context, _ *cli.Command) error {
	rows, err := cmd.importer.Read()
	if err != nil {
		return err
	}

	p := printer.Ctx(ctx)
	for i, row := range rows {
		if err := cmd.app.Records.RegisterSummary(ctx, row); err != nil {
			return fmt.Errorf("row %d (%q): %w", i, row.ID, err)
		}
	}
	p.Successf("Imported %d case(s)", len(rows))
	return nil
}
