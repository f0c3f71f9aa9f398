// Package printer writes styled, human-oriented command output.
package printer

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/casereview/internal/core/styles"
)

type ctxKey struct{}

// Printer writes leveled lines to an output stream.
type Printer struct {
	out io.Writer
}

// New returns a Printer writing to out.
func New(out io.Writer) *Printer {
	return &Printer{out: out}
}

// WithPrinter stores p in ctx.
func WithPrinter(ctx context.Context, p *Printer) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// Ctx returns the Printer stored in ctx, or one writing to stdout.
func Ctx(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok && p != nil {
		return p
	}
	return New(os.Stdout)
}

// Writer returns the underlying stream.
func (p *Printer) Writer() io.Writer { return p.out }

func (p *Printer) line(prefix lipgloss.Style, icon, format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, "%s %s\n", prefix.Render(icon), fmt.Sprintf(format, args...))
}

func (p *Printer) Infof(format string, args ...any) {
	p.line(styles.LabelStyle, "•", format, args...)
}

func (p *Printer) Warnf(format string, args ...any) {
	p.line(lipgloss.NewStyle().Foreground(styles.CurrentPalette.Warning), styles.IconWarning, format, args...)
}

func (p *Printer) Errorf(format string, args ...any) {
	p.line(styles.FormErrorStyle, "✗", format, args...)
}

func (p *Printer) Successf(format string, args ...any) {
	p.line(lipgloss.NewStyle().Foreground(styles.CurrentPalette.Success), "✓", format, args...)
}

// Printf writes unstyled formatted output with no trailing newline added.
func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}

// Field writes an aligned "label: value" line.
func (p *Printer) Field(label, value string) {
	_, _ = fmt.Fprintf(p.out, "%s %s\n", styles.LabelStyle.Render(fmt.Sprintf("%-14s", label+":")), value)
}

// Header writes a bold section heading.
func (p *Printer) Header(title string) {
	_, _ = fmt.Fprintln(p.out, styles.HeaderStyle.Render(title))
}
