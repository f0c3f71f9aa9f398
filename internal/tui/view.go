package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/casereview/internal/core/caserecord"
	"github.com/colonyops/casereview/internal/core/styles"
	"github.com/colonyops/casereview/internal/review/viewport"
)

const trackHeight = 12

func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var body string
	if m.showFolder {
		body = m.folderView()
	} else {
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.sliceView(), "  ", m.recordView())
	}

	parts := []string{m.headerView(), "", body}
	if m.mode == modePicker {
		parts = append(parts, "", m.pickerView())
	}
	if t := m.toasts.View(); t != "" {
		parts = append(parts, "", t)
	}
	parts = append(parts, "", m.helpView())

	screen := lipgloss.JoinVertical(lipgloss.Left, parts...)
	if m.modal.Visible() {
		return m.modal.Overlay(screen, m.width, m.height)
	}
	return screen
}

func (m *Model) headerView() string {
	rec := m.screen.Record()
	title := styles.TitleStyle.Render("Case " + m.screen.CaseID())
	parts := []string{title, styles.StatusBadge(rec.Status)}
	if p := m.screen.PatientID(); p != "" {
		parts = append(parts, styles.MutedStyle.Render("patient "+p))
	}
	return strings.Join(parts, "  ")
}

func (m *Model) sliceView() string {
	v := m.screen.Viewport()
	b, c := v.Levels()

	info := []string{
		styles.HeaderStyle.Render(fmt.Sprintf("Slice %d / %d", m.params.Slice, v.Total())),
		"",
		field("Zoom", fmt.Sprintf("%d%%", v.ZoomPercent())),
		field("Rotation", fmt.Sprintf("%d°", m.params.RotationDegrees)),
		field("Brightness", fmt.Sprintf("%d%%", b)),
		field("Contrast", fmt.Sprintf("%d%%", c)),
	}

	track := renderTrack(m.params.Slice, v.Total(), trackHeight)
	return styles.PanelStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top,
		track, "  ", lipgloss.JoinVertical(lipgloss.Left, info...)))
}

// renderTrack draws a vertical scroll track with the thumb at slice.
func renderTrack(slice, total, height int) string {
	thumb := 0
	if total > 1 {
		thumb = int(float64(slice-1)/float64(total-1)*float64(height-1) + 0.5)
	}
	rows := make([]string, height)
	for i := range rows {
		if i == thumb {
			rows[i] = styles.SliceThumbStyle.Render("█")
		} else {
			rows[i] = styles.SliceTrackStyle.Render("│")
		}
	}
	return strings.Join(rows, "\n")
}

func field(label, value string) string {
	return styles.LabelStyle.Render(fmt.Sprintf("%-11s", label)) + " " + value
}

func (m *Model) recordView() string {
	width := max(m.width/2-4, 30)
	if m.mode == modeEdit || m.mode == modeDiscard || (m.mode == modeExit && m.exitReturn == modeEdit) {
		return m.editView(width)
	}

	rec := m.screen.Record()
	lines := []string{
		field("Status", styles.StatusBadge(rec.Status)),
	}
	if !rec.LastModified.IsZero() {
		lines = append(lines, field("Modified", rec.LastModified.Local().Format("2006-01-02 15:04")))
	}
	lines = append(lines,
		"",
		styles.HeaderStyle.Render("Description"),
		orMuted(rec.Description, "No description"),
		"",
		styles.HeaderStyle.Render("Remarks"),
		orMuted(rec.Remarks, "No remarks"),
	)
	return styles.PanelStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func orMuted(s, placeholder string) string {
	if strings.TrimSpace(s) == "" {
		return styles.MutedStyle.Render(placeholder)
	}
	return s
}

func (m *Model) editView(width int) string {
	buf, _ := m.screen.Edit().Buffer()

	label := func(f int, name string) string {
		if m.focus == f {
			return styles.FormFieldFocusedStyle.Render("› " + name)
		}
		return styles.FormFieldStyle.Render("  " + name)
	}

	title := "Editing"
	if buf.Dirty {
		title += styles.MutedStyle.Render(" (unsaved)")
	}

	return styles.PanelStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left,
		styles.HeaderStyle.Render(title),
		"",
		label(fieldStatus, "Status"),
		"  "+statusOptions(buf.Status),
		"",
		label(fieldDescription, "Description"),
		"  "+m.description.View(),
		"",
		label(fieldRemarks, "Remarks"),
		m.remarks.View(),
	))
}

func statusOptions(selected caserecord.Status) string {
	opts := make([]string, 0, 4)
	for _, s := range caserecord.Statuses() {
		text := styles.StatusIcon(s) + " " + s.String()
		if s == selected {
			opts = append(opts, styles.ListSelectedStyle.Render(text))
		} else {
			opts = append(opts, styles.ListNormalStyle.Render(text))
		}
	}
	return strings.Join(opts, "  ")
}

func (m *Model) pickerView() string {
	return styles.PanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		styles.HeaderStyle.Render("Update status"),
		statusOptions(m.pickerEditor().Choice()),
	))
}

func (m *Model) folderView() string {
	rows := m.folder.Rows()
	if len(rows) == 0 {
		return styles.PanelStyle.Render(styles.MutedStyle.Render("Case list is empty"))
	}

	lines := []string{styles.HeaderStyle.Render(fmt.Sprintf("Cases (%d)", len(rows))), ""}
	for i, r := range rows {
		name := r.Name
		if name == "" {
			name = "-"
		}
		line := fmt.Sprintf("%-14s %-24s %s", r.ID, name, styles.StatusBadge(r.Status))
		if r.ID == m.screen.CaseID() {
			line += styles.MutedStyle.Render("  (open)")
		}
		if i == m.folderCursor {
			lines = append(lines, styles.ListSelectedStyle.Render("› ")+line)
		} else {
			lines = append(lines, "  "+line)
		}
	}
	return styles.PanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m *Model) helpView() string {
	var km help.KeyMap = viewHelp{m.keys}
	switch m.mode {
	case modeEdit:
		km = editHelp{m.keys}
	case modePicker:
		km = pickerHelp{m.keys}
	}
	return styles.HelpStyle.Render(m.help.View(km))
}

// Params returns the parameters last pushed to the image surface.
func (m *Model) Params() viewport.RenderParams { return m.params }
