// Package styles provides shared lipgloss styles for CLI and TUI output.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/casereview/internal/core/caserecord"
)

// CurrentPalette holds the active theme palette.
var CurrentPalette Palette

// Style exports.
var (
	// CLI styles.
	HeaderStyle  lipgloss.Style
	LabelStyle   lipgloss.Style
	MutedStyle   lipgloss.Style
	DividerStyle lipgloss.Style

	// TUI shared styles.
	TitleStyle               lipgloss.Style
	PanelStyle               lipgloss.Style
	ModalStyle               lipgloss.Style
	ModalTitleStyle          lipgloss.Style
	ModalHelpStyle           lipgloss.Style
	ModalButtonStyle         lipgloss.Style
	ModalButtonSelectedStyle lipgloss.Style

	ListSelectedStyle lipgloss.Style
	ListNormalStyle   lipgloss.Style

	FormFieldStyle        lipgloss.Style
	FormFieldFocusedStyle lipgloss.Style
	FormErrorStyle        lipgloss.Style
	HelpStyle             lipgloss.Style

	SliceTrackStyle lipgloss.Style
	SliceThumbStyle lipgloss.Style

	statusStyles map[caserecord.Status]lipgloss.Style
)

// SetTheme sets the active palette and rebuilds all global styles.
func SetTheme(p Palette) {
	CurrentPalette = p

	HeaderStyle = lipgloss.NewStyle().
		Foreground(p.Primary).
		Bold(true)
	LabelStyle = lipgloss.NewStyle().
		Foreground(p.Secondary)
	MutedStyle = lipgloss.NewStyle().
		Foreground(p.Muted)
	DividerStyle = lipgloss.NewStyle().
		Foreground(p.Surface)

	TitleStyle = lipgloss.NewStyle().
		Foreground(p.Foreground).
		Bold(true)
	PanelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Surface).
		Padding(0, 1)

	ModalStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Warning).
		Padding(1, 2)
	ModalTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Foreground)
	ModalHelpStyle = lipgloss.NewStyle().
		Foreground(p.Muted).
		MarginTop(1)
	ModalButtonStyle = lipgloss.NewStyle().
		Padding(0, 1).
		Background(p.Surface).
		Foreground(p.Muted)
	ModalButtonSelectedStyle = lipgloss.NewStyle().
		Padding(0, 1).
		Background(p.Primary).
		Foreground(p.Background).
		Bold(true)

	ListSelectedStyle = lipgloss.NewStyle().
		Foreground(p.Primary).
		Bold(true)
	ListNormalStyle = lipgloss.NewStyle().
		Foreground(p.Foreground)

	FormFieldStyle = lipgloss.NewStyle().
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(p.Muted).
		PaddingLeft(1)
	FormFieldFocusedStyle = lipgloss.NewStyle().
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(p.Primary).
		PaddingLeft(1)
	FormErrorStyle = lipgloss.NewStyle().
		Foreground(p.Error)
	HelpStyle = lipgloss.NewStyle().
		Foreground(p.Muted)

	SliceTrackStyle = lipgloss.NewStyle().
		Foreground(p.Surface)
	SliceThumbStyle = lipgloss.NewStyle().
		Foreground(p.Primary).
		Bold(true)

	statusStyles = map[caserecord.Status]lipgloss.Style{
		caserecord.StatusPending:    lipgloss.NewStyle().Foreground(p.Warning),
		caserecord.StatusInProgress: lipgloss.NewStyle().Foreground(p.Primary),
		caserecord.StatusComplete:   lipgloss.NewStyle().Foreground(p.Success),
		caserecord.StatusFollowUp:   lipgloss.NewStyle().Foreground(p.Secondary),
	}
}

// StatusStyle returns the badge style for a review status.
func StatusStyle(s caserecord.Status) lipgloss.Style {
	if st, ok := statusStyles[s]; ok {
		return st
	}
	return MutedStyle
}

// StatusBadge renders the status with its icon.
func StatusBadge(s caserecord.Status) string {
	return StatusStyle(s).Render(StatusIcon(s) + " " + s.String())
}

// nolint:gochecknoinits // bootstrap default theme before any style is accessed.
func init() {
	SetTheme(themes[DefaultTheme])
}
