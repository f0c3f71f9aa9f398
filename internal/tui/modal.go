package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/casereview/internal/core/styles"
)

// Modal represents a two-button dialog.
type Modal struct {
	title           string
	message         string
	confirmLabel    string
	cancelLabel     string
	visible         bool
	confirmSelected bool // true = confirm button selected, false = cancel button selected
}

// NewModal creates a new modal with the given title and message.
func NewModal(title, message string) Modal {
	return Modal{
		title:           title,
		message:         message,
		confirmLabel:    "Confirm",
		cancelLabel:     "Cancel",
		visible:         true,
		confirmSelected: true,
	}
}

// WithLabels replaces the button labels.
func (m Modal) WithLabels(confirm, cancel string) Modal {
	m.confirmLabel = confirm
	m.cancelLabel = cancel
	return m
}

// ToggleSelection switches the selected button.
func (m *Modal) ToggleSelection() {
	m.confirmSelected = !m.confirmSelected
}

// ConfirmSelected returns true if the confirm button is selected.
func (m Modal) ConfirmSelected() bool {
	return m.confirmSelected
}

// Visible returns whether the modal should be displayed.
func (m Modal) Visible() bool {
	return m.visible
}

// Title returns the modal title.
func (m Modal) Title() string {
	return m.title
}

// View renders the dialog box.
func (m Modal) View() string {
	confirmStyle, cancelStyle := styles.ModalButtonStyle, styles.ModalButtonSelectedStyle
	if m.confirmSelected {
		confirmStyle, cancelStyle = cancelStyle, confirmStyle
	}

	buttons := lipgloss.JoinHorizontal(lipgloss.Center,
		confirmStyle.Render(m.confirmLabel), "  ", cancelStyle.Render(m.cancelLabel))

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		styles.ModalTitleStyle.Render(m.title),
		"",
		lipgloss.NewStyle().Width(56).Render(m.message),
		lipgloss.NewStyle().MarginTop(1).Render(buttons),
		styles.ModalHelpStyle.Render("←/→ select  enter confirm  esc close"),
	)
	return styles.ModalStyle.Render(content)
}

// Overlay renders the modal centered in the screen area, replacing the
// background.
func (m Modal) Overlay(background string, width, height int) string {
	if !m.visible {
		return background
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, m.View())
}
