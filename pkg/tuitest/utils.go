// Package tuitest provides testing utilities for TUI components.
package tuitest

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
)

// StripANSI removes ANSI escape codes and trailing whitespace so rendered
// views can be compared as plain text.
func StripANSI(s string) string {
	s = ansi.Strip(s)
	lines := strings.Split(s, "\n")
	result := make([]string, 0, len(lines))
	for _, line := range lines {
		result = append(result, strings.TrimRight(line, " "))
	}
	return strings.TrimRight(strings.Join(result, "\n"), "\n")
}

// KeyPress creates a key press message for a single rune.
func KeyPress(key rune) tea.Msg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{key}}
}

// KeyPressString creates one key press message carrying all of s, as a
// paste would.
func KeyPressString(s string) tea.Msg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// KeyDown creates a down arrow key press message.
func KeyDown() tea.Msg { return tea.KeyMsg{Type: tea.KeyDown} }

// KeyUp creates an up arrow key press message.
func KeyUp() tea.Msg { return tea.KeyMsg{Type: tea.KeyUp} }

// KeyLeft creates a left arrow key press message.
func KeyLeft() tea.Msg { return tea.KeyMsg{Type: tea.KeyLeft} }

// KeyRight creates a right arrow key press message.
func KeyRight() tea.Msg { return tea.KeyMsg{Type: tea.KeyRight} }

// KeyEnter creates an enter key press message.
func KeyEnter() tea.Msg { return tea.KeyMsg{Type: tea.KeyEnter} }

// KeyEsc creates an escape key press message.
func KeyEsc() tea.Msg { return tea.KeyMsg{Type: tea.KeyEsc} }

// KeyTab creates a tab key press message.
func KeyTab() tea.Msg { return tea.KeyMsg{Type: tea.KeyTab} }

// KeyCtrl creates a ctrl+<r> key press message for r in 'a'..'z'.
func KeyCtrl(r rune) tea.Msg {
	return tea.KeyMsg{Type: tea.KeyCtrlA + tea.KeyType(r-'a')}
}

// WindowSize creates a window size message.
func WindowSize(w, h int) tea.WindowSizeMsg {
	return tea.WindowSizeMsg{Width: w, Height: h}
}

// Send feeds msgs to m in order and returns the final model. Returned
// commands are dropped.
func Send(m tea.Model, msgs ...tea.Msg) tea.Model {
	for _, msg := range msgs {
		m, _ = m.Update(msg)
	}
	return m
}
