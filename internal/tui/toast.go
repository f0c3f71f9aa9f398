package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/casereview/internal/core/styles"
)

const (
	defaultToastTTL   = 4 * time.Second
	defaultMaxToasts  = 3
	toastTickInterval = 100 * time.Millisecond
)

type toastLevel int

const (
	toastInfo toastLevel = iota
	toastSuccess
	toastError
)

type toast struct {
	level     toastLevel
	message   string
	remaining time.Duration
}

type toastTickMsg time.Time

func scheduleToastTick() tea.Cmd {
	return tea.Tick(toastTickInterval, func(t time.Time) tea.Msg {
		return toastTickMsg(t)
	})
}

// ToastController manages the lifecycle of transient status messages.
// It handles push, eviction, TTL countdown, and dismissal.
type ToastController struct {
	toasts  []toast
	ticking bool
}

func NewToastController() *ToastController {
	return &ToastController{}
}

// Push adds a message to the stack, evicting the oldest past the limit.
func (c *ToastController) Push(level toastLevel, message string) {
	c.toasts = append(c.toasts, toast{level: level, message: message, remaining: defaultToastTTL})
	if len(c.toasts) > defaultMaxToasts {
		c.toasts = c.toasts[len(c.toasts)-defaultMaxToasts:]
	}
}

// Tick decrements the remaining TTL on all toasts by d and removes
// any that have expired.
func (c *ToastController) Tick(d time.Duration) {
	alive := c.toasts[:0]
	for _, t := range c.toasts {
		t.remaining -= d
		if t.remaining > 0 {
			alive = append(alive, t)
		}
	}
	c.toasts = alive
}

// Dismiss removes the newest toast.
func (c *ToastController) Dismiss() {
	if len(c.toasts) > 0 {
		c.toasts = c.toasts[:len(c.toasts)-1]
	}
}

func (c *ToastController) HasToasts() bool { return len(c.toasts) > 0 }

// StartTicking returns the tick command when the timer is not running yet.
func (c *ToastController) StartTicking() tea.Cmd {
	if c.ticking || !c.HasToasts() {
		return nil
	}
	c.ticking = true
	return scheduleToastTick()
}

// HandleTick advances the timer and reschedules while toasts remain.
func (c *ToastController) HandleTick() tea.Cmd {
	c.Tick(toastTickInterval)
	if !c.HasToasts() {
		c.ticking = false
		return nil
	}
	return scheduleToastTick()
}

// View renders the stack, oldest first.
func (c *ToastController) View() string {
	if len(c.toasts) == 0 {
		return ""
	}
	lines := make([]string, 0, len(c.toasts))
	for _, t := range c.toasts {
		lines = append(lines, renderToast(t))
	}
	return strings.Join(lines, "\n")
}

func renderToast(t toast) string {
	p := styles.CurrentPalette
	var (
		icon  string
		color lipgloss.Color
	)
	switch t.level {
	case toastError:
		icon, color = "✗", p.Error
	case toastSuccess:
		icon, color = "✓", p.Success
	default:
		icon, color = "•", p.Secondary
	}
	return lipgloss.NewStyle().Foreground(color).Render(icon + " " + t.message)
}
