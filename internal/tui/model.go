// Package tui implements the interactive case review screen.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/colonyops/casereview/internal/core/caserecord"
	"github.com/colonyops/casereview/internal/core/host"
	"github.com/colonyops/casereview/internal/review"
	"github.com/colonyops/casereview/internal/review/edit"
	"github.com/colonyops/casereview/internal/review/guard"
	"github.com/colonyops/casereview/internal/review/viewport"
)

type mode int

const (
	modeView mode = iota
	modeEdit
	modeBlocked
	modePicker
	modeReminder
	modeDiscard
	modeExit
)

// pickerSource says who opened the inline status picker.
type pickerSource int

const (
	pickForLeave pickerSource = iota
	pickForReminder
)

const (
	fieldStatus = iota
	fieldDescription
	fieldRemarks
	fieldCount
)

const (
	levelStep  = 10
	wheelPixel = 40
)

// navRecorder remembers where the screen navigated so the program can exit
// with the destination. It forwards to next when set.
type navRecorder struct {
	next host.Navigator
	dest string
}

func (n *navRecorder) GoTo(ctx context.Context, path string) error {
	if n.next != nil {
		if err := n.next.GoTo(ctx, path); err != nil {
			return err
		}
	}
	n.dest = path
	return nil
}

// Model is the bubbletea model for one review visit.
type Model struct {
	ctx    context.Context
	screen *review.Screen
	folder *review.Folder
	nav    *navRecorder

	keys   KeyMap
	help   help.Model
	toasts *ToastController

	mode       mode
	exitReturn mode
	showFolder bool
	modal      Modal
	picker     pickerSource

	focus       int
	description textinput.Model
	remarks     textarea.Model

	folderCursor int
	params       viewport.RenderParams
	renders      int

	width, height int
	quitting      bool
}

// New opens the review screen for entry. Call Close when the program ends.
func New(ctx context.Context, deps review.Deps, entry review.Entry) (*Model, error) {
	m := &Model{
		ctx:    ctx,
		nav:    &navRecorder{next: deps.Nav},
		keys:   DefaultKeyMap(),
		help:   help.New(),
		toasts: NewToastController(),
		width:  100,
		height: 30,
	}
	deps.Nav = m.nav

	surface := viewport.SurfaceFunc(func(p viewport.RenderParams) {
		m.params = p
		m.renders++
	})

	screen, err := review.Open(ctx, deps, entry, surface)
	if err != nil {
		return nil, err
	}
	m.screen = screen
	m.folder = review.OpenFolder(screen.Context(), deps.Records, deps.Bus)

	m.description = textinput.New()
	m.description.Placeholder = "Description"
	m.description.CharLimit = 500

	m.remarks = textarea.New()
	m.remarks.Placeholder = "Remarks for the next reviewer"
	m.remarks.ShowLineNumbers = false
	m.remarks.SetHeight(5)

	return m, nil
}

// Close releases the screen's subscriptions.
func (m *Model) Close() {
	m.folder.Close()
	m.screen.Close()
}

// Destination returns where the reviewer left to, or "" when the program
// ended without leaving the case.
func (m *Model) Destination() string { return m.nav.dest }

// Screen exposes the underlying review screen.
func (m *Model) Screen() *review.Screen { return m.screen }

func (m *Model) Init() tea.Cmd {
	return tea.SetWindowTitle("casereview " + m.screen.CaseID())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.description.Width = max(m.width/2-8, 20)
		m.remarks.SetWidth(max(m.width/2-6, 20))
		return m, nil
	case toastTickMsg:
		return m, m.toasts.HandleTick()
	case tea.MouseMsg:
		if m.mode == modeView && !m.showFolder {
			m.handleMouse(msg)
		}
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			cmd = m.requestQuit()
			break
		}
		cmd = m.handleKey(msg)
	}

	if m.nav.dest != "" {
		m.quitting = true
	}
	if m.quitting {
		return m, tea.Quit
	}
	return m, tea.Batch(cmd, m.toasts.StartTicking())
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch m.mode {
	case modeEdit:
		return m.handleEditKey(msg)
	case modePicker:
		m.handlePickerKey(msg)
	case modeBlocked, modeReminder, modeDiscard, modeExit:
		return m.handleModalKey(msg)
	default:
		if m.showFolder {
			m.handleFolderKey(msg)
			return nil
		}
		return m.handleViewKey(msg)
	}
	return nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	if msg.Action != tea.MouseActionPress {
		return
	}
	v := m.screen.Viewport()
	switch msg.Button {
	case tea.MouseButtonWheelDown:
		v.OnScroll(v.ScrollTop() + wheelPixel)
	case tea.MouseButtonWheelUp:
		v.OnScroll(v.ScrollTop() - wheelPixel)
	}
}

func (m *Model) handleViewKey(msg tea.KeyMsg) tea.Cmd {
	v := m.screen.Viewport()
	b, c := v.Levels()

	switch {
	case key.Matches(msg, m.keys.Next):
		v.Next()
	case key.Matches(msg, m.keys.Prev):
		v.Prev()
	case key.Matches(msg, m.keys.First):
		v.Select(1)
	case key.Matches(msg, m.keys.Last):
		v.Select(v.Total())
	case key.Matches(msg, m.keys.ZoomIn):
		v.ZoomIn()
	case key.Matches(msg, m.keys.ZoomOut):
		v.ZoomOut()
	case key.Matches(msg, m.keys.RotateCW):
		v.RotateClockwise()
	case key.Matches(msg, m.keys.RotateCCW):
		v.RotateCounterClockwise()
	case key.Matches(msg, m.keys.Brighter):
		v.SetBrightness(b + levelStep)
	case key.Matches(msg, m.keys.Darker):
		v.SetBrightness(b - levelStep)
	case key.Matches(msg, m.keys.MoreContr):
		v.SetContrast(c + levelStep)
	case key.Matches(msg, m.keys.LessContr):
		v.SetContrast(c - levelStep)
	case key.Matches(msg, m.keys.Reset):
		v.Reset()
	case key.Matches(msg, m.keys.Edit):
		return m.beginEdit()
	case key.Matches(msg, m.keys.Remind):
		m.showReminder()
	case key.Matches(msg, m.keys.CaseList):
		m.showFolder = true
	case key.Matches(msg, m.keys.Leave):
		m.leave()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return nil
}

func (m *Model) handleFolderKey(msg tea.KeyMsg) {
	rows := m.folder.Rows()
	switch {
	case key.Matches(msg, m.keys.CaseList), key.Matches(msg, m.keys.Cancel):
		m.showFolder = false
	case key.Matches(msg, m.keys.Next):
		m.folderCursor = min(m.folderCursor+1, max(len(rows)-1, 0))
	case key.Matches(msg, m.keys.Prev):
		m.folderCursor = max(m.folderCursor-1, 0)
	}
}

func (m *Model) leave() {
	d, err := m.screen.Leave()
	if err != nil {
		m.toasts.Push(toastError, err.Error())
		return
	}
	if d == guard.Block {
		m.mode = modeBlocked
		m.modal = NewModal(guard.BlockTitle, guard.BlockBody).WithLabels("Update Status Now", "Leave Anyway")
	}
}

func (m *Model) showReminder() {
	if !m.screen.Reminder().Show(m.ctx) {
		m.toasts.Push(toastInfo, "Status is up to date")
		return
	}
	m.mode = modeReminder
	m.modal = NewModal(guard.ReminderTitle, guard.ReminderBody).WithLabels("Update Status", "Remind Me Later")
}

func (m *Model) requestQuit() tea.Cmd {
	if m.mode == modeExit {
		return nil
	}
	verdict := m.screen.RequestExit()
	if !verdict.Blocked {
		m.quitting = true
		return tea.Quit
	}
	m.exitReturn = m.mode
	m.mode = modeExit
	m.modal = NewModal("Unsaved Changes", verdict.Warning).WithLabels("Leave", "Stay")
	m.modal.ToggleSelection()
	return nil
}

func (m *Model) handleModalKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.OptionPrev), key.Matches(msg, m.keys.OptionNext), msg.Type == tea.KeyTab:
		m.modal.ToggleSelection()
		return nil
	case key.Matches(msg, m.keys.Cancel):
		m.closeModal()
		return nil
	case key.Matches(msg, m.keys.Select):
		return m.chooseModal(m.modal.ConfirmSelected())
	}
	return nil
}

func (m *Model) closeModal() {
	switch m.mode {
	case modeBlocked:
		_ = m.screen.Guard().Dismiss()
		m.mode = modeView
	case modeReminder:
		m.screen.Reminder().Dismiss()
		m.mode = modeView
	case modeDiscard:
		m.mode = modeEdit
	case modeExit:
		m.mode = m.exitReturn
	}
	m.modal = Modal{}
}

func (m *Model) chooseModal(confirm bool) tea.Cmd {
	current := m.mode
	m.modal = Modal{}

	switch current {
	case modeBlocked:
		if confirm {
			if _, err := m.screen.Guard().UpdateStatusNow(m.ctx); err != nil {
				m.fail(err)
				return nil
			}
			m.openPicker(pickForLeave)
			return nil
		}
		if _, err := m.screen.Guard().LeaveAnyway(m.ctx); err != nil {
			m.fail(err)
		}
	case modeReminder:
		r := m.screen.Reminder()
		if confirm {
			if _, err := r.UpdateStatus(m.ctx); err != nil {
				m.fail(err)
				return nil
			}
			m.openPicker(pickForReminder)
			return nil
		}
		if _, err := r.RemindLater(m.ctx); err != nil {
			m.fail(err)
			return nil
		}
		m.mode = modeView
		m.toasts.Push(toastInfo, "Status reset to Pending")
	case modeDiscard:
		if confirm {
			m.screen.Edit().Cancel(m.ctx, host.Always(true))
			m.mode = modeView
			return nil
		}
		m.mode = modeEdit
	case modeExit:
		if confirm {
			m.quitting = true
			return tea.Quit
		}
		m.mode = m.exitReturn
	}
	return nil
}

func (m *Model) fail(err error) {
	log.Error().Err(err).Str("case_id", m.screen.CaseID()).Msg("review action failed")
	m.toasts.Push(toastError, err.Error())
	m.mode = modeView
}

func (m *Model) openPicker(src pickerSource) {
	m.picker = src
	m.mode = modePicker
}

func (m *Model) pickerEditor() *guard.StatusEditor {
	if m.picker == pickForReminder {
		return m.screen.Reminder().Editor()
	}
	return m.screen.Guard().Editor()
}

func (m *Model) handlePickerKey(msg tea.KeyMsg) {
	editor := m.pickerEditor()

	switch {
	case key.Matches(msg, m.keys.OptionPrev):
		m.choose(cycleStatus(editor.Choice(), -1))
	case key.Matches(msg, m.keys.OptionNext):
		m.choose(cycleStatus(editor.Choice(), 1))
	case key.Matches(msg, m.keys.Cancel):
		if m.picker == pickForLeave {
			_ = m.screen.Guard().CancelInline()
		} else {
			editor.Cancel()
		}
		m.mode = modeView
	case key.Matches(msg, m.keys.Select):
		m.confirmPicker()
	}
}

func (m *Model) choose(s caserecord.Status) {
	var err error
	if m.picker == pickForLeave {
		err = m.screen.Guard().Choose(s)
	} else {
		err = m.pickerEditor().Choose(s)
	}
	if err != nil {
		m.toasts.Push(toastError, err.Error())
	}
}

func (m *Model) confirmPicker() {
	if m.picker == pickForReminder {
		rec, err := m.pickerEditor().Confirm(m.ctx)
		if err != nil {
			m.fail(err)
			return
		}
		m.mode = modeView
		m.toasts.Push(toastSuccess, "Status set to "+rec.Status.String())
		return
	}

	d, err := m.screen.Guard().ConfirmStatus(m.ctx)
	if err != nil {
		m.fail(err)
		return
	}
	if d == guard.Block {
		m.toasts.Push(toastInfo, "Still In Progress; choose a final status or cancel")
	}
}

func cycleStatus(current caserecord.Status, delta int) caserecord.Status {
	all := caserecord.Statuses()
	idx := 0
	for i, s := range all {
		if s == current {
			idx = i
			break
		}
	}
	return all[(idx+delta+len(all))%len(all)]
}

func (m *Model) beginEdit() tea.Cmd {
	buf, err := m.screen.Edit().Begin(m.screen.Record())
	if err != nil {
		m.toasts.Push(toastError, err.Error())
		return nil
	}
	m.description.SetValue(buf.Description)
	m.remarks.SetValue(buf.Remarks)
	m.mode = modeEdit
	return m.focusField(fieldStatus)
}

func (m *Model) focusField(f int) tea.Cmd {
	m.focus = (f + fieldCount) % fieldCount
	m.description.Blur()
	m.remarks.Blur()
	switch m.focus {
	case fieldDescription:
		return m.description.Focus()
	case fieldRemarks:
		return m.remarks.Focus()
	}
	return nil
}

func (m *Model) handleEditKey(msg tea.KeyMsg) tea.Cmd {
	s := m.screen.Edit()

	switch {
	case key.Matches(msg, m.keys.Save):
		rec, err := s.Save(m.ctx)
		if err != nil {
			m.toasts.Push(toastError, err.Error())
			return nil
		}
		m.mode = modeView
		m.toasts.Push(toastSuccess, fmt.Sprintf("Saved (%s)", rec.Status))
		return nil
	case key.Matches(msg, m.keys.Cancel):
		if s.Dirty() {
			m.mode = modeDiscard
			m.modal = NewModal("Discard Changes", edit.DiscardMessage).WithLabels("Discard", "Keep Editing")
			m.modal.ToggleSelection()
			return nil
		}
		s.Cancel(m.ctx, host.Always(true))
		m.mode = modeView
		return nil
	case key.Matches(msg, m.keys.NextField):
		return m.focusField(m.focus + 1)
	case key.Matches(msg, m.keys.PrevField):
		return m.focusField(m.focus - 1)
	}

	buf, _ := s.Buffer()
	var cmd tea.Cmd
	switch m.focus {
	case fieldStatus:
		next := buf.Status
		switch {
		case key.Matches(msg, m.keys.OptionPrev):
			next = cycleStatus(buf.Status, -1)
		case key.Matches(msg, m.keys.OptionNext):
			next = cycleStatus(buf.Status, 1)
		}
		if next != buf.Status {
			m.update(edit.FieldStatus, next.String())
		}
	case fieldDescription:
		m.description, cmd = m.description.Update(msg)
		if v := m.description.Value(); v != buf.Description {
			m.update(edit.FieldDescription, v)
		}
	case fieldRemarks:
		m.remarks, cmd = m.remarks.Update(msg)
		if v := m.remarks.Value(); v != buf.Remarks {
			m.update(edit.FieldRemarks, v)
		}
	}
	return cmd
}

func (m *Model) update(f edit.Field, value string) {
	if err := m.screen.Edit().Update(f, value); err != nil {
		m.toasts.Push(toastError, err.Error())
	}
}
