package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the review screen bindings.
type KeyMap struct {
	Next       key.Binding
	Prev       key.Binding
	First      key.Binding
	Last       key.Binding
	ZoomIn     key.Binding
	ZoomOut    key.Binding
	RotateCW   key.Binding
	RotateCCW  key.Binding
	Brighter   key.Binding
	Darker     key.Binding
	MoreContr  key.Binding
	LessContr  key.Binding
	Reset      key.Binding
	Edit       key.Binding
	Remind     key.Binding
	CaseList   key.Binding
	Leave      key.Binding
	Quit       key.Binding
	Help       key.Binding
	Save       key.Binding
	NextField  key.Binding
	PrevField  key.Binding
	Cancel     key.Binding
	Select     key.Binding
	OptionPrev key.Binding
	OptionNext key.Binding
}

// DefaultKeyMap returns the review screen bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Next:       key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "next slice")),
		Prev:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "prev slice")),
		First:      key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "first slice")),
		Last:       key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "last slice")),
		ZoomIn:     key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		ZoomOut:    key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "zoom out")),
		RotateCW:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rotate cw")),
		RotateCCW:  key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "rotate ccw")),
		Brighter:   key.NewBinding(key.WithKeys("b"), key.WithHelp("b/B", "brightness")),
		Darker:     key.NewBinding(key.WithKeys("B")),
		MoreContr:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c/C", "contrast")),
		LessContr:  key.NewBinding(key.WithKeys("C")),
		Reset:      key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "reset view")),
		Edit:       key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Remind:     key.NewBinding(key.WithKeys("!"), key.WithHelp("!", "status reminder")),
		CaseList:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "case list")),
		Leave:      key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("q", "leave case")),
		Quit:       key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Save:       key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		NextField:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		PrevField:  key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev field")),
		Cancel:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Select:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
		OptionPrev: key.NewBinding(key.WithKeys("left", "h", "up", "k"), key.WithHelp("←/→", "choose")),
		OptionNext: key.NewBinding(key.WithKeys("right", "l", "down", "j")),
	}
}

// viewHelp is the help.KeyMap for the detail view.
type viewHelp struct{ k KeyMap }

func (h viewHelp) ShortHelp() []key.Binding {
	return []key.Binding{h.k.Next, h.k.Prev, h.k.Edit, h.k.Leave, h.k.Help}
}

func (h viewHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{h.k.Next, h.k.Prev, h.k.First, h.k.Last},
		{h.k.ZoomIn, h.k.ZoomOut, h.k.RotateCW, h.k.RotateCCW},
		{h.k.Brighter, h.k.MoreContr, h.k.Reset},
		{h.k.Edit, h.k.Remind, h.k.CaseList, h.k.Leave, h.k.Quit},
	}
}

// editHelp is the help.KeyMap for edit mode.
type editHelp struct{ k KeyMap }

func (h editHelp) ShortHelp() []key.Binding {
	return []key.Binding{h.k.NextField, h.k.OptionPrev, h.k.Save, h.k.Cancel}
}

func (h editHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{h.ShortHelp()}
}

// pickerHelp is the help.KeyMap for the inline status picker.
type pickerHelp struct{ k KeyMap }

func (h pickerHelp) ShortHelp() []key.Binding {
	return []key.Binding{h.k.OptionPrev, h.k.Select, h.k.Cancel}
}

func (h pickerHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{h.ShortHelp()}
}
