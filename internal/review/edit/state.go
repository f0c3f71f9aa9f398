package edit

import "fmt"

// State is the edit mode of a Session.
type State int

const (
	Viewing State = iota
	Editing
	EditingDirty
)

func (s State) String() string {
	switch s {
	case Viewing:
		return "viewing"
	case Editing:
		return "editing"
	case EditingDirty:
		return "editing-dirty"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// transitions lists the states reachable from each state.
var transitions = map[State][]State{
	Viewing:      {Editing},
	Editing:      {EditingDirty, Viewing},
	EditingDirty: {EditingDirty, Viewing},
}

func canTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Field names an editable record field.
type Field string

const (
	FieldStatus      Field = "status"
	FieldDescription Field = "description"
	FieldRemarks     Field = "remarks"
)

// ParseField maps a field name to a Field.
func ParseField(s string) (Field, error) {
	switch f := Field(s); f {
	case FieldStatus, FieldDescription, FieldRemarks:
		return f, nil
	}
	return "", fmt.Errorf("unknown field %q", s)
}
