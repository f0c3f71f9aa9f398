package caserecord

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidStatus is returned when a status outside the four review states is supplied.
var ErrInvalidStatus = errors.New("invalid status")

// Status is the review workflow state of a case.
// ENUM(Pending, In Progress, Complete, Follow Up).
type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusComplete   Status = "Complete"
	StatusFollowUp   Status = "Follow Up"
)

// Statuses returns every status in display order.
func Statuses() []Status {
	return []Status{StatusPending, StatusInProgress, StatusComplete, StatusFollowUp}
}

// ParseStatus accepts the persisted spelling ("In Progress") as well as the
// identifier spelling ("InProgress"), case-insensitively.
func ParseStatus(s string) (Status, error) {
	key := strings.ToLower(strings.Join(strings.Fields(s), ""))
	switch key {
	case "pending":
		return StatusPending, nil
	case "inprogress":
		return StatusInProgress, nil
	case "complete":
		return StatusComplete, nil
	case "followup":
		return StatusFollowUp, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// NormalizeStatus coerces unknown or missing values to Pending.
func NormalizeStatus(s string) Status {
	st, err := ParseStatus(s)
	if err != nil {
		return StatusPending
	}
	return st
}

// IsValid reports whether s is exactly one of the four statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusComplete, StatusFollowUp:
		return true
	}
	return false
}

// AllowsLeave reports whether a reviewer may leave a case in this status
// without acknowledging it first.
func (s Status) AllowsLeave() bool {
	return s == StatusComplete || s == StatusFollowUp
}

func (s Status) String() string {
	return string(s)
}

// UnmarshalJSON never fails: anything that is not a recognised status
// string decodes as Pending.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		*s = StatusPending
		return nil
	}
	*s = NormalizeStatus(raw)
	return nil
}
