package styles

import "github.com/colonyops/casereview/internal/core/caserecord"

var (
	IconPending    = "○"
	IconInProgress = "◐"
	IconComplete   = "●"
	IconFollowUp   = "◎"
	IconWarning    = "⚠"
	IconSlice      = "▤"
)

// StatusIcon returns the glyph shown next to a status.
func StatusIcon(s caserecord.Status) string {
	switch s {
	case caserecord.StatusInProgress:
		return IconInProgress
	case caserecord.StatusComplete:
		return IconComplete
	case caserecord.StatusFollowUp:
		return IconFollowUp
	default:
		return IconPending
	}
}
