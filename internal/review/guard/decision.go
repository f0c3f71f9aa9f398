// Package guard decides whether a reviewer may leave a case and drives the
// remediation flows offered when leaving is blocked.
package guard

import "github.com/colonyops/casereview/internal/core/caserecord"

// Decision is the outcome of a leave request.
type Decision int

const (
	Allow Decision = iota
	Block
)

func (d Decision) String() string {
	if d == Block {
		return "Block"
	}
	return "Allow"
}

// RequestLeave reports whether leaving rec needs acknowledgement. Complete
// and Follow Up are allowed; Pending and In Progress are blocked.
func RequestLeave(rec caserecord.Record) Decision {
	if rec.Status.AllowsLeave() {
		return Allow
	}
	return Block
}

// Prompt copy for the two attention dialogs.
const (
	BlockTitle = "Status Needs Attention"
	BlockBody  = "This study's status needs to be updated. Do you want to update the status before leaving, or continue without updating?"

	ReminderTitle = "Status Update Required"
	ReminderBody  = "This study's status needs attention. Please update the status to reflect the current progress of this case."
)
