// Package eventbus provides the process-wide publish/subscribe channel that
// open screens use to tell each other a case record changed, plus the
// advisory pre-exit interception hook.
package eventbus

import "github.com/colonyops/casereview/internal/core/caserecord"

// Topic names a class of event. Topic names are part of the contract with
// other screens and must not change.
type Topic string

const (
	TopicRecordChanged      Topic = "recordChanged"
	TopicRecordsBulkChanged Topic = "recordsBulkChanged"
)

// Events maps every topic to its payload type.
var Events = map[Topic]any{
	// Keep list sorted A-Z
	TopicRecordChanged:      RecordChangedPayload{},
	TopicRecordsBulkChanged: RecordsBulkChangedPayload{},
}

// RecordChangedPayload is published after a record write completes. It
// carries only the id and new status; subscribers re-read the record for
// anything else.
type RecordChangedPayload struct {
	CaseID string            `json:"caseId"`
	Status caserecord.Status `json:"status"`
}

// RecordsBulkChangedPayload is published once after a batch of writes so a
// list view can refresh many rows from one event.
type RecordsBulkChangedPayload struct {
	CaseIDs []string `json:"caseIds"`
}

// PublishRecordChanged publishes on TopicRecordChanged.
func (bus *EventBus) PublishRecordChanged(p RecordChangedPayload) {
	bus.Publish(TopicRecordChanged, p)
}

// SubscribeRecordChanged registers a typed listener on TopicRecordChanged.
func (bus *EventBus) SubscribeRecordChanged(fn func(RecordChangedPayload)) Unsubscribe {
	return bus.Subscribe(TopicRecordChanged, func(payload any) {
		if p, ok := payload.(RecordChangedPayload); ok {
			fn(p)
		}
	})
}

// PublishRecordsBulkChanged publishes on TopicRecordsBulkChanged.
func (bus *EventBus) PublishRecordsBulkChanged(p RecordsBulkChangedPayload) {
	bus.Publish(TopicRecordsBulkChanged, p)
}

// SubscribeRecordsBulkChanged registers a typed listener on TopicRecordsBulkChanged.
func (bus *EventBus) SubscribeRecordsBulkChanged(fn func(RecordsBulkChangedPayload)) Unsubscribe {
	return bus.Subscribe(TopicRecordsBulkChanged, func(payload any) {
		if p, ok := payload.(RecordsBulkChangedPayload); ok {
			fn(p)
		}
	})
}
