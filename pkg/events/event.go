package events

import "time"

// Ingest event types.
const (
	TypeSyncCompleted   = "SYNC_COMPLETED"
	TypeImportCompleted = "IMPORT_COMPLETED"
)

// Types lists every event type the backend publishes.
var Types = []string{TypeSyncCompleted, TypeImportCompleted}

type Event interface {
	EventType() string
	Payload() map[string]interface{}
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

// New stamps an event with the current UTC time.
func New(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now().UTC()}
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}
