package documents

import (
	"time"

	"github.com/google/uuid"
)

// EventAction classifies entries in the document audit trail.
type EventAction string

const (
	EventCreated   EventAction = "created"
	EventUpdated   EventAction = "updated"
	EventAdjusted  EventAction = "adjusted"
	EventConverted EventAction = "converted"
	EventStatus    EventAction = "status_changed"
)

// Event records one mutation of a document for the audit trail. Events are
// append-only and written inside the same transaction as the mutation.
type Event struct {
	ID         string      `json:"id"`
	DocumentID int64       `json:"document_id"`
	Action     EventAction `json:"action"`
	Detail     string      `json:"detail,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// NewEvent builds an audit event with a fresh identifier.
func NewEvent(documentID int64, action EventAction, detail string) Event {
	return Event{
		ID:         uuid.NewString(),
		DocumentID: documentID,
		Action:     action,
		Detail:     detail,
		OccurredAt: time.Now().UTC(),
	}
}
