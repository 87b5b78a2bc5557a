package notifications

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types delivered to websocket clients.
const (
	EventWorkshopSeats      = "workshop.seats"
	EventEnrollmentCreated  = "enrollment.created"
	EventEnrollmentCanceled = "enrollment.cancelled"
	EventMessagesDropped    = "messages_dropped"
)

// Event is the envelope written to Redis and forwarded verbatim to clients.
type Event struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// SeatsPayload carries the committed seat count of a workshop after an enrollment change.
type SeatsPayload struct {
	WorkshopID    uint  `json:"workshop_id"`
	EnrolledCount int64 `json:"enrolled_count"`
	MaxStudents   int   `json:"max_students"`
	IsFull        bool  `json:"is_full"`
}

// EnrollmentPayload is sent to the enrolling user's own channel.
type EnrollmentPayload struct {
	EnrollmentID uint   `json:"enrollment_id"`
	WorkshopID   uint   `json:"workshop_id"`
	Status       string `json:"status"`
	Reactivated  bool   `json:"reactivated,omitempty"`
}

// Encode marshals an event envelope.
func Encode(eventType string, payload interface{}) (string, error) {
	b, err := json.Marshal(Event{
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("marshal %s event: %w", eventType, err)
	}
	return string(b), nil
}
