package kafka

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Message is one record headed for the lifecycle topic.
type Message struct {
	Key       string
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

const (
	HeaderEventID   = "event-id"
	HeaderEventType = "event-type"
	HeaderSource    = "source"
)

// NewMessage builds a lifecycle message keyed by the scheduling event's id so
// all messages for one event land on the same partition, JSON-encoding the
// payload.
func NewMessage(key, eventType, source string, payload any) (Message, error) {
	value, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{
		Key:   key,
		Value: value,
		Headers: map[string]string{
			HeaderEventID:   uuid.NewString(),
			HeaderEventType: eventType,
			HeaderSource:    source,
		},
		Timestamp: time.Now(),
	}, nil
}
