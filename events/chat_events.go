package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// MessageSentEvent is emitted after a message is persisted. The relay
// module consumes it to push the message to the recipient's room.
type MessageSentEvent struct {
	MessageID  string    `json:"message_id"`
	FromPhone  string    `json:"from_phone"`
	ToPhone    string    `json:"to_phone"`
	Text       string    `json:"text"`
	SenderName string    `json:"sender_name,omitempty"`
	MetaMsgID  string    `json:"meta_msg_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// MessageStatusChangedEvent is emitted when a message's delivery state
// moves forward (sent -> delivered -> read). The webhook module publishes
// it for provider status callbacks; the chat module consumes it to update
// the store and the relay module consumes it to notify connected clients.
type MessageStatusChangedEvent struct {
	MessageID string    `json:"message_id,omitempty"`
	MetaMsgID string    `json:"meta_msg_id,omitempty"`
	FromPhone string    `json:"from_phone,omitempty"`
	ToPhone   string    `json:"to_phone,omitempty"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// Event definitions for the chat domain.
var (
	MessageSentV1 = helper.EventDefinition[MessageSentEvent](
		"chat",
		"MessageSent",
		"v1",
	)

	MessageStatusChangedV1 = helper.EventDefinition[MessageStatusChangedEvent](
		"chat",
		"MessageStatusChanged",
		"v1",
	)
)
