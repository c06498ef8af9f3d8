// Package chat holds the entities shared across the chat application modules.
package chat

import (
	"strings"
	"time"
)

// MessageKind is the direction of a message relative to the account that
// stored it.
type MessageKind string

const (
	KindIncoming MessageKind = "incoming"
	KindOutgoing MessageKind = "outgoing"
)

// MessageStatus is the delivery state of a message.
type MessageStatus string

const (
	StatusSending   MessageStatus = "sending"
	StatusSent      MessageStatus = "sent"
	StatusDelivered MessageStatus = "delivered"
	StatusRead      MessageStatus = "read"
)

// ValidStatus reports whether s is a known delivery state.
func ValidStatus(s MessageStatus) bool {
	switch s {
	case StatusSending, StatusSent, StatusDelivered, StatusRead:
		return true
	}
	return false
}

// Message represents a single chat message between two phone numbers.
type Message struct {
	ID         string        `json:"id" gorm:"primaryKey"`
	FromPhone  string        `json:"from_phone" gorm:"index"`
	ToPhone    string        `json:"to_phone" gorm:"index"`
	Text       string        `json:"text"`
	Timestamp  time.Time     `json:"timestamp"`
	Kind       MessageKind   `json:"type"`
	Status     MessageStatus `json:"status"`
	SenderName string        `json:"sender_name,omitempty"`
	MetaMsgID  string        `json:"meta_msg_id,omitempty" gorm:"index"`
	CreatedAt  time.Time     `json:"-"`
	UpdatedAt  time.Time     `json:"-"`
}

// Conversation is the list-view summary of a two-party chat, from the
// perspective of one participant.
type Conversation struct {
	PeerPhone       string    `json:"wa_id"`
	Name            string    `json:"name"`
	LastMessage     string    `json:"last_message"`
	LastMessageTime time.Time `json:"last_message_time"`
	UnreadCount     int       `json:"unread_count"`
}

// Contact is a user known to the application, keyed by phone number.
type Contact struct {
	Phone  string `json:"phone"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// ConversationKey identifies a two-party conversation independently of which
// side derives it. The key is the two participant phones sorted
// lexicographically and joined with a colon, so both sides of a chat always
// land in the same room.
type ConversationKey string

// DeriveConversationKey builds the canonical key for a pair of phones.
func DeriveConversationKey(a, b string) ConversationKey {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if b < a {
		a, b = b, a
	}
	return ConversationKey(a + ":" + b)
}

// String returns the key as a plain string.
func (k ConversationKey) String() string {
	return string(k)
}

// DisplayName returns the fallback name used for phones with no known
// contact entry.
func DisplayName(phone string) string {
	if len(phone) > 4 {
		return "User " + phone[len(phone)-4:]
	}
	return "User " + phone
}
