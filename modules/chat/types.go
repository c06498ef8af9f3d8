package chat

import (
	domain "github.com/example/realtime-chat-app/domain/chat"
)

// Service names registered in the service container.
const (
	ServiceSaveMessage          = "save-message"
	ServiceMessagesBetween      = "messages-between"
	ServiceConversationsForUser = "conversations-for-user"
	ServiceUpdateStatus         = "update-status"
	ServiceMarkRead             = "mark-read"
)

// SaveMessageRequest asks the chat module to persist a message. Missing
// IDs and timestamps are filled in by the service.
type SaveMessageRequest struct {
	Message domain.Message `json:"message"`
}

// SaveMessageResponse carries the persisted message with all fields set.
type SaveMessageResponse struct {
	Message domain.Message `json:"message"`
}

// MessagesBetweenRequest asks for the two-party history between the
// requesting user and a peer.
type MessagesBetweenRequest struct {
	UserPhone string `json:"user_phone"`
	PeerPhone string `json:"peer_phone"`
}

// MessagesBetweenResponse is the history, oldest first.
type MessagesBetweenResponse struct {
	Messages []domain.Message `json:"messages"`
}

// ConversationsRequest asks for a user's conversation list.
type ConversationsRequest struct {
	UserPhone string `json:"user_phone"`
}

// ConversationsResponse is the conversation list, most recent first.
type ConversationsResponse struct {
	Conversations []domain.Conversation `json:"conversations"`
}

// UpdateStatusRequest moves a message's delivery state. Exactly one of
// MessageID or MetaMsgID should be set; MessageID wins when both are.
type UpdateStatusRequest struct {
	MessageID string               `json:"message_id,omitempty"`
	MetaMsgID string               `json:"meta_msg_id,omitempty"`
	Status    domain.MessageStatus `json:"status"`
}

// UpdateStatusResponse reports the outcome.
type UpdateStatusResponse struct {
	Success bool `json:"success"`
}

// MarkReadRequest marks every unread message from FromPhone to ToPhone
// as read.
type MarkReadRequest struct {
	FromPhone string `json:"from_phone"`
	ToPhone   string `json:"to_phone"`
}

// MarkReadResponse carries how many messages changed state.
type MarkReadResponse struct {
	Updated int `json:"updated"`
}
