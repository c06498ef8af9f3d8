package chat

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	domain "github.com/example/realtime-chat-app/domain/chat"
)

// ChatPort is the interface other modules use to reach chat operations.
type ChatPort interface {
	SaveMessage(ctx context.Context, msg domain.Message) (*domain.Message, error)
	MessagesBetween(ctx context.Context, userPhone, peerPhone string) ([]domain.Message, error)
	ConversationsForUser(ctx context.Context, userPhone string) ([]domain.Conversation, error)
	UpdateStatus(ctx context.Context, messageID, metaMsgID string, status domain.MessageStatus) error
	MarkRead(ctx context.Context, fromPhone, toPhone string) (int, error)
}

// ChatAdapter implements ChatPort over the service container.
type ChatAdapter struct {
	container mono.ServiceContainer
}

// NewChatAdapter creates a ChatAdapter.
func NewChatAdapter(container mono.ServiceContainer) ChatPort {
	if container == nil {
		panic("chat: ServiceContainer is nil")
	}
	return &ChatAdapter{container: container}
}

// SaveMessage persists a message through the chat module.
func (a *ChatAdapter) SaveMessage(ctx context.Context, msg domain.Message) (*domain.Message, error) {
	req := SaveMessageRequest{Message: msg}
	var resp SaveMessageResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceSaveMessage,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}
	return &resp.Message, nil
}

// MessagesBetween returns the two-party history, oldest first.
func (a *ChatAdapter) MessagesBetween(ctx context.Context, userPhone, peerPhone string) ([]domain.Message, error) {
	req := MessagesBetweenRequest{UserPhone: userPhone, PeerPhone: peerPhone}
	var resp MessagesBetweenResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceMessagesBetween,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}
	return resp.Messages, nil
}

// ConversationsForUser returns a user's conversation list.
func (a *ChatAdapter) ConversationsForUser(ctx context.Context, userPhone string) ([]domain.Conversation, error) {
	req := ConversationsRequest{UserPhone: userPhone}
	var resp ConversationsResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceConversationsForUser,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("failed to get conversations: %w", err)
	}
	return resp.Conversations, nil
}

// UpdateStatus moves a message's delivery state.
func (a *ChatAdapter) UpdateStatus(ctx context.Context, messageID, metaMsgID string, status domain.MessageStatus) error {
	req := UpdateStatusRequest{MessageID: messageID, MetaMsgID: metaMsgID, Status: status}
	var resp UpdateStatusResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceUpdateStatus,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	if !resp.Success {
		return fmt.Errorf("status update rejected")
	}
	return nil
}

// MarkRead marks every unread message from fromPhone to toPhone as read.
func (a *ChatAdapter) MarkRead(ctx context.Context, fromPhone, toPhone string) (int, error) {
	req := MarkReadRequest{FromPhone: fromPhone, ToPhone: toPhone}
	var resp MarkReadResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceMarkRead,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return 0, fmt.Errorf("failed to mark messages read: %w", err)
	}
	return resp.Updated, nil
}
