package webhook

import (
	"context"
	"log"
	"time"

	"github.com/go-monolith/mono"

	domain "github.com/example/realtime-chat-app/domain/chat"
	"github.com/example/realtime-chat-app/events"
	"github.com/example/realtime-chat-app/modules/chat"
)

// Service turns provider webhook payloads into stored messages and status
// events. Messages are addressed to the configured business account phone;
// status updates are published on the event bus so the chat module applies
// them and the relay notifies clients.
type Service struct {
	chat           chat.ChatPort
	eventBus       mono.EventBus
	recipientPhone string
}

// NewService creates a webhook service delivering to recipientPhone.
func NewService(chatPort chat.ChatPort, recipientPhone string) *Service {
	return &Service{chat: chatPort, recipientPhone: recipientPhone}
}

// SetEventBus attaches the event bus for status publication.
func (s *Service) SetEventBus(bus mono.EventBus) {
	s.eventBus = bus
}

// Process ingests one raw payload and returns how many messages and status
// updates were handled. Individual failures are logged and skipped so one
// bad record does not reject the batch.
func (s *Service) Process(ctx context.Context, raw []byte) (int, error) {
	messages, statuses, err := ExtractPayload(raw)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, incoming := range messages {
		msg := domain.Message{
			FromPhone:  incoming.WaID,
			ToPhone:    s.recipientPhone,
			Text:       incoming.Text,
			Timestamp:  incoming.Timestamp,
			Kind:       incoming.Kind,
			Status:     incoming.Status,
			SenderName: incoming.SenderName,
			MetaMsgID:  incoming.MetaMsgID,
		}
		if _, err := s.chat.SaveMessage(ctx, msg); err != nil {
			log.Printf("[webhook] Failed to save message from %s: %v", incoming.WaID, err)
			continue
		}
		processed++
	}

	for _, st := range statuses {
		if !domain.ValidStatus(st.Status) {
			log.Printf("[webhook] Skipping status update with unknown state %q", st.Status)
			continue
		}
		event := events.MessageStatusChangedEvent{
			MetaMsgID: st.MetaMsgID,
			ToPhone:   st.RecipientID,
			Status:    string(st.Status),
			Timestamp: time.Now().UTC(),
		}
		if err := events.MessageStatusChangedV1.Publish(s.eventBus, event, nil); err != nil {
			log.Printf("[webhook] Failed to publish status update for %s: %v", st.MetaMsgID, err)
			continue
		}
		processed++
	}

	return processed, nil
}
