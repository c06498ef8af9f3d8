package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	domain "github.com/example/realtime-chat-app/domain/chat"
	"github.com/example/realtime-chat-app/events"
)

// Module runs the WebSocket relay hub as a mono module. Besides routing
// live socket traffic it consumes chat events, so messages saved over REST
// and status callbacks from the webhook reach connected clients.
type Module struct {
	relay     *Relay
	cancelHub context.CancelFunc
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
	_ mono.EventConsumerModule   = (*Module)(nil)
)

// NewModule creates a new relay module.
func NewModule() *Module {
	return &Module{
		relay: NewRelay(NewHub()),
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "relay"
}

// RegisterEventConsumers subscribes to chat events for push delivery.
func (m *Module) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(
		registry,
		events.MessageSentV1,
		m.handleMessageSent,
		m,
	); err != nil {
		return fmt.Errorf("failed to register MessageSent consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(
		registry,
		events.MessageStatusChangedV1,
		m.handleStatusChanged,
		m,
	); err != nil {
		return fmt.Errorf("failed to register MessageStatusChanged consumer: %w", err)
	}
	return nil
}

func (m *Module) handleMessageSent(_ context.Context, event events.MessageSentEvent, _ *mono.Msg) error {
	msg := domain.Message{
		ID:         event.MessageID,
		FromPhone:  event.FromPhone,
		ToPhone:    event.ToPhone,
		Text:       event.Text,
		Timestamp:  event.Timestamp,
		Kind:       domain.KindIncoming,
		Status:     domain.StatusSent,
		SenderName: event.SenderName,
		MetaMsgID:  event.MetaMsgID,
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return nil
	}
	m.relay.DeliverMessage(event.ToPhone, data)
	// Sessions watching the canonical conversation room get the push too,
	// so an open chat view updates without polling.
	key := domain.DeriveConversationKey(event.FromPhone, event.ToPhone)
	m.relay.DeliverToConversation(key.String(), data)
	return nil
}

func (m *Module) handleStatusChanged(_ context.Context, event events.MessageStatusChangedEvent, _ *mono.Msg) error {
	data, err := json.Marshal(event)
	if err != nil {
		return nil
	}
	m.relay.NotifyStatusChange(event.FromPhone, event.ToPhone, data)
	return nil
}

// Start launches the hub loop.
func (m *Module) Start(_ context.Context) error {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelHub = cancel
	go m.relay.Hub().Run(ctx)
	log.Println("[relay] Module started - hub running")
	return nil
}

// Stop shuts the hub down and closes every connection.
func (m *Module) Stop(_ context.Context) error {
	clientCount := m.relay.Hub().ClientCount()
	if m.cancelHub != nil {
		m.cancelHub()
		m.relay.Hub().Wait()
	}
	log.Printf("[relay] Module stopped - %d clients were connected", clientCount)
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"connected_clients": m.relay.Hub().ClientCount(),
			"active_rooms":      m.relay.Hub().RoomCount(),
		},
	}
}

// Relay returns the relay for the API module to use.
func (m *Module) Relay() *Relay {
	return m.relay
}
