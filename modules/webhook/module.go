package webhook

import (
	"context"
	"log"

	"github.com/go-monolith/mono"

	"github.com/example/realtime-chat-app/events"
	"github.com/example/realtime-chat-app/modules/chat"
)

// Module ingests provider webhook payloads. It depends on the chat module
// for persistence and publishes status-change events on the bus.
type Module struct {
	service        *Service
	chatPort       chat.ChatPort
	eventBus       mono.EventBus
	recipientPhone string
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.DependentModule       = (*Module)(nil)
	_ mono.EventBusAwareModule   = (*Module)(nil)
	_ mono.EventEmitterModule    = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a webhook module delivering ingested messages to
// recipientPhone.
func NewModule(recipientPhone string) *Module {
	return &Module{recipientPhone: recipientPhone}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "webhook"
}

// Dependencies returns the list of module dependencies.
func (m *Module) Dependencies() []string {
	return []string{"chat"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *Module) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	if dependency == "chat" {
		m.chatPort = chat.NewChatAdapter(container)
	}
}

// SetEventBus receives the EventBus from the framework.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module can emit.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.MessageStatusChangedV1.ToBase(),
	}
}

// Start builds the service once dependencies are wired.
func (m *Module) Start(_ context.Context) error {
	m.service = NewService(m.chatPort, m.recipientPhone)
	m.service.SetEventBus(m.eventBus)
	log.Printf("[webhook] Module started (recipient: %s)", m.recipientPhone)
	return nil
}

// Stop shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	log.Println("[webhook] Module stopped")
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	if m.service == nil {
		return mono.HealthStatus{Healthy: false, Message: "service not initialized"}
	}
	return mono.HealthStatus{Healthy: true, Message: "operational"}
}

// Service returns the webhook service for the API module to use.
func (m *Module) Service() *Service {
	return m.service
}
