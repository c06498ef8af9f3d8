package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	domain "github.com/example/realtime-chat-app/domain/chat"
	"github.com/example/realtime-chat-app/events"
	"github.com/example/realtime-chat-app/modules/cache"
)

// Module owns message persistence and the conversation list. With a
// database path it runs on SQLite; without one it serves seeded in-memory
// data so the UI stays usable without any infrastructure.
type Module struct {
	db          *gorm.DB
	store       Store
	service     *Service
	eventBus    mono.EventBus
	cacheModule *cache.Module
	dbPath      string
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
	_ mono.EventBusAwareModule   = (*Module)(nil)
	_ mono.EventEmitterModule    = (*Module)(nil)
	_ mono.EventConsumerModule   = (*Module)(nil)
)

// NewModule creates a chat module. An empty dbPath selects the seeded
// in-memory store. cacheModule may be nil; it must be registered before
// this module so its cache exists when Start runs.
func NewModule(dbPath string, cacheModule *cache.Module) *Module {
	return &Module{dbPath: dbPath, cacheModule: cacheModule}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "chat"
}

// SetEventBus receives the EventBus from the framework.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module can emit.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.MessageSentV1.ToBase(),
	}
}

// RegisterEventConsumers subscribes to provider status callbacks published
// by the webhook module so delivery state lands in the store.
func (m *Module) RegisterEventConsumers(registry mono.EventRegistry) error {
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

func (m *Module) handleStatusChanged(ctx context.Context, event events.MessageStatusChangedEvent, _ *mono.Msg) error {
	err := m.service.UpdateStatus(ctx, event.MessageID, event.MetaMsgID, domain.MessageStatus(event.Status))
	if err != nil {
		if IsNotFound(err) {
			// Status callbacks can arrive for messages we never stored.
			log.Printf("[chat] Status update for unknown message (id=%s meta=%s)", event.MessageID, event.MetaMsgID)
			return nil
		}
		return err
	}
	return nil
}

// Start opens the store.
func (m *Module) Start(_ context.Context) error {
	defer m.attachCache()

	if m.dbPath == "" {
		m.store = NewSeededMemoryStore(time.Now().UTC())
		m.service = NewService(m.store)
		log.Println("[chat] No CHAT_DB_PATH configured - using seeded in-memory store")
		return nil
	}

	db, err := gorm.Open(sqlite.Open(m.dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		// Degrade instead of failing startup so the UI keeps working.
		log.Printf("[chat] Failed to open database %s (%v) - using seeded in-memory store", m.dbPath, err)
		m.store = NewSeededMemoryStore(time.Now().UTC())
		m.service = NewService(m.store)
		return nil
	}
	m.db = db

	store, err := NewGormStore(db)
	if err != nil {
		return err
	}
	m.store = store
	m.service = NewService(m.store)

	log.Printf("[chat] Module started (database: %s)", m.dbPath)
	return nil
}

// Stop closes the database if one was opened.
func (m *Module) Stop(_ context.Context) error {
	if m.db != nil {
		sqlDB, err := m.db.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
	log.Println("[chat] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	if m.store == nil {
		return mono.HealthStatus{Healthy: false, Message: "store not initialized"}
	}
	if err := m.store.Ping(ctx); err != nil {
		return mono.HealthStatus{Healthy: false, Message: fmt.Sprintf("store ping failed: %v", err)}
	}

	backend := "memory"
	if m.db != nil {
		backend = "sqlite"
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"backend": backend,
		},
	}
}

// attachCache wires the conversation-list cache once the service exists.
// The cache module starts before this one, so its cache is ready here.
func (m *Module) attachCache() {
	if m.cacheModule == nil || m.service == nil {
		return
	}
	if c := m.cacheModule.Cache(); c != nil {
		m.service.SetCache(c)
	}
}

// Service returns the chat service for in-process callers.
func (m *Module) Service() *Service {
	return m.service
}

// RegisterServices registers request-reply services in the service container.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container,
		ServiceSaveMessage,
		json.Unmarshal,
		json.Marshal,
		m.handleSaveMessage,
	); err != nil {
		return fmt.Errorf("failed to register save-message service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		ServiceMessagesBetween,
		json.Unmarshal,
		json.Marshal,
		m.handleMessagesBetween,
	); err != nil {
		return fmt.Errorf("failed to register messages-between service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		ServiceConversationsForUser,
		json.Unmarshal,
		json.Marshal,
		m.handleConversations,
	); err != nil {
		return fmt.Errorf("failed to register conversations-for-user service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		ServiceUpdateStatus,
		json.Unmarshal,
		json.Marshal,
		m.handleUpdateStatus,
	); err != nil {
		return fmt.Errorf("failed to register update-status service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		ServiceMarkRead,
		json.Unmarshal,
		json.Marshal,
		m.handleMarkRead,
	); err != nil {
		return fmt.Errorf("failed to register mark-read service: %w", err)
	}

	log.Printf("[chat] Registered services: %s, %s, %s, %s, %s",
		ServiceSaveMessage, ServiceMessagesBetween, ServiceConversationsForUser,
		ServiceUpdateStatus, ServiceMarkRead)
	return nil
}

func (m *Module) handleSaveMessage(ctx context.Context, req SaveMessageRequest, _ *mono.Msg) (SaveMessageResponse, error) {
	msg := req.Message
	saved, err := m.service.SaveMessage(ctx, &msg)
	if err != nil {
		return SaveMessageResponse{}, err
	}

	event := events.MessageSentEvent{
		MessageID:  saved.ID,
		FromPhone:  saved.FromPhone,
		ToPhone:    saved.ToPhone,
		Text:       saved.Text,
		SenderName: saved.SenderName,
		MetaMsgID:  saved.MetaMsgID,
		Timestamp:  saved.Timestamp,
	}
	if err := events.MessageSentV1.Publish(m.eventBus, event, nil); err != nil {
		log.Printf("[chat] Failed to publish MessageSent event: %v", err)
	}

	return SaveMessageResponse{Message: *saved}, nil
}

func (m *Module) handleMessagesBetween(ctx context.Context, req MessagesBetweenRequest, _ *mono.Msg) (MessagesBetweenResponse, error) {
	messages, err := m.service.MessagesBetween(ctx, req.UserPhone, req.PeerPhone)
	if err != nil {
		return MessagesBetweenResponse{}, err
	}
	return MessagesBetweenResponse{Messages: messages}, nil
}

func (m *Module) handleConversations(ctx context.Context, req ConversationsRequest, _ *mono.Msg) (ConversationsResponse, error) {
	conversations, err := m.service.ConversationsForUser(ctx, req.UserPhone)
	if err != nil {
		return ConversationsResponse{}, err
	}
	return ConversationsResponse{Conversations: conversations}, nil
}

func (m *Module) handleUpdateStatus(ctx context.Context, req UpdateStatusRequest, _ *mono.Msg) (UpdateStatusResponse, error) {
	if err := m.service.UpdateStatus(ctx, req.MessageID, req.MetaMsgID, req.Status); err != nil {
		return UpdateStatusResponse{}, err
	}
	return UpdateStatusResponse{Success: true}, nil
}

func (m *Module) handleMarkRead(ctx context.Context, req MarkReadRequest, _ *mono.Msg) (MarkReadResponse, error) {
	updated, err := m.service.MarkRead(ctx, req.FromPhone, req.ToPhone)
	if err != nil {
		return MarkReadResponse{}, err
	}
	return MarkReadResponse{Updated: updated}, nil
}
