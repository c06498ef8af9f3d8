package api

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-monolith/mono"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/realtime-chat-app/modules/auth"
	"github.com/example/realtime-chat-app/modules/cache"
	"github.com/example/realtime-chat-app/modules/chat"
	"github.com/example/realtime-chat-app/modules/relay"
	"github.com/example/realtime-chat-app/modules/webhook"
)

// Module serves the REST API and the /api/socketio WebSocket endpoint on a
// Fiber app. It reaches chat and auth through their service containers and
// talks to the relay, cache and webhook modules directly.
type Module struct {
	app            *fiber.App
	addr           string
	allowedOrigins string

	chatPort chat.ChatPort
	authPort auth.AuthPort

	relayModule   *relay.Module
	cacheModule   *cache.Module
	webhookModule *webhook.Module
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.DependentModule = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates the API module. The relay, cache and webhook modules
// must be registered before this one so they are started when Start runs.
func NewModule(addr, allowedOrigins string, relayModule *relay.Module, cacheModule *cache.Module, webhookModule *webhook.Module) *Module {
	return &Module{
		addr:           addr,
		allowedOrigins: allowedOrigins,
		relayModule:    relayModule,
		cacheModule:    cacheModule,
		webhookModule:  webhookModule,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *Module) Dependencies() []string {
	return []string{"chat", "auth", "webhook"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *Module) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "chat":
		m.chatPort = chat.NewChatAdapter(container)
	case "auth":
		m.authPort = auth.NewAuthAdapter(container)
	}
}

// Start builds the Fiber app and begins serving.
func (m *Module) Start(_ context.Context) error {
	m.app = fiber.New(fiber.Config{
		AppName:               "Realtime Chat App",
		DisableStartupMessage: true,
		ErrorHandler:          m.errorHandler,
	})

	m.app.Use(recover.New())
	m.app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} ${method} ${path} ${latency}\n",
	}))
	m.app.Use(cors.New(cors.Config{
		AllowOrigins: m.allowedOrigins,
		AllowMethods: "GET,POST,PUT,OPTIONS",
		AllowHeaders: "Content-Type,Authorization",
	}))

	m.registerRoutes()

	errCh := make(chan error, 1)
	go func() {
		if err := m.app.Listen(m.addr); err != nil {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("API server failed to start: %w", err)
	case <-time.After(100 * time.Millisecond):
	}

	log.Printf("[api] Server started on %s", m.addr)
	return nil
}

// Stop gracefully shuts down the server.
func (m *Module) Stop(ctx context.Context) error {
	if m.app != nil {
		if err := m.app.ShutdownWithContext(ctx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
	}
	log.Println("[api] Server stopped")
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	if m.app == nil {
		return mono.HealthStatus{Healthy: false, Message: "server not started"}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"addr": m.addr,
		},
	}
}

// registerRoutes sets up all HTTP and WebSocket routes.
func (m *Module) registerRoutes() {
	m.app.Get("/health", m.healthCheck)

	api := m.app.Group("/api/v1")
	api.Post("/auth/send-otp", m.sendOTP)
	api.Post("/auth/verify", m.verifyOTP)
	api.Post("/users/lookup", m.lookupUser)
	api.Get("/conversations/:phone", m.getConversations)
	api.Post("/messages/between", m.messagesBetween)
	api.Post("/messages/send", m.sendMessage)
	api.Put("/messages/status", m.updateStatus)
	api.Post("/webhook/process", m.processWebhook)

	// WebSocket upgrade middleware
	m.app.Use("/api/socketio", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	m.app.Get("/api/socketio", websocket.New(m.handleSocket))
}

// errorHandler handles errors globally.
func (m *Module) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	log.Printf("[api] HTTP error %d: %v", code, err)

	return c.Status(code).JSON(fiber.Map{
		"error":   message,
		"message": err.Error(),
	})
}
