package main

import (
	"context"
	"log"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"

	apimod "github.com/example/realtime-chat-app/modules/api"
	authmod "github.com/example/realtime-chat-app/modules/auth"
	cachemod "github.com/example/realtime-chat-app/modules/cache"
	chatmod "github.com/example/realtime-chat-app/modules/chat"
	relaymod "github.com/example/realtime-chat-app/modules/relay"
	webhookmod "github.com/example/realtime-chat-app/modules/webhook"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load configuration from environment
	addr := ":" + getEnv("PORT", "3000")
	dbPath := getEnv("CHAT_DB_PATH", "")
	redisAddr := getEnv("REDIS_ADDR", "")
	jwtSecret := getEnv("JWT_SECRET", "")
	allowedOrigins := getEnv("CORS_ALLOWED_ORIGINS", "*")
	recipientPhone := getEnv("WEBHOOK_RECIPIENT_PHONE", "918329446654")
	cacheTTL := getEnvDuration("CACHE_TTL", 5*time.Minute)
	cachePrefix := getEnv("CACHE_PREFIX", "chat:")

	log.Println("=== Realtime Chat App ===")
	log.Printf("Listen: %s", addr)
	log.Printf("Database: %s", orDefault(dbPath, "(in-memory)"))
	log.Printf("Redis: %s", orDefault(redisAddr, "(in-memory)"))
	log.Printf("Cache TTL: %s, prefix: %s", cacheTTL, cachePrefix)

	// Create modules. Registration order matters: cache before chat so the
	// conversation cache exists, relay and webhook before api.
	cacheModule := cachemod.NewModule(redisAddr, cachePrefix, cacheTTL)
	relayModule := relaymod.NewModule()
	chatModule := chatmod.NewModule(dbPath, cacheModule)
	authModule := authmod.NewModule(jwtSecret)
	webhookModule := webhookmod.NewModule(recipientPhone)
	apiModule := apimod.NewModule(addr, allowedOrigins, relayModule, cacheModule, webhookModule)

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create mono application: %v", err)
	}

	app.Register(cacheModule)
	app.Register(relayModule)
	app.Register(chatModule)
	app.Register(authModule)
	app.Register(webhookModule)
	app.Register(apiModule)

	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		log.Fatalf("Failed to start app: %v", err)
	}

	printStartupInfo(addr)

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo(addr string) {
	log.Println("=== Application Started ===")
	log.Printf("API available at http://localhost%s", addr)
	log.Println("Endpoints:")
	log.Println("  GET  /health                      - Health check")
	log.Println("  POST /api/v1/auth/send-otp        - Request login code")
	log.Println("  POST /api/v1/auth/verify          - Verify code, get token")
	log.Println("  POST /api/v1/users/lookup         - Phone to profile")
	log.Println("  GET  /api/v1/conversations/:phone - Conversation list")
	log.Println("  POST /api/v1/messages/between     - Two-party history")
	log.Println("  POST /api/v1/messages/send        - Send a message")
	log.Println("  PUT  /api/v1/messages/status      - Update delivery state")
	log.Println("  POST /api/v1/webhook/process      - Ingest provider payloads")
	log.Println("  GET  /api/socketio                - WebSocket endpoint")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown")
}

// getEnv returns environment variable value or default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration returns environment variable as duration or default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		log.Printf("Warning: invalid duration value for %s: %s, using default: %s", key, value, defaultValue)
	}
	return defaultValue
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
