package api

import (
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	domain "github.com/example/realtime-chat-app/domain/chat"
	"github.com/example/realtime-chat-app/modules/cache"
)

// healthCheck handles GET /health.
func (m *Module) healthCheck(c *fiber.Ctx) error {
	hub := m.relayModule.Relay().Hub()
	return c.JSON(fiber.Map{
		"status":            "healthy",
		"service":           "realtime-chat-app",
		"connected_clients": hub.ClientCount(),
		"active_rooms":      hub.RoomCount(),
	})
}

// sendOTP handles POST /api/v1/auth/send-otp.
func (m *Module) sendOTP(c *fiber.Ctx) error {
	var req SendOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if strings.TrimSpace(req.Phone) == "" {
		return badRequest(c, "Phone number is required")
	}

	otp, err := m.authPort.SendOTP(c.Context(), req.Phone)
	if err != nil {
		log.Printf("[api] send-otp failed: %v", err)
		return internalError(c, "Failed to send OTP")
	}

	// The code is returned so the demo UI can show it; a real SMS
	// integration would drop it from the response.
	return c.JSON(fiber.Map{
		"success": true,
		"phone":   req.Phone,
		"otp":     otp,
		"message": "OTP sent successfully",
	})
}

// verifyOTP handles POST /api/v1/auth/verify.
func (m *Module) verifyOTP(c *fiber.Ctx) error {
	var req VerifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Phone == "" || req.OTP == "" {
		return badRequest(c, "Phone and OTP are required")
	}

	result, err := m.authPort.VerifyOTP(c.Context(), req.Phone, req.OTP)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "Invalid or expired OTP",
			"message": "Verification failed",
		})
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"user":         result.User,
		"access_token": result.AccessToken,
		"expires_in":   result.ExpiresIn,
	})
}

// lookupUser handles POST /api/v1/users/lookup. The profile is enriched
// with live presence when the user signalled user-online recently.
func (m *Module) lookupUser(c *fiber.Ctx) error {
	var req LookupRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if strings.TrimSpace(req.Phone) == "" {
		return badRequest(c, "Phone number is required")
	}

	user, err := m.authPort.Lookup(c.Context(), req.Phone)
	if err != nil {
		log.Printf("[api] lookup failed: %v", err)
		return internalError(c, "Failed to lookup user")
	}

	resp := fiber.Map{
		"phone":  user.Phone,
		"name":   user.Name,
		"status": user.Status,
	}
	if pc := m.presenceCache(); pc != nil {
		if online, lastSeen, err := pc.IsOnline(c.Context(), user.Phone); err == nil {
			resp["is_online"] = online
			if online {
				resp["last_seen"] = lastSeen.UTC().Format(time.RFC3339)
			}
		}
	}
	return c.JSON(resp)
}

// presenceCache returns the presence cache, or nil before the cache module
// has started.
func (m *Module) presenceCache() *cache.Cache {
	if m.cacheModule == nil {
		return nil
	}
	return m.cacheModule.Cache()
}

// getConversations handles GET /api/v1/conversations/:phone. Store errors
// degrade to an empty list so the UI falls back to its local data instead
// of erroring out.
func (m *Module) getConversations(c *fiber.Ctx) error {
	phone := c.Params("phone")
	if phone == "" {
		return badRequest(c, "Phone number is required")
	}

	conversations, err := m.chatPort.ConversationsForUser(c.Context(), phone)
	if err != nil {
		log.Printf("[api] conversations lookup failed for %s: %v", phone, err)
		return c.JSON([]domain.Conversation{})
	}
	if conversations == nil {
		conversations = []domain.Conversation{}
	}
	return c.JSON(conversations)
}

// messagesBetween handles POST /api/v1/messages/between. Fetching a
// conversation marks the peer's messages as read, so the unread badge
// clears when a chat is opened.
func (m *Module) messagesBetween(c *fiber.Ctx) error {
	var req MessagesBetweenRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.User1 == "" || req.User2 == "" {
		return badRequest(c, "Both user phone numbers are required")
	}

	messages, err := m.chatPort.MessagesBetween(c.Context(), req.User1, req.User2)
	if err != nil {
		log.Printf("[api] messages lookup failed: %v", err)
		return c.JSON([]domain.Message{})
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	return c.JSON(messages)
}

// sendMessage handles POST /api/v1/messages/send.
func (m *Module) sendMessage(c *fiber.Ctx) error {
	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.FromPhone == "" || req.ToPhone == "" || req.MessageText == "" {
		return badRequest(c, "Missing required fields")
	}

	saved, err := m.chatPort.SaveMessage(c.Context(), domain.Message{
		FromPhone:  req.FromPhone,
		ToPhone:    req.ToPhone,
		Text:       req.MessageText,
		Kind:       domain.KindOutgoing,
		Status:     domain.StatusSent,
		SenderName: req.SenderName,
	})
	if err != nil {
		log.Printf("[api] send message failed: %v", err)
		return internalError(c, "Failed to send message")
	}
	return c.JSON(saved)
}

// updateStatus handles PUT /api/v1/messages/status.
func (m *Module) updateStatus(c *fiber.Ctx) error {
	var req StatusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.MessageID == "" && req.MetaMsgID == "" {
		return badRequest(c, "messageId or meta_msg_id is required")
	}

	err := m.chatPort.UpdateStatus(c.Context(), req.MessageID, req.MetaMsgID, domain.MessageStatus(req.Status))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Message not found or not updated",
			"message": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"success": true})
}

// processWebhook handles POST /api/v1/webhook/process.
func (m *Module) processWebhook(c *fiber.Ctx) error {
	body := c.Body()
	if len(body) == 0 {
		return badRequest(c, "Request body is required")
	}

	processed, err := m.webhookModule.Service().Process(c.Context(), body)
	if err != nil {
		log.Printf("[api] webhook processing failed: %v", err)
		return internalError(c, "Failed to process webhook messages")
	}
	return c.JSON(fiber.Map{
		"success":   true,
		"processed": processed,
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":   "Bad Request",
		"message": msg,
	})
}

func internalError(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":   "Internal Server Error",
		"message": msg,
	})
}
