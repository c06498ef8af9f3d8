package api

import (
	"context"
	"encoding/json"
	"log"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"

	"github.com/example/realtime-chat-app/modules/relay"
)

// handleSocket serves one WebSocket session on /api/socketio. Each frame is
// an envelope {event, data}; the data payload stays opaque except for the
// routing fields the relay extracts.
func (m *Module) handleSocket(c *websocket.Conn) {
	client := &relay.Client{
		ID:        uuid.New().String(),
		UserPhone: c.Query("user_phone"),
		Conn:      c,
	}

	r := m.relayModule.Relay()
	r.Hub().Register(client)

	limiter := newRateLimiter(burstSize, messagesPerSecond)

	// Sessions that identify themselves up front get their personal room
	// immediately, like a socket auth handshake.
	if client.UserPhone != "" {
		r.JoinUserRoom(client, client.UserPhone)
		m.markOnline(client.UserPhone)
	}

	defer func() {
		r.Disconnect(client)
		log.Printf("[api] Socket disconnected: %s", client.ID)
	}()

	log.Printf("[api] Socket connected: %s", client.ID)

	for {
		_, frame, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[api] Socket error on %s: %v", client.ID, err)
			}
			return
		}

		var env relay.Envelope
		if err := json.Unmarshal(frame, &env); err != nil {
			log.Printf("[api] Dropping malformed frame from %s: %v", client.ID, err)
			continue
		}

		m.dispatchSocketEvent(r, client, limiter, env)
	}
}

func (m *Module) dispatchSocketEvent(r *relay.Relay, client *relay.Client, limiter *rateLimiter, env relay.Envelope) {
	switch env.Event {
	case relay.EventJoinUserRoom:
		phone := decodeStringPayload(env.Data)
		client.UserPhone = phone
		r.JoinUserRoom(client, phone)
		m.markOnline(phone)
	case relay.EventJoinConversationRoom:
		r.JoinConversation(client, decodeStringPayload(env.Data))
	case relay.EventLeaveConversation:
		r.LeaveConversation(client, decodeStringPayload(env.Data))
	case relay.EventSendMessage:
		if !limiter.allow() {
			log.Printf("[api] Rate limit exceeded on %s, dropping send-message", client.ID)
			return
		}
		r.RelayMessage(client, env.Data)
	case relay.EventTypingStart:
		r.RelayTyping(client, env.Data, true)
	case relay.EventTypingStop:
		r.RelayTyping(client, env.Data, false)
	case relay.EventMessageStatusUpdate:
		r.RelayStatus(client, env.Data)
	case relay.EventUserOnline:
		phone := decodeStringPayload(env.Data)
		m.markOnline(phone)
		r.RelayPresence(client, phone)
	default:
		log.Printf("[api] Unknown socket event %q from %s", env.Event, client.ID)
	}
}

// markOnline refreshes the presence key; best-effort.
func (m *Module) markOnline(phone string) {
	if phone == "" {
		return
	}
	pc := m.presenceCache()
	if pc == nil {
		return
	}
	if err := pc.SetOnline(context.Background(), phone); err != nil {
		log.Printf("[api] Failed to record presence for %s: %v", phone, err)
	}
}

// decodeStringPayload accepts either a bare JSON string ("919...") or an
// object carrying user_id / conversation_id, since clients have shipped
// both shapes.
func decodeStringPayload(data json.RawMessage) string {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s
	}
	var obj struct {
		UserID         string `json:"user_id"`
		UserPhone      string `json:"user_phone"`
		ConversationID string `json:"conversation_id"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return ""
	}
	switch {
	case obj.ConversationID != "":
		return obj.ConversationID
	case obj.UserPhone != "":
		return obj.UserPhone
	default:
		return obj.UserID
	}
}
