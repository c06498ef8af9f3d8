package relay

import (
	"encoding/json"
	"log"
	"time"
)

// Wire event names, client to server.
const (
	EventJoinUserRoom         = "join-user-room"
	EventJoinConversationRoom = "join-conversation-room"
	EventLeaveConversation    = "leave-conversation-room"
	EventSendMessage          = "send-message"
	EventTypingStart          = "typing-start"
	EventTypingStop           = "typing-stop"
	EventMessageStatusUpdate  = "message-status-update"
	EventUserOnline           = "user-online"
)

// Wire event names, server to client.
const (
	EventNewMessage           = "new-message"
	EventUserTyping           = "user-typing"
	EventMessageStatusChanged = "message-status-changed"
	EventUserStatusChanged    = "user-status-changed"
)

// Envelope is the frame exchanged over the socket: an event name and an
// opaque payload. The relay never interprets Data beyond extracting the
// routing fields it needs.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// routingFields are the only payload fields the relay reads.
type routingFields struct {
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id"`
}

// TypingPayload is the server-built payload for user-typing events.
type TypingPayload struct {
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id"`
	IsTyping       bool   `json:"is_typing"`
}

// PresencePayload is the server-built payload for user-status-changed events.
type PresencePayload struct {
	UserID   string `json:"user_id"`
	IsOnline bool   `json:"is_online"`
	LastSeen string `json:"last_seen"`
}

// Relay routes events between connected sessions through the hub. It holds
// no state of its own and persists nothing; delivery is best-effort,
// at-most-once, with no acknowledgement.
type Relay struct {
	hub *Hub
}

// NewRelay creates a relay on top of a hub.
func NewRelay(hub *Hub) *Relay {
	return &Relay{hub: hub}
}

// Hub exposes the underlying hub for registration and health reporting.
func (r *Relay) Hub() *Hub {
	return r.hub
}

// JoinUserRoom subscribes a connection to its user's personal room so events
// addressed to that user reach every open session. Duplicate joins are
// harmless. No check binds the connection to the phone it claims; any
// session may join any room by name.
func (r *Relay) JoinUserRoom(client *Client, userPhone string) {
	if userPhone == "" {
		return
	}
	r.hub.JoinRoom(client.ID, UserRoom(userPhone))
}

// JoinConversation subscribes a connection to a conversation room.
func (r *Relay) JoinConversation(client *Client, conversationID string) {
	if conversationID == "" {
		return
	}
	r.hub.JoinRoom(client.ID, ConversationRoom(conversationID))
}

// LeaveConversation removes a connection from a conversation room.
func (r *Relay) LeaveConversation(client *Client, conversationID string) {
	if conversationID == "" {
		return
	}
	r.hub.LeaveRoom(client.ID, ConversationRoom(conversationID))
}

// RelayMessage forwards a send-message payload verbatim to every other
// member of its conversation room as a new-message event.
func (r *Relay) RelayMessage(client *Client, data json.RawMessage) {
	fields, ok := route(data)
	if !ok {
		return
	}
	r.emit(ConversationRoom(fields.ConversationID), client.ID, EventNewMessage, data)
}

// RelayTyping broadcasts a typing indicator to the conversation room,
// excluding the sender. Indicators are not deduplicated: two typing-starts
// in a row yield two deliveries.
func (r *Relay) RelayTyping(client *Client, data json.RawMessage, isTyping bool) {
	fields, ok := route(data)
	if !ok {
		return
	}
	payload, err := json.Marshal(TypingPayload{
		ConversationID: fields.ConversationID,
		UserID:         fields.UserID,
		IsTyping:       isTyping,
	})
	if err != nil {
		return
	}
	r.emit(ConversationRoom(fields.ConversationID), client.ID, EventUserTyping, payload)
}

// RelayStatus forwards a message-status-update payload verbatim to the
// conversation room as a message-status-changed event.
func (r *Relay) RelayStatus(client *Client, data json.RawMessage) {
	fields, ok := route(data)
	if !ok {
		return
	}
	r.emit(ConversationRoom(fields.ConversationID), client.ID, EventMessageStatusChanged, data)
}

// RelayPresence announces that a user came online to every other connected
// session, regardless of room membership.
func (r *Relay) RelayPresence(client *Client, userPhone string) {
	if userPhone == "" {
		return
	}
	payload, err := json.Marshal(PresencePayload{
		UserID:   userPhone,
		IsOnline: true,
		LastSeen: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return
	}
	frame, err := json.Marshal(Envelope{Event: EventUserStatusChanged, Data: payload})
	if err != nil {
		return
	}
	r.hub.BroadcastAll(client.ID, frame)
}

// DeliverMessage pushes a message that arrived outside a live socket
// session (REST send, webhook ingestion) to the recipient's personal room
// as a new-message event.
func (r *Relay) DeliverMessage(toPhone string, data json.RawMessage) {
	if toPhone == "" {
		return
	}
	r.emit(UserRoom(toPhone), "", EventNewMessage, data)
}

// DeliverToConversation pushes a message to everyone viewing a conversation
// room as a new-message event.
func (r *Relay) DeliverToConversation(conversationID string, data json.RawMessage) {
	if conversationID == "" {
		return
	}
	r.emit(ConversationRoom(conversationID), "", EventNewMessage, data)
}

// NotifyStatusChange pushes a message-status-changed event to both
// participants' personal rooms.
func (r *Relay) NotifyStatusChange(fromPhone, toPhone string, data json.RawMessage) {
	if fromPhone != "" {
		r.emit(UserRoom(fromPhone), "", EventMessageStatusChanged, data)
	}
	if toPhone != "" {
		r.emit(UserRoom(toPhone), "", EventMessageStatusChanged, data)
	}
}

// Disconnect removes a connection from every room it joined. In-flight
// broadcasts already queued for other listeners are unaffected.
func (r *Relay) Disconnect(client *Client) {
	r.hub.Unregister(client)
}

func (r *Relay) emit(room, excludeID, event string, data json.RawMessage) {
	frame, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		return
	}
	r.hub.Broadcast(room, excludeID, frame)
}

// route extracts the routing fields from an opaque payload. Payloads with no
// conversation_id cannot be routed and are dropped silently.
func route(data json.RawMessage) (routingFields, bool) {
	var fields routingFields
	if err := json.Unmarshal(data, &fields); err != nil {
		log.Printf("[relay] Dropping unroutable payload: %v", err)
		return routingFields{}, false
	}
	if fields.ConversationID == "" {
		return routingFields{}, false
	}
	return fields, true
}
