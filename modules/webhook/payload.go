package webhook

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	domain "github.com/example/realtime-chat-app/domain/chat"
)

// Provider payload shapes, following the business messaging webhook format:
// entry[].changes[].value carries contacts, messages and statuses.

type providerPayload struct {
	Entry    []providerEntry `json:"entry"`
	Messages []flatMessage   `json:"messages"`
}

type providerEntry struct {
	Changes []providerChange `json:"changes"`
}

type providerChange struct {
	Value providerValue `json:"value"`
}

type providerValue struct {
	Contacts []providerContact `json:"contacts"`
	Messages []providerMessage `json:"messages"`
	Statuses []providerStatus  `json:"statuses"`
}

type providerContact struct {
	WaID    string `json:"wa_id"`
	Profile struct {
		Name string `json:"name"`
	} `json:"profile"`
}

type providerMessage struct {
	From      string `json:"from"`
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Text      *struct {
		Body string `json:"body"`
	} `json:"text"`
	Image    *mediaAttachment `json:"image"`
	Document *mediaAttachment `json:"document"`
	Audio    *mediaAttachment `json:"audio"`
	Video    *mediaAttachment `json:"video"`
}

type mediaAttachment struct {
	Caption  string `json:"caption"`
	Filename string `json:"filename"`
}

type providerStatus struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	RecipientID string `json:"recipient_id"`
}

// flatMessage is the pre-normalized form some payloads carry instead of the
// nested provider structure.
type flatMessage struct {
	WaID       string `json:"wa_id"`
	Text       string `json:"text"`
	Timestamp  string `json:"timestamp"`
	Type       string `json:"type"`
	Status     string `json:"status"`
	ID         string `json:"id"`
	MetaMsgID  string `json:"meta_msg_id"`
	SenderName string `json:"sender_name"`
}

// IncomingMessage is a normalized message extracted from a payload.
type IncomingMessage struct {
	WaID       string
	Text       string
	Timestamp  time.Time
	Kind       domain.MessageKind
	Status     domain.MessageStatus
	MetaMsgID  string
	SenderName string
}

// StatusUpdate is a normalized delivery-state change from a payload.
type StatusUpdate struct {
	MetaMsgID   string
	Status      domain.MessageStatus
	RecipientID string
}

// ExtractPayload pulls messages and status updates out of a raw webhook
// body. Three shapes are accepted: the nested provider format, an object
// with a flat messages array, and a bare top-level array of flat messages.
func ExtractPayload(raw []byte) ([]IncomingMessage, []StatusUpdate, error) {
	var flat []flatMessage
	if err := json.Unmarshal(raw, &flat); err == nil {
		return normalizeFlat(flat), nil, nil
	}

	var payload providerPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, nil, fmt.Errorf("unrecognized payload: %w", err)
	}

	messages := normalizeFlat(payload.Messages)
	var statuses []StatusUpdate

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				messages = append(messages, IncomingMessage{
					WaID:       msg.From,
					Text:       messageText(msg),
					Timestamp:  parseEpochSeconds(msg.Timestamp),
					Kind:       domain.KindIncoming,
					Status:     domain.StatusDelivered,
					MetaMsgID:  msg.ID,
					SenderName: contactName(change.Value.Contacts, msg.From),
				})
			}
			for _, st := range change.Value.Statuses {
				statuses = append(statuses, StatusUpdate{
					MetaMsgID:   st.ID,
					Status:      domain.MessageStatus(st.Status),
					RecipientID: st.RecipientID,
				})
			}
		}
	}

	return messages, statuses, nil
}

func normalizeFlat(flat []flatMessage) []IncomingMessage {
	var messages []IncomingMessage
	for _, item := range flat {
		if item.WaID == "" || item.Text == "" {
			continue
		}
		msg := IncomingMessage{
			WaID:       item.WaID,
			Text:       item.Text,
			Kind:       domain.KindIncoming,
			Status:     domain.StatusDelivered,
			MetaMsgID:  item.MetaMsgID,
			SenderName: item.SenderName,
		}
		if item.Type != "" {
			msg.Kind = domain.MessageKind(item.Type)
		}
		if item.Status != "" {
			msg.Status = domain.MessageStatus(item.Status)
		}
		if msg.MetaMsgID == "" {
			msg.MetaMsgID = item.ID
		}
		if ts, err := time.Parse(time.RFC3339, item.Timestamp); err == nil {
			msg.Timestamp = ts
		} else {
			msg.Timestamp = time.Now().UTC()
		}
		messages = append(messages, msg)
	}
	return messages
}

// messageText resolves the displayable text for a provider message,
// substituting a short description for media types.
func messageText(msg providerMessage) string {
	if msg.Text != nil && msg.Text.Body != "" {
		return msg.Text.Body
	}
	switch msg.Type {
	case "image":
		if msg.Image != nil && msg.Image.Caption != "" {
			return "Image: " + msg.Image.Caption
		}
		return "Image"
	case "document":
		if msg.Document != nil && msg.Document.Filename != "" {
			return "Document: " + msg.Document.Filename
		}
		return "Document"
	case "audio":
		return "Audio message"
	case "video":
		if msg.Video != nil && msg.Video.Caption != "" {
			return "Video: " + msg.Video.Caption
		}
		return "Video"
	}
	return "Unsupported message type"
}

func contactName(contacts []providerContact, waID string) string {
	for _, c := range contacts {
		if c.WaID == waID {
			return c.Profile.Name
		}
	}
	return ""
}

// parseEpochSeconds converts the provider's second-granularity string
// timestamps. Unparseable values fall back to now.
func parseEpochSeconds(s string) time.Time {
	secs, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Now().UTC()
	}
	return time.Unix(secs, 0).UTC()
}
