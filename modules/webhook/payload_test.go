package webhook

import (
	"testing"
	"time"

	domain "github.com/example/realtime-chat-app/domain/chat"
)

const providerPayloadJSON = `{
  "entry": [
    {
      "changes": [
        {
          "value": {
            "contacts": [
              {"wa_id": "919937320320", "profile": {"name": "Ravi Kumar"}}
            ],
            "messages": [
              {
                "from": "919937320320",
                "id": "wamid.abc123",
                "timestamp": "1717243800",
                "type": "text",
                "text": {"body": "Hello there"}
              }
            ],
            "statuses": [
              {"id": "wamid.prev456", "status": "read", "recipient_id": "918329446654"}
            ]
          }
        }
      ]
    }
  ]
}`

func TestExtractPayload_ProviderFormat(t *testing.T) {
	messages, statuses, err := ExtractPayload([]byte(providerPayloadJSON))
	if err != nil {
		t.Fatalf("ExtractPayload() error = %v", err)
	}

	if len(messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(messages))
	}
	msg := messages[0]
	if msg.WaID != "919937320320" {
		t.Errorf("msg.WaID = %q, want %q", msg.WaID, "919937320320")
	}
	if msg.Text != "Hello there" {
		t.Errorf("msg.Text = %q, want %q", msg.Text, "Hello there")
	}
	if msg.SenderName != "Ravi Kumar" {
		t.Errorf("msg.SenderName = %q, want %q", msg.SenderName, "Ravi Kumar")
	}
	if msg.MetaMsgID != "wamid.abc123" {
		t.Errorf("msg.MetaMsgID = %q, want %q", msg.MetaMsgID, "wamid.abc123")
	}
	want := time.Unix(1717243800, 0).UTC()
	if !msg.Timestamp.Equal(want) {
		t.Errorf("msg.Timestamp = %v, want %v", msg.Timestamp, want)
	}
	if msg.Kind != domain.KindIncoming {
		t.Errorf("msg.Kind = %q, want incoming", msg.Kind)
	}
	if msg.Status != domain.StatusDelivered {
		t.Errorf("msg.Status = %q, want delivered", msg.Status)
	}

	if len(statuses) != 1 {
		t.Fatalf("got %d statuses, want 1", len(statuses))
	}
	st := statuses[0]
	if st.MetaMsgID != "wamid.prev456" {
		t.Errorf("st.MetaMsgID = %q, want %q", st.MetaMsgID, "wamid.prev456")
	}
	if st.Status != domain.StatusRead {
		t.Errorf("st.Status = %q, want read", st.Status)
	}
	if st.RecipientID != "918329446654" {
		t.Errorf("st.RecipientID = %q, want %q", st.RecipientID, "918329446654")
	}
}

func TestExtractPayload_FlatArray(t *testing.T) {
	raw := `[
	  {"wa_id": "919876543210", "text": "flat hello", "timestamp": "2025-06-01T10:00:00Z",
	   "meta_msg_id": "m-1", "sender_name": "Priya Sharma"},
	  {"wa_id": "919876543210", "text": "no explicit meta", "id": "m-2"},
	  {"wa_id": "", "text": "dropped, no wa_id"}
	]`

	messages, statuses, err := ExtractPayload([]byte(raw))
	if err != nil {
		t.Fatalf("ExtractPayload() error = %v", err)
	}
	if len(statuses) != 0 {
		t.Errorf("got %d statuses, want 0", len(statuses))
	}
	if len(messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(messages))
	}

	if messages[0].SenderName != "Priya Sharma" {
		t.Errorf("messages[0].SenderName = %q, want %q", messages[0].SenderName, "Priya Sharma")
	}
	want := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	if !messages[0].Timestamp.Equal(want) {
		t.Errorf("messages[0].Timestamp = %v, want %v", messages[0].Timestamp, want)
	}

	// The id field backfills a missing meta_msg_id.
	if messages[1].MetaMsgID != "m-2" {
		t.Errorf("messages[1].MetaMsgID = %q, want %q", messages[1].MetaMsgID, "m-2")
	}
	if messages[1].Timestamp.IsZero() {
		t.Error("messages[1].Timestamp should default to now")
	}
}

func TestExtractPayload_FlatObjectForm(t *testing.T) {
	raw := `{"messages": [{"wa_id": "915555555555", "text": "wrapped"}]}`

	messages, _, err := ExtractPayload([]byte(raw))
	if err != nil {
		t.Fatalf("ExtractPayload() error = %v", err)
	}
	if len(messages) != 1 || messages[0].Text != "wrapped" {
		t.Fatalf("got %+v, want one message with text %q", messages, "wrapped")
	}
}

func TestExtractPayload_Garbage(t *testing.T) {
	if _, _, err := ExtractPayload([]byte("not json")); err == nil {
		t.Error("ExtractPayload() should fail on non-JSON input")
	}
}

func TestMessageText_MediaFallbacks(t *testing.T) {
	tests := []struct {
		name string
		msg  providerMessage
		want string
	}{
		{
			name: "text body",
			msg: providerMessage{Type: "text", Text: &struct {
				Body string `json:"body"`
			}{Body: "plain"}},
			want: "plain",
		},
		{
			name: "image with caption",
			msg:  providerMessage{Type: "image", Image: &mediaAttachment{Caption: "sunset"}},
			want: "Image: sunset",
		},
		{
			name: "document with filename",
			msg:  providerMessage{Type: "document", Document: &mediaAttachment{Filename: "report.pdf"}},
			want: "Document: report.pdf",
		},
		{
			name: "audio",
			msg:  providerMessage{Type: "audio", Audio: &mediaAttachment{}},
			want: "Audio message",
		},
		{
			name: "unknown",
			msg:  providerMessage{Type: "sticker"},
			want: "Unsupported message type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := messageText(tt.msg); got != tt.want {
				t.Errorf("messageText() = %q, want %q", got, tt.want)
			}
		})
	}
}
