package chat

import (
	"context"
	"testing"
	"time"

	domain "github.com/example/realtime-chat-app/domain/chat"
)

func saveAll(t *testing.T, s Store, messages []domain.Message) {
	t.Helper()
	ctx := context.Background()
	for i := range messages {
		if err := s.SaveMessage(ctx, &messages[i]); err != nil {
			t.Fatalf("SaveMessage() error = %v", err)
		}
	}
}

func TestMemoryStore_MessagesBetween(t *testing.T) {
	s := NewMemoryStore()
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	saveAll(t, s, []domain.Message{
		{ID: "m1", FromPhone: "111", ToPhone: "222", Text: "first", Timestamp: base},
		{ID: "m2", FromPhone: "222", ToPhone: "111", Text: "second", Timestamp: base.Add(time.Minute)},
		{ID: "m3", FromPhone: "111", ToPhone: "333", Text: "other chat", Timestamp: base.Add(2 * time.Minute)},
		{ID: "m4", FromPhone: "111", ToPhone: "222", Text: "third", Timestamp: base.Add(3 * time.Minute)},
	})

	messages, err := s.MessagesBetween(context.Background(), "111", "222")
	if err != nil {
		t.Fatalf("MessagesBetween() error = %v", err)
	}

	if len(messages) != 3 {
		t.Fatalf("MessagesBetween() returned %d messages, want 3", len(messages))
	}
	for i, want := range []string{"first", "second", "third"} {
		if messages[i].Text != want {
			t.Errorf("messages[%d].Text = %q, want %q", i, messages[i].Text, want)
		}
	}
}

func TestMemoryStore_ConversationsForUser(t *testing.T) {
	s := NewMemoryStore()
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	saveAll(t, s, []domain.Message{
		{ID: "m1", FromPhone: "222", ToPhone: "111", Text: "hi", SenderName: "Bea",
			Timestamp: base, Status: domain.StatusDelivered},
		{ID: "m2", FromPhone: "222", ToPhone: "111", Text: "still there?", SenderName: "Bea",
			Timestamp: base.Add(time.Minute), Status: domain.StatusDelivered},
		{ID: "m3", FromPhone: "111", ToPhone: "333", Text: "hello", Timestamp: base.Add(2 * time.Minute),
			Status: domain.StatusSent},
		{ID: "m4", FromPhone: "333", ToPhone: "111", Text: "hey back", Timestamp: base.Add(3 * time.Minute),
			Status: domain.StatusRead},
	})

	conversations, err := s.ConversationsForUser(context.Background(), "111")
	if err != nil {
		t.Fatalf("ConversationsForUser() error = %v", err)
	}
	if len(conversations) != 2 {
		t.Fatalf("ConversationsForUser() returned %d conversations, want 2", len(conversations))
	}

	// Most recent conversation first.
	if conversations[0].PeerPhone != "333" {
		t.Errorf("conversations[0].PeerPhone = %q, want %q", conversations[0].PeerPhone, "333")
	}
	if conversations[0].LastMessage != "hey back" {
		t.Errorf("conversations[0].LastMessage = %q, want %q", conversations[0].LastMessage, "hey back")
	}
	if conversations[0].UnreadCount != 0 {
		t.Errorf("conversations[0].UnreadCount = %d, want 0", conversations[0].UnreadCount)
	}

	second := conversations[1]
	if second.PeerPhone != "222" {
		t.Errorf("conversations[1].PeerPhone = %q, want %q", second.PeerPhone, "222")
	}
	if second.UnreadCount != 2 {
		t.Errorf("conversations[1].UnreadCount = %d, want 2", second.UnreadCount)
	}
	if second.Name != "Bea" {
		t.Errorf("conversations[1].Name = %q, want %q", second.Name, "Bea")
	}
}

func TestMemoryStore_UpdateStatus(t *testing.T) {
	s := NewMemoryStore()
	saveAll(t, s, []domain.Message{
		{ID: "m1", FromPhone: "111", ToPhone: "222", Text: "hi",
			MetaMsgID: "meta-1", Status: domain.StatusSent},
	})
	ctx := context.Background()

	if err := s.UpdateStatusByID(ctx, "m1", domain.StatusDelivered); err != nil {
		t.Fatalf("UpdateStatusByID() error = %v", err)
	}
	if err := s.UpdateStatusByMetaID(ctx, "meta-1", domain.StatusRead); err != nil {
		t.Fatalf("UpdateStatusByMetaID() error = %v", err)
	}

	messages, _ := s.MessagesBetween(ctx, "111", "222")
	if messages[0].Status != domain.StatusRead {
		t.Errorf("status = %q, want %q", messages[0].Status, domain.StatusRead)
	}

	if err := s.UpdateStatusByID(ctx, "missing", domain.StatusRead); err != ErrMessageNotFound {
		t.Errorf("UpdateStatusByID(missing) error = %v, want ErrMessageNotFound", err)
	}
	if err := s.UpdateStatusByMetaID(ctx, "missing", domain.StatusRead); err != ErrMessageNotFound {
		t.Errorf("UpdateStatusByMetaID(missing) error = %v, want ErrMessageNotFound", err)
	}
}

func TestMemoryStore_MarkRead(t *testing.T) {
	s := NewMemoryStore()
	saveAll(t, s, []domain.Message{
		{ID: "m1", FromPhone: "222", ToPhone: "111", Text: "a", Status: domain.StatusDelivered},
		{ID: "m2", FromPhone: "222", ToPhone: "111", Text: "b", Status: domain.StatusDelivered},
		{ID: "m3", FromPhone: "222", ToPhone: "111", Text: "c", Status: domain.StatusRead},
		{ID: "m4", FromPhone: "111", ToPhone: "222", Text: "d", Status: domain.StatusDelivered},
	})
	ctx := context.Background()

	changed, err := s.MarkRead(ctx, "222", "111")
	if err != nil {
		t.Fatalf("MarkRead() error = %v", err)
	}
	if changed != 2 {
		t.Errorf("MarkRead() changed = %d, want 2", changed)
	}

	messages, _ := s.MessagesBetween(ctx, "111", "222")
	for _, msg := range messages {
		if msg.FromPhone == "222" && msg.Status != domain.StatusRead {
			t.Errorf("message %s status = %q, want read", msg.ID, msg.Status)
		}
	}
	// The user's own outgoing message is untouched.
	for _, msg := range messages {
		if msg.ID == "m4" && msg.Status != domain.StatusDelivered {
			t.Errorf("outgoing message status = %q, want delivered", msg.Status)
		}
	}
}

func TestMemoryStore_SaveAssignsID(t *testing.T) {
	s := NewMemoryStore()
	msg := domain.Message{FromPhone: "111", ToPhone: "222", Text: "hi"}
	if err := s.SaveMessage(context.Background(), &msg); err != nil {
		t.Fatalf("SaveMessage() error = %v", err)
	}
	if msg.ID == "" {
		t.Error("SaveMessage() did not assign an ID")
	}
	if msg.Timestamp.IsZero() {
		t.Error("SaveMessage() did not assign a timestamp")
	}
}

func TestSeededMemoryStore(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := NewSeededMemoryStore(now)

	conversations, err := s.ConversationsForUser(context.Background(), "919937320320")
	if err != nil {
		t.Fatalf("ConversationsForUser() error = %v", err)
	}
	if len(conversations) != 3 {
		t.Fatalf("seeded store has %d conversations, want 3", len(conversations))
	}

	// Most recent seed (John Doe, 30 minutes ago) sorts first.
	if conversations[0].Name != "John Doe" {
		t.Errorf("conversations[0].Name = %q, want %q", conversations[0].Name, "John Doe")
	}
	if conversations[0].UnreadCount != 1 {
		t.Errorf("conversations[0].UnreadCount = %d, want 1", conversations[0].UnreadCount)
	}

	// Jane Smith's message is already read.
	for _, conv := range conversations {
		if conv.Name == "Jane Smith" && conv.UnreadCount != 0 {
			t.Errorf("Jane Smith UnreadCount = %d, want 0", conv.UnreadCount)
		}
	}
}
