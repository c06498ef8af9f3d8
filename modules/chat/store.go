package chat

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	domain "github.com/example/realtime-chat-app/domain/chat"
)

// ErrMessageNotFound is returned when a status update matches no message.
var ErrMessageNotFound = errors.New("message not found")

// Store is the persistence boundary for messages and conversation summaries.
// Two implementations exist: a GORM/SQLite store and an in-memory store used
// when no database is configured.
type Store interface {
	SaveMessage(ctx context.Context, msg *domain.Message) error
	MessagesBetween(ctx context.Context, user1, user2 string) ([]domain.Message, error)
	ConversationsForUser(ctx context.Context, userPhone string) ([]domain.Conversation, error)
	UpdateStatusByID(ctx context.Context, messageID string, status domain.MessageStatus) error
	UpdateStatusByMetaID(ctx context.Context, metaMsgID string, status domain.MessageStatus) error
	MarkRead(ctx context.Context, fromPhone, toPhone string) (int, error)
	Ping(ctx context.Context) error
}

// MemoryStore keeps messages in memory. It backs the application when
// CHAT_DB_PATH is unset, pre-seeded with demo conversations so the UI has
// data to show.
type MemoryStore struct {
	mu       sync.RWMutex
	messages []domain.Message
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// NewSeededMemoryStore creates an in-memory store pre-populated with demo
// conversations so the UI has something to show without a database.
func NewSeededMemoryStore(now time.Time) *MemoryStore {
	s := NewMemoryStore()
	seed := []domain.Message{
		{
			FromPhone: "1234567890", ToPhone: "919937320320",
			Text: "Hey, how are you doing?", SenderName: "John Doe",
			Timestamp: now.Add(-30 * time.Minute),
			Kind:      domain.KindIncoming, Status: domain.StatusDelivered,
		},
		{
			FromPhone: "0987654321", ToPhone: "919937320320",
			Text: "Thanks for the help!", SenderName: "Jane Smith",
			Timestamp: now.Add(-2 * time.Hour),
			Kind:      domain.KindIncoming, Status: domain.StatusRead,
		},
		{
			FromPhone: "5555555555", ToPhone: "919937320320",
			Text: "See you tomorrow", SenderName: "Mike Johnson",
			Timestamp: now.Add(-24 * time.Hour),
			Kind:      domain.KindIncoming, Status: domain.StatusDelivered,
		},
	}
	ctx := context.Background()
	for i := range seed {
		_ = s.SaveMessage(ctx, &seed[i])
	}
	return s
}

// SaveMessage stores a message, assigning a timestamp-derived ID when the
// caller did not set one.
func (s *MemoryStore) SaveMessage(_ context.Context, msg *domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg.ID == "" {
		msg.ID = strconv.FormatInt(time.Now().UnixNano(), 10)
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	now := time.Now()
	msg.CreatedAt = now
	msg.UpdatedAt = now
	s.messages = append(s.messages, *msg)
	return nil
}

// MessagesBetween returns both directions of a two-party chat, oldest first.
func (s *MemoryStore) MessagesBetween(_ context.Context, user1, user2 string) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.Message
	for _, msg := range s.messages {
		if (msg.FromPhone == user1 && msg.ToPhone == user2) ||
			(msg.FromPhone == user2 && msg.ToPhone == user1) {
			result = append(result, msg)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp.Before(result[j].Timestamp)
	})
	return result, nil
}

// ConversationsForUser groups messages by peer, most recent first, counting
// unread messages addressed to the user.
func (s *MemoryStore) ConversationsForUser(_ context.Context, userPhone string) ([]domain.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byPeer := make(map[string]*domain.Conversation)
	for _, msg := range s.messages {
		var peer string
		switch userPhone {
		case msg.FromPhone:
			peer = msg.ToPhone
		case msg.ToPhone:
			peer = msg.FromPhone
		default:
			continue
		}

		conv, ok := byPeer[peer]
		if !ok {
			conv = &domain.Conversation{PeerPhone: peer, Name: domain.DisplayName(peer)}
			byPeer[peer] = conv
		}
		if !msg.Timestamp.Before(conv.LastMessageTime) {
			conv.LastMessage = msg.Text
			conv.LastMessageTime = msg.Timestamp
		}
		if msg.ToPhone == userPhone && msg.Status != domain.StatusRead {
			conv.UnreadCount++
		}
		if msg.FromPhone == peer && msg.SenderName != "" {
			conv.Name = msg.SenderName
		}
	}

	result := make([]domain.Conversation, 0, len(byPeer))
	for _, conv := range byPeer {
		result = append(result, *conv)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].LastMessageTime.After(result[j].LastMessageTime)
	})
	return result, nil
}

// UpdateStatusByID sets the delivery state of one message by its ID.
func (s *MemoryStore) UpdateStatusByID(_ context.Context, messageID string, status domain.MessageStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.messages {
		if s.messages[i].ID == messageID {
			s.messages[i].Status = status
			s.messages[i].UpdatedAt = time.Now()
			return nil
		}
	}
	return ErrMessageNotFound
}

// UpdateStatusByMetaID sets the delivery state of one message by its
// provider-assigned identifier.
func (s *MemoryStore) UpdateStatusByMetaID(_ context.Context, metaMsgID string, status domain.MessageStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.messages {
		if s.messages[i].MetaMsgID != "" && s.messages[i].MetaMsgID == metaMsgID {
			s.messages[i].Status = status
			s.messages[i].UpdatedAt = time.Now()
			return nil
		}
	}
	return ErrMessageNotFound
}

// MarkRead marks every unread message from fromPhone to toPhone as read and
// returns how many changed.
func (s *MemoryStore) MarkRead(_ context.Context, fromPhone, toPhone string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0
	for i := range s.messages {
		if s.messages[i].FromPhone == fromPhone &&
			s.messages[i].ToPhone == toPhone &&
			s.messages[i].Status != domain.StatusRead {
			s.messages[i].Status = domain.StatusRead
			s.messages[i].UpdatedAt = time.Now()
			changed++
		}
	}
	return changed, nil
}

// Ping always succeeds for the in-memory store.
func (s *MemoryStore) Ping(_ context.Context) error {
	return nil
}
