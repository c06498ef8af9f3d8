package chat

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	domain "github.com/example/realtime-chat-app/domain/chat"
	"github.com/example/realtime-chat-app/modules/cache"
)

// Service implements the chat operations on top of a Store, with an
// optional cache for conversation lists.
type Service struct {
	store Store
	cache *cache.Cache
	group singleflight.Group
}

// NewService creates a chat service. The cache may be nil and can be wired
// later with SetCache.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// SetCache attaches the conversation-list cache.
func (s *Service) SetCache(c *cache.Cache) {
	s.cache = c
}

// SaveMessage validates and persists a message, assigning an ID, a
// provider-style meta ID and a timestamp when missing.
func (s *Service) SaveMessage(ctx context.Context, msg *domain.Message) (*domain.Message, error) {
	if msg.FromPhone == "" || msg.ToPhone == "" || msg.Text == "" {
		return nil, fmt.Errorf("from_phone, to_phone and text are required")
	}
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.MetaMsgID == "" {
		msg.MetaMsgID = fmt.Sprintf("msg_%d_%s", time.Now().UnixMilli(), msg.ID[:8])
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	if msg.Kind == "" {
		msg.Kind = domain.KindOutgoing
	}
	if msg.Status == "" {
		msg.Status = domain.StatusSent
	}

	if err := s.store.SaveMessage(ctx, msg); err != nil {
		return nil, err
	}
	s.invalidateConversations(ctx, msg.FromPhone, msg.ToPhone)
	return msg, nil
}

// MessagesBetween returns the full two-party history, oldest first, and
// marks the peer's messages to the requesting user as read, so opening a
// conversation clears its unread badge.
func (s *Service) MessagesBetween(ctx context.Context, userPhone, peerPhone string) ([]domain.Message, error) {
	messages, err := s.store.MessagesBetween(ctx, userPhone, peerPhone)
	if err != nil {
		return nil, err
	}
	if changed, err := s.store.MarkRead(ctx, peerPhone, userPhone); err != nil {
		log.Printf("[chat] Failed to mark messages read: %v", err)
	} else if changed > 0 {
		s.invalidateConversations(ctx, userPhone, peerPhone)
	}
	return messages, nil
}

// ConversationsForUser returns the user's conversation list, cache-aside
// with singleflight so concurrent cold reads hit the store once.
func (s *Service) ConversationsForUser(ctx context.Context, userPhone string) ([]domain.Conversation, error) {
	if s.cache == nil {
		return s.store.ConversationsForUser(ctx, userPhone)
	}

	key := "conversations:" + userPhone
	var cached []domain.Conversation
	if found, err := s.cache.Get(ctx, key, &cached); err == nil && found {
		return cached, nil
	}

	result, err, _ := s.group.Do(key, func() (any, error) {
		conversations, err := s.store.ConversationsForUser(ctx, userPhone)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(ctx, key, conversations); err != nil {
			log.Printf("[chat] Failed to cache conversations for %s: %v", userPhone, err)
		}
		return conversations, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Conversation), nil
}

// UpdateStatus moves a message's delivery state, addressed by message ID or
// provider meta ID, whichever is set.
func (s *Service) UpdateStatus(ctx context.Context, messageID, metaMsgID string, status domain.MessageStatus) error {
	if !domain.ValidStatus(status) {
		return fmt.Errorf("unknown status %q", status)
	}
	switch {
	case messageID != "":
		return s.store.UpdateStatusByID(ctx, messageID, status)
	case metaMsgID != "":
		return s.store.UpdateStatusByMetaID(ctx, metaMsgID, status)
	default:
		return fmt.Errorf("message_id or meta_msg_id is required")
	}
}

// MarkRead marks every unread message from fromPhone to toPhone as read.
func (s *Service) MarkRead(ctx context.Context, fromPhone, toPhone string) (int, error) {
	changed, err := s.store.MarkRead(ctx, fromPhone, toPhone)
	if err != nil {
		return 0, err
	}
	if changed > 0 {
		s.invalidateConversations(ctx, fromPhone, toPhone)
	}
	return changed, nil
}

func (s *Service) invalidateConversations(ctx context.Context, phones ...string) {
	if s.cache == nil {
		return
	}
	for _, phone := range phones {
		if err := s.cache.Delete(ctx, "conversations:"+phone); err != nil {
			log.Printf("[chat] Failed to invalidate conversation cache for %s: %v", phone, err)
		}
	}
}
