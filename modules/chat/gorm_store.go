package chat

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/example/realtime-chat-app/domain/chat"
	"gorm.io/gorm"
)

// GormStore persists messages in SQLite through GORM.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a store on an open GORM handle and migrates the
// message schema.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&domain.Message{}); err != nil {
		return nil, fmt.Errorf("failed to migrate message schema: %w", err)
	}
	return &GormStore{db: db}, nil
}

// SaveMessage inserts a message.
func (s *GormStore) SaveMessage(ctx context.Context, msg *domain.Message) error {
	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}
	return nil
}

// MessagesBetween returns both directions of a two-party chat, oldest first.
func (s *GormStore) MessagesBetween(ctx context.Context, user1, user2 string) ([]domain.Message, error) {
	var messages []domain.Message
	err := s.db.WithContext(ctx).
		Where("(from_phone = ? AND to_phone = ?) OR (from_phone = ? AND to_phone = ?)",
			user1, user2, user2, user1).
		Order("timestamp ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	return messages, nil
}

// ConversationsForUser groups messages by peer with unread counts, most
// recent conversation first. The grouping is done in Go on the user's
// message set rather than in SQL; per-user volumes are small in this
// application.
func (s *GormStore) ConversationsForUser(ctx context.Context, userPhone string) ([]domain.Conversation, error) {
	var messages []domain.Message
	err := s.db.WithContext(ctx).
		Where("from_phone = ? OR to_phone = ?", userPhone, userPhone).
		Order("timestamp ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load conversations: %w", err)
	}

	mem := NewMemoryStore()
	for i := range messages {
		msg := messages[i]
		_ = mem.SaveMessage(ctx, &msg)
	}
	return mem.ConversationsForUser(ctx, userPhone)
}

// UpdateStatusByID sets the delivery state of one message by its ID.
func (s *GormStore) UpdateStatusByID(ctx context.Context, messageID string, status domain.MessageStatus) error {
	return s.updateStatus(ctx, "id = ?", messageID, status)
}

// UpdateStatusByMetaID sets the delivery state of one message by its
// provider-assigned identifier.
func (s *GormStore) UpdateStatusByMetaID(ctx context.Context, metaMsgID string, status domain.MessageStatus) error {
	return s.updateStatus(ctx, "meta_msg_id = ?", metaMsgID, status)
}

func (s *GormStore) updateStatus(ctx context.Context, cond, arg string, status domain.MessageStatus) error {
	result := s.db.WithContext(ctx).
		Model(&domain.Message{}).
		Where(cond, arg).
		Update("status", status)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// MarkRead marks every unread message from fromPhone to toPhone as read.
func (s *GormStore) MarkRead(ctx context.Context, fromPhone, toPhone string) (int, error) {
	result := s.db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("from_phone = ? AND to_phone = ? AND status <> ?",
			fromPhone, toPhone, domain.StatusRead).
		Update("status", domain.StatusRead)
	if err := result.Error; err != nil {
		return 0, fmt.Errorf("failed to mark messages read: %w", err)
	}
	return int(result.RowsAffected), nil
}

// Ping verifies the underlying database connection.
func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// IsNotFound reports whether err means no matching message.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrMessageNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}
