package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"gorm.io/gorm"

	"moves/models"
)

// SendMessage appends a message to the sender/recipient log and pushes it to
// the recipient's live subscribers.
func (s *Service) SendMessage(ctx context.Context, input models.MessageInput) (*models.Message, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, invalid("Content is required")
	}

	var msg models.Message
	err := s.session(ctx).Transaction(func(tx *gorm.DB) error {
		var sender, recipient models.User
		if err := first(tx, &sender, input.SenderID, "Sender"); err != nil {
			return err
		}
		if err := first(tx, &recipient, input.RecipientID, "Recipient"); err != nil {
			return err
		}

		msg = models.Message{
			SenderID:    sender.ID,
			RecipientID: recipient.ID,
			Content:     content,
			CreatedAt:   s.Now(),
		}
		if err := tx.Create(&msg).Error; err != nil {
			return fmt.Errorf("failed to save message: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.MessagesSent.Inc()
	delivered := s.hub.Publish(msg)
	slog.Debug("Message sent", "message_id", msg.ID, "sender", msg.SenderID, "recipient", msg.RecipientID, "live", delivered)
	return &msg, nil
}

func conversationScope(tx *gorm.DB, a, b uint) *gorm.DB {
	return tx.Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)", a, b, b, a)
}

// Conversation returns the messages between reader and other, oldest first,
// and marks the unread ones addressed to reader as read.
func (s *Service) Conversation(ctx context.Context, reader, other uint) ([]models.Message, error) {
	messages := []models.Message{}
	err := s.session(ctx).Transaction(func(tx *gorm.DB) error {
		if err := conversationScope(tx, reader, other).Order("created_at").Order("id").Find(&messages).Error; err != nil {
			return fmt.Errorf("failed to fetch conversation: %w", err)
		}

		err := tx.Model(&models.Message{}).
			Where("sender_id = ? AND recipient_id = ? AND read = ?", other, reader, false).
			Update("read", true).Error
		if err != nil {
			return fmt.Errorf("failed to mark messages read: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// reflect the update in the returned rows
	for i := range messages {
		if messages[i].RecipientID == reader {
			messages[i].Read = true
		}
	}
	return messages, nil
}

// Conversations lists everyone the user has exchanged messages with, most
// recent conversation first.
func (s *Service) Conversations(ctx context.Context, userID uint) ([]models.ConversationResponse, error) {
	db := s.session(ctx)

	var messages []models.Message
	err := db.Where("sender_id = ? OR recipient_id = ?", userID, userID).
		Order("created_at DESC").Order("id DESC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	// messages are newest first, so the first one seen per partner is the last message
	last := map[uint]models.Message{}
	unread := map[uint]int64{}
	var partners []uint
	for _, m := range messages {
		partner := m.SenderID
		if partner == userID {
			partner = m.RecipientID
		}
		if _, seen := last[partner]; !seen {
			last[partner] = m
			partners = append(partners, partner)
		}
		if m.RecipientID == userID && m.SenderID == partner && !m.Read {
			unread[partner]++
		}
	}

	users, err := usersByID(db, partners)
	if err != nil {
		return nil, err
	}

	conversations := make([]models.ConversationResponse, 0, len(partners))
	for _, p := range partners {
		u, ok := users[p]
		if !ok {
			continue
		}
		lastMsg := last[p]
		conversations = append(conversations, models.ConversationResponse{
			User:        u.ToResponse(),
			LastMessage: &lastMsg,
			UnreadCount: unread[p],
		})
	}

	sort.SliceStable(conversations, func(i, j int) bool {
		return conversations[i].LastMessage.CreatedAt.After(conversations[j].LastMessage.CreatedAt)
	})
	return conversations, nil
}
