// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/saathi-care/listener-platform/models"
	"gorm.io/gorm"
)

// ChatMessageRepositoryImpl implements ChatMessageRepository interface
type ChatMessageRepositoryImpl struct {
	*BaseRepository[models.ChatMessage, models.ChatMessageFilter]
}

// NewChatMessageRepository creates a new chat message repository
func NewChatMessageRepository(db *gorm.DB) ChatMessageRepository {
	return &ChatMessageRepositoryImpl{
		BaseRepository: NewBaseRepository[models.ChatMessage, models.ChatMessageFilter](db),
	}
}

// ByID retrieves a chat message by its identifier
func (r *ChatMessageRepositoryImpl) ByID(ctx context.Context, id string) (*models.ChatMessage, error) {
	db := r.getDB(ctx)

	var message models.ChatMessage
	err := db.Where("id = ?", id).First(&message).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find chat message %s: %w", id, err)
	}

	return &message, nil
}

// ListUnsettledFromUsers returns unsettled user-authored messages, oldest
// first. Listener replies never earn and are excluded at the query level.
func (r *ChatMessageRepositoryImpl) ListUnsettledFromUsers(ctx context.Context, limit int) ([]*models.ChatMessage, error) {
	db := r.getDB(ctx)

	query := db.Model(&models.ChatMessage{}).
		Where("settled = ? AND sender_id = user_id", false).
		Order("sent_at ASC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	var messages []*models.ChatMessage
	err := query.Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list unsettled messages: %w", err)
	}

	return messages, nil
}

// MarkSettled flips the settled flag; called inside the settlement transaction
func (r *ChatMessageRepositoryImpl) MarkSettled(ctx context.Context, id string) error {
	db := r.getDB(ctx)

	err := db.Model(&models.ChatMessage{}).
		Where("id = ?", id).
		Update("settled", true).Error
	if err != nil {
		return fmt.Errorf("failed to mark chat message settled: %w", err)
	}

	return nil
}

// applyFilter applies filter criteria to a GORM query
func (r *ChatMessageRepositoryImpl) applyFilter(query *gorm.DB, filter models.ChatMessageFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.ChatID != nil {
		query = query.Where("chat_id = ?", *filter.ChatID)
	}
	if filter.ListenerUID != nil {
		query = query.Where("listener_uid = ?", *filter.ListenerUID)
	}
	if filter.SenderID != nil {
		query = query.Where("sender_id = ?", *filter.SenderID)
	}
	if filter.Settled != nil {
		query = query.Where("settled = ?", *filter.Settled)
	}
	if filter.SentAfter != nil {
		query = query.Where("sent_at > ?", *filter.SentAfter)
	}
	if filter.SentBefore != nil {
		query = query.Where("sent_at < ?", *filter.SentBefore)
	}
	return query
}

// ByFilter retrieves chat messages based on filter criteria
func (r *ChatMessageRepositoryImpl) ByFilter(ctx context.Context, filter models.ChatMessageFilter, orderBy string, limit, offset int) ([]*models.ChatMessage, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.ChatMessage{})

	// Apply filters
	query = r.applyFilter(query, filter)

	// Apply ordering (default to sent time DESC)
	if orderBy == "" {
		orderBy = "sent_at DESC"
	}
	query = query.Order(orderBy)

	// Apply pagination
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var messages []*models.ChatMessage
	err := query.Find(&messages).Error
	if err != nil {
		return nil, err
	}

	return messages, nil
}

// Count returns the number of chat messages matching the filter
func (r *ChatMessageRepositoryImpl) Count(ctx context.Context, filter models.ChatMessageFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.ChatMessage{})

	// Apply filters
	query = r.applyFilter(query, filter)

	var count int64
	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any chat message matching the filter exists
func (r *ChatMessageRepositoryImpl) Exists(ctx context.Context, filter models.ChatMessageFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
