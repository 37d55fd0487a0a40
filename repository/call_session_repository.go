// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/saathi-care/listener-platform/models"
	"github.com/saathi-care/listener-platform/utils"
	"gorm.io/gorm"
)

// CallSessionRepositoryImpl implements CallSessionRepository interface
type CallSessionRepositoryImpl struct {
	*BaseRepository[models.CallSession, models.CallSessionFilter]
}

// NewCallSessionRepository creates a new call session repository
func NewCallSessionRepository(db *gorm.DB) CallSessionRepository {
	return &CallSessionRepositoryImpl{
		BaseRepository: NewBaseRepository[models.CallSession, models.CallSessionFilter](db),
	}
}

// ByID retrieves a call session by its identifier
func (r *CallSessionRepositoryImpl) ByID(ctx context.Context, id string) (*models.CallSession, error) {
	db := r.getDB(ctx)

	var session models.CallSession
	err := db.Where("id = ?", id).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find call session %s: %w", id, err)
	}

	return &session, nil
}

// ListUnsettledCompleted returns completed sessions whose earnings have not
// been settled yet, oldest first
func (r *CallSessionRepositoryImpl) ListUnsettledCompleted(ctx context.Context, limit int) ([]*models.CallSession, error) {
	status := models.CallStatusCompleted
	settled := false
	filter := models.CallSessionFilter{Status: &status, Settled: &settled}

	return r.ByFilter(ctx, filter, "created_at ASC", limit, 0)
}

// MarkSettled records the derived duration and payout and flips the settled
// flag; called inside the settlement transaction
func (r *CallSessionRepositoryImpl) MarkSettled(ctx context.Context, id string, durationSeconds int, earnings float64) error {
	db := r.getDB(ctx)

	err := db.Model(&models.CallSession{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"settled":          true,
			"duration_seconds": durationSeconds,
			"earnings":         earnings,
			"updated_at":       utils.UTCNow(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to mark call session settled: %w", err)
	}

	return nil
}

// applyFilter applies filter criteria to a GORM query
func (r *CallSessionRepositoryImpl) applyFilter(query *gorm.DB, filter models.CallSessionFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.ListenerUID != nil {
		query = query.Where("listener_uid = ?", *filter.ListenerUID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Settled != nil {
		query = query.Where("settled = ?", *filter.Settled)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves call sessions based on filter criteria
func (r *CallSessionRepositoryImpl) ByFilter(ctx context.Context, filter models.CallSessionFilter, orderBy string, limit, offset int) ([]*models.CallSession, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.CallSession{})

	// Apply filters
	query = r.applyFilter(query, filter)

	// Apply ordering (default to creation time DESC)
	if orderBy == "" {
		orderBy = "created_at DESC"
	}
	query = query.Order(orderBy)

	// Apply pagination
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var sessions []*models.CallSession
	err := query.Find(&sessions).Error
	if err != nil {
		return nil, err
	}

	return sessions, nil
}

// Count returns the number of call sessions matching the filter
func (r *CallSessionRepositoryImpl) Count(ctx context.Context, filter models.CallSessionFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.CallSession{})

	// Apply filters
	query = r.applyFilter(query, filter)

	var count int64
	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any call session matching the filter exists
func (r *CallSessionRepositoryImpl) Exists(ctx context.Context, filter models.CallSessionFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
