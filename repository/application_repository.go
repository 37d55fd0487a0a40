// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"fmt"

	"github.com/saathi-care/listener-platform/models"
	"github.com/saathi-care/listener-platform/utils"
	"gorm.io/gorm"
)

// ApplicationRepositoryImpl implements ApplicationRepository interface
type ApplicationRepositoryImpl struct {
	*BaseRepository[models.Application, models.ApplicationFilter]
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &ApplicationRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Application, models.ApplicationFilter](db),
	}
}

// ByUUID retrieves an application by UUID
func (r *ApplicationRepositoryImpl) ByUUID(ctx context.Context, id string) (*models.Application, error) {
	parsedUUID, err := utils.ParseUUID(id)
	if err != nil {
		return nil, err
	}

	filter := models.ApplicationFilter{UUID: &parsedUUID}
	apps, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, err
	}

	if len(apps) == 0 {
		return nil, nil
	}

	return apps[0], nil
}

// ByPhone retrieves all applications submitted with the given phone number
func (r *ApplicationRepositoryImpl) ByPhone(ctx context.Context, phone string) ([]*models.Application, error) {
	filter := models.ApplicationFilter{Phone: &phone}
	apps, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to find applications by phone: %w", err)
	}

	return apps, nil
}

// ListPending retrieves pending applications, oldest first, with pagination
func (r *ApplicationRepositoryImpl) ListPending(ctx context.Context, limit, offset int) ([]*models.Application, error) {
	status := models.ApplicationStatusPending
	filter := models.ApplicationFilter{Status: &status}

	return r.ByFilter(ctx, filter, "created_at ASC", limit, offset)
}

// MarkApproved flips a pending application to approved and records the
// provisioned listener UID. The status guard in the WHERE clause makes the
// flip race-safe: only one concurrent approver can see rows affected.
func (r *ApplicationRepositoryImpl) MarkApproved(ctx context.Context, id uint, listenerUID string) (bool, error) {
	db := r.getDB(ctx)

	res := db.Model(&models.Application{}).
		Where("id = ? AND status = ?", id, models.ApplicationStatusPending).
		Updates(map[string]any{
			"status":       models.ApplicationStatusApproved,
			"listener_uid": listenerUID,
			"updated_at":   utils.UTCNow(),
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to mark application approved: %w", res.Error)
	}

	return res.RowsAffected > 0, nil
}

// MarkRejected flips a pending application to rejected with a reason
func (r *ApplicationRepositoryImpl) MarkRejected(ctx context.Context, id uint, reason string) (bool, error) {
	db := r.getDB(ctx)

	res := db.Model(&models.Application{}).
		Where("id = ? AND status = ?", id, models.ApplicationStatusPending).
		Updates(map[string]any{
			"status":           models.ApplicationStatusRejected,
			"rejection_reason": reason,
			"updated_at":       utils.UTCNow(),
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to mark application rejected: %w", res.Error)
	}

	return res.RowsAffected > 0, nil
}

// applyFilter applies filter criteria to a GORM query
func (r *ApplicationRepositoryImpl) applyFilter(query *gorm.DB, filter models.ApplicationFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.Phone != nil {
		query = query.Where("phone = ?", *filter.Phone)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.ListenerUID != nil {
		query = query.Where("listener_uid = ?", *filter.ListenerUID)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves applications based on filter criteria
func (r *ApplicationRepositoryImpl) ByFilter(ctx context.Context, filter models.ApplicationFilter, orderBy string, limit, offset int) ([]*models.Application, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Application{})

	// Apply filters
	query = r.applyFilter(query, filter)

	// Apply ordering (default to id DESC)
	if orderBy == "" {
		orderBy = "id DESC"
	}
	query = query.Order(orderBy)

	// Apply pagination
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var apps []*models.Application
	err := query.Find(&apps).Error
	if err != nil {
		return nil, err
	}

	return apps, nil
}

// Count returns the number of applications matching the filter
func (r *ApplicationRepositoryImpl) Count(ctx context.Context, filter models.ApplicationFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Application{})

	// Apply filters
	query = r.applyFilter(query, filter)

	var count int64
	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any application matching the filter exists
func (r *ApplicationRepositoryImpl) Exists(ctx context.Context, filter models.ApplicationFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
