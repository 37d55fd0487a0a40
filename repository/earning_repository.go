// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/saathi-care/listener-platform/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EarningRepositoryImpl implements EarningRepository interface
type EarningRepositoryImpl struct {
	*BaseRepository[models.EarningRecord, models.EarningRecordFilter]
}

// NewEarningRepository creates a new earning ledger repository
func NewEarningRepository(db *gorm.DB) EarningRepository {
	return &EarningRepositoryImpl{
		BaseRepository: NewBaseRepository[models.EarningRecord, models.EarningRecordFilter](db),
	}
}

// BySourceID retrieves the ledger entry for a source session, if any
func (r *EarningRepositoryImpl) BySourceID(ctx context.Context, sourceID string) (*models.EarningRecord, error) {
	db := r.getDB(ctx)

	var record models.EarningRecord
	err := db.Where("source_id = ?", sourceID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find earning by source ID %s: %w", sourceID, err)
	}

	return &record, nil
}

// CreateIfAbsent inserts a ledger entry keyed by source session ID. Under a
// duplicate trigger the conflict clause swallows the insert and the caller
// learns nothing was created, so running totals are incremented exactly once.
func (r *EarningRepositoryImpl) CreateIfAbsent(ctx context.Context, record *models.EarningRecord) (bool, error) {
	db := r.getDB(ctx)

	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "source_id"}},
		DoNothing: true,
	}).Create(record)
	if res.Error != nil {
		return false, fmt.Errorf("failed to create earning record: %w", res.Error)
	}

	return res.RowsAffected > 0, nil
}

// ListByListener retrieves a listener's ledger entries, newest first
func (r *EarningRepositoryImpl) ListByListener(ctx context.Context, listenerUID string, limit, offset int) ([]*models.EarningRecord, error) {
	filter := models.EarningRecordFilter{ListenerUID: &listenerUID}
	return r.ByFilter(ctx, filter, "occurred_at DESC", limit, offset)
}

// TotalsBetween aggregates ledger amounts for the admin dashboard
func (r *EarningRepositoryImpl) TotalsBetween(ctx context.Context, from, to time.Time) (*models.EarningTotals, error) {
	db := r.getDB(ctx)

	var totals models.EarningTotals
	err := db.Model(&models.EarningRecord{}).
		Select(
			"COALESCE(SUM(amount), 0) AS listener_total, "+
				"COALESCE(SUM(platform_amount), 0) AS platform_total, "+
				"COUNT(*) AS records, "+
				"COUNT(*) FILTER (WHERE session_type = ?) AS call_records, "+
				"COUNT(*) FILTER (WHERE session_type = ?) AS chat_records",
			models.SessionTypeCall, models.SessionTypeMessage).
		Where("occurred_at >= ? AND occurred_at < ?", from, to).
		Scan(&totals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate earning totals: %w", err)
	}

	return &totals, nil
}

// applyFilter applies filter criteria to a GORM query
func (r *EarningRepositoryImpl) applyFilter(query *gorm.DB, filter models.EarningRecordFilter) *gorm.DB {
	if filter.SourceID != nil {
		query = query.Where("source_id = ?", *filter.SourceID)
	}
	if filter.SessionType != nil {
		query = query.Where("session_type = ?", *filter.SessionType)
	}
	if filter.ListenerUID != nil {
		query = query.Where("listener_uid = ?", *filter.ListenerUID)
	}
	if filter.OccurredAfter != nil {
		query = query.Where("occurred_at > ?", *filter.OccurredAfter)
	}
	if filter.OccurredBefore != nil {
		query = query.Where("occurred_at < ?", *filter.OccurredBefore)
	}
	return query
}

// ByFilter retrieves earning records based on filter criteria
func (r *EarningRepositoryImpl) ByFilter(ctx context.Context, filter models.EarningRecordFilter, orderBy string, limit, offset int) ([]*models.EarningRecord, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.EarningRecord{})

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

	var records []*models.EarningRecord
	err := query.Find(&records).Error
	if err != nil {
		return nil, err
	}

	return records, nil
}

// Count returns the number of earning records matching the filter
func (r *EarningRepositoryImpl) Count(ctx context.Context, filter models.EarningRecordFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.EarningRecord{})

	// Apply filters
	query = r.applyFilter(query, filter)

	var count int64
	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any earning record matching the filter exists
func (r *EarningRepositoryImpl) Exists(ctx context.Context, filter models.EarningRecordFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
