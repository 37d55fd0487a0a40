// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/saathi-care/listener-platform/models"
	"github.com/saathi-care/listener-platform/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrProfileExists is returned when a create-only profile insert collides
// with an existing row at the same UID.
var ErrProfileExists = errors.New("listener profile already exists")

// ListenerRepositoryImpl implements ListenerRepository interface
type ListenerRepositoryImpl struct {
	*BaseRepository[models.Listener, models.ListenerFilter]
}

// NewListenerRepository creates a new listener repository
func NewListenerRepository(db *gorm.DB) ListenerRepository {
	return &ListenerRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Listener, models.ListenerFilter](db),
	}
}

// ByUID retrieves a listener by its identity UID
func (r *ListenerRepositoryImpl) ByUID(ctx context.Context, uid string) (*models.Listener, error) {
	db := r.getDB(ctx)

	var listener models.Listener
	err := db.Where("uid = ?", uid).First(&listener).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find listener by UID %s: %w", uid, err)
	}

	return &listener, nil
}

// ByPhone retrieves a listener by normalized phone number
func (r *ListenerRepositoryImpl) ByPhone(ctx context.Context, phone string) (*models.Listener, error) {
	filter := models.ListenerFilter{Phone: &phone}
	listeners, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to find listener by phone: %w", err)
	}

	if len(listeners) == 0 {
		return nil, nil
	}

	return listeners[0], nil
}

// CreateProfile inserts a new listener profile. The insert is create-only:
// a collision at the UID surfaces ErrProfileExists instead of overwriting.
func (r *ListenerRepositoryImpl) CreateProfile(ctx context.Context, listener *models.Listener) error {
	db := r.getDB(ctx)

	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(listener)
	if res.Error != nil {
		return fmt.Errorf("failed to create listener profile: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrProfileExists
	}

	return nil
}

// UpdateAvailability sets the live availability field
func (r *ListenerRepositoryImpl) UpdateAvailability(ctx context.Context, uid, availability string) error {
	db := r.getDB(ctx)

	err := db.Model(&models.Listener{}).
		Where("uid = ?", uid).
		Updates(map[string]any{
			"availability": availability,
			"updated_at":   utils.UTCNow(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update availability: %w", err)
	}

	return nil
}

// UpdateNotificationPreferences stores the listener's alert toggles
func (r *ListenerRepositoryImpl) UpdateNotificationPreferences(ctx context.Context, uid string, notifyCalls, notifyMessages bool) error {
	db := r.getDB(ctx)

	err := db.Model(&models.Listener{}).
		Where("uid = ?", uid).
		Updates(map[string]any{
			"notify_calls":    notifyCalls,
			"notify_messages": notifyMessages,
			"updated_at":      utils.UTCNow(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update notification preferences: %w", err)
	}

	return nil
}

// UpdateOnboardingProfile persists the onboarding fields and the completion flag
func (r *ListenerRepositoryImpl) UpdateOnboardingProfile(ctx context.Context, listener *models.Listener) error {
	db := r.getDB(ctx)

	err := db.Model(&models.Listener{}).
		Where("uid = ?", listener.UID).
		Updates(map[string]any{
			"avatar_url":          listener.AvatarURL,
			"city":                listener.City,
			"age":                 listener.Age,
			"display_name":        listener.DisplayName,
			"languages":           listener.Languages,
			"onboarding_complete": utils.IsTrue(listener.OnboardingComplete),
			"updated_at":          utils.UTCNow(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update onboarding profile: %w", err)
	}

	return nil
}

// SetAdminFlag toggles the admin flag on a profile
func (r *ListenerRepositoryImpl) SetAdminFlag(ctx context.Context, uid string, isAdmin bool) error {
	db := r.getDB(ctx)

	err := db.Model(&models.Listener{}).
		Where("uid = ?", uid).
		Updates(map[string]any{
			"is_admin":   isAdmin,
			"updated_at": utils.UTCNow(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to set admin flag: %w", err)
	}

	return nil
}

// SetStatus sets the account status without guards; used by admin actions
func (r *ListenerRepositoryImpl) SetStatus(ctx context.Context, uid, status string) error {
	db := r.getDB(ctx)

	err := db.Model(&models.Listener{}).
		Where("uid = ?", uid).
		Updates(map[string]any{
			"status":     status,
			"updated_at": utils.UTCNow(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to set listener status: %w", err)
	}

	return nil
}

// AdvanceOnboardingStatus applies the onboarding transition as a conditional
// write guarded by the before-state, so concurrent edits are never clobbered
// and re-applying to an already-advanced profile is a no-op.
func (r *ListenerRepositoryImpl) AdvanceOnboardingStatus(ctx context.Context, uid, targetStatus string) (bool, error) {
	db := r.getDB(ctx)

	res := db.Model(&models.Listener{}).
		Where("uid = ? AND status = ? AND onboarding_complete = ?",
			uid, models.ListenerStatusOnboardingRequired, true).
		Updates(map[string]any{
			"status":     targetStatus,
			"updated_at": utils.UTCNow(),
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to advance onboarding status: %w", res.Error)
	}

	return res.RowsAffected > 0, nil
}

// ListAwaitingActivation returns profiles stuck in the transitional
// onboarding state, for the background watcher
func (r *ListenerRepositoryImpl) ListAwaitingActivation(ctx context.Context, limit int) ([]*models.Listener, error) {
	status := models.ListenerStatusOnboardingRequired
	complete := true
	filter := models.ListenerFilter{Status: &status, OnboardingComplete: &complete}

	return r.ByFilter(ctx, filter, "updated_at ASC", limit, 0)
}

// IncrementCallTotals folds a settled call into the running totals
func (r *ListenerRepositoryImpl) IncrementCallTotals(ctx context.Context, uid string, amount, minutes float64) error {
	db := r.getDB(ctx)

	err := db.Model(&models.Listener{}).
		Where("uid = ?", uid).
		Updates(map[string]any{
			"total_earnings": gorm.Expr("total_earnings + ?", amount),
			"total_calls":    gorm.Expr("total_calls + 1"),
			"total_minutes":  gorm.Expr("total_minutes + ?", minutes),
			"updated_at":     utils.UTCNow(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to increment call totals: %w", err)
	}

	return nil
}

// IncrementMessageTotals folds a settled message into the running totals
func (r *ListenerRepositoryImpl) IncrementMessageTotals(ctx context.Context, uid string, amount float64) error {
	db := r.getDB(ctx)

	err := db.Model(&models.Listener{}).
		Where("uid = ?", uid).
		Updates(map[string]any{
			"total_earnings": gorm.Expr("total_earnings + ?", amount),
			"total_messages": gorm.Expr("total_messages + 1"),
			"updated_at":     utils.UTCNow(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to increment message totals: %w", err)
	}

	return nil
}

// SumTalkMinutes returns the total settled talk time across all listeners
func (r *ListenerRepositoryImpl) SumTalkMinutes(ctx context.Context) (float64, error) {
	db := r.getDB(ctx)

	var total float64
	err := db.Model(&models.Listener{}).
		Select("COALESCE(SUM(total_minutes), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum talk minutes: %w", err)
	}

	return total, nil
}

// applyFilter applies filter criteria to a GORM query
func (r *ListenerRepositoryImpl) applyFilter(query *gorm.DB, filter models.ListenerFilter) *gorm.DB {
	if filter.UID != nil {
		query = query.Where("uid = ?", *filter.UID)
	}
	if filter.Phone != nil {
		query = query.Where("phone = ?", *filter.Phone)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Availability != nil {
		query = query.Where("availability = ?", *filter.Availability)
	}
	if filter.IsAdmin != nil {
		query = query.Where("is_admin = ?", *filter.IsAdmin)
	}
	if filter.OnboardingComplete != nil {
		query = query.Where("onboarding_complete = ?", *filter.OnboardingComplete)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves listeners based on filter criteria
func (r *ListenerRepositoryImpl) ByFilter(ctx context.Context, filter models.ListenerFilter, orderBy string, limit, offset int) ([]*models.Listener, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Listener{})

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

	var listeners []*models.Listener
	err := query.Find(&listeners).Error
	if err != nil {
		return nil, err
	}

	return listeners, nil
}

// Count returns the number of listeners matching the filter
func (r *ListenerRepositoryImpl) Count(ctx context.Context, filter models.ListenerFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Listener{})

	// Apply filters
	query = r.applyFilter(query, filter)

	var count int64
	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any listener matching the filter exists
func (r *ListenerRepositoryImpl) Exists(ctx context.Context, filter models.ListenerFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
