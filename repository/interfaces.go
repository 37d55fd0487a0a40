// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/saathi-care/listener-platform/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// TxManager runs a function inside a database transaction, carrying the
// transaction through the context so repositories pick it up transparently.
// Business flows depend on this interface rather than on *gorm.DB directly.
type TxManager interface {
	WithinTransaction(ctx context.Context, fn func(txCtx context.Context) error) error
}

// ApplicationRepository defines operations for listener applications
type ApplicationRepository interface {
	Repository[models.Application, models.ApplicationFilter]
	ByID(ctx context.Context, id uint) (*models.Application, error)
	ByUUID(ctx context.Context, uuid string) (*models.Application, error)
	ByPhone(ctx context.Context, phone string) ([]*models.Application, error)
	ListPending(ctx context.Context, limit, offset int) ([]*models.Application, error)
	MarkApproved(ctx context.Context, id uint, listenerUID string) (bool, error)
	MarkRejected(ctx context.Context, id uint, reason string) (bool, error)
}

// ListenerRepository defines operations for listener profiles
type ListenerRepository interface {
	Repository[models.Listener, models.ListenerFilter]
	ByUID(ctx context.Context, uid string) (*models.Listener, error)
	ByPhone(ctx context.Context, phone string) (*models.Listener, error)
	CreateProfile(ctx context.Context, listener *models.Listener) error
	UpdateAvailability(ctx context.Context, uid, availability string) error
	UpdateNotificationPreferences(ctx context.Context, uid string, notifyCalls, notifyMessages bool) error
	UpdateOnboardingProfile(ctx context.Context, listener *models.Listener) error
	SetAdminFlag(ctx context.Context, uid string, isAdmin bool) error
	SetStatus(ctx context.Context, uid, status string) error
	AdvanceOnboardingStatus(ctx context.Context, uid, targetStatus string) (bool, error)
	ListAwaitingActivation(ctx context.Context, limit int) ([]*models.Listener, error)
	IncrementCallTotals(ctx context.Context, uid string, amount, minutes float64) error
	IncrementMessageTotals(ctx context.Context, uid string, amount float64) error
	SumTalkMinutes(ctx context.Context) (float64, error)
}

// EarningRepository defines operations for the append-only earning ledger
type EarningRepository interface {
	Repository[models.EarningRecord, models.EarningRecordFilter]
	BySourceID(ctx context.Context, sourceID string) (*models.EarningRecord, error)
	CreateIfAbsent(ctx context.Context, record *models.EarningRecord) (bool, error)
	ListByListener(ctx context.Context, listenerUID string, limit, offset int) ([]*models.EarningRecord, error)
	TotalsBetween(ctx context.Context, from, to time.Time) (*models.EarningTotals, error)
}

// CallSessionRepository defines operations for call sessions
type CallSessionRepository interface {
	Repository[models.CallSession, models.CallSessionFilter]
	ByID(ctx context.Context, id string) (*models.CallSession, error)
	ListUnsettledCompleted(ctx context.Context, limit int) ([]*models.CallSession, error)
	MarkSettled(ctx context.Context, id string, durationSeconds int, earnings float64) error
}

// ChatMessageRepository defines operations for chat messages
type ChatMessageRepository interface {
	Repository[models.ChatMessage, models.ChatMessageFilter]
	ByID(ctx context.Context, id string) (*models.ChatMessage, error)
	ListUnsettledFromUsers(ctx context.Context, limit int) ([]*models.ChatMessage, error)
	MarkSettled(ctx context.Context, id string) error
}

// AdminRepository defines operations for admin users
type AdminRepository interface {
	Repository[models.Admin, models.AdminFilter]
	ByID(ctx context.Context, id uint) (*models.Admin, error)
	ByUUID(ctx context.Context, uuid string) (*models.Admin, error)
	ByUsername(ctx context.Context, username string) (*models.Admin, error)
}

// AuditLogRepository defines operations for audit logs
type AuditLogRepository interface {
	Repository[models.AuditLog, models.AuditLogFilter]
}
