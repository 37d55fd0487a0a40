package businessflow

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/saathi-care/listener-platform/app/dto"
	"github.com/saathi-care/listener-platform/app/services"
	"github.com/saathi-care/listener-platform/config"
	"github.com/saathi-care/listener-platform/models"
	"github.com/saathi-care/listener-platform/repository"
	"github.com/saathi-care/listener-platform/utils"
)

// ListenerFlow covers profile reads and the live listener state: availability
// toggles, admin role changes, and suspension.
type ListenerFlow interface {
	GetProfile(ctx context.Context, listenerUID string) (*dto.ListenerDTO, error)
	ListListeners(ctx context.Context, req *dto.ListListenersRequest) (*dto.ListListenersResponse, error)
	UpdateAvailability(ctx context.Context, req *dto.UpdateAvailabilityRequest, metadata *ClientMetadata) (*dto.UpdateAvailabilityResponse, error)
	UpdateNotificationPreferences(ctx context.Context, req *dto.UpdateNotificationPreferencesRequest, metadata *ClientMetadata) (*dto.UpdateNotificationPreferencesResponse, error)
	SetAdminRole(ctx context.Context, req *dto.SetAdminRoleRequest, metadata *ClientMetadata) (*dto.SetAdminRoleResponse, error)
	SetListenerStatus(ctx context.Context, req *dto.SetListenerStatusRequest, metadata *ClientMetadata) (*dto.SetListenerStatusResponse, error)
}

// ListenerFlowImpl implements the listener state business flow
type ListenerFlowImpl struct {
	listenerRepo repository.ListenerRepository
	auditRepo    repository.AuditLogRepository
	identitySvc  services.IdentityService
	redisClient  *redis.Client
	cacheConfig  config.CacheConfig
}

// NewListenerFlow creates a new listener flow instance
func NewListenerFlow(
	listenerRepo repository.ListenerRepository,
	auditRepo repository.AuditLogRepository,
	identitySvc services.IdentityService,
	redisClient *redis.Client,
	cacheConfig config.CacheConfig,
) ListenerFlow {
	return &ListenerFlowImpl{
		listenerRepo: listenerRepo,
		auditRepo:    auditRepo,
		identitySvc:  identitySvc,
		redisClient:  redisClient,
		cacheConfig:  cacheConfig,
	}
}

// GetProfile returns a listener profile by UID
func (s *ListenerFlowImpl) GetProfile(ctx context.Context, listenerUID string) (*dto.ListenerDTO, error) {
	listener, err := s.listenerRepo.ByUID(ctx, listenerUID)
	if err != nil {
		return nil, NewBusinessError(CodeInternal, "Failed to load listener", err)
	}
	if listener == nil {
		return nil, NewBusinessError(CodeNotFound, "Listener not found", ErrListenerNotFound)
	}
	d := ToListenerDTO(*listener)
	return &d, nil
}

// ListListeners returns a page of listener profiles for the admin panel
func (s *ListenerFlowImpl) ListListeners(ctx context.Context, req *dto.ListListenersRequest) (*dto.ListListenersResponse, error) {
	page := 1
	pageSize := 20
	filter := models.ListenerFilter{}
	if req != nil {
		if req.Page > 0 {
			page = req.Page
		}
		if req.PageSize > 0 && req.PageSize <= 100 {
			pageSize = req.PageSize
		}
		if req.Status != "" {
			filter.Status = &req.Status
		}
		if req.Availability != "" {
			filter.Availability = &req.Availability
		}
	}

	listeners, err := s.listenerRepo.ByFilter(ctx, filter, "created_at DESC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError(CodeInternal, "Failed to list listeners", err)
	}
	total, err := s.listenerRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError(CodeInternal, "Failed to count listeners", err)
	}

	resp := &dto.ListListenersResponse{
		Items: make([]dto.ListenerDTO, 0, len(listeners)),
		Total: total,
		Page:  page,
	}
	for _, l := range listeners {
		resp.Items = append(resp.Items, ToListenerDTO(*l))
	}
	return resp, nil
}

// UpdateAvailability sets the listener's live availability and mirrors it in
// the cache, where the matching service reads it.
func (s *ListenerFlowImpl) UpdateAvailability(ctx context.Context, req *dto.UpdateAvailabilityRequest, metadata *ClientMetadata) (*dto.UpdateAvailabilityResponse, error) {
	if !isValidAvailability(req.Availability) {
		return nil, NewBusinessError(CodeInvalidArgument, "Invalid availability state", ErrInvalidAvailability)
	}

	listener, err := s.loadActiveListener(ctx, req.ListenerUID)
	if err != nil {
		return nil, err
	}

	if err := s.listenerRepo.UpdateAvailability(ctx, listener.UID, req.Availability); err != nil {
		return nil, NewBusinessError(CodeInternal, "Failed to update availability", err)
	}

	s.cacheAvailability(ctx, listener.UID, req.Availability)

	msg := fmt.Sprintf("Listener %s availability set to %s", listener.UID, req.Availability)
	_ = s.createAuditLog(ctx, listener.UID, models.AuditActionAvailabilityChanged, msg, true, nil, metadata)

	return &dto.UpdateAvailabilityResponse{
		Message:      "Availability updated.",
		Availability: req.Availability,
	}, nil
}

// UpdateNotificationPreferences stores which session types the listener wants
// alerts for. Suspended accounts keep their stored preferences but cannot
// change them.
func (s *ListenerFlowImpl) UpdateNotificationPreferences(ctx context.Context, req *dto.UpdateNotificationPreferencesRequest, metadata *ClientMetadata) (*dto.UpdateNotificationPreferencesResponse, error) {
	listener, err := s.loadActiveListener(ctx, req.ListenerUID)
	if err != nil {
		return nil, err
	}

	notifyCalls := utils.IsTrue(req.NotifyCalls)
	notifyMessages := utils.IsTrue(req.NotifyMessages)
	if err := s.listenerRepo.UpdateNotificationPreferences(ctx, listener.UID, notifyCalls, notifyMessages); err != nil {
		return nil, NewBusinessError(CodeInternal, "Failed to update notification preferences", err)
	}

	msg := fmt.Sprintf("Listener %s preferences set to calls=%t messages=%t", listener.UID, notifyCalls, notifyMessages)
	_ = s.createAuditLog(ctx, listener.UID, models.AuditActionPreferencesUpdated, msg, true, nil, metadata)

	return &dto.UpdateNotificationPreferencesResponse{
		Message:        "Notification preferences updated.",
		NotifyCalls:    notifyCalls,
		NotifyMessages: notifyMessages,
	}, nil
}

// SetAdminRole grants or revokes the listener-admin role. The identity
// provider claim is updated first so the app picks up the role on the next
// token refresh.
func (s *ListenerFlowImpl) SetAdminRole(ctx context.Context, req *dto.SetAdminRoleRequest, metadata *ClientMetadata) (*dto.SetAdminRoleResponse, error) {
	listener, err := s.listenerRepo.ByUID(ctx, req.ListenerUID)
	if err != nil {
		return nil, NewBusinessError(CodeInternal, "Failed to load listener", err)
	}
	if listener == nil {
		return nil, NewBusinessError(CodeNotFound, "Listener not found", ErrListenerNotFound)
	}

	if err := s.identitySvc.SetAdminClaim(ctx, listener.UID, req.IsAdmin); err != nil {
		return nil, NewBusinessError(CodeInternal, "Failed to update identity claim", ErrIdentityUnavailable)
	}
	if err := s.listenerRepo.SetAdminFlag(ctx, listener.UID, req.IsAdmin); err != nil {
		return nil, NewBusinessError(CodeInternal, "Failed to update admin flag", err)
	}

	verb := "revoked from"
	if req.IsAdmin {
		verb = "granted to"
	}
	msg := fmt.Sprintf("Admin role %s listener %s", verb, listener.UID)
	_ = s.createAuditLog(ctx, listener.UID, models.AuditActionAdminRoleGranted, msg, true, nil, metadata)

	return &dto.SetAdminRoleResponse{
		Message: "Admin role updated.",
		IsAdmin: req.IsAdmin,
	}, nil
}

// SetListenerStatus suspends or reinstates a listener account
func (s *ListenerFlowImpl) SetListenerStatus(ctx context.Context, req *dto.SetListenerStatusRequest, metadata *ClientMetadata) (*dto.SetListenerStatusResponse, error) {
	listener, err := s.listenerRepo.ByUID(ctx, req.ListenerUID)
	if err != nil {
		return nil, NewBusinessError(CodeInternal, "Failed to load listener", err)
	}
	if listener == nil {
		return nil, NewBusinessError(CodeNotFound, "Listener not found", ErrListenerNotFound)
	}

	if err := s.listenerRepo.SetStatus(ctx, listener.UID, req.Status); err != nil {
		return nil, NewBusinessError(CodeInternal, "Failed to set listener status", err)
	}

	if req.Status == models.ListenerStatusSuspended {
		// A suspended listener is never matchable.
		if err := s.listenerRepo.UpdateAvailability(ctx, listener.UID, models.AvailabilityOffline); err != nil {
			return nil, NewBusinessError(CodeInternal, "Failed to reset availability", err)
		}
		s.cacheAvailability(ctx, listener.UID, models.AvailabilityOffline)
	}

	msg := fmt.Sprintf("Listener %s status set to %s", listener.UID, req.Status)
	_ = s.createAuditLog(ctx, listener.UID, models.AuditActionListenerSuspended, msg, true, nil, metadata)

	return &dto.SetListenerStatusResponse{
		Message: "Listener status updated.",
		Status:  req.Status,
	}, nil
}

// Private helper methods

func (s *ListenerFlowImpl) loadActiveListener(ctx context.Context, uid string) (*models.Listener, error) {
	listener, err := s.listenerRepo.ByUID(ctx, uid)
	if err != nil {
		return nil, NewBusinessError(CodeInternal, "Failed to load listener", err)
	}
	if listener == nil {
		return nil, NewBusinessError(CodeNotFound, "Listener not found", ErrListenerNotFound)
	}
	if listener.Status == models.ListenerStatusSuspended {
		return nil, NewBusinessError(CodeFailedPrecondition, "Listener account is suspended", ErrListenerSuspended)
	}
	return listener, nil
}

// cacheAvailability mirrors the availability into Redis on a best-effort
// basis. The database row stays the source of truth.
func (s *ListenerFlowImpl) cacheAvailability(ctx context.Context, uid, availability string) {
	if s.redisClient == nil || !s.cacheConfig.Enabled {
		return
	}
	key := s.redisKey(fmt.Sprintf("availability:%s", uid))
	_ = s.redisClient.Set(ctx, key, availability, s.cacheConfig.DefaultTTL).Err()
}

func (s *ListenerFlowImpl) redisKey(key string) string {
	return s.cacheConfig.RedisPrefix + key
}

func isValidAvailability(availability string) bool {
	switch availability {
	case models.AvailabilityAvailable, models.AvailabilityBusy, models.AvailabilityBreak, models.AvailabilityOffline:
		return true
	}
	return false
}

func (s *ListenerFlowImpl) createAuditLog(ctx context.Context, listenerUID string, action, description string, success bool, errMsg *string, metadata *ClientMetadata) error {
	log := &models.AuditLog{
		ListenerUID:  &listenerUID,
		Action:       action,
		Description:  &description,
		Success:      &success,
		ErrorMessage: errMsg,
	}
	if metadata != nil {
		if metadata.IPAddress != "" {
			log.IPAddress = &metadata.IPAddress
		}
		if metadata.UserAgent != "" {
			log.UserAgent = &metadata.UserAgent
		}
		if metadata.RequestID != "" {
			log.RequestID = &metadata.RequestID
		}
	}
	return s.auditRepo.Save(ctx, log)
}
