package businessflow

import (
	"context"
	"fmt"

	"github.com/saathi-care/listener-platform/app/dto"
	"github.com/saathi-care/listener-platform/config"
	"github.com/saathi-care/listener-platform/models"
	"github.com/saathi-care/listener-platform/repository"
	"github.com/saathi-care/listener-platform/utils"
)

// OnboardingFlow completes listener onboarding and activates listeners whose
// onboarding has finished. Activation may happen immediately on completion or
// be deferred to the background watcher, depending on configuration.
type OnboardingFlow interface {
	CompleteOnboarding(ctx context.Context, req *dto.CompleteOnboardingRequest, metadata *ClientMetadata) (*dto.CompleteOnboardingResponse, error)
	ActivateEligible(ctx context.Context) (int, error)
}

// OnboardingFlowImpl implements the onboarding business flow
type OnboardingFlowImpl struct {
	listenerRepo repository.ListenerRepository
	auditRepo    repository.AuditLogRepository
	tx           repository.TxManager
	cfg          config.OnboardingConfig
}

// NewOnboardingFlow creates a new onboarding flow instance
func NewOnboardingFlow(
	listenerRepo repository.ListenerRepository,
	auditRepo repository.AuditLogRepository,
	tx repository.TxManager,
	cfg config.OnboardingConfig,
) OnboardingFlow {
	return &OnboardingFlowImpl{
		listenerRepo: listenerRepo,
		auditRepo:    auditRepo,
		tx:           tx,
		cfg:          cfg,
	}
}

// CompleteOnboarding records the listener's profile details and, when
// configured, activates the account in the same transaction. Repeating the
// call after completion is a no-op.
func (s *OnboardingFlowImpl) CompleteOnboarding(ctx context.Context, req *dto.CompleteOnboardingRequest, metadata *ClientMetadata) (*dto.CompleteOnboardingResponse, error) {
	listener, err := s.listenerRepo.ByUID(ctx, req.ListenerUID)
	if err != nil {
		return nil, NewBusinessError(CodeInternal, "Failed to load listener", err)
	}
	if listener == nil {
		return nil, NewBusinessError(CodeNotFound, "Listener not found", ErrListenerNotFound)
	}
	if listener.Status == models.ListenerStatusSuspended {
		return nil, NewBusinessError(CodeFailedPrecondition, "Listener account is suspended", ErrListenerSuspended)
	}
	if utils.IsTrue(listener.OnboardingComplete) {
		return &dto.CompleteOnboardingResponse{
			Message: "Onboarding already completed.",
			Status:  listener.Status,
		}, nil
	}
	if listener.Status != models.ListenerStatusOnboardingRequired {
		return nil, NewBusinessError(CodeFailedPrecondition, "Listener is not awaiting onboarding", ErrOnboardingNotRequired)
	}

	targetStatus := s.targetStatus()

	listener.City = req.City
	listener.Age = req.Age
	if req.DisplayName != "" {
		listener.DisplayName = req.DisplayName
	}
	if req.AvatarURL != "" {
		listener.AvatarURL = req.AvatarURL
	}
	listener.OnboardingComplete = utils.ToPtr(true)

	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.listenerRepo.UpdateOnboardingProfile(txCtx, listener); err != nil {
			return err
		}
		advanced, err := s.listenerRepo.AdvanceOnboardingStatus(txCtx, listener.UID, targetStatus)
		if err != nil {
			return err
		}
		if advanced {
			listener.Status = targetStatus
		}
		return nil
	})
	if err != nil {
		return nil, NewBusinessError(CodeInternal, "Failed to complete onboarding", err)
	}

	msg := fmt.Sprintf("Listener %s completed onboarding, status %s", listener.UID, listener.Status)
	_ = s.createAuditLog(ctx, listener.UID, models.AuditActionOnboardingCompleted, msg, true, nil, metadata)
	if listener.Status == models.ListenerStatusActive {
		activatedMsg := fmt.Sprintf("Listener %s activated on onboarding completion", listener.UID)
		_ = s.createAuditLog(ctx, listener.UID, models.AuditActionListenerActivated, activatedMsg, true, nil, metadata)
	}

	return &dto.CompleteOnboardingResponse{
		Message: "Onboarding completed.",
		Status:  listener.Status,
	}, nil
}

// ActivateEligible promotes listeners who finished onboarding but are still
// waiting for activation. It is called periodically by the watcher and
// returns the number of listeners activated.
func (s *OnboardingFlowImpl) ActivateEligible(ctx context.Context) (int, error) {
	batch := s.cfg.WatcherBatchSize
	if batch <= 0 {
		batch = utils.DefaultSettlementBatch
	}

	listeners, err := s.listenerRepo.ListAwaitingActivation(ctx, batch)
	if err != nil {
		return 0, fmt.Errorf("list awaiting activation: %w", err)
	}

	target := s.targetStatus()
	activated := 0
	for _, l := range listeners {
		ok, err := s.listenerRepo.AdvanceOnboardingStatus(ctx, l.UID, target)
		if err != nil {
			return activated, fmt.Errorf("activate listener %s: %w", l.UID, err)
		}
		if !ok {
			// Already activated or suspended since the list was read.
			continue
		}
		activated++
		msg := fmt.Sprintf("Listener %s advanced to %s by onboarding watcher", l.UID, target)
		_ = s.createAuditLog(ctx, l.UID, models.AuditActionListenerActivated, msg, true, nil, nil)
	}
	return activated, nil
}

// targetStatus selects the post-onboarding status. Immediate activation is
// the default; deployments that want a manual review window leave listeners
// pending for the watcher or an admin.
func (s *OnboardingFlowImpl) targetStatus() string {
	if s.cfg.ActivateOnCompletion {
		return models.ListenerStatusActive
	}
	return models.ListenerStatusPending
}

func (s *OnboardingFlowImpl) createAuditLog(ctx context.Context, listenerUID string, action, description string, success bool, errMsg *string, metadata *ClientMetadata) error {
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
