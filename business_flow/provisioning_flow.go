package businessflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/saathi-care/listener-platform/app/dto"
	"github.com/saathi-care/listener-platform/app/services"
	"github.com/saathi-care/listener-platform/models"
	"github.com/saathi-care/listener-platform/repository"
	"github.com/saathi-care/listener-platform/utils"
)

// ProvisioningFlow reviews listener applications. Approval provisions the
// listener profile against the external identity provider: the identity
// lookup/create happens outside the database transaction, and a newly
// created identity is deleted again if the transaction fails.
type ProvisioningFlow interface {
	ApproveApplication(ctx context.Context, req *dto.ApproveApplicationRequest, metadata *ClientMetadata) (*dto.ApproveApplicationResponse, error)
	RejectApplication(ctx context.Context, req *dto.RejectApplicationRequest, metadata *ClientMetadata) (*dto.RejectApplicationResponse, error)
	ListApplications(ctx context.Context, req *dto.ListApplicationsRequest) (*dto.ListApplicationsResponse, error)
}

// ProvisioningFlowImpl implements the application review business flow
type ProvisioningFlowImpl struct {
	applicationRepo repository.ApplicationRepository
	listenerRepo    repository.ListenerRepository
	auditRepo       repository.AuditLogRepository
	identitySvc     services.IdentityService
	notificationSvc services.NotificationService
	tx              repository.TxManager
}

// NewProvisioningFlow creates a new provisioning flow instance
func NewProvisioningFlow(
	applicationRepo repository.ApplicationRepository,
	listenerRepo repository.ListenerRepository,
	auditRepo repository.AuditLogRepository,
	identitySvc services.IdentityService,
	notificationSvc services.NotificationService,
	tx repository.TxManager,
) ProvisioningFlow {
	return &ProvisioningFlowImpl{
		applicationRepo: applicationRepo,
		listenerRepo:    listenerRepo,
		auditRepo:       auditRepo,
		identitySvc:     identitySvc,
		notificationSvc: notificationSvc,
		tx:              tx,
	}
}

// ApproveApplication approves a pending application and provisions the
// listener profile.
func (s *ProvisioningFlowImpl) ApproveApplication(ctx context.Context, req *dto.ApproveApplicationRequest, metadata *ClientMetadata) (*dto.ApproveApplicationResponse, error) {
	app, err := s.loadApplication(ctx, req.ApplicationUUID)
	if err != nil {
		return nil, err
	}
	if !app.IsPending() {
		return nil, NewBusinessError(CodeFailedPrecondition, "Application has already been reviewed", ErrApplicationNotPending)
	}

	// Identity phase, outside the transaction. The provider is the system of
	// record for accounts; an account may already exist if the applicant uses
	// the user-facing app with the same phone number.
	account, createdIdentity, err := s.resolveIdentity(ctx, app)
	if err != nil {
		return nil, err
	}

	listener := buildListener(app, account)

	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.listenerRepo.CreateProfile(txCtx, listener); err != nil {
			return err
		}

		flipped, err := s.applicationRepo.MarkApproved(txCtx, app.ID, account.UID)
		if err != nil {
			return err
		}
		if !flipped {
			// Another reviewer got there first.
			return ErrApplicationNotPending
		}
		return nil
	})

	if err != nil {
		s.compensateIdentity(ctx, account.UID, createdIdentity, metadata)

		errMsg := fmt.Sprintf("Approval failed for application %s: %s", app.UUID, err.Error())
		_ = s.createAuditLog(ctx, nil, models.AuditActionApprovalFailed, errMsg, false, &errMsg, metadata)

		if errors.Is(err, repository.ErrProfileExists) {
			return nil, NewBusinessError(CodeAlreadyExists, "A listener profile already exists for this identity", ErrListenerExists)
		}
		if errors.Is(err, ErrApplicationNotPending) {
			return nil, NewBusinessError(CodeFailedPrecondition, "Application has already been reviewed", ErrApplicationNotPending)
		}
		return nil, NewBusinessError(CodeInternal, "Approval failed", err)
	}

	msg := fmt.Sprintf("Application %s approved, listener %s provisioned", app.UUID, account.UID)
	_ = s.createAuditLog(ctx, &account.UID, models.AuditActionApplicationApproved, msg, true, nil, metadata)

	// Notify the applicant outside the transaction.
	go func() {
		smsText := fmt.Sprintf("Congratulations %s! Your listener application has been approved. Open the app to finish setting up your profile.", app.DisplayName)
		if err := s.notificationSvc.SendSMS(context.Background(), app.Phone, smsText); err != nil {
			errMsg := fmt.Sprintf("Failed to send approval SMS: %v", err)
			_ = s.createAuditLog(context.Background(), &account.UID, models.AuditActionApprovalSMSFailed, errMsg, false, &errMsg, metadata)
		}
	}()

	return &dto.ApproveApplicationResponse{
		Message:     "Application approved. Listener profile provisioned.",
		ListenerUID: account.UID,
		Status:      listener.Status,
	}, nil
}

// RejectApplication rejects a pending application.
func (s *ProvisioningFlowImpl) RejectApplication(ctx context.Context, req *dto.RejectApplicationRequest, metadata *ClientMetadata) (*dto.RejectApplicationResponse, error) {
	app, err := s.loadApplication(ctx, req.ApplicationUUID)
	if err != nil {
		return nil, err
	}
	if !app.IsPending() {
		return nil, NewBusinessError(CodeFailedPrecondition, "Application has already been reviewed", ErrApplicationNotPending)
	}

	reason := req.Reason
	if reason == "" {
		reason = utils.DefaultRejectionReason
	}

	flipped, err := s.applicationRepo.MarkRejected(ctx, app.ID, reason)
	if err != nil {
		return nil, NewBusinessError(CodeInternal, "Rejection failed", err)
	}
	if !flipped {
		return nil, NewBusinessError(CodeFailedPrecondition, "Application has already been reviewed", ErrApplicationNotPending)
	}

	msg := fmt.Sprintf("Application %s rejected: %s", app.UUID, reason)
	_ = s.createAuditLog(ctx, nil, models.AuditActionApplicationRejected, msg, true, nil, metadata)

	go func() {
		smsText := fmt.Sprintf("Dear %s, we are unable to accept your listener application at this time. %s", app.DisplayName, reason)
		if err := s.notificationSvc.SendSMS(context.Background(), app.Phone, smsText); err != nil {
			errMsg := fmt.Sprintf("Failed to send rejection SMS: %v", err)
			_ = s.createAuditLog(context.Background(), nil, models.AuditActionRejectionSMSFailed, errMsg, false, &errMsg, metadata)
		}
	}()

	return &dto.RejectApplicationResponse{
		Message: "Application rejected.",
		Status:  models.ApplicationStatusRejected,
	}, nil
}

// ListApplications returns a page of the admin review queue
func (s *ProvisioningFlowImpl) ListApplications(ctx context.Context, req *dto.ListApplicationsRequest) (*dto.ListApplicationsResponse, error) {
	page := 1
	pageSize := 20
	if req != nil {
		if req.Page > 0 {
			page = req.Page
		}
		if req.PageSize > 0 && req.PageSize <= 100 {
			pageSize = req.PageSize
		}
	}

	filter := models.ApplicationFilter{}
	if req != nil && req.Status != "" {
		filter.Status = &req.Status
	}

	apps, err := s.applicationRepo.ByFilter(ctx, filter, "created_at ASC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError(CodeInternal, "Failed to list applications", err)
	}
	total, err := s.applicationRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError(CodeInternal, "Failed to count applications", err)
	}

	resp := &dto.ListApplicationsResponse{
		Items: make([]dto.ApplicationDTO, 0, len(apps)),
		Total: total,
		Page:  page,
	}
	for _, app := range apps {
		resp.Items = append(resp.Items, ToApplicationDTO(*app))
	}
	return resp, nil
}

// Private helper methods

func (s *ProvisioningFlowImpl) loadApplication(ctx context.Context, applicationUUID string) (*models.Application, error) {
	if _, err := utils.ParseUUID(applicationUUID); err != nil {
		return nil, NewBusinessError(CodeInvalidArgument, "Invalid application UUID", err)
	}
	app, err := s.applicationRepo.ByUUID(ctx, applicationUUID)
	if err != nil {
		return nil, NewBusinessError(CodeInternal, "Failed to load application", err)
	}
	if app == nil {
		return nil, NewBusinessError(CodeNotFound, "Application not found", ErrApplicationNotFound)
	}
	return app, nil
}

// resolveIdentity finds or creates the identity account for the applicant.
// The second return value reports whether this call created the account.
func (s *ProvisioningFlowImpl) resolveIdentity(ctx context.Context, app *models.Application) (*services.IdentityAccount, bool, error) {
	account, err := s.identitySvc.LookupByPhone(ctx, app.Phone)
	if err == nil {
		return account, false, nil
	}
	if !errors.Is(err, services.ErrIdentityNotFound) {
		return nil, false, NewBusinessError(CodeInternal, "Identity lookup failed", ErrIdentityUnavailable)
	}

	account, err = s.identitySvc.CreateAccount(ctx, app.Phone, app.DisplayName)
	if err != nil {
		return nil, false, NewBusinessError(CodeInternal, "Identity creation failed", ErrIdentityUnavailable)
	}
	return account, true, nil
}

// compensateIdentity deletes an identity account that this approval created.
// Pre-existing accounts are left alone: the applicant owns them.
func (s *ProvisioningFlowImpl) compensateIdentity(ctx context.Context, uid string, createdIdentity bool, metadata *ClientMetadata) {
	if !createdIdentity {
		return
	}
	if err := s.identitySvc.DeleteAccount(ctx, uid); err != nil {
		errMsg := fmt.Sprintf("Failed to roll back identity %s: %v", uid, err)
		_ = s.createAuditLog(ctx, &uid, models.AuditActionIdentityRolledBack, errMsg, false, &errMsg, metadata)
		return
	}
	msg := fmt.Sprintf("Identity %s rolled back after failed approval", uid)
	_ = s.createAuditLog(ctx, &uid, models.AuditActionIdentityRolledBack, msg, true, nil, metadata)
}

// buildListener maps an approved application onto a fresh listener profile.
func buildListener(app *models.Application, account *services.IdentityAccount) *models.Listener {
	return &models.Listener{
		UID:                account.UID,
		DisplayName:        app.DisplayName,
		RealName:           app.FullName,
		Phone:              app.Phone,
		Status:             models.ListenerStatusOnboardingRequired,
		Availability:       models.AvailabilityOffline,
		IsAdmin:            utils.ToPtr(false),
		OnboardingComplete: utils.ToPtr(false),
		Profession:         app.Profession,
		Languages:          app.Languages,
		BankAccount:        app.BankAccount,
		IFSC:               app.IFSC,
		BankName:           app.BankName,
		UPIID:              app.UPIID,
	}
}

func (s *ProvisioningFlowImpl) createAuditLog(ctx context.Context, listenerUID *string, action, description string, success bool, errMsg *string, metadata *ClientMetadata) error {
	log := &models.AuditLog{
		ListenerUID:  listenerUID,
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
