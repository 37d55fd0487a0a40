package businessflow

import (
	"context"
	"fmt"

	"github.com/saathi-care/listener-platform/app/dto"
	"github.com/saathi-care/listener-platform/app/services"
	"github.com/saathi-care/listener-platform/models"
	"github.com/saathi-care/listener-platform/repository"
	"github.com/saathi-care/listener-platform/utils"
)

// ApplicationFlow handles public listener application submission
type ApplicationFlow interface {
	SubmitApplication(ctx context.Context, req *dto.SubmitApplicationRequest, metadata *ClientMetadata) (*dto.SubmitApplicationResponse, error)
}

// ApplicationFlowImpl implements the application submission business flow
type ApplicationFlowImpl struct {
	applicationRepo repository.ApplicationRepository
	listenerRepo    repository.ListenerRepository
	auditRepo       repository.AuditLogRepository
	captchaSvc      services.CaptchaService
}

// NewApplicationFlow creates a new application flow instance
func NewApplicationFlow(
	applicationRepo repository.ApplicationRepository,
	listenerRepo repository.ListenerRepository,
	auditRepo repository.AuditLogRepository,
	captchaSvc services.CaptchaService,
) ApplicationFlow {
	return &ApplicationFlowImpl{
		applicationRepo: applicationRepo,
		listenerRepo:    listenerRepo,
		auditRepo:       auditRepo,
		captchaSvc:      captchaSvc,
	}
}

// SubmitApplication validates and stores a new listener application
func (s *ApplicationFlowImpl) SubmitApplication(ctx context.Context, req *dto.SubmitApplicationRequest, metadata *ClientMetadata) (*dto.SubmitApplicationResponse, error) {
	if !s.captchaSvc.VerifyRotate(ctx, req.ChallengeID, req.CaptchaAngle) {
		return nil, NewBusinessError(CodeInvalidArgument, "Captcha verification failed", ErrInvalidCaptcha)
	}

	phone, err := utils.NormalizePhone(req.Phone)
	if err != nil {
		return nil, NewBusinessError(CodeInvalidArgument, "Invalid phone number", ErrPhoneInvalid)
	}

	if err := validatePayoutDetails(req); err != nil {
		return nil, err
	}

	// One open application per phone number.
	existing, err := s.applicationRepo.ByPhone(ctx, phone)
	if err != nil {
		return nil, NewBusinessError(CodeInternal, "Failed to check existing applications", err)
	}
	for _, app := range existing {
		if app.Status != models.ApplicationStatusRejected {
			return nil, NewBusinessError(CodeAlreadyExists, "An application for this phone number is already on file", ErrApplicationAlreadyExists)
		}
	}

	listener, err := s.listenerRepo.ByPhone(ctx, phone)
	if err != nil {
		return nil, NewBusinessError(CodeInternal, "Failed to check existing listeners", err)
	}
	if listener != nil {
		return nil, NewBusinessError(CodeAlreadyExists, "A listener profile already exists for this phone number", ErrListenerExists)
	}

	app := &models.Application{
		FullName:    req.FullName,
		DisplayName: req.DisplayName,
		Phone:       phone,
		Profession:  req.Profession,
		Languages:   req.Languages,
		BankAccount: req.BankAccount,
		IFSC:        req.IFSC,
		BankName:    req.BankName,
		UPIID:       req.UPIID,
		Status:      models.ApplicationStatusPending,
	}
	if err := s.applicationRepo.Save(ctx, app); err != nil {
		return nil, NewBusinessError(CodeInternal, "Failed to store application", err)
	}

	msg := fmt.Sprintf("Application %s submitted for %s", app.UUID, utils.MaskPhone(phone))
	_ = s.createAuditLog(ctx, models.AuditActionApplicationSubmitted, msg, true, nil, metadata)

	return &dto.SubmitApplicationResponse{
		Message:       "Application received. We will review it and notify you by SMS.",
		ApplicationID: app.UUID.String(),
		Status:        app.Status,
	}, nil
}

// validatePayoutDetails requires either the full bank triple or a UPI ID.
func validatePayoutDetails(req *dto.SubmitApplicationRequest) error {
	hasBank := req.BankAccount != nil && *req.BankAccount != "" &&
		req.IFSC != nil && *req.IFSC != "" &&
		req.BankName != nil && *req.BankName != ""
	hasUPI := req.UPIID != nil && *req.UPIID != ""
	if !hasBank && !hasUPI {
		return NewBusinessError(CodeInvalidArgument, "Provide bank account details or a UPI ID", ErrPayoutDetailsMissing)
	}
	return nil
}

func (s *ApplicationFlowImpl) createAuditLog(ctx context.Context, action, description string, success bool, errMsg *string, metadata *ClientMetadata) error {
	log := &models.AuditLog{
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
