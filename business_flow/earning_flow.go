// Package businessflow contains the core business logic and use cases for listener workflows
package businessflow

import (
	"context"
	"fmt"
	"time"

	"github.com/saathi-care/listener-platform/app/dto"
	"github.com/saathi-care/listener-platform/models"
	"github.com/saathi-care/listener-platform/repository"
	"github.com/saathi-care/listener-platform/utils"
)

// EarningFlow settles completed sessions into the earning ledger. Settlement
// is idempotent: the ledger is keyed by the source session id, so re-running
// a settlement for an already-settled session returns the existing record
// without touching totals.
type EarningFlow interface {
	SettleCall(ctx context.Context, callID string, metadata *ClientMetadata) (*models.EarningRecord, error)
	SettleMessage(ctx context.Context, messageID string, metadata *ClientMetadata) (*models.EarningRecord, error)
	ListEarnings(ctx context.Context, req *dto.ListEarningsRequest) (*dto.ListEarningsResponse, error)
}

// EarningFlowImpl implements the settlement business flow
type EarningFlowImpl struct {
	callRepo     repository.CallSessionRepository
	messageRepo  repository.ChatMessageRepository
	earningRepo  repository.EarningRepository
	listenerRepo repository.ListenerRepository
	auditRepo    repository.AuditLogRepository
	pricing      PricingPolicy
	tx           repository.TxManager
}

// NewEarningFlow creates a new earning flow instance
func NewEarningFlow(
	callRepo repository.CallSessionRepository,
	messageRepo repository.ChatMessageRepository,
	earningRepo repository.EarningRepository,
	listenerRepo repository.ListenerRepository,
	auditRepo repository.AuditLogRepository,
	pricing PricingPolicy,
	tx repository.TxManager,
) EarningFlow {
	return &EarningFlowImpl{
		callRepo:     callRepo,
		messageRepo:  messageRepo,
		earningRepo:  earningRepo,
		listenerRepo: listenerRepo,
		auditRepo:    auditRepo,
		pricing:      pricing,
		tx:           tx,
	}
}

// SettleCall writes the ledger entry for a completed call and updates the
// listener's running totals. Safe to call more than once per call.
func (s *EarningFlowImpl) SettleCall(ctx context.Context, callID string, metadata *ClientMetadata) (*models.EarningRecord, error) {
	call, err := s.callRepo.ByID(ctx, callID)
	if err != nil {
		return nil, NewBusinessError(CodeInternal, "Failed to load call session", err)
	}
	if call == nil {
		return nil, NewBusinessError(CodeNotFound, "Call session not found", ErrSessionNotFound)
	}
	if call.Status != models.CallStatusCompleted {
		return nil, NewBusinessError(CodeFailedPrecondition, "Call session is not completed", ErrSessionNotCompleted)
	}
	if utils.IsTrue(call.Settled) {
		// Already settled, return the existing ledger entry if one was written.
		existing, err := s.earningRepo.BySourceID(ctx, call.ID)
		if err != nil {
			return nil, NewBusinessError(CodeInternal, "Failed to load earning record", err)
		}
		return existing, nil
	}

	duration := call.Duration()
	earning, err := s.pricing.CallEarning(duration)
	if err != nil {
		// A session with corrupt timestamps can never price, so park it as
		// settled with no payout instead of letting every sweep retry it.
		if markErr := s.callRepo.MarkSettled(ctx, call.ID, 0, 0); markErr != nil {
			return nil, NewBusinessError(CodeInternal, "Failed to mark call settled", markErr)
		}
		errMsg := fmt.Sprintf("Call %s has an invalid duration: %s", call.ID, err.Error())
		_ = s.createAuditLog(ctx, call.ListenerUID, models.AuditActionEarningSettleFailed, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError(CodeInvalidArgument, "Invalid call duration", err)
	}

	durationSecs := int(duration / time.Second)
	minutes := duration.Minutes()

	// Zero-value calls are marked settled without a ledger entry.
	if earning.ListenerAmount == 0 && earning.PlatformAmount == 0 {
		if err := s.callRepo.MarkSettled(ctx, call.ID, durationSecs, 0); err != nil {
			return nil, NewBusinessError(CodeInternal, "Failed to mark call settled", err)
		}
		return nil, nil
	}

	occurredAt := call.CreatedAt
	if call.EndedAt != nil {
		occurredAt = *call.EndedAt
	}

	record := &models.EarningRecord{
		SourceID:         call.ID,
		SessionType:      models.SessionTypeCall,
		ListenerUID:      call.ListenerUID,
		Amount:           earning.ListenerAmount,
		PlatformAmount:   earning.PlatformAmount,
		CounterpartyName: call.UserName,
		OccurredAt:       occurredAt,
	}

	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		created, err := s.earningRepo.CreateIfAbsent(txCtx, record)
		if err != nil {
			return err
		}
		// Totals only move when the ledger row is actually new.
		if created {
			if err := s.listenerRepo.IncrementCallTotals(txCtx, call.ListenerUID, earning.ListenerAmount, minutes); err != nil {
				return err
			}
		}
		return s.callRepo.MarkSettled(txCtx, call.ID, durationSecs, earning.ListenerAmount)
	})

	if err != nil {
		errMsg := fmt.Sprintf("Call settlement failed for %s: %s", call.ID, err.Error())
		_ = s.createAuditLog(ctx, call.ListenerUID, models.AuditActionEarningSettleFailed, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError(CodeInternal, "Call settlement failed", err)
	}

	msg := fmt.Sprintf("Call %s settled: %.2f to listener, %.2f to platform", call.ID, earning.ListenerAmount, earning.PlatformAmount)
	_ = s.createAuditLog(ctx, call.ListenerUID, models.AuditActionEarningSettled, msg, true, nil, metadata)

	return record, nil
}

// SettleMessage writes the ledger entry for a user-authored chat message.
// Listener replies never earn and are rejected.
func (s *EarningFlowImpl) SettleMessage(ctx context.Context, messageID string, metadata *ClientMetadata) (*models.EarningRecord, error) {
	message, err := s.messageRepo.ByID(ctx, messageID)
	if err != nil {
		return nil, NewBusinessError(CodeInternal, "Failed to load chat message", err)
	}
	if message == nil {
		return nil, NewBusinessError(CodeNotFound, "Chat message not found", ErrSessionNotFound)
	}
	if !message.FromUser() {
		return nil, NewBusinessError(CodeFailedPrecondition, "Message was not sent by the user", ErrMessageFromListener)
	}
	if utils.IsTrue(message.Settled) {
		existing, err := s.earningRepo.BySourceID(ctx, message.ID)
		if err != nil {
			return nil, NewBusinessError(CodeInternal, "Failed to load earning record", err)
		}
		return existing, nil
	}

	earning := s.pricing.MessageEarning()

	record := &models.EarningRecord{
		SourceID:         message.ID,
		SessionType:      models.SessionTypeMessage,
		ListenerUID:      message.ListenerUID,
		Amount:           earning.ListenerAmount,
		PlatformAmount:   earning.PlatformAmount,
		CounterpartyName: message.UserName,
		OccurredAt:       message.SentAt,
	}

	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		created, err := s.earningRepo.CreateIfAbsent(txCtx, record)
		if err != nil {
			return err
		}
		if created {
			if err := s.listenerRepo.IncrementMessageTotals(txCtx, message.ListenerUID, earning.ListenerAmount); err != nil {
				return err
			}
		}
		return s.messageRepo.MarkSettled(txCtx, message.ID)
	})

	if err != nil {
		errMsg := fmt.Sprintf("Message settlement failed for %s: %s", message.ID, err.Error())
		_ = s.createAuditLog(ctx, message.ListenerUID, models.AuditActionEarningSettleFailed, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError(CodeInternal, "Message settlement failed", err)
	}

	msg := fmt.Sprintf("Message %s settled: %.2f to listener", message.ID, earning.ListenerAmount)
	_ = s.createAuditLog(ctx, message.ListenerUID, models.AuditActionEarningSettled, msg, true, nil, metadata)

	return record, nil
}

// ListEarnings returns a page of a listener's ledger with aggregate counts
func (s *EarningFlowImpl) ListEarnings(ctx context.Context, req *dto.ListEarningsRequest) (*dto.ListEarningsResponse, error) {
	if req == nil || req.ListenerUID == "" {
		return nil, NewBusinessError(CodeInvalidArgument, "Listener UID is required", ErrListenerNotFound)
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	filter := models.EarningRecordFilter{ListenerUID: &req.ListenerUID}
	if req.From != "" {
		from, err := time.Parse("2006-01-02", req.From)
		if err != nil {
			return nil, NewBusinessError(CodeInvalidArgument, "Invalid from date", err)
		}
		filter.OccurredAfter = &from
	}
	if req.To != "" {
		to, err := time.Parse("2006-01-02", req.To)
		if err != nil {
			return nil, NewBusinessError(CodeInvalidArgument, "Invalid to date", err)
		}
		if filter.OccurredAfter != nil && filter.OccurredAfter.After(to) {
			return nil, NewBusinessError(CodeInvalidArgument, "Invalid date range", ErrStartDateAfterEndDate)
		}
		// The to day counts in full.
		to = to.AddDate(0, 0, 1)
		filter.OccurredBefore = &to
	}

	records, err := s.earningRepo.ByFilter(ctx, filter, "occurred_at DESC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError(CodeInternal, "Failed to list earnings", err)
	}
	total, err := s.earningRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError(CodeInternal, "Failed to count earnings", err)
	}

	resp := &dto.ListEarningsResponse{
		Items: make([]dto.EarningDTO, 0, len(records)),
		Total: total,
		Page:  page,
	}
	for _, rec := range records {
		resp.Items = append(resp.Items, ToEarningDTO(*rec))
		resp.TotalAmount = utils.RoundMoney(resp.TotalAmount + rec.Amount)
		switch rec.SessionType {
		case models.SessionTypeCall:
			resp.CallCount++
		case models.SessionTypeMessage:
			resp.MessageCount++
		}
	}
	return resp, nil
}

func (s *EarningFlowImpl) createAuditLog(ctx context.Context, listenerUID, action, description string, success bool, errMsg *string, metadata *ClientMetadata) error {
	log := &models.AuditLog{
		Action:       action,
		Description:  &description,
		Success:      &success,
		ErrorMessage: errMsg,
	}
	if listenerUID != "" {
		log.ListenerUID = &listenerUID
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
