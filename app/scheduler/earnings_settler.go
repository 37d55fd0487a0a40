// Package scheduler contains background workers for settlement and onboarding
package scheduler

import (
	"context"
	"io"
	"log"
	"os"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/saathi-care/listener-platform/app/middleware"
	businessflow "github.com/saathi-care/listener-platform/business_flow"
	"github.com/saathi-care/listener-platform/config"
	"github.com/saathi-care/listener-platform/models"
	"github.com/saathi-care/listener-platform/repository"
	"github.com/saathi-care/listener-platform/utils"
)

// EarningsSettler periodically settles completed call sessions and user chat
// messages into the earning ledger. Settlement is idempotent, so a session
// picked up twice across ticks is only paid once.
type EarningsSettler struct {
	callRepo    repository.CallSessionRepository
	messageRepo repository.ChatMessageRepository
	earningFlow businessflow.EarningFlow
	logger      *log.Logger
	interval    time.Duration
	batchSize   int
}

func NewEarningsSettler(
	callRepo repository.CallSessionRepository,
	messageRepo repository.ChatMessageRepository,
	earningFlow businessflow.EarningFlow,
	settlementCfg config.SettlementConfig,
	loggingCfg config.LoggingConfig,
) *EarningsSettler {
	interval := settlementCfg.Interval
	if interval <= 0 {
		interval = utils.DefaultSettlementInterval
	}
	batchSize := settlementCfg.BatchSize
	if batchSize <= 0 {
		batchSize = utils.DefaultSettlementBatch
	}

	return &EarningsSettler{
		callRepo:    callRepo,
		messageRepo: messageRepo,
		earningFlow: earningFlow,
		logger:      newSettlementLogger(loggingCfg),
		interval:    interval,
		batchSize:   batchSize,
	}
}

// newSettlementLogger writes settlement activity to stdout and, when enabled,
// to a size-rotated log file.
func newSettlementLogger(cfg config.LoggingConfig) *log.Logger {
	var w io.Writer = os.Stdout
	if cfg.EnableSettlementLog && cfg.SettlementLogPath != "" {
		rotated := &lumberjack.Logger{
			Filename:   cfg.SettlementLogPath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
		w = io.MultiWriter(os.Stdout, rotated)
	}
	return log.New(w, "settler ", log.LstdFlags|log.Lmicroseconds|log.LUTC)
}

// Start launches the settlement loop in a background goroutine and returns a stop function
func (s *EarningsSettler) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.runOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runOnce(ctx)
			}
		}
	}()

	return cancel
}

func (s *EarningsSettler) runOnce(ctx context.Context) {
	s.settleCalls(ctx)
	s.settleMessages(ctx)
}

func (s *EarningsSettler) settleCalls(ctx context.Context) {
	calls, err := s.callRepo.ListUnsettledCompleted(ctx, s.batchSize)
	if err != nil {
		s.logger.Printf("settler: list unsettled calls failed: %v", err)
		return
	}
	if len(calls) == 0 {
		return
	}

	settled := 0
	for _, call := range calls {
		if ctx.Err() != nil {
			return
		}
		record, err := s.earningFlow.SettleCall(ctx, call.ID, nil)
		if err != nil {
			middleware.RecordSettlement(models.SessionTypeCall, "failed", 0)
			s.logger.Printf("settler: call %s settlement failed: %v", call.ID, err)
			continue
		}
		if record != nil {
			middleware.RecordSettlement(models.SessionTypeCall, "settled", record.Amount)
			s.logger.Printf("settler: call %s settled, listener %s earned %.2f", call.ID, record.ListenerUID, record.Amount)
		} else {
			// Below the billable threshold; marked settled without a ledger row.
			middleware.RecordSettlement(models.SessionTypeCall, "zero", 0)
			s.logger.Printf("settler: call %s settled with zero earnings", call.ID)
		}
		settled++
	}
	s.logger.Printf("settler: processed %d of %d unsettled calls", settled, len(calls))
}

func (s *EarningsSettler) settleMessages(ctx context.Context) {
	messages, err := s.messageRepo.ListUnsettledFromUsers(ctx, s.batchSize)
	if err != nil {
		s.logger.Printf("settler: list unsettled messages failed: %v", err)
		return
	}
	if len(messages) == 0 {
		return
	}

	settled := 0
	for _, msg := range messages {
		if ctx.Err() != nil {
			return
		}
		record, err := s.earningFlow.SettleMessage(ctx, msg.ID, nil)
		if err != nil {
			middleware.RecordSettlement(models.SessionTypeMessage, "failed", 0)
			s.logger.Printf("settler: message %s settlement failed: %v", msg.ID, err)
			continue
		}
		if record != nil {
			middleware.RecordSettlement(models.SessionTypeMessage, "settled", record.Amount)
		}
		settled++
	}
	s.logger.Printf("settler: processed %d of %d unsettled messages", settled, len(messages))
}
