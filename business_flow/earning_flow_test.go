package businessflow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saathi-care/listener-platform/app/dto"
	"github.com/saathi-care/listener-platform/models"
	"github.com/saathi-care/listener-platform/utils"
)

type earningFlowFixture struct {
	flow         EarningFlow
	callRepo     *fakeCallRepo
	messageRepo  *fakeMessageRepo
	earningRepo  *fakeEarningRepo
	listenerRepo *fakeListenerRepo
	auditRepo    *fakeAuditRepo
	tx           *fakeTxManager
}

func newEarningFlowFixture() *earningFlowFixture {
	f := &earningFlowFixture{
		callRepo:     newFakeCallRepo(),
		messageRepo:  newFakeMessageRepo(),
		earningRepo:  newFakeEarningRepo(),
		listenerRepo: newFakeListenerRepo(),
		auditRepo:    &fakeAuditRepo{},
		tx:           &fakeTxManager{},
	}
	f.flow = NewEarningFlow(f.callRepo, f.messageRepo, f.earningRepo, f.listenerRepo, f.auditRepo, DefaultPricingPolicy(), f.tx)
	return f
}

func (f *earningFlowFixture) addListener(uid string) *models.Listener {
	l := &models.Listener{
		UID:          uid,
		DisplayName:  "Priya",
		RealName:     "Priya Sharma",
		Phone:        "+919876543210",
		Status:       models.ListenerStatusActive,
		Availability: models.AvailabilityAvailable,
	}
	f.listenerRepo.add(l)
	return l
}

func (f *earningFlowFixture) addCall(id, listenerUID string, duration time.Duration) *models.CallSession {
	endedAt := utils.UTCNow()
	startedAt := endedAt.Add(-duration)
	c := &models.CallSession{
		ID:          id,
		ListenerUID: listenerUID,
		UserID:      "user-1",
		UserName:    "Rahul",
		Status:      models.CallStatusCompleted,
		StartedAt:   &startedAt,
		EndedAt:     &endedAt,
		Settled:     utils.ToPtr(false),
	}
	f.callRepo.add(c)
	return c
}

func TestSettleCallWritesLedgerAndTotals(t *testing.T) {
	f := newEarningFlowFixture()
	f.addListener("uid-1")
	f.addCall("call-1", "uid-1", 12*time.Minute)

	record, err := f.flow.SettleCall(context.Background(), "call-1", nil)
	require.NoError(t, err)
	require.NotNil(t, record)

	assert.Equal(t, "call-1", record.SourceID)
	assert.Equal(t, models.SessionTypeCall, record.SessionType)
	assert.Equal(t, 30.00, record.Amount)
	assert.Equal(t, 82.80, record.PlatformAmount)
	assert.Equal(t, "Rahul", record.CounterpartyName)

	listener, _ := f.listenerRepo.ByUID(context.Background(), "uid-1")
	assert.Equal(t, 30.00, listener.TotalEarnings)
	assert.Equal(t, int64(1), listener.TotalCalls)
	assert.InDelta(t, 12.0, listener.TotalMinutes, 0.001)

	call, _ := f.callRepo.ByID(context.Background(), "call-1")
	assert.True(t, utils.IsTrue(call.Settled))
	assert.Equal(t, 720, call.DurationSeconds)
	assert.True(t, containsAction(f.auditRepo.actions(), models.AuditActionEarningSettled))
}

func TestSettleCallIsIdempotent(t *testing.T) {
	f := newEarningFlowFixture()
	f.addListener("uid-1")
	f.addCall("call-1", "uid-1", 12*time.Minute)

	first, err := f.flow.SettleCall(context.Background(), "call-1", nil)
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := f.flow.SettleCall(context.Background(), "call-1", nil)
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, first.SourceID, second.SourceID)
	assert.Equal(t, first.Amount, second.Amount)

	// Totals moved exactly once.
	listener, _ := f.listenerRepo.ByUID(context.Background(), "uid-1")
	assert.Equal(t, 30.00, listener.TotalEarnings)
	assert.Equal(t, int64(1), listener.TotalCalls)
}

func TestSettleCallRetryAfterPartialFailure(t *testing.T) {
	// A ledger row exists but the session was never flagged settled, as after
	// a crash between the insert and the flag update. The retry must not move
	// totals again.
	f := newEarningFlowFixture()
	f.addListener("uid-1")
	call := f.addCall("call-1", "uid-1", 12*time.Minute)

	_, err := f.earningRepo.CreateIfAbsent(context.Background(), &models.EarningRecord{
		SourceID:    call.ID,
		SessionType: models.SessionTypeCall,
		ListenerUID: "uid-1",
		Amount:      30.00,
	})
	require.NoError(t, err)

	record, err := f.flow.SettleCall(context.Background(), "call-1", nil)
	require.NoError(t, err)
	require.NotNil(t, record)

	listener, _ := f.listenerRepo.ByUID(context.Background(), "uid-1")
	assert.Zero(t, listener.TotalEarnings)
	assert.Zero(t, listener.TotalCalls)

	updated, _ := f.callRepo.ByID(context.Background(), "call-1")
	assert.True(t, utils.IsTrue(updated.Settled))
}

func TestSettleCallZeroDuration(t *testing.T) {
	f := newEarningFlowFixture()
	f.addListener("uid-1")
	f.addCall("call-1", "uid-1", 0)

	record, err := f.flow.SettleCall(context.Background(), "call-1", nil)
	require.NoError(t, err)
	assert.Nil(t, record)

	// Marked settled with no ledger entry.
	call, _ := f.callRepo.ByID(context.Background(), "call-1")
	assert.True(t, utils.IsTrue(call.Settled))
	existing, _ := f.earningRepo.BySourceID(context.Background(), "call-1")
	assert.Nil(t, existing)

	listener, _ := f.listenerRepo.ByUID(context.Background(), "uid-1")
	assert.Zero(t, listener.TotalEarnings)
}

func TestSettleCallNegativeDuration(t *testing.T) {
	f := newEarningFlowFixture()
	f.addListener("uid-1")
	call := f.addCall("call-1", "uid-1", time.Minute)
	flipped := call.EndedAt.Add(-2 * time.Minute)
	call.EndedAt = &flipped

	_, err := f.flow.SettleCall(context.Background(), "call-1", nil)
	require.Error(t, err)
	assert.True(t, IsNegativeDuration(err))

	// The corrupt session is parked as settled with no payout so sweeps
	// stop retrying it.
	updated, _ := f.callRepo.ByID(context.Background(), "call-1")
	assert.True(t, utils.IsTrue(updated.Settled))
	existing, _ := f.earningRepo.BySourceID(context.Background(), "call-1")
	assert.Nil(t, existing)
	listener, _ := f.listenerRepo.ByUID(context.Background(), "uid-1")
	assert.Zero(t, listener.TotalEarnings)
	assert.True(t, containsAction(f.auditRepo.actions(), models.AuditActionEarningSettleFailed))

	// A replay takes the already-settled path and is a quiet no-op.
	record, err := f.flow.SettleCall(context.Background(), "call-1", nil)
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestSettleCallNotCompleted(t *testing.T) {
	f := newEarningFlowFixture()
	f.addListener("uid-1")
	call := f.addCall("call-1", "uid-1", time.Minute)
	call.Status = models.CallStatusMissed

	_, err := f.flow.SettleCall(context.Background(), "call-1", nil)
	require.Error(t, err)
	assert.True(t, IsSessionNotCompleted(err))
}

func TestSettleCallNotFound(t *testing.T) {
	f := newEarningFlowFixture()

	_, err := f.flow.SettleCall(context.Background(), "missing", nil)
	require.Error(t, err)
	assert.True(t, IsSessionNotFound(err))
}

func TestSettleMessage(t *testing.T) {
	f := newEarningFlowFixture()
	f.addListener("uid-1")
	f.messageRepo.add(&models.ChatMessage{
		ID:          "msg-1",
		ChatID:      "chat-1",
		ListenerUID: "uid-1",
		UserID:      "user-1",
		UserName:    "Rahul",
		SenderID:    "user-1",
		SentAt:      utils.UTCNow(),
		Settled:     utils.ToPtr(false),
	})

	record, err := f.flow.SettleMessage(context.Background(), "msg-1", nil)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, models.SessionTypeMessage, record.SessionType)
	assert.Equal(t, 0.20, record.Amount)
	assert.Equal(t, 2.15, record.PlatformAmount)

	listener, _ := f.listenerRepo.ByUID(context.Background(), "uid-1")
	assert.Equal(t, 0.20, listener.TotalEarnings)
	assert.Equal(t, int64(1), listener.TotalMessages)

	// Settling again returns the same ledger entry without moving totals.
	again, err := f.flow.SettleMessage(context.Background(), "msg-1", nil)
	require.NoError(t, err)
	require.NotNil(t, again)
	assert.Equal(t, record.SourceID, again.SourceID)
	listener, _ = f.listenerRepo.ByUID(context.Background(), "uid-1")
	assert.Equal(t, int64(1), listener.TotalMessages)
}

func TestSettleMessageFromListenerRejected(t *testing.T) {
	f := newEarningFlowFixture()
	f.addListener("uid-1")
	f.messageRepo.add(&models.ChatMessage{
		ID:          "msg-1",
		ChatID:      "chat-1",
		ListenerUID: "uid-1",
		UserID:      "user-1",
		SenderID:    "uid-1", // listener reply
		SentAt:      utils.UTCNow(),
		Settled:     utils.ToPtr(false),
	})

	_, err := f.flow.SettleMessage(context.Background(), "msg-1", nil)
	require.Error(t, err)
	assert.True(t, IsMessageFromListener(err))

	listener, _ := f.listenerRepo.ByUID(context.Background(), "uid-1")
	assert.Zero(t, listener.TotalMessages)
}

func TestListEarningsRejectsInvertedRange(t *testing.T) {
	f := newEarningFlowFixture()

	_, err := f.flow.ListEarnings(context.Background(), &dto.ListEarningsRequest{
		ListenerUID: "uid-1",
		From:        "2026-02-01",
		To:          "2026-01-01",
	})
	require.Error(t, err)
	assert.True(t, IsStartDateAfterEndDate(err))
}

func TestListEarningsIncludesFullToDay(t *testing.T) {
	f := newEarningFlowFixture()
	for _, rec := range []*models.EarningRecord{
		{SourceID: "call-1", SessionType: models.SessionTypeCall, ListenerUID: "uid-1", Amount: 30.00,
			OccurredAt: time.Date(2026, 3, 31, 23, 15, 0, 0, time.UTC)},
		{SourceID: "call-2", SessionType: models.SessionTypeCall, ListenerUID: "uid-1", Amount: 10.00,
			OccurredAt: time.Date(2026, 4, 1, 0, 30, 0, 0, time.UTC)},
	} {
		created, err := f.earningRepo.CreateIfAbsent(context.Background(), rec)
		require.NoError(t, err)
		require.True(t, created)
	}

	resp, err := f.flow.ListEarnings(context.Background(), &dto.ListEarningsRequest{
		ListenerUID: "uid-1",
		From:        "2026-03-01",
		To:          "2026-03-31",
	})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "call-1", resp.Items[0].SourceID)
	assert.Equal(t, 30.00, resp.TotalAmount)
}

func TestListEarningsAggregates(t *testing.T) {
	f := newEarningFlowFixture()
	now := utils.UTCNow()
	for i, rec := range []*models.EarningRecord{
		{SourceID: "call-1", SessionType: models.SessionTypeCall, ListenerUID: "uid-1", Amount: 30.00, OccurredAt: now},
		{SourceID: "msg-1", SessionType: models.SessionTypeMessage, ListenerUID: "uid-1", Amount: 0.20, OccurredAt: now},
		{SourceID: "call-2", SessionType: models.SessionTypeCall, ListenerUID: "uid-2", Amount: 10.00, OccurredAt: now},
	} {
		created, err := f.earningRepo.CreateIfAbsent(context.Background(), rec)
		require.NoError(t, err, "record %d", i)
		require.True(t, created)
	}

	resp, err := f.flow.ListEarnings(context.Background(), &dto.ListEarningsRequest{ListenerUID: "uid-1"})
	require.NoError(t, err)
	assert.Len(t, resp.Items, 2)
	assert.Equal(t, int64(2), resp.Total)
	assert.Equal(t, 30.20, resp.TotalAmount)
	assert.Equal(t, int64(1), resp.CallCount)
	assert.Equal(t, int64(1), resp.MessageCount)
}
