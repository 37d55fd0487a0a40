package businessflow

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/saathi-care/listener-platform/app/services"
	"github.com/saathi-care/listener-platform/models"
	"github.com/saathi-care/listener-platform/repository"
	"github.com/saathi-care/listener-platform/utils"
)

// In-memory fakes shared by the flow tests. They implement the repository
// interfaces over plain maps so the flows can be exercised without a database.

type fakeTxManager struct {
	failWith error
	calls    int
}

func (f *fakeTxManager) WithinTransaction(ctx context.Context, fn func(txCtx context.Context) error) error {
	f.calls++
	if f.failWith != nil {
		return f.failWith
	}
	return fn(ctx)
}

type fakeAuditRepo struct {
	mu   sync.Mutex
	logs []*models.AuditLog
}

func (f *fakeAuditRepo) Save(ctx context.Context, entity *models.AuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, entity)
	return nil
}

func (f *fakeAuditRepo) ByFilter(ctx context.Context, filter models.AuditLogFilter, orderBy string, limit, offset int) ([]*models.AuditLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.AuditLog
	for _, l := range f.logs {
		if filter.Action != nil && l.Action != *filter.Action {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (f *fakeAuditRepo) Count(ctx context.Context, filter models.AuditLogFilter) (int64, error) {
	logs, _ := f.ByFilter(ctx, filter, "", 0, 0)
	return int64(len(logs)), nil
}

func (f *fakeAuditRepo) Exists(ctx context.Context, filter models.AuditLogFilter) (bool, error) {
	n, _ := f.Count(ctx, filter)
	return n > 0, nil
}

func (f *fakeAuditRepo) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.logs))
	for _, l := range f.logs {
		out = append(out, l.Action)
	}
	return out
}

type fakeApplicationRepo struct {
	apps        []*models.Application
	nextID      uint
	staleFlip   bool // MarkApproved/MarkRejected report a lost race
	byPhoneErr  error
	markApprErr error
}

func (f *fakeApplicationRepo) Save(ctx context.Context, entity *models.Application) error {
	f.nextID++
	entity.ID = f.nextID
	if entity.UUID == uuid.Nil {
		entity.UUID = uuid.New()
	}
	entity.CreatedAt = utils.UTCNow()
	f.apps = append(f.apps, entity)
	return nil
}

func (f *fakeApplicationRepo) ByFilter(ctx context.Context, filter models.ApplicationFilter, orderBy string, limit, offset int) ([]*models.Application, error) {
	var out []*models.Application
	for _, a := range f.apps {
		if filter.Status != nil && a.Status != *filter.Status {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeApplicationRepo) Count(ctx context.Context, filter models.ApplicationFilter) (int64, error) {
	apps, _ := f.ByFilter(ctx, filter, "", 0, 0)
	return int64(len(apps)), nil
}

func (f *fakeApplicationRepo) Exists(ctx context.Context, filter models.ApplicationFilter) (bool, error) {
	n, _ := f.Count(ctx, filter)
	return n > 0, nil
}

func (f *fakeApplicationRepo) ByID(ctx context.Context, id uint) (*models.Application, error) {
	for _, a := range f.apps {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeApplicationRepo) ByUUID(ctx context.Context, u string) (*models.Application, error) {
	for _, a := range f.apps {
		if a.UUID.String() == u {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeApplicationRepo) ByPhone(ctx context.Context, phone string) ([]*models.Application, error) {
	if f.byPhoneErr != nil {
		return nil, f.byPhoneErr
	}
	var out []*models.Application
	for _, a := range f.apps {
		if a.Phone == phone {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeApplicationRepo) ListPending(ctx context.Context, limit, offset int) ([]*models.Application, error) {
	status := models.ApplicationStatusPending
	return f.ByFilter(ctx, models.ApplicationFilter{Status: &status}, "created_at ASC", limit, offset)
}

func (f *fakeApplicationRepo) MarkApproved(ctx context.Context, id uint, listenerUID string) (bool, error) {
	if f.markApprErr != nil {
		return false, f.markApprErr
	}
	if f.staleFlip {
		return false, nil
	}
	for _, a := range f.apps {
		if a.ID == id && a.Status == models.ApplicationStatusPending {
			a.Status = models.ApplicationStatusApproved
			a.ListenerUID = &listenerUID
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeApplicationRepo) MarkRejected(ctx context.Context, id uint, reason string) (bool, error) {
	if f.staleFlip {
		return false, nil
	}
	for _, a := range f.apps {
		if a.ID == id && a.Status == models.ApplicationStatusPending {
			a.Status = models.ApplicationStatusRejected
			a.RejectionReason = &reason
			return true, nil
		}
	}
	return false, nil
}

type fakeListenerRepo struct {
	listeners     map[string]*models.Listener
	createErr     error
	sumMinutesVal float64
}

func newFakeListenerRepo() *fakeListenerRepo {
	return &fakeListenerRepo{listeners: make(map[string]*models.Listener)}
}

func (f *fakeListenerRepo) add(l *models.Listener) {
	f.listeners[l.UID] = l
}

func (f *fakeListenerRepo) Save(ctx context.Context, entity *models.Listener) error {
	f.listeners[entity.UID] = entity
	return nil
}

func (f *fakeListenerRepo) ByFilter(ctx context.Context, filter models.ListenerFilter, orderBy string, limit, offset int) ([]*models.Listener, error) {
	var out []*models.Listener
	for _, l := range f.listeners {
		if filter.Status != nil && l.Status != *filter.Status {
			continue
		}
		if filter.Availability != nil && l.Availability != *filter.Availability {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (f *fakeListenerRepo) Count(ctx context.Context, filter models.ListenerFilter) (int64, error) {
	listeners, _ := f.ByFilter(ctx, filter, "", 0, 0)
	return int64(len(listeners)), nil
}

func (f *fakeListenerRepo) Exists(ctx context.Context, filter models.ListenerFilter) (bool, error) {
	n, _ := f.Count(ctx, filter)
	return n > 0, nil
}

func (f *fakeListenerRepo) ByUID(ctx context.Context, uid string) (*models.Listener, error) {
	return f.listeners[uid], nil
}

func (f *fakeListenerRepo) ByPhone(ctx context.Context, phone string) (*models.Listener, error) {
	for _, l := range f.listeners {
		if l.Phone == phone {
			return l, nil
		}
	}
	return nil, nil
}

func (f *fakeListenerRepo) CreateProfile(ctx context.Context, listener *models.Listener) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.listeners[listener.UID]; ok {
		return fmt.Errorf("create profile: %w", repository.ErrProfileExists)
	}
	f.listeners[listener.UID] = listener
	return nil
}

func (f *fakeListenerRepo) UpdateAvailability(ctx context.Context, uid, availability string) error {
	if l, ok := f.listeners[uid]; ok {
		l.Availability = availability
	}
	return nil
}

func (f *fakeListenerRepo) UpdateNotificationPreferences(ctx context.Context, uid string, notifyCalls, notifyMessages bool) error {
	if l, ok := f.listeners[uid]; ok {
		l.NotifyCalls = &notifyCalls
		l.NotifyMessages = &notifyMessages
	}
	return nil
}

func (f *fakeListenerRepo) UpdateOnboardingProfile(ctx context.Context, listener *models.Listener) error {
	f.listeners[listener.UID] = listener
	return nil
}

func (f *fakeListenerRepo) SetAdminFlag(ctx context.Context, uid string, isAdmin bool) error {
	if l, ok := f.listeners[uid]; ok {
		l.IsAdmin = utils.ToPtr(isAdmin)
	}
	return nil
}

func (f *fakeListenerRepo) SetStatus(ctx context.Context, uid, status string) error {
	if l, ok := f.listeners[uid]; ok {
		l.Status = status
	}
	return nil
}

func (f *fakeListenerRepo) AdvanceOnboardingStatus(ctx context.Context, uid, targetStatus string) (bool, error) {
	l, ok := f.listeners[uid]
	if !ok {
		return false, nil
	}
	if l.Status != models.ListenerStatusOnboardingRequired || !utils.IsTrue(l.OnboardingComplete) {
		return false, nil
	}
	l.Status = targetStatus
	return true, nil
}

func (f *fakeListenerRepo) ListAwaitingActivation(ctx context.Context, limit int) ([]*models.Listener, error) {
	var out []*models.Listener
	for _, l := range f.listeners {
		if l.Status == models.ListenerStatusOnboardingRequired && utils.IsTrue(l.OnboardingComplete) {
			out = append(out, l)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (f *fakeListenerRepo) IncrementCallTotals(ctx context.Context, uid string, amount, minutes float64) error {
	l, ok := f.listeners[uid]
	if !ok {
		return fmt.Errorf("listener %s not found", uid)
	}
	l.TotalEarnings = utils.RoundMoney(l.TotalEarnings + amount)
	l.TotalCalls++
	l.TotalMinutes += minutes
	return nil
}

func (f *fakeListenerRepo) IncrementMessageTotals(ctx context.Context, uid string, amount float64) error {
	l, ok := f.listeners[uid]
	if !ok {
		return fmt.Errorf("listener %s not found", uid)
	}
	l.TotalEarnings = utils.RoundMoney(l.TotalEarnings + amount)
	l.TotalMessages++
	return nil
}

func (f *fakeListenerRepo) SumTalkMinutes(ctx context.Context) (float64, error) {
	return f.sumMinutesVal, nil
}

type fakeEarningRepo struct {
	records map[string]*models.EarningRecord
}

func newFakeEarningRepo() *fakeEarningRepo {
	return &fakeEarningRepo{records: make(map[string]*models.EarningRecord)}
}

func (f *fakeEarningRepo) Save(ctx context.Context, entity *models.EarningRecord) error {
	f.records[entity.SourceID] = entity
	return nil
}

func (f *fakeEarningRepo) ByFilter(ctx context.Context, filter models.EarningRecordFilter, orderBy string, limit, offset int) ([]*models.EarningRecord, error) {
	var out []*models.EarningRecord
	for _, r := range f.records {
		if filter.ListenerUID != nil && r.ListenerUID != *filter.ListenerUID {
			continue
		}
		if filter.OccurredAfter != nil && r.OccurredAt.Before(*filter.OccurredAfter) {
			continue
		}
		if filter.OccurredBefore != nil && r.OccurredAt.After(*filter.OccurredBefore) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeEarningRepo) Count(ctx context.Context, filter models.EarningRecordFilter) (int64, error) {
	records, _ := f.ByFilter(ctx, filter, "", 0, 0)
	return int64(len(records)), nil
}

func (f *fakeEarningRepo) Exists(ctx context.Context, filter models.EarningRecordFilter) (bool, error) {
	n, _ := f.Count(ctx, filter)
	return n > 0, nil
}

func (f *fakeEarningRepo) BySourceID(ctx context.Context, sourceID string) (*models.EarningRecord, error) {
	return f.records[sourceID], nil
}

func (f *fakeEarningRepo) CreateIfAbsent(ctx context.Context, record *models.EarningRecord) (bool, error) {
	if _, ok := f.records[record.SourceID]; ok {
		return false, nil
	}
	f.records[record.SourceID] = record
	return true, nil
}

func (f *fakeEarningRepo) ListByListener(ctx context.Context, listenerUID string, limit, offset int) ([]*models.EarningRecord, error) {
	return f.ByFilter(ctx, models.EarningRecordFilter{ListenerUID: &listenerUID}, "occurred_at DESC", limit, offset)
}

func (f *fakeEarningRepo) TotalsBetween(ctx context.Context, from, to time.Time) (*models.EarningTotals, error) {
	totals := &models.EarningTotals{}
	for _, r := range f.records {
		totals.ListenerTotal = utils.RoundMoney(totals.ListenerTotal + r.Amount)
		totals.PlatformTotal = utils.RoundMoney(totals.PlatformTotal + r.PlatformAmount)
		totals.Records++
		switch r.SessionType {
		case models.SessionTypeCall:
			totals.CallRecords++
		case models.SessionTypeMessage:
			totals.ChatRecords++
		}
	}
	return totals, nil
}

type fakeCallRepo struct {
	sessions map[string]*models.CallSession
}

func newFakeCallRepo() *fakeCallRepo {
	return &fakeCallRepo{sessions: make(map[string]*models.CallSession)}
}

func (f *fakeCallRepo) add(c *models.CallSession) {
	f.sessions[c.ID] = c
}

func (f *fakeCallRepo) Save(ctx context.Context, entity *models.CallSession) error {
	f.sessions[entity.ID] = entity
	return nil
}

func (f *fakeCallRepo) ByFilter(ctx context.Context, filter models.CallSessionFilter, orderBy string, limit, offset int) ([]*models.CallSession, error) {
	var out []*models.CallSession
	for _, c := range f.sessions {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeCallRepo) Count(ctx context.Context, filter models.CallSessionFilter) (int64, error) {
	return int64(len(f.sessions)), nil
}

func (f *fakeCallRepo) Exists(ctx context.Context, filter models.CallSessionFilter) (bool, error) {
	return len(f.sessions) > 0, nil
}

func (f *fakeCallRepo) ByID(ctx context.Context, id string) (*models.CallSession, error) {
	return f.sessions[id], nil
}

func (f *fakeCallRepo) ListUnsettledCompleted(ctx context.Context, limit int) ([]*models.CallSession, error) {
	var out []*models.CallSession
	for _, c := range f.sessions {
		if c.Status == models.CallStatusCompleted && !utils.IsTrue(c.Settled) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCallRepo) MarkSettled(ctx context.Context, id string, durationSeconds int, earnings float64) error {
	c, ok := f.sessions[id]
	if !ok {
		return fmt.Errorf("call %s not found", id)
	}
	c.Settled = utils.ToPtr(true)
	c.DurationSeconds = durationSeconds
	c.Earnings = earnings
	return nil
}

type fakeMessageRepo struct {
	messages map[string]*models.ChatMessage
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{messages: make(map[string]*models.ChatMessage)}
}

func (f *fakeMessageRepo) add(m *models.ChatMessage) {
	f.messages[m.ID] = m
}

func (f *fakeMessageRepo) Save(ctx context.Context, entity *models.ChatMessage) error {
	f.messages[entity.ID] = entity
	return nil
}

func (f *fakeMessageRepo) ByFilter(ctx context.Context, filter models.ChatMessageFilter, orderBy string, limit, offset int) ([]*models.ChatMessage, error) {
	var out []*models.ChatMessage
	for _, m := range f.messages {
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeMessageRepo) Count(ctx context.Context, filter models.ChatMessageFilter) (int64, error) {
	return int64(len(f.messages)), nil
}

func (f *fakeMessageRepo) Exists(ctx context.Context, filter models.ChatMessageFilter) (bool, error) {
	return len(f.messages) > 0, nil
}

func (f *fakeMessageRepo) ByID(ctx context.Context, id string) (*models.ChatMessage, error) {
	return f.messages[id], nil
}

func (f *fakeMessageRepo) ListUnsettledFromUsers(ctx context.Context, limit int) ([]*models.ChatMessage, error) {
	var out []*models.ChatMessage
	for _, m := range f.messages {
		if m.FromUser() && !utils.IsTrue(m.Settled) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMessageRepo) MarkSettled(ctx context.Context, id string) error {
	m, ok := f.messages[id]
	if !ok {
		return fmt.Errorf("message %s not found", id)
	}
	m.Settled = utils.ToPtr(true)
	return nil
}

// fakeCaptchaService accepts or rejects every verification
type fakeCaptchaService struct {
	ok bool
}

func (f *fakeCaptchaService) GenerateRotate(ctx context.Context) (*services.RotateChallenge, error) {
	return &services.RotateChallenge{ID: "test-challenge"}, nil
}

func (f *fakeCaptchaService) VerifyRotate(ctx context.Context, challengeID string, userAngle float64) bool {
	return f.ok
}

func pendingApplication(phone string) *models.Application {
	return &models.Application{
		UUID:        uuid.New(),
		FullName:    "Priya Sharma",
		DisplayName: "Priya",
		Phone:       phone,
		Profession:  "Counselor",
		Languages:   []string{"hindi", "english"},
		UPIID:       utils.ToPtr("priya@upi"),
		Status:      models.ApplicationStatusPending,
	}
}

func containsAction(actions []string, action string) bool {
	for _, a := range actions {
		if strings.EqualFold(a, action) {
			return true
		}
	}
	return false
}
