package businessflow

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/saathi-care/listener-platform/app/dto"
	"github.com/saathi-care/listener-platform/models"
	"github.com/saathi-care/listener-platform/utils"
)

type reportFixture struct {
	flow            AdminReportFlow
	applicationRepo *fakeApplicationRepo
	listenerRepo    *fakeListenerRepo
	earningRepo     *fakeEarningRepo
}

func newReportFixture() *reportFixture {
	f := &reportFixture{
		applicationRepo: &fakeApplicationRepo{},
		listenerRepo:    newFakeListenerRepo(),
		earningRepo:     newFakeEarningRepo(),
	}
	f.flow = NewAdminReportFlow(f.applicationRepo, f.listenerRepo, f.earningRepo)
	return f
}

func (f *reportFixture) addEarning(sourceID, sessionType, listenerUID string, amount, platform float64, occurredAt time.Time) {
	_ = f.earningRepo.Save(context.Background(), &models.EarningRecord{
		SourceID:         sourceID,
		SessionType:      sessionType,
		ListenerUID:      listenerUID,
		Amount:           amount,
		PlatformAmount:   platform,
		CounterpartyName: "Rahul",
		OccurredAt:       occurredAt,
	})
}

func TestDashboardStats(t *testing.T) {
	f := newReportFixture()
	_ = f.applicationRepo.Save(context.Background(), pendingApplication("+919876543210"))

	f.listenerRepo.add(&models.Listener{UID: "uid-1", Status: models.ListenerStatusActive, Availability: models.AvailabilityAvailable})
	f.listenerRepo.add(&models.Listener{UID: "uid-2", Status: models.ListenerStatusActive, Availability: models.AvailabilityOffline})
	f.listenerRepo.add(&models.Listener{UID: "uid-3", Status: models.ListenerStatusOnboardingRequired})
	f.listenerRepo.add(&models.Listener{UID: "uid-4", Status: models.ListenerStatusSuspended})
	f.listenerRepo.sumMinutesVal = 84.5

	now := utils.UTCNow()
	f.addEarning("call_1", models.SessionTypeCall, "uid-1", 30.00, 82.80, now)
	f.addEarning("msg_1", models.SessionTypeMessage, "uid-1", 0.20, 2.15, now)

	stats, err := f.flow.DashboardStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.PendingApplications)
	assert.Equal(t, int64(2), stats.ActiveListeners)
	assert.Equal(t, int64(1), stats.OnboardingListeners)
	assert.Equal(t, int64(1), stats.SuspendedListeners)
	assert.Equal(t, int64(1), stats.AvailableListeners)
	assert.Equal(t, 30.20, stats.TotalEarnings)
	assert.Equal(t, 84.95, stats.PlatformEarnings)
	assert.Equal(t, int64(1), stats.SettledCalls)
	assert.Equal(t, int64(1), stats.SettledMessages)
	assert.Equal(t, 84.5, stats.TotalTalkMinutes)
}

func TestExportEarningsXLSX(t *testing.T) {
	f := newReportFixture()
	occurred := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)
	f.addEarning("call_1", models.SessionTypeCall, "uid-1", 30.00, 82.80, occurred)
	f.addEarning("msg_1", models.SessionTypeMessage, "uid-1", 0.20, 2.15, occurred)
	// Outside the requested period.
	f.addEarning("call_2", models.SessionTypeCall, "uid-1", 10.00, 27.00, occurred.AddDate(0, 2, 0))

	filename, data, err := f.flow.ExportEarningsXLSX(context.Background(), &dto.ExportEarningsRequest{
		From: "2026-03-01",
		To:   "2026-03-31",
	})
	require.NoError(t, err)
	assert.Equal(t, "earnings_2026-03-01_2026-03-31.xlsx", filename)
	require.NotEmpty(t, data)

	xl, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = xl.Close() }()

	assert.ElementsMatch(t, []string{"calls", "messages"}, xl.GetSheetList())

	rows, err := xl.GetRows("calls")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "source_id", rows[0][0])
	assert.Equal(t, "call_1", rows[1][0])
	assert.Equal(t, "uid-1", rows[1][1])

	msgRows, err := xl.GetRows("messages")
	require.NoError(t, err)
	require.Len(t, msgRows, 2)
	assert.Equal(t, "msg_1", msgRows[1][0])
}

func TestExportEarningsXLSXInclusiveEndDate(t *testing.T) {
	f := newReportFixture()
	f.addEarning("call_1", models.SessionTypeCall, "uid-1", 30.00, 82.80, time.Date(2026, 3, 31, 23, 0, 0, 0, time.UTC))

	_, data, err := f.flow.ExportEarningsXLSX(context.Background(), &dto.ExportEarningsRequest{
		From: "2026-03-01",
		To:   "2026-03-31",
	})
	require.NoError(t, err)

	xl, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = xl.Close() }()

	rows, err := xl.GetRows("calls")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestExportEarningsXLSXRejectsBadRange(t *testing.T) {
	f := newReportFixture()

	_, _, err := f.flow.ExportEarningsXLSX(context.Background(), &dto.ExportEarningsRequest{
		From: "2026-03-31",
		To:   "2026-03-01",
	})
	require.Error(t, err)
	assert.True(t, IsStartDateAfterEndDate(err))

	_, _, err = f.flow.ExportEarningsXLSX(context.Background(), &dto.ExportEarningsRequest{
		From: "not-a-date",
		To:   "2026-03-01",
	})
	require.Error(t, err)
}
