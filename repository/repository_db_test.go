package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saathi-care/listener-platform/models"
	platformtesting "github.com/saathi-care/listener-platform/testing"
	"github.com/saathi-care/listener-platform/utils"
)

// setupDB provisions a throwaway database, skipping the test when no
// PostgreSQL server is reachable.
func setupDB(t *testing.T) (*platformtesting.TestDB, *platformtesting.TestFixtures) {
	t.Helper()
	tdb, err := platformtesting.SetupTestDB()
	if err != nil {
		t.Skipf("postgres not reachable: %v", err)
	}
	t.Cleanup(func() {
		if err := tdb.TeardownTestDB(); err != nil {
			t.Logf("teardown: %v", err)
		}
	})
	return tdb, platformtesting.NewTestFixtures(tdb)
}

func TestCreateProfileConflict(t *testing.T) {
	tdb, fixtures := setupDB(t)
	ctx := platformtesting.CreateTestContext()
	repo := NewListenerRepository(tdb.DB)

	existing, err := fixtures.CreateTestListener(models.ListenerStatusActive)
	require.NoError(t, err)

	dup := &models.Listener{
		UID:         existing.UID,
		DisplayName: "Second",
		RealName:    "Second Listener",
		Phone:       "+919000000001",
		Status:      models.ListenerStatusOnboardingRequired,
	}
	err = repo.CreateProfile(ctx, dup)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProfileExists))

	fresh := &models.Listener{
		UID:         "uid-fresh",
		DisplayName: "Fresh",
		RealName:    "Fresh Listener",
		Phone:       "+919000000002",
		Status:      models.ListenerStatusOnboardingRequired,
	}
	require.NoError(t, repo.CreateProfile(ctx, fresh))

	loaded, err := repo.ByUID(ctx, "uid-fresh")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "Fresh", loaded.DisplayName)
}

func TestMarkApprovedIsRaceSafe(t *testing.T) {
	tdb, fixtures := setupDB(t)
	ctx := platformtesting.CreateTestContext()
	repo := NewApplicationRepository(tdb.DB)

	app, err := fixtures.CreateTestApplication()
	require.NoError(t, err)

	flipped, err := repo.MarkApproved(ctx, app.ID, "uid-approved")
	require.NoError(t, err)
	assert.True(t, flipped)

	// The status guard makes a replay a no-op.
	flipped, err = repo.MarkApproved(ctx, app.ID, "uid-other")
	require.NoError(t, err)
	assert.False(t, flipped)

	rejected, err := repo.MarkRejected(ctx, app.ID, "too late")
	require.NoError(t, err)
	assert.False(t, rejected)

	loaded, err := repo.ByID(ctx, app.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, models.ApplicationStatusApproved, loaded.Status)
	require.NotNil(t, loaded.ListenerUID)
	assert.Equal(t, "uid-approved", *loaded.ListenerUID)
}

func TestCreateIfAbsentIsIdempotent(t *testing.T) {
	tdb, _ := setupDB(t)
	ctx := platformtesting.CreateTestContext()
	repo := NewEarningRepository(tdb.DB)

	occurredAt := utils.UTCNow().Truncate(time.Second)
	first := &models.EarningRecord{
		SourceID:         "call-settle-1",
		SessionType:      models.SessionTypeCall,
		ListenerUID:      "uid-1",
		Amount:           12.50,
		PlatformAmount:   3.10,
		CounterpartyName: "Rahul",
		OccurredAt:       occurredAt,
	}
	inserted, err := repo.CreateIfAbsent(ctx, first)
	require.NoError(t, err)
	assert.True(t, inserted)

	replay := &models.EarningRecord{
		SourceID:       "call-settle-1",
		SessionType:    models.SessionTypeCall,
		ListenerUID:    "uid-1",
		Amount:         99.99,
		PlatformAmount: 99.99,
		OccurredAt:     occurredAt,
	}
	inserted, err = repo.CreateIfAbsent(ctx, replay)
	require.NoError(t, err)
	assert.False(t, inserted)

	stored, err := repo.BySourceID(ctx, "call-settle-1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.InDelta(t, 12.50, stored.Amount, 0.001)
}

func TestAdvanceOnboardingStatusGuard(t *testing.T) {
	tdb, fixtures := setupDB(t)
	ctx := platformtesting.CreateTestContext()
	repo := NewListenerRepository(tdb.DB)

	listener, err := fixtures.CreateTestListener(models.ListenerStatusOnboardingRequired)
	require.NoError(t, err)

	// Incomplete onboarding never advances.
	advanced, err := repo.AdvanceOnboardingStatus(ctx, listener.UID, models.ListenerStatusActive)
	require.NoError(t, err)
	assert.False(t, advanced)

	require.NoError(t, tdb.DB.Model(&models.Listener{}).
		Where("uid = ?", listener.UID).
		Update("onboarding_complete", true).Error)

	advanced, err = repo.AdvanceOnboardingStatus(ctx, listener.UID, models.ListenerStatusActive)
	require.NoError(t, err)
	assert.True(t, advanced)

	advanced, err = repo.AdvanceOnboardingStatus(ctx, listener.UID, models.ListenerStatusActive)
	require.NoError(t, err)
	assert.False(t, advanced)
}

func TestTotalsBetweenWindow(t *testing.T) {
	tdb, _ := setupDB(t)
	ctx := platformtesting.CreateTestContext()
	repo := NewEarningRepository(tdb.DB)

	inWindow := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	outOfWindow := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	records := []*models.EarningRecord{
		{SourceID: "call-a", SessionType: models.SessionTypeCall, ListenerUID: "uid-1", Amount: 10.00, PlatformAmount: 2.50, OccurredAt: inWindow},
		{SourceID: "msg-a", SessionType: models.SessionTypeMessage, ListenerUID: "uid-1", Amount: 2.15, PlatformAmount: 0.54, OccurredAt: inWindow},
		{SourceID: "call-b", SessionType: models.SessionTypeCall, ListenerUID: "uid-2", Amount: 50.00, PlatformAmount: 12.50, OccurredAt: outOfWindow},
	}
	for _, rec := range records {
		inserted, err := repo.CreateIfAbsent(ctx, rec)
		require.NoError(t, err)
		require.True(t, inserted)
	}

	totals, err := repo.TotalsBetween(ctx,
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.InDelta(t, 12.15, totals.ListenerTotal, 0.001)
	assert.InDelta(t, 3.04, totals.PlatformTotal, 0.001)
	assert.Equal(t, int64(2), totals.Records)
	assert.Equal(t, int64(1), totals.CallRecords)
	assert.Equal(t, int64(1), totals.ChatRecords)
}

func TestWithinTransactionRollsBackOnError(t *testing.T) {
	tdb, _ := setupDB(t)
	ctx := platformtesting.CreateTestContext()
	listenerRepo := NewListenerRepository(tdb.DB)
	tx := NewTxManager(tdb.DB)

	boom := errors.New("boom")
	err := tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := listenerRepo.CreateProfile(txCtx, &models.Listener{
			UID:         "uid-tx",
			DisplayName: "Txn",
			RealName:    "Txn Listener",
			Phone:       "+919000000003",
			Status:      models.ListenerStatusOnboardingRequired,
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	loaded, err := listenerRepo.ByUID(ctx, "uid-tx")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}
