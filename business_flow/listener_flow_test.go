package businessflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saathi-care/listener-platform/app/dto"
	"github.com/saathi-care/listener-platform/app/services"
	"github.com/saathi-care/listener-platform/config"
	"github.com/saathi-care/listener-platform/models"
	"github.com/saathi-care/listener-platform/utils"
)

type listenerFlowFixture struct {
	flow         ListenerFlow
	listenerRepo *fakeListenerRepo
	auditRepo    *fakeAuditRepo
	identitySvc  *services.MockIdentityService
}

func newListenerFlowFixture() *listenerFlowFixture {
	f := &listenerFlowFixture{
		listenerRepo: newFakeListenerRepo(),
		auditRepo:    &fakeAuditRepo{},
		identitySvc:  services.NewMockIdentityService(),
	}
	f.flow = NewListenerFlow(f.listenerRepo, f.auditRepo, f.identitySvc, nil, config.CacheConfig{})
	return f
}

func (f *listenerFlowFixture) addListener(uid, status string) *models.Listener {
	l := &models.Listener{
		UID:                uid,
		DisplayName:        "Priya",
		Phone:              "+919876543210",
		Status:             status,
		Availability:       models.AvailabilityOffline,
		OnboardingComplete: utils.ToPtr(status == models.ListenerStatusActive),
	}
	f.listenerRepo.add(l)
	return l
}

func TestGetProfile(t *testing.T) {
	f := newListenerFlowFixture()
	f.addListener("uid-1", models.ListenerStatusActive)

	profile, err := f.flow.GetProfile(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", profile.UID)
	assert.Equal(t, "Priya", profile.DisplayName)

	_, err = f.flow.GetProfile(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, IsListenerNotFound(err))
}

func TestUpdateAvailability(t *testing.T) {
	f := newListenerFlowFixture()
	f.addListener("uid-1", models.ListenerStatusActive)

	resp, err := f.flow.UpdateAvailability(context.Background(), &dto.UpdateAvailabilityRequest{
		ListenerUID:  "uid-1",
		Availability: models.AvailabilityAvailable,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.AvailabilityAvailable, resp.Availability)

	listener, _ := f.listenerRepo.ByUID(context.Background(), "uid-1")
	assert.Equal(t, models.AvailabilityAvailable, listener.Availability)
	assert.True(t, containsAction(f.auditRepo.actions(), models.AuditActionAvailabilityChanged))
}

func TestUpdateAvailabilityInvalidState(t *testing.T) {
	f := newListenerFlowFixture()
	f.addListener("uid-1", models.ListenerStatusActive)

	_, err := f.flow.UpdateAvailability(context.Background(), &dto.UpdateAvailabilityRequest{
		ListenerUID:  "uid-1",
		Availability: "Sleeping",
	}, nil)
	require.Error(t, err)
	assert.True(t, IsInvalidAvailability(err))
}

func TestUpdateAvailabilitySuspendedListener(t *testing.T) {
	f := newListenerFlowFixture()
	f.addListener("uid-1", models.ListenerStatusSuspended)

	_, err := f.flow.UpdateAvailability(context.Background(), &dto.UpdateAvailabilityRequest{
		ListenerUID:  "uid-1",
		Availability: models.AvailabilityAvailable,
	}, nil)
	require.Error(t, err)
	assert.True(t, IsListenerSuspended(err))
}

func TestUpdateNotificationPreferences(t *testing.T) {
	f := newListenerFlowFixture()
	f.addListener("uid-1", models.ListenerStatusActive)

	resp, err := f.flow.UpdateNotificationPreferences(context.Background(), &dto.UpdateNotificationPreferencesRequest{
		ListenerUID:    "uid-1",
		NotifyCalls:    utils.ToPtr(true),
		NotifyMessages: utils.ToPtr(false),
	}, nil)
	require.NoError(t, err)
	assert.True(t, resp.NotifyCalls)
	assert.False(t, resp.NotifyMessages)

	listener, _ := f.listenerRepo.ByUID(context.Background(), "uid-1")
	assert.True(t, utils.IsTrue(listener.NotifyCalls))
	assert.False(t, utils.IsTrue(listener.NotifyMessages))
	assert.True(t, containsAction(f.auditRepo.actions(), models.AuditActionPreferencesUpdated))
}

func TestUpdateNotificationPreferencesSuspendedListener(t *testing.T) {
	f := newListenerFlowFixture()
	f.addListener("uid-1", models.ListenerStatusSuspended)

	_, err := f.flow.UpdateNotificationPreferences(context.Background(), &dto.UpdateNotificationPreferencesRequest{
		ListenerUID:    "uid-1",
		NotifyCalls:    utils.ToPtr(false),
		NotifyMessages: utils.ToPtr(false),
	}, nil)
	require.Error(t, err)
	assert.True(t, IsListenerSuspended(err))
}

func TestSetAdminRole(t *testing.T) {
	f := newListenerFlowFixture()
	f.addListener("uid-1", models.ListenerStatusActive)

	resp, err := f.flow.SetAdminRole(context.Background(), &dto.SetAdminRoleRequest{
		ListenerUID: "uid-1",
		IsAdmin:     true,
	}, nil)
	require.NoError(t, err)
	assert.True(t, resp.IsAdmin)

	listener, _ := f.listenerRepo.ByUID(context.Background(), "uid-1")
	assert.True(t, utils.IsTrue(listener.IsAdmin))
	assert.True(t, f.identitySvc.Claims["uid-1"])
}

func TestSuspendListenerForcesOffline(t *testing.T) {
	f := newListenerFlowFixture()
	l := f.addListener("uid-1", models.ListenerStatusActive)
	l.Availability = models.AvailabilityAvailable

	resp, err := f.flow.SetListenerStatus(context.Background(), &dto.SetListenerStatusRequest{
		ListenerUID: "uid-1",
		Status:      models.ListenerStatusSuspended,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.ListenerStatusSuspended, resp.Status)

	listener, _ := f.listenerRepo.ByUID(context.Background(), "uid-1")
	assert.Equal(t, models.ListenerStatusSuspended, listener.Status)
	assert.Equal(t, models.AvailabilityOffline, listener.Availability)
}

func TestListListenersFilters(t *testing.T) {
	f := newListenerFlowFixture()
	f.addListener("uid-1", models.ListenerStatusActive)
	f.addListener("uid-2", models.ListenerStatusSuspended)

	resp, err := f.flow.ListListeners(context.Background(), &dto.ListListenersRequest{
		Status: models.ListenerStatusActive,
	})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "uid-1", resp.Items[0].UID)
	assert.Equal(t, int64(1), resp.Total)
}
