package businessflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saathi-care/listener-platform/app/dto"
	"github.com/saathi-care/listener-platform/app/services"
	"github.com/saathi-care/listener-platform/models"
	"github.com/saathi-care/listener-platform/utils"
)

type provisioningFixture struct {
	flow            ProvisioningFlow
	applicationRepo *fakeApplicationRepo
	listenerRepo    *fakeListenerRepo
	auditRepo       *fakeAuditRepo
	identitySvc     *services.MockIdentityService
	notificationSvc *services.MockNotificationService
	tx              *fakeTxManager
}

func newProvisioningFixture() *provisioningFixture {
	f := &provisioningFixture{
		applicationRepo: &fakeApplicationRepo{},
		listenerRepo:    newFakeListenerRepo(),
		auditRepo:       &fakeAuditRepo{},
		identitySvc:     services.NewMockIdentityService(),
		notificationSvc: services.NewMockNotificationService(),
		tx:              &fakeTxManager{},
	}
	f.flow = NewProvisioningFlow(f.applicationRepo, f.listenerRepo, f.auditRepo, f.identitySvc, f.notificationSvc, f.tx)
	return f
}

func (f *provisioningFixture) seedApplication(phone string) *models.Application {
	app := pendingApplication(phone)
	_ = f.applicationRepo.Save(context.Background(), app)
	return app
}

func TestApproveApplicationCreatesIdentityAndProfile(t *testing.T) {
	f := newProvisioningFixture()
	app := f.seedApplication("+919876543210")

	resp, err := f.flow.ApproveApplication(context.Background(), &dto.ApproveApplicationRequest{
		ApplicationUUID: app.UUID.String(),
	}, nil)
	require.NoError(t, err)
	require.NotNil(t, resp)
	require.NotEmpty(t, resp.ListenerUID)
	assert.Equal(t, models.ListenerStatusOnboardingRequired, resp.Status)

	// A fresh identity account was provisioned and kept.
	assert.Len(t, f.identitySvc.Created, 1)
	assert.Empty(t, f.identitySvc.Deleted)

	listener, _ := f.listenerRepo.ByUID(context.Background(), resp.ListenerUID)
	require.NotNil(t, listener)
	assert.Equal(t, app.Phone, listener.Phone)
	assert.Equal(t, app.FullName, listener.RealName)
	assert.Equal(t, models.AvailabilityOffline, listener.Availability)
	assert.False(t, utils.IsTrue(listener.OnboardingComplete))

	assert.Equal(t, models.ApplicationStatusApproved, app.Status)
	require.NotNil(t, app.ListenerUID)
	assert.Equal(t, resp.ListenerUID, *app.ListenerUID)
}

func TestApproveApplicationReusesExistingIdentity(t *testing.T) {
	f := newProvisioningFixture()
	app := f.seedApplication("+919876543210")
	f.identitySvc.Register(&services.IdentityAccount{
		UID:         "acc_existing",
		Phone:       app.Phone,
		DisplayName: "Priya",
	})

	resp, err := f.flow.ApproveApplication(context.Background(), &dto.ApproveApplicationRequest{
		ApplicationUUID: app.UUID.String(),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "acc_existing", resp.ListenerUID)
	assert.Empty(t, f.identitySvc.Created)
}

func TestApproveApplicationCompensatesCreatedIdentity(t *testing.T) {
	f := newProvisioningFixture()
	app := f.seedApplication("+919876543210")
	f.tx.failWith = errors.New("deadlock detected")

	_, err := f.flow.ApproveApplication(context.Background(), &dto.ApproveApplicationRequest{
		ApplicationUUID: app.UUID.String(),
	}, nil)
	require.Error(t, err)

	// The identity created for this approval was rolled back.
	require.Len(t, f.identitySvc.Created, 1)
	require.Len(t, f.identitySvc.Deleted, 1)
	assert.Equal(t, f.identitySvc.Created[0], f.identitySvc.Deleted[0])
	assert.True(t, containsAction(f.auditRepo.actions(), models.AuditActionIdentityRolledBack))
	assert.True(t, containsAction(f.auditRepo.actions(), models.AuditActionApprovalFailed))
}

func TestApproveApplicationNeverDeletesReusedIdentity(t *testing.T) {
	f := newProvisioningFixture()
	app := f.seedApplication("+919876543210")
	f.identitySvc.Register(&services.IdentityAccount{UID: "acc_existing", Phone: app.Phone})
	f.tx.failWith = errors.New("deadlock detected")

	_, err := f.flow.ApproveApplication(context.Background(), &dto.ApproveApplicationRequest{
		ApplicationUUID: app.UUID.String(),
	}, nil)
	require.Error(t, err)

	// Pre-existing accounts belong to the applicant and stay.
	assert.Empty(t, f.identitySvc.Deleted)
}

func TestApproveApplicationExistingProfile(t *testing.T) {
	f := newProvisioningFixture()
	app := f.seedApplication("+919876543210")
	f.identitySvc.Register(&services.IdentityAccount{UID: "acc_existing", Phone: app.Phone})
	f.listenerRepo.add(&models.Listener{UID: "acc_existing", Phone: app.Phone})

	_, err := f.flow.ApproveApplication(context.Background(), &dto.ApproveApplicationRequest{
		ApplicationUUID: app.UUID.String(),
	}, nil)
	require.Error(t, err)
	assert.True(t, IsListenerExists(err))
}

func TestApproveApplicationLosesRace(t *testing.T) {
	f := newProvisioningFixture()
	app := f.seedApplication("+919876543210")
	f.applicationRepo.staleFlip = true

	_, err := f.flow.ApproveApplication(context.Background(), &dto.ApproveApplicationRequest{
		ApplicationUUID: app.UUID.String(),
	}, nil)
	require.Error(t, err)
	assert.True(t, IsApplicationNotPending(err))

	// The identity created before the lost race was compensated.
	assert.Equal(t, f.identitySvc.Created, f.identitySvc.Deleted)
}

func TestApproveApplicationAlreadyReviewed(t *testing.T) {
	f := newProvisioningFixture()
	app := f.seedApplication("+919876543210")
	app.Status = models.ApplicationStatusApproved

	_, err := f.flow.ApproveApplication(context.Background(), &dto.ApproveApplicationRequest{
		ApplicationUUID: app.UUID.String(),
	}, nil)
	require.Error(t, err)
	assert.True(t, IsApplicationNotPending(err))
	assert.Empty(t, f.identitySvc.Created)
}

func TestApproveApplicationNotFound(t *testing.T) {
	f := newProvisioningFixture()

	_, err := f.flow.ApproveApplication(context.Background(), &dto.ApproveApplicationRequest{
		ApplicationUUID: "f47ac10b-58cc-4372-a567-0e02b2c3d479",
	}, nil)
	require.Error(t, err)
	assert.True(t, IsApplicationNotFound(err))
}

func TestApproveApplicationInvalidUUID(t *testing.T) {
	f := newProvisioningFixture()

	_, err := f.flow.ApproveApplication(context.Background(), &dto.ApproveApplicationRequest{
		ApplicationUUID: "not-a-uuid",
	}, nil)
	require.Error(t, err)

	var bizErr *BusinessError
	require.ErrorAs(t, err, &bizErr)
	assert.Equal(t, CodeInvalidArgument, bizErr.Code)
}

func TestApproveApplicationIdentityGatewayDown(t *testing.T) {
	f := newProvisioningFixture()
	app := f.seedApplication("+919876543210")
	f.identitySvc.FailNext = services.ErrIdentityGateway

	_, err := f.flow.ApproveApplication(context.Background(), &dto.ApproveApplicationRequest{
		ApplicationUUID: app.UUID.String(),
	}, nil)
	require.Error(t, err)
	assert.True(t, IsIdentityUnavailable(err))

	// Nothing was provisioned, the application stays pending.
	assert.Equal(t, models.ApplicationStatusPending, app.Status)
}

func TestRejectApplication(t *testing.T) {
	f := newProvisioningFixture()
	app := f.seedApplication("+919876543210")

	resp, err := f.flow.RejectApplication(context.Background(), &dto.RejectApplicationRequest{
		ApplicationUUID: app.UUID.String(),
		Reason:          "Incomplete details",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusRejected, resp.Status)

	assert.Equal(t, models.ApplicationStatusRejected, app.Status)
	require.NotNil(t, app.RejectionReason)
	assert.Equal(t, "Incomplete details", *app.RejectionReason)
}

func TestRejectApplicationDefaultReason(t *testing.T) {
	f := newProvisioningFixture()
	app := f.seedApplication("+919876543210")

	_, err := f.flow.RejectApplication(context.Background(), &dto.RejectApplicationRequest{
		ApplicationUUID: app.UUID.String(),
	}, nil)
	require.NoError(t, err)
	require.NotNil(t, app.RejectionReason)
	assert.Equal(t, utils.DefaultRejectionReason, *app.RejectionReason)
}

func TestRejectApplicationAlreadyReviewed(t *testing.T) {
	f := newProvisioningFixture()
	app := f.seedApplication("+919876543210")
	app.Status = models.ApplicationStatusRejected

	_, err := f.flow.RejectApplication(context.Background(), &dto.RejectApplicationRequest{
		ApplicationUUID: app.UUID.String(),
	}, nil)
	require.Error(t, err)
	assert.True(t, IsApplicationNotPending(err))
}

func TestListApplicationsFiltersByStatus(t *testing.T) {
	f := newProvisioningFixture()
	f.seedApplication("+919876543210")
	rejected := f.seedApplication("+919876543211")
	rejected.Status = models.ApplicationStatusRejected

	resp, err := f.flow.ListApplications(context.Background(), &dto.ListApplicationsRequest{
		Status: models.ApplicationStatusPending,
	})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, models.ApplicationStatusPending, resp.Items[0].Status)
	assert.Equal(t, int64(1), resp.Total)
}
