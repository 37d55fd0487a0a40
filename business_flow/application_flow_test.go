package businessflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saathi-care/listener-platform/app/dto"
	"github.com/saathi-care/listener-platform/models"
	"github.com/saathi-care/listener-platform/utils"
)

type applicationFixture struct {
	flow            ApplicationFlow
	applicationRepo *fakeApplicationRepo
	listenerRepo    *fakeListenerRepo
	auditRepo       *fakeAuditRepo
	captcha         *fakeCaptchaService
}

func newApplicationFixture() *applicationFixture {
	f := &applicationFixture{
		applicationRepo: &fakeApplicationRepo{},
		listenerRepo:    newFakeListenerRepo(),
		auditRepo:       &fakeAuditRepo{},
		captcha:         &fakeCaptchaService{ok: true},
	}
	f.flow = NewApplicationFlow(f.applicationRepo, f.listenerRepo, f.auditRepo, f.captcha)
	return f
}

func submitApplicationRequest() *dto.SubmitApplicationRequest {
	return &dto.SubmitApplicationRequest{
		FullName:     "Priya Sharma",
		DisplayName:  "Priya",
		Phone:        "9876543210",
		Profession:   "Counselor",
		Languages:    []string{"hindi", "english"},
		UPIID:        utils.ToPtr("priya@upi"),
		ChallengeID:  "test-challenge",
		CaptchaAngle: 127,
	}
}

func TestSubmitApplication(t *testing.T) {
	f := newApplicationFixture()

	resp, err := f.flow.SubmitApplication(context.Background(), submitApplicationRequest(), nil)
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.NotEmpty(t, resp.ApplicationID)
	assert.Equal(t, models.ApplicationStatusPending, resp.Status)

	require.Len(t, f.applicationRepo.apps, 1)
	stored := f.applicationRepo.apps[0]
	assert.Equal(t, "+919876543210", stored.Phone)
	assert.Equal(t, models.ApplicationStatusPending, stored.Status)

	assert.True(t, containsAction(f.auditRepo.actions(), models.AuditActionApplicationSubmitted))
}

func TestSubmitApplicationCaptchaRejected(t *testing.T) {
	f := newApplicationFixture()
	f.captcha.ok = false

	_, err := f.flow.SubmitApplication(context.Background(), submitApplicationRequest(), nil)
	require.Error(t, err)
	assert.True(t, IsInvalidCaptcha(err))
	assert.Empty(t, f.applicationRepo.apps)
}

func TestSubmitApplicationInvalidPhone(t *testing.T) {
	f := newApplicationFixture()
	req := submitApplicationRequest()
	req.Phone = "12345"

	_, err := f.flow.SubmitApplication(context.Background(), req, nil)
	require.Error(t, err)
	assert.True(t, IsPhoneInvalid(err))
}

func TestSubmitApplicationMissingPayoutDetails(t *testing.T) {
	f := newApplicationFixture()
	req := submitApplicationRequest()
	req.UPIID = nil

	_, err := f.flow.SubmitApplication(context.Background(), req, nil)
	require.Error(t, err)
	assert.True(t, IsPayoutDetailsMissing(err))
}

func TestSubmitApplicationPartialBankDetailsRejected(t *testing.T) {
	f := newApplicationFixture()
	req := submitApplicationRequest()
	req.UPIID = nil
	req.BankAccount = utils.ToPtr("123456789012")
	req.IFSC = utils.ToPtr("HDFC0001234")
	// Bank name missing, the triple is incomplete.

	_, err := f.flow.SubmitApplication(context.Background(), req, nil)
	require.Error(t, err)
	assert.True(t, IsPayoutDetailsMissing(err))
}

func TestSubmitApplicationFullBankDetailsAccepted(t *testing.T) {
	f := newApplicationFixture()
	req := submitApplicationRequest()
	req.UPIID = nil
	req.BankAccount = utils.ToPtr("123456789012")
	req.IFSC = utils.ToPtr("HDFC0001234")
	req.BankName = utils.ToPtr("HDFC Bank")

	_, err := f.flow.SubmitApplication(context.Background(), req, nil)
	require.NoError(t, err)
}

func TestSubmitApplicationDuplicateOpenApplication(t *testing.T) {
	f := newApplicationFixture()

	_, err := f.flow.SubmitApplication(context.Background(), submitApplicationRequest(), nil)
	require.NoError(t, err)

	_, err = f.flow.SubmitApplication(context.Background(), submitApplicationRequest(), nil)
	require.Error(t, err)
	assert.True(t, IsApplicationAlreadyExists(err))
}

func TestSubmitApplicationAfterRejectionAllowed(t *testing.T) {
	f := newApplicationFixture()
	rejected := pendingApplication("+919876543210")
	rejected.Status = models.ApplicationStatusRejected
	_ = f.applicationRepo.Save(context.Background(), rejected)

	_, err := f.flow.SubmitApplication(context.Background(), submitApplicationRequest(), nil)
	require.NoError(t, err)
	assert.Len(t, f.applicationRepo.apps, 2)
}

func TestSubmitApplicationExistingListenerPhone(t *testing.T) {
	f := newApplicationFixture()
	f.listenerRepo.add(&models.Listener{UID: "uid-1", Phone: "+919876543210"})

	_, err := f.flow.SubmitApplication(context.Background(), submitApplicationRequest(), nil)
	require.Error(t, err)
	assert.True(t, IsListenerExists(err))
}
