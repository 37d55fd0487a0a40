package businessflow

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/saathi-care/listener-platform/app/dto"
	"github.com/saathi-care/listener-platform/app/services"
	"github.com/saathi-care/listener-platform/models"
	"github.com/saathi-care/listener-platform/utils"
)

type fakeAdminRepo struct {
	admins []*models.Admin
	nextID uint
}

func (f *fakeAdminRepo) Save(ctx context.Context, entity *models.Admin) error {
	if entity.ID != 0 {
		for i, a := range f.admins {
			if a.ID == entity.ID {
				f.admins[i] = entity
				return nil
			}
		}
	}
	f.nextID++
	entity.ID = f.nextID
	if entity.UUID == uuid.Nil {
		entity.UUID = uuid.New()
	}
	f.admins = append(f.admins, entity)
	return nil
}

func (f *fakeAdminRepo) ByFilter(ctx context.Context, filter models.AdminFilter, orderBy string, limit, offset int) ([]*models.Admin, error) {
	return f.admins, nil
}

func (f *fakeAdminRepo) Count(ctx context.Context, filter models.AdminFilter) (int64, error) {
	return int64(len(f.admins)), nil
}

func (f *fakeAdminRepo) Exists(ctx context.Context, filter models.AdminFilter) (bool, error) {
	return len(f.admins) > 0, nil
}

func (f *fakeAdminRepo) ByID(ctx context.Context, id uint) (*models.Admin, error) {
	for _, a := range f.admins {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeAdminRepo) ByUUID(ctx context.Context, u string) (*models.Admin, error) {
	for _, a := range f.admins {
		if a.UUID.String() == u {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeAdminRepo) ByUsername(ctx context.Context, username string) (*models.Admin, error) {
	for _, a := range f.admins {
		if a.Username == username {
			return a, nil
		}
	}
	return nil, nil
}

type adminAuthFixture struct {
	flow      AdminAuthFlow
	adminRepo *fakeAdminRepo
	auditRepo *fakeAuditRepo
	captcha   *fakeCaptchaService
	tokenSvc  services.TokenService
}

func newAdminAuthFixture(t *testing.T) *adminAuthFixture {
	t.Helper()
	tokenSvc, err := services.NewTokenService(time.Hour, 24*time.Hour, "listener-platform-test", "listener-app", "test-secret-key-0123456789abcdef")
	require.NoError(t, err)

	f := &adminAuthFixture{
		adminRepo: &fakeAdminRepo{},
		auditRepo: &fakeAuditRepo{},
		captcha:   &fakeCaptchaService{ok: true},
		tokenSvc:  tokenSvc,
	}
	f.flow = NewAdminAuthFlow(f.adminRepo, f.auditRepo, tokenSvc, f.captcha)
	return f
}

func (f *adminAuthFixture) addAdmin(t *testing.T, username, password string, active bool) *models.Admin {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	admin := &models.Admin{
		Username:     username,
		PasswordHash: string(hash),
		IsActive:     utils.ToPtr(active),
		CreatedAt:    utils.UTCNow(),
	}
	require.NoError(t, f.adminRepo.Save(context.Background(), admin))
	return admin
}

func adminLoginRequest(username, password string) *dto.AdminCaptchaVerifyRequest {
	return &dto.AdminCaptchaVerifyRequest{
		ChallengeID: "test-challenge",
		Username:    username,
		Password:    password,
		UserAngle:   127,
	}
}

func TestAdminLogin(t *testing.T) {
	f := newAdminAuthFixture(t)
	admin := f.addAdmin(t, "ops", "correct horse battery", true)

	resp, err := f.flow.Verify(context.Background(), adminLoginRequest("ops", "correct horse battery"), nil)
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, admin.ID, resp.Admin.ID)
	assert.NotEmpty(t, resp.Session.AccessToken)
	assert.NotEmpty(t, resp.Session.RefreshToken)
	assert.Equal(t, "Bearer", resp.Session.TokenType)

	claims, err := f.tokenSvc.ValidateAdminToken(resp.Session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, claims.AdminID)
	assert.NotNil(t, admin.LastLoginAt)

	assert.True(t, containsAction(f.auditRepo.actions(), models.AuditActionAdminLoginSuccess))
}

func TestAdminLoginWrongPassword(t *testing.T) {
	f := newAdminAuthFixture(t)
	f.addAdmin(t, "ops", "correct horse battery", true)

	_, err := f.flow.Verify(context.Background(), adminLoginRequest("ops", "wrong"), nil)
	require.Error(t, err)
	assert.True(t, IsIncorrectPassword(err))
	assert.True(t, containsAction(f.auditRepo.actions(), models.AuditActionAdminLoginFailed))
}

func TestAdminLoginUnknownUsername(t *testing.T) {
	f := newAdminAuthFixture(t)

	_, err := f.flow.Verify(context.Background(), adminLoginRequest("nobody", "whatever1"), nil)
	require.Error(t, err)
	assert.True(t, IsAdminNotFound(err))
}

func TestAdminLoginInactiveAccount(t *testing.T) {
	f := newAdminAuthFixture(t)
	f.addAdmin(t, "ops", "correct horse battery", false)

	_, err := f.flow.Verify(context.Background(), adminLoginRequest("ops", "correct horse battery"), nil)
	require.Error(t, err)
	assert.True(t, IsAdminInactive(err))
}

func TestAdminLoginCaptchaRejected(t *testing.T) {
	f := newAdminAuthFixture(t)
	f.addAdmin(t, "ops", "correct horse battery", true)
	f.captcha.ok = false

	_, err := f.flow.Verify(context.Background(), adminLoginRequest("ops", "correct horse battery"), nil)
	require.Error(t, err)
	assert.True(t, IsInvalidCaptcha(err))
}

func TestAdminCaptchaInit(t *testing.T) {
	f := newAdminAuthFixture(t)

	resp, err := f.flow.InitCaptcha(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test-challenge", resp.ChallengeID)
}
