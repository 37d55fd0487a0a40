// Package testing provides test utilities and database setup for testing the listener platform
package testing

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/saathi-care/listener-platform/models"
	"github.com/saathi-care/listener-platform/utils"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

func randomPhone() string {
	return fmt.Sprintf("+919%s", fmt.Sprintf("%09d", rand.Intn(900000000)+100000000))
}

// CreateTestApplication creates a pending application
func (tf *TestFixtures) CreateTestApplication() (*models.Application, error) {
	application := &models.Application{
		UUID:        uuid.New(),
		FullName:    "Asha Sharma",
		DisplayName: "Asha",
		Phone:       randomPhone(),
		Profession:  "Counselor",
		Languages:   []string{"hi", "en"},
		UPIID:       utils.ToPtr(fmt.Sprintf("asha%d@upi", rand.Intn(100000))),
		Status:      models.ApplicationStatusPending,
	}

	if err := tf.DB.DB.Create(application).Error; err != nil {
		return nil, fmt.Errorf("failed to create test application: %w", err)
	}

	return application, nil
}

// CreateTestListener creates a listener profile in the given status
func (tf *TestFixtures) CreateTestListener(status string) (*models.Listener, error) {
	listener := &models.Listener{
		UID:                fmt.Sprintf("uid-%s", uuid.NewString()),
		DisplayName:        "Asha",
		RealName:           "Asha Sharma",
		Phone:              randomPhone(),
		Status:             status,
		Availability:       models.AvailabilityOffline,
		IsAdmin:            utils.ToPtr(false),
		OnboardingComplete: utils.ToPtr(status != models.ListenerStatusOnboardingRequired),
		Profession:         "Counselor",
		Languages:          []string{"hi", "en"},
	}

	if err := tf.DB.DB.Create(listener).Error; err != nil {
		return nil, fmt.Errorf("failed to create test listener: %w", err)
	}

	return listener, nil
}

// CreateTestCallSession creates a completed, unsettled call session
func (tf *TestFixtures) CreateTestCallSession(listenerUID string, durationSeconds int) (*models.CallSession, error) {
	endedAt := utils.UTCNow()
	startedAt := endedAt.Add(-time.Duration(durationSeconds) * time.Second)

	session := &models.CallSession{
		ID:          fmt.Sprintf("call-%s", uuid.NewString()),
		ListenerUID: listenerUID,
		UserID:      fmt.Sprintf("user-%d", rand.Intn(100000)),
		UserName:    "Test User",
		Status:      models.CallStatusCompleted,
		StartedAt:   &startedAt,
		EndedAt:     &endedAt,
		Settled:     utils.ToPtr(false),
	}

	if err := tf.DB.DB.Create(session).Error; err != nil {
		return nil, fmt.Errorf("failed to create test call session: %w", err)
	}

	return session, nil
}

// CreateTestChatMessage creates an unsettled user-authored chat message
func (tf *TestFixtures) CreateTestChatMessage(listenerUID string) (*models.ChatMessage, error) {
	userID := fmt.Sprintf("user-%d", rand.Intn(100000))
	message := &models.ChatMessage{
		ID:          fmt.Sprintf("msg-%s", uuid.NewString()),
		ChatID:      fmt.Sprintf("chat-%s", uuid.NewString()),
		ListenerUID: listenerUID,
		UserID:      userID,
		UserName:    "Test User",
		SenderID:    userID,
		Body:        "hello",
		Settled:     utils.ToPtr(false),
	}

	if err := tf.DB.DB.Create(message).Error; err != nil {
		return nil, fmt.Errorf("failed to create test chat message: %w", err)
	}

	return message, nil
}

// CreateTestAdmin creates an active admin account with the given credentials
func (tf *TestFixtures) CreateTestAdmin(username, password string) (*models.Admin, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &models.Admin{
		UUID:         uuid.New(),
		Username:     username,
		PasswordHash: string(hash),
		IsActive:     utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(admin).Error; err != nil {
		return nil, fmt.Errorf("failed to create test admin: %w", err)
	}

	return admin, nil
}

// CreateTestAuditLog creates a test audit log entry
func (tf *TestFixtures) CreateTestAuditLog(listenerUID *string, action string, success bool) (*models.AuditLog, error) {
	description := fmt.Sprintf("Test %s action", action)
	ipAddress := "127.0.0.1"
	userAgent := "Test User Agent"

	audit := &models.AuditLog{
		ListenerUID: listenerUID,
		Action:      action,
		Description: &description,
		Success:     &success,
		IPAddress:   &ipAddress,
		UserAgent:   &userAgent,
	}

	if !success {
		errorMessage := "Test failed action"
		audit.ErrorMessage = &errorMessage
	}

	if err := tf.DB.DB.Create(audit).Error; err != nil {
		return nil, fmt.Errorf("failed to create test audit log: %w", err)
	}

	return audit, nil
}
