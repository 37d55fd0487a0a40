// Package services provides external service integrations and technical concerns like notifications and tokens
package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/saathi-care/listener-platform/utils"
)

// NotificationService handles sending notifications to applicants and listeners
type NotificationService interface {
	SendSMS(ctx context.Context, mobile, message string) error
}

// NotificationServiceImpl implements NotificationService
type NotificationServiceImpl struct {
	smsService SMSService
}

// NewNotificationService creates a new notification service
func NewNotificationService(smsService SMSService) NotificationService {
	return &NotificationServiceImpl{
		smsService: smsService,
	}
}

// SendSMS sends an SMS message to the specified mobile number
func (s *NotificationServiceImpl) SendSMS(ctx context.Context, mobile, message string) error {
	if s.smsService == nil {
		return fmt.Errorf("SMS service not configured")
	}

	// Validate mobile format (+91XXXXXXXXXX)
	if len(mobile) != 13 || !strings.HasPrefix(mobile, utils.CountryCodePrefix) {
		return fmt.Errorf("invalid mobile number format: %s", utils.MaskPhone(mobile))
	}

	return s.smsService.SendSMS(ctx, mobile, message)
}

// MockNotificationService records notifications for tests
type MockNotificationService struct {
	Sent []MockSMSMessage
}

func NewMockNotificationService() *MockNotificationService {
	return &MockNotificationService{}
}

func (m *MockNotificationService) SendSMS(ctx context.Context, mobile, message string) error {
	log.Printf("SMS sent to %s: %s", utils.MaskPhone(mobile), message)
	m.Sent = append(m.Sent, MockSMSMessage{Recipient: mobile, Message: message, SentAt: utils.UTCNow()})
	return nil
}
