// Package businessflow contains the business logic for the application.
package businessflow

import (
	"time"

	"github.com/saathi-care/listener-platform/app/dto"
	"github.com/saathi-care/listener-platform/models"
	"github.com/saathi-care/listener-platform/utils"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds all client-related information for audit logging and session tracking
type ClientMetadata struct {
	IPAddress  string            `json:"ip_address"`
	UserAgent  string            `json:"user_agent"`
	DeviceInfo map[string]string `json:"device_info,omitempty"`
	RequestID  string            `json:"request_id,omitempty"`
	SessionID  string            `json:"session_id,omitempty"`
	Additional map[string]string `json:"additional,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		DeviceInfo: make(map[string]string),
		Additional: make(map[string]string),
	}
}

// AddDeviceInfo adds device information to the metadata
func (cm *ClientMetadata) AddDeviceInfo(key, value string) {
	if cm.DeviceInfo == nil {
		cm.DeviceInfo = make(map[string]string)
	}
	cm.DeviceInfo[key] = value
}

// AddAdditional adds additional custom information to the metadata
func (cm *ClientMetadata) AddAdditional(key, value string) {
	if cm.Additional == nil {
		cm.Additional = make(map[string]string)
	}
	cm.Additional[key] = value
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// SetSessionID sets the session ID
func (cm *ClientMetadata) SetSessionID(sessionID string) {
	cm.SessionID = sessionID
}

// ToListenerDTO converts a listener model to its API representation
func ToListenerDTO(listener models.Listener) dto.ListenerDTO {
	return dto.ListenerDTO{
		UID:                listener.UID,
		DisplayName:        listener.DisplayName,
		RealName:           listener.RealName,
		Phone:              listener.Phone,
		Profession:         listener.Profession,
		Languages:          listener.Languages,
		AvatarURL:          listener.AvatarURL,
		City:               listener.City,
		Age:                listener.Age,
		Status:             listener.Status,
		Availability:       listener.Availability,
		OnboardingComplete: utils.IsTrue(listener.OnboardingComplete),
		TotalEarnings:      listener.TotalEarnings,
		TotalCalls:         listener.TotalCalls,
		TotalMinutes:       listener.TotalMinutes,
		TotalMessages:      listener.TotalMessages,
		NotifyCalls:        utils.IsTrue(listener.NotifyCalls),
		NotifyMessages:     utils.IsTrue(listener.NotifyMessages),
		IsAdmin:            utils.IsTrue(listener.IsAdmin),
		CreatedAt:          listener.CreatedAt.Format(time.RFC3339),
	}
}

// ToApplicationDTO converts an application model to its admin-facing representation
func ToApplicationDTO(app models.Application) dto.ApplicationDTO {
	return dto.ApplicationDTO{
		ID:              app.ID,
		UUID:            app.UUID.String(),
		FullName:        app.FullName,
		DisplayName:     app.DisplayName,
		Phone:           app.Phone,
		Profession:      app.Profession,
		Languages:       app.Languages,
		BankAccount:     app.BankAccount,
		IFSC:            app.IFSC,
		BankName:        app.BankName,
		UPIID:           app.UPIID,
		Status:          app.Status,
		RejectionReason: app.RejectionReason,
		ListenerUID:     app.ListenerUID,
		CreatedAt:       app.CreatedAt.Format(time.RFC3339),
	}
}

// ToEarningDTO converts an earning record to its API representation
func ToEarningDTO(rec models.EarningRecord) dto.EarningDTO {
	return dto.EarningDTO{
		ID:               rec.ID,
		SourceID:         rec.SourceID,
		SessionType:      rec.SessionType,
		Amount:           rec.Amount,
		PlatformAmount:   rec.PlatformAmount,
		CounterpartyName: rec.CounterpartyName,
		OccurredAt:       rec.OccurredAt.Format(time.RFC3339),
		CreatedAt:        rec.CreatedAt.Format(time.RFC3339),
	}
}

// ToAdminDTOModel converts an admin model for login responses
func ToAdminDTOModel(admin models.Admin) dto.AdminDTO {
	d := dto.AdminDTO{
		ID:        admin.ID,
		UUID:      admin.UUID.String(),
		Username:  admin.Username,
		IsActive:  admin.IsActive,
		CreatedAt: admin.CreatedAt.Format(time.RFC3339),
	}
	if admin.LastLoginAt != nil {
		d.LastLoginAt = utils.ToPtr(admin.LastLoginAt.Format(time.RFC3339))
	}
	return d
}

// ToAdminSessionDTO wraps freshly issued admin tokens
func ToAdminSessionDTO(accessToken, refreshToken string) dto.AdminSessionDTO {
	return dto.AdminSessionDTO{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(utils.AccessTokenTTL.Seconds()),
		TokenType:    "Bearer",
		CreatedAt:    utils.UTCNow().Format(time.RFC3339),
	}
}
