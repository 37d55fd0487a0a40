// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"log"

	"github.com/saathi-care/listener-platform/app/dto"
	"github.com/saathi-care/listener-platform/app/middleware"
	businessflow "github.com/saathi-care/listener-platform/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// ListenerHandlerInterface defines the contract for authenticated listener endpoints
type ListenerHandlerInterface interface {
	GetProfile(c fiber.Ctx) error
	UpdateAvailability(c fiber.Ctx) error
	UpdateNotificationPreferences(c fiber.Ctx) error
	CompleteOnboarding(c fiber.Ctx) error
	ListEarnings(c fiber.Ctx) error
}

// ListenerHandler implements ListenerHandlerInterface
type ListenerHandler struct {
	listenerFlow   businessflow.ListenerFlow
	onboardingFlow businessflow.OnboardingFlow
	earningFlow    businessflow.EarningFlow
	validator      *validator.Validate
}

func NewListenerHandler(listenerFlow businessflow.ListenerFlow, onboardingFlow businessflow.OnboardingFlow, earningFlow businessflow.EarningFlow) ListenerHandlerInterface {
	return &ListenerHandler{
		listenerFlow:   listenerFlow,
		onboardingFlow: onboardingFlow,
		earningFlow:    earningFlow,
		validator:      validator.New(),
	}
}

// ErrorResponse standard JSON error
func (h *ListenerHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

// SuccessResponse standard JSON success
func (h *ListenerHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// GetProfile returns the authenticated listener's profile
// @Summary Get own profile
// @Description Return the authenticated listener's profile and running totals
// @Tags Listeners
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.ListenerDTO} "Profile"
// @Failure 401 {object} dto.APIResponse "Unauthenticated"
// @Failure 404 {object} dto.APIResponse "Listener not found"
// @Router /api/v1/listeners/me [get]
func (h *ListenerHandler) GetProfile(c fiber.Ctx) error {
	uid, ok := middleware.GetListenerUIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	profile, err := h.listenerFlow.GetProfile(h.createRequestContext(c, "/api/v1/listeners/me"), uid)
	if err != nil {
		if businessflow.IsListenerNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Listener not found", "LISTENER_NOT_FOUND", nil)
		}
		log.Println("Get profile failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load profile", "PROFILE_LOAD_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Profile loaded", profile)
}

// UpdateAvailability changes the authenticated listener's availability
// @Summary Update availability
// @Description Set the listener's live availability state (Available, Busy, Break, Offline)
// @Tags Listeners
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateAvailabilityRequest true "Availability"
// @Success 200 {object} dto.APIResponse{data=dto.UpdateAvailabilityResponse} "Availability updated"
// @Failure 400 {object} dto.APIResponse "Invalid availability state"
// @Failure 401 {object} dto.APIResponse "Unauthenticated"
// @Failure 412 {object} dto.APIResponse "Listener suspended"
// @Router /api/v1/listeners/me/availability [put]
func (h *ListenerHandler) UpdateAvailability(c fiber.Ctx) error {
	uid, ok := middleware.GetListenerUIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	var req dto.UpdateAvailabilityRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.ListenerUID = uid

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get("X-Request-ID"))

	result, err := h.listenerFlow.UpdateAvailability(h.createRequestContext(c, "/api/v1/listeners/me/availability"), &req, metadata)
	if err != nil {
		if businessflow.IsInvalidAvailability(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid availability state", "INVALID_AVAILABILITY", nil)
		}
		if businessflow.IsListenerNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Listener not found", "LISTENER_NOT_FOUND", nil)
		}
		if businessflow.IsListenerSuspended(err) {
			return h.ErrorResponse(c, fiber.StatusPreconditionFailed, "Listener account is suspended", "LISTENER_SUSPENDED", nil)
		}
		log.Println("Availability update failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update availability", "AVAILABILITY_UPDATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Availability updated", result)
}

// UpdateNotificationPreferences stores the listener's alert toggles
// @Summary Update notification preferences
// @Description Choose which session types the listener app alerts on
// @Tags Listeners
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateNotificationPreferencesRequest true "Preferences"
// @Success 200 {object} dto.APIResponse{data=dto.UpdateNotificationPreferencesResponse} "Preferences updated"
// @Failure 400 {object} dto.APIResponse "Validation failed"
// @Failure 401 {object} dto.APIResponse "Unauthenticated"
// @Failure 412 {object} dto.APIResponse "Listener suspended"
// @Router /api/v1/listeners/me/preferences [put]
func (h *ListenerHandler) UpdateNotificationPreferences(c fiber.Ctx) error {
	uid, ok := middleware.GetListenerUIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	var req dto.UpdateNotificationPreferencesRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.ListenerUID = uid

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get("X-Request-ID"))

	result, err := h.listenerFlow.UpdateNotificationPreferences(h.createRequestContext(c, "/api/v1/listeners/me/preferences"), &req, metadata)
	if err != nil {
		if businessflow.IsListenerNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Listener not found", "LISTENER_NOT_FOUND", nil)
		}
		if businessflow.IsListenerSuspended(err) {
			return h.ErrorResponse(c, fiber.StatusPreconditionFailed, "Listener account is suspended", "LISTENER_SUSPENDED", nil)
		}
		log.Println("Preferences update failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update preferences", "PREFERENCES_UPDATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Preferences updated", result)
}

// CompleteOnboarding finalizes the listener's onboarding profile
// @Summary Complete onboarding
// @Description Record onboarding profile details; activates the account when immediate activation is configured
// @Tags Listeners
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CompleteOnboardingRequest true "Onboarding profile"
// @Success 200 {object} dto.APIResponse{data=dto.CompleteOnboardingResponse} "Onboarding completed"
// @Failure 400 {object} dto.APIResponse "Validation failed"
// @Failure 401 {object} dto.APIResponse "Unauthenticated"
// @Failure 412 {object} dto.APIResponse "Listener suspended or not awaiting onboarding"
// @Router /api/v1/listeners/me/onboarding [post]
func (h *ListenerHandler) CompleteOnboarding(c fiber.Ctx) error {
	uid, ok := middleware.GetListenerUIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	var req dto.CompleteOnboardingRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.ListenerUID = uid

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get("X-Request-ID"))

	result, err := h.onboardingFlow.CompleteOnboarding(h.createRequestContext(c, "/api/v1/listeners/me/onboarding"), &req, metadata)
	if err != nil {
		if businessflow.IsListenerNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Listener not found", "LISTENER_NOT_FOUND", nil)
		}
		if businessflow.IsListenerSuspended(err) {
			return h.ErrorResponse(c, fiber.StatusPreconditionFailed, "Listener account is suspended", "LISTENER_SUSPENDED", nil)
		}
		if businessflow.IsOnboardingNotRequired(err) {
			return h.ErrorResponse(c, fiber.StatusPreconditionFailed, "Listener is not awaiting onboarding", "ONBOARDING_NOT_REQUIRED", nil)
		}
		log.Println("Onboarding completion failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to complete onboarding", "ONBOARDING_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Onboarding completed", result)
}

// ListEarnings returns the authenticated listener's earning ledger
// @Summary List own earnings
// @Description Return a page of the listener's earning ledger with period aggregates
// @Tags Listeners
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} dto.APIResponse{data=dto.ListEarningsResponse} "Earnings"
// @Failure 400 {object} dto.APIResponse "Invalid date range"
// @Failure 401 {object} dto.APIResponse "Unauthenticated"
// @Router /api/v1/listeners/me/earnings [get]
func (h *ListenerHandler) ListEarnings(c fiber.Ctx) error {
	uid, ok := middleware.GetListenerUIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	var req dto.ListEarningsRequest
	if err := c.Bind().Query(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}
	req.ListenerUID = uid

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	result, err := h.earningFlow.ListEarnings(h.createRequestContext(c, "/api/v1/listeners/me/earnings"), &req)
	if err != nil {
		if businessflow.IsStartDateAfterEndDate(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Start date cannot be after end date", "INVALID_DATE_RANGE", nil)
		}
		log.Println("Earnings listing failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list earnings", "EARNINGS_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Earnings loaded", result)
}

// createRequestContext mirrors other handlers for request-scoped values
func (h *ListenerHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return newRequestContext(c, endpoint)
}
