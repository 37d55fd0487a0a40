// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"fmt"
	"log"

	"github.com/saathi-care/listener-platform/app/dto"
	businessflow "github.com/saathi-care/listener-platform/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// AdminHandlerInterface defines the contract for the admin panel endpoints
type AdminHandlerInterface interface {
	InitCaptcha(c fiber.Ctx) error
	VerifyLogin(c fiber.Ctx) error
	ListApplications(c fiber.Ctx) error
	ApproveApplication(c fiber.Ctx) error
	RejectApplication(c fiber.Ctx) error
	ListListeners(c fiber.Ctx) error
	SetAdminRole(c fiber.Ctx) error
	SetListenerStatus(c fiber.Ctx) error
	DashboardStats(c fiber.Ctx) error
	ExportEarnings(c fiber.Ctx) error
}

// AdminHandler implements AdminHandlerInterface
type AdminHandler struct {
	authFlow         businessflow.AdminAuthFlow
	provisioningFlow businessflow.ProvisioningFlow
	listenerFlow     businessflow.ListenerFlow
	reportFlow       businessflow.AdminReportFlow
	validator        *validator.Validate
}

func NewAdminHandler(
	authFlow businessflow.AdminAuthFlow,
	provisioningFlow businessflow.ProvisioningFlow,
	listenerFlow businessflow.ListenerFlow,
	reportFlow businessflow.AdminReportFlow,
) AdminHandlerInterface {
	return &AdminHandler{
		authFlow:         authFlow,
		provisioningFlow: provisioningFlow,
		listenerFlow:     listenerFlow,
		reportFlow:       reportFlow,
		validator:        validator.New(),
	}
}

// ErrorResponse standard JSON error
func (h *AdminHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
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
func (h *AdminHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// InitCaptcha starts the admin login by returning a rotate captcha challenge
// @Summary Admin captcha init
// @Description Initialize rotate captcha for admin login (returns base64 images and challenge ID)
// @Tags Admin Authentication
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.AdminCaptchaInitResponse} "Captcha initialized"
// @Failure 500 {object} dto.APIResponse "Failed to initialize captcha"
// @Router /api/v1/admin/auth/captcha/init [get]
func (h *AdminHandler) InitCaptcha(c fiber.Ctx) error {
	resp, err := h.authFlow.InitCaptcha(h.createRequestContext(c, "/api/v1/admin/auth/captcha/init"))
	if err != nil {
		log.Println("Admin captcha init failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Admin captcha init failed", "ADMIN_CAPTCHA_INIT_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Captcha initialized", resp)
}

// VerifyLogin completes admin login by verifying captcha and credentials
// @Summary Admin login
// @Description Verify captcha and authenticate admin with username/password
// @Tags Admin Authentication
// @Accept json
// @Produce json
// @Param request body dto.AdminCaptchaVerifyRequest true "Admin login data"
// @Success 200 {object} dto.APIResponse{data=dto.AdminLoginResponse} "Login successful"
// @Failure 400 {object} dto.APIResponse "Invalid request or captcha"
// @Failure 401 {object} dto.APIResponse "Incorrect credentials or admin not found"
// @Failure 403 {object} dto.APIResponse "Admin inactive"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/auth/login [post]
func (h *AdminHandler) VerifyLogin(c fiber.Ctx) error {
	var req dto.AdminCaptchaVerifyRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get("X-Request-ID"))

	result, err := h.authFlow.Verify(h.createRequestContext(c, "/api/v1/admin/auth/login"), &req, metadata)
	if err != nil {
		if businessflow.IsInvalidCaptcha(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid captcha", "INVALID_CAPTCHA", nil)
		}
		if businessflow.IsAdminNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusUnauthorized, "Admin not found", "ADMIN_NOT_FOUND", nil)
		}
		if businessflow.IsAdminInactive(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Admin inactive", "ADMIN_INACTIVE", nil)
		}
		if businessflow.IsIncorrectPassword(err) {
			return h.ErrorResponse(c, fiber.StatusUnauthorized, "Incorrect password", "INCORRECT_PASSWORD", nil)
		}
		log.Println("Admin login failed", err)
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Login failed", "LOGIN_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Login successful", result)
}

// ListApplications returns a page of the application review queue
// @Summary List applications
// @Description Return a page of listener applications, optionally filtered by status
// @Tags Admin Applications
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status (pending, approved, rejected)"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ListApplicationsResponse} "Applications"
// @Failure 401 {object} dto.APIResponse "Unauthenticated"
// @Router /api/v1/admin/applications [get]
func (h *AdminHandler) ListApplications(c fiber.Ctx) error {
	var req dto.ListApplicationsRequest
	if err := c.Bind().Query(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}

	result, err := h.provisioningFlow.ListApplications(h.createRequestContext(c, "/api/v1/admin/applications"), &req)
	if err != nil {
		log.Println("Application listing failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list applications", "APPLICATION_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Applications loaded", result)
}

// ApproveApplication approves a pending application and provisions the listener
// @Summary Approve application
// @Description Approve a pending application, creating the identity account and listener profile
// @Tags Admin Applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Application UUID"
// @Success 200 {object} dto.APIResponse{data=dto.ApproveApplicationResponse} "Application approved"
// @Failure 401 {object} dto.APIResponse "Unauthenticated"
// @Failure 404 {object} dto.APIResponse "Application not found"
// @Failure 409 {object} dto.APIResponse "Listener already exists"
// @Failure 412 {object} dto.APIResponse "Application already reviewed"
// @Failure 500 {object} dto.APIResponse "Provisioning failed"
// @Router /api/v1/admin/applications/{uuid}/approve [post]
func (h *AdminHandler) ApproveApplication(c fiber.Ctx) error {
	req := dto.ApproveApplicationRequest{ApplicationUUID: c.Params("uuid")}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid application UUID", "INVALID_REQUEST", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get("X-Request-ID"))

	endpoint := fmt.Sprintf("/api/v1/admin/applications/%s/approve", req.ApplicationUUID)
	result, err := h.provisioningFlow.ApproveApplication(h.createRequestContext(c, endpoint), &req, metadata)
	if err != nil {
		if businessflow.IsApplicationNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Application not found", "APPLICATION_NOT_FOUND", nil)
		}
		if businessflow.IsApplicationNotPending(err) {
			return h.ErrorResponse(c, fiber.StatusPreconditionFailed, "Application already reviewed", "APPLICATION_NOT_PENDING", nil)
		}
		if businessflow.IsListenerExists(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Listener already exists", "LISTENER_EXISTS", nil)
		}
		if businessflow.IsIdentityUnavailable(err) {
			return h.ErrorResponse(c, fiber.StatusBadGateway, "Identity provider unavailable", "IDENTITY_UNAVAILABLE", nil)
		}
		log.Println("Application approval failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Approval failed", "APPROVAL_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Application approved", result)
}

// RejectApplication rejects a pending application
// @Summary Reject application
// @Description Reject a pending application with an optional reason; the applicant is notified by SMS
// @Tags Admin Applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Application UUID"
// @Param request body dto.RejectApplicationRequest false "Rejection reason"
// @Success 200 {object} dto.APIResponse{data=dto.RejectApplicationResponse} "Application rejected"
// @Failure 401 {object} dto.APIResponse "Unauthenticated"
// @Failure 404 {object} dto.APIResponse "Application not found"
// @Failure 412 {object} dto.APIResponse "Application already reviewed"
// @Router /api/v1/admin/applications/{uuid}/reject [post]
func (h *AdminHandler) RejectApplication(c fiber.Ctx) error {
	var req dto.RejectApplicationRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
		}
	}
	req.ApplicationUUID = c.Params("uuid")

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid application UUID", "INVALID_REQUEST", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get("X-Request-ID"))

	endpoint := fmt.Sprintf("/api/v1/admin/applications/%s/reject", req.ApplicationUUID)
	result, err := h.provisioningFlow.RejectApplication(h.createRequestContext(c, endpoint), &req, metadata)
	if err != nil {
		if businessflow.IsApplicationNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Application not found", "APPLICATION_NOT_FOUND", nil)
		}
		if businessflow.IsApplicationNotPending(err) {
			return h.ErrorResponse(c, fiber.StatusPreconditionFailed, "Application already reviewed", "APPLICATION_NOT_PENDING", nil)
		}
		log.Println("Application rejection failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Rejection failed", "REJECTION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Application rejected", result)
}

// ListListeners returns a page of listener profiles
// @Summary List listeners
// @Description Return a page of listener profiles, optionally filtered by status and availability
// @Tags Admin Listeners
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Param availability query string false "Filter by availability"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ListListenersResponse} "Listeners"
// @Failure 401 {object} dto.APIResponse "Unauthenticated"
// @Router /api/v1/admin/listeners [get]
func (h *AdminHandler) ListListeners(c fiber.Ctx) error {
	var req dto.ListListenersRequest
	if err := c.Bind().Query(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}

	result, err := h.listenerFlow.ListListeners(h.createRequestContext(c, "/api/v1/admin/listeners"), &req)
	if err != nil {
		log.Println("Listener listing failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list listeners", "LISTENER_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Listeners loaded", result)
}

// SetAdminRole grants or revokes the listener-admin role
// @Summary Set listener admin role
// @Description Grant or revoke the listener-admin role; the identity claim is updated first
// @Tags Admin Listeners
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SetAdminRoleRequest true "Role change"
// @Success 200 {object} dto.APIResponse{data=dto.SetAdminRoleResponse} "Role updated"
// @Failure 401 {object} dto.APIResponse "Unauthenticated"
// @Failure 404 {object} dto.APIResponse "Listener not found"
// @Failure 502 {object} dto.APIResponse "Identity provider unavailable"
// @Router /api/v1/admin/listeners/role [put]
func (h *AdminHandler) SetAdminRole(c fiber.Ctx) error {
	var req dto.SetAdminRoleRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get("X-Request-ID"))

	result, err := h.listenerFlow.SetAdminRole(h.createRequestContext(c, "/api/v1/admin/listeners/role"), &req, metadata)
	if err != nil {
		if businessflow.IsListenerNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Listener not found", "LISTENER_NOT_FOUND", nil)
		}
		if businessflow.IsIdentityUnavailable(err) {
			return h.ErrorResponse(c, fiber.StatusBadGateway, "Identity provider unavailable", "IDENTITY_UNAVAILABLE", nil)
		}
		log.Println("Admin role change failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update role", "ROLE_UPDATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Role updated", result)
}

// SetListenerStatus suspends or reinstates a listener account
// @Summary Set listener status
// @Description Suspend or reinstate a listener; suspension also forces the availability to Offline
// @Tags Admin Listeners
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SetListenerStatusRequest true "Status change"
// @Success 200 {object} dto.APIResponse{data=dto.SetListenerStatusResponse} "Status updated"
// @Failure 401 {object} dto.APIResponse "Unauthenticated"
// @Failure 404 {object} dto.APIResponse "Listener not found"
// @Router /api/v1/admin/listeners/status [put]
func (h *AdminHandler) SetListenerStatus(c fiber.Ctx) error {
	var req dto.SetListenerStatusRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get("X-Request-ID"))

	result, err := h.listenerFlow.SetListenerStatus(h.createRequestContext(c, "/api/v1/admin/listeners/status"), &req, metadata)
	if err != nil {
		if businessflow.IsListenerNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Listener not found", "LISTENER_NOT_FOUND", nil)
		}
		log.Println("Listener status change failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update status", "STATUS_UPDATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Status updated", result)
}

// DashboardStats returns the admin overview counters
// @Summary Dashboard stats
// @Description Return application, listener and earning aggregates for the admin dashboard
// @Tags Admin Reports
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.DashboardStatsResponse} "Dashboard stats"
// @Failure 401 {object} dto.APIResponse "Unauthenticated"
// @Router /api/v1/admin/dashboard [get]
func (h *AdminHandler) DashboardStats(c fiber.Ctx) error {
	result, err := h.reportFlow.DashboardStats(h.createRequestContext(c, "/api/v1/admin/dashboard"))
	if err != nil {
		log.Println("Dashboard stats failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load dashboard stats", "DASHBOARD_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Dashboard stats loaded", result)
}

// ExportEarnings downloads the earnings ledger for a period as XLSX
// @Summary Export earnings
// @Description Download the earning ledger for the given period as an XLSX workbook
// @Tags Admin Reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param from query string true "Start date (YYYY-MM-DD)"
// @Param to query string true "End date (YYYY-MM-DD)"
// @Success 200 {file} file "XLSX workbook"
// @Failure 400 {object} dto.APIResponse "Invalid date range"
// @Failure 401 {object} dto.APIResponse "Unauthenticated"
// @Router /api/v1/admin/earnings/export [get]
func (h *AdminHandler) ExportEarnings(c fiber.Ctx) error {
	var req dto.ExportEarningsRequest
	if err := c.Bind().Query(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	filename, data, err := h.reportFlow.ExportEarningsXLSX(h.createRequestContext(c, "/api/v1/admin/earnings/export"), &req)
	if err != nil {
		if businessflow.IsStartDateAfterEndDate(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Start date cannot be after end date", "INVALID_DATE_RANGE", nil)
		}
		log.Println("Earnings export failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to export earnings", "EXPORT_FAILED", nil)
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(data)
}

// createRequestContext mirrors other handlers for request-scoped values
func (h *AdminHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return newRequestContext(c, endpoint)
}
