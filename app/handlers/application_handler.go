// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"log"

	"github.com/saathi-care/listener-platform/app/dto"
	"github.com/saathi-care/listener-platform/app/services"
	businessflow "github.com/saathi-care/listener-platform/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// ApplicationHandlerInterface defines the contract for the public application endpoints
type ApplicationHandlerInterface interface {
	InitCaptcha(c fiber.Ctx) error
	SubmitApplication(c fiber.Ctx) error
}

// ApplicationHandler implements ApplicationHandlerInterface
type ApplicationHandler struct {
	flow       businessflow.ApplicationFlow
	captchaSvc services.CaptchaService
	validator  *validator.Validate
}

func NewApplicationHandler(flow businessflow.ApplicationFlow, captchaSvc services.CaptchaService) ApplicationHandlerInterface {
	return &ApplicationHandler{
		flow:       flow,
		captchaSvc: captchaSvc,
		validator:  validator.New(),
	}
}

// ErrorResponse standard JSON error
func (h *ApplicationHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
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
func (h *ApplicationHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// InitCaptcha returns a rotate captcha challenge for the application form
// @Summary Application captcha init
// @Description Initialize rotate captcha for the listener application form (returns base64 images and challenge ID)
// @Tags Applications
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.AdminCaptchaInitResponse} "Captcha initialized"
// @Failure 500 {object} dto.APIResponse "Failed to initialize captcha"
// @Router /api/v1/applications/captcha/init [get]
func (h *ApplicationHandler) InitCaptcha(c fiber.Ctx) error {
	ch, err := h.captchaSvc.GenerateRotate(h.createRequestContext(c, "/api/v1/applications/captcha/init"))
	if err != nil {
		log.Println("Application captcha init failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Captcha init failed", "CAPTCHA_INIT_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Captcha initialized", dto.AdminCaptchaInitResponse{
		ChallengeID:       ch.ID,
		MasterImageBase64: ch.MasterImageBase64,
		ThumbImageBase64:  ch.ThumbImageBase64,
	})
}

// SubmitApplication accepts a new listener application
// @Summary Submit listener application
// @Description Submit a listener application with profile, payout details and a solved captcha
// @Tags Applications
// @Accept json
// @Produce json
// @Param request body dto.SubmitApplicationRequest true "Application data"
// @Success 201 {object} dto.APIResponse{data=dto.SubmitApplicationResponse} "Application received"
// @Failure 400 {object} dto.APIResponse "Invalid request, phone number or captcha"
// @Failure 409 {object} dto.APIResponse "Application or listener already exists"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/applications [post]
func (h *ApplicationHandler) SubmitApplication(c fiber.Ctx) error {
	var req dto.SubmitApplicationRequest
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

	result, err := h.flow.SubmitApplication(h.createRequestContext(c, "/api/v1/applications"), &req, metadata)
	if err != nil {
		if businessflow.IsInvalidCaptcha(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid captcha", "INVALID_CAPTCHA", nil)
		}
		if businessflow.IsPhoneInvalid(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid phone number", "INVALID_PHONE", nil)
		}
		if businessflow.IsPayoutDetailsMissing(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Payout details missing", "PAYOUT_DETAILS_MISSING", nil)
		}
		if businessflow.IsApplicationAlreadyExists(err) || businessflow.IsListenerExists(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "An application or listener already exists for this phone number", "ALREADY_EXISTS", nil)
		}
		log.Println("Application submission failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Application submission failed", "SUBMISSION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Application received", result)
}

// createRequestContext mirrors other handlers for request-scoped values
func (h *ApplicationHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return newRequestContext(c, endpoint)
}
