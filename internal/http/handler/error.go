package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"nara/internal/http/middleware"
	"nara/internal/service"
	"nara/internal/validate"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// writeError writes a standardized JSON error response without leaking internal errors.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return writeErrorFields(c, status, code, message, nil)
}

func writeErrorFields(c *fiber.Ctx, status int, code, message string, fields map[string]string) error {
	res := errorPayload{
		RequestID: middleware.RequestIDFrom(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
			Fields:  fields,
		},
	}
	return c.Status(status).JSON(res)
}

// serviceStatus maps a service error to an HTTP status, code and safe message.
func serviceStatus(err error) (int, string, string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, service.ErrIDRequired):
		return fiber.StatusBadRequest, "INVALID_ID", "id is required"
	case errors.Is(err, service.ErrNotPublished):
		return fiber.StatusForbidden, "NOT_PUBLISHED", "showcase is not published"
	case errors.Is(err, service.ErrFeatureDisabled):
		return fiber.StatusForbidden, "FEATURE_DISABLED", "feature is disabled"
	case errors.Is(err, service.ErrForbidden):
		return fiber.StatusForbidden, "FORBIDDEN", "forbidden"
	case errors.Is(err, service.ErrInvalidCredentials):
		return fiber.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password"
	case errors.Is(err, service.ErrUnauthorized):
		return fiber.StatusUnauthorized, "UNAUTHORIZED", "authentication required"
	case errors.Is(err, service.ErrEmailTaken):
		return fiber.StatusConflict, "EMAIL_TAKEN", "email is already registered"
	case errors.Is(err, service.ErrConflict):
		return fiber.StatusConflict, "CONFLICT", "conflict"
	default:
		return fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"
	}
}

// writeServiceError translates err into the error envelope. Validation errors carry per-field messages.
func writeServiceError(c *fiber.Ctx, err error) error {
	if ve, ok := validate.AsError(err); ok {
		return writeErrorFields(c, fiber.StatusBadRequest, "VALIDATION_FAILED", "validation failed", ve.Fields)
	}
	status, code, msg := serviceStatus(err)
	if status == fiber.StatusInternalServerError {
		// ErrorHandler answers with the generic envelope; the request logger records err.
		return err
	}
	return writeError(c, status, code, msg)
}

var statusCodes = map[int]string{
	fiber.StatusBadRequest:            "BAD_REQUEST",
	fiber.StatusUnauthorized:          "UNAUTHORIZED",
	fiber.StatusForbidden:             "FORBIDDEN",
	fiber.StatusNotFound:              "NOT_FOUND",
	fiber.StatusMethodNotAllowed:      "METHOD_NOT_ALLOWED",
	fiber.StatusConflict:              "CONFLICT",
	fiber.StatusRequestEntityTooLarge: "PAYLOAD_TOO_LARGE",
	fiber.StatusTooManyRequests:       "RATE_LIMITED",
	fiber.StatusServiceUnavailable:    "SERVICE_UNAVAILABLE",
}

var statusMessages = map[int]string{
	fiber.StatusBadRequest:            "bad request",
	fiber.StatusUnauthorized:          "authentication required",
	fiber.StatusForbidden:             "forbidden",
	fiber.StatusNotFound:              "resource not found",
	fiber.StatusMethodNotAllowed:      "method not allowed",
	fiber.StatusConflict:              "conflict",
	fiber.StatusRequestEntityTooLarge: "payload too large",
	fiber.StatusTooManyRequests:       "too many requests",
	fiber.StatusServiceUnavailable:    "dependency unavailable",
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
// Browsers asking for HTML get the error page; everything else gets the JSON envelope.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		code, ok := statusCodes[status]
		msg := statusMessages[status]
		if !ok {
			status, code, msg = fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"
		}

		if wantsHTML(c) {
			return renderError(c, status, msg)
		}
		return writeError(c, status, code, msg)
	}
}

func wantsHTML(c *fiber.Ctx) bool {
	if middleware.IsAPI(c) || c.App().Config().Views == nil {
		return false
	}
	return strings.Contains(c.Get(fiber.HeaderAccept), fiber.MIMETextHTML)
}

// renderError renders the error page, falling back to plain text when rendering fails.
func renderError(c *fiber.Ctx, status int, msg string) error {
	tr := middleware.Translator(c)
	switch status {
	case fiber.StatusNotFound:
		msg = tr.T("errors.not_found")
	case fiber.StatusForbidden:
		msg = tr.T("errors.forbidden")
	case fiber.StatusTooManyRequests:
		msg = tr.T("auth.too_many_attempts")
	case fiber.StatusInternalServerError:
		msg = tr.T("errors.internal")
	}
	c.Status(status)
	if err := render(c, "error", fiber.Map{"Title": strconv.Itoa(status), "Status": status, "Message": msg, "RequestID": middleware.RequestIDFrom(c)}); err != nil {
		return c.Status(status).SendString(msg)
	}
	return nil
}
