package controller

import (
	"net/http"
	"time"

	"roomdisplay/core/errors"
	"roomdisplay/core/logger"

	"github.com/labstack/echo/v4"
)

// Response types
type (
	SuccessResponse struct {
		Status    int       `json:"status"`
		Message   string    `json:"message"`
		Data      any       `json:"data,omitempty"`
		Timestamp time.Time `json:"timestamp"`
	}

	ErrorResponse struct {
		Status    string           `json:"status"`
		Code      errors.ErrorCode `json:"code"`
		Message   string           `json:"message"`
		Details   any              `json:"details,omitempty"`
		Timestamp time.Time        `json:"timestamp"`
	}
)

// Response handler interface and implementation
type BaseController interface {
	BadRequest(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError
	NotFound(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError
	Conflict(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError
	InternalServerError(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError
	SuccessResponse(c echo.Context, data any, message string) error
	ErrorResponse(c echo.Context, err error) error
}

type responseHandler struct{}

func NewBaseController() BaseController {
	return &responseHandler{}
}

func NewSuccessResponse(httpStatusCode int, data any, message string) *SuccessResponse {
	return &SuccessResponse{
		Status:    httpStatusCode,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}
}

func NewErrorResponse(httpStatusCode int, appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError {
	err := &ErrorResponse{
		Status:    "error",
		Code:      appErrCode,
		Message:   message,
		Timestamp: time.Now(),
	}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return echo.NewHTTPError(httpStatusCode, err)
}

func (h *responseHandler) BadRequest(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError {
	return NewErrorResponse(http.StatusBadRequest, appErrCode, message, details...)
}

func (h *responseHandler) NotFound(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError {
	return NewErrorResponse(http.StatusNotFound, appErrCode, message, details...)
}

func (h *responseHandler) Conflict(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError {
	return NewErrorResponse(http.StatusConflict, appErrCode, message, details...)
}

func (h *responseHandler) InternalServerError(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError {
	return NewErrorResponse(http.StatusInternalServerError, appErrCode, message, details...)
}

func (h *responseHandler) SuccessResponse(c echo.Context, data any, message string) error {
	return c.JSON(http.StatusOK, NewSuccessResponse(http.StatusOK, data, message))
}

// ErrorResponse maps the error taxonomy onto HTTP statuses. A conflict (room
// busy, end-of-day overrun) must stay distinguishable from provider failures
// so displays can show "already booked" instead of a generic error.
func (h *responseHandler) ErrorResponse(c echo.Context, err error) error {
	httpStatus := http.StatusInternalServerError
	appCode := errors.ErrInternalServer
	msg := "internal server error"

	if err != nil {
		if ae, ok := err.(*errors.AppError); ok && ae != nil {
			appCode = ae.Code
			if ae.Message != "" {
				msg = ae.Message
			}
			switch appCode {
			case errors.ErrInvalidInput:
				httpStatus = http.StatusBadRequest
			case errors.ErrConflict:
				httpStatus = http.StatusConflict
			case errors.ErrNotFound:
				httpStatus = http.StatusNotFound
			case errors.ErrProviderAuth:
				httpStatus = http.StatusForbidden
			case errors.ErrProviderUnavailable:
				httpStatus = http.StatusBadGateway
			default:
				httpStatus = http.StatusInternalServerError
			}
		} else {
			if err.Error() != "" {
				msg = err.Error()
			}
		}
	}

	logger.Error("BaseController:ErrorResponse",
		"status", httpStatus,
		"code", appCode,
		"message", msg,
	)
	return c.JSON(httpStatus, NewErrorResponse(httpStatus, appCode, msg))
}
