package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/vionex/auth-service/internal/models"
	"github.com/vionex/auth-service/internal/service"
	"github.com/vionex/auth-service/internal/storage"
)

// ErrorHandler maps service errors to HTTP statuses. Login failure causes
// stay collapsed behind one generic message and lockout responses never
// reveal the remaining wait, so the API is useless as an enumeration oracle.
func ErrorHandler(log *zap.SugaredLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, reason := classify(err)
		if status >= http.StatusInternalServerError {
			log.Errorw("request failed", "error", err, "uri", c.Request().RequestURI)
		}

		if jsonErr := c.JSON(status, models.ErrorResponse{Reason: reason}); jsonErr != nil {
			log.Errorw("failed to write json response", "error", jsonErr)
		}
	}
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, "invalid input"
	case errors.Is(err, service.ErrTooManyAttempts):
		return http.StatusTooManyRequests, "too many login attempts, try again later"
	case errors.Is(err, service.ErrTokenExpired),
		errors.Is(err, service.ErrTokenMalformed),
		errors.Is(err, service.ErrSessionInvalid):
		return http.StatusUnauthorized, "invalid or expired token"
	case errors.Is(err, storage.ErrAccountExists):
		return http.StatusConflict, "account already exists"
	case errors.Is(err, storage.ErrStoreUnavailable):
		// Fail closed: an unreachable store denies instead of waving through.
		return http.StatusServiceUnavailable, "service temporarily unavailable"
	case errors.Is(err, service.ErrHashingFailed):
		return http.StatusInternalServerError, "internal server error"
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		if msg, ok := he.Message.(string); ok {
			return he.Code, msg
		}
		return he.Code, http.StatusText(he.Code)
	}

	return http.StatusInternalServerError, "internal server error"
}
