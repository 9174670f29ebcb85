package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/vionex/auth-service/internal/models"
	"github.com/vionex/auth-service/internal/service"
)

const bearerPrefix = "Bearer "

// RateLimitMiddleware throttles every request by client IP and route. A
// store failure denies the request: the limiter fails closed, an outage
// never disables it.
func RateLimitMiddleware(limiter *service.RateLimiter, log *zap.SugaredLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := "ratelimit:" + c.RealIP() + ":" + c.Request().URL.Path

			allowed, err := limiter.Allow(c.Request().Context(), key)
			if err != nil {
				log.Errorw("rate limiter unavailable", "error", err)
				return echo.NewHTTPError(http.StatusServiceUnavailable, "service temporarily unavailable")
			}
			if !allowed {
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
			}

			return next(c)
		}
	}
}

// BearerAuthMiddleware verifies the access token from the Authorization
// header and stores the resolved account in the request context.
func BearerAuthMiddleware(authService *service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, bearerPrefix) {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}

			user, err := authService.Authenticate(c.Request().Context(), strings.TrimPrefix(header, bearerPrefix))
			if err != nil {
				return err
			}

			c.Set(models.CtxUserKey, user)
			return next(c)
		}
	}
}

func GetLoggerMiddlewareConfig(a *API) echomiddleware.RequestLoggerConfig {
	return echomiddleware.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogError:  true,

		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := []interface{}{
				"method", c.Request().Method,
				"uri", v.URI,
				"status", v.Status,
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
				a.log.Errorw("Request", fields...)
			} else {
				a.log.Infow("Request", fields...)
			}
			return nil
		},
	}
}
