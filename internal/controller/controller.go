package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/vionex/auth-service/internal/models"
	"github.com/vionex/auth-service/internal/service"
)

type Controller struct {
	log       *zap.SugaredLogger
	auth      *service.AuthService
	twoFactor *service.TwoFactorService
}

func NewController(log *zap.SugaredLogger, auth *service.AuthService, twoFactor *service.TwoFactorService) *Controller {
	return &Controller{
		log:       log,
		auth:      auth,
		twoFactor: twoFactor,
	}
}

// RegisterHandlers wires the auth routes into the API group. Routes under
// authMW require a valid bearer access token.
func RegisterHandlers(g *echo.Group, c *Controller, authMW echo.MiddlewareFunc) {
	g.POST("/auth/register", c.Register)
	g.POST("/auth/login", c.Login)
	g.POST("/auth/refresh", c.Refresh)
	g.POST("/auth/logout", c.Logout)
	g.GET("/auth/me", c.Me, authMW)
	g.POST("/auth/2fa/setup", c.TwoFactorSetup, authMW)
	g.POST("/auth/2fa/verify", c.TwoFactorVerify, authMW)
}

// (POST /api/auth/register).
func (c *Controller) Register(ctx echo.Context) error {
	var req models.RegisterRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	result, err := c.auth.Register(ctx.Request().Context(), req)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusCreated, authResponse(result))
}

// (POST /api/auth/login).
func (c *Controller) Login(ctx echo.Context) error {
	var req models.LoginRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	result, err := c.auth.Login(ctx.Request().Context(), req.Identifier, req.Password)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, authResponse(result))
}

// (POST /api/auth/refresh).
func (c *Controller) Refresh(ctx echo.Context) error {
	var req models.RefreshRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	pair, err := c.auth.Refresh(ctx.Request().Context(), req.RefreshToken)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, pair)
}

// (POST /api/auth/logout).
func (c *Controller) Logout(ctx echo.Context) error {
	var req models.LogoutRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := c.auth.Logout(ctx.Request().Context(), req.RefreshToken); err != nil {
		return err
	}

	return ctx.NoContent(http.StatusNoContent)
}

// (GET /api/auth/me).
func (c *Controller) Me(ctx echo.Context) error {
	user, ok := ctx.Get(models.CtxUserKey).(*models.User)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	return ctx.JSON(http.StatusOK, user)
}

// (POST /api/auth/2fa/setup).
func (c *Controller) TwoFactorSetup(ctx echo.Context) error {
	user, ok := ctx.Get(models.CtxUserKey).(*models.User)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	secret := c.twoFactor.GenerateSecret()
	return ctx.JSON(http.StatusOK, models.TwoFactorSetupResponse{
		Secret:    secret,
		QRCodeURL: c.twoFactor.QRCodeURL(secret, user.Email),
	})
}

// (POST /api/auth/2fa/verify).
func (c *Controller) TwoFactorVerify(ctx echo.Context) error {
	var req models.TwoFactorVerifyRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	return ctx.JSON(http.StatusOK, models.TwoFactorVerifyResponse{
		Valid: c.twoFactor.VerifyCode(req.Secret, req.Code),
	})
}

func authResponse(result *service.AuthResult) models.AuthResponse {
	return models.AuthResponse{
		User:         result.User,
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		ExpiresIn:    result.ExpiresIn,
	}
}
