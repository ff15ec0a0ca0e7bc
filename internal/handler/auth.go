package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/regional-streaming/internal/middleware"
	"github.com/iliyamo/regional-streaming/internal/model"
	"github.com/iliyamo/regional-streaming/internal/service"
	"github.com/iliyamo/regional-streaming/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints. ExposeOTP puts the
// issued code in the send-otp response and is only set in development.
type AuthHandler struct {
	Auth      service.AuthService
	ExposeOTP bool
	Log       zerolog.Logger
}

func NewAuthHandler(auth service.AuthService, exposeOTP bool, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{Auth: auth, ExposeOTP: exposeOTP, Log: log}
}

// ----- DTOs -----

type sendOTPReq struct {
	Phone string `json:"phone" validate:"required"`
}
type loginReq struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password"`
	OTP        string `json:"otp"`
	LoginType  string `json:"loginType" validate:"required,oneof=email phone"`
}
type registerReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required"`
	Role     string `json:"role"` // USER | CREATOR
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}
type logoutReq struct {
	RefreshToken string `json:"refresh_token"`
}

type authResp struct {
	User     model.User          `json:"user"`
	Profiles []model.UserProfile `json:"profiles"`
	Message  string              `json:"message"`
	Access   utils.AccessToken   `json:"access"`
	Refresh  utils.RefreshToken  `json:"refresh"`
}

func toAuthResp(r service.AuthResult, msg string) authResp {
	return authResp{User: r.User, Profiles: r.Profiles, Message: msg, Access: r.Access, Refresh: r.Refresh}
}

// SendOTP issues a one-time code for a phone number.
func (h *AuthHandler) SendOTP(c echo.Context) error {
	var req sendOTPReq
	if err := bind(c, &req); err != nil {
		return badRequest(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	code, err := h.Auth.SendOTP(ctx, req.Phone)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	resp := echo.Map{"message": "OTP sent successfully"}
	if h.ExposeOTP {
		resp["otp"] = code
	}
	return c.JSON(http.StatusOK, resp)
}

// Login signs in by email (optional password) or phone (OTP). A first
// phone login creates the account.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bind(c, &req); err != nil {
		return badRequest(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := h.Auth.Login(ctx, service.LoginInput{
		Identifier: req.Identifier,
		LoginType:  req.LoginType,
		Password:   req.Password,
		OTP:        req.OTP,
	})
	if err != nil {
		return respondError(c, h.Log, err)
	}
	msg := "Login successful"
	if res.Created {
		msg = "Account created successfully"
	}
	return c.JSON(http.StatusOK, toAuthResp(res, msg))
}

// Register creates an email account and returns tokens immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := bind(c, &req); err != nil {
		return badRequest(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := h.Auth.Register(ctx, service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     strings.ToUpper(strings.TrimSpace(req.Role)),
	})
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, toAuthResp(res, "Registration successful"))
}

// Refresh rotates the refresh token and returns a new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := bind(c, &req); err != nil {
		return badRequest(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := h.Auth.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, toAuthResp(res, "Token refreshed"))
}

// RefreshAccess issues a new access token and keeps the refresh token.
func (h *AuthHandler) RefreshAccess(c echo.Context) error {
	var req refreshReq
	if err := bind(c, &req); err != nil {
		return badRequest(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	access, err := h.Auth.RefreshAccess(ctx, req.RefreshToken)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"access": access})
}

// Logout revokes the refresh token in the body. Without one, a bearer
// caller has all of their refresh tokens revoked.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req logoutReq
	if err := bindOptional(c, &req); err != nil {
		return badRequest(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	var err error
	switch {
	case strings.TrimSpace(req.RefreshToken) != "":
		err = h.Auth.Logout(ctx, req.RefreshToken)
	case middleware.UserID(c) != "":
		err = h.Auth.LogoutAll(ctx, middleware.UserID(c))
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the authenticated user with their profiles.
func (h *AuthHandler) Me(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, profiles, err := h.Auth.Me(ctx, middleware.UserID(c))
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u, "profiles": profiles})
}
