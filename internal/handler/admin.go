package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/regional-streaming/internal/middleware"
	"github.com/iliyamo/regional-streaming/internal/service"
)

// AdminHandler exposes moderation and account administration. Every route
// is mounted behind RequireRole(ADMIN).
type AdminHandler struct {
	Approval service.ApprovalService
	Auth     service.AuthService
	Log      zerolog.Logger
}

func NewAdminHandler(approval service.ApprovalService, auth service.AuthService, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{Approval: approval, Auth: auth, Log: log}
}

type userStatusReq struct {
	Status string `json:"status" validate:"required,oneof=active suspended banned"`
}

// Pending lists videos awaiting moderation, oldest first.
func (h *AdminHandler) Pending(c echo.Context) error {
	var limit, offset int
	if err := echo.QueryParamsBinder(c).Int("limit", &limit).Int("offset", &offset).BindError(); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid query parameters"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	videos, err := h.Approval.ListPending(ctx, limit, offset)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"videos": videos})
}

// Approve publishes a pending video.
func (h *AdminHandler) Approve(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	v, err := h.Approval.Approve(ctx, c.Param("id"), middleware.UserID(c))
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"video": v, "message": "Video approved successfully"})
}

// Reject removes a video and its stored media.
func (h *AdminHandler) Reject(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Approval.Reject(ctx, c.Param("id"), middleware.UserID(c)); err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Video rejected successfully"})
}

// SetUserStatus activates, suspends or bans an account.
func (h *AdminHandler) SetUserStatus(c echo.Context) error {
	var req userStatusReq
	if err := bind(c, &req); err != nil {
		return badRequest(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Auth.SetUserStatus(ctx, actor(c), c.Param("id"), req.Status)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u, "message": "User " + u.Status + " successfully"})
}
