package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/regional-streaming/internal/service"
)

// ProfileHandler manages the sub-profiles of an account.
type ProfileHandler struct {
	Profiles service.ProfileService
	Log      zerolog.Logger
}

func NewProfileHandler(profiles service.ProfileService, log zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{Profiles: profiles, Log: log}
}

type createProfileReq struct {
	UserID      string         `json:"userId"`
	Name        string         `json:"name" validate:"required,max=100"`
	Avatar      *string        `json:"avatar"`
	IsKids      *bool          `json:"isKids"`
	Preferences map[string]any `json:"preferences"`
}
type updateProfileReq struct {
	Name        string         `json:"name" validate:"required,max=100"`
	Avatar      *string        `json:"avatar"`
	IsKids      *bool          `json:"isKids"`
	Preferences map[string]any `json:"preferences"`
}

// List returns the profiles of ?userId (default: the caller).
func (h *ProfileHandler) List(c echo.Context) error {
	userID := c.QueryParam("userId")
	if userID == "" {
		userID = actor(c).ID
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	profiles, err := h.Profiles.List(ctx, actor(c), userID)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"profiles": profiles})
}

func (h *ProfileHandler) Create(c echo.Context) error {
	var req createProfileReq
	if err := bind(c, &req); err != nil {
		return badRequest(c, err)
	}
	if req.UserID == "" {
		req.UserID = actor(c).ID
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Profiles.Create(ctx, actor(c), req.UserID, service.ProfileInput{
		Name:        req.Name,
		Avatar:      req.Avatar,
		IsKids:      req.IsKids,
		Preferences: req.Preferences,
	})
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"profile": p, "message": "Profile created successfully"})
}

func (h *ProfileHandler) Update(c echo.Context) error {
	var req updateProfileReq
	if err := bind(c, &req); err != nil {
		return badRequest(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Profiles.Update(ctx, actor(c), c.Param("id"), service.ProfileInput{
		Name:        req.Name,
		Avatar:      req.Avatar,
		IsKids:      req.IsKids,
		Preferences: req.Preferences,
	})
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"profile": p, "message": "Profile updated successfully"})
}

func (h *ProfileHandler) Delete(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Profiles.Delete(ctx, actor(c), c.Param("id")); err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Profile deleted successfully"})
}
