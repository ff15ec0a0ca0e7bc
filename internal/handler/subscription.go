package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/regional-streaming/internal/service"
)

// SubscriptionHandler sells, lists and cancels plan grants.
type SubscriptionHandler struct {
	Subscriptions service.SubscriptionService
	Log           zerolog.Logger
}

func NewSubscriptionHandler(subs service.SubscriptionService, log zerolog.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{Subscriptions: subs, Log: log}
}

type purchaseReq struct {
	UserID    string `json:"userId"`
	Plan      string `json:"plan" validate:"required,oneof=MONTHLY YEARLY LIFETIME"`
	PaymentID string `json:"paymentId"`
}
type cancelReq struct {
	UserID string `json:"userId"`
}

// Plans lists the price table.
func (h *SubscriptionHandler) Plans(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"plans": h.Subscriptions.Plans()})
}

// Overview returns the recent grants of ?userId and the active one.
func (h *SubscriptionHandler) Overview(c echo.Context) error {
	userID, ok := targetUser(c, c.QueryParam("userId"))
	if !ok {
		return forbidden(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	ov, err := h.Subscriptions.Overview(ctx, userID)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, ov)
}

func (h *SubscriptionHandler) Purchase(c echo.Context) error {
	var req purchaseReq
	if err := bind(c, &req); err != nil {
		return badRequest(c, err)
	}
	userID, ok := targetUser(c, req.UserID)
	if !ok {
		return forbidden(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	sub, err := h.Subscriptions.Purchase(ctx, service.PurchaseInput{
		UserID:    userID,
		Plan:      req.Plan,
		PaymentID: req.PaymentID,
	})
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"subscription": sub, "message": "Subscription created successfully"})
}

// Cancel stops renewal of the active grant; access lasts until its end date.
func (h *SubscriptionHandler) Cancel(c echo.Context) error {
	var req cancelReq
	if err := bindOptional(c, &req); err != nil {
		return badRequest(c, err)
	}
	userID, ok := targetUser(c, req.UserID)
	if !ok {
		return forbidden(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	end, err := h.Subscriptions.Cancel(ctx, userID)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":           "Subscription cancelled successfully",
		"willContinueUntil": end,
	})
}
