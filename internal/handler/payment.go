package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/regional-streaming/internal/model"
	"github.com/iliyamo/regional-streaming/internal/service"
)

// PaymentHandler fronts the simulated gateway.
type PaymentHandler struct {
	Payments service.PaymentService
	Log      zerolog.Logger
}

func NewPaymentHandler(payments service.PaymentService, log zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{Payments: payments, Log: log}
}

type paymentReq struct {
	Amount       int64              `json:"amount" validate:"gt=0"`
	Currency     string             `json:"currency"`
	Method       string             `json:"method" validate:"required,oneof=card upi netbanking wallet"`
	UserID       string             `json:"userId"`
	Plan         string             `json:"plan" validate:"required"`
	CustomerInfo model.CustomerInfo `json:"customerInfo" validate:"required"`
}

type paymentResp struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	model.Payment
}

// Process charges the caller. A declined charge answers 400 with the
// paymentId so the client can retry.
func (h *PaymentHandler) Process(c echo.Context) error {
	var req paymentReq
	if err := bind(c, &req); err != nil {
		return badRequest(c, err)
	}
	userID, ok := targetUser(c, req.UserID)
	if !ok {
		return forbidden(c)
	}
	if req.Currency == "" {
		req.Currency = model.Currency
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Payments.Process(ctx, service.PaymentRequest{
		UserID:   userID,
		Plan:     req.Plan,
		Amount:   req.Amount,
		Currency: req.Currency,
		Method:   req.Method,
		Customer: req.CustomerInfo,
	})
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, paymentResp{Success: true, Message: "Payment successful!", Payment: p})
}
