package service

import (
	"context"
	"database/sql"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"

	"github.com/iliyamo/regional-streaming/internal/metrics"
	"github.com/iliyamo/regional-streaming/internal/model"
	"github.com/iliyamo/regional-streaming/internal/repository"
)

// PaymentRequest is one charge attempt.
type PaymentRequest struct {
	UserID   string
	Plan     string
	Amount   int64
	Currency string
	Method   string
	Customer model.CustomerInfo
}

// PaymentService simulates a payment gateway. Every attempt, successful or
// not, is persisted so a later purchase can reference it.
type PaymentService interface {
	Process(ctx context.Context, req PaymentRequest) (model.Payment, error)
}

// PaymentOptions tunes the simulated gateway. Roll defaults to a uniform
// draw in [0,1); an attempt succeeds when Roll() < SuccessRate.
type PaymentOptions struct {
	Delay       time.Duration
	SuccessRate float64
	Roll        func() float64
}

type paymentService struct {
	db       *sql.DB
	opts     PaymentOptions
	validate *validator.Validate
	metrics  *metrics.Metrics
	now      Clock
	logger   zerolog.Logger
}

// NewPaymentService returns the simulated gateway.
func NewPaymentService(db *sql.DB, opts PaymentOptions, m *metrics.Metrics, now Clock, logger zerolog.Logger) PaymentService {
	if opts.Roll == nil {
		opts.Roll = rand.Float64
	}
	return &paymentService{
		db:       db,
		opts:     opts,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		metrics:  m,
		now:      now,
		logger:   logger.With().Str("service", "PaymentService").Logger(),
	}
}

// methodDetails is the data each simulated responder returns.
func methodDetails(method string, c model.CustomerInfo) map[string]string {
	switch method {
	case model.PaymentCard:
		return map[string]string{"last4": "4242", "brand": "Visa"}
	case model.PaymentUPI:
		return map[string]string{"vpa": c.Phone + "@ybl"}
	case model.PaymentNetbanking:
		return map[string]string{"bank": "Demo Bank"}
	case model.PaymentWallet:
		return map[string]string{"provider": "PayTM"}
	}
	return nil
}

func (s *paymentService) Process(ctx context.Context, req PaymentRequest) (model.Payment, error) {
	req.Method = strings.ToLower(strings.TrimSpace(req.Method))
	req.Plan = strings.ToUpper(strings.TrimSpace(req.Plan))
	req.Currency = strings.ToUpper(strings.TrimSpace(req.Currency))
	if req.Currency == "" {
		req.Currency = model.Currency
	}

	if req.UserID == "" {
		return model.Payment{}, validationErr("User ID is required")
	}
	if req.Amount <= 0 {
		return model.Payment{}, validationErr("Amount must be positive")
	}
	if req.Currency != model.Currency {
		return model.Payment{}, validationErr("Unsupported currency")
	}
	details := methodDetails(req.Method, req.Customer)
	if details == nil {
		return model.Payment{}, validationErr("Invalid payment method")
	}
	if req.Plan != "" {
		if _, ok := model.Plans[req.Plan]; !ok {
			return model.Payment{}, validationErr("Invalid plan")
		}
	}
	if err := s.validate.Struct(req.Customer); err != nil {
		return model.Payment{}, validationErr("Invalid customer information")
	}

	p := model.Payment{
		ID:       "PAY_" + ksuid.New().String(),
		UserID:   req.UserID,
		Plan:     req.Plan,
		Amount:   req.Amount,
		Currency: req.Currency,
		Method:   req.Method,
		Details:  details,
	}

	if s.opts.Delay > 0 {
		t := time.NewTimer(s.opts.Delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return model.Payment{}, &Error{Kind: KindUpstream, Msg: "Payment processing failed", Err: ctx.Err()}
		case <-t.C:
		}
	}

	if s.opts.Roll() < s.opts.SuccessRate {
		p.Status = model.PaymentCompleted
		p.TransactionID = "TXN_" + ksuid.New().String()
	} else {
		p.Status = model.PaymentFailed
	}
	p.CreatedAt = s.now()

	if err := repository.NewPaymentRepo(s.db).Create(ctx, &p); err != nil {
		return model.Payment{}, internalErr("Payment processing failed", err)
	}
	s.metrics.Payment(p.Method, p.Status)

	if p.Status != model.PaymentCompleted {
		s.logger.Warn().Str("payment_id", p.ID).Str("user_id", p.UserID).Str("method", p.Method).Msg("payment declined")
		return p, &Error{
			Kind:      KindPaymentFailed,
			Msg:       "Payment failed",
			PaymentID: p.ID,
		}
	}
	s.logger.Info().Str("payment_id", p.ID).Str("user_id", p.UserID).Int64("amount", p.Amount).Msg("payment completed")
	return p, nil
}
