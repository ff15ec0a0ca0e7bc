package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/regional-streaming/internal/metrics"
	"github.com/iliyamo/regional-streaming/internal/model"
	"github.com/iliyamo/regional-streaming/internal/repository"
)

// recentSubscriptions is how many grants Overview and GetActive look at.
const recentSubscriptions = 10

// SubscriptionOverview is a user's recent grants and the one currently in
// force, if any.
type SubscriptionOverview struct {
	Subscriptions         []model.Subscription `json:"subscriptions"`
	ActiveSubscription    *model.Subscription  `json:"activeSubscription"`
	HasActiveSubscription bool                 `json:"hasActiveSubscription"`
}

// PurchaseInput requests a new grant. PaymentID, when set, must name a
// completed payment of the plan price made by the same user.
type PurchaseInput struct {
	UserID    string
	Plan      string
	PaymentID string
}

// SubscriptionService sells and cancels time-boxed plan grants.
type SubscriptionService interface {
	Plans() []model.PlanTerms
	Purchase(ctx context.Context, in PurchaseInput) (model.Subscription, error)
	Overview(ctx context.Context, userID string) (SubscriptionOverview, error)
	GetActive(ctx context.Context, userID string) (*model.Subscription, error)
	Cancel(ctx context.Context, userID string) (time.Time, error)
}

type subscriptionService struct {
	db            *sql.DB
	replaceActive bool
	metrics       *metrics.Metrics
	now           Clock
	logger        zerolog.Logger
}

// NewSubscriptionService returns the subscription lifecycle service. With
// replaceActive set, a purchase first deactivates the user's live grants.
func NewSubscriptionService(db *sql.DB, replaceActive bool, m *metrics.Metrics, now Clock, logger zerolog.Logger) SubscriptionService {
	return &subscriptionService{
		db:            db,
		replaceActive: replaceActive,
		metrics:       m,
		now:           now,
		logger:        logger.With().Str("service", "SubscriptionService").Logger(),
	}
}

func (s *subscriptionService) Plans() []model.PlanTerms {
	out := make([]model.PlanTerms, 0, len(model.Plans))
	for _, p := range model.Plans {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	return out
}

func (s *subscriptionService) Purchase(ctx context.Context, in PurchaseInput) (model.Subscription, error) {
	plan := strings.ToUpper(strings.TrimSpace(in.Plan))
	if in.UserID == "" || plan == "" {
		return model.Subscription{}, validationErr("User ID and plan are required")
	}
	terms, ok := model.Plans[plan]
	if !ok {
		return model.Subscription{}, validationErr("Invalid plan")
	}

	now := s.now()
	sub := model.Subscription{
		ID:        newID(),
		UserID:    in.UserID,
		Plan:      terms.Plan,
		Price:     terms.Price,
		Currency:  model.Currency,
		StartDate: now,
		EndDate:   now.Add(terms.Duration()),
		IsActive:  true,
		CreatedAt: now,
	}
	if id := strings.TrimSpace(in.PaymentID); id != "" {
		sub.PaymentID = &id
	}

	var replaced int64
	err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		users := repository.NewUserRepo(tx)
		subs := repository.NewSubscriptionRepo(tx)
		if err := users.Touch(ctx, in.UserID, now); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFoundErr("User not found")
			}
			return err
		}
		if sub.PaymentID != nil {
			if err := s.checkPayment(ctx, tx, *sub.PaymentID, in.UserID, terms); err != nil {
				return err
			}
		}
		if s.replaceActive {
			n, err := subs.DeactivateAllActive(ctx, in.UserID, now)
			if err != nil {
				return err
			}
			replaced = n
		}
		if err := subs.Create(ctx, &sub); err != nil {
			return err
		}
		return users.SetSubscription(ctx, in.UserID, sub.ID, sub.EndDate, now)
	})
	if err != nil {
		var se *Error
		if errors.As(err, &se) {
			return model.Subscription{}, se
		}
		return model.Subscription{}, internalErr("Failed to create subscription", err)
	}

	s.metrics.SubscriptionPurchased(sub.Plan)
	s.logger.Info().
		Str("user_id", in.UserID).
		Str("plan", sub.Plan).
		Time("end_date", sub.EndDate).
		Int64("replaced", replaced).
		Msg("subscription purchased")
	return sub, nil
}

// checkPayment ties a grant to a completed, unused payment of the right
// amount made by the purchasing user.
func (s *subscriptionService) checkPayment(ctx context.Context, tx *sql.Tx, paymentID, userID string, terms model.PlanTerms) error {
	p, err := repository.NewPaymentRepo(tx).GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return validationErr("Unknown payment")
		}
		return err
	}
	if p.UserID != userID {
		return forbiddenErr("Payment belongs to another user")
	}
	if p.Status != model.PaymentCompleted {
		return validationErr("Payment was not completed")
	}
	if p.Amount != terms.Price || !strings.EqualFold(p.Currency, model.Currency) {
		return validationErr("Payment amount does not match plan price")
	}
	used, err := repository.NewSubscriptionRepo(tx).CountByPayment(ctx, paymentID)
	if err != nil {
		return err
	}
	if used > 0 {
		return duplicateErr("Payment already used")
	}
	return nil
}

func (s *subscriptionService) Overview(ctx context.Context, userID string) (SubscriptionOverview, error) {
	if userID == "" {
		return SubscriptionOverview{}, validationErr("User ID is required")
	}
	subs, err := repository.NewSubscriptionRepo(s.db).ListRecent(ctx, userID, recentSubscriptions)
	if err != nil {
		return SubscriptionOverview{}, internalErr("list subscriptions", err)
	}
	ov := SubscriptionOverview{Subscriptions: subs}
	now := s.now()
	for i := range subs {
		if subs[i].ActiveAt(now) {
			active := subs[i]
			ov.ActiveSubscription = &active
			ov.HasActiveSubscription = true
			break
		}
	}
	return ov, nil
}

func (s *subscriptionService) GetActive(ctx context.Context, userID string) (*model.Subscription, error) {
	ov, err := s.Overview(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ov.ActiveSubscription, nil
}

func (s *subscriptionService) Cancel(ctx context.Context, userID string) (time.Time, error) {
	if userID == "" {
		return time.Time{}, validationErr("User ID is required")
	}
	var sub model.Subscription
	err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		subs := repository.NewSubscriptionRepo(tx)
		var err error
		if sub, err = subs.FindActive(ctx, userID, s.now()); err != nil {
			return err
		}
		return subs.Deactivate(ctx, sub.ID)
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return time.Time{}, notFoundErr("No active subscription found")
		}
		return time.Time{}, internalErr("cancel subscription", err)
	}

	s.metrics.SubscriptionCancelled()
	s.logger.Info().Str("user_id", userID).Str("subscription_id", sub.ID).Time("end_date", sub.EndDate).Msg("subscription cancelled")
	return sub.EndDate, nil
}
