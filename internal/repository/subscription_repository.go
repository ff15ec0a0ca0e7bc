package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/regional-streaming/internal/model"
)

// SubscriptionRepo stores subscription grants. Nothing in the schema
// prevents several active grants per user.
type SubscriptionRepo struct{ q Querier }

func NewSubscriptionRepo(q Querier) *SubscriptionRepo { return &SubscriptionRepo{q: q} }

const subscriptionColumns = "id,user_id,plan,price,currency,start_date,end_date,is_active,payment_id,created_at"

func scanSubscription(s rowScanner) (model.Subscription, error) {
	var (
		sub       model.Subscription
		paymentID sql.NullString
	)
	err := s.Scan(&sub.ID, &sub.UserID, &sub.Plan, &sub.Price, &sub.Currency,
		&sub.StartDate, &sub.EndDate, &sub.IsActive, &paymentID, &sub.CreatedAt)
	if err != nil {
		return model.Subscription{}, err
	}
	sub.PaymentID = nullString(paymentID)
	sub.StartDate = sub.StartDate.UTC()
	sub.EndDate = sub.EndDate.UTC()
	sub.CreatedAt = sub.CreatedAt.UTC()
	return sub, nil
}

// Create inserts a grant.
func (r *SubscriptionRepo) Create(ctx context.Context, s *model.Subscription) error {
	_, err := r.q.ExecContext(ctx,
		"INSERT INTO subscriptions ("+subscriptionColumns+") VALUES (?,?,?,?,?,?,?,?,?,?)",
		s.ID, s.UserID, s.Plan, s.Price, s.Currency, s.StartDate, s.EndDate, s.IsActive, s.PaymentID, s.CreatedAt)
	return err
}

// ListRecent returns up to limit grants of the user, newest first.
func (r *SubscriptionRepo) ListRecent(ctx context.Context, userID string, limit int) ([]model.Subscription, error) {
	rows, err := r.q.QueryContext(ctx,
		"SELECT "+subscriptionColumns+" FROM subscriptions WHERE user_id=? ORDER BY created_at DESC, id DESC LIMIT ?",
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Subscription, 0)
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// FindActive returns the newest grant with is_active set and end_date after
// now.
func (r *SubscriptionRepo) FindActive(ctx context.Context, userID string, now time.Time) (model.Subscription, error) {
	s, err := scanSubscription(r.q.QueryRowContext(ctx,
		"SELECT "+subscriptionColumns+" FROM subscriptions WHERE user_id=? AND is_active=? AND end_date > ? ORDER BY created_at DESC, id DESC LIMIT 1",
		userID, true, now))
	return s, notFound(err)
}

// Deactivate clears is_active on one grant; end_date is left untouched.
func (r *SubscriptionRepo) Deactivate(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, "UPDATE subscriptions SET is_active=? WHERE id=?", false, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

// DeactivateAllActive clears is_active on every currently active grant of
// the user and returns how many rows changed.
func (r *SubscriptionRepo) DeactivateAllActive(ctx context.Context, userID string, now time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		"UPDATE subscriptions SET is_active=? WHERE user_id=? AND is_active=? AND end_date > ?",
		false, userID, true, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountByPayment reports how many grants were paid with paymentID.
func (r *SubscriptionRepo) CountByPayment(ctx context.Context, paymentID string) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM subscriptions WHERE payment_id=?", paymentID).Scan(&n)
	return n, err
}
