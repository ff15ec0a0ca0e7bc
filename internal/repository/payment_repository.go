package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/iliyamo/regional-streaming/internal/model"
)

// PaymentRepo records simulated gateway charges so a later purchase can be
// matched against a completed payment.
type PaymentRepo struct{ q Querier }

func NewPaymentRepo(q Querier) *PaymentRepo { return &PaymentRepo{q: q} }

// Create inserts a payment row.
func (r *PaymentRepo) Create(ctx context.Context, p *model.Payment) error {
	details, err := json.Marshal(p.Details)
	if err != nil {
		return err
	}
	var txn any
	if p.TransactionID != "" {
		txn = p.TransactionID
	}
	_, err = r.q.ExecContext(ctx,
		"INSERT INTO payments (id,user_id,plan,amount,currency,method,status,transaction_id,details,created_at) VALUES (?,?,?,?,?,?,?,?,?,?)",
		p.ID, p.UserID, p.Plan, p.Amount, p.Currency, p.Method, p.Status, txn, string(details), p.CreatedAt)
	if isDuplicate(err) {
		return ErrDuplicate
	}
	return err
}

// GetByID fetches a payment.
func (r *PaymentRepo) GetByID(ctx context.Context, id string) (model.Payment, error) {
	var (
		p       model.Payment
		txn     sql.NullString
		details string
	)
	err := r.q.QueryRowContext(ctx,
		"SELECT id,user_id,plan,amount,currency,method,status,transaction_id,details,created_at FROM payments WHERE id=? LIMIT 1",
		id).Scan(&p.ID, &p.UserID, &p.Plan, &p.Amount, &p.Currency, &p.Method, &p.Status, &txn, &details, &p.CreatedAt)
	if err != nil {
		return model.Payment{}, notFound(err)
	}
	p.TransactionID = txn.String
	if details != "" && details != "null" {
		if err := json.Unmarshal([]byte(details), &p.Details); err != nil {
			return model.Payment{}, err
		}
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return p, nil
}
