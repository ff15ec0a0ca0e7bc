package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/regional-streaming/internal/model"
)

type UserRepo struct{ q Querier }

func NewUserRepo(q Querier) *UserRepo { return &UserRepo{q: q} }

const userColumns = "id,email,phone,name,avatar,password_hash,role,status,is_verified,subscription_id,subscription_end,created_at,updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(s rowScanner) (model.User, error) {
	var (
		u      model.User
		email  sql.NullString
		phone  sql.NullString
		hash   sql.NullString
		subID  sql.NullString
		subEnd sql.NullTime
	)
	err := s.Scan(&u.ID, &email, &phone, &u.Name, &u.Avatar, &hash, &u.Role, &u.Status,
		&u.IsVerified, &subID, &subEnd, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	u.Email = nullString(email)
	u.Phone = nullString(phone)
	u.PasswordHash = hash.String
	u.SubscriptionID = nullString(subID)
	if subEnd.Valid {
		t := subEnd.Time.UTC()
		u.SubscriptionEnd = &t
	}
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return u, nil
}

// Create inserts u. Email is normalised to lower case. A taken email or
// phone yields ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	if u.Email != nil {
		e := strings.ToLower(strings.TrimSpace(*u.Email))
		u.Email = &e
	}
	var hash any
	if u.PasswordHash != "" {
		hash = u.PasswordHash
	}
	_, err := r.q.ExecContext(ctx,
		"INSERT INTO users ("+userColumns+") VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)",
		u.ID, u.Email, u.Phone, u.Name, u.Avatar, hash, u.Role, u.Status, u.IsVerified,
		u.SubscriptionID, u.SubscriptionEnd, u.CreatedAt, u.UpdatedAt)
	if isDuplicate(err) {
		return ErrDuplicate
	}
	return err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	u, err := scanUser(r.q.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
	return u, notFound(err)
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := scanUser(r.q.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
	return u, notFound(err)
}

// GetByPhone fetches a user by phone number.
func (r *UserRepo) GetByPhone(ctx context.Context, phone string) (model.User, error) {
	u, err := scanUser(r.q.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE phone=? LIMIT 1", strings.TrimSpace(phone)))
	return u, notFound(err)
}

// SetSubscription caches the latest grant on the user row.
func (r *UserRepo) SetSubscription(ctx context.Context, userID, subscriptionID string, end, now time.Time) error {
	res, err := r.q.ExecContext(ctx,
		"UPDATE users SET subscription_id=?, subscription_end=?, updated_at=? WHERE id=?",
		subscriptionID, end, now, userID)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

// SetStatus changes the account status.
func (r *UserRepo) SetStatus(ctx context.Context, userID, status string, now time.Time) error {
	res, err := r.q.ExecContext(ctx,
		"UPDATE users SET status=?, updated_at=? WHERE id=?", status, now, userID)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// Touch bumps updated_at. Inside a transaction it takes the row's write
// lock, which serialises concurrent changes to the user's child rows.
func (r *UserRepo) Touch(ctx context.Context, userID string, now time.Time) error {
	res, err := r.q.ExecContext(ctx, "UPDATE users SET updated_at=? WHERE id=?", now, userID)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}
