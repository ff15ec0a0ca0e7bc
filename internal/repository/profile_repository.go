package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/iliyamo/regional-streaming/internal/model"
)

// ProfileRepo stores user sub-profiles. Preferences are persisted as a
// JSON object in a TEXT column.
type ProfileRepo struct{ q Querier }

func NewProfileRepo(q Querier) *ProfileRepo { return &ProfileRepo{q: q} }

const profileColumns = "id,user_id,name,avatar,is_kids,preferences,created_at,updated_at"

func scanProfile(s rowScanner) (model.UserProfile, error) {
	var (
		p     model.UserProfile
		prefs string
	)
	if err := s.Scan(&p.ID, &p.UserID, &p.Name, &p.Avatar, &p.IsKids, &prefs, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return model.UserProfile{}, err
	}
	p.Preferences = map[string]any{}
	if prefs != "" {
		if err := json.Unmarshal([]byte(prefs), &p.Preferences); err != nil {
			return model.UserProfile{}, fmt.Errorf("decode preferences: %w", err)
		}
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

func encodePreferences(prefs map[string]any) (string, error) {
	if prefs == nil {
		return "{}", nil
	}
	b, err := json.Marshal(prefs)
	if err != nil {
		return "", fmt.Errorf("encode preferences: %w", err)
	}
	return string(b), nil
}

// Create inserts a profile row.
func (r *ProfileRepo) Create(ctx context.Context, p *model.UserProfile) error {
	prefs, err := encodePreferences(p.Preferences)
	if err != nil {
		return err
	}
	_, err = r.q.ExecContext(ctx,
		"INSERT INTO user_profiles ("+profileColumns+") VALUES (?,?,?,?,?,?,?,?)",
		p.ID, p.UserID, p.Name, p.Avatar, p.IsKids, prefs, p.CreatedAt, p.UpdatedAt)
	return err
}

// GetByID fetches one profile.
func (r *ProfileRepo) GetByID(ctx context.Context, id string) (model.UserProfile, error) {
	p, err := scanProfile(r.q.QueryRowContext(ctx,
		"SELECT "+profileColumns+" FROM user_profiles WHERE id=? LIMIT 1", id))
	return p, notFound(err)
}

// ListByUser returns the user's profiles in creation order. Ids are time
// ordered, so they break ties between profiles created within one second.
func (r *ProfileRepo) ListByUser(ctx context.Context, userID string) ([]model.UserProfile, error) {
	rows, err := r.q.QueryContext(ctx,
		"SELECT "+profileColumns+" FROM user_profiles WHERE user_id=? ORDER BY created_at ASC, id ASC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.UserProfile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CountByUser returns how many profiles the user owns.
func (r *ProfileRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM user_profiles WHERE user_id=?", userID).Scan(&n)
	return n, err
}

// Update overwrites the mutable fields of a profile.
func (r *ProfileRepo) Update(ctx context.Context, p *model.UserProfile) error {
	prefs, err := encodePreferences(p.Preferences)
	if err != nil {
		return err
	}
	res, err := r.q.ExecContext(ctx,
		"UPDATE user_profiles SET name=?, avatar=?, is_kids=?, preferences=?, updated_at=? WHERE id=?",
		p.Name, p.Avatar, p.IsKids, prefs, p.UpdatedAt, p.ID)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

// Delete removes a profile by id.
func (r *ProfileRepo) Delete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, "DELETE FROM user_profiles WHERE id=?", id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}
