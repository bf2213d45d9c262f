package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/strikeit/strikeit-api/internal/model"
)

// UserRepo reads the users table. Accounts are created by the sign-in
// service; this API never writes them.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	var u model.User
	var token sql.NullString
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,name,email,role,push_token,created_at FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Name, &u.Email, &u.Role, &token, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if token.Valid {
		u.PushToken = &token.String
	}
	return &u, nil
}
