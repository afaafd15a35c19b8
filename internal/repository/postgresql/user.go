package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/trackme/parcels/internal/db"
	"github.com/trackme/parcels/internal/repository"
)

const userColumns = "id, email, name, password_hash, role, courier_service_id, created_at, last_login"

type UserRepo struct {
	db  db.DB
	now func() time.Time
}

func NewUserRepo(db db.DB) *UserRepo {
	return &UserRepo{db: db, now: time.Now}
}

func (r *UserRepo) CreateUser(ctx context.Context, user *repository.User, password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, `
        INSERT INTO users (email, name, password_hash, role, courier_service_id)
        VALUES ($1, $2, $3, $4, $5)
    `, user.Email, user.Name, string(hashedPassword), user.Role, user.CourierServiceID)
	return err
}

// EnsureUser creates the user unless one with the same e-mail exists. It reports whether a row was created.
func (r *UserRepo) EnsureUser(ctx context.Context, user *repository.User, password string) (bool, error) {
	var count int
	err := r.db.ExecQueryRow(ctx, "SELECT COUNT(*) FROM users WHERE email = $1", user.Email).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to look up user %s: %w", user.Email, err)
	}
	if count > 0 {
		return false, nil
	}

	if err := r.CreateUser(ctx, user, password); err != nil {
		return false, fmt.Errorf("failed to create user %s: %w", user.Email, err)
	}
	return true, nil
}

// Authenticate checks the password and records the login time.
func (r *UserRepo) Authenticate(ctx context.Context, email, password string) (*repository.User, error) {
	var user repository.User
	err := r.db.Get(ctx, &user, "SELECT "+userColumns+" FROM users WHERE email = $1", email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, repository.ErrInvalidCredentials
	}

	now := r.now().UTC()
	if _, err := r.db.Exec(ctx, "UPDATE users SET last_login = $1 WHERE id = $2", now, user.ID); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}
	user.LastLogin = &now
	return &user, nil
}
