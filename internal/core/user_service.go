package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

type userService struct {
	pool *pgxpool.Pool
}

// NewUserService constructs a UserService backed by PostgreSQL.
func NewUserService(pool *pgxpool.Pool) UserService {
	return &userService{pool: pool}
}

const userColumns = `id, email, password_hash, name, role, is_active, last_login, created_at`

func scanUser(row pgx.Row) (*User, error) {
	u := &User{}
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.IsActive, &u.LastLogin, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, normalizeEmail(email)))
	if err == pgx.ErrNoRows {
		return nil, Unauthorizedf("invalid email or password")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !u.IsActive {
		return nil, Unauthorizedf("invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, Unauthorizedf("invalid email or password")
	}

	if err := s.pool.QueryRow(ctx,
		`UPDATE users SET last_login = now() WHERE id = $1 RETURNING last_login`, u.ID,
	).Scan(&u.LastLogin); err != nil {
		return nil, fmt.Errorf("failed to record login for user %d: %w", u.ID, err)
	}
	return u, nil
}

func (s *userService) GetUser(ctx context.Context, id int) (*User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, notFoundOr(err, "user", id)
	}
	return u, nil
}

func (s *userService) CreateUser(ctx context.Context, in CreateUserInput) (*User, error) {
	if err := ValidateStruct(in); err != nil {
		return nil, err
	}
	role := in.Role
	if role == "" {
		role = RoleStaff
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u, err := scanUser(s.pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, name, role)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns,
		normalizeEmail(in.Email), string(hash), strings.TrimSpace(in.Name), role,
	))
	if err != nil {
		if uniqueViolation(err, "users_email_key") {
			return nil, Conflictf("a user with email %s already exists", normalizeEmail(in.Email))
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}
