package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Henjin888/hejin-music-platform/internal/domain/enums"
	"github.com/Henjin888/hejin-music-platform/internal/domain/model"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already taken")
	ErrEmailTaken    = errors.New("email already registered")
)

type UserRepo struct {
	pool *pgxpool.Pool
}

type UserCredentials struct {
	User         model.User
	PasswordHash string
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) Create(ctx context.Context, username, email, passwordHash string) (model.User, error) {
	if r.pool == nil {
		return model.User{}, fmt.Errorf("postgres pool is nil")
	}
	if strings.TrimSpace(username) == "" || strings.TrimSpace(email) == "" || passwordHash == "" {
		return model.User{}, fmt.Errorf("invalid user payload")
	}

	var user model.User
	var role string
	err := r.pool.QueryRow(ctx, `
INSERT INTO users (username, email, password_hash, role, created_at, updated_at)
VALUES ($1, $2, $3, 'normal', NOW(), NOW())
RETURNING id, username, email, role, created_at, updated_at
`, strings.TrimSpace(username), strings.ToLower(strings.TrimSpace(email)), passwordHash).Scan(
		&user.ID, &user.Username, &user.Email, &role, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if strings.Contains(pgErr.ConstraintName, "email") {
				return model.User{}, ErrEmailTaken
			}
			return model.User{}, ErrUsernameTaken
		}
		return model.User{}, fmt.Errorf("create user: %w", err)
	}

	user.Role = enums.Role(role)
	return user, nil
}

func (r *UserRepo) GetByID(ctx context.Context, userID int64) (model.User, error) {
	if r.pool == nil {
		return model.User{}, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return model.User{}, ErrUserNotFound
	}

	var user model.User
	var role string
	var avatarURL *string
	err := r.pool.QueryRow(ctx, `
SELECT id, username, email, avatar_url, role, created_at, updated_at
FROM users
WHERE id = $1
`, userID).Scan(&user.ID, &user.Username, &user.Email, &avatarURL, &role, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("get user by id: %w", err)
	}

	if avatarURL != nil {
		user.AvatarURL = *avatarURL
	}
	user.Role = enums.Role(role)
	return user, nil
}

func (r *UserRepo) FindCredentialsByUsername(ctx context.Context, username string) (UserCredentials, error) {
	if r.pool == nil {
		return UserCredentials{}, fmt.Errorf("postgres pool is nil")
	}
	if strings.TrimSpace(username) == "" {
		return UserCredentials{}, ErrUserNotFound
	}

	var creds UserCredentials
	var role string
	err := r.pool.QueryRow(ctx, `
SELECT id, username, email, password_hash, role, created_at, updated_at
FROM users
WHERE username = $1
`, strings.TrimSpace(username)).Scan(
		&creds.User.ID,
		&creds.User.Username,
		&creds.User.Email,
		&creds.PasswordHash,
		&role,
		&creds.User.CreatedAt,
		&creds.User.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UserCredentials{}, ErrUserNotFound
		}
		return UserCredentials{}, fmt.Errorf("find user by username: %w", err)
	}

	creds.User.Role = enums.Role(role)
	return creds, nil
}
