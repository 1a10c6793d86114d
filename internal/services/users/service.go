package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Henjin888/hejin-music-platform/internal/domain/model"
	"github.com/Henjin888/hejin-music-platform/internal/pkg/passhash"
	"github.com/Henjin888/hejin-music-platform/internal/pkg/validate"
	pgrepo "github.com/Henjin888/hejin-music-platform/internal/repo/postgres"
	authsvc "github.com/Henjin888/hejin-music-platform/internal/services/auth"
)

var (
	ErrInvalidUsername    = errors.New("username must be 3-80 letters, digits or underscores")
	ErrInvalidEmail       = errors.New("email address is invalid")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
)

type UserStore interface {
	Create(ctx context.Context, username, email, passwordHash string) (model.User, error)
	GetByID(ctx context.Context, userID int64) (model.User, error)
	FindCredentialsByUsername(ctx context.Context, username string) (pgrepo.UserCredentials, error)
}

type TokenIssuer interface {
	IssueForUser(ctx context.Context, userID int64, role string) (authsvc.AuthResult, error)
}

type LoginResult struct {
	User model.User
	Auth authsvc.AuthResult
}

type Service struct {
	users  UserStore
	tokens TokenIssuer
}

type Dependencies struct {
	UserStore   UserStore
	TokenIssuer TokenIssuer
}

func NewService(deps Dependencies) *Service {
	return &Service{
		users:  deps.UserStore,
		tokens: deps.TokenIssuer,
	}
}

func (s *Service) Register(ctx context.Context, username, email, password string) (model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if !validate.Username(username) {
		return model.User{}, ErrInvalidUsername
	}
	if !validate.Email(email) {
		return model.User{}, ErrInvalidEmail
	}
	if !validate.Password(password) {
		return model.User{}, ErrWeakPassword
	}

	hash, err := passhash.Hash(password)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, username, email, hash)
	if err != nil {
		switch {
		case errors.Is(err, pgrepo.ErrUsernameTaken):
			return model.User{}, ErrUsernameTaken
		case errors.Is(err, pgrepo.ErrEmailTaken):
			return model.User{}, ErrEmailTaken
		}
		return model.User{}, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// Login verifies the credentials and opens a session. A missing user and a
// wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, username, password string) (LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}

	creds, err := s.users.FindCredentialsByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, fmt.Errorf("find credentials: %w", err)
	}

	ok, err := passhash.Verify(password, creds.PasswordHash)
	if err != nil || !ok {
		return LoginResult{}, ErrInvalidCredentials
	}

	auth, err := s.tokens.IssueForUser(ctx, creds.User.ID, string(creds.User.Role))
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue tokens: %w", err)
	}

	return LoginResult{User: creds.User, Auth: auth}, nil
}

func (s *Service) Me(ctx context.Context, userID int64) (model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}
