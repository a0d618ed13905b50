package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/okian/rostr/internal/adapters/repository"
	"github.com/okian/rostr/internal/auth"
	"github.com/okian/rostr/internal/domain/model"
	"github.com/okian/rostr/pkg/logger"
	"github.com/okian/rostr/pkg/metrics"
)

// Session is returned by a successful login.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
}

// SignUp creates an account with a bcrypt-hashed password.
func (s *Service) SignUp(ctx context.Context, username, password string) (model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		metrics.RecordAuthAttempt("signup", "invalid")
		return model.User{}, newError(ErrBadRequest, "username and password are required")
	}

	hash, err := s.auth.HashPassword(password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		metrics.RecordAuthAttempt("signup", "invalid")
		return model.User{}, newError(ErrBadRequest, "%s", err.Error())
	}
	if err != nil {
		metrics.RecordAuthAttempt("signup", "error")
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.store.CreateUser(ctx, username, hash)
	if errors.Is(err, repository.ErrConflict) {
		metrics.RecordAuthAttempt("signup", "conflict")
		return model.User{}, newError(ErrConflict, "This username is already taken.")
	}
	if err != nil {
		metrics.RecordAuthAttempt("signup", "error")
		return model.User{}, err
	}

	metrics.RecordAuthAttempt("signup", "ok")
	s.logger.Info(ctx, "user signed up", logger.String("user_id", u.ID))
	return u, nil
}

// Login checks credentials and issues a bearer token.
func (s *Service) Login(ctx context.Context, username, password string) (Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		metrics.RecordAuthAttempt("login", "invalid")
		return Session{}, newError(ErrBadRequest, "username and password are required")
	}

	u, err := s.store.UserByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		metrics.RecordAuthAttempt("login", "denied")
		return Session{}, newError(ErrUnauthorized, "%s", s.auth.RejectUnknown(password).Error())
	}
	if err != nil {
		metrics.RecordAuthAttempt("login", "error")
		return Session{}, err
	}
	if err := s.auth.CheckPassword(u.PasswordHash, password); err != nil {
		metrics.RecordAuthAttempt("login", "denied")
		return Session{}, newError(ErrUnauthorized, "%s", err.Error())
	}

	tok, exp, err := s.auth.IssueToken(u.ID, u.Username)
	if err != nil {
		metrics.RecordAuthAttempt("login", "error")
		return Session{}, fmt.Errorf("issue token: %w", err)
	}
	metrics.RecordAuthAttempt("login", "ok")
	return Session{Token: tok, ExpiresAt: exp, UserID: u.ID, Username: u.Username}, nil
}
