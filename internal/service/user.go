// Package service contains the business logic layer: user accounts, deck and
// card lifecycle, the study workflow, and deck sharing. Services take their
// repositories and collaborators as constructor parameters, accept a
// callerUserID on every ownership-scoped call, and return domain results or
// apperror failures, never HTTP types.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/akozyrev/memocards/internal/apperror"
	"github.com/akozyrev/memocards/internal/auth"
	"github.com/akozyrev/memocards/internal/model"
	"github.com/akozyrev/memocards/internal/repository"
)

// UserService handles registration, login verification, and account
// management.
type UserService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewUserService(users repository.UserRepository, passwords *auth.PasswordService, logger *slog.Logger) *UserService {
	return &UserService{
		users:     users,
		passwords: passwords,
		logger:    logger,
	}
}

// Register creates a new account. Email is checked before login, so when
// both are taken the caller sees email_conflict. The raw password is hashed
// immediately and never stored or logged.
func (s *UserService) Register(ctx context.Context, email, login, rawPassword string) (*model.User, error) {
	taken, err := s.users.UserEmailTaken(ctx, email, "")
	if err != nil {
		return nil, fmt.Errorf("registering user: %w", err)
	}
	if taken {
		return nil, apperror.Conflict(apperror.CodeEmailConflict, "email already in use")
	}

	taken, err = s.users.UserLoginTaken(ctx, login, "")
	if err != nil {
		return nil, fmt.Errorf("registering user: %w", err)
	}
	if taken {
		return nil, apperror.Conflict(apperror.CodeLoginConflict, "login already in use")
	}

	hash, err := s.passwords.Hash(rawPassword)
	if err != nil {
		return nil, fmt.Errorf("registering user: %w", err)
	}

	user := &model.User{
		Email:        email,
		Login:        login,
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("registering user: %w", err)
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("login", user.Login),
	)
	return user, nil
}

// Authenticate verifies login credentials and returns the account. Unknown
// logins and wrong passwords are indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, login, rawPassword string) (*model.User, error) {
	user, err := s.users.FindUserByLogin(ctx, login)
	if err != nil {
		return nil, fmt.Errorf("authenticating user: %w", err)
	}
	if user == nil || !s.passwords.Verify(user.PasswordHash, rawPassword) {
		return nil, apperror.Unauthorized("invalid login or password")
	}
	return user, nil
}

// GetByID returns the account for an authenticated user id.
func (s *UserService) GetByID(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.FindUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetching user: %w", err)
	}
	if user == nil {
		return nil, apperror.NotFound(apperror.CodeUserNotFound, "user not found")
	}
	return user, nil
}

// UpdateProfile changes email and login. A user may keep either value
// unchanged; only values held by another user conflict.
func (s *UserService) UpdateProfile(ctx context.Context, userID, email, login string) (*model.User, error) {
	taken, err := s.users.UserEmailTaken(ctx, email, userID)
	if err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}
	if taken {
		return nil, apperror.Conflict(apperror.CodeEmailConflict, "email already in use")
	}

	taken, err = s.users.UserLoginTaken(ctx, login, userID)
	if err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}
	if taken {
		return nil, apperror.Conflict(apperror.CodeLoginConflict, "login already in use")
	}

	user, err := s.users.FindUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}
	if user == nil {
		return nil, apperror.NotFound(apperror.CodeUserNotFound, "user not found")
	}

	user.Email = email
	user.Login = login
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}

	s.logger.Info("profile updated", slog.String("userID", userID))
	return user, nil
}

// UpdatePassword verifies the current password and stores a hash of the new
// one. A wrong current password is forbidden, not unauthorized: the caller
// is authenticated, they just failed the re-check.
func (s *UserService) UpdatePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.users.FindUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	if user == nil {
		return apperror.NotFound(apperror.CodeUserNotFound, "user not found")
	}

	if !s.passwords.Verify(user.PasswordHash, currentPassword) {
		return apperror.Forbidden("current password is incorrect")
	}

	hash, err := s.passwords.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	if err := s.users.UpdateUserPassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("updating password: %w", err)
	}

	s.logger.Info("password updated", slog.String("userID", userID))
	return nil
}

// Delete removes the account; decks, cards and share tokens cascade at the
// store level.
func (s *UserService) Delete(ctx context.Context, userID string) error {
	user, err := s.users.FindUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	if user == nil {
		return apperror.NotFound(apperror.CodeUserNotFound, "user not found")
	}

	if err := s.users.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	s.logger.Info("user deleted", slog.String("userID", userID))
	return nil
}
