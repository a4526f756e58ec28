package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/akozyrev/memocards/internal/apperror"
	"github.com/akozyrev/memocards/internal/model"
	"github.com/akozyrev/memocards/internal/repository"
)

var _ repository.UserRepository = (*DB)(nil)

// CreateUser inserts a new user, generating the id and timestamps in place.
// The email/login unique indexes back up the service-level conflict checks;
// a constraint hit here is translated into the matching conflict error so a
// lost race still surfaces as email_conflict/login_conflict.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := db.q(ctx).ExecContext(ctx,
		`INSERT INTO users (id, email, login, password_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.Login, user.PasswordHash, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if conflictErr := userConflict(err); conflictErr != nil {
			return conflictErr
		}
		return fmt.Errorf("sqlite: inserting user: %w", err)
	}
	return nil
}

// FindUserByID returns the user with the given id, or nil if absent.
func (db *DB) FindUserByID(ctx context.Context, id string) (*model.User, error) {
	return db.scanUser(db.q(ctx).QueryRowContext(ctx,
		`SELECT id, email, login, password_hash, created_at, updated_at
		 FROM users WHERE id = ?`, id))
}

// FindUserByLogin returns the user with the given login, or nil if absent.
func (db *DB) FindUserByLogin(ctx context.Context, login string) (*model.User, error) {
	return db.scanUser(db.q(ctx).QueryRowContext(ctx,
		`SELECT id, email, login, password_hash, created_at, updated_at
		 FROM users WHERE login = ?`, login))
}

func (db *DB) scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.Login, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("sqlite: scanning user: %w", err)
	}
	return &u, nil
}

// UserEmailTaken reports whether a user other than excludeUserID holds the
// email. Pass "" to match any user.
func (db *DB) UserEmailTaken(ctx context.Context, email, excludeUserID string) (bool, error) {
	return db.userExists(ctx, "email", email, excludeUserID)
}

// UserLoginTaken reports whether a user other than excludeUserID holds the
// login. Pass "" to match any user.
func (db *DB) UserLoginTaken(ctx context.Context, login, excludeUserID string) (bool, error) {
	return db.userExists(ctx, "login", login, excludeUserID)
}

func (db *DB) userExists(ctx context.Context, column, value, excludeUserID string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM users WHERE ` + column + ` = ? AND id != ?`
	err := db.q(ctx).QueryRowContext(ctx, query, value, excludeUserID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking user %s: %w", column, err)
	}
	return count > 0, nil
}

// UpdateUser persists email and login changes, stamping updated_at.
func (db *DB) UpdateUser(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now().UTC()

	result, err := db.q(ctx).ExecContext(ctx,
		`UPDATE users SET email = ?, login = ?, updated_at = ? WHERE id = ?`,
		user.Email, user.Login, user.UpdatedAt, user.ID,
	)
	if err != nil {
		if conflictErr := userConflict(err); conflictErr != nil {
			return conflictErr
		}
		return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
	}
	return checkAffected(result, apperror.NotFound(apperror.CodeUserNotFound, "user not found"))
}

// UpdateUserPassword replaces the stored hash.
func (db *DB) UpdateUserPassword(ctx context.Context, userID, passwordHash string) error {
	result, err := db.q(ctx).ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		passwordHash, time.Now().UTC(), userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating password for user %s: %w", userID, err)
	}
	return checkAffected(result, apperror.NotFound(apperror.CodeUserNotFound, "user not found"))
}

// DeleteUser removes the user; decks, cards and share tokens cascade.
func (db *DB) DeleteUser(ctx context.Context, id string) error {
	result, err := db.q(ctx).ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting user %s: %w", id, err)
	}
	return checkAffected(result, apperror.NotFound(apperror.CodeUserNotFound, "user not found"))
}

func userConflict(err error) error {
	switch {
	case isUniqueViolation(err, "users.email"):
		return apperror.Conflict(apperror.CodeEmailConflict, "email already in use")
	case isUniqueViolation(err, "users.login"):
		return apperror.Conflict(apperror.CodeLoginConflict, "login already in use")
	}
	return nil
}

func checkAffected(result sql.Result, notFound error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return notFound
	}
	return nil
}
