package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/akozyrev/memocards/internal/apperror"
	"github.com/akozyrev/memocards/internal/model"
	"github.com/akozyrev/memocards/internal/repository"
)

var _ repository.ShareRepository = (*DB)(nil)

// CreateShare persists a token → deck mapping. A deck may hold any number of
// live tokens.
func (db *DB) CreateShare(ctx context.Context, share *model.DeckShare) error {
	_, err := db.q(ctx).ExecContext(ctx,
		`INSERT INTO deck_shares (token, deck_id) VALUES (?, ?)`,
		share.Token, share.DeckID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting share token: %w", err)
	}
	return nil
}

// FindDeckIDByToken returns the deck id a token points at, or "" if the
// token does not exist. A token surviving its deck is impossible here (the
// FK cascades), but the service still re-checks the deck.
func (db *DB) FindDeckIDByToken(ctx context.Context, token string) (string, error) {
	var deckID string
	err := db.q(ctx).QueryRowContext(ctx,
		`SELECT deck_id FROM deck_shares WHERE token = ?`, token,
	).Scan(&deckID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("sqlite: looking up share token: %w", err)
	}
	return deckID, nil
}

// DeleteShare revokes a single token.
func (db *DB) DeleteShare(ctx context.Context, token string) error {
	result, err := db.q(ctx).ExecContext(ctx,
		`DELETE FROM deck_shares WHERE token = ?`, token)
	if err != nil {
		return fmt.Errorf("sqlite: deleting share token: %w", err)
	}
	return checkAffected(result, apperror.NotFound(apperror.CodeTokenNotFound, "share token not found"))
}
