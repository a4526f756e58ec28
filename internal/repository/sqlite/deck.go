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

var _ repository.DeckRepository = (*DB)(nil)

const deckColumns = `id, user_id, name, description, cards_count, learned_percent,
	last_studied, created_at, updated_at`

// CreateDeck inserts a new deck, generating the id and timestamps in place.
// The UNIQUE(user_id, name) index closes the check-then-insert race: a
// duplicate submitted concurrently with the service-level check still comes
// back as deck_conflict.
func (db *DB) CreateDeck(ctx context.Context, deck *model.Deck) error {
	now := time.Now().UTC()
	deck.ID = uuid.NewString()
	deck.CreatedAt = now
	deck.UpdatedAt = now

	_, err := db.q(ctx).ExecContext(ctx,
		`INSERT INTO decks (id, user_id, name, description, cards_count, learned_percent,
		                    last_studied, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		deck.ID, deck.UserID, deck.Name, deck.Description, deck.CardsCount,
		deck.LearnedPercent, nullableTime(deck.LastStudied), deck.CreatedAt, deck.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "decks.") {
			return apperror.Conflict(apperror.CodeDeckConflict, "deck name already used")
		}
		return fmt.Errorf("sqlite: inserting deck: %w", err)
	}
	return nil
}

// FindDeckByID returns the deck with the given id, or nil if absent.
func (db *DB) FindDeckByID(ctx context.Context, id string) (*model.Deck, error) {
	row := db.q(ctx).QueryRowContext(ctx,
		`SELECT `+deckColumns+` FROM decks WHERE id = ?`, id)

	deck, err := scanDeck(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("sqlite: getting deck %s: %w", id, err)
	}
	return deck, nil
}

// ListDecksByUser returns one page of the user's decks, newest first, plus the
// user's total deck count.
func (db *DB) ListDecksByUser(ctx context.Context, userID string, page repository.Page) ([]model.Deck, int, error) {
	total, err := db.CountDecksByUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	limit, offset := page.Size, page.Page*page.Size
	if limit <= 0 {
		return []model.Deck{}, total, nil
	}

	rows, err := db.q(ctx).QueryContext(ctx,
		`SELECT `+deckColumns+` FROM decks
		 WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: listing decks: %w", err)
	}
	defer rows.Close()

	decks := make([]model.Deck, 0, limit)
	for rows.Next() {
		deck, err := scanDeck(rows.Scan)
		if err != nil {
			return nil, 0, fmt.Errorf("sqlite: scanning deck row: %w", err)
		}
		decks = append(decks, *deck)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("sqlite: iterating decks: %w", err)
	}

	return decks, total, nil
}

// CountDecksByUser returns how many decks the user owns.
func (db *DB) CountDecksByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := db.q(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM decks WHERE user_id = ?`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting decks: %w", err)
	}
	return count, nil
}

// DeckNameTaken reports whether the user owns a deck with the given
// name, excluding excludeDeckID ("" to match any deck).
func (db *DB) DeckNameTaken(ctx context.Context, userID, name, excludeDeckID string) (bool, error) {
	var count int
	err := db.q(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM decks WHERE user_id = ? AND name = ? AND id != ?`,
		userID, name, excludeDeckID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking deck name: %w", err)
	}
	return count > 0, nil
}

// UpdateDeck persists every mutable deck field, stamping updated_at.
func (db *DB) UpdateDeck(ctx context.Context, deck *model.Deck) error {
	deck.UpdatedAt = time.Now().UTC()

	result, err := db.q(ctx).ExecContext(ctx,
		`UPDATE decks
		 SET name = ?, description = ?, cards_count = ?, learned_percent = ?,
		     last_studied = ?, updated_at = ?
		 WHERE id = ?`,
		deck.Name, deck.Description, deck.CardsCount, deck.LearnedPercent,
		nullableTime(deck.LastStudied), deck.UpdatedAt, deck.ID,
	)
	if err != nil {
		if isUniqueViolation(err, "decks.") {
			return apperror.Conflict(apperror.CodeDeckConflict, "deck name already used")
		}
		return fmt.Errorf("sqlite: updating deck %s: %w", deck.ID, err)
	}
	return checkAffected(result, apperror.NotFound(apperror.CodeDeckNotFound, "deck not found"))
}

// DeleteDeck removes the deck; cards and share tokens cascade.
func (db *DB) DeleteDeck(ctx context.Context, id string) error {
	result, err := db.q(ctx).ExecContext(ctx, `DELETE FROM decks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting deck %s: %w", id, err)
	}
	return checkAffected(result, apperror.NotFound(apperror.CodeDeckNotFound, "deck not found"))
}

// scanDeck reads one deck row. scan is either sql.Row.Scan or sql.Rows.Scan.
func scanDeck(scan func(dest ...any) error) (*model.Deck, error) {
	var d model.Deck
	var lastStudied sql.NullTime
	err := scan(&d.ID, &d.UserID, &d.Name, &d.Description, &d.CardsCount,
		&d.LearnedPercent, &lastStudied, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if lastStudied.Valid {
		t := lastStudied.Time
		d.LastStudied = &t
	}
	return &d, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
