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

var _ repository.CardRepository = (*DB)(nil)

const cardColumns = `id, deck_id, question, answer, is_learned, created_at, updated_at`

// CreateCard inserts a new card, generating the id and timestamps in place.
func (db *DB) CreateCard(ctx context.Context, card *model.Card) error {
	now := time.Now().UTC()
	card.ID = uuid.NewString()
	card.CreatedAt = now
	card.UpdatedAt = now

	_, err := db.q(ctx).ExecContext(ctx,
		`INSERT INTO cards (id, deck_id, question, answer, is_learned, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		card.ID, card.DeckID, card.Question, card.Answer, card.IsLearned,
		card.CreatedAt, card.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting card: %w", err)
	}
	return nil
}

// FindCardByID returns the card with the given id, or nil if absent. The
// caller compares the card's DeckID against the requested deck; a mismatch
// is treated exactly like absence.
func (db *DB) FindCardByID(ctx context.Context, id string) (*model.Card, error) {
	var c model.Card
	err := db.q(ctx).QueryRowContext(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE id = ?`, id,
	).Scan(&c.ID, &c.DeckID, &c.Question, &c.Answer, &c.IsLearned, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("sqlite: getting card %s: %w", id, err)
	}
	return &c, nil
}

// ListCardsByDeck returns one page of the deck's cards in creation order (ties
// broken by id for a stable window), plus the deck's total card count.
func (db *DB) ListCardsByDeck(ctx context.Context, deckID string, page repository.Page) ([]model.Card, int, error) {
	var total int
	err := db.q(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM cards WHERE deck_id = ?`, deckID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: counting cards: %w", err)
	}

	limit, offset := page.Size, page.Page*page.Size
	if limit <= 0 {
		return []model.Card{}, total, nil
	}

	rows, err := db.q(ctx).QueryContext(ctx,
		`SELECT `+cardColumns+` FROM cards
		 WHERE deck_id = ?
		 ORDER BY created_at ASC, id ASC
		 LIMIT ? OFFSET ?`,
		deckID, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: listing cards: %w", err)
	}
	defer rows.Close()

	cards, err := collectCards(rows, limit)
	if err != nil {
		return nil, 0, err
	}
	return cards, total, nil
}

// ListAllCardsByDeck returns every card of the deck in creation order, for
// loading a study session.
func (db *DB) ListAllCardsByDeck(ctx context.Context, deckID string) ([]model.Card, error) {
	rows, err := db.q(ctx).QueryContext(ctx,
		`SELECT `+cardColumns+` FROM cards
		 WHERE deck_id = ?
		 ORDER BY created_at ASC, id ASC`,
		deckID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing cards: %w", err)
	}
	defer rows.Close()

	return collectCards(rows, 0)
}

// CountLearnedCards returns how many of the deck's cards are flagged learned.
// Always a fresh aggregate over the rows, never derived from a single card.
func (db *DB) CountLearnedCards(ctx context.Context, deckID string) (int, error) {
	var count int
	err := db.q(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM cards WHERE deck_id = ? AND is_learned = 1`, deckID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting learned cards: %w", err)
	}
	return count, nil
}

// CopyCardsToDeck deep-copies every card of sourceDeckID into targetDeckID.
// Copies get fresh ids and timestamps and start unlearned; learned state
// never crosses an import. Returns the number of cards copied.
func (db *DB) CopyCardsToDeck(ctx context.Context, sourceDeckID, targetDeckID string) (int, error) {
	source, err := db.ListAllCardsByDeck(ctx, sourceDeckID)
	if err != nil {
		return 0, err
	}

	copied := 0
	for _, src := range source {
		card := &model.Card{
			DeckID:   targetDeckID,
			Question: src.Question,
			Answer:   src.Answer,
		}
		if err := db.CreateCard(ctx, card); err != nil {
			return 0, fmt.Errorf("sqlite: copying card %s: %w", src.ID, err)
		}
		copied++
	}
	return copied, nil
}

// UpdateCard persists question, answer and learned flag, stamping updated_at.
func (db *DB) UpdateCard(ctx context.Context, card *model.Card) error {
	card.UpdatedAt = time.Now().UTC()

	result, err := db.q(ctx).ExecContext(ctx,
		`UPDATE cards SET question = ?, answer = ?, is_learned = ?, updated_at = ?
		 WHERE id = ?`,
		card.Question, card.Answer, card.IsLearned, card.UpdatedAt, card.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating card %s: %w", card.ID, err)
	}
	return checkAffected(result, apperror.NotFound(apperror.CodeCardNotFound, "card not found"))
}

// DeleteCard removes the card.
func (db *DB) DeleteCard(ctx context.Context, id string) error {
	result, err := db.q(ctx).ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting card %s: %w", id, err)
	}
	return checkAffected(result, apperror.NotFound(apperror.CodeCardNotFound, "card not found"))
}

func collectCards(rows *sql.Rows, capacity int) ([]model.Card, error) {
	cards := make([]model.Card, 0, capacity)
	for rows.Next() {
		var c model.Card
		if err := rows.Scan(&c.ID, &c.DeckID, &c.Question, &c.Answer, &c.IsLearned,
			&c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning card row: %w", err)
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating cards: %w", err)
	}
	return cards, nil
}
