package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/akozyrev/memocards/internal/apperror"
	"github.com/akozyrev/memocards/internal/model"
	"github.com/akozyrev/memocards/internal/repository"
)

// Answer statuses accepted by ProcessAnswer. Matching is case-insensitive,
// so REMEMBERED/FORGOTTEN from enum-serializing clients work too.
const (
	StatusRemembered = "remembered"
	StatusForgotten  = "forgotten"
)

// StudyService runs the review workflow: serving a deck's cards for a
// session and recording answers.
type StudyService struct {
	cards  repository.CardRepository
	decks  repository.DeckRepository
	tx     repository.TxRunner
	logger *slog.Logger
}

func NewStudyService(cards repository.CardRepository, decks repository.DeckRepository, tx repository.TxRunner, logger *slog.Logger) *StudyService {
	return &StudyService{
		cards:  cards,
		decks:  decks,
		tx:     tx,
		logger: logger,
	}
}

// GetCards returns every card of the deck for a study session, in creation
// order. An empty deck yields an empty session, not an error.
func (s *StudyService) GetCards(ctx context.Context, callerUserID, deckID string) ([]model.Card, error) {
	if _, err := s.ownedDeck(ctx, callerUserID, deckID); err != nil {
		return nil, err
	}

	cards, err := s.cards.ListAllCardsByDeck(ctx, deckID)
	if err != nil {
		return nil, fmt.Errorf("loading study cards: %w", err)
	}
	return cards, nil
}

// ProcessAnswer records a single answer: the card's learned flag follows the
// status, the deck's learned percent is recomputed from a fresh aggregate,
// and last_studied moves to now. All three writes share one transaction.
// Returns the deck's new learned percent.
func (s *StudyService) ProcessAnswer(ctx context.Context, callerUserID, deckID, cardID, status string) (int, error) {
	var learned bool
	switch {
	case strings.EqualFold(status, StatusRemembered):
		learned = true
	case strings.EqualFold(status, StatusForgotten):
		learned = false
	default:
		return 0, apperror.Validation(map[string]string{
			"status": "must be 'remembered' or 'forgotten'",
		})
	}

	var percent int
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		deck, err := s.ownedDeck(ctx, callerUserID, deckID)
		if err != nil {
			return err
		}

		card, err := s.cards.FindCardByID(ctx, cardID)
		if err != nil {
			return fmt.Errorf("fetching card: %w", err)
		}
		if card == nil || card.DeckID != deckID {
			return apperror.NotFound(apperror.CodeCardNotFound, "card not found")
		}

		card.IsLearned = learned
		if err := s.cards.UpdateCard(ctx, card); err != nil {
			return fmt.Errorf("recording answer: %w", err)
		}

		learned, err := s.cards.CountLearnedCards(ctx, deckID)
		if err != nil {
			return fmt.Errorf("counting learned cards: %w", err)
		}
		percent = learnedPercent(learned, deck.CardsCount)

		now := time.Now().UTC()
		deck.LearnedPercent = percent
		deck.LastStudied = &now
		if err := s.decks.UpdateDeck(ctx, deck); err != nil {
			return fmt.Errorf("updating deck progress: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("answer recorded",
		slog.String("deckID", deckID),
		slog.String("cardID", cardID),
		slog.String("status", status),
		slog.Int("learnedPercent", percent),
	)
	return percent, nil
}

func (s *StudyService) ownedDeck(ctx context.Context, callerUserID, deckID string) (*model.Deck, error) {
	deck, err := s.decks.FindDeckByID(ctx, deckID)
	if err != nil {
		return nil, fmt.Errorf("fetching deck: %w", err)
	}
	if deck == nil {
		return nil, apperror.NotFound(apperror.CodeDeckNotFound, "deck not found")
	}
	if deck.UserID != callerUserID {
		return nil, apperror.Forbidden("deck belongs to another user")
	}
	return deck, nil
}

// learnedPercent is floor(learned*100/total); an empty deck is 0%, never a
// division by zero.
func learnedPercent(learned, total int) int {
	if total == 0 {
		return 0
	}
	return learned * 100 / total
}
