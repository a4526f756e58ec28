package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/akozyrev/memocards/internal/apperror"
	"github.com/akozyrev/memocards/internal/model"
	"github.com/akozyrev/memocards/internal/repository"
)

// CardLimit caps how many cards a single deck may hold.
const CardLimit = 30

// CardPage is one page of a deck's cards.
type CardPage struct {
	Cards      []model.Card
	Page       int
	Size       int
	TotalItems int
	TotalPages int
}

// CardService handles card lifecycle inside a deck. Creates and deletes run
// in a transaction so the deck's cards_count never drifts from the card rows.
type CardService struct {
	cards  repository.CardRepository
	decks  repository.DeckRepository
	tx     repository.TxRunner
	logger *slog.Logger
}

func NewCardService(cards repository.CardRepository, decks repository.DeckRepository, tx repository.TxRunner, logger *slog.Logger) *CardService {
	return &CardService{
		cards:  cards,
		decks:  decks,
		tx:     tx,
		logger: logger,
	}
}

// List returns one page of the deck's cards in creation order.
func (s *CardService) List(ctx context.Context, callerUserID, deckID string, page repository.Page) (*CardPage, error) {
	if _, err := s.ownedDeck(ctx, callerUserID, deckID); err != nil {
		return nil, err
	}

	cards, total, err := s.cards.ListCardsByDeck(ctx, deckID, page)
	if err != nil {
		return nil, fmt.Errorf("listing cards: %w", err)
	}
	return &CardPage{
		Cards:      cards,
		Page:       page.Page,
		Size:       page.Size,
		TotalItems: total,
		TotalPages: totalPages(total, page.Size),
	}, nil
}

// Create adds a card to the deck and bumps the deck's card count, both in
// one transaction. New cards always start unlearned.
func (s *CardService) Create(ctx context.Context, callerUserID, deckID, question, answer string) (*model.Card, error) {
	var card *model.Card
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		deck, err := s.ownedDeck(ctx, callerUserID, deckID)
		if err != nil {
			return err
		}
		if deck.CardsCount >= CardLimit {
			return apperror.LimitExceeded(apperror.CodeCardLimit,
				fmt.Sprintf("card limit of %d reached", CardLimit))
		}

		card = &model.Card{
			DeckID:   deckID,
			Question: question,
			Answer:   answer,
		}
		if err := s.cards.CreateCard(ctx, card); err != nil {
			return fmt.Errorf("creating card: %w", err)
		}

		deck.CardsCount++
		if err := s.decks.UpdateDeck(ctx, deck); err != nil {
			return fmt.Errorf("updating deck card count: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("card created",
		slog.String("cardID", card.ID),
		slog.String("deckID", deckID),
	)
	return card, nil
}

// Update rewrites the card's question and answer. The learned flag is only
// touched by the study workflow.
func (s *CardService) Update(ctx context.Context, callerUserID, deckID, cardID, question, answer string) (*model.Card, error) {
	if _, err := s.ownedDeck(ctx, callerUserID, deckID); err != nil {
		return nil, err
	}
	card, err := s.cardInDeck(ctx, deckID, cardID)
	if err != nil {
		return nil, err
	}

	card.Question = question
	card.Answer = answer
	if err := s.cards.UpdateCard(ctx, card); err != nil {
		return nil, fmt.Errorf("updating card: %w", err)
	}

	s.logger.Info("card updated", slog.String("cardID", cardID))
	return card, nil
}

// Delete removes a card and drops the deck's card count, both in one
// transaction. The count never goes below zero.
func (s *CardService) Delete(ctx context.Context, callerUserID, deckID, cardID string) error {
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		deck, err := s.ownedDeck(ctx, callerUserID, deckID)
		if err != nil {
			return err
		}
		if _, err := s.cardInDeck(ctx, deckID, cardID); err != nil {
			return err
		}

		if err := s.cards.DeleteCard(ctx, cardID); err != nil {
			return fmt.Errorf("deleting card: %w", err)
		}

		if deck.CardsCount > 0 {
			deck.CardsCount--
		}
		if err := s.decks.UpdateDeck(ctx, deck); err != nil {
			return fmt.Errorf("updating deck card count: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("card deleted", slog.String("cardID", cardID))
	return nil
}

// ownedDeck mirrors DeckService's ownership gate so card operations fail the
// same way deck operations do.
func (s *CardService) ownedDeck(ctx context.Context, callerUserID, deckID string) (*model.Deck, error) {
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

// cardInDeck loads a card and checks it belongs to the deck in the URL. A
// real card addressed through the wrong deck is reported as absent.
func (s *CardService) cardInDeck(ctx context.Context, deckID, cardID string) (*model.Card, error) {
	card, err := s.cards.FindCardByID(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("fetching card: %w", err)
	}
	if card == nil || card.DeckID != deckID {
		return nil, apperror.NotFound(apperror.CodeCardNotFound, "card not found")
	}
	return card, nil
}
