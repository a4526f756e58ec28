package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/akozyrev/memocards/internal/apperror"
	"github.com/akozyrev/memocards/internal/model"
	"github.com/akozyrev/memocards/internal/repository"
)

// DeckLimit caps how many decks a single user may own.
const DeckLimit = 30

// DeckPage is one page of a user's deck collection.
type DeckPage struct {
	Decks      []model.Deck
	Page       int
	Size       int
	TotalItems int
	TotalPages int
}

// DeckService handles deck lifecycle and enforces the per-user deck limit
// and per-user name uniqueness.
type DeckService struct {
	decks  repository.DeckRepository
	logger *slog.Logger
}

func NewDeckService(decks repository.DeckRepository, logger *slog.Logger) *DeckService {
	return &DeckService{
		decks:  decks,
		logger: logger,
	}
}

// Create adds a deck for the caller. The limit and name checks run before
// the insert; the UNIQUE index backs up the name check under concurrency.
func (s *DeckService) Create(ctx context.Context, callerUserID, name, description string) (*model.Deck, error) {
	count, err := s.decks.CountDecksByUser(ctx, callerUserID)
	if err != nil {
		return nil, fmt.Errorf("creating deck: %w", err)
	}
	if count >= DeckLimit {
		return nil, apperror.LimitExceeded(apperror.CodeDeckLimit,
			fmt.Sprintf("deck limit of %d reached", DeckLimit))
	}

	taken, err := s.decks.DeckNameTaken(ctx, callerUserID, name, "")
	if err != nil {
		return nil, fmt.Errorf("creating deck: %w", err)
	}
	if taken {
		return nil, apperror.Conflict(apperror.CodeDeckConflict, "deck name already used")
	}

	deck := &model.Deck{
		UserID:      callerUserID,
		Name:        name,
		Description: description,
	}
	if err := s.decks.CreateDeck(ctx, deck); err != nil {
		return nil, fmt.Errorf("creating deck: %w", err)
	}

	s.logger.Info("deck created",
		slog.String("deckID", deck.ID),
		slog.String("userID", callerUserID),
	)
	return deck, nil
}

// List returns one page of the caller's decks, newest first.
func (s *DeckService) List(ctx context.Context, callerUserID string, page repository.Page) (*DeckPage, error) {
	decks, total, err := s.decks.ListDecksByUser(ctx, callerUserID, page)
	if err != nil {
		return nil, fmt.Errorf("listing decks: %w", err)
	}
	return &DeckPage{
		Decks:      decks,
		Page:       page.Page,
		Size:       page.Size,
		TotalItems: total,
		TotalPages: totalPages(total, page.Size),
	}, nil
}

// Get returns the deck if the caller owns it. A deck that exists but belongs
// to someone else is forbidden, not hidden.
func (s *DeckService) Get(ctx context.Context, callerUserID, deckID string) (*model.Deck, error) {
	return s.ownedDeck(ctx, callerUserID, deckID)
}

// Update renames or re-describes the caller's deck. Keeping the current name
// is not a conflict.
func (s *DeckService) Update(ctx context.Context, callerUserID, deckID, name, description string) (*model.Deck, error) {
	deck, err := s.ownedDeck(ctx, callerUserID, deckID)
	if err != nil {
		return nil, err
	}

	taken, err := s.decks.DeckNameTaken(ctx, callerUserID, name, deckID)
	if err != nil {
		return nil, fmt.Errorf("updating deck: %w", err)
	}
	if taken {
		return nil, apperror.Conflict(apperror.CodeDeckConflict, "deck name already used")
	}

	deck.Name = name
	deck.Description = description
	if err := s.decks.UpdateDeck(ctx, deck); err != nil {
		return nil, fmt.Errorf("updating deck: %w", err)
	}

	s.logger.Info("deck updated", slog.String("deckID", deckID))
	return deck, nil
}

// Delete removes the caller's deck along with its cards and share tokens.
func (s *DeckService) Delete(ctx context.Context, callerUserID, deckID string) error {
	if _, err := s.ownedDeck(ctx, callerUserID, deckID); err != nil {
		return err
	}
	if err := s.decks.DeleteDeck(ctx, deckID); err != nil {
		return fmt.Errorf("deleting deck: %w", err)
	}

	s.logger.Info("deck deleted", slog.String("deckID", deckID))
	return nil
}

// ownedDeck loads a deck and gates on ownership: absent decks are not found,
// foreign decks are forbidden.
func (s *DeckService) ownedDeck(ctx context.Context, callerUserID, deckID string) (*model.Deck, error) {
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

// totalPages is ceil(total/size); zero when the page size is not positive.
func totalPages(total, size int) int {
	if size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}
