package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/akozyrev/memocards/internal/apperror"
	"github.com/akozyrev/memocards/internal/model"
	"github.com/akozyrev/memocards/internal/repository"
)

// ShareLink is a freshly minted share token and the path it resolves at.
type ShareLink struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

// SharedDeckPreview is what a token holder sees before importing: enough to
// decide, nothing about the owner.
type SharedDeckPreview struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	CardCount   int    `json:"cardCount"`
}

// ShareService mints, resolves and revokes share tokens, and imports shared
// decks. Tokens are unguessable random UUIDs; anyone holding one may preview
// and import, only the owner may mint or revoke.
type ShareService struct {
	shares  repository.ShareRepository
	decks   repository.DeckRepository
	cards   repository.CardRepository
	deckSvc *DeckService
	tx      repository.TxRunner
	baseURL string
	logger  *slog.Logger
}

func NewShareService(
	shares repository.ShareRepository,
	decks repository.DeckRepository,
	cards repository.CardRepository,
	deckSvc *DeckService,
	tx repository.TxRunner,
	baseURL string,
	logger *slog.Logger,
) *ShareService {
	return &ShareService{
		shares:  shares,
		decks:   decks,
		cards:   cards,
		deckSvc: deckSvc,
		tx:      tx,
		baseURL: baseURL,
		logger:  logger,
	}
}

// GenerateToken mints a new share token for the caller's deck. Tokens stack:
// minting another one leaves earlier tokens valid.
func (s *ShareService) GenerateToken(ctx context.Context, callerUserID, deckID string) (*ShareLink, error) {
	if _, err := s.ownedDeck(ctx, callerUserID, deckID); err != nil {
		return nil, err
	}

	share := &model.DeckShare{
		Token:  uuid.NewString(),
		DeckID: deckID,
	}
	if err := s.shares.CreateShare(ctx, share); err != nil {
		return nil, fmt.Errorf("creating share token: %w", err)
	}

	s.logger.Info("share token created", slog.String("deckID", deckID))
	return &ShareLink{
		Token: share.Token,
		URL:   s.baseURL + "/api/v1/share/" + share.Token,
	}, nil
}

// GetSharedDeck resolves a token to a deck preview.
func (s *ShareService) GetSharedDeck(ctx context.Context, token string) (*SharedDeckPreview, error) {
	deck, err := s.resolveDeck(ctx, token)
	if err != nil {
		return nil, err
	}
	return &SharedDeckPreview{
		Name:        deck.Name,
		Description: deck.Description,
		CardCount:   deck.CardsCount,
	}, nil
}

// Import deep-copies a shared deck into the caller's collection, optionally
// under a new name/description (nil keeps the source values). The new deck
// goes through the caller's own limit and name checks; copied cards get
// fresh ids and start unlearned. The source deck is never touched.
func (s *ShareService) Import(ctx context.Context, callerUserID, token string, newName, newDescription *string) (*model.Deck, error) {
	source, err := s.resolveDeck(ctx, token)
	if err != nil {
		return nil, err
	}

	name, description := source.Name, source.Description
	if newName != nil {
		name = *newName
	}
	if newDescription != nil {
		description = *newDescription
	}

	var imported *model.Deck
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		deck, err := s.deckSvc.Create(ctx, callerUserID, name, description)
		if err != nil {
			return err
		}

		copied, err := s.cards.CopyCardsToDeck(ctx, source.ID, deck.ID)
		if err != nil {
			return fmt.Errorf("copying cards: %w", err)
		}

		deck.CardsCount = copied
		if err := s.decks.UpdateDeck(ctx, deck); err != nil {
			return fmt.Errorf("updating imported deck: %w", err)
		}
		imported = deck
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("deck imported",
		slog.String("sourceDeckID", source.ID),
		slog.String("deckID", imported.ID),
		slog.String("userID", callerUserID),
		slog.Int("cards", imported.CardsCount),
	)
	return imported, nil
}

// RevokeToken deletes a single share token of the caller's deck. Other
// tokens of the same deck stay live.
func (s *ShareService) RevokeToken(ctx context.Context, callerUserID, deckID, token string) error {
	if _, err := s.ownedDeck(ctx, callerUserID, deckID); err != nil {
		return err
	}

	mappedDeckID, err := s.shares.FindDeckIDByToken(ctx, token)
	if err != nil {
		return fmt.Errorf("resolving share token: %w", err)
	}
	if mappedDeckID != deckID {
		return apperror.NotFound(apperror.CodeTokenNotFound, "share token not found")
	}

	if err := s.shares.DeleteShare(ctx, token); err != nil {
		return fmt.Errorf("revoking share token: %w", err)
	}

	s.logger.Info("share token revoked", slog.String("deckID", deckID))
	return nil
}

// resolveDeck maps a token to its deck. A token that was never issued is
// token_not_found; a token whose deck is gone is deck_not_found.
func (s *ShareService) resolveDeck(ctx context.Context, token string) (*model.Deck, error) {
	deckID, err := s.shares.FindDeckIDByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("resolving share token: %w", err)
	}
	if deckID == "" {
		return nil, apperror.NotFound(apperror.CodeTokenNotFound, "share token not found")
	}

	deck, err := s.decks.FindDeckByID(ctx, deckID)
	if err != nil {
		return nil, fmt.Errorf("fetching shared deck: %w", err)
	}
	if deck == nil {
		return nil, apperror.NotFound(apperror.CodeDeckNotFound, "shared deck not found")
	}
	return deck, nil
}

func (s *ShareService) ownedDeck(ctx context.Context, callerUserID, deckID string) (*model.Deck, error) {
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
