// Package repository defines the persistence interfaces the service layer
// depends on. Absence is reported as (nil, nil), never as an error; the
// service decides which domain error an absence means.
package repository

import (
	"context"

	"github.com/akozyrev/memocards/internal/model"
)

// Page is a pagination window. Page is 0-indexed; the row offset is
// Page*Size.
type Page struct {
	Page int
	Size int
}

// TxRunner scopes a function to one database transaction. Repository calls
// made with the context passed to fn join that transaction; nested InTx calls
// join the outer transaction instead of opening a new one.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	FindUserByID(ctx context.Context, id string) (*model.User, error)
	FindUserByLogin(ctx context.Context, login string) (*model.User, error)
	// UserEmailTaken and UserLoginTaken report whether a user OTHER than
	// excludeUserID holds the value; pass "" to match any user.
	UserEmailTaken(ctx context.Context, email, excludeUserID string) (bool, error)
	UserLoginTaken(ctx context.Context, login, excludeUserID string) (bool, error)
	UpdateUser(ctx context.Context, user *model.User) error
	UpdateUserPassword(ctx context.Context, userID, passwordHash string) error
	DeleteUser(ctx context.Context, id string) error
}

type DeckRepository interface {
	CreateDeck(ctx context.Context, deck *model.Deck) error
	FindDeckByID(ctx context.Context, id string) (*model.Deck, error)
	// ListDecksByUser returns one page of the user's decks, newest first,
	// plus the total deck count for that user.
	ListDecksByUser(ctx context.Context, userID string, page Page) ([]model.Deck, int, error)
	CountDecksByUser(ctx context.Context, userID string) (int, error)
	// DeckNameTaken reports whether the user owns a deck with the given
	// name, excluding excludeDeckID ("" to match any deck).
	DeckNameTaken(ctx context.Context, userID, name, excludeDeckID string) (bool, error)
	UpdateDeck(ctx context.Context, deck *model.Deck) error
	DeleteDeck(ctx context.Context, id string) error
}

type CardRepository interface {
	CreateCard(ctx context.Context, card *model.Card) error
	FindCardByID(ctx context.Context, id string) (*model.Card, error)
	// ListCardsByDeck returns one page of the deck's cards ordered by
	// creation time then id, plus the total card count for that deck.
	ListCardsByDeck(ctx context.Context, deckID string, page Page) ([]model.Card, int, error)
	ListAllCardsByDeck(ctx context.Context, deckID string) ([]model.Card, error)
	CountLearnedCards(ctx context.Context, deckID string) (int, error)
	// CopyCardsToDeck deep-copies every card of sourceDeckID into
	// targetDeckID with fresh ids and timestamps and IsLearned reset to
	// false, returning the number of cards copied.
	CopyCardsToDeck(ctx context.Context, sourceDeckID, targetDeckID string) (int, error)
	UpdateCard(ctx context.Context, card *model.Card) error
	DeleteCard(ctx context.Context, id string) error
}

type ShareRepository interface {
	CreateShare(ctx context.Context, share *model.DeckShare) error
	// FindDeckIDByToken returns the deck id a token points at, or "" if the
	// token does not exist.
	FindDeckIDByToken(ctx context.Context, token string) (string, error)
	DeleteShare(ctx context.Context, token string) error
}
