package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/akozyrev/memocards/internal/apperror"
)

func TestGetCardsEmptyDeck(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.registerUser(t, "alice")
	deck := env.createDeck(t, user.ID, "Go")

	cards, err := env.study.GetCards(ctx, user.ID, deck.ID)
	require.NoError(t, err)
	require.Empty(t, cards)
}

func TestProcessAnswerSingleCard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.registerUser(t, "alice")
	deck := env.createDeck(t, user.ID, "Go")
	card := env.createCard(t, user.ID, deck.ID, "q1")

	percent, err := env.study.ProcessAnswer(ctx, user.ID, deck.ID, card.ID, StatusRemembered)
	require.NoError(t, err)
	require.Equal(t, 100, percent)

	got, err := env.decks.Get(ctx, user.ID, deck.ID)
	require.NoError(t, err)
	require.Equal(t, 100, got.LearnedPercent)
	require.NotNil(t, got.LastStudied, "answering stamps last studied")

	percent, err = env.study.ProcessAnswer(ctx, user.ID, deck.ID, card.ID, StatusForgotten)
	require.NoError(t, err)
	require.Equal(t, 0, percent)
}

func TestProcessAnswerPercentIsFloored(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.registerUser(t, "alice")
	deck := env.createDeck(t, user.ID, "Go")
	env.fillDeck(t, user.ID, deck.ID, 3)

	cards, err := env.study.GetCards(ctx, user.ID, deck.ID)
	require.NoError(t, err)
	require.Len(t, cards, 3)

	// 1 of 3 learned: floor(100/3) = 33.
	percent, err := env.study.ProcessAnswer(ctx, user.ID, deck.ID, cards[0].ID, StatusRemembered)
	require.NoError(t, err)
	require.Equal(t, 33, percent)

	// 2 of 3 learned: floor(200/3) = 66.
	percent, err = env.study.ProcessAnswer(ctx, user.ID, deck.ID, cards[1].ID, StatusRemembered)
	require.NoError(t, err)
	require.Equal(t, 66, percent)

	// Repeating an answer is idempotent on the aggregate.
	percent, err = env.study.ProcessAnswer(ctx, user.ID, deck.ID, cards[1].ID, StatusRemembered)
	require.NoError(t, err)
	require.Equal(t, 66, percent)
}

func TestProcessAnswerAcceptsUppercaseStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.registerUser(t, "alice")
	deck := env.createDeck(t, user.ID, "Go")
	card := env.createCard(t, user.ID, deck.ID, "q1")

	// Clients serializing the status as an enum send it uppercase.
	percent, err := env.study.ProcessAnswer(ctx, user.ID, deck.ID, card.ID, "REMEMBERED")
	require.NoError(t, err)
	require.Equal(t, 100, percent)

	percent, err = env.study.ProcessAnswer(ctx, user.ID, deck.ID, card.ID, "FORGOTTEN")
	require.NoError(t, err)
	require.Equal(t, 0, percent)
}

func TestProcessAnswerInvalidStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.registerUser(t, "alice")
	deck := env.createDeck(t, user.ID, "Go")
	card := env.createCard(t, user.ID, deck.ID, "q1")

	_, err := env.study.ProcessAnswer(ctx, user.ID, deck.ID, card.ID, "maybe")
	require.ErrorIs(t, err, apperror.ErrValidation)
}

func TestStudyOwnershipGates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.registerUser(t, "alice")
	bob := env.registerUser(t, "bob")
	deck := env.createDeck(t, alice.ID, "Go")
	card := env.createCard(t, alice.ID, deck.ID, "q1")

	_, err := env.study.GetCards(ctx, bob.ID, deck.ID)
	require.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = env.study.ProcessAnswer(ctx, bob.ID, deck.ID, card.ID, StatusRemembered)
	require.ErrorIs(t, err, apperror.ErrForbidden)

	got, err := env.decks.Get(ctx, alice.ID, deck.ID)
	require.NoError(t, err)
	require.Equal(t, 0, got.LearnedPercent, "foreign answer leaves progress untouched")
	require.Nil(t, got.LastStudied)
}

func TestProcessAnswerCrossDeckCard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.registerUser(t, "alice")
	deckA := env.createDeck(t, user.ID, "A")
	deckB := env.createDeck(t, user.ID, "B")
	card := env.createCard(t, user.ID, deckA.ID, "q1")

	_, err := env.study.ProcessAnswer(ctx, user.ID, deckB.ID, card.ID, StatusRemembered)
	require.ErrorIs(t, err, apperror.ErrNotFound)
}
