package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/akozyrev/memocards/internal/apperror"
	"github.com/akozyrev/memocards/internal/repository"
)

func TestGenerateTokenAndPreview(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.registerUser(t, "alice")
	deck, err := env.decks.Create(ctx, user.ID, "Go", "language basics")
	require.NoError(t, err)
	env.fillDeck(t, user.ID, deck.ID, 2)

	link, err := env.share.GenerateToken(ctx, user.ID, deck.ID)
	require.NoError(t, err)
	require.NotEmpty(t, link.Token)
	require.Equal(t, "/api/v1/share/"+link.Token, link.URL)

	preview, err := env.share.GetSharedDeck(ctx, link.Token)
	require.NoError(t, err)
	require.Equal(t, "Go", preview.Name)
	require.Equal(t, "language basics", preview.Description)
	require.Equal(t, 2, preview.CardCount)
}

func TestGenerateTokenRequiresOwnership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.registerUser(t, "alice")
	bob := env.registerUser(t, "bob")
	deck := env.createDeck(t, alice.ID, "Go")

	_, err := env.share.GenerateToken(ctx, bob.ID, deck.ID)
	require.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestGetSharedDeckUnknownToken(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.share.GetSharedDeck(context.Background(), "no-such-token")
	require.ErrorIs(t, err, apperror.ErrNotFound)

	// A token that was never issued is a token problem, not a deck problem.
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, apperror.CodeTokenNotFound, appErr.Code)
}

func TestImportDeepCopies(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.registerUser(t, "alice")
	bob := env.registerUser(t, "bob")
	source, err := env.decks.Create(ctx, alice.ID, "Go", "basics")
	require.NoError(t, err)
	env.fillDeck(t, alice.ID, source.ID, 2)

	cards, err := env.study.GetCards(ctx, alice.ID, source.ID)
	require.NoError(t, err)
	_, err = env.study.ProcessAnswer(ctx, alice.ID, source.ID, cards[0].ID, StatusRemembered)
	require.NoError(t, err)

	link, err := env.share.GenerateToken(ctx, alice.ID, source.ID)
	require.NoError(t, err)

	imported, err := env.share.Import(ctx, bob.ID, link.Token, nil, nil)
	require.NoError(t, err)
	require.Equal(t, bob.ID, imported.UserID)
	require.Equal(t, "Go", imported.Name)
	require.Equal(t, 2, imported.CardsCount)
	require.NotEqual(t, source.ID, imported.ID)

	// Copies start unlearned regardless of source progress.
	importedCards, err := env.study.GetCards(ctx, bob.ID, imported.ID)
	require.NoError(t, err)
	require.Len(t, importedCards, 2)
	for _, c := range importedCards {
		require.False(t, c.IsLearned)
	}

	// Bob editing his copy leaves Alice's deck alone.
	_, err = env.cards.Update(ctx, bob.ID, imported.ID, importedCards[0].ID, "changed", "changed")
	require.NoError(t, err)
	err = env.cards.Delete(ctx, bob.ID, imported.ID, importedCards[1].ID)
	require.NoError(t, err)

	sourceAfter, err := env.decks.Get(ctx, alice.ID, source.ID)
	require.NoError(t, err)
	require.Equal(t, 2, sourceAfter.CardsCount)
	sourceCards, err := env.study.GetCards(ctx, alice.ID, source.ID)
	require.NoError(t, err)
	require.Len(t, sourceCards, 2)
	require.Equal(t, "question 0", sourceCards[0].Question)
}

func TestImportWithRename(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.registerUser(t, "alice")
	bob := env.registerUser(t, "bob")
	source, err := env.decks.Create(ctx, alice.ID, "Go", "basics")
	require.NoError(t, err)

	// Bob already has a deck named "Go"; renaming on import avoids the
	// conflict.
	env.createDeck(t, bob.ID, "Go")

	link, err := env.share.GenerateToken(ctx, alice.ID, source.ID)
	require.NoError(t, err)

	name := "Go (from Alice)"
	imported, err := env.share.Import(ctx, bob.ID, link.Token, &name, nil)
	require.NoError(t, err)
	require.Equal(t, "Go (from Alice)", imported.Name)
	require.Equal(t, "basics", imported.Description, "description falls back to the source")
}

func TestImportHitsImporterLimits(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.registerUser(t, "alice")
	bob := env.registerUser(t, "bob")
	source := env.createDeck(t, alice.ID, "Go")
	link, err := env.share.GenerateToken(ctx, alice.ID, source.ID)
	require.NoError(t, err)

	for i := 0; i < DeckLimit; i++ {
		env.createDeck(t, bob.ID, fmt.Sprintf("deck-%d", i))
	}

	_, err = env.share.Import(ctx, bob.ID, link.Token, nil, nil)
	require.ErrorIs(t, err, apperror.ErrLimitExceeded)

	page, err := env.decks.List(ctx, bob.ID, repository.Page{Page: 0, Size: 1})
	require.NoError(t, err)
	require.Equal(t, DeckLimit, page.TotalItems, "failed import creates nothing")
}

func TestImportNameConflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.registerUser(t, "alice")
	bob := env.registerUser(t, "bob")
	source := env.createDeck(t, alice.ID, "Go")
	env.createDeck(t, bob.ID, "Go")

	link, err := env.share.GenerateToken(ctx, alice.ID, source.ID)
	require.NoError(t, err)

	_, err = env.share.Import(ctx, bob.ID, link.Token, nil, nil)
	require.ErrorIs(t, err, apperror.ErrConflict)
}

func TestRevokeToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.registerUser(t, "alice")
	bob := env.registerUser(t, "bob")
	deck := env.createDeck(t, alice.ID, "Go")

	link1, err := env.share.GenerateToken(ctx, alice.ID, deck.ID)
	require.NoError(t, err)
	link2, err := env.share.GenerateToken(ctx, alice.ID, deck.ID)
	require.NoError(t, err)

	err = env.share.RevokeToken(ctx, bob.ID, deck.ID, link1.Token)
	require.ErrorIs(t, err, apperror.ErrForbidden)

	require.NoError(t, env.share.RevokeToken(ctx, alice.ID, deck.ID, link1.Token))

	_, err = env.share.GetSharedDeck(ctx, link1.Token)
	require.ErrorIs(t, err, apperror.ErrNotFound)

	// The second token still resolves.
	_, err = env.share.GetSharedDeck(ctx, link2.Token)
	require.NoError(t, err)

	// Revoking a token through a deck it does not belong to fails.
	other := env.createDeck(t, alice.ID, "Other")
	err = env.share.RevokeToken(ctx, alice.ID, other.ID, link2.Token)
	require.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDeleteDeckInvalidatesTokens(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.registerUser(t, "alice")
	deck := env.createDeck(t, alice.ID, "Go")

	link, err := env.share.GenerateToken(ctx, alice.ID, deck.ID)
	require.NoError(t, err)

	require.NoError(t, env.decks.Delete(ctx, alice.ID, deck.ID))

	// The cascade removed the token row with the deck.
	_, err = env.share.GetSharedDeck(ctx, link.Token)
	require.ErrorIs(t, err, apperror.ErrNotFound)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, apperror.CodeTokenNotFound, appErr.Code)
}
