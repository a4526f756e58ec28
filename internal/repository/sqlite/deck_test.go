package sqlite

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/akozyrev/memocards/internal/apperror"
	"github.com/akozyrev/memocards/internal/model"
	"github.com/akozyrev/memocards/internal/repository"
)

func TestCreateDeckDuplicateNameSameUser(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "a@example.com", "alice")
	createTestDeck(t, db, user.ID, "Go")

	err := db.CreateDeck(ctx, &model.Deck{UserID: user.ID, Name: "Go"})
	require.ErrorIs(t, err, apperror.ErrConflict)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, apperror.CodeDeckConflict, appErr.Code)
}

func TestCreateDeckSameNameDifferentUsers(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "a@example.com", "alice")
	bob := createTestUser(t, db, "b@example.com", "bob")

	createTestDeck(t, db, alice.ID, "Go")
	// Uniqueness is per owner, not global.
	createTestDeck(t, db, bob.ID, "Go")
}

func TestListDecksByUserPagination(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "a@example.com", "alice")
	other := createTestUser(t, db, "b@example.com", "bob")
	createTestDeck(t, db, other.ID, "foreign")

	for i := 0; i < 5; i++ {
		createTestDeck(t, db, user.ID, fmt.Sprintf("deck-%d", i))
	}

	decks, total, err := db.ListDecksByUser(ctx, user.ID, repository.Page{Page: 0, Size: 2})
	require.NoError(t, err)
	require.Equal(t, 5, total)
	require.Len(t, decks, 2)

	decks, total, err = db.ListDecksByUser(ctx, user.ID, repository.Page{Page: 2, Size: 2})
	require.NoError(t, err)
	require.Equal(t, 5, total)
	require.Len(t, decks, 1)

	// Past the end: empty page, same total.
	decks, total, err = db.ListDecksByUser(ctx, user.ID, repository.Page{Page: 5, Size: 2})
	require.NoError(t, err)
	require.Equal(t, 5, total)
	require.Empty(t, decks)
}

func TestUpdateDeckPersistsProgress(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "a@example.com", "alice")
	deck := createTestDeck(t, db, user.ID, "Go")

	now := time.Now().UTC().Truncate(time.Second)
	deck.Name = "Golang"
	deck.Description = "stdlib"
	deck.CardsCount = 4
	deck.LearnedPercent = 50
	deck.LastStudied = &now
	require.NoError(t, db.UpdateDeck(ctx, deck))

	got, err := db.FindDeckByID(ctx, deck.ID)
	require.NoError(t, err)
	require.Equal(t, "Golang", got.Name)
	require.Equal(t, "stdlib", got.Description)
	require.Equal(t, 4, got.CardsCount)
	require.Equal(t, 50, got.LearnedPercent)
	require.NotNil(t, got.LastStudied)
	require.WithinDuration(t, now, *got.LastStudied, time.Second)
}

func TestUpdateDeckAbsent(t *testing.T) {
	db := newTestDB(t)
	err := db.UpdateDeck(context.Background(), &model.Deck{ID: "nope", Name: "x"})
	require.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDeleteDeckCascades(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "a@example.com", "alice")
	deck := createTestDeck(t, db, user.ID, "Go")
	card := createTestCard(t, db, deck.ID, "q")
	require.NoError(t, db.CreateShare(ctx, &model.DeckShare{Token: "tok", DeckID: deck.ID}))

	require.NoError(t, db.DeleteDeck(ctx, deck.ID))

	gotCard, err := db.FindCardByID(ctx, card.ID)
	require.NoError(t, err)
	require.Nil(t, gotCard)

	deckID, err := db.FindDeckIDByToken(ctx, "tok")
	require.NoError(t, err)
	require.Empty(t, deckID)
}

func TestDeckNameTaken(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "a@example.com", "alice")
	deck := createTestDeck(t, db, user.ID, "Go")

	taken, err := db.DeckNameTaken(ctx, user.ID, "Go", "")
	require.NoError(t, err)
	require.True(t, taken)

	// Renaming a deck to its own name is allowed.
	taken, err = db.DeckNameTaken(ctx, user.ID, "Go", deck.ID)
	require.NoError(t, err)
	require.False(t, taken)
}
