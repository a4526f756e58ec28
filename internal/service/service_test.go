package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/akozyrev/memocards/internal/auth"
	"github.com/akozyrev/memocards/internal/model"
	"github.com/akozyrev/memocards/internal/repository/sqlite"
)

// testEnv wires every service against one in-memory database, the same
// graph the server builds. Going through the real store keeps the
// transactional invariants honest.
type testEnv struct {
	db    *sqlite.DB
	users *UserService
	decks *DeckService
	cards *CardService
	study *StudyService
	share *ShareService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	passwords := auth.NewPasswordServiceForTest(4)

	env := &testEnv{db: db}
	env.users = NewUserService(db, passwords, logger)
	env.decks = NewDeckService(db, logger)
	env.cards = NewCardService(db, db, db, logger)
	env.study = NewStudyService(db, db, db, logger)
	env.share = NewShareService(db, db, db, env.decks, db, "", logger)
	return env
}

func (e *testEnv) registerUser(t *testing.T, login string) *model.User {
	t.Helper()
	user, err := e.users.Register(context.Background(),
		login+"@example.com", login, "Str0ng!pass")
	require.NoError(t, err)
	return user
}

func (e *testEnv) createDeck(t *testing.T, userID, name string) *model.Deck {
	t.Helper()
	deck, err := e.decks.Create(context.Background(), userID, name, "")
	require.NoError(t, err)
	return deck
}

func (e *testEnv) createCard(t *testing.T, userID, deckID, question string) *model.Card {
	t.Helper()
	card, err := e.cards.Create(context.Background(), userID, deckID, question, "answer")
	require.NoError(t, err)
	return card
}

func (e *testEnv) fillDeck(t *testing.T, userID, deckID string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		e.createCard(t, userID, deckID, fmt.Sprintf("question %d", i))
	}
}
