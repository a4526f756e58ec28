package model

// DeckShare maps an opaque share token to a deck. A deck may have any number
// of live tokens; deleting the deck cascades to its tokens, but deleting a
// token never touches the deck.
type DeckShare struct {
	Token  string `json:"token"  db:"token"`
	DeckID string `json:"deckId" db:"deck_id"`
}
