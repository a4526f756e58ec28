package model

import "time"

// Card is a question/answer pair belonging to exactly one deck.
// IsLearned flips on study answers and resets to false when the card is
// copied into another deck via a share import.
type Card struct {
	ID        string    `json:"id"        db:"id"`
	DeckID    string    `json:"-"         db:"deck_id"`
	Question  string    `json:"question"  db:"question"`
	Answer    string    `json:"answer"    db:"answer"`
	IsLearned bool      `json:"isLearned" db:"is_learned"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
