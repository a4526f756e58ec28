package model

import "time"

// Deck is a named collection of cards owned by one user.
//
// CardsCount and LearnedPercent are denormalized: they are recomputed from the
// card rows inside the same transaction as every mutation that affects them,
// never cached in memory across calls. LastStudied is nil until the first
// study answer is recorded.
type Deck struct {
	ID             string     `json:"id"             db:"id"`
	UserID         string     `json:"-"              db:"user_id"`
	Name           string     `json:"name"           db:"name"`
	Description    string     `json:"description"    db:"description"`
	CardsCount     int        `json:"cardCount"      db:"cards_count"`
	LearnedPercent int        `json:"learnedPercent" db:"learned_percent"`
	LastStudied    *time.Time `json:"lastStudied"    db:"last_studied"`
	CreatedAt      time.Time  `json:"createdAt"      db:"created_at"`
	UpdatedAt      time.Time  `json:"updatedAt"      db:"updated_at"`
}
