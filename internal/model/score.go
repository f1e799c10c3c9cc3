package model

import "time"

// ScoreID uniquely identifies a score record
type ScoreID string

// Score is a single scoreboard entry belonging to a user
type Score struct {
	ID         ScoreID
	OwnerID    UserID // back-reference to the owning user
	PlayerName string
	Score      int64
	CreatedAt  time.Time
	UpdatedAt  *time.Time // nil until the first update
}
