package model

import "time"

// UserID uniquely identifies a registered user
type UserID string

// User is a registered account
type User struct {
	ID           UserID
	Username     string // unique, case-sensitive
	Email        string // unique, case-sensitive
	PasswordHash string // bcrypt hash, never returned to clients
	CreatedAt    time.Time
}
