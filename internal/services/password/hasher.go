package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used for every stored password
const DefaultCost = 10

// MinLength is the minimum accepted plaintext password length
const MinLength = 6

// MaxBytes is the longest input bcrypt accepts. Longer passwords are
// truncated to this many bytes before hashing and before verifying.
const MaxBytes = 72

// ErrHashing is returned when a hash cannot be produced
var ErrHashing = errors.New("password hashing failed")

// Hasher produces and checks salted one-way password hashes
type Hasher struct {
	cost int
}

// New creates a Hasher with the given bcrypt cost.
// A cost outside bcrypt's accepted range falls back to DefaultCost.
func New(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash returns a bcrypt hash of plaintext with a random salt
func (h *Hasher) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(truncate(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrHashing, err)
	}
	return string(hash), nil
}

// Verify reports whether plaintext matches hash.
// A malformed hash is a mismatch, not an error.
func (h *Hasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), truncate(plaintext)) == nil
}

func truncate(plaintext string) []byte {
	b := []byte(plaintext)
	if len(b) > MaxBytes {
		b = b[:MaxBytes]
	}
	return b
}
