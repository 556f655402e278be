package services

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher hashes with bcrypt and still accepts hashes stored by the
// old unsalted SHA-256 scheme.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, storedHash string) bool
	NeedsRehash(storedHash string) bool
}

// MaxPasswordBytes is bcrypt's input limit.
const MaxPasswordBytes = 72

type passwordHasher struct {
	cost int
}

func NewPasswordHasher(cost int) PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &passwordHasher{cost: cost}
}

func (h *passwordHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", invalidInput("password must be at most 72 bytes")
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// Verify never fails loudly: a malformed or foreign hash is just "no match"
// for bcrypt and the legacy comparison still runs.
func (h *passwordHasher) Verify(password, storedHash string) bool {
	if storedHash == "" {
		return false
	}
	if bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(password)) == nil {
		return true
	}
	legacy := LegacyHash(password)
	return subtle.ConstantTimeCompare([]byte(legacy), []byte(strings.ToLower(storedHash))) == 1
}

func (h *passwordHasher) NeedsRehash(storedHash string) bool {
	cost, err := bcrypt.Cost([]byte(storedHash))
	if err != nil {
		return true
	}
	return cost < h.cost
}

// LegacyHash is the pre-bcrypt scheme: lowercase hex of SHA-256.
func LegacyHash(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}
