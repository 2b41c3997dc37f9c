// Package cryptox wraps the one-way password hashing used by the credential
// store. Hashes are bcrypt strings, which embed their own random salt and
// cost factor, so nothing besides the hash needs to be persisted.
package cryptox

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost hashes in tens of milliseconds on current hardware.
const DefaultCost = 10

// ErrEmptyPassword is returned when attempting to hash an empty password.
var ErrEmptyPassword = errors.New("password cannot be empty")

// dummyHashes caches one throwaway hash per bcrypt cost.
var (
	dummyMu     sync.Mutex
	dummyHashes = map[int][]byte{}
)

func normalizeCost(cost int) int {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return DefaultCost
	}
	return cost
}

// HashPassword derives a salted bcrypt hash of password using cost.
// A cost outside bcrypt's accepted range falls back to DefaultCost.
func HashPassword(password []byte, cost int) (string, error) {
	if len(password) == 0 {
		return "", ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword(password, normalizeCost(cost))
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored bcrypt hash.
// The comparison is constant-time with respect to the hash content.
func CheckPassword(hash string, password []byte) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), password) == nil
}

// PrepareBurn builds the throwaway hash for cost ahead of the first
// BurnPasswordCheck, so the first lookup miss is not slower than the rest.
func PrepareBurn(cost int) {
	_ = dummyHash(cost)
}

// BurnPasswordCheck compares password against a throwaway hash of the given
// cost so that a lookup miss costs the same time as a real password check.
// cost must match the cost stored hashes were created with.
func BurnPasswordCheck(password []byte, cost int) {
	_ = bcrypt.CompareHashAndPassword(dummyHash(cost), password)
}

func dummyHash(cost int) []byte {
	cost = normalizeCost(cost)

	dummyMu.Lock()
	defer dummyMu.Unlock()
	if h, ok := dummyHashes[cost]; ok {
		return h
	}
	h, err := bcrypt.GenerateFromPassword([]byte("devconnector-timing-equaliser"), cost)
	if err != nil {
		// Only reachable with an out-of-range cost, which normalizeCost rules out.
		panic(fmt.Sprintf("cryptox: dummy hash: %v", err))
	}
	dummyHashes[cost] = h
	return h
}
