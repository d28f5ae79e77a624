// Package token creates random API tokens and the argon2id hashes stored in
// the configuration to check them.
package token

import (
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/alexedwards/argon2id"
)

const (
	// DefaultLength gives ~190 bits of entropy with the default alphabet.
	DefaultLength = 32
	// MinLength is the shortest token Generate accepts.
	MinLength = 16

	// bytes above maxUnbiased are rejected so every character is equally likely
	maxUnbiased = 255 - (256 % len(alphabet))
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

var (
	// ErrTooShort is returned when a token shorter than MinLength is requested.
	ErrTooShort = errors.New("token too short")
	// ErrEmptyHash is returned when a token is checked against an empty hash.
	ErrEmptyHash = errors.New("token hash is empty")
)

// Generate returns a random token of length characters from [A-Za-z0-9].
func Generate(length int) (string, error) {
	if length < MinLength {
		return "", fmt.Errorf("%w: %d < %d", ErrTooShort, length, MinLength)
	}

	out := make([]byte, 0, length)
	buf := make([]byte, length+length/4) //nolint:mnd

	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}

		for _, b := range buf {
			if int(b) > maxUnbiased {
				continue
			}

			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == length {
				break
			}
		}
	}

	return string(out), nil
}

// Hash returns the argon2id hash of tok in PHC string format.
func Hash(tok string) (string, error) {
	hash, err := argon2id.CreateHash(tok, argon2id.DefaultParams)
	if err != nil {
		return "", fmt.Errorf("failed to hash token: %w", err)
	}

	return hash, nil
}

// Verify reports whether tok matches hash.
func Verify(tok, hash string) (bool, error) {
	if hash == "" {
		return false, ErrEmptyHash
	}

	match, err := argon2id.ComparePasswordAndHash(tok, hash)
	if err != nil {
		return false, fmt.Errorf("failed to compare token: %w", err)
	}

	return match, nil
}
