package token

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	testCases := []struct {
		name          string
		length        int
		expectedError error
	}{
		{name: "default length", length: DefaultLength},
		{name: "minimum length", length: MinLength},
		{name: "long token", length: 512},
		{name: "too short", length: MinLength - 1, expectedError: ErrTooShort},
		{name: "zero", length: 0, expectedError: ErrTooShort},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tok, err := Generate(tc.length)

			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				assert.Empty(t, tok)

				return
			}

			require.NoError(t, err)
			assert.Len(t, tok, tc.length)

			for _, r := range tok {
				assert.True(t, strings.ContainsRune(alphabet, r), "unexpected character %q", r)
			}
		})
	}
}

func TestGenerateIsRandom(t *testing.T) {
	seen := make(map[string]struct{})

	for range 100 {
		tok, err := Generate(DefaultLength)
		require.NoError(t, err)

		_, dup := seen[tok]
		require.False(t, dup, "duplicate token %s", tok)

		seen[tok] = struct{}{}
	}
}

func TestHashAndVerify(t *testing.T) {
	tok, err := Generate(DefaultLength)
	require.NoError(t, err)

	hash, err := Hash(tok)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	testCases := []struct {
		name          string
		token         string
		hash          string
		expected      bool
		expectedError error
	}{
		{name: "matching token", token: tok, hash: hash, expected: true},
		{name: "other token", token: tok + "x", hash: hash, expected: false},
		{name: "empty hash", token: tok, hash: "", expectedError: ErrEmptyHash},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			match, err := Verify(tc.token, tc.hash)

			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expected, match)
		})
	}

	_, err = Verify(tok, "not-a-hash")
	require.Error(t, err)
}
