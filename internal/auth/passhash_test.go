package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpperOnlyLatin(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"ascii lowercase", "user@example.com", "USER@EXAMPLE.COM"},
		{"already uppercase", "PASSWORD", "PASSWORD"},
		{"latin-1 accents", "pässwörd", "PÄSSWÖRD"},
		{"non-latin passes through", "пароль", "пароль"},
		{"mixed latin and non-latin", "abcпароль", "ABCпароль"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UpperOnlyLatin(tt.input))
		})
	}
}

func TestCalculateShaPassHash_Deterministic(t *testing.T) {
	a := CalculateShaPassHash("A@B.COM", "SECRET")
	b := CalculateShaPassHash("A@B.COM", "SECRET")

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
	assert.Regexp(t, "^[0-9a-f]{64}$", a, "stored form is lowercase hex")
}

func TestVerifyPassword(t *testing.T) {
	stored := CalculateShaPassHash("A@B.COM", "SECRET")

	assert.True(t, VerifyPassword("a@b.com", "secret", stored), "normalization must fold case")
	assert.True(t, VerifyPassword("A@B.COM", "SECRET", stored))

	// Any single-character mutation must fail.
	assert.False(t, VerifyPassword("a@b.com", "secre1", stored))
	assert.False(t, VerifyPassword("a@b.con", "secret", stored))
	assert.False(t, VerifyPassword("a@b.com", "", stored))
	assert.False(t, VerifyPassword("", "", stored))
}

func TestVerifyPassword_MalformedStoredDigest(t *testing.T) {
	// Malformed stored digests are not an error, just a mismatch.
	assert.False(t, VerifyPassword("a@b.com", "secret", "not-a-digest"))
	assert.False(t, VerifyPassword("a@b.com", "secret", ""))
}
