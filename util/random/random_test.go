package random

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeqLengthAndCharset(t *testing.T) {
	s := Seq(32)
	assert.Len(t, s, 32)
	for _, r := range s {
		ok := (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		assert.True(t, ok, "unexpected rune %q", r)
	}
	assert.NotEqual(t, Seq(32), Seq(32))
}

func TestBase32UsesTotpAlphabet(t *testing.T) {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"

	s := Base32(32)
	assert.Len(t, s, 32)
	for _, r := range s {
		assert.True(t, strings.ContainsRune(alphabet, r), "unexpected rune %q", r)
	}
	assert.NotEqual(t, Base32(32), Base32(32))
}
