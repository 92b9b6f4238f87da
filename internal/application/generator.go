package application

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Character classes of the generated-password pool.
const (
	asciiLetters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits       = "0123456789"
	punctuation  = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
)

// PasswordPool is every character GeneratePassword may emit.
const PasswordPool = asciiLetters + digits + punctuation

// Bounds offered by the generator view.
const (
	MinPasswordLength     = 8
	MaxPasswordLength     = 32
	DefaultPasswordLength = 12
)

var poolSize = big.NewInt(int64(len(PasswordPool)))

// GeneratePassword returns length characters drawn uniformly from
// PasswordPool using crypto/rand.
func GeneratePassword(length int) (string, error) {
	if length < 0 {
		return "", fmt.Errorf("password length must not be negative, got %d", length)
	}

	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, poolSize)
		if err != nil {
			return "", fmt.Errorf("draw random index: %w", err)
		}
		out[i] = PasswordPool[n.Int64()]
	}
	return string(out), nil
}

// ClampPasswordLength forces n into [MinPasswordLength, MaxPasswordLength].
func ClampPasswordLength(n int) int {
	return max(MinPasswordLength, min(n, MaxPasswordLength))
}
