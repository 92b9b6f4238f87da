package application_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/passpanel/internal/application"
)

func TestGeneratePassword_LengthAndPool(t *testing.T) {
	for _, n := range []int{0, 1, 8, 12, 32, 200} {
		pw, err := application.GeneratePassword(n)
		require.NoError(t, err)
		assert.Len(t, pw, n)
		for _, r := range pw {
			assert.True(t, strings.ContainsRune(application.PasswordPool, r), "unexpected rune %q", r)
		}
	}
}

func TestGeneratePassword_Negative(t *testing.T) {
	_, err := application.GeneratePassword(-1)
	assert.Error(t, err)
}

func TestGeneratePassword_Varies(t *testing.T) {
	a, err := application.GeneratePassword(32)
	require.NoError(t, err)
	b, err := application.GeneratePassword(32)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestPasswordPool(t *testing.T) {
	assert.Len(t, application.PasswordPool, 52+10+32)
	assert.Contains(t, application.PasswordPool, "`")
	assert.Contains(t, application.PasswordPool, `\`)
}

func TestClampPasswordLength(t *testing.T) {
	assert.Equal(t, 8, application.ClampPasswordLength(0))
	assert.Equal(t, 8, application.ClampPasswordLength(-5))
	assert.Equal(t, 12, application.ClampPasswordLength(12))
	assert.Equal(t, 32, application.ClampPasswordLength(33))
}
