package main

import (
	"bytes"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_PrintsHexKey(t *testing.T) {
	var out bytes.Buffer

	require.NoError(t, run(&out, ""))

	key, err := hex.DecodeString(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Len(t, key, 32)
}

func TestRun_AppendsToEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PASSPANEL_DB_PATH=vault.db"), 0o600))

	var out bytes.Buffer
	require.NoError(t, run(&out, path))

	env, err := godotenv.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "vault.db", env["PASSPANEL_DB_PATH"])
	assert.Len(t, env[keyVar], 64)
	assert.Contains(t, out.String(), path)
}

func TestRun_CreatesEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.env")

	require.NoError(t, run(&bytes.Buffer{}, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestRun_RefusesToReplaceKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	original := keyVar + "=" + strings.Repeat("ab", 32) + "\n"
	require.NoError(t, os.WriteFile(path, []byte(original), 0o600))

	err := run(&bytes.Buffer{}, path)

	require.ErrorIs(t, err, errKeyPresent)
	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, original, string(data))
}
