package keyfile

import (
	"bytes"
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/passpanel/internal/application"
	"github.com/ericfisherdev/passpanel/internal/domain/model"
	"github.com/ericfisherdev/passpanel/internal/domain/port/driven"
)

func TestStore_LoadMissing(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "master.json"))

	key, err := s.Load(context.Background())
	assert.Nil(t, key)
	assert.ErrorIs(t, err, driven.ErrMasterKeyNotSet)
}

func TestStore_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "master.json")
	s := NewStore(path)
	ctx := context.Background()

	want := model.MasterKey{
		DerivedKey: bytes.Repeat([]byte{0xab}, model.DerivedKeySize),
		Salt:       bytes.Repeat([]byte{0x01}, model.SaltSize),
	}
	require.NoError(t, s.Save(ctx, want))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want.DerivedKey, got.DerivedKey)
	assert.Equal(t, want.Salt, got.Salt)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"derived_key"`)
	assert.Contains(t, string(raw), `"salt"`)

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}
}

func TestStore_LoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "master.json")
	s := NewStore(path)

	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	_, err := s.Load(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, driven.ErrMasterKeyNotSet)

	require.NoError(t, os.WriteFile(path, []byte(`{"derived_key":"AAAA","salt":"AAAA"}`), 0o600))
	_, err = s.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "derived_key")
}

func TestStore_LoadDoubleEncodedKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "master.json")
	salt := bytes.Repeat([]byte{0x07}, model.SaltSize)
	derived := application.Derive("hunter2", salt)

	inner := base64.URLEncoding.EncodeToString(derived)
	doc := `{"derived_key":"` + base64.URLEncoding.EncodeToString([]byte(inner)) +
		`","salt":"` + base64.URLEncoding.EncodeToString(salt) + `"}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	got, err := NewStore(path).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, derived, got.DerivedKey)
	assert.True(t, application.VerifyPassphrase("hunter2", *got))
	assert.False(t, application.VerifyPassphrase("hunter3", *got))
}

func TestStore_LoadWrongKeySize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "master.json")
	doc := `{"derived_key":"` + base64.URLEncoding.EncodeToString(bytes.Repeat([]byte{1}, 44)) +
		`","salt":"AAAA"}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	_, err := NewStore(path).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want 32")
}
