// Package keyfile persists the master-password verification material as a
// small JSON document on disk.
package keyfile

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/natefinch/atomic"

	"github.com/ericfisherdev/passpanel/internal/domain/model"
	"github.com/ericfisherdev/passpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.MasterKeyStore = (*Store)(nil)

// document is the on-disk layout. Both fields are URL-safe base64.
type document struct {
	DerivedKey string `json:"derived_key"`
	Salt       string `json:"salt"`
}

// Store reads and writes the master-key file at a fixed path.
type Store struct {
	path string
}

// NewStore creates a Store for the file at path. The file need not exist.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the material. Returns driven.ErrMasterKeyNotSet if the file does
// not exist.
func (s *Store) Load(_ context.Context) (*model.MasterKey, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, driven.ErrMasterKeyNotSet
	}
	if err != nil {
		return nil, fmt.Errorf("read master key file: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse master key file %s: %w", s.path, err)
	}

	derived, err := base64.URLEncoding.DecodeString(doc.DerivedKey)
	if err != nil {
		return nil, fmt.Errorf("decode derived_key: %w", err)
	}
	salt, err := base64.URLEncoding.DecodeString(doc.Salt)
	if err != nil {
		return nil, fmt.Errorf("decode salt: %w", err)
	}

	derived = unwrapLegacy(derived)

	if len(derived) != model.DerivedKeySize {
		return nil, fmt.Errorf("derived_key is %d bytes, want %d", len(derived), model.DerivedKeySize)
	}
	if len(salt) == 0 {
		return nil, errors.New("salt is empty")
	}

	return &model.MasterKey{DerivedKey: derived, Salt: salt}, nil
}

// legacyKeySize is the length of a derived key that was base64-encoded once
// more before being written, as older key files did.
var legacyKeySize = base64.URLEncoding.EncodedLen(model.DerivedKeySize)

// unwrapLegacy returns the raw key from a double-encoded derived_key and
// leaves anything else untouched for the size check.
func unwrapLegacy(derived []byte) []byte {
	if len(derived) != legacyKeySize {
		return derived
	}
	raw, err := base64.URLEncoding.DecodeString(string(derived))
	if err != nil || len(raw) != model.DerivedKeySize {
		return derived
	}
	return raw
}

// Save writes the material atomically; a crash never leaves a half-written file.
func (s *Store) Save(_ context.Context, key model.MasterKey) error {
	data, err := json.MarshalIndent(document{
		DerivedKey: base64.URLEncoding.EncodeToString(key.DerivedKey),
		Salt:       base64.URLEncoding.EncodeToString(key.Salt),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode master key: %w", err)
	}

	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write master key file %s: %w", s.path, err)
	}
	if err := os.Chmod(s.path, 0o600); err != nil {
		return fmt.Errorf("chmod master key file: %w", err)
	}

	return nil
}
