package application

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"sync"

	"golang.org/x/crypto/pbkdf2"

	"github.com/ericfisherdev/passpanel/internal/domain/model"
	"github.com/ericfisherdev/passpanel/internal/domain/port/driven"
)

// KDFIterations is the PBKDF2-HMAC-SHA256 iteration count for the master password.
const KDFIterations = 100_000

// Setup errors.
var (
	ErrPassphraseEmpty    = errors.New("master password must not be empty")
	ErrPassphraseMismatch = errors.New("master passwords do not match")
	ErrAlreadyConfigured  = errors.New("master password is already set up")
)

// Derive computes the 32-byte verification key for passphrase and salt.
func Derive(passphrase string, salt []byte) []byte {
	return pbkdf2.Key([]byte(passphrase), salt, KDFIterations, model.DerivedKeySize, sha256.New)
}

// VerifyPassphrase recomputes the derived key and compares it with the stored
// one in constant time.
func VerifyPassphrase(passphrase string, key model.MasterKey) bool {
	return subtle.ConstantTimeCompare(Derive(passphrase, key.Salt), key.DerivedKey) == 1
}

// Gate guards the vault behind the master password. There is no lockout;
// every guess is checked.
type Gate struct {
	store driven.MasterKeyStore
	rand  io.Reader

	// mu serializes Setup so two first-run submissions cannot both persist.
	mu sync.Mutex
}

// NewGate creates a Gate backed by store.
func NewGate(store driven.MasterKeyStore) *Gate {
	return &Gate{store: store, rand: rand.Reader}
}

// Configured reports whether master-key material has been persisted.
func (g *Gate) Configured(ctx context.Context) (bool, error) {
	_, err := g.store.Load(ctx)
	if errors.Is(err, driven.ErrMasterKeyNotSet) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load master key: %w", err)
	}
	return true, nil
}

// Setup creates the master-key material on first run. Nothing is written when
// validation fails or material already exists.
func (g *Gate) Setup(ctx context.Context, passphrase, confirm string) error {
	if passphrase == "" || confirm == "" {
		return ErrPassphraseEmpty
	}
	if passphrase != confirm {
		return ErrPassphraseMismatch
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	configured, err := g.Configured(ctx)
	if err != nil {
		return err
	}
	if configured {
		return ErrAlreadyConfigured
	}

	salt := make([]byte, model.SaltSize)
	if _, err := io.ReadFull(g.rand, salt); err != nil {
		return fmt.Errorf("generate salt: %w", err)
	}

	key := model.MasterKey{DerivedKey: Derive(passphrase, salt), Salt: salt}
	if err := g.store.Save(ctx, key); err != nil {
		return fmt.Errorf("save master key: %w", err)
	}
	return nil
}

// Verify checks passphrase against the stored material. Returns
// driven.ErrMasterKeyNotSet before Setup has run.
func (g *Gate) Verify(ctx context.Context, passphrase string) (bool, error) {
	key, err := g.store.Load(ctx)
	if err != nil {
		return false, err
	}
	return VerifyPassphrase(passphrase, *key), nil
}
