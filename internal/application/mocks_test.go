package application_test

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/ericfisherdev/passpanel/internal/domain/model"
	"github.com/ericfisherdev/passpanel/internal/domain/port/driven"
)

// memKeyStore implements driven.MasterKeyStore in memory.
type memKeyStore struct {
	key     *model.MasterKey
	saves   int
	loadErr error
}

func (m *memKeyStore) Load(_ context.Context) (*model.MasterKey, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.key == nil {
		return nil, driven.ErrMasterKeyNotSet
	}
	k := *m.key
	return &k, nil
}

func (m *memKeyStore) Save(_ context.Context, key model.MasterKey) error {
	m.saves++
	m.key = &key
	return nil
}

// memCredentialStore implements driven.CredentialStore with the same error
// contract as the SQLite adapter.
type memCredentialStore struct {
	mu   sync.Mutex
	rows map[string]model.Credential
	err  error
}

func newMemCredentialStore() *memCredentialStore {
	return &memCredentialStore{rows: map[string]model.Credential{}}
}

func (m *memCredentialStore) Insert(_ context.Context, cred model.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.rows[cred.AppName]; ok {
		return driven.ErrCredentialExists
	}
	m.rows[cred.AppName] = cred
	return nil
}

func (m *memCredentialStore) Fetch(_ context.Context, appName string) (*model.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	cred, ok := m.rows[appName]
	if !ok {
		return nil, driven.ErrCredentialNotFound
	}
	return &cred, nil
}

func (m *memCredentialStore) Delete(_ context.Context, appName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.rows[appName]; !ok {
		return driven.ErrCredentialNotFound
	}
	delete(m.rows, appName)
	return nil
}

func (m *memCredentialStore) UpdatePassword(_ context.Context, appName, encrypted string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	cred, ok := m.rows[appName]
	if !ok {
		return driven.ErrCredentialNotFound
	}
	cred.EncryptedPassword = encrypted
	m.rows[appName] = cred
	return nil
}

func (m *memCredentialStore) ListAppNames(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	names := make([]string, 0, len(m.rows))
	for name := range m.rows {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *memCredentialStore) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	return len(m.rows), nil
}

// failingCipher fails every call.
type failingCipher struct{}

func (failingCipher) Encrypt(string) (string, error) { return "", errors.New("cipher down") }
func (failingCipher) Decrypt(string) (string, error) { return "", driven.ErrDecrypt }
