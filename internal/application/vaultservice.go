package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/ericfisherdev/passpanel/internal/domain/model"
	"github.com/ericfisherdev/passpanel/internal/domain/port/driven"
)

// ValidationError reports a rejected form field. Nothing is written when one
// is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// RevealedCredential is a credential with its password decrypted.
type RevealedCredential struct {
	AppName  string
	Username string
	Password string
}

// Summary describes the vault contents without decrypting anything.
type Summary struct {
	Count    int
	AppNames []string
}

// VaultService combines the credential store and the cipher into the
// operations the UI offers. Plaintext passwords never reach the store.
type VaultService struct {
	store  driven.CredentialStore
	cipher driven.Cipher
}

// NewVaultService creates a VaultService with the required dependencies.
func NewVaultService(store driven.CredentialStore, cipher driven.Cipher) *VaultService {
	return &VaultService{store: store, cipher: cipher}
}

// Add encrypts password and stores a new credential. Returns
// driven.ErrCredentialExists if appName is already stored.
func (s *VaultService) Add(ctx context.Context, appName, username, password string) error {
	appName = strings.TrimSpace(appName)
	username = strings.TrimSpace(username)

	switch {
	case appName == "":
		return &ValidationError{Field: "app_name", Message: "application is required"}
	case username == "":
		return &ValidationError{Field: "user_name", Message: "user name is required"}
	case password == "":
		return &ValidationError{Field: "password", Message: "password is required"}
	}

	encrypted, err := s.cipher.Encrypt(password)
	if err != nil {
		return fmt.Errorf("encrypt password for %q: %w", appName, err)
	}

	return s.store.Insert(ctx, model.Credential{
		AppName:           appName,
		Username:          username,
		EncryptedPassword: encrypted,
	})
}

// Reveal fetches and decrypts the credential for appName. A failed decryption
// is returned wrapping driven.ErrDecrypt and is not recoverable.
func (s *VaultService) Reveal(ctx context.Context, appName string) (*RevealedCredential, error) {
	cred, err := s.store.Fetch(ctx, appName)
	if err != nil {
		return nil, err
	}

	password, err := s.cipher.Decrypt(cred.EncryptedPassword)
	if err != nil {
		return nil, fmt.Errorf("reveal %q: %w", appName, err)
	}

	return &RevealedCredential{
		AppName:  cred.AppName,
		Username: cred.Username,
		Password: password,
	}, nil
}

// ChangePassword replaces the password of an existing credential after
// checking the confirmation matches.
func (s *VaultService) ChangePassword(ctx context.Context, appName, password, confirm string) error {
	switch {
	case appName == "":
		return &ValidationError{Field: "app_name", Message: "select an account"}
	case password == "":
		return &ValidationError{Field: "password", Message: "new password is required"}
	case password != confirm:
		return &ValidationError{Field: "confirm", Message: "passwords don't match"}
	}

	encrypted, err := s.cipher.Encrypt(password)
	if err != nil {
		return fmt.Errorf("encrypt password for %q: %w", appName, err)
	}

	return s.store.UpdatePassword(ctx, appName, encrypted)
}

// Remove deletes the credential for appName.
func (s *VaultService) Remove(ctx context.Context, appName string) error {
	if appName == "" {
		return &ValidationError{Field: "app_name", Message: "select an account"}
	}
	return s.store.Delete(ctx, appName)
}

// Summary returns the credential count and all application names.
func (s *VaultService) Summary(ctx context.Context) (*Summary, error) {
	names, err := s.store.ListAppNames(ctx)
	if err != nil {
		return nil, err
	}
	count, err := s.store.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &Summary{Count: count, AppNames: names}, nil
}
