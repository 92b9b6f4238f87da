package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/passpanel/internal/domain/model"
)

// Sentinel errors returned by CredentialStore implementations.
var (
	// ErrCredentialExists indicates a credential for the application already exists.
	ErrCredentialExists = errors.New("credential already exists")

	// ErrCredentialNotFound indicates no credential is stored for the application.
	ErrCredentialNotFound = errors.New("credential not found")

	// ErrStorage wraps any other failure of the underlying database.
	ErrStorage = errors.New("storage failure")
)

// CredentialStore defines the driven port for credential persistence. Values
// cross this boundary already encrypted; the store never sees plaintext.
//
// Insert returns ErrCredentialExists if the application name is taken and
// leaves the existing row untouched. Fetch, Delete and UpdatePassword return
// ErrCredentialNotFound for an unknown application without changing state.
type CredentialStore interface {
	Insert(ctx context.Context, cred model.Credential) error
	Fetch(ctx context.Context, appName string) (*model.Credential, error)
	Delete(ctx context.Context, appName string) error
	UpdatePassword(ctx context.Context, appName, encryptedPassword string) error

	// ListAppNames returns every stored application name in ascending order.
	ListAppNames(ctx context.Context) ([]string, error)

	// Count returns the number of stored credentials.
	Count(ctx context.Context) (int, error)
}
