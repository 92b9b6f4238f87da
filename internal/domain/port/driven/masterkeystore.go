package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/passpanel/internal/domain/model"
)

// ErrMasterKeyNotSet is returned by MasterKeyStore.Load when no master
// password has been set up yet.
var ErrMasterKeyNotSet = errors.New("master password not set up")

// MasterKeyStore defines the driven port for persisting the master-password
// verification material.
type MasterKeyStore interface {
	Load(ctx context.Context) (*model.MasterKey, error)
	Save(ctx context.Context, key model.MasterKey) error
}
