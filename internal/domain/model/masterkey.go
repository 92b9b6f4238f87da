package model

// Sizes of the master-key material.
const (
	DerivedKeySize = 32
	SaltSize       = 16
)

// MasterKey holds the verification material for the master password. The
// derived key is only ever compared against; it never encrypts anything.
type MasterKey struct {
	DerivedKey []byte
	Salt       []byte
}
