package driven

import "errors"

// ErrDecrypt is returned when an envelope was sealed under another key,
// has been tampered with, or is malformed.
var ErrDecrypt = errors.New("decrypt credential")

// Cipher defines the driven port for symmetric authenticated encryption of
// stored passwords. Envelopes carry their own nonce and authentication tag.
type Cipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(envelope string) (string, error)
}
