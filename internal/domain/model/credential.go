package model

// Credential is a stored login for one application. AppName is the unique
// key. EncryptedPassword is the opaque envelope produced by the cipher and is
// never the plaintext.
type Credential struct {
	AppName           string
	Username          string
	EncryptedPassword string
}
