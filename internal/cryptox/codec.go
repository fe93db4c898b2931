package cryptox

// Codec is the seam between the entry repository and the cipher provider.
// The repository stores whatever Seal returns and hands it back to Open on
// read; it never interprets the blob itself.
type Codec interface {
	Seal(plaintext []byte) (blob, nonce []byte, err error)
	Open(blob, nonce []byte) ([]byte, error)

	// Transparent reports whether blobs equal plaintext, which lets the
	// repository push body text predicates down into SQL.
	Transparent() bool
}

// Plain is the identity codec used when at-rest encryption is disabled.
type Plain struct{}

func (Plain) Seal(plaintext []byte) ([]byte, []byte, error) { return plaintext, nil, nil }
func (Plain) Open(blob, _ []byte) ([]byte, error)           { return blob, nil }
func (Plain) Transparent() bool                             { return true }

// Sealed wraps a Cipher as a Codec.
type Sealed struct {
	c *Cipher
}

func NewSealed(c *Cipher) *Sealed { return &Sealed{c: c} }

func (s *Sealed) Seal(plaintext []byte) ([]byte, []byte, error) {
	return s.c.Encrypt(plaintext)
}

func (s *Sealed) Open(blob, nonce []byte) ([]byte, error) {
	return s.c.Decrypt(blob, nonce)
}

func (s *Sealed) Transparent() bool { return false }
