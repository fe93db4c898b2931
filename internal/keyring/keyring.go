// Package keyring abstracts the secure credential store that holds the
// symmetric body key outside normal application storage. On-device builds
// back it with the platform keychain; this package ships a file-backed
// implementation and an in-memory one for tests.
package keyring

import "github.com/anchorapp/journal/internal/common"

// Keyring stores small secrets by tag.
type Keyring interface {
	// Get returns the secret stored under tag, or common.ErrNotFound.
	Get(tag string) ([]byte, error)

	// Set stores the secret under tag, overwriting any previous value.
	Set(tag string, value []byte) error
}

// Memory is an in-memory Keyring for tests.
type Memory struct {
	m map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{m: make(map[string][]byte)}
}

func (k *Memory) Get(tag string) ([]byte, error) {
	v, ok := k.m[tag]
	if !ok {
		return nil, common.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (k *Memory) Set(tag string, value []byte) error {
	k.m[tag] = append([]byte(nil), value...)
	return nil
}
