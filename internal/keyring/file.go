package keyring

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/anchorapp/journal/internal/common"
)

// File is a Keyring persisted as a JSON file with 0600 permissions. It
// stands in for the platform keychain on hosts that lack one.
type File struct {
	path string
}

func NewFile(path string) *File {
	return &File{path: path}
}

func (k *File) Get(tag string) ([]byte, error) {
	m, err := k.load()
	if err != nil {
		return nil, err
	}
	enc, ok := m[tag]
	if !ok {
		return nil, common.ErrNotFound
	}
	v, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return nil, fmt.Errorf("failed to decode keyring value: %w", err)
	}
	return v, nil
}

func (k *File) Set(tag string, value []byte) error {
	m, err := k.load()
	if err != nil {
		return err
	}
	m[tag] = base64.StdEncoding.EncodeToString(value)

	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal keyring: %w", err)
	}
	if err := os.WriteFile(k.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write keyring: %w", err)
	}
	return nil
}

func (k *File) load() (map[string]string, error) {
	data, err := os.ReadFile(k.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return make(map[string]string), nil
		}
		return nil, fmt.Errorf("failed to read keyring: %w", err)
	}
	m := make(map[string]string)
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse keyring: %w", err)
	}
	return m, nil
}
