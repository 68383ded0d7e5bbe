package cryptox

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LoadOrCreateSecret reads a secret from path. When the file does not exist
// it is created with the output of generate and 0600 permissions.
func LoadOrCreateSecret(path string, generate func() ([]byte, error)) ([]byte, error) {
	path = filepath.Clean(path)

	data, err := os.ReadFile(path)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("cryptox: read %s: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("cryptox: create dir for %s: %w", path, err)
	}

	data, err = generate()
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return nil, fmt.Errorf("cryptox: write %s: %w", path, err)
	}
	return data, nil
}

// LoadOrCreatePepper returns the pepper stored at path, generating 256 bits
// of randomness on first start.
func LoadOrCreatePepper(path string) (string, error) {
	data, err := LoadOrCreateSecret(path, func() ([]byte, error) {
		tok, err := GenerateToken(TokenSize256)
		if err != nil {
			return nil, err
		}
		return []byte(tok), nil
	})
	if err != nil {
		return "", err
	}

	pepper := strings.TrimSpace(string(data))
	if pepper == "" {
		return "", fmt.Errorf("cryptox: pepper file %s is empty", path)
	}
	return pepper, nil
}
