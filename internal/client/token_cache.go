package client

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/mediashare/backend/internal/model"
)

// FileTokenCache persists the session as a JSON file readable only by the
// current user.
type FileTokenCache struct {
	path string
}

func NewFileTokenCache(path string) *FileTokenCache {
	return &FileTokenCache{path: path}
}

// Load returns nil if nothing is persisted.
func (c *FileTokenCache) Load() (*model.Session, error) {
	b, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, err
	}

	var s model.Session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, err
	}

	return &s, nil
}

func (c *FileTokenCache) Save(s *model.Session) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return err
	}

	return os.WriteFile(c.path, b, 0o600)
}

func (c *FileTokenCache) Clear() error {
	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	return nil
}
