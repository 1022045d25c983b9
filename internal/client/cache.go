package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"studyzone_backend/internal/services/dto"
)

// Session is what a successful login leaves on disk.
type Session struct {
	Token string        `json:"token"`
	User  *dto.UserView `json:"user"`
}

// Cache persists a Session as a JSON file readable only by the owner.
type Cache struct {
	path string
}

func NewCache(path string) *Cache {
	return &Cache{path: path}
}

// DefaultCachePath is <user config dir>/studyzone/session.json.
func DefaultCachePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "studyzone", "session.json"), nil
}

func (c *Cache) Path() string { return c.path }

// Load returns the cached session. A missing file yields an empty session and no error.
func (c *Cache) Load() (*Session, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return &Session{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session cache: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session cache: %w", err)
	}
	return &s, nil
}

func (c *Cache) Save(s *Session) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session cache: %w", err)
	}
	return os.Rename(tmp, c.path)
}

func (c *Cache) Clear() error {
	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear session cache: %w", err)
	}
	return nil
}
