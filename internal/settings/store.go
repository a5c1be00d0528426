package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const fileName = "settings.json"

type Settings struct {
	APIToken string `json:"apiToken"`
}

// Masked returns the token with everything but the last four characters hidden.
func (s Settings) Masked() string {
	if s.APIToken == "" {
		return ""
	}
	if len(s.APIToken) <= 4 {
		return strings.Repeat("*", len(s.APIToken))
	}
	return strings.Repeat("*", len(s.APIToken)-4) + s.APIToken[len(s.APIToken)-4:]
}

type Store interface {
	Load() (Settings, error)
	SetAPIToken(token string) error
}

type FileStore struct {
	path string
}

func NewFileStore(dataDir string) (*FileStore, error) {
	if strings.TrimSpace(dataDir) == "" {
		return nil, errors.New("data dir is required")
	}
	return &FileStore{path: filepath.Join(dataDir, fileName)}, nil
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Load() (Settings, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Settings{}, nil
		}
		return Settings{}, err
	}
	var st Settings
	if err := json.Unmarshal(b, &st); err != nil {
		return Settings{}, fmt.Errorf("parse settings: %w", err)
	}
	return st, nil
}

func (s *FileStore) SetAPIToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("api token is required")
	}
	st, err := s.Load()
	if err != nil {
		return err
	}
	st.APIToken = token
	return s.write(st)
}

func (s *FileStore) write(st Settings) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
