package recordings

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const ext = ".webm"

var ErrInvalidName = errors.New("invalid recording name")

type Meta struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

type Store struct {
	dir string
}

func NewStore(dataDir string) (*Store, error) {
	if strings.TrimSpace(dataDir) == "" {
		return nil, errors.New("data dir is required")
	}
	return &Store{dir: filepath.Join(dataDir, "recordings")}, nil
}

func (s *Store) Dir() string { return s.dir }

// Save writes r to <name>.webm and returns the name used. A blank name gets
// a generated one.
func (s *Store) Save(name string, r io.Reader) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = uuid.NewString()
	}
	path, err := s.path(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}

	f, err := os.CreateTemp(s.dir, "recording-*.tmp")
	if err != nil {
		return "", err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write recording: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", err
	}
	return name, nil
}

func (s *Store) Open(name string) (io.ReadCloser, error) {
	path, err := s.path(strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

func (s *Store) List() ([]Meta, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Meta{}, nil
		}
		return nil, err
	}
	out := make([]Meta, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ext {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, Meta{
			Name:       strings.TrimSuffix(e.Name(), ext),
			Size:       info.Size(),
			ModifiedAt: info.ModTime().UTC(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Delete removes a recording. Deleting a missing recording is not an error.
func (s *Store) Delete(name string) error {
	path, err := s.path(strings.TrimSpace(name))
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *Store) path(name string) (string, error) {
	if name == "" || name == "." || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.dir, name+ext), nil
}
