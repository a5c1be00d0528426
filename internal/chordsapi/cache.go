package chordsapi

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"
)

const DefaultCacheTTL = 10 * time.Minute

type cacheFile struct {
	Source    string    `json:"source"`
	UpdatedAt time.Time `json:"updatedAt"`
	Chords    []string  `json:"chords"`
}

type Cache struct {
	path string
	ttl  time.Duration
}

func NewCache(path string, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{path: path, ttl: ttl}
}

// DefaultCachePath honors SONARIS_CACHE_DIR before the user cache dir.
func DefaultCachePath() (string, error) {
	if override := os.Getenv("SONARIS_CACHE_DIR"); override != "" {
		return filepath.Join(override, "sonaris", "chords.json"), nil
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "sonaris", "chords.json"), nil
}

func (c *Cache) read() (cacheFile, bool) {
	raw, err := os.ReadFile(c.path)
	if err != nil {
		return cacheFile{}, false
	}
	// Avoid large reads if the cache ever gets corrupted.
	if len(raw) > 64*1024 {
		return cacheFile{}, false
	}
	var cf cacheFile
	if err := json.Unmarshal(raw, &cf); err != nil {
		return cacheFile{}, false
	}
	if cf.UpdatedAt.IsZero() || len(cf.Chords) == 0 {
		return cacheFile{}, false
	}
	return cf, true
}

// Get returns the cached chords when they were fetched from source and are
// still within the TTL.
func (c *Cache) Get(now time.Time, source string) ([]string, bool) {
	cf, ok := c.read()
	if !ok {
		return nil, false
	}
	if cf.Source != source || now.Sub(cf.UpdatedAt) > c.ttl {
		return nil, false
	}
	return cf.Chords, true
}

func (c *Cache) Put(now time.Time, source string, chords []string) error {
	if len(chords) == 0 {
		return errors.New("no chords")
	}
	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	raw, err := json.Marshal(cacheFile{Source: source, UpdatedAt: now, Chords: chords})
	if err != nil {
		return err
	}

	f, err := os.CreateTemp(dir, "chords-*.json")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()

	if _, err := f.Write(raw); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, c.path)
}

func (c *Cache) Clear() error {
	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
