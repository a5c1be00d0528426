package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Provider string

const (
	ProviderHuggingFace Provider = "huggingface"
	ProviderGemini      Provider = "gemini"
	ProviderAll         Provider = "all"
)

const (
	DefaultChordsAPIURL = "https://chords.alday.dev/"
	DefaultListenAddr   = "127.0.0.1:1420"
	DefaultGeminiModel  = "gemini-2.0-flash"
)

type Config struct {
	GoogleAPIKey    string
	HFToken         string
	ChordsAPIURL    string
	ListenAddr      string
	GeminiModel     string
	DefaultProvider Provider
	DataDir         string
}

// envConfig is decoded with the SONARIS prefix, e.g. SONARIS_CHORDS_API_URL.
type envConfig struct {
	ChordsAPIURL    string `envconfig:"CHORDS_API_URL"`
	ListenAddr      string `envconfig:"LISTEN_ADDR"`
	GeminiModel     string `envconfig:"GEMINI_MODEL"`
	DefaultProvider string `envconfig:"PROVIDER"`
	DataDir         string `envconfig:"DATA_DIR"`
}

type fileConfig struct {
	ChordsAPIURL    string   `json:"chordsApiUrl"`
	ListenAddr      string   `json:"listenAddr"`
	GeminiModel     string   `json:"geminiModel"`
	DefaultProvider Provider `json:"defaultProvider"`
	DataDir         string   `json:"dataDir"`
}

func init() {
	_ = godotenv.Load()
}

func Load() Config {
	return load(loadFileConfig(configPath()))
}

func load(fc fileConfig) Config {
	var ec envConfig
	// Only malformed values can fail here; fall back to file and defaults.
	if err := envconfig.Process("sonaris", &ec); err != nil {
		ec = envConfig{}
	}

	provider := Provider(firstNonEmpty(ec.DefaultProvider, string(fc.DefaultProvider)))
	if !provider.Valid() {
		provider = ProviderHuggingFace
	}

	return Config{
		GoogleAPIKey:    firstNonEmpty(os.Getenv("GOOGLE_API_KEY"), os.Getenv("GEMINI_API_KEY")),
		HFToken:         os.Getenv("HF_TOKEN"),
		ChordsAPIURL:    firstNonEmpty(ec.ChordsAPIURL, fc.ChordsAPIURL, DefaultChordsAPIURL),
		ListenAddr:      firstNonEmpty(ec.ListenAddr, fc.ListenAddr, DefaultListenAddr),
		GeminiModel:     firstNonEmpty(ec.GeminiModel, fc.GeminiModel, DefaultGeminiModel),
		DefaultProvider: provider,
		DataDir:         firstNonEmpty(ec.DataDir, fc.DataDir, defaultDataDir()),
	}
}

func (p Provider) Valid() bool {
	switch p {
	case ProviderHuggingFace, ProviderGemini, ProviderAll:
		return true
	}
	return false
}

func configPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "sonaris", "config.json")
}

func defaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".sonaris"
	}
	return filepath.Join(dir, "sonaris")
}

func loadFileConfig(path string) fileConfig {
	if path == "" {
		return fileConfig{}
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}
	}
	var fc fileConfig
	if err := json.Unmarshal(b, &fc); err != nil {
		return fileConfig{}
	}
	return fc
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
