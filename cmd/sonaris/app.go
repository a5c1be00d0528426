package main

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"sonaris/internal/ai"
	"sonaris/internal/chordsapi"
	"sonaris/internal/commands"
	"sonaris/internal/config"
	"sonaris/internal/logging"
	"sonaris/internal/output"
	"sonaris/internal/recordings"
	"sonaris/internal/settings"
)

type globalOptions struct {
	JSON    bool
	Plain   bool
	Quiet   bool
	Verbose bool
	NoColor bool
	Debug   bool
}

type app struct {
	cfg        config.Config
	log        *zap.Logger
	out        *output.Output
	settings   *settings.FileStore
	recordings *recordings.Store
	chords     *chordsapi.Client
	assistant  *ai.Assistant
	registry   *commands.Registry
}

func newApp(opts globalOptions, stdout, stderr io.Writer) (*app, error) {
	cfg := config.Load()
	log := logging.New(opts.Debug)

	out := output.New(output.Options{
		JSON:    opts.JSON,
		Plain:   opts.Plain,
		Quiet:   opts.Quiet,
		Verbose: opts.Verbose,
		NoColor: opts.NoColor || os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb",
		Stdout:  stdout,
		Stderr:  stderr,
	})

	st, err := settings.NewFileStore(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	recs, err := recordings.NewStore(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	var cache *chordsapi.Cache
	if path, err := chordsapi.DefaultCachePath(); err == nil {
		cache = chordsapi.NewCache(path, chordsapi.DefaultCacheTTL)
	} else {
		log.Debug("chord cache disabled", zap.Error(err))
	}
	chords := chordsapi.NewClient(cfg.ChordsAPIURL, cache, log)

	hfToken := func() (string, error) {
		if cfg.HFToken != "" {
			return cfg.HFToken, nil
		}
		s, err := st.Load()
		if err != nil {
			return "", err
		}
		return s.APIToken, nil
	}
	assistant := ai.NewAssistant(log,
		ai.NewHuggingFace(hfToken),
		ai.NewGemini(cfg.GoogleAPIKey, cfg.GeminiModel),
	)

	registry := commands.New(commands.Deps{
		Chords:          chords,
		Assistant:       assistant,
		DefaultProvider: string(cfg.DefaultProvider),
		Settings:        st,
		Recordings:      recs,
		Log:             log,
	})

	out.Debug("data dir: " + cfg.DataDir)
	out.Debug("providers: " + strings.Join(assistant.Providers(), ", "))

	return &app{
		cfg:        cfg,
		log:        log,
		out:        out,
		settings:   st,
		recordings: recs,
		chords:     chords,
		assistant:  assistant,
		registry:   registry,
	}, nil
}

func (a *app) close() {
	_ = a.log.Sync()
}
