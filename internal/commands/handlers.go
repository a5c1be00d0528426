package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"sonaris/internal/ai"
	"sonaris/internal/music"
	"sonaris/internal/recordings"
	"sonaris/internal/settings"
)

type ChordFetcher interface {
	FetchChords(ctx context.Context) ([]string, error)
}

type Deps struct {
	Chords          ChordFetcher
	Assistant       *ai.Assistant
	DefaultProvider string
	Settings        settings.Store
	Recordings      *recordings.Store
	Log             *zap.Logger
}

// New builds the registry with every command wired to deps. Commands whose
// dependency is nil are still registered and report it as an error.
func New(deps Deps) *Registry {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	h := handlers{deps: deps}
	r := NewRegistry()
	r.Register("greet", h.greet)
	r.Register("get_chords", h.getChords)
	r.Register("get_genres", h.getGenres)
	r.Register("fetch_chords", h.fetchChords)
	r.Register("chord_progression", h.chordProgression)
	r.Register("keywords", h.keywords)
	r.Register("get_settings", h.getSettings)
	r.Register("set_api_token", h.setAPIToken)
	r.Register("list_recordings", h.listRecordings)
	return r
}

type handlers struct {
	deps Deps
}

func (h handlers) greet(_ context.Context, args json.RawMessage) (any, error) {
	var in struct {
		Name string `json:"name"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return nil, err
	}
	return Greet(in.Name), nil
}

func Greet(name string) string {
	return fmt.Sprintf("Hello, %s! You've been greeted from Go!", name)
}

func (h handlers) getChords(context.Context, json.RawMessage) (any, error) {
	return music.Chords(), nil
}

func (h handlers) getGenres(context.Context, json.RawMessage) (any, error) {
	return music.Genres(), nil
}

func (h handlers) fetchChords(ctx context.Context, _ json.RawMessage) (any, error) {
	if h.deps.Chords == nil {
		return nil, errors.New("chords api is not configured")
	}
	chords, err := h.deps.Chords.FetchChords(ctx)
	if err != nil {
		h.deps.Log.Warn("fetch chords failed", zap.Error(err))
		return nil, err
	}
	return chords, nil
}

type suggestionArgs struct {
	ai.Request
	Provider string `json:"provider"`
}

func (h handlers) parseSuggestion(args json.RawMessage) (suggestionArgs, error) {
	var in suggestionArgs
	if err := decodeArgs(args, &in); err != nil {
		return in, err
	}
	if strings.TrimSpace(in.Provider) == "" {
		in.Provider = h.deps.DefaultProvider
	}
	if h.deps.Assistant == nil {
		return in, ai.ErrNoProviders
	}
	return in, nil
}

func (h handlers) chordProgression(ctx context.Context, args json.RawMessage) (any, error) {
	in, err := h.parseSuggestion(args)
	if err != nil {
		return nil, err
	}
	return h.deps.Assistant.ChordProgression(ctx, in.Provider, in.Request)
}

func (h handlers) keywords(ctx context.Context, args json.RawMessage) (any, error) {
	in, err := h.parseSuggestion(args)
	if err != nil {
		return nil, err
	}
	return h.deps.Assistant.Keywords(ctx, in.Provider, in.Request)
}

func (h handlers) getSettings(context.Context, json.RawMessage) (any, error) {
	if h.deps.Settings == nil {
		return nil, errors.New("settings store is not configured")
	}
	st, err := h.deps.Settings.Load()
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"apiToken":    st.Masked(),
		"hasApiToken": st.APIToken != "",
	}, nil
}

func (h handlers) setAPIToken(_ context.Context, args json.RawMessage) (any, error) {
	if h.deps.Settings == nil {
		return nil, errors.New("settings store is not configured")
	}
	var in struct {
		APIToken string `json:"apiToken"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return nil, err
	}
	if err := h.deps.Settings.SetAPIToken(in.APIToken); err != nil {
		return nil, err
	}
	return map[string]string{"status": "ok"}, nil
}

func (h handlers) listRecordings(context.Context, json.RawMessage) (any, error) {
	if h.deps.Recordings == nil {
		return nil, errors.New("recordings store is not configured")
	}
	return h.deps.Recordings.List()
}
