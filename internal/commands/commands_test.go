package commands

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sonaris/internal/ai"
	"sonaris/internal/recordings"
	"sonaris/internal/settings"
)

var (
	wantChords = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
	wantGenres = []string{
		"Blues", "Indie Folk", "Country", "Electronic", "Folk", "Hip Hop",
		"Jazz", "Pop", "Rock", "Singer Songwriter", "Reggae",
	}
)

type stubFetcher struct {
	chords []string
	err    error
}

func (s stubFetcher) FetchChords(context.Context) ([]string, error) { return s.chords, s.err }

type stubProvider struct {
	lastReq ai.Request
}

func (s *stubProvider) Name() string { return "huggingface" }

func (s *stubProvider) ChordProgression(_ context.Context, req ai.Request) (string, error) {
	s.lastReq = req
	return req.Key + " F G " + req.Key, nil
}

func (s *stubProvider) Keywords(_ context.Context, req ai.Request) ([]string, error) {
	s.lastReq = req
	return []string{"dust", "road"}, nil
}

func TestStaticListCommands(t *testing.T) {
	r := New(Deps{})

	for i := 0; i < 3; i++ {
		res := r.Invoke(context.Background(), "get_chords", nil)
		require.True(t, res.OK)
		assert.Empty(t, res.Error)
		assert.Equal(t, wantChords, res.Data)

		res = r.Invoke(context.Background(), "get_genres", json.RawMessage(`{}`))
		require.True(t, res.OK)
		assert.Equal(t, wantGenres, res.Data)
	}
}

func TestStaticListsIgnoreArgs(t *testing.T) {
	r := New(Deps{})
	res := r.Invoke(context.Background(), "get_chords", json.RawMessage(`not json at all`))
	require.True(t, res.OK)
	assert.Len(t, res.Data, 12)
}

func TestUnknownCommand(t *testing.T) {
	r := New(Deps{})
	_, err := r.Call(context.Background(), "get_scales", nil)
	require.ErrorIs(t, err, ErrUnknownCommand)

	res := r.Invoke(context.Background(), "get_scales", nil)
	assert.False(t, res.OK)
	assert.Equal(t, "unknown command: get_scales", res.Error)
}

func TestNames(t *testing.T) {
	r := New(Deps{})
	assert.Equal(t, []string{
		"chord_progression", "fetch_chords", "get_chords", "get_genres", "get_settings",
		"greet", "keywords", "list_recordings", "set_api_token",
	}, r.Names())
	assert.True(t, r.Has("greet"))
	assert.False(t, r.Has("nope"))
}

func TestRegisterDuplicatePanics(t *testing.T) {
	r := NewRegistry()
	r.Register("x", func(context.Context, json.RawMessage) (any, error) { return nil, nil })
	assert.Panics(t, func() {
		r.Register("x", func(context.Context, json.RawMessage) (any, error) { return nil, nil })
	})
}

func TestGreet(t *testing.T) {
	r := New(Deps{})
	res := r.Invoke(context.Background(), "greet", json.RawMessage(`{"name":"Ada"}`))
	require.True(t, res.OK)
	assert.Equal(t, "Hello, Ada! You've been greeted from Go!", res.Data)

	res = r.Invoke(context.Background(), "greet", json.RawMessage(`{"name":`))
	assert.False(t, res.OK)
	assert.Contains(t, res.Error, "invalid arguments")
}

func TestFetchChords(t *testing.T) {
	r := New(Deps{Chords: stubFetcher{chords: []string{"Am", "G"}}})
	res := r.Invoke(context.Background(), "fetch_chords", nil)
	require.True(t, res.OK)
	assert.Equal(t, []string{"Am", "G"}, res.Data)

	r = New(Deps{Chords: stubFetcher{err: errors.New("chords api error: 503")}})
	res = r.Invoke(context.Background(), "fetch_chords", nil)
	assert.False(t, res.OK)
	assert.Equal(t, "chords api error: 503", res.Error)

	res = New(Deps{}).Invoke(context.Background(), "fetch_chords", nil)
	assert.False(t, res.OK)
}

func TestSuggestionCommands(t *testing.T) {
	p := &stubProvider{}
	r := New(Deps{Assistant: ai.NewAssistant(nil, p), DefaultProvider: "huggingface"})

	res := r.Invoke(context.Background(), "chord_progression", json.RawMessage(`{"key":"C","genre":"Folk"}`))
	require.True(t, res.OK, res.Error)
	assert.Equal(t, "C F G C", res.Data)
	assert.Equal(t, ai.Request{Key: "C", Genre: "Folk"}, p.lastReq)

	res = r.Invoke(context.Background(), "keywords", json.RawMessage(`{"key":"D","genre":"Country","provider":"huggingface"}`))
	require.True(t, res.OK, res.Error)
	assert.Equal(t, []string{"dust", "road"}, res.Data)

	res = r.Invoke(context.Background(), "keywords", json.RawMessage(`{"key":"D"}`))
	assert.False(t, res.OK)
	assert.Equal(t, ai.ErrInvalidRequest.Error(), res.Error)

	res = r.Invoke(context.Background(), "chord_progression", json.RawMessage(`{"key":"D","genre":"Pop","provider":"gemini"}`))
	assert.False(t, res.OK)
	assert.True(t, strings.HasPrefix(res.Error, "unknown provider"))

	res = New(Deps{}).Invoke(context.Background(), "keywords", json.RawMessage(`{"key":"D","genre":"Pop"}`))
	assert.False(t, res.OK)
	assert.Equal(t, ai.ErrNoProviders.Error(), res.Error)
}

func TestSettingsCommands(t *testing.T) {
	store, err := settings.NewFileStore(t.TempDir())
	require.NoError(t, err)
	r := New(Deps{Settings: store})

	res := r.Invoke(context.Background(), "get_settings", nil)
	require.True(t, res.OK, res.Error)
	assert.Equal(t, map[string]any{"apiToken": "", "hasApiToken": false}, res.Data)

	res = r.Invoke(context.Background(), "set_api_token", json.RawMessage(`{"apiToken":""}`))
	assert.False(t, res.OK)

	res = r.Invoke(context.Background(), "set_api_token", json.RawMessage(`{"apiToken":"hf_secret99"}`))
	require.True(t, res.OK, res.Error)

	res = r.Invoke(context.Background(), "get_settings", nil)
	require.True(t, res.OK, res.Error)
	assert.Equal(t, map[string]any{"apiToken": "*******et99", "hasApiToken": true}, res.Data)
}

func TestListRecordings(t *testing.T) {
	store, err := recordings.NewStore(t.TempDir())
	require.NoError(t, err)
	_, err = store.Save("hook", strings.NewReader("abc"))
	require.NoError(t, err)

	res := New(Deps{Recordings: store}).Invoke(context.Background(), "list_recordings", nil)
	require.True(t, res.OK, res.Error)
	metas, ok := res.Data.([]recordings.Meta)
	require.True(t, ok)
	require.Len(t, metas, 1)
	assert.Equal(t, "hook", metas[0].Name)
	assert.EqualValues(t, 3, metas[0].Size)
}
