package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("SONARIS_DATA_DIR", dir+"/data")
	t.Setenv("SONARIS_CACHE_DIR", dir+"/cache")
	t.Setenv("HF_TOKEN", "")

	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetArgs(append([]string{"--no-color"}, args...))
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestChordsPlain(t *testing.T) {
	out, err := runCLI(t, "", "chords", "--plain")
	if err != nil {
		t.Fatalf("chords: %v", err)
	}
	want := "C\nC#\nD\nD#\nE\nF\nF#\nG\nG#\nA\nA#\nB\n"
	if out != want {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestGenresJSON(t *testing.T) {
	out, err := runCLI(t, "", "genres", "--json")
	if err != nil {
		t.Fatalf("genres: %v", err)
	}
	var payload struct {
		Genres []string `json:"genres"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(payload.Genres) != 11 || payload.Genres[9] != "Singer Songwriter" {
		t.Fatalf("unexpected genres: %v", payload.Genres)
	}
}

func TestInvokeCommand(t *testing.T) {
	out, err := runCLI(t, "", "invoke", "greet", `{"name":"Sam"}`)
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if !strings.Contains(out, `"ok": true`) || !strings.Contains(out, "Hello, Sam!") {
		t.Fatalf("unexpected output: %q", out)
	}

	_, err = runCLI(t, "", "invoke", "get_scales")
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}

	_, err = runCLI(t, "", "invoke", "greet", "{oops")
	var ue usageError
	if !errors.As(err, &ue) {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestUsageErrors(t *testing.T) {
	cases := [][]string{
		{"greet"},
		{"chords", "extra"},
		{"progression", "--key", "C"},
		{"chords", "--no-such-flag"},
	}
	for _, args := range cases {
		_, err := runCLI(t, "", args...)
		var ue usageError
		if !errors.As(err, &ue) {
			t.Fatalf("%v: expected usage error, got %v", args, err)
		}
	}
}

func TestSettingsTokenRoundTrip(t *testing.T) {
	dir := t.TempDir()
	run := func(stdin string, args ...string) string {
		t.Helper()
		t.Setenv("HOME", dir)
		t.Setenv("SONARIS_DATA_DIR", dir+"/data")
		t.Setenv("HF_TOKEN", "")
		var stdout bytes.Buffer
		root := newRootCmd()
		root.SetArgs(append([]string{"--no-color"}, args...))
		root.SetIn(strings.NewReader(stdin))
		root.SetOut(&stdout)
		root.SetErr(&bytes.Buffer{})
		if err := root.ExecuteContext(context.Background()); err != nil {
			t.Fatalf("%v: %v", args, err)
		}
		return stdout.String()
	}

	run("hf_piped_token\n", "settings", "set-token")
	out := run("", "settings", "show", "--json")
	if !strings.Contains(out, `"hasApiToken": true`) || !strings.Contains(out, "oken") {
		t.Fatalf("unexpected settings output: %q", out)
	}
	if strings.Contains(out, "hf_piped_token") {
		t.Fatalf("token must be masked: %q", out)
	}
}

func TestRecordingsListMatchesInvoke(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("SONARIS_DATA_DIR", dir+"/data")
	src := filepath.Join(dir, "take one.webm")
	if err := os.WriteFile(src, []byte("webm-bytes"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	run := func(args ...string) string {
		t.Helper()
		var stdout bytes.Buffer
		root := newRootCmd()
		root.SetArgs(append([]string{"--no-color"}, args...))
		root.SetOut(&stdout)
		root.SetErr(&bytes.Buffer{})
		if err := root.ExecuteContext(context.Background()); err != nil {
			t.Fatalf("%v: %v", args, err)
		}
		return stdout.String()
	}

	run("recordings", "import", src)

	var listed struct {
		Recordings []struct {
			Name string `json:"name"`
			Size int64  `json:"size"`
		} `json:"recordings"`
	}
	if err := json.Unmarshal([]byte(run("recordings", "list", "--json")), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed.Recordings) != 1 || listed.Recordings[0].Name != "take one" || listed.Recordings[0].Size != 10 {
		t.Fatalf("unexpected recordings: %+v", listed.Recordings)
	}

	var invoked struct {
		OK   bool `json:"ok"`
		Data []struct {
			Name string `json:"name"`
		} `json:"data"`
	}
	if err := json.Unmarshal([]byte(run("invoke", "list_recordings")), &invoked); err != nil {
		t.Fatalf("decode invoke: %v", err)
	}
	if !invoked.OK || len(invoked.Data) != 1 || invoked.Data[0].Name != "take one" {
		t.Fatalf("unexpected invoke result: %+v", invoked)
	}
}

func TestServeInterruptedExitsWith130(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("SONARIS_DATA_DIR", dir+"/data")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	root := newRootCmd()
	root.SetArgs([]string{"--no-color", "serve", "--addr", "127.0.0.1:0"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	err := root.ExecuteContext(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if got := exitCode(err); got != exitInterrupted {
		t.Fatalf("exitCode = %d, want %d", got, exitInterrupted)
	}
}

func TestExitCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, exitSuccess},
		{usageError{msg: "bad"}, exitUsage},
		{fmt.Errorf("wrapped: %w", context.Canceled), exitInterrupted},
		{errors.New("boom"), exitFailure},
	}
	for _, tc := range cases {
		if got := exitCode(tc.err); got != tc.want {
			t.Fatalf("exitCode(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
