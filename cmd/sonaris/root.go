package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"sonaris/internal/ai"
	"sonaris/internal/bridge"
	"sonaris/internal/recordings"
)

func newRootCmd() *cobra.Command {
	var opts globalOptions
	var a *app

	root := &cobra.Command{
		Use:           "sonaris",
		Short:         "Songwriting companion: chords, genres and AI suggestions",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			a, err = newApp(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a != nil {
				a.close()
			}
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{msg: err.Error()}
	})

	pf := root.PersistentFlags()
	pf.BoolVar(&opts.JSON, "json", false, "Output machine-readable JSON")
	pf.BoolVar(&opts.Plain, "plain", false, "Disable decorative formatting")
	pf.BoolVarP(&opts.Quiet, "quiet", "q", false, "Suppress non-essential output")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "Enable verbose diagnostics")
	pf.BoolVar(&opts.NoColor, "no-color", false, "Disable colored output")
	pf.BoolVar(&opts.Debug, "debug", false, "Enable debug logging to stderr")

	getApp := func() *app { return a }
	root.AddCommand(
		newListCmd(getApp, "chords", "List the twelve chromatic chord roots", "get_chords", "Chords"),
		newListCmd(getApp, "genres", "List the available genres", "get_genres", "Genres"),
		newGreetCmd(getApp),
		newFetchChordsCmd(getApp),
		newSuggestionCmd(getApp, "progression", "Suggest a chord progression for a key and genre", "chord_progression"),
		newSuggestionCmd(getApp, "keywords", "Suggest lyric keywords for a key and genre", "keywords"),
		newSettingsCmd(getApp),
		newRecordingsCmd(getApp),
		newInvokeCmd(getApp),
		newServeCmd(getApp),
	)
	return root
}

func exactArgs(n int, usage string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return usageError{msg: "usage: " + cmd.CommandPath() + " " + usage}
		}
		return nil
	}
}

func rangeArgs(lo, hi int, usage string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < lo || len(args) > hi {
			return usageError{msg: "usage: " + cmd.CommandPath() + " " + usage}
		}
		return nil
	}
}

func callStrings(ctx context.Context, a *app, command string, args any) ([]string, error) {
	data, err := call(ctx, a, command, args)
	if err != nil {
		return nil, err
	}
	items, ok := data.([]string)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected result type %T", command, data)
	}
	return items, nil
}

func call(ctx context.Context, a *app, command string, args any) (any, error) {
	var raw json.RawMessage
	if args != nil {
		b, err := json.Marshal(args)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	return a.registry.Call(ctx, command, raw)
}

func newListCmd(getApp func() *app, use, short, command, title string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  exactArgs(0, ""),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := getApp()
			items, err := callStrings(cmd.Context(), a, command, nil)
			if err != nil {
				return err
			}
			if a.out.JSON {
				return a.out.EmitJSON(map[string]any{use: items})
			}
			a.out.List(title, items)
			return nil
		},
	}
}

func newGreetCmd(getApp func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "greet <name>",
		Short: "Print a greeting",
		Args:  exactArgs(1, "<name>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := getApp()
			data, err := call(cmd.Context(), a, "greet", map[string]string{"name": args[0]})
			if err != nil {
				return err
			}
			if a.out.JSON {
				return a.out.EmitJSON(map[string]any{"greeting": data})
			}
			a.out.Print(fmt.Sprint(data))
			return nil
		},
	}
}

func newFetchChordsCmd(getApp func() *app) *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "fetch-chords",
		Short: "Fetch chords from the remote chords API",
		Args:  exactArgs(0, ""),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := getApp()
			if refresh && a.chords.Cache != nil {
				if err := a.chords.Cache.Clear(); err != nil {
					return err
				}
			}
			a.out.Debug("chords api: " + a.chords.BaseURL)
			items, err := callStrings(cmd.Context(), a, "fetch_chords", nil)
			if err != nil {
				return err
			}
			if a.out.JSON {
				return a.out.EmitJSON(map[string]any{"chords": items, "source": a.chords.BaseURL})
			}
			a.out.List("Chords", items)
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Ignore the cached response")
	return cmd
}

func newSuggestionCmd(getApp func() *app, use, short, command string) *cobra.Command {
	var key, genre, provider string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  exactArgs(0, "--key <key> --genre <genre> [--provider <provider>]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := getApp()
			if strings.TrimSpace(key) == "" || strings.TrimSpace(genre) == "" {
				return usageError{msg: "--key and --genre are required"}
			}
			if provider == "" {
				provider = string(a.cfg.DefaultProvider)
			}
			a.out.Debug("provider: " + provider)

			data, err := call(cmd.Context(), a, command, map[string]string{
				"key":      key,
				"genre":    genre,
				"provider": provider,
			})
			if err != nil {
				if errors.Is(err, ai.ErrMissingToken) {
					a.out.Error("Run `sonaris settings set-token` or set HF_TOKEN / GOOGLE_API_KEY.")
				}
				return err
			}

			if a.out.JSON {
				return a.out.EmitJSON(map[string]any{
					"key":      key,
					"genre":    genre,
					"provider": provider,
					use:        data,
				})
			}
			switch v := data.(type) {
			case []string:
				a.out.List("Keywords", v)
			default:
				a.out.Success(fmt.Sprint(v))
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&key, "key", "k", "", "Musical key, e.g. C or F#")
	f.StringVarP(&genre, "genre", "g", "", "Genre, e.g. Jazz")
	f.StringVarP(&provider, "provider", "p", "", "AI provider: huggingface, gemini, all")
	return cmd
}

func newSettingsCmd(getApp func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change stored settings",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show stored settings",
		Args:  exactArgs(0, ""),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := getApp()
			data, err := call(cmd.Context(), a, "get_settings", nil)
			if err != nil {
				return err
			}
			if a.out.JSON {
				return a.out.EmitJSON(data)
			}
			m, _ := data.(map[string]any)
			token, _ := m["apiToken"].(string)
			if token == "" {
				token = a.out.Gray("(not set)")
			}
			a.out.Print(a.out.Bold("Hugging Face access token: ") + token)
			a.out.Print(a.out.Gray("Stored in " + a.settings.Path()))
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set-token [token]",
		Short: "Store the Hugging Face access token",
		Args:  rangeArgs(0, 1, "[token]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := getApp()
			token := ""
			if len(args) == 1 {
				token = args[0]
			} else {
				t, err := readToken(cmd.InOrStdin(), cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				token = t
			}
			if strings.TrimSpace(token) == "" {
				return usageError{msg: "token must not be empty"}
			}
			if _, err := call(cmd.Context(), a, "set_api_token", map[string]string{"apiToken": token}); err != nil {
				return err
			}
			if a.out.JSON {
				return a.out.EmitJSON(map[string]any{"status": "ok", "action": "set-token"})
			}
			a.out.Success("Token saved")
			return nil
		},
	})
	return cmd
}

// readToken reads a hidden token from a terminal, or the first line of piped input.
func readToken(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Access token: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}
	scanner := bufio.NewScanner(in)
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text()), nil
	}
	return "", scanner.Err()
}

func newRecordingsCmd(getApp func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recordings",
		Short: "Manage saved recordings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved recordings",
		Args:  exactArgs(0, ""),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := getApp()
			data, err := call(cmd.Context(), a, "list_recordings", nil)
			if err != nil {
				return err
			}
			metas, ok := data.([]recordings.Meta)
			if !ok {
				return fmt.Errorf("list_recordings: unexpected result type %T", data)
			}
			if a.out.JSON {
				return a.out.EmitJSON(map[string]any{"recordings": metas})
			}
			if len(metas) == 0 {
				a.out.Print(a.out.Gray("No recordings in " + a.recordings.Dir()))
				return nil
			}
			lines := make([]string, 0, len(metas))
			for _, m := range metas {
				lines = append(lines, fmt.Sprintf("%s  %s", a.out.Cyan(m.Name), a.out.Gray(fmt.Sprintf("%d bytes, %s", m.Size, m.ModifiedAt.Format("2006-01-02 15:04")))))
			}
			a.out.List("Recordings", lines)
			return nil
		},
	})

	var name string
	importCmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Copy an audio file into the recordings folder",
		Args:  exactArgs(1, "<file> [--name <name>]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := getApp()
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			n := name
			if n == "" {
				base := filepath.Base(args[0])
				n = strings.TrimSuffix(base, filepath.Ext(base))
			}
			saved, err := a.recordings.Save(n, f)
			if err != nil {
				return err
			}
			if a.out.JSON {
				return a.out.EmitJSON(map[string]any{"status": "ok", "name": saved})
			}
			a.out.Success("Saved recording " + saved)
			return nil
		},
	}
	importCmd.Flags().StringVarP(&name, "name", "n", "", "Recording name (defaults to the file name)")
	cmd.AddCommand(importCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "export <name> <dest>",
		Short: "Write a recording to a file, or - for stdout",
		Args:  exactArgs(2, "<name> <dest>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := getApp()
			rc, err := a.recordings.Open(args[0])
			if err != nil {
				return err
			}
			defer rc.Close()
			if args[1] == "-" {
				_, err := io.Copy(cmd.OutOrStdout(), rc)
				return err
			}
			dst, err := os.Create(args[1])
			if err != nil {
				return err
			}
			if _, err := io.Copy(dst, rc); err != nil {
				_ = dst.Close()
				return err
			}
			if err := dst.Close(); err != nil {
				return err
			}
			a.out.Success("Exported to " + args[1])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a recording",
		Args:  exactArgs(1, "<name>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := getApp()
			if err := a.recordings.Delete(args[0]); err != nil {
				return err
			}
			if a.out.JSON {
				return a.out.EmitJSON(map[string]any{"status": "ok", "deleted": args[0]})
			}
			a.out.Success("Deleted " + args[0])
			return nil
		},
	})
	return cmd
}

func newInvokeCmd(getApp func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "invoke <command> [json-args]",
		Short: "Invoke a backend command and print its JSON result",
		Args:  rangeArgs(1, 2, "<command> [json-args]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := getApp()
			var raw json.RawMessage
			if len(args) == 2 {
				if !json.Valid([]byte(args[1])) {
					return usageError{msg: "json-args must be valid JSON"}
				}
				raw = json.RawMessage(args[1])
			}
			res := a.registry.Invoke(cmd.Context(), args[0], raw)
			if err := a.out.EmitJSON(res); err != nil {
				return err
			}
			if !res.OK {
				return errors.New(res.Error)
			}
			return nil
		},
	}
}

func newServeCmd(getApp func() *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve backend commands over HTTP for a front-end",
		Args:  exactArgs(0, ""),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := getApp()
			if addr == "" {
				addr = a.cfg.ListenAddr
			}
			ctx := cmd.Context()
			ready := make(chan string, 1)
			go func() {
				select {
				case bound := <-ready:
					a.out.Success("Listening on http://" + bound)
					a.out.Print(a.out.Gray("POST /invoke/<command>, GET /commands (Ctrl-C to stop)"))
				case <-ctx.Done():
				}
			}()
			if err := bridge.NewServer(a.registry, a.log).ListenAndServe(ctx, addr, ready); err != nil {
				return err
			}
			// A clean shutdown after Ctrl-C still counts as an interrupt.
			return ctx.Err()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	return cmd
}
