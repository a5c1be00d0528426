package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

type Options struct {
	JSON    bool
	Plain   bool
	Quiet   bool
	Verbose bool
	NoColor bool

	Stdout io.Writer
	Stderr io.Writer
}

type Output struct {
	JSON    bool
	Plain   bool
	Quiet   bool
	Verbose bool

	stdout io.Writer
	stderr io.Writer

	green *color.Color
	red   *color.Color
	gray  *color.Color
	bold  *color.Color
	cyan  *color.Color
}

func New(opts Options) *Output {
	if opts.NoColor || opts.Plain {
		color.NoColor = true
	}
	stdout, stderr := opts.Stdout, opts.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return &Output{
		JSON:    opts.JSON,
		Plain:   opts.Plain,
		Quiet:   opts.Quiet,
		Verbose: opts.Verbose,
		stdout:  stdout,
		stderr:  stderr,
		green:   color.New(color.FgGreen),
		red:     color.New(color.FgRed),
		gray:    color.New(color.FgHiBlack),
		bold:    color.New(color.Bold),
		cyan:    color.New(color.FgCyan),
	}
}

func (o *Output) Gray(s string) string { return o.gray.Sprint(s) }
func (o *Output) Bold(s string) string { return o.bold.Sprint(s) }
func (o *Output) Cyan(s string) string { return o.cyan.Sprint(s) }

func (o *Output) Print(msg string) {
	if o.JSON || o.Quiet {
		return
	}
	fmt.Fprintln(o.stdout, msg)
}

func (o *Output) Success(msg string) {
	if o.JSON || o.Quiet {
		return
	}
	fmt.Fprintln(o.stdout, o.green.Sprint(msg))
}

func (o *Output) Debug(msg string) {
	if o.JSON || !o.Verbose {
		return
	}
	fmt.Fprintln(o.stderr, o.Gray(msg))
}

func (o *Output) Error(msg string) {
	fmt.Fprintln(o.stderr, o.red.Sprint(msg))
}

// List prints one item per line, as a bulleted list unless plain output is on.
func (o *Output) List(title string, items []string) {
	if o.JSON || o.Quiet {
		return
	}
	if title != "" && !o.Plain {
		fmt.Fprintln(o.stdout, o.Bold(title))
	}
	for _, item := range items {
		if o.Plain {
			fmt.Fprintln(o.stdout, item)
			continue
		}
		fmt.Fprintln(o.stdout, "  - "+item)
	}
}

func (o *Output) EmitJSON(v any) error {
	enc := json.NewEncoder(o.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
