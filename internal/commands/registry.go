package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrUnknownCommand = errors.New("unknown command")

// Handler is a command exposed to the front-end. args is the raw JSON
// argument object and may be empty.
type Handler func(ctx context.Context, args json.RawMessage) (any, error)

// Result is what the front-end receives: either data or an error string.
type Result struct {
	OK    bool   `json:"ok"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

type Registry struct {
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: map[string]Handler{}}
}

// Register adds a handler. Registering a name twice panics.
func (r *Registry) Register(name string, h Handler) {
	name = strings.TrimSpace(name)
	if name == "" || h == nil {
		panic("commands: empty name or nil handler")
	}
	if _, dup := r.handlers[name]; dup {
		panic("commands: duplicate handler " + name)
	}
	r.handlers[name] = h
}

func (r *Registry) Has(name string) bool {
	_, ok := r.handlers[name]
	return ok
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Call runs a handler and returns its raw outcome.
func (r *Registry) Call(ctx context.Context, name string, args json.RawMessage) (any, error) {
	h, ok := r.handlers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	return h(ctx, args)
}

// Invoke runs a handler and folds the outcome into a Result.
func (r *Registry) Invoke(ctx context.Context, name string, args json.RawMessage) Result {
	data, err := r.Call(ctx, name, args)
	if err != nil {
		return Result{OK: false, Error: err.Error()}
	}
	return Result{OK: true, Data: data}
}

// decodeArgs unmarshals args into v. Missing or null args leave v untouched.
func decodeArgs(args json.RawMessage, v any) error {
	trimmed := strings.TrimSpace(string(args))
	if trimmed == "" || trimmed == "null" {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}
