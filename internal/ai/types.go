package ai

import (
	"context"
	"errors"
)

var (
	ErrMissingToken   = errors.New("API token not found in store. Please configure your API token first.")
	ErrInvalidRequest = errors.New("key and genre are required")
	ErrNoProviders    = errors.New("no ai providers configured")
)

// Request names the musical key and genre a suggestion is built around.
type Request struct {
	Key   string `json:"key"`
	Genre string `json:"genre"`
}

type Provider interface {
	Name() string
	ChordProgression(ctx context.Context, req Request) (string, error)
	Keywords(ctx context.Context, req Request) ([]string, error)
}

type RankedKeyword struct {
	Keyword string `json:"keyword"`
	Votes   int    `json:"votes"`
}

// TokenFunc resolves a credential at call time so a token saved after
// startup is picked up without restarting.
type TokenFunc func() (string, error)

func StaticToken(token string) TokenFunc {
	return func() (string, error) { return token, nil }
}
