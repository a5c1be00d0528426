package ai

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const ProviderAll = "all"

// Assistant routes requests to a named provider, or to every provider when
// asked for "all".
type Assistant struct {
	providers []Provider
	log       *zap.Logger
}

// NewAssistant keeps providers in the given order; that order decides which
// provider answers first for "all" progressions.
func NewAssistant(log *zap.Logger, providers ...Provider) *Assistant {
	if log == nil {
		log = zap.NewNop()
	}
	return &Assistant{providers: providers, log: log}
}

func (a *Assistant) Providers() []string {
	names := make([]string, 0, len(a.providers))
	for _, p := range a.providers {
		names = append(names, p.Name())
	}
	return names
}

func (a *Assistant) provider(name string) (Provider, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, p := range a.providers {
		if p.Name() == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("unknown provider: %q", name)
}

func (a *Assistant) ChordProgression(ctx context.Context, provider string, req Request) (string, error) {
	req, err := req.validate()
	if err != nil {
		return "", err
	}
	if strings.EqualFold(provider, ProviderAll) {
		return a.firstProgression(ctx, req)
	}
	p, err := a.provider(provider)
	if err != nil {
		return "", err
	}
	return p.ChordProgression(ctx, req)
}

func (a *Assistant) firstProgression(ctx context.Context, req Request) (string, error) {
	if len(a.providers) == 0 {
		return "", ErrNoProviders
	}
	var errs []error
	for _, p := range a.providers {
		text, err := p.ChordProgression(ctx, req)
		if err != nil {
			a.log.Debug("provider failed", zap.String("provider", p.Name()), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		return text, nil
	}
	return "", errors.Join(errs...)
}

func (a *Assistant) Keywords(ctx context.Context, provider string, req Request) ([]string, error) {
	req, err := req.validate()
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(provider, ProviderAll) {
		ranked, err := a.RankedKeywords(ctx, req)
		if err != nil {
			return nil, err
		}
		out := make([]string, 0, len(ranked))
		for _, k := range ranked {
			out = append(out, k.Keyword)
		}
		return out, nil
	}
	p, err := a.provider(provider)
	if err != nil {
		return nil, err
	}
	return p.Keywords(ctx, req)
}

// RankedKeywords asks every provider concurrently and merges the answers.
// Keywords are de-duplicated case-insensitively and ordered by how many
// providers suggested them. Individual provider failures are tolerated as
// long as one provider answers; cancelling ctx aborts the whole fan-out.
func (a *Assistant) RankedKeywords(ctx context.Context, req Request) ([]RankedKeyword, error) {
	if len(a.providers) == 0 {
		return nil, ErrNoProviders
	}

	results := make([][]string, len(a.providers))
	errs := make([]error, len(a.providers))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range a.providers {
		g.Go(func() error {
			kws, err := p.Keywords(gctx, req)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				a.log.Debug("provider failed", zap.String("provider", p.Name()), zap.Error(err))
				errs[i] = fmt.Errorf("%s: %w", p.Name(), err)
				return nil
			}
			results[i] = kws
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
		}
	}
	if failed == len(a.providers) {
		return nil, errors.Join(errs...)
	}
	return rankKeywords(results), nil
}

func rankKeywords(results [][]string) []RankedKeyword {
	order := []string{}
	byKey := map[string]*RankedKeyword{}
	for _, kws := range results {
		seen := map[string]struct{}{}
		for _, kw := range kws {
			key := strings.ToLower(kw)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			if existing, ok := byKey[key]; ok {
				existing.Votes++
				continue
			}
			byKey[key] = &RankedKeyword{Keyword: kw, Votes: 1}
			order = append(order, key)
		}
	}

	ranked := make([]RankedKeyword, 0, len(order))
	for _, key := range order {
		ranked = append(ranked, *byKey[key])
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Votes > ranked[j].Votes
	})
	return ranked
}
