package ai

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	keywordSplitRE = regexp.MustCompile(`[,\n•\-*]`)
	listNumberRE   = regexp.MustCompile(`^\d+\.?$`)
)

// ParseKeywords splits a free-form model answer into keywords. Separators are
// commas, newlines, bullets, dashes and asterisks; bare list numbers are dropped.
func ParseKeywords(text string) []string {
	parts := keywordSplitRE.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || listNumberRE.MatchString(p) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func progressionPrompt(req Request) string {
	return fmt.Sprintf("Generate a chord progression in the key of %s in the style of %s only give the the chords and no explanation", req.Key, req.Genre)
}

func (r Request) validate() (Request, error) {
	r.Key = strings.TrimSpace(r.Key)
	r.Genre = strings.TrimSpace(r.Genre)
	if r.Key == "" || r.Genre == "" {
		return r, ErrInvalidRequest
	}
	return r, nil
}
