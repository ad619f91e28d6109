package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/aacflow/pkg/ports"
)

// Mask replaces a token that matched a PII pattern.
const Mask = "***"

type piiMiddleware struct {
	next     ports.PhraseStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks tokens matching any of the
// patterns before they are appended, e.g. spelled-out phone numbers.
// Reads are passed through untouched.
func NewPIIMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid mask pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.PhraseStore) ports.PhraseStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *piiMiddleware) Append(ctx context.Context, key string, tokens ...string) error {
	// Copy so the caller's slice is left as it was.
	masked := make([]string, len(tokens))
	for i, t := range tokens {
		masked[i] = m.mask(t)
	}
	return m.next.Append(ctx, key, masked...)
}

func (m *piiMiddleware) Range(ctx context.Context, key string, start, stop int64) ([]string, error) {
	return m.next.Range(ctx, key, start, stop)
}

func (m *piiMiddleware) Get(ctx context.Context, key string) (string, bool, error) {
	return m.next.Get(ctx, key)
}

func (m *piiMiddleware) mask(token string) string {
	for _, p := range m.patterns {
		if p.MatchString(token) {
			return Mask
		}
	}
	return token
}
