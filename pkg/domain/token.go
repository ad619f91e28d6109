package domain

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxTokenSize caps one recognised token in bytes. Gesture tokens are
// words or short phrases, so anything larger is a client bug.
const MaxTokenSize = 256

var (
	ErrTokenTooLarge = errors.New("token exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("token contains invalid UTF-8 sequences")
)

// SanitizeToken rejects oversized or malformed tokens and strips control
// characters, which would otherwise end up in prompts and logs.
func SanitizeToken(token string) (string, error) {
	if len(token) > MaxTokenSize {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrTokenTooLarge, len(token), MaxTokenSize)
	}
	if !utf8.ValidString(token) {
		return "", ErrInvalidUTF8
	}
	if strings.IndexFunc(token, unicode.IsControl) < 0 {
		return token, nil
	}

	var b strings.Builder
	b.Grow(len(token))
	for _, r := range token {
		if !unicode.IsControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

// IsInvalidToken reports whether err came from SanitizeToken.
func IsInvalidToken(err error) bool {
	return errors.Is(err, ErrTokenTooLarge) || errors.Is(err, ErrInvalidUTF8)
}
