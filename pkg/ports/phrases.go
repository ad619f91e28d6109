package ports

import (
	"context"
	"errors"
)

// ErrNoRecorder is returned by Record when the engine has no phrase recorder.
var ErrNoRecorder = errors.New("no phrase recorder configured")

// PhraseSource defines how the engine reads a user's recorded phrase tokens.
// Keys are opaque to the source; the workflow derives them from the user ID.
type PhraseSource interface {
	// Range returns the list elements between start and stop (inclusive),
	// with Redis LRANGE semantics for negative indices.
	// A missing key yields an empty slice and no error.
	Range(ctx context.Context, key string, start, stop int64) ([]string, error)

	// Get returns the plain string value stored under key.
	// The boolean is false when the key does not exist.
	Get(ctx context.Context, key string) (string, bool, error)
}

// PhraseRecorder appends freshly recognised tokens to a user's phrase list.
type PhraseRecorder interface {
	Append(ctx context.Context, key string, tokens ...string) error
}

// PhraseStore is a source that can also record.
type PhraseStore interface {
	PhraseSource
	PhraseRecorder
}
