package tests

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/aacflow/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunPhraseStoreContract runs a suite of tests to verify that a PhraseStore implementation
// adheres to the defined interface contract.
func RunPhraseStoreContract(t *testing.T, store ports.PhraseStore) {
	t.Helper()

	ctx := context.Background()
	key := "phrases:contract-" + time.Now().Format("20060102150405.000000")

	t.Run("Range Missing Key", func(t *testing.T) {
		got, err := store.Range(ctx, key+"-missing", -10, -1)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("Get Missing Key", func(t *testing.T) {
		_, ok, err := store.Get(ctx, key+"-missing")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Append Then Range Preserves Order", func(t *testing.T) {
		require.NoError(t, store.Append(ctx, key, "help", "help"))
		require.NoError(t, store.Append(ctx, key, "fire"))

		got, err := store.Range(ctx, key, 0, -1)
		require.NoError(t, err)
		assert.Equal(t, []string{"help", "help", "fire"}, got)
	})

	t.Run("Negative Window Returns Newest", func(t *testing.T) {
		got, err := store.Range(ctx, key, -2, -1)
		require.NoError(t, err)
		assert.Equal(t, []string{"help", "fire"}, got)
	})

	t.Run("Append Nothing Is A No-op", func(t *testing.T) {
		require.NoError(t, store.Append(ctx, key))

		got, err := store.Range(ctx, key, 0, -1)
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})
}
