package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/aacflow/pkg/adapters/memory"
	"github.com/aretw0/aacflow/pkg/persistence/middleware"
)

func TestPIIMiddleware_Masking(t *testing.T) {
	underlyingStore := memory.NewStore()
	// Mask phone numbers and anything spelled as an e-mail address.
	mw, err := middleware.NewPIIMiddleware([]string{`^\+?[0-9][0-9 -]{6,}$`, `@`})
	if err != nil {
		t.Fatalf("NewPIIMiddleware failed: %v", err)
	}
	secureStore := mw(underlyingStore)

	ctx := context.Background()
	tokens := []string{"call", "010-1234-5678", "me@example.com", "please"}

	if err := secureStore.Append(ctx, "k", tokens...); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	// Caller's slice is not modified
	if tokens[1] != "010-1234-5678" {
		t.Error("Middleware modified the caller's tokens!")
	}

	stored, err := underlyingStore.Range(ctx, "k", 0, -1)
	if err != nil {
		t.Fatalf("Underlying range failed: %v", err)
	}
	want := []string{"call", middleware.Mask, middleware.Mask, "please"}
	for i := range want {
		if stored[i] != want[i] {
			t.Errorf("element %d: got %q, want %q", i, stored[i], want[i])
		}
	}
}

func TestPIIMiddleware_InvalidPattern(t *testing.T) {
	if _, err := middleware.NewPIIMiddleware([]string{"("}); err == nil {
		t.Error("Expected an error for an invalid pattern")
	}
}

func TestWrap_Order(t *testing.T) {
	underlyingStore := memory.NewStore()
	pii, _ := middleware.NewPIIMiddleware([]string{"secret"})
	enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	if err != nil {
		t.Fatal(err)
	}

	// Masking runs first, then the masked token is sealed.
	store := middleware.Wrap(underlyingStore, pii, enc)
	ctx := context.Background()
	if err := store.Append(ctx, "k", "secret", "ok"); err != nil {
		t.Fatal(err)
	}

	got, err := store.Range(ctx, "k", 0, -1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != middleware.Mask || got[1] != "ok" {
		t.Errorf("Unexpected tokens %v", got)
	}
}
