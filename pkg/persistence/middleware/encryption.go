package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/aacflow/pkg/ports"
)

// ErrInvalidKey is returned when a key is not 32 bytes long.
var ErrInvalidKey = errors.New("encryption key must be 32 bytes (AES-256)")

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

// Validate checks every key length.
func (c EncryptionConfig) Validate() error {
	if len(c.ActiveKey) != 32 {
		return ErrInvalidKey
	}
	for i, k := range c.FallbackKeys {
		if len(k) != 32 {
			return fmt.Errorf("fallback key %d: %w", i, ErrInvalidKey)
		}
	}
	return nil
}

type encryptionMiddleware struct {
	next   ports.PhraseStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that encrypts every token with
// AES-GCM before it reaches the store. Each stored element is the base64 of
// nonce||ciphertext, so list semantics (ranges, caps) are unaffected.
func NewEncryptionMiddleware(config EncryptionConfig) (Middleware, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return func(next ports.PhraseStore) ports.PhraseStore {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}, nil
}

func (m *encryptionMiddleware) Append(ctx context.Context, key string, tokens ...string) error {
	sealed := make([]string, len(tokens))
	for i, t := range tokens {
		ciphertext, err := encrypt([]byte(t), m.config.ActiveKey)
		if err != nil {
			return fmt.Errorf("failed to encrypt token: %w", err)
		}
		sealed[i] = base64.StdEncoding.EncodeToString(ciphertext)
	}
	return m.next.Append(ctx, key, sealed...)
}

func (m *encryptionMiddleware) Range(ctx context.Context, key string, start, stop int64) ([]string, error) {
	sealed, err := m.next.Range(ctx, key, start, stop)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(sealed))
	for i, s := range sealed {
		plain, err := m.open(s)
		if err != nil {
			return nil, fmt.Errorf("element %d of %s: %w", i, key, err)
		}
		out[i] = plain
	}
	return out, nil
}

// Get decrypts a legacy value. The value is expected to be a JSON array of
// sealed tokens, mirroring what Append stores; it is returned as a JSON
// array of plain tokens.
func (m *encryptionMiddleware) Get(ctx context.Context, key string) (string, bool, error) {
	raw, ok, err := m.next.Get(ctx, key)
	if err != nil || !ok {
		return raw, ok, err
	}

	var sealed []string
	if err := json.Unmarshal([]byte(raw), &sealed); err != nil {
		// Fail secure: an unsealed value is never passed through.
		return "", false, fmt.Errorf("value of %s is not a sealed token list: %w", key, err)
	}
	plain := make([]string, len(sealed))
	for i, s := range sealed {
		if plain[i], err = m.open(s); err != nil {
			return "", false, fmt.Errorf("element %d of %s: %w", i, key, err)
		}
	}
	out, err := json.Marshal(plain)
	if err != nil {
		return "", false, err
	}
	return string(out), true, nil
}

func (m *encryptionMiddleware) open(s string) (string, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return "", fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}
	plain, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// Helpers

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}

	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}

	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	ciphertextBytes := ciphertext[gcm.NonceSize():]

	return gcm.Open(nil, nonce, ciphertextBytes, nil)
}
