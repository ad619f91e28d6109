// Package middleware wraps a phrase store with at-rest protections:
// AES-GCM token encryption with key rotation, and masking of tokens that
// look like personal data before they are persisted.
package middleware
