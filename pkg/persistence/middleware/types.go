package middleware

import "github.com/aretw0/aacflow/pkg/ports"

// Middleware allows wrapping a PhraseStore to add behavior.
type Middleware func(ports.PhraseStore) ports.PhraseStore

// Wrap applies mws to store so that the first middleware is the outermost.
func Wrap(store ports.PhraseStore, mws ...Middleware) ports.PhraseStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
