// Package middleware decorates a ports.StateStore with encryption and masks
// personal answers on their way out to inspection and transcript surfaces.
package middleware

import "github.com/aretw0/intake/pkg/ports"

// Middleware wraps a StateStore to add behavior.
type Middleware func(ports.StateStore) ports.StateStore

// Chain applies middlewares so the first one listed is the outermost.
func Chain(store ports.StateStore, mws ...Middleware) ports.StateStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
