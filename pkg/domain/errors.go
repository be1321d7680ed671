package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrTransientValidator marks a validator failure that should be retried by the user
// (network outage, rate limiting, authentication problems).
var ErrTransientValidator = errors.New("answer validator temporarily unavailable")

// ErrUnknownQuestion is returned when a question ID is not part of the catalog.
var ErrUnknownQuestion = errors.New("unknown question")

// ErrInvalidCatalog is returned when a catalog definition breaks its structural rules.
var ErrInvalidCatalog = errors.New("invalid catalog")
