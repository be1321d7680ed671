/*
Package session serializes access to survey sessions.

The flow engine assumes one in-flight answer per session. The Manager enforces
that for callers that share a store: a reference-counted mutex per session ID in
process, plus an optional distributed lock when several replicas share the store.
*/
package session
