// Package models defines the canonical in-memory representation of a song
// and its per-service bindings.
//
// A [Track] carries a fixed set of service bindings (one per [Service]):
// the service-native identifier plus the duration the service reported.
// The duration consensus (the arithmetic mean of all known per-service
// durations) is recomputed on demand and used by the matching engine to
// sanity-check candidate bindings via [Track.RecordDuration].
//
// The service set is closed and known at compile time. Binding an unknown
// service is unrepresentable through the typed API; parsing an external
// service name can fail with [ErrInvalidService].
package models
