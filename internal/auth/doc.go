// Package auth maps (service, required scopes, account identity) to a
// usable bearer credential, handling persistence and refresh without
// re-running interactive login.
//
// Credentials live in a flat JSON list on disk, one file per service,
// read in full and rewritten in full (atomically) on every mutation. A
// [Store] serializes all refresh/delete/wipe operations behind a mutex so
// concurrent refreshes against the same account cannot race on
// "remove stale, append new".
//
// Browser-flow mechanics are not here: the store consumes an
// already-obtained authorization code or access token and exposes the
// token-endpoint primitives (exchange, refresh) plus an identity check.
package auth
