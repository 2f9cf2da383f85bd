// Package repositories persists resolved cross-service bindings in SQLite.
//
// A binding row remembers that a track known by (service, service_id) was
// matched to counterpart_id on the other service, along with the canonical
// metadata at match time. The matching engine consults the cache before
// searching and stores verified matches afterwards, so repeated bulk
// updates over the same library do not re-spend request volume.
package repositories
