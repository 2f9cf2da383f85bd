// package tasks implements bulk resolution operations over track libraries.
//
// The core abstraction is UpdateEngine, which walks a list of tracks and
// resolves each one against the other service through the matching engine.
// Operations emit progress updates via channels for non-blocking status
// reporting to the CLI layer, and Pool runs several independent operations
// concurrently under a shared rate limit.
package tasks
