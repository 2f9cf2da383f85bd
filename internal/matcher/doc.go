// Package matcher resolves "same song, different service" without shared
// identifiers.
//
// Toward the video catalog, matching is a ranked search for
// "artist title" gated by the duration consensus check, with an explicit
// best-effort fallback to the top hit when no candidate's duration is
// consistent. Toward the primary catalog, whose search wants near-exact
// keywords, the engine broadens recall by expanding the artist and title
// into their word subsets ("powerset" terms), resolves the first artist
// hit, and scans that artist's full discography for the longest
// word-boundary substring match of the known title.
//
// Matching is heuristic by design: an [Outcome] distinguishes verified
// matches from the unverified fallback, and no match at all is a normal
// result, not an error.
package matcher
