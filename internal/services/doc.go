// Package services turns the two vendors' unreliable, paginated,
// rate-limited HTTP surfaces into dependable request primitives and typed
// clients.
//
// # Request layer
//
// [Client.Execute] is the single choke point for transient-fault handling:
// connection-level failures and 5xx responses are retried up to
// [RetryAttempts] times with [ErrDelay] between attempts, HTTP 429 is
// absorbed with an unconditional [TooManyRequestsDelay] backoff, and any
// other unexpected status surfaces as a typed [APIError] whose concrete
// type ([SpotifyError] or [YouTubeError]) is selected by the request's
// target host. [Client.Paginate] layers cursor/page-token pagination on
// top, bounded by [PaginationPages].
//
// # Vendor clients
//
// [Spotify] and [YouTube] wrap the request layer with each vendor's
// endpoints and response shapes, converting items into [models.Track] and
// [models.Playlist] values. Base URLs are overridable for tests.
package services
