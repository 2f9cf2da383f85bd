package matcher

import (
	"context"
	"fmt"
	"strings"

	"github.com/8bitbanana/music-converter/internal/models"
	"github.com/8bitbanana/music-converter/internal/services"
	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/charmbracelet/log"
)

// Outcome classifies a single match attempt.
type Outcome int

const (
	// NoMatch means the other service returned nothing usable; the track
	// stays unresolved.
	NoMatch Outcome = iota
	// Accepted means a candidate passed the duration consistency check.
	Accepted
	// AcceptedUnverified means the top search hit was bound even though no
	// candidate's duration was consistent. Best effort, low confidence.
	AcceptedUnverified
	// Rejected means a candidate's duration disagreed with the consensus.
	// It never escapes a resolution; the loop moves on to the next candidate.
	Rejected
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case AcceptedUnverified:
		return "accepted_unverified"
	case Rejected:
		return "rejected"
	default:
		return "no_match"
	}
}

// Match is the result of one resolution attempt. Track is the (mutated)
// input track; Confidence is the title similarity of the chosen candidate,
// for reporting only.
type Match struct {
	Track      *models.Track
	Outcome    Outcome
	Confidence float64
}

// CatalogSearcher is the primary catalog surface the engine needs.
type CatalogSearcher interface {
	SearchArtists(ctx context.Context, keywords string, limit int) ([]services.Artist, error)
	Discography(ctx context.Context, artistID string) ([]*models.Track, error)
}

// VideoSearcher is the video catalog surface the engine needs.
type VideoSearcher interface {
	SearchVideos(ctx context.Context, keywords string, limit int) ([]services.VideoSearchResult, error)
	VideoDuration(ctx context.Context, id string) (*float64, error)
}

// BindingCache remembers resolved cross-service bindings so repeated bulk
// updates skip the search entirely. Implementations tolerate duplicates.
type BindingCache interface {
	Lookup(ctx context.Context, service models.Service, serviceID string, counterpart models.Service) (*models.Track, error)
	Store(ctx context.Context, track *models.Track, service, counterpart models.Service) error
}

// Engine is the cross-service matching engine.
type Engine struct {
	catalog CatalogSearcher
	video   VideoSearcher
	cache   BindingCache // optional
	logger  *log.Logger

	similarity *metrics.JaroWinkler
}

// NewEngine creates a matching engine. cache may be nil to disable binding
// reuse.
func NewEngine(catalog CatalogSearcher, video VideoSearcher, cache BindingCache, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{
		catalog:    catalog,
		video:      video,
		cache:      cache,
		logger:     logger,
		similarity: metrics.NewJaroWinkler(),
	}
}

// confidence scores how close the chosen candidate's title is to the query
// text. Reporting only, it never changes accept/reject decisions.
func (e *Engine) confidence(query, candidate string) float64 {
	return strutil.Similarity(strings.ToLower(query), strings.ToLower(candidate), e.similarity)
}

// checkCandidate classifies one video candidate's duration against the
// track's consensus. A consistent duration is recorded as a side effect.
func (e *Engine) checkCandidate(track *models.Track, duration *float64) Outcome {
	if track.RecordDuration(models.YouTube, duration, false) {
		return Accepted
	}
	return Rejected
}

// cachedCounterpart consults the binding cache for an earlier resolution
// of this track's binding on from toward to. Returns nil on miss (or when
// no cache is configured).
func (e *Engine) cachedCounterpart(ctx context.Context, track *models.Track, from, to models.Service) *models.Track {
	if e.cache == nil {
		return nil
	}
	id := track.BindingFor(from).ID
	if id == "" {
		return nil
	}
	cached, err := e.cache.Lookup(ctx, from, id, to)
	if err != nil {
		e.logger.Warn("binding cache lookup failed", "service", from, "id", id, "err", err)
		return nil
	}
	return cached
}

func (e *Engine) remember(ctx context.Context, track *models.Track, from, to models.Service) {
	if e.cache == nil {
		return
	}
	if err := e.cache.Store(ctx, track, from, to); err != nil {
		e.logger.Warn("binding cache store failed", "track", track.String(), "err", err)
	}
}

// ToYouTube finds the video catalog counterpart of a track known on the
// primary catalog. The top ranked results for "artist title" are checked
// in order against the duration consensus; the first consistent candidate
// is bound. When none is consistent the first hit is bound anyway with its
// duration force-recorded (the top hit is usually correct even when
// duration metadata is noisy). Zero results is a NoMatch, not an error.
func (e *Engine) ToYouTube(ctx context.Context, track *models.Track) (Match, error) {
	if cached := e.cachedCounterpart(ctx, track, models.Spotify, models.YouTube); cached != nil {
		track.Bind(models.YouTube, cached.BindingFor(models.YouTube).ID)
		track.RecordDuration(models.YouTube, cached.BindingFor(models.YouTube).Duration, false)
		return Match{Track: track, Outcome: Accepted, Confidence: 1}, nil
	}

	query := track.Artist + " " + track.Title
	results, err := e.video.SearchVideos(ctx, query, services.SearchResultLimit)
	if err != nil {
		return Match{}, err
	}
	if len(results) == 0 {
		return Match{Track: track, Outcome: NoMatch}, nil
	}

	var firstDuration *float64
	for _, result := range results {
		duration, err := e.video.VideoDuration(ctx, result.VideoID)
		if err != nil {
			return Match{}, err
		}
		if duration == nil {
			e.logger.Warn("candidate vanished during matching", "video", result.VideoID)
			continue
		}
		if firstDuration == nil {
			firstDuration = duration
		}
		if e.checkCandidate(track, duration) == Rejected {
			e.logger.Info("skipping candidate, duration too far from consensus", "video", result.VideoID)
			continue
		}
		track.Bind(models.YouTube, result.VideoID)
		e.remember(ctx, track, models.Spotify, models.YouTube)
		return Match{Track: track, Outcome: Accepted, Confidence: e.confidence(query, result.Title)}, nil
	}

	e.logger.Info("no candidate with a consistent duration, defaulting to the first result", "track", track.String())
	track.Bind(models.YouTube, results[0].VideoID)
	track.RecordDuration(models.YouTube, firstDuration, true)
	return Match{Track: track, Outcome: AcceptedUnverified, Confidence: e.confidence(query, results[0].Title)}, nil
}

// ToSpotify finds the primary catalog counterpart of a track known on the
// video catalog. Search terms from [SearchTerms] are tried in order; a
// failed search for one term is logged and skipped so a single bad term
// cannot abort the resolution. The first term yielding an artist has its
// entire discography scanned with [MatchTracks]; on a hit the catalog
// entry is treated as authoritative: title, artist, and album are
// overwritten and the catalog id bound.
func (e *Engine) ToSpotify(ctx context.Context, track *models.Track) (Match, error) {
	if cached := e.cachedCounterpart(ctx, track, models.YouTube, models.Spotify); cached != nil {
		track.Title = cached.Title
		track.Artist = cached.Artist
		track.Album = cached.Album
		track.Bind(models.Spotify, cached.BindingFor(models.Spotify).ID)
		track.RecordDuration(models.Spotify, cached.BindingFor(models.Spotify).Duration, false)
		return Match{Track: track, Outcome: Accepted, Confidence: 1}, nil
	}

	for _, term := range SearchTerms(track.Artist, track.Title) {
		if err := ctx.Err(); err != nil {
			return Match{}, err
		}

		artists, err := e.catalog.SearchArtists(ctx, term, 1)
		if err != nil {
			e.logger.Warn("search term failed, trying the next one", "term", term, "err", err)
			continue
		}
		if len(artists) == 0 {
			continue
		}

		tracks, err := e.catalog.Discography(ctx, artists[0].ID)
		if err != nil {
			return Match{}, fmt.Errorf("failed to fetch discography for %q: %w", artists[0].Name, err)
		}

		matched := MatchTracks(track.Title, tracks)
		if matched == nil {
			continue
		}

		confidence := e.confidence(track.Title, matched.Title)
		outcome := Accepted
		duration := matched.BindingFor(models.Spotify).Duration
		if !track.RecordDuration(models.Spotify, duration, false) {
			track.RecordDuration(models.Spotify, duration, true)
			outcome = AcceptedUnverified
		}

		// The catalog entry is canonical: adopt its metadata wholesale.
		track.Title = matched.Title
		track.Artist = matched.Artist
		track.Album = matched.Album
		track.Bind(models.Spotify, matched.BindingFor(models.Spotify).ID)

		if outcome == Accepted {
			e.remember(ctx, track, models.YouTube, models.Spotify)
		}
		return Match{Track: track, Outcome: outcome, Confidence: confidence}, nil
	}

	return Match{Track: track, Outcome: NoMatch}, nil
}
