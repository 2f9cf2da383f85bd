package tasks

import (
	"context"
	"fmt"

	"github.com/8bitbanana/music-converter/internal/matcher"
	"github.com/8bitbanana/music-converter/internal/models"
	"github.com/8bitbanana/music-converter/internal/shared"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Direction selects which service a bulk update resolves tracks against.
type Direction int

const (
	// ToYouTube resolves catalog tracks against the video service.
	ToYouTube Direction = iota
	// ToSpotify resolves video tracks against the primary catalog.
	ToSpotify
)

func (d Direction) String() string {
	switch d {
	case ToYouTube:
		return "to_youtube"
	case ToSpotify:
		return "to_spotify"
	default:
		return ""
	}
}

// Resolver finds a track's counterpart on the other service.
// Implemented by the matching engine.
type Resolver interface {
	ToYouTube(ctx context.Context, track *models.Track) (matcher.Match, error)
	ToSpotify(ctx context.Context, track *models.Track) (matcher.Match, error)
}

// TrackUpdateResult records the resolution of a single track within a bulk
// operation. Err is set when the resolution itself failed (as opposed to
// finding no match).
type TrackUpdateResult struct {
	Track      *models.Track
	Outcome    matcher.Outcome
	Confidence float64
	Err        error
}

// UpdateResult summarizes one bulk update operation.
type UpdateResult struct {
	OperationID string
	Direction   Direction
	Total       int
	Accepted    int
	Unverified  int
	Unmatched   int
	Failed      int
	Tracks      []TrackUpdateResult
}

// UpdateEngine resolves whole track lists against the other service.
type UpdateEngine struct {
	resolver Resolver
	limiter  *rate.Limiter
	logger   *log.Logger
}

// NewUpdateEngine creates an update engine. limiter may be nil to run
// without rate limiting.
func NewUpdateEngine(resolver Resolver, limiter *rate.Limiter, logger *log.Logger) *UpdateEngine {
	if logger == nil {
		logger = log.Default()
	}
	return &UpdateEngine{resolver: resolver, limiter: limiter, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default so progress reporting never stalls the operation.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// UpdateAll resolves every track in the list, strictly in order. A failure
// on one track is recorded and logged, the track is left unresolved, and
// the batch continues. Cancellation is checked before each track; a
// cancelled operation returns the partial result alongside the ctx error.
func (e *UpdateEngine) UpdateAll(ctx context.Context, tracks []*models.Track, direction Direction, progress chan<- ProgressUpdate) (*UpdateResult, error) {
	if e.resolver == nil {
		return nil, fmt.Errorf("%w: resolver not initialized", shared.ErrServiceUnavailable)
	}

	result := &UpdateResult{
		OperationID: uuid.NewString(),
		Direction:   direction,
		Total:       len(tracks),
		Tracks:      make([]TrackUpdateResult, 0, len(tracks)),
	}

	for i, track := range tracks {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				return result, err
			}
		}

		sendProgress(progress, resolvingTrackUpdate(result.OperationID, i+1, len(tracks), track))

		match, err := e.resolveOne(ctx, track, direction)
		if err != nil {
			e.logger.Error("track resolution failed", "track", track.String(), "err", err)
			result.Failed++
			result.Tracks = append(result.Tracks, TrackUpdateResult{Track: track, Err: err})
			sendProgress(progress, trackFailedUpdate(result.OperationID, i+1, len(tracks), track, err))
			continue
		}

		switch match.Outcome {
		case matcher.Accepted:
			result.Accepted++
		case matcher.AcceptedUnverified:
			result.Unverified++
		default:
			result.Unmatched++
		}
		result.Tracks = append(result.Tracks, TrackUpdateResult{
			Track:      track,
			Outcome:    match.Outcome,
			Confidence: match.Confidence,
		})
		sendProgress(progress, trackResolvedUpdate(result.OperationID, i+1, len(tracks), track, match.Outcome.String()))
	}

	sendProgress(progress, operationDoneUpdate(result.OperationID, result))
	return result, nil
}

func (e *UpdateEngine) resolveOne(ctx context.Context, track *models.Track, direction Direction) (matcher.Match, error) {
	switch direction {
	case ToYouTube:
		return e.resolver.ToYouTube(ctx, track)
	case ToSpotify:
		return e.resolver.ToSpotify(ctx, track)
	default:
		return matcher.Match{}, fmt.Errorf("%w: unknown direction %d", shared.ErrInvalidArgument, direction)
	}
}
