package main

import (
	"context"
	"fmt"

	"github.com/8bitbanana/music-converter/internal/matcher"
	"github.com/8bitbanana/music-converter/internal/models"
	"github.com/8bitbanana/music-converter/internal/shared"
	"github.com/urfave/cli/v3"
)

// Match resolves a single track against the target service. The track
// argument accepts a bare id, a share link, or a URI; the service-native
// id is fished out of whatever was pasted.
func (r *Runner) Match(ctx context.Context, cmd *cli.Command) error {
	target, err := models.ParseService(cmd.String("to"))
	if err != nil {
		return err
	}

	var source models.Service
	switch target {
	case models.YouTube:
		source = models.Spotify
	case models.Spotify:
		source = models.YouTube
	default:
		return fmt.Errorf("%w: cannot match toward %s", shared.ErrInvalidArgument, target)
	}

	pasted := cmd.StringArg("track")
	if pasted == "" {
		return fmt.Errorf("%w: track id or link", shared.ErrMissingArgument)
	}
	ids, err := models.ExtractServiceIDs(source, pasted)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return fmt.Errorf("%w: no %s track id found in %q", shared.ErrTrackNotFound, source, pasted)
	}

	track, err := r.lookupTrack(ctx, source, ids[0])
	if err != nil {
		return err
	}
	if track == nil {
		return fmt.Errorf("%w: %s has no track %s", shared.ErrTrackNotFound, source, ids[0])
	}

	var match matcher.Match
	switch target {
	case models.YouTube:
		match, err = r.engine.ToYouTube(ctx, track)
	case models.Spotify:
		match, err = r.engine.ToSpotify(ctx, track)
	}
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"track":      match.Track,
			"outcome":    match.Outcome.String(),
			"confidence": match.Confidence,
			"link":       match.Track.Link(target),
		}, true)
	}

	if match.Outcome == matcher.NoMatch {
		return r.writePlain("✗ No match for %s on %s\n", track, target)
	}
	return r.writePlain("✓ %s → %s (%s, confidence %.2f)\n%s\n",
		track, target, match.Outcome, match.Confidence, match.Track.Link(target))
}

// lookupTrack fetches the source track by its service-native id.
func (r *Runner) lookupTrack(ctx context.Context, source models.Service, id string) (*models.Track, error) {
	switch source {
	case models.Spotify:
		return r.spotify.Track(ctx, id)
	case models.YouTube:
		return r.youtube.VideoTrack(ctx, id)
	default:
		return nil, fmt.Errorf("%w: no track lookup for %s", shared.ErrInvalidArgument, source)
	}
}
