package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/8bitbanana/music-converter/internal/models"
	"github.com/8bitbanana/music-converter/internal/shared"
	"github.com/8bitbanana/music-converter/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Update resolves every track of the given playlists against the target
// service. Multiple playlists run as independent operations through the
// worker pool; one playlist failing never stops the others.
func (r *Runner) Update(ctx context.Context, cmd *cli.Command) error {
	target, err := models.ParseService(cmd.String("to"))
	if err != nil {
		return err
	}

	var direction tasks.Direction
	switch target {
	case models.YouTube:
		direction = tasks.ToYouTube
	case models.Spotify:
		direction = tasks.ToSpotify
	default:
		return fmt.Errorf("%w: cannot update toward %s", shared.ErrInvalidArgument, target)
	}

	playlistIDs := cmd.StringSlice("playlist")
	ops := make([]tasks.Operation, 0, len(playlistIDs))
	for _, id := range playlistIDs {
		tracks, err := r.playlistTracks(ctx, direction, id)
		if err != nil {
			return fmt.Errorf("%w: playlist %s: %v", shared.ErrPlaylistNotFound, id, err)
		}
		r.logger.Info("queued playlist", "id", id, "tracks", len(tracks))
		ops = append(ops, tasks.Operation{Tracks: tracks, Direction: direction})
	}

	progress := make(chan tasks.ProgressUpdate, 64)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range progress {
			r.logger.Info(update.Message, "operation", update.OperationID, "phase", update.Phase)
		}
	}()

	pool := tasks.NewPool(r.updates, tasks.MaxWorkers)
	results := pool.Run(ctx, ops, progress)
	close(progress)
	wg.Wait()

	if cmd.Bool("json") {
		summaries := make([]*tasks.UpdateResult, 0, len(results))
		for _, res := range results {
			summaries = append(summaries, res.Result)
		}
		return r.writeJSON(summaries, true)
	}

	for i, res := range results {
		if res.Err != nil {
			r.writePlain("✗ playlist %s aborted: %v\n", playlistIDs[i], res.Err)
			continue
		}
		sum := res.Result
		r.writePlain("✓ playlist %s: %d/%d resolved (%d unverified, %d unmatched, %d failed)\n",
			playlistIDs[i], sum.Accepted+sum.Unverified, sum.Total, sum.Unverified, sum.Unmatched, sum.Failed)
	}
	return nil
}

// playlistTracks loads the source playlist's tracks for the direction.
func (r *Runner) playlistTracks(ctx context.Context, direction tasks.Direction, playlistID string) ([]*models.Track, error) {
	switch direction {
	case tasks.ToYouTube:
		return r.spotify.PlaylistTracks(ctx, playlistID)
	case tasks.ToSpotify:
		return r.youtube.PlaylistTracks(ctx, playlistID)
	default:
		return nil, fmt.Errorf("%w: unknown direction", shared.ErrInvalidArgument)
	}
}

// Playlists lists the authenticated user's playlists on a service.
func (r *Runner) Playlists(ctx context.Context, cmd *cli.Command) error {
	service, err := models.ParseService(cmd.String("service"))
	if err != nil {
		return err
	}

	var playlists []models.Playlist
	switch service {
	case models.Spotify:
		playlists, err = r.spotify.MyPlaylists(ctx)
	case models.YouTube:
		playlists, err = r.youtube.MyPlaylists(ctx)
	default:
		return fmt.Errorf("%w: no playlist listing for %s", shared.ErrInvalidArgument, service)
	}
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}

	for _, pl := range playlists {
		if err := r.writePlain("%s\t%s (%d tracks, %s)\n", pl.ID, pl.Name, pl.ItemCount, pl.Owner); err != nil {
			return err
		}
	}
	return nil
}
