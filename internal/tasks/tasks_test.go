package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/8bitbanana/music-converter/internal/matcher"
	"github.com/8bitbanana/music-converter/internal/models"
)

// fakeResolver scripts per-title outcomes so bulk behavior can be asserted
// without any network. Safe for concurrent use by pool workers.
type fakeResolver struct {
	outcomes map[string]matcher.Outcome
	failures map[string]error

	mu       sync.Mutex
	resolved []string
}

func (r *fakeResolver) resolve(track *models.Track) (matcher.Match, error) {
	r.mu.Lock()
	r.resolved = append(r.resolved, track.Title)
	r.mu.Unlock()
	if err, ok := r.failures[track.Title]; ok {
		return matcher.Match{}, err
	}
	outcome, ok := r.outcomes[track.Title]
	if !ok {
		outcome = matcher.NoMatch
	}
	return matcher.Match{Track: track, Outcome: outcome, Confidence: 0.9}, nil
}

func (r *fakeResolver) ToYouTube(ctx context.Context, track *models.Track) (matcher.Match, error) {
	return r.resolve(track)
}

func (r *fakeResolver) ToSpotify(ctx context.Context, track *models.Track) (matcher.Match, error) {
	return r.resolve(track)
}

func trackList(titles ...string) []*models.Track {
	tracks := make([]*models.Track, len(titles))
	for i, title := range titles {
		tracks[i] = models.NewTrack(title, "Artist", "")
	}
	return tracks
}

func TestUpdateAll(t *testing.T) {
	t.Run("counts outcomes", func(t *testing.T) {
		resolver := &fakeResolver{outcomes: map[string]matcher.Outcome{
			"A": matcher.Accepted,
			"B": matcher.AcceptedUnverified,
			"C": matcher.NoMatch,
		}}
		engine := NewUpdateEngine(resolver, nil, nil)

		result, err := engine.UpdateAll(context.Background(), trackList("A", "B", "C"), ToYouTube, nil)
		if err != nil {
			t.Fatalf("UpdateAll() error: %v", err)
		}
		if result.Accepted != 1 || result.Unverified != 1 || result.Unmatched != 1 || result.Failed != 0 {
			t.Errorf("result = %+v", result)
		}
		if result.OperationID == "" {
			t.Error("operation id missing")
		}
	})

	t.Run("a failing track does not stop the batch", func(t *testing.T) {
		resolver := &fakeResolver{
			outcomes: map[string]matcher.Outcome{"A": matcher.Accepted, "C": matcher.Accepted},
			failures: map[string]error{"B": errors.New("search exploded")},
		}
		engine := NewUpdateEngine(resolver, nil, nil)

		result, err := engine.UpdateAll(context.Background(), trackList("A", "B", "C"), ToSpotify, nil)
		if err != nil {
			t.Fatalf("UpdateAll() error: %v", err)
		}
		if result.Failed != 1 || result.Accepted != 2 {
			t.Errorf("result = %+v", result)
		}
		// The failing track must still have been followed by the rest.
		if len(resolver.resolved) != 3 {
			t.Errorf("resolved %v, want all three attempted", resolver.resolved)
		}
		if result.Tracks[1].Err == nil {
			t.Error("per-track error not recorded")
		}
	})

	t.Run("progress updates arrive without blocking", func(t *testing.T) {
		resolver := &fakeResolver{outcomes: map[string]matcher.Outcome{"A": matcher.Accepted}}
		engine := NewUpdateEngine(resolver, nil, nil)

		progress := make(chan ProgressUpdate, 16)
		result, err := engine.UpdateAll(context.Background(), trackList("A"), ToYouTube, progress)
		if err != nil {
			t.Fatalf("UpdateAll() error: %v", err)
		}
		close(progress)

		var phases []Phase
		for update := range progress {
			if update.OperationID != result.OperationID {
				t.Errorf("update for foreign operation %q", update.OperationID)
			}
			phases = append(phases, update.Phase)
		}
		if len(phases) < 3 || phases[len(phases)-1] != OperationDone {
			t.Errorf("phases = %v, want resolve updates then a final done", phases)
		}
	})

	t.Run("full channel drops updates instead of stalling", func(t *testing.T) {
		resolver := &fakeResolver{outcomes: map[string]matcher.Outcome{}}
		engine := NewUpdateEngine(resolver, nil, nil)

		// Unbuffered channel with no reader: every send must fall through.
		progress := make(chan ProgressUpdate)
		if _, err := engine.UpdateAll(context.Background(), trackList("A", "B"), ToYouTube, progress); err != nil {
			t.Fatalf("UpdateAll() error: %v", err)
		}
	})

	t.Run("cancellation returns the partial result", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		engine := NewUpdateEngine(&fakeResolver{}, nil, nil)
		result, err := engine.UpdateAll(ctx, trackList("A", "B"), ToYouTube, nil)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("error = %v, want context.Canceled", err)
		}
		if result == nil || len(result.Tracks) != 0 {
			t.Errorf("partial result = %+v", result)
		}
	})

	t.Run("nil resolver", func(t *testing.T) {
		engine := NewUpdateEngine(nil, nil, nil)
		if _, err := engine.UpdateAll(context.Background(), trackList("A"), ToYouTube, nil); err == nil {
			t.Error("UpdateAll() succeeded without a resolver")
		}
	})
}

func TestPool(t *testing.T) {
	t.Run("operations are independent", func(t *testing.T) {
		resolver := &fakeResolver{
			outcomes: map[string]matcher.Outcome{"ok1": matcher.Accepted, "ok2": matcher.Accepted},
			failures: map[string]error{"boom": errors.New("resolver failure")},
		}
		pool := NewPool(NewUpdateEngine(resolver, nil, nil), 2)

		ops := []Operation{
			{Tracks: trackList("ok1"), Direction: ToYouTube},
			{Tracks: trackList("boom"), Direction: ToYouTube},
			{Tracks: trackList("ok2"), Direction: ToSpotify},
		}
		results := pool.Run(context.Background(), ops, nil)

		if len(results) != 3 {
			t.Fatalf("got %d results, want 3", len(results))
		}
		// The middle operation has a failed track but still completes; per
		// track failures never abort an operation, let alone its siblings.
		for i, res := range results {
			if res.Err != nil {
				t.Errorf("operation %d aborted: %v", i, res.Err)
			}
		}
		if results[0].Result.Accepted != 1 || results[2].Result.Accepted != 1 {
			t.Error("healthy operations affected by the failing one")
		}
		if results[1].Result.Failed != 1 {
			t.Errorf("failing operation result = %+v", results[1].Result)
		}
	})

	t.Run("distinct operation ids", func(t *testing.T) {
		resolver := &fakeResolver{}
		pool := NewPool(NewUpdateEngine(resolver, nil, nil), MaxWorkers)

		ops := make([]Operation, 6)
		for i := range ops {
			ops[i] = Operation{Tracks: trackList(fmt.Sprintf("t%d", i)), Direction: ToYouTube}
		}
		results := pool.Run(context.Background(), ops, nil)

		seen := map[string]bool{}
		for _, res := range results {
			if res.Result == nil {
				t.Fatal("missing result")
			}
			if seen[res.Result.OperationID] {
				t.Errorf("duplicate operation id %q", res.Result.OperationID)
			}
			seen[res.Result.OperationID] = true
		}
	})

	t.Run("worker count is clamped", func(t *testing.T) {
		if p := NewPool(nil, 0); p.workers != MaxWorkers {
			t.Errorf("workers = %d, want %d", p.workers, MaxWorkers)
		}
		if p := NewPool(nil, 100); p.workers != MaxWorkers {
			t.Errorf("workers = %d, want %d", p.workers, MaxWorkers)
		}
		if p := NewPool(nil, 2); p.workers != 2 {
			t.Errorf("workers = %d, want 2", p.workers)
		}
	})
}
