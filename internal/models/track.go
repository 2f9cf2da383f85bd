package models

import (
	"fmt"
	"math"
	"strings"
)

// DurationWarnThreshold is the relative delta between a candidate duration
// and the current consensus above which the candidate is considered
// suspicious. The boundary itself is inclusive: a delta of exactly 0.2 is
// rejected.
const DurationWarnThreshold = 0.2

// ErrInvalidService is returned when an external service name cannot be
// mapped onto the known service set.
var ErrInvalidService = fmt.Errorf("invalid service name")

// Service identifies one of the catalogs a track can be bound to.
type Service int

const (
	Spotify Service = iota // primary catalog
	YouTube                // video catalog
	Local                  // local file handle
)

// AllServices lists every known service, in binding storage order.
var AllServices = [...]Service{Spotify, YouTube, Local}

func (s Service) String() string {
	switch s {
	case Spotify:
		return "spotify"
	case YouTube:
		return "youtube"
	case Local:
		return "local"
	default:
		return fmt.Sprintf("service(%d)", int(s))
	}
}

// ParseService maps an external service name onto a Service.
func ParseService(name string) (Service, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "spotify":
		return Spotify, nil
	case "youtube":
		return YouTube, nil
	case "local":
		return Local, nil
	default:
		return 0, fmt.Errorf("%w: %q (must be one of spotify, youtube, local)", ErrInvalidService, name)
	}
}

// Binding links a track to one service: the service-native identifier and
// the duration that service reported. An empty ID means the track is not
// yet resolved on that service; a nil Duration means no duration evidence.
type Binding struct {
	ID       string   `json:"id"`
	Duration *float64 `json:"duration"`
}

func (b Binding) equal(o Binding) bool {
	if b.ID != o.ID {
		return false
	}
	if (b.Duration == nil) != (o.Duration == nil) {
		return false
	}
	return b.Duration == nil || *b.Duration == *o.Duration
}

func (b Binding) clone() Binding {
	c := Binding{ID: b.ID}
	if b.Duration != nil {
		d := *b.Duration
		c.Duration = &d
	}
	return c
}

// Bindings holds one Binding per known service. The field set is fixed so
// an out-of-vocabulary service cannot be bound at all.
type Bindings struct {
	Spotify Binding `json:"spotify"`
	YouTube Binding `json:"youtube"`
	Local   Binding `json:"local"`
}

func (b *Bindings) get(s Service) *Binding {
	switch s {
	case Spotify:
		return &b.Spotify
	case YouTube:
		return &b.YouTube
	default:
		return &b.Local
	}
}

// Track is the canonical representation of a song across services.
type Track struct {
	Title    string   `json:"title"`
	Artist   string   `json:"artist"`
	Album    string   `json:"album,omitempty"`
	Services Bindings `json:"services"`
}

// NewTrack creates a Track with no service bindings. Album may be empty.
func NewTrack(title, artist, album string) *Track {
	return &Track{Title: title, Artist: artist, Album: album}
}

// Bind records the service-native identifier for the given service.
func (t *Track) Bind(s Service, id string) {
	t.Services.get(s).ID = id
}

// BindingFor returns the binding for the given service.
func (t *Track) BindingFor(s Service) Binding {
	return *t.Services.get(s)
}

// Duration returns the consensus duration: the arithmetic mean of all known
// per-service durations. It is recomputed on every call, never cached.
// Returns nil when no service has reported a duration.
func (t *Track) Duration() *float64 {
	var total float64
	var count int
	for _, s := range AllServices {
		if d := t.Services.get(s).Duration; d != nil {
			total += *d
			count++
		}
	}
	if count == 0 {
		return nil
	}
	mean := total / float64(count)
	return &mean
}

// RecordDuration stores a duration observation for the given service,
// guarded by the consensus check.
//
// With no prior consensus the value is stored and the call reports true.
// Otherwise the relative delta |consensus-d| / max(consensus, d) is compared
// against [DurationWarnThreshold]: below the threshold the value is stored
// and the call reports true; at or above it the value is stored only when
// force is set and the call reports false either way. A false return marks
// the bound service id as unverified.
//
// A nil duration with force set clears the stored value (detaching a bad
// link) and reports false.
func (t *Track) RecordDuration(s Service, d *float64, force bool) bool {
	binding := t.Services.get(s)
	if d == nil {
		if force {
			binding.Duration = nil
		}
		return false
	}

	consensus := t.Duration()
	if consensus == nil {
		v := *d
		binding.Duration = &v
		return true
	}

	delta := math.Abs(*consensus-*d) / math.Max(*consensus, *d)
	if delta >= DurationWarnThreshold {
		if force {
			v := *d
			binding.Duration = &v
		}
		return false
	}

	v := *d
	binding.Duration = &v
	return true
}

// Equal reports whether two tracks agree on title, artist, album, and every
// service binding. Used for diffing and undo snapshots, not matching.
func (t *Track) Equal(o *Track) bool {
	if o == nil {
		return false
	}
	if t.Title != o.Title || t.Artist != o.Artist || t.Album != o.Album {
		return false
	}
	for _, s := range AllServices {
		if !t.Services.get(s).equal(*o.Services.get(s)) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the track, suitable for preserving a
// snapshot across a mutation.
func (t *Track) Clone() *Track {
	c := &Track{Title: t.Title, Artist: t.Artist, Album: t.Album}
	c.Services.Spotify = t.Services.Spotify.clone()
	c.Services.YouTube = t.Services.YouTube.clone()
	c.Services.Local = t.Services.Local.clone()
	return c
}

// Link returns the shareable URL for the track on the given service, or an
// empty string when the track is unbound there. Local bindings are file
// handles and are returned verbatim.
func (t *Track) Link(s Service) string {
	b := t.Services.get(s)
	if b.ID == "" {
		return ""
	}
	switch s {
	case Spotify:
		return "https://open.spotify.com/track/" + b.ID
	case YouTube:
		return "https://www.youtube.com/watch?v=" + b.ID
	default:
		return b.ID
	}
}

func (t *Track) String() string {
	return fmt.Sprintf("%s by %s", t.Title, t.Artist)
}

// Playlist describes a track collection on one service, used for
// collection-level match results.
type Playlist struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Owner     string `json:"owner,omitempty"`
	ItemCount int    `json:"item_count"`
}
