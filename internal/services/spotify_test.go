package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/8bitbanana/music-converter/internal/models"
)

func newTestSpotify(srv *httptest.Server) *Spotify {
	return NewSpotify(NewClient(srv.Client(), nil), srv.URL, func() string { return "test-token" }, nil)
}

func TestSpotifySearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q", got)
		}
		switch r.URL.Query().Get("type") {
		case "artist":
			fmt.Fprint(w, `{"artists":{"items":[{"id":"art1","name":"Daft Punk"}]}}`)
		case "track":
			fmt.Fprint(w, `{"tracks":{"items":[{"id":"trk1","name":"One More Time","duration_ms":320000}]}}`)
		case "album":
			fmt.Fprint(w, `{"albums":{"items":[{"id":"alb1","name":"Discovery"}]}}`)
		default:
			t.Errorf("unexpected search type %q", r.URL.Query().Get("type"))
		}
	}))
	defer srv.Close()
	spotify := newTestSpotify(srv)

	t.Run("artists", func(t *testing.T) {
		artists, err := spotify.SearchArtists(context.Background(), "daft punk", 1)
		if err != nil {
			t.Fatalf("SearchArtists() error: %v", err)
		}
		if len(artists) != 1 || artists[0].Name != "Daft Punk" {
			t.Errorf("SearchArtists() = %+v", artists)
		}
	})

	t.Run("tracks", func(t *testing.T) {
		tracks, err := spotify.SearchTracks(context.Background(), "one more time", 5)
		if err != nil {
			t.Fatalf("SearchTracks() error: %v", err)
		}
		if len(tracks) != 1 || tracks[0].ID != "trk1" {
			t.Errorf("SearchTracks() = %+v", tracks)
		}
	})

	t.Run("albums", func(t *testing.T) {
		albums, err := spotify.SearchAlbums(context.Background(), "discovery", 1)
		if err != nil {
			t.Fatalf("SearchAlbums() error: %v", err)
		}
		if len(albums) != 1 || albums[0].Name != "Discovery" {
			t.Errorf("SearchAlbums() = %+v", albums)
		}
	})
}

func TestSpotifyGetAlbum(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/albums/alb1":
			fmt.Fprint(w, `{"id":"alb1","name":"Discovery"}`)
		case "/albums/gone":
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()
	spotify := newTestSpotify(srv)

	album, err := spotify.GetAlbum(context.Background(), "alb1")
	if err != nil {
		t.Fatalf("GetAlbum() error: %v", err)
	}
	if album == nil || album.Name != "Discovery" {
		t.Errorf("GetAlbum() = %+v", album)
	}

	if album, err = spotify.GetAlbum(context.Background(), "gone"); err != nil || album != nil {
		t.Errorf("GetAlbum(gone) = %+v, %v, want nil, nil", album, err)
	}
}

func TestSpotifyTrack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tracks/trk1":
			fmt.Fprint(w, `{"id":"trk1","name":"Song","duration_ms":200000,
				"artists":[{"id":"a","name":"Artist"}],"album":{"id":"al","name":"Album"}}`)
		case "/tracks/gone":
			w.WriteHeader(http.StatusNotFound)
		case "/tracks/localfile":
			fmt.Fprint(w, `{"id":"","name":"Ripped","is_local":true,"artists":[{"name":"Someone"}]}`)
		}
	}))
	defer srv.Close()
	spotify := newTestSpotify(srv)

	t.Run("converts to the canonical model", func(t *testing.T) {
		track, err := spotify.Track(context.Background(), "trk1")
		if err != nil {
			t.Fatalf("Track() error: %v", err)
		}
		if track.Title != "Song" || track.Artist != "Artist" || track.Album != "Album" {
			t.Errorf("Track() = %+v", track)
		}
		if b := track.BindingFor(models.Spotify); b.ID != "trk1" || b.Duration == nil || *b.Duration != 200 {
			t.Errorf("binding = %+v", b)
		}
	})

	t.Run("missing track is nil not error", func(t *testing.T) {
		track, err := spotify.Track(context.Background(), "gone")
		if err != nil {
			t.Fatalf("Track() error: %v", err)
		}
		if track != nil {
			t.Errorf("Track() = %+v, want nil", track)
		}
	})

	t.Run("local media stays unbound", func(t *testing.T) {
		track, err := spotify.Track(context.Background(), "localfile")
		if err != nil {
			t.Fatalf("Track() error: %v", err)
		}
		if b := track.BindingFor(models.Spotify); b.ID != "" || b.Duration != nil {
			t.Errorf("local media bound to catalog: %+v", b)
		}
	})
}

func TestSpotifyDiscography(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/artists/art1/albums":
			fmt.Fprint(w, `{"items":[{"id":"al1","name":"First"},{"id":"al2","name":"Second"}],"next":null}`)
		case "/albums/al1/tracks":
			fmt.Fprint(w, `{"items":[{"id":"t1","name":"Opener","duration_ms":180000,"artists":[{"name":"Band"}]}],"next":null}`)
		case "/albums/al2/tracks":
			fmt.Fprint(w, `{"items":[{"id":"t2","name":"Closer","duration_ms":240000,"artists":[{"name":"Band"}]}],"next":null}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()
	spotify := newTestSpotify(srv)

	tracks, err := spotify.Discography(context.Background(), "art1")
	if err != nil {
		t.Fatalf("Discography() error: %v", err)
	}
	if len(tracks) != 2 {
		t.Fatalf("Discography() returned %d tracks, want 2", len(tracks))
	}
	// Album-track payloads omit the album; the enclosing album's name must
	// have been carried over.
	if tracks[0].Album != "First" || tracks[1].Album != "Second" {
		t.Errorf("albums = %q, %q", tracks[0].Album, tracks[1].Album)
	}
	if b := tracks[1].BindingFor(models.Spotify); b.ID != "t2" || *b.Duration != 240 {
		t.Errorf("binding = %+v", b)
	}
}

func TestSpotifyPlaylists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/me/playlists":
			fmt.Fprint(w, `{"items":[{"id":"pl1","name":"Mix","owner":{"id":"u1","display_name":"User"},"tracks":{"total":2}}],"next":null}`)
		case "/playlists/pl1/tracks":
			fmt.Fprint(w, `{"items":[
				{"track":{"id":"t1","name":"One","duration_ms":100000,"artists":[{"name":"A"}]}},
				{"track":null},
				{"track":{"id":"t2","name":"Two","duration_ms":200000,"artists":[{"name":"B"}]}}
			],"next":null}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()
	spotify := newTestSpotify(srv)

	t.Run("lists playlists", func(t *testing.T) {
		playlists, err := spotify.MyPlaylists(context.Background())
		if err != nil {
			t.Fatalf("MyPlaylists() error: %v", err)
		}
		if len(playlists) != 1 || playlists[0].Name != "Mix" || playlists[0].ItemCount != 2 {
			t.Errorf("MyPlaylists() = %+v", playlists)
		}
	})

	t.Run("reads tracks skipping null entries", func(t *testing.T) {
		tracks, err := spotify.PlaylistTracks(context.Background(), "pl1")
		if err != nil {
			t.Fatalf("PlaylistTracks() error: %v", err)
		}
		if len(tracks) != 2 {
			t.Fatalf("PlaylistTracks() returned %d tracks, want 2", len(tracks))
		}
		if tracks[0].Title != "One" || tracks[1].Title != "Two" {
			t.Errorf("titles = %q, %q", tracks[0].Title, tracks[1].Title)
		}
	})
}
