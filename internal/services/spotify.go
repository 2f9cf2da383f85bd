// Primary catalog (Spotify Web API) client.
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/8bitbanana/music-converter/internal/models"
	"github.com/charmbracelet/log"
)

const defaultSpotifyBaseURL = "https://api.spotify.com/v1"

// Artist represents a catalog artist entity.
type Artist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Album represents a catalog album entity.
type Album struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TrackObject represents a catalog track entity.
type TrackObject struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	DurationMS int      `json:"duration_ms"`
	IsLocal    bool     `json:"is_local"`
	Artists    []Artist `json:"artists"`
	Album      *Album   `json:"album"`
}

type playlistOwner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type playlistObject struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Owner  playlistOwner `json:"owner"`
	Tracks struct {
		Total int `json:"total"`
	} `json:"tracks"`
}

// Spotify wraps the request layer with the primary catalog's endpoints.
type Spotify struct {
	api     *Client
	baseURL string
	token   func() string
	logger  *log.Logger
}

// NewSpotify creates a catalog client. token supplies the bearer credential
// for each request (typically an [auth.Store] lookup). An empty baseURL
// selects the production API.
func NewSpotify(api *Client, baseURL string, token func() string, logger *log.Logger) *Spotify {
	if baseURL == "" {
		baseURL = defaultSpotifyBaseURL
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Spotify{api: api, baseURL: baseURL, token: token, logger: logger}
}

func (s *Spotify) newRequest(ctx context.Context, method, path string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token())
	return req, nil
}

// SearchArtists searches the catalog for artist entities matching keywords.
func (s *Spotify) SearchArtists(ctx context.Context, keywords string, limit int) ([]Artist, error) {
	if limit <= 0 {
		limit = 1
	}
	path := "/search?q=" + url.QueryEscape(keywords) + "&type=artist&limit=" + strconv.Itoa(limit)
	req, err := s.newRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}

	var body struct {
		Artists struct {
			Items []Artist `json:"items"`
		} `json:"artists"`
	}
	if err := s.api.ExecuteJSON(ctx, req, http.StatusOK, &body); err != nil {
		return nil, err
	}
	return body.Artists.Items, nil
}

// SearchTracks searches the catalog for track entities matching keywords.
func (s *Spotify) SearchTracks(ctx context.Context, keywords string, limit int) ([]TrackObject, error) {
	if limit <= 0 {
		limit = 1
	}
	path := "/search?q=" + url.QueryEscape(keywords) + "&type=track&limit=" + strconv.Itoa(limit)
	req, err := s.newRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}

	var body struct {
		Tracks struct {
			Items []TrackObject `json:"items"`
		} `json:"tracks"`
	}
	if err := s.api.ExecuteJSON(ctx, req, http.StatusOK, &body); err != nil {
		return nil, err
	}
	return body.Tracks.Items, nil
}

// SearchAlbums searches the catalog for album entities matching keywords.
func (s *Spotify) SearchAlbums(ctx context.Context, keywords string, limit int) ([]Album, error) {
	if limit <= 0 {
		limit = 1
	}
	path := "/search?q=" + url.QueryEscape(keywords) + "&type=album&limit=" + strconv.Itoa(limit)
	req, err := s.newRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}

	var body struct {
		Albums struct {
			Items []Album `json:"items"`
		} `json:"albums"`
	}
	if err := s.api.ExecuteJSON(ctx, req, http.StatusOK, &body); err != nil {
		return nil, err
	}
	return body.Albums.Items, nil
}

// GetAlbum fetches a single album. A 404 is reported as (nil, nil).
func (s *Spotify) GetAlbum(ctx context.Context, id string) (*Album, error) {
	req, err := s.newRequest(ctx, http.MethodGet, "/albums/"+id)
	if err != nil {
		return nil, err
	}

	var album Album
	if err := s.api.ExecuteJSON(ctx, req, http.StatusOK, &album); err != nil {
		if IsStatus(err, http.StatusNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &album, nil
}

// GetTrack fetches a single track. A 404 is reported as (nil, nil).
func (s *Spotify) GetTrack(ctx context.Context, id string) (*TrackObject, error) {
	req, err := s.newRequest(ctx, http.MethodGet, "/tracks/"+id)
	if err != nil {
		return nil, err
	}

	var track TrackObject
	if err := s.api.ExecuteJSON(ctx, req, http.StatusOK, &track); err != nil {
		if IsStatus(err, http.StatusNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &track, nil
}

// Track fetches a single track as the canonical model. A 404 is reported
// as (nil, nil).
func (s *Spotify) Track(ctx context.Context, id string) (*models.Track, error) {
	obj, err := s.GetTrack(ctx, id)
	if err != nil || obj == nil {
		return nil, err
	}
	return s.trackModel(obj, ""), nil
}

// ArtistAlbums fetches every album of an artist, following pagination.
func (s *Spotify) ArtistAlbums(ctx context.Context, artistID string) ([]Album, error) {
	req, err := s.newRequest(ctx, http.MethodGet, "/artists/"+artistID+"/albums")
	if err != nil {
		return nil, err
	}

	items, err := s.api.Paginate(ctx, req, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return decodeItems[Album](items, "album")
}

// AlbumTracks fetches every track of an album, following pagination.
func (s *Spotify) AlbumTracks(ctx context.Context, albumID string) ([]TrackObject, error) {
	req, err := s.newRequest(ctx, http.MethodGet, "/albums/"+albumID+"/tracks?limit=50")
	if err != nil {
		return nil, err
	}

	items, err := s.api.Paginate(ctx, req, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return decodeItems[TrackObject](items, "album track")
}

// Discography fetches the artist's entire track list: every album, then
// every track of every album. Album-track payloads omit the album name, so
// it is carried over from the enclosing album.
func (s *Spotify) Discography(ctx context.Context, artistID string) ([]*models.Track, error) {
	albums, err := s.ArtistAlbums(ctx, artistID)
	if err != nil {
		return nil, err
	}

	var all []*models.Track
	for _, album := range albums {
		tracks, err := s.AlbumTracks(ctx, album.ID)
		if err != nil {
			return nil, err
		}
		for i := range tracks {
			all = append(all, s.trackModel(&tracks[i], album.Name))
		}
	}
	return all, nil
}

// trackModel converts a catalog track entity into the canonical model.
// albumName overrides the entity's album when the payload omits it.
func (s *Spotify) trackModel(obj *TrackObject, albumName string) *models.Track {
	if albumName == "" && obj.Album != nil {
		albumName = obj.Album.Name
	}
	artist := ""
	if len(obj.Artists) > 0 {
		artist = obj.Artists[0].Name
	}

	track := models.NewTrack(obj.Name, artist, albumName)
	if obj.IsLocal {
		s.logger.Info("track is local media and has no catalog link", "track", obj.Name)
		return track
	}
	track.Bind(models.Spotify, obj.ID)
	seconds := float64(obj.DurationMS) / 1000
	track.RecordDuration(models.Spotify, &seconds, false)
	return track
}

// MyPlaylists lists the authenticated user's playlists.
func (s *Spotify) MyPlaylists(ctx context.Context) ([]models.Playlist, error) {
	req, err := s.newRequest(ctx, http.MethodGet, "/me/playlists")
	if err != nil {
		return nil, err
	}

	items, err := s.api.Paginate(ctx, req, http.StatusOK)
	if err != nil {
		return nil, err
	}
	objects, err := decodeItems[playlistObject](items, "playlist")
	if err != nil {
		return nil, err
	}

	playlists := make([]models.Playlist, len(objects))
	for i, o := range objects {
		playlists[i] = models.Playlist{ID: o.ID, Name: o.Name, Owner: o.Owner.DisplayName, ItemCount: o.Tracks.Total}
	}
	return playlists, nil
}

// PlaylistInfo fetches a playlist's descriptor without its tracks. A 404 is
// reported as (nil, nil).
func (s *Spotify) PlaylistInfo(ctx context.Context, playlistID string) (*models.Playlist, error) {
	req, err := s.newRequest(ctx, http.MethodGet, "/playlists/"+playlistID)
	if err != nil {
		return nil, err
	}

	var o playlistObject
	if err := s.api.ExecuteJSON(ctx, req, http.StatusOK, &o); err != nil {
		if IsStatus(err, http.StatusNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &models.Playlist{ID: o.ID, Name: o.Name, Owner: o.Owner.DisplayName, ItemCount: o.Tracks.Total}, nil
}

// PlaylistTracks reads a playlist's full track list as canonical tracks.
func (s *Spotify) PlaylistTracks(ctx context.Context, playlistID string) ([]*models.Track, error) {
	req, err := s.newRequest(ctx, http.MethodGet, "/playlists/"+playlistID+"/tracks")
	if err != nil {
		return nil, err
	}

	items, err := s.api.Paginate(ctx, req, http.StatusOK)
	if err != nil {
		return nil, err
	}

	type playlistItem struct {
		Track *TrackObject `json:"track"`
	}
	wrappers, err := decodeItems[playlistItem](items, "playlist track")
	if err != nil {
		return nil, err
	}

	var tracks []*models.Track
	for _, w := range wrappers {
		if w.Track == nil {
			continue
		}
		tracks = append(tracks, s.trackModel(w.Track, ""))
	}
	return tracks, nil
}

// Me returns the authenticated account's identity.
func (s *Spotify) Me(ctx context.Context) (string, error) {
	req, err := s.newRequest(ctx, http.MethodGet, "/me")
	if err != nil {
		return "", err
	}

	var body struct {
		ID string `json:"id"`
	}
	if err := s.api.ExecuteJSON(ctx, req, http.StatusOK, &body); err != nil {
		return "", err
	}
	return body.ID, nil
}
