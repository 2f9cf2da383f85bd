// Video catalog (YouTube Data API v3) client.
package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/8bitbanana/music-converter/internal/models"
	"github.com/8bitbanana/music-converter/internal/shared"
	"github.com/charmbracelet/log"
)

const defaultYouTubeBaseURL = "https://www.googleapis.com/youtube/v3"

// videoBatchSize bounds how many video ids go into one lookup request.
const videoBatchSize = 40

// VideoSearchResult is one ranked hit from a video search.
type VideoSearchResult struct {
	VideoID      string
	Title        string
	ChannelTitle string
}

// Video is a single video item with snippet and content details.
type Video struct {
	ID      string `json:"id"`
	Snippet struct {
		Title        string `json:"title"`
		ChannelTitle string `json:"channelTitle"`
	} `json:"snippet"`
	ContentDetails struct {
		Duration string `json:"duration"` // ISO 8601
	} `json:"contentDetails"`
}

// YouTube wraps the request layer with the video catalog's endpoints.
type YouTube struct {
	api     *Client
	baseURL string
	token   func() string
	logger  *log.Logger
}

// NewYouTube creates a video catalog client. token supplies the bearer
// credential per request. An empty baseURL selects the production API.
func NewYouTube(api *Client, baseURL string, token func() string, logger *log.Logger) *YouTube {
	if baseURL == "" {
		baseURL = defaultYouTubeBaseURL
	}
	if logger == nil {
		logger = log.Default()
	}
	return &YouTube{api: api, baseURL: baseURL, token: token, logger: logger}
}

func (y *YouTube) newRequest(ctx context.Context, method, path string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, y.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+y.token())
	return req, nil
}

// SearchVideos returns up to limit ranked video results for keywords.
func (y *YouTube) SearchVideos(ctx context.Context, keywords string, limit int) ([]VideoSearchResult, error) {
	if limit <= 0 {
		limit = 1
	}
	path := "/search?q=" + url.QueryEscape(keywords) + "&part=snippet&maxResults=" + strconv.Itoa(limit) + "&type=video"
	req, err := y.newRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}

	var body struct {
		Items []struct {
			ID struct {
				VideoID string `json:"videoId"`
			} `json:"id"`
			Snippet struct {
				Title        string `json:"title"`
				ChannelTitle string `json:"channelTitle"`
			} `json:"snippet"`
		} `json:"items"`
	}
	if err := y.api.ExecuteJSON(ctx, req, http.StatusOK, &body); err != nil {
		return nil, err
	}

	results := make([]VideoSearchResult, len(body.Items))
	for i, item := range body.Items {
		results[i] = VideoSearchResult{
			VideoID:      item.ID.VideoID,
			Title:        item.Snippet.Title,
			ChannelTitle: item.Snippet.ChannelTitle,
		}
	}
	return results, nil
}

// ChannelSearchResult is one ranked hit from a channel search.
type ChannelSearchResult struct {
	ChannelID string
	Title     string
}

// SearchChannels returns up to limit ranked channel results for keywords.
func (y *YouTube) SearchChannels(ctx context.Context, keywords string, limit int) ([]ChannelSearchResult, error) {
	if limit <= 0 {
		limit = 1
	}
	path := "/search?q=" + url.QueryEscape(keywords) + "&part=snippet&maxResults=" + strconv.Itoa(limit) + "&type=channel"
	req, err := y.newRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}

	var body struct {
		Items []struct {
			ID struct {
				ChannelID string `json:"channelId"`
			} `json:"id"`
			Snippet struct {
				Title string `json:"title"`
			} `json:"snippet"`
		} `json:"items"`
	}
	if err := y.api.ExecuteJSON(ctx, req, http.StatusOK, &body); err != nil {
		return nil, err
	}

	results := make([]ChannelSearchResult, len(body.Items))
	for i, item := range body.Items {
		results[i] = ChannelSearchResult{ChannelID: item.ID.ChannelID, Title: item.Snippet.Title}
	}
	return results, nil
}

// SearchPlaylists returns up to limit ranked playlist results for keywords.
func (y *YouTube) SearchPlaylists(ctx context.Context, keywords string, limit int) ([]models.Playlist, error) {
	if limit <= 0 {
		limit = 1
	}
	path := "/search?q=" + url.QueryEscape(keywords) + "&part=snippet&maxResults=" + strconv.Itoa(limit) + "&type=playlist"
	req, err := y.newRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}

	var body struct {
		Items []struct {
			ID struct {
				PlaylistID string `json:"playlistId"`
			} `json:"id"`
			Snippet struct {
				Title        string `json:"title"`
				ChannelTitle string `json:"channelTitle"`
			} `json:"snippet"`
		} `json:"items"`
	}
	if err := y.api.ExecuteJSON(ctx, req, http.StatusOK, &body); err != nil {
		return nil, err
	}

	playlists := make([]models.Playlist, len(body.Items))
	for i, item := range body.Items {
		playlists[i] = models.Playlist{ID: item.ID.PlaylistID, Name: item.Snippet.Title, Owner: item.Snippet.ChannelTitle}
	}
	return playlists, nil
}

// GetVideo fetches a single video with snippet and content details. An
// empty item list is reported as (nil, nil).
func (y *YouTube) GetVideo(ctx context.Context, id string) (*Video, error) {
	req, err := y.newRequest(ctx, http.MethodGet, "/videos?part=snippet%2CcontentDetails&id="+url.QueryEscape(id))
	if err != nil {
		return nil, err
	}

	var body struct {
		Items []Video `json:"items"`
	}
	if err := y.api.ExecuteJSON(ctx, req, http.StatusOK, &body); err != nil {
		return nil, err
	}
	if len(body.Items) == 0 {
		return nil, nil
	}
	return &body.Items[0], nil
}

// VideoTrack fetches a single video as the canonical model, with the
// channel title standing in for the artist. Returns (nil, nil) when the
// video does not exist.
func (y *YouTube) VideoTrack(ctx context.Context, id string) (*models.Track, error) {
	video, err := y.GetVideo(ctx, id)
	if err != nil || video == nil {
		return nil, err
	}

	track := models.NewTrack(video.Snippet.Title, video.Snippet.ChannelTitle, "")
	track.Bind(models.YouTube, video.ID)
	if seconds, err := shared.ParseISODuration(video.ContentDetails.Duration); err == nil {
		track.RecordDuration(models.YouTube, &seconds, false)
	}
	return track, nil
}

// VideoDuration fetches a video's content duration in seconds, converted
// from the API's ISO 8601 encoding. Returns (nil, nil) when the video does
// not exist.
func (y *YouTube) VideoDuration(ctx context.Context, id string) (*float64, error) {
	video, err := y.GetVideo(ctx, id)
	if err != nil {
		return nil, err
	}
	if video == nil {
		return nil, nil
	}

	seconds, err := shared.ParseISODuration(video.ContentDetails.Duration)
	if err != nil {
		return nil, fmt.Errorf("video %s: %w", id, err)
	}
	return &seconds, nil
}

// MyPlaylists lists the authenticated channel's playlists.
func (y *YouTube) MyPlaylists(ctx context.Context) ([]models.Playlist, error) {
	req, err := y.newRequest(ctx, http.MethodGet, "/playlists?part=snippet%2CcontentDetails&mine=true&maxResults=50")
	if err != nil {
		return nil, err
	}

	items, err := y.api.Paginate(ctx, req, http.StatusOK)
	if err != nil {
		return nil, err
	}

	type playlistItem struct {
		ID      string `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			ChannelTitle string `json:"channelTitle"`
		} `json:"snippet"`
		ContentDetails struct {
			ItemCount int `json:"itemCount"`
		} `json:"contentDetails"`
	}
	objects, err := decodeItems[playlistItem](items, "playlist")
	if err != nil {
		return nil, err
	}

	playlists := make([]models.Playlist, len(objects))
	for i, o := range objects {
		playlists[i] = models.Playlist{ID: o.ID, Name: o.Snippet.Title, Owner: o.Snippet.ChannelTitle, ItemCount: o.ContentDetails.ItemCount}
	}
	return playlists, nil
}

// PlaylistTracks reads a playlist's full video list as canonical tracks.
// Item snippets carry stale titles for videos that changed since being
// added, so the video ids are re-fetched in batches of videoBatchSize.
func (y *YouTube) PlaylistTracks(ctx context.Context, playlistID string) ([]*models.Track, error) {
	req, err := y.newRequest(ctx, http.MethodGet, "/playlistItems?part=snippet%2CcontentDetails&maxResults=50&playlistId="+url.QueryEscape(playlistID))
	if err != nil {
		return nil, err
	}

	items, err := y.api.Paginate(ctx, req, http.StatusOK)
	if err != nil {
		return nil, err
	}

	type playlistItem struct {
		ContentDetails struct {
			VideoID string `json:"videoId"`
		} `json:"contentDetails"`
	}
	objects, err := decodeItems[playlistItem](items, "playlist item")
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(objects))
	for _, o := range objects {
		if o.ContentDetails.VideoID != "" {
			ids = append(ids, o.ContentDetails.VideoID)
		}
	}

	var tracks []*models.Track
	for start := 0; start < len(ids); start += videoBatchSize {
		end := min(start+videoBatchSize, len(ids))

		req, err := y.newRequest(ctx, http.MethodGet, "/videos?part=snippet&id="+url.QueryEscape(strings.Join(ids[start:end], ",")))
		if err != nil {
			return nil, err
		}
		var body struct {
			Items []Video `json:"items"`
		}
		if err := y.api.ExecuteJSON(ctx, req, http.StatusOK, &body); err != nil {
			return nil, err
		}
		for _, v := range body.Items {
			track := models.NewTrack(v.Snippet.Title, v.Snippet.ChannelTitle, "")
			track.Bind(models.YouTube, v.ID)
			tracks = append(tracks, track)
		}
	}
	return tracks, nil
}

// Me returns the authenticated account's identity via the userinfo
// endpoint (email for Google accounts).
func (y *YouTube) Me(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://www.googleapis.com/oauth2/v2/userinfo", nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+y.token())

	var body struct {
		Email string `json:"email"`
	}
	if err := y.api.ExecuteJSON(ctx, req, http.StatusOK, &body); err != nil {
		return "", err
	}
	return body.Email, nil
}
