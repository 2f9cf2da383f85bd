package auth

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/8bitbanana/music-converter/internal/shared"
)

func TestNormalizeScopes(t *testing.T) {
	t.Run("spotify scopes pass through unchanged", func(t *testing.T) {
		p := SpotifyProvider(shared.ClientConfig{})
		got, err := p.NormalizeScopes([]string{"user-library-read", "playlist-read-private"})
		if err != nil {
			t.Fatalf("NormalizeScopes() error: %v", err)
		}
		want := []string{"user-library-read", "playlist-read-private"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("NormalizeScopes() = %v, want %v", got, want)
		}
	})

	t.Run("unknown scope fails before any network call", func(t *testing.T) {
		p := SpotifyProvider(shared.ClientConfig{})
		_, err := p.NormalizeScopes([]string{"user-library-read", "world-domination"})
		if !errors.Is(err, shared.ErrInvalidScope) {
			t.Errorf("error = %v, want ErrInvalidScope", err)
		}
	})

	t.Run("google scopes gain the URL prefix and implicit identity scopes", func(t *testing.T) {
		p := YouTubeProvider(shared.ClientConfig{})
		got, err := p.NormalizeScopes([]string{"youtube.readonly"})
		if err != nil {
			t.Fatalf("NormalizeScopes() error: %v", err)
		}
		want := []string{
			"https://www.googleapis.com/auth/youtube.readonly",
			"https://www.googleapis.com/auth/userinfo.profile",
			"https://www.googleapis.com/auth/userinfo.email",
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("NormalizeScopes() = %v, want %v", got, want)
		}
	})

	t.Run("already-prefixed google scopes are accepted", func(t *testing.T) {
		p := YouTubeProvider(shared.ClientConfig{})
		got, err := p.NormalizeScopes([]string{"https://www.googleapis.com/auth/youtube"})
		if err != nil {
			t.Fatalf("NormalizeScopes() error: %v", err)
		}
		if got[0] != "https://www.googleapis.com/auth/youtube" {
			t.Errorf("first scope = %q", got[0])
		}
	})

	t.Run("duplicates collapse", func(t *testing.T) {
		p := YouTubeProvider(shared.ClientConfig{})
		got, err := p.NormalizeScopes([]string{"userinfo.email", "userinfo.profile", "userinfo.email"})
		if err != nil {
			t.Fatalf("NormalizeScopes() error: %v", err)
		}
		if len(got) != 2 {
			t.Errorf("NormalizeScopes() = %v, want 2 distinct scopes", got)
		}
	})
}

func TestAuthCodeURL(t *testing.T) {
	p := SpotifyProvider(shared.ClientConfig{ClientID: "cid", RedirectURI: "http://localhost/"})
	store := newTestStore(t, p)

	url, err := store.AuthCodeURL([]string{"user-library-read"}, "state123")
	if err != nil {
		t.Fatalf("AuthCodeURL() error: %v", err)
	}
	for _, want := range []string{"accounts.spotify.com/authorize", "client_id=cid", "state=state123", "user-library-read"} {
		if !strings.Contains(url, want) {
			t.Errorf("URL %q missing %q", url, want)
		}
	}

	t.Run("invalid scope rejected before building the URL", func(t *testing.T) {
		if _, err := store.AuthCodeURL([]string{"nope"}, "s"); !errors.Is(err, shared.ErrInvalidScope) {
			t.Errorf("error = %v, want ErrInvalidScope", err)
		}
	})
}
