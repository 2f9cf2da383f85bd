package auth

import (
	"fmt"
	"strings"

	"github.com/8bitbanana/music-converter/internal/models"
	"github.com/8bitbanana/music-converter/internal/shared"
	"golang.org/x/oauth2"
)

// Provider describes one service's OAuth surface: endpoints, client
// settings, and the fixed scope vocabulary.
type Provider struct {
	Service     models.Service
	AuthURL     string
	TokenURL    string
	IdentityURL string

	// ValidScopes is the full vocabulary the service accepts, in short
	// form (without any URL prefix).
	ValidScopes []string
	// ScopePrefix is prepended to short-form scopes on the wire (Google
	// scopes are full URLs).
	ScopePrefix string
	// ImplicitScopes are always added when requesting a credential (the
	// identity endpoint needs them).
	ImplicitScopes []string
	// EmailIdentity selects the identity payload's email field as the
	// account identity instead of its id (Google accounts).
	EmailIdentity bool

	ClientID     string
	ClientSecret string
	RedirectURI  string
}

var spotifyScopes = []string{
	"playlist-read-collaborative",
	"playlist-modify-private",
	"playlist-read-private",
	"playlist-modify-public",
	"user-read-email",
	"user-read-private",
	"user-read-birthdate",
	"user-read-playback-state",
	"user-read-currently-playing",
	"user-modify-playback-state",
	"user-read-recently-played",
	"user-top-read",
	"user-follow-read",
	"user-follow-modify",
	"streaming",
	"user-library-read",
	"user-library-modify",
}

var youtubeScopes = []string{
	"youtube",
	"youtube.force-ssl",
	"youtube.readonly",
	"youtube.upload",
	"youtubepartner",
	"youtubepartner-channel-audit",
	"userinfo.profile",
	"userinfo.email",
}

const googleScopePrefix = "https://www.googleapis.com/auth/"

// SpotifyProvider builds the primary catalog's provider from client config.
func SpotifyProvider(c shared.ClientConfig) Provider {
	return Provider{
		Service:      models.Spotify,
		AuthURL:      "https://accounts.spotify.com/authorize",
		TokenURL:     "https://accounts.spotify.com/api/token",
		IdentityURL:  "https://api.spotify.com/v1/me",
		ValidScopes:  spotifyScopes,
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURI:  c.RedirectURI,
	}
}

// YouTubeProvider builds the video catalog's provider from client config.
func YouTubeProvider(c shared.ClientConfig) Provider {
	return Provider{
		Service:        models.YouTube,
		AuthURL:        "https://accounts.google.com/o/oauth2/auth",
		TokenURL:       "https://oauth2.googleapis.com/token",
		IdentityURL:    "https://www.googleapis.com/oauth2/v2/userinfo",
		ValidScopes:    youtubeScopes,
		ScopePrefix:    googleScopePrefix,
		ImplicitScopes: []string{"userinfo.profile", "userinfo.email"},
		EmailIdentity:  true,
		ClientID:       c.ClientID,
		ClientSecret:   c.ClientSecret,
		RedirectURI:    c.RedirectURI,
	}
}

// NormalizeScopes validates scopes against the provider's vocabulary and
// returns them in wire form, with implicit scopes added. Validation happens
// before any network call; an out-of-vocabulary scope fails with
// [shared.ErrInvalidScope].
func (p Provider) NormalizeScopes(scopes []string) ([]string, error) {
	seen := map[string]bool{}
	var normalized []string

	add := func(scope string) error {
		short := strings.TrimPrefix(scope, p.ScopePrefix)
		valid := false
		for _, v := range p.ValidScopes {
			if v == short {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("%w: %q is not a known %s scope", shared.ErrInvalidScope, scope, p.Service)
		}
		wire := p.ScopePrefix + short
		if !seen[wire] {
			seen[wire] = true
			normalized = append(normalized, wire)
		}
		return nil
	}

	for _, scope := range scopes {
		if err := add(scope); err != nil {
			return nil, err
		}
	}
	for _, scope := range p.ImplicitScopes {
		if err := add(scope); err != nil {
			return nil, err
		}
	}
	return normalized, nil
}

// OAuthConfig builds the [oauth2.Config] for the provider with the given
// wire-form scopes.
func (p Provider) OAuthConfig(scopes []string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     p.ClientID,
		ClientSecret: p.ClientSecret,
		RedirectURL:  p.RedirectURI,
		Scopes:       scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  p.AuthURL,
			TokenURL: p.TokenURL,
		},
	}
}
