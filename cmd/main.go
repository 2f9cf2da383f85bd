package main

import (
	"context"
	"os"

	"github.com/8bitbanana/music-converter/internal/auth"
	"github.com/8bitbanana/music-converter/internal/repositories"
	"github.com/8bitbanana/music-converter/internal/services"
	"github.com/8bitbanana/music-converter/internal/shared"
	"github.com/joho/godotenv"
)

func main() {
	logger := shared.NewLogger(nil)

	// .env is optional; real deployments use config.toml or the environment.
	_ = godotenv.Load()

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("ignoring unreadable config.toml", "err", err)
		}
	}
	applyEnvOverrides(config)

	api := services.NewClient(nil, logger)

	spotifyAuth, err := auth.NewStore(config.Store.SpotifyPath, auth.SpotifyProvider(config.Credentials.Spotify), api, logger)
	if err != nil {
		logger.Warn("spotify credential store unavailable", "err", err)
	}
	youtubeAuth, err := auth.NewStore(config.Store.YouTubePath, auth.YouTubeProvider(config.Credentials.YouTube), api, logger)
	if err != nil {
		logger.Warn("youtube credential store unavailable", "err", err)
	}

	spotify := services.NewSpotify(api, "", storedToken(spotifyAuth), shared.WithLogger(logger, "service", "spotify"))
	youtube := services.NewYouTube(api, "", storedToken(youtubeAuth), shared.WithLogger(logger, "service", "youtube"))

	var cache *repositories.BindingRepository
	if db, err := shared.NewDatabase(config.Database.Path); err == nil {
		shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
		cache = repositories.NewBindingRepository(db)
		if err := cache.Init(context.Background()); err != nil {
			logger.Warn("binding cache unavailable", "err", err)
			cache = nil
		}
	} else {
		logger.Warn("binding cache database unavailable", "err", err)
	}

	runner := NewRunner(RunnerOpts{
		Config:      config,
		API:         api,
		Spotify:     spotify,
		YouTube:     youtube,
		SpotifyAuth: spotifyAuth,
		YouTubeAuth: youtubeAuth,
		Cache:       cache,
		Logger:      logger,
	})

	app := newApp(runner)
	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}

// storedToken supplies the most recently stored access token per request.
// An unavailable store yields an empty token, surfacing later as a 401.
func storedToken(store *auth.Store) func() string {
	return func() string {
		if store == nil {
			return ""
		}
		cred, err := store.Lookup(nil, "")
		if err != nil {
			return ""
		}
		return cred.AccessToken
	}
}

// applyEnvOverrides lets client credentials come from the environment (or
// a .env file) instead of config.toml, so secrets stay out of the config.
func applyEnvOverrides(config *shared.Config) {
	overrides := []struct {
		env    string
		target *string
	}{
		{"SPOTIFY_CLIENT_ID", &config.Credentials.Spotify.ClientID},
		{"SPOTIFY_CLIENT_SECRET", &config.Credentials.Spotify.ClientSecret},
		{"SPOTIFY_REDIRECT_URI", &config.Credentials.Spotify.RedirectURI},
		{"YOUTUBE_CLIENT_ID", &config.Credentials.YouTube.ClientID},
		{"YOUTUBE_CLIENT_SECRET", &config.Credentials.YouTube.ClientSecret},
		{"YOUTUBE_REDIRECT_URI", &config.Credentials.YouTube.RedirectURI},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.target = v
		}
	}
}
