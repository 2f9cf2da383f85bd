package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	t.Run("parses a full config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		content := `
[credentials.spotify]
client_id = "sp-id"
client_secret = "sp-secret"
redirect_uri = "http://localhost/"

[credentials.youtube]
client_id = "yt-id"
client_secret = "yt-secret"

[store]
spotify_path = "/tmp/spotify.json"
youtube_path = "/tmp/youtube.json"

[database]
path = "/tmp/bindings.db"
max_open_conns = 2
max_idle_conns = 1
`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		config, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error: %v", err)
		}
		if config.Credentials.Spotify.ClientID != "sp-id" {
			t.Errorf("spotify client id = %q", config.Credentials.Spotify.ClientID)
		}
		if config.Credentials.YouTube.ClientSecret != "yt-secret" {
			t.Errorf("youtube client secret = %q", config.Credentials.YouTube.ClientSecret)
		}
		if config.Store.SpotifyPath != "/tmp/spotify.json" {
			t.Errorf("spotify store path = %q", config.Store.SpotifyPath)
		}
		if config.Database.MaxOpenConns != 2 {
			t.Errorf("max open conns = %d", config.Database.MaxOpenConns)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("LoadConfig() succeeded on a missing file")
		}
	})

	t.Run("malformed toml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.toml")
		os.WriteFile(path, []byte("[credentials\n"), 0644)
		if _, err := LoadConfig(path); err == nil {
			t.Error("LoadConfig() succeeded on malformed TOML")
		}
	})
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	if config.Store.SpotifyPath == "" || config.Store.YouTubePath == "" {
		t.Error("default config has empty store paths")
	}
	if config.Database.Path == "" {
		t.Error("default config has empty database path")
	}
}

func TestCreateConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	if err := CreateConfigFile(path); err != nil {
		t.Fatalf("CreateConfigFile() error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	if err := CreateConfigFile(path); err == nil {
		t.Error("CreateConfigFile() overwrote an existing file")
	}
}
