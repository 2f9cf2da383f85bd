package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/8bitbanana/music-converter/internal/auth"
	"github.com/8bitbanana/music-converter/internal/matcher"
	"github.com/8bitbanana/music-converter/internal/models"
	"github.com/8bitbanana/music-converter/internal/repositories"
	"github.com/8bitbanana/music-converter/internal/services"
	"github.com/8bitbanana/music-converter/internal/shared"
	"github.com/8bitbanana/music-converter/internal/tasks"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"
)

// Runner holds all dependencies for CLI commands and provides methods for
// each command action.
type Runner struct {
	config      *shared.Config
	api         *services.Client
	spotify     *services.Spotify
	youtube     *services.YouTube
	spotifyAuth *auth.Store
	youtubeAuth *auth.Store
	cache       *repositories.BindingRepository
	engine      *matcher.Engine
	updates     *tasks.UpdateEngine
	logger      *log.Logger
	output      io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config      *shared.Config
	API         *services.Client
	Spotify     *services.Spotify
	YouTube     *services.YouTube
	SpotifyAuth *auth.Store
	YouTubeAuth *auth.Store
	Cache       *repositories.BindingRepository
	Logger      *log.Logger
	Output      io.Writer
}

// NewRunner creates a new Runner with the provided configuration.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	var cache matcher.BindingCache
	if opts.Cache != nil {
		cache = opts.Cache
	}
	engine := matcher.NewEngine(opts.Spotify, opts.YouTube, cache, opts.Logger)
	updates := tasks.NewUpdateEngine(engine, rate.NewLimiter(rate.Limit(5), 1), opts.Logger)

	return &Runner{
		config:      opts.Config,
		api:         opts.API,
		spotify:     opts.Spotify,
		youtube:     opts.YouTube,
		spotifyAuth: opts.SpotifyAuth,
		youtubeAuth: opts.YouTubeAuth,
		cache:       opts.Cache,
		engine:      engine,
		updates:     updates,
		logger:      opts.Logger,
		output:      opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, playlistsCommand, matchCommand, updateCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// authStore selects the credential store for a service name.
func (r *Runner) authStore(serviceName string) (*auth.Store, models.Service, error) {
	service, err := models.ParseService(serviceName)
	if err != nil {
		return nil, service, err
	}
	switch service {
	case models.Spotify:
		return r.spotifyAuth, service, nil
	case models.YouTube:
		return r.youtubeAuth, service, nil
	default:
		return nil, service, fmt.Errorf("%w: no credential store for %s", shared.ErrInvalidArgument, service)
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
