// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles initial configuration and cache database setup.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write an example configuration file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize the binding cache database",
				Action: r.SetupDatabase,
			},
		},
	}
}

// authCommand handles credential store operations
func authCommand(r *Runner) *cli.Command {
	serviceFlag := &cli.StringFlag{
		Name:     "service",
		Aliases:  []string{"s"},
		Usage:    "Service name (spotify or youtube)",
		Required: true,
	}
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage stored credentials",
		Commands: []*cli.Command{
			{
				Name:  "url",
				Usage: "Print the authorization URL to open manually",
				Flags: []cli.Flag{
					serviceFlag,
					&cli.StringSliceFlag{
						Name:  "scope",
						Usage: "Requested scopes (repeatable)",
					},
				},
				Action: r.AuthURL,
			},
			{
				Name:  "login",
				Usage: "Exchange a pasted authorization code for tokens",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "code"},
				},
				Flags: []cli.Flag{
					serviceFlag,
					&cli.StringSliceFlag{
						Name:  "scope",
						Usage: "Requested scopes (repeatable)",
					},
					&cli.StringFlag{
						Name:    "user",
						Aliases: []string{"u"},
						Usage:   "Expected account username (fails on mismatch)",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "accounts",
				Usage: "List stored credentials",
				Flags: []cli.Flag{
					serviceFlag,
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.AuthAccounts,
			},
			{
				Name:  "status",
				Usage: "Verify the stored credential against the identity endpoint",
				Flags: []cli.Flag{
					serviceFlag,
					&cli.StringFlag{
						Name:    "user",
						Aliases: []string{"u"},
						Usage:   "Username to check (default: most recent)",
					},
				},
				Action: r.AuthStatus,
			},
			{
				Name:  "refresh",
				Usage: "Refresh a stored access token",
				Flags: []cli.Flag{
					serviceFlag,
					&cli.StringFlag{
						Name:    "user",
						Aliases: []string{"u"},
						Usage:   "Username to refresh (default: most recent)",
					},
				},
				Action: r.AuthRefresh,
			},
			{
				Name:  "delete",
				Usage: "Delete a user's stored credentials",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "user"},
				},
				Flags:  []cli.Flag{serviceFlag},
				Action: r.AuthDelete,
			},
			{
				Name:   "wipe",
				Usage:  "Delete every stored credential for a service",
				Flags:  []cli.Flag{serviceFlag},
				Action: r.AuthWipe,
			},
		},
	}
}

// playlistsCommand lists the authenticated user's playlists.
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlists",
		Aliases: []string{"pl"},
		Usage:   "List playlists on a service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "service",
				Aliases:  []string{"s"},
				Usage:    "Service name (spotify or youtube)",
				Required: true,
			},
			&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
			&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print output", Value: true},
		},
		Action: r.Playlists,
	}
}

// matchCommand resolves a single track against the other service.
func matchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "match",
		Usage: "Find a track's counterpart on the other service",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "track"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "to",
				Usage:    "Target service (spotify or youtube)",
				Required: true,
			},
			&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
		},
		Action: r.Match,
	}
}

// updateCommand runs bulk resolution over playlists.
func updateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "update",
		Usage: "Resolve every track of one or more playlists against the other service",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:     "playlist",
				Aliases:  []string{"p"},
				Usage:    "Playlist ID on the source service (repeatable)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "to",
				Usage:    "Target service (spotify or youtube)",
				Required: true,
			},
			&cli.BoolFlag{Name: "json", Usage: "Output raw JSON summary"},
		},
		Action: r.Update,
	}
}
