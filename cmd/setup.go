package main

import (
	"context"

	"github.com/8bitbanana/music-converter/internal/repositories"
	"github.com/8bitbanana/music-converter/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the example configuration file for the user to fill in.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}
	r.logger.Info("configuration file created", "path", path)
	return r.writePlain("✓ Wrote %s, fill in your client credentials\n", path)
}

// SetupDatabase creates the binding cache database and its schema.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := repositories.NewBindingRepository(db).Init(ctx); err != nil {
		return err
	}

	r.logger.Info("binding cache initialized", "path", r.config.Database.Path)
	return r.writePlain("✓ Binding cache ready at %s\n", r.config.Database.Path)
}
