package main

import (
	"context"

	"github.com/desertthunder/songscan/internal/shared"
)

// Setup writes a starter config file and initializes the database.
func (r *Runner) Setup(ctx context.Context, configPath string) error {
	if configPath == "" {
		configPath = "config.toml"
	}

	if err := shared.CreateConfigFile(configPath); err != nil {
		return err
	}
	r.writePlainln("Created %s", configPath)

	if err := r.OpenDatabase(); err != nil {
		return err
	}
	r.writePlainln("Initialized database at %s", r.config.Database.Path)
	r.writePlainln("Add your RapidAPI and Spotify credentials to %s to start scanning.", configPath)
	return nil
}
