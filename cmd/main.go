// songscan identifies songs from short audio clips and resolves them
// against the Spotify catalog.
package main

import (
	"context"
	"os"

	"github.com/desertthunder/songscan/internal/shared"
	"github.com/urfave/cli/v3"
)

const version = "0.1.0"

func main() {
	logger := shared.NewLogger(os.Stderr)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		loaded, err := shared.LoadConfig("config.toml")
		if err != nil {
			logger.Fatal("failed to load config", "error", err)
		}
		config = loaded
	}

	r := NewRunner(RunnerOpts{Config: config, Logger: logger})

	app := &cli.Command{
		Name:     "songscan",
		Usage:    "identify songs from audio clips and play them on Spotify",
		Version:  version,
		Commands: register(r),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatal("command failed", "error", err)
	}
}
