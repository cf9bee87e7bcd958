package main

import (
	"context"

	"github.com/urfave/cli/v3"
)

// register assembles the CLI command tree for a runner.
func register(r *Runner) []*cli.Command {
	return []*cli.Command{
		scanCommand(r),
		recognizeCommand(r),
		searchCommand(r),
		statsCommand(r),
		historyCommand(r),
		serveCommand(r),
		setupCommand(r),
		tuiCommand(r),
	}
}

func scanCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "scan",
		Usage:     "Identify a song from an audio file and resolve it on Spotify",
		ArgsUsage: "<audio file>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "output format: text, json or markdown",
				Value:   "text",
			},
			&cli.StringFlag{
				Name:    "save",
				Aliases: []string{"o"},
				Usage:   "also write the result to this file",
			},
			&cli.StringFlag{
				Name:  "art",
				Usage: "download the album art to this file",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			defer r.Close()
			return r.Scan(ctx, cmd.Args().First(), cmd.String("format"), cmd.String("save"), cmd.String("art"))
		},
	}
}

func recognizeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "recognize",
		Usage:     "Identify a song from an audio file without catalog lookup",
		ArgsUsage: "<audio file>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "indent the JSON output",
				Value: true,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return r.Recognize(ctx, cmd.Args().First(), cmd.Bool("pretty"))
		},
	}
}

func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Resolve a title and artist against the Spotify catalog",
		ArgsUsage: "<title> [artist]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "indent the JSON output",
				Value: true,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return r.Search(ctx, cmd.Args().Get(0), cmd.Args().Get(1), cmd.Bool("pretty"))
		},
	}
}

func statsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show lifetime scan counters",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "emit JSON instead of a table",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return r.Stats(ctx, cmd.Bool("json"))
		},
	}
}

func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recent scan runs",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "maximum number of runs to show",
				Value:   20,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "emit JSON instead of a table",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			defer r.Close()
			return r.History(ctx, int(cmd.Int("limit")), cmd.Bool("json"))
		},
	}
}

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the upload page and scan API over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "interface to bind",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "port to listen on",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			defer r.Close()
			return r.Serve(ctx, cmd.String("host"), int(cmd.Int("port")))
		},
	}
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create a starter config file and initialize the database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path for the new config file",
				Value:   "config.toml",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			defer r.Close()
			return r.Setup(ctx, cmd.String("config"))
		},
	}
}

func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "tui",
		Usage:     "Identify a song with an interactive terminal session",
		ArgsUsage: "<audio file>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return r.Tui(ctx, cmd.Args().First())
		},
	}
}
