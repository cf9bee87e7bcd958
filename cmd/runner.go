package main

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/songscan/internal/pipeline"
	"github.com/desertthunder/songscan/internal/repositories"
	"github.com/desertthunder/songscan/internal/services"
	"github.com/desertthunder/songscan/internal/shared"
	"github.com/desertthunder/songscan/internal/stats"
)

// Runner wires configuration, services and the pipeline for the CLI
// commands. Fields are injectable for tests.
type Runner struct {
	config     *shared.Config
	recognizer services.Recognizer
	catalog    services.Catalog
	engine     *pipeline.Engine
	store      stats.Store
	history    *repositories.ScanHistory
	db         *sql.DB
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts overrides the runner's defaults.
type RunnerOpts struct {
	Config     *shared.Config
	Recognizer services.Recognizer
	Catalog    services.Catalog
	Store      stats.Store
	History    *repositories.ScanHistory
	DB         *sql.DB
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner builds a runner, constructing real services for anything the
// options leave nil.
func NewRunner(opts RunnerOpts) *Runner {
	r := &Runner{
		config:     opts.Config,
		recognizer: opts.Recognizer,
		catalog:    opts.Catalog,
		store:      opts.Store,
		history:    opts.History,
		db:         opts.DB,
		logger:     opts.Logger,
		output:     opts.Output,
	}

	if r.config == nil {
		r.config = shared.DefaultConfig()
	}
	if r.logger == nil {
		r.logger = shared.NewLogger(nil)
	}
	if r.output == nil {
		r.output = os.Stdout
	}
	if r.recognizer == nil {
		creds := r.config.Credentials.Shazam
		r.recognizer = services.NewShazamService(creds.APIKey, creds.Host, r.logger)
	}
	if r.catalog == nil {
		creds := r.config.Credentials.Spotify
		r.catalog = services.NewSpotifyService(creds.ClientID, creds.ClientSecret, r.logger)
	}
	if r.store == nil {
		if path := r.config.Stats.Path; path != "" {
			r.store = stats.NewFileStore(path)
		} else {
			r.store = stats.NewMemStore()
		}
	}

	var history pipeline.History
	if r.history != nil {
		history = r.history
	}
	r.engine = pipeline.NewEngine(r.recognizer, r.catalog, r.store, history, r.logger)
	return r
}

// OpenDatabase connects to the configured database, runs migrations and
// attaches a history recorder to the engine. Call before commands that
// need scan history.
func (r *Runner) OpenDatabase() error {
	if r.db == nil {
		db, err := shared.NewDatabase(r.config.Database.Path)
		if err != nil {
			return err
		}
		shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
		r.db = db
	}

	if err := shared.RunMigrations(r.db); err != nil {
		return err
	}

	r.history = repositories.NewScanHistory(r.db)
	r.engine = pipeline.NewEngine(r.recognizer, r.catalog, r.store, r.history, r.logger)
	return nil
}

// ensureHistory opens the database so terminal runs land in scan history.
// A database problem degrades to an unrecorded run, not a failed command.
func (r *Runner) ensureHistory() {
	if r.history != nil {
		return
	}
	if err := r.OpenDatabase(); err != nil {
		r.logger.Warn("scan history unavailable", "error", err)
	}
}

// Close releases the runner's database connection.
func (r *Runner) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// writeJSON marshals data to the runner's output.
func (r *Runner) writeJSON(data any, pretty bool) error {
	out, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(r.output, string(out))
	return err
}

// writePlain writes unformatted output.
func (r *Runner) writePlain(format string, args ...any) {
	fmt.Fprintf(r.output, format, args...)
}

// writePlainln writes unformatted output with a trailing newline.
func (r *Runner) writePlainln(format string, args ...any) {
	fmt.Fprintf(r.output, format+"\n", args...)
}

// writePlainHeader writes a section header with a rule underneath.
func (r *Runner) writePlainHeader(title string) {
	r.writePlainln("%s", title)
	r.writePlainln("%s", strings.Repeat("═", len([]rune(title))))
}
