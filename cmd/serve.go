package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/songscan/internal/server"
)

// Serve starts the HTTP surface: the upload page, the scan endpoint and
// the stats and history queries.
func (r *Runner) Serve(ctx context.Context, host string, port int) error {
	if err := r.OpenDatabase(); err != nil {
		return err
	}

	if host == "" {
		host = r.config.Server.Host
	}
	if port == 0 {
		port = r.config.Server.Port
	}
	addr := fmt.Sprintf("%s:%d", host, port)

	page, err := server.NewPageHandler(r.engine)
	if err != nil {
		return fmt.Errorf("failed to build upload page: %w", err)
	}

	srv := server.New(addr, r.logger,
		page,
		server.NewScanHandler(r.engine, r.logger),
		server.NewStatsHandler(r.engine),
		server.NewHistoryHandler(r.history),
		server.NewHealthHandler(r.engine),
	)
	return srv.ListenAndServe(ctx)
}
