package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/profile-optimizer/internal/observability"
	"github.com/jonathan/profile-optimizer/internal/ratelimit"
	"github.com/jonathan/profile-optimizer/internal/server"
	"github.com/jonathan/profile-optimizer/internal/session"
)

var (
	servePort  int
	serveDebug bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server exposing analysis, optimization and SSE progress streaming endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (defaults to PORT env var or 3002)")
	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable debug logging")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	logger, err := observability.NewLogger(serveDebug)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	rt, err := buildRuntime(context.Background(), logger)
	if err != nil {
		return err
	}
	defer rt.close()

	rt.limiter.StartCleanup(ratelimit.DefaultWindow)
	rt.sessions.StartSweep(session.DefaultSweepInterval)

	port := rt.cfg.Port
	if servePort != 0 {
		port = servePort
	}

	srv := server.New(server.Config{Port: port}, rt.service, rt.registry, logger)
	return srv.Start()
}
