// Command engram-mcp runs the engine as a Model Context Protocol stdio
// server over a StdioTransport.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spectra-g/engram/internal/config"
	"github.com/spectra-g/engram/internal/logging"
	"github.com/spectra-g/engram/internal/mcp"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		cfg = config.Default()
	}
	logging.Initialize(logging.Config{JSONFormat: cfg.Logging.JSONFormat, Debug: cfg.Logging.Debug})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	server := mcp.NewServer(cfg)
	if err := server.Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "engram-mcp:", err)
		os.Exit(1)
	}
}
