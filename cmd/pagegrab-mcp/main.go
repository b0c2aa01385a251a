package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/use-agent/pagegrab/config"
	"github.com/use-agent/pagegrab/scraper"
)

func main() {
	cfg := config.Load()

	// stdout carries the MCP protocol.
	slog.SetDefault(cfg.Log.NewLogger(os.Stderr))

	sc := scraper.NewFromConfig(cfg)
	defer sc.Close()

	s := server.NewMCPServer(
		"pagegrab",
		"1.0.0",
		server.WithToolCapabilities(false),
	)
	registerTools(s, sc)

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}
