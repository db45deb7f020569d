package main

import (
	_ "embed"
	"flag"
	"os"
	"strings"

	"organism/pkg/config"
	"organism/pkg/log"
	"organism/pkg/organism"
	"organism/pkg/server"
	"organism/pkg/upstream"
)

//go:embed VERSION
var Version string

func main() {
	// Initialize logger first
	_ = log.Logger

	configPath := flag.String("config", "", "Path to YAML config file (optional)")
	addr := flag.String("addr", "", "Listen address (overrides config)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	jsonLogs := flag.Bool("json-logs", false, "Write structured JSON logs to stderr")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("config", *configPath).Msg("Failed to load configuration")
	}
	if *addr != "" {
		cfg.Addr = *addr
	}

	if *jsonLogs || cfg.JSONLogs {
		log.SetJSONOutput(os.Stderr)
	}
	if *debug || cfg.Debug {
		log.SetDebugMode()
		log.Debug().Msg("Debug mode enabled")
	}

	log.Info().
		Str("hub", cfg.HubBaseURL).
		Str("debates", cfg.ServiceBaseURL).
		Dur("hub_timeout", cfg.HubTimeout).
		Dur("debate_timeout", cfg.DebateTimeout).
		Int("debate_limit", cfg.DebateLimit).
		Msg("Configured upstreams")

	hub := upstream.NewHubFetcher(upstream.NewClient(), upstream.Endpoint{
		BaseURL: cfg.HubBaseURL,
		Auth:    cfg.InternalAuth,
		Timeout: cfg.HubTimeout,
	})
	debates := upstream.NewDebateFetcher(upstream.NewClient(), upstream.Endpoint{
		BaseURL: cfg.ServiceBaseURL,
		Auth:    cfg.InternalAuth,
		Timeout: cfg.DebateTimeout,
	}, cfg.DebateLimit)

	srv, err := server.NewServer(cfg, strings.TrimSpace(Version), organism.NewAssembler(hub, debates, nil))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create server")
	}

	if err := srv.Start(cfg.Addr); err != nil {
		log.Fatal().Err(err).Msg("Server failed to start")
	}

	os.Exit(0)
}
