package main

import (
	"log"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/offbeat-studio/tradegate/internal/broker"
	"github.com/offbeat-studio/tradegate/internal/config"
	"github.com/offbeat-studio/tradegate/internal/session"
	"github.com/offbeat-studio/tradegate/internal/tools"
	"github.com/offbeat-studio/tradegate/internal/util"
)

const version = "0.1.0"

func main() {
	// Load config.
	cfgPath := "config/tradegate.yaml"
	if p := os.Getenv("TRADEGATE_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	// Setup logging. Stdout carries the MCP protocol, so the logger writes
	// to stderr.
	logger := util.NewLogger(cfg.Logging.Level)
	util.SetDefault(logger)

	// Select broker backend.
	var b broker.Broker
	switch cfg.Broker.Backend {
	case "sinopac":
		b = broker.NewSinopacBroker(cfg.Sinopac.BaseURL)
	case "alpaca":
		b = broker.NewAlpacaBroker(cfg.Alpaca.APIKey, cfg.Alpaca.APISecret, cfg.Alpaca.BaseURL, cfg.Alpaca.DataURL)
	case "simulator":
		b = broker.NewSimulatorBroker()
	default:
		log.Fatalf("unknown broker backend %q (want sinopac, alpaca or simulator)", cfg.Broker.Backend)
	}
	logger.Info("tradegate-mcp starting", "version", version, "backend", b.Name())

	sess := session.New(b, logger)
	handlers := tools.New(sess, logger)

	srv := server.NewMCPServer("tradegate", version)
	tools.Register(srv, handlers)

	if err := server.ServeStdio(srv); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
