// upbot-dash serves the read-only ledger dashboard. It shares nothing with
// the live process except the SQLite file, opened in read-only mode.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"upbot/internal/config"
	"upbot/internal/ledger"
	"upbot/internal/logger"
	"upbot/internal/transport/http/dash"
)

func main() {
	defaultCfg := os.Getenv("UPBOT_CONFIG")
	if defaultCfg == "" {
		defaultCfg = "configs/config.yaml"
	}
	cfgPath := flag.String("config", defaultCfg, "path to the YAML config file")
	addr := flag.String("addr", "", "bind address (overrides app.http_addr)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("loading config failed: %v", err)
	}
	logger.SetLevel(cfg.App.LogLevel)

	reader, err := ledger.NewReader(cfg.Ledger.Path)
	if err != nil {
		log.Fatalf("opening ledger failed: %v", err)
	}
	defer reader.Close()

	bind := cfg.App.HTTPAddr
	if *addr != "" {
		bind = *addr
	}
	server, err := dash.NewServer(dash.ServerConfig{
		Addr:   bind,
		Reader: reader,
		Symbol: cfg.Market.Symbol,
	})
	if err != nil {
		log.Fatalf("building dashboard failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Infof("dashboard listening on %s", server.Addr())
	if err := server.Start(ctx); err != nil {
		log.Fatalf("dashboard failed: %v", err)
	}
}
