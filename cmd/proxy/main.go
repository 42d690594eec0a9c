package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dxomg/ViaRewind/internal/server"
	"github.com/dxomg/ViaRewind/internal/server/config"
)

func main() {
	cfg := config.DefaultConfig()

	configPath := flag.String("config", "", "path to a JSON config file")
	flag.IntVar(&cfg.Port, "port", cfg.Port, "listen port")
	flag.StringVar(&cfg.Backend, "backend", cfg.Backend, "backend server address (host:port)")
	flag.StringVar(&cfg.ServerVersion, "server-version", cfg.ServerVersion, "backend version: 1.8 or 1.9.4")
	flag.StringVar(&cfg.ClientVersion, "client-version", cfg.ClientVersion, "client version: 1.7.10 or 1.8")
	flag.StringVar(&cfg.DataDir, "data", cfg.DataDir, "mapping data directory")
	flag.BoolVar(&cfg.EmulateWorldBorder, "world-border", cfg.EmulateWorldBorder, "draw the world border for 1.7 clients")
	flag.StringVar(&cfg.CooldownIndicator, "cooldown-indicator", cfg.CooldownIndicator, "title, boss-bar, action-bar or disabled")
	flag.BoolVar(&cfg.Debug, "debug", cfg.Debug, "treat tracker invariant violations as fatal")
	flag.Parse()

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	if *configPath != "" {
		fromFile, err := config.Load(*configPath)
		if err != nil {
			log.Error("load config", "error", err)
			os.Exit(1)
		}
		explicit := make(map[string]bool)
		flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
		config.Merge(cfg, fromFile, explicit)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv, err := server.New(cfg, log)
	if err != nil {
		log.Error("configure proxy", "error", err)
		os.Exit(1)
	}
	if err := srv.Start(ctx); err != nil {
		log.Error("proxy error", "error", err)
		os.Exit(1)
	}
}
