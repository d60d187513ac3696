package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/lawnchairsociety/dungeonadventure/internal/config"
	"github.com/lawnchairsociety/dungeonadventure/internal/gameerr"
	"github.com/lawnchairsociety/dungeonadventure/internal/logger"
	"github.com/lawnchairsociety/dungeonadventure/internal/server"
	"github.com/lawnchairsociety/dungeonadventure/internal/storage"
)

func main() {
	configFile := flag.String("config", "data/dungeon.yaml", "Path to config YAML file")
	envFile := flag.String("env", ".env", "Path to an optional .env file")
	addr := flag.String("addr", "", "Listen address (overrides server.address)")
	flag.Parse()

	// .env fills the environment before config overrides read it
	if err := godotenv.Load(*envFile); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to read %s: %v", *envFile, err)
	}

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Printf("Config error, continuing with defaults: %v", err)
	}
	if *addr != "" {
		cfg.Server.Address = *addr
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	closer, err := logger.Initialize(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	if closer != nil {
		defer closer.Close()
	}
	gameerr.SetStrict(cfg.Debug.StrictInvariants)

	logger.Always("Starting dungeon server", "address", cfg.Server.Address, "storage", cfg.Storage.Backend)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := storage.Open(ctx, cfg)
	if err != nil {
		logger.Error("Failed to open storage", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	opts := server.Options{
		Config:      cfg,
		Repository:  st.Saves,
		Definitions: st.Definitions,
	}
	if st.DB != nil {
		opts.Results = st.DB
	}
	srv, err := server.New(opts)
	if err != nil {
		logger.Error("Failed to create server", "error", err)
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown requested")
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Always("Server stopped")
}
