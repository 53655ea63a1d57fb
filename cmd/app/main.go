package main

import (
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"ChartFeed/internal/di"
	"ChartFeed/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	// Optional .env for local development; overrides are read in LoadWithEnv.
	_ = godotenv.Load()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s pair=%s upstream=%s", cfg.Environment, cfg.Upstream.PairID, cfg.Upstream.BaseURL)

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
