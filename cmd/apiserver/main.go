// Command apiserver runs the HTTP/WebSocket API server used by desktop and
// web front-ends. It exposes the collection, friend tradelists and trade
// operations over REST and pushes refresh events over WebSocket.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/nmorel/altered-companion/internal/api"
	"github.com/nmorel/altered-companion/internal/auth"
	"github.com/nmorel/altered-companion/internal/collection"
	"github.com/nmorel/altered-companion/internal/companion"
	"github.com/nmorel/altered-companion/internal/config"
	"github.com/nmorel/altered-companion/internal/storage"
)

var (
	port        = flag.Int("port", 0, "Port to listen on (overrides config)")
	dbPath      = flag.String("db-path", "", "Path to SQLite database (overrides config)")
	catalogPath = flag.String("catalog", "", "Path to the card catalog JSON (overrides config)")
	tokenFlag   = flag.String("token", "", "API bearer token (overrides ALTERED_TOKEN and the token file)")
	configFlag  = flag.String("config", "", "Path to config.toml (default: ~/.altered-companion/config.toml)")

	refreshInterval   = flag.Duration("refresh", 0, "Background refresh interval (0 disables)")
	refreshTradelists = flag.Bool("refresh-tradelists", false, "Include friend tradelists in background refreshes")
)

func main() {
	_ = godotenv.Load()

	flag.Parse()

	var cfg *config.Config
	var err error
	if *configFlag != "" {
		cfg, err = config.LoadFrom(*configFlag)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Fatalf("[main] failed to load config: %v", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.Storage.DatabasePath = *dbPath
	}
	if *catalogPath != "" {
		cfg.Storage.CatalogPath = *catalogPath
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[main] invalid config: %v", err)
	}

	tokens, err := auth.Resolve(*tokenFlag, cfg.Auth.TokenFile)
	if err != nil {
		log.Fatalf("[main] failed to resolve token: %v", err)
	}

	baseline, err := collection.LoadCatalog(cfg.Storage.CatalogPath)
	if err != nil {
		log.Fatalf("[main] failed to load card catalog: %v", err)
	}

	dbConfig := storage.DefaultConfig(cfg.Storage.DatabasePath)
	dbConfig.AutoMigrate = true
	db, err := storage.Open(dbConfig)
	if err != nil {
		log.Fatalf("[main] failed to open database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("[main] error closing database: %v", err)
		}
	}()

	ttl, err := cfg.GetCacheTTL()
	if err != nil {
		log.Fatalf("[main] invalid cache TTL: %v", err)
	}

	service := companion.NewService(db, companion.Options{
		BaseURL:  cfg.API.BaseURL,
		Tokens:   tokens,
		Baseline: baseline,
		CacheTTL: ttl,
	})

	server := api.NewServer(&api.Config{Port: cfg.Server.Port}, service)
	service.SetNotifier(server.Hub())

	if err := server.Start(); err != nil {
		log.Fatalf("[main] failed to start server: %v", err)
	}
	log.Printf("[main] API server listening on port %d", server.Port())

	scheduler := companion.NewScheduler(service, companion.SchedulerConfig{
		Interval:          *refreshInterval,
		RefreshTradelists: *refreshTradelists,
	})
	if scheduler != nil {
		scheduler.Start(context.Background())
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[main] shutting down...")

	if scheduler != nil {
		scheduler.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[main] error during shutdown: %v", err)
	}

	if closer, ok := tokens.(interface{ Close() error }); ok {
		_ = closer.Close()
	}

	log.Println("[main] goodbye")
}
