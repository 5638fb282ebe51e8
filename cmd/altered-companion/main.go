// Command altered-companion is the command-line interface to the companion:
// it refreshes the collection, friends and tradelists, drives trades, and
// manages the local database.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/nmorel/altered-companion/internal/altered"
	"github.com/nmorel/altered-companion/internal/auth"
	"github.com/nmorel/altered-companion/internal/collection"
	"github.com/nmorel/altered-companion/internal/companion"
	"github.com/nmorel/altered-companion/internal/config"
	"github.com/nmorel/altered-companion/internal/storage"
	"github.com/nmorel/altered-companion/internal/storage/repository"
)

var (
	tokenFlag  = flag.String("token", "", "API bearer token (overrides ALTERED_TOKEN and the token file)")
	configPath = flag.String("config", "", "Path to config.toml (default: ~/.altered-companion/config.toml)")
)

func main() {
	// A .env next to the binary may carry ALTERED_TOKEN.
	_ = godotenv.Load()

	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	switch args[0] {
	case "migrate":
		runMigrationCommand(args[1:])
		return
	case "token":
		runTokenCommand(args[1:])
		return
	}

	app, cleanup := setup()
	defer cleanup()

	ctx := context.Background()

	switch args[0] {
	case "refresh":
		runRefresh(ctx, app)
	case "stats":
		runStats(ctx, app)
	case "friends":
		runFriends(ctx, app, args[1:])
	case "tradelists":
		runTradelists(ctx, app, args[1:])
	case "trades":
		runTrades(ctx, app)
	case "trade":
		runTrade(ctx, app, args[1:])
	case "wantlist":
		runWantlist(ctx, app, args[1:])
	case "tradelist":
		runTradelist(ctx, app, args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Altered Companion")
	fmt.Println("=================")
	fmt.Println()
	fmt.Println("Usage: altered-companion [flags] <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  refresh        - Rebuild the collection from the Altered API")
	fmt.Println("  stats          - Show playset completion statistics")
	fmt.Println("  friends        - List friends (-refresh to re-fetch)")
	fmt.Println("  tradelists     - Show friend tradelists (-refresh to reassemble)")
	fmt.Println("  trades         - List trades")
	fmt.Println("  trade          - Manage a trade (start/accept/cancel)")
	fmt.Println("  wantlist       - Toggle a card's wantlist membership")
	fmt.Println("  tradelist      - Set a card's quantity on your own tradelist")
	fmt.Println("  token          - Manage the stored API token (set/show/clear)")
	fmt.Println("  migrate        - Run database migrations (up/down/status)")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  altered-companion refresh")
	fmt.Println("  altered-companion friends -refresh")
	fmt.Println("  altered-companion trade start -friend <id> -card ALT_CORE_B_AX_01_C=2")
	fmt.Println("  altered-companion wantlist ALT_CORE_B_AX_01_C")
	fmt.Println("  altered-companion tradelist ALT_CORE_B_AX_01_C 3")
	fmt.Println()
}

type app struct {
	service *companion.Service
}

// loadConfig loads the TOML config, honoring the -config flag.
func loadConfig() *config.Config {
	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFrom(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}
	return cfg
}

// setup loads configuration, opens the database, resolves the token, and
// builds the service. The returned cleanup closes everything.
func setup() (*app, func()) {
	cfg := loadConfig()

	dbConfig := storage.DefaultConfig(cfg.Storage.DatabasePath)
	dbConfig.AutoMigrate = true
	db, err := storage.Open(dbConfig)
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}

	tokens, err := auth.Resolve(*tokenFlag, cfg.Auth.TokenFile)
	if err != nil {
		tokens, err = vaultTokenSource(db)
		if err != nil {
			log.Fatalf("Error resolving token: %v", err)
		}
	}

	baseline, err := collection.LoadCatalog(cfg.Storage.CatalogPath)
	if err != nil {
		log.Fatalf("Error loading card catalog: %v", err)
	}

	ttl, err := cfg.GetCacheTTL()
	if err != nil {
		log.Fatalf("Invalid cache TTL: %v", err)
	}

	service := companion.NewService(db, companion.Options{
		BaseURL:  cfg.API.BaseURL,
		Tokens:   tokens,
		Baseline: baseline,
		CacheTTL: ttl,
	})

	cleanup := func() {
		if closer, ok := tokens.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}

	return &app{service: service}, cleanup
}

func runRefresh(ctx context.Context, a *app) {
	start := time.Now()
	cc, err := a.service.RefreshCollection(ctx)
	if err != nil {
		log.Fatalf("Error refreshing collection: %v", err)
	}

	owned := 0
	for _, card := range cc {
		if card.InMyCollection > 0 {
			owned++
		}
	}
	fmt.Printf("Collection refreshed in %s: %d cards known, %d owned\n",
		time.Since(start).Round(time.Millisecond), len(cc), owned)
}

func runStats(ctx context.Context, a *app) {
	stats, err := a.service.Stats(ctx)
	if err != nil {
		log.Fatalf("Error computing stats: %v", err)
	}

	printPool := func(name string, pool collection.PlaysetStats) {
		fmt.Printf("%s: %d/%d\n", name, pool.Total.Owned, pool.Total.Needed)
		for _, faction := range collection.AllFactions {
			progress := pool.ByFaction[faction]
			fmt.Printf("  %s: %d/%d\n", faction, progress.Owned, progress.Needed)
		}
	}

	printPool("Commons", stats.Commons)
	printPool("Rares", stats.Rares)
}

func runFriends(ctx context.Context, a *app, args []string) {
	fs := flag.NewFlagSet("friends", flag.ExitOnError)
	refresh := fs.Bool("refresh", false, "Re-fetch the friend list from the API")
	_ = fs.Parse(args)

	var err error
	var list interface{}
	if *refresh {
		list, err = a.service.RefreshFriends(ctx)
	} else {
		list, err = a.service.Friends(ctx)
	}
	if err != nil {
		log.Fatalf("Error listing friends: %v", err)
	}

	printJSON(list)
}

func runTradelists(ctx context.Context, a *app, args []string) {
	fs := flag.NewFlagSet("tradelists", flag.ExitOnError)
	refresh := fs.Bool("refresh", false, "Reassemble tradelists from the API")
	_ = fs.Parse(args)

	var err error
	var tradelists interface{}
	if *refresh {
		tradelists, err = a.service.RefreshTradelists(ctx)
	} else {
		tradelists, err = a.service.Tradelists(ctx)
	}
	if err != nil {
		log.Fatalf("Error loading tradelists: %v", err)
	}

	printJSON(tradelists)
}

func runTrades(ctx context.Context, a *app) {
	list, err := a.service.Trades(ctx)
	if err != nil {
		log.Fatalf("Error listing trades: %v", err)
	}

	printJSON(list)
}

func runTrade(ctx context.Context, a *app, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: altered-companion trade <start|accept|cancel> ...")
		os.Exit(1)
	}

	switch args[0] {
	case "start":
		fs := flag.NewFlagSet("trade start", flag.ExitOnError)
		friendID := fs.String("friend", "", "Friend ID to trade with")
		var cards cardQuantityFlags
		fs.Var(&cards, "card", "Card as REFERENCE=QTY (repeatable)")
		_ = fs.Parse(args[1:])

		if *friendID == "" || len(cards) == 0 {
			fmt.Fprintln(os.Stderr, "trade start requires -friend and at least one -card")
			os.Exit(1)
		}

		tradeID, err := a.service.StartTrade(ctx, *friendID, cards)
		if err != nil {
			log.Fatalf("Error starting trade: %v", err)
		}
		fmt.Printf("Trade %s started\n", tradeID)

	case "accept":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "Usage: altered-companion trade accept <trade-id>")
			os.Exit(1)
		}
		if err := a.service.AcceptTrade(ctx, args[1]); err != nil {
			log.Fatalf("Error accepting trade: %v", err)
		}
		fmt.Printf("Trade %s accepted\n", args[1])

	case "cancel":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "Usage: altered-companion trade cancel <trade-id>")
			os.Exit(1)
		}
		if err := a.service.CancelTrade(ctx, args[1]); err != nil {
			log.Fatalf("Error canceling trade: %v", err)
		}
		fmt.Printf("Trade %s canceled\n", args[1])

	default:
		fmt.Fprintf(os.Stderr, "Unknown trade command: %s\n", args[0])
		os.Exit(1)
	}
}

func runWantlist(ctx context.Context, a *app, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: altered-companion wantlist <reference>")
		os.Exit(1)
	}

	inWantlist, err := a.service.ToggleWantlist(ctx, args[0])
	if err != nil {
		log.Fatalf("Error toggling wantlist: %v", err)
	}

	if inWantlist {
		fmt.Printf("%s added to wantlist\n", args[0])
	} else {
		fmt.Printf("%s removed from wantlist\n", args[0])
	}
}

func runTradelist(ctx context.Context, a *app, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: altered-companion tradelist <reference> <quantity>")
		os.Exit(1)
	}

	quantity, err := strconv.Atoi(args[1])
	if err != nil || quantity < 0 {
		fmt.Fprintln(os.Stderr, "Quantity must be a non-negative integer")
		os.Exit(1)
	}

	if err := a.service.UpdateTradelist(ctx, args[0], quantity); err != nil {
		log.Fatalf("Error updating tradelist: %v", err)
	}
	fmt.Printf("%s now offered x%d\n", args[0], quantity)
}

const (
	// vaultPasswordEnv names the env var whose value derives the encryption
	// key for tokens stored with "token set".
	vaultPasswordEnv = "ALTERED_VAULT_PASSWORD"

	tokenSecretKey = "apiToken"
)

// vaultTokenSource reads the encrypted token stored by "token set".
func vaultTokenSource(db *storage.DB) (auth.TokenSource, error) {
	password := os.Getenv(vaultPasswordEnv)
	if password == "" {
		return nil, fmt.Errorf("no token available: pass -token, set %s, configure a token file, or store one with \"token set\" (%s required)", auth.EnvToken, vaultPasswordEnv)
	}

	secrets := repository.NewSecretsRepository(db.Conn(), password)
	value, err := secrets.Get(context.Background(), tokenSecretKey)
	if err != nil {
		return nil, err
	}
	if value == "" {
		return nil, fmt.Errorf("no token stored; run \"altered-companion token set <token>\" first")
	}

	return auth.StaticToken(value), nil
}

func runTokenCommand(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: altered-companion token <set|show|clear> [value]")
		os.Exit(1)
	}

	password := os.Getenv(vaultPasswordEnv)
	if password == "" {
		log.Fatalf("Error: %s must be set to use the token vault", vaultPasswordEnv)
	}

	cfg := loadConfig()

	dbConfig := storage.DefaultConfig(cfg.Storage.DatabasePath)
	dbConfig.AutoMigrate = true
	db, err := storage.Open(dbConfig)
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}
	defer func() { _ = db.Close() }()

	secrets := repository.NewSecretsRepository(db.Conn(), password)
	ctx := context.Background()

	switch args[0] {
	case "set":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "Usage: altered-companion token set <token>")
			os.Exit(1)
		}
		if err := secrets.Set(ctx, tokenSecretKey, auth.Normalize(args[1])); err != nil {
			log.Fatalf("Error storing token: %v", err)
		}
		fmt.Println("Token stored (encrypted)")

	case "show":
		value, err := secrets.Get(ctx, tokenSecretKey)
		if err != nil {
			log.Fatalf("Error loading token: %v", err)
		}
		if value == "" {
			fmt.Println("No token stored")
			return
		}
		fmt.Println(value)

	case "clear":
		if err := secrets.Delete(ctx, tokenSecretKey); err != nil {
			log.Fatalf("Error clearing token: %v", err)
		}
		fmt.Println("Token cleared")

	default:
		fmt.Fprintf(os.Stderr, "Unknown token command: %s\n", args[0])
		os.Exit(1)
	}
}

func runMigrationCommand(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: altered-companion migrate <up|down|status>")
		os.Exit(1)
	}

	cfg := loadConfig()

	mgr, err := storage.NewMigrationManager(cfg.Storage.DatabasePath)
	if err != nil {
		log.Fatalf("Error creating migration manager: %v", err)
	}
	defer func() {
		if err := mgr.Close(); err != nil {
			log.Printf("Error closing migration manager: %v", err)
		}
	}()

	switch args[0] {
	case "up":
		if err := mgr.Up(); err != nil {
			log.Fatalf("Error applying migrations: %v", err)
		}
		fmt.Println("All migrations applied")

	case "down":
		if err := mgr.Down(); err != nil {
			log.Fatalf("Error rolling back migration: %v", err)
		}
		fmt.Println("Last migration rolled back")

	case "status", "version":
		version, dirty, err := mgr.Version()
		if err != nil {
			log.Fatalf("Error getting version: %v", err)
		}
		if dirty {
			fmt.Printf("Current version: %d (dirty)\n", version)
		} else {
			fmt.Printf("Current version: %d\n", version)
		}

	default:
		fmt.Fprintf(os.Stderr, "Unknown migrate command: %s\n", args[0])
		os.Exit(1)
	}
}

// cardQuantityFlags accumulates repeated -card REFERENCE=QTY flags.
type cardQuantityFlags []altered.CardQuantity

func (c *cardQuantityFlags) String() string {
	parts := make([]string, len(*c))
	for i, card := range *c {
		parts[i] = fmt.Sprintf("%s=%d", card.Reference, card.Quantity)
	}
	return strings.Join(parts, ",")
}

func (c *cardQuantityFlags) Set(value string) error {
	reference, qty, found := strings.Cut(value, "=")
	if !found || reference == "" {
		return fmt.Errorf("expected REFERENCE=QTY, got %q", value)
	}
	quantity, err := strconv.Atoi(qty)
	if err != nil || quantity <= 0 {
		return fmt.Errorf("quantity must be a positive integer in %q", value)
	}
	*c = append(*c, altered.CardQuantity{Reference: reference, Quantity: quantity})
	return nil
}

func printJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("Error encoding output: %v", err)
	}
	fmt.Println(string(data))
}
