package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/HerbHall/leasesync/internal/config"
	"github.com/HerbHall/leasesync/internal/event"
	"github.com/HerbHall/leasesync/internal/inventory"
	"github.com/HerbHall/leasesync/internal/reconcile"
	"github.com/HerbHall/leasesync/internal/routeros"
	"github.com/HerbHall/leasesync/internal/server"
	"github.com/HerbHall/leasesync/internal/store"
	"github.com/HerbHall/leasesync/internal/version"
	"github.com/HerbHall/leasesync/internal/ws"
	"github.com/HerbHall/leasesync/pkg/models"
)

func main() {
	// Subcommand dispatch (before flag.Parse).
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "reconcile":
			runReconcile(os.Args[2:])
			return
		case "version":
			fmt.Println(version.Info())
			return
		}
	}

	configPath := flag.String("config", "", "path to configuration file")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	// Load configuration (before logger, so log level/format can be configured).
	viperCfg, err := server.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := config.NewLogger(viperCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("LeaseSync server starting", zap.String("version", version.Short()))

	if f := viperCfg.ConfigFileUsed(); f != "" {
		logger.Info("configuration loaded",
			zap.String("component", "config"),
			zap.String("source", f),
		)
	} else {
		logger.Warn("no configuration file found, using defaults",
			zap.String("component", "config"),
		)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, invStore, err := openStores(ctx, viperCfg)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	if err := db.CheckVersion(ctx, version.Version); err != nil {
		logger.Fatal("schema version check failed", zap.Error(err))
	}
	logger.Info("database initialized",
		zap.String("component", "database"),
		zap.String("dsn", viperCfg.GetString("database.dsn")),
	)

	bus := event.NewBus(logger.Named("event"))
	engine := buildEngine(viperCfg, invStore, bus, logger)
	logger.Info("reconciliation engine initialized",
		zap.String("component", "reconcile"),
		zap.Int("fetch_concurrency", viperCfg.GetInt("reconcile.fetch_concurrency")),
	)

	api := reconcile.NewAPI(engine, invStore, logger.Named("api"))
	wsHandler := ws.NewHandler(bus, logger.Named("ws"))

	addr := viperCfg.GetString("server.host") + ":" + viperCfg.GetString("server.port")
	if addr == ":" {
		addr = "0.0.0.0:8080"
	}
	readyCheck := server.ReadinessChecker(func(ctx context.Context) error {
		return db.DB().PingContext(ctx)
	})
	srv := server.New(addr, logger.Named("server"), readyCheck, api, wsHandler)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	logger.Info("LeaseSync server ready", zap.String("addr", addr))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}

	logger.Info("LeaseSync server stopped")
}

// runReconcile executes a single pass from the command line and
// prints the result as JSON. Exit status is non-zero only when the
// pass could not run at all; partial failures are part of the output.
func runReconcile(args []string) {
	fs := flag.NewFlagSet("reconcile", flag.ExitOnError)
	configPath := fs.String("config", "", "path to configuration file")
	modeFlag := fs.String("mode", "preview", "reconciliation mode: preview, import, update, import_update")
	routersFlag := fs.String("routers", "", "comma-separated router IDs (default: all)")
	_ = fs.Parse(args)

	mode, err := models.ParseMode(*modeFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	viperCfg, err := server.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger, err := config.NewLogger(viperCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, invStore, err := openStores(ctx, viperCfg)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	engine := buildEngine(viperCfg, invStore, nil, logger)
	result, err := engine.Reconcile(ctx, mode, splitIDs(*routersFlag))
	if err != nil {
		logger.Fatal("reconciliation failed", zap.Error(err))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
}

func openStores(ctx context.Context, v *viper.Viper) (*store.SQLiteStore, *inventory.Store, error) {
	dsn := v.GetString("database.dsn")
	if dsn == "" {
		dsn = "leasesync.db"
	}
	db, err := store.New(dsn)
	if err != nil {
		return nil, nil, err
	}
	invStore, err := inventory.NewStore(ctx, db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return db, invStore, nil
}

func buildEngine(v *viper.Viper, invStore *inventory.Store, bus *event.Bus, logger *zap.Logger) *reconcile.Engine {
	timeout := v.GetDuration("reconcile.transport_timeout")
	rest := routeros.NewRESTClient(timeout,
		v.GetInt("routeros.rest_port"),
		v.GetBool("routeros.use_tls"),
		logger.Named("routeros-rest"))
	console := routeros.NewConsoleClient(timeout,
		v.GetInt("routeros.ssh_port"),
		logger.Named("routeros-console"))
	fetcher := routeros.NewFallback(rest, console, logger.Named("routeros"))

	return reconcile.NewEngine(invStore, fetcher, inventory.CommentMatcher{}, bus,
		logger.Named("reconcile"), reconcile.Config{
			FetchConcurrency: v.GetInt("reconcile.fetch_concurrency"),
			TransportTimeout: timeout,
			PingPrecheck:     v.GetBool("reconcile.ping_precheck"),
			PingTimeout:      v.GetDuration("reconcile.ping_timeout"),
		})
}

func splitIDs(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	ids := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}
