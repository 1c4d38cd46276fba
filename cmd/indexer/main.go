package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"lending-pool-indexer/internal/feed"
	"lending-pool-indexer/internal/observability"
	"lending-pool-indexer/internal/projection"
	"lending-pool-indexer/internal/resolver"
	chstore "lending-pool-indexer/internal/storage/clickhouse"
	"lending-pool-indexer/internal/storage/memory"
	"lending-pool-indexer/internal/storage/migrations"
	pgstore "lending-pool-indexer/internal/storage/postgres"
)

func main() {
	// .env is optional; flags override nothing set here.
	_ = godotenv.Load()

	mode := flag.String("mode", "replay", "Run mode: chain, live or replay")
	poolAddr := flag.String("pool", envOr("LENDING_POOL", ""), "Lending pool contract address")
	eventsPath := flag.String("events", "", "JSONL event file for replay mode")
	wsEndpoint := flag.String("ws-endpoint", envOr("WS_ENDPOINT", ""), "WebSocket event feed endpoint for live mode")
	rpcEndpoint := flag.String("rpc-endpoint", envOr("RPC_ENDPOINT", ""), "EVM node WebSocket endpoint for chain mode")
	postgresDSN := flag.String("postgres-dsn", envOr("POSTGRES_DSN", ""), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", envOr("CLICKHOUSE_DSN", ""), "ClickHouse connection string for the reserve params timeseries (optional)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address (empty to disable)")

	flag.Parse()

	logger := log.New(os.Stdout, "[indexer] ", log.LstdFlags|log.Lshortfile)

	if *poolAddr == "" {
		logger.Fatal("--pool is required")
	}

	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})
			logger.Printf("Starting metrics server on %s", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil && err != http.ErrServerClosed {
				logger.Printf("Metrics server error: %v", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
		}
	}()

	err := run(ctx, logger, *mode, *poolAddr, *eventsPath, *wsEndpoint, *rpcEndpoint, *postgresDSN, *clickhouseDSN, *useMemory)

	done <- err
	cancel()

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("Error: %v", err)
	}

	logger.Println("Shutdown complete")
}

func run(ctx context.Context, logger *log.Logger, mode, poolAddr, eventsPath, wsEndpoint, rpcEndpoint, postgresDSN, clickhouseDSN string, useMemory bool) error {
	var source feed.Source
	switch mode {
	case "replay":
		if eventsPath == "" {
			return fmt.Errorf("--events is required for replay mode")
		}
		source = feed.NewFileSource(eventsPath)
	case "live":
		if wsEndpoint == "" {
			return fmt.Errorf("--ws-endpoint is required for live mode")
		}
		source = feed.NewWSSource(wsEndpoint, nil)
	case "chain":
		if rpcEndpoint == "" {
			return fmt.Errorf("--rpc-endpoint is required for chain mode")
		}
		chain, err := feed.NewChainLogSource(rpcEndpoint, poolAddr, logger)
		if err != nil {
			return fmt.Errorf("build chain log source: %w", err)
		}
		source = chain
	default:
		return fmt.Errorf("unknown mode: %s", mode)
	}

	if !useMemory && postgresDSN == "" {
		return fmt.Errorf("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	entities := memory.NewEntities()
	history := memory.NewHistory()

	if !useMemory {
		pool, err := pgstore.NewPool(ctx, postgresDSN)
		if err != nil {
			return fmt.Errorf("connect to postgres: %w", err)
		}
		defer pool.Close()

		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			return fmt.Errorf("run postgres migrations: %w", err)
		}

		entities = pgstore.NewEntities(pool)
		history = pgstore.NewHistory(pool)
	}

	// With a ClickHouse DSN the params timeseries moves there; every
	// other store keeps its configured backend.
	if clickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
		if err != nil {
			return fmt.Errorf("run clickhouse migrations: %w", err)
		}
		defer conn.Close()

		history.ReserveParams = chstore.NewReserveParamsHistoryStore(conn)
	}

	engine := projection.NewEngine(resolver.New(poolAddr, entities), entities, history, logger)

	runner := feed.NewRunner(feed.RunnerOptions{
		Source: source,
		Engine: engine,
		Logger: logger,
	})

	logger.Printf("Starting %s projection for pool %s", mode, poolAddr)
	return runner.Run(ctx)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
