// Package main harvests a wallet's swap history and equity series into
// storage, either as a one-shot backfill or as a live log subscription.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"wallet-behavior-lab/internal/ingestion"
	"wallet-behavior-lab/internal/observability"
	"wallet-behavior-lab/internal/solana"
	"wallet-behavior-lab/internal/storage"
	"wallet-behavior-lab/internal/storage/memory"
	"wallet-behavior-lab/internal/storage/migrations"
	pgstore "wallet-behavior-lab/internal/storage/postgres"
)

func main() {
	// Load .env file if present, system env vars take precedence
	_ = godotenv.Load()

	// Parse flags (env vars as defaults)
	mode := flag.String("mode", "harvest", "Ingestion mode: harvest or watch")
	wallet := flag.String("wallet", os.Getenv("WALLET"), "Wallet address to ingest")
	rpcEndpoint := flag.String("rpc-endpoint", os.Getenv("SOLANA_RPC_ENDPOINT"), "Solana RPC HTTP endpoint")
	wsEndpoint := flag.String("ws-endpoint", os.Getenv("SOLANA_WS_ENDPOINT"), "Solana WebSocket endpoint (watch mode)")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	equityURL := flag.String("equity-url", os.Getenv("EQUITY_PROVIDER_URL"), "Equity series provider endpoint (empty to skip)")
	solPrice := flag.Float64("sol-price", envFloat("SOL_PRICE_USD", 150.0), "SOL price in USD for quote conversion")
	maxSignatures := flag.Int("max-signatures", 0, "Max signatures to harvest, 0 for unbounded")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address (empty to disable)")
	verbose := flag.Bool("verbose", true, "Enable progress logging")

	flag.Parse()

	logger := log.New(os.Stdout, "[ingest] ", log.LstdFlags|log.Lshortfile)

	if *wallet == "" {
		logger.Fatal("--wallet is required")
	}
	if *rpcEndpoint == "" {
		logger.Fatal("--rpc-endpoint is required")
	}
	if *mode == "watch" && *wsEndpoint == "" {
		logger.Fatal("--ws-endpoint is required in watch mode")
	}
	if !*useMemory && *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	// Start metrics server if enabled
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

	// Handle shutdown signals with graceful timeout
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
			// Normal shutdown completed
		}
	}()

	// Create stores
	tradeStore, equityStore, cleanup, err := createStores(ctx, *postgresDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	rpc := solana.NewHTTPClient(*rpcEndpoint)
	harvester := ingestion.NewHarvester(rpc, tradeStore, equityStore, ingestion.HarvesterConfig{
		EquityURL:     *equityURL,
		SolPriceUsd:   *solPrice,
		MaxSignatures: *maxSignatures,
		Verbose:       *verbose,
	})

	switch *mode {
	case "harvest":
		err = runHarvest(ctx, logger, harvester, *wallet, *equityURL != "")
	case "watch":
		err = runWatch(ctx, logger, harvester, *wsEndpoint, *wallet)
	default:
		logger.Fatalf("Unknown mode: %s", *mode)
	}

	done <- err
	cancel()

	if err != nil && err != context.Canceled {
		logger.Fatalf("Ingestion error: %v", err)
	}
	logger.Println("Done")
}

// runHarvest backfills the wallet's trade history and equity series.
func runHarvest(ctx context.Context, logger *log.Logger, h *ingestion.Harvester, wallet string, withEquity bool) error {
	start := time.Now()

	inserted, err := h.HarvestTrades(ctx, wallet)
	if err != nil {
		observability.RecordIngestionError("trades")
		return err
	}
	logger.Printf("Harvested %d new trades for %s", inserted, wallet)

	if withEquity {
		points, err := h.HarvestEquity(ctx, wallet)
		if err != nil {
			observability.RecordIngestionError("equity")
			return err
		}
		logger.Printf("Harvested %d new equity points for %s", points, wallet)
		observability.RecordEquityPointsAdded(points)
	}

	observability.DefaultMetrics.HarvestDuration.Observe(time.Since(start).Seconds())
	observability.DefaultMetrics.LastSuccessfulHarvest.SetToCurrentTime()
	return nil
}

// runWatch subscribes to the wallet's transaction logs and ingests swaps
// as they confirm. Blocks until the context is cancelled.
func runWatch(ctx context.Context, logger *log.Logger, h *ingestion.Harvester, wsEndpoint, wallet string) error {
	ws, err := solana.NewWSClient(ctx, wsEndpoint, nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	observability.DefaultMetrics.WatchedWallets.Set(1)
	defer observability.DefaultMetrics.WatchedWallets.Set(0)

	logger.Printf("Watching %s", wallet)
	return h.Watch(ctx, ws, wallet)
}

// createStores creates trade and equity stores, running migrations in
// postgres mode.
func createStores(ctx context.Context, postgresDSN string, useMemory bool) (storage.TradeStore, storage.EquityPointStore, func(), error) {
	if useMemory {
		return memory.NewTradeStore(), memory.NewEquityPointStore(), func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, nil, err
	}

	return pgstore.NewTradeStore(pool), pgstore.NewEquityPointStore(pool), pool.Close, nil
}

// envFloat reads a float env var, falling back to def when unset or bad.
func envFloat(key string, def float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return f
}
