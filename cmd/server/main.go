// Package main provides a unified service that runs all components together:
// - Ingestion (continuous): live wallet log subscriptions
// - Harvest (scheduled): RPC backfill + equity series refresh
// - Profiling (scheduled): feature extraction, profile + report output
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"wallet-behavior-lab/internal/ingestion"
	"wallet-behavior-lab/internal/observability"
	"wallet-behavior-lab/internal/profile"
	"wallet-behavior-lab/internal/reporting"
	"wallet-behavior-lab/internal/solana"
	"wallet-behavior-lab/internal/storage"
	chstore "wallet-behavior-lab/internal/storage/clickhouse"
	"wallet-behavior-lab/internal/storage/memory"
	"wallet-behavior-lab/internal/storage/migrations"
	pgstore "wallet-behavior-lab/internal/storage/postgres"
)

// Server holds all components of the unified service.
type Server struct {
	// Configuration
	rpcEndpoint     string
	wsEndpoint      string
	equityURL       string
	wallets         []string
	outputDir       string
	harvestInterval time.Duration
	profileInterval time.Duration

	// Components
	harvester *ingestion.Harvester
	profiler  *profile.Profiler
	generator *reporting.Generator
	logger    *log.Logger

	// State
	mu             sync.Mutex
	started        time.Time
	lastHarvestRun time.Time
	lastProfileRun time.Time
	harvestRunning bool
	profileRunning bool

	// Stats
	harvestRuns int
	profileRuns int
}

// allStores holds all storage implementations.
type allStores struct {
	trades      storage.TradeStore
	equity      storage.EquityPointStore
	featureRows storage.FeatureRowStore
	profiles    storage.ProfileStore
}

func main() {
	// Load .env file if present, system env vars take precedence
	_ = godotenv.Load()

	// Parse flags (env vars as defaults)
	rpcEndpoint := flag.String("rpc-endpoint", os.Getenv("SOLANA_RPC_ENDPOINT"), "Solana RPC HTTP endpoint")
	wsEndpoint := flag.String("ws-endpoint", os.Getenv("SOLANA_WS_ENDPOINT"), "Solana WebSocket endpoint (empty to disable live watch)")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string (empty to skip feature row persistence)")
	wallets := flag.String("wallets", os.Getenv("WALLETS"), "Comma-separated wallet addresses to track")
	equityURL := flag.String("equity-url", os.Getenv("EQUITY_PROVIDER_URL"), "Equity series provider endpoint (empty to skip)")
	solPrice := flag.Float64("sol-price", 150.0, "SOL price in USD for quote conversion")
	outputDir := flag.String("output-dir", "output", "Output directory for reports")
	harvestInterval := flag.Duration("harvest-interval", 1*time.Hour, "Harvest run interval")
	profileInterval := flag.Duration("profile-interval", 6*time.Hour, "Profile + report run interval")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address")

	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	if *rpcEndpoint == "" {
		logger.Fatal("--rpc-endpoint is required")
	}
	walletList := splitWallets(*wallets)
	if len(walletList) == 0 {
		logger.Fatal("--wallets is required")
	}
	if !*useMemory && *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}
	logger.Printf("Tracking wallets: %v", walletList)

	ctx, cancel := context.WithCancel(context.Background())

	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	rpc := solana.NewHTTPClient(*rpcEndpoint)
	server := &Server{
		rpcEndpoint:     *rpcEndpoint,
		wsEndpoint:      *wsEndpoint,
		equityURL:       *equityURL,
		wallets:         walletList,
		outputDir:       *outputDir,
		harvestInterval: *harvestInterval,
		profileInterval: *profileInterval,
		harvester: ingestion.NewHarvester(rpc, stores.trades, stores.equity, ingestion.HarvesterConfig{
			EquityURL:   *equityURL,
			SolPriceUsd: *solPrice,
			Verbose:     true,
		}),
		profiler:  profile.NewProfiler(stores.trades, stores.equity, stores.featureRows, stores.profiles),
		generator: reporting.NewGenerator(stores.profiles),
		logger:    logger,
	}

	// Channel to signal completion
	done := make(chan error, 1)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		// Wait for second signal for immediate shutdown
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

	// Start HTTP server
	go server.startHTTPServer(*metricsAddr)

	// Run the unified server
	err = server.Run(ctx)
	done <- err
	cancel()

	if err != nil && err != context.Canceled {
		logger.Fatalf("Server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// splitWallets splits a comma-separated wallet list.
func splitWallets(s string) []string {
	var list []string
	for _, w := range strings.Split(s, ",") {
		w = strings.TrimSpace(w)
		if w != "" {
			list = append(list, w)
		}
	}
	return list
}

// createStores creates all required stores, running migrations.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (*allStores, func(), error) {
	if useMemory {
		stores := &allStores{
			trades:      memory.NewTradeStore(),
			equity:      memory.NewEquityPointStore(),
			featureRows: memory.NewFeatureRowStore(),
			profiles:    memory.NewProfileStore(),
		}
		return stores, func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run postgres migrations: %w", err)
	}

	stores := &allStores{
		trades:   pgstore.NewTradeStore(pool),
		equity:   pgstore.NewEquityPointStore(pool),
		profiles: pgstore.NewProfileStore(pool),
	}
	cleanup := func() { pool.Close() }

	if clickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
		}
		stores.featureRows = chstore.NewFeatureRowStore(conn)
		cleanup = func() {
			conn.Close()
			pool.Close()
		}
	}

	return stores, cleanup, nil
}

// Run starts the unified server with all components.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Println("Starting unified server...")

	s.mu.Lock()
	s.started = time.Now()
	s.mu.Unlock()

	errCh := make(chan error, 3)

	// Start live watch in background if a WS endpoint is configured
	if s.wsEndpoint != "" {
		go func() {
			err := s.runWatch(ctx)
			if err != nil && err != context.Canceled {
				errCh <- fmt.Errorf("watch: %w", err)
			}
		}()
	}

	// Start harvest scheduler in background
	go func() {
		err := s.runHarvestScheduler(ctx)
		if err != nil && err != context.Canceled {
			errCh <- fmt.Errorf("harvest scheduler: %w", err)
		}
	}()

	// Start profile scheduler in background
	go func() {
		err := s.runProfileScheduler(ctx)
		if err != nil && err != context.Canceled {
			errCh <- fmt.Errorf("profile scheduler: %w", err)
		}
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// runWatch subscribes to every tracked wallet's transaction logs.
func (s *Server) runWatch(ctx context.Context) error {
	ws, err := solana.NewWSClient(ctx, s.wsEndpoint, nil)
	if err != nil {
		return fmt.Errorf("create websocket client: %w", err)
	}
	defer ws.Close()

	observability.DefaultMetrics.WatchedWallets.Set(float64(len(s.wallets)))
	defer observability.DefaultMetrics.WatchedWallets.Set(0)

	var wg sync.WaitGroup
	for _, wallet := range s.wallets {
		wg.Add(1)
		go func(w string) {
			defer wg.Done()
			if err := s.harvester.Watch(ctx, ws, w); err != nil && err != context.Canceled {
				s.logger.Printf("Watch error for %s: %v", w, err)
			}
		}(wallet)
	}
	wg.Wait()
	return ctx.Err()
}

// runHarvestScheduler runs harvest on schedule.
func (s *Server) runHarvestScheduler(ctx context.Context) error {
	s.logger.Printf("Starting harvest scheduler (interval: %v)...", s.harvestInterval)

	// Run immediately on start
	s.runHarvest(ctx)

	ticker := time.NewTicker(s.harvestInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runHarvest(ctx)
		}
	}
}

// runHarvest backfills every tracked wallet.
func (s *Server) runHarvest(ctx context.Context) {
	s.mu.Lock()
	if s.harvestRunning {
		s.mu.Unlock()
		s.logger.Println("Harvest already running, skipping...")
		return
	}
	s.harvestRunning = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.harvestRunning = false
		s.lastHarvestRun = time.Now()
		s.harvestRuns++
		s.mu.Unlock()
	}()

	s.logger.Println("Running harvest...")
	start := time.Now()

	for _, wallet := range s.wallets {
		if ctx.Err() != nil {
			return
		}

		trades, err := s.harvester.HarvestTrades(ctx, wallet)
		if err != nil {
			s.logger.Printf("Harvest error for %s: %v", wallet, err)
			observability.RecordIngestionError("trades")
			continue
		}

		points := 0
		if s.equityURL != "" {
			points, err = s.harvester.HarvestEquity(ctx, wallet)
			if err != nil {
				s.logger.Printf("Equity harvest error for %s: %v", wallet, err)
				observability.RecordIngestionError("equity")
			} else {
				observability.RecordEquityPointsAdded(points)
			}
		}

		s.logger.Printf("Harvested %s: %d trades, %d equity points", wallet, trades, points)
	}

	observability.DefaultMetrics.HarvestDuration.Observe(time.Since(start).Seconds())
	observability.DefaultMetrics.LastSuccessfulHarvest.SetToCurrentTime()
	s.logger.Printf("Harvest completed in %v", time.Since(start))
}

// runProfileScheduler runs profiling + reporting on schedule.
func (s *Server) runProfileScheduler(ctx context.Context) error {
	s.logger.Printf("Starting profile scheduler (interval: %v)...", s.profileInterval)

	// Let the first harvest land before the first profile run
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(1 * time.Minute):
	}

	s.runProfiles(ctx)

	ticker := time.NewTicker(s.profileInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runProfiles(ctx)
		}
	}
}

// runProfiles builds profiles and writes reports for every tracked wallet.
func (s *Server) runProfiles(ctx context.Context) {
	s.mu.Lock()
	if s.profileRunning {
		s.mu.Unlock()
		s.logger.Println("Profiling already running, skipping...")
		return
	}
	s.profileRunning = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.profileRunning = false
		s.lastProfileRun = time.Now()
		s.profileRuns++
		s.mu.Unlock()
	}()

	s.logger.Println("Running profiling...")

	if err := os.MkdirAll(s.outputDir, 0755); err != nil {
		s.logger.Printf("Failed to create output directory: %v", err)
		return
	}

	for _, wallet := range s.wallets {
		if ctx.Err() != nil {
			return
		}

		start := time.Now()
		if _, err := s.profiler.BuildProfile(ctx, wallet); err != nil {
			s.logger.Printf("Profile error for %s: %v", wallet, err)
			observability.RecordProfileBuild("error", time.Since(start).Seconds())
			continue
		}
		observability.RecordProfileBuild("success", time.Since(start).Seconds())

		report, err := s.generator.Generate(ctx, wallet)
		if err != nil {
			s.logger.Printf("Report error for %s: %v", wallet, err)
			continue
		}
		if err := s.writeReport(wallet, report); err != nil {
			s.logger.Printf("Report write error for %s: %v", wallet, err)
			continue
		}

		s.logger.Printf("Profiled %s in %v", wallet, time.Since(start))
	}

	observability.DefaultMetrics.LastSuccessfulProfile.SetToCurrentTime()
}

// writeReport writes one wallet's Markdown and CSV outputs.
func (s *Server) writeReport(wallet string, report *reporting.Report) error {
	md := reporting.RenderMarkdown(report)
	mdPath := filepath.Join(s.outputDir, fmt.Sprintf("%s_REPORT.md", wallet))
	if err := os.WriteFile(mdPath, []byte(md), 0644); err != nil {
		return err
	}
	observability.RecordReportRendered("markdown")

	coinsCSV := ""
	if report.Technique != nil {
		coinsCSV = reporting.RenderCoinsCSV(report.Technique.Coins)
	}
	coinsPath := filepath.Join(s.outputDir, fmt.Sprintf("%s_COINS.csv", wallet))
	if err := os.WriteFile(coinsPath, []byte(coinsCSV), 0644); err != nil {
		return err
	}

	monthlyPath := filepath.Join(s.outputDir, fmt.Sprintf("%s_MONTHLY.csv", wallet))
	if err := os.WriteFile(monthlyPath, []byte(reporting.RenderMonthlyCSV(report.Performance)), 0644); err != nil {
		return err
	}
	observability.RecordReportRendered("csv")

	return nil
}

// startHTTPServer starts the HTTP server for health/metrics/status.
func (s *Server) startHTTPServer(addr string) {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Prometheus metrics
	mux.Handle("/metrics", observability.Handler())

	// Status endpoint
	mux.HandleFunc("/status", s.handleStatus)

	s.logger.Printf("Starting HTTP server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		s.logger.Printf("HTTP server error: %v", err)
	}
}

// StatusResponse is the JSON response for /status endpoint.
type StatusResponse struct {
	Status         string    `json:"status"`
	Uptime         string    `json:"uptime"`
	Wallets        []string  `json:"wallets"`
	LastHarvestRun time.Time `json:"last_harvest_run,omitempty"`
	LastProfileRun time.Time `json:"last_profile_run,omitempty"`
	HarvestRuns    int       `json:"harvest_runs"`
	ProfileRuns    int       `json:"profile_runs"`
	HarvestRunning bool      `json:"harvest_running"`
	ProfileRunning bool      `json:"profile_running"`
}

// handleStatus returns server status as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp := StatusResponse{
		Status:         "running",
		Uptime:         time.Since(s.started).String(),
		Wallets:        s.wallets,
		LastHarvestRun: s.lastHarvestRun,
		LastProfileRun: s.lastProfileRun,
		HarvestRuns:    s.harvestRuns,
		ProfileRuns:    s.profileRuns,
		HarvestRunning: s.harvestRunning,
		ProfileRunning: s.profileRunning,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
