// Package main computes a wallet's behavior profile from stored data and
// writes it out as Markdown and CSV files.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"wallet-behavior-lab/internal/observability"
	"wallet-behavior-lab/internal/profile"
	"wallet-behavior-lab/internal/reporting"
	"wallet-behavior-lab/internal/storage"
	chstore "wallet-behavior-lab/internal/storage/clickhouse"
	"wallet-behavior-lab/internal/storage/memory"
	"wallet-behavior-lab/internal/storage/migrations"
	pgstore "wallet-behavior-lab/internal/storage/postgres"
)

func main() {
	// Load .env file if present, system env vars take precedence
	_ = godotenv.Load()

	// Parse flags
	wallet := flag.String("wallet", os.Getenv("WALLET"), "Wallet address to report on")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string (empty to skip feature row persistence)")
	outputDir := flag.String("output-dir", "output", "Output directory for generated files")
	topN := flag.Int("top-n", profile.DefaultTopN, "Number of most recently active mints in the technique view")
	useFixtures := flag.Bool("use-fixtures", false, "Use in-memory fixtures instead of database")
	flag.Parse()

	ctx := context.Background()

	if *useFixtures && *wallet == "" {
		*wallet = profile.FixtureWallet
	}
	if *wallet == "" {
		fmt.Fprintln(os.Stderr, "Error: --wallet is required")
		os.Exit(1)
	}
	if !*useFixtures && *postgresDSN == "" {
		fmt.Fprintln(os.Stderr, "Error: --postgres-dsn is required when not using fixtures")
		fmt.Fprintln(os.Stderr, "Use --use-fixtures to run with demo data instead")
		os.Exit(1)
	}

	// Create stores based on mode
	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useFixtures)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to databases: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	// Build the profile
	profiler := profile.NewProfiler(stores.trades, stores.equity, stores.featureRows, stores.profiles).
		WithTopN(*topN)
	if *useFixtures {
		// Fixed clock for deterministic fixture output
		fixedTime := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
		profiler = profiler.WithClock(func() time.Time { return fixedTime })
	}

	start := time.Now()
	if _, err := profiler.BuildProfile(ctx, *wallet); err != nil {
		observability.RecordProfileBuild("error", time.Since(start).Seconds())
		fmt.Fprintf(os.Stderr, "Error building profile: %v\n", err)
		os.Exit(1)
	}
	observability.RecordProfileBuild("success", time.Since(start).Seconds())

	// Render the report from the stored profile
	generator := reporting.NewGenerator(stores.profiles)
	report, err := generator.Generate(ctx, *wallet)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating report: %v\n", err)
		os.Exit(1)
	}

	if err := writeOutputs(*outputDir, report); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing outputs: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Wallet report generated successfully:")
	fmt.Printf("  - %s/WALLET_REPORT.md\n", *outputDir)
	fmt.Printf("  - %s/TECHNIQUE_COINS.csv\n", *outputDir)
	fmt.Printf("  - %s/MONTHLY_PNL.csv\n", *outputDir)
}

// reportStores holds the stores the report pipeline reads and writes.
type reportStores struct {
	trades      storage.TradeStore
	equity      storage.EquityPointStore
	featureRows storage.FeatureRowStore
	profiles    storage.ProfileStore
}

// createStores wires memory fixtures or the real databases.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useFixtures bool) (*reportStores, func(), error) {
	if useFixtures {
		stores := &reportStores{
			trades:      memory.NewTradeStore(),
			equity:      memory.NewEquityPointStore(),
			featureRows: memory.NewFeatureRowStore(),
			profiles:    memory.NewProfileStore(),
		}
		if err := profile.LoadFixtures(ctx, stores.trades, stores.equity); err != nil {
			return nil, nil, fmt.Errorf("load fixtures: %w", err)
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

	stores := &reportStores{
		trades:   pgstore.NewTradeStore(pool),
		equity:   pgstore.NewEquityPointStore(pool),
		profiles: pgstore.NewProfileStore(pool),
	}
	cleanup := func() { pool.Close() }

	// Feature rows live in ClickHouse; without a DSN the profiler computes
	// them but does not persist.
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

// writeOutputs renders and writes the Markdown and CSV files.
func writeOutputs(outputDir string, report *reporting.Report) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	md := reporting.RenderMarkdown(report)
	if err := os.WriteFile(filepath.Join(outputDir, "WALLET_REPORT.md"), []byte(md), 0644); err != nil {
		return err
	}
	observability.RecordReportRendered("markdown")

	coinsCSV := ""
	if report.Technique != nil {
		coinsCSV = reporting.RenderCoinsCSV(report.Technique.Coins)
	}
	if err := os.WriteFile(filepath.Join(outputDir, "TECHNIQUE_COINS.csv"), []byte(coinsCSV), 0644); err != nil {
		return err
	}

	monthlyCSV := reporting.RenderMonthlyCSV(report.Performance)
	if err := os.WriteFile(filepath.Join(outputDir, "MONTHLY_PNL.csv"), []byte(monthlyCSV), 0644); err != nil {
		return err
	}
	observability.RecordReportRendered("csv")

	return nil
}
