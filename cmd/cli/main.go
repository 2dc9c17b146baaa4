package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"cloud.google.com/go/bigquery"
	gcs "cloud.google.com/go/storage"
	"github.com/rs/zerolog"

	"github.com/dvloznov/resale-ledger/internal/bqexport"
	"github.com/dvloznov/resale-ledger/internal/config"
	"github.com/dvloznov/resale-ledger/internal/domain"
	"github.com/dvloznov/resale-ledger/internal/ledger"
	"github.com/dvloznov/resale-ledger/internal/logger"
	"github.com/dvloznov/resale-ledger/internal/storage"
	"github.com/dvloznov/resale-ledger/internal/xlsxcodec"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "list":
		runList(log)
	case "init":
		runInit(log)
	case "export":
		runExport(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Resale Ledger CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  list      Print the ledger table")
	fmt.Println("  init      Create an empty ledger workbook if none exists")
	fmt.Println("  export    Mirror the ledger into BigQuery")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func newLedger(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*ledger.Ledger, func(), error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("create storage client: %w", err)
	}
	store := storage.NewGCS(client, cfg.GCSBucket, cfg.GCSObject)
	return ledger.New(store, xlsxcodec.New(), log), func() { client.Close() }, nil
}

func loadConfig(log zerolog.Logger) *config.Config {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if cfg.GCSBucket == "" {
		log.Fatal().Msg("GCS_BUCKET is required")
	}
	return cfg
}

func runList(log zerolog.Logger) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	unsoldOnly := fs.Bool("unsold", false, "show only unsold records")
	fs.Parse(os.Args[2:])

	cfg := loadConfig(log)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	led, closeStore, err := newLedger(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open ledger")
	}
	defer closeStore()

	table, err := led.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load ledger")
	}
	if *unsoldOnly {
		table = table.Unsold()
	}

	printTable(table)
}

func printTable(table domain.Table) {
	if len(table) == 0 {
		fmt.Println("Ledger is empty.")
		return
	}

	fmt.Printf("%-6s %-16s %-12s %-8s %-14s %-13s %-10s %-10s\n",
		"Index", "Serial Number", "Model", "Storage", "Purchase Price", "Sell Price", "Purchased", "Sold")
	for _, rec := range table {
		sellPrice, sellDate := rec.SellPrice, rec.SellDate
		if !rec.Sold() {
			sellPrice, sellDate = "-", "-"
		}
		fmt.Printf("%-6d %-16s %-12s %-8s %-14s %-13s %-10s %-10s\n",
			rec.Index, rec.SerialNumber, rec.Model, rec.Storage, rec.PurchasePrice, sellPrice, rec.PurchaseDate, sellDate)
	}
	fmt.Printf("\n%d records, %d unsold\n", len(table), len(table.Unsold()))
}

func runInit(log zerolog.Logger) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	fs.Parse(os.Args[2:])

	cfg := loadConfig(log)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	led, closeStore, err := newLedger(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open ledger")
	}
	defer closeStore()

	table, err := led.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load ledger")
	}
	if len(table) > 0 {
		fmt.Printf("Ledger already exists with %d records, leaving it alone.\n", len(table))
		return
	}

	if err := led.Save(ctx, domain.Table{}); err != nil {
		log.Fatal().Err(err).Msg("Failed to write empty ledger")
	}
	fmt.Printf("Created empty ledger at gs://%s/%s\n", cfg.GCSBucket, cfg.GCSObject)
}

func runExport(log zerolog.Logger) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	fs.Parse(os.Args[2:])

	cfg := loadConfig(log)
	if err := cfg.ValidateExport(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	led, closeStore, err := newLedger(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open ledger")
	}
	defer closeStore()

	table, err := led.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load ledger")
	}

	bqClient, err := bigquery.NewClient(ctx, cfg.BQProjectID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create BigQuery client")
	}
	defer bqClient.Close()

	exporter := bqexport.NewExporter(bqClient, cfg.BQProjectID, cfg.BQDataset)
	exportID, err := exporter.Export(ctx, table)
	if err != nil {
		log.Fatal().Err(err).Msg("Export failed")
	}

	fmt.Printf("Exported %d records (export id %s)\n", len(table), exportID)
}
