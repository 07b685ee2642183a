// README: ETL entry point; pulls yellow-cab trips from BigQuery, prepares them and replaces taxi_table.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"nyctaxi/internal/config"
	"nyctaxi/internal/infra"
	"nyctaxi/internal/modules/trips"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	dryRun := flag.Bool("dry-run", false, "fetch and prepare only; do not write to Postgres")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bq, err := infra.NewBigQuery(ctx, cfg.BigQuery.CredentialsFile)
	if err != nil {
		log.Fatal(err)
	}
	source := trips.NewBigQuerySource(bq, cfg.BigQuery.Project, cfg.BigQuery.Location, cfg.BigQuery.BucketLimit)

	raw, err := source.Fetch(ctx)
	if err != nil {
		log.Fatalf("extract: %v", err)
	}
	prepared := trips.Prepare(raw, trips.PrepareOptions{
		AugmentRows: cfg.Training.AugmentRows,
		Seed:        cfg.Training.Seed,
	})
	log.Printf("prepared %d trips (%d fetched, %d synthetic)", len(prepared), len(raw), cfg.Training.AugmentRows)

	if *dryRun {
		return
	}

	db, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	n, err := trips.NewStore(db).ReplaceAll(ctx, prepared)
	if err != nil {
		log.Fatalf("load: %v", err)
	}
	log.Printf("wrote %d rows to taxi_table", n)
}
