// README: Training entry point; reads taxi_table, fits encoder and booster, writes artifacts to the model dir.
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
	"nyctaxi/internal/modules/training"
	"nyctaxi/internal/modules/trips"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	tc := training.DefaultConfig()
	tc.TestSize = cfg.Training.TestSize
	tc.Seed = cfg.Training.Seed
	flag.IntVar(&tc.Boost.Rounds, "rounds", tc.Boost.Rounds, "boosting rounds")
	flag.Float64Var(&tc.Boost.LearningRate, "eta", tc.Boost.LearningRate, "learning rate")
	flag.IntVar(&tc.Boost.MaxDepth, "max-depth", tc.Boost.MaxDepth, "maximum tree depth")
	flag.Float64Var(&tc.Boost.Lambda, "lambda", tc.Boost.Lambda, "L2 regularization on leaf weights")
	flag.Float64Var(&tc.Boost.Gamma, "gamma", tc.Boost.Gamma, "minimum split gain")
	flag.Float64Var(&tc.Boost.MinChildWeight, "min-child-weight", tc.Boost.MinChildWeight, "minimum hessian sum per child")
	out := flag.String("out", cfg.Model.Dir, "artifact output directory")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	rows, err := trips.NewStore(db).LoadAll(ctx)
	if err != nil {
		log.Fatalf("load taxi_table: %v", err)
	}
	log.Printf("loaded %d trips", len(rows))

	res, err := training.Run(rows, tc)
	if err != nil {
		log.Fatalf("train: %v", err)
	}
	log.Printf("train R2 %.4f | test R2 %.4f | MAE %.4f | MSE %.4f", res.Train.R2, res.Test.R2, res.Test.MAE, res.Test.MSE)
	for _, imp := range res.Importances {
		log.Printf("  %-20s %.4f", imp.Feature, imp.Score)
	}

	if err := res.Save(*out); err != nil {
		log.Fatalf("save artifacts: %v", err)
	}
	log.Printf("artifacts written to %s", *out)
}
