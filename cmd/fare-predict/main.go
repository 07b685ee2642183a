// README: Manual prediction CLI; loads artifacts and prints the fare for one trip given on the command line.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"nyctaxi/internal/config"
	"nyctaxi/internal/modules/features"
	"nyctaxi/internal/modules/prediction"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	var rec features.TripRecord
	dir := flag.String("models", cfg.Model.Dir, "artifact directory")
	flag.Float64Var(&rec.TripDistance, "distance", 2.5, "trip distance in miles")
	flag.Float64Var(&rec.TripDuration, "duration", 15, "trip duration in minutes")
	flag.IntVar(&rec.TripHours, "hour", 14, "pickup hour (0-23)")
	flag.StringVar(&rec.DayName, "day", "Monday", "pickup weekday")
	flag.IntVar(&rec.IsTolls, "tolls", 0, "1 if the trip pays tolls")
	flag.Parse()

	artifacts, err := prediction.LoadArtifacts(*dir)
	if err != nil {
		log.Fatal(err)
	}
	res, err := prediction.NewService(artifacts, nil).Predict(context.Background(), rec)
	if err != nil {
		log.Fatal(err)
	}

	row, err := features.Assemble(rec, artifacts.Encoder, artifacts.Model.FeatureNames)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("model %s\n", res.ModelVersion)
	for i, name := range artifacts.Model.FeatureNames {
		fmt.Printf("  %-20s %g\n", name, row[i])
	}
	fmt.Printf("estimated fare: $%.2f %s\n", res.Fare.Float(), res.Fare.Currency)
}
