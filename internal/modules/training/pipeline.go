// README: Training pipeline: split, fit encoder on the train split, assemble, boost, score.
package training

import (
	"cmp"
	"fmt"
	"log"
	"slices"

	"nyctaxi/internal/modules/boost"
	"nyctaxi/internal/modules/features"
	"nyctaxi/internal/modules/prediction"
	"nyctaxi/internal/modules/trips"
)

type Config struct {
	TestSize float64
	Seed     int64
	Boost    boost.Params
}

func DefaultConfig() Config {
	return Config{TestSize: 0.2, Seed: 42, Boost: boost.DefaultParams()}
}

type Importance struct {
	Feature string  `json:"feature"`
	Score   float64 `json:"score"`
}

type Result struct {
	Model       *boost.Model
	Encoder     *features.OneHotEncoder
	Train       Metrics
	Test        Metrics
	TrainRows   int
	TestRows    int
	Importances []Importance
}

// Run trains a fare model on rows. Both splits are assembled with the same
// explicit column order, which is stored on the model for serving.
func Run(rows []trips.Trip, cfg Config) (*Result, error) {
	train, test, err := TrainTestSplit(rows, cfg.TestSize, cfg.Seed)
	if err != nil {
		return nil, err
	}

	days := make([]string, len(train))
	for i, t := range train {
		days[i] = t.DayName
	}
	enc, err := features.FitOneHotEncoder(features.ColDayName, days)
	if err != nil {
		return nil, fmt.Errorf("fit encoder: %w", err)
	}
	order := features.DefaultOrder(enc)

	xTrain, yTrain, err := design(train, enc, order)
	if err != nil {
		return nil, fmt.Errorf("assemble train split: %w", err)
	}
	xTest, yTest, err := design(test, enc, order)
	if err != nil {
		return nil, fmt.Errorf("assemble test split: %w", err)
	}

	log.Printf("training: %d train rows, %d test rows, %d features", len(xTrain), len(xTest), len(order))
	model, err := boost.Train(xTrain, yTrain, order, cfg.Boost)
	if err != nil {
		return nil, err
	}

	predTrain, err := model.PredictBatch(xTrain)
	if err != nil {
		return nil, err
	}
	predTest, err := model.PredictBatch(xTest)
	if err != nil {
		return nil, err
	}
	res := &Result{
		Model:     model,
		Encoder:   enc,
		Train:     Evaluate(predTrain, yTrain),
		Test:      Evaluate(predTest, yTest),
		TrainRows: len(xTrain),
		TestRows:  len(xTest),
	}
	model.Metrics = map[string]float64{
		"train_r2": res.Train.R2,
		"test_r2":  res.Test.R2,
		"mae":      res.Test.MAE,
		"mse":      res.Test.MSE,
	}
	for name, score := range model.Importances {
		res.Importances = append(res.Importances, Importance{Feature: name, Score: score})
	}
	slices.SortFunc(res.Importances, func(a, b Importance) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Feature, b.Feature)
	})
	return res, nil
}

func design(rows []trips.Trip, enc *features.OneHotEncoder, order []string) ([][]float64, []float64, error) {
	recs := make([]features.TripRecord, len(rows))
	y := make([]float64, len(rows))
	for i, t := range rows {
		recs[i] = t.Record()
		y[i] = t.TotalAmount
	}
	x, err := features.AssembleBatch(recs, enc, order)
	if err != nil {
		return nil, nil, err
	}
	return x, y, nil
}

// Save writes the model and encoder artifacts into dir.
func (r *Result) Save(dir string) error {
	return prediction.SaveArtifacts(dir, r.Model, r.Encoder)
}
