// README: Prediction service; holds the loaded artifacts behind an atomic pointer and turns trip records into fares.
package prediction

import (
	"context"
	"errors"
	"fmt"
	"log"
	"maps"
	"math"
	"slices"
	"sync/atomic"
	"time"

	"nyctaxi/internal/modules/boost"
	"nyctaxi/internal/modules/features"
	"nyctaxi/internal/types"
)

type Result struct {
	Fare         types.Money
	ModelVersion string
	Cached       bool
}

type BatchItem struct {
	Result Result
	Err    error
}

// Info describes the currently served model. Slices and maps are copies.
type Info struct {
	Ready        bool
	ModelVersion string
	LoadedAt     time.Time
	FeatureOrder []string
	Metrics      map[string]float64
	Importances  map[string]float64
}

type Service struct {
	artifacts atomic.Pointer[Artifacts]
	cache     Cache
}

// NewService builds the service context. A nil artifacts value starts the
// service in unavailable mode; cache may be nil.
func NewService(a *Artifacts, cache Cache) *Service {
	s := &Service{cache: cache}
	if a != nil {
		s.artifacts.Store(a)
	}
	return s
}

func (s *Service) Ready() bool {
	return s.artifacts.Load() != nil
}

func (s *Service) Info() Info {
	a := s.artifacts.Load()
	if a == nil {
		return Info{}
	}
	return Info{
		Ready:        true,
		ModelVersion: a.Version,
		LoadedAt:     a.LoadedAt,
		FeatureOrder: slices.Clone(a.Model.FeatureNames),
		Metrics:      maps.Clone(a.Model.Metrics),
		Importances:  maps.Clone(a.Model.Importances),
	}
}

// Reload loads artifacts from dir and swaps them in. On failure the
// previously loaded artifacts stay in place.
func (s *Service) Reload(dir string) error {
	a, err := LoadArtifacts(dir)
	if err != nil {
		return err
	}
	prev := s.artifacts.Swap(a)
	if prev != nil {
		log.Printf("model reloaded: %s -> %s", prev.Version, a.Version)
	} else {
		log.Printf("model loaded: %s", a.Version)
	}
	return nil
}

func (s *Service) Predict(ctx context.Context, rec features.TripRecord) (Result, error) {
	a := s.artifacts.Load()
	if a == nil {
		return Result{}, ErrUnavailable
	}
	return s.predictWith(ctx, a, rec)
}

// PredictBatch predicts every record against the same artifacts snapshot.
// A failing record only fails its own item.
func (s *Service) PredictBatch(ctx context.Context, recs []features.TripRecord) ([]BatchItem, error) {
	a := s.artifacts.Load()
	if a == nil {
		return nil, ErrUnavailable
	}
	items := make([]BatchItem, len(recs))
	for i, rec := range recs {
		res, err := s.predictWith(ctx, a, rec)
		items[i] = BatchItem{Result: res, Err: err}
	}
	return items, nil
}

func (s *Service) predictWith(ctx context.Context, a *Artifacts, rec features.TripRecord) (Result, error) {
	if err := rec.Validate(); err != nil {
		return Result{}, err
	}
	row, err := features.Assemble(rec, a.Encoder, a.Model.FeatureNames)
	if err != nil {
		return Result{}, err
	}

	key := cacheKey(a.Version, row)
	if s.cache != nil {
		fare, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			log.Printf("prediction cache get: %v", err)
		} else if ok {
			return Result{Fare: fare, ModelVersion: a.Version, Cached: true}, nil
		}
	}

	raw, err := infer(a.Model, row)
	if err != nil {
		return Result{}, err
	}
	fare := types.FromFloat(math.Max(raw, 0), types.USD)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, fare); err != nil {
			log.Printf("prediction cache set: %v", err)
		}
	}
	return Result{Fare: fare, ModelVersion: a.Version}, nil
}

func infer(m *boost.Model, row []float64) (v float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PredictionError{Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	v, err = m.Predict(row)
	if err != nil {
		return 0, &PredictionError{Err: err}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &PredictionError{Err: errors.New("model returned a non-finite value")}
	}
	return v, nil
}
