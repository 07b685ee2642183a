// README: ETL transforms: derive trip features, drop outliers, add synthetic short trips, shuffle and round.
package trips

import (
	"math"
	"math/rand"

	"nyctaxi/internal/modules/features"
)

const (
	MaxDurationMinutes = 110.0
	MaxDistance        = 34.0
)

// Clean derives duration, pickup hour, weekday and toll flag from raw rows
// and drops rows with negative or over-long durations and over-long
// distances.
func Clean(raw []RawTrip) []Trip {
	out := make([]Trip, 0, len(raw))
	for _, r := range raw {
		duration := round(r.DropoffAt.Sub(r.PickupAt).Minutes(), 3)
		if duration < 0 || duration > MaxDurationMinutes {
			continue
		}
		if r.TripDistance > MaxDistance {
			continue
		}
		tolls := 0
		if r.TollsAmount > 0 {
			tolls = 1
		}
		out = append(out, Trip{
			TripDistance: r.TripDistance,
			TripDuration: duration,
			TripHours:    r.PickupAt.Hour(),
			DayName:      r.PickupAt.Weekday().String(),
			IsTolls:      tolls,
			TotalAmount:  r.TotalAmount,
		})
	}
	return out
}

// ShortTripFare is the fare formula used for synthetic short trips.
func ShortTripFare(distance, duration float64) float64 {
	return 3.0 + distance*1.5 + duration*0.5
}

// Augment generates n toll-free short trips, which are scarce in the
// warehouse sample.
func Augment(rng *rand.Rand, n int) []Trip {
	out := make([]Trip, n)
	for i := range out {
		distance := 0.5 + rng.Float64()*2.5
		duration := 3 + rng.Float64()*12
		out[i] = Trip{
			TripDistance: distance,
			TripDuration: duration,
			TripHours:    rng.Intn(24),
			DayName:      features.Weekdays[rng.Intn(len(features.Weekdays))],
			IsTolls:      0,
			TotalAmount:  ShortTripFare(distance, duration),
		}
	}
	return out
}

type PrepareOptions struct {
	AugmentRows int
	Seed        int64
}

// Prepare runs the full transform: clean, augment, shuffle, round distance,
// duration and total to cents precision.
func Prepare(raw []RawTrip, opts PrepareOptions) []Trip {
	rng := rand.New(rand.NewSource(opts.Seed))
	out := Clean(raw)
	out = append(out, Augment(rng, opts.AugmentRows)...)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	for i := range out {
		out[i].TripDistance = round(out[i].TripDistance, 2)
		out[i].TripDuration = round(out[i].TripDuration, 2)
		out[i].TotalAmount = round(out[i].TotalAmount, 2)
	}
	return out
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
