// README: Trip rows as pulled from the warehouse (RawTrip) and as stored for training (Trip).
package trips

import (
	"time"

	"nyctaxi/internal/modules/features"
)

// RawTrip is one row of the yellow-cab trips query.
type RawTrip struct {
	PickupAt           time.Time
	DropoffAt          time.Time
	TripDistance       float64
	FareAmount         float64
	TipAmount          float64
	TollsAmount        float64
	SurchargesAndTaxes float64
	TotalAmount        float64
}

// Trip is one cleaned row of taxi_table; TotalAmount is the training target.
type Trip struct {
	TripDistance float64
	TripDuration float64
	TripHours    int
	DayName      string
	IsTolls      int
	TotalAmount  float64
}

func (t Trip) Record() features.TripRecord {
	return features.TripRecord{
		TripDistance: t.TripDistance,
		TripDuration: t.TripDuration,
		TripHours:    t.TripHours,
		DayName:      t.DayName,
		IsTolls:      t.IsTolls,
	}
}
