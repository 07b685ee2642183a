// README: Trip record consumed by the encoder and assembler, with field validation.
package features

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	ColTripDistance = "trip_distance"
	ColTripDuration = "trip_duration"
	ColTripHours    = "trip_hours"
	ColIsTolls      = "is_tolls"
	ColDayName      = "day_name"
)

// NumericColumns are passed through unchanged, in this order, ahead of the
// one-hot day columns.
var NumericColumns = []string{ColTripDistance, ColTripDuration, ColTripHours, ColIsTolls}

var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// TripRecord is one ride's descriptive attributes used as prediction input.
type TripRecord struct {
	TripDistance float64 `json:"trip_distance" validate:"gt=0"`
	TripDuration float64 `json:"trip_duration" validate:"gt=0"`
	TripHours    int     `json:"trip_hours" validate:"gte=0,lte=23"`
	DayName      string  `json:"day_name"`
	IsTolls      int     `json:"is_tolls" validate:"oneof=0 1"`
}

func (r TripRecord) numeric() map[string]float64 {
	return map[string]float64{
		ColTripDistance: r.TripDistance,
		ColTripDuration: r.TripDuration,
		ColTripHours:    float64(r.TripHours),
		ColIsTolls:      float64(r.IsTolls),
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks value ranges. Unknown day names are allowed; they encode
// to an all-zero vector.
func (r TripRecord) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &SchemaMismatchError{Field: fe.Field(), Reason: describe(fe)}
	}
	return &SchemaMismatchError{Reason: err.Error()}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
