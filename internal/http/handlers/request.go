// README: Request payload decoding; turns loose JSON into typed trip records.
package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"nyctaxi/internal/modules/features"
)

// tripRequest uses pointers so absent fields can be told apart from zeros.
type tripRequest struct {
	TripDistance *float64  `json:"trip_distance"`
	TripDuration *float64  `json:"trip_duration"`
	TripHours    *int      `json:"trip_hours"`
	DayName      *string   `json:"day_name"`
	IsTolls      *tollFlag `json:"is_tolls"`
}

// tollFlag accepts 0, 1, true or false.
type tollFlag int

func (f *tollFlag) UnmarshalJSON(b []byte) error {
	switch string(bytes.TrimSpace(b)) {
	case "0", "false":
		*f = 0
	case "1", "true":
		*f = 1
	default:
		return &features.SchemaMismatchError{Field: features.ColIsTolls, Reason: "must be 0 or 1"}
	}
	return nil
}

func (r tripRequest) record() (features.TripRecord, error) {
	var rec features.TripRecord
	switch {
	case r.TripDistance == nil:
		return rec, features.MissingField(features.ColTripDistance)
	case r.TripDuration == nil:
		return rec, features.MissingField(features.ColTripDuration)
	case r.TripHours == nil:
		return rec, features.MissingField(features.ColTripHours)
	case r.DayName == nil:
		return rec, features.MissingField(features.ColDayName)
	case r.IsTolls == nil:
		return rec, features.MissingField(features.ColIsTolls)
	}
	rec.TripDistance = *r.TripDistance
	rec.TripDuration = *r.TripDuration
	rec.TripHours = *r.TripHours
	rec.DayName = *r.DayName
	rec.IsTolls = int(*r.IsTolls)
	return rec, nil
}

// decodeBody decodes a single JSON object into v. Type errors become schema
// mismatches naming the offending field.
func decodeBody(body io.Reader, v any) error {
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		var sm *features.SchemaMismatchError
		var te *json.UnmarshalTypeError
		switch {
		case errors.As(err, &sm):
			return sm
		case errors.As(err, &te):
			return &features.SchemaMismatchError{Field: te.Field, Reason: "must be " + jsonKind(te.Type.Kind().String())}
		case errors.Is(err, io.EOF):
			return &features.SchemaMismatchError{Reason: "request body is empty"}
		default:
			return &features.SchemaMismatchError{Reason: "invalid json"}
		}
	}
	return nil
}

// jsonKind names a Go kind the way a JSON client would, with its article.
func jsonKind(goKind string) string {
	switch goKind {
	case "float64", "float32":
		return "a number"
	case "int", "int64", "int32":
		return "an integer"
	case "string":
		return "a string"
	case "bool":
		return "a boolean"
	case "slice":
		return "a list"
	case "struct", "map":
		return "an object"
	default:
		return fmt.Sprintf("of type %s", goKind)
	}
}
