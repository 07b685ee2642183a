// README: Feature assembler; turns a TripRecord into the model's ordered feature vector, aligned by column name.
package features

import (
	"fmt"
	"slices"
)

// DefaultOrder is the column order used when a model is trained: numeric
// columns followed by the encoder's one-hot columns.
func DefaultOrder(enc *OneHotEncoder) []string {
	order := slices.Clone(NumericColumns)
	return append(order, enc.FeatureNames()...)
}

func columns(rec TripRecord, enc *OneHotEncoder) map[string]float64 {
	cols := rec.numeric()
	names := enc.FeatureNames()
	for i, v := range enc.Transform(rec.DayName) {
		cols[names[i]] = v
	}
	return cols
}

// Assemble builds the feature vector for rec, selecting columns by name in
// the given order. An empty order falls back to DefaultOrder.
func Assemble(rec TripRecord, enc *OneHotEncoder, order []string) ([]float64, error) {
	if enc == nil {
		return nil, ErrNoEncoder
	}
	if len(order) == 0 {
		order = DefaultOrder(enc)
	}
	cols := columns(rec, enc)
	row := make([]float64, len(order))
	for i, name := range order {
		v, ok := cols[name]
		if !ok {
			return nil, &SchemaMismatchError{Field: name, Reason: "is not produced by the trip record or encoder"}
		}
		row[i] = v
	}
	return row, nil
}

// AssembleBatch assembles each record independently.
func AssembleBatch(recs []TripRecord, enc *OneHotEncoder, order []string) ([][]float64, error) {
	rows := make([][]float64, len(recs))
	for i, rec := range recs {
		row, err := Assemble(rec, enc, order)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		rows[i] = row
	}
	return rows, nil
}

// CheckColumns verifies that order names exactly the columns the record and
// encoder produce, each once.
func CheckColumns(order []string, enc *OneHotEncoder) error {
	if enc == nil {
		return ErrNoEncoder
	}
	produced := make(map[string]bool)
	for _, name := range DefaultOrder(enc) {
		produced[name] = false
	}
	for _, name := range order {
		used, ok := produced[name]
		if !ok {
			return &SchemaMismatchError{Field: name, Reason: "is expected by the model but not produced by the encoder"}
		}
		if used {
			return &SchemaMismatchError{Field: name, Reason: "appears more than once in the model's feature order"}
		}
		produced[name] = true
	}
	for _, name := range DefaultOrder(enc) {
		if !produced[name] {
			return &SchemaMismatchError{Field: name, Reason: "is produced by the encoder but unknown to the model"}
		}
	}
	return nil
}
