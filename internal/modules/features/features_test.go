package features

import (
	"errors"
	"path/filepath"
	"slices"
	"testing"
)

func weekdayEncoder(t *testing.T) *OneHotEncoder {
	t.Helper()
	enc, err := FitOneHotEncoder(ColDayName, Weekdays)
	if err != nil {
		t.Fatalf("fit encoder: %v", err)
	}
	return enc
}

func TestOneHotEncoder_KnownWeekdays(t *testing.T) {
	enc := weekdayEncoder(t)
	if enc.Len() != 7 {
		t.Fatalf("expected 7 categories, got %d", enc.Len())
	}
	for _, day := range Weekdays {
		t.Run(day, func(t *testing.T) {
			v := enc.Transform(day)
			pos := slices.Index(enc.Categories(), day)
			ones := 0
			for i, x := range v {
				switch x {
				case 1:
					ones++
					if i != pos {
						t.Errorf("1 at position %d, want %d", i, pos)
					}
				case 0:
				default:
					t.Errorf("unexpected value %v at %d", x, i)
				}
			}
			if ones != 1 {
				t.Errorf("expected exactly one 1, got %d", ones)
			}
			if !slices.Equal(v, enc.Transform(day)) {
				t.Errorf("encoding not deterministic for %s", day)
			}
		})
	}
}

func TestOneHotEncoder_UnknownDayIsZeroVector(t *testing.T) {
	enc := weekdayEncoder(t)
	for _, day := range []string{"Funday", "", "monday"} {
		v := enc.Transform(day)
		if len(v) != 7 {
			t.Fatalf("expected length 7, got %d", len(v))
		}
		for i, x := range v {
			if x != 0 {
				t.Errorf("%q: expected zero at %d, got %v", day, i, x)
			}
		}
	}
}

func TestOneHotEncoder_SortedFeatureNames(t *testing.T) {
	enc, err := FitOneHotEncoder(ColDayName, []string{"Sunday", "Monday", "Friday", "Monday"})
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	want := []string{"day_name_Friday", "day_name_Monday", "day_name_Sunday"}
	if got := enc.FeatureNames(); !slices.Equal(got, want) {
		t.Errorf("FeatureNames() = %v, want %v", got, want)
	}
}

func TestOneHotEncoder_FitEmpty(t *testing.T) {
	if _, err := FitOneHotEncoder(ColDayName, nil); err == nil {
		t.Fatal("expected error fitting on empty input")
	}
}

func TestOneHotEncoder_SaveLoad(t *testing.T) {
	enc := weekdayEncoder(t)
	path := filepath.Join(t.TempDir(), "nested", "encoder.json")
	if err := enc.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := LoadOneHotEncoder(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !slices.Equal(loaded.FeatureNames(), enc.FeatureNames()) {
		t.Errorf("loaded names %v, want %v", loaded.FeatureNames(), enc.FeatureNames())
	}
	if !slices.Equal(loaded.Transform("Wednesday"), enc.Transform("Wednesday")) {
		t.Error("loaded encoder transforms differently")
	}
}

func TestAssemble_MondayScenario(t *testing.T) {
	enc := weekdayEncoder(t)
	rec := TripRecord{TripDistance: 2.5, TripDuration: 15, TripHours: 14, DayName: "Monday", IsTolls: 0}
	got, err := Assemble(rec, enc, DefaultOrder(enc))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	want := []float64{2.5, 15, 14, 0, 0, 1, 0, 0, 0, 0, 0}
	if !slices.Equal(got, want) {
		t.Errorf("Assemble() = %v, want %v", got, want)
	}
}

func TestAssemble_ReordersByName(t *testing.T) {
	enc := weekdayEncoder(t)
	order := DefaultOrder(enc)
	slices.Reverse(order)
	rec := TripRecord{TripDistance: 3.2, TripDuration: 20, TripHours: 9, DayName: "Friday", IsTolls: 1}

	got, err := Assemble(rec, enc, order)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	cols := columns(rec, enc)
	for i, name := range order {
		if got[i] != cols[name] {
			t.Errorf("column %s at %d = %v, want %v", name, i, got[i], cols[name])
		}
	}
	if got[len(got)-1] != 3.2 {
		t.Errorf("expected trip_distance last, got %v", got[len(got)-1])
	}
}

func TestAssemble_EmptyOrderUsesDefault(t *testing.T) {
	enc := weekdayEncoder(t)
	rec := TripRecord{TripDistance: 1, TripDuration: 2, TripHours: 3, DayName: "Sunday", IsTolls: 1}
	a, err := Assemble(rec, enc, nil)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	b, _ := Assemble(rec, enc, DefaultOrder(enc))
	if !slices.Equal(a, b) {
		t.Errorf("nil order %v differs from default %v", a, b)
	}
}

func TestAssemble_UnknownColumn(t *testing.T) {
	enc := weekdayEncoder(t)
	order := append(DefaultOrder(enc), "passenger_count")
	_, err := Assemble(TripRecord{TripDistance: 1, TripDuration: 1, DayName: "Monday"}, enc, order)
	var sm *SchemaMismatchError
	if !errors.As(err, &sm) {
		t.Fatalf("expected SchemaMismatchError, got %v", err)
	}
	if sm.Field != "passenger_count" {
		t.Errorf("Field = %q, want passenger_count", sm.Field)
	}
}

func TestAssemble_NilEncoder(t *testing.T) {
	if _, err := Assemble(TripRecord{}, nil, nil); !errors.Is(err, ErrNoEncoder) {
		t.Fatalf("expected ErrNoEncoder, got %v", err)
	}
}

func TestAssembleBatch_RowsIndependent(t *testing.T) {
	enc := weekdayEncoder(t)
	recs := []TripRecord{
		{TripDistance: 1, TripDuration: 5, TripHours: 1, DayName: "Monday"},
		{TripDistance: 2, TripDuration: 6, TripHours: 2, DayName: "Nope"},
		{TripDistance: 1, TripDuration: 5, TripHours: 1, DayName: "Monday"},
	}
	rows, err := AssembleBatch(recs, enc, nil)
	if err != nil {
		t.Fatalf("AssembleBatch: %v", err)
	}
	if !slices.Equal(rows[0], rows[2]) {
		t.Errorf("identical records assembled differently: %v vs %v", rows[0], rows[2])
	}
	single, _ := Assemble(recs[1], enc, nil)
	if !slices.Equal(rows[1], single) {
		t.Errorf("batch row %v differs from single %v", rows[1], single)
	}
}

func TestCheckColumns(t *testing.T) {
	enc := weekdayEncoder(t)
	full := DefaultOrder(enc)

	tests := []struct {
		name    string
		order   []string
		wantErr bool
	}{
		{name: "default order", order: full},
		{name: "permuted", order: append(slices.Clone(full[4:]), full[:4]...)},
		{name: "missing column", order: full[:len(full)-1], wantErr: true},
		{name: "extra column", order: append(slices.Clone(full), "x"), wantErr: true},
		{name: "duplicate column", order: append(slices.Clone(full[:len(full)-1]), full[0]), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckColumns(tt.order, enc)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckColumns() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !IsSchemaMismatch(err) {
				t.Errorf("expected SchemaMismatchError, got %T", err)
			}
		})
	}
}

func TestTripRecord_Validate(t *testing.T) {
	valid := TripRecord{TripDistance: 2.5, TripDuration: 15, TripHours: 14, DayName: "Monday"}

	tests := []struct {
		name      string
		mutate    func(*TripRecord)
		wantField string
	}{
		{name: "valid", mutate: func(*TripRecord) {}},
		{name: "unknown day is allowed", mutate: func(r *TripRecord) { r.DayName = "Someday" }},
		{name: "zero distance", mutate: func(r *TripRecord) { r.TripDistance = 0 }, wantField: ColTripDistance},
		{name: "negative duration", mutate: func(r *TripRecord) { r.TripDuration = -1 }, wantField: ColTripDuration},
		{name: "hour too large", mutate: func(r *TripRecord) { r.TripHours = 24 }, wantField: ColTripHours},
		{name: "negative hour", mutate: func(r *TripRecord) { r.TripHours = -1 }, wantField: ColTripHours},
		{name: "tolls flag out of range", mutate: func(r *TripRecord) { r.IsTolls = 2 }, wantField: ColIsTolls},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := valid
			tt.mutate(&rec)
			err := rec.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var sm *SchemaMismatchError
			if !errors.As(err, &sm) {
				t.Fatalf("expected SchemaMismatchError, got %v", err)
			}
			if sm.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", sm.Field, tt.wantField)
			}
		})
	}
}
