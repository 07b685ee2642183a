package maps

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"googlemaps.github.io/maps"
)

type fakeDirections struct {
	routes []maps.Route
	err    error
	got    *maps.DirectionsRequest
}

func (f *fakeDirections) Directions(_ context.Context, r *maps.DirectionsRequest) ([]maps.Route, []maps.GeocodedWaypoint, error) {
	f.got = r
	return f.routes, nil, f.err
}

func leg(meters int, d, traffic time.Duration) maps.Route {
	return maps.Route{Legs: []*maps.Leg{{
		Distance:          maps.Distance{Meters: meters},
		Duration:          d,
		DurationInTraffic: traffic,
		StartAddress:      "Penn Station",
		EndAddress:        "JFK",
	}}}
}

func TestEstimate(t *testing.T) {
	tests := []struct {
		name        string
		route       maps.Route
		wantMiles   float64
		wantMinutes float64
	}{
		{name: "no traffic data", route: leg(4023, 15*time.Minute, 0), wantMiles: 2.5, wantMinutes: 15},
		{name: "traffic duration wins", route: leg(16093, 20*time.Minute, 27*time.Minute), wantMiles: 10, wantMinutes: 27},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeDirections{routes: []maps.Route{tt.route}}
			svc := &RouteService{client: fake}
			got, err := svc.Estimate(context.Background(), "a", "b", time.Time{})
			if err != nil {
				t.Fatalf("Estimate: %v", err)
			}
			if math.Abs(got.DistanceMiles-tt.wantMiles) > 0.01 {
				t.Errorf("miles = %v, want %v", got.DistanceMiles, tt.wantMiles)
			}
			if got.DurationMinutes != tt.wantMinutes {
				t.Errorf("minutes = %v, want %v", got.DurationMinutes, tt.wantMinutes)
			}
			if fake.got.DepartureTime != "now" || fake.got.Mode != maps.TravelModeDriving {
				t.Errorf("request = %+v", fake.got)
			}
		})
	}
}

func TestEstimate_Errors(t *testing.T) {
	svc := &RouteService{client: &fakeDirections{}}
	if _, err := svc.Estimate(context.Background(), "a", "b", time.Time{}); !errors.Is(err, ErrNoRoute) {
		t.Errorf("err = %v, want ErrNoRoute", err)
	}
	boom := errors.New("quota")
	svc = &RouteService{client: &fakeDirections{err: boom}}
	if _, err := svc.Estimate(context.Background(), "a", "b", time.Time{}); !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped api error", err)
	}
}

func TestEstimate_ClassifiesStatusErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "unknown place", err: errors.New("maps: NOT_FOUND - "), want: ErrPlaceNotFound},
		{name: "no results", err: errors.New("maps: ZERO_RESULTS - "), want: ErrNoRoute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &RouteService{client: &fakeDirections{err: tt.err}}
			_, err := svc.Estimate(context.Background(), "nowhere", "b", time.Time{})
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDepartureParam(t *testing.T) {
	future := time.Now().Add(time.Hour)
	if got := departureParam(future); got == "now" {
		t.Errorf("future departure should be a unix timestamp")
	}
	if got := departureParam(time.Now().Add(-time.Hour)); got != "now" {
		t.Errorf("past departure = %q, want now", got)
	}
}
