// README: Google Maps Directions lookup used to turn an origin/destination pair into trip distance and duration.
package maps

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"googlemaps.github.io/maps"
)

const metersPerMile = 1609.344

var (
	ErrNoRoute = errors.New("maps: no route found")
	// ErrPlaceNotFound means the origin or destination could not be geocoded.
	ErrPlaceNotFound = errors.New("maps: origin or destination not found")
)

// RouteEstimate is the driving distance and expected duration for one trip.
type RouteEstimate struct {
	DistanceMiles   float64
	DurationMinutes float64
	StartAddress    string
	EndAddress      string
}

type directionsClient interface {
	Directions(ctx context.Context, r *maps.DirectionsRequest) ([]maps.Route, []maps.GeocodedWaypoint, error)
}

// RouteService handles interactions with Google Maps API.
type RouteService struct {
	client directionsClient
}

// NewRouteService creates a new RouteService with the given API Key.
func NewRouteService(apiKey string) (*RouteService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &RouteService{client: client}, nil
}

// Estimate asks for a driving route departing at departure (zero means now).
// The traffic-aware duration is preferred when the API returns one.
func (s *RouteService) Estimate(ctx context.Context, origin, destination string, departure time.Time) (RouteEstimate, error) {
	r := &maps.DirectionsRequest{
		Origin:        origin,
		Destination:   destination,
		Mode:          maps.TravelModeDriving,
		Units:         maps.UnitsImperial,
		Region:        "us",
		DepartureTime: departureParam(departure),
	}

	routes, _, err := s.client.Directions(ctx, r)
	if err != nil {
		return RouteEstimate{}, classify(err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return RouteEstimate{}, ErrNoRoute
	}

	leg := routes[0].Legs[0]
	duration := leg.Duration
	if leg.DurationInTraffic > 0 {
		duration = leg.DurationInTraffic
	}
	return RouteEstimate{
		DistanceMiles:   float64(leg.Distance.Meters) / metersPerMile,
		DurationMinutes: duration.Minutes(),
		StartAddress:    leg.StartAddress,
		EndAddress:      leg.EndAddress,
	}, nil
}

// classify maps Directions status errors caused by the request itself onto
// sentinels. The client reports statuses only in the error text.
func classify(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "NOT_FOUND"):
		return fmt.Errorf("%w: %v", ErrPlaceNotFound, err)
	case strings.Contains(msg, "ZERO_RESULTS"):
		return fmt.Errorf("%w: %v", ErrNoRoute, err)
	default:
		return fmt.Errorf("maps api error: %w", err)
	}
}

func departureParam(t time.Time) string {
	if t.IsZero() || t.Before(time.Now()) {
		return "now"
	}
	return strconv.FormatInt(t.Unix(), 10)
}
