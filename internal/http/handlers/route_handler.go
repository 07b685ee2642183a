// README: Route-based fare estimate: Maps distance/duration plus NYC-local pickup time, then predict.
package handlers

import (
	"context"
	"errors"
	"math"
	"net/http"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"nyctaxi/internal/maps"
	"nyctaxi/internal/modules/features"
	"nyctaxi/internal/modules/prediction"
)

// RouteEstimator is satisfied by maps.RouteService.
type RouteEstimator interface {
	Estimate(ctx context.Context, origin, destination string, departure time.Time) (maps.RouteEstimate, error)
}

type RouteHandler struct {
	routes RouteEstimator
	svc    *prediction.Service
	loc    *time.Location
	now    func() time.Time
}

// NewRouteHandler accepts a nil estimator; every request then answers 503.
func NewRouteHandler(routes RouteEstimator, svc *prediction.Service) (*RouteHandler, error) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return nil, err
	}
	return &RouteHandler{routes: routes, svc: svc, loc: loc, now: time.Now}, nil
}

type routeRequest struct {
	Origin      string     `json:"origin" binding:"required"`
	Destination string     `json:"destination" binding:"required"`
	PickupTime  *time.Time `json:"pickup_time"`
	IsTolls     *tollFlag  `json:"is_tolls"`
}

type routeResponse struct {
	fareResponse
	TripDistance float64 `json:"trip_distance"`
	TripDuration float64 `json:"trip_duration"`
	TripHours    int     `json:"trip_hours"`
	DayName      string  `json:"day_name"`
	StartAddress string  `json:"start_address,omitempty"`
	EndAddress   string  `json:"end_address,omitempty"`
}

func (h *RouteHandler) Predict(c *gin.Context) {
	if h.routes == nil {
		writePredictionError(c, ErrRoutesDisabled)
		return
	}
	if !h.svc.Ready() {
		writePredictionError(c, prediction.ErrUnavailable)
		return
	}
	var req routeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var verrs validator.ValidationErrors
		switch {
		case features.IsSchemaMismatch(err):
			writePredictionError(c, err)
		case errors.As(err, &verrs):
			writeError(c, http.StatusBadRequest, "origin and destination are required")
		default:
			writeError(c, http.StatusBadRequest, "invalid json")
		}
		return
	}

	pickup := h.now()
	if req.PickupTime != nil {
		pickup = *req.PickupTime
	}
	est, err := h.routes.Estimate(c.Request.Context(), req.Origin, req.Destination, pickup)
	if err != nil {
		status, msg := predictionStatus(err)
		if status == http.StatusInternalServerError {
			status, msg = http.StatusBadGateway, "route lookup failed"
		}
		writeError(c, status, msg)
		return
	}

	local := pickup.In(h.loc)
	rec := features.TripRecord{
		TripDistance: round2(est.DistanceMiles),
		TripDuration: round2(est.DurationMinutes),
		TripHours:    local.Hour(),
		DayName:      local.Weekday().String(),
	}
	if req.IsTolls != nil {
		rec.IsTolls = int(*req.IsTolls)
	}
	res, err := h.svc.Predict(c.Request.Context(), rec)
	if err != nil {
		writePredictionError(c, err)
		return
	}
	c.Header(ModelVersionHeader, res.ModelVersion)
	writeJSON(c, http.StatusOK, routeResponse{
		fareResponse: newFareResponse(res),
		TripDistance: rec.TripDistance,
		TripDuration: rec.TripDuration,
		TripHours:    rec.TripHours,
		DayName:      rec.DayName,
		StartAddress: est.StartAddress,
		EndAddress:   est.EndAddress,
	})
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
