// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"nyctaxi/internal/maps"
	"nyctaxi/internal/modules/features"
	"nyctaxi/internal/modules/prediction"
)

// ModelVersionHeader carries the version of the artifacts that served a prediction.
const ModelVersionHeader = "X-Model-Version"

var ErrRoutesDisabled = errors.New("route estimates are unavailable: no maps API key configured")

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// predictionStatus maps an error from the prediction path to an HTTP status
// and the message the client sees.
func predictionStatus(err error) (int, string) {
	var sm *features.SchemaMismatchError
	var pe *prediction.PredictionError
	switch {
	case errors.As(err, &sm):
		return http.StatusBadRequest, sm.Error()
	case errors.Is(err, prediction.ErrUnavailable), errors.Is(err, ErrRoutesDisabled):
		return http.StatusServiceUnavailable, err.Error()
	case errors.Is(err, maps.ErrPlaceNotFound):
		return http.StatusUnprocessableEntity, maps.ErrPlaceNotFound.Error()
	case errors.Is(err, maps.ErrNoRoute):
		return http.StatusUnprocessableEntity, maps.ErrNoRoute.Error()
	case errors.As(err, &pe):
		log.Printf("prediction error: %v", err)
		return http.StatusInternalServerError, "prediction failed"
	default:
		log.Printf("unhandled error: %v", err)
		return http.StatusInternalServerError, "internal error"
	}
}

func writePredictionError(c *gin.Context, err error) {
	status, msg := predictionStatus(err)
	writeError(c, status, msg)
}
