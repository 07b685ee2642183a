// README: Prediction handlers for single and batch fares, model info and liveness.
package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"nyctaxi/internal/modules/features"
	"nyctaxi/internal/modules/prediction"
)

const (
	ServiceName  = "nyc-taxi-fare"
	MaxBatchSize = 1000
)

type PredictionHandler struct {
	svc *prediction.Service
}

func NewPredictionHandler(svc *prediction.Service) *PredictionHandler {
	return &PredictionHandler{svc: svc}
}

type fareResponse struct {
	EstimatedFare float64 `json:"estimated_fare"`
	Currency      string  `json:"currency"`
}

func newFareResponse(res prediction.Result) fareResponse {
	return fareResponse{EstimatedFare: res.Fare.Float(), Currency: res.Fare.Currency}
}

func (h *PredictionHandler) Predict(c *gin.Context) {
	var req tripRequest
	if err := decodeBody(c.Request.Body, &req); err != nil {
		writePredictionError(c, err)
		return
	}
	rec, err := req.record()
	if err != nil {
		writePredictionError(c, err)
		return
	}
	res, err := h.svc.Predict(c.Request.Context(), rec)
	if err != nil {
		writePredictionError(c, err)
		return
	}
	c.Header(ModelVersionHeader, res.ModelVersion)
	writeJSON(c, http.StatusOK, newFareResponse(res))
}

// Trips stay raw so each one is decoded, and can fail, on its own.
type batchRequest struct {
	Trips []json.RawMessage `json:"trips"`
}

type batchItem struct {
	EstimatedFare *float64 `json:"estimated_fare,omitempty"`
	Currency      string   `json:"currency,omitempty"`
	Error         string   `json:"error,omitempty"`
}

// PredictBatch answers 200 with one entry per trip; a bad trip only fails
// its own entry.
func (h *PredictionHandler) PredictBatch(c *gin.Context) {
	var req batchRequest
	if err := decodeBody(c.Request.Body, &req); err != nil {
		writePredictionError(c, err)
		return
	}
	if len(req.Trips) == 0 {
		writeError(c, http.StatusBadRequest, "trips must not be empty")
		return
	}
	if len(req.Trips) > MaxBatchSize {
		writeError(c, http.StatusBadRequest, fmt.Sprintf("at most %d trips per batch", MaxBatchSize))
		return
	}

	out := make([]batchItem, len(req.Trips))
	recs := make([]features.TripRecord, 0, len(req.Trips))
	pos := make([]int, 0, len(req.Trips))
	for i, raw := range req.Trips {
		var t tripRequest
		if err := decodeBody(bytes.NewReader(raw), &t); err != nil {
			out[i].Error = err.Error()
			continue
		}
		rec, err := t.record()
		if err != nil {
			out[i].Error = err.Error()
			continue
		}
		recs = append(recs, rec)
		pos = append(pos, i)
	}

	items, err := h.svc.PredictBatch(c.Request.Context(), recs)
	if err != nil {
		writePredictionError(c, err)
		return
	}
	version := ""
	for j, item := range items {
		i := pos[j]
		if item.Err != nil {
			_, msg := predictionStatus(item.Err)
			out[i].Error = msg
			continue
		}
		fare := item.Result.Fare.Float()
		out[i].EstimatedFare = &fare
		out[i].Currency = item.Result.Fare.Currency
		version = item.Result.ModelVersion
	}
	if version != "" {
		c.Header(ModelVersionHeader, version)
	}
	writeJSON(c, http.StatusOK, gin.H{"results": out})
}

// Info answers even without a model loaded.
func (h *PredictionHandler) Info(c *gin.Context) {
	info := h.svc.Info()
	writeJSON(c, http.StatusOK, gin.H{
		"service":       ServiceName,
		"message":       "NYC taxi fare prediction API",
		"ready":         info.Ready,
		"model_version": info.ModelVersion,
	})
}

func (h *PredictionHandler) Health(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{
		"status": "ok",
		"ready":  h.svc.Ready(),
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (h *PredictionHandler) Model(c *gin.Context) {
	info := h.svc.Info()
	if !info.Ready {
		writePredictionError(c, prediction.ErrUnavailable)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{
		"model_version":       info.ModelVersion,
		"loaded_at":           info.LoadedAt.Format(time.RFC3339),
		"feature_order":       info.FeatureOrder,
		"metrics":             info.Metrics,
		"feature_importances": info.Importances,
	})
}
