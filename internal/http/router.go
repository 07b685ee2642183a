// README: HTTP router registration.
package http

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"nyctaxi/internal/http/handlers"
	"nyctaxi/internal/http/middleware"
	"nyctaxi/internal/modules/prediction"
)

type RouterDeps struct {
	Prediction *prediction.Service
	// Routes may be nil when no maps key is configured.
	Routes      handlers.RouteEstimator
	CORSOrigins []string
}

func NewRouter(deps RouterDeps) (*gin.Engine, error) {
	r := gin.New()
	r.Use(middleware.Logging(), middleware.Recovery(), corsMiddleware(deps.CORSOrigins))

	predictionHandler := handlers.NewPredictionHandler(deps.Prediction)
	r.GET("/", predictionHandler.Info)
	r.GET("/health", predictionHandler.Health)
	r.GET("/model", predictionHandler.Model)
	r.POST("/predict", predictionHandler.Predict)
	r.POST("/predict/batch", predictionHandler.PredictBatch)

	routeHandler, err := handlers.NewRouteHandler(deps.Routes, deps.Prediction)
	if err != nil {
		return nil, err
	}
	r.POST("/predict/route", routeHandler.Predict)

	return r, nil
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader, handlers.ModelVersionHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
