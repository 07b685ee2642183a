// README: Entry point; loads config and artifacts, wires the cache and route lookup, serves HTTP, reloads on SIGHUP.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"nyctaxi/internal/config"
	httptransport "nyctaxi/internal/http"
	"nyctaxi/internal/infra"
	"nyctaxi/internal/maps"
	"nyctaxi/internal/modules/prediction"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A missing or broken artifact set degrades the service instead of
	// stopping it; /health and / keep answering.
	artifacts, err := prediction.LoadArtifacts(cfg.Model.Dir)
	if err != nil {
		log.Printf("serving without a model: %v", err)
		artifacts = nil
	} else {
		log.Printf("loaded model %s from %s", artifacts.Version, cfg.Model.Dir)
	}

	var cache prediction.Cache
	redisClient, err := infra.NewRedis(ctx, cfg.Redis.Addr)
	switch {
	case err != nil:
		log.Printf("prediction cache disabled: %v", err)
	case redisClient != nil:
		defer redisClient.Close()
		cache = prediction.NewRedisCache(redisClient, cfg.Redis.CacheTTL)
	}

	svc := prediction.NewService(artifacts, cache)

	deps := httptransport.RouterDeps{Prediction: svc, CORSOrigins: cfg.HTTP.CORSOrigins}
	if cfg.Maps.APIKey != "" {
		routes, err := maps.NewRouteService(cfg.Maps.APIKey)
		if err != nil {
			log.Fatalf("maps init: %v", err)
		}
		deps.Routes = routes
	} else {
		log.Printf("FARE_MAPS_API_KEY not set; /predict/route disabled")
	}

	router, err := httptransport.NewRouter(deps)
	if err != nil {
		log.Fatal(err)
	}

	go reloadOnHangup(ctx, svc, cfg.Model.Dir)

	if err := httptransport.NewServer(cfg.HTTP.Addr, router).Run(ctx); err != nil {
		log.Fatal(err)
	}
}

func reloadOnHangup(ctx context.Context, svc *prediction.Service, dir string) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			if err := svc.Reload(dir); err != nil {
				log.Printf("reload failed, keeping current model: %v", err)
			}
		}
	}
}
