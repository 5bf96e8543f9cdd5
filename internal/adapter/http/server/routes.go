package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

func setupRoutes(mux *http.ServeMux, routes *handlers) {
	// Service
	mux.HandleFunc("GET /health", routes.health.HealthCheck)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /swagger/", httpSwagger.WrapHandler)

	// Locations
	mux.HandleFunc("POST /add-location", routes.location.AddLocation)
	mux.HandleFunc("GET /latest/{busNumber}", routes.location.LatestLocation)

	// Realtime subscribers
	mux.HandleFunc("GET /ws", routes.locationWS.Subscribe)
}
