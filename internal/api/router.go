package api

import (
	"net/http"

	"water-route-service/internal/api/handlers"
	"water-route-service/internal/ports"
)

// Deps are the engine pieces the HTTP layer needs.
type Deps struct {
	Resolver     handlers.RouteResolver
	Prober       ports.Prober
	Source       ports.SupplyPointSource
	DatasetLimit int
	Metrics      http.Handler // optional; /metrics is not mounted when nil
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	healthHandler := &handlers.HealthHandler{Prober: d.Prober}
	routeHandler := &handlers.RouteHandler{Resolver: d.Resolver}
	supplyHandler := &handlers.SupplyPointHandler{Source: d.Source, DefaultLimit: d.DatasetLimit}

	mux.HandleFunc("/health", healthHandler.Health)
	mux.HandleFunc("/routes/resolve", routeHandler.Resolve)
	mux.HandleFunc("/supply-points", supplyHandler.List)
	if d.Metrics != nil {
		mux.Handle("/metrics", d.Metrics)
	}

	return requestIDMiddleware(loggingMiddleware(mux))
}
