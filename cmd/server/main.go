package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"water-route-service/internal/api"
	"water-route-service/internal/app"
	"water-route-service/internal/config"
)

// main is the application composition root.
// It wires concrete adapters (optimizer, local mirror, OSM, S3) behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	engine, err := app.Build(context.Background(), cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer engine.Close()

	router := api.NewRouter(api.Deps{
		Resolver:     engine.Resolver,
		Prober:       engine.Resolver.Prober,
		Source:       engine.Source,
		DatasetLimit: cfg.DatasetLimit,
		Metrics:      engine.Metrics,
	})

	// A resolution can run three remote attempts, up to three dataset sources
	// and the probe back to back, so the write timeout covers their sum.
	writeTimeout := cfg.GeneticTimeout + cfg.StandardTimeout + cfg.NearestTimeout + 3*cfg.DatasetTimeout + 20*time.Second

	log.Printf("Server listening addr=:%s", cfg.Port)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}
