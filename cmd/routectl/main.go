package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/kr/pretty"

	"water-route-service/internal/app"
	"water-route-service/internal/config"
	"water-route-service/internal/domain"
)

// routectl resolves one request from the command line and prints the result.
func main() {
	lat := flag.Float64("lat", 0, "origin latitude")
	lng := flag.Float64("lng", 0, "origin longitude")
	maxRoutes := flag.Int("max-routes", 5, "maximum number of candidates")
	maxHops := flag.Int("max-hops", 3, "maximum hops for the optimizer")
	keyword := flag.String("keyword", "", "destination keyword")
	admin := flag.String("admin", "", "admin or user id sent to the optimizer")
	trail := flag.Bool("trail", false, "print only the attempt trail")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	engine, err := app.Build(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer engine.Close()

	res, err := engine.Resolver.Resolve(ctx, domain.OptimizationRequest{
		AdminOrUserID:      *admin,
		Origin:             domain.GeoPoint{Latitude: *lat, Longitude: *lng},
		MaxRoutes:          *maxRoutes,
		MaxHops:            *maxHops,
		DestinationKeyword: *keyword,
	})
	if err != nil {
		var exhausted *domain.AllStrategiesExhaustedError
		if errors.As(err, &exhausted) {
			fmt.Fprintln(os.Stderr, domain.UserMessage)
			pretty.Fprintf(os.Stderr, "%# v\n", exhausted.Attempts)
			engine.Close()
			os.Exit(1)
		}
		engine.Close()
		log.Fatal(err)
	}

	if *trail {
		pretty.Printf("%# v\n", res.AttemptedMethods)
		return
	}
	pretty.Printf("%# v\n", res)
}
