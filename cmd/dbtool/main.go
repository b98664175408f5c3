package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"water-route-service/internal/adapters/optimizer"
	"water-route-service/internal/adapters/repositories"
	"water-route-service/internal/app"
	"water-route-service/internal/config"
	"water-route-service/internal/domain"
	"water-route-service/internal/platform/db"
)

const usage = `usage: dbtool <command>

commands:
  init   create the schema and seed supply points from SEED_PATH
  sync   mirror the optimizer's /water-supply-points dataset into the local DB`

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	driver := config.Get("DB_DRIVER", "sqlite")
	conn, err := open(driver)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	store, err := initSchema(conn, driver)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	switch os.Args[1] {
	case "init":
		seedPath := config.Get("SEED_PATH", "data/seeds/supply_points.json")
		log.Printf("Seeding supply points from %s...", seedPath)
		if err := repositories.SeedFromJSON(ctx, store, seedPath); err != nil {
			log.Fatalf("seeding failed: %v", err)
		}
		log.Println("Seeding complete.")
	case "sync":
		if err := syncFromOptimizer(ctx, store); err != nil {
			log.Fatalf("sync failed: %v", err)
		}
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
}

func open(driver string) (*sql.DB, error) {
	switch driver {
	case "postgres":
		databaseURL := config.Get("DATABASE_URL", "")
		if databaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		return db.Open(databaseURL)
	case "sqlite":
		return app.OpenSqlite(config.Get("DB_PATH", "data/app.db"))
	default:
		return nil, fmt.Errorf("DB_DRIVER %q: want sqlite or postgres", driver)
	}
}

func initSchema(conn *sql.DB, driver string) (repositories.SupplyPointWriter, error) {
	log.Println("Initializing database schema...")
	if driver == "postgres" {
		if err := repositories.InitPostgresSchema(conn); err != nil {
			return nil, fmt.Errorf("schema initialization failed: %w", err)
		}
		log.Println("Schema ready.")
		return repositories.NewSQLSupplyPointRepository(conn), nil
	}

	if err := repositories.InitSchema(conn); err != nil {
		return nil, fmt.Errorf("schema initialization failed: %w", err)
	}
	log.Println("Schema ready.")
	return repositories.NewSqliteSupplyPointRepository(conn), nil
}

func syncFromOptimizer(ctx context.Context, store repositories.SupplyPointWriter) error {
	baseURL := config.Get("OPTIMIZER_BASE_URL", "")
	client, err := optimizer.New(baseURL, optimizer.WithRetry(5, 500*time.Millisecond))
	if err != nil {
		return err
	}

	limit := 0
	if raw := config.Get("DATASET_LIMIT", ""); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("DATASET_LIMIT=%q: %w", raw, err)
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	log.Printf("Fetching supply points from %s...", client.BaseURL())
	points, err := client.ListSupplyPoints(ctx, domain.GeoPoint{}, limit)
	if err != nil {
		return err
	}

	valid := points[:0]
	for _, p := range points {
		if p.Location.Valid() && !p.Location.IsZero() {
			valid = append(valid, p)
		}
	}

	if err := store.UpsertSupplyPoints(ctx, valid); err != nil {
		return err
	}
	log.Printf("Sync complete: fetched=%d stored=%d", len(points), len(valid))
	return nil
}
