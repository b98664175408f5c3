package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Get returns the environment value for key, or fallback when unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Config is the process configuration shared by the commands.
type Config struct {
	Port string

	OptimizerBaseURL     string
	OptimizerUserAgent   string
	NearestMaxDistanceKm float64

	GeneticTimeout  time.Duration
	StandardTimeout time.Duration
	NearestTimeout  time.Duration
	DatasetTimeout  time.Duration
	DatasetLimit    int

	// DBDriver is sqlite, postgres or none.
	DBDriver    string
	DBPath      string
	DatabaseURL string
	SeedPath    string

	OverpassURL     string
	OverpassRadiusM int

	ArchiveBucket    string
	ArchiveRegion    string
	ArchiveEndpoint  string
	ArchivePathStyle bool
}

// Load reads Config from the environment. Call godotenv.Load first to pick
// up a .env file.
func Load() (Config, error) {
	var errs []error

	cfg := Config{
		Port:               Get("PORT", "8080"),
		OptimizerBaseURL:   Get("OPTIMIZER_BASE_URL", ""),
		OptimizerUserAgent: Get("OPTIMIZER_USER_AGENT", "water-route-service/1.0"),
		DBDriver:           strings.ToLower(Get("DB_DRIVER", "sqlite")),
		DBPath:             Get("DB_PATH", "data/app.db"),
		DatabaseURL:        Get("DATABASE_URL", ""),
		SeedPath:           Get("SEED_PATH", "data/seeds/supply_points.json"),
		OverpassURL:        Get("OVERPASS_URL", ""),
		ArchiveBucket:      Get("ARCHIVE_S3_BUCKET", ""),
		ArchiveRegion:      Get("ARCHIVE_S3_REGION", "us-east-1"),
		ArchiveEndpoint:    Get("ARCHIVE_S3_ENDPOINT", ""),
	}

	cfg.NearestMaxDistanceKm = floatVar("NEAREST_MAX_DISTANCE_KM", 1000, &errs)
	cfg.GeneticTimeout = durationVar("GENETIC_TIMEOUT", 30*time.Second, &errs)
	cfg.StandardTimeout = durationVar("STANDARD_TIMEOUT", 30*time.Second, &errs)
	cfg.NearestTimeout = durationVar("NEAREST_TIMEOUT", 15*time.Second, &errs)
	cfg.DatasetTimeout = durationVar("DATASET_TIMEOUT", 15*time.Second, &errs)
	cfg.DatasetLimit = intVar("DATASET_LIMIT", 1000, &errs)
	cfg.OverpassRadiusM = intVar("OVERPASS_RADIUS_M", 25000, &errs)
	cfg.ArchivePathStyle = boolVar("ARCHIVE_S3_PATH_STYLE", false, &errs)

	if cfg.OptimizerBaseURL == "" {
		errs = append(errs, errors.New("OPTIMIZER_BASE_URL is required"))
	}

	switch cfg.DBDriver {
	case "sqlite", "none":
	case "postgres":
		if cfg.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when DB_DRIVER=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER %q: want sqlite, postgres or none", cfg.DBDriver))
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func durationVar(key string, fallback time.Duration, errs *[]error) time.Duration {
	raw := Get(key, "")
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		*errs = append(*errs, fmt.Errorf("%s=%q: want a positive duration such as 30s", key, raw))
		return fallback
	}
	return d
}

func intVar(key string, fallback int, errs *[]error) int {
	raw := Get(key, "")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		*errs = append(*errs, fmt.Errorf("%s=%q: want a positive integer", key, raw))
		return fallback
	}
	return n
}

func floatVar(key string, fallback float64, errs *[]error) float64 {
	raw := Get(key, "")
	if raw == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f <= 0 {
		*errs = append(*errs, fmt.Errorf("%s=%q: want a positive number", key, raw))
		return fallback
	}
	return f
}

func boolVar(key string, fallback bool, errs *[]error) bool {
	raw := Get(key, "")
	if raw == "" {
		return fallback
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s=%q: want true or false", key, raw))
		return fallback
	}
	return b
}
