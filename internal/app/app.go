package app

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	_ "modernc.org/sqlite"

	"water-route-service/internal/adapters/diagnostics"
	"water-route-service/internal/adapters/optimizer"
	"water-route-service/internal/adapters/osm"
	"water-route-service/internal/adapters/repositories"
	"water-route-service/internal/config"
	"water-route-service/internal/domain"
	"water-route-service/internal/platform/db"
	"water-route-service/internal/platform/obs"
	"water-route-service/internal/ports"
	"water-route-service/internal/services"
)

// App is the wired resolution engine shared by the server and routectl.
type App struct {
	Resolver *services.Resolver
	Source   ports.SupplyPointSource
	Metrics  http.Handler
	DB       *sql.DB
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}

// Build wires adapters behind ports:
//   - optimizer client for strategies, probe and the remote dataset
//   - local mirror (SQLite or Postgres) as second dataset source and attempt log
//   - Overpass as last dataset source when OVERPASS_URL is set
//   - S3 trail archive when ARCHIVE_S3_BUCKET is set
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	client, err := optimizer.New(cfg.OptimizerBaseURL,
		optimizer.WithNearestMaxDistance(cfg.NearestMaxDistanceKm),
		optimizer.WithUserAgent(cfg.OptimizerUserAgent),
	)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}

	reg := prometheus.NewRegistry()
	metrics, err := obs.NewMetricsSink(reg)
	if err != nil {
		return nil, fmt.Errorf("build: register metrics: %w", err)
	}

	a := &App{Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})}
	sinks := obs.MultiSink{obs.LogSink{}, metrics}
	sources := services.SourceChain{
		Sources: []ports.SupplyPointSource{client},
		Timeout: cfg.DatasetTimeout,
	}

	switch cfg.DBDriver {
	case "sqlite":
		conn, err := OpenSqlite(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("build: %w", err)
		}
		if err := repositories.InitSchema(conn); err != nil {
			conn.Close()
			return nil, fmt.Errorf("build: %w", err)
		}
		a.DB = conn
		sources.Sources = append(sources.Sources, repositories.NewSqliteSupplyPointRepository(conn))
		sinks = append(sinks, diagnostics.NewSqliteAttemptLog(conn))
	case "postgres":
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("build: %w", err)
		}
		a.DB = conn
		sources.Sources = append(sources.Sources, repositories.NewSQLSupplyPointRepository(conn))
		sinks = append(sinks, diagnostics.NewSQLAttemptLog(conn))
	}

	if cfg.OverpassURL != "" {
		sources.Sources = append(sources.Sources, osm.NewOverpassSource(cfg.OverpassURL, cfg.OverpassRadiusM, cfg.DatasetTimeout))
	}

	var archive ports.TrailArchive
	if cfg.ArchiveBucket != "" {
		s3Archive, err := diagnostics.NewS3Archive(ctx, diagnostics.S3Config{
			Bucket:    cfg.ArchiveBucket,
			Region:    cfg.ArchiveRegion,
			Endpoint:  cfg.ArchiveEndpoint,
			PathStyle: cfg.ArchivePathStyle,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("build: %w", err)
		}
		archive = s3Archive
	}

	a.Source = sources
	a.Resolver = &services.Resolver{
		Prober:     client,
		Strategies: client.Strategies(),
		Fallback: &services.LocalFallback{
			Source:  sources,
			Limit:   cfg.DatasetLimit,
			Timeout: cfg.DatasetTimeout,
		},
		Timeouts: map[domain.Method]time.Duration{
			domain.MethodGenetic:       cfg.GeneticTimeout,
			domain.MethodStandard:      cfg.StandardTimeout,
			domain.MethodNearestLookup: cfg.NearestTimeout,
		},
		Sink:     sinks,
		Archive:  archive,
		Observer: metrics,
	}

	log.Printf("engine wired: optimizer=%s db=%s sources=%d archive=%t", client.BaseURL(), cfg.DBDriver, len(sources.Sources), archive != nil)
	return a, nil
}

func OpenSqlite(dbPath string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("openDB: open sqlite database %q: %w", dbPath, err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("openDB: verify sqlite connection to %q: %w", dbPath, err)
	}

	return conn, nil
}
