package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/vango-dev/gridkit/internal/config"
	"github.com/vango-dev/gridkit/internal/demo"
	"github.com/vango-dev/gridkit/pkg/datasource"
	"github.com/vango-dev/gridkit/pkg/gridstate"
	"github.com/vango-dev/gridkit/pkg/middleware"
	"github.com/vango-dev/gridkit/pkg/server"
	"github.com/vango-dev/gridkit/pkg/staging"
)

func serveCmd() *cobra.Command {
	var (
		port    int
		host    string
		dataset string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the grid server",
		Long: `Start the grid server.

The server reads gridkit.json from the current directory (defaults
apply when it is missing) and serves:

  GET /grid/ws    WebSocket grid sessions
  GET /grid/data  stateless page fetches
  GET /metrics    Prometheus metrics (when enabled)
  GET /healthz    liveness probe

Examples:
  gridkit serve
  gridkit serve --port=9000 --dataset=users`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return err
			}
			cfg, err := config.Load(dir)
			if err != nil {
				return err
			}

			if port > 0 {
				cfg.Port = port
			}
			if host != "" {
				cfg.Host = host
			}
			if dataset != "" {
				cfg.Dataset = dataset
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from gridkit.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from gridkit.json)")
	cmd.Flags().StringVarP(&dataset, "dataset", "d", "", "Dataset to serve (default from gridkit.json)")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	log := slog.Default().With("app", cfg.Name)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, gridCfg, err := buildSource(ctx, cfg, log)
	if err != nil {
		return err
	}

	gridCfg.DefaultPageSize = cfg.Grid.PageSize
	if cfg.Grid.MultiSort {
		gridCfg.SortMode = gridstate.SortMulti
	}
	gridCfg.Logger = log

	globalField := gridCfg.GlobalFilterKey
	if globalField == "" {
		globalField = gridstate.DefaultGlobalFilterKey
	}
	stagingCfg := staging.Config{
		GlobalField: globalField,
		Logger:      log,
	}
	if len(cfg.Grid.ManualFilters) > 0 {
		stagingCfg.FilterModes = make(map[string]staging.Mode, len(cfg.Grid.ManualFilters))
		for _, field := range cfg.Grid.ManualFilters {
			stagingCfg.FilterModes[field] = staging.Manual
		}
	}

	var mws []server.Middleware
	if cfg.Metrics {
		mws = append(mws, middleware.Prometheus())
	}
	if cfg.Tracing {
		mws = append(mws, middleware.OpenTelemetry())
	}

	grid := server.New(server.Config{
		Grid:        gridCfg,
		Staging:     stagingCfg,
		Source:      src,
		ReadTimeout: 5 * time.Minute,
		Middlewares: mws,
		Logger:      log,
	})

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Mount("/grid", grid.Routes())
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	if cfg.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	srv := &http.Server{
		Addr:    cfg.Address(),
		Handler: r,
	}

	printBanner()
	fmt.Println()
	info("Dataset:  %s", cfg.Dataset)
	info("Listening on http://%s", cfg.Address())
	fmt.Println()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// buildSource constructs the data source and the matching grid
// configuration for the configured dataset.
func buildSource(ctx context.Context, cfg *config.Config, log *slog.Logger) (datasource.DataSource, gridstate.Config, error) {
	switch cfg.Dataset {
	case "users":
		src := datasource.NewMemory(demo.Users(500),
			datasource.WithSearchFields(demo.SearchFields("users")...),
			datasource.WithMemoryLogger(log))
		return src, demo.UsersGrid(), nil

	case "tasks":
		src := datasource.NewMemory(demo.Tasks(500),
			datasource.WithSearchFields(demo.SearchFields("tasks")...),
			datasource.WithMemoryLogger(log))
		return src, demo.TasksGrid(), nil

	case "s3":
		var opts []func(*awsconfig.LoadOptions) error
		if cfg.S3.Region != "" {
			opts = append(opts, awsconfig.WithRegion(cfg.S3.Region))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, gridstate.Config{}, fmt.Errorf("load aws config: %w", err)
		}
		client := s3.NewFromConfig(awsCfg)

		src, err := datasource.NewMemoryFromS3(ctx, client, cfg.S3.Bucket, cfg.S3.Key,
			datasource.WithMemoryLogger(log))
		if err != nil {
			return nil, gridstate.Config{}, err
		}
		// Arbitrary datasets get global search over every sortable
		// column; declared filters need a known schema.
		return src, gridstate.Config{GlobalFilter: true}, nil

	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, gridstate.Config{}, fmt.Errorf("connect postgres: %w", err)
		}
		src, err := datasource.NewSQL(datasource.SQLConfig{
			Pool:          pool,
			Table:         cfg.Postgres.Table,
			Columns:       cfg.Postgres.Columns,
			SearchColumns: cfg.Postgres.SearchColumns,
			DefaultOrder:  cfg.Postgres.DefaultOrder,
			Logger:        log,
		})
		if err != nil {
			return nil, gridstate.Config{}, err
		}

		gridCfg := gridstate.Config{GlobalFilter: len(cfg.Postgres.SearchColumns) > 0}
		for id := range cfg.Postgres.Columns {
			gridCfg.Filters = append(gridCfg.Filters, gridstate.FilterField{
				ColumnID: id,
				Kind:     gridstate.FilterString,
			})
		}
		return src, gridCfg, nil

	default:
		return nil, gridstate.Config{}, fmt.Errorf("unknown dataset %q", cfg.Dataset)
	}
}
