// Command ingest fetches HRRR forecast files from the public NOAA bucket,
// extracts point-level observations for a fixed set of target locations, and
// persists them idempotently into postgres.
//
// Usage:
//
//	ingest --points targets.csv --db "postgres://..." \
//	  --run-date 20150323 --lookback-hours 48 \
//	  --variables temperature_2m,u_component_wind_10m
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

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/skysift/hrrr-point-etl/internal/adapter/grib"
	httpadapter "github.com/skysift/hrrr-point-etl/internal/adapter/http"
	kafkaadapter "github.com/skysift/hrrr-point-etl/internal/adapter/kafka"
	"github.com/skysift/hrrr-point-etl/internal/adapter/postgres"
	s3adapter "github.com/skysift/hrrr-point-etl/internal/adapter/s3"
	"github.com/skysift/hrrr-point-etl/internal/config"
	"github.com/skysift/hrrr-point-etl/internal/observability"
	"github.com/skysift/hrrr-point-etl/internal/pipeline"
	"github.com/skysift/hrrr-point-etl/internal/spatial"
)

func main() {
	if err := run(); err != nil {
		slog.Error("ingestion failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	godotenv.Load() //nolint:errcheck // .env is optional

	var opts config.Options
	if _, err := flags.Parse(&opts); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil
		}
		return err
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	logger := observability.NewLogger(opts.LogLevel, opts.LogFormat)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	catalog, unknown, err := config.FilterCatalog(config.DefaultCatalog(), opts.Variables)
	if err != nil {
		return err
	}
	for _, name := range unknown {
		logger.Warn("ignoring unsupported variable", "name", name)
	}

	targets, err := config.ParsePointsFile(opts.PointsFile, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	planner := pipeline.NewPlanner(clock)
	runDate := opts.RunDate
	if runDate == "" {
		runDate = planner.DefaultRunDate()
		logger.Info("no run date given, defaulting to yesterday UTC", "run_date", runDate)
	}
	keys, err := planner.PlanKeys(runDate, opts.Cycle, opts.FileType, opts.Lookback, opts.HourStart, opts.HourEnd)
	if err != nil {
		return err
	}

	decoder, err := grib.NewDecoder()
	if err != nil {
		return fmt.Errorf("initialize GRIB decoder: %w", err)
	}

	blob, err := s3adapter.New(ctx, opts.AWSRegion, !opts.Signed, logger)
	if err != nil {
		return err
	}

	db, err := postgres.Open(ctx, opts.DatabaseDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	store, err := postgres.New(db, opts.TableName, logger)
	if err != nil {
		return err
	}

	var sink pipeline.RowSink
	if opts.KafkaEnabled() {
		writer := kafkaadapter.NewWriter(opts.KafkaBrokers, opts.KafkaTopic, logger)
		defer writer.Close()
		sink = writer
		logger.Info("kafka row sink enabled", "brokers", opts.KafkaBrokers, "topic", opts.KafkaTopic)
	}

	resolver := spatial.NewResolver(spatial.NewCache(), targets, logger)
	orch := pipeline.New(blob, decoder, resolver, store, logger, metrics, pipeline.Options{
		Bucket:        opts.Bucket,
		Catalog:       catalog,
		FetchTimeout:  opts.FetchTimeout,
		FetchAttempts: opts.FetchAttempts,
		Sink:          sink,
		Clock:         clock,
	})

	srv := httpadapter.NewServer(opts.HTTPAddr, orch, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()
	defer func() {
		if err := srv.Shutdown(context.Background()); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
	}()

	summary, err := orch.Run(ctx, keys)
	if err != nil {
		return err
	}

	fmt.Println(summary.Report(catalog))
	return nil
}
