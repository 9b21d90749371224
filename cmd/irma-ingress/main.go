// Command irma-ingress loads the ImageCLEFmed IRMA train and test label
// tables, decodes every IRMA code and reports, exports or persists the merged
// dataset.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/David-Botos/irma-ingress/pkg/config"
	"github.com/David-Botos/irma-ingress/pkg/connector"
	"github.com/David-Botos/irma-ingress/pkg/dataset"
	"github.com/David-Botos/irma-ingress/pkg/model"
	"github.com/David-Botos/irma-ingress/pkg/source"
	"github.com/David-Botos/irma-ingress/pkg/transfer"
)

func main() {
	var (
		envFile      = flag.String("env", ".env", "Environment file to load before reading configuration")
		exportPath   = flag.String("export", "", "Write the merged dataset as CSV to this path (overrides IRMA_EXPORT_PATH)")
		persist      = flag.Bool("persist", false, "Write the dataset to PostgreSQL (same as IRMA_PERSIST=true)")
		verifyImages = flag.Bool("verify-images", false, "Decode every referenced image and fail on the first error")
		jsonSummary  = flag.Bool("json", false, "Print the summary as JSON")
		metricsFile  = flag.String("metrics-file", "", "Write collected metrics in text format to this path")
	)
	flag.Parse()

	cfg, err := config.LoadConfig(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}
	if *persist {
		if err := cfg.EnablePersist(); err != nil {
			fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
			os.Exit(1)
		}
	}
	if *exportPath != "" {
		cfg.ExportPath = *exportPath
	}

	logger, err := newLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	err = run(ctx, cfg, options{
		verifyImages: *verifyImages,
		jsonSummary:  *jsonSummary,
	}, registry, logger)

	if *metricsFile != "" {
		if werr := prometheus.WriteToTextfile(*metricsFile, registry); werr != nil {
			logger.Warn("Failed to write metrics file", zap.String("path", *metricsFile), zap.Error(werr))
		}
	}

	if err != nil {
		logger.Error("Ingress failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

type options struct {
	verifyImages bool
	jsonSummary  bool
}

func run(ctx context.Context, cfg *config.Config, opts options, registry *prometheus.Registry, logger *zap.Logger) error {
	loadMetrics, err := dataset.NewLoadMetrics(registry)
	if err != nil {
		return fmt.Errorf("failed to register load metrics: %w", err)
	}

	factory := connector.NewConnectorFactory(cfg, logger)

	train, test, closeSources, err := partitions(ctx, cfg, factory, logger)
	if err != nil {
		return err
	}
	defer closeSources()

	ds, err := dataset.NewLoader(logger, loadMetrics).Load(ctx, train, test)
	if err != nil {
		var malformed *dataset.MalformedRecordError
		if errors.As(err, &malformed) {
			logger.Error("Malformed label record",
				zap.String("partition", malformed.Partition),
				zap.Int("row", malformed.Row),
				zap.String("field", malformed.Field))
		}
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	summary := dataset.Summarize(ds)
	if opts.jsonSummary {
		data, err := summary.ToJSON()
		if err != nil {
			return fmt.Errorf("failed to encode summary: %w", err)
		}
		fmt.Println(string(data))
	} else {
		fmt.Print(summary.Report())
	}

	if cfg.ExportPath != "" {
		if err := dataset.ExportCSVFile(cfg.ExportPath, ds); err != nil {
			return fmt.Errorf("failed to export dataset: %w", err)
		}
		logger.Info("Exported dataset", zap.String("path", cfg.ExportPath), zap.Int("records", ds.Len()))
	}

	if opts.verifyImages {
		if err := verifyImages(ctx, cfg, ds, loadMetrics, logger); err != nil {
			return err
		}
	}

	if cfg.Persist {
		if err := persist(ctx, cfg, factory, ds, registry, logger); err != nil {
			return err
		}
	}

	return nil
}

// partitions builds the train and test partitions for the configured source.
// The returned func releases any connection the sources hold.
func partitions(
	ctx context.Context,
	cfg *config.Config,
	factory *connector.ConnectorFactory,
	logger *zap.Logger,
) (dataset.Partition, dataset.Partition, func(), error) {
	layout := dataset.LayoutFromConfig(cfg.Dataset)

	if cfg.Source != config.SourceSnowflake {
		train, test := layout.Partitions()
		return train, test, func() {}, nil
	}

	snowflake, err := factory.CreateSnowflakeConnector(ctx)
	if err != nil {
		return dataset.Partition{}, dataset.Partition{}, nil, err
	}
	if err := snowflake.Validate(ctx); err != nil {
		snowflake.Close()
		return dataset.Partition{}, dataset.Partition{}, nil, fmt.Errorf("snowflake validation failed: %w", err)
	}

	trainSource, err := source.NewSnowflakeSource(snowflake, cfg.Dataset.SnowflakeTrainTable, cfg.Snowflake.QueryTimeout, logger)
	if err != nil {
		snowflake.Close()
		return dataset.Partition{}, dataset.Partition{}, nil, err
	}
	testSource, err := source.NewSnowflakeSource(snowflake, cfg.Dataset.SnowflakeTestTable, cfg.Snowflake.QueryTimeout, logger)
	if err != nil {
		snowflake.Close()
		return dataset.Partition{}, dataset.Partition{}, nil, err
	}

	trainRoot, testRoot := layout.ImageRoots()
	train := dataset.Partition{Name: dataset.PartitionTrain, Source: trainSource, ImageRoot: trainRoot}
	test := dataset.Partition{Name: dataset.PartitionTest, Source: testSource, ImageRoot: testRoot}

	return train, test, func() {
		if err := snowflake.Close(); err != nil {
			logger.Warn("Failed to close Snowflake connection", zap.Error(err))
		}
	}, nil
}

func verifyImages(ctx context.Context, cfg *config.Config, ds *model.Dataset, metrics *dataset.LoadMetrics, logger *zap.Logger) error {
	loader := dataset.NewImageLoader(dataset.FileStore{}, logger, metrics)

	var decoded atomic.Int64
	err := dataset.LoadImages(ctx, loader, ds.Records, cfg.WorkerPoolSize,
		func(_ context.Context, _ int, _ model.Record, _ *dataset.RGB) error {
			decoded.Add(1)
			return nil
		})
	if err != nil {
		return fmt.Errorf("image verification failed: %w", err)
	}

	logger.Info("Verified images", zap.Int64("images", decoded.Load()))
	return nil
}

func persist(
	ctx context.Context,
	cfg *config.Config,
	factory *connector.ConnectorFactory,
	ds *model.Dataset,
	registry *prometheus.Registry,
	logger *zap.Logger,
) error {
	postgres, err := factory.CreatePostgresConnector(ctx)
	if err != nil {
		return err
	}
	defer postgres.Close()

	if err := postgres.Validate(ctx); err != nil {
		return fmt.Errorf("postgreSQL validation failed: %w", err)
	}

	transferMetrics, err := transfer.NewTransferMetrics(registry)
	if err != nil {
		return fmt.Errorf("failed to register transfer metrics: %w", err)
	}

	result, err := transfer.NewDatasetWriter(postgres, cfg.Postgres.Schema, logger).
		WithBatchSize(cfg.BatchSize).
		WithMetrics(transferMetrics).
		Write(ctx, ds)
	if err != nil {
		return fmt.Errorf("failed to persist dataset: %w", err)
	}

	fmt.Printf("\nPersisted load %s: %d records, %d cleaning operations in %s\n",
		result.LoadID, result.RecordsWritten, result.CleaningOperations, result.Duration)
	return nil
}
