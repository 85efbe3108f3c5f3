package main

import (
	"context"

	"volumegen/internal/columns"
	"volumegen/internal/config"
	"volumegen/internal/fetch"
	"volumegen/internal/metrics"
	"volumegen/internal/output"
	"volumegen/internal/pipeline"
	"volumegen/internal/port"
	"volumegen/internal/storage/s3"
	"volumegen/internal/tabular"
	"volumegen/internal/volume"
)

// buildPipeline constructs every adapter from cfg. cfg must already be valid.
func buildPipeline(ctx context.Context, cfg *config.Config, collector *metrics.Collector) (*pipeline.Pipeline, error) {
	var storage port.ObjectStorage
	if fetch.Scheme(cfg.Source.URL) == "s3" || cfg.Output.S3Bucket != "" {
		s, err := s3.NewS3Client(ctx, &cfg.S3)
		if err != nil {
			return nil, &configError{err: err}
		}
		storage = s
	}

	router := fetch.NewRouter().
		Register(fetch.NewHTTPFetcher(cfg.Fetch.Timeout), "http", "https").
		Register(fetch.NewFileFetcher(), "file")
	if storage != nil {
		router.Register(fetch.NewStorageFetcher(storage), "s3")
	}
	fetcher := fetch.NewPersistingFetcher(router, cfg.Fetch.RawPath)

	parser, err := tabular.NewParser(tabular.Options{
		Format:              cfg.Source.Format,
		Delimiter:           firstRune(cfg.Source.Delimiter),
		Encodings:           cfg.Source.Encodings,
		DetectEncoding:      cfg.Source.DetectEncoding,
		DetectMinConfidence: cfg.Source.DetectMinConfidence,
		LossyEncoding:       cfg.Source.LossyEncoding,
		Sheet:               cfg.Source.Sheet,
		Debug:               cfg.Log.Debug(),
	})
	if err != nil {
		return nil, &configError{err: err}
	}

	sinks := []port.OutputSink{output.NewFileSink(cfg.Output.Path, cfg.Output.CreateDir)}
	if cfg.Output.S3Bucket != "" {
		sinks = append(sinks, output.NewStorageSink(storage, cfg.Output.S3Bucket, cfg.Output.S3Key))
	}

	p := pipeline.New(fetcher, parser, sinks, collector, pipeline.Config{
		Source:  cfg.Source.URL,
		Aliases: columns.DefaultAliases.Merge(cfg.Columns.Extra()),
		Policy: volume.Policy{
			Unit:    cfg.Volume.Unit,
			Decimal: firstRune(cfg.Source.Decimal),
			Filter:  cfg.Filter.Enabled,
		},
		Projection: cfg.Output.Projection,
		CSV: output.CSVOptions{
			Delimiter: firstRune(cfg.Source.Delimiter),
			Decimal:   firstRune(cfg.Source.Decimal),
		},
	})
	if cfg.Output.CSVPath != "" {
		p.WithCSVSinks(output.NewFileSink(cfg.Output.CSVPath, cfg.Output.CreateDir))
	}
	return p, nil
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}
