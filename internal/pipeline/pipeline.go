// Package pipeline runs one fetch, parse, compute and write pass over the
// product catalog.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"volumegen/internal/columns"
	"volumegen/internal/domain"
	"volumegen/internal/metrics"
	"volumegen/internal/output"
	"volumegen/internal/port"
	"volumegen/internal/volume"
)

// Config holds the per-run settings that are not adapters.
type Config struct {
	Source     string
	Aliases    columns.AliasTable
	Policy     volume.Policy
	Projection domain.Projection
	CSV        output.CSVOptions
}

// Report summarizes a completed run.
type Report struct {
	Source      string
	Format      domain.SourceFormat
	Encoding    string
	RowsParsed  int
	RowsSkipped int
	RowsDropped int
	RowsWritten int
	Resolved    map[domain.Dimension]string
	Missing     []domain.Dimension
	Attempts    []string
	Sinks       []string
	Duration    time.Duration
}

// Pipeline wires the stages together. Each stage runs to completion before the
// next one starts.
type Pipeline struct {
	fetcher  port.Fetcher
	parser   port.TableParser
	sinks    []port.OutputSink
	csvSinks []port.OutputSink
	metrics  *metrics.Collector
	cfg      Config
	now      func() time.Time
}

// New creates a Pipeline. collector may be nil.
func New(fetcher port.Fetcher, parser port.TableParser, sinks []port.OutputSink, collector *metrics.Collector, cfg Config) *Pipeline {
	if cfg.Aliases == nil {
		cfg.Aliases = columns.DefaultAliases
	}
	return &Pipeline{
		fetcher: fetcher,
		parser:  parser,
		sinks:   sinks,
		metrics: collector,
		cfg:     cfg,
		now:     time.Now,
	}
}

// WithCSVSinks adds sinks that receive a CSV rendering of the same records.
func (p *Pipeline) WithCSVSinks(sinks ...port.OutputSink) *Pipeline {
	p.csvSinks = append(p.csvSinks, sinks...)
	return p
}

// Run executes the pipeline. It returns the first fatal error; row-level
// anomalies and unresolved columns are reported, never returned.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	start := p.now()
	report := &Report{Source: p.cfg.Source}
	defer func() {
		report.Duration = p.now().Sub(start)
		if p.metrics != nil {
			p.metrics.ObserveDuration(report.Duration)
		}
	}()

	doc, err := p.fetcher.Fetch(ctx, p.cfg.Source)
	if err != nil {
		return report, err
	}

	parsed, err := p.parser.Parse(ctx, port.ParseInput{
		Data:        doc.Body,
		Source:      doc.Source,
		ContentType: doc.ContentType,
	})
	if err != nil {
		return report, err
	}
	frame := parsed.Frame
	report.Format = parsed.Format
	report.Encoding = parsed.Encoding
	report.RowsParsed = frame.Len()
	report.RowsSkipped = parsed.SkippedRows
	report.Attempts = parsed.Attempts
	if p.metrics != nil {
		p.metrics.SetParsed(report.RowsParsed, report.RowsSkipped)
	}
	if parsed.SkippedRows > 0 {
		log.Printf("pipeline.Pipeline: WARN: skipped %d malformed row(s) in %s", parsed.SkippedRows, doc.Source)
	}
	log.Printf("pipeline.Pipeline: parsed %d row(s), %d column(s) as %s %s", frame.Len(), len(frame.Columns), parsed.Format, parsed.Encoding)

	res := columns.Resolve(frame.Columns, p.cfg.Aliases)
	report.Resolved = res.Columns
	report.Missing = res.Missing
	if p.metrics != nil {
		p.metrics.SetMissingColumns(len(res.Missing))
	}
	if len(res.Missing) > 0 {
		log.Printf("pipeline.Pipeline: WARN: schema drift, no column matched %v (header: %q)", res.Missing, frame.Columns)
	}

	records := volume.Transform(frame, res, p.cfg.Policy)
	kept := records
	if p.cfg.Policy.Filter {
		kept = volume.Filter(records)
	}
	report.RowsDropped = len(records) - len(kept)
	report.RowsWritten = len(kept)
	if p.metrics != nil {
		p.metrics.SetFiltered(report.RowsDropped, report.RowsWritten)
	}
	if report.RowsDropped > 0 {
		log.Printf("pipeline.Pipeline: dropped %d record(s) without a positive volume", report.RowsDropped)
	}

	data, err := output.Encode(kept, p.cfg.Projection)
	if err != nil {
		return report, fmt.Errorf("%w: %w", domain.ErrOutput, err)
	}
	if err := p.write(ctx, report, p.sinks, data, len(kept)); err != nil {
		return report, err
	}
	if len(p.csvSinks) > 0 {
		csvData, err := output.EncodeCSV(kept, p.cfg.Projection, p.cfg.CSV)
		if err != nil {
			return report, fmt.Errorf("%w: csv: %w", domain.ErrOutput, err)
		}
		if err := p.write(ctx, report, p.csvSinks, csvData, len(kept)); err != nil {
			return report, err
		}
	}

	if p.metrics != nil {
		p.metrics.MarkSuccess(p.now())
	}
	return report, nil
}

func (p *Pipeline) write(ctx context.Context, report *Report, sinks []port.OutputSink, data []byte, n int) error {
	for _, sink := range sinks {
		if err := sink.Write(ctx, data); err != nil {
			return fmt.Errorf("%w: %s: %w", domain.ErrOutput, sink.Name(), err)
		}
		report.Sinks = append(report.Sinks, sink.Name())
		log.Printf("pipeline.Pipeline: wrote %d record(s) to %s", n, sink.Name())
	}
	return nil
}
