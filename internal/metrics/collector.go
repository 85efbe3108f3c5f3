// Package metrics records per-run statistics in a private Prometheus registry
// and pushes them to a Pushgateway at the end of a run.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "volumegen"

// Collector owns the run gauges. The zero value is not usable; call NewCollector.
type Collector struct {
	registry       *prometheus.Registry
	rowsParsed     prometheus.Gauge
	rowsSkipped    prometheus.Gauge
	rowsDropped    prometheus.Gauge
	rowsWritten    prometheus.Gauge
	missingColumns prometheus.Gauge
	lastSuccess    prometheus.Gauge
	duration       prometheus.Gauge
}

func newGauge(name, help string) prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	})
}

// NewCollector creates a Collector with every series registered.
func NewCollector() *Collector {
	c := &Collector{
		registry:       prometheus.NewRegistry(),
		rowsParsed:     newGauge("rows_parsed", "Data rows read from the source table."),
		rowsSkipped:    newGauge("rows_skipped", "Malformed source rows skipped by the parser."),
		rowsDropped:    newGauge("rows_dropped", "Records removed by the volume filter."),
		rowsWritten:    newGauge("rows_written", "Records written to the output document."),
		missingColumns: newGauge("missing_columns", "Canonical columns that could not be resolved."),
		lastSuccess:    newGauge("last_success_timestamp_seconds", "Unix time of the last successful run."),
		duration:       newGauge("duration_seconds", "Wall time of the last run."),
	}
	c.registry.MustRegister(
		c.rowsParsed,
		c.rowsSkipped,
		c.rowsDropped,
		c.rowsWritten,
		c.missingColumns,
		c.lastSuccess,
		c.duration,
	)
	return c
}

// Registry exposes the underlying registry for gathering.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// SetParsed records the parser's row counts.
func (c *Collector) SetParsed(rows, skipped int) {
	c.rowsParsed.Set(float64(rows))
	c.rowsSkipped.Set(float64(skipped))
}

// SetFiltered records how many records were dropped and how many remain.
func (c *Collector) SetFiltered(dropped, written int) {
	c.rowsDropped.Set(float64(dropped))
	c.rowsWritten.Set(float64(written))
}

// SetMissingColumns records the number of unresolved canonical columns.
func (c *Collector) SetMissingColumns(n int) {
	c.missingColumns.Set(float64(n))
}

// ObserveDuration records the run's wall time.
func (c *Collector) ObserveDuration(d time.Duration) {
	c.duration.Set(d.Seconds())
}

// MarkSuccess stamps the time of a completed run.
func (c *Collector) MarkSuccess(at time.Time) {
	c.lastSuccess.Set(float64(at.Unix()))
}

// Push sends every series to the Pushgateway at url under job, replacing the
// previous group. A failed run pushes a zero last-success timestamp.
func (c *Collector) Push(ctx context.Context, url, job string) error {
	if err := push.New(url, job).Gatherer(c.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("pushing metrics to %s: %w", url, err)
	}
	return nil
}
