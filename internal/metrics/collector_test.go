package metrics_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volumegen/internal/metrics"
)

func TestCollector_RecordsRunSeries(t *testing.T) {
	c := metrics.NewCollector()
	c.SetParsed(10, 2)
	c.SetFiltered(3, 7)
	c.SetMissingColumns(1)
	c.MarkSuccess(time.Unix(1700000000, 0))

	expected := `
# HELP volumegen_rows_parsed Data rows read from the source table.
# TYPE volumegen_rows_parsed gauge
volumegen_rows_parsed 10
# HELP volumegen_rows_skipped Malformed source rows skipped by the parser.
# TYPE volumegen_rows_skipped gauge
volumegen_rows_skipped 2
# HELP volumegen_rows_dropped Records removed by the volume filter.
# TYPE volumegen_rows_dropped gauge
volumegen_rows_dropped 3
# HELP volumegen_rows_written Records written to the output document.
# TYPE volumegen_rows_written gauge
volumegen_rows_written 7
# HELP volumegen_missing_columns Canonical columns that could not be resolved.
# TYPE volumegen_missing_columns gauge
volumegen_missing_columns 1
# HELP volumegen_last_success_timestamp_seconds Unix time of the last successful run.
# TYPE volumegen_last_success_timestamp_seconds gauge
volumegen_last_success_timestamp_seconds 1.7e+09
`
	err := testutil.GatherAndCompare(c.Registry(), strings.NewReader(expected),
		"volumegen_rows_parsed",
		"volumegen_rows_skipped",
		"volumegen_rows_dropped",
		"volumegen_rows_written",
		"volumegen_missing_columns",
		"volumegen_last_success_timestamp_seconds",
	)
	assert.NoError(t, err)
}

func TestCollector_AllSeriesRegistered(t *testing.T) {
	c := metrics.NewCollector()

	n, err := testutil.GatherAndCount(c.Registry())
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}

func TestCollector_PushSendsToGateway(t *testing.T) {
	var gotPath, gotBody string
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer gateway.Close()

	c := metrics.NewCollector()
	c.SetParsed(4, 0)

	require.NoError(t, c.Push(context.Background(), gateway.URL, "volumegen"))
	assert.Equal(t, "/metrics/job/volumegen", gotPath)
	assert.NotEmpty(t, gotBody)
}

func TestCollector_PushFailure(t *testing.T) {
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer gateway.Close()

	err := metrics.NewCollector().Push(context.Background(), gateway.URL, "volumegen")
	assert.Error(t, err)
}
