package pipeline_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"volumegen/internal/columns"
	"volumegen/internal/domain"
	"volumegen/internal/fetch"
	"volumegen/internal/metrics"
	"volumegen/internal/output"
	"volumegen/internal/pipeline"
	"volumegen/internal/port"
	"volumegen/internal/tabular"
	"volumegen/internal/volume"
	"volumegen/mocks"
)

const source = "https://example.com/products.csv"

func textParser(t *testing.T) port.TableParser {
	t.Helper()
	p, err := tabular.NewParser(tabular.Options{
		Format:              domain.SourceFormatAuto,
		Delimiter:           ';',
		Encodings:           []string{"utf-8-sig", "windows-1250"},
		DetectEncoding:      true,
		DetectMinConfidence: 50,
		LossyEncoding:       "utf-8",
	})
	require.NoError(t, err)
	return p
}

func fetcherFor(body string) *mocks.MockFetcher {
	f := new(mocks.MockFetcher)
	f.On("Fetch", mock.Anything, source).
		Return(&domain.RawDocument{Body: []byte(body), Source: source, ContentType: "text/csv"}, nil)
	return f
}

// captureSink records what the pipeline writes.
func captureSink(written *[]byte) *mocks.MockOutputSink {
	s := new(mocks.MockOutputSink)
	s.On("Name").Return("capture")
	s.On("Write", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { *written = args.Get(1).([]byte) }).
		Return(nil)
	return s
}

func defaultConfig(filter bool) pipeline.Config {
	return pipeline.Config{
		Source:     source,
		Aliases:    columns.DefaultAliases,
		Policy:     volume.Policy{Unit: domain.UnitCubicCentimeter, Decimal: ',', Filter: filter},
		Projection: domain.ProjectionCompact,
	}
}

func TestRun_ShelfEndToEnd(t *testing.T) {
	var written []byte
	sink := captureSink(&written)
	collector := metrics.NewCollector()

	p := pipeline.New(fetcherFor("name;height;depth;width\nShelf;30,5;40,0;120,0\n"),
		textParser(t), []port.OutputSink{sink}, collector, defaultConfig(true))

	report, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "[\n  {\n    \"name\": \"Shelf\",\n    \"volume\": 146400\n  }\n]\n", string(written))
	assert.Equal(t, domain.SourceFormatCSV, report.Format)
	assert.Equal(t, 1, report.RowsParsed)
	assert.Equal(t, 1, report.RowsWritten)
	assert.Zero(t, report.RowsDropped)
	assert.Empty(t, report.Missing)
	assert.Equal(t, "width", report.Resolved[domain.DimensionWidth])
	assert.Equal(t, []string{"capture"}, report.Sinks)

	expected := `
# HELP volumegen_rows_written Records written to the output document.
# TYPE volumegen_rows_written gauge
volumegen_rows_written 1
`
	assert.NoError(t, testutil.GatherAndCompare(collector.Registry(), strings.NewReader(expected), "volumegen_rows_written"))
	sink.AssertExpectations(t)
}

const twoRows = "Název;Šířka;Výška;Hloubka\nShelf;120;30,5;40\nBroken;0;10;10\n"

func TestRun_FilterDropsZeroDimension(t *testing.T) {
	var written []byte
	p := pipeline.New(fetcherFor(twoRows), textParser(t),
		[]port.OutputSink{captureSink(&written)}, nil, defaultConfig(true))

	report, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.RowsParsed)
	assert.Equal(t, 1, report.RowsDropped)
	assert.Equal(t, 1, report.RowsWritten)
	assert.NotContains(t, string(written), "Broken")
}

func TestRun_FilterDisabledKeepsZeroVolume(t *testing.T) {
	var written []byte
	p := pipeline.New(fetcherFor(twoRows), textParser(t),
		[]port.OutputSink{captureSink(&written)}, nil, defaultConfig(false))

	report, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.RowsWritten)
	assert.Contains(t, string(written), "\"name\": \"Broken\",\n    \"volume\": 0\n")
}

func TestRun_UnresolvedColumnsYieldEmptyArray(t *testing.T) {
	var written []byte
	p := pipeline.New(fetcherFor("sku;price\nA-1;10\n"), textParser(t),
		[]port.OutputSink{captureSink(&written)}, nil, defaultConfig(true))

	report, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "[]\n", string(written))
	assert.ElementsMatch(t, domain.AllDimensions, report.Missing)
	assert.Equal(t, 1, report.RowsDropped)
}

func TestRun_FetchErrorStopsPipeline(t *testing.T) {
	f := new(mocks.MockFetcher)
	f.On("Fetch", mock.Anything, source).
		Return(nil, &fetch.Error{Source: source, StatusCode: 404, Err: errors.New("not found")})
	parser := new(mocks.MockTableParser)
	sink := new(mocks.MockOutputSink)

	_, err := pipeline.New(f, parser, []port.OutputSink{sink}, nil, defaultConfig(true)).Run(context.Background())

	var fErr *fetch.Error
	require.True(t, errors.As(err, &fErr))
	assert.Equal(t, 404, fErr.StatusCode)
	parser.AssertNotCalled(t, "Parse", mock.Anything, mock.Anything)
	sink.AssertNotCalled(t, "Write", mock.Anything, mock.Anything)
}

func TestRun_ParseErrorWritesNothing(t *testing.T) {
	sink := new(mocks.MockOutputSink)

	// A comma-delimited file never yields more than one column.
	p := pipeline.New(fetcherFor("name,height,depth,width\nShelf,30,40,120\n"), textParser(t),
		[]port.OutputSink{sink}, nil, defaultConfig(true))

	_, err := p.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrParse))

	var pErr *tabular.ParseError
	require.True(t, errors.As(err, &pErr))
	assert.NotEmpty(t, pErr.Attempts)
	sink.AssertNotCalled(t, "Write", mock.Anything, mock.Anything)
}

func TestRun_SinkErrorIsOutputError(t *testing.T) {
	sink := new(mocks.MockOutputSink)
	sink.On("Name").Return("file:volumes.json")
	sink.On("Write", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	p := pipeline.New(fetcherFor("name;height;depth;width\nShelf;30,5;40,0;120,0\n"), textParser(t),
		[]port.OutputSink{sink}, nil, defaultConfig(true))

	_, err := p.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrOutput))
	assert.Contains(t, err.Error(), "disk full")
}

func TestRun_WritesEverySinkInOrder(t *testing.T) {
	var first, second []byte
	s1 := captureSink(&first)
	s2 := new(mocks.MockOutputSink)
	s2.On("Name").Return("second")
	s2.On("Write", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { second = args.Get(1).([]byte) }).
		Return(nil)

	p := pipeline.New(fetcherFor("name;height;depth;width\nShelf;30,5;40,0;120,0\n"), textParser(t),
		[]port.OutputSink{s1, s2}, nil, defaultConfig(true))

	report, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{"capture", "second"}, report.Sinks)
}

func TestRun_UsesMockParserOutput(t *testing.T) {
	parser := new(mocks.MockTableParser)
	parser.On("Parse", mock.Anything, mock.MatchedBy(func(in port.ParseInput) bool {
		return in.Source == source && in.ContentType == "text/csv"
	})).Return(&port.ParseOutput{
		Frame: &domain.Frame{
			Columns: []string{"Produkt", "Breite", "Höhe", "Tiefe"},
			Rows:    [][]string{{"Regal", "100", "200", "50"}},
		},
		Format:      domain.SourceFormatXLSX,
		SkippedRows: 2,
	}, nil)

	var written []byte
	cfg := defaultConfig(true)
	cfg.Policy.Unit = domain.UnitLiter
	p := pipeline.New(fetcherFor("ignored"), parser, []port.OutputSink{captureSink(&written)}, nil, cfg)

	report, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.SourceFormatXLSX, report.Format)
	assert.Equal(t, 2, report.RowsSkipped)
	assert.Contains(t, string(written), "\"volume\": 1000")
	parser.AssertExpectations(t)
}

func TestRun_CSVSinkReceivesCSV(t *testing.T) {
	var jsonOut, csvOut []byte
	csvSink := new(mocks.MockOutputSink)
	csvSink.On("Name").Return("file:volumes.csv")
	csvSink.On("Write", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { csvOut = args.Get(1).([]byte) }).
		Return(nil)

	cfg := defaultConfig(true)
	cfg.CSV = output.CSVOptions{Delimiter: ';', Decimal: ','}
	p := pipeline.New(fetcherFor("name;height;depth;width\nShelf;30,5;40,0;120,0\n"), textParser(t),
		[]port.OutputSink{captureSink(&jsonOut)}, nil, cfg).WithCSVSinks(csvSink)

	report, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, string(output.BOM)+"name;volume\nShelf;146400\n", string(csvOut))
	assert.Equal(t, []string{"capture", "file:volumes.csv"}, report.Sinks)
}
