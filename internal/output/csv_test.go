package output_test

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volumegen/internal/domain"
	"volumegen/internal/output"
)

func readCSV(t *testing.T, data []byte, comma rune) [][]string {
	t.Helper()
	require.True(t, bytes.HasPrefix(data, output.BOM))
	r := csv.NewReader(bytes.NewReader(data[len(output.BOM):]))
	r.Comma = comma
	rows, err := r.ReadAll()
	require.NoError(t, err)
	return rows
}

func TestEncodeCSV_CompactWithDecimalComma(t *testing.T) {
	records := []domain.ProductRecord{
		{Name: "Shelf", Volume: ptr(146400)},
		{Name: "Box", Volume: ptr(0.25)},
		{Name: "Unknown"},
	}

	data, err := output.EncodeCSV(records, domain.ProjectionCompact, output.CSVOptions{Delimiter: ';', Decimal: ','})
	require.NoError(t, err)

	rows := readCSV(t, data, ';')
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"name", "volume"}, rows[0])
	assert.Equal(t, []string{"Shelf", "146400"}, rows[1])
	assert.Equal(t, []string{"Box", "0,25"}, rows[2])
	assert.Equal(t, []string{"Unknown", ""}, rows[3])
}

func TestEncodeCSV_FullProjection(t *testing.T) {
	records := []domain.ProductRecord{{
		Name:   "Shelf",
		Volume: ptr(1.5),
		Fields: []domain.Field{
			{Name: "SKU", Value: "A-1"},
			{Name: "Název", Value: "Shelf; oak"},
		},
	}}

	data, err := output.EncodeCSV(records, domain.ProjectionFull, output.CSVOptions{})
	require.NoError(t, err)

	rows := readCSV(t, data, ',')
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"SKU", "Název", "volume"}, rows[0])
	assert.Equal(t, []string{"A-1", "Shelf; oak", "1.5"}, rows[1])
}

func TestEncodeCSV_EmptyStillHasHeader(t *testing.T) {
	data, err := output.EncodeCSV(nil, domain.ProjectionFull, output.CSVOptions{Delimiter: ';'})
	require.NoError(t, err)

	rows := readCSV(t, data, ';')
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"volume"}, rows[0])
}
