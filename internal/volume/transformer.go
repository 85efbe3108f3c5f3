// Package volume computes product volumes from resolved dimension columns and
// filters out records that cannot carry a meaningful volume.
package volume

import (
	"math"

	"volumegen/internal/columns"
	"volumegen/internal/domain"
)

// Policy controls the transform and filter stages.
type Policy struct {
	Unit    domain.Unit
	Decimal rune
	Filter  bool
}

// Divisor returns the fixed unit divisor, defaulting to cm3.
func (p Policy) Divisor() float64 {
	if d, ok := domain.UnitDivisors[p.Unit]; ok {
		return d
	}
	return 1
}

// Transform builds one record per frame row, in frame order. When any of the
// three dimension columns is unresolved every Volume is nil; no partial
// product is ever computed. Otherwise missing or invalid cells count as zero,
// and a product that overflows float64 leaves Volume nil.
func Transform(frame *domain.Frame, res columns.Resolution, policy Policy) []domain.ProductRecord {
	decimal := policy.Decimal
	if decimal == 0 {
		decimal = ','
	}
	divisor := policy.Divisor()

	index := make(map[domain.Dimension]int, len(domain.AllDimensions))
	for _, dim := range domain.AllDimensions {
		if col, ok := res.Column(dim); ok {
			index[dim] = frame.ColumnIndex(col)
		}
	}
	computable := res.HasDimensions()

	cell := func(row []string, dim domain.Dimension) *float64 {
		i, ok := index[dim]
		if !ok || i < 0 || i >= len(row) {
			return nil
		}
		v, ok := ParseNumber(row[i], decimal)
		if !ok {
			return nil
		}
		return &v
	}

	records := make([]domain.ProductRecord, 0, len(frame.Rows))
	for _, row := range frame.Rows {
		rec := domain.ProductRecord{
			Width:  cell(row, domain.DimensionWidth),
			Height: cell(row, domain.DimensionHeight),
			Depth:  cell(row, domain.DimensionDepth),
			Fields: make([]domain.Field, len(frame.Columns)),
		}
		if i, ok := index[domain.DimensionName]; ok && i >= 0 && i < len(row) {
			rec.Name = row[i]
		}
		for i, c := range frame.Columns {
			if i < len(row) {
				rec.Fields[i] = domain.Field{Name: c, Value: row[i]}
			}
		}
		if computable {
			v := valueOrZero(rec.Width) * valueOrZero(rec.Height) * valueOrZero(rec.Depth) / divisor
			// An overflowing product has no meaningful volume.
			if !math.IsInf(v, 0) && !math.IsNaN(v) {
				rec.Volume = &v
			}
		}
		records = append(records, rec)
	}
	return records
}

// Keep reports whether a record survives the filter: a positive volume and
// three positive source dimensions.
func Keep(rec domain.ProductRecord) bool {
	return positive(rec.Volume) && positive(rec.Width) && positive(rec.Height) && positive(rec.Depth)
}

// Filter returns the records that satisfy Keep, preserving order. It is
// idempotent: Filter(Filter(x)) equals Filter(x).
func Filter(records []domain.ProductRecord) []domain.ProductRecord {
	out := make([]domain.ProductRecord, 0, len(records))
	for _, rec := range records {
		if Keep(rec) {
			out = append(out, rec)
		}
	}
	return out
}

func positive(v *float64) bool {
	return v != nil && *v > 0
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
