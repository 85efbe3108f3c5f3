package domain

// Dimension is a canonical column key resolved from a catalog header.
type Dimension string

const (
	DimensionName   Dimension = "name"
	DimensionWidth  Dimension = "width"
	DimensionHeight Dimension = "height"
	DimensionDepth  Dimension = "depth"
)

// VolumeDimensions are the three factors of the volume product, in the order
// the catalog traditionally lists them.
var VolumeDimensions = []Dimension{DimensionHeight, DimensionDepth, DimensionWidth}

// AllDimensions lists every dimension the column resolver looks for.
var AllDimensions = []Dimension{DimensionName, DimensionWidth, DimensionHeight, DimensionDepth}

// SourceFormat selects how the raw document is interpreted.
type SourceFormat string

const (
	SourceFormatAuto SourceFormat = "auto"
	SourceFormatCSV  SourceFormat = "csv"
	SourceFormatXLSX SourceFormat = "xlsx"
)

// AllowedSourceFormats is the set of accepted source.format values.
var AllowedSourceFormats = map[SourceFormat]bool{
	SourceFormatAuto: true,
	SourceFormatCSV:  true,
	SourceFormatXLSX: true,
}

// Projection selects the shape of each output record.
type Projection string

const (
	// ProjectionCompact emits {"name", "volume"} only. This is the stable contract.
	ProjectionCompact Projection = "compact"
	// ProjectionFull emits every source column followed by "volume".
	ProjectionFull Projection = "full"
)

// AllowedProjections is the set of accepted output.projection values.
var AllowedProjections = map[Projection]bool{
	ProjectionCompact: true,
	ProjectionFull:    true,
}

// Unit is the output unit of the volume field. Source dimensions are assumed
// to be centimeters.
type Unit string

const (
	UnitCubicCentimeter Unit = "cm3"
	UnitLiter           Unit = "l"
	UnitCubicMeter      Unit = "m3"
)

// UnitDivisors maps each unit to the fixed divisor applied to the raw
// width*height*depth product.
var UnitDivisors = map[Unit]float64{
	UnitCubicCentimeter: 1,
	UnitLiter:           1_000,
	UnitCubicMeter:      1_000_000,
}
