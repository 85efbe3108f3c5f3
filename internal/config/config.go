package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"volumegen/internal/domain"
)

// Config holds all application configuration.
type Config struct {
	Source  SourceConfig
	Fetch   FetchConfig
	Columns ColumnsConfig
	Volume  VolumeConfig
	Filter  FilterConfig
	Output  OutputConfig
	S3      S3Config
	Metrics MetricsConfig
	Log     LogConfig
}

// SourceConfig describes where the catalog lives and how to read it.
type SourceConfig struct {
	URL                 string              `mapstructure:"url"`
	Format              domain.SourceFormat `mapstructure:"format"`
	Delimiter           string              `mapstructure:"delimiter"`
	Decimal             string              `mapstructure:"decimal"`
	Encodings           []string            `mapstructure:"encodings"`
	DetectEncoding      bool                `mapstructure:"detect_encoding"`
	DetectMinConfidence int                 `mapstructure:"detect_min_confidence"`
	LossyEncoding       string              `mapstructure:"lossy_encoding"`
	Sheet               string              `mapstructure:"sheet"`
}

// FetchConfig holds download settings.
type FetchConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
	RawPath string        `mapstructure:"raw_path"`
}

// ColumnsConfig holds extra header aliases appended to the built-in table.
type ColumnsConfig struct {
	NameAliases   []string `mapstructure:"name_aliases"`
	WidthAliases  []string `mapstructure:"width_aliases"`
	HeightAliases []string `mapstructure:"height_aliases"`
	DepthAliases  []string `mapstructure:"depth_aliases"`
}

// Extra returns the configured aliases keyed by dimension.
func (c *ColumnsConfig) Extra() map[domain.Dimension][]string {
	return map[domain.Dimension][]string{
		domain.DimensionName:   c.NameAliases,
		domain.DimensionWidth:  c.WidthAliases,
		domain.DimensionHeight: c.HeightAliases,
		domain.DimensionDepth:  c.DepthAliases,
	}
}

// VolumeConfig selects the output unit.
type VolumeConfig struct {
	Unit domain.Unit `mapstructure:"unit"`
}

// FilterConfig toggles the post-computation row filter.
type FilterConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// OutputConfig describes where the JSON document is written.
type OutputConfig struct {
	Path       string            `mapstructure:"path"`
	CreateDir  bool              `mapstructure:"create_dir"`
	Projection domain.Projection `mapstructure:"projection"`
	CSVPath    string            `mapstructure:"csv_path"`
	S3Bucket   string            `mapstructure:"s3_bucket"`
	S3Key      string            `mapstructure:"s3_key"`
}

// S3Config holds AWS S3 settings used for s3:// sources and output uploads.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// MetricsConfig holds Prometheus Pushgateway settings.
type MetricsConfig struct {
	PushgatewayURL string `mapstructure:"pushgateway_url"`
	Job            string `mapstructure:"job"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Debug reports whether debug logging is enabled.
func (l *LogConfig) Debug() bool {
	return strings.EqualFold(l.Level, "debug")
}

// ValidationError reports a configuration value outside its allowed set.
type ValidationError struct {
	Key   string
	Value string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid value %q for %s", e.Value, e.Key)
}

// flagBindings maps command-line flag names to config keys.
var flagBindings = map[string]string{
	"source":     "source.url",
	"format":     "source.format",
	"output":     "output.path",
	"projection": "output.projection",
	"csv":        "output.csv_path",
	"unit":       "volume.unit",
	"log-level":  "log.level",
}

// Load reads configuration from environment variables with the VOLUMEGEN_ prefix.
func Load() (*Config, error) {
	return LoadWithFlags(nil)
}

// LoadWithFlags reads configuration like Load and lets set flags override it.
// A .env file in the working directory is loaded first when present.
func LoadWithFlags(flags *pflag.FlagSet) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("VOLUMEGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Source defaults
	v.SetDefault("source.url", "")
	v.SetDefault("source.format", string(domain.SourceFormatAuto))
	v.SetDefault("source.delimiter", ";")
	v.SetDefault("source.decimal", ",")
	v.SetDefault("source.encodings", "utf-8-sig,windows-1250,iso-8859-2,windows-1252")
	v.SetDefault("source.detect_encoding", true)
	v.SetDefault("source.detect_min_confidence", 50)
	v.SetDefault("source.lossy_encoding", "utf-8")
	v.SetDefault("source.sheet", "")

	// Fetch defaults
	v.SetDefault("fetch.timeout", "60s")
	v.SetDefault("fetch.raw_path", "")

	// Column alias extensions
	v.SetDefault("columns.name_aliases", "")
	v.SetDefault("columns.width_aliases", "")
	v.SetDefault("columns.height_aliases", "")
	v.SetDefault("columns.depth_aliases", "")

	v.SetDefault("volume.unit", string(domain.UnitCubicCentimeter))
	v.SetDefault("filter.enabled", true)

	// Output defaults
	v.SetDefault("output.path", "volumes.json")
	v.SetDefault("output.create_dir", true)
	v.SetDefault("output.projection", string(domain.ProjectionCompact))
	v.SetDefault("output.csv_path", "")
	v.SetDefault("output.s3_bucket", "")
	v.SetDefault("output.s3_key", "volumes.json")

	// S3 defaults
	v.SetDefault("s3.region", "eu-central-1")
	v.SetDefault("s3.endpoint", "")

	// Metrics defaults
	v.SetDefault("metrics.pushgateway_url", "")
	v.SetDefault("metrics.job", "volumegen")

	v.SetDefault("log.level", "info")

	// Bind environment variables explicitly for nested keys.
	// CSV_URL is the name the scheduled workflow has always exported.
	envBindings := map[string][]string{
		"source.url":                   {"VOLUMEGEN_SOURCE_URL", "CSV_URL"},
		"source.format":                {"VOLUMEGEN_SOURCE_FORMAT"},
		"source.delimiter":             {"VOLUMEGEN_SOURCE_DELIMITER"},
		"source.decimal":               {"VOLUMEGEN_SOURCE_DECIMAL"},
		"source.encodings":             {"VOLUMEGEN_SOURCE_ENCODINGS"},
		"source.detect_encoding":       {"VOLUMEGEN_SOURCE_DETECT_ENCODING"},
		"source.detect_min_confidence": {"VOLUMEGEN_SOURCE_DETECT_MIN_CONFIDENCE"},
		"source.lossy_encoding":        {"VOLUMEGEN_SOURCE_LOSSY_ENCODING"},
		"source.sheet":                 {"VOLUMEGEN_SOURCE_SHEET"},
		"fetch.timeout":                {"VOLUMEGEN_FETCH_TIMEOUT"},
		"fetch.raw_path":               {"VOLUMEGEN_FETCH_RAW_PATH"},
		"columns.name_aliases":         {"VOLUMEGEN_COLUMNS_NAME_ALIASES"},
		"columns.width_aliases":        {"VOLUMEGEN_COLUMNS_WIDTH_ALIASES"},
		"columns.height_aliases":       {"VOLUMEGEN_COLUMNS_HEIGHT_ALIASES"},
		"columns.depth_aliases":        {"VOLUMEGEN_COLUMNS_DEPTH_ALIASES"},
		"volume.unit":                  {"VOLUMEGEN_VOLUME_UNIT"},
		"filter.enabled":               {"VOLUMEGEN_FILTER_ENABLED"},
		"output.path":                  {"VOLUMEGEN_OUTPUT_PATH"},
		"output.create_dir":            {"VOLUMEGEN_OUTPUT_CREATE_DIR"},
		"output.projection":            {"VOLUMEGEN_OUTPUT_PROJECTION"},
		"output.csv_path":              {"VOLUMEGEN_OUTPUT_CSV_PATH"},
		"output.s3_bucket":             {"VOLUMEGEN_OUTPUT_S3_BUCKET"},
		"output.s3_key":                {"VOLUMEGEN_OUTPUT_S3_KEY"},
		"s3.region":                    {"VOLUMEGEN_S3_REGION"},
		"s3.endpoint":                  {"VOLUMEGEN_S3_ENDPOINT"},
		"s3.access_key":                {"VOLUMEGEN_S3_ACCESS_KEY"},
		"s3.secret_key":                {"VOLUMEGEN_S3_SECRET_KEY"},
		"metrics.pushgateway_url":      {"VOLUMEGEN_METRICS_PUSHGATEWAY_URL"},
		"metrics.job":                  {"VOLUMEGEN_METRICS_JOB"},
		"log.level":                    {"VOLUMEGEN_LOG_LEVEL"},
	}
	for key, envs := range envBindings {
		_ = v.BindEnv(append([]string{key}, envs...)...)
	}

	if flags != nil {
		for name, key := range flagBindings {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag %s: %w", name, err)
				}
			}
		}
		if f := flags.Lookup("no-filter"); f != nil && f.Changed {
			v.Set("filter.enabled", f.Value.String() != "true")
		}
	}

	cfg := &Config{}
	cfg.Source = SourceConfig{
		URL:                 strings.TrimSpace(v.GetString("source.url")),
		Format:              domain.SourceFormat(strings.ToLower(v.GetString("source.format"))),
		Delimiter:           v.GetString("source.delimiter"),
		Decimal:             v.GetString("source.decimal"),
		Encodings:           splitList(v.GetString("source.encodings")),
		DetectEncoding:      v.GetBool("source.detect_encoding"),
		DetectMinConfidence: v.GetInt("source.detect_min_confidence"),
		LossyEncoding:       strings.TrimSpace(v.GetString("source.lossy_encoding")),
		Sheet:               v.GetString("source.sheet"),
	}
	cfg.Fetch = FetchConfig{
		Timeout: v.GetDuration("fetch.timeout"),
		RawPath: v.GetString("fetch.raw_path"),
	}
	cfg.Columns = ColumnsConfig{
		NameAliases:   splitList(v.GetString("columns.name_aliases")),
		WidthAliases:  splitList(v.GetString("columns.width_aliases")),
		HeightAliases: splitList(v.GetString("columns.height_aliases")),
		DepthAliases:  splitList(v.GetString("columns.depth_aliases")),
	}
	cfg.Volume = VolumeConfig{
		Unit: domain.Unit(strings.ToLower(v.GetString("volume.unit"))),
	}
	cfg.Filter = FilterConfig{
		Enabled: v.GetBool("filter.enabled"),
	}
	cfg.Output = OutputConfig{
		Path:       v.GetString("output.path"),
		CreateDir:  v.GetBool("output.create_dir"),
		Projection: domain.Projection(strings.ToLower(v.GetString("output.projection"))),
		CSVPath:    v.GetString("output.csv_path"),
		S3Bucket:   v.GetString("output.s3_bucket"),
		S3Key:      v.GetString("output.s3_key"),
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
	}
	cfg.Metrics = MetricsConfig{
		PushgatewayURL: v.GetString("metrics.pushgateway_url"),
		Job:            v.GetString("metrics.job"),
	}
	cfg.Log = LogConfig{
		Level: v.GetString("log.level"),
	}

	return cfg, nil
}

// Validate checks required values and enum membership. It performs no I/O.
func (c *Config) Validate() error {
	if c.Source.URL == "" {
		return domain.ErrMissingSourceURL
	}
	if !domain.AllowedSourceFormats[c.Source.Format] {
		return &ValidationError{Key: "source.format", Value: string(c.Source.Format)}
	}
	if len([]rune(c.Source.Delimiter)) != 1 {
		return &ValidationError{Key: "source.delimiter", Value: c.Source.Delimiter}
	}
	if len([]rune(c.Source.Decimal)) != 1 {
		return &ValidationError{Key: "source.decimal", Value: c.Source.Decimal}
	}
	if _, ok := domain.UnitDivisors[c.Volume.Unit]; !ok {
		return &ValidationError{Key: "volume.unit", Value: string(c.Volume.Unit)}
	}
	if !domain.AllowedProjections[c.Output.Projection] {
		return &ValidationError{Key: "output.projection", Value: string(c.Output.Projection)}
	}
	if c.Output.Path == "" {
		return &ValidationError{Key: "output.path", Value: ""}
	}
	if c.Fetch.Timeout <= 0 {
		return &ValidationError{Key: "fetch.timeout", Value: c.Fetch.Timeout.String()}
	}
	return nil
}

// splitList parses a comma-separated string, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
