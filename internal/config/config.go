package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Layers    LayersConfig    `yaml:"layers" mapstructure:"layers"`
	Selection SelectionConfig `yaml:"selection" mapstructure:"selection"`
	View      ViewConfig      `yaml:"view" mapstructure:"view"`
	Fetch     FetchConfig     `yaml:"fetch" mapstructure:"fetch"`
	Summary   SummaryConfig   `yaml:"summary" mapstructure:"summary"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// LayersConfig describes where the region and point layers are loaded from.
type LayersConfig struct {
	Regions RegionSourceConfig `yaml:"regions" mapstructure:"regions"`
	Points  PointSourceConfig  `yaml:"points" mapstructure:"points"`
}

// RegionSourceConfig configures the polygon layer source.
type RegionSourceConfig struct {
	Source       string `yaml:"source" mapstructure:"source"`
	Format       string `yaml:"format" mapstructure:"format"`
	NameProperty string `yaml:"name_property" mapstructure:"name_property"`
}

// PointSourceConfig configures the optional point layer source. An empty
// Source disables the layer.
type PointSourceConfig struct {
	Source       string `yaml:"source" mapstructure:"source"`
	Format       string `yaml:"format" mapstructure:"format"`
	NameProperty string `yaml:"name_property" mapstructure:"name_property"`
	LonColumn    string `yaml:"lon_column" mapstructure:"lon_column"`
	LatColumn    string `yaml:"lat_column" mapstructure:"lat_column"`
}

// SelectionConfig holds the display constants of the selection widget.
type SelectionConfig struct {
	AccentName   string `yaml:"accent_name" mapstructure:"accent_name"`
	FallbackName string `yaml:"fallback_name" mapstructure:"fallback_name"`
}

// ViewConfig holds the initial map view.
type ViewConfig struct {
	CenterLon float64 `yaml:"center_lon" mapstructure:"center_lon"`
	CenterLat float64 `yaml:"center_lat" mapstructure:"center_lat"`
	Zoom      float64 `yaml:"zoom" mapstructure:"zoom"`
}

// FetchConfig configures the one-time layer download.
type FetchConfig struct {
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int     `yaml:"max_retries" mapstructure:"max_retries"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	TempDir     string  `yaml:"temp_dir" mapstructure:"temp_dir"`
}

// SummaryConfig configures the per-region summary.
type SummaryConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// CacheConfig configures the rendered layer cache.
type CacheConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("KOMMUNE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("layers.regions.source", "geojson/kommuner.geojson")
	v.SetDefault("layers.regions.format", "geojson")
	v.SetDefault("layers.regions.name_property", "name")
	v.SetDefault("layers.points.source", "geojson/skoler.geojson")
	v.SetDefault("layers.points.format", "geojson")
	v.SetDefault("layers.points.name_property", "navn")
	v.SetDefault("layers.points.lon_column", "lon")
	v.SetDefault("layers.points.lat_column", "lat")
	v.SetDefault("selection.accent_name", "Bærum")
	v.SetDefault("selection.fallback_name", "her er det ikke noe")
	v.SetDefault("view.center_lon", 9.7)
	v.SetDefault("view.center_lat", 59.9)
	v.SetDefault("view.zoom", 7.1)
	v.SetDefault("fetch.user_agent", "kommune-map/1.0")
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.rate_per_sec", 5.0)
	v.SetDefault("fetch.temp_dir", "/tmp/kommune-map")
	v.SetDefault("summary.concurrency", 8)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("cache.enabled", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

// Validate checks the fields required by the given command mode.
// Supported modes: "serve", "select", "summary".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "serve", "select", "summary":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Layers.Regions.Source == "" {
		errs = append(errs, "layers.regions.source is required")
	}
	switch strings.ToLower(c.Layers.Regions.Format) {
	case "geojson":
	case "shapefile":
		if remoteSource(c.Layers.Regions.Source) && !strings.HasSuffix(strings.ToLower(c.Layers.Regions.Source), ".zip") {
			errs = append(errs, "layers.regions.source must be a .zip for a remote shapefile")
		}
	default:
		errs = append(errs, "layers.regions.format must be geojson or shapefile")
	}
	if c.Layers.Points.Source != "" {
		switch strings.ToLower(c.Layers.Points.Format) {
		case "geojson", "csv":
		default:
			errs = append(errs, "layers.points.format must be geojson or csv")
		}
	}

	switch mode {
	case "serve":
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
	case "summary":
		if c.Summary.Concurrency < 1 || c.Summary.Concurrency > 64 {
			errs = append(errs, "summary.concurrency must be between 1 and 64")
		}
	}

	if len(errs) > 0 {
		return eris.New("config: " + strings.Join(errs, "; "))
	}
	return nil
}

// remoteSource reports whether source is fetched over the network.
func remoteSource(source string) bool {
	scheme, _, ok := strings.Cut(source, "://")
	return ok && !strings.EqualFold(scheme, "file")
}
