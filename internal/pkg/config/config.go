package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration. Loaded once at startup and
// treated as immutable afterwards.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Temporal  TemporalConfig  `mapstructure:"temporal"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Spatial   SpatialConfig   `mapstructure:"spatial"`
	Geohash   GeohashConfig   `mapstructure:"geohash"`
	Optimizer OptimizerConfig `mapstructure:"optimizer"`
	Events    EventsConfig    `mapstructure:"events"`
}

type ServerConfig struct {
	Port          int `mapstructure:"port"`
	ReadTimeout   int `mapstructure:"read_timeout"`
	WriteTimeout  int `mapstructure:"write_timeout"`
	AssessTimeout int `mapstructure:"assess_timeout"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type TemporalConfig struct {
	HostPort  string `mapstructure:"host_port"`
	TaskQueue string `mapstructure:"task_queue"`
	FeedURL   string `mapstructure:"feed_url"`
	Cron      string `mapstructure:"cron"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

// SpatialConfig names the logical partitions of the two stores.
type SpatialConfig struct {
	DataTable   string `mapstructure:"data_table"`
	RoutesTable string `mapstructure:"routes_table"`
}

// GeohashConfig carries the three key precisions.
type GeohashConfig struct {
	PartitionKeyPrecision int `mapstructure:"partition_key_precision"`
	SortKeyPrecision      int `mapstructure:"sort_key_precision"`
	GSIPrecision          int `mapstructure:"gsi_precision"`
}

// OptimizerConfig tunes the route search and the worker driving it.
type OptimizerConfig struct {
	StepMeters        float64 `mapstructure:"step_meters"`
	AngleRangeDeg     float64 `mapstructure:"angle_range_deg"`
	Fan               int     `mapstructure:"fan"`
	MaxDeviationRatio float64 `mapstructure:"max_deviation_ratio"`
	DeadlineSeconds   int     `mapstructure:"deadline_seconds"`
	MaxRecordAgeSecs  int     `mapstructure:"max_record_age_seconds"`
}

// EventsConfig holds the notification-sink endpoint credentials.
type EventsConfig struct {
	HTTPDomain string `mapstructure:"http_domain"`
	APIKey     string `mapstructure:"api_key"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.assess_timeout", 30)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "hegaldi")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "hegaldi")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.task_queue", "wx-ingest-queue")
	v.SetDefault("temporal.feed_url", "https://aviationweather.gov/api/data/metar?format=xml")
	v.SetDefault("temporal.cron", "*/30 * * * *")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", true)
	v.SetDefault("spatial.data_table", "geopoints")
	v.SetDefault("spatial.routes_table", "routes")
	v.SetDefault("geohash.partition_key_precision", 5)
	v.SetDefault("geohash.sort_key_precision", 8)
	v.SetDefault("geohash.gsi_precision", 4)
	v.SetDefault("optimizer.step_meters", 1000)
	v.SetDefault("optimizer.angle_range_deg", 30)
	v.SetDefault("optimizer.fan", 10)
	v.SetDefault("optimizer.max_deviation_ratio", 0.20)
	v.SetDefault("optimizer.deadline_seconds", 300)
	v.SetDefault("optimizer.max_record_age_seconds", 300)
	v.SetDefault("events.http_domain", "")
	v.SetDefault("events.api_key", "")

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: HEGALDI_EVENTS_HTTP_DOMAIN → events.http_domain
	v.SetEnvPrefix("HEGALDI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Database.Host == "" {
		errs = append(errs, "database.host is required")
	}
	if c.Database.User == "" {
		errs = append(errs, "database.user is required")
	}
	if c.Database.DBName == "" {
		errs = append(errs, "database.dbname is required")
	}
	if c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Spatial.DataTable == "" {
		errs = append(errs, "spatial.data_table is required")
	}
	if c.Spatial.RoutesTable == "" {
		errs = append(errs, "spatial.routes_table is required")
	}
	if c.Geohash.PartitionKeyPrecision <= 0 || c.Geohash.PartitionKeyPrecision > 12 {
		errs = append(errs, fmt.Sprintf("geohash.partition_key_precision must be 1-12, got %d", c.Geohash.PartitionKeyPrecision))
	}
	if c.Geohash.SortKeyPrecision < c.Geohash.PartitionKeyPrecision {
		errs = append(errs, "geohash.sort_key_precision must be at least the partition precision")
	}
	if c.Geohash.GSIPrecision <= 0 || c.Geohash.GSIPrecision > c.Geohash.PartitionKeyPrecision {
		errs = append(errs, "geohash.gsi_precision must be positive and no finer than the partition precision")
	}
	if c.Optimizer.StepMeters <= 0 {
		errs = append(errs, "optimizer.step_meters must be positive")
	}
	if c.Optimizer.Fan < 2 {
		errs = append(errs, "optimizer.fan must be at least 2")
	}
	if c.Optimizer.MaxDeviationRatio < 0 {
		errs = append(errs, "optimizer.max_deviation_ratio must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
