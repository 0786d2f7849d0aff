// Package config loads settings for the destinations CLI from defaults, an
// optional YAML file, a .env file and the environment, in increasing order of
// precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. DESTINATIONS_CACHE_BACKEND.
const EnvPrefix = "DESTINATIONS"

// Cache backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config is the full settings tree.
type Config struct {
	LogLevel      string              `mapstructure:"log_level"`
	Cache         CacheConfig         `mapstructure:"cache"`
	HTTP          HTTPConfig          `mapstructure:"http"`
	Dedup         DedupConfig         `mapstructure:"dedup"`
	Enrichment    EnrichmentConfig    `mapstructure:"enrichment"`
	GeoDB         GeoDBConfig         `mapstructure:"geodb"`
	RestCountries RestCountriesConfig `mapstructure:"restcountries"`
	Nominatim     NominatimConfig     `mapstructure:"nominatim"`
	Unsplash      UnsplashConfig      `mapstructure:"unsplash"`
	Images        ImagesConfig        `mapstructure:"images"`
	Metrics       MetricsConfig       `mapstructure:"metrics"`
}

// CacheConfig selects and tunes the durable store.
type CacheConfig struct {
	Backend    string        `mapstructure:"backend"`
	TTL        time.Duration `mapstructure:"ttl"`
	MaxEntries int           `mapstructure:"max_entries"`
	SQLitePath string        `mapstructure:"sqlite_path"`
	Redis      RedisConfig   `mapstructure:"redis"`
}

// RedisConfig holds the redis backend connection.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	MaxAge   time.Duration `mapstructure:"max_age"`
}

// HTTPConfig applies to every provider call.
type HTTPConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

// DedupConfig bounds shared computations.
type DedupConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// EnrichmentConfig bounds enrichment fan-out.
type EnrichmentConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// GeoDBConfig holds the city provider settings.
type GeoDBConfig struct {
	BaseURL           string  `mapstructure:"base_url"`
	APIKey            string  `mapstructure:"api_key"`
	Host              string  `mapstructure:"host"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
}

// RestCountriesConfig holds the country registry settings.
type RestCountriesConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// NominatimConfig holds the geocoder settings.
type NominatimConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// UnsplashConfig holds the photo provider settings.
type UnsplashConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	AccessKey string `mapstructure:"access_key"`
}

// ImagesConfig tunes image resolution.
type ImagesConfig struct {
	PlaceholderBaseURL string        `mapstructure:"placeholder_base_url"`
	PlaceholderWidth   int           `mapstructure:"placeholder_width"`
	PlaceholderHeight  int           `mapstructure:"placeholder_height"`
	MemoTTL            time.Duration `mapstructure:"memo_ttl"`
}

// MetricsConfig controls metric export.
type MetricsConfig struct {
	// TextfilePath, when set, receives a Prometheus text exposition on exit.
	TextfilePath string `mapstructure:"textfile_path"`
}

// legacyEnv maps keys to the environment names the web frontend used, so an
// existing .env keeps working.
var legacyEnv = map[string]string{
	"geodb.base_url":         "VITE_GEODB_BASE_URL",
	"geodb.api_key":          "VITE_GEODB_API_KEY",
	"geodb.host":             "VITE_GEODB_HOST",
	"restcountries.base_url": "VITE_REST_COUNTRIES_BASE_URL",
	"unsplash.access_key":    "VITE_UNSPLASH_ACCESS_KEY",
}

// SetDefaults registers every key with its default value.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")

	v.SetDefault("cache.backend", BackendSQLite)
	v.SetDefault("cache.ttl", 24*time.Hour)
	v.SetDefault("cache.max_entries", 5000)
	v.SetDefault("cache.sqlite_path", "destinations-cache.db")
	v.SetDefault("cache.redis.addr", "localhost:6379")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.max_age", 48*time.Hour)

	v.SetDefault("http.timeout", 10*time.Second)
	v.SetDefault("http.user_agent", "go-destinations/1.0")
	v.SetDefault("dedup.timeout", 30*time.Second)
	v.SetDefault("enrichment.concurrency", 4)

	v.SetDefault("geodb.base_url", "https://wft-geo-db.p.rapidapi.com/v1/geo")
	v.SetDefault("geodb.api_key", "")
	v.SetDefault("geodb.host", "wft-geo-db.p.rapidapi.com")
	v.SetDefault("geodb.requests_per_second", 1.0)
	v.SetDefault("restcountries.base_url", "https://restcountries.com/v3.1")
	v.SetDefault("nominatim.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("unsplash.base_url", "https://api.unsplash.com")
	v.SetDefault("unsplash.access_key", "")

	v.SetDefault("images.placeholder_base_url", "https://loremflickr.com")
	v.SetDefault("images.placeholder_width", 800)
	v.SetDefault("images.placeholder_height", 600)
	v.SetDefault("images.memo_ttl", time.Hour)

	v.SetDefault("metrics.textfile_path", "")
}

// Options controls where Load looks for settings.
type Options struct {
	// ConfigFile is an explicit YAML path; it must exist when set.
	ConfigFile string
	// EnvFile is a dotenv file; a missing file is ignored.
	EnvFile string
}

// Load reads settings into v and returns the decoded Config. Callers may bind
// command-line flags into v before calling Load.
func Load(v *viper.Viper, opts Options) (*Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", opts.EnvFile, err)
		}
	}

	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", opts.ConfigFile, err)
		}
	} else {
		v.SetConfigName("destinations")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that have no safe fallback.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case BackendMemory, BackendSQLite, BackendRedis:
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache ttl must be greater than 0")
	}
	if c.Cache.Backend == BackendSQLite && c.Cache.SQLitePath == "" {
		return fmt.Errorf("sqlite backend requires cache.sqlite_path")
	}
	if c.Cache.Backend == BackendRedis && c.Cache.Redis.Addr == "" {
		return fmt.Errorf("redis backend requires cache.redis.addr")
	}
	return nil
}
