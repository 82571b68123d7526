// config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"bonus-listing-system/logging"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Store drivers
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverBadger   = "badger"
)

// Append modes for newly created bonuses
const (
	AppendAfterKeyed = "after-keyed" // max visible key + 1; unordered legacy records ignored
	AppendAfterAll   = "after-all"   // re-sequence first, then append after every record
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{"config.yaml", "config.yml"}

const ConfigPathEnvVar = "CONFIG_PATH"

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Store    StoreConfig    `koanf:"store"`
	Admin    AdminConfig    `koanf:"admin"`
	Ordering OrderingConfig `koanf:"ordering"`
	Images   ImagesConfig   `koanf:"images"`
	R2       R2Config       `koanf:"r2"`
	Uploads  UploadsConfig  `koanf:"uploads"`
	Log      LogConfig      `koanf:"log"`
}

type ServerConfig struct {
	Port           int      `koanf:"port"`
	AllowedOrigins []string `koanf:"allowed_origins"`
	BodyLimit      int      `koanf:"body_limit"` // bytes
}

type StoreConfig struct {
	Driver     string `koanf:"driver"`
	DSN        string `koanf:"dsn"`
	BadgerPath string `koanf:"badger_path"`
}

type AdminConfig struct {
	Code         string        `koanf:"code"`
	TokenSecret  string        `koanf:"token_secret"`
	TokenTTL     time.Duration `koanf:"token_ttl"`
	CookieSecure bool          `koanf:"cookie_secure"`
}

type OrderingConfig struct {
	AppendMode       string        `koanf:"append_mode"`
	WriteConcurrency int           `koanf:"write_concurrency"`
	RepairInterval   time.Duration `koanf:"repair_interval"` // 0 disables the repair job
}

type ImagesConfig struct {
	Placeholder string `koanf:"placeholder"`
}

type R2Config struct {
	AccountID       string `koanf:"account_id"`
	AccessKeyID     string `koanf:"access_key_id"`
	AccessKeySecret string `koanf:"access_key_secret"`
	Bucket          string `koanf:"bucket"`
	CDNBaseURL      string `koanf:"cdn_base_url"`
}

type UploadsConfig struct {
	Dir string `koanf:"dir"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8080,
			AllowedOrigins: []string{"http://localhost:3000"},
			BodyLimit:      10 * 1024 * 1024, // 10MB logos
		},
		Store: StoreConfig{
			Driver:     DriverMemory,
			BadgerPath: "data/badger",
		},
		Admin: AdminConfig{
			TokenTTL:     7 * 24 * time.Hour,
			CookieSecure: true,
		},
		Ordering: OrderingConfig{
			AppendMode:       AppendAfterKeyed,
			WriteConcurrency: 16,
		},
		Images:  ImagesConfig{Placeholder: "/placeholder.png"},
		Uploads: UploadsConfig{Dir: "uploads"},
		Log:     LogConfig{Level: "info", Format: "json"},
	}
}

// envMappings maps environment variables to config paths. Unlisted variables are ignored.
var envMappings = map[string]string{
	"port":                  "server.port",
	"allowed_origins":       "server.allowed_origins",
	"body_limit":            "server.body_limit",
	"store_driver":          "store.driver",
	"database_url":          "store.dsn",
	"badger_path":           "store.badger_path",
	"admin_code":            "admin.code",
	"admin_token_secret":    "admin.token_secret",
	"admin_token_ttl":       "admin.token_ttl",
	"admin_cookie_secure":   "admin.cookie_secure",
	"order_append_mode":     "ordering.append_mode",
	"order_write_workers":   "ordering.write_concurrency",
	"order_repair_every":    "ordering.repair_interval",
	"image_placeholder":     "images.placeholder",
	"cloudflare_account_id": "r2.account_id",
	"r2_access_key_id":      "r2.access_key_id",
	"r2_access_key_secret":  "r2.access_key_secret",
	"r2_bucket_name":        "r2.bucket",
	"cdn_base_url":          "r2.cdn_base_url",
	"upload_dir":            "uploads.dir",
	"log_level":             "log.level",
	"log_format":            "log.format",
}

func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

var sliceConfigPaths = []string{"server.allowed_origins"}

// Load reads .env (if present), then layers defaults, the optional YAML
// file and the environment, and validates the result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logging.Warn().Msg("⚠️  No .env file found, reading environment variables directly")
	}

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := splitSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// splitSliceFields turns comma separated env values into slices.
func splitSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		var parts []string
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	switch c.Store.Driver {
	case DriverMemory:
	case DriverPostgres:
		if c.Store.DSN == "" {
			errs = append(errs, errors.New("store.dsn (DATABASE_URL) is required for the postgres driver"))
		}
	case DriverBadger:
		if c.Store.BadgerPath == "" {
			errs = append(errs, errors.New("store.badger_path is required for the badger driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store.driver %q", c.Store.Driver))
	}
	if c.Admin.Code == "" {
		errs = append(errs, errors.New("admin.code (ADMIN_CODE) is required"))
	}
	if c.Admin.TokenTTL <= 0 {
		errs = append(errs, errors.New("admin.token_ttl must be positive"))
	}
	switch c.Ordering.AppendMode {
	case AppendAfterKeyed, AppendAfterAll:
	default:
		errs = append(errs, fmt.Errorf("unknown ordering.append_mode %q", c.Ordering.AppendMode))
	}
	if c.Ordering.WriteConcurrency < 1 {
		errs = append(errs, errors.New("ordering.write_concurrency must be at least 1"))
	}
	if c.Ordering.RepairInterval < 0 {
		errs = append(errs, errors.New("ordering.repair_interval must not be negative"))
	}
	if !logging.ValidLevel(c.Log.Level) {
		errs = append(errs, fmt.Errorf("unknown log.level %q", c.Log.Level))
	}

	return errors.Join(errs...)
}

// Secret signs admin session tokens. Falls back to the admin code.
func (c AdminConfig) Secret() []byte {
	if c.TokenSecret != "" {
		return []byte(c.TokenSecret)
	}
	return []byte(c.Code)
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
