package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// AppConfig holds environment driven configuration values.
// Sensitive data should never have defaults inside code and must be provided via config files or the environment.
type AppConfig struct {
	AppPort            string   `mapstructure:"app_port"`
	JWTSecret          string   `mapstructure:"jwt_secret"`
	RateLimitPerMinute int      `mapstructure:"rate_limit_per_minute"`
	AllowedOrigins     []string `mapstructure:"cors_allowed_origins"`
	// Database; DBDriver is one of mysql, postgres, sqlite
	DBDriver    string `mapstructure:"db_driver"`
	DatabaseURI string `mapstructure:"database_uri"`
	DBHost      string `mapstructure:"db_host"`
	DBPort      string `mapstructure:"db_port"`
	DBUser      string `mapstructure:"db_user"`
	DBPassword  string `mapstructure:"db_password"`
	DBName      string `mapstructure:"db_name"`
	SQLitePath  string `mapstructure:"sqlite_path"`
	// Gin framework configuration
	GinMode string `mapstructure:"gin_mode"`
	GinPath string `mapstructure:"gin_path"`
	// Redis backs the token blacklist; empty host keeps it in memory
	RedisHost     string `mapstructure:"redis_host"`
	RedisPort     int    `mapstructure:"redis_port"`
	RedisDB       int    `mapstructure:"redis_db"`
	RedisPassword string `mapstructure:"redis_password"`
	// Logging configuration
	LogLevel      string `mapstructure:"log_level"`
	LogPath       string `mapstructure:"log_path"`
	LogMaxSizeMB  int    `mapstructure:"log_max_size_mb"`
	LogMaxBackups int    `mapstructure:"log_max_backups"`
	LogMaxAgeDays int    `mapstructure:"log_max_age_days"`
	LogCompress   bool   `mapstructure:"log_compress"`
}

var (
	cfg      AppConfig
	loadOnce sync.Once
	loadErr  error
)

// defaults lists every key so that viper binds the matching environment
// variable (APP_PORT, JWT_SECRET, ...) even when no config file sets it.
var defaults = map[string]any{
	"app_port":              "8080",
	"jwt_secret":            "",
	"rate_limit_per_minute": 60,
	"cors_allowed_origins":  []string{"*"},
	"db_driver":             "mysql",
	"database_uri":          "",
	"db_host":               "127.0.0.1",
	"db_port":               "3306",
	"db_user":               "root",
	"db_password":           "",
	"db_name":               "inkblog",
	"sqlite_path":           "data/inkblog.db",
	"gin_mode":              "release",
	"gin_path":              "logs/gin.log",
	"redis_host":            "",
	"redis_port":            6379,
	"redis_db":              0,
	"redis_password":        "",
	"log_level":             "info",
	"log_path":              "logs/app.log",
	"log_max_size_mb":       100,
	"log_max_backups":       3,
	"log_max_age_days":      7,
	"log_compress":          false,
}

// Load reads the configuration once. Precedence: defaults, then
// config/config.json when present, then environment variables.
func Load() (AppConfig, error) {
	loadOnce.Do(func() {
		cfg, loadErr = Read(viper.New(), filepath.Join("config", "config.json"))
	})
	return cfg, loadErr
}

// Get returns the cached configuration, loading it if necessary. It exits
// the process when the configuration is unusable.
func Get() AppConfig {
	c, err := Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	return c
}

// Read builds an AppConfig from v, an optional JSON file and the environment.
func Read(v *viper.Viper, path string) (AppConfig, error) {
	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return AppConfig{}, fmt.Errorf("read %s: %w", path, err)
			}
		}
	}

	v.AutomaticEnv()

	// Lists given in the environment as "a,b" are split by viper's default decode hook.
	var out AppConfig
	if err := v.Unmarshal(&out); err != nil {
		return AppConfig{}, fmt.Errorf("unmarshal config: %w", err)
	}
	out.DBDriver = strings.ToLower(strings.TrimSpace(out.DBDriver))

	if err := out.validate(); err != nil {
		return AppConfig{}, err
	}
	return out, nil
}

func (c AppConfig) validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set in the config file or environment")
	}
	switch c.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	return nil
}
