package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"ora2mongo/internal/domain"
	"ora2mongo/internal/etl"
)

// Source describes the relational database rows are read from. Service is
// the Oracle service name, or the database name for the other drivers. For
// sqlite, Host is the database file path.
type Source struct {
	Driver   string `mapstructure:"driver" validate:"required,source_driver"`
	Host     string `mapstructure:"host" validate:"required"`
	Port     int    `mapstructure:"port" validate:"gte=0,lte=65535"`
	Service  string `mapstructure:"service" validate:"required_if=Driver oracle"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// Destination describes the MongoDB deployment records are written to.
type Destination struct {
	URI      string `mapstructure:"uri"`
	Host     string `mapstructure:"host" validate:"required_without=URI"`
	Port     int    `mapstructure:"port" validate:"gte=0,lte=65535"`
	Database string `mapstructure:"database" validate:"required"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// Log configures the log sinks.
type Log struct {
	File       string `mapstructure:"file" validate:"required"`
	Level      string `mapstructure:"level"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `mapstructure:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `mapstructure:"max_age_days" validate:"gte=0"`
}

// Config is the complete runtime configuration, read once at startup.
type Config struct {
	Source      Source      `mapstructure:"source"`
	Destination Destination `mapstructure:"destination"`
	SQLDir      string      `mapstructure:"sql_dir" validate:"required"`
	Log         Log         `mapstructure:"log"`
}

// envBindings maps configuration keys to the environment variables that set them.
var envBindings = map[string]string{
	"source.driver":        "DB_DRIVER",
	"source.host":          "DB_HOSTNAME",
	"source.port":          "DB_PORT",
	"source.service":       "DB_SERVICE_NAME",
	"source.user":          "DB_USER",
	"source.password":      "DB_PASSWORD",
	"destination.uri":      "MONGO_URI",
	"destination.host":     "MONGO_HOST",
	"destination.port":     "MONGO_PORT",
	"destination.database": "MONGO_DB",
	"destination.user":     "MONGO_USER",
	"destination.password": "MONGO_PASSWORD",
	"sql_dir":              "SQL_DIR",
	"log.file":             "LOG_FILE",
	"log.level":            "LOG_LEVEL",
	"log.max_size_mb":      "LOG_MAX_SIZE_MB",
	"log.max_backups":      "LOG_MAX_BACKUPS",
	"log.max_age_days":     "LOG_MAX_AGE_DAYS",
}

// flagBindings maps command-line flags to configuration keys.
var flagBindings = map[string]string{
	"sql-dir":   "sql_dir",
	"log-file":  "log.file",
	"log-level": "log.level",
}

const DefaultLogFile = "Oracle-to-MongoDB.log"

func setDefaults(v *viper.Viper) {
	v.SetDefault("source.driver", string(domain.DatabaseDriverOracle))
	v.SetDefault("source.host", "")
	v.SetDefault("source.port", 0)
	v.SetDefault("source.service", "")
	v.SetDefault("source.user", "")
	v.SetDefault("source.password", "")
	v.SetDefault("destination.uri", "")
	v.SetDefault("destination.host", "")
	v.SetDefault("destination.port", domain.DatabaseDriverMongoDB.DefaultPort())
	v.SetDefault("destination.database", "")
	v.SetDefault("destination.user", "")
	v.SetDefault("destination.password", "")
	v.SetDefault("sql_dir", etl.DefaultDefinitionsDir)
	v.SetDefault("log.file", DefaultLogFile)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)
}

// Read builds a Config from, in decreasing precedence: changed flags, the
// environment, the optional config file at path, and defaults. It does not
// validate.
func Read(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if flags != nil {
		for name, key := range flagBindings {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Source.Driver = strings.ToLower(strings.TrimSpace(cfg.Source.Driver))
	return &cfg, nil
}

// Load reads the configuration and validates it.
func Load(path string) (*Config, error) {
	cfg, err := Read(path, nil)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// source_driver accepts the drivers listed in domain.SourceDrivers.
	_ = v.RegisterValidation("source_driver", func(fl validator.FieldLevel) bool {
		return lo.Contains(domain.SourceDrivers, domain.DatabaseDriver(fl.Field().String()))
	})
	return v
}

// Validate checks required settings and value ranges.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid configuration: %s: %w", strings.Join(msgs, "; "), err)
}

// SourceConnection returns the connection descriptor for the source database.
func (c *Config) SourceConnection() domain.DatabaseConnection {
	return domain.DatabaseConnection{
		Driver:   domain.DatabaseDriver(c.Source.Driver),
		Host:     c.Source.Host,
		Port:     c.Source.Port,
		Database: c.Source.Service,
		Username: c.Source.User,
		Password: c.Source.Password,
	}
}

// DestinationConnection returns the connection descriptor for MongoDB. A
// configured URI takes the place of host and port.
func (c *Config) DestinationConnection() domain.DatabaseConnection {
	host := c.Destination.Host
	if c.Destination.URI != "" {
		host = c.Destination.URI
	}
	return domain.DatabaseConnection{
		Driver:   domain.DatabaseDriverMongoDB,
		Host:     host,
		Port:     c.Destination.Port,
		Database: c.Destination.Database,
		Username: c.Destination.User,
		Password: c.Destination.Password,
	}
}
