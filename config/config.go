package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sagarc03/switchyard/database"
	switchyardhttp "github.com/sagarc03/switchyard/http"
	"github.com/sagarc03/switchyard/keybackend"
)

// Environments accepted by Config.Env.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for switchyard.
type Config struct {
	Env      string                    `mapstructure:"env" yaml:"env" validate:"required,oneof=development production"`
	Server   ServerConfig              `mapstructure:"server" yaml:"server"`
	Database database.Config           `mapstructure:"database" yaml:"database"`
	Storage  StorageConfig             `mapstructure:"storage" yaml:"storage"`
	Auth     AuthConfig                `mapstructure:"auth" yaml:"auth"`
	CORS     switchyardhttp.CORSConfig `mapstructure:"cors" yaml:"cors"`
	Docs     switchyardhttp.DocsConfig `mapstructure:"docs" yaml:"docs"`
	Log      LogConfig                 `mapstructure:"log" yaml:"log"`
}

// IsDevelopment reports whether Env is development.
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port int `mapstructure:"port" yaml:"port" validate:"required,min=1,max=65535"`
	// DispatchTimeout bounds one dispatch. Zero uses the dispatcher default,
	// negative disables the timeout.
	DispatchTimeout       time.Duration `mapstructure:"dispatch_timeout" yaml:"dispatch_timeout"`
	ReadTimeout           time.Duration `mapstructure:"read_timeout" yaml:"read_timeout" validate:"min=0"`
	WriteTimeout          time.Duration `mapstructure:"write_timeout" yaml:"write_timeout" validate:"min=0"`
	IdleTimeout           time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout" validate:"min=0"`
	ShutdownTimeout       time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" validate:"min=0"`
	MaxUploadSize         int64         `mapstructure:"max_upload_size" yaml:"max_upload_size" validate:"min=0"`
	RejectDuplicateRoutes bool          `mapstructure:"reject_duplicate_routes" yaml:"reject_duplicate_routes"`
}

// StorageConfig holds file storage configuration.
type StorageConfig struct {
	Path string `mapstructure:"path" yaml:"path" validate:"required"`
}

// AuthConfig holds token issuance configuration.
type AuthConfig struct {
	KeyID      string                `mapstructure:"key_id" yaml:"key_id" validate:"required"`
	Issuer     string                `mapstructure:"issuer" yaml:"issuer"`
	AccessTTL  time.Duration         `mapstructure:"access_ttl" yaml:"access_ttl" validate:"min=0"`
	RefreshTTL time.Duration         `mapstructure:"refresh_ttl" yaml:"refresh_ttl" validate:"min=0"`
	Keys       keybackend.KeysConfig `mapstructure:"keys" yaml:"keys"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level" validate:"required,oneof=debug info warn error"`
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"db-type":      "database.type",
	"db-dsn":       "database.dsn",
	"storage-path": "storage.path",
	"port":         "server.port",
	"log-level":    "log.level",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		// Use custom mapping if it exists, otherwise use flag name as-is
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("env", EnvDevelopment)

	v.SetDefault("server.port", 3000)
	v.SetDefault("server.dispatch_timeout", 0)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.max_upload_size", switchyardhttp.DefaultMaxUploadSize)
	v.SetDefault("server.reject_duplicate_routes", false)

	tables := database.DefaultTables()
	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.dsn", "switchyard.db")
	v.SetDefault("database.tables.users", tables.Users)
	v.SetDefault("database.tables.books", tables.Books)
	v.SetDefault("database.tables.refresh_tokens", tables.RefreshTokens)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("storage.path", "./uploads")

	v.SetDefault("auth.key_id", "default")
	v.SetDefault("auth.issuer", "switchyard")
	v.SetDefault("auth.access_ttl", 15*time.Second)
	v.SetDefault("auth.refresh_ttl", 0)

	v.SetDefault("docs.enabled", true)
	v.SetDefault("docs.title", "switchyard")
	v.SetDefault("docs.version", "dev")

	v.SetDefault("log.level", "info")
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Read config files
	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	// 3. Bind environment variables
	v.SetEnvPrefix("SWITCHYARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// 6. Validate using go-playground/validator
	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks struct tags and the table names.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	if err := cfg.Database.Tables.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	return nil
}
