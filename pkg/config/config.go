package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig  `yaml:"server" json:"server"`
	Storage StorageConfig `yaml:"storage" json:"storage"`
	Auth    AuthConfig    `yaml:"auth" json:"auth"`
	Session SessionConfig `yaml:"session" json:"session"`
	CORS    CORSConfig    `yaml:"cors" json:"cors"`
	Mirror  MirrorConfig  `yaml:"mirror" json:"mirror"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `yaml:"host" json:"host" env:"SERVER_HOST"`
	Port         string        `yaml:"port" json:"port" env:"SERVER_PORT"`
	ReadTimeout  time.Duration `yaml:"read_timeout" json:"read_timeout" env:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `yaml:"write_timeout" json:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" json:"idle_timeout" env:"SERVER_IDLE_TIMEOUT"`
	Debug        bool          `yaml:"debug" json:"debug" env:"SERVER_DEBUG"`
}

// StorageConfig holds the locations of uploads and the group registry
type StorageConfig struct {
	UploadRoot    string `yaml:"upload_root" json:"upload_root" env:"STORAGE_UPLOAD_ROOT"`
	RegistryFile  string `yaml:"registry_file" json:"registry_file" env:"STORAGE_REGISTRY_FILE"`
	MaxUploadSize int64  `yaml:"max_upload_size" json:"max_upload_size" env:"STORAGE_MAX_UPLOAD_SIZE"`
}

// AuthConfig holds the single credential pair
type AuthConfig struct {
	Username     string `yaml:"username" json:"username" env:"AUTH_USERNAME"`
	Password     string `yaml:"password" json:"password" env:"AUTH_PASSWORD" sensitive:"true"`
	PasswordHash string `yaml:"password_hash" json:"password_hash" env:"AUTH_PASSWORD_HASH" sensitive:"true"`

	// Login attempts per client IP; 0 disables the limit
	LoginRatePerMinute int `yaml:"login_rate_per_minute" json:"login_rate_per_minute" env:"AUTH_LOGIN_RATE_PER_MINUTE"`
	LoginBurst         int `yaml:"login_burst" json:"login_burst" env:"AUTH_LOGIN_BURST"`
}

// SessionConfig selects and configures the session store
type SessionConfig struct {
	Backend       string        `yaml:"backend" json:"backend" env:"SESSION_BACKEND"` // memory, sqlite, redis
	TTL           time.Duration `yaml:"ttl" json:"ttl" env:"SESSION_TTL"`
	CookieName    string        `yaml:"cookie_name" json:"cookie_name" env:"SESSION_COOKIE_NAME"`
	CookieSecure  bool          `yaml:"cookie_secure" json:"cookie_secure" env:"SESSION_COOKIE_SECURE"`
	SQLitePath    string        `yaml:"sqlite_path" json:"sqlite_path" env:"SESSION_SQLITE_PATH"`
	RedisAddr     string        `yaml:"redis_addr" json:"redis_addr" env:"SESSION_REDIS_ADDR"`
	RedisPassword string        `yaml:"redis_password" json:"redis_password" env:"SESSION_REDIS_PASSWORD" sensitive:"true"`
	RedisDB       int           `yaml:"redis_db" json:"redis_db" env:"SESSION_REDIS_DB"`
	RedisPrefix   string        `yaml:"redis_prefix" json:"redis_prefix" env:"SESSION_REDIS_PREFIX"`
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	Enabled          bool     `yaml:"enabled" json:"enabled" env:"CORS_ENABLED"`
	AllowedOrigins   []string `yaml:"allowed_origins" json:"allowed_origins" env:"CORS_ORIGINS"`
	AllowedMethods   []string `yaml:"allowed_methods" json:"allowed_methods"`
	AllowedHeaders   []string `yaml:"allowed_headers" json:"allowed_headers"`
	AllowCredentials bool     `yaml:"allow_credentials" json:"allow_credentials" env:"CORS_CREDENTIALS"`
	MaxAge           int      `yaml:"max_age" json:"max_age" env:"CORS_MAX_AGE"`
}

// MirrorConfig configures optional replication of uploads to S3
type MirrorConfig struct {
	Enabled        bool   `yaml:"enabled" json:"enabled" env:"MIRROR_ENABLED"`
	Bucket         string `yaml:"bucket" json:"bucket" env:"MIRROR_BUCKET"`
	Region         string `yaml:"region" json:"region" env:"MIRROR_REGION"`
	Endpoint       string `yaml:"endpoint" json:"endpoint" env:"MIRROR_ENDPOINT"`
	AccessKey      string `yaml:"access_key" json:"access_key" env:"MIRROR_ACCESS_KEY" sensitive:"true"`
	SecretKey      string `yaml:"secret_key" json:"secret_key" env:"MIRROR_SECRET_KEY" sensitive:"true"`
	ForcePathStyle bool   `yaml:"force_path_style" json:"force_path_style" env:"MIRROR_FORCE_PATH_STYLE"`
	Prefix         string `yaml:"prefix" json:"prefix" env:"MIRROR_PREFIX"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" json:"format" env:"LOG_FORMAT"` // json, console
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled" env:"METRICS_ENABLED"`
	Path    string `yaml:"path" json:"path" env:"METRICS_PATH"`
}

// ConfigManager manages configuration loading and validation
type ConfigManager struct {
	config     *Config
	configPath string
	validator  *Validator
}

// NewConfigManager creates a new configuration manager
func NewConfigManager() *ConfigManager {
	return &ConfigManager{validator: NewValidator()}
}

// Load builds the configuration from defaults, the YAML file at configPath
// and environment variables, then validates it. An empty configPath means
// no file; a path that does not exist is an error.
func (cm *ConfigManager) Load(configPath string) (*Config, error) {
	cm.configPath = configPath

	config := DefaultConfig()

	if configPath != "" {
		if err := cm.loadFromFile(config, configPath); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := cm.loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	if err := cm.validator.ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	cm.config = config
	return config, nil
}

// GetConfig returns the current configuration
func (cm *ConfigManager) GetConfig() *Config {
	return cm.config
}

// ResolvePath picks the config file: explicit flag, then CONFIG_PATH, then
// ./config.yaml or ./config.yml when present. Explicit paths are returned
// unchecked so that Load reports them when missing.
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("CONFIG_PATH"); env != "" {
		return env
	}
	for _, candidate := range []string{"config.yaml", "config.yml"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// loadFromFile loads configuration from a YAML file
func (cm *ConfigManager) loadFromFile(config *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, config)
}

// loadFromEnv loads configuration from environment variables
func (cm *ConfigManager) loadFromEnv(config *Config) error {
	return cm.setEnvVars(reflect.ValueOf(config).Elem())
}

// setEnvVars recursively sets struct fields that carry an env tag
func (cm *ConfigManager) setEnvVars(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.CanSet() {
			continue
		}

		envTag := fieldType.Tag.Get("env")
		if envTag == "" {
			if field.Kind() == reflect.Struct {
				if err := cm.setEnvVars(field); err != nil {
					return err
				}
			}
			continue
		}

		envValue, ok := os.LookupEnv(envTag)
		if !ok || envValue == "" {
			continue
		}

		if err := setFieldValue(field, envValue); err != nil {
			return fmt.Errorf("failed to set field %s from %s: %w", fieldType.Name, envTag, err)
		}
	}

	return nil
}

// setFieldValue sets a field value from an environment variable string
func setFieldValue(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			duration, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			field.SetInt(int64(duration))
		} else {
			var intValue int64
			if _, err := fmt.Sscanf(value, "%d", &intValue); err != nil {
				return err
			}
			field.SetInt(intValue)
		}
	case reflect.Bool:
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			field.SetBool(true)
		default:
			field.SetBool(false)
		}
	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			values := strings.Split(value, ",")
			for i, v := range values {
				values[i] = strings.TrimSpace(v)
			}
			field.Set(reflect.ValueOf(values))
		}
	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         "5000",
			ReadTimeout:  10 * time.Minute,
			WriteTimeout: 10 * time.Minute,
			IdleTimeout:  120 * time.Second,
		},
		Storage: StorageConfig{
			UploadRoot:    "./uploads",
			RegistryFile:  "./groups.json",
			MaxUploadSize: 500 * 1024 * 1024, // 500MB
		},
		Auth: AuthConfig{
			Username:           "admin",
			Password:           "admin",
			LoginRatePerMinute: 10,
			LoginBurst:         5,
		},
		Session: SessionConfig{
			Backend:     "memory",
			TTL:         24 * time.Hour,
			CookieName:  "locker_session",
			SQLitePath:  "./sessions.db",
			RedisAddr:   "localhost:6379",
			RedisPrefix: "locker:session:",
		},
		CORS: CORSConfig{
			Enabled:        true,
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Origin", "Content-Type", "Accept"},
			MaxAge:         86400,
		},
		Mirror: MirrorConfig{
			Region:         "us-east-1",
			ForcePathStyle: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// LogSummary logs the effective configuration without secrets
func (cm *ConfigManager) LogSummary() {
	if cm.config == nil {
		return
	}
	c := cm.config

	event := log.Info().
		Str("config_file", cm.configPath).
		Str("addr", c.Server.Host+":"+c.Server.Port).
		Str("upload_root", c.Storage.UploadRoot).
		Str("registry", c.Storage.RegistryFile).
		Str("session_backend", c.Session.Backend).
		Str("username", c.Auth.Username).
		Int("login_rate_per_minute", c.Auth.LoginRatePerMinute).
		Bool("mirror", c.Mirror.Enabled).
		Bool("metrics", c.Metrics.Enabled)

	event.Bool("bcrypt", c.Auth.PasswordHash != "").Msg("configuration loaded")

	if c.Auth.PasswordHash == "" && c.Auth.Password == DefaultConfig().Auth.Password {
		log.Warn().Msg("using the default password; set auth.password or auth.password_hash")
	}
}
