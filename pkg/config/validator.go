package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var (
	bucketNamePattern = regexp.MustCompile(`^[a-z0-9.-]+$`)
	redisPrefixChars  = regexp.MustCompile(`^[A-Za-z0-9:_.-]*$`)
)

// Validator provides configuration validation functions
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateConfig checks every section and reports the first failure
func (v *Validator) ValidateConfig(config *Config) error {
	if err := v.validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config validation failed: %w", err)
	}

	if err := v.validateStorageConfig(&config.Storage); err != nil {
		return fmt.Errorf("storage config validation failed: %w", err)
	}

	if err := v.validateAuthConfig(&config.Auth); err != nil {
		return fmt.Errorf("auth config validation failed: %w", err)
	}

	if err := v.validateSessionConfig(&config.Session); err != nil {
		return fmt.Errorf("session config validation failed: %w", err)
	}

	if err := v.validateCORSConfig(&config.CORS); err != nil {
		return fmt.Errorf("CORS config validation failed: %w", err)
	}

	if err := v.validateMirrorConfig(&config.Mirror); err != nil {
		return fmt.Errorf("mirror config validation failed: %w", err)
	}

	if err := v.validateLoggingConfig(&config.Logging); err != nil {
		return fmt.Errorf("logging config validation failed: %w", err)
	}

	if err := v.validateMetricsConfig(&config.Metrics); err != nil {
		return fmt.Errorf("metrics config validation failed: %w", err)
	}

	return nil
}

// validateServerConfig validates server configuration
func (v *Validator) validateServerConfig(config *ServerConfig) error {
	if config.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}

	if config.Port == "" {
		return fmt.Errorf("server port cannot be empty")
	}

	port, err := strconv.Atoi(config.Port)
	if err != nil {
		return fmt.Errorf("invalid server port: %s", config.Port)
	}

	if port < 1 || port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535")
	}

	if config.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive")
	}

	if config.WriteTimeout <= 0 {
		return fmt.Errorf("write timeout must be positive")
	}

	if config.IdleTimeout <= 0 {
		return fmt.Errorf("idle timeout must be positive")
	}

	return nil
}

// validateStorageConfig validates storage configuration
func (v *Validator) validateStorageConfig(config *StorageConfig) error {
	if config.UploadRoot == "" {
		return fmt.Errorf("upload root cannot be empty")
	}

	if config.RegistryFile == "" {
		return fmt.Errorf("registry file cannot be empty")
	}

	// The registry must not be listed as a group folder.
	rel, err := filepath.Rel(filepath.Clean(config.UploadRoot), filepath.Clean(config.RegistryFile))
	if err == nil && !strings.HasPrefix(rel, "..") && rel != "." {
		return fmt.Errorf("registry file must live outside the upload root")
	}

	if config.MaxUploadSize <= 0 {
		return fmt.Errorf("max upload size must be positive")
	}

	return nil
}

// validateAuthConfig validates the credential pair
func (v *Validator) validateAuthConfig(config *AuthConfig) error {
	if strings.TrimSpace(config.Username) == "" {
		return fmt.Errorf("username cannot be empty")
	}

	if config.Password == "" && config.PasswordHash == "" {
		return fmt.Errorf("either password or password_hash must be set")
	}

	if config.PasswordHash != "" && !strings.HasPrefix(config.PasswordHash, "$2") {
		return fmt.Errorf("password_hash is not a bcrypt hash")
	}

	if config.LoginRatePerMinute < 0 {
		return fmt.Errorf("login rate cannot be negative")
	}

	if config.LoginRatePerMinute > 0 && config.LoginBurst < 1 {
		return fmt.Errorf("login burst must be at least 1 when the login rate is limited")
	}

	return nil
}

// validateSessionConfig validates session configuration
func (v *Validator) validateSessionConfig(config *SessionConfig) error {
	switch config.Backend {
	case "memory":
	case "sqlite":
		if config.SQLitePath == "" {
			return fmt.Errorf("sqlite path cannot be empty for the sqlite backend")
		}
	case "redis":
		if config.RedisAddr == "" {
			return fmt.Errorf("redis address cannot be empty for the redis backend")
		}
		if config.RedisDB < 0 {
			return fmt.Errorf("redis db cannot be negative")
		}
		if !redisPrefixChars.MatchString(config.RedisPrefix) {
			return fmt.Errorf("invalid redis key prefix: %s", config.RedisPrefix)
		}
	default:
		return fmt.Errorf("invalid session backend: %s, must be one of [memory sqlite redis]", config.Backend)
	}

	if config.TTL <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}

	if config.CookieName == "" {
		return fmt.Errorf("cookie name cannot be empty")
	}

	return nil
}

// validateCORSConfig validates CORS configuration
func (v *Validator) validateCORSConfig(config *CORSConfig) error {
	if !config.Enabled {
		return nil
	}

	if len(config.AllowedOrigins) == 0 {
		return fmt.Errorf("allowed origins cannot be empty when CORS is enabled")
	}

	if len(config.AllowedMethods) == 0 {
		return fmt.Errorf("allowed methods cannot be empty when CORS is enabled")
	}

	for _, origin := range config.AllowedOrigins {
		if !v.isValidOrigin(origin) {
			return fmt.Errorf("invalid origin format: %s", origin)
		}
	}

	validMethods := map[string]bool{
		"GET":     true,
		"POST":    true,
		"PUT":     true,
		"DELETE":  true,
		"OPTIONS": true,
		"HEAD":    true,
		"PATCH":   true,
	}

	for _, method := range config.AllowedMethods {
		if !validMethods[strings.ToUpper(method)] {
			return fmt.Errorf("invalid HTTP method: %s", method)
		}
	}

	if config.AllowCredentials {
		for _, origin := range config.AllowedOrigins {
			if origin == "*" {
				return fmt.Errorf("wildcard origin cannot be combined with credentials")
			}
		}
	}

	if config.MaxAge < 0 {
		return fmt.Errorf("CORS max age cannot be negative")
	}

	return nil
}

// validateMirrorConfig validates the S3 mirror settings
func (v *Validator) validateMirrorConfig(config *MirrorConfig) error {
	if !config.Enabled {
		return nil
	}

	if config.Bucket == "" {
		return fmt.Errorf("bucket cannot be empty when the mirror is enabled")
	}

	if !v.isValidS3BucketName(config.Bucket) {
		return fmt.Errorf("invalid S3 bucket name: %s", config.Bucket)
	}

	if config.Region == "" {
		return fmt.Errorf("region cannot be empty when the mirror is enabled")
	}

	if config.Endpoint != "" && !v.isValidURL(config.Endpoint) {
		return fmt.Errorf("invalid S3 endpoint: %s", config.Endpoint)
	}

	if (config.AccessKey == "") != (config.SecretKey == "") {
		return fmt.Errorf("access key and secret key must be set together")
	}

	return nil
}

// validateLoggingConfig validates logging configuration
func (v *Validator) validateLoggingConfig(config *LoggingConfig) error {
	validLevels := []string{"trace", "debug", "info", "warn", "error", "fatal"}
	if !contains(validLevels, config.Level) {
		return fmt.Errorf("invalid log level: %s, must be one of %v", config.Level, validLevels)
	}

	validFormats := []string{"json", "console"}
	if !contains(validFormats, config.Format) {
		return fmt.Errorf("invalid log format: %s, must be one of %v", config.Format, validFormats)
	}

	return nil
}

// validateMetricsConfig validates metrics configuration
func (v *Validator) validateMetricsConfig(config *MetricsConfig) error {
	if !config.Enabled {
		return nil
	}

	if config.Path == "" {
		return fmt.Errorf("metrics path cannot be empty when metrics is enabled")
	}

	if !strings.HasPrefix(config.Path, "/") {
		return fmt.Errorf("metrics path must start with /")
	}

	if strings.HasPrefix(config.Path, "/api/") || strings.HasPrefix(config.Path, "/uploads/") {
		return fmt.Errorf("metrics path %s collides with an application route", config.Path)
	}

	return nil
}

func (v *Validator) isValidOrigin(origin string) bool {
	if origin == "*" {
		return true
	}

	u, err := url.Parse(origin)
	if err != nil {
		return false
	}

	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func (v *Validator) isValidS3BucketName(bucket string) bool {
	if len(bucket) < 3 || len(bucket) > 63 {
		return false
	}

	if strings.HasPrefix(bucket, "-") || strings.HasSuffix(bucket, "-") {
		return false
	}

	if strings.Contains(bucket, "--") {
		return false
	}

	return bucketNamePattern.MatchString(bucket)
}

func (v *Validator) isValidURL(urlStr string) bool {
	u, err := url.Parse(urlStr)
	if err != nil {
		return false
	}

	return u.Scheme == "http" || u.Scheme == "https"
}

func contains(values []string, value string) bool {
	for _, candidate := range values {
		if candidate == value {
			return true
		}
	}
	return false
}
