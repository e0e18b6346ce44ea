package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerPort string
	ServerHost string

	// Database configuration
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Redis configuration. An empty URL disables locking and rate limiting.
	RedisURL string

	// JWT configuration
	JWTSecret string

	LLM LLMConfig

	// Recipe image storage. An empty bucket disables image URLs.
	S3BucketName string
	AWSRegion    string

	CORSAllowedOrigins []string

	LogLevel  string
	LogFormat string
	LogFile   string

	GenerationsPerHour int
}

// LLMConfig configures the chat-completions provider
type LLMConfig struct {
	APIURL            string
	APIKey            string
	Model             string
	Timeout           time.Duration
	MaxAttempts       int
	RequestsPerSecond float64
	Language          string
}

// DSN returns the postgres connection string
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// MigrationURL returns the postgres URL form used by the migration driver
func (c *Config) MigrationURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// secretKeys may be provided as files under SECRETS_DIR. A file wins over the
// environment variable of the same name.
var secretKeys = []string{
	"db_user",
	"db_password",
	"jwt_secret",
	"redis_url",
	"llm_api_key",
	"s3_bucket_name",
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v, env)

	switch env {
	case CI:
		// CI only reads environment variables
	case Development, Test, Production:
		if err := loadSecrets(v); err != nil {
			return nil, fmt.Errorf("failed to load %s secrets: %w", env, err)
		}
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	cfg := &Config{
		Environment: env,
		ServerPort:  v.GetString("server_port"),
		ServerHost:  v.GetString("server_host"),
		DBDriver:    strings.ToLower(v.GetString("db_driver")),
		DBHost:      v.GetString("db_host"),
		DBPort:      v.GetString("db_port"),
		DBUser:      v.GetString("db_user"),
		DBPassword:  v.GetString("db_password"),
		DBName:      v.GetString("db_name"),
		DBSSLMode:   v.GetString("db_ssl_mode"),
		SQLitePath:  v.GetString("sqlite_path"),
		RedisURL:    v.GetString("redis_url"),
		JWTSecret:   v.GetString("jwt_secret"),
		LLM: LLMConfig{
			APIURL:            v.GetString("llm_api_url"),
			APIKey:            v.GetString("llm_api_key"),
			Model:             v.GetString("llm_model"),
			Timeout:           v.GetDuration("llm_timeout"),
			MaxAttempts:       v.GetInt("llm_max_attempts"),
			RequestsPerSecond: v.GetFloat64("llm_requests_per_second"),
			Language:          v.GetString("llm_language"),
		},
		S3BucketName:       v.GetString("s3_bucket_name"),
		AWSRegion:          v.GetString("aws_region"),
		CORSAllowedOrigins: splitList(v.GetString("cors_allowed_origins")),
		LogLevel:           v.GetString("log_level"),
		LogFormat:          v.GetString("log_format"),
		LogFile:            v.GetString("log_file"),
		GenerationsPerHour: v.GetInt("rate_limit_generations_per_hour"),
	}

	// Validate the configuration
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, env Environment) {
	v.SetDefault("server_port", "8080")
	v.SetDefault("server_host", "0.0.0.0")
	v.SetDefault("db_driver", "postgres")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_user", "postgres")
	v.SetDefault("db_name", "cuistot")
	v.SetDefault("db_ssl_mode", "disable")
	v.SetDefault("sqlite_path", "cuistot.db")
	v.SetDefault("llm_api_url", "https://api.deepseek.com/v1/chat/completions")
	v.SetDefault("llm_model", "deepseek-chat")
	v.SetDefault("llm_timeout", 60*time.Second)
	v.SetDefault("llm_max_attempts", 3)
	v.SetDefault("llm_requests_per_second", 2.0)
	v.SetDefault("llm_language", "français")
	v.SetDefault("aws_region", "eu-west-3")
	v.SetDefault("cors_allowed_origins", "http://localhost:5173")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("rate_limit_generations_per_hour", 30)

	if env == Development || env == Test {
		v.SetDefault("db_password", "postgres")
		v.SetDefault("jwt_secret", "your-secret-key")
		v.SetDefault("log_format", "console")
		v.SetDefault("log_level", "debug")
	}
}

func loadSecrets(v *viper.Viper) error {
	dir := secretsDir()
	for _, name := range secretKeys {
		value, err := readSecret(dir, name)
		if err != nil {
			return err
		}
		if value != "" {
			v.Set(name, value)
		}
	}
	return nil
}

func secretsDir() string {
	if dir := os.Getenv("SECRETS_DIR"); dir != "" {
		return dir
	}
	return "/run/secrets"
}

// readSecret reads a Docker secret from the secrets directory. A missing file is not an error.
func readSecret(dir, name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read secret %s: %w", name, err)
	}
	return strings.TrimSpace(string(data)), nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
