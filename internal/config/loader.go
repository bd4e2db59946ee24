package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all service settings.
const envPrefix = "APPEALGEN"

// newViper builds a pre-configured Viper instance with the service's standard
// settings: YAML file type, APPEALGEN_ env prefix, automatic env binding, and
// a key replacer that maps "." → "_" so that nested keys like "database.host"
// resolve to "APPEALGEN_DATABASE_HOST".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

// Load reads the YAML file at configPath, merges any APPEALGEN_* environment
// variable overrides, applies service defaults for unset fields, and
// validates the result.  It returns a fully-populated *Config or a
// descriptive error.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// envKeys lists every configuration key so that LoadFromEnv can bind them
// explicitly.  Viper's AutomaticEnv only resolves keys it already knows about,
// which in file-based loading comes from the parsed YAML; with no file we must
// enumerate the keys ourselves.
var envKeys = []string{
	"server.port", "server.mode", "server.read_timeout", "server.write_timeout",
	"server.max_upload_bytes", "server.shutdown_timeout", "server.rate_limit_rps",
	"server.cors_origins",
	"database.host", "database.port", "database.user", "database.password",
	"database.db_name", "database.ssl_mode", "database.max_conns", "database.min_conns",
	"database.conn_max_lifetime", "database.conn_max_idle_time", "database.migration_path",
	"redis.addr", "redis.password", "redis.db", "redis.pool_size", "redis.min_idle_conns",
	"redis.dial_timeout", "redis.read_timeout", "redis.write_timeout",
	"redis.default_ttl", "redis.key_prefix",
	"kafka.brokers", "kafka.generated_topic", "kafka.failed_topic",
	"kafka.producer_retries", "kafka.write_timeout", "kafka.batch_size",
	"kafka.required_acks", "kafka.async",
	"minio.endpoint", "minio.access_key", "minio.secret_key",
	"minio.documents_bucket", "minio.letters_bucket", "minio.use_ssl", "minio.presign_expiry",
	"ocr.base_url", "ocr.timeout", "ocr.max_upload_bytes",
	"generation.enabled", "generation.base_url", "generation.api_key",
	"generation.model", "generation.timeout", "generation.max_tokens", "generation.temperature",
	"pipeline.min_input_length",
	"log.level", "log.format", "log.output_paths", "log.error_output_paths",
}

// LoadFromEnv builds a Config entirely from APPEALGEN_* environment variables,
// with no config file required.  This is the preferred loading strategy for
// containerised (12-factor) deployments.
//
// Environment variable naming convention:
//
//	APPEALGEN_<SECTION>_<FIELD>   e.g.  APPEALGEN_DATABASE_HOST, APPEALGEN_OCR_BASE_URL
func LoadFromEnv() (*Config, error) {
	v := newViper()
	for _, key := range envKeys {
		// BindEnv only errors on an empty key.
		_ = v.BindEnv(key)
	}
	return unmarshalAndFinalize(v)
}

// unmarshalAndFinalize unmarshals viper state into a Config struct, applies
// defaults, and validates the result.
func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// MustLoad is a convenience wrapper around Load that panics on any error.
// It is intended for use in main() where a config-load failure is always fatal.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}
