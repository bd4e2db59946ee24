package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerPort      = 8080
	DefaultServerMode      = "release"
	DefaultMaxUploadBytes  = 10 * 1024 * 1024
	DefaultShutdownTimeout = 15 * time.Second
	DefaultRateLimitRPS    = 50

	DefaultDBHost     = "localhost"
	DefaultDBPort     = 5432
	DefaultDBName     = "appealgen"
	DefaultDBMaxConns = 25

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisTTL       = 10 * time.Minute
	DefaultRedisKeyPrefix = "appealgen:"

	DefaultKafkaBroker         = "localhost:9092"
	DefaultKafkaGeneratedTopic = "appeal.generated"
	DefaultKafkaFailedTopic    = "appeal.failed"

	DefaultMinIOEndpoint   = "localhost:9000"
	DefaultDocumentsBucket = "denial-documents"
	DefaultLettersBucket   = "appeal-letters"

	DefaultOCRBaseURL = "http://localhost:8090"
	DefaultOCRTimeout = 60 * time.Second

	DefaultGenerationModel   = "gpt-4o-mini"
	DefaultGenerationTimeout = 30 * time.Second

	DefaultMinInputLength = 50

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// ApplyDefaults fills every zero-value field in cfg with the service default.
// Fields that have already been set by the caller (non-zero values) are left
// unchanged so that explicit configuration always wins.  It must be called
// after unmarshalling raw config data and before Validate() so that
// optional-but-defaulted fields are never seen as missing.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60 * time.Second
	}
	if cfg.Server.MaxUploadBytes == 0 {
		cfg.Server.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.RateLimitRPS == 0 {
		cfg.Server.RateLimitRPS = DefaultRateLimitRPS
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = []string{"*"}
	}

	// ── Database ──────────────────────────────────────────────────────────────
	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "appealgen"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = DefaultDBMaxConns
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = time.Hour
	}
	if cfg.Database.MigrationPath == "" {
		cfg.Database.MigrationPath = "file://migrations"
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = DefaultRedisTTL
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = 5 * time.Second
	}

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.GeneratedTopic == "" {
		cfg.Kafka.GeneratedTopic = DefaultKafkaGeneratedTopic
	}
	if cfg.Kafka.FailedTopic == "" {
		cfg.Kafka.FailedTopic = DefaultKafkaFailedTopic
	}
	if cfg.Kafka.ProducerRetries == 0 {
		cfg.Kafka.ProducerRetries = 3
	}
	if cfg.Kafka.WriteTimeout == 0 {
		cfg.Kafka.WriteTimeout = 10 * time.Second
	}

	// ── MinIO ─────────────────────────────────────────────────────────────────
	if cfg.MinIO.Endpoint == "" {
		cfg.MinIO.Endpoint = DefaultMinIOEndpoint
	}
	if cfg.MinIO.DocumentsBucket == "" {
		cfg.MinIO.DocumentsBucket = DefaultDocumentsBucket
	}
	if cfg.MinIO.LettersBucket == "" {
		cfg.MinIO.LettersBucket = DefaultLettersBucket
	}
	if cfg.MinIO.PresignExpiry == 0 {
		cfg.MinIO.PresignExpiry = 24 * time.Hour
	}

	// ── OCR ───────────────────────────────────────────────────────────────────
	if cfg.OCR.BaseURL == "" {
		cfg.OCR.BaseURL = DefaultOCRBaseURL
	}
	if cfg.OCR.Timeout == 0 {
		cfg.OCR.Timeout = DefaultOCRTimeout
	}
	if cfg.OCR.MaxUploadBytes == 0 {
		cfg.OCR.MaxUploadBytes = DefaultMaxUploadBytes
	}

	// ── Generation ────────────────────────────────────────────────────────────
	if cfg.Generation.Model == "" {
		cfg.Generation.Model = DefaultGenerationModel
	}
	if cfg.Generation.Timeout == 0 {
		cfg.Generation.Timeout = DefaultGenerationTimeout
	}
	if cfg.Generation.MaxTokens == 0 {
		cfg.Generation.MaxTokens = 1024
	}

	// ── Pipeline ──────────────────────────────────────────────────────────────
	if cfg.Pipeline.MinInputLength == 0 {
		cfg.Pipeline.MinInputLength = DefaultMinInputLength
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}
