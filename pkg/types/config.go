package types

// Config represents the overall application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" json:"server"`
	Storage   StorageConfig   `yaml:"storage" json:"storage"`
	Providers ProvidersConfig `yaml:"providers" json:"providers"`
	Jobs      JobsConfig      `yaml:"jobs" json:"jobs"`
	Assets    AssetsConfig    `yaml:"assets" json:"assets"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host         string `yaml:"host" json:"host"`
	Port         int    `yaml:"port" json:"port"`
	ReadTimeout  int    `yaml:"read_timeout" json:"read_timeout"`   // seconds
	WriteTimeout int    `yaml:"write_timeout" json:"write_timeout"` // seconds, 0 keeps SSE streams open
	Mode         string `yaml:"mode" json:"mode"`                   // gin mode: "debug", "release" or "test"
}

// StorageConfig defines storage adapter settings
type StorageConfig struct {
	Adapter string            `yaml:"adapter" json:"adapter"` // "local", "s3" or "minio"
	Local   LocalStorageOpts  `yaml:"local" json:"local"`
	S3      S3StorageOpts     `yaml:"s3" json:"s3"`
	MinIO   MinIOStorageOpts  `yaml:"minio" json:"minio"`
	Options map[string]string `yaml:"options" json:"options"` // Additional adapter-specific options
}

// LocalStorageOpts configures the local filesystem adapter
type LocalStorageOpts struct {
	BasePath string `yaml:"base_path" json:"base_path"`
}

// S3StorageOpts configures the S3-compatible adapter
type S3StorageOpts struct {
	Endpoint        string `yaml:"endpoint" json:"endpoint"`
	Region          string `yaml:"region" json:"region"`
	Bucket          string `yaml:"bucket" json:"bucket"`
	AccessKeyID     string `yaml:"access_key_id" json:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key" json:"secret_access_key"`
	UseSSL          bool   `yaml:"use_ssl" json:"use_ssl"`
}

// MinIOStorageOpts configures the self-hosted MinIO adapter
type MinIOStorageOpts struct {
	Endpoint  string `yaml:"endpoint" json:"endpoint"` // host:port, no scheme
	Region    string `yaml:"region" json:"region"`
	Bucket    string `yaml:"bucket" json:"bucket"`
	AccessKey string `yaml:"access_key" json:"access_key"`
	SecretKey string `yaml:"secret_key" json:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl" json:"use_ssl"`
}

// ProvidersConfig holds all provider configurations, grouped by capability
type ProvidersConfig struct {
	Text  []ProviderConfig `yaml:"text" json:"text"`
	Image []ProviderConfig `yaml:"image" json:"image"`
	Video []ProviderConfig `yaml:"video" json:"video"`
	Voice []ProviderConfig `yaml:"voice" json:"voice"`
}

// ProviderConfig configures one provider adapter. Name must be one of the
// capability's known provider tags.
type ProviderConfig struct {
	Name         string            `yaml:"name" json:"name"`
	Enabled      bool              `yaml:"enabled" json:"enabled"`
	Endpoint     string            `yaml:"endpoint" json:"endpoint"`
	APIKey       string            `yaml:"api_key" json:"api_key"`
	Model        string            `yaml:"model" json:"model"`
	Timeout      int               `yaml:"timeout" json:"timeout"` // seconds
	RateLimitQPS float64           `yaml:"rate_limit_qps" json:"rate_limit_qps"`
	Burst        int               `yaml:"burst" json:"burst"`
	Options      map[string]string `yaml:"options" json:"options"`
}

// JobsConfig overrides the polling budgets of queued providers
type JobsConfig struct {
	Image BudgetConfig `yaml:"image" json:"image"`
	Video BudgetConfig `yaml:"video" json:"video"`
}

// BudgetConfig is a polling budget. Zero values keep the defaults.
type BudgetConfig struct {
	MaxAttempts int `yaml:"max_attempts" json:"max_attempts"`
	IntervalMs  int `yaml:"interval_ms" json:"interval_ms"`
}

// AssetsConfig controls where published media bytes live
type AssetsConfig struct {
	Backend    string `yaml:"backend" json:"backend"` // "memory" or "storage"
	TTLMinutes int    `yaml:"ttl_minutes" json:"ttl_minutes"`
	URLPrefix  string `yaml:"url_prefix" json:"url_prefix"`
}
