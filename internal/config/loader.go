package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/unalkalkan/SceneForge/internal/jobs"
	"github.com/unalkalkan/SceneForge/internal/provider"
	"github.com/unalkalkan/SceneForge/pkg/types"
	"gopkg.in/yaml.v3"
)

// Load reads and parses the configuration file
// It also supports environment variable overrides with SF_ prefix
func Load(configPath string) (*types.Config, error) {
	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start from defaults so omitted sections keep sane values
	cfg := GetDefault()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// FromEnv builds a configuration from defaults and SF_ environment variables
// alone, for deployments without a config file
func FromEnv() (*types.Config, error) {
	cfg := GetDefault()
	applyEnvOverrides(cfg)
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks if the configuration is valid
func Validate(cfg *types.Config) error {
	// Validate server config
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}
	switch cfg.Server.Mode {
	case "", "debug", "release", "test":
	default:
		return fmt.Errorf("invalid server mode: %s (must be 'debug', 'release' or 'test')", cfg.Server.Mode)
	}

	if err := validateStorage(&cfg.Storage); err != nil {
		return err
	}
	if err := validateProviders(&cfg.Providers); err != nil {
		return err
	}

	// Validate jobs config
	for name, b := range map[string]types.BudgetConfig{"image": cfg.Jobs.Image, "video": cfg.Jobs.Video} {
		if b.MaxAttempts < 0 || b.IntervalMs < 0 {
			return fmt.Errorf("invalid %s job budget: attempts and interval must not be negative", name)
		}
	}

	// Validate assets config
	switch cfg.Assets.Backend {
	case "":
		cfg.Assets.Backend = "memory" // default
	case "memory", "storage":
	default:
		return fmt.Errorf("invalid assets backend: %s (must be 'memory' or 'storage')", cfg.Assets.Backend)
	}
	if cfg.Assets.TTLMinutes < 0 {
		return fmt.Errorf("invalid assets ttl: %d", cfg.Assets.TTLMinutes)
	}

	return nil
}

func validateStorage(s *types.StorageConfig) error {
	switch s.Adapter {
	case "local":
		if s.Local.BasePath == "" {
			return fmt.Errorf("local storage base_path is required")
		}
		// Ensure base path is absolute
		if !filepath.IsAbs(s.Local.BasePath) {
			return fmt.Errorf("local storage base_path must be absolute: %s", s.Local.BasePath)
		}
	case "s3":
		if s.S3.Bucket == "" {
			return fmt.Errorf("s3 bucket is required")
		}
		if s.S3.Region == "" {
			return fmt.Errorf("s3 region is required")
		}
	case "minio":
		if s.MinIO.Endpoint == "" {
			return fmt.Errorf("minio endpoint is required")
		}
		if s.MinIO.Bucket == "" {
			return fmt.Errorf("minio bucket is required")
		}
	default:
		return fmt.Errorf("invalid storage adapter: %s (must be 'local', 's3' or 'minio')", s.Adapter)
	}
	return nil
}

func validateProviders(p *types.ProvidersConfig) error {
	check := func(kind string, entries []types.ProviderConfig, known []string) error {
		seen := make(map[string]bool)
		for _, e := range entries {
			if !contains(known, e.Name) {
				return fmt.Errorf("unknown %s provider: %q (known: %s)", kind, e.Name, strings.Join(known, ", "))
			}
			if seen[e.Name] {
				return fmt.Errorf("duplicate %s provider: %s", kind, e.Name)
			}
			seen[e.Name] = true
			if e.Timeout < 0 || e.RateLimitQPS < 0 || e.Burst < 0 {
				return fmt.Errorf("%s provider %s: timeout, rate_limit_qps and burst must not be negative", kind, e.Name)
			}
		}
		return nil
	}

	if err := check("text", p.Text, tags(provider.AllTextProviders())); err != nil {
		return err
	}
	if err := check("image", p.Image, tags(provider.AllImageProviders())); err != nil {
		return err
	}
	if err := check("video", p.Video, tags(provider.AllVideoProviders())); err != nil {
		return err
	}
	return check("voice", p.Voice, tags(provider.AllVoiceProviders()))
}

func tags[T ~string](ids []T) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// applyEnvOverrides applies environment variable overrides
// Environment variables should be prefixed with SF_ (SceneForge)
func applyEnvOverrides(cfg *types.Config) {
	// Server overrides
	if val := os.Getenv("SF_SERVER_HOST"); val != "" {
		cfg.Server.Host = val
	}
	if val := os.Getenv("SF_SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &cfg.Server.Port)
	}
	if val := os.Getenv("SF_SERVER_MODE"); val != "" {
		cfg.Server.Mode = val
	}

	// Storage overrides
	if val := os.Getenv("SF_STORAGE_ADAPTER"); val != "" {
		cfg.Storage.Adapter = val
	}
	if val := os.Getenv("SF_STORAGE_LOCAL_BASE_PATH"); val != "" {
		cfg.Storage.Local.BasePath = val
	}
	if val := os.Getenv("SF_STORAGE_S3_BUCKET"); val != "" {
		cfg.Storage.S3.Bucket = val
	}
	if val := os.Getenv("SF_STORAGE_S3_REGION"); val != "" {
		cfg.Storage.S3.Region = val
	}
	if val := os.Getenv("SF_STORAGE_S3_ENDPOINT"); val != "" {
		cfg.Storage.S3.Endpoint = val
	}
	if val := os.Getenv("SF_STORAGE_S3_ACCESS_KEY_ID"); val != "" {
		cfg.Storage.S3.AccessKeyID = val
	}
	if val := os.Getenv("SF_STORAGE_S3_SECRET_ACCESS_KEY"); val != "" {
		cfg.Storage.S3.SecretAccessKey = val
	}
	if val := os.Getenv("SF_STORAGE_MINIO_ENDPOINT"); val != "" {
		cfg.Storage.MinIO.Endpoint = val
	}
	if val := os.Getenv("SF_STORAGE_MINIO_BUCKET"); val != "" {
		cfg.Storage.MinIO.Bucket = val
	}
	if val := os.Getenv("SF_STORAGE_MINIO_ACCESS_KEY"); val != "" {
		cfg.Storage.MinIO.AccessKey = val
	}
	if val := os.Getenv("SF_STORAGE_MINIO_SECRET_KEY"); val != "" {
		cfg.Storage.MinIO.SecretKey = val
	}

	// Assets overrides
	if val := os.Getenv("SF_ASSETS_BACKEND"); val != "" {
		cfg.Assets.Backend = val
	}

	// Apply provider API key overrides
	applyProviderEnvOverrides(cfg)
}

// applyProviderEnvOverrides applies provider-specific env vars of the form
// SF_<KIND>_<NAME>_API_KEY and SF_<KIND>_<NAME>_ENDPOINT
func applyProviderEnvOverrides(cfg *types.Config) {
	groups := []struct {
		kind    string
		entries []types.ProviderConfig
	}{
		{"TEXT", cfg.Providers.Text},
		{"IMAGE", cfg.Providers.Image},
		{"VIDEO", cfg.Providers.Video},
		{"VOICE", cfg.Providers.Voice},
	}

	for _, g := range groups {
		// entries shares the backing array with cfg, so writes land in cfg
		for i := range g.entries {
			prefix := fmt.Sprintf("SF_%s_%s_", g.kind, strings.ToUpper(g.entries[i].Name))
			if val := os.Getenv(prefix + "API_KEY"); val != "" {
				g.entries[i].APIKey = val
			}
			if val := os.Getenv(prefix + "ENDPOINT"); val != "" {
				g.entries[i].Endpoint = val
			}
		}
	}
}

// GetDefault returns a default configuration
func GetDefault() *types.Config {
	return &types.Config{
		Server: types.ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  15,
			WriteTimeout: 0, // plan streams can run for minutes
			Mode:         "release",
		},
		Storage: types.StorageConfig{
			Adapter: "local",
			Local: types.LocalStorageOpts{
				BasePath: "/var/lib/sceneforge/storage",
			},
		},
		Jobs: types.JobsConfig{
			Image: types.BudgetConfig{
				MaxAttempts: jobs.ImageBudget.MaxAttempts,
				IntervalMs:  int(jobs.ImageBudget.Interval / time.Millisecond),
			},
			Video: types.BudgetConfig{
				MaxAttempts: jobs.VideoBudget.MaxAttempts,
				IntervalMs:  int(jobs.VideoBudget.Interval / time.Millisecond),
			},
		},
		Assets: types.AssetsConfig{
			Backend:    "memory",
			TTLMinutes: 360,
			URLPrefix:  "/assets",
		},
	}
}

// Budget converts a configured budget, keeping fallback for zero fields
func Budget(b types.BudgetConfig, fallback jobs.Budget) jobs.Budget {
	out := fallback
	if b.MaxAttempts > 0 {
		out.MaxAttempts = b.MaxAttempts
	}
	if b.IntervalMs > 0 {
		out.Interval = time.Duration(b.IntervalMs) * time.Millisecond
	}
	return out
}

// JobSettings builds the provider polling settings from cfg
func JobSettings(cfg *types.Config) provider.JobSettings {
	return provider.JobSettings{
		Image: Budget(cfg.Jobs.Image, jobs.ImageBudget),
		Video: Budget(cfg.Jobs.Video, jobs.VideoBudget),
	}
}
