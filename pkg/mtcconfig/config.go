// Package mtcconfig loads issuer configuration: which key to sign with,
// where batches are stored, and which optional subsystems (index, pointer,
// telemetry, policy) are wired in. Layering mirrors the teacher's profile
// loader: defaults, then an optional YAML file, then environment variable
// overrides.
package mtcconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is an issuer's full runtime configuration.
type Config struct {
	IssuerID string `yaml:"issuer_id"`
	KeyPath  string `yaml:"key_path"`

	// StorageBackend selects the batch blob store: "file" | "s3" | "gcs".
	StorageBackend string `yaml:"storage_backend"`
	StorageBucket  string `yaml:"storage_bucket,omitempty"`
	StoragePrefix  string `yaml:"storage_prefix,omitempty"`
	StorageRegion  string `yaml:"storage_region,omitempty"`
	StorageDir     string `yaml:"storage_dir,omitempty"` // file backend only

	// IndexBackend selects the certificate-offset accelerator: "none" |
	// "sqlite" | "postgres".
	IndexBackend string `yaml:"index_backend"`
	IndexDSN     string `yaml:"index_dsn,omitempty"`

	// RedisAddr, if set, backs a distributed "latest batch" pointer instead
	// of the storage backend's own single-writer pointer.
	RedisAddr     string `yaml:"redis_addr,omitempty"`
	RedisPassword string `yaml:"redis_password,omitempty"`
	RedisDB       int    `yaml:"redis_db,omitempty"`

	// OTLPEndpoint, if set, enables telemetry export; empty disables it.
	OTLPEndpoint string `yaml:"otlp_endpoint,omitempty"`

	// PolicyFile, if set, names a file of newline-separated CEL expressions
	// an assertion's claims must satisfy before being admitted to a batch.
	PolicyFile string `yaml:"policy_file,omitempty"`
}

// defaults returns the configuration used before any file or environment
// override is applied.
func defaults() *Config {
	return &Config{
		StorageBackend: "file",
		StorageDir:     "data/mtc",
		IndexBackend:   "none",
	}
}

// Load builds a Config starting from defaults, merging in path (a YAML
// file) if it exists, then applying environment variable overrides. path
// may be empty, in which case only defaults and environment apply.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config %q: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %q: %w", path, err)
		}
	}

	applyEnv(cfg)

	if cfg.IssuerID == "" {
		return nil, fmt.Errorf("mtcconfig: issuer_id is required")
	}
	if cfg.KeyPath == "" {
		return nil, fmt.Errorf("mtcconfig: key_path is required")
	}
	switch cfg.StorageBackend {
	case "file", "s3", "gcs":
	default:
		return nil, fmt.Errorf("mtcconfig: unknown storage_backend %q", cfg.StorageBackend)
	}
	switch cfg.IndexBackend {
	case "none", "sqlite", "postgres":
	default:
		return nil, fmt.Errorf("mtcconfig: unknown index_backend %q", cfg.IndexBackend)
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	strVar(&cfg.IssuerID, "MTC_ISSUER_ID")
	strVar(&cfg.KeyPath, "MTC_KEY_PATH")
	strVar(&cfg.StorageBackend, "MTC_STORAGE_BACKEND")
	strVar(&cfg.StorageBucket, "MTC_STORAGE_BUCKET")
	strVar(&cfg.StoragePrefix, "MTC_STORAGE_PREFIX")
	strVar(&cfg.StorageRegion, "MTC_STORAGE_REGION")
	strVar(&cfg.StorageDir, "MTC_STORAGE_DIR")
	strVar(&cfg.IndexBackend, "MTC_INDEX_BACKEND")
	strVar(&cfg.IndexDSN, "MTC_INDEX_DSN")
	strVar(&cfg.RedisAddr, "MTC_REDIS_ADDR")
	strVar(&cfg.RedisPassword, "MTC_REDIS_PASSWORD")
	strVar(&cfg.OTLPEndpoint, "MTC_OTLP_ENDPOINT")
	strVar(&cfg.PolicyFile, "MTC_POLICY_FILE")
}

func strVar(dst *string, envVar string) {
	if v := os.Getenv(envVar); v != "" {
		*dst = v
	}
}
