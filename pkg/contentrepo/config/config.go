// Package config loads the editor configuration: which backend provider to
// use, the publish mode, and the collection definitions the facade derives
// paths and formats from.
package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/contentdeck/content-repo/pkg/contentrepo"
)

// BackendConfig selects and parameterizes the repository provider.
type BackendConfig struct {
	Name        string `yaml:"name" env:"BACKEND_NAME"`
	Repo        string `yaml:"repo" env:"BACKEND_REPO"`
	Branch      string `yaml:"branch" env:"BACKEND_BRANCH"`
	APIRoot     string `yaml:"api_root" env:"BACKEND_API_ROOT"`
	Token       string `yaml:"token" env:"BACKEND_TOKEN"`
	MediaFolder string `yaml:"media_folder" env:"BACKEND_MEDIA_FOLDER"`
}

// MediaConfig selects where media uploads land. An empty store keeps the
// backend's own default: git backends commit media into the repository tree,
// the test backend keeps an in-memory store.
type MediaConfig struct {
	Store           string `yaml:"store" env:"MEDIA_STORE"`
	Region          string `yaml:"region" env:"MEDIA_S3_REGION"`
	Bucket          string `yaml:"bucket" env:"MEDIA_S3_BUCKET"`
	AccessKeyID     string `yaml:"access_key_id" env:"MEDIA_S3_ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"secret_access_key" env:"MEDIA_S3_SECRET_ACCESS_KEY"`
	Endpoint        string `yaml:"endpoint" env:"MEDIA_S3_ENDPOINT"`
	UsePathStyle    bool   `yaml:"use_path_style" env:"MEDIA_S3_USE_PATH_STYLE"`
	KeyPrefix       string `yaml:"key_prefix" env:"MEDIA_S3_KEY_PREFIX"`
}

// SessionConfig selects the durable session store.
type SessionConfig struct {
	Store       string `yaml:"store" env:"SESSION_STORE" env-default:"memory"`
	Path        string `yaml:"path" env:"SESSION_DB_PATH" env-default:"sessions.db"`
	DatabaseURL string `yaml:"database_url" env:"SESSION_DATABASE_URL"`
}

// Config is the full configuration surface this module consumes.
type Config struct {
	Backend     *BackendConfig           `yaml:"backend"`
	PublishMode string                   `yaml:"publish_mode" env:"PUBLISH_MODE"`
	Session     SessionConfig            `yaml:"session"`
	Media       MediaConfig              `yaml:"media"`
	Collections []contentrepo.Collection `yaml:"collections"`
}

// Load reads a YAML configuration file, applying environment overrides.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the collection invariants: every collection resolves to
// exactly one listing strategy.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Collections))
	for i := range c.Collections {
		col := &c.Collections[i]
		if col.Name == "" {
			return fmt.Errorf("collection %d has no name", i)
		}
		if seen[col.Name] {
			return fmt.Errorf("duplicate collection %q", col.Name)
		}
		seen[col.Name] = true

		hasFolder := col.Folder != ""
		hasFiles := len(col.Files) > 0
		if hasFolder == hasFiles {
			return fmt.Errorf("collection %q must set exactly one of folder or files", col.Name)
		}
	}
	return nil
}

// Collection looks a collection definition up by name.
func (c *Config) Collection(name string) (*contentrepo.Collection, bool) {
	for i := range c.Collections {
		if c.Collections[i].Name == name {
			return &c.Collections[i], true
		}
	}
	return nil, false
}
