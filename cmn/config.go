package cmn

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// CacheConf is the per-origin (or per-media-kind) cache policy.
type CacheConf struct {
	MaxAge uint32 `toml:"max_age"`
}

// Origin is a named, allow-listed upstream content source.
type Origin struct {
	Name     string    `toml:"name"`
	Endpoint string    `toml:"endpoint"`
	Cache    CacheConf `toml:"cache"`
}

// TwitterConf holds the cache policy of the Twitter profile adapter (C9);
// whether the adapter is mounted depends on TWITTER_BEARER_TOKEN alone.
type TwitterConf struct {
	Cache CacheConf `toml:"cache"`
}

// CloudfrontConf names the CDN distribution invalidation targets (C6).
type CloudfrontConf struct {
	DistributionID string `toml:"distribution_id"`
}

// Config is the process-wide, immutable configuration loaded once at
// startup from CONFIG_PATH and shared by reference across every worker.
type Config struct {
	Port              uint16          `toml:"port"`
	Workers           int             `toml:"workers"`
	LogLevel          string          `toml:"log_level"`
	ReqTimeout        int64           `toml:"req_timeout"` // seconds
	MaxRetries        uint32          `toml:"max_retries"`
	MaxBodySizeBytes  int64           `toml:"max_body_size_bytes"`
	UserAgent         string          `toml:"user_agent"`
	HealthEndpoint    string          `toml:"health_endpoint"`
	StoragePath       string          `toml:"storage_path"`
	KVStoreURI        string          `toml:"kvstore_uri"`
	AllowAnyOrigin    bool            `toml:"allow_any_origin"`
	Twitter           *TwitterConf    `toml:"twitter"`
	Cloudfront        *CloudfrontConf `toml:"cloudfront"`
	Origins           []Origin        `toml:"origins"`
	ObjDenyList       []string        `toml:"obj_deny_list"`
	URLDenyList       []string        `toml:"url_deny_list"`
	AllowedSizes      []uint32        `toml:"allowed_sizes"`
}

// ReqTimeoutDuration is req_timeout expressed as a time.Duration, the
// form every resty client call in the pipeline actually wants.
func (c *Config) ReqTimeoutDuration() time.Duration {
	return time.Duration(c.ReqTimeout) * time.Second
}

// Default mirrors original_source/src/config.rs's Default impl for AppConfig.
func Default() *Config {
	return &Config{
		Port:             3030,
		Workers:          8,
		LogLevel:         "debug",
		ReqTimeout:       15,
		MaxRetries:       5,
		MaxBodySizeBytes: 60_000_000,
		UserAgent:        "imgopt/0.1",
		HealthEndpoint:   "/health",
		StoragePath:      "storage",
		KVStoreURI:       "http://127.0.0.1:5050",
		AllowAnyOrigin:   true,
		Origins: []Origin{
			{Name: "ipfs", Endpoint: "https://ipfs.io/ipfs", Cache: CacheConf{MaxAge: 31536000}},
		},
	}
}

// Load reads TOML config from path, falling back field-by-field to
// Default() for anything the file doesn't mention. A field the file does
// set keeps the file's value, even when that value is zero. An empty
// origins list falls back to the default origin.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg := Default()
	if err := toml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if len(cfg.Origins) == 0 {
		cfg.Origins = Default().Origins
	}
	return cfg, nil
}

// AdminToken reads ADMIN_TOKEN, defaulting to the literal "admin".
func AdminToken() string {
	if v := os.Getenv("ADMIN_TOKEN"); v != "" {
		return v
	}
	return DefaultAdminToken
}

// TwitterBearerToken reads TWITTER_BEARER_TOKEN; empty disables the route.
func TwitterBearerToken() string {
	return os.Getenv("TWITTER_BEARER_TOKEN")
}

// ConfigPath reads CONFIG_PATH, defaulting to ./config.toml.
func ConfigPath() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "./config.toml"
}
