package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// PathEnvVar overrides the config file location.
const PathEnvVar = "CONFIG_PATH"

// DefaultPaths are tried in order when PathEnvVar is not set.
var DefaultPaths = []string{"config.yaml", "config.yml"}

// envKeys maps environment variables onto config paths. Variables not
// listed are ignored.
var envKeys = map[string]string{
	"server_host":             "server.host",
	"port":                    "server.port",
	"server_read_timeout":     "server.read_timeout",
	"server_write_timeout":    "server.write_timeout",
	"server_shutdown_timeout": "server.shutdown_timeout",
	"server_body_limit":       "server.body_limit",
	"rate_limit":              "server.rate_limit",
	"rate_limit_burst":        "server.rate_burst",
	"cors_origins":            "server.cors_origins",

	"store_backend":          "store.backend",
	"mongodb_url":            "store.mongo.url",
	"mongodb_database":       "store.mongo.database",
	"mongodb_timeout":        "store.mongo.operation_timeout",
	"mongodb_pool_size":      "store.mongo.max_pool_size",
	"mongodb_ensure_indexes": "store.mongo.ensure_indexes",

	"cache_backend":             "cache.backend",
	"redis_addr":                "cache.addr",
	"redis_username":            "cache.username",
	"redis_conn_password":       "cache.password",
	"redis_db":                  "cache.db",
	"cache_default_ttl":         "cache.default_ttl",
	"cache_search_ttl":          "cache.search_ttl",
	"cache_recommendations_ttl": "cache.recommendations_ttl",
	"cache_key_encoding":        "cache.key_encoding",
	"cache_coalesce":            "cache.coalesce_misses",
	"cache_breaker":             "cache.breaker.enabled",

	"access_token_secret":  "auth.access_secret",
	"refresh_token_secret": "auth.refresh_secret",
	"access_token_expiry":  "auth.access_ttl",
	"refresh_token_expiry": "auth.refresh_ttl",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

var sliceKeys = []string{"server.cors_origins"}

// Load reads .env, the config file and the environment, and validates the
// result.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}
	return LoadFile(findFile())
}

// LoadFile is Load without the .env step and with an explicit config file.
// An empty path skips the file layer.
func LoadFile(path string) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load environment: %w", err)
	}

	if err := splitSlices(k); err != nil {
		return Config{}, err
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func findFile() string {
	if path := os.Getenv(PathEnvVar); path != "" {
		return path
	}
	for _, path := range DefaultPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func envKey(key string) string {
	return envKeys[strings.ToLower(key)]
}

// splitSlices turns comma separated environment values into lists.
func splitSlices(k *koanf.Koanf) error {
	for _, path := range sliceKeys {
		raw, ok := k.Get(path).(string)
		if !ok {
			continue
		}

		var parts []string
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}
