package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-property-listing/cache"
)

func setSecrets(t *testing.T) {
	t.Helper()
	t.Setenv("ACCESS_TOKEN_SECRET", "access")
	t.Setenv("REFRESH_TOKEN_SECRET", "refresh")
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLoadFile_Defaults(t *testing.T) {
	setSecrets(t)

	cfg, err := LoadFile("")
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.Server.Port != 5000 {
		t.Errorf("Server.Port = %d, want 5000", cfg.Server.Port)
	}
	if cfg.Store.Backend != StoreMongo {
		t.Errorf("Store.Backend = %v, want %v", cfg.Store.Backend, StoreMongo)
	}
	if cfg.Cache.DefaultTTL != cache.DefaultTTL || cfg.Cache.SearchTTL != cache.SearchTTL {
		t.Errorf("cache TTLs = %v, %v", cfg.Cache.DefaultTTL, cfg.Cache.SearchTTL)
	}
	if cfg.Auth.AccessSecret != "access" || cfg.Auth.RefreshSecret != "refresh" {
		t.Errorf("Auth secrets = %q, %q", cfg.Auth.AccessSecret, cfg.Auth.RefreshSecret)
	}
	if cfg.Logging.Output == nil {
		t.Error("Logging.Output lost its default writer")
	}
}

func TestLoadFile_Layering(t *testing.T) {
	setSecrets(t)
	path := writeFile(t, t.TempDir(), "config.yaml", `
server:
  port: 8080
  rate_limit: 5
  rate_burst: 10
store:
  backend: memory
cache:
  backend: memory
  search_ttl: 5m
logging:
  level: debug
`)

	t.Setenv("PORT", "9090")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("ACCESS_TOKEN_EXPIRY", "45m")
	t.Setenv("REDIS_CONN_PASSWORD", "s3cret")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("environment did not win over file: Port = %d", cfg.Server.Port)
	}
	if cfg.Server.RateLimit != 5 || cfg.Server.RateBurst != 10 {
		t.Errorf("rate limit = %v/%d, want 5/10", cfg.Server.RateLimit, cfg.Server.RateBurst)
	}
	if cfg.Store.Backend != StoreMemory || cfg.Cache.Backend != cache.BackendMemory {
		t.Errorf("backends = %v, %v", cfg.Store.Backend, cfg.Cache.Backend)
	}
	if cfg.Cache.SearchTTL != 5*time.Minute {
		t.Errorf("Cache.SearchTTL = %v, want 5m", cfg.Cache.SearchTTL)
	}
	if cfg.Cache.DefaultTTL != cache.DefaultTTL {
		t.Errorf("unset Cache.DefaultTTL = %v, want default", cfg.Cache.DefaultTTL)
	}
	if cfg.Cache.Password != "s3cret" {
		t.Errorf("Cache.Password = %q", cfg.Cache.Password)
	}
	if cfg.Auth.AccessTTL != 45*time.Minute {
		t.Errorf("Auth.AccessTTL = %v, want 45m", cfg.Auth.AccessTTL)
	}
	if got := strings.Join(cfg.Server.CORSOrigins, " "); got != "https://a.example https://b.example" {
		t.Errorf("CORSOrigins = %v", cfg.Server.CORSOrigins)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %v, want debug", cfg.Logging.Level)
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing secrets",
			env:     map[string]string{"ACCESS_TOKEN_SECRET": ""},
			wantErr: "AccessSecret",
		},
		{
			name:    "unknown store",
			env:     map[string]string{"STORE_BACKEND": "postgres"},
			wantErr: "Backend",
		},
		{
			name:    "port out of range",
			env:     map[string]string{"PORT": "70000"},
			wantErr: "Port",
		},
		{
			name:    "mongo without url",
			env:     map[string]string{"MONGODB_URL": ""},
			wantErr: "URL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setSecrets(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadFile("")
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFile_MemoryStoreSkipsMongo(t *testing.T) {
	setSecrets(t)
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("MONGODB_URL", "")

	if _, err := LoadFile(""); err != nil {
		t.Errorf("LoadFile() error = %v", err)
	}
}

func TestLoad_DotEnvAndConfigPath(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	writeFile(t, dir, ".env", "ACCESS_TOKEN_SECRET=from-dotenv\nREFRESH_TOKEN_SECRET=from-dotenv\n")
	t.Cleanup(func() {
		os.Unsetenv("ACCESS_TOKEN_SECRET")
		os.Unsetenv("REFRESH_TOKEN_SECRET")
	})
	path := writeFile(t, dir, "listing.yaml", "server:\n  port: 7070\n")
	t.Setenv(PathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Auth.AccessSecret != "from-dotenv" {
		t.Errorf("AccessSecret = %q, want value from .env", cfg.Auth.AccessSecret)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Port = %d, want 7070 from CONFIG_PATH", cfg.Server.Port)
	}
}

func TestServerConfig_Addr(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 5000}
	if got := s.Addr(); got != "127.0.0.1:5000" {
		t.Errorf("Addr() = %v, want 127.0.0.1:5000", got)
	}
}
