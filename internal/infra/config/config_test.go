package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  address: ":9090"
auth:
  secret: from-file
chat:
  catalogPath: assets/catalog.json
  randomSeed: 7
detection:
  maxImageBytes: 1024
  simulatedLatency: 2s
`), 0o600))

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("AUTH_SECRET", "from-env")
	t.Setenv("HTTP_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("CHAT_TOP_TRENDING", "3")
	t.Setenv("CHAT_MAX_TRACKED", "50")
	t.Setenv("HTTP_RATE_LIMIT_UPLOAD_COST", "4")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTP.Address)
	require.Equal(t, "from-env", cfg.Auth.Secret)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.AllowedOrigins)
	require.Equal(t, "assets/catalog.json", cfg.Chat.CatalogPath)
	require.Equal(t, int64(7), cfg.Chat.RandomSeed)
	require.Equal(t, 3, cfg.Chat.TopTrending)
	require.Equal(t, 50, cfg.Chat.MaxTracked)
	require.Equal(t, 30*24*time.Hour, cfg.Chat.Redis.DisplayTTL)
	require.Equal(t, int64(1024), cfg.Detection.MaxImageBytes)
	require.Equal(t, 2*time.Second, cfg.Detection.SimulatedLatency)
	require.Equal(t, []string{"image/jpeg", "image/png"}, cfg.Detection.AllowedMimeTypes)
	require.False(t, cfg.Storage.Enabled())
	require.Equal(t, []string{"/api/v1/chat"}, cfg.HTTP.Retry.Routes)
	require.Equal(t, 4, cfg.HTTP.RateLimit.UploadCost)
}

func TestLoad_RetryRoutesFromEnv(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("AUTH_SECRET", "s")
	t.Setenv("HTTP_RETRY_ROUTES", "/api/v1/chat, /api/v1/auth/login")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, []string{"/api/v1/chat", "/api/v1/auth/login"}, cfg.HTTP.Retry.Routes)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults with secret", mutate: func(*Config) {}},
		{name: "missing secret", mutate: func(c *Config) { c.Auth.Secret = " " }, wantErr: "auth.secret"},
		{name: "redis without addr", mutate: func(c *Config) { c.Chat.Redis.Enabled = true }, wantErr: "chat.redis.addr"},
		{name: "untracked chat", mutate: func(c *Config) { c.Chat.MaxTracked = 0 }, wantErr: "chat.maxTracked"},
		{name: "no mime types", mutate: func(c *Config) { c.Detection.AllowedMimeTypes = nil }, wantErr: "allowedMimeTypes"},
		{name: "bad rate limit", mutate: func(c *Config) { c.HTTP.RateLimit.Burst = 0 }, wantErr: "burst"},
		{name: "pool bounds", mutate: func(c *Config) { c.Database.MinConns = 10 }, wantErr: "minConns"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.Auth.Secret = "secret"
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tc.wantErr)
		})
	}
}
