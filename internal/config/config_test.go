package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir()) // без .env файла

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "4000", cfg.HTTPPort)
	assert.Equal(t, StorageMemory, cfg.StorageDriver)
	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
	assert.Equal(t, 15*time.Second, cfg.AnalyzeTimeout)
	assert.Equal(t, int64(10<<20), cfg.MaxBodyBytes)
	assert.Equal(t, 3, cfg.WebhookMaxRetries)
	assert.Empty(t, cfg.GoogleAPIKey)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("GOOGLE_API_KEY", "secret")
	t.Setenv("ANALYZE_TIMEOUT", "3s")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test ,")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("STORAGE_DRIVER", "REDIS")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, "secret", cfg.GoogleAPIKey)
	assert.Equal(t, 3*time.Second, cfg.AnalyzeTimeout)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.True(t, cfg.MinioUseSSL)
	assert.Equal(t, StorageRedis, cfg.StorageDriver)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "memory", cfg: Config{StorageDriver: StorageMemory, AnalyzeTimeout: time.Second}},
		{name: "redis without addr", cfg: Config{StorageDriver: StorageRedis, AnalyzeTimeout: time.Second}, wantErr: "REDIS_ADDR"},
		{name: "postgres without url", cfg: Config{StorageDriver: StoragePostgres, AnalyzeTimeout: time.Second}, wantErr: "DATABASE_URL"},
		{name: "unknown driver", cfg: Config{StorageDriver: "mongo", AnalyzeTimeout: time.Second}, wantErr: "unknown STORAGE_DRIVER"},
		{name: "zero timeout", cfg: Config{StorageDriver: StorageMemory}, wantErr: "ANALYZE_TIMEOUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
