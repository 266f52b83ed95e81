package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("STORAGE_DRIVER", "local")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev-secret", cfg.JWTSecret)
	assert.Equal(t, 72*time.Hour, cfg.TokenTTL)
	assert.Equal(t, time.Hour, cfg.ViewDedupWindow)
	assert.Equal(t, 5, cfg.DownloadBurst)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string][2]string{
		"bad duration":   {"RATE_LIMIT_COMMENT", "soon"},
		"bad burst":      {"DOWNLOAD_BURST", "many"},
		"bad driver":     {"STORAGE_DRIVER", "ftp"},
		"prod no secret": {"APP_ENV", "production"},
	}

	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "")
			t.Setenv("STORAGE_DRIVER", "local")
			t.Setenv(kv[0], kv[1])

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
