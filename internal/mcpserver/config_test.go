package mcpserver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/oasguard/httpvalidator"
	"github.com/erraggy/oasguard/oaserrors"
)

// clearOASGUARDEnv clears all OASGUARD_* env vars to isolate tests from the ambient environment.
func clearOASGUARDEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"OASGUARD_STRICT", "OASGUARD_UNSUPPORTED_MEDIA_TYPE",
		"OASGUARD_MAX_BODY_SIZE", "OASGUARD_MAX_INLINE_SIZE",
		"OASGUARD_CACHE_MAX_SIZE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearOASGUARDEnv(t)

	c, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig(), c)
	assert.False(t, c.Strict)
	assert.Equal(t, "reject", c.UnsupportedMediaType)
	assert.Equal(t, httpvalidator.DefaultMaxBodySize, c.MaxBodySize)
	assert.Equal(t, int64(10*1024*1024), c.MaxInlineSize)
	assert.Equal(t, 10, c.CacheMaxSize)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	clearOASGUARDEnv(t)
	t.Setenv("OASGUARD_STRICT", "true")
	t.Setenv("OASGUARD_UNSUPPORTED_MEDIA_TYPE", "pass-through")
	t.Setenv("OASGUARD_MAX_BODY_SIZE", "2048")
	t.Setenv("OASGUARD_MAX_INLINE_SIZE", "4096")
	t.Setenv("OASGUARD_CACHE_MAX_SIZE", "3")

	c, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, c.Strict)
	assert.Equal(t, "pass-through", c.UnsupportedMediaType)
	assert.Equal(t, int64(2048), c.MaxBodySize)
	assert.Equal(t, int64(4096), c.MaxInlineSize)
	assert.Equal(t, 3, c.CacheMaxSize)
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unparseable bool", "OASGUARD_STRICT", "maybe"},
		{"unknown policy", "OASGUARD_UNSUPPORTED_MEDIA_TYPE", "ignore"},
		{"unparseable size", "OASGUARD_MAX_BODY_SIZE", "ten"},
		{"negative body size", "OASGUARD_MAX_BODY_SIZE", "-1"},
		{"zero cache size", "OASGUARD_CACHE_MAX_SIZE", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearOASGUARDEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestConfig_ValidatorOptions(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		opts, err := DefaultConfig().ValidatorOptions()
		require.NoError(t, err)
		assert.Len(t, opts, 3)
	})

	t.Run("unknown policy", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.UnsupportedMediaType = "drop"
		_, err := cfg.ValidatorOptions()
		assert.ErrorIs(t, err, oaserrors.ErrConfig)
	})

	t.Run("strict reaches the validator", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Strict = true
		s, err := New(cfg)
		require.NoError(t, err)

		v, err := s.validator(context.Background(), specInput{Content: petstoreContent})
		require.NoError(t, err)
		assert.True(t, v.StrictMode())
	})
}
