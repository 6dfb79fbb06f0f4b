package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestEnvOverrides(t *testing.T) {
	t.Run("FASTCODING_MODEL overrides model", func(t *testing.T) {
		t.Setenv("FASTCODING_MODEL", "CodeLlama")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "CodeLlama", cfg.Model)
	})

	t.Run("credentials source is lower-cased", func(t *testing.T) {
		t.Setenv("FASTCODING_CREDENTIALS", "ENV")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "env", cfg.Credentials.Source)
	})

	t.Run("base URLs", func(t *testing.T) {
		t.Setenv("OPENAI_BASE_URL", "http://localhost:9999/v1")
		t.Setenv("HF_BASE_URL", "http://localhost:9998")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "http://localhost:9999/v1", cfg.LLM.OpenAI.BaseURL)
		assert.Equal(t, "http://localhost:9998", cfg.LLM.HuggingFace.BaseURL)
	})

	t.Run("debug switch enables logging", func(t *testing.T) {
		t.Setenv("FASTCODING_DEBUG", "1")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.True(t, cfg.Logging.DebugMode)
		assert.Equal(t, "debug", cfg.Logging.Level)
	})

	t.Run("empty vars change nothing", func(t *testing.T) {
		t.Setenv("FASTCODING_MODEL", "")
		t.Setenv("FASTCODING_STORE", "")

		cfg := DefaultConfig()
		want := cfg.Store.Path
		cfg.applyEnvOverrides()

		assert.Equal(t, "GPT-4", cfg.Model)
		assert.Equal(t, want, cfg.Store.Path)
	})

	t.Run("env wins over file", func(t *testing.T) {
		t.Setenv("FASTCODING_STORE", "/env/settings.db")

		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("store:\n  path: /file/settings.db\n"), 0644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "/env/settings.db", cfg.Store.Path)
	})
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	defer goleak.VerifyNone(t)
	t.Setenv("FASTCODING_MODEL", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, DefaultConfig().Save(path))

	changes := make(chan *Config, 4)
	w, err := NewWatcher(path, func(c *Config) { changes <- c })
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	cfg := DefaultConfig()
	cfg.Model = "Gemini"
	require.NoError(t, cfg.Save(path))

	select {
	case got := <-changes:
		assert.Equal(t, "Gemini", got.Model)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

func TestWatcher_SkipsInvalidConfig(t *testing.T) {
	defer goleak.VerifyNone(t)
	t.Setenv("FASTCODING_MODEL", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, DefaultConfig().Save(path))

	changes := make(chan *Config, 4)
	w, err := NewWatcher(path, func(c *Config) { changes <- c })
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("model: NotAModel\n"), 0644))

	select {
	case got := <-changes:
		t.Fatalf("invalid config should not be delivered, got %+v", got)
	case <-time.After(700 * time.Millisecond):
	}
}
