package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"tvshell/internal/config"
	"tvshell/pkg/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tvshell.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://google.com", cfg.Defaults.URL)
	assert.Equal(t, 3840, cfg.Defaults.Width)
	assert.Equal(t, 2160, cfg.Defaults.Height)
	assert.Equal(t, 9222, cfg.Browser.Port)
	assert.False(t, cfg.Prompt.Dimensions)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
log:
  level: DEBUG
  writer: [console]
prompt:
  dimensions: true
defaults:
  url: https://example.tv
browser:
  args: ["--mute-audio"]
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, []string{"console"}, cfg.Log.Writer)
	assert.True(t, cfg.Prompt.Dimensions)
	assert.Equal(t, "https://example.tv", cfg.Defaults.URL)
	// 未出现在文件中的字段保留默认值
	assert.Equal(t, 3840, cfg.Defaults.Width)
	assert.Equal(t, []string{"--mute-audio"}, cfg.Browser.Args)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "prompt:\n  dimensions: false\n")
	t.Setenv("TVSHELL_PROMPT_DIMENSIONS", "true")
	t.Setenv("TVSHELL_BROWSER_DEVTOOLS_URL", "http://127.0.0.1:9333")
	t.Setenv("TVSHELL_DEFAULTS_WIDTH", "1920")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Prompt.Dimensions)
	assert.Equal(t, "http://127.0.0.1:9333", cfg.Browser.DevtoolsURL)
	assert.Equal(t, 1920, cfg.Defaults.Width)
}

func TestLoad_IgnoresUnprefixedEnv(t *testing.T) {
	t.Setenv("DEVTOOLS_URL", "http://10.0.0.9:9222")
	t.Setenv("USER_DATA_DIR", "/tmp/other-profile")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Empty(t, cfg.Browser.DevtoolsURL)
	assert.Empty(t, cfg.Browser.UserDataDir)

	t.Setenv("TVSHELL_BROWSER_USER_DATA_DIR", "/srv/tvshell/profile")
	cfg, err = config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "/srv/tvshell/profile", cfg.Browser.UserDataDir)
}

func TestLoad_Errors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, domain.ErrConfigNotFound)

	_, err = config.Load(writeFile(t, "log: [not, a, map]"))
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)

	_, err = config.Load(writeFile(t, "log:\n  level: loud\n"))
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)

	_, err = config.Load(writeFile(t, "log:\n  writer: [syslog]\n"))
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}
