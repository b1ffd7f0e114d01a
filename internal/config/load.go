package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"tvshell/pkg/domain"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix 环境变量前缀，例如 TVSHELL_LOG_LEVEL
const EnvPrefix = "tvshell"

var validLevels = map[string]struct{}{
	"debug": {}, "info": {}, "warn": {}, "error": {}, "none": {},
}

// Load 按 默认值 -> YAML 文件 -> 环境变量 的顺序构建配置。
// path 为空时跳过文件；文件不存在返回 domain.ErrConfigNotFound。
func Load(path string) (*Config, error) {
	cfg := NewConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", domain.ErrConfigNotFound, path)
			}
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidConfig, path, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 检查配置取值
func (c *Config) Validate() error {
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if _, ok := validLevels[c.Log.Level]; !ok {
		return fmt.Errorf("%w: unknown log level %q", domain.ErrInvalidConfig, c.Log.Level)
	}
	for _, w := range c.Log.Writer {
		if w != "console" && w != "file" {
			return fmt.Errorf("%w: unknown log writer %q", domain.ErrInvalidConfig, w)
		}
	}
	if c.Sqlite.Db == "" && !c.Sqlite.Ephemeral {
		return fmt.Errorf("%w: sqlite.db is empty", domain.ErrInvalidConfig)
	}
	if c.Browser.Port < 0 || c.Browser.Port > 65535 {
		return fmt.Errorf("%w: browser.port %d out of range", domain.ErrInvalidConfig, c.Browser.Port)
	}
	return nil
}
