package config

// Config 配置文件结构体
type Config struct {
	Version  string          `yaml:"version" ignored:"true"`
	Sqlite   SqliteConfig    `yaml:"sqlite"`
	Log      LogConfig       `yaml:"log"`
	Browser  BrowserConfig   `yaml:"browser"`
	Prompt   PromptConfig    `yaml:"prompt"`
	Defaults DefaultSettings `yaml:"defaults"`
}

// SqliteConfig 偏好存储配置
type SqliteConfig struct {
	Db     string `yaml:"db"`
	Prefix string `yaml:"prefix"`
	// Ephemeral 为 true 时偏好只保存在内存中，进程退出即丢失
	Ephemeral bool `yaml:"ephemeral"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string   `yaml:"level"`
	Writer []string `yaml:"writer"`
}

// BrowserConfig 浏览器配置
type BrowserConfig struct {
	// Path 为空表示自动检测系统浏览器
	Path string `yaml:"path"`
	// DevtoolsURL 非空时不启动浏览器，直接附着到已有的 DevTools 端点
	DevtoolsURL string `yaml:"devtools_url" split_words:"true"`
	Port        int    `yaml:"port"`
	UserDataDir string `yaml:"user_data_dir" split_words:"true"`
	Headless    bool   `yaml:"headless"`
	// Windowed 为 true 时以最大化窗口代替 kiosk 全屏，便于在同一屏幕上操作终端对话框
	Windowed bool     `yaml:"windowed"`
	Args     []string `yaml:"args"`
}

// PromptConfig 设置对话框配置
type PromptConfig struct {
	// Dimensions 为 true 时对话框额外询问目标宽高
	Dimensions bool `yaml:"dimensions"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		Version: "1.0.0",
		Sqlite: SqliteConfig{
			Db:     "data.db",
			Prefix: "tvshell_",
		},
		Log: LogConfig{
			Level: "info",
			// 对话框占用终端，默认只写文件
			Writer: []string{"file"},
		},
		Browser: BrowserConfig{
			Port: 9222,
		},
		Defaults: GetDefaultSettings(),
	}
}
