package config

// DefaultSettings 定义偏好记录的内置默认值
type DefaultSettings struct {
	URL    string `yaml:"url"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// GetDefaultSettings 返回默认设置
func GetDefaultSettings() DefaultSettings {
	return DefaultSettings{
		URL:    "https://google.com",
		Width:  3840,
		Height: 2160,
	}
}
