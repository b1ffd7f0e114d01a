package domain

import "errors"

// 目标相关错误
var (
	ErrNoTargetAttached = errors.New("no target attached")
)

// 连接相关错误
var (
	ErrDevToolsUnreachable = errors.New("devtools unreachable")
	ErrNavigationFailed    = errors.New("navigation failed")
)

// 配置相关错误
var (
	ErrInvalidConfig  = errors.New("invalid config")
	ErrConfigNotFound = errors.New("config not found")
)

// 浏览器相关错误
var (
	ErrBrowserNotFound    = errors.New("chrome executable not found")
	ErrBrowserStartFailed = errors.New("browser start failed")
)
