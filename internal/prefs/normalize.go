package prefs

import (
	"strconv"
	"strings"
)

const defaultScheme = "https://"

// Normalize 把用户输入整理为可导航的 URL。
// 去除首尾空白后为空时 ok 为 false，调用方不应导航也不应持久化；
// 不以 http:// 或 https:// 开头的输入补上 https:// 前缀。
func Normalize(raw string) (target string, ok bool) {
	target = strings.TrimSpace(raw)
	if target == "" {
		return "", false
	}
	if HasScheme(target) {
		return target, true
	}
	return defaultScheme + target, true
}

// HasScheme 报告 url 是否以受支持的协议开头
func HasScheme(url string) bool {
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}

// ParseDimension 去除两侧空白后解析像素值，任何解析失败都返回 fallback。
// 不做范围检查，0 和负数原样返回。
func ParseDimension(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return n
}
