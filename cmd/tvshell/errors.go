package main

import (
	"errors"

	"tvshell/pkg/domain"
	"tvshell/pkg/errx"
)

// 错误提示（按错误码）
var codeHints = map[errx.Code]string{
	errx.CodeConfigInvalid:      "invalid configuration",
	errx.CodeDatabaseError:      "could not open the preferences database",
	errx.CodeBrowserStartFailed: "could not start the browser; set browser.path or TVSHELL_BROWSER_PATH",
	errx.CodeDevToolsAttach:     "could not connect to the browser's DevTools endpoint",
	errx.CodePromptFailed:       "could not show the dialog; run tvshell from an interactive terminal",
}

// 错误提示（按领域错误）
var sentinelHints = map[error]string{
	domain.ErrConfigNotFound:  "config file not found",
	domain.ErrInvalidConfig:   "invalid configuration",
	domain.ErrBrowserNotFound: "no Chrome or Chromium executable found; set browser.path",
}

// describeError 返回面向用户的错误提示，未知错误返回空字符串
func describeError(err error) string {
	if err == nil {
		return ""
	}
	for sentinel, hint := range sentinelHints {
		if errors.Is(err, sentinel) {
			return hint
		}
	}
	return codeHints[errx.CodeOf(err)]
}
