package logger_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tvshell/internal/logger"
)

// TestNew_ConsoleLevelFilter 验证级别过滤与键值字段输出。
func TestNew_ConsoleLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(logger.Options{Level: "warn", Writers: []string{"console"}, Console: &buf})

	l.Info("不应输出")
	l.Warn("尺寸未生效", "width", 1920)
	l.Err(errors.New("boom"), "导航失败", "url", "https://test.tv")

	out := buf.String()
	if strings.Contains(out, "不应输出") {
		t.Errorf("info 日志在 warn 级别下不应输出: %s", out)
	}
	for _, want := range []string{`"width":1920`, `"error":"boom"`, `"url":"https://test.tv"`} {
		if !strings.Contains(out, want) {
			t.Errorf("日志输出缺少 %s: %s", want, out)
		}
	}
}

// TestNew_FileWriter 验证文件输出写入指定路径。
func TestNew_FileWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	l := logger.New(logger.Options{Level: "debug", Writers: []string{"file"}, File: path})

	l.Debug("写入文件", "key", "value")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("读取日志文件失败: %v", err)
	}
	if !strings.Contains(string(data), "写入文件") {
		t.Errorf("日志文件内容不符合预期: %s", data)
	}
}

// TestNew_NoWriters 验证无输出目标或 none 级别时返回空日志且不会 panic。
func TestNew_NoWriters(t *testing.T) {
	var buf bytes.Buffer
	for _, opts := range []logger.Options{
		{Level: "debug"},
		{Level: "none", Writers: []string{"console"}, Console: &buf},
	} {
		l := logger.New(opts)
		l.Info("ignored")
		l.With("session", "x").Error("ignored")
	}
	if buf.Len() != 0 {
		t.Errorf("预期无输出，实际为 %s", buf.String())
	}
}
